package main

import (
	"strings"
	"testing"

	"github.com/qingque-bot/qingque/internal/config"
)

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

func TestParseSectionPath(t *testing.T) {
	got := parseSectionPath("render.fonts")
	if len(got) != 2 || got[0] != "render" || got[1] != "fonts" {
		t.Errorf("parseSectionPath = %v, want [render fonts]", got)
	}
}

func TestSectionName(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"render", "Render"},
		{"assets.fonts", "Fonts"},
		{"a", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sectionName(tt.section); got != tt.want {
			t.Errorf("sectionName(%q) = %q, want %q", tt.section, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// annotate
// ///////////////////////////////////////////////

func TestAnnotate(t *testing.T) {
	encoded := "version = 2\n\n[render]\n  workers = 4\n"
	docs := map[string]config.FieldDoc{
		"version":        {Comment: "Schema version."},
		"render.workers": {Comment: "Parallel cards.", Alternatives: []string{"workers = 8"}},
		"render.extra":   {Comment: "Omitted field.", Alternatives: []string{`extra = "x"`}},
	}

	out := annotate(encoded, docs)

	wantInOrder := []string{
		"# Schema version.",
		"version = 2",
		"# ///// Render /////",
		"[render]",
		"# Parallel cards.",
		"workers = 4",
		"# workers = 8",
		"# Omitted field.",
		`# extra = "x"`,
	}
	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(out[pos:], want)
		if idx < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", want, pos, out)
		}
		pos += idx + len(want)
	}
	if strings.Contains(out, "  workers") {
		t.Error("indentation was not stripped")
	}
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Error("output should end with exactly one newline")
	}
}
