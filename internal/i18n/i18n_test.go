package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qingque-bot/qingque/internal/lang"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(lang.EN)
	docs := map[lang.Tag]string{
		lang.EN: `{"chronicles":{"days_active":"Days Active","title":"{0}'s Notes"},"only_en":"English only","count":42}`,
		lang.JP: `{"chronicles":{"days_active":"活動日数"}}`,
	}
	for tag, doc := range docs {
		if err := c.Add(tag, []byte(doc)); err != nil {
			t.Fatalf("Add(%s): %v", tag, err)
		}
	}
	return c
}

func TestTranslateFallbacks(t *testing.T) {
	c := newTestCatalog(t)
	tests := []struct {
		name string
		tag  lang.Tag
		key  string
		want string
	}{
		{"direct", lang.JP, "chronicles.days_active", "活動日数"},
		{"default language", lang.JP, "only_en", "English only"},
		{"raw key", lang.JP, "missing.key", "missing.key"},
		{"non-string is missing", lang.EN, "count", "count"},
		{"unloaded language", lang.KR, "chronicles.days_active", "Days Active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.For(tt.tag).T(tt.key); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLaterDocumentWins(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Add(lang.EN, []byte(`{"only_en":"Overridden"}`)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := c.For(lang.EN).T("only_en"); got != "Overridden" {
		t.Errorf("got %q, want Overridden", got)
	}
	if got := c.For(lang.EN).T("chronicles.days_active"); got != "Days Active" {
		t.Errorf("earlier document lost: got %q", got)
	}
}

func TestAddRejectsInvalidJSON(t *testing.T) {
	if err := NewCatalog(lang.EN).Add(lang.EN, []byte(`{"a":`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestPositionalParams(t *testing.T) {
	c := newTestCatalog(t)
	if got := c.For(lang.EN).T("chronicles.title", "Stelle"); got != "Stelle's Notes" {
		t.Errorf("got %q, want %q", got, "Stelle's Notes")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		text  string
		args  []string
		named map[string]string
		want  string
	}{
		{"plain", nil, nil, "plain"},
		{"{0} and {1}", []string{"a", "b"}, nil, "a and b"},
		{"{0} and {1}", []string{"a"}, nil, "a and {1}"},
		{"Hi {name}", nil, map[string]string{"name": "March"}, "Hi March"},
		{"Hi {unknown}", nil, nil, "Hi {unknown}"},
		{"{{literal}}", nil, nil, "{literal}"},
		{"dangling {", nil, nil, "dangling {"},
	}
	for _, tt := range tests {
		if got := Format(tt.text, tt.args, tt.named); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("en-US/common.json", `{"footer":"Supported by Interastral Peace Corporation"}`)
	write("zh-CN/common.json", `{"footer":"星际和平公司赞助"}`)
	write("xx-XX/common.json", `{"footer":"ignored"}`)

	c := NewCatalog(lang.EN)
	if err := c.LoadDir(root); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got := c.For(lang.CHS).T("footer"); got != "星际和平公司赞助" {
		t.Errorf("got %q", got)
	}
	if got := c.For(lang.EN).T("footer"); got != "Supported by Interastral Peace Corporation" {
		t.Errorf("got %q", got)
	}
}
