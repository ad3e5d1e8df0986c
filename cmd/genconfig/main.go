// Package main implements the genconfig tool that writes config.default.toml
// from config.ExampleConfig(), annotated with config.ConfigDocs.
//
// It is invoked by go generate via the directive in internal/config/config.go.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/qingque-bot/qingque/internal/atomicfile"
	"github.com/qingque-bot/qingque/internal/config"
)

// outPath is relative to internal/config, where go generate runs.
const outPath = "../../config.default.toml"

func main() {
	var raw bytes.Buffer
	if err := toml.NewEncoder(&raw).Encode(config.ExampleConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}

	out := annotate(raw.String(), config.ConfigDocs)
	if err := atomicfile.Write(outPath, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Println("wrote config.default.toml")
}

// annotate rewrites encoder output: indentation is stripped, each section gets
// a banner, documented keys get their comment above and alternatives below,
// and documented keys the encoder omitted are appended commented out.
func annotate(encoded string, docs map[string]config.FieldDoc) string {
	out := []string{
		"# ///////////////////////////////////////////////",
		"# Qingque Configuration",
		"# ///////////////////////////////////////////////",
		"",
	}
	var section []string
	emitted := map[string]bool{}

	for _, line := range strings.Split(encoded, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue

		case strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[["):
			out = appendOmitted(out, section, docs, emitted)
			header := strings.Trim(trimmed, "[] ")
			section = parseSectionPath(header)
			out = append(out, "", fmt.Sprintf("# ///// %s /////", sectionName(header)), "")
			out = appendComment(out, docs[header].Comment)
			out = append(out, trimmed)

		case !strings.Contains(trimmed, "=") || strings.HasPrefix(trimmed, "#"):
			out = append(out, trimmed)

		default:
			key := strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0])
			full := key
			if len(section) > 0 {
				full = strings.Join(section, ".") + "." + key
			}
			emitted[full] = true
			doc := docs[full]
			out = appendComment(out, doc.Comment)
			out = append(out, trimmed)
			out = appendComment(out, strings.Join(doc.Alternatives, "\n"))
		}
	}
	out = appendOmitted(out, section, docs, emitted)

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// appendComment appends every line of text as a "# " comment.
func appendComment(out []string, text string) []string {
	if text == "" {
		return out
	}
	for _, l := range strings.Split(text, "\n") {
		out = append(out, "# "+l)
	}
	return out
}

// appendOmitted emits commented-out docs for keys directly under section that
// the encoder skipped (typically omitempty fields at their zero value). Keys
// are sorted for deterministic output.
func appendOmitted(out []string, section []string, docs map[string]config.FieldDoc, emitted map[string]bool) []string {
	if len(section) == 0 {
		return out
	}
	prefix := strings.Join(section, ".") + "."

	var omitted []string
	for path := range docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, ".") || emitted[path] {
			continue
		}
		omitted = append(omitted, path)
	}
	sort.Strings(omitted)

	for _, path := range omitted {
		doc := docs[path]
		out = appendComment(out, doc.Comment)
		out = appendComment(out, strings.Join(doc.Alternatives, "\n"))
		emitted[path] = true
	}
	return out
}

// parseSectionPath splits a dotted TOML section header into its segments.
func parseSectionPath(section string) []string {
	return strings.Split(section, ".")
}

// sectionName returns the last dotted segment of a section header with its
// first letter capitalized: "render" yields "Render".
func sectionName(section string) string {
	parts := strings.Split(section, ".")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
