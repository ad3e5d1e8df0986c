package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "render.workers")
// to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Assets ───────────────────────────────────────────────────
	"assets.dir": {
		Comment: "Asset root holding index/, icon/, image/ and fonts/.\nRelative paths are resolved against the data directory.",
		Alternatives: []string{
			`dir = "/srv/qingque/assets"`,
		},
	},
	"assets.ui_font": {
		Comment: "Font file names under fonts/. TTF, OTF, WOFF and WOFF2 are accepted.",
	},
	"assets.universe_font": {},
	"assets.preload": {
		Comment: "Glob patterns (relative to dir) decoded into the image cache at startup.",
	},

	// ── Render ───────────────────────────────────────────────────
	"render.default_language": {
		Comment: "Index language used when a request names none.\nOne of: cht, cn, de, en, es, fr, id, jp, kr, pt, ru, th, vi",
		Alternatives: []string{
			`default_language = "jp"`,
		},
	},
	"render.workers": {
		Comment: "How many cards may be composed at once.",
	},
	"render.hide_credits": {
		Comment: "Drop the credit line from every card.",
	},
	"render.hide_timestamp": {
		Comment: "Drop the UTC+8 generation timestamp from every card.",
	},

	// ── Scoring ──────────────────────────────────────────────────
	"scoring.sheet": {
		Comment: "Relic score sheet. Empty uses relic_scores.json in the asset directory.",
		Alternatives: []string{
			`sheet = "/srv/qingque/relic_scores.json"`,
		},
	},
	"scoring.url": {
		Comment: "Fetch the score sheet from this URL on startup.\nThe last good copy is cached and used when the fetch fails.",
		Alternatives: []string{
			`url = "https://example.com/relic_scores.json"`,
		},
	},
	"scoring.watch": {
		Comment: "Reload the score sheet when the file changes.",
	},

	// ── Cache ────────────────────────────────────────────────────
	"cache.enabled": {
		Comment: "Cache rendered cards in Redis, keyed by card kind, language and record.",
	},
	"cache.redis_addr": {},
	"cache.ttl_minutes": {},

	// ── Remote ───────────────────────────────────────────────────
	"remote.base_url": {
		Comment: "Mirror used by `qingque assets sync`. It must serve commit.index\nand one <commit>.zip archive per commit. A GitHub repository URL\nis rewritten to its raw content root.",
	},
	"remote.include": {
		Comment: "Only archive entries matching these globs are unpacked.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log.level": {
		Comment: "Log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Rotate the log file once it reaches this size.",
	},
}
