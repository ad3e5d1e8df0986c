// Package paths centralizes file and directory names used across the project.
// Data directory names and the asset tree layout are defined here as the
// single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	ConfigFile     = "config.toml"
	LogFile        = "qingque.log"
	LockFile       = "assets.lock"
	CacheDir       = "cache"
	ScoreCacheFile = "relic-scores-cache.json"
	CommitFile     = "commit.index"
	BinaryName     = "qingque"
	DataDirRel     = ".qingque" // relative to $HOME
)

// Asset tree directory names, relative to the assets root.
const (
	IndexDir     = "index"
	IconDir      = "icon"
	ImageDir     = "image"
	FontsDir     = "fonts"
	I18nDir      = "i18n"
	NicknameFile = "nickname.json"
	ScoreSheet   = "relic_scores.json"
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Lock returns the full path to the asset sync lock file.
func (d DataDir) Lock() string { return filepath.Join(d.Root, LockFile) }

// Cache returns the full path to the cache directory.
func (d DataDir) Cache() string { return filepath.Join(d.Root, CacheDir) }

// Commit returns the full path to the synced asset commit marker.
func (d DataDir) Commit() string { return filepath.Join(d.Root, CommitFile) }

// ScoreCache returns the full path to the cached relic score sheet.
func (d DataDir) ScoreCache() string { return filepath.Join(d.Root, CacheDir, ScoreCacheFile) }

// ///////////////////////////////////////////////
// AssetDir
// ///////////////////////////////////////////////

// AssetDir provides path construction methods rooted at the assets directory.
// Relative asset references embedded in game records (for example
// "icon/element/Fire.png") resolve through [AssetDir.Resolve].
type AssetDir struct {
	Root string
}

// Index returns the path of a lookup table for one language directory.
func (a AssetDir) Index(langDir, table string) string {
	return filepath.Join(a.Root, IndexDir, langDir, table+".json")
}

// Nickname returns the path of the language-independent nickname table.
func (a AssetDir) Nickname() string { return filepath.Join(a.Root, IndexDir, NicknameFile) }

// Font returns the path of a font file by name.
func (a AssetDir) Font(name string) string { return filepath.Join(a.Root, FontsDir, name) }

// I18n returns the directory holding the per-locale UI string catalogs.
func (a AssetDir) I18n() string { return filepath.Join(a.Root, I18nDir) }

// ScoreSheet returns the path of the bundled relic score sheet.
func (a AssetDir) ScoreSheet() string { return filepath.Join(a.Root, ScoreSheet) }

// Resolve joins a slash-separated relative asset reference onto the root.
func (a AssetDir) Resolve(rel string) string {
	return filepath.Join(a.Root, filepath.FromSlash(rel))
}
