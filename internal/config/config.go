// Package config provides configuration loading and defaults for the card
// renderer.
//
// Configuration is loaded from a TOML file in the user's data directory.
// The package covers the asset directory and fonts, rendering options, relic
// score sheets, the rendered-card cache, remote asset sync, and logging.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/qingque-bot/qingque/internal/atomicfile"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/migrate"
	"github.com/qingque-bot/qingque/internal/paths"
)

// DefaultRemoteBaseURL is the mirror publishing StarRailRes commit archives.
const DefaultRemoteBaseURL = "https://s3.eu-central-1.wasabisys.com/nao-archive/SRS"

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Assets holds asset directory and font settings.
	Assets AssetsConfig `toml:"assets"`
	// Render holds composition settings shared by every card.
	Render RenderConfig `toml:"render"`
	// Scoring holds relic score sheet settings.
	Scoring ScoringConfig `toml:"scoring"`
	// Cache holds the rendered-card cache settings.
	Cache CacheConfig `toml:"cache"`
	// Remote holds the asset mirror settings used by `assets sync`.
	Remote RemoteConfig `toml:"remote"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// AssetsConfig holds the asset directory layout settings.
type AssetsConfig struct {
	// Dir is the asset root containing index/, icon/, image/ and fonts/.
	Dir string `toml:"dir"`
	// UIFont is the file name under fonts/ used for most text.
	UIFont string `toml:"ui_font"`
	// UniverseFont is the file name under fonts/ used for credits and titles.
	UniverseFont string `toml:"universe_font"`
	// Preload lists glob patterns, relative to Dir, decoded at startup.
	Preload []string `toml:"preload"`
}

// RenderConfig holds composition settings.
type RenderConfig struct {
	// DefaultLanguage is the index code used when a request names none.
	DefaultLanguage string `toml:"default_language"`
	// Workers bounds how many cards are composed at once.
	Workers int `toml:"workers"`
	// HideCredits suppresses the credit line on every card.
	HideCredits bool `toml:"hide_credits"`
	// HideTimestamp suppresses the generation timestamp on every card.
	HideTimestamp bool `toml:"hide_timestamp"`
}

// ScoringConfig holds relic score sheet settings.
type ScoringConfig struct {
	// Sheet overrides the score sheet path. Empty uses relic_scores.json in
	// the asset directory.
	Sheet string `toml:"sheet,omitempty"`
	// URL, when set, is fetched on startup and cached in the data directory.
	URL string `toml:"url,omitempty"`
	// Watch reloads the sheet when the file changes.
	Watch bool `toml:"watch"`
}

// CacheConfig holds rendered-card cache settings.
type CacheConfig struct {
	// Enabled turns the Redis-backed cache on.
	Enabled bool `toml:"enabled"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `toml:"redis_addr"`
	// TTLMinutes is how long a rendered card stays cached.
	TTLMinutes int `toml:"ttl_minutes"`
}

// RemoteConfig holds asset mirror settings.
type RemoteConfig struct {
	// BaseURL is the mirror root. Relative asset paths are appended to it.
	BaseURL string `toml:"base_url"`
	// Include restricts `assets sync` to paths matching these globs.
	Include []string `toml:"include"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Assets: AssetsConfig{
			Dir:          "assets",
			UIFont:       "SDK_SC_Web.ttf",
			UniverseFont: "FirstWorld.ttf",
			Preload:      []string{},
		},
		Render: RenderConfig{
			DefaultLanguage: string(lang.Default),
			Workers:         4,
		},
		Scoring: ScoringConfig{
			Watch: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			RedisAddr:  "localhost:6379",
			TTLMinutes: 10,
		},
		Remote: RemoteConfig{
			BaseURL: DefaultRemoteBaseURL,
			Include: []string{paths.IndexDir + "/**", paths.IconDir + "/**", paths.ImageDir + "/**"},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml.
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Assets.Preload = []string{"icon/element/*.png", "icon/path/*.png"}
	return cfg
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file from dataDir/config.toml.
// If the file doesn't exist, returns DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		if backupErr := atomicfile.Write(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}

	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Assets.Dir) == "" {
		return fmt.Errorf("assets.dir must not be empty")
	}
	if c.Assets.UIFont == "" || c.Assets.UniverseFont == "" {
		return fmt.Errorf("assets.ui_font and assets.universe_font must both be set")
	}
	for _, p := range c.Assets.Preload {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid assets.preload pattern %q", p)
		}
	}

	if _, ok := lang.Parse(c.Render.DefaultLanguage); !ok {
		return fmt.Errorf("invalid render.default_language %q", c.Render.DefaultLanguage)
	}
	if c.Render.Workers <= 0 {
		return fmt.Errorf("render.workers must be > 0, got %d", c.Render.Workers)
	}

	if c.Cache.Enabled {
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr must be set when the cache is enabled")
		}
		if c.Cache.TTLMinutes <= 0 {
			return fmt.Errorf("cache.ttl_minutes must be > 0, got %d", c.Cache.TTLMinutes)
		}
	}

	for _, p := range c.Remote.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid remote.include pattern %q", p)
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	return nil
}

// ///////////////////////////////////////////////
// Accessors
// ///////////////////////////////////////////////

// Language returns the validated default language tag.
func (c *Config) Language() lang.Tag {
	if t, ok := lang.Parse(c.Render.DefaultLanguage); ok {
		return t
	}
	return lang.Default
}

// AssetRoot returns the asset directory, resolving a relative Dir against
// dataDir.
func (c *Config) AssetRoot(dataDir string) string {
	if filepath.IsAbs(c.Assets.Dir) {
		return c.Assets.Dir
	}
	return filepath.Join(dataDir, c.Assets.Dir)
}

// ScoreSheetPath returns the score sheet location, defaulting to the sheet
// shipped in the asset directory.
func (c *Config) ScoreSheetPath(dataDir string) string {
	if c.Scoring.Sheet != "" {
		return c.Scoring.Sheet
	}
	return paths.AssetDir{Root: c.AssetRoot(dataDir)}.ScoreSheet()
}

// CacheTTL returns the rendered-card TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
