package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	rootpkg "github.com/qingque-bot/qingque"
	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/cardcache"
	"github.com/qingque-bot/qingque/internal/config"
	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/i18n"
	"github.com/qingque-bot/qingque/internal/imagecache"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/logger"
	"github.com/qingque-bot/qingque/internal/paths"
	"github.com/qingque-bot/qingque/internal/remote"
	"github.com/qingque-bot/qingque/internal/render"
	"github.com/qingque-bot/qingque/internal/scoring"
)

// ///////////////////////////////////////////////
// App
// ///////////////////////////////////////////////

// app is the state shared by every subcommand: persistent flag values, the
// loaded config, and the logger. It is filled in by the root command's
// PersistentPreRunE.
type app struct {
	// dataDir is the --data-dir flag.
	dataDir string
	// language is the --lang flag; empty uses render.default_language.
	language string
	// logLevel is the --log-level flag; empty uses log.level.
	logLevel string
	// stdout receives command output; it is the command's OutOrStdout.
	stdout io.Writer

	paths DataPaths
	cfg   *config.Config
	log   *slog.Logger
	// closers run in reverse order when the command finishes.
	closers []io.Closer
}

// setup creates the data directory, writes the default config on first
// run, loads the config and installs the logger.
func (a *app) setup() error {
	a.paths = DataPaths{Root: a.dataDir}
	if err := os.MkdirAll(a.paths.Root, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(a.paths.Config()); os.IsNotExist(err) {
		if writeErr := os.WriteFile(a.paths.Config(), rootpkg.DefaultConfigTOML, 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(a.paths.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	log, closer := logger.NewLogger(logger.Options{
		Path:      a.paths.Log(),
		Level:     logger.ParseLevel(level),
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Console:   os.Stderr,
	})
	a.closers = append(a.closers, closer)
	a.log = log
	slog.SetDefault(log)

	remote.UserAgent = paths.BinaryName + "/" + resolveVersion()
	return nil
}

// run wraps a command body so closers run even when it fails; cobra skips
// post-run hooks after an error.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close()
		return fn(cmd, args)
	}
}

// close releases everything registered in closers.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

// assetDir returns the configured asset tree.
func (a *app) assetDir() paths.AssetDir {
	return paths.AssetDir{Root: a.cfg.AssetRoot(a.paths.Root)}
}

// tag resolves the --lang flag, which accepts both index codes ("jp") and
// locale names ("ja-JP"), falling back to the configured default.
func (a *app) tag() (lang.Tag, error) {
	if a.language == "" {
		return a.cfg.Language(), nil
	}
	if t, ok := lang.Parse(a.language); ok {
		return t, nil
	}
	if t, ok := lang.FromExternal(a.language); ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown language %q", a.language)
}

// ///////////////////////////////////////////////
// Render Context
// ///////////////////////////////////////////////

// renderContext builds the collaborators a composition needs.
func (a *app) renderContext(ctx context.Context, tag lang.Tag) (*render.Context, error) {
	dir := a.assetDir()

	catalog := i18n.NewCatalog(lang.Default)
	if err := catalog.LoadDir(dir.I18n()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		a.log.Warn("no i18n catalog, cards will show raw keys", "dir", dir.I18n())
	}

	fontSet, err := fonts.LoadSet(dir.Font(a.cfg.Assets.UIFont), dir.Font(a.cfg.Assets.UniverseFont))
	if err != nil {
		return nil, err
	}

	images := imagecache.New(dir.Root)
	if len(a.cfg.Assets.Preload) > 0 {
		if _, err := images.Preload(ctx, a.cfg.Assets.Preload...); err != nil {
			return nil, fmt.Errorf("preload images: %w", err)
		}
	}

	return &render.Context{
		Tag:           tag,
		Catalog:       catalog,
		Registry:      assets.NewRegistry(dir.Root),
		Images:        images,
		Fonts:         fontSet,
		Scores:        a.scoreStore(ctx, nil),
		Logger:        a.log,
		HideCredits:   a.cfg.Render.HideCredits,
		HideTimestamp: a.cfg.Render.HideTimestamp,
		RetainImages:  len(a.cfg.Assets.Preload) > 0,
	}, nil
}

// scoreStore loads the relic score sheet. With scoring.url set the sheet is
// downloaded into the cache first, falling back to the last good copy.
// Returns nil, which hides the score overlay, when no sheet can be loaded.
// With scoring.watch set, or a non-nil onReload, the store follows the file
// until the command ends and onReload runs after each reload.
func (a *app) scoreStore(ctx context.Context, onReload func()) *scoring.Store {
	path := a.cfg.ScoreSheetPath(a.paths.Root)
	if a.cfg.Scoring.URL != "" {
		path = a.paths.ScoreCache()
		client, err := remote.New(remote.DefaultOptions(""))
		if err != nil {
			a.log.Warn("score sheet client", "error", err)
			return nil
		}
		_, err = client.FetchCached(ctx, a.cfg.Scoring.URL, path, func(b []byte) error {
			_, perr := scoring.ParseSheet(b)
			return perr
		})
		switch {
		case errors.Is(err, remote.ErrStale):
			a.log.Warn("score sheet download failed, using cached copy", "error", err)
		case err != nil:
			a.log.Warn("score sheet unavailable, scores hidden", "error", err)
			return nil
		}
	}

	store := scoring.NewStore(path)
	if err := store.Reload(); err != nil {
		a.log.Warn("score sheet unavailable, scores hidden", "path", path, "error", err)
		return nil
	}
	if a.cfg.Scoring.Watch || onReload != nil {
		w, err := scoring.NewWatcher(path)
		if err != nil {
			a.log.Warn("score sheet watcher", "error", err)
			return store
		}
		a.closers = append(a.closers, w)
		a.log.Debug("watching score sheet", "path", path, "polling", w.Polling())
		go store.Follow(w, func() {
			a.log.Info("score sheet reloaded", "path", path)
			if onReload != nil {
				onReload()
			}
		})
	}
	return store
}

// ///////////////////////////////////////////////
// Card Cache
// ///////////////////////////////////////////////

// cardCache connects to Redis when the cache is enabled. A cache that cannot
// be reached is logged and skipped so rendering still works.
func (a *app) cardCache(ctx context.Context) *cardcache.Cache {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	c, err := cardcache.New(ctx, cardcache.Options{
		Addr: a.cfg.Cache.RedisAddr,
		TTL:  a.cfg.CacheTTL(),
	})
	if err != nil {
		a.log.Warn("card cache unavailable", "addr", a.cfg.Cache.RedisAddr, "error", err)
		return nil
	}
	c.SetLogger(a.log)
	a.closers = append(a.closers, c)
	return c
}
