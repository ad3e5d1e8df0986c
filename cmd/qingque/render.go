package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/qingque-bot/qingque/internal/atomicfile"
	"github.com/qingque-bot/qingque/internal/cardcache"
	"github.com/qingque-bot/qingque/internal/cards"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/remote"
	"github.com/qingque-bot/qingque/internal/render"
)

// cardKinds lists the accepted `render` arguments in help order.
var cardKinds = []string{
	"character",
	"chronicle",
	"forgotten-hall",
	"simulated-universe",
	"swarm",
	"roster",
	"player",
}

// renderFlags holds the `render` command flags.
type renderFlags struct {
	record    string
	out       string
	index     int
	previous  bool
	character string
	all       bool
	detailed  bool
	hideUID   bool
	noCache   bool
}

// chronicleRecord is the input of the chronicle card: the three endpoints
// it draws from, saved side by side.
type chronicleRecord struct {
	User     records.UserInfo `json:"user"`
	Overview records.Overview `json:"overview"`
	Notes    *records.Notes   `json:"notes"`
}

// ///////////////////////////////////////////////
// Command
// ///////////////////////////////////////////////

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render <kind>",
		Short: "Render a card from a saved record",
		Long: `Render composes one card from a saved API response and writes it as PNG.

Kinds: ` + strings.Join(cardKinds, ", ") + `.

character and player read a showcase profile; chronicle reads an object with
"user", "overview" and "notes"; the other kinds read the matching battle
chronicle response.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: cardKinds,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), args[0], f, cmd.InOrStdin())
		}),
	}

	fl := cmd.Flags()
	fl.StringVar(&f.record, "record", "", `saved record JSON ("-" reads stdin)`)
	fl.StringVarP(&f.out, "out", "o", "", `output file, or directory with --all ("-" writes stdout); default <kind>.png`)
	fl.IntVar(&f.index, "index", 0, "floor, run or character position within the record")
	fl.BoolVar(&f.previous, "previous", false, "simulated-universe: use the previous weekly period")
	fl.StringVar(&f.character, "character", "", "character: render the character with this id")
	fl.BoolVar(&f.all, "all", false, "character: render every showcased character")
	fl.BoolVar(&f.detailed, "detailed", false, "character: show sub stat roll counts")
	fl.BoolVar(&f.hideUID, "hide-uid", false, "character: hide the UID and region")
	fl.BoolVar(&f.noCache, "no-cache", false, "bypass the rendered-card cache")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

// render runs the `render` command.
func (a *app) render(ctx context.Context, kind string, f renderFlags, stdin io.Reader) error {
	if !slices.Contains(cardKinds, kind) {
		return fmt.Errorf("unknown card kind %q (want one of %s)", kind, strings.Join(cardKinds, ", "))
	}
	data, err := readRecord(f.record, stdin)
	if err != nil {
		return err
	}
	tag, err := a.tag()
	if err != nil {
		return err
	}
	rc, err := a.renderContext(ctx, tag)
	if err != nil {
		return err
	}
	comps, err := buildComposers(rc, kind, data, f)
	if err != nil {
		return err
	}
	if len(comps) > 1 && f.out == "-" {
		return errors.New("--all cannot write to stdout")
	}

	var cache *cardcache.Cache
	if !f.noCache {
		cache = a.cardCache(ctx)
	}
	commit := remote.ReadCommit(a.paths.Commit())
	settings := renderSettings(f, rc)

	pool := render.NewPool(a.cfg.Render.Workers)
	defer pool.Close()

	type outcome struct {
		dest string
		err  error
	}
	results := make([]outcome, len(comps))
	var wg sync.WaitGroup
	for i, comp := range comps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dest := outputPath(kind, comp, f, len(comps) > 1)
			png, err := a.renderOne(ctx, pool, rc, comp, cache, data, settings, commit)
			if err == nil {
				err = writeCard(dest, png, a.stdout)
			}
			results[i] = outcome{dest: dest, err: err}
		}()
	}
	wg.Wait()

	var errs []error
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", comps[i].Subject(), r.err))
			continue
		}
		if r.dest != "-" {
			fmt.Fprintln(a.stdout, r.dest)
		}
	}
	return errors.Join(errs...)
}

// renderOne composes comp through the pool, consulting the card cache when
// one is connected. Cards stamped with the render clock are never cached.
func (a *app) renderOne(ctx context.Context, pool *render.Pool, rc *render.Context, comp render.Composer, cache *cardcache.Cache, data, settings []byte, commit string) ([]byte, error) {
	compose := func(ctx context.Context) ([]byte, error) {
		return pool.Render(ctx, rc, comp)
	}
	if cache == nil || clockStamped(comp) {
		return compose(ctx)
	}
	return cache.Render(ctx, cacheKey(rc, comp, data, settings, commit), compose)
}

// cacheKey keys comp on the record, the render options, the asset commit
// and the score sheet in force.
func cacheKey(rc *render.Context, comp render.Composer, data, settings []byte, commit string) cardcache.Key {
	var sheet string
	if rc.Scores != nil {
		sheet = rc.Scores.Digest()
	}
	return cardcache.NewKey(comp.Kind(), comp.Subject(), rc.Tag, data, settings, []byte(commit), []byte(sheet))
}

func clockStamped(comp render.Composer) bool {
	c, ok := comp.(interface{ ClockStamped() bool })
	return ok && c.ClockStamped()
}

// renderSettings encodes every option that changes the picture, so cached
// cards are keyed on them.
func renderSettings(f renderFlags, rc *render.Context) []byte {
	return fmt.Appendf(nil, "index=%d previous=%t detailed=%t hide-uid=%t credits=%t timestamp=%t",
		f.index, f.previous, f.detailed, f.hideUID, !rc.HideCredits, !rc.HideTimestamp)
}

// ///////////////////////////////////////////////
// Records
// ///////////////////////////////////////////////

// readRecord returns the contents of name, or of stdin for "-".
func readRecord(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read record from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return data, nil
}

// buildComposers decodes data as the record kind expects and returns the
// composers to run. Only character with --all yields more than one.
func buildComposers(rc *render.Context, kind string, data []byte, f renderFlags) ([]render.Composer, error) {
	switch kind {
	case "chronicle":
		var rec chronicleRecord
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		notes := records.DefaultNotes()
		if rec.Notes != nil {
			notes = *rec.Notes
		}
		return []render.Composer{cards.NewChronicleCard(rc, rec.User, rec.Overview, notes)}, nil

	case "forgotten-hall":
		var rec records.ForgottenHall
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		floor, err := pick(rec.Floors, f.index, "floor")
		if err != nil {
			return nil, err
		}
		return []render.Composer{cards.NewForgottenHallCard(rc, floor)}, nil

	case "simulated-universe":
		var rec records.SimulatedUniverse
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		period := rec.Current
		if f.previous {
			period = rec.Previous
		}
		run, err := pick(period.Records, f.index, "run")
		if err != nil {
			return nil, err
		}
		return []render.Composer{cards.NewSimulatedUniverseCard(rc, rec.User, run)}, nil

	case "swarm":
		var rec records.Swarm
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		return []render.Composer{cards.NewSwarmCard(rc, rec)}, nil

	case "roster":
		var rec records.Roster
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		return []render.Composer{cards.NewRosterCard(rc, rec)}, nil

	case "player":
		var rec records.Profile
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		return []render.Composer{cards.NewPlayerCard(rc, rec)}, nil

	case "character":
		var rec records.Profile
		if err := decodeRecord(kind, data, &rec); err != nil {
			return nil, err
		}
		opts := cards.CharacterOptions{HideUID: f.hideUID, Detailed: f.detailed}
		chars, err := selectCharacters(rec.Characters, f)
		if err != nil {
			return nil, err
		}
		comps := make([]render.Composer, len(chars))
		for i, ch := range chars {
			comps[i] = cards.NewCharacterCard(rc, ch, rec.Player, opts)
		}
		return comps, nil
	}
	return nil, fmt.Errorf("unknown card kind %q (want one of %s)", kind, strings.Join(cardKinds, ", "))
}

func decodeRecord(kind string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s record: %w", kind, err)
	}
	return nil
}

// pick returns items[i] or an error naming what is out of range.
func pick[T any](items []T, i int, what string) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, fmt.Errorf("record has no %s", what)
	}
	if i < 0 || i >= len(items) {
		return zero, fmt.Errorf("%s index %d out of range (record has %d)", what, i, len(items))
	}
	return items[i], nil
}

// selectCharacters applies --all, --character and --index, in that order.
func selectCharacters(chars []records.Character, f renderFlags) ([]records.Character, error) {
	switch {
	case f.all:
		if len(chars) == 0 {
			return nil, errors.New("record has no character")
		}
		return chars, nil
	case f.character != "":
		for _, ch := range chars {
			if ch.ID == f.character {
				return []records.Character{ch}, nil
			}
		}
		return nil, fmt.Errorf("character %s is not showcased", f.character)
	}
	ch, err := pick(chars, f.index, "character")
	if err != nil {
		return nil, err
	}
	return []records.Character{ch}, nil
}

// ///////////////////////////////////////////////
// Output
// ///////////////////////////////////////////////

// outputPath returns where comp is written. With several cards --out names
// a directory and each character gets its own file.
func outputPath(kind string, comp render.Composer, f renderFlags, many bool) string {
	if !many {
		if f.out != "" {
			return f.out
		}
		return kind + ".png"
	}
	dir := f.out
	if dir == "" {
		dir = "."
	}
	name := kind + ".png"
	if c, ok := comp.(interface{ CharacterID() string }); ok {
		name = kind + "-" + c.CharacterID() + ".png"
	}
	return filepath.Join(dir, name)
}

// writeCard writes png to dest, or to stdout for "-".
func writeCard(dest string, png []byte, stdout io.Writer) error {
	if dest == "-" {
		_, err := stdout.Write(png)
		return err
	}
	if err := atomicfile.Write(dest, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
