package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/cards"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/scoring"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		record    string
		character string
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Grade the relics of showcased characters",
		Long: `Score grades every relic of the characters in a saved showcase profile
against the relic score sheet and prints one table per character.

With --watch the sheet is reloaded and the tables reprinted whenever the
sheet file changes.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			data, err := readRecord(record, cmd.InOrStdin())
			if err != nil {
				return err
			}
			var profile records.Profile
			if err := decodeRecord("profile", data, &profile); err != nil {
				return err
			}
			chars := profile.Characters
			if character != "" {
				chars, err = selectCharacters(chars, renderFlags{character: character})
				if err != nil {
					return err
				}
			}
			return a.score(cmd.Context(), chars, watch)
		}),
	}
	fl := cmd.Flags()
	fl.StringVar(&record, "record", "", `saved showcase profile JSON ("-" reads stdin)`)
	fl.StringVar(&character, "character", "", "only grade the character with this id")
	fl.BoolVar(&watch, "watch", false, "reprint when the score sheet changes")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

// score resolves relic slots against the asset index, then prints the
// grades, once or on every sheet change.
func (a *app) score(ctx context.Context, chars []records.Character, watch bool) error {
	tag, err := a.tag()
	if err != nil {
		return err
	}
	var onReload func()
	reloaded := make(chan struct{}, 1)
	if watch {
		onReload = func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	}
	store := a.scoreStore(ctx, onReload)
	if store == nil {
		return errors.New("no score sheet could be loaded")
	}

	reg := assets.NewRegistry(a.assetDir().Root)
	idx, err := reg.Acquire(ctx, tag)
	if err != nil {
		return fmt.Errorf("load asset index: %w", err)
	}
	resolved := make([]records.Character, len(chars))
	for i, ch := range chars {
		relics, err := cards.ResolveRelicTypes(idx, ch.Relics)
		if err != nil {
			reg.Release(tag)
			return fmt.Errorf("%s: %w", ch.ID, err)
		}
		ch.Relics = relics
		resolved[i] = ch
	}
	reg.Release(tag)

	if err := printProfileScores(a.stdout, store, resolved); err != nil || !watch {
		return err
	}

	a.log.Info("watching score sheet", "path", store.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloaded:
			fmt.Fprintln(a.stdout)
			if err := printProfileScores(a.stdout, store, resolved); err != nil {
				return err
			}
		}
	}
}

// printProfileScores grades every character against the store's current
// sheet. A character the sheet does not cover is reported, not failed.
func printProfileScores(w io.Writer, store *scoring.Store, chars []records.Character) error {
	calc, err := store.Calculator()
	if err != nil {
		return err
	}
	for i := range chars {
		ch := &chars[i]
		var res *scoring.Result
		if calc.Has(ch.ID) {
			if res, err = calc.Calculate(ch); err != nil {
				return err
			}
		}
		if err := printScores(w, ch, res); err != nil {
			return err
		}
	}
	return nil
}

// slotNames labels the relic slots in score tables.
var slotNames = map[records.RelicType]string{
	records.RelicHead:   "head",
	records.RelicHand:   "hands",
	records.RelicBody:   "body",
	records.RelicFoot:   "feet",
	records.RelicSphere: "sphere",
	records.RelicRope:   "rope",
}

// printScores writes one character's grade table, one row per slot with
// empty slots graded zero. A nil res prints the character as missing from
// the sheet.
func printScores(w io.Writer, ch *records.Character, res *scoring.Result) error {
	if res == nil {
		_, err := fmt.Fprintf(w, "%s (%s): not in score sheet\n", ch.Name, ch.ID)
		return err
	}
	fmt.Fprintf(w, "%s (%s): %.2f %s\n", ch.Name, ch.ID, res.Score, res.Rank)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  SLOT\tRELIC\tSCORE\tRANK")
	for _, t := range slices.Concat(records.Cavern, records.Planar) {
		slot := slotNames[t]
		s, ok := res.ForSlot(t)
		if !ok {
			fmt.Fprintf(tw, "  %s\t-\t0\t%s\n", slot, scoring.NoRank)
			continue
		}
		name := s.ID
		if i := slices.IndexFunc(ch.Relics, func(r records.Relic) bool { return r.ID == s.ID }); i >= 0 {
			name = ch.Relics[i].Name
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", slot, name, s.Score, s.Rank)
	}
	return tw.Flush()
}
