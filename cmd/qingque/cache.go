package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered-card cache",
	}
	cmd.AddCommand(newCacheInvalidateCmd(a))
	return cmd
}

func newCacheInvalidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <kind> <subject>",
		Short: "Drop every cached card of one subject",
		Long: `Invalidate removes the cached cards of kind and subject in every language,
whatever record or settings they were rendered from.

The subject is the one a render logs, for example "UID-800000001/C-1201" for a
character card or the nickname for a chronicle. It is matched literally.`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			kind, subject := args[0], args[1]
			if !slices.Contains(cardKinds, kind) {
				return fmt.Errorf("unknown card kind %q (want one of %s)", kind, strings.Join(cardKinds, ", "))
			}
			cache := a.cardCache(cmd.Context())
			if cache == nil {
				return errors.New("card cache is disabled or unreachable")
			}
			n, err := cache.Invalidate(cmd.Context(), kind, subject)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "removed %d cached %s cards for %s\n", n, kind, subject)
			return nil
		}),
	}
}
