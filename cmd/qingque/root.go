package main

import (
	"github.com/spf13/cobra"

	"github.com/qingque-bot/qingque/internal/paths"
)

// newRootCmd builds the command tree. Each call returns a fresh tree with its
// own [app], so tests can execute commands in isolation.
func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   paths.BinaryName,
		Short: "Honkai: Star Rail card renderer",
		Long: `qingque composes Honkai: Star Rail profile cards (character sheets,
battle chronicles, forgotten hall floors, simulated universe runs, rosters and
player summaries) from saved API records and the StarRailRes asset tree.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.stdout = cmd.OutOrStdout()
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "data-dir", defaultDataDir(), "data directory for config, logs and caches")
	pf.StringVar(&a.language, "lang", "", "card language (index code or locale); default from config")
	pf.StringVar(&a.logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")

	root.AddCommand(
		newRenderCmd(a),
		newScoreCmd(a),
		newAssetsCmd(a),
		newCacheCmd(a),
		newVersionCmd(a),
	)
	return root
}
