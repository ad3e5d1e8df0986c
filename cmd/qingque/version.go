package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/qingque-bot/qingque/internal/remote"
)

// newVersionCmd prints the build version. It runs without loading the
// config, so only the data directory flag is consulted.
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "qingque %s (%s)\n", resolveVersion(), runtime.Version())
			if commit := remote.ReadCommit(DataPaths{Root: a.dataDir}.Commit()); commit != "" {
				fmt.Fprintf(a.stdout, "assets %s\n", commit)
			}
		},
	}
}
