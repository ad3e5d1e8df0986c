package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/imagecache"
	"github.com/qingque-bot/qingque/internal/remote"
)

func newAssetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Maintain the asset directory",
	}
	cmd.AddCommand(newAssetsSyncCmd(a), newAssetsWarmCmd(a))
	return cmd
}

// ///////////////////////////////////////////////
// Sync
// ///////////////////////////////////////////////

func newAssetsSyncCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the latest asset archive from the mirror",
		Long: `Sync reads commit.index from remote.base_url and, when it names a commit
other than the one last synced, downloads <commit>.zip and unpacks the paths
matching remote.include into the asset directory.

Only one sync runs at a time per data directory.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			opts := remote.DefaultOptions(a.cfg.Remote.BaseURL)
			// The archive runs to hundreds of megabytes; only ctx bounds it.
			opts.Timeout = 0
			client, err := remote.New(opts)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(a.paths.Cache(), 0o755); err != nil {
				return fmt.Errorf("create cache dir: %w", err)
			}
			var res remote.SyncResult
			err = withLock(a.paths.Lock(), func() error {
				var syncErr error
				res, syncErr = client.Sync(cmd.Context(), remote.SyncOptions{
					Root:      a.assetDir().Root,
					StateFile: a.paths.Commit(),
					Include:   a.cfg.Remote.Include,
					Force:     force,
					TempDir:   a.paths.Cache(),
				})
				return syncErr
			})
			if err != nil {
				return err
			}
			if !res.Updated {
				fmt.Fprintf(a.stdout, "assets up to date at %s\n", res.Commit)
				return nil
			}
			from := res.Previous
			if from == "" {
				from = "none"
			}
			fmt.Fprintf(a.stdout, "assets updated %s -> %s: %d files written, %d skipped\n",
				from, res.Commit, res.Files, res.Skipped)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "download even when the commit is unchanged")
	return cmd
}

// ///////////////////////////////////////////////
// Warm
// ///////////////////////////////////////////////

func newAssetsWarmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "warm [pattern...]",
		Short: "Check that the asset tree loads",
		Long: `Warm loads the asset index for the card language and decodes every image
matching assets.preload and the given doublestar patterns, reporting how many
loaded. Use it after a sync to catch a broken tree before rendering.`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tag, err := a.tag()
			if err != nil {
				return err
			}
			root := a.assetDir().Root

			reg := assets.NewRegistry(root)
			if _, err := reg.Acquire(ctx, tag); err != nil {
				return fmt.Errorf("load %s index: %w", tag, err)
			}
			reg.Release(tag)

			patterns := append(append([]string{}, a.cfg.Assets.Preload...), args...)
			images := imagecache.New(root)
			defer images.Clear()
			n, err := images.Preload(ctx, patterns...)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s index loaded, %d images decoded from %d patterns\n", tag, n, len(patterns))
			return nil
		}),
	}
}
