package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/localcache"
)

// resetCmd clears the local cache. It does not need a working remote store, so it
// only reads the configuration.
func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the local session, snapshot and theme",
		Long: `Reset deletes the local cache: the saved session, the offline snapshot
and the theme. Data already synced to the remote store is not touched, but
changes that were never synced are lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			cache, err := localcache.Open(cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("failed to open local cache: %w", err)
			}

			out := cmd.OutOrStdout()
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				if localcache.Pending(cache) {
					fmt.Fprintln(out, cli.FormatWarning("Some local changes were never synced and will be lost."))
				}
				ok, err := cli.NewNonBlockingReader(cmd.InOrStdin()).Confirm(cmd.Context(), out, "Clear all local data?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Reset cancelled"))
					return nil
				}
			}

			if err := cache.Clear(); err != nil {
				return fmt.Errorf("failed to clear local cache: %w", err)
			}
			fmt.Fprintln(out, cli.FormatSuccess("Local data cleared"))
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")
	return cmd
}
