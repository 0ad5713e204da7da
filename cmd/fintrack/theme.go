package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the display theme",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if _, err := a.sync.Restore(cmd.Context()); err != nil {
				return err
			}
			a.println("Theme: " + string(a.store.State().Theme))
			return nil
		}),
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between the light and dark theme",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			// The theme is local only, so the remote store is not consulted.
			if _, err := a.sync.Restore(cmd.Context()); err != nil {
				return err
			}
			theme := a.ledger.ToggleTheme()
			if err := a.sync.Persist(); err != nil {
				return err
			}
			cli.ApplyTheme(theme)
			a.success("Theme: " + string(theme))
			return nil
		}),
	}

	cmd.AddCommand(toggle)
	return cmd
}
