package main

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/tui"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := a.sync.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					common.LogError(err, "Background sync stopped", nil)
				}
			}()

			inline, _ := cmd.Flags().GetBool("inline")
			opts := []tui.Option{tui.WithSyncer(a.sync), tui.WithMoney(a.money)}
			if inline {
				opts = append(opts, tui.WithInline())
			}
			runErr := tui.Run(ctx, a.store, a.ledger, opts...)

			cancel()
			wg.Wait()

			// Changes made in the last quiet period have not been pushed yet.
			if err := a.commit(cmd.Context()); err != nil {
				return errors.Join(runErr, err)
			}
			return runErr
		}),
	}
	cmd.Flags().Bool("inline", false, "render inline instead of using the alternate screen")
	return cmd
}
