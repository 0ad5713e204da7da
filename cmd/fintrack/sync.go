package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/syncer"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local changes to the remote store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Syncing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
			progress := func(kind string, done, total int) {
				bar.ChangeMax(total)
				bar.Describe(fmt.Sprintf("Syncing %s", kind))
				_ = bar.Set(done)
			}

			a, err := newApp(cmd, syncer.WithProgress(progress))
			if err != nil {
				return err
			}
			defer a.Close()

			// The local snapshot wins; without one there is nothing to push.
			resumed, err := a.sync.Resume(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			if !resumed {
				if err := a.sync.Initialize(cmd.Context()); err != nil {
					return err
				}
			}

			result, err := a.sync.SyncNow(cmd.Context())
			_ = bar.Finish()
			if errors.Is(err, syncer.ErrSkipped) {
				a.info("Nothing to sync")
				return nil
			}

			a.println(cli.RenderTable([]string{"Collection", "Inserted", "Updated", "Deleted", "Status"}, syncRows(result)))
			if persistErr := a.sync.Persist(); persistErr != nil {
				return persistErr
			}
			if err != nil {
				return fmt.Errorf("sync finished with errors: %w", err)
			}
			a.success(fmt.Sprintf("Synced in %s", result.Duration.Round(time.Millisecond)))
			return nil
		},
	}
}

func syncRows(result syncer.Result) [][]string {
	rows := make([][]string, 0, len(result.Kinds))
	for _, k := range result.Kinds {
		status := "ok"
		if k.Err != nil {
			status = k.Err.Error()
		}
		rows = append(rows, []string{
			k.Kind,
			fmt.Sprint(k.Inserted),
			fmt.Sprint(k.Updated),
			fmt.Sprint(k.Deleted),
			status,
		})
	}
	return rows
}
