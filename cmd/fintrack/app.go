package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/auth"
	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/localcache"
	"github.com/Veraticus/fintrack/internal/remote"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/Veraticus/fintrack/internal/syncer"
)

// app wires the collaborators shared by every command.
type app struct {
	out    io.Writer
	remote service.RemoteStore
	closer io.Closer
	cfg    *config.Config
	cache  *localcache.FileCache
	store  *state.Store
	auth   *auth.Service
	sync   *syncer.Controller
	ledger *ledger.Service
	money  *cli.Money
}

// newApp loads the configuration and opens the local cache and the remote store.
func newApp(cmd *cobra.Command, opts ...syncer.Option) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	money, err := cli.NewMoney(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cache, err := localcache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	a := &app{
		out:   cmd.OutOrStdout(),
		cfg:   cfg,
		cache: cache,
		money: money,
	}

	var users service.UserStore
	switch cfg.Remote.Driver {
	case config.DriverHTTP:
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.Remote.URL,
			APIKey:  cfg.Remote.APIKey,
			Timeout: cfg.Remote.Timeout,
		})
		if err != nil {
			return nil, err
		}
		a.remote, users = client, client
	default:
		db, err := storage.NewSQLiteStorage(cfg.Remote.Path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(cmd.Context()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.remote, users, a.closer = db, db, db
	}

	cli.ApplyTheme(localcache.LoadTheme(cache))

	a.store = state.NewStore(state.Initial())
	a.auth = auth.NewService(users, cache)
	opts = append([]syncer.Option{syncer.WithDebounce(cfg.Debounce)}, opts...)
	a.sync = syncer.NewController(a.store, a.remote, a.auth, cache, opts...)
	a.ledger = ledger.NewService(a.store)

	slog.Debug("Application ready",
		"driver", cfg.Remote.Driver,
		"cache", cache.Path())
	return a, nil
}

// Close releases the remote store.
func (a *app) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		slog.Warn("Failed to close remote store", "error", err)
	}
}

// load brings the state up to date with the remote store, pushing changes left over
// from a failed sync first. When the remote store is unreachable the last local snapshot is shown instead and edits are refused.
func (a *app) load(ctx context.Context) error {
	err := a.sync.Load(ctx)
	if err == nil {
		return nil
	}

	restored, restoreErr := a.sync.Restore(ctx)
	if restoreErr != nil {
		return errors.Join(err, restoreErr)
	}
	a.warn(common.UserMessage(err))
	if restored {
		a.info("Showing your last saved data. Changes are disabled until the server is reachable.")
	}
	return nil
}

// requireLogin fails unless a user is logged in.
func (a *app) requireLogin() error {
	if !a.store.State().Auth.Authenticated {
		return common.NewUserError("Not logged in. Run: fintrack auth login", common.ErrNotAuthenticated)
	}
	return nil
}

// view loads the state for a read-only command.
func (a *app) view(ctx context.Context) (state.State, error) {
	if err := a.load(ctx); err != nil {
		return state.State{}, err
	}
	if err := a.requireLogin(); err != nil {
		return state.State{}, err
	}
	return a.store.State(), nil
}

// mutate loads the state, applies fn and pushes the result.
func (a *app) mutate(ctx context.Context, fn func() error) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.sync.Hydrated() {
		return common.NewUserError("The server is unreachable, try again later", syncer.ErrSkipped)
	}
	if err := fn(); err != nil {
		return err
	}
	return a.commit(ctx)
}

// commit pushes local changes and saves the local snapshot.
func (a *app) commit(ctx context.Context) error {
	result, err := a.sync.SyncNow(ctx)
	switch {
	case errors.Is(err, syncer.ErrSkipped):
		slog.Debug("Sync skipped", "reason", err)
	case err != nil:
		for _, failed := range result.Failed() {
			common.LogError(failed.Err, "Failed to sync", common.Fields{"kind": failed.Kind})
		}
		a.warn("Some changes could not be synced. Run: fintrack sync")
	}
	if err := a.sync.Persist(); err != nil {
		return fmt.Errorf("failed to save local data: %w", err)
	}
	return nil
}

func (a *app) println(s string) {
	if _, err := fmt.Fprintln(a.out, s); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func (a *app) success(msg string) { a.println(cli.FormatSuccess(msg)) }
func (a *app) info(msg string)    { a.println(cli.FormatInfo(msg)) }
func (a *app) warn(msg string)    { a.println(cli.FormatWarning(msg)) }

// withApp opens the application for the duration of run.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
