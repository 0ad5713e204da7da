// Package syncer keeps the remote record store consistent with the local state. It
// hydrates the store from the remote collections on startup and login, and pushes a
// full reconciliation after local data changes settle.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/localcache"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/state"
)

// DefaultDebounce is the quiet period after the last change before a sync starts.
const DefaultDebounce = time.Second

// ErrSkipped is returned by SyncNow when the guard rejects the run.
var ErrSkipped = errors.New("sync skipped")

// Controller coordinates the store with the remote collections.
type Controller struct {
	store    *state.Store
	remote   service.RemoteStore
	auth     service.Authenticator
	cache    service.Cache
	progress ProgressFunc
	timer    *time.Timer

	// initializedFor is the user the current state was pulled for.
	initializedFor string
	debounce       time.Duration

	mu         sync.Mutex
	hydrated   atomic.Bool
	syncing    atomic.Bool
	loggingOut atomic.Bool
}

// ProgressFunc is told about each remote call of a reconciliation.
type ProgressFunc func(kind string, done, total int)

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period used by Run.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithProgress installs a progress callback for reconciliations.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Controller) { c.progress = fn }
}

// NewController wires a controller to its collaborators.
func NewController(store *state.Store, remote service.RemoteStore, auth service.Authenticator, cache service.Cache, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		remote:   remote,
		auth:     auth,
		cache:    cache,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrated reports whether the state was pulled from the remote store.
func (c *Controller) Hydrated() bool {
	return c.hydrated.Load()
}

// Initialize resolves the current user and replaces the state with the user's remote
// collections. It does nothing when the state was already pulled for that user. A
// remote failure leaves an empty authenticated state and outbound sync disabled
// until a later Initialize succeeds.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	theme := localcache.LoadTheme(c.cache)

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve current user: %w", err)
	}
	if user == nil {
		c.initializedFor = ""
		c.hydrated.Store(false)
		snapshot := state.Initial()
		snapshot.Theme = theme
		c.store.Dispatch(state.Hydrate{Snapshot: snapshot})
		return nil
	}

	if c.initializedFor == user.ID && c.hydrated.Load() {
		slog.Debug("state already initialized", "user_id", user.ID)
		return nil
	}

	snapshot, err := c.pull(ctx, user.ID)
	snapshot.Auth = state.Auth{User: user, Authenticated: true}
	snapshot.Theme = theme
	c.store.Dispatch(state.Hydrate{Snapshot: snapshot})
	c.initializedFor = user.ID

	if err != nil {
		c.hydrated.Store(false)
		common.LogError(err, "Failed to load remote data, starting empty", common.Fields{"user_id": user.ID})
		return common.NewUserError("Could not load your data from the server", err)
	}

	c.hydrated.Store(true)
	slog.Info("Loaded remote data",
		"user_id", user.ID,
		"accounts", len(snapshot.Accounts),
		"credit_cards", len(snapshot.CreditCards),
		"transactions", len(snapshot.Transactions),
		"categories", len(snapshot.Categories))
	return nil
}

// pull fetches the four collections of userID in parallel. New users get the default
// categories. On error the returned state is empty.
func (c *Controller) pull(ctx context.Context, userID string) (state.State, error) {
	var snapshot state.State

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := c.remote.Accounts().FetchAll(gctx, userID)
		snapshot.Accounts = accounts
		return wrapKind(KindAccounts, err)
	})
	g.Go(func() error {
		cards, err := c.remote.CreditCards().FetchAll(gctx, userID)
		snapshot.CreditCards = cards
		return wrapKind(KindCreditCards, err)
	})
	g.Go(func() error {
		txns, err := c.remote.Transactions().FetchAll(gctx, userID)
		snapshot.Transactions = txns
		return wrapKind(KindTransactions, err)
	})
	g.Go(func() error {
		cats, err := c.remote.Categories().FetchAll(gctx, userID)
		snapshot.Categories = cats
		return wrapKind(KindCategories, err)
	})
	if err := g.Wait(); err != nil {
		return state.State{}, err
	}

	if len(snapshot.Categories) == 0 {
		cats, err := c.seedCategories(ctx, userID)
		if err != nil {
			return state.State{}, err
		}
		snapshot.Categories = cats
	}

	model.SortByDateDesc(snapshot.Transactions)
	return snapshot, nil
}

func (c *Controller) seedCategories(ctx context.Context, userID string) ([]model.Category, error) {
	categories := c.remote.Categories()
	for _, cat := range model.DefaultCategories() {
		if _, err := categories.Insert(ctx, userID, cat); err != nil {
			common.LogError(err, "Failed to create default category", common.Fields{"id": cat.ID})
		}
	}
	cats, err := categories.FetchAll(ctx, userID)
	return cats, wrapKind(KindCategories, err)
}

// Login authenticates and pulls the user's data.
func (c *Controller) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	return user, c.afterAuthentication(ctx, user)
}

// Register creates a user, logs it in and pulls its (default) data.
func (c *Controller) Register(ctx context.Context, email, password string) (model.User, error) {
	user, err := c.auth.Register(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	return user, c.afterAuthentication(ctx, user)
}

func (c *Controller) afterAuthentication(ctx context.Context, user model.User) error {
	c.store.Dispatch(state.Login{User: user})
	c.mu.Lock()
	if c.initializedFor != user.ID {
		c.hydrated.Store(false)
	}
	c.mu.Unlock()
	return c.Initialize(ctx)
}

// Logout cancels any pending sync, forgets the user and resets the state. The theme
// survives.
func (c *Controller) Logout(ctx context.Context) error {
	c.loggingOut.Store(true)
	defer c.loggingOut.Store(false)

	c.mu.Lock()
	c.stopTimerLocked()
	c.hydrated.Store(false)
	c.initializedFor = ""
	c.mu.Unlock()

	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	next := c.store.Dispatch(state.Logout{})

	if err := c.cache.Delete(localcache.KeyState); err != nil {
		return fmt.Errorf("failed to clear local snapshot: %w", err)
	}
	if err := localcache.SetPending(c.cache, false); err != nil {
		return fmt.Errorf("failed to clear pending sync flag: %w", err)
	}
	return localcache.SaveTheme(c.cache, next.Theme)
}

// Restore hydrates the store from the local snapshot without contacting the remote
// store. The snapshot is used only when it belongs to the current user. Outbound
// sync stays disabled until Initialize succeeds.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to resolve current user: %w", err)
	}

	snap, ok := localcache.LoadState(c.cache)
	snapshot := state.Initial()
	if ok && user != nil && snap.UserID == user.ID {
		snapshot = snap.State
	} else {
		ok = false
	}
	if user != nil {
		snapshot.Auth = state.Auth{User: user, Authenticated: true}
	}
	snapshot.Theme = localcache.LoadTheme(c.cache)

	c.store.Dispatch(state.Hydrate{Snapshot: snapshot})
	return ok, nil
}

// Resume hydrates the store from the current user's local snapshot and enables
// outbound sync, making the snapshot authoritative: the next sync pushes it and
// deletes remote records it lacks. It reports false, leaving sync disabled, when no
// snapshot of the current user exists.
func (c *Controller) Resume(ctx context.Context) (bool, error) {
	ok, err := c.Restore(ctx)
	if err != nil || !ok {
		return false, err
	}

	c.mu.Lock()
	c.initializedFor = c.store.State().UserID()
	c.hydrated.Store(true)
	c.mu.Unlock()
	return true, nil
}

// Load prepares the state for a session. Changes left unpushed by an earlier failed
// sync are resumed from the snapshot and pushed first; otherwise the state is pulled
// with Initialize.
func (c *Controller) Load(ctx context.Context) error {
	if localcache.Pending(c.cache) {
		resumed, err := c.Resume(ctx)
		if err != nil {
			return err
		}
		if resumed {
			if _, err := c.SyncNow(ctx); err != nil {
				common.LogError(err, "Pending changes are still not synced", nil)
			}
			return nil
		}
	}
	return c.Initialize(ctx)
}

// Persist writes the current state and theme to the local cache.
func (c *Controller) Persist() error {
	st := c.store.State()
	if err := localcache.SaveTheme(c.cache, st.Theme); err != nil {
		return err
	}
	if st.UserID() == "" {
		return nil
	}
	return localcache.SaveState(c.cache, st)
}

// SyncNow reconciles every collection with the remote store. It returns ErrSkipped
// when the state is not hydrated, nobody is logged in, a logout is in progress or
// another sync is running. Once started, a reconciliation is not cancelled by ctx.
func (c *Controller) SyncNow(ctx context.Context) (Result, error) {
	switch {
	case !c.hydrated.Load():
		return Result{}, fmt.Errorf("%w: state not loaded from remote", ErrSkipped)
	case c.loggingOut.Load():
		return Result{}, fmt.Errorf("%w: logout in progress", ErrSkipped)
	}

	st := c.store.State()
	userID := st.UserID()
	if userID == "" {
		return Result{}, fmt.Errorf("%w: %w", ErrSkipped, common.ErrNotAuthenticated)
	}

	if !c.syncing.CompareAndSwap(false, true) {
		return Result{}, fmt.Errorf("%w: sync already running", ErrSkipped)
	}
	defer c.syncing.Store(false)

	start := time.Now()
	result := c.reconcileAll(context.WithoutCancel(ctx), userID, st)
	result.Duration = time.Since(start)

	if err := localcache.SetPending(c.cache, result.Err() != nil); err != nil {
		common.LogError(err, "Failed to record pending sync", nil)
	}

	slog.Info("Sync finished",
		"user_id", userID,
		"inserted", result.Inserted(),
		"updated", result.Updated(),
		"deleted", result.Deleted(),
		"failed_kinds", len(result.Failed()),
		"duration", result.Duration)

	return result, result.Err()
}

// Run persists every change to the local cache and schedules a sync after data
// changes, until ctx is done. A change arriving during the quiet period restarts it.
func (c *Controller) Run(ctx context.Context) error {
	changes, cancel := c.store.Subscribe(64)
	defer cancel()
	defer func() {
		c.mu.Lock()
		c.stopTimerLocked()
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := c.Persist(); err != nil {
				common.LogError(err, "Failed to save local snapshot", nil)
			}
			if change.Action.ChangesData() {
				c.schedule(ctx)
			}
		}
	}
}

func (c *Controller) schedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := c.SyncNow(ctx); err != nil {
			if errors.Is(err, ErrSkipped) {
				slog.Debug("Sync skipped", "reason", err)
				return
			}
			common.LogError(err, "Sync completed with errors", nil)
		}
	})
}

// stopTimerLocked cancels a pending sync. Callers hold c.mu.
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func wrapKind(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", kind, err)
}
