package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/fintrack/internal/auth"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/localcache"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/testutil"
)

type harness struct {
	ctrl   *Controller
	store  *state.Store
	remote *testutil.MemoryRemote
	cache  *localcache.Memory
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	remote := testutil.NewMemoryRemote()
	cache := localcache.NewMemory()
	store := state.NewStore(state.Initial())
	authSvc := auth.NewService(remote, cache, auth.WithCost(bcrypt.MinCost))
	return &harness{
		ctrl:   NewController(store, remote, authSvc, cache, opts...),
		store:  store,
		remote: remote,
		cache:  cache,
	}
}

func (h *harness) register(t *testing.T) model.User {
	t.Helper()
	user, err := h.ctrl.Register(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	return user
}

func TestInitialize_Unauthenticated(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, localcache.SaveTheme(h.cache, model.ThemeDark))

	require.NoError(t, h.ctrl.Initialize(context.Background()))

	st := h.store.State()
	assert.False(t, st.Auth.Authenticated)
	assert.Equal(t, model.ThemeDark, st.Theme)
	assert.Empty(t, st.Accounts)
	assert.False(t, h.ctrl.Hydrated())

	_, err := h.ctrl.SyncNow(context.Background())
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestRegister_SeedsDefaultCategories(t *testing.T) {
	h := newHarness(t)
	user := h.register(t)

	st := h.store.State()
	assert.Equal(t, user.ID, st.UserID())
	assert.Len(t, st.Categories, len(model.DefaultCategories()))
	assert.True(t, h.ctrl.Hydrated())

	remoteCats, err := h.remote.Categories().FetchAll(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, remoteCats, len(model.DefaultCategories()))
}

func TestInitialize_RunsOncePerUser(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	h.remote.ResetCalls()

	require.NoError(t, h.ctrl.Initialize(context.Background()))
	assert.Equal(t, 0, h.remote.Calls(testutil.KindAccounts, testutil.OpFetch))
}

func TestInitialize_LoadsRemoteDataSorted(t *testing.T) {
	h := newHarness(t)
	user := h.register(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		_, err := h.remote.Transactions().Insert(ctx, user.ID, model.Transaction{
			ID: "t-" + date, AccountID: "acc", Type: model.TransactionTypeIncome,
			Date: model.MustParseDate(date), Amount: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	// A fresh process: same cache, new store and controller.
	store := state.NewStore(state.Initial())
	ctrl := NewController(store, h.remote, auth.NewService(h.remote, h.cache, auth.WithCost(bcrypt.MinCost)), h.cache)
	require.NoError(t, ctrl.Initialize(ctx))

	st := store.State()
	require.Len(t, st.Transactions, 3)
	assert.True(t, model.IsSortedByDateDesc(st.Transactions))
	assert.True(t, st.Auth.Authenticated)
}

func TestInitialize_RemoteFailureFallsBackToEmpty(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	ctx := context.Background()

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "local", Active: true}})

	store := state.NewStore(state.Initial())
	ctrl := NewController(store, h.remote, auth.NewService(h.remote, h.cache, auth.WithCost(bcrypt.MinCost)), h.cache)
	h.remote.FailOn(testutil.KindTransactions, testutil.OpFetch, errors.New("network down"))

	err := ctrl.Initialize(ctx)
	require.Error(t, err)

	st := store.State()
	assert.True(t, st.Auth.Authenticated)
	assert.Empty(t, st.Accounts)
	assert.Empty(t, st.Categories)

	_, err = ctrl.SyncNow(ctx)
	assert.ErrorIs(t, err, ErrSkipped)

	h.remote.FailOn(testutil.KindTransactions, testutil.OpFetch, nil)
	require.NoError(t, ctrl.Initialize(ctx))
	assert.True(t, ctrl.Hydrated())
}

func TestSyncNow_Reconciles(t *testing.T) {
	h := newHarness(t)
	user := h.register(t)
	ctx := context.Background()

	_, err := h.remote.Accounts().Insert(ctx, user.ID, model.Account{ID: "stale", BankName: "Old"})
	require.NoError(t, err)
	_, err = h.remote.Accounts().Insert(ctx, user.ID, model.Account{ID: "kept", BankName: "Before"})
	require.NoError(t, err)

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "kept", BankName: "After", Active: true}})
	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "new", BankName: "New", Active: true}})

	result, err := h.ctrl.SyncNow(ctx)
	require.NoError(t, err)

	var accounts KindResult
	for _, k := range result.Kinds {
		if k.Kind == KindAccounts {
			accounts = k
		}
	}
	assert.Equal(t, 1, accounts.Updated)
	assert.Equal(t, 1, accounts.Inserted)
	assert.Equal(t, 1, accounts.Deleted)

	remote, err := h.remote.Accounts().FetchAll(ctx, user.ID)
	require.NoError(t, err)
	names := map[string]string{}
	for _, a := range remote {
		names[a.ID] = a.BankName
	}
	assert.Equal(t, map[string]string{"kept": "After", "new": "New"}, names)
}

func TestSyncNow_FailingKindDoesNotStopOthers(t *testing.T) {
	h := newHarness(t)
	user := h.register(t)
	ctx := context.Background()

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", BankName: "A", Active: true}})
	h.store.Dispatch(state.AddCreditCard{CreditCard: model.CreditCard{ID: "card", Name: "Visa"}})
	boom := errors.New("insert rejected")
	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, boom)

	result, err := h.ctrl.SyncNow(ctx)
	require.ErrorIs(t, err, boom)
	require.Len(t, result.Failed(), 1)
	assert.Equal(t, KindAccounts, result.Failed()[0].Kind)

	cards, err := h.remote.CreditCards().FetchAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	// The next run retries from scratch.
	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, nil)
	_, err = h.ctrl.SyncNow(ctx)
	require.NoError(t, err)
	accounts, err := h.remote.Accounts().FetchAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestSyncNow_SkipsWhileInFlight(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	h.remote.ResetCalls()

	release := h.remote.Block()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := h.ctrl.SyncNow(context.Background())
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return h.remote.Calls(testutil.KindCategories, testutil.OpFetch) == 1
	}, time.Second, time.Millisecond)

	_, err := h.ctrl.SyncNow(context.Background())
	assert.ErrorIs(t, err, ErrSkipped)

	release()
	wg.Wait()
}

func TestSyncNow_ReportsProgress(t *testing.T) {
	var mu sync.Mutex
	last := map[string]int{}
	h := newHarness(t, WithProgress(func(kind string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.LessOrEqual(t, done, total)
		last[kind] = total
	}))
	h.register(t)
	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", Active: true}})

	_, err := h.ctrl.SyncNow(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, last[KindAccounts])
	assert.Equal(t, len(model.DefaultCategories()), last[KindCategories])
	assert.Equal(t, 0, last[KindTransactions])
}

func TestRun_DebouncesDataChanges(t *testing.T) {
	h := newHarness(t, WithDebounce(30*time.Millisecond))
	user := h.register(t)
	h.remote.ResetCalls()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(ctx) }()

	// Give Run time to subscribe.
	time.Sleep(10 * time.Millisecond)
	for _, id := range []string{"a1", "a2", "a3"} {
		h.store.Dispatch(state.AddAccount{Account: model.Account{ID: id, Active: true}})
	}

	require.Eventually(t, func() bool {
		accounts, err := h.remote.Accounts().FetchAll(context.Background(), user.ID)
		return err == nil && len(accounts) == 3
	}, time.Second, 5*time.Millisecond)

	// One coalesced sync plus the FetchAll calls made by this test.
	assert.Equal(t, 3, h.remote.Calls(testutil.KindAccounts, testutil.OpInsert))
	assert.Equal(t, 1, h.remote.Calls(testutil.KindCategories, testutil.OpFetch))

	snap, ok := localcache.LoadState(h.cache)
	require.True(t, ok)
	assert.Len(t, snap.State.Accounts, 3)

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_ThemeChangesDoNotSync(t *testing.T) {
	h := newHarness(t, WithDebounce(10*time.Millisecond))
	h.register(t)
	h.remote.ResetCalls()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.ctrl.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	h.store.Dispatch(state.ToggleTheme{})

	require.Eventually(t, func() bool {
		return localcache.LoadTheme(h.cache) == model.ThemeDark
	}, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool {
		return h.remote.Calls(testutil.KindCategories, testutil.OpFetch) > 0
	}, 60*time.Millisecond, 10*time.Millisecond)
}

func TestLogout_PreservesThemeAndStopsSync(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	ctx := context.Background()

	h.store.Dispatch(state.ToggleTheme{})
	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", Active: true}})
	require.NoError(t, h.ctrl.Persist())

	require.NoError(t, h.ctrl.Logout(ctx))

	st := h.store.State()
	assert.False(t, st.Auth.Authenticated)
	assert.Empty(t, st.Accounts)
	assert.Equal(t, model.ThemeDark, st.Theme)
	assert.Equal(t, model.ThemeDark, localcache.LoadTheme(h.cache))

	_, found, err := h.cache.Get(localcache.KeyState)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = h.ctrl.SyncNow(ctx)
	assert.ErrorIs(t, err, ErrSkipped)

	// Logging back in pulls again.
	_, err = h.ctrl.Login(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, h.ctrl.Hydrated())
	assert.Len(t, h.store.State().Categories, len(model.DefaultCategories()))
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	require.NoError(t, h.ctrl.Logout(context.Background()))

	_, err := h.ctrl.Login(context.Background(), "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, h.store.State().Auth.Authenticated)
}

func TestRestore(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", BankName: "Cached", Active: true}})
	require.NoError(t, h.ctrl.Persist())

	store := state.NewStore(state.Initial())
	ctrl := NewController(store, h.remote, auth.NewService(h.remote, h.cache, auth.WithCost(bcrypt.MinCost)), h.cache)

	ok, err := ctrl.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	acc, found := store.State().Account("acc")
	require.True(t, found)
	assert.Equal(t, "Cached", acc.BankName)
	assert.False(t, ctrl.Hydrated())
}

func (h *harness) reopen() (*Controller, *state.Store) {
	store := state.NewStore(state.Initial())
	authSvc := auth.NewService(h.remote, h.cache, auth.WithCost(bcrypt.MinCost))
	return NewController(store, h.remote, authSvc, h.cache), store
}

func TestSyncNow_TracksPendingChanges(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	ctx := context.Background()

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", BankName: "A", Active: true}})
	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, errors.New("offline"))
	_, err := h.ctrl.SyncNow(ctx)
	require.Error(t, err)
	assert.True(t, localcache.Pending(h.cache))

	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, nil)
	_, err = h.ctrl.SyncNow(ctx)
	require.NoError(t, err)
	assert.False(t, localcache.Pending(h.cache))
}

func TestLoad_PushesPendingChanges(t *testing.T) {
	h := newHarness(t)
	user := h.register(t)
	ctx := context.Background()

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "acc", BankName: "Offline", Active: true}})
	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, errors.New("offline"))
	_, err := h.ctrl.SyncNow(ctx)
	require.Error(t, err)
	require.NoError(t, h.ctrl.Persist())
	h.remote.FailOn(testutil.KindAccounts, testutil.OpInsert, nil)

	ctrl, store := h.reopen()
	require.NoError(t, ctrl.Load(ctx))

	assert.True(t, ctrl.Hydrated())
	assert.False(t, localcache.Pending(h.cache))
	_, found := store.State().Account("acc")
	assert.True(t, found)
	accounts, err := h.remote.Accounts().FetchAll(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Offline", accounts[0].BankName)
}

func TestLoad_WithoutPendingPullsRemote(t *testing.T) {
	h := newHarness(t)
	h.register(t)

	h.store.Dispatch(state.AddAccount{Account: model.Account{ID: "stale", BankName: "Stale", Active: true}})
	require.NoError(t, h.ctrl.Persist())

	ctrl, store := h.reopen()
	require.NoError(t, ctrl.Load(context.Background()))

	assert.True(t, ctrl.Hydrated())
	_, found := store.State().Account("stale")
	assert.False(t, found)
	assert.Len(t, store.State().Categories, len(model.DefaultCategories()))
}

func TestResume_WithoutSnapshot(t *testing.T) {
	h := newHarness(t)

	ok, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, h.ctrl.Hydrated())
}
