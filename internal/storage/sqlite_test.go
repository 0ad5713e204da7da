package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func intRef(n int) *int { return &n }

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_transactions_user_date'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestNewSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestAccounts_CRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accounts := store.Accounts()

	acc := model.Account{
		ID:             "acc-1",
		BankName:       "Nubank",
		AccountNumber:  "1234-5",
		InitialBalance: decimal.RequireFromString("1500.25"),
		Active:         true,
	}

	saved, err := accounts.Insert(ctx, "user-1", acc)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, saved.ID)
	assert.True(t, acc.InitialBalance.Equal(saved.InitialBalance))
	assert.True(t, saved.Active)

	_, err = accounts.Insert(ctx, "user-1", acc)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	acc.BankName = "Itaú"
	acc.Active = false
	updated, err := accounts.Update(ctx, "user-1", acc)
	require.NoError(t, err)
	assert.Equal(t, "Itaú", updated.BankName)
	assert.False(t, updated.Active)

	all, err := accounts.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Itaú", all[0].BankName)

	require.NoError(t, accounts.Delete(ctx, "user-1", acc.ID))
	err = accounts.Delete(ctx, "user-1", acc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAccounts_ScopedByUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accounts := store.Accounts()

	// The same id may exist for two different users.
	_, err := accounts.Insert(ctx, "user-1", model.Account{ID: "acc-1", BankName: "A", Active: true})
	require.NoError(t, err)
	_, err = accounts.Insert(ctx, "user-2", model.Account{ID: "acc-1", BankName: "B", Active: true})
	require.NoError(t, err)

	mine, err := accounts.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].BankName)

	_, err = accounts.Update(ctx, "user-3", model.Account{ID: "acc-1", BankName: "C"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreditCards_CRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	cards := store.CreditCards()

	card := model.CreditCard{
		ID:                "card-1",
		Name:              "Roxinho",
		LastFourDigits:    "4321",
		Flag:              "Mastercard",
		InvoiceClosingDay: intRef(3),
		InvoiceDueDay:     intRef(10),
	}
	saved, err := cards.Insert(ctx, "user-1", card)
	require.NoError(t, err)
	require.NotNil(t, saved.InvoiceClosingDay)
	assert.Equal(t, 3, *saved.InvoiceClosingDay)
	assert.Equal(t, "4321", saved.LastFourDigits)
	assert.True(t, saved.Active())

	card.Inactive = true
	card.InvoiceDueDay = nil
	card.LastFourDigits = ""
	updated, err := cards.Update(ctx, "user-1", card)
	require.NoError(t, err)
	assert.False(t, updated.Active())
	assert.Nil(t, updated.InvoiceDueDay)
	assert.Empty(t, updated.LastFourDigits)

	require.NoError(t, cards.Delete(ctx, "user-1", card.ID))
	all, err := cards.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransactions_FetchAllNewestFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	txns := store.Transactions()

	for i, date := range []string{"2024-01-10", "2024-03-01", "2024-02-15"} {
		_, err := txns.Insert(ctx, "user-1", model.Transaction{
			ID:          "txn-" + date,
			Date:        model.MustParseDate(date),
			Amount:      decimal.NewFromInt(int64(10 * (i + 1))),
			AccountID:   "acc-1",
			Category:    "Moradia",
			Description: "rent",
			Type:        model.TransactionTypeExpense,
			Paid:        true,
		})
		require.NoError(t, err)
	}

	all, err := txns.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-01", all[0].Date.String())
	assert.Equal(t, "2024-02-15", all[1].Date.String())
	assert.Equal(t, "2024-01-10", all[2].Date.String())
	assert.True(t, model.IsSortedByDateDesc(all))
}

func TestTransactions_RoundTripsCardCharge(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	txns := store.Transactions()

	charge := model.Transaction{
		ID:           "txn-1",
		Date:         model.MustParseDate("2024-05-20"),
		Amount:       decimal.RequireFromString("89.90"),
		CreditCardID: "card-1",
		Category:     "Lazer",
		Type:         model.TransactionTypeCreditCardExpense,
	}
	saved, err := txns.Insert(ctx, "user-1", charge)
	require.NoError(t, err)
	assert.Empty(t, saved.AccountID)
	assert.True(t, saved.IsOpenCharge())

	charge.Paid = true
	charge.PaidInInvoiceID = "pay-1"
	updated, err := txns.Update(ctx, "user-1", charge)
	require.NoError(t, err)
	assert.True(t, updated.Paid)
	assert.Equal(t, "pay-1", updated.PaidInInvoiceID)
	assert.True(t, charge.Amount.Equal(updated.Amount))
}

func TestTransactions_RejectsInvalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		txn  model.Transaction
	}{
		{
			name: "unknown type",
			txn:  model.Transaction{ID: "t", Date: model.MustParseDate("2024-01-01"), AccountID: "a", Type: "refund"},
		},
		{
			name: "missing date",
			txn:  model.Transaction{ID: "t", AccountID: "a", Type: model.TransactionTypeIncome},
		},
		{
			name: "expense without account",
			txn:  model.Transaction{ID: "t", Date: model.MustParseDate("2024-01-01"), Type: model.TransactionTypeExpense},
		},
		{
			name: "card charge without card",
			txn:  model.Transaction{ID: "t", Date: model.MustParseDate("2024-01-01"), Type: model.TransactionTypeCreditCardExpense},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Transactions().Insert(ctx, "user-1", tt.txn)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestCategories_OrderedByName(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	categories := store.Categories()

	for _, cat := range model.DefaultCategories() {
		_, err := categories.Insert(ctx, "user-1", cat)
		require.NoError(t, err)
	}

	all, err := categories.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, len(model.DefaultCategories()))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}

	renamed := all[0]
	renamed.Name = "Zzz"
	updated, err := categories.Update(ctx, "user-1", renamed)
	require.NoError(t, err)
	assert.Equal(t, "Zzz", updated.Name)
	assert.True(t, updated.IsDefault)

	_, err = categories.Insert(ctx, "user-1", model.Category{ID: "bad", Name: "Bad", Type: "transfer"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestUsers_CreateAndFind(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, " Ana@Example.com ", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = store.CreateUser(ctx, "ana@example.com", "other")
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	rec, err := store.FindUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user, rec.User)
	assert.Equal(t, "hash", rec.PasswordHash)

	_, err = store.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCollections_ValidateArguments(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.Accounts().FetchAll(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)

	err = store.Categories().Delete(ctx, "user-1", "")
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // exercising the nil context guard
	_, err = store.CreditCards().FetchAll(nil, "user-1")
	assert.ErrorIs(t, err, ErrNilContext)
}
