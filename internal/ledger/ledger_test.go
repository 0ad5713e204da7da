package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/testutil"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestLedger(s state.State) (*Service, *state.Store) {
	store := state.NewStore(s)
	return NewService(store, WithIDGenerator(sequentialIDs())), store
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRequiresAuthentication(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().LoggedOut().Build())

	_, err := svc.AddAccount(AccountInput{BankName: "Nubank"})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestAddAccount(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().Build())

	acc, err := svc.AddAccount(AccountInput{BankName: "  Nubank ", InitialBalance: amount("100")})
	require.NoError(t, err)
	assert.Equal(t, "id-1", acc.ID)
	assert.Equal(t, "Nubank", acc.BankName)
	assert.True(t, acc.Active)

	got, ok := store.State().Account("id-1")
	require.True(t, ok)
	assert.Equal(t, acc, got)

	_, err = svc.AddAccount(AccountInput{BankName: " "})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDeleteAccount_BlockedWhileReferenced(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("acc-1", "0").
		WithAccount("acc-2", "0").
		WithExpense("t1", "acc-1", "2024-01-01", "10", "Moradia").
		Build())

	err := svc.DeleteAccount("acc-1")
	require.ErrorIs(t, err, common.ErrAccountInUse)
	_, ok := store.State().Account("acc-1")
	assert.True(t, ok)

	require.NoError(t, svc.DeleteAccount("acc-2"))
	_, ok = store.State().Account("acc-2")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.DeleteAccount("missing"), common.ErrNotFound)
}

func TestDeleteCreditCard_BlockedWhileReferenced(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().
		WithCard("card-1", "Visa").
		WithCard("card-2", "Master").
		WithCharge("c1", "card-1", "2024-01-01", "10", "Lazer").
		Build())

	assert.ErrorIs(t, svc.DeleteCreditCard("card-1"), common.ErrCreditCardInUse)
	assert.NoError(t, svc.DeleteCreditCard("card-2"))
}

func TestAddCreditCard_Validation(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().Build())
	badDay := 32

	tests := []struct {
		name string
		in   CreditCardInput
	}{
		{name: "missing name", in: CreditCardInput{}},
		{name: "bad digits", in: CreditCardInput{Name: "Visa", LastFourDigits: "12"}},
		{name: "bad day", in: CreditCardInput{Name: "Visa", InvoiceDueDay: &badDay}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddCreditCard(tt.in)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}

	card, err := svc.AddCreditCard(CreditCardInput{Name: "Visa", LastFourDigits: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "Visa - Final 1234", card.Label())
	assert.True(t, card.Active())
}

func TestCategories_DefaultGuard(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().Build())

	assert.ErrorIs(t, svc.DeleteCategory("cat-expense-1"), common.ErrDefaultCategory)

	renamed := model.Category{ID: "cat-expense-1", Name: "Casa", Type: model.CategoryTypeExpense}
	assert.ErrorIs(t, svc.UpdateCategory(renamed), common.ErrDefaultCategory)
}

func TestCategories_RenameCascades(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithCategory("pets", "Pets", model.CategoryTypeExpense).
		WithAccount("acc-1", "0").
		WithExpense("t1", "acc-1", "2024-01-01", "10", "Pets").
		WithExpense("t2", "acc-1", "2024-01-02", "10", "Lazer").
		Build())

	require.NoError(t, svc.UpdateCategory(model.Category{ID: "pets", Name: "Animais", Type: model.CategoryTypeExpense}))

	st := store.State()
	t1, _ := st.Transaction("t1")
	t2, _ := st.Transaction("t2")
	assert.Equal(t, "Animais", t1.Category)
	assert.Equal(t, "Lazer", t2.Category)

	require.NoError(t, svc.DeleteCategory("pets"))
	t1, _ = store.State().Transaction("t1")
	assert.Equal(t, model.OtherExpensesCategory, t1.Category)
}

func TestAddCategory_RejectsDuplicates(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().Build())

	_, err := svc.AddCategory("lazer", model.CategoryTypeExpense)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	// Same name, other type is fine.
	cat, err := svc.AddCategory("Lazer", model.CategoryTypeIncome)
	require.NoError(t, err)
	assert.False(t, cat.IsDefault)

	_, err = svc.AddCategory("Gifts", "bonus")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAddTransaction(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("acc-1", "100").
		WithInactiveAccount("old", "0").
		WithCard("card-1", "Visa").
		Build())

	txn, err := svc.AddTransaction(TransactionInput{
		Type:         model.TransactionTypeExpense,
		AccountID:    "acc-1",
		CreditCardID: "card-1",
		Category:     "Moradia",
		Date:         model.MustParseDate("2024-03-01"),
		Amount:       amount("40"),
	})
	require.NoError(t, err)
	assert.Empty(t, txn.CreditCardID, "only the field matching the type is kept")

	st := store.State()
	acc, _ := st.Account("acc-1")
	assert.True(t, report.AccountBalance(acc, st.Transactions).Equal(amount("60")))

	tests := []struct {
		want error
		name string
		in   TransactionInput
	}{
		{
			name: "inactive account",
			in:   TransactionInput{Type: model.TransactionTypeIncome, AccountID: "old", Category: "Salário", Date: model.Today(), Amount: amount("1")},
			want: common.ErrInvalidInput,
		},
		{
			name: "unknown account",
			in:   TransactionInput{Type: model.TransactionTypeIncome, AccountID: "nope", Category: "Salário", Date: model.Today(), Amount: amount("1")},
			want: common.ErrNotFound,
		},
		{
			name: "zero amount",
			in:   TransactionInput{Type: model.TransactionTypeIncome, AccountID: "acc-1", Category: "Salário", Date: model.Today()},
			want: common.ErrInvalidInput,
		},
		{
			name: "category of wrong type",
			in:   TransactionInput{Type: model.TransactionTypeIncome, AccountID: "acc-1", Category: "Moradia", Date: model.Today(), Amount: amount("1")},
			want: common.ErrInvalidInput,
		},
		{
			name: "missing date",
			in:   TransactionInput{Type: model.TransactionTypeCreditCardExpense, CreditCardID: "card-1", Category: "Lazer", Amount: amount("1")},
			want: common.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateTransaction_KeepsSyntheticCategory(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("a", "0").
		WithAccount("b", "0").
		Build())

	expense, _, err := svc.Transfer(TransferInput{
		FromAccountID: "a", ToAccountID: "b", Amount: amount("10"), Date: model.MustParseDate("2024-01-01"),
	})
	require.NoError(t, err)

	expense.Description = "Reserva"
	require.NoError(t, svc.UpdateTransaction(expense))
	got, _ := store.State().Transaction(expense.ID)
	assert.Equal(t, "Reserva", got.Description)
	assert.Equal(t, model.TransferCategory, got.Category)

	assert.ErrorIs(t, svc.UpdateTransaction(model.Transaction{ID: "ghost"}), common.ErrNotFound)
	require.NoError(t, svc.DeleteTransaction(expense.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(expense.ID), common.ErrNotFound)
}

func TestPayInvoice(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("acc-a", "100").
		WithCard("card-k", "Visa").
		WithCharge("c1", "card-k", "2024-01-01", "10", "Lazer").
		WithCharge("c2", "card-k", "2024-01-02", "20", "Lazer").
		WithCharge("c3", "card-k", "2024-01-03", "30", "Lazer").
		Build())

	payment, err := svc.PayInvoice(PaymentInput{
		CreditCardID: "card-k", AccountID: "acc-a", Amount: amount("15"), Date: model.MustParseDate("2024-01-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaymentCategory, payment.Category)
	assert.True(t, payment.Amount.Equal(amount("15")))

	st := store.State()
	for _, id := range []string{"c1", "c2", "c3"} {
		charge, _ := st.Transaction(id)
		assert.True(t, charge.Paid)
		assert.Equal(t, payment.ID, charge.PaidInInvoiceID)
	}
	acc, _ := st.Account("acc-a")
	assert.True(t, report.AccountBalance(acc, st.Transactions).Equal(amount("85")))

	_, err = svc.PayInvoice(PaymentInput{CreditCardID: "nope", AccountID: "acc-a", Amount: amount("1"), Date: model.Today()})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.PayInvoice(PaymentInput{CreditCardID: "card-k", AccountID: "acc-a", Amount: amount("-1"), Date: model.Today()})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTransfer(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("a", "500").
		WithAccount("b", "0").
		WithInactiveAccount("c", "0").
		Build())

	expense, income, err := svc.Transfer(TransferInput{
		FromAccountID: "a", ToAccountID: "b", Amount: amount("100"), Date: model.MustParseDate("2024-05-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, state.DefaultTransferDescription, expense.Description)
	assert.Equal(t, expense.Description, income.Description)
	assert.True(t, expense.Date.Equal(income.Date))

	st := store.State()
	assert.True(t, report.TotalBalance(st.Accounts, st.Transactions).Equal(amount("500")))

	_, _, err = svc.Transfer(TransferInput{FromAccountID: "a", ToAccountID: "a", Amount: amount("1"), Date: model.Today()})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, _, err = svc.Transfer(TransferInput{FromAccountID: "a", ToAccountID: "c", Amount: amount("1"), Date: model.Today()})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, _, err = svc.Transfer(TransferInput{FromAccountID: "a", ToAccountID: "b", Date: model.Today()})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestImportTransactions_Upserts(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().WithAccount("acc-1", "0").Build())

	batch := []model.Transaction{
		{ID: "ofx-1", AccountID: "acc-1", Type: model.TransactionTypeExpense, Category: model.OtherExpensesCategory,
			Date: model.MustParseDate("2024-01-01"), Amount: amount("5")},
		{ID: "ofx-2", AccountID: "acc-1", Type: model.TransactionTypeIncome, Category: model.OtherIncomeCategory,
			Date: model.MustParseDate("2024-01-02"), Amount: amount("7")},
	}
	n, err := svc.ImportTransactions(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.ImportTransactions(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.State().Transactions, 2)
}

func TestImportTransactions_KeepsSettlementAndEdits(t *testing.T) {
	svc, store := newTestLedger(testutil.NewStateBuilder().
		WithAccount("acc-1", "100").
		WithCard("card-1", "Visa").
		Build())

	statement := []model.Transaction{
		{ID: "ofx-card-1-FIT1", CreditCardID: "card-1", Type: model.TransactionTypeCreditCardExpense,
			Category: model.OtherExpensesCategory, Description: "PADARIA REAL",
			Date: model.MustParseDate("2024-01-05"), Amount: amount("50")},
	}
	_, err := svc.ImportTransactions(statement)
	require.NoError(t, err)

	charge, _ := store.State().Transaction("ofx-card-1-FIT1")
	charge.Category = "Alimentação"
	charge.Description = "Pão de sábado"
	require.NoError(t, svc.UpdateTransaction(charge))

	payment, err := svc.PayInvoice(PaymentInput{
		CreditCardID: "card-1", AccountID: "acc-1", Amount: amount("50"), Date: model.MustParseDate("2024-02-01"),
	})
	require.NoError(t, err)
	require.True(t, report.OpenInvoiceTotal("card-1", store.State().Transactions).IsZero())

	n, err := svc.ImportTransactions(statement)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	st := store.State()
	got, ok := st.Transaction("ofx-card-1-FIT1")
	require.True(t, ok)
	assert.True(t, got.Paid)
	assert.Equal(t, payment.ID, got.PaidInInvoiceID)
	assert.Equal(t, "Alimentação", got.Category)
	assert.Equal(t, "Pão de sábado", got.Description)
	assert.True(t, report.OpenInvoiceTotal("card-1", st.Transactions).IsZero())
}

func TestToggleTheme(t *testing.T) {
	svc, _ := newTestLedger(testutil.NewStateBuilder().Build())
	assert.Equal(t, model.ThemeDark, svc.ToggleTheme())
	assert.Equal(t, model.ThemeLight, svc.ToggleTheme())
}
