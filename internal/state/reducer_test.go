package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/model"
)

func day(d int) model.Date {
	return model.NewDate(2024, time.March, d)
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func expense(id, accountID, category string, date model.Date, amount int64) model.Transaction {
	return model.Transaction{
		ID:        id,
		AccountID: accountID,
		Category:  category,
		Date:      date,
		Amount:    money(amount),
		Type:      model.TransactionTypeExpense,
	}
}

func charge(id, cardID string, date model.Date, amount int64) model.Transaction {
	return model.Transaction{
		ID:           id,
		CreditCardID: cardID,
		Category:     "Lazer",
		Date:         date,
		Amount:       money(amount),
		Type:         model.TransactionTypeCreditCardExpense,
	}
}

func ids(txns []model.Transaction) []string {
	out := make([]string, len(txns))
	for i, txn := range txns {
		out[i] = txn.ID
	}
	return out
}

type unknownAction struct{ sessionAction }

func (unknownAction) Name() string { return "unknown" }

func TestReduce_UnknownActionIsNoop(t *testing.T) {
	s := Initial()
	s.Accounts = []model.Account{{ID: "a1"}}

	next := Reduce(s, unknownAction{})

	assert.Equal(t, s, next)
}

func TestReduce_TransactionsStaySorted(t *testing.T) {
	actions := []Action{
		AddTransaction{Transaction: expense("t1", "a1", "Lazer", day(5), 10)},
		AddTransaction{Transaction: expense("t2", "a1", "Lazer", day(20), 10)},
		AddTransaction{Transaction: expense("t3", "a1", "Lazer", day(1), 10)},
		UpdateTransaction{Transaction: expense("t3", "a1", "Lazer", day(25), 10)},
		AddTransaction{Transaction: expense("t4", "a1", "Lazer", day(20), 10)},
		DeleteTransaction{ID: "t2"},
		UpdateTransaction{Transaction: expense("t1", "a1", "Lazer", day(30), 10)},
	}

	s := Initial()
	for _, action := range actions {
		s = Reduce(s, action)
		require.True(t, model.IsSortedByDateDesc(s.Transactions), "after %s: %v", action.Name(), ids(s.Transactions))
	}

	assert.Equal(t, []string{"t1", "t3", "t4"}, ids(s.Transactions))
}

func TestReduce_AddTransactionTieBreak(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddTransaction{Transaction: expense("old", "a1", "Lazer", day(10), 10)})
	s = Reduce(s, AddTransaction{Transaction: expense("new", "a1", "Lazer", day(10), 10)})

	// Newly added transactions lead among equal dates.
	assert.Equal(t, []string{"new", "old"}, ids(s.Transactions))
}

func TestReduce_AddTransactionUpsertsByID(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddTransaction{Transaction: expense("t1", "a1", "Lazer", day(10), 10)})
	s = Reduce(s, AddTransaction{Transaction: expense("t1", "a1", "Lazer", day(10), 99)})

	require.Len(t, s.Transactions, 1)
	assert.True(t, money(99).Equal(s.Transactions[0].Amount))
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddTransaction{Transaction: expense("t1", "a1", "Moradia", day(1), 10)})
	s = Reduce(s, AddCategory{Category: model.Category{ID: "c1", Name: "Moradia", Type: model.CategoryTypeExpense}})
	before := s.Transactions

	_ = Reduce(s, UpdateCategory{Category: model.Category{ID: "c1", Name: "Casa", Type: model.CategoryTypeExpense}})

	assert.Equal(t, "Moradia", before[0].Category)
	assert.Equal(t, "Moradia", s.Transactions[0].Category)
}

func TestReduce_UpdateCategory(t *testing.T) {
	base := Initial()
	base.Categories = []model.Category{
		{ID: "c1", Name: "Mercado", Type: model.CategoryTypeExpense},
		{ID: "c2", Name: "Lazer", Type: model.CategoryTypeExpense},
	}
	base.Transactions = []model.Transaction{
		expense("t1", "a1", "Mercado", day(3), 10),
		expense("t2", "a1", "Lazer", day(2), 10),
		expense("t3", "a1", "Mercado", day(1), 10),
	}

	t.Run("rename cascades to transactions", func(t *testing.T) {
		s := Reduce(base, UpdateCategory{Category: model.Category{ID: "c1", Name: "Supermercado", Type: model.CategoryTypeExpense}})

		c, ok := s.Category("c1")
		require.True(t, ok)
		assert.Equal(t, "Supermercado", c.Name)
		assert.Equal(t, "Supermercado", s.Transactions[0].Category)
		assert.Equal(t, "Lazer", s.Transactions[1].Category)
		assert.Equal(t, "Supermercado", s.Transactions[2].Category)
	})

	t.Run("same name leaves transactions alone", func(t *testing.T) {
		s := Reduce(base, UpdateCategory{Category: model.Category{ID: "c1", Name: "Mercado", Type: model.CategoryTypeIncome}})

		c, _ := s.Category("c1")
		assert.Equal(t, model.CategoryTypeIncome, c.Type)
		assert.Equal(t, base.Transactions, s.Transactions)
	})

	t.Run("unknown category is inserted without cascade", func(t *testing.T) {
		s := Reduce(base, UpdateCategory{Category: model.Category{ID: "c9", Name: "Pets", Type: model.CategoryTypeExpense}})

		assert.Len(t, s.Categories, 3)
		assert.Equal(t, base.Transactions, s.Transactions)
	})
}

func TestReduce_DeleteCategory(t *testing.T) {
	base := Initial()
	base.Categories = []model.Category{
		{ID: "c1", Name: "Mercado", Type: model.CategoryTypeExpense},
		{ID: "c2", Name: "Bônus", Type: model.CategoryTypeIncome},
	}
	base.Transactions = []model.Transaction{
		expense("t1", "a1", "Mercado", day(3), 10),
		{ID: "t2", AccountID: "a1", Category: "Bônus", Date: day(2), Amount: money(5), Type: model.TransactionTypeIncome},
		expense("t3", "a1", "Lazer", day(1), 10),
	}

	t.Run("expense category falls back to Outras Despesas", func(t *testing.T) {
		s := Reduce(base, DeleteCategory{ID: "c1"})

		_, found := s.Category("c1")
		assert.False(t, found)
		assert.Equal(t, "Outras Despesas", s.Transactions[0].Category)
		assert.Equal(t, "Bônus", s.Transactions[1].Category)
		assert.Equal(t, "Lazer", s.Transactions[2].Category)
	})

	t.Run("income category falls back to Outras Receitas", func(t *testing.T) {
		s := Reduce(base, DeleteCategory{ID: "c2"})

		assert.Equal(t, "Outras Receitas", s.Transactions[1].Category)
	})

	t.Run("unknown id is a noop", func(t *testing.T) {
		s := Reduce(base, DeleteCategory{ID: "missing"})
		assert.Equal(t, base, s)
	})
}

func TestReduce_PayInvoice(t *testing.T) {
	base := Initial()
	base.Accounts = []model.Account{{ID: "A", BankName: "Banco", InitialBalance: money(100), Active: true}}
	base.CreditCards = []model.CreditCard{{ID: "K", Name: "Nubank"}, {ID: "K2", Name: "Other"}}
	base.Transactions = []model.Transaction{
		charge("c1", "K", day(3), 10),
		charge("c2", "K", day(2), 20),
		charge("c3", "K", day(1), 30),
		charge("other", "K2", day(1), 40),
	}
	old := charge("old", "K", day(1), 5)
	old.Paid = true
	old.PaidInInvoiceID = "previous"
	base.Transactions = append(base.Transactions, old)

	s := Reduce(base, PayInvoice{
		PaymentID:    "pay1",
		CreditCardID: "K",
		AccountID:    "A",
		Amount:       money(15),
		Date:         day(10),
	})

	require.Len(t, s.Transactions, 6)
	assert.True(t, model.IsSortedByDateDesc(s.Transactions))

	payment, ok := s.Transaction("pay1")
	require.True(t, ok)
	assert.Equal(t, model.TransactionTypeExpense, payment.Type)
	assert.Equal(t, "A", payment.AccountID)
	assert.Equal(t, model.InvoicePaymentCategory, payment.Category)
	assert.Equal(t, "Pagamento fatura Nubank", payment.Description)
	assert.True(t, money(15).Equal(payment.Amount))

	for _, id := range []string{"c1", "c2", "c3"} {
		txn, _ := s.Transaction(id)
		assert.True(t, txn.Paid, id)
		assert.Equal(t, "pay1", txn.PaidInInvoiceID, id)
	}

	other, _ := s.Transaction("other")
	assert.False(t, other.Paid)
	settled, _ := s.Transaction("old")
	assert.Equal(t, "previous", settled.PaidInInvoiceID)
}

func TestReduce_PayInvoiceUnknownCard(t *testing.T) {
	base := Initial()
	base.Transactions = []model.Transaction{charge("c1", "K", day(3), 10)}

	s := Reduce(base, PayInvoice{PaymentID: "p", CreditCardID: "K", AccountID: "A", Amount: money(10), Date: day(4)})

	assert.Equal(t, base, s)
}

func TestReduce_Transfer(t *testing.T) {
	base := Initial()
	base.Transactions = []model.Transaction{expense("t1", "A", "Lazer", day(15), 1)}

	s := Reduce(base, Transfer{
		ExpenseID:     "out",
		IncomeID:      "in",
		FromAccountID: "A",
		ToAccountID:   "B",
		Amount:        money(100),
		Date:          day(20),
	})

	require.Len(t, s.Transactions, 3)
	assert.True(t, model.IsSortedByDateDesc(s.Transactions))

	out, _ := s.Transaction("out")
	in, _ := s.Transaction("in")
	assert.Equal(t, model.TransactionTypeExpense, out.Type)
	assert.Equal(t, "A", out.AccountID)
	assert.Equal(t, model.TransactionTypeIncome, in.Type)
	assert.Equal(t, "B", in.AccountID)
	assert.True(t, out.Date.Equal(in.Date))
	assert.Equal(t, DefaultTransferDescription, out.Description)
	assert.Equal(t, out.Description, in.Description)
	assert.Equal(t, model.TransferCategory, in.Category)
}

func TestReduce_Hydrate(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddAccount{Account: model.Account{ID: "a1"}})
	s = Reduce(s, ToggleTheme{})

	snapshot := Initial()
	snapshot.Theme = model.ThemeDark
	snapshot.Transactions = []model.Transaction{
		expense("t1", "a1", "Lazer", day(1), 1),
		expense("t2", "a1", "Lazer", day(9), 1),
	}

	s = Reduce(s, Hydrate{Snapshot: snapshot})

	assert.Empty(t, s.Accounts)
	assert.Equal(t, []string{"t2", "t1"}, ids(s.Transactions))
	assert.Equal(t, model.ThemeDark, s.Theme)
}

func TestReduce_LoginLogout(t *testing.T) {
	s := Initial()
	s = Reduce(s, Login{User: model.User{ID: "u1", Email: "a@b.com"}})
	assert.True(t, s.Auth.Authenticated)
	assert.Equal(t, "u1", s.UserID())

	s = Reduce(s, AddAccount{Account: model.Account{ID: "a1"}})
	s = Reduce(s, AddCategory{Category: model.Category{ID: "c1"}})
	s = Reduce(s, AddCreditCard{CreditCard: model.CreditCard{ID: "k1"}})
	s = Reduce(s, AddTransaction{Transaction: expense("t1", "a1", "x", day(1), 1)})
	s = Reduce(s, ToggleTheme{})

	s = Reduce(s, Logout{})

	assert.False(t, s.Auth.Authenticated)
	assert.Empty(t, s.UserID())
	assert.Empty(t, s.Accounts)
	assert.Empty(t, s.CreditCards)
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Transactions)
	assert.Equal(t, model.ThemeDark, s.Theme)
}

func TestReduce_AccountsAndCards(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddAccount{Account: model.Account{ID: "a1", BankName: "Itaú"}})
	s = Reduce(s, AddAccount{Account: model.Account{ID: "a2", BankName: "Caixa"}})
	s = Reduce(s, UpdateAccount{Account: model.Account{ID: "a1", BankName: "Itaú Personnalité"}})
	s = Reduce(s, DeleteAccount{ID: "a2"})

	require.Len(t, s.Accounts, 1)
	assert.Equal(t, "Itaú Personnalité", s.Accounts[0].BankName)

	s = Reduce(s, AddCreditCard{CreditCard: model.CreditCard{ID: "k1", Name: "Visa"}})
	s = Reduce(s, UpdateCreditCard{CreditCard: model.CreditCard{ID: "k1", Name: "Visa", Inactive: true}})
	card, ok := s.CreditCard("k1")
	require.True(t, ok)
	assert.True(t, card.Inactive)

	s = Reduce(s, DeleteCreditCard{ID: "k1"})
	assert.Empty(t, s.CreditCards)
}

func TestActionChangesData(t *testing.T) {
	assert.True(t, AddTransaction{}.ChangesData())
	assert.True(t, PayInvoice{}.ChangesData())
	assert.True(t, DeleteCategory{}.ChangesData())
	assert.False(t, Hydrate{}.ChangesData())
	assert.False(t, Logout{}.ChangesData())
	assert.False(t, ToggleTheme{}.ChangesData())
}
