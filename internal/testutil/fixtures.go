package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// TestUser is the user the fixtures log in.
var TestUser = model.User{ID: "user-1", Email: "ana@example.com"}

// StateBuilder assembles a state for tests.
//
//	s := testutil.NewStateBuilder().
//		WithAccount("acc-1", "100").
//		WithExpense("t1", "acc-1", "2024-01-05", "30", "Moradia").
//		Build()
type StateBuilder struct {
	s state.State
}

// NewStateBuilder starts from an authenticated state with the default categories.
func NewStateBuilder() *StateBuilder {
	user := TestUser
	return &StateBuilder{s: state.State{
		Auth:       state.Auth{User: &user, Authenticated: true},
		Theme:      model.ThemeLight,
		Categories: model.DefaultCategories(),
	}}
}

// WithAccount adds an active account with the given initial balance.
func (b *StateBuilder) WithAccount(id, initialBalance string) *StateBuilder {
	b.s.Accounts = append(b.s.Accounts, model.Account{
		ID:             id,
		BankName:       "Bank " + id,
		InitialBalance: decimal.RequireFromString(initialBalance),
		Active:         true,
	})
	return b
}

// WithInactiveAccount adds an inactive account.
func (b *StateBuilder) WithInactiveAccount(id, initialBalance string) *StateBuilder {
	b.WithAccount(id, initialBalance)
	b.s.Accounts[len(b.s.Accounts)-1].Active = false
	return b
}

// WithCard adds an active credit card.
func (b *StateBuilder) WithCard(id, name string) *StateBuilder {
	b.s.CreditCards = append(b.s.CreditCards, model.CreditCard{ID: id, Name: name, Flag: "Visa"})
	return b
}

// WithCategory adds a custom category.
func (b *StateBuilder) WithCategory(id, name string, t model.CategoryType) *StateBuilder {
	b.s.Categories = append(b.s.Categories, model.Category{ID: id, Name: name, Type: t})
	return b
}

// WithIncome adds an income transaction.
func (b *StateBuilder) WithIncome(id, accountID, date, amount, category string) *StateBuilder {
	return b.withTransaction(model.Transaction{
		ID: id, AccountID: accountID, Category: category, Type: model.TransactionTypeIncome,
		Date: model.MustParseDate(date), Amount: decimal.RequireFromString(amount),
	})
}

// WithExpense adds an expense transaction.
func (b *StateBuilder) WithExpense(id, accountID, date, amount, category string) *StateBuilder {
	return b.withTransaction(model.Transaction{
		ID: id, AccountID: accountID, Category: category, Type: model.TransactionTypeExpense,
		Date: model.MustParseDate(date), Amount: decimal.RequireFromString(amount),
	})
}

// WithCharge adds an unpaid credit card charge.
func (b *StateBuilder) WithCharge(id, cardID, date, amount, category string) *StateBuilder {
	return b.withTransaction(model.Transaction{
		ID: id, CreditCardID: cardID, Category: category, Type: model.TransactionTypeCreditCardExpense,
		Date: model.MustParseDate(date), Amount: decimal.RequireFromString(amount),
	})
}

// LoggedOut clears the authentication.
func (b *StateBuilder) LoggedOut() *StateBuilder {
	b.s.Auth = state.Auth{}
	return b
}

// Build returns the state with transactions sorted newest first.
func (b *StateBuilder) Build() state.State {
	out := b.s
	out.Transactions = append([]model.Transaction(nil), b.s.Transactions...)
	model.SortByDateDesc(out.Transactions)
	return out
}

func (b *StateBuilder) withTransaction(t model.Transaction) *StateBuilder {
	b.s.Transactions = append(b.s.Transactions, t)
	return b
}
