package state

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

// Action is a request to change the state. The set of actions is closed; Reduce
// ignores anything it does not recognize.
type Action interface {
	// Name identifies the action in logs.
	Name() string
	// ChangesData reports whether the action mutates the user's financial records
	// locally, which is what the sync controller pushes to the remote store.
	ChangesData() bool
}

type dataAction struct{}

func (dataAction) ChangesData() bool { return true }

type sessionAction struct{}

func (sessionAction) ChangesData() bool { return false }

// Hydrate replaces the entire state with Snapshot.
type Hydrate struct {
	sessionAction
	Snapshot State
}

// Login marks the session as authenticated.
type Login struct {
	sessionAction
	User model.User
}

// Logout resets the state to Initial, keeping the theme.
type Logout struct{ sessionAction }

// ToggleTheme flips between the light and dark themes.
type ToggleTheme struct{ sessionAction }

// AddAccount inserts an account, replacing any account with the same id.
type AddAccount struct {
	dataAction
	Account model.Account
}

// UpdateAccount replaces an account by id, inserting it when absent.
type UpdateAccount struct {
	dataAction
	Account model.Account
}

// DeleteAccount removes an account by id.
type DeleteAccount struct {
	dataAction
	ID string
}

// AddCreditCard inserts a credit card, replacing any card with the same id.
type AddCreditCard struct {
	dataAction
	CreditCard model.CreditCard
}

// UpdateCreditCard replaces a credit card by id, inserting it when absent.
type UpdateCreditCard struct {
	dataAction
	CreditCard model.CreditCard
}

// DeleteCreditCard removes a credit card by id.
type DeleteCreditCard struct {
	dataAction
	ID string
}

// AddCategory inserts a category, replacing any category with the same id.
type AddCategory struct {
	dataAction
	Category model.Category
}

// UpdateCategory replaces a category by id. A name change is cascaded to every
// transaction that referenced the old name.
type UpdateCategory struct {
	dataAction
	Category model.Category
}

// DeleteCategory removes a category by id. Transactions that referenced it are moved
// to the fallback category of the same type.
type DeleteCategory struct {
	dataAction
	ID string
}

// AddTransaction inserts a transaction, replacing any transaction with the same id.
type AddTransaction struct {
	dataAction
	Transaction model.Transaction
}

// UpdateTransaction replaces a transaction by id, inserting it when absent.
type UpdateTransaction struct {
	dataAction
	Transaction model.Transaction
}

// DeleteTransaction removes a transaction by id.
type DeleteTransaction struct {
	dataAction
	ID string
}

// PayInvoice records a payment of a credit card invoice from a bank account and
// marks every open charge of the card as paid by it. The amount is not reconciled
// against the charges.
type PayInvoice struct {
	dataAction
	Amount       decimal.Decimal
	Date         model.Date
	PaymentID    string
	CreditCardID string
	AccountID    string
}

// Transfer moves money between two accounts as a linked expense and income pair.
type Transfer struct {
	dataAction
	Amount        decimal.Decimal
	Date          model.Date
	ExpenseID     string
	IncomeID      string
	FromAccountID string
	ToAccountID   string
	Description   string
}

// DefaultTransferDescription is used when a transfer has no description.
const DefaultTransferDescription = "Transferência entre contas"

func (Hydrate) Name() string           { return "hydrate" }
func (Login) Name() string             { return "login" }
func (Logout) Name() string            { return "logout" }
func (ToggleTheme) Name() string       { return "toggle_theme" }
func (AddAccount) Name() string        { return "add_account" }
func (UpdateAccount) Name() string     { return "update_account" }
func (DeleteAccount) Name() string     { return "delete_account" }
func (AddCreditCard) Name() string     { return "add_credit_card" }
func (UpdateCreditCard) Name() string  { return "update_credit_card" }
func (DeleteCreditCard) Name() string  { return "delete_credit_card" }
func (AddCategory) Name() string       { return "add_category" }
func (UpdateCategory) Name() string    { return "update_category" }
func (DeleteCategory) Name() string    { return "delete_category" }
func (AddTransaction) Name() string    { return "add_transaction" }
func (UpdateTransaction) Name() string { return "update_transaction" }
func (DeleteTransaction) Name() string { return "delete_transaction" }
func (PayInvoice) Name() string        { return "pay_invoice" }
func (Transfer) Name() string          { return "transfer" }
