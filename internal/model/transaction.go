package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction and selects which entity it posts to.
type TransactionType string

const (
	// TransactionTypeIncome credits a bank account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense debits a bank account.
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeCreditCardExpense is a charge on a credit card.
	TransactionTypeCreditCardExpense TransactionType = "creditCardExpense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeCreditCardExpense:
		return true
	}
	return false
}

// UsesAccount reports whether transactions of this type post to a bank account.
func (t TransactionType) UsesAccount() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// CategoryType returns the category type matching this transaction type.
// Card charges are expenses.
func (t TransactionType) CategoryType() CategoryType {
	if t == TransactionTypeIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Transaction represents a single income, expense or card charge.
type Transaction struct {
	Date            Date
	Amount          decimal.Decimal
	ID              string
	AccountID       string // Set for income and expense
	CreditCardID    string // Set for creditCardExpense
	Category        string // Category name at the time of entry
	Description     string
	PaidInInvoiceID string // ID of the payment transaction that settled this charge
	Type            TransactionType
	Paid            bool
}

// IsOpenCharge reports whether t is a card charge not yet settled by an invoice payment.
func (t Transaction) IsOpenCharge() bool {
	return t.Type == TransactionTypeCreditCardExpense && !t.Paid
}

// SortByDateDesc sorts transactions newest first. Transactions sharing a date keep
// their relative order.
func SortByDateDesc(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}

// IsSortedByDateDesc reports whether txns are ordered newest first.
func IsSortedByDateDesc(txns []Transaction) bool {
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.After(txns[i-1].Date) {
			return false
		}
	}
	return true
}
