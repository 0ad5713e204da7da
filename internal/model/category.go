package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Well-known category names.
const (
	OtherIncomeCategory    = "Outras Receitas"
	OtherExpensesCategory  = "Outras Despesas"
	InvoicePaymentCategory = "Pagamento de Fatura"
	TransferCategory       = "Transferência"
	UncategorizedLabel     = "Sem categoria"
)

// Category represents a user-defined or default transaction category.
type Category struct {
	ID        string
	Name      string
	Type      CategoryType
	IsDefault bool
}

// FallbackCategory returns the category name that transactions are reassigned to when
// a category of the given type is deleted.
func FallbackCategory(t CategoryType) string {
	if t == CategoryTypeIncome {
		return OtherIncomeCategory
	}
	return OtherExpensesCategory
}

// DefaultCategories returns the category set every new user starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-income-1", Name: "Salário", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "cat-income-2", Name: "Freelance", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "cat-income-3", Name: "Investimentos", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "cat-income-99", Name: OtherIncomeCategory, Type: CategoryTypeIncome, IsDefault: true},
		{ID: "cat-expense-1", Name: "Moradia", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-2", Name: "Alimentação", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-3", Name: "Transporte", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-4", Name: "Lazer", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-5", Name: "Saúde", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-6", Name: "Educação", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-7", Name: InvoicePaymentCategory, Type: CategoryTypeExpense, IsDefault: true},
		{ID: "cat-expense-99", Name: OtherExpensesCategory, Type: CategoryTypeExpense, IsDefault: true},
	}
}

// NormalizeName trims surrounding whitespace and converts a category name to NFC so
// that names typed on different platforms compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// CategoryLabel returns the display label for a transaction's category name.
// Names that no longer match a category are shown as stored.
func CategoryLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return UncategorizedLabel
	}
	return name
}
