package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

// Filter selects transactions.
type Filter func(model.Transaction) bool

// InMonth selects transactions dated in the given month.
func InMonth(year int, month time.Month) Filter {
	return func(t model.Transaction) bool { return t.Date.InMonth(year, month) }
}

// InYear selects transactions dated in the given year.
func InYear(year int) Filter {
	return func(t model.Transaction) bool { return t.Date.Year() == year }
}

// OfType selects transactions of the given type.
func OfType(tt model.TransactionType) Filter {
	return func(t model.Transaction) bool { return t.Type == tt }
}

// ForCard selects transactions charged to the given card.
func ForCard(cardID string) Filter {
	return func(t model.Transaction) bool { return t.CreditCardID == cardID }
}

// ForAccount selects transactions posted to the given account.
func ForAccount(accountID string) Filter {
	return func(t model.Transaction) bool { return t.AccountID == accountID }
}

// And selects transactions matching every filter.
func And(filters ...Filter) Filter {
	return func(t model.Transaction) bool {
		for _, f := range filters {
			if f != nil && !f(t) {
				return false
			}
		}
		return true
	}
}

// Apply returns the transactions selected by f. A nil filter selects everything.
func Apply(txns []model.Transaction, f Filter) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if f == nil || f(t) {
			out = append(out, t)
		}
	}
	return out
}

// Slice is one labeled value of an aggregation.
type Slice struct {
	Label string
	Value decimal.Decimal
}

// AggregateByCategory sums the amounts of the selected transactions per category name,
// largest first. Equal values keep the order in which their category first appeared.
func AggregateByCategory(txns []model.Transaction, f Filter) []Slice {
	index := make(map[string]int)
	var out []Slice
	for _, t := range txns {
		if f != nil && !f(t) {
			continue
		}
		label := model.CategoryLabel(t.Category)
		i, ok := index[label]
		if !ok {
			index[label] = len(out)
			out = append(out, Slice{Label: label, Value: t.Amount})
			continue
		}
		out[i].Value = out[i].Value.Add(t.Amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out
}

// ExpensesByCategory aggregates the bank expenses of a month.
func ExpensesByCategory(txns []model.Transaction, year int, month time.Month) []Slice {
	return AggregateByCategory(txns, And(OfType(model.TransactionTypeExpense), InMonth(year, month)))
}

// AnnualExpensesByCategory aggregates the bank expenses of a year.
func AnnualExpensesByCategory(txns []model.Transaction, year int) []Slice {
	return AggregateByCategory(txns, And(OfType(model.TransactionTypeExpense), InYear(year)))
}

// AvailableYears returns the distinct years that have transactions, newest first. With
// no transactions it returns the year of now.
func AvailableYears(txns []model.Transaction, now time.Time) []int {
	if len(txns) == 0 {
		return []int{now.Year()}
	}
	seen := make(map[int]bool)
	var years []int
	for _, t := range txns {
		y := t.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
