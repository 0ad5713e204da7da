package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the income, expense and net flow of a set of transactions. Card
// charges are not part of the cash flow; their invoice payments are.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// Summarize computes the cash flow summary of txns.
func Summarize(txns []model.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txns {
		switch t.Type {
		case model.TransactionTypeIncome:
			s.Income = s.Income.Add(t.Amount)
		case model.TransactionTypeExpense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// CashFlow computes the summary of one month.
func CashFlow(txns []model.Transaction, year int, month time.Month) Summary {
	return Summarize(Apply(txns, InMonth(year, month)))
}

// PreviousMonth returns the month before the given one, rolling January back to
// December of the previous year.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Comparison compares a month with the month before it.
type Comparison struct {
	Current   Summary
	Previous  Summary
	Year      int
	PrevYear  int
	Month     time.Month
	PrevMonth time.Month
}

// CompareMonths builds the comparison of the given month against the previous one.
func CompareMonths(txns []model.Transaction, year int, month time.Month) Comparison {
	prevYear, prevMonth := PreviousMonth(year, month)
	return Comparison{
		Year:      year,
		Month:     month,
		PrevYear:  prevYear,
		PrevMonth: prevMonth,
		Current:   CashFlow(txns, year, month),
		Previous:  CashFlow(txns, prevYear, prevMonth),
	}
}

// IncomeChange is the percentage change of income.
func (c Comparison) IncomeChange() float64 {
	return PercentChange(c.Current.Income, c.Previous.Income)
}

// ExpenseChange is the percentage change of expenses.
func (c Comparison) ExpenseChange() float64 {
	return PercentChange(c.Current.Expense, c.Previous.Expense)
}

// NetChange is the percentage change of the net flow.
func (c Comparison) NetChange() float64 {
	return PercentChange(c.Current.Net, c.Previous.Net)
}

// PercentChange returns (current-previous)/|previous| as a percentage. When previous
// is zero the change is 100 with the sign of the difference, or 0 if current is zero
// as well.
func PercentChange(current, previous decimal.Decimal) float64 {
	diff := current.Sub(previous)
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100 * float64(diff.Sign())
	}
	return diff.Div(previous.Abs()).Mul(hundred).InexactFloat64()
}
