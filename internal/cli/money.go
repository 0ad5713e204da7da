package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Default display settings.
const (
	DefaultLocale   = "pt-BR"
	DefaultCurrency = "BRL"
)

// Money formats amounts for one locale and currency.
type Money struct {
	printer *message.Printer
	symbol  string
}

// NewMoney builds a formatter. locale is a BCP 47 tag and code an ISO 4217 code.
func NewMoney(locale, code string) (*Money, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	p := message.NewPrinter(tag)
	return &Money{
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}, nil
}

// DefaultMoney formats Brazilian reais.
func DefaultMoney() *Money {
	m, err := NewMoney(DefaultLocale, DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return m
}

// Format renders amount with the currency symbol, grouping and two decimals.
func (m *Money) Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	digits := m.printer.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
	return sign + m.symbol + " " + digits
}

// Signed renders amount colored as income when positive and expense when negative.
func (m *Money) Signed(amount decimal.Decimal) string {
	switch {
	case amount.IsNegative():
		return ExpenseStyle.Render(m.Format(amount))
	case amount.IsPositive():
		return IncomeStyle.Render(m.Format(amount))
	}
	return m.Format(amount)
}

// Percent renders a percentage change with one decimal and an explicit sign.
func (m *Money) Percent(change float64) string {
	s := m.printer.Sprint(number.Decimal(change, number.Scale(1)))
	if change > 0 {
		s = "+" + s
	}
	return s + "%"
}
