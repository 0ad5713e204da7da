package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

// OpenInvoiceTotal sums the unpaid charges of the card.
func OpenInvoiceTotal(cardID string, txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if txn.CreditCardID == cardID && txn.IsOpenCharge() {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// OpenInvoice is a card with an outstanding amount.
type OpenInvoice struct {
	Card  model.CreditCard
	Total decimal.Decimal
}

// OpenInvoices returns the active cards that have unpaid charges, in card order.
func OpenInvoices(cards []model.CreditCard, txns []model.Transaction) []OpenInvoice {
	var out []OpenInvoice
	for _, card := range cards {
		if card.Inactive {
			continue
		}
		total := OpenInvoiceTotal(card.ID, txns)
		if total.IsPositive() {
			out = append(out, OpenInvoice{Card: card, Total: total})
		}
	}
	return out
}

// InvoiceReport summarizes the charges of one card within a month.
type InvoiceReport struct {
	Card         model.CreditCard
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Unpaid       decimal.Decimal
	ByCategory   []Slice
	Transactions []model.Transaction
	Year         int
	Month        time.Month
}

// CardInvoice builds the invoice report of card for the given month.
func CardInvoice(card model.CreditCard, txns []model.Transaction, year int, month time.Month) InvoiceReport {
	r := InvoiceReport{
		Card:   card,
		Year:   year,
		Month:  month,
		Total:  decimal.Zero,
		Paid:   decimal.Zero,
		Unpaid: decimal.Zero,
	}

	filter := And(ForCard(card.ID), OfType(model.TransactionTypeCreditCardExpense), InMonth(year, month))
	for _, txn := range txns {
		if !filter(txn) {
			continue
		}
		r.Transactions = append(r.Transactions, txn)
		r.Total = r.Total.Add(txn.Amount)
		if txn.Paid {
			r.Paid = r.Paid.Add(txn.Amount)
		} else {
			r.Unpaid = r.Unpaid.Add(txn.Amount)
		}
	}
	r.ByCategory = AggregateByCategory(r.Transactions, nil)

	return r
}
