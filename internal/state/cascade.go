package state

import (
	"fmt"

	"github.com/Veraticus/fintrack/internal/model"
)

// upsert returns a copy of items with item replacing the element that has the same id.
// When no element matches, item is appended, or prepended if front is set.
func upsert[T any](items []T, item T, id func(T) string, front bool) []T {
	key := id(item)
	out := make([]T, 0, len(items)+1)
	replaced := false
	for _, existing := range items {
		if id(existing) == key {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if replaced {
		return out
	}
	if front {
		return append([]T{item}, out...)
	}
	return append(out, item)
}

// remove returns a copy of items without the elements whose id equals key.
func remove[T any](items []T, key string, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if id(existing) != key {
			out = append(out, existing)
		}
	}
	return out
}

func accountID(a model.Account) string         { return a.ID }
func creditCardID(c model.CreditCard) string   { return c.ID }
func categoryID(c model.Category) string       { return c.ID }
func transactionID(t model.Transaction) string { return t.ID }

// sortedTransactions returns a newest-first copy of txns.
func sortedTransactions(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	model.SortByDateDesc(out)
	return out
}

// renameCategory rewrites the category of every transaction named from to to.
func renameCategory(txns []model.Transaction, from, to string) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	for i, txn := range txns {
		if txn.Category == from {
			txn.Category = to
		}
		out[i] = txn
	}
	return out
}

// markInvoicePaid marks every open charge of the card as paid by paymentID.
func markInvoicePaid(txns []model.Transaction, cardID, paymentID string) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	for i, txn := range txns {
		if txn.CreditCardID == cardID && txn.IsOpenCharge() {
			txn.Paid = true
			txn.PaidInInvoiceID = paymentID
		}
		out[i] = txn
	}
	return out
}

// invoicePaymentDescription describes the payment transaction of a card invoice.
func invoicePaymentDescription(card model.CreditCard) string {
	return fmt.Sprintf("Pagamento fatura %s", card.Name)
}
