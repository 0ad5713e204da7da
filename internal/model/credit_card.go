package model

// CreditCard represents a card whose charges are recorded as creditCardExpense
// transactions and settled later by an invoice payment.
type CreditCard struct {
	InvoiceClosingDay *int
	InvoiceDueDay     *int
	ID                string
	Name              string
	LastFourDigits    string
	Flag              string // Card network, e.g. Visa or Mastercard
	Inactive          bool
}

// Active reports whether the card can receive new charges.
func (c CreditCard) Active() bool {
	return !c.Inactive
}

// Label returns the card name with its final digits when known.
func (c CreditCard) Label() string {
	if c.LastFourDigits == "" {
		return c.Name
	}
	return c.Name + " - Final " + c.LastFourDigits
}
