package model

import "github.com/shopspring/decimal"

// Account represents a bank account that income and expense transactions post to.
type Account struct {
	InitialBalance decimal.Decimal
	ID             string
	BankName       string
	AccountNumber  string
	Active         bool
}

// Label returns the human readable name of the account.
func (a Account) Label() string {
	if a.AccountNumber == "" {
		return a.BankName
	}
	return a.BankName + " - " + a.AccountNumber
}
