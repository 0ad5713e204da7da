// Package report computes balances, invoice totals and report aggregations from the
// transaction log. Nothing here is stored; every value is recomputed on demand from
// the current state.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

// AccountBalance returns the initial balance of the account plus its income minus its
// expenses. Card charges never affect an account balance.
func AccountBalance(account model.Account, txns []model.Transaction) decimal.Decimal {
	balance := account.InitialBalance
	for _, txn := range txns {
		if txn.AccountID != account.ID {
			continue
		}
		switch txn.Type {
		case model.TransactionTypeIncome:
			balance = balance.Add(txn.Amount)
		case model.TransactionTypeExpense:
			balance = balance.Sub(txn.Amount)
		}
	}
	return balance
}

// TotalBalance returns the sum of the balances of the active accounts.
func TotalBalance(accounts []model.Account, txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, account := range accounts {
		if !account.Active {
			continue
		}
		total = total.Add(AccountBalance(account, txns))
	}
	return total
}

// AccountSummary pairs an account with its current balance.
type AccountSummary struct {
	Account model.Account
	Balance decimal.Decimal
}

// AccountBalances returns the balance of every account, in account order.
func AccountBalances(accounts []model.Account, txns []model.Transaction) []AccountSummary {
	out := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, AccountSummary{Account: account, Balance: AccountBalance(account, txns)})
	}
	return out
}
