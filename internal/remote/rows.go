package remote

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

// errMalformedRow marks a row that cannot be converted to a record.
var errMalformedRow = errors.New("malformed row")

type accountRow struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Active         bool            `json:"active"`
}

func newAccountRow(userID string, a model.Account) accountRow {
	return accountRow{
		ID:             a.ID,
		UserID:         userID,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		InitialBalance: a.InitialBalance,
		Active:         a.Active,
	}
}

func (r accountRow) recordID() string { return r.ID }

func (r accountRow) model() (model.Account, error) {
	if r.ID == "" {
		return model.Account{}, fmt.Errorf("%w: account without id", errMalformedRow)
	}
	return model.Account{
		ID:             r.ID,
		BankName:       r.BankName,
		AccountNumber:  r.AccountNumber,
		InitialBalance: r.InitialBalance,
		Active:         r.Active,
	}, nil
}

type creditCardRow struct {
	InvoiceClosingDay *int    `json:"invoice_closing_day"`
	InvoiceDueDay     *int    `json:"invoice_due_day"`
	LastFourDigits    *string `json:"last_four_digits"`
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	Name              string  `json:"name"`
	Flag              string  `json:"flag"`
	Inactive          bool    `json:"inactive"`
}

func newCreditCardRow(userID string, c model.CreditCard) creditCardRow {
	return creditCardRow{
		ID:                c.ID,
		UserID:            userID,
		Name:              c.Name,
		LastFourDigits:    optional(c.LastFourDigits),
		Flag:              c.Flag,
		Inactive:          c.Inactive,
		InvoiceClosingDay: c.InvoiceClosingDay,
		InvoiceDueDay:     c.InvoiceDueDay,
	}
}

func (r creditCardRow) recordID() string { return r.ID }

func (r creditCardRow) model() (model.CreditCard, error) {
	if r.ID == "" {
		return model.CreditCard{}, fmt.Errorf("%w: credit card without id", errMalformedRow)
	}
	return model.CreditCard{
		ID:                r.ID,
		Name:              r.Name,
		LastFourDigits:    deref(r.LastFourDigits),
		Flag:              r.Flag,
		Inactive:          r.Inactive,
		InvoiceClosingDay: r.InvoiceClosingDay,
		InvoiceDueDay:     r.InvoiceDueDay,
	}, nil
}

type transactionRow struct {
	AccountID       *string         `json:"account_id"`
	CreditCardID    *string         `json:"credit_card_id"`
	PaidInInvoiceID *string         `json:"paid_in_invoice_id"`
	Amount          decimal.Decimal `json:"amount"`
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	Type            string          `json:"type"`
	Paid            bool            `json:"paid"`
}

func newTransactionRow(userID string, t model.Transaction) transactionRow {
	return transactionRow{
		ID:              t.ID,
		UserID:          userID,
		AccountID:       optional(t.AccountID),
		CreditCardID:    optional(t.CreditCardID),
		Category:        t.Category,
		Description:     t.Description,
		Date:            t.Date.String(),
		Amount:          t.Amount,
		Type:            string(t.Type),
		Paid:            t.Paid,
		PaidInInvoiceID: optional(t.PaidInInvoiceID),
	}
}

func (r transactionRow) recordID() string { return r.ID }

func (r transactionRow) model() (model.Transaction, error) {
	txnType := model.TransactionType(r.Type)
	if r.ID == "" || !txnType.Valid() {
		return model.Transaction{}, fmt.Errorf("%w: transaction %q has type %q", errMalformedRow, r.ID, r.Type)
	}
	date, err := model.ParseDate(r.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction row %q: %w", r.ID, err)
	}
	return model.Transaction{
		ID:              r.ID,
		AccountID:       deref(r.AccountID),
		CreditCardID:    deref(r.CreditCardID),
		Category:        r.Category,
		Description:     r.Description,
		Date:            date,
		Amount:          r.Amount,
		Type:            txnType,
		Paid:            r.Paid,
		PaidInInvoiceID: deref(r.PaidInInvoiceID),
	}, nil
}

type categoryRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsDefault bool   `json:"is_default"`
}

func newCategoryRow(userID string, c model.Category) categoryRow {
	return categoryRow{
		ID:        c.ID,
		UserID:    userID,
		Name:      c.Name,
		Type:      string(c.Type),
		IsDefault: c.IsDefault,
	}
}

func (r categoryRow) recordID() string { return r.ID }

func (r categoryRow) model() (model.Category, error) {
	catType := model.CategoryType(r.Type)
	if r.ID == "" || !catType.Valid() {
		return model.Category{}, fmt.Errorf("%w: category %q has type %q", errMalformedRow, r.ID, r.Type)
	}
	return model.Category{
		ID:        r.ID,
		Name:      r.Name,
		Type:      catType,
		IsDefault: r.IsDefault,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
