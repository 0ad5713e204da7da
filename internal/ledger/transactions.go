package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// TransactionInput describes a new income, expense or card charge.
type TransactionInput struct {
	Date         model.Date
	Amount       decimal.Decimal
	AccountID    string
	CreditCardID string
	Category     string
	Description  string
	Type         model.TransactionType
}

// AddTransaction records a transaction against an active account or card.
func (s *Service) AddTransaction(in TransactionInput) (model.Transaction, error) {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		ID:           s.newID(),
		AccountID:    in.AccountID,
		CreditCardID: in.CreditCardID,
		Category:     in.Category,
		Description:  in.Description,
		Date:         in.Date,
		Amount:       in.Amount,
		Type:         in.Type,
	}
	txn, err := validateTransaction(st, txn, true, "")
	if err != nil {
		return model.Transaction{}, err
	}

	s.store.Dispatch(state.AddTransaction{Transaction: txn})
	return txn, nil
}

// ImportTransactions upserts already identified transactions, such as statement
// lines whose ids derive from the bank's own ids. A transaction imported before
// keeps its category, description and invoice settlement; only the statement
// fields are refreshed. It stops at the first invalid one.
func (s *Service) ImportTransactions(txns []model.Transaction) (int, error) {
	for i, txn := range txns {
		st := s.store.State()
		if err := requireAuthenticated(st); err != nil {
			return i, err
		}
		if txn.ID == "" {
			txn.ID = s.newID()
		}
		existing, seen := st.Transaction(txn.ID)
		if seen {
			txn.Category = existing.Category
			txn.Description = existing.Description
			txn.Paid = existing.Paid
			txn.PaidInInvoiceID = existing.PaidInInvoiceID
		}
		valid, err := validateTransaction(st, txn, !seen, existing.Category)
		if err != nil {
			return i, err
		}
		s.store.Dispatch(state.AddTransaction{Transaction: valid})
	}
	return len(txns), nil
}

// UpdateTransaction replaces an existing transaction. The target account or card
// must exist but may be inactive, so old entries stay editable.
func (s *Service) UpdateTransaction(txn model.Transaction) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	existing, ok := st.Transaction(txn.ID)
	if !ok {
		return notFound("Transaction", txn.ID)
	}
	txn, err := validateTransaction(st, txn, false, existing.Category)
	if err != nil {
		return err
	}

	s.store.Dispatch(state.UpdateTransaction{Transaction: txn})
	return nil
}

// DeleteTransaction removes a transaction.
func (s *Service) DeleteTransaction(id string) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	if _, ok := st.Transaction(id); !ok {
		return notFound("Transaction", id)
	}

	s.store.Dispatch(state.DeleteTransaction{ID: id})
	return nil
}

// PaymentInput describes the payment of a card invoice from a bank account.
type PaymentInput struct {
	Date         model.Date
	Amount       decimal.Decimal
	CreditCardID string
	AccountID    string
}

// PayInvoice pays the open invoice of a card. Every open charge of the card is
// settled regardless of the amount paid. It returns the payment transaction.
func (s *Service) PayInvoice(in PaymentInput) (model.Transaction, error) {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return model.Transaction{}, err
	}
	if _, ok := st.CreditCard(in.CreditCardID); !ok {
		return model.Transaction{}, notFound("Credit card", in.CreditCardID)
	}
	if err := requireActiveAccount(st, in.AccountID); err != nil {
		return model.Transaction{}, err
	}
	if err := requirePositive(in.Amount); err != nil {
		return model.Transaction{}, err
	}
	if in.Date.IsZero() {
		return model.Transaction{}, invalid("Date is required")
	}

	action := state.PayInvoice{
		PaymentID:    s.newID(),
		CreditCardID: in.CreditCardID,
		AccountID:    in.AccountID,
		Amount:       in.Amount,
		Date:         in.Date,
	}
	next := s.store.Dispatch(action)
	payment, _ := next.Transaction(action.PaymentID)
	return payment, nil
}

// TransferInput describes a transfer between two accounts.
type TransferInput struct {
	Date          model.Date
	Amount        decimal.Decimal
	FromAccountID string
	ToAccountID   string
	Description   string
}

// Transfer moves money between two different active accounts. It returns the
// expense and income transactions it created.
func (s *Service) Transfer(in TransferInput) (model.Transaction, model.Transaction, error) {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}
	if in.FromAccountID == in.ToAccountID {
		return model.Transaction{}, model.Transaction{}, invalid("Source and destination accounts must be different")
	}
	for _, id := range []string{in.FromAccountID, in.ToAccountID} {
		if err := requireActiveAccount(st, id); err != nil {
			return model.Transaction{}, model.Transaction{}, err
		}
	}
	if err := requirePositive(in.Amount); err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}
	if in.Date.IsZero() {
		return model.Transaction{}, model.Transaction{}, invalid("Date is required")
	}

	action := state.Transfer{
		ExpenseID:     s.newID(),
		IncomeID:      s.newID(),
		FromAccountID: in.FromAccountID,
		ToAccountID:   in.ToAccountID,
		Amount:        in.Amount,
		Date:          in.Date,
		Description:   in.Description,
	}
	next := s.store.Dispatch(action)
	expense, _ := next.Transaction(action.ExpenseID)
	income, _ := next.Transaction(action.IncomeID)
	return expense, income, nil
}

func requireActiveAccount(st state.State, id string) error {
	acc, ok := st.Account(id)
	if !ok {
		return notFound("Account", id)
	}
	if !acc.Active {
		return invalid("Account %q is inactive", acc.BankName)
	}
	return nil
}

// validateTransaction checks the fields of txn and the entity it posts to. With
// requireActive set the account or card must also be active. The category must name
// an existing category unless it is unchanged from previousCategory.
func validateTransaction(st state.State, txn model.Transaction, requireActive bool, previousCategory string) (model.Transaction, error) {
	if !txn.Type.Valid() {
		return model.Transaction{}, invalid("Transaction type must be income, expense or creditCardExpense")
	}
	if err := requirePositive(txn.Amount); err != nil {
		return model.Transaction{}, err
	}
	if txn.Date.IsZero() {
		return model.Transaction{}, invalid("Date is required")
	}

	if txn.Type.UsesAccount() {
		acc, ok := st.Account(txn.AccountID)
		if !ok {
			return model.Transaction{}, notFound("Account", txn.AccountID)
		}
		if requireActive && !acc.Active {
			return model.Transaction{}, invalid("Account %q is inactive", acc.BankName)
		}
		txn.CreditCardID = ""
		txn.Paid = false
		txn.PaidInInvoiceID = ""
	} else {
		card, ok := st.CreditCard(txn.CreditCardID)
		if !ok {
			return model.Transaction{}, notFound("Credit card", txn.CreditCardID)
		}
		if requireActive && !card.Active() {
			return model.Transaction{}, invalid("Credit card %q is inactive", card.Name)
		}
		txn.AccountID = ""
	}

	category := model.NormalizeName(txn.Category)
	if category == "" {
		return model.Transaction{}, invalid("Category is required")
	}
	_, known := st.CategoryByName(category, txn.Type.CategoryType())
	if !known && category != previousCategory {
		return model.Transaction{}, invalid("Unknown %s category %q", txn.Type.CategoryType(), category)
	}
	txn.Category = category
	return txn, nil
}
