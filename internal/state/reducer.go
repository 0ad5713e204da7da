package state

import "github.com/Veraticus/fintrack/internal/model"

// Reduce applies action to s and returns the resulting state. Unknown actions return s
// unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case Hydrate:
		return hydrate(a.Snapshot)
	case Login:
		user := a.User
		s.Auth = Auth{Authenticated: true, User: &user}
		return s
	case Logout:
		next := Initial()
		next.Theme = s.Theme
		return next
	case ToggleTheme:
		s.Theme = s.Theme.Toggle()
		return s

	case AddAccount:
		s.Accounts = upsert(s.Accounts, a.Account, accountID, false)
		return s
	case UpdateAccount:
		s.Accounts = upsert(s.Accounts, a.Account, accountID, false)
		return s
	case DeleteAccount:
		s.Accounts = remove(s.Accounts, a.ID, accountID)
		return s

	case AddCreditCard:
		s.CreditCards = upsert(s.CreditCards, a.CreditCard, creditCardID, false)
		return s
	case UpdateCreditCard:
		s.CreditCards = upsert(s.CreditCards, a.CreditCard, creditCardID, false)
		return s
	case DeleteCreditCard:
		s.CreditCards = remove(s.CreditCards, a.ID, creditCardID)
		return s

	case AddCategory:
		s.Categories = upsert(s.Categories, a.Category, categoryID, false)
		return s
	case UpdateCategory:
		return updateCategory(s, a.Category)
	case DeleteCategory:
		return deleteCategory(s, a.ID)

	case AddTransaction:
		s.Transactions = sortedTransactions(upsert(s.Transactions, a.Transaction, transactionID, true))
		return s
	case UpdateTransaction:
		s.Transactions = sortedTransactions(upsert(s.Transactions, a.Transaction, transactionID, true))
		return s
	case DeleteTransaction:
		s.Transactions = remove(s.Transactions, a.ID, transactionID)
		return s

	case PayInvoice:
		return payInvoice(s, a)
	case Transfer:
		return transfer(s, a)
	}
	return s
}

func hydrate(snapshot State) State {
	snapshot.Transactions = sortedTransactions(snapshot.Transactions)
	if snapshot.Theme == "" {
		snapshot.Theme = model.ThemeLight
	}
	return snapshot
}

func updateCategory(s State, updated model.Category) State {
	old, found := s.Category(updated.ID)
	s.Categories = upsert(s.Categories, updated, categoryID, false)
	if found && old.Name != updated.Name {
		s.Transactions = renameCategory(s.Transactions, old.Name, updated.Name)
	}
	return s
}

func deleteCategory(s State, id string) State {
	deleted, found := s.Category(id)
	if !found {
		return s
	}
	s.Categories = remove(s.Categories, id, categoryID)
	s.Transactions = renameCategory(s.Transactions, deleted.Name, model.FallbackCategory(deleted.Type))
	return s
}

func payInvoice(s State, a PayInvoice) State {
	card, found := s.CreditCard(a.CreditCardID)
	if !found {
		return s
	}

	payment := model.Transaction{
		ID:          a.PaymentID,
		AccountID:   a.AccountID,
		Category:    model.InvoicePaymentCategory,
		Description: invoicePaymentDescription(card),
		Date:        a.Date,
		Amount:      a.Amount,
		Type:        model.TransactionTypeExpense,
	}

	txns := markInvoicePaid(s.Transactions, card.ID, payment.ID)
	s.Transactions = sortedTransactions(upsert(txns, payment, transactionID, true))
	return s
}

func transfer(s State, a Transfer) State {
	description := a.Description
	if description == "" {
		description = DefaultTransferDescription
	}

	expense := model.Transaction{
		ID:          a.ExpenseID,
		AccountID:   a.FromAccountID,
		Category:    model.TransferCategory,
		Description: description,
		Date:        a.Date,
		Amount:      a.Amount,
		Type:        model.TransactionTypeExpense,
	}
	income := model.Transaction{
		ID:          a.IncomeID,
		AccountID:   a.ToAccountID,
		Category:    model.TransferCategory,
		Description: description,
		Date:        a.Date,
		Amount:      a.Amount,
		Type:        model.TransactionTypeIncome,
	}

	txns := upsert(s.Transactions, expense, transactionID, true)
	txns = upsert(txns, income, transactionID, true)
	s.Transactions = sortedTransactions(txns)
	return s
}
