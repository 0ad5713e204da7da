package state

import "github.com/Veraticus/fintrack/internal/model"

// Auth describes the authentication status of the session.
type Auth struct {
	User          *model.User
	Authenticated bool
}

// State is the complete in-memory application state.
type State struct {
	Auth         Auth
	Theme        model.Theme
	Accounts     []model.Account
	CreditCards  []model.CreditCard
	Transactions []model.Transaction
	Categories   []model.Category
}

// Initial returns the state of a fresh, logged out session.
func Initial() State {
	return State{Theme: model.ThemeLight}
}

// UserID returns the id of the authenticated user, or "" when logged out.
func (s State) UserID() string {
	if !s.Auth.Authenticated || s.Auth.User == nil {
		return ""
	}
	return s.Auth.User.ID
}

// Account returns the account with the given id.
func (s State) Account(id string) (model.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

// CreditCard returns the credit card with the given id.
func (s State) CreditCard(id string) (model.CreditCard, bool) {
	for _, c := range s.CreditCards {
		if c.ID == id {
			return c, true
		}
	}
	return model.CreditCard{}, false
}

// Category returns the category with the given id.
func (s State) Category(id string) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// CategoryByName returns the category of the given type with the given name.
func (s State) CategoryByName(name string, t model.CategoryType) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.Name == name && c.Type == t {
			return c, true
		}
	}
	return model.Category{}, false
}

// Transaction returns the transaction with the given id.
func (s State) Transaction(id string) (model.Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return model.Transaction{}, false
}
