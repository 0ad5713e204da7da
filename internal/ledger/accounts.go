package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// AccountInput describes a new bank account.
type AccountInput struct {
	InitialBalance decimal.Decimal
	BankName       string
	AccountNumber  string
}

// AddAccount creates an active account.
func (s *Service) AddAccount(in AccountInput) (model.Account, error) {
	if err := requireAuthenticated(s.store.State()); err != nil {
		return model.Account{}, err
	}
	bank, err := requireText(in.BankName, "Bank name")
	if err != nil {
		return model.Account{}, err
	}

	acc := model.Account{
		ID:             s.newID(),
		BankName:       bank,
		AccountNumber:  in.AccountNumber,
		InitialBalance: in.InitialBalance,
		Active:         true,
	}
	s.store.Dispatch(state.AddAccount{Account: acc})
	return acc, nil
}

// UpdateAccount replaces an existing account.
func (s *Service) UpdateAccount(acc model.Account) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	if _, ok := st.Account(acc.ID); !ok {
		return notFound("Account", acc.ID)
	}
	bank, err := requireText(acc.BankName, "Bank name")
	if err != nil {
		return err
	}
	acc.BankName = bank

	s.store.Dispatch(state.UpdateAccount{Account: acc})
	return nil
}

// DeleteAccount removes an account that no transaction references.
func (s *Service) DeleteAccount(id string) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	if _, ok := st.Account(id); !ok {
		return notFound("Account", id)
	}
	for _, t := range st.Transactions {
		if t.Type.UsesAccount() && t.AccountID == id {
			return common.NewUserError(
				"This account has transactions and cannot be deleted; deactivate it instead",
				common.ErrAccountInUse)
		}
	}

	s.store.Dispatch(state.DeleteAccount{ID: id})
	return nil
}
