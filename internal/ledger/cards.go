package ledger

import (
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// CreditCardInput describes a new credit card.
type CreditCardInput struct {
	InvoiceClosingDay *int
	InvoiceDueDay     *int
	Name              string
	LastFourDigits    string
	Flag              string
}

// AddCreditCard creates an active credit card.
func (s *Service) AddCreditCard(in CreditCardInput) (model.CreditCard, error) {
	if err := requireAuthenticated(s.store.State()); err != nil {
		return model.CreditCard{}, err
	}

	card := model.CreditCard{
		ID:                s.newID(),
		Name:              in.Name,
		LastFourDigits:    in.LastFourDigits,
		Flag:              in.Flag,
		InvoiceClosingDay: in.InvoiceClosingDay,
		InvoiceDueDay:     in.InvoiceDueDay,
	}
	card, err := validateCard(card)
	if err != nil {
		return model.CreditCard{}, err
	}

	s.store.Dispatch(state.AddCreditCard{CreditCard: card})
	return card, nil
}

// UpdateCreditCard replaces an existing credit card.
func (s *Service) UpdateCreditCard(card model.CreditCard) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	if _, ok := st.CreditCard(card.ID); !ok {
		return notFound("Credit card", card.ID)
	}
	card, err := validateCard(card)
	if err != nil {
		return err
	}

	s.store.Dispatch(state.UpdateCreditCard{CreditCard: card})
	return nil
}

// DeleteCreditCard removes a card that no charge references.
func (s *Service) DeleteCreditCard(id string) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	if _, ok := st.CreditCard(id); !ok {
		return notFound("Credit card", id)
	}
	for _, t := range st.Transactions {
		if t.Type == model.TransactionTypeCreditCardExpense && t.CreditCardID == id {
			return common.NewUserError(
				"This card has transactions and cannot be deleted; deactivate it instead",
				common.ErrCreditCardInUse)
		}
	}

	s.store.Dispatch(state.DeleteCreditCard{ID: id})
	return nil
}

func validateCard(card model.CreditCard) (model.CreditCard, error) {
	name, err := requireText(card.Name, "Card name")
	if err != nil {
		return model.CreditCard{}, err
	}
	card.Name = name

	if card.LastFourDigits != "" && !common.IsLastFourDigits(card.LastFourDigits) {
		return model.CreditCard{}, invalid("Last four digits must be exactly 4 numbers")
	}
	for _, day := range []*int{card.InvoiceClosingDay, card.InvoiceDueDay} {
		if day != nil && (*day < 1 || *day > 31) {
			return model.CreditCard{}, invalid("Invoice days must be between 1 and 31")
		}
	}
	return card, nil
}
