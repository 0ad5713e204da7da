// Package ledger is the boundary between user intents and the state store. Each
// operation validates its input against the current state, enforces the referential
// integrity rules the reducer assumes, generates ids and dispatches one action.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// Service applies validated operations to a store.
type Service struct {
	store *state.Store
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a ledger over store.
func NewService(store *state.Store, opts ...Option) *Service {
	s := &Service{store: store, newID: model.NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state of the underlying store.
func (s *Service) State() state.State {
	return s.store.State()
}

// ToggleTheme flips the display theme and returns the new one.
func (s *Service) ToggleTheme() model.Theme {
	return s.store.Dispatch(state.ToggleTheme{}).Theme
}

func invalid(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return common.NewUserError(msg, common.ErrInvalidInput)
}

func notFound(what, id string) error {
	return common.NewUserError(fmt.Sprintf("%s %q not found", what, id), common.ErrNotFound)
}

func requireAuthenticated(st state.State) error {
	if st.UserID() == "" {
		return common.NewUserError("Log in first", common.ErrNotAuthenticated)
	}
	return nil
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("Amount must be greater than zero")
	}
	return nil
}

func requireText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s is required", field)
	}
	return value, nil
}
