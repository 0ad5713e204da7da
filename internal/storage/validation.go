package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrRecordNotFound     = fmt.Errorf("record %w", common.ErrNotFound)
	ErrDuplicateRecord    = fmt.Errorf("record %w", common.ErrDuplicateEntry)
	ErrInvalidTransaction = fmt.Errorf("%w: transaction", ErrInvalidRecord)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateScope checks the arguments every collection call shares.
func validateScope(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	return validateString(id, "id")
}

// validateTransaction checks the fields the schema cannot enforce.
func validateTransaction(txn model.Transaction) error {
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Type.UsesAccount() && txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if !txn.Type.UsesAccount() && txn.CreditCardID == "" {
		return fmt.Errorf("%w: missing credit card ID", ErrInvalidTransaction)
	}
	return nil
}

// validateCategory checks the category type.
func validateCategory(cat model.Category) error {
	if !cat.Type.Valid() {
		return fmt.Errorf("%w: category type %q", ErrInvalidRecord, cat.Type)
	}
	return nil
}
