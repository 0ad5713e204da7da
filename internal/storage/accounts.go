package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/model"
)

const accountColumns = `id, bank_name, account_number, initial_balance, active`

type accountCollection struct{ s *SQLiteStorage }

// FetchAll returns the user's accounts, newest first.
func (c accountCollection) FetchAll(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := c.s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var active int
		if err := rows.Scan(&a.ID, &a.BankName, &a.AccountNumber, &a.InitialBalance, &active); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Active = active == 1
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "user_id", userID, "count", len(accounts))
	return accounts, nil
}

// Insert stores a new account.
func (c accountCollection) Insert(ctx context.Context, userID string, a model.Account) (model.Account, error) {
	if err := validateScope(ctx, userID, a.ID); err != nil {
		return model.Account{}, err
	}

	_, err := c.s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, bank_name, account_number, initial_balance, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, userID, a.BankName, a.AccountNumber, a.InitialBalance.String(), boolToInt(a.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, fmt.Errorf("account %q: %w", a.ID, ErrDuplicateRecord)
		}
		return model.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}

	return c.get(ctx, userID, a.ID)
}

// Update replaces the stored fields of an existing account.
func (c accountCollection) Update(ctx context.Context, userID string, a model.Account) (model.Account, error) {
	if err := validateScope(ctx, userID, a.ID); err != nil {
		return model.Account{}, err
	}

	result, err := c.s.db.ExecContext(ctx, `
		UPDATE accounts
		SET bank_name = ?, account_number = ?, initial_balance = ?, active = ?
		WHERE id = ? AND user_id = ?`,
		a.BankName, a.AccountNumber, a.InitialBalance.String(), boolToInt(a.Active), a.ID, userID)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}
	if err := expectOneRow(result, "account", a.ID); err != nil {
		return model.Account{}, err
	}

	return c.get(ctx, userID, a.ID)
}

// Delete removes an account.
func (c accountCollection) Delete(ctx context.Context, userID, id string) error {
	if err := validateScope(ctx, userID, id); err != nil {
		return err
	}

	result, err := c.s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectOneRow(result, "account", id)
}

func (c accountCollection) get(ctx context.Context, userID, id string) (model.Account, error) {
	var a model.Account
	var active int
	err := c.s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&a.ID, &a.BankName, &a.AccountNumber, &a.InitialBalance, &active)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to read account %q: %w", id, err)
	}
	a.Active = active == 1
	return a, nil
}
