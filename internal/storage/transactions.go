package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/model"
)

const transactionColumns = `id, account_id, credit_card_id, category, description, date, amount, type, paid, paid_in_invoice_id`

type transactionCollection struct{ s *SQLiteStorage }

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var accountID, cardID, paidIn sql.NullString
	var date, amount, txnType string
	var paid int
	if err := row.Scan(&t.ID, &accountID, &cardID, &t.Category, &t.Description,
		&date, &amount, &txnType, &paid, &paidIn); err != nil {
		return model.Transaction{}, err
	}

	parsedDate, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %q: %w", t.ID, err)
	}
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %q: invalid amount %q: %w", t.ID, amount, err)
	}

	t.Date = parsedDate
	t.Amount = parsedAmount
	t.AccountID = accountID.String
	t.CreditCardID = cardID.String
	t.PaidInInvoiceID = paidIn.String
	t.Type = model.TransactionType(txnType)
	t.Paid = paid == 1
	return t, nil
}

// FetchAll returns the user's transactions ordered by date, newest first.
func (c transactionCollection) FetchAll(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := c.s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "user_id", userID, "count", len(txns))
	return txns, nil
}

// Insert stores a new transaction.
func (c transactionCollection) Insert(ctx context.Context, userID string, txn model.Transaction) (model.Transaction, error) {
	if err := validateScope(ctx, userID, txn.ID); err != nil {
		return model.Transaction{}, err
	}
	if err := validateTransaction(txn); err != nil {
		return model.Transaction{}, err
	}

	_, err := c.s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, credit_card_id, category, description, date, amount, type, paid, paid_in_invoice_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, userID, nullableString(txn.AccountID), nullableString(txn.CreditCardID), txn.Category,
		txn.Description, txn.Date.String(), txn.Amount.String(), string(txn.Type), boolToInt(txn.Paid),
		nullableString(txn.PaidInInvoiceID))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Transaction{}, fmt.Errorf("transaction %q: %w", txn.ID, ErrDuplicateRecord)
		}
		return model.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return c.get(ctx, userID, txn.ID)
}

// Update replaces the stored fields of an existing transaction.
func (c transactionCollection) Update(ctx context.Context, userID string, txn model.Transaction) (model.Transaction, error) {
	if err := validateScope(ctx, userID, txn.ID); err != nil {
		return model.Transaction{}, err
	}
	if err := validateTransaction(txn); err != nil {
		return model.Transaction{}, err
	}

	result, err := c.s.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, credit_card_id = ?, category = ?, description = ?, date = ?, amount = ?,
			type = ?, paid = ?, paid_in_invoice_id = ?
		WHERE id = ? AND user_id = ?`,
		nullableString(txn.AccountID), nullableString(txn.CreditCardID), txn.Category, txn.Description,
		txn.Date.String(), txn.Amount.String(), string(txn.Type), boolToInt(txn.Paid),
		nullableString(txn.PaidInInvoiceID), txn.ID, userID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	if err := expectOneRow(result, "transaction", txn.ID); err != nil {
		return model.Transaction{}, err
	}

	return c.get(ctx, userID, txn.ID)
}

// Delete removes a transaction.
func (c transactionCollection) Delete(ctx context.Context, userID, id string) error {
	if err := validateScope(ctx, userID, id); err != nil {
		return err
	}

	result, err := c.s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result, "transaction", id)
}

func (c transactionCollection) get(ctx context.Context, userID, id string) (model.Transaction, error) {
	row := c.s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID)
	txn, err := scanTransaction(row)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to read transaction %q: %w", id, err)
	}
	return txn, nil
}
