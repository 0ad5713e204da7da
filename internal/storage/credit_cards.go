package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/model"
)

const creditCardColumns = `id, name, last_four_digits, flag, inactive, invoice_closing_day, invoice_due_day`

type creditCardCollection struct{ s *SQLiteStorage }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreditCard(row rowScanner) (model.CreditCard, error) {
	var c model.CreditCard
	var lastFour sql.NullString
	var inactive int
	var closing, due sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &lastFour, &c.Flag, &inactive, &closing, &due); err != nil {
		return model.CreditCard{}, err
	}
	c.LastFourDigits = lastFour.String
	c.Inactive = inactive == 1
	c.InvoiceClosingDay = intPtr(closing)
	c.InvoiceDueDay = intPtr(due)
	return c, nil
}

// FetchAll returns the user's credit cards, newest first.
func (c creditCardCollection) FetchAll(ctx context.Context, userID string) ([]model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := c.s.db.QueryContext(ctx, `
		SELECT `+creditCardColumns+`
		FROM credit_cards
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit cards: %w", err)
	}
	defer rows.Close()

	var cards []model.CreditCard
	for rows.Next() {
		card, err := scanCreditCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit cards: %w", err)
	}

	slog.Debug("retrieved credit cards", "user_id", userID, "count", len(cards))
	return cards, nil
}

// Insert stores a new credit card.
func (c creditCardCollection) Insert(ctx context.Context, userID string, card model.CreditCard) (model.CreditCard, error) {
	if err := validateScope(ctx, userID, card.ID); err != nil {
		return model.CreditCard{}, err
	}

	_, err := c.s.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, user_id, name, last_four_digits, flag, inactive, invoice_closing_day, invoice_due_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, userID, card.Name, nullableString(card.LastFourDigits), card.Flag, boolToInt(card.Inactive),
		nullableInt(card.InvoiceClosingDay), nullableInt(card.InvoiceDueDay))
	if err != nil {
		if isUniqueViolation(err) {
			return model.CreditCard{}, fmt.Errorf("credit card %q: %w", card.ID, ErrDuplicateRecord)
		}
		return model.CreditCard{}, fmt.Errorf("failed to insert credit card: %w", err)
	}

	return c.get(ctx, userID, card.ID)
}

// Update replaces the stored fields of an existing credit card.
func (c creditCardCollection) Update(ctx context.Context, userID string, card model.CreditCard) (model.CreditCard, error) {
	if err := validateScope(ctx, userID, card.ID); err != nil {
		return model.CreditCard{}, err
	}

	result, err := c.s.db.ExecContext(ctx, `
		UPDATE credit_cards
		SET name = ?, last_four_digits = ?, flag = ?, inactive = ?, invoice_closing_day = ?, invoice_due_day = ?
		WHERE id = ? AND user_id = ?`,
		card.Name, nullableString(card.LastFourDigits), card.Flag, boolToInt(card.Inactive),
		nullableInt(card.InvoiceClosingDay), nullableInt(card.InvoiceDueDay), card.ID, userID)
	if err != nil {
		return model.CreditCard{}, fmt.Errorf("failed to update credit card: %w", err)
	}
	if err := expectOneRow(result, "credit card", card.ID); err != nil {
		return model.CreditCard{}, err
	}

	return c.get(ctx, userID, card.ID)
}

// Delete removes a credit card.
func (c creditCardCollection) Delete(ctx context.Context, userID, id string) error {
	if err := validateScope(ctx, userID, id); err != nil {
		return err
	}

	result, err := c.s.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	return expectOneRow(result, "credit card", id)
}

func (c creditCardCollection) get(ctx context.Context, userID, id string) (model.CreditCard, error) {
	row := c.s.db.QueryRowContext(ctx, `
		SELECT `+creditCardColumns+`
		FROM credit_cards
		WHERE id = ? AND user_id = ?`, id, userID)
	card, err := scanCreditCard(row)
	if err != nil {
		return model.CreditCard{}, fmt.Errorf("failed to read credit card %q: %w", id, err)
	}
	return card, nil
}
