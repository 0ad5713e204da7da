package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/model"
)

type categoryCollection struct{ s *SQLiteStorage }

func scanCategory(row rowScanner) (model.Category, error) {
	var cat model.Category
	var catType string
	var isDefault int
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &isDefault); err != nil {
		return model.Category{}, err
	}
	cat.Type = model.CategoryType(catType)
	cat.IsDefault = isDefault == 1
	return cat, nil
}

// FetchAll returns the user's categories ordered by name.
func (c categoryCollection) FetchAll(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := c.s.db.QueryContext(ctx, `
		SELECT id, name, type, is_default
		FROM categories
		WHERE user_id = ?
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user_id", userID, "count", len(categories))
	return categories, nil
}

// Insert stores a new category.
func (c categoryCollection) Insert(ctx context.Context, userID string, cat model.Category) (model.Category, error) {
	if err := validateScope(ctx, userID, cat.ID); err != nil {
		return model.Category{}, err
	}
	if err := validateCategory(cat); err != nil {
		return model.Category{}, err
	}

	_, err := c.s.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, is_default)
		VALUES (?, ?, ?, ?, ?)`,
		cat.ID, userID, cat.Name, string(cat.Type), boolToInt(cat.IsDefault))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Category{}, fmt.Errorf("category %q: %w", cat.ID, ErrDuplicateRecord)
		}
		return model.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}

	return c.get(ctx, userID, cat.ID)
}

// Update replaces the stored fields of an existing category.
func (c categoryCollection) Update(ctx context.Context, userID string, cat model.Category) (model.Category, error) {
	if err := validateScope(ctx, userID, cat.ID); err != nil {
		return model.Category{}, err
	}
	if err := validateCategory(cat); err != nil {
		return model.Category{}, err
	}

	result, err := c.s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, type = ?, is_default = ?
		WHERE id = ? AND user_id = ?`,
		cat.Name, string(cat.Type), boolToInt(cat.IsDefault), cat.ID, userID)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	if err := expectOneRow(result, "category", cat.ID); err != nil {
		return model.Category{}, err
	}

	return c.get(ctx, userID, cat.ID)
}

// Delete removes a category.
func (c categoryCollection) Delete(ctx context.Context, userID, id string) error {
	if err := validateScope(ctx, userID, id); err != nil {
		return err
	}

	result, err := c.s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return expectOneRow(result, "category", id)
}

func (c categoryCollection) get(ctx context.Context, userID, id string) (model.Category, error) {
	row := c.s.db.QueryRowContext(ctx, `
		SELECT id, name, type, is_default
		FROM categories
		WHERE id = ? AND user_id = ?`, id, userID)
	cat, err := scanCategory(row)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to read category %q: %w", id, err)
	}
	return cat, nil
}
