package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// CreateUser registers a user under a fresh id. Emails are compared case-insensitively.
func (s *SQLiteStorage) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	if err := validateContext(ctx); err != nil {
		return model.User{}, err
	}
	if err := validateString(email, "email"); err != nil {
		return model.User{}, err
	}
	if err := validateString(passwordHash, "passwordHash"); err != nil {
		return model.User{}, err
	}

	user := model.User{ID: model.NewID(), Email: normalizeEmail(email)}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES (?, ?, ?)`, user.ID, user.Email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("%s: %w", user.Email, common.ErrEmailTaken)
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindUserByEmail looks up a registered user.
func (s *SQLiteStorage) FindUserByEmail(ctx context.Context, email string) (service.UserRecord, error) {
	if err := validateContext(ctx); err != nil {
		return service.UserRecord{}, err
	}
	if err := validateString(email, "email"); err != nil {
		return service.UserRecord{}, err
	}

	var rec service.UserRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash
		FROM users
		WHERE email = ?`, normalizeEmail(email)).
		Scan(&rec.User.ID, &rec.User.Email, &rec.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return service.UserRecord{}, fmt.Errorf("user %q: %w", email, ErrRecordNotFound)
	}
	if err != nil {
		return service.UserRecord{}, fmt.Errorf("failed to find user: %w", err)
	}
	return rec, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
