package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

type userRow struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// CreateUser registers a user row. A conflict on email maps to common.ErrEmailTaken.
func (c *Client) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	in := userRow{
		ID:           model.NewID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}

	var rows []userRow
	if err := c.do(ctx, "POST", "users", nil, in, &rows); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return model.User{}, fmt.Errorf("%s: %w", in.Email, common.ErrEmailTaken)
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	if len(rows) == 0 {
		return model.User{ID: in.ID, Email: in.Email}, nil
	}
	return model.User{ID: rows[0].ID, Email: rows[0].Email}, nil
}

// FindUserByEmail looks up a user row by email.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (service.UserRecord, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	query := url.Values{}
	query.Set("select", "id,email,password_hash")
	query.Set("email", eq(normalized))
	query.Set("limit", "1")

	var rows []userRow
	if err := c.do(ctx, "GET", "users", query, nil, &rows); err != nil {
		return service.UserRecord{}, fmt.Errorf("failed to find user: %w", err)
	}
	if len(rows) == 0 {
		return service.UserRecord{}, fmt.Errorf("user %q: %w", normalized, common.ErrNotFound)
	}
	return service.UserRecord{
		User:         model.User{ID: rows[0].ID, Email: rows[0].Email},
		PasswordHash: rows[0].PasswordHash,
	}, nil
}
