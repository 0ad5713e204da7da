// Package service defines the contracts between fintrack and its external collaborators:
// the remote record store, the user directory and the local cache.
package service

import (
	"context"

	"github.com/Veraticus/fintrack/internal/model"
)

// Collection is one per-user entity collection of the remote store. Implementations
// translate field naming to and from their own storage format.
type Collection[T any] interface {
	FetchAll(ctx context.Context, userID string) ([]T, error)
	Insert(ctx context.Context, userID string, record T) (T, error)
	Update(ctx context.Context, userID string, record T) (T, error)
	Delete(ctx context.Context, userID, id string) error
}

// RemoteStore groups the four collections kept in sync with local state.
type RemoteStore interface {
	Accounts() Collection[model.Account]
	CreditCards() Collection[model.CreditCard]
	Transactions() Collection[model.Transaction]
	Categories() Collection[model.Category]
}

// UserRecord is a stored user with its password hash.
type UserRecord struct {
	User         model.User
	PasswordHash string
}

// UserStore persists registered users.
type UserStore interface {
	// CreateUser stores a new user. It returns common.ErrEmailTaken when the email
	// is already registered.
	CreateUser(ctx context.Context, email, passwordHash string) (model.User, error)
	// FindUserByEmail returns common.ErrNotFound when no user has the email.
	FindUserByEmail(ctx context.Context, email string) (UserRecord, error)
}

// Cache is a local string key-value store.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// Authenticator resolves and changes the authenticated user.
type Authenticator interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, email, password string) (model.User, error)
	Register(ctx context.Context, email, password string) (model.User, error)
	Logout(ctx context.Context) error
}
