// Package auth registers and authenticates users against a service.UserStore and
// remembers the session in the local cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/localcache"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Service implements service.Authenticator.
type Service struct {
	users service.UserStore
	cache service.Cache
	cost  int
}

var _ service.Authenticator = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates an authentication service.
func NewService(users service.UserStore, cache service.Cache, opts ...Option) *Service {
	s := &Service{users: users, cache: cache, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentUser returns the remembered user, or nil when nobody is logged in.
func (s *Service) CurrentUser(_ context.Context) (*model.User, error) {
	return localcache.LoadUser(s.cache)
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, email, password string) (model.User, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return model.User{}, common.NewUserError("Email already registered", err)
		}
		return model.User{}, fmt.Errorf("failed to register: %w", err)
	}

	if err := localcache.SaveUser(s.cache, user); err != nil {
		return model.User{}, err
	}
	slog.Info("Registered user", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and remembers the user.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return model.User{}, err
	}

	rec, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return model.User{}, common.NewUserError("Invalid email or password", common.ErrInvalidCredentials)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return model.User{}, common.NewUserError("Invalid email or password", common.ErrInvalidCredentials)
	}

	if err := localcache.SaveUser(s.cache, rec.User); err != nil {
		return model.User{}, err
	}
	slog.Info("Logged in", "user_id", rec.User.ID)
	return rec.User, nil
}

// Logout forgets the remembered user.
func (s *Service) Logout(_ context.Context) error {
	if err := s.cache.Delete(localcache.KeyUser); err != nil {
		return fmt.Errorf("failed to forget user: %w", err)
	}
	return nil
}

func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !common.IsEmail(email) {
		return "", common.NewUserError("Enter a valid email address", common.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return "", common.NewUserError(
			fmt.Sprintf("Password must have at least %d characters", MinPasswordLength),
			common.ErrInvalidInput)
	}
	return email, nil
}
