// Package auth implements the storefront's mock login against a fixed set of demo accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"

	minPasswordLen = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type account struct {
	user domain.User
	hash []byte
}

var demoAccounts = sync.OnceValues(func() (map[string]account, error) {
	seed := []struct {
		user     domain.User
		password string
	}{
		{domain.User{Email: "customer@foodie.com", Name: "John Doe", Role: domain.RoleCustomer}, "customer123"},
		{domain.User{Email: "admin@foodie.com", Name: "Admin User", Role: domain.RoleAdmin}, "admin123"},
	}

	accounts := make(map[string]account, len(seed))
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
		}
		accounts[s.user.Email] = account{user: s.user, hash: hash}
	}

	return accounts, nil
})

// Service tracks the logged-in user of one session. The user survives restarts through the UserStore.
type Service struct {
	store  port.UserStore
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	user   *domain.User
}

func NewService(store port.UserStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ValidateCredentials checks input shape only; it never consults the accounts.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	verr := &domain.ValidationError{}

	switch {
	case email == "":
		verr.Add(FieldEmail, "Email is required")
	case !emailPattern.MatchString(email):
		verr.Add(FieldEmail, "Please enter a valid email address")
	}

	switch {
	case password == "":
		verr.Add(FieldPassword, "Password is required")
	case len(password) < minPasswordLen:
		verr.Add(FieldPassword, "Password must be at least 6 characters")
	}

	return verr.OrNil()
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return domain.User{}, err
	}
	email = strings.TrimSpace(email)

	accounts, err := demoAccounts()
	if err != nil {
		return domain.User{}, err
	}

	acc, ok := accounts[email]
	if !ok {
		s.logger.Info("login rejected: unknown email")
		return domain.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		s.logger.Info("login rejected: password mismatch", zap.String("email", email))
		return domain.User{}, ErrInvalidCredentials
	}

	if err := s.store.SaveCurrentUser(ctx, acc.user); err != nil {
		return domain.User{}, fmt.Errorf("s.store.SaveCurrentUser: %w", err)
	}

	s.mu.Lock()
	user := acc.user
	s.user = &user
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("user logged in", zap.String("email", email), zap.String("role", string(acc.user.Role)))

	return acc.user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.ClearCurrentUser(ctx); err != nil {
		return fmt.Errorf("s.store.ClearCurrentUser: %w", err)
	}

	s.mu.Lock()
	s.user = nil
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// CurrentUser returns the logged-in user, restoring it from the store on first use.
// A store failure is logged and treated as logged out.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		user, ok, err := s.store.LoadCurrentUser(ctx)
		if err != nil {
			s.logger.Warn("restoring current user failed", zap.Error(err))
			return domain.User{}, false
		}

		s.loaded = true
		if ok {
			s.user = &user
		}
	}

	if s.user == nil {
		return domain.User{}, false
	}

	return *s.user, true
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.CurrentUser(ctx)
	return ok
}

func (s *Service) HasRole(ctx context.Context, role domain.Role) bool {
	user, ok := s.CurrentUser(ctx)
	return ok && user.Role == role
}
