// Package auth implements the account boundary: register, login, and
// current-user lookup. Passwords are bcrypt-hashed and never returned;
// identity travels as a signed token opaque to the rest of the system.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/store"
)

var (
	ErrMissingFields = errors.New("all fields are required")
	// ErrUserNotFound and ErrBadPassword are distinct internally (the API
	// maps them to 404 and 401) but neither message names which credential
	// was wrong.
	ErrUserNotFound = errors.New("user does not exist")
	ErrBadPassword  = errors.New("invalid user credentials")
)

const bcryptCost = 10

// Service handles registration and login against the user store.
type Service struct {
	users  *store.UserStore
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewService(users *store.UserStore, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates an account and issues a token. Email uniqueness is
// enforced by the store; duplicates surface as store.ErrEmailTaken.
func (s *Service) Register(name, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(name, email, string(hash))
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user registered", "email", user.Email)
	return user, token, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(email, password string) (*models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrBadPassword
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "email", user.Email)
	return user, token, nil
}

// CurrentUser fetches the account behind a verified token subject.
func (s *Service) CurrentUser(id string) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
