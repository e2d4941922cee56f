package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/murmur/murmur/internal/auth"
	"github.com/murmur/murmur/internal/metrics"
	"github.com/murmur/murmur/internal/model"
	"github.com/murmur/murmur/internal/repository"
)

const maxEmailLength = 254

// UserStore is the credential store used by AccountService.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Credentials is the signup and login input.
type Credentials struct {
	Email    string
	Password string
}

// Session is returned on successful signup or login.
type Session struct {
	UserID string
	Token  string
}

// AccountService handles signup and login.
type AccountService struct {
	users   UserStore
	tokens  TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
	newID   func() string
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens TokenIssuer, logger *slog.Logger, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:   users,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger.With("component", "service.account"),
		newID:   newID,
	}
}

// Signup creates a user and returns a session for it.
func (s *AccountService) Signup(ctx context.Context, in Credentials) (*Session, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	user := &model.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.metrics.IncSignup()
	s.logger.Info("user created", "user_id", user.ID)

	return &Session{UserID: user.ID, Token: token}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords both
// return ErrInvalidCredentials after the same bcrypt work.
func (s *AccountService) Login(ctx context.Context, in Credentials) (*Session, error) {
	email := normalizeEmail(in.Email)
	if auth.ValidatePassword(in.Password) != nil {
		auth.CompareDummy(in.Password)
		s.metrics.IncLogin(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.CompareDummy(in.Password)
			s.metrics.IncLogin(metrics.StatusFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := auth.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.metrics.IncLogin(metrics.StatusSuccess)
	return &Session{UserID: user.ID, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail accepts a bare address only; display names are rejected.
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email is too long", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return nil
}
