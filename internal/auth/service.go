// ABOUTME: Registration and login service backed by the user store
// ABOUTME: Issues JWT access tokens on successful credential verification

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/2389/babel-gateway/internal/store"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidLanguage    = errors.New("invalid language code")
	ErrPasswordTooShort   = errors.New("password too short")
)

// Username validation regex: alphanumeric + underscores, 3-32 characters
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)

// Language codes are two lowercase letters (ISO 639-1), e.g. "en", "es", "zh".
var languageRegex = regexp.MustCompile(`^[a-z]{2}$`)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// UserStore defines what the auth service needs from storage.
type UserStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
}

// Service handles user registration and credential verification.
type Service struct {
	users    UserStore
	verifier *JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a new auth service.
func NewService(users UserStore, verifier *JWTVerifier, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		verifier: verifier,
		tokenTTL: tokenTTL,
		logger:   slog.Default().With("component", "auth"),
	}
}

// Register creates a new user account with a hashed password.
// Returns ErrUsernameTaken if the username is already registered.
func (s *Service) Register(ctx context.Context, username, password, language string) (*store.User, error) {
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !languageRegex.MatchString(language) {
		return nil, ErrInvalidLanguage
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Username:     username,
		PasswordHash: hash,
		Language:     language,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "language", user.Language)
	return user, nil
}

// Login verifies credentials and returns a signed access token.
// Returns ErrInvalidCredentials for unknown usernames and wrong passwords alike.
func (s *Service) Login(ctx context.Context, username, password string) (token string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			DummyCompare(password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err = s.verifier.Generate(user.Username, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return token, nil
}

// Authenticate resolves a bearer token to a Principal.
// Returns ErrInvalidToken (or ErrExpiredToken) when the token does not
// resolve to a known user.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	username, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return &Principal{
		ID:       user.ID,
		Username: user.Username,
		Language: user.Language,
	}, nil
}
