// Package service contains the business logic layer. Handlers parse HTTP
// and delegate here; services validate, enforce rules, and talk to the
// repositories. Services return domain errors from apperror, never HTTP
// status codes and never raw storage errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

// Password policy and name limits, enforced before any store access so
// malformed input never reaches persistence.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MaxNameLength     = 100
)

// emailPattern accepts the standard local@domain.tld shape. Deliberately
// loose beyond that: the definitive validity check is whether mail arrives,
// which is out of scope here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService composes the credential store, the password hasher, and the
// token issuer into the registration and login workflows.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles a freshly issued token with the public view of the
// user it belongs to. The password hash never appears here.
type AuthResult struct {
	Token string          `json:"token"`
	User  *model.SafeUser `json:"user"`
}

// Register creates a new account and logs it in.
//
// The email is normalized (trim + lowercase) before both the duplicate
// check and the insert, so two registrations differing only in case or
// whitespace collide. The duplicate check can race with a concurrent
// registration; the store's unique index is the authority, and its
// violation also surfaces as Conflict.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "Name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Name must be %d characters or fewer", MaxNameLength))
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("User with this email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing email: %w", err)
	}

	// Hash only fails for input past bcrypt's 72-byte limit (the cost is
	// fixed and valid), so surface it as a validation problem.
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return &AuthResult{Token: token, User: user.Safe()}, nil
}

// Login verifies credentials and issues a token.
//
// Unknown email and wrong password produce the same InvalidCredentials
// error so the response cannot be used to enumerate accounts. The password
// check is skipped only when the lookup fails, which leaks a timing
// difference of one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return &AuthResult{Token: token, User: user.Safe()}, nil
}

// GetUserByID returns the full user record. Used by the auth middleware to
// resolve a verified token's subject.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	return s.users.GetUserByID(ctx, id)
}

// GetSafeUserByID returns the public user view, with the hash stripped at
// this boundary rather than at serialization time.
func (s *AuthService) GetSafeUserByID(ctx context.Context, id string) (*model.SafeUser, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Safe(), nil
}

// VerifyToken is a thin delegation to the token service so callers outside
// the auth package only need the service.
func (s *AuthService) VerifyToken(tokenStr string) (string, error) {
	return s.tokens.Verify(tokenStr)
}

// NormalizeEmail trims whitespace and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the syntactic local@domain.tld shape.
func ValidateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed("email", "Invalid email format")
	}
	return nil
}

// ValidatePassword enforces the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be less than %d characters", MaxPasswordLength))
	}
	return nil
}
