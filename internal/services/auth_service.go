package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
)

// User facing messages of the auth flows.
const (
	MsgEmailInUse         = "email already in use"
	MsgInvalidCredentials = "invalid email or password"
)

// Redirect hints returned to clients after register and login.
const (
	RedirectLogin = "/login"
	RedirectAdmin = "/admin"
	RedirectHome  = "/"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
	VerifyAbsent(ctx context.Context, plaintext string) bool
}

// TokenIssuer mints tokens for authenticated users.
type TokenIssuer interface {
	Issue(subjectID string, role models.Role) (string, time.Time, error)
}

// AuthServiceProvider defines the interface for registration and login.
type AuthServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	CurrentUser(ctx context.Context, id string) (models.User, error)
}

// RegisterInput defines the structure for registration requests.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Validate checks the input before any store access.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Required, validation.By(maxBytes(auth.MaxPasswordBytes))),
		validation.Field(&in.PasswordConfirmation, validation.Required, validation.By(equalsString(in.Password, "passwords do not match"))),
	)
}

// LoginInput defines the structure for login requests.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the input before any store access.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Redirect  string
	User      models.User
}

// AuthService turns credentials into a session identity.
type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	events EventServiceProvider
	now    func() time.Time
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, events EventServiceProvider) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, events: events, now: time.Now}
}

// NormalizeEmail is the canonical form emails are compared and stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RedirectFor returns where a freshly logged in user should land.
func RedirectFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return RedirectAdmin
	case models.RoleUser:
		return RedirectHome
	default:
		return RedirectHome
	}
}

// Register creates a new user with the default role. It writes to the store
// only on success.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return models.User{}, validationError(err)
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return models.User{}, apperr.Conflict(MsgEmailInUse)
	case !errors.Is(err, repository.ErrNotFound):
		return models.User{}, apperr.Internal("failed to register user", fmt.Errorf("lookup email: %w", err))
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return models.User{}, apperr.Internal("failed to register user", err)
	}

	user, err := s.users.Insert(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		// The pre-check above races with concurrent registrations; the store's
		// unique index is the real guarantee.
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, apperr.Conflict(MsgEmailInUse)
		}
		return models.User{}, apperr.Internal("failed to register user", fmt.Errorf("insert user: %w", err))
	}

	record(ctx, s.events, "user.registered", models.EventLevelInfo,
		fmt.Sprintf("User '%s' registered.", user.Name), &user.ID)
	return user.Sanitized(), nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return LoginResult{}, validationError(err)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, apperr.Internal("failed to log in", fmt.Errorf("lookup email: %w", err))
		}
		s.hasher.VerifyAbsent(ctx, in.Password)
		record(ctx, s.events, "user.login_failed", models.EventLevelWarn, "Failed login attempt.", nil)
		return LoginResult{}, apperr.Auth(MsgInvalidCredentials)
	}

	if !s.hasher.Verify(ctx, in.Password, user.PasswordHash) {
		record(ctx, s.events, "user.login_failed", models.EventLevelWarn, "Failed login attempt.", &user.ID)
		return LoginResult{}, apperr.Auth(MsgInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, apperr.Internal("failed to generate token", err)
	}

	record(ctx, s.events, "user.login", models.EventLevelInfo,
		fmt.Sprintf("User '%s' logged in.", user.Name), &user.ID)
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Redirect:  RedirectFor(user.Role),
		User:      user.Sanitized(),
	}, nil
}

// CurrentUser loads the user behind an authenticated identity.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, apperr.Internal("failed to load user", err)
	}
	return user.Sanitized(), nil
}
