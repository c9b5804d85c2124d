// Authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	UserHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Register and Login, each returning the user record and a session token
//   - Verify, which turns a bearer token back into an auth.Identity for the
//     RequireAuth middleware
//
// LOGIN ERRORS:
// An unknown email and a wrong password produce the same Unauthorized error
// with the same message. Registration, on the other hand, reports an
// existing email as a Conflict.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid or expired token"
)

// EventRecorder receives authentication outcomes, e.g. for metrics.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, string) {}

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → generate/validate JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	events    EventRecorder
	logger    *slog.Logger
}

var _ auth.Verifier = (*AuthService)(nil)

// NewAuthService creates an AuthService with all required dependencies.
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
		events:    nopRecorder{},
		logger:    logger,
	}
}

// WithRecorder sets the recorder that observes register, login and verify
// outcomes. It returns s for chaining.
func (s *AuthService) WithRecorder(r EventRecorder) *AuthService {
	if r != nil {
		s.events = r
	}
	return s
}

// AuthResult bundles the user record and the issued token so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

const msgMissingRegisterFields = "Missing required fields: username, email, password"

var registerMessages = map[string]string{
	"password.min": fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a non-admin account and signs the user in.
//
// The email pre-check gives a friendly Conflict; the unique index on
// users.email turns a concurrent duplicate into the same Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	username, email := in.Username, in.Email

	if err := validateInput(in, registerMessages, msgMissingRegisterFields); err != nil {
		s.events.RecordAuthEvent("register", "invalid")
		return nil, err
	}
	if len(in.Password) > 72 {
		s.events.RecordAuthEvent("register", "invalid")
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		s.events.RecordAuthEvent("register", "conflict")
		return nil, apperror.Conflict("email", "Email already registered")
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("failed to look up email", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.events.RecordAuthEvent("register", "conflict")
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.events.RecordAuthEvent("register", "success")
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks the password for email and issues a token carrying the
// stored admin flag.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in, nil, "Email and password are required"); err != nil {
		s.events.RecordAuthEvent("login", "invalid")
		return nil, err
	}
	email, password := in.Email, in.Password

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.events.RecordAuthEvent("login", "failure")
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		s.logger.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: fetching user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.events.RecordAuthEvent("login", "failure")
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.events.RecordAuthEvent("login", "success")
	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Verify validates token and reloads its user. The returned Identity carries
// the stored is_admin flag, not the one in the token. Verify has no side
// effects beyond the read.
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.events.RecordAuthEvent("verify", "failure")
		return nil, apperror.Unauthorized(msgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.events.RecordAuthEvent("verify", "failure")
			return nil, apperror.Unauthorized("User not found")
		}
		s.logger.Error("failed to reload token user",
			slog.String("userID", claims.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: reloading user %s: %w", claims.UserID, err)
	}

	s.events.RecordAuthEvent("verify", "success")
	return &auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// Me returns the full record of the authenticated caller.
func (s *AuthService) Me(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil {
		return nil, apperror.Unauthorized("No token provided")
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id.UserID, err)
	}
	return user, nil
}
