package service

// Authentication business logic.
//
//	AuthHandler (HTTP) → AuthService → AdminRepository / SessionRepository
//	                                 ↘ TokenService (JWT) + PasswordService (bcrypt)
//
// A login creates a Session row and signs a JWT whose jti is the session id.
// ValidateSession accepts a token only if the signature verifies AND the row
// is still active, so Logout (which revokes the row) takes effect at once.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
	"github.com/ijwihub/studio-cms/internal/validate"
)

// DefaultSessionTTL is used when AuthConfig.SessionTTL is zero.
const DefaultSessionTTL = 12 * time.Hour

var _ auth.Provider = (*AuthService)(nil)

// AuthConfig holds the tunables for AuthService.
type AuthConfig struct {
	SessionTTL time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

// AuthService handles admin login, logout and session checks.
type AuthService struct {
	admins    repository.AdminRepository
	sessions  repository.SessionRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validate.Validator
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewAuthService(
	admins repository.AdminRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	v *validate.Validator,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AuthService{
		admins:    admins,
		sessions:  sessions,
		tokens:    tokens,
		passwords: passwords,
		validate:  v,
		ttl:       cfg.SessionTTL,
		now:       cfg.Now,
		logger:    logger,
	}
}

// invalidCredentials is the one error every failed login returns.
func invalidCredentials() error {
	return apperror.Unauthorized(apperror.InvalidCredentials)
}

// Login exchanges email + password for a new session and its signed token.
//
// Unknown email and wrong password produce the same error, and an unknown
// email still pays for one bcrypt comparison. The log line records the
// attempt but not which of the two it was. There is no lockout.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.passwords.VerifyDummy(password)
		s.logger.Warn("login failed")
		return nil, "", invalidCredentials()
	}

	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("login lookup failed", slog.String("error", err.Error()))
			return nil, "", fmt.Errorf("service/auth: looking up admin: %w", err)
		}
		s.passwords.VerifyDummy(password)
		s.logger.Warn("login failed")
		return nil, "", invalidCredentials()
	}

	if err := s.passwords.Verify(admin.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// A corrupt hash is our problem, but the caller still only sees 401.
			s.logger.Error("stored password hash unusable",
				slog.String("adminID", admin.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Warn("login failed")
		return nil, "", invalidCredentials()
	}

	now := s.now().UTC().Truncate(time.Second)
	sess := &model.Session{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("service/auth: creating session: %w", err)
	}

	token, err := s.tokens.Issue(admin.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("service/auth: issuing token: %w", err)
	}

	s.logger.Info("admin logged in",
		slog.String("adminID", admin.ID),
		slog.String("sessionID", sess.ID),
	)
	return sess, token, nil
}

// Logout revokes the session behind token. It never fails on a bad or
// already-revoked token: the caller just wants the session gone.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, claims.SessionID, s.now().UTC()); err != nil {
		return fmt.Errorf("service/auth: revoking session: %w", err)
	}
	s.logger.Info("admin logged out",
		slog.String("adminID", claims.AdminID),
		slog.String("sessionID", claims.SessionID),
	)
	return nil
}

// ValidateSession returns the active session behind token or an
// apperror.ErrUnauthorized error.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired session")
	}

	sess, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid or expired session")
		}
		return nil, fmt.Errorf("service/auth: loading session: %w", err)
	}
	if sess.AdminID != claims.AdminID || !sess.Active(s.now()) {
		return nil, apperror.Unauthorized("invalid or expired session")
	}
	return sess, nil
}

// Refresh pushes an active session's expiry out by the session TTL and signs a
// fresh token for the same session id.
func (s *AuthService) Refresh(ctx context.Context, token string) (*model.Session, string, error) {
	sess, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, "", err
	}

	sess.ExpiresAt = s.now().UTC().Truncate(time.Second).Add(s.ttl)
	if err := s.sessions.ExtendSession(ctx, sess.ID, sess.ExpiresAt); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// revoked between the check and the update
			return nil, "", apperror.Unauthorized("invalid or expired session")
		}
		return nil, "", fmt.Errorf("service/auth: extending session: %w", err)
	}

	newToken, err := s.tokens.Issue(sess.AdminID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("service/auth: issuing token: %w", err)
	}
	return sess, newToken, nil
}

// CurrentAdmin loads the admin that owns sess.
func (s *AuthService) CurrentAdmin(ctx context.Context, sess *model.Session) (*model.Admin, error) {
	if sess == nil {
		return nil, apperror.Unauthorized("no session")
	}
	return s.admins.GetAdminByID(ctx, sess.AdminID)
}

// seedAdminInput is checked by the validator before anything is hashed.
type seedAdminInput struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,min=8,max=72"`
}

// SeedAdmin creates the admin or resets an existing admin's password.
// Used by `studioctl seed-admin`.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (*model.Admin, error) {
	in := seedAdminInput{Email: normalizeEmail(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	admin := &model.Admin{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.admins.UpsertAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("service/auth: saving admin: %w", err)
	}

	s.logger.Info("admin seeded", slog.String("adminID", admin.ID), slog.String("email", admin.Email))
	return admin, nil
}

// ListAdmins returns every admin. Hashes are present on the structs but never
// serialized.
func (s *AuthService) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	return s.admins.ListAdmins(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
