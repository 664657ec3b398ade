package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"rfpdesk.io/internal/audit"
	"rfpdesk.io/internal/ids"
)

const (
	defaultVerificationTTL = 24 * time.Hour
	defaultResetTTL        = 1 * time.Hour
	defaultSessionTTL      = 7 * 24 * time.Hour

	minPasswordLength = 8
)

// Service provides registration, verification, password reset, login
// and session validation on top of a Store.
type Service struct {
	store Store
	now   func() time.Time

	verificationTTL time.Duration
	resetTTL        time.Duration
	sessionTTL      time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSessionTTL configures session lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithVerificationTTL configures email verification token lifetime.
func WithVerificationTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.verificationTTL = ttl
		}
	}
}

// WithResetTTL configures password reset token lifetime.
func WithResetTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// NewService constructs Service with default TTLs.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		now:             time.Now,
		verificationTTL: defaultVerificationTTL,
		resetTTL:        defaultResetTTL,
		sessionTTL:      defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates an inactive, unverified user and issues an email
// verification token. The token value is returned to the caller so the
// mail collaborator can deliver it; it is never logged. A duplicate
// email fails before any token is created.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, *VerificationToken, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	user := &User{
		ID:            ids.New(),
		Email:         email,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		PasswordHash:  hash,
		IsActive:      false,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	tok, err := s.issueToken(ctx, user.ID, TokenEmailVerification, s.verificationTTL)
	if err != nil {
		return nil, nil, err
	}
	_ = audit.LogEvent(ctx, "account.registered", map[string]any{"user_id": user.ID})
	return user, tok, nil
}

// VerifyEmail consumes a valid email verification token and activates
// the user. A used or unknown token fails with ErrTokenInvalid, an
// expired one with ErrTokenExpired.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	rec, err := s.consumableToken(ctx, token, TokenEmailVerification)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.store.ConsumeToken(ctx, rec.Token, now); err != nil {
		return nil, err
	}
	if err := s.store.MarkVerified(ctx, rec.UserID, now); err != nil {
		return nil, err
	}
	_ = audit.LogEvent(ctx, "account.verified", map[string]any{"user_id": rec.UserID})
	return s.store.FindUser(ctx, rec.UserID)
}

// RequestPasswordReset invalidates any outstanding reset tokens for
// the user and issues a fresh one — at most one live reset token per
// user at a time. Unknown emails return ErrNotFound; the HTTP layer
// masks this to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*VerificationToken, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.store.InvalidateTokens(ctx, user.ID, TokenPasswordReset, now); err != nil {
		return nil, err
	}
	tok, err := s.issueToken(ctx, user.ID, TokenPasswordReset, s.resetTTL)
	if err != nil {
		return nil, err
	}
	_ = audit.LogEvent(ctx, "account.reset_requested", map[string]any{"user_id": user.ID})
	return tok, nil
}

// ResetPassword consumes a valid reset token and replaces the user's
// password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	rec, err := s.consumableToken(ctx, token, TokenPasswordReset)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if err := s.store.ConsumeToken(ctx, rec.Token, now); err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, rec.UserID, hash, now); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "account.password_reset", map[string]any{"user_id": rec.UserID})
	return nil
}

// Login authenticates credentials and opens a session. Failures are
// uniform on purpose: unknown email, wrong password and inactive user
// all return ErrAuthentication; only the audit log distinguishes them.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, *User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrAuthentication
	}
	user, err := s.store.FindUserByEmail(ctx, normalized)
	if err != nil {
		_ = audit.LogEvent(ctx, "account.login_denied", map[string]any{"reason": "unknown_email"})
		return nil, nil, ErrAuthentication
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		_ = audit.LogEvent(ctx, "account.login_denied", map[string]any{"reason": "bad_password", "user_id": user.ID})
		return nil, nil, ErrAuthentication
	}
	if !user.IsActive {
		_ = audit.LogEvent(ctx, "account.login_denied", map[string]any{"reason": "inactive", "user_id": user.ID})
		return nil, nil, ErrAuthentication
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        ids.New(),
		UserID:    user.ID,
		Token:     newOpaqueToken(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, err
	}
	if err := s.store.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now
	_ = audit.LogEvent(ctx, "account.login", map[string]any{"user_id": user.ID})
	return sess, user, nil
}

// ValidateSession authorizes a presented session token. Expired
// sessions never authorize but are not deleted here; ReapSessions
// handles cleanup.
func (s *Service) ValidateSession(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrAuthentication
	}
	sess, err := s.store.FindSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		return nil, ErrAuthentication
	}
	return s.store.FindUser(ctx, sess.UserID)
}

// Logout removes the session for the presented token. Unknown tokens
// are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	err := s.store.DeleteSession(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// ReapSessions deletes expired sessions and returns how many were
// removed.
func (s *Service) ReapSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now().UTC())
}

func (s *Service) issueToken(ctx context.Context, userID string, typ TokenType, ttl time.Duration) (*VerificationToken, error) {
	now := s.now().UTC()
	tok := &VerificationToken{
		ID:        ids.New(),
		UserID:    userID,
		Token:     newOpaqueToken(),
		Type:      typ,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.store.CreateToken(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// consumableToken loads and checks a token without consuming it. Order
// matters: a used token reports invalid even when also expired, and an
// expired-but-unused one reports expired.
func (s *Service) consumableToken(ctx context.Context, token string, typ TokenType) (*VerificationToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}
	rec, err := s.store.FindToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if rec.Type != typ {
		return nil, ErrTokenInvalid
	}
	if rec.UsedAt != nil {
		return nil, ErrTokenInvalid
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return rec, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("%w: malformed email", ErrValidation)
	}
	return email, nil
}

func newOpaqueToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for credential issuance.
		panic(fmt.Sprintf("account: rand.Read: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
