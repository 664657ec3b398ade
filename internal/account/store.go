package account

import (
	"context"
	"time"
)

// Store describes persistence operations required by the account
// subsystem. The backing storage enforces uniqueness of user emails,
// token values and session tokens, and cascade-deletes tokens and
// sessions with their user.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindUser(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// MarkVerified sets emailVerified and isActive in one write.
	MarkVerified(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, at time.Time) error
	TouchLogin(ctx context.Context, userID string, at time.Time) error

	CreateToken(ctx context.Context, tok *VerificationToken) error
	FindToken(ctx context.Context, token string) (*VerificationToken, error)
	// ConsumeToken marks the token used iff it is still unused. The
	// check and the write are one atomic conditional update keyed on
	// used_at being null; a lost race returns ErrTokenInvalid.
	ConsumeToken(ctx context.Context, token string, at time.Time) error
	// InvalidateTokens marks every outstanding unused token of the
	// given type for the user as used, so at most one live token of a
	// type exists at a time.
	InvalidateTokens(ctx context.Context, userID string, typ TokenType, at time.Time) error

	CreateSession(ctx context.Context, s *Session) error
	FindSessionByToken(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions is the explicit reap sweep; the validation
	// read path never deletes.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
