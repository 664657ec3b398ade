package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	cur := start
	return func() time.Time { return cur }, func(d time.Duration) { cur = cur.Add(d) }
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, func(time.Duration)) {
	t.Helper()
	now, advance := testClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(NewInMemory(), append([]ServiceOption{WithClock(now)}, opts...)...)
	return svc, advance
}

func register(t *testing.T, svc *Service) (*User, *VerificationToken) {
	t.Helper()
	user, tok, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Sara@Example.COM",
		FirstName: "Sara",
		LastName:  "Haddad",
		Password:  "correct horse",
	})
	require.NoError(t, err)
	return user, tok
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, tok := register(t, svc)
	require.Equal(t, "sara@example.com", user.Email, "email normalized to lowercase")
	require.False(t, user.IsActive)
	require.False(t, user.EmailVerified)
	require.NotEmpty(t, tok.Token)
	require.Equal(t, TokenEmailVerification, tok.Type)

	// Unverified accounts cannot log in, and the failure is the same
	// uniform error as a bad password.
	_, _, err := svc.Login(ctx, "sara@example.com", "correct horse")
	require.ErrorIs(t, err, ErrAuthentication)

	verified, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)
	require.True(t, verified.IsActive)
	require.True(t, verified.EmailVerified)

	sess, logged, err := svc.Login(ctx, "sara@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.NotNil(t, logged.LastLoginAt)

	got, err := svc.ValidateSession(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := NewInMemory()
	now, _ := testClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(store, WithClock(now))
	register(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "sara@example.com",
		Password: "another pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.ErrorIs(t, err, ErrValidation)

	// Only the first registration minted a verification token; the
	// rejected duplicate left nothing behind.
	require.Equal(t, 1, store.tokenCount())
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "long enough"})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "ok@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestVerifyEmailTokenSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, tok := register(t, svc)

	_, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, tok.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmailTokenExpired(t *testing.T) {
	svc, advance := newTestService(t)
	_, tok := register(t, svc)

	advance(24*time.Hour + time.Minute)
	_, err := svc.VerifyEmail(context.Background(), tok.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.VerifyEmail(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, tok := register(t, svc)
	_, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)

	reset, err := svc.RequestPasswordReset(ctx, "sara@example.com")
	require.NoError(t, err)
	require.Equal(t, TokenPasswordReset, reset.Type)

	require.NoError(t, svc.ResetPassword(ctx, reset.Token, "brand new secret"))

	_, _, err = svc.Login(ctx, "sara@example.com", "correct horse")
	require.ErrorIs(t, err, ErrAuthentication, "old password rejected")

	_, _, err = svc.Login(ctx, "sara@example.com", "brand new secret")
	require.NoError(t, err)

	// The consumed token cannot reset again.
	err = svc.ResetPassword(ctx, reset.Token, "yet another one")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordResetSupersedesOutstandingToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	first, err := svc.RequestPasswordReset(ctx, "sara@example.com")
	require.NoError(t, err)
	second, err := svc.RequestPasswordReset(ctx, "sara@example.com")
	require.NoError(t, err)

	// Requesting again invalidates the earlier token; only the latest
	// one is live.
	err = svc.ResetPassword(ctx, first.Token, "should not work!")
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.NoError(t, svc.ResetPassword(ctx, second.Token, "should work fine"))
}

func TestPasswordResetTokenExpires(t *testing.T) {
	svc, advance := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	reset, err := svc.RequestPasswordReset(ctx, "sara@example.com")
	require.NoError(t, err)

	advance(time.Hour + time.Second)
	err = svc.ResetPassword(ctx, reset.Token, "too late for this")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerificationTokenRejectedForReset(t *testing.T) {
	svc, _ := newTestService(t)
	_, tok := register(t, svc)

	// A verification token must not work as a reset token.
	err := svc.ResetPassword(context.Background(), tok.Token, "sneaky password")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLoginUniformFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, tok := register(t, svc)
	_, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)

	cases := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "other@example.com", "correct horse"},
		{"wrong password", "sara@example.com", "wrong horse"},
		{"malformed email", "not-an-email", "correct horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc.email, tc.password)
			require.ErrorIs(t, err, ErrAuthentication)
		})
	}
}

func TestSessionExpiryAndReap(t *testing.T) {
	svc, advance := newTestService(t, WithSessionTTL(30*time.Minute))
	ctx := context.Background()
	_, tok := register(t, svc)
	_, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)

	sess, _, err := svc.Login(ctx, "sara@example.com", "correct horse")
	require.NoError(t, err)

	advance(29 * time.Minute)
	_, err = svc.ValidateSession(ctx, sess.Token)
	require.NoError(t, err)

	advance(2 * time.Minute)
	_, err = svc.ValidateSession(ctx, sess.Token)
	require.ErrorIs(t, err, ErrAuthentication)

	// Expiry does not delete; the sweep does.
	n, err := svc.ReapSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = svc.ReapSessions(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, tok := register(t, svc)
	_, err := svc.VerifyEmail(ctx, tok.Token)
	require.NoError(t, err)

	sess, _, err := svc.Login(ctx, "sara@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.ValidateSession(ctx, sess.Token)
	require.ErrorIs(t, err, ErrAuthentication)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(ctx, sess.Token))
}

func TestConsumeTokenRaceLosesCleanly(t *testing.T) {
	store := NewInMemory()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(store, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, tok, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, store.ConsumeToken(ctx, tok.Token, now))
	err = store.ConsumeToken(ctx, tok.Token, now)
	require.True(t, errors.Is(err, ErrTokenInvalid))
}
