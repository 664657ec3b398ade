package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGStore implements Store using PostgreSQL. Email uniqueness is
// enforced by a unique index; token and session cleanup rides the
// cascade from the users table.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash,
	is_active, email_verified, last_login_at, created_at, updated_at`

func (s *PGStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, first_name, last_name, password_hash, is_active, email_verified, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsActive, u.EmailVerified, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *PGStore) FindUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGStore) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set email_verified=true, is_active=true, updated_at=$2 where id=$1
	`, userID, at)
	return oneRowOrNotFound(res, err)
}

func (s *PGStore) UpdatePassword(ctx context.Context, userID, passwordHash string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash=$2, updated_at=$3 where id=$1
	`, userID, passwordHash, at)
	return oneRowOrNotFound(res, err)
}

func (s *PGStore) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set last_login_at=$2, updated_at=$2 where id=$1
	`, userID, at)
	return oneRowOrNotFound(res, err)
}

func (s *PGStore) CreateToken(ctx context.Context, tok *VerificationToken) error {
	_, err := s.db.ExecContext(ctx, `
		insert into verification_tokens(id, user_id, token, token_type, expires_at, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, tok.ID, tok.UserID, tok.Token, string(tok.Type), tok.ExpiresAt, tok.CreatedAt)
	return err
}

func (s *PGStore) FindToken(ctx context.Context, token string) (*VerificationToken, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, user_id, token, token_type, expires_at, used_at, created_at
		from verification_tokens where token=$1
	`, token)
	var (
		tok  VerificationToken
		typ  string
		used sql.NullTime
	)
	err := row.Scan(&tok.ID, &tok.UserID, &tok.Token, &typ, &tok.ExpiresAt, &used, &tok.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tok.Type = TokenType(typ)
	if used.Valid {
		t := used.Time
		tok.UsedAt = &t
	}
	return &tok, nil
}

func (s *PGStore) ConsumeToken(ctx context.Context, token string, at time.Time) error {
	// Atomic single-use guard: the condition and the write are one
	// statement, so a racing consumer observes zero rows.
	res, err := s.db.ExecContext(ctx, `
		update verification_tokens set used_at=$2 where token=$1 and used_at is null
	`, token, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

func (s *PGStore) InvalidateTokens(ctx context.Context, userID string, typ TokenType, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		update verification_tokens set used_at=$3
		where user_id=$1 and token_type=$2 and used_at is null
	`, userID, string(typ), at)
	return err
}

func (s *PGStore) CreateSession(ctx context.Context, sess *Session) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions(id, user_id, token, expires_at, created_at)
		values ($1,$2,$3,$4,$5)
	`, sess.ID, sess.UserID, sess.Token, sess.ExpiresAt, sess.CreatedAt)
	return err
}

func (s *PGStore) FindSessionByToken(ctx context.Context, token string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, user_id, token, expires_at, created_at from sessions where token=$1
	`, token)
	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *PGStore) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `delete from sessions where token=$1`, token)
	return oneRowOrNotFound(res, err)
}

func (s *PGStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from sessions where expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u         User
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.EmailVerified, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

func oneRowOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
