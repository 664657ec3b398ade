package account

import (
	"context"
	"sync"
	"time"
)

// InMemory keeps accounts in process memory. Primary use is tests
// and local development.
type InMemory struct {
	mu       sync.RWMutex
	users    map[string]*User              // by id
	emails   map[string]string             // email -> user id
	tokens   map[string]*VerificationToken // by token value
	sessions map[string]*Session           // by token value
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[string]*User),
		emails:   make(map[string]string),
		tokens:   make(map[string]*VerificationToken),
		sessions: make(map[string]*Session),
	}
}

func (s *InMemory) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return ErrEmailTaken
	}
	cp := *u
	s.users[u.ID] = &cp
	s.emails[u.Email] = u.ID
	return nil
}

func (s *InMemory) FindUser(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *InMemory) MarkVerified(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.EmailVerified = true
	u.IsActive = true
	u.UpdatedAt = at
	return nil
}

func (s *InMemory) UpdatePassword(_ context.Context, userID, passwordHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = at
	return nil
}

func (s *InMemory) TouchLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	t := at
	u.LastLoginAt = &t
	u.UpdatedAt = at
	return nil
}

func (s *InMemory) CreateToken(_ context.Context, tok *VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[tok.UserID]; !ok {
		return ErrNotFound
	}
	cp := *tok
	s.tokens[tok.Token] = &cp
	return nil
}

func (s *InMemory) FindToken(_ context.Context, token string) (*VerificationToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tok
	if tok.UsedAt != nil {
		used := *tok.UsedAt
		cp.UsedAt = &used
	}
	return &cp, nil
}

func (s *InMemory) ConsumeToken(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[token]
	if !ok {
		return ErrNotFound
	}
	if tok.UsedAt != nil {
		return ErrTokenInvalid
	}
	t := at
	tok.UsedAt = &t
	return nil
}

func (s *InMemory) InvalidateTokens(_ context.Context, userID string, typ TokenType, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.tokens {
		if tok.UserID == userID && tok.Type == typ && tok.UsedAt == nil {
			t := at
			tok.UsedAt = &t
		}
	}
	return nil
}

func (s *InMemory) tokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func (s *InMemory) CreateSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[sess.UserID]; !ok {
		return ErrNotFound
	}
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *InMemory) FindSessionByToken(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemory) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

func (s *InMemory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}
