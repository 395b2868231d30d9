package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ricmelo/menuhub/internal/session"
)

// SessionsRepo is an in-memory session.Store. Used by tests and by dev setups
// that run without postgres.
type SessionsRepo struct {
	mu sync.RWMutex
	m  map[string]session.Session
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{m: make(map[string]session.Session)}
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.m[s.TokenHash] = s
	return nil
}

func (r *SessionsRepo) Get(ctx context.Context, tokenHash string) (session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.m[tokenHash]

	if !ok {
		return session.Session{}, session.ErrNotFound
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.m, tokenHash)
	return nil
}

func (r *SessionsRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, s := range r.m {
		if s.UserID == userID {
			delete(r.m, hash)
		}
	}
	return nil
}

func (r *SessionsRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64

	for hash, s := range r.m {
		if before.After(s.ExpiresAt) {
			delete(r.m, hash)
			n++
		}
	}

	return n, nil
}

// Len reports the number of live rows; test helper.
func (r *SessionsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.m)
}
