package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"
)

const tokenBytes = 32 // 256 bits of entropy per token

type Manager struct {
	store  Store
	cache  Cache
	pepper []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager wires a session manager over a durable store and an optional
// cache. ttl is the absolute lifetime of every issued token.
func NewManager(store Store, cache Cache, pepper string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		cache:  cache,
		pepper: []byte(pepper),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock substitutes the time source. Tests use this to expire sessions
// without sleeping.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue creates a session for userID and returns the raw token exactly once;
// only its HMAC is persisted.
func (m *Manager) Issue(ctx context.Context, userID string) (string, Session, error) {
	raw, err := newToken()

	if err != nil {
		return "", Session{}, err
	}

	now := m.now().UTC()

	s := Session{
		TokenHash: m.hash(raw),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}

	if err := m.store.Create(ctx, s); err != nil {
		return "", Session{}, err
	}

	if m.cache != nil {
		m.cache.SetUserID(ctx, s.TokenHash, userID, m.ttl)
	}

	return raw, s, nil
}

// Resolve maps a presented token to the user it authenticates. Missing,
// unknown and expired tokens are indistinguishable to the caller.
func (m *Manager) Resolve(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrUnauthenticated
	}

	tokenHash := m.hash(raw)

	if m.cache != nil {
		if userID, ok := m.cache.GetUserID(ctx, tokenHash); ok {
			return userID, nil
		}
	}

	s, err := m.store.Get(ctx, tokenHash)

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", err
	}

	if s.ExpiredAt(m.now().UTC()) {
		// lazily drop the row; the janitor picks up stragglers
		_ = m.store.Delete(ctx, tokenHash)
		return "", ErrUnauthenticated
	}

	if m.cache != nil {
		m.cache.SetUserID(ctx, tokenHash, s.UserID, time.Until(s.ExpiresAt))
	}

	return s.UserID, nil
}

// Destroy invalidates the token immediately. Destroying an unknown or
// already-destroyed token is not an error.
func (m *Manager) Destroy(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	tokenHash := m.hash(raw)

	if m.cache != nil {
		m.cache.Delete(ctx, tokenHash)
	}

	err := m.store.Delete(ctx, tokenHash)

	if errors.Is(err, ErrNotFound) {
		return nil
	}

	return err
}

// TTL reports the configured absolute session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Deterministic HMAC hash (server-side pepper). Store this in DB, never the
// raw token; lookup by hash keeps comparisons constant-time.
func (m *Manager) hash(raw string) string {
	h := hmac.New(sha256.New, m.pepper)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
