package session

import (
	"context"
	"errors"
	"time"
)

// Session is the stored shape of a login: the server keeps only the HMAC of
// the opaque token the client holds.
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

var (
	// ErrUnauthenticated covers missing, unknown and expired tokens alike.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrNotFound = errors.New("session not found")
)

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, tokenHash string) (Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Cache fronts Resolve lookups. Misses and errors fall through to the Store,
// so a nil or unavailable cache only costs latency.
type Cache interface {
	GetUserID(ctx context.Context, tokenHash string) (string, bool)
	SetUserID(ctx context.Context, tokenHash, userID string, ttl time.Duration)
	Delete(ctx context.Context, tokenHash string)
}

func (s Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
