package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ricmelo/menuhub/internal/observability"
	"github.com/ricmelo/menuhub/internal/session"
)

// SessionsRepo is the durable session.Store: one row per live login,
// keyed by token hash.
type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	return r.observe("sessions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
			VALUES ($1,$2,$3,$4)`,
			s.TokenHash, s.UserID, s.ExpiresAt, s.CreatedAt,
		)
		return err
	})
}

func (r *SessionsRepo) Get(ctx context.Context, tokenHash string) (session.Session, error) {
	var s session.Session

	err := r.observe("sessions.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT token_hash, user_id, expires_at, created_at
			FROM sessions
			WHERE token_hash = $1`,
			tokenHash,
		).Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, tokenHash string) error {
	return r.observe("sessions.delete", func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
		return err
	})
}

func (r *SessionsRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	return r.observe("sessions.delete_all_for_user", func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM sessions WHERE user_id = $1`, userID)
		return err
	})
}

func (r *SessionsRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64

	err := r.observe("sessions.delete_expired", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM sessions WHERE expires_at < $1`, before)

		if err != nil {
			return err
		}

		n = tag.RowsAffected()
		return nil
	})

	return n, err
}
