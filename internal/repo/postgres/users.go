package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, password_hash, restaurant_name, logo_path, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Username, u.PasswordHash, u.RestaurantName, u.LogoPath, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrUsernameTaken
		}
		return err
	}

	return nil
}

// GetByUsername is a case-sensitive exact match; login depends on that.
func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_username", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, username, password_hash, restaurant_name, logo_path, created_at, updated_at
			FROM users
			WHERE username = $1`,
			username,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RestaurantName, &u.LogoPath, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, username, password_hash, restaurant_name, logo_path, created_at, updated_at
			FROM users
			WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RestaurantName, &u.LogoPath, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error {
	var sets []string
	var args []interface{}

	argsPosition := 1

	if upd.RestaurantName != nil {
		sets = append(sets, fmt.Sprintf("restaurant_name = $%d", argsPosition))
		args = append(args, *upd.RestaurantName)
		argsPosition++
	}

	if upd.LogoPath != nil {
		sets = append(sets, fmt.Sprintf("logo_path = $%d", argsPosition))
		args = append(args, *upd.LogoPath)
		argsPosition++
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(" WHERE id = $%d", argsPosition)

	return r.observe("users.update_profile", func() error {
		tag, err := r.pool.Exec(ctx, query, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// Delete removes the user and everything it transitively owns: products,
// then sections, then live sessions, then the user row, in one transaction.
// Either all of it goes or none of it does.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("users.delete_cascade", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`DELETE FROM products
			WHERE section_id IN (SELECT id FROM sections WHERE user_id = $1)`, id)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM sections WHERE user_id = $1`, id)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id)

		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return tx.Commit(ctx)
	})
}
