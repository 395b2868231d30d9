package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/security"
)

// EnsureSeedOwner creates a bootstrap restaurant owner for local development.
// No-op unless SEED_USERNAME/SEED_PASSWORD are set, or if the account exists.
func EnsureSeedOwner(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedUsername == "" || cfg.SeedPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.SeedUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	u := user.NewFromRegisterRequest(user.RegisterRequest{
		Username:       cfg.SeedUsername,
		RestaurantName: cfg.SeedRestaurant,
	}, hash)

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, restaurant_name, logo_path, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.PasswordHash, u.RestaurantName, u.LogoPath, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
