package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ricmelo/menuhub/internal/domain/product"
	"github.com/ricmelo/menuhub/internal/observability"
)

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func (r *ProductsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) error {
	return r.observe("products.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO products (id, section_id, name, description, price, image_path, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.SectionID, p.Name, p.Description, p.Price, p.ImagePath, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := r.observe("products.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, section_id, name, description, price, image_path, created_at, updated_at
			FROM products
			WHERE id = $1`,
			id,
		).Scan(&p.ID, &p.SectionID, &p.Name, &p.Description, &p.Price, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}

	return p, nil
}
