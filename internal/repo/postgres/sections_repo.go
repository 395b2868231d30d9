package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ricmelo/menuhub/internal/domain/product"
	"github.com/ricmelo/menuhub/internal/domain/section"
	"github.com/ricmelo/menuhub/internal/observability"
)

type SectionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSectionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SectionsRepo {
	return &SectionsRepo{pool: pool, prom: prom}
}

func (r *SectionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SectionsRepo) Create(ctx context.Context, s section.Section) error {
	return r.observe("sections.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sections (id, user_id, name, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5)`,
			s.ID, s.UserID, s.Name, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})
}

// GetSectionOwner feeds the access guard; it resolves only the owning user.
func (r *SectionsRepo) GetSectionOwner(ctx context.Context, sectionID string) (string, error) {
	var owner string

	err := r.observe("sections.get_owner", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT user_id FROM sections WHERE id = $1`, sectionID,
		).Scan(&owner)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", section.ErrNotFound
		}
		return "", err
	}

	return owner, nil
}

// ListByUserWithProducts returns the user's sections with nested products.
// Insertion order is the de facto display order, so both levels sort by
// (created_at, id).
func (r *SectionsRepo) ListByUserWithProducts(ctx context.Context, userID string) ([]section.WithProducts, error) {
	var out []section.WithProducts

	err := r.observe("sections.list_with_products", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, user_id, name, created_at, updated_at
			FROM sections
			WHERE user_id = $1
			ORDER BY created_at ASC, id ASC`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]section.WithProducts, 0, 8)
		index := make(map[string]int)

		for rows.Next() {
			var s section.Section

			err = rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt, &s.UpdatedAt)

			if err != nil {
				return err
			}

			index[s.ID] = len(out)
			out = append(out, section.WithProducts{
				Section:  s,
				Products: []product.Product{},
			})
		}

		if err = rows.Err(); err != nil {
			return err
		}

		if len(out) == 0 {
			return nil
		}

		sectionIDs := make([]string, 0, len(out))
		for id := range index {
			sectionIDs = append(sectionIDs, id)
		}

		prows, err := r.pool.Query(ctx,
			`SELECT id, section_id, name, description, price, image_path, created_at, updated_at
			FROM products
			WHERE section_id = ANY($1)
			ORDER BY created_at ASC, id ASC`,
			sectionIDs,
		)

		if err != nil {
			return err
		}

		defer prows.Close()

		for prows.Next() {
			var p product.Product

			err = prows.Scan(&p.ID, &p.SectionID, &p.Name, &p.Description, &p.Price, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)

			if err != nil {
				return err
			}

			if i, ok := index[p.SectionID]; ok {
				out[i].Products = append(out[i].Products, p)
			}
		}

		return prows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
