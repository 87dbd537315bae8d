package category

import (
	"context"
	"errors"

	"campus-food-ordering/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context, categoryType string) ([]domain.ItemCategory, error) {
	const q = `
SELECT category_id::text, category_name, category_type, category_img, created_at, updated_at
FROM item_category
WHERE $1 = '' OR category_type = $1
ORDER BY category_name ASC
`
	rows, err := r.pool.Query(ctx, q, categoryType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ItemCategory
	for rows.Next() {
		var c domain.ItemCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.ItemCategory, error) {
	const q = `
SELECT category_id::text, category_name, category_type, category_img, created_at, updated_at
FROM item_category
WHERE category_name = $1
`
	var c domain.ItemCategory
	err := r.pool.QueryRow(ctx, q, name).Scan(&c.ID, &c.Name, &c.Type, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.ItemCategory) (*domain.ItemCategory, error) {
	const q = `
INSERT INTO item_category (category_name, category_type, category_img)
VALUES ($1, $2, $3)
ON CONFLICT (category_name) DO UPDATE
SET category_type = COALESCE(NULLIF(EXCLUDED.category_type, ''), item_category.category_type),
    category_img = COALESCE(NULLIF(EXCLUDED.category_img, ''), item_category.category_img),
    updated_at = now()
RETURNING category_id::text, category_name, category_type, category_img, created_at, updated_at
`
	var out domain.ItemCategory
	err := r.pool.QueryRow(ctx, q, c.Name, c.Type, c.Image).
		Scan(&out.ID, &out.Name, &out.Type, &out.Image, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
