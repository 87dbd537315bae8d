package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"campus-food-ordering/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const itemColumns = `item_id::text, category_id::text, item_name, item_description, item_price::text, item_img, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM item WHERE item_id = $1`
	return scanItem(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM item ORDER BY item_name ASC`
	return r.list(ctx, q)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM item WHERE category_id = $1 ORDER BY item_name ASC`
	return r.list(ctx, q, categoryID)
}

func (r *postgresRepo) Upsert(ctx context.Context, it domain.Item) (*domain.Item, error) {
	q := `
INSERT INTO item (category_id, item_name, item_description, item_price, item_img)
VALUES ($1, $2, $3, $4::numeric, $5)
ON CONFLICT (category_id, item_name) DO UPDATE
SET item_description = EXCLUDED.item_description,
    item_price = EXCLUDED.item_price,
    item_img = COALESCE(NULLIF(EXCLUDED.item_img, ''), item.item_img),
    updated_at = now()
RETURNING ` + itemColumns
	out, err := scanItem(r.pool.QueryRow(ctx, q, it.CategoryID, it.Name, it.Description, it.Price.String(), it.Image))
	if err != nil {
		r.logger.Printf("item repo: upsert name=%s error=%v", it.Name, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("item repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("item repo: list count=%d", len(result))
	return result, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		it    domain.Item
		price string
	)
	err := row.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &price, &it.Image, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse item_price %q: %w", price, err)
	}
	it.Price = d
	return &it, nil
}
