package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"campus-food-ordering/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `order_id::text, from_user_id, to_user_id, location, status, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	q := `
INSERT INTO "order" (from_user_id, location, status)
VALUES ($1, $2, 'Pending')
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, in.FromUserID, in.Location))
	if err != nil {
		r.logger.Printf("order repo: create from_user_id=%s error=%v", in.FromUserID, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) CreateItem(ctx context.Context, item domain.OrderedItem) (*domain.OrderedItem, error) {
	const q = `
INSERT INTO ordered_item (order_id, item_id, unit, total_price)
VALUES ($1, $2, $3, $4::numeric)
RETURNING order_id::text, item_id::text, unit, total_price::text, created_at
`
	out, err := scanOrderedItem(r.pool.QueryRow(ctx, q, item.OrderID, item.ItemID, item.Unit, item.TotalPrice.String()))
	if err != nil {
		r.logger.Printf("order repo: create item order_id=%s item_id=%s error=%v", item.OrderID, item.ItemID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM "order" WHERE order_id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *postgresRepo) GetStatus(ctx context.Context, id string) (domain.OrderStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM "order" WHERE order_id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return domain.OrderStatus(status), nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM "order" ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows error=%v", err)
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepo) Accept(ctx context.Context, id, courierID string) (*domain.Order, error) {
	q := `
UPDATE "order"
SET status = 'Delivering', to_user_id = $2
WHERE order_id = $1 AND status = 'Pending'
RETURNING ` + orderColumns
	return r.conditionalUpdate(ctx, id, q, id, courierID)
}

func (r *postgresRepo) Complete(ctx context.Context, id, courierID string) (*domain.Order, error) {
	q := `
UPDATE "order"
SET status = 'Completed'
WHERE order_id = $1 AND status = 'Delivering' AND to_user_id = $2
RETURNING ` + orderColumns
	return r.conditionalUpdate(ctx, id, q, id, courierID)
}

func (r *postgresRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM "order" WHERE order_id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if domain.OrderStatus(status) != domain.OrderStatusPending {
		return false, nil
	}

	// Items first: ordered_item references the order row.
	if _, err := tx.Exec(ctx, `DELETE FROM ordered_item WHERE order_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete ordered items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM "order" WHERE order_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT order_id::text
FROM "order"
WHERE status = 'Pending' AND created_at < $1
ORDER BY created_at ASC
`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) conditionalUpdate(ctx context.Context, id, q string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err == nil {
		items, err := r.itemsFor(ctx, []string{o.ID})
		if err != nil {
			return nil, err
		}
		o.Items = items[o.ID]
		return o, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Zero rows: either the order is gone or its status moved on.
	if _, err := r.GetStatus(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrConflict
}

func (r *postgresRepo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]domain.OrderedItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT order_id::text, item_id::text, unit, total_price::text, created_at
FROM ordered_item
WHERE order_id::text = ANY($1)
ORDER BY created_at ASC
`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderedItem, len(orderIDs))
	for rows.Next() {
		it, err := scanOrderedItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], *it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.FromUserID, &o.ToUserID, &o.Location, &status, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func scanOrderedItem(row pgx.Row) (*domain.OrderedItem, error) {
	var (
		it    domain.OrderedItem
		total string
	)
	if err := row.Scan(&it.OrderID, &it.ItemID, &it.Unit, &total, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total_price %q: %w", total, err)
	}
	it.TotalPrice = d
	return &it, nil
}
