package item

import (
	"context"

	"campus-food-ordering/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListAll(ctx context.Context) ([]domain.Item, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Item, error)
	Upsert(ctx context.Context, it domain.Item) (*domain.Item, error)
}
