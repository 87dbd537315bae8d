package category

import (
	"context"

	"campus-food-ordering/internal/domain"
)

type Repository interface {
	// List returns all categories, or only those of categoryType when non-empty.
	List(ctx context.Context, categoryType string) ([]domain.ItemCategory, error)
	GetByName(ctx context.Context, name string) (*domain.ItemCategory, error)
	Upsert(ctx context.Context, c domain.ItemCategory) (*domain.ItemCategory, error)
}
