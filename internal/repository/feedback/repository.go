package feedback

import (
	"context"

	"campus-food-ordering/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Feedback, error)
	Create(ctx context.Context, message string) (*domain.Feedback, error)
	Update(ctx context.Context, id, message string) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}
