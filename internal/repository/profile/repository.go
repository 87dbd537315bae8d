package profile

import (
	"context"

	"campus-food-ordering/internal/domain"
)

// Repository persists and fetches student profiles.
type Repository interface {
	Create(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, studentID, passwordHash string) error
}
