package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"campus-food-ordering/internal/domain"
	"campus-food-ordering/internal/repository/category"
	"campus-food-ordering/internal/repository/item"
	"github.com/google/uuid"
)

// Service reads and seeds the menu. List reads log failures and return an
// empty slice.
type Service struct {
	categories category.Repository
	items      item.Repository
	logger     *log.Logger
}

func New(categories category.Repository, items item.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{categories: categories, items: items, logger: logger}
}

func (s *Service) ListCategories(ctx context.Context, categoryType string) []domain.ItemCategory {
	out, err := s.categories.List(ctx, strings.TrimSpace(categoryType))
	if err != nil {
		s.logger.Printf("catalog: list categories type=%s error=%v", categoryType, err)
		return []domain.ItemCategory{}
	}
	if out == nil {
		return []domain.ItemCategory{}
	}
	return out
}

// ItemsByCategory lists the items of the named category. An unknown name is
// domain.ErrNotFound.
func (s *Service) ItemsByCategory(ctx context.Context, name string) ([]domain.Item, error) {
	c, err := s.categories.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Printf("catalog: get category name=%s error=%v", name, err)
		return []domain.Item{}, nil
	}
	out, err := s.items.ListByCategory(ctx, c.ID)
	if err != nil {
		s.logger.Printf("catalog: list items category=%s error=%v", c.ID, err)
		return []domain.Item{}, nil
	}
	if out == nil {
		return []domain.Item{}, nil
	}
	return out, nil
}

func (s *Service) ListItems(ctx context.Context) []domain.Item {
	out, err := s.items.ListAll(ctx)
	if err != nil {
		s.logger.Printf("catalog: list items error=%v", err)
		return []domain.Item{}
	}
	if out == nil {
		return []domain.Item{}
	}
	return out
}

func (s *Service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.items.GetByID(ctx, id)
}

func (s *Service) UpsertCategory(ctx context.Context, c domain.ItemCategory) (*domain.ItemCategory, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errors.New("category name required")
	}
	return s.categories.Upsert(ctx, c)
}

// UpsertItem stores it under the named category, creating the category when
// it does not exist yet.
func (s *Service) UpsertItem(ctx context.Context, categoryName, categoryType string, it domain.Item) (*domain.Item, error) {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return nil, errors.New("item name required")
	}
	if it.Price.IsNegative() {
		return nil, fmt.Errorf("item %s: price must not be negative", it.Name)
	}
	c, err := s.categories.GetByName(ctx, strings.TrimSpace(categoryName))
	if errors.Is(err, domain.ErrNotFound) {
		c, err = s.UpsertCategory(ctx, domain.ItemCategory{Name: categoryName, Type: categoryType})
	}
	if err != nil {
		return nil, err
	}
	it.CategoryID = c.ID
	return s.items.Upsert(ctx, it)
}
