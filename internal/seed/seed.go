package seed

import (
	"context"
	"errors"
	"fmt"

	"campus-food-ordering/internal/domain"
	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/shopspring/decimal"
)

// CatalogWriter stores menu items, creating their category on first use.
type CatalogWriter interface {
	UpsertItem(ctx context.Context, categoryName, categoryType string, it domain.Item) (*domain.Item, error)
}

// ProfileCreator registers a student.
type ProfileCreator interface {
	Signup(ctx context.Context, in profilesvc.SignupInput) (*domain.Profile, error)
}

type itemSeed struct {
	Category     string
	CategoryType string
	Name         string
	Description  string
	Price        string
}

var menu = []itemSeed{
	{Category: "Noodles", CategoryType: "food", Name: "Ramen", Description: "Pork broth, egg, scallion", Price: "5.50"},
	{Category: "Noodles", CategoryType: "food", Name: "Udon", Description: "Thick wheat noodles in dashi", Price: "6.00"},
	{Category: "Rice", CategoryType: "food", Name: "Chicken Rice", Description: "Poached chicken with ginger rice", Price: "4.80"},
	{Category: "Drinks", CategoryType: "drink", Name: "Milk Tea", Description: "Brown sugar milk tea", Price: "2.00"},
	{Category: "Drinks", CategoryType: "drink", Name: "Lemonade", Description: "Fresh lemons, lightly sweet", Price: "1.50"},
}

// DemoStudents are registered with password DemoPassword so orders can be
// placed and accepted locally.
var DemoStudents = []profilesvc.SignupInput{
	{StudentID: "S0000001", Name: "Demo Orderer", PhoneNumber: "555-0101", Email: "orderer@campus.test"},
	{StudentID: "S0000002", Name: "Demo Courier", PhoneNumber: "555-0102", Email: "courier@campus.test"},
}

const DemoPassword = "demo-password"

// Apply inserts a demo menu and demo students. It is idempotent: items are
// upserted and already registered students are skipped.
func Apply(ctx context.Context, catalog CatalogWriter, profiles ProfileCreator) error {
	for _, s := range menu {
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return fmt.Errorf("price for %s: %w", s.Name, err)
		}
		it := domain.Item{Name: s.Name, Description: s.Description, Price: price}
		if _, err := catalog.UpsertItem(ctx, s.Category, s.CategoryType, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", s.Name, err)
		}
	}

	for _, in := range DemoStudents {
		in.Password = DemoPassword
		if _, err := profiles.Signup(ctx, in); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("signup %s: %w", in.StudentID, err)
		}
	}

	return nil
}
