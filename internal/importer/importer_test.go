package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campus-food-ordering/internal/domain"
	"github.com/shopspring/decimal"
)

type savedItem struct {
	Category     string
	CategoryType string
	Item         domain.Item
}

type stubMenu struct {
	items []savedItem
	err   error
}

func (s *stubMenu) UpsertItem(_ context.Context, category, categoryType string, it domain.Item) (*domain.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, savedItem{Category: category, CategoryType: categoryType, Item: it})
	return &it, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `category,category_type,name,description,price,image
Noodles,food,Ramen,Pork broth,5.50,https://example.com/ramen.jpg
,,Udon,,$6,
,,,,,
Drinks,drink,Milk Tea,Brown sugar,2,`

	menu := &stubMenu{}
	imp := NewCSVImporter(strings.NewReader(csvData), menu)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(menu.items) != 3 {
		t.Fatalf("expected 3 items imported, got %d (%d saved)", count, len(menu.items))
	}

	first := menu.items[0]
	if first.Category != "Noodles" || first.CategoryType != "food" || first.Item.Name != "Ramen" ||
		!first.Item.Price.Equal(decimal.RequireFromString("5.5")) || first.Item.Image != "https://example.com/ramen.jpg" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if menu.items[1].Category != "Noodles" || !menu.items[1].Item.Price.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected continuation row to inherit category and strip $: %+v", menu.items[1])
	}
	if menu.items[2].Category != "Drinks" || menu.items[2].CategoryType != "drink" {
		t.Fatalf("unexpected third item: %+v", menu.items[2])
	}
}

func TestCSVImporter_InvalidRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "category,name\nNoodles,Ramen",
		"bad price":      "category,name,price\nNoodles,Ramen,cheap",
		"negative price": "category,name,price\nNoodles,Ramen,-1",
		"no category":    "category,name,price\n,Ramen,5",
		"no name":        "category,name,price\nNoodles,,5",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubMenu{})
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	boom := errors.New("db down")
	menu := &stubMenu{err: boom}
	imp := NewCSVImporter(strings.NewReader("category,name,price\nNoodles,Ramen,5\nNoodles,Udon,6"), menu)

	count, err := imp.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing imported, got %d", count)
	}
}
