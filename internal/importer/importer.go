package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"campus-food-ordering/internal/domain"
	"github.com/shopspring/decimal"
)

// MenuWriter stores one catalog item under a category, creating the category
// on first use.
type MenuWriter interface {
	UpsertItem(ctx context.Context, categoryName, categoryType string, it domain.Item) (*domain.Item, error)
}

// CSVImporter reads a menu export and upserts its items into the catalog.
//
// Expected columns: category, category_type, name, description, price, image.
// A row with an empty category belongs to the category of the row above it.
type CSVImporter struct {
	reader *csv.Reader
	menu   MenuWriter
}

func NewCSVImporter(r io.Reader, menu MenuWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader: csvr,
		menu:   menu,
	}
}

type csvRow struct {
	Line         int
	Category     string
	CategoryType string
	Name         string
	Desc         string
	Price        decimal.Decimal
	Image        string
}

// Run parses CSV rows and upserts one item per row. It stops at the first
// invalid row and returns the number of items stored before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	var (
		category     string
		categoryType string
		imported     int
		line         = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.Category != "" {
			category, categoryType = row.Category, row.CategoryType
		}
		if category == "" {
			return imported, fmt.Errorf("row %d: item %q has no category", line, row.Name)
		}
		if err := i.save(ctx, category, categoryType, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, category, categoryType string, row *csvRow) error {
	it := domain.Item{
		Name:        row.Name,
		Description: row.Desc,
		Price:       row.Price,
		Image:       row.Image,
	}
	if _, err := i.menu.UpsertItem(ctx, category, categoryType, it); err != nil {
		return fmt.Errorf("row %d: upsert item %q: %w", row.Line, row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns nil for blank rows.
func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		Line:         line,
		Category:     pick(record, index, "category"),
		CategoryType: pick(record, index, "category_type"),
		Name:         pick(record, index, "name"),
		Desc:         pick(record, index, "description"),
		Image:        pick(record, index, "image"),
	}
	priceStr := strings.TrimPrefix(pick(record, index, "price"), "$")

	if row.Name == "" && priceStr == "" {
		return nil, nil
	}
	if row.Name == "" {
		return nil, fmt.Errorf("row %d: name required", line)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid price %q for %q", line, priceStr, row.Name)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("row %d: negative price for %q", line, row.Name)
	}
	row.Price = price
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
