package cart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campus-food-ordering/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	burgerID = "11111111-1111-1111-1111-111111111111"
	friesID  = "22222222-2222-2222-2222-222222222222"
	missing  = "33333333-3333-3333-3333-333333333333"
)

type stubItemRepo struct {
	items map[string]domain.Item
	err   error
	calls int
}

func (s *stubItemRepo) GetByID(_ context.Context, id string) (*domain.Item, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	it, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

func newStubItems() *stubItemRepo {
	return &stubItemRepo{items: map[string]domain.Item{
		burgerID: {ID: burgerID, Name: "Burger", Price: decimal.RequireFromString("5.50")},
		friesID:  {ID: friesID, Name: "Fries", Price: decimal.RequireFromString("2.00")},
	}}
}

func TestBuildUsesCatalogPrices(t *testing.T) {
	svc := New(newStubItems())
	c, err := svc.Build(context.Background(), []UpdateAction{
		{Action: "addLineItem", ItemID: burgerID, Quantity: 2},
		{Action: "addLineItem", ItemID: friesID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !c.Total().Equal(decimal.RequireFromString("13.00")) {
		t.Fatalf("expected total 13.00, got %s", c.Total())
	}
}

func TestBuildDefaultsToAddAndMergesLines(t *testing.T) {
	svc := New(newStubItems())
	c, err := svc.Build(context.Background(), []UpdateAction{
		{ItemID: burgerID, Quantity: 1},
		{ItemID: burgerID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if c.Len() != 1 || c.Quantity(burgerID) != 3 {
		t.Fatalf("expected one merged line of 3, got %+v", c.Lines())
	}
}

func TestBuildRejectsEmptyResult(t *testing.T) {
	svc := New(newStubItems())
	_, err := svc.Build(context.Background(), []UpdateAction{
		{Action: "addLineItem", ItemID: burgerID, Quantity: 1},
		{Action: "changeLineItemQuantity", ItemID: burgerID, Quantity: 0},
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestApplyValidation(t *testing.T) {
	svc := New(newStubItems())
	ctx := context.Background()
	cases := []struct {
		name    string
		actions []UpdateAction
		want    string
	}{
		{"no actions", nil, "actions required"},
		{"no item", []UpdateAction{{Action: "addLineItem", Quantity: 1}}, "item_id required"},
		{"zero add", []UpdateAction{{Action: "addLineItem", ItemID: burgerID}}, "quantity must be positive"},
		{"negative change", []UpdateAction{{Action: "changeLineItemQuantity", ItemID: burgerID, Quantity: -1}}, "quantity must not be negative"},
		{"unknown action", []UpdateAction{{Action: "setShippingAddress", ItemID: burgerID}}, "unsupported action"},
	}
	for _, tc := range cases {
		err := svc.Apply(ctx, domain.NewCart(), tc.actions)
		if !errors.Is(err, ErrInvalidAction) || !strings.HasSuffix(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestApplyUnknownItem(t *testing.T) {
	items := newStubItems()
	svc := New(items)
	err := svc.Apply(context.Background(), domain.NewCart(), []UpdateAction{{ItemID: missing, Quantity: 1}})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	calls := items.calls
	err = svc.Apply(context.Background(), domain.NewCart(), []UpdateAction{{ItemID: "not-a-uuid", Quantity: 1}})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound for malformed id, got %v", err)
	}
	if items.calls != calls {
		t.Fatalf("malformed id should not reach the repository")
	}
}

func TestApplyRepoError(t *testing.T) {
	svc := New(&stubItemRepo{err: errors.New("boom")})
	err := svc.Apply(context.Background(), domain.NewCart(), []UpdateAction{{ItemID: burgerID, Quantity: 1}})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestApplyRemoveAndView(t *testing.T) {
	svc := New(newStubItems())
	c := domain.NewCart()
	err := svc.Apply(context.Background(), c, []UpdateAction{
		{Action: "addLineItem", ItemID: burgerID, Quantity: 2},
		{Action: "addLineItem", ItemID: friesID, Quantity: 3},
		{Action: "removeLineItem", ItemID: burgerID},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	v := NewView(c)
	if len(v.Lines) != 1 || v.Lines[0].Item.ID != friesID {
		t.Fatalf("unexpected lines %+v", v.Lines)
	}
	if !v.Total.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected total 6, got %s", v.Total)
	}
	if empty := NewView(domain.NewCart()); empty.Lines == nil {
		t.Fatalf("empty view should render an empty list")
	}
}
