package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-food-ordering/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned when a cart has no lines to place or check out.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrItemNotFound is returned when an action names an unknown catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidAction wraps malformed cart actions.
	ErrInvalidAction = errors.New("invalid cart action")
)

// Service builds carts from catalog items. Carts live only for the request;
// prices always come from the catalog, never from the client.
type Service struct {
	items itemRepo
}

type itemRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
}

func New(items itemRepo) *Service {
	return &Service{items: items}
}

type UpdateAction struct {
	Action   string `json:"action"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// View is the priced state of a cart.
type View struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

func NewView(c *domain.Cart) View {
	lines := c.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return View{Lines: lines, Total: c.Total()}
}

// Build applies actions to a fresh cart and rejects the result when empty.
func (s *Service) Build(ctx context.Context, actions []UpdateAction) (*domain.Cart, error) {
	c := domain.NewCart()
	if err := s.Apply(ctx, c, actions); err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	return c, nil
}

// Apply runs actions in order against c. It stops at the first invalid action
// and leaves earlier actions applied.
func (s *Service) Apply(ctx context.Context, c *domain.Cart, actions []UpdateAction) error {
	if len(actions) == 0 {
		return invalidAction("actions required")
	}
	for _, action := range actions {
		itemID := strings.TrimSpace(action.ItemID)
		if itemID == "" {
			return invalidAction("item_id required")
		}
		switch strings.ToLower(strings.TrimSpace(action.Action)) {
		case "addlineitem", "":
			if action.Quantity <= 0 {
				return invalidAction("quantity must be positive")
			}
			item, err := s.lookup(ctx, itemID)
			if err != nil {
				return err
			}
			c.Add(*item, action.Quantity)
		case "changelineitemquantity":
			if action.Quantity < 0 {
				return invalidAction("quantity must not be negative")
			}
			c.SetQuantity(itemID, action.Quantity)
		case "removelineitem":
			c.Remove(itemID)
		default:
			return invalidAction("unsupported action")
		}
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, itemID string) (*domain.Item, error) {
	if s.items == nil {
		return nil, errors.New("item repository unavailable")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrItemNotFound
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func invalidAction(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, msg)
}
