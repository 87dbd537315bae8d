package order

import (
	"context"

	"campus-food-ordering/internal/domain"
	"github.com/shopspring/decimal"
)

// Contact is the other party of an order.
type Contact struct {
	StudentID   string `json:"student_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type ReviewLine struct {
	ItemID     string          `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Unit       int             `json:"unit"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderView is an order as shown for review. Total includes the service fee
// on the caller's own orders.
type OrderView struct {
	OrderID    string             `json:"order_id"`
	FromUserID string             `json:"from_user_id"`
	ToUserID   *string            `json:"to_user_id"`
	Location   string             `json:"location"`
	Status     domain.OrderStatus `json:"status"`
	Lines      []ReviewLine       `json:"ordered_item"`
	Total      decimal.Decimal    `json:"total"`
	Contact    *Contact           `json:"contact,omitempty"`
}

// Review splits orders into the caller's own and those the caller can take
// or is delivering.
type Review struct {
	Mine   []OrderView `json:"my_orders"`
	Others []OrderView `json:"other_orders"`
}

// Review lists orders for studentID. Read failures are logged and yield an
// empty review.
func (s *Service) Review(ctx context.Context, studentID string) Review {
	out := Review{Mine: []OrderView{}, Others: []OrderView{}}
	orders, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Printf("order: review student=%s error=%v", studentID, err)
		return out
	}

	names := make(map[string]string)
	contacts := make(map[string]*Contact)
	for _, o := range orders {
		switch {
		case o.FromUserID == studentID:
			v := s.view(ctx, o, names)
			v.Total = v.Total.Add(s.serviceFee)
			if o.ToUserID != nil {
				v.Contact = s.contact(ctx, *o.ToUserID, contacts)
			}
			out.Mine = append(out.Mine, v)
		case o.Status == domain.OrderStatusPending:
			out.Others = append(out.Others, s.view(ctx, o, names))
		case o.ToUserID != nil && *o.ToUserID == studentID:
			v := s.view(ctx, o, names)
			v.Contact = s.contact(ctx, o.FromUserID, contacts)
			out.Others = append(out.Others, v)
		}
	}
	return out
}

func (s *Service) view(ctx context.Context, o domain.Order, names map[string]string) OrderView {
	v := OrderView{
		OrderID:    o.ID,
		FromUserID: o.FromUserID,
		ToUserID:   o.ToUserID,
		Location:   o.Location,
		Status:     o.Status,
		Lines:      make([]ReviewLine, 0, len(o.Items)),
		Total:      o.Total(),
	}
	for _, it := range o.Items {
		v.Lines = append(v.Lines, ReviewLine{
			ItemID:     it.ItemID,
			ItemName:   s.itemName(ctx, it.ItemID, names),
			Unit:       it.Unit,
			TotalPrice: it.TotalPrice,
		})
	}
	return v
}

func (s *Service) itemName(ctx context.Context, id string, cache map[string]string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := ""
	if s.items != nil {
		it, err := s.items.GetByID(ctx, id)
		if err != nil {
			s.logger.Printf("order: item name item_id=%s error=%v", id, err)
		} else {
			name = it.Name
		}
	}
	cache[id] = name
	return name
}

func (s *Service) contact(ctx context.Context, studentID string, cache map[string]*Contact) *Contact {
	if c, ok := cache[studentID]; ok {
		return c
	}
	var c *Contact
	if s.profiles != nil {
		p, err := s.profiles.GetByStudentID(ctx, studentID)
		if err != nil {
			s.logger.Printf("order: contact student=%s error=%v", studentID, err)
		} else {
			c = &Contact{StudentID: p.StudentID, Name: p.Name, PhoneNumber: p.PhoneNumber}
		}
	}
	cache[studentID] = c
	return c
}
