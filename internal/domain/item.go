package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          string          `json:"item_id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"item_name"`
	Description string          `json:"item_description,omitempty"`
	Price       decimal.Decimal `json:"item_price"`
	Image       string          `json:"item_img,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
