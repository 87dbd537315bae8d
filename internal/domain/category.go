package domain

import "time"

// ItemCategory groups menu items; a stall, a food truck or a cafe section.
type ItemCategory struct {
	ID        string    `json:"category_id"`
	Name      string    `json:"category_name"`
	Type      string    `json:"category_type"`
	Image     string    `json:"category_img,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
