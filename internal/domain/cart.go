package domain

import "github.com/shopspring/decimal"

// CartLine is one catalog item and the quantity requested. A line never
// holds a quantity below one; setting zero removes it.
type CartLine struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

// Subtotal is price x quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart accumulates lines for a single session until checkout. It is not
// safe for concurrent use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add increments the quantity of an existing line for the item or appends a
// new line. Non-positive quantities are ignored.
func (c *Cart) Add(item Item, quantity int) {
	if quantity <= 0 {
		return
	}
	if idx := c.index(item.ID); idx >= 0 {
		c.lines[idx].Quantity += quantity
		return
	}
	c.lines = append(c.lines, CartLine{Item: item, Quantity: quantity})
}

// SetQuantity overwrites the quantity of an existing line; zero or below
// removes it. Unknown items are ignored.
func (c *Cart) SetQuantity(itemID string, quantity int) {
	idx := c.index(itemID)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return
	}
	c.lines[idx].Quantity = quantity
}

// Remove drops the line for itemID if present.
func (c *Cart) Remove(itemID string) {
	c.SetQuantity(itemID, 0)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Quantity(itemID string) int {
	if idx := c.index(itemID); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// Total is the sum of price x quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}
