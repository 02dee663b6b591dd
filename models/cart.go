package models

import "fmt"

// MaxQuantity bounds a single cart entry or order line.
const MaxQuantity = 1000

type CartEntry struct {
	ID         int64 `json:"id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// Cart holds at most one entry per menu item. Entry ids are local to the cart
// and never reused.
type Cart struct {
	CustomerID  int64       `json:"customer_id"`
	Entries     []CartEntry `json:"entries"`
	NextEntryID int64       `json:"next_entry_id"`
}

func NewCart(customerID int64) *Cart {
	return &Cart{CustomerID: customerID, Entries: []CartEntry{}}
}

// Add merges quantity into the entry for menuItemID, creating it if needed.
func (c *Cart) Add(menuItemID int64, quantity int) (CartEntry, error) {
	if menuItemID <= 0 {
		return CartEntry{}, NewValidationError("menu_item_id", "must be positive")
	}
	if quantity < 1 || quantity > MaxQuantity {
		return CartEntry{}, quantityError()
	}
	for i := range c.Entries {
		if c.Entries[i].MenuItemID == menuItemID {
			if c.Entries[i].Quantity+quantity > MaxQuantity {
				return CartEntry{}, quantityError()
			}
			c.Entries[i].Quantity += quantity
			return c.Entries[i], nil
		}
	}
	c.NextEntryID++
	e := CartEntry{ID: c.NextEntryID, MenuItemID: menuItemID, Quantity: quantity}
	c.Entries = append(c.Entries, e)
	return e, nil
}

// Remove deletes the entry. Reports whether anything was removed.
func (c *Cart) Remove(entryID int64) bool {
	for i := range c.Entries {
		if c.Entries[i].ID == entryID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets an entry's quantity; zero removes it.
func (c *Cart) UpdateQuantity(entryID int64, quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return NewValidationError("quantity", fmt.Sprintf("must be between 0 and %d", MaxQuantity))
	}
	if quantity == 0 {
		c.Remove(entryID)
		return nil
	}
	for i := range c.Entries {
		if c.Entries[i].ID == entryID {
			c.Entries[i].Quantity = quantity
			return nil
		}
	}
	return ErrNotFound
}

func quantityError() error {
	return NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", MaxQuantity))
}

func (c *Cart) Clear() {
	c.Entries = []CartEntry{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// MenuItemIDs lists the distinct menu items in entry order.
func (c *Cart) MenuItemIDs() []int64 {
	ids := make([]int64, 0, len(c.Entries))
	for _, e := range c.Entries {
		ids = append(ids, e.MenuItemID)
	}
	return ids
}

// CartLine is one priced entry of a cart quote.
type CartLine struct {
	EntryID    int64   `json:"entry_id"`
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
	Missing    bool    `json:"missing,omitempty"`
}

type CartQuote struct {
	Lines      []CartLine `json:"lines"`
	Subtotal   float64    `json:"subtotal"`
	Multiplier float64    `json:"multiplier"`
	Total      float64    `json:"total"`
}
