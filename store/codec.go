package store

import (
	"encoding/json"
	"fmt"

	"food-delivery/models"
)

func decodeCart(customerID int64, raw []byte) (*models.Cart, error) {
	c := models.NewCart(customerID)
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	c.CustomerID = customerID
	if c.Entries == nil {
		c.Entries = []models.CartEntry{}
	}
	return c, nil
}
