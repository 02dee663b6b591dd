package services

import (
	"context"
	"fmt"
	"log/slog"

	"food-delivery/models"
)

type CartService struct {
	store   CartStore
	catalog *CatalogService
	log     *slog.Logger
}

func NewCartService(store CartStore, catalog *CatalogService, log *slog.Logger) *CartService {
	return &CartService{store: store, catalog: catalog, log: log}
}

func (s *CartService) Get(ctx context.Context, customerID int64) (*models.Cart, error) {
	c, err := s.store.GetCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// Checkout hands the cart entries to place and empties the cart once place
// succeeds. The cart stays locked meanwhile, so a concurrent add or a second
// checkout waits and then sees the result.
func (s *CartService) Checkout(ctx context.Context, customerID int64, place func([]models.CartEntry) error) error {
	_, err := s.store.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		if err := place(c.Entries); err != nil {
			return err
		}
		c.Clear()
		return nil
	})
	return err
}

// Add merges quantity into an existing entry for the same menu item.
func (s *CartService) Add(ctx context.Context, customerID, menuItemID int64, quantity int) (*models.Cart, error) {
	return s.store.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		_, err := c.Add(menuItemID, quantity)
		return err
	})
}

// Remove is a no-op for an absent entry.
func (s *CartService) Remove(ctx context.Context, customerID, entryID int64) (*models.Cart, error) {
	return s.store.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		c.Remove(entryID)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, customerID, entryID int64, quantity int) (*models.Cart, error) {
	return s.store.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		if err := c.UpdateQuantity(entryID, quantity); err != nil {
			return fmt.Errorf("cart entry %d: %w", entryID, err)
		}
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, customerID int64) error {
	if err := s.store.DeleteCart(ctx, customerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Quote prices the cart at live menu prices. Entries whose menu item no
// longer exists are kept but contribute nothing.
func (s *CartService) Quote(ctx context.Context, cart *models.Cart, multiplier float64) (*models.CartQuote, error) {
	items, err := s.catalog.Prices(ctx, cart.MenuItemIDs())
	if err != nil {
		return nil, err
	}
	q := &models.CartQuote{Lines: make([]models.CartLine, 0, len(cart.Entries)), Multiplier: multiplier}
	var subtotal float64
	for _, e := range cart.Entries {
		line := models.CartLine{EntryID: e.ID, MenuItemID: e.MenuItemID, Quantity: e.Quantity}
		if item, ok := items[e.MenuItemID]; ok {
			line.Name = item.Name
			line.UnitPrice = item.Price
			line.LineTotal = models.RoundCents(item.Price * float64(e.Quantity))
			subtotal += item.Price * float64(e.Quantity)
		} else {
			line.Missing = true
		}
		q.Lines = append(q.Lines, line)
	}
	q.Subtotal = models.RoundCents(subtotal)
	q.Total = ApplyDiscount(q.Subtotal, multiplier)
	return q, nil
}

// CalculateTotal is the discounted total of cart for a membership tier.
func (s *CartService) CalculateTotal(ctx context.Context, cart *models.Cart, tier models.Tier) (float64, error) {
	m, err := DiscountMultiplier(tier)
	if err != nil {
		return 0, err
	}
	q, err := s.Quote(ctx, cart, m)
	if err != nil {
		return 0, err
	}
	return q.Total, nil
}
