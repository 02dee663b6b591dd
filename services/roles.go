package services

import (
	"context"
	"fmt"
	"log/slog"

	"food-delivery/models"
)

// Roles hands out the capability view matching an authenticated account.
type Roles struct {
	Catalog  *CatalogService
	Carts    *CartService
	Orders   *OrderService
	Pricing  *PricingService
	Payments *PaymentService
	Reports  ReportSource
	Log      *slog.Logger
}

func (r *Roles) Customer(a *models.Account) (*Customer, error) {
	if a == nil || a.Role != models.RoleCustomer {
		return nil, models.ErrForbidden
	}
	return &Customer{account: *a, r: r}, nil
}

func (r *Roles) RestaurantPartner(a *models.Account) (*RestaurantPartner, error) {
	if a == nil || a.Role != models.RoleRestaurantPartner || a.RestaurantID == nil {
		return nil, models.ErrForbidden
	}
	return &RestaurantPartner{account: *a, restaurantID: *a.RestaurantID, r: r}, nil
}

func (r *Roles) DeliveryPartner(a *models.Account) (*DeliveryPartner, error) {
	if a == nil || a.Role != models.RoleDeliveryPartner {
		return nil, models.ErrForbidden
	}
	return &DeliveryPartner{account: *a, r: r}, nil
}

// settle runs a payment follow-up of a status change that has already
// committed. A failure cannot undo the change, so it is logged for follow-up.
func (r *Roles) settle(ctx context.Context, orderID int64, what string, fn func(context.Context, int64) error) {
	if err := fn(ctx, orderID); err != nil {
		r.Log.Error(what, slog.Int64("order_id", orderID), slog.Any("error", err))
	}
}

type Customer struct {
	account models.Account
	r       *Roles
}

func (c *Customer) ID() int64 { return c.account.ID }

func (c *Customer) ViewRestaurants(ctx context.Context) []models.Restaurant {
	return c.r.Catalog.ListRestaurants(ctx)
}

func (c *Customer) ViewMenu(ctx context.Context, restaurantID int64) []models.MenuItem {
	return c.r.Catalog.GetMenu(ctx, restaurantID)
}

// AddToCart only accepts existing, available menu items.
func (c *Customer) AddToCart(ctx context.Context, menuItemID int64, quantity int) (*models.Cart, error) {
	item, ok := c.r.Catalog.GetItemDetails(ctx, menuItemID)
	if !ok {
		return nil, fmt.Errorf("menu item %d: %w", menuItemID, models.ErrNotFound)
	}
	if !item.Available {
		return nil, fmt.Errorf("%s: %w", item.Name, models.ErrItemUnavailable)
	}
	return c.r.Carts.Add(ctx, c.account.ID, menuItemID, quantity)
}

func (c *Customer) RemoveFromCart(ctx context.Context, entryID int64) (*models.Cart, error) {
	return c.r.Carts.Remove(ctx, c.account.ID, entryID)
}

func (c *Customer) UpdateCartQuantity(ctx context.Context, entryID int64, quantity int) (*models.Cart, error) {
	return c.r.Carts.UpdateQuantity(ctx, c.account.ID, entryID, quantity)
}

// ViewCart prices the cart with the customer's membership discount.
func (c *Customer) ViewCart(ctx context.Context) (*models.CartQuote, error) {
	cart, err := c.r.Carts.Get(ctx, c.account.ID)
	if err != nil {
		return nil, err
	}
	m, err := c.r.Pricing.MultiplierFor(ctx, c.account.ID)
	if err != nil {
		return nil, err
	}
	return c.r.Carts.Quote(ctx, cart, m)
}

func (c *Customer) ClearCart(ctx context.Context) error {
	return c.r.Carts.Clear(ctx, c.account.ID)
}

// PlaceOrder converts the cart into an order and empties the cart.
func (c *Customer) PlaceOrder(ctx context.Context) (*models.Order, error) {
	m, err := c.r.Pricing.MultiplierFor(ctx, c.account.ID)
	if err != nil {
		return nil, err
	}
	var placed *models.Order
	err = c.r.Carts.Checkout(ctx, c.account.ID, func(entries []models.CartEntry) error {
		o, err := c.r.Orders.Place(ctx, c.account.ID, entries, m)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if placed == nil {
		return nil, err
	}
	if err != nil {
		c.r.Log.Error("clear cart after order", slog.Int64("order_id", placed.ID), slog.Any("error", err))
	}
	return placed, nil
}

func (c *Customer) OrderHistory(ctx context.Context) []models.OrderSummary {
	return c.r.Orders.History(ctx, c.account.ID)
}

// own loads an order of this customer. Foreign orders look missing.
func (c *Customer) own(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := c.r.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != c.account.ID {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	return o, nil
}

func (c *Customer) OrderDetails(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	if _, err := c.own(ctx, orderID); err != nil {
		return nil, err
	}
	return c.r.Orders.Details(ctx, orderID)
}

func (c *Customer) TrackOrder(ctx context.Context, orderID int64) (models.OrderStatus, error) {
	o, err := c.own(ctx, orderID)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

// CancelOrder cancels a Pending order and refunds a completed payment. The
// cancellation stands even when the refund fails; that failure is logged.
func (c *Customer) CancelOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if _, err := c.own(ctx, orderID); err != nil {
		return nil, err
	}
	o, err := c.r.Orders.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c.r.settle(ctx, orderID, "refund after cancel", c.r.Payments.Refund)
	return o, nil
}

func (c *Customer) Pay(ctx context.Context, orderID int64, method models.PaymentMethod) (*models.Payment, error) {
	o, err := c.own(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return c.r.Payments.Pay(ctx, o, method)
}

// UpdateOrderItem edits an unpaid Pending order.
func (c *Customer) UpdateOrderItem(ctx context.Context, orderID, itemID int64, quantity int) (*models.Order, error) {
	if err := c.unpaid(ctx, orderID); err != nil {
		return nil, err
	}
	return c.r.Orders.UpdateItemQuantity(ctx, orderID, itemID, quantity)
}

func (c *Customer) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	if err := c.unpaid(ctx, orderID); err != nil {
		return nil, err
	}
	return c.r.Orders.RemoveItem(ctx, orderID, itemID)
}

func (c *Customer) unpaid(ctx context.Context, orderID int64) error {
	if _, err := c.own(ctx, orderID); err != nil {
		return err
	}
	p, err := c.r.Payments.ForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if p != nil {
		return models.ErrAlreadyPaid
	}
	return nil
}

func (c *Customer) Membership(ctx context.Context) (*models.Membership, error) {
	return c.r.Pricing.Membership(ctx, c.account.ID)
}

// Subscribe buys a fixed tier; customers cannot pick a custom rate.
func (c *Customer) Subscribe(ctx context.Context, tier models.Tier, days int) (*models.Membership, error) {
	return c.r.Pricing.Subscribe(ctx, c.account.ID, tier, 0, days)
}

type RestaurantPartner struct {
	account      models.Account
	restaurantID int64
	r            *Roles
}

func (p *RestaurantPartner) RestaurantID() int64 { return p.restaurantID }

func (p *RestaurantPartner) Menu(ctx context.Context) []models.MenuItem {
	return p.r.Catalog.GetMenu(ctx, p.restaurantID)
}

func (p *RestaurantPartner) AddMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	return p.r.Catalog.AddMenuItem(ctx, p.restaurantID, in)
}

func (p *RestaurantPartner) UpdateMenuItem(ctx context.Context, itemID int64, in models.MenuItemInput) (*models.MenuItem, error) {
	return p.r.Catalog.UpdateMenuItem(ctx, p.restaurantID, itemID, in)
}

func (p *RestaurantPartner) SetAvailability(ctx context.Context, itemID int64, available bool) error {
	return p.r.Catalog.SetAvailability(ctx, p.restaurantID, itemID, available)
}

func (p *RestaurantPartner) RemoveMenuItem(ctx context.Context, itemID int64) error {
	return p.r.Catalog.RemoveMenuItem(ctx, p.restaurantID, itemID)
}

func (p *RestaurantPartner) ViewOrders(ctx context.Context) []models.OrderSummary {
	return p.r.Orders.RestaurantOrders(ctx, p.restaurantID)
}

// UpdateOrderStatus lets the kitchen accept, dispatch or decline its own orders.
func (p *RestaurantPartner) UpdateOrderStatus(ctx context.Context, orderID int64, to models.OrderStatus) (*models.Order, error) {
	switch to {
	case models.OrderStatusPreparing, models.OrderStatusOutForDelivery, models.OrderStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: restaurant cannot set %q", models.ErrInvalidTransition, to)
	}
	o, err := p.r.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.RestaurantID != p.restaurantID {
		return nil, models.ErrForbidden
	}
	o, err = p.r.Orders.UpdateStatus(ctx, orderID, to)
	if err != nil {
		return nil, err
	}
	if to == models.OrderStatusCancelled {
		p.r.settle(ctx, orderID, "refund after cancel", p.r.Payments.Refund)
	}
	return o, nil
}

func (p *RestaurantPartner) Sales(ctx context.Context) (*models.SalesSummary, error) {
	s, err := p.r.Reports.RestaurantSales(ctx, p.restaurantID)
	if err != nil {
		return nil, fmt.Errorf("restaurant sales: %w", err)
	}
	return s, nil
}

type DeliveryPartner struct {
	account models.Account
	r       *Roles
}

func (d *DeliveryPartner) ID() int64 { return d.account.ID }

func (d *DeliveryPartner) ViewAssignedOrders(ctx context.Context) []models.OrderSummary {
	return d.r.Orders.DeliveryOrders(ctx, d.account.ID)
}

// ViewOpenOrders lists orders any delivery partner may still accept.
func (d *DeliveryPartner) ViewOpenOrders(ctx context.Context) []models.OrderSummary {
	return d.r.Orders.OpenOrders(ctx)
}

func (d *DeliveryPartner) AcceptOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return d.r.Orders.AssignDeliveryPartner(ctx, orderID, d.account.ID)
}

// UpdateOrderStatus moves an assigned order towards Delivered. Delivery settles
// a cash-on-delivery payment.
func (d *DeliveryPartner) UpdateOrderStatus(ctx context.Context, orderID int64, to models.OrderStatus) (*models.Order, error) {
	switch to {
	case models.OrderStatusOutForDelivery, models.OrderStatusDelivered:
	default:
		return nil, fmt.Errorf("%w: delivery partner cannot set %q", models.ErrInvalidTransition, to)
	}
	o, err := d.r.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryPartnerID == nil || *o.DeliveryPartnerID != d.account.ID {
		return nil, models.ErrForbidden
	}
	o, err = d.r.Orders.UpdateStatus(ctx, orderID, to)
	if err != nil {
		return nil, err
	}
	if to == models.OrderStatusDelivered {
		d.r.settle(ctx, orderID, "settle cash on delivery", d.r.Payments.CompleteOnDelivery)
	}
	return o, nil
}

// Earnings sums completed payments of orders this partner delivered.
func (d *DeliveryPartner) Earnings(ctx context.Context) (float64, error) {
	e, err := d.r.Reports.DeliveryEarnings(ctx, d.account.ID)
	if err != nil {
		return 0, fmt.Errorf("delivery earnings: %w", err)
	}
	return e, nil
}
