package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"food-delivery/models"
)

type OrderService struct {
	repo      OrderRepository
	catalog   *CatalogService
	publisher EventPublisher
	notifier  StatusNotifier
	log       *slog.Logger
	now       func() time.Time
}

// NewOrderService wires the order workflow. publisher and notifier may be nil.
func NewOrderService(repo OrderRepository, catalog *CatalogService, publisher EventPublisher, notifier StatusNotifier, log *slog.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// Place turns cart entries into a Pending order with price snapshots.
// Repeated menu items are merged. multiplier is the membership discount factor.
func (s *OrderService) Place(ctx context.Context, customerID int64, entries []models.CartEntry, multiplier float64) (*models.Order, error) {
	if len(entries) == 0 {
		return nil, models.ErrEmptyOrder
	}

	quantities := make(map[int64]int, len(entries))
	var ids []int64
	for _, e := range entries {
		if err := ValidateQuantity(e.Quantity); err != nil {
			return nil, err
		}
		if _, seen := quantities[e.MenuItemID]; !seen {
			ids = append(ids, e.MenuItemID)
		}
		quantities[e.MenuItemID] += e.Quantity
		if quantities[e.MenuItemID] > models.MaxQuantity {
			return nil, ValidateQuantity(quantities[e.MenuItemID])
		}
	}

	items, err := s.catalog.Prices(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:         customerID,
		Status:             models.OrderStatusPending,
		DiscountMultiplier: multiplier,
	}
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			return nil, fmt.Errorf("menu item %d: %w", id, models.ErrNotFound)
		}
		if !item.Available {
			return nil, fmt.Errorf("%s: %w", item.Name, models.ErrItemUnavailable)
		}
		if order.RestaurantID == 0 {
			order.RestaurantID = item.RestaurantID
		} else if order.RestaurantID != item.RestaurantID {
			return nil, models.ErrMixedRestaurants
		}
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: id,
			Name:       item.Name,
			Quantity:   quantities[id],
			UnitPrice:  item.Price,
		})
	}
	order.MembershipDiscount = discountFor(order.Subtotal(), multiplier)

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.log.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("customer_id", customerID),
		slog.Float64("total", order.Total()),
	)
	s.publish(ctx, models.EventOrderPlaced, order)
	return order, nil
}

func discountFor(subtotal, multiplier float64) float64 {
	return models.RoundCents(subtotal - ApplyDiscount(subtotal, multiplier))
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	return o, nil
}

// UpdateStatus moves the order one step forward along the delivery chain.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, to models.OrderStatus) (*models.Order, error) {
	if err := ValidateOrderStatus(to); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if to == models.OrderStatusCancelled {
		return s.Cancel(ctx, orderID)
	}
	if !models.ValidStatusTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, o.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, to); err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	s.log.Info("order status changed",
		slog.Int64("order_id", orderID),
		slog.String("from", string(o.Status)),
		slog.String("to", string(to)),
	)
	o.Status = to
	s.publish(ctx, models.EventStatusChanged, o)
	s.notify(ctx, o)
	return o, nil
}

// Cancel only succeeds while the order is Pending; the status is left as is otherwise.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, models.ErrNotCancellable
	}
	err = s.repo.UpdateStatus(ctx, orderID, models.OrderStatusPending, models.OrderStatusCancelled)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, models.ErrNotCancellable
	}
	if err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	s.log.Info("order cancelled", slog.Int64("order_id", orderID))
	o.Status = models.OrderStatusCancelled
	s.publish(ctx, models.EventOrderCancelled, o)
	s.notify(ctx, o)
	return o, nil
}

func (s *OrderService) Details(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &models.OrderDetails{
		OrderID:  o.ID,
		Status:   o.Status,
		Items:    o.Items,
		Subtotal: o.Subtotal(),
		Discount: o.MembershipDiscount,
		Total:    o.Total(),
	}, nil
}

func (s *OrderService) Track(ctx context.Context, orderID int64) (models.OrderStatus, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

// History lists the customer's orders, newest first; empty on failure.
func (s *OrderService) History(ctx context.Context, customerID int64) []models.OrderSummary {
	return s.list(ctx, "customer", customerID, s.repo.ListByCustomer)
}

func (s *OrderService) RestaurantOrders(ctx context.Context, restaurantID int64) []models.OrderSummary {
	return s.list(ctx, "restaurant", restaurantID, s.repo.ListByRestaurant)
}

func (s *OrderService) DeliveryOrders(ctx context.Context, partnerID int64) []models.OrderSummary {
	return s.list(ctx, "delivery_partner", partnerID, s.repo.ListByDeliveryPartner)
}

// OpenOrders lists orders still waiting for a delivery partner.
func (s *OrderService) OpenOrders(ctx context.Context) []models.OrderSummary {
	return s.list(ctx, "open", 0, func(ctx context.Context, _ int64) ([]models.OrderSummary, error) {
		return s.repo.ListOpenUnassigned(ctx)
	})
}

func (s *OrderService) list(ctx context.Context, scope string, id int64, fn func(context.Context, int64) ([]models.OrderSummary, error)) []models.OrderSummary {
	out, err := fn(ctx, id)
	if err != nil {
		s.log.Error("list orders", slog.String("scope", scope), slog.Int64("id", id), slog.Any("error", err))
		return []models.OrderSummary{}
	}
	if out == nil {
		return []models.OrderSummary{}
	}
	return out
}

// UpdateItemQuantity edits a line of a Pending order; zero removes it.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) (*models.Order, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, orderID, itemID)
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	o, err := s.editable(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].Quantity = quantity
		}
	}
	o.MembershipDiscount = discountFor(o.Subtotal(), o.DiscountMultiplier)
	if err := s.repo.UpdateItemQuantity(ctx, orderID, itemID, quantity, o.MembershipDiscount); err != nil {
		return nil, fmt.Errorf("order %d item %d: %w", orderID, itemID, err)
	}
	return o, nil
}

// RemoveItem drops a line of a Pending order. The last line cannot be removed;
// cancel the order instead.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	o, err := s.editable(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if len(o.Items) == 1 {
		return nil, models.ErrEmptyOrder
	}
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	o.MembershipDiscount = discountFor(o.Subtotal(), o.DiscountMultiplier)
	if err := s.repo.RemoveItem(ctx, orderID, itemID, o.MembershipDiscount); err != nil {
		return nil, fmt.Errorf("order %d item %d: %w", orderID, itemID, err)
	}
	return o, nil
}

func (s *OrderService) editable(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, models.ErrOrderLocked
	}
	if _, ok := o.Item(itemID); !ok {
		return nil, fmt.Errorf("order item %d: %w", itemID, models.ErrNotFound)
	}
	return o, nil
}

// AssignDeliveryPartner claims an open order for partnerID.
func (s *OrderService) AssignDeliveryPartner(ctx context.Context, orderID, partnerID int64) (*models.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, models.ErrOrderClosed
	}
	if o.DeliveryPartnerID != nil {
		return nil, models.ErrAlreadyAssigned
	}
	if err := s.repo.AssignDeliveryPartner(ctx, orderID, partnerID); err != nil {
		return nil, fmt.Errorf("assign order %d: %w", orderID, err)
	}
	s.log.Info("delivery partner assigned", slog.Int64("order_id", orderID), slog.Int64("partner_id", partnerID))
	o.DeliveryPartnerID = &partnerID
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, typ models.OrderEventType, o *models.Order) {
	if s.publisher == nil {
		return
	}
	ev := models.OrderEvent{
		Type:         typ,
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		Total:        o.Total(),
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.log.Warn("publish order event", slog.Int64("order_id", o.ID), slog.String("type", string(typ)), slog.Any("error", err))
	}
}

func (s *OrderService) notify(ctx context.Context, o *models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatus(ctx, o.CustomerID, o.ID, o.Status); err != nil {
		s.log.Warn("notify customer", slog.Int64("order_id", o.ID), slog.Any("error", err))
	}
}
