package models

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusPreparing      OrderStatus = "Preparing"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

var orderStatusNext = map[OrderStatus]OrderStatus{
	OrderStatusPending:        OrderStatusPreparing,
	OrderStatusPreparing:      OrderStatusOutForDelivery,
	OrderStatusOutForDelivery: OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ValidStatusTransition accepts only the next step of the delivery chain,
// plus Pending -> Cancelled.
func ValidStatusTransition(from, to OrderStatus) bool {
	if from == OrderStatusPending && to == OrderStatusCancelled {
		return true
	}
	next, ok := orderStatusNext[from]
	return ok && next == to
}

type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"order_id"`
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

func (i OrderItem) LineTotal() float64 {
	return RoundCents(i.UnitPrice * float64(i.Quantity))
}

type Order struct {
	ID                 int64       `json:"id"`
	CustomerID         int64       `json:"customer_id"`
	RestaurantID       int64       `json:"restaurant_id"`
	RestaurantName     string      `json:"restaurant_name,omitempty"`
	Status             OrderStatus `json:"status"`
	OrderDate          time.Time   `json:"order_date"`
	DeliveryPartnerID  *int64      `json:"delivery_partner_id,omitempty"`
	DiscountMultiplier float64     `json:"discount_multiplier"`
	MembershipDiscount float64     `json:"membership_discount"`
	Items              []OrderItem `json:"items"`
}

// Subtotal sums the unit price snapshots.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return RoundCents(sum)
}

func (o *Order) Total() float64 {
	t := RoundCents(o.Subtotal() - o.MembershipDiscount)
	if t < 0 {
		return 0
	}
	return t
}

func (o *Order) Item(itemID int64) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return OrderItem{}, false
}

// OrderSummary is one row of an order listing.
type OrderSummary struct {
	ID                int64       `json:"id"`
	CustomerID        int64       `json:"customer_id"`
	RestaurantID      int64       `json:"restaurant_id"`
	RestaurantName    string      `json:"restaurant_name"`
	Status            OrderStatus `json:"status"`
	OrderDate         time.Time   `json:"order_date"`
	DeliveryPartnerID *int64      `json:"delivery_partner_id,omitempty"`
}

type OrderDetails struct {
	OrderID  int64       `json:"order_id"`
	Status   OrderStatus `json:"status"`
	Items    []OrderItem `json:"items"`
	Subtotal float64     `json:"subtotal"`
	Discount float64     `json:"membership_discount"`
	Total    float64     `json:"total"`
}

type SalesSummary struct {
	RestaurantID    int64   `json:"restaurant_id"`
	DeliveredOrders int     `json:"delivered_orders"`
	Revenue         float64 `json:"revenue"`
}
