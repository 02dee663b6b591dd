package models

import "time"

type OrderEventType string

const (
	EventOrderPlaced    OrderEventType = "order_placed"
	EventStatusChanged  OrderEventType = "status_changed"
	EventOrderCancelled OrderEventType = "order_cancelled"
)

type OrderEvent struct {
	Type         OrderEventType `json:"type"`
	OrderID      int64          `json:"order_id"`
	CustomerID   int64          `json:"customer_id"`
	RestaurantID int64          `json:"restaurant_id"`
	Status       OrderStatus    `json:"status"`
	Total        float64        `json:"total"`
	OccurredAt   time.Time      `json:"occurred_at"`
}
