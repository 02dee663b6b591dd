// Package reports runs read-only aggregate queries over database/sql with lib/pq.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"food-delivery/models"
	"food-delivery/services"

	_ "github.com/lib/pq"
)

// Open connects with lib/pq using a key/value DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open reports db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

type Repository struct {
	db *sql.DB
}

var _ services.ReportSource = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type DailyStats struct {
	Date            string  `json:"date"`
	OrdersCount     int     `json:"orders_count"`
	DeliveredCount  int     `json:"delivered_count"`
	CancelledCount  int     `json:"cancelled_count"`
	CompletedAmount float64 `json:"completed_amount"`
	RefundedAmount  float64 `json:"refunded_amount"`
}

// DeliveryEarnings sums completed payments of orders the partner delivered.
func (r *Repository) DeliveryEarnings(ctx context.Context, partnerID int64) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.delivery_partner_id = $1
		  AND o.status = 'Delivered'
		  AND p.status = 'Completed'`,
		partnerID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("delivery earnings: %w", err)
	}
	return models.RoundCents(sum), nil
}

// RestaurantSales totals delivered orders at their snapshot prices.
func (r *Repository) RestaurantSales(ctx context.Context, restaurantID int64) (*models.SalesSummary, error) {
	s := &models.SalesSummary{RestaurantID: restaurantID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(t.total), 0)
		FROM (
			SELECT o.id, SUM(oi.unit_price * oi.quantity) - o.membership_discount AS total
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.restaurant_id = $1 AND o.status = 'Delivered'
			GROUP BY o.id, o.membership_discount
		) t`,
		restaurantID,
	).Scan(&s.DeliveredOrders, &s.Revenue)
	if err != nil {
		return nil, fmt.Errorf("restaurant sales: %w", err)
	}
	s.Revenue = models.RoundCents(s.Revenue)
	return s, nil
}

// DailyStats summarizes orders and payments of one calendar day (YYYY-MM-DD).
func (r *Repository) DailyStats(ctx context.Context, date string) (*DailyStats, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, models.NewValidationError("date", "must be YYYY-MM-DD")
	}
	s := &DailyStats{Date: date}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE o.status = 'Delivered'),
			COUNT(*) FILTER (WHERE o.status = 'Cancelled'),
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'Completed'), 0),
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'Refunded'), 0)
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.order_date::date = $1::date`,
		date,
	).Scan(&s.OrdersCount, &s.DeliveredCount, &s.CancelledCount, &s.CompletedAmount, &s.RefundedAmount)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	s.CompletedAmount = models.RoundCents(s.CompletedAmount)
	s.RefundedAmount = models.RoundCents(s.RefundedAmount)
	return s, nil
}
