package store

import (
	"context"
	"errors"
	"fmt"

	"food-delivery/models"

	"github.com/jackc/pgx/v5"
)

// CreateOrder writes the order header and its items in one transaction.
func (p *Postgres) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, restaurant_id, status, discount_multiplier, membership_discount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, order_date`,
		o.CustomerID, o.RestaurantID, string(o.Status), o.DiscountMultiplier, o.MembershipDiscount,
	).Scan(&o.ID, &o.OrderDate)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, item_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			o.ID, it.MenuItemID, it.Name, it.Quantity, it.UnitPrice,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.QueryRow(ctx, `SELECT name FROM restaurants WHERE id = $1`, o.RestaurantID).Scan(&o.RestaurantName); err != nil {
		return fmt.Errorf("restaurant name: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	var status string
	err := p.db.QueryRow(ctx, `
		SELECT o.id, o.customer_id, o.restaurant_id, r.name, o.status, o.order_date,
		       o.delivery_partner_id, o.discount_multiplier, o.membership_discount
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.id = $1`, id,
	).Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.RestaurantName, &status, &o.OrderDate,
		&o.DeliveryPartnerID, &o.DiscountMultiplier, &o.MembershipDiscount)
	if err != nil {
		return nil, notFound(err)
	}
	o.Status = models.OrderStatus(status)

	rows, err := p.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.menu_item_id, COALESCE(mi.name, oi.item_name), oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus is a compare-and-set on the current status.
func (p *Postgres) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return p.missingOr(ctx, id, models.ErrStatusConflict)
	}
	return nil
}

// missingOr distinguishes an absent order from a failed precondition.
func (p *Postgres) missingOr(ctx context.Context, orderID int64, cause error) error {
	var one int
	err := p.db.QueryRow(ctx, `SELECT 1 FROM orders WHERE id = $1`, orderID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}
	return cause
}

const orderSummarySelect = `
	SELECT o.id, o.customer_id, o.restaurant_id, r.name, o.status, o.order_date, o.delivery_partner_id
	FROM orders o
	JOIN restaurants r ON r.id = o.restaurant_id`

func (p *Postgres) listOrders(ctx context.Context, where string, args ...any) ([]models.OrderSummary, error) {
	rows, err := p.db.Query(ctx, orderSummarySelect+` WHERE `+where+` ORDER BY o.order_date DESC, o.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		var status string
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.RestaurantID, &s.RestaurantName, &status, &s.OrderDate, &s.DeliveryPartnerID); err != nil {
			return nil, err
		}
		s.Status = models.OrderStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ListByCustomer(ctx context.Context, customerID int64) ([]models.OrderSummary, error) {
	return p.listOrders(ctx, `o.customer_id = $1`, customerID)
}

func (p *Postgres) ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.OrderSummary, error) {
	return p.listOrders(ctx, `o.restaurant_id = $1`, restaurantID)
}

func (p *Postgres) ListByDeliveryPartner(ctx context.Context, partnerID int64) ([]models.OrderSummary, error) {
	return p.listOrders(ctx, `o.delivery_partner_id = $1`, partnerID)
}

func (p *Postgres) ListOpenUnassigned(ctx context.Context) ([]models.OrderSummary, error) {
	return p.listOrders(ctx, `o.delivery_partner_id IS NULL AND o.status NOT IN ('Delivered', 'Cancelled')`)
}

// AssignDeliveryPartner only claims orders nobody has taken yet.
func (p *Postgres) AssignDeliveryPartner(ctx context.Context, orderID, partnerID int64) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE orders SET delivery_partner_id = $1, updated_at = now()
		WHERE id = $2 AND delivery_partner_id IS NULL`,
		partnerID, orderID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return p.missingOr(ctx, orderID, models.ErrAlreadyAssigned)
	}
	return nil
}

func (p *Postgres) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int, discount float64) error {
	return p.editPending(ctx, orderID, discount, `
		UPDATE order_items SET quantity = $1 WHERE id = $2 AND order_id = $3`,
		quantity, itemID, orderID)
}

func (p *Postgres) RemoveItem(ctx context.Context, orderID, itemID int64, discount float64) error {
	return p.editPending(ctx, orderID, discount, `
		DELETE FROM order_items WHERE id = $1 AND order_id = $2`,
		itemID, orderID)
}

// editPending locks the order row, requires Pending, then applies the item change
// and the recomputed discount in the same transaction.
func (p *Postgres) editPending(ctx context.Context, orderID int64, discount float64, sql string, args ...any) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		return notFound(err)
	}
	if models.OrderStatus(status) != models.OrderStatusPending {
		return models.ErrOrderLocked
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET membership_discount = $1, updated_at = now() WHERE id = $2`,
		discount, orderID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
