package store

import (
	"context"

	"food-delivery/models"
)

func (p *Postgres) CreatePayment(ctx context.Context, pay *models.Payment) error {
	err := p.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, method, status, paid_at, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		pay.OrderID, string(pay.Method), string(pay.Status), pay.Date, pay.Amount,
	).Scan(&pay.ID)
	if isUniqueViolation(err) {
		return models.ErrAlreadyPaid
	}
	return err
}

func (p *Postgres) GetPaymentByOrder(ctx context.Context, orderID int64) (*models.Payment, error) {
	var pay models.Payment
	var method, status string
	err := p.db.QueryRow(ctx, `
		SELECT id, order_id, method, status, paid_at, amount
		FROM payments WHERE order_id = $1`, orderID,
	).Scan(&pay.ID, &pay.OrderID, &method, &status, &pay.Date, &pay.Amount)
	if err != nil {
		return nil, notFound(err)
	}
	pay.Method = models.PaymentMethod(method)
	pay.Status = models.PaymentStatus(status)
	return &pay, nil
}

func (p *Postgres) UpdatePaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE payments SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStatusConflict
	}
	return nil
}
