package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"food-delivery/models"
)

type PaymentService struct {
	repo PaymentRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewPaymentService(repo PaymentRepository, log *slog.Logger) *PaymentService {
	return &PaymentService{repo: repo, log: log, now: time.Now}
}

// ForOrder returns the order's payment, or nil when it has none.
func (s *PaymentService) ForOrder(ctx context.Context, orderID int64) (*models.Payment, error) {
	p, err := s.repo.GetPaymentByOrder(ctx, orderID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment for order %d: %w", orderID, err)
	}
	return p, nil
}

// Pay records a payment for the order total. Cash on delivery stays Pending
// until the order is delivered; other methods complete immediately.
func (s *PaymentService) Pay(ctx context.Context, order *models.Order, method models.PaymentMethod) (*models.Payment, error) {
	if err := ValidatePaymentMethod(method); err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, models.ErrOrderClosed
	}
	existing, err := s.ForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyPaid
	}

	p := &models.Payment{
		OrderID: order.ID,
		Method:  method,
		Status:  models.PaymentCompleted,
		Date:    s.now().UTC(),
		Amount:  order.Total(),
	}
	if method == models.PaymentCashOnDelivery {
		p.Status = models.PaymentPending
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.log.Info("payment recorded",
		slog.Int64("order_id", order.ID),
		slog.String("method", string(method)),
		slog.String("status", string(p.Status)),
		slog.Float64("amount", p.Amount),
	)
	return p, nil
}

// Refund marks a completed payment Refunded. Nothing to do for unpaid orders.
func (s *PaymentService) Refund(ctx context.Context, orderID int64) error {
	return s.transition(ctx, orderID, models.PaymentCompleted, models.PaymentRefunded)
}

// CompleteOnDelivery settles a cash-on-delivery payment.
func (s *PaymentService) CompleteOnDelivery(ctx context.Context, orderID int64) error {
	return s.transition(ctx, orderID, models.PaymentPending, models.PaymentCompleted)
}

func (s *PaymentService) transition(ctx context.Context, orderID int64, from, to models.PaymentStatus) error {
	p, err := s.ForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if p == nil || p.Status != from {
		return nil
	}
	if err := s.repo.UpdatePaymentStatus(ctx, p.ID, from, to); err != nil {
		return fmt.Errorf("payment %d: %w", p.ID, err)
	}
	s.log.Info("payment status changed", slog.Int64("order_id", orderID), slog.String("to", string(to)))
	return nil
}
