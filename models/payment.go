package models

import "time"

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentDebitCard      PaymentMethod = "Debit Card"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentUPI, PaymentCashOnDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

type Payment struct {
	ID      int64         `json:"id"`
	OrderID int64         `json:"order_id"`
	Method  PaymentMethod `json:"method"`
	Status  PaymentStatus `json:"status"`
	Date    time.Time     `json:"date"`
	Amount  float64       `json:"amount"`
}
