package models

import (
	"testing"
	"time"
)

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusOutForDelivery, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPreparing, OrderStatusOutForDelivery, true},
		{OrderStatusPreparing, OrderStatusCancelled, false},
		{OrderStatusPreparing, OrderStatusPending, false},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusPreparing, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{"", OrderStatusPending, false},
		{OrderStatusPending, "", false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderTotals(t *testing.T) {
	o := &Order{
		MembershipDiscount: 25,
		Items: []OrderItem{
			{ID: 1, UnitPrice: 100, Quantity: 2},
			{ID: 2, UnitPrice: 50, Quantity: 1},
		},
	}
	if got := o.Subtotal(); got != 250 {
		t.Errorf("Subtotal() = %v, want 250", got)
	}
	if got := o.Total(); got != 225 {
		t.Errorf("Total() = %v, want 225", got)
	}
	if _, ok := o.Item(2); !ok {
		t.Error("Item(2) not found")
	}
}

func TestMembershipExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := &Membership{Tier: TierGold, ExpiresAt: now.AddDate(0, 0, 2)}

	if got := m.EffectiveTier(now); got != TierGold {
		t.Errorf("EffectiveTier = %q, want Gold", got)
	}
	if !m.ExpiresWithinDays(now, 3) {
		t.Error("ExpiresWithinDays(3) = false, want true")
	}
	if m.ExpiresWithinDays(now, 1) {
		t.Error("ExpiresWithinDays(1) = true, want false")
	}

	expired := &Membership{Tier: TierGold, ExpiresAt: now.Add(-time.Minute)}
	if got := expired.EffectiveTier(now); got != TierNone {
		t.Errorf("expired EffectiveTier = %q, want None", got)
	}
	if expired.ExpiresWithinDays(now, 30) {
		t.Error("expired membership should not report upcoming expiry")
	}

	var none *Membership
	if got := none.EffectiveTier(now); got != TierNone {
		t.Errorf("nil EffectiveTier = %q, want None", got)
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.004, 1.0},
		{2.346, 2.35},
		{225.0000001, 225},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
