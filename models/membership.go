package models

import "time"

type Tier string

const (
	TierNone   Tier = "None"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

type Membership struct {
	CustomerID   int64     `json:"customer_id"`
	Tier         Tier      `json:"tier"`
	DiscountRate float64   `json:"discount_rate"` // percent; 0 means use the tier multiplier
	ExpiresAt    time.Time `json:"expires_at"`
}

func (m *Membership) IsExpired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// EffectiveTier is None once the membership has expired.
func (m *Membership) EffectiveTier(now time.Time) Tier {
	if m == nil || m.IsExpired(now) {
		return TierNone
	}
	return m.Tier
}

// ExpiresWithinDays is true for a live membership ending within days.
func (m *Membership) ExpiresWithinDays(now time.Time, days int) bool {
	if m.IsExpired(now) {
		return false
	}
	return !m.ExpiresAt.After(now.AddDate(0, 0, days))
}
