package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"food-delivery/models"
)

var tierMultipliers = map[models.Tier]float64{
	models.TierNone:   1.0,
	models.TierSilver: 0.95,
	models.TierGold:   0.90,
}

// DiscountMultiplier maps a tier to the factor applied to a total.
func DiscountMultiplier(tier models.Tier) (float64, error) {
	m, ok := tierMultipliers[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownTier, tier)
	}
	return m, nil
}

// RateMultiplier converts a percentage discount into a multiplier.
func RateMultiplier(rate float64) (float64, error) {
	if err := ValidateDiscountRate(rate); err != nil {
		return 0, err
	}
	return 1 - rate/100, nil
}

// ApplyDiscount never returns less than zero or more than amount.
func ApplyDiscount(amount, multiplier float64) float64 {
	if amount <= 0 || math.IsNaN(amount) {
		return 0
	}
	if math.IsNaN(multiplier) || multiplier > 1 {
		multiplier = 1
	}
	if multiplier < 0 {
		multiplier = 0
	}
	return models.RoundCents(amount * multiplier)
}

// MembershipMultiplier resolves the multiplier of a membership at now.
// A positive discount rate overrides the tier.
func MembershipMultiplier(m *models.Membership, now time.Time) (float64, error) {
	tier := m.EffectiveTier(now)
	if tier == models.TierNone {
		return 1, nil
	}
	if m.DiscountRate > 0 {
		return RateMultiplier(m.DiscountRate)
	}
	return DiscountMultiplier(tier)
}

type PricingService struct {
	memberships MembershipRepository
	log         *slog.Logger
	now         func() time.Time
}

func NewPricingService(memberships MembershipRepository, log *slog.Logger) *PricingService {
	return &PricingService{memberships: memberships, log: log, now: time.Now}
}

// Membership returns the customer's membership, or nil when there is none.
func (s *PricingService) Membership(ctx context.Context, customerID int64) (*models.Membership, error) {
	m, err := s.memberships.GetMembership(ctx, customerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// MultiplierFor is 1.0 for customers without a live membership.
func (s *PricingService) MultiplierFor(ctx context.Context, customerID int64) (float64, error) {
	m, err := s.Membership(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 1, nil
	}
	return MembershipMultiplier(m, s.now())
}

// Subscribe replaces the customer's membership. A positive rate overrides
// the tier multiplier and is only set by operators, never by customers.
func (s *PricingService) Subscribe(ctx context.Context, customerID int64, tier models.Tier, rate float64, days int) (*models.Membership, error) {
	if _, err := DiscountMultiplier(tier); err != nil {
		return nil, err
	}
	if err := ValidateDiscountRate(rate); err != nil {
		return nil, err
	}
	if tier == models.TierNone && rate > 0 {
		return nil, models.NewValidationError("discount_rate", "requires a Silver or Gold tier")
	}
	if days < 1 {
		return nil, models.NewValidationError("days", "must be at least 1")
	}
	m := &models.Membership{
		CustomerID:   customerID,
		Tier:         tier,
		DiscountRate: rate,
		ExpiresAt:    s.now().AddDate(0, 0, days),
	}
	if err := s.memberships.UpsertMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("save membership: %w", err)
	}
	s.log.Info("membership updated", slog.Int64("customer_id", customerID), slog.String("tier", string(tier)))
	return m, nil
}
