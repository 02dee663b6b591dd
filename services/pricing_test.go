package services

import (
	"errors"
	"testing"
	"time"

	"food-delivery/models"
)

func TestDiscountMultiplier(t *testing.T) {
	tests := []struct {
		tier models.Tier
		want float64
	}{
		{models.TierNone, 1.0},
		{models.TierSilver, 0.95},
		{models.TierGold, 0.90},
	}
	for _, tt := range tests {
		got, err := DiscountMultiplier(tt.tier)
		if err != nil || got != tt.want {
			t.Errorf("DiscountMultiplier(%q) = %v, %v, want %v", tt.tier, got, err, tt.want)
		}
	}

	if _, err := DiscountMultiplier("Platinum"); !errors.Is(err, models.ErrUnknownTier) {
		t.Errorf("DiscountMultiplier(Platinum) err = %v, want ErrUnknownTier", err)
	}
}

func TestDiscountMultiplierMonotonic(t *testing.T) {
	none, _ := DiscountMultiplier(models.TierNone)
	silver, _ := DiscountMultiplier(models.TierSilver)
	gold, _ := DiscountMultiplier(models.TierGold)
	if !(gold <= silver && silver <= none) {
		t.Errorf("multipliers not monotonic: gold=%v silver=%v none=%v", gold, silver, none)
	}
	for _, m := range []float64{none, silver, gold} {
		if m <= 0 || m > 1 {
			t.Errorf("multiplier %v outside (0,1]", m)
		}
	}
}

func TestRateMultiplier(t *testing.T) {
	tests := []struct {
		rate  float64
		want  float64
		valid bool
	}{
		{0, 1, true},
		{25, 0.75, true},
		{100, 0, true},
		{-5, 0, false},
		{120, 0, false},
	}
	for _, tt := range tests {
		got, err := RateMultiplier(tt.rate)
		if (err == nil) != tt.valid {
			t.Errorf("RateMultiplier(%v) err = %v, want valid=%v", tt.rate, err, tt.valid)
			continue
		}
		if tt.valid && got != tt.want {
			t.Errorf("RateMultiplier(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		amount, multiplier, want float64
	}{
		{250, 0.90, 225},
		{250, 1, 250},
		{250, 1.5, 250},
		{250, -1, 0},
		{-10, 0.9, 0},
		{19.99, 0.95, 18.99},
	}
	for _, tt := range tests {
		got := ApplyDiscount(tt.amount, tt.multiplier)
		if got != tt.want {
			t.Errorf("ApplyDiscount(%v, %v) = %v, want %v", tt.amount, tt.multiplier, got, tt.want)
		}
		if got < 0 || (tt.amount > 0 && got > tt.amount) {
			t.Errorf("ApplyDiscount(%v, %v) = %v out of range", tt.amount, tt.multiplier, got)
		}
	}
}

func TestMembershipMultiplier(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		m    *models.Membership
		want float64
	}{
		{"gold", &models.Membership{Tier: models.TierGold, ExpiresAt: now.Add(time.Hour)}, 0.90},
		{"expired gold", &models.Membership{Tier: models.TierGold, ExpiresAt: now.Add(-time.Hour)}, 1},
		{"rate overrides tier", &models.Membership{Tier: models.TierSilver, DiscountRate: 25, ExpiresAt: now.Add(time.Hour)}, 0.75},
		{"none", &models.Membership{Tier: models.TierNone, DiscountRate: 20, ExpiresAt: now.Add(time.Hour)}, 1},
	}
	for _, tt := range tests {
		got, err := MembershipMultiplier(tt.m, now)
		if err != nil || got != tt.want {
			t.Errorf("%s: MembershipMultiplier = %v, %v, want %v", tt.name, got, err, tt.want)
		}
	}
}
