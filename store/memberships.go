package store

import (
	"context"

	"food-delivery/models"
)

func (p *Postgres) GetMembership(ctx context.Context, customerID int64) (*models.Membership, error) {
	var m models.Membership
	var tier string
	err := p.db.QueryRow(ctx, `
		SELECT customer_id, tier, discount_rate, expires_at
		FROM memberships WHERE customer_id = $1`, customerID,
	).Scan(&m.CustomerID, &tier, &m.DiscountRate, &m.ExpiresAt)
	if err != nil {
		return nil, notFound(err)
	}
	m.Tier = models.Tier(tier)
	return &m, nil
}

// UpsertMembership keeps one membership row per customer.
func (p *Postgres) UpsertMembership(ctx context.Context, m *models.Membership) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO memberships (customer_id, tier, discount_rate, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (customer_id) DO UPDATE SET
			tier = $2,
			discount_rate = $3,
			expires_at = $4,
			updated_at = now()`,
		m.CustomerID, string(m.Tier), m.DiscountRate, m.ExpiresAt,
	)
	return err
}
