package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-delivery/models"

	"github.com/jackc/pgx/v5"
)

func (p *Postgres) GetCart(ctx context.Context, customerID int64) (*models.Cart, error) {
	var entriesJSON []byte
	var nextID int64
	err := p.db.QueryRow(ctx, `
		SELECT entries, next_entry_id FROM carts WHERE customer_id = $1`,
		customerID,
	).Scan(&entriesJSON, &nextID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NewCart(customerID), nil
		}
		return nil, err
	}

	c := models.NewCart(customerID)
	c.NextEntryID = nextID
	if len(entriesJSON) > 0 {
		if err := json.Unmarshal(entriesJSON, &c.Entries); err != nil {
			return nil, fmt.Errorf("unmarshal cart entries: %w", err)
		}
	}
	if c.Entries == nil {
		c.Entries = []models.CartEntry{}
	}
	return c, nil
}

func (p *Postgres) SaveCart(ctx context.Context, cart *models.Cart) error {
	entriesJSON, err := json.Marshal(cart.Entries)
	if err != nil {
		return fmt.Errorf("marshal cart entries: %w", err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO carts (customer_id, entries, next_entry_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (customer_id) DO UPDATE SET
			entries = $2,
			next_entry_id = $3,
			updated_at = now()`,
		cart.CustomerID, entriesJSON, cart.NextEntryID,
	)
	return err
}

// UpdateCart locks the cart row for the whole read-modify-write. A fn error
// rolls back and leaves the cart untouched.
func (p *Postgres) UpdateCart(ctx context.Context, customerID int64, fn func(*models.Cart) error) (*models.Cart, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts (customer_id) VALUES ($1)
		ON CONFLICT (customer_id) DO NOTHING`, customerID); err != nil {
		return nil, err
	}
	var entriesJSON []byte
	var nextID int64
	if err := tx.QueryRow(ctx, `
		SELECT entries, next_entry_id FROM carts WHERE customer_id = $1 FOR UPDATE`,
		customerID,
	).Scan(&entriesJSON, &nextID); err != nil {
		return nil, err
	}
	c := models.NewCart(customerID)
	c.NextEntryID = nextID
	if len(entriesJSON) > 0 {
		if err := json.Unmarshal(entriesJSON, &c.Entries); err != nil {
			return nil, fmt.Errorf("unmarshal cart entries: %w", err)
		}
	}
	if c.Entries == nil {
		c.Entries = []models.CartEntry{}
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	entriesJSON, err = json.Marshal(c.Entries)
	if err != nil {
		return nil, fmt.Errorf("marshal cart entries: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE carts SET entries = $2, next_entry_id = $3, updated_at = now()
		WHERE customer_id = $1`,
		customerID, entriesJSON, c.NextEntryID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cart: %w", err)
	}
	return c, nil
}

// DeleteCart keeps the entry counter so ids are not reused after a clear.
func (p *Postgres) DeleteCart(ctx context.Context, customerID int64) error {
	_, err := p.db.Exec(ctx, `UPDATE carts SET entries = '[]', updated_at = now() WHERE customer_id = $1`, customerID)
	return err
}
