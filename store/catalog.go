package store

import (
	"context"
	"fmt"

	"food-delivery/models"
)

const menuItemColumns = `id, restaurant_id, name, description, price, available`

func scanMenuItem(row interface{ Scan(...any) error }) (models.MenuItem, error) {
	var it models.MenuItem
	err := row.Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Description, &it.Price, &it.Available)
	return it, err
}

func (p *Postgres) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, name, address, cuisine_type, rating, created_at
		FROM restaurants
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.CuisineType, &r.Rating, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	var r models.Restaurant
	err := p.db.QueryRow(ctx, `
		SELECT id, name, address, cuisine_type, rating, created_at
		FROM restaurants WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.Address, &r.CuisineType, &r.Rating, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (p *Postgres) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO restaurants (name, address, cuisine_type, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		r.Name, r.Address, r.CuisineType, r.Rating,
	).Scan(&r.ID, &r.CreatedAt)
}

func (p *Postgres) ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY id`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (p *Postgres) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	it, err := scanMenuItem(p.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (p *Postgres) GetMenuItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	out := make(map[int64]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := p.db.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

func (p *Postgres) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO menu_items (restaurant_id, name, description, price, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		item.RestaurantID, item.Name, item.Description, item.Price, item.Available,
	).Scan(&item.ID)
}

func (p *Postgres) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, available = $4, updated_at = now()
		WHERE id = $5 AND restaurant_id = $6`,
		item.Name, item.Description, item.Price, item.Available, item.ID, item.RestaurantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (p *Postgres) SetAvailability(ctx context.Context, restaurantID, itemID int64, available bool) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE menu_items SET available = $1, updated_at = now()
		WHERE id = $2 AND restaurant_id = $3`,
		available, itemID, restaurantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteMenuItem(ctx context.Context, restaurantID, itemID int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2`, itemID, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
