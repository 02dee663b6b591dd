package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-delivery/models"
	"food-delivery/services"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, username, role, name, email, phone, restaurant_id,
	vehicle_type, vehicle_number, telegram_chat_id, created_at`

const insertAccount = `
	INSERT INTO accounts (username, password_hash, role, name, email, phone, restaurant_id,
		vehicle_type, vehicle_number, telegram_chat_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at`

func accountArgs(a *models.Account, hash string) []any {
	return []any{a.Username, hash, string(a.Role), a.Name, a.Email, a.Phone, a.RestaurantID,
		a.VehicleType, a.VehicleNumber, a.TelegramChatID}
}

func (p *Postgres) CreateAccount(ctx context.Context, a *models.Account, passwordHash string) error {
	err := p.db.QueryRow(ctx, insertAccount, accountArgs(a, passwordHash)...).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrUsernameTaken
	}
	return err
}

// CreatePartnerWithRestaurant creates the restaurant and its partner account in one transaction.
func (p *Postgres) CreatePartnerWithRestaurant(ctx context.Context, a *models.Account, passwordHash string, r *models.Restaurant) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO restaurants (name, address, cuisine_type, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		r.Name, r.Address, r.CuisineType, r.Rating,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}

	a.RestaurantID = &r.ID
	err = tx.QueryRow(ctx, insertAccount, accountArgs(a, passwordHash)...).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) FindByUsername(ctx context.Context, username string) (*models.Account, string, error) {
	var a models.Account
	var role, hash string
	err := p.db.QueryRow(ctx, `
		SELECT `+accountColumns+`, password_hash
		FROM accounts WHERE lower(username) = lower($1)`, username,
	).Scan(&a.ID, &a.Username, &role, &a.Name, &a.Email, &a.Phone, &a.RestaurantID,
		&a.VehicleType, &a.VehicleNumber, &a.TelegramChatID, &a.CreatedAt, &hash)
	if err != nil {
		return nil, "", notFound(err)
	}
	a.Role = models.Role(role)
	return &a, hash, nil
}

func (p *Postgres) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := p.db.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE lower(username) = lower($2)`, passwordHash, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// TelegramChatID implements notify.ChatDirectory.
func (p *Postgres) TelegramChatID(ctx context.Context, accountID int64) (int64, bool, error) {
	var chatID *int64
	err := p.db.QueryRow(ctx, `SELECT telegram_chat_id FROM accounts WHERE id = $1`, accountID).Scan(&chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if chatID == nil {
		return 0, false, nil
	}
	return *chatID, true, nil
}

// Login throttle, keyed by username.

func (p *Postgres) WaitSeconds(ctx context.Context, username string) (int, error) {
	var until *time.Time
	err := p.db.QueryRow(ctx, `SELECT cooldown_until FROM login_throttle WHERE username = $1`, username).Scan(&until)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if until == nil {
		return 0, nil
	}
	return waitSeconds(time.Now(), *until), nil
}

// RecordFailure bumps fail_count and sets cooldown_until = now() + min(30, 2^fail_count) seconds.
func (p *Postgres) RecordFailure(ctx context.Context, username string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO login_throttle (username, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 1, now(), now() + make_interval(secs => $2::int), now())
		ON CONFLICT (username) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + make_interval(secs => LEAST($3::int, POWER(2, login_throttle.fail_count + 1))),
			updated_at = now()`,
		username, services.CooldownSecondsForFailCount(1), services.ThrottleCooldownCapSeconds,
	)
	return err
}

func (p *Postgres) RecordSuccess(ctx context.Context, username string) error {
	_, err := p.db.Exec(ctx, `
		UPDATE login_throttle SET fail_count = 0, last_failed_at = NULL, cooldown_until = NULL, updated_at = now()
		WHERE username = $1`, username)
	return err
}
