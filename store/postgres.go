package store

import (
	"context"
	"errors"

	"food-delivery/models"
	"food-delivery/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements every repository on a single pool.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

var (
	_ services.CatalogRepository    = (*Postgres)(nil)
	_ services.CartStore            = (*Postgres)(nil)
	_ services.OrderRepository      = (*Postgres)(nil)
	_ services.MembershipRepository = (*Postgres)(nil)
	_ services.PaymentRepository    = (*Postgres)(nil)
	_ services.AccountRepository    = (*Postgres)(nil)
	_ services.ThrottleStore        = (*Postgres)(nil)
)
