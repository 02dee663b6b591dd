// Package db owns the process-wide pgx connection pool.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"food-delivery/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

const connectAttempts = 5

// Init opens Pool and waits for the database to answer, retrying with a
// linear backoff while it starts up.
func Init(ctx context.Context, cfg config.DBConfig, log *slog.Logger) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	for attempt := 1; ; attempt++ {
		pool, err := connect(ctx, poolCfg)
		if err == nil {
			Pool = pool
			return nil
		}
		if attempt == connectAttempts {
			return fmt.Errorf("connect after %d attempts: %w", attempt, err)
		}
		wait := time.Duration(attempt) * 2 * time.Second
		log.Warn("database not ready", slog.Int("attempt", attempt), slog.Duration("retry_in", wait), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
