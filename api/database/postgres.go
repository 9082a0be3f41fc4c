package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Migrate creates the blobs table if it does not exist. There is no
// migration tooling; the schema is a single table.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS blobs (
			id                      UUID PRIMARY KEY,
			status                  TEXT NOT NULL,
			result                  TEXT NOT NULL DEFAULT '',
			error_message           TEXT NOT NULL DEFAULT '',
			callback_url            TEXT NOT NULL DEFAULT '',
			allow_insecure_callback BOOLEAN NOT NULL DEFAULT FALSE,
			callback_error          TEXT NOT NULL DEFAULT '',
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	_, err := db.Pool.Exec(ctx, schema)
	return err
}

func (db *DB) Close() {
	db.Pool.Close()
}
