package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// seq keeps insertion order for Find; body is the entity as JSON.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection text        NOT NULL,
		id         text        NOT NULL,
		seq        bigserial,
		body       jsonb       NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING gin (body jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS documents_seq_idx ON documents (collection, seq)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_users_email_idx ON documents ((body->>'email')) WHERE collection = 'users'`,
}

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
