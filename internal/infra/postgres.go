package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const assetSchema = `
	CREATE TABLE IF NOT EXISTS media_asset (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL,
		kind         TEXT NOT NULL,
		path         TEXT NOT NULL,
		source_query TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS media_asset_query_idx ON media_asset (source_query);
	CREATE INDEX IF NOT EXISTS media_asset_session_idx ON media_asset (session_id, created_at DESC);
`

// NewPgxPool connects, pings and makes sure the asset table exists.
func NewPgxPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pgxpool: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if _, err := pool.Exec(ctx, assetSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pool, nil
}
