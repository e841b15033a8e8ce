// Package database provides PostgreSQL connection pooling
// using pgx for high-performance database operations.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new PostgreSQL connection pool with optimized settings
func NewPool(databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the complaints table if it does not exist yet, so a
// fresh deployment comes up without a separate migration step.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			complaint_id            TEXT PRIMARY KEY,
			first_name              TEXT NOT NULL DEFAULT '',
			last_name               TEXT NOT NULL DEFAULT '',
			description             TEXT NOT NULL DEFAULT '',
			complaint_status        TEXT NOT NULL DEFAULT 'Open',
			date_of_complaint       TEXT NOT NULL DEFAULT '',
			beat_number             TEXT NOT NULL DEFAULT '',
			problem_category        TEXT NOT NULL DEFAULT '',
			days_of_week            TEXT[] NOT NULL DEFAULT '{}',
			start_date              TEXT NOT NULL DEFAULT '',
			end_date                TEXT NOT NULL DEFAULT '',
			start_time              TEXT NOT NULL DEFAULT '',
			end_time                TEXT NOT NULL DEFAULT '',
			location                TEXT NOT NULL DEFAULT '',
			address_direction       TEXT NOT NULL DEFAULT '',
			address_street          TEXT NOT NULL DEFAULT '',
			address_zipcode         TEXT NOT NULL DEFAULT '',
			intersection1_direction TEXT NOT NULL DEFAULT '',
			intersection1_street    TEXT NOT NULL DEFAULT '',
			intersection2_direction TEXT NOT NULL DEFAULT '',
			intersection2_street    TEXT NOT NULL DEFAULT '',
			intersection_zipcode    TEXT NOT NULL DEFAULT '',
			coordinates             FLOAT8[] NOT NULL DEFAULT '{}',
			is_urgent_checked       BOOLEAN NOT NULL DEFAULT FALSE,
			officers_notes          TEXT NOT NULL DEFAULT '',
			subscribe_to_alerts     TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (complaint_status);
		CREATE INDEX IF NOT EXISTS idx_%s_beat ON %s (beat_number);
		CREATE INDEX IF NOT EXISTS idx_%s_start_date ON %s (start_date);
	`, table, table, table, table, table, table, table)

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
