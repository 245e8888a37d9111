package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore holds hydroline and invalid-reach records in PostgreSQL. Geometry
// is stored as WKT text so results load directly into GIS tooling.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore opens a connection pool against the database URL and creates
// the sink tables if they do not exist.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}

	// Create tables if they don't exist
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Hydrolines returns the store's hydroline sink.
func (s *PGStore) Hydrolines() *PGHydrolineSink {
	return &PGHydrolineSink{pool: s.pool}
}

// Invalids returns the store's invalid-reach sink.
func (s *PGStore) Invalids() *PGInvalidSink {
	return &PGInvalidSink{pool: s.pool}
}
