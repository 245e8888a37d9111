package sinks

import "context"

// migrate creates the necessary database tables
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS hydrolines (
		reach_id TEXT PRIMARY KEY,
		manually_digitized BOOLEAN NOT NULL DEFAULT FALSE,
		geometry TEXT NOT NULL,
		run_id TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS invalid_reaches (
		reach_id TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		detail TEXT,
		geometry TEXT,
		run_id TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_hydrolines_run_id ON hydrolines(run_id);
	CREATE INDEX IF NOT EXISTS idx_invalid_reaches_reason ON invalid_reaches(reason);
	CREATE INDEX IF NOT EXISTS idx_invalid_reaches_run_id ON invalid_reaches(run_id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
