package sinks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
)

// PGHydrolineSink implements hydro.HydrolineSink over the hydrolines table.
type PGHydrolineSink struct {
	pool *pgxpool.Pool
}

// Write upserts the record, replacing any previous row for the reach.
func (s *PGHydrolineSink) Write(ctx context.Context, rec hydro.HydrolineRecord) error {
	query := `
		INSERT INTO hydrolines (reach_id, manually_digitized, geometry, run_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (reach_id) DO UPDATE SET
			manually_digitized = EXCLUDED.manually_digitized,
			geometry = EXCLUDED.geometry,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		rec.ReachID, rec.ManuallyDigitized, geom.MultiLineWKT(rec.Geometry), rec.RunID)
	if err != nil {
		return fmt.Errorf("failed to write hydroline for reach %s: %w", rec.ReachID, err)
	}
	return nil
}

// Contains reports whether a row exists for the reach.
func (s *PGHydrolineSink) Contains(ctx context.Context, reachID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM hydrolines WHERE reach_id = $1)`, reachID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check hydroline for reach %s: %w", reachID, err)
	}
	return exists, nil
}

// ManuallyDigitized reports whether the reach's row carries the hand-drawn
// flag. A missing row reports false.
func (s *PGHydrolineSink) ManuallyDigitized(ctx context.Context, reachID string) (bool, error) {
	var manual bool
	err := s.pool.QueryRow(ctx,
		`SELECT manually_digitized FROM hydrolines WHERE reach_id = $1`, reachID,
	).Scan(&manual)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read hydroline flag for reach %s: %w", reachID, err)
	}
	return manual, nil
}

// PGInvalidSink implements hydro.InvalidSink over the invalid_reaches table.
type PGInvalidSink struct {
	pool *pgxpool.Pool
}

// Write upserts the record, collapsing duplicates for the same reach.
func (s *PGInvalidSink) Write(ctx context.Context, rec hydro.InvalidRecord) error {
	var geometry *string
	if rec.Geometry != nil {
		wkt := rec.Geometry.WKT()
		geometry = &wkt
	}

	query := `
		INSERT INTO invalid_reaches (reach_id, reason, detail, geometry, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (reach_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			detail = EXCLUDED.detail,
			geometry = EXCLUDED.geometry,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		rec.ReachID, rec.Reason, rec.Detail, geometry, rec.RunID)
	if err != nil {
		return fmt.Errorf("failed to write invalid record for reach %s: %w", rec.ReachID, err)
	}
	return nil
}

// Remove deletes the row for the reach, if present.
func (s *PGInvalidSink) Remove(ctx context.Context, reachID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM invalid_reaches WHERE reach_id = $1`, reachID)
	if err != nil {
		return fmt.Errorf("failed to remove invalid record for reach %s: %w", reachID, err)
	}
	return nil
}

// ReachIDs returns the ids of all invalid reaches, sorted.
func (s *PGInvalidSink) ReachIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT reach_id FROM invalid_reaches ORDER BY reach_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invalid reaches: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invalid reach id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
