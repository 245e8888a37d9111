// Package sinks provides hydroline and invalid-record sink implementations:
// in-memory for tests and small runs, Postgres for shared deployments, and a
// compressed snapshot format for persisting in-memory state between runs.
package sinks

import (
	"context"
	"sort"
	"sync"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
)

// MemoryHydrolineSink holds hydroline records in a map keyed by reach id.
// Safe for concurrent use, though the batch runner only writes from a single
// goroutine.
type MemoryHydrolineSink struct {
	mu      sync.RWMutex
	records map[string]hydro.HydrolineRecord
}

// NewMemoryHydrolineSink returns an empty in-memory hydroline sink.
func NewMemoryHydrolineSink() *MemoryHydrolineSink {
	return &MemoryHydrolineSink{records: make(map[string]hydro.HydrolineRecord)}
}

// Write stores the record, replacing any previous record for the reach.
func (s *MemoryHydrolineSink) Write(_ context.Context, rec hydro.HydrolineRecord) error {
	geometry := make([]geom.Polyline, len(rec.Geometry))
	for i, part := range rec.Geometry {
		geometry[i] = part.Clone()
	}
	rec.Geometry = geometry

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ReachID] = rec
	return nil
}

// Contains reports whether a record exists for the reach.
func (s *MemoryHydrolineSink) Contains(_ context.Context, reachID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[reachID]
	return ok, nil
}

// ManuallyDigitized reports whether the reach's record carries the
// hand-drawn flag. A missing record reports false.
func (s *MemoryHydrolineSink) ManuallyDigitized(_ context.Context, reachID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[reachID]
	return ok && rec.ManuallyDigitized, nil
}

// Len returns the number of stored records.
func (s *MemoryHydrolineSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns the stored records sorted by reach id.
func (s *MemoryHydrolineSink) Records() []hydro.HydrolineRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hydro.HydrolineRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReachID < out[j].ReachID })
	return out
}

// MemoryInvalidSink holds invalid-reach records in a map keyed by reach id;
// a rewrite for the same reach keeps only the latest reason.
type MemoryInvalidSink struct {
	mu      sync.RWMutex
	records map[string]hydro.InvalidRecord
}

// NewMemoryInvalidSink returns an empty in-memory invalid sink.
func NewMemoryInvalidSink() *MemoryInvalidSink {
	return &MemoryInvalidSink{records: make(map[string]hydro.InvalidRecord)}
}

// Write stores the record, collapsing duplicates for the same reach.
func (s *MemoryInvalidSink) Write(_ context.Context, rec hydro.InvalidRecord) error {
	if rec.Geometry != nil {
		p := *rec.Geometry
		rec.Geometry = &p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ReachID] = rec
	return nil
}

// Remove deletes the record for the reach, if present.
func (s *MemoryInvalidSink) Remove(_ context.Context, reachID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, reachID)
	return nil
}

// ReachIDs returns the ids of all invalid reaches, sorted.
func (s *MemoryInvalidSink) ReachIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Records returns the stored records sorted by reach id.
func (s *MemoryInvalidSink) Records() []hydro.InvalidRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hydro.InvalidRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReachID < out[j].ReachID })
	return out
}
