package sinks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang/snappy"

	"github.com/riversys/hydroline/pkg/hydro"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible build.
const snapshotVersion = 1

// Snapshot is the on-disk form of the in-memory sinks: snappy-compressed
// JSON, so large result sets stay cheap to persist between runs.
type Snapshot struct {
	Version    int                     `json:"version"`
	Hydrolines []hydro.HydrolineRecord `json:"hydrolines"`
	Invalid    []hydro.InvalidRecord   `json:"invalid"`
}

// WriteSnapshot persists the sinks' current contents to path.
func WriteSnapshot(path string, hydrolines *MemoryHydrolineSink, invalids *MemoryInvalidSink) error {
	snap := Snapshot{
		Version:    snapshotVersion,
		Hydrolines: hydrolines.Records(),
		Invalid:    invalids.Records(),
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, snappy.Encode(nil, raw), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads a snapshot from path into fresh in-memory sinks.
func ReadSnapshot(path string) (*MemoryHydrolineSink, *MemoryInvalidSink, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, nil, fmt.Errorf("snapshot %s has version %d, want %d", path, snap.Version, snapshotVersion)
	}

	hydrolines := NewMemoryHydrolineSink()
	invalids := NewMemoryInvalidSink()
	for _, rec := range snap.Hydrolines {
		hydrolines.records[rec.ReachID] = rec
	}
	for _, rec := range snap.Invalid {
		invalids.records[rec.ReachID] = rec
	}
	return hydrolines, invalids, nil
}
