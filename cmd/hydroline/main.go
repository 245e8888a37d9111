package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
	"github.com/riversys/hydroline/pkg/logging"
	"github.com/riversys/hydroline/pkg/memnet"
	"github.com/riversys/hydroline/pkg/metrics"
	"github.com/riversys/hydroline/pkg/pubsub"
	"github.com/riversys/hydroline/pkg/sinks"
)

// Edge CSV schema: edge_id, from_node, to_node, flow, wkt
//   flow is "with" or "against" the digitized vertex order
// Access CSV schema: reach_id, role, x, y[, provenance]
//   role is putin, takeout, or intermediate

func main() {
	edgesFile := flag.String("edges", "", "Path to network edges CSV")
	accessFile := flag.String("accesses", "", "Path to access points CSV")
	configFile := flag.String("config", "", "Path to YAML config (optional)")
	snapTolerance := flag.Float64("snap-tolerance", 0, "Snap tolerance in network units (overrides config)")
	workers := flag.Int("workers", 0, "Worker pool size (overrides config)")
	chunkSize := flag.Int("chunk", 0, "Reaches per chunk (overrides config)")
	newOnly := flag.Bool("new-only", false, "Skip reaches that already have a hydroline")
	databaseURL := flag.String("database-url", "", "PostgreSQL URL for the sinks (default: in-memory)")
	snapshotFile := flag.String("snapshot", "", "Snapshot file for in-memory sinks (loaded if present, saved on exit)")
	flag.Parse()

	if *edgesFile == "" || *accessFile == "" {
		fmt.Println("Usage: hydroline --edges network.csv --accesses accesses.csv [--config hydroline.yaml]")
		fmt.Println()
		fmt.Println("Validates put-in/take-out pairs against the flow-directed network and")
		fmt.Println("extracts the trimmed reach centerlines.")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *snapTolerance > 0 {
		cfg.SnapTolerance = *snapTolerance
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *chunkSize > 0 {
		cfg.ChunkSize = *chunkSize
	}
	if *newOnly {
		cfg.NewOnly = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	logger.Info("loading network edges", "file", *edgesFile)
	edges, err := loadEdges(*edgesFile)
	if err != nil {
		logger.Error("failed to load edges", "error", err)
		os.Exit(1)
	}
	net := memnet.NewNetwork(edges, memnet.Options{Metrics: metrics.Default()})
	logger.Info("network ready", "edges", net.EdgeCount())

	logger.Info("loading access points", "file", *accessFile)
	source, err := loadAccessSource(*accessFile)
	if err != nil {
		logger.Error("failed to load access points", "error", err)
		os.Exit(1)
	}

	hydrolines, invalids, save, err := openSinks(ctx, *databaseURL, *snapshotFile, logger)
	if err != nil {
		logger.Error("failed to open sinks", "error", err)
		os.Exit(1)
	}
	defer save()

	bus := pubsub.NewBus()
	defer bus.Shutdown()
	go logInvalidReaches(ctx, bus, logger)

	log := logging.NewJSONLogger(os.Stderr, logging.InfoLevel)
	proc := hydro.NewReachProcessor(net, source, hydrolines, cfg, log)
	runner, err := hydro.NewBatchRunner(cfg, source, proc, hydrolines, invalids, bus, metrics.Default(), log)
	if err != nil {
		logger.Error("failed to build batch runner", "error", err)
		os.Exit(1)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		logger.Error("batch aborted", "error", err, "run_id", summary.RunID)
		// os.Exit skips the deferred save; keep the chunks already flushed.
		save()
		os.Exit(1)
	}

	logger.Info("batch complete",
		"run_id", summary.RunID,
		"considered", summary.Considered,
		"valid", summary.Valid,
		"invalid", summary.Invalid,
		"skipped", summary.Skipped,
		"reconciled", summary.Reconciled,
	)
	fmt.Println(summary)
}

// loadConfig reads the YAML config file, or returns zero-value config for
// the flags to fill in.
func loadConfig(path string) (hydro.Config, error) {
	var cfg hydro.Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// openSinks picks Postgres or in-memory sinks. For in-memory sinks with a
// snapshot path, prior state is loaded and the returned save function
// persists the final state.
func openSinks(ctx context.Context, databaseURL, snapshotFile string, logger *slog.Logger) (hydro.HydrolineSink, hydro.InvalidSink, func(), error) {
	if databaseURL != "" {
		store, err := sinks.NewPGStore(ctx, databaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.Hydrolines(), store.Invalids(), func() { store.Close() }, nil
	}

	hydrolines := sinks.NewMemoryHydrolineSink()
	invalids := sinks.NewMemoryInvalidSink()
	if snapshotFile != "" {
		if loaded, loadedInvalids, err := sinks.ReadSnapshot(snapshotFile); err == nil {
			hydrolines, invalids = loaded, loadedInvalids
			logger.Info("snapshot loaded", "file", snapshotFile, "hydrolines", hydrolines.Len())
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, err
		}
	}

	save := func() {
		if snapshotFile == "" {
			return
		}
		if err := sinks.WriteSnapshot(snapshotFile, hydrolines, invalids); err != nil {
			logger.Error("failed to save snapshot", "error", err)
			return
		}
		logger.Info("snapshot saved", "file", snapshotFile, "hydrolines", hydrolines.Len())
	}
	return hydrolines, invalids, save, nil
}

// logInvalidReaches streams invalid-reach events to the operator log as the
// batch progresses.
func logInvalidReaches(ctx context.Context, bus *pubsub.Bus, logger *slog.Logger) {
	sub := bus.Subscribe(ctx, pubsub.TopicReachInvalid)
	for ev := range sub.Channel() {
		logger.Warn("reach failed validation", "reach_id", ev.ReachID, "reason", ev.Reason)
	}
}

// loadEdges reads the network edge CSV.
func loadEdges(filename string) ([]hydro.Edge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col, err := columnIndex(header, "edge_id", "from_node", "to_node", "flow", "wkt")
	if err != nil {
		return nil, err
	}

	var edges []hydro.Edge
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.ParseUint(row[col["edge_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: edge_id: %w", line, err)
		}
		from, err := strconv.ParseUint(row[col["from_node"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: from_node: %w", line, err)
		}
		to, err := strconv.ParseUint(row[col["to_node"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: to_node: %w", line, err)
		}

		var flow hydro.FlowDirection
		switch row[col["flow"]] {
		case "with":
			flow = hydro.FlowWithDigitized
		case "against":
			flow = hydro.FlowAgainstDigitized
		default:
			return nil, fmt.Errorf("line %d: flow must be \"with\" or \"against\", got %q", line, row[col["flow"]])
		}

		shape, err := geom.ParseLineStringWKT(row[col["wkt"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: wkt: %w", line, err)
		}

		edges = append(edges, hydro.Edge{
			ID:       hydro.EdgeID(id),
			FromNode: hydro.NodeID(from),
			ToNode:   hydro.NodeID(to),
			Flow:     flow,
			Geometry: shape,
		})
	}
	return edges, nil
}

// csvAccessSource is an in-memory AccessSource loaded from CSV.
type csvAccessSource struct {
	ids     []string
	records map[string][]hydro.AccessRecord
}

func (s *csvAccessSource) ReachIDs(context.Context) ([]string, error) {
	return s.ids, nil
}

func (s *csvAccessSource) Records(_ context.Context, reachID string) ([]hydro.AccessRecord, error) {
	return s.records[reachID], nil
}

// loadAccessSource reads the access point CSV.
func loadAccessSource(filename string) (*csvAccessSource, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // provenance column is optional
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col, err := columnIndex(header, "reach_id", "role", "x", "y")
	if err != nil {
		return nil, err
	}
	provCol := -1
	for i, name := range header {
		if name == "provenance" {
			provCol = i
		}
	}

	source := &csvAccessSource{records: make(map[string][]hydro.AccessRecord)}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		x, err := strconv.ParseFloat(row[col["x"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := strconv.ParseFloat(row[col["y"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}

		rec := hydro.AccessRecord{
			ReachID:  row[col["reach_id"]],
			Role:     row[col["role"]],
			Geometry: geom.Point{X: x, Y: y},
		}
		if provCol >= 0 && provCol < len(row) {
			rec.Provenance = row[provCol]
		}

		if _, seen := source.records[rec.ReachID]; !seen {
			source.ids = append(source.ids, rec.ReachID)
		}
		source.records[rec.ReachID] = append(source.records[rec.ReachID], rec)
	}
	return source, nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return col, nil
}
