package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/canhta/CareCircle/internal/logger"
	"github.com/canhta/CareCircle/internal/metrics"
	"github.com/canhta/CareCircle/internal/publish"
	"github.com/canhta/CareCircle/internal/rawitems"
	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/store"
	"github.com/canhta/CareCircle/pkg/carecircle/store/sqlite"
)

type processOptions struct {
	inputs    []string
	output    string
	storePath string
	workers   int
	metrics   bool
}

// processSummary is printed to stdout after a run.
type processSummary struct {
	RunID    string           `json:"run_id"`
	Admitted int              `json:"admitted"`
	Duration string           `json:"duration"`
	Stats    carecircle.Stats `json:"stats"`
}

func processCmd(a *app) *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process raw items into chunked, enriched items",
		Long: `Loads raw items from JSONL or JSON array files, runs them through the
pipeline and writes admitted items to the configured sinks: a JSONL file,
the SQLite store and, when brokers are configured, a Kafka topic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runProcess(ctx, a, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.inputs, "input", "i", nil, "Raw item files (JSONL or JSON array); repeatable")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write admitted items as JSONL to this file")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "SQLite store path; overrides config")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Parallel workers; overrides config")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Serve Prometheus metrics on the configured address")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runProcess(ctx context.Context, a *app, opts processOptions) error {
	cfg := a.cfg
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	log := logger.WithComponent(a.logger, "process")

	var items []ingest.RawItem
	for _, path := range opts.inputs {
		loaded, err := rawitems.LoadFile(path, log)
		if err != nil {
			return err
		}
		items = append(items, loaded...)
	}
	log.Info().Int("items", len(items)).Int("files", len(opts.inputs)).Msg("raw items loaded")

	procOpts := carecircle.Options{Logger: logger.WithComponent(a.logger, "processor")}
	if opts.metrics || cfg.Metrics.Enabled {
		m := metrics.New(prometheus.NewRegistry())
		procOpts.Observer = m
		shutdown := serveMetrics(cfg.Metrics.Addr, m, log)
		defer shutdown()
	}

	proc, err := carecircle.NewFromConfig(cfg, procOpts)
	if err != nil {
		return err
	}

	var sinks []namedSink
	if cfg.Store.Path != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		sinks = append(sinks, namedSink{name: "sqlite", sink: st, store: st})
	}
	if cfg.Kafka.Enabled() {
		pub, err := publish.New(cfg.Kafka, a.logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, namedSink{name: "kafka", sink: pub})
	}

	started := time.Now()
	processed := proc.ProcessBatchConcurrent(ctx, items, cfg.Workers)
	finished := time.Now()
	runID := proc.LastRunID()
	stats := proc.Stats()

	if opts.output != "" {
		if err := rawitems.WriteFile(opts.output, processed); err != nil {
			return err
		}
		log.Info().Str("file", opts.output).Int("items", len(processed)).Msg("output written")
	}

	run := store.Run{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: finished,
		Workers:    cfg.Workers,
		Admitted:   len(processed),
		Stats:      stats,
	}
	if err := writeSinks(context.WithoutCancel(ctx), sinks, run, processed); err != nil {
		return err
	}

	summary := processSummary{
		RunID:    runID,
		Admitted: len(processed),
		Duration: run.Duration().Round(time.Millisecond).String(),
		Stats:    stats,
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}

	return ctx.Err()
}

type namedSink struct {
	name  string
	sink  carecircle.Sink
	store store.Store // set when the sink also records runs
}

// writeSinks delivers the batch to every sink and records the run. All sinks
// are attempted; failures are joined.
func writeSinks(ctx context.Context, sinks []namedSink, run store.Run, items []carecircle.ProcessedItem) error {
	var errs []error
	for _, s := range sinks {
		if err := s.sink.PutItems(ctx, run.ID, items); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		if s.store != nil {
			if err := s.store.PutRun(ctx, run); err != nil {
				errs = append(errs, fmt.Errorf("%s: record run: %w", s.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func serveMetrics(addr string, m *metrics.Metrics, log zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
