// Command etl runs one county strain batch: fetch the case, census, hospital
// and reference inputs, derive per-county metrics, and write the snapshot,
// large-county series and chart artifacts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/export"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/hifld"
	kafkaadapter "github.com/couchcryptid/county-strain-etl/internal/adapter/kafka"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/nyt"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/reference"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/county-strain-etl/internal/config"
	"github.com/couchcryptid/county-strain-etl/internal/observability"
	"github.com/couchcryptid/county-strain-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.OpenReadOnly(cfg.CensusDBPath)
	if err != nil {
		logger.Error("open census store", "path", cfg.CensusDBPath, "error", err)
		return 1
	}
	defer store.Close()

	client := fetch.NewClient(cfg.FetchTimeout, cfg.FetchRetries, logger)
	sources := pipeline.Sources{
		Reference:  reference.NewLoader(client, cfg.StateAbbrevURL, cfg.RegionsURL, cfg.ReferenceFile),
		Cases:      nyt.NewSource(client, cfg.CasesURL),
		Population: store,
		Beds:       hifld.NewSource(client, cfg.BedsURL),
	}

	var sink pipeline.SnapshotSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka snapshot sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(sources, export.NewWriter(cfg.OutputDir), sink, pipeline.OptionsFromConfig(cfg), logger, metrics)
	res, runErr := p.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := observability.Push(shutdownCtx, cfg.PushgatewayURL, metrics); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}

	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		return 1
	}
	logger.Info("run succeeded",
		"run_id", res.RunID,
		"anchor_date", res.Anchor.Format("2006-01-02"),
		"snapshot_rows", res.SnapshotRows,
		"join_misses", len(res.Diagnostics.JoinMisses),
	)
	return 0
}
