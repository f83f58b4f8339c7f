// Command census-etl refreshes the local census population store. It downloads
// the county population estimates, keeps the all-ages rows, normalizes county
// names to join keys, attaches census divisions and rewrites the SQLite table.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/census"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/reference"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/county-strain-etl/internal/config"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
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

	err = refresh(ctx, cfg, logger, metrics)

	pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if pushErr := observability.Push(pushCtx, cfg.PushgatewayURL, metrics); pushErr != nil {
		logger.Warn("metrics push failed", "error", pushErr)
	}

	if err != nil {
		logger.Error("census refresh failed", "error", err)
		return 1
	}
	return 0
}

func refresh(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	start := domain.Now()
	client := fetch.NewClient(cfg.FetchTimeout, cfg.FetchRetries, logger)

	ref, err := reference.NewLoader(client, cfg.StateAbbrevURL, cfg.RegionsURL, cfg.ReferenceFile).LoadReference(ctx)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(reference.SourceName).Inc()
		return err
	}

	diag := domain.NewDiagnostics()
	rows, err := census.NewSource(client, cfg.CensusURL, domain.NewNormalizer(diag)).FetchRows(ctx)
	metrics.FetchDuration.WithLabelValues(census.SourceName).Observe(domain.Now().Sub(start).Seconds())
	if err != nil {
		metrics.FetchErrors.WithLabelValues(census.SourceName).Inc()
		return err
	}
	metrics.RowsFetched.WithLabelValues(census.SourceName).Add(float64(len(rows)))
	census.AttachRegions(rows, ref)

	store, err := sqlite.NewStore(cfg.CensusDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceCensus(ctx, rows); err != nil {
		return err
	}

	pipeline.RecordDiagnostics(metrics, diag)
	diag.Log(logger)
	metrics.LastSuccess.Set(float64(domain.Now().Unix()))
	logger.Info("census store refreshed",
		"path", cfg.CensusDBPath,
		"rows", len(rows),
		"unmapped_names", len(diag.UnmappedNames),
		"duration", domain.Now().Sub(start),
	)
	return nil
}
