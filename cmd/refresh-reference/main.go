// Command refresh-reference downloads the state abbreviation and census
// division pages and writes them to a YAML file that later runs can load via
// REFERENCE_FILE instead of scraping.
//
// Usage:
//
//	go run ./cmd/refresh-reference -out reference.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/adapter/reference"
	"github.com/couchcryptid/county-strain-etl/internal/config"
	"github.com/couchcryptid/county-strain-etl/internal/observability"
)

func main() {
	out := flag.String("out", "reference.yaml", "path of the YAML file to write")
	flag.Parse()
	os.Exit(run(*out))
}

func run(out string) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(cfg.FetchTimeout, cfg.FetchRetries, logger)
	ref, err := reference.NewLoader(client, cfg.StateAbbrevURL, cfg.RegionsURL, "").Fetch(ctx)
	if err != nil {
		logger.Error("fetch reference tables", "error", err)
		return 1
	}
	if err := reference.WriteFile(out, ref); err != nil {
		logger.Error("write reference file", "error", err)
		return 1
	}
	logger.Info("reference file written",
		"path", out,
		"states", len(ref.StateNames()),
		"divisions", len(ref.Divisions()),
	)
	return 0
}
