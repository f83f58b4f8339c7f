package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
	"github.com/couchcryptid/county-strain-etl/internal/observability"
)

// Source labels used for per-source metrics.
const (
	sourceReference = "reference"
	sourceCases     = string(domain.SourceCases)
	sourceCensus    = string(domain.SourceCensus)
	sourceHospitals = string(domain.SourceHospitals)
)

// CaseSource fetches the cumulative county case feed.
type CaseSource interface {
	FetchCases(ctx context.Context) ([]domain.CaseReport, error)
}

// PopulationSource reads county population totals for a census year code.
type PopulationSource interface {
	Population(ctx context.Context, yearCode int) ([]domain.PopulationRecord, error)
}

// BedSource fetches hospital facilities.
type BedSource interface {
	FetchFacilities(ctx context.Context) ([]domain.BedFacility, error)
}

// ReferenceSource resolves the state and division lookup tables.
type ReferenceSource interface {
	LoadReference(ctx context.Context) (domain.Reference, error)
}

// ArtifactWriter persists the run's file outputs and returns their paths.
type ArtifactWriter interface {
	WriteSnapshot(rows []domain.SnapshotRow) (string, error)
	WriteSeries(series []domain.PerCapitaSeries) (string, error)
	WriteChart(rows []domain.SnapshotRow) (string, error)
}

// SnapshotSink receives the snapshot rows of a run.
type SnapshotSink interface {
	LoadSnapshot(ctx context.Context, runID string, anchor time.Time, rows []domain.SnapshotRow) error
}

// Sources groups the run inputs.
type Sources struct {
	Reference  ReferenceSource
	Cases      CaseSource
	Population PopulationSource
	Beds       BedSource
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	MaxDate      time.Time
	Anchor       time.Time
	Counties     int
	SnapshotRows int
	Artifacts    []string
	Diagnostics  *domain.Diagnostics
}

// Pipeline runs one batch: fetch, derive, export.
type Pipeline struct {
	sources Sources
	writer  ArtifactWriter
	sink    SnapshotSink
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline. sink may be nil when no snapshot sink is configured.
func New(sources Sources, writer ArtifactWriter, sink SnapshotSink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		sources: sources,
		writer:  writer,
		sink:    sink,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes one complete run. Any fetch, export or sink failure aborts it;
// join misses and history gaps are reported in the result diagnostics.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := domain.Now()
	runID := uuid.NewString()
	logger := observability.WithRun(p.logger, runID)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	logger.Info("run started")

	in, err := p.fetch(ctx, logger)
	if err != nil {
		return nil, err
	}

	diag := domain.NewDiagnostics()
	out, err := Transform(in, p.opts, diag)
	if err != nil {
		return nil, err
	}
	RecordDiagnostics(p.metrics, diag)
	p.metrics.CountiesDerived.Set(float64(len(out.Series)))
	p.metrics.SnapshotRows.Set(float64(len(out.Snapshot)))
	logger.Info("series derived",
		"counties", len(out.Series),
		"joined", len(out.PerCapita),
		"max_date", out.MaxDate.Format(time.DateOnly),
		"anchor_date", out.Anchor.Format(time.DateOnly),
		"snapshot_rows", len(out.Snapshot),
		"bed_counties", out.Beds.Len(),
	)

	artifacts, err := p.export(out)
	if err != nil {
		return nil, err
	}

	if p.sink != nil {
		if err := p.sink.LoadSnapshot(ctx, runID, out.Anchor, out.Snapshot); err != nil {
			return nil, err
		}
		p.metrics.SinkMessages.Add(float64(len(out.Snapshot)))
	}

	diag.Log(logger)
	elapsed := domain.Now().Sub(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccess.Set(float64(domain.Now().Unix()))
	logger.Info("run complete", "duration", elapsed, "artifacts", artifacts)

	return &Result{
		RunID:        runID,
		MaxDate:      out.MaxDate,
		Anchor:       out.Anchor,
		Counties:     len(out.Series),
		SnapshotRows: len(out.Snapshot),
		Artifacts:    artifacts,
		Diagnostics:  diag,
	}, nil
}

func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger) (Inputs, error) {
	var in Inputs
	var err error

	in.Reference, err = timed(p, logger, sourceReference, func() (domain.Reference, int, error) {
		ref, err := p.sources.Reference.LoadReference(ctx)
		return ref, len(ref.StateNames()), err
	})
	if err != nil {
		return Inputs{}, err
	}
	in.Cases, err = timed(p, logger, sourceCases, func() ([]domain.CaseReport, int, error) {
		rows, err := p.sources.Cases.FetchCases(ctx)
		return rows, len(rows), err
	})
	if err != nil {
		return Inputs{}, err
	}
	in.Population, err = timed(p, logger, sourceCensus, func() ([]domain.PopulationRecord, int, error) {
		rows, err := p.sources.Population.Population(ctx, p.opts.CensusYearCode)
		return rows, len(rows), err
	})
	if err != nil {
		return Inputs{}, err
	}
	in.Facilities, err = timed(p, logger, sourceHospitals, func() ([]domain.BedFacility, int, error) {
		rows, err := p.sources.Beds.FetchFacilities(ctx)
		return rows, len(rows), err
	})
	if err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// timed runs one fetch and records its duration, row count or failure.
func timed[T any](p *Pipeline, logger *slog.Logger, source string, fetch func() (T, int, error)) (T, error) {
	start := domain.Now()
	v, n, err := fetch()
	p.metrics.FetchDuration.WithLabelValues(source).Observe(domain.Now().Sub(start).Seconds())
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues(source).Inc()
		logger.Error("fetch failed", "source", source, "error", err)
		var zero T
		return zero, err
	}
	p.metrics.RowsFetched.WithLabelValues(source).Add(float64(n))
	logger.Info("fetched", "source", source, "rows", n)
	return v, nil
}

func (p *Pipeline) export(out Output) ([]string, error) {
	snapshot, err := p.writer.WriteSnapshot(out.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	series, err := p.writer.WriteSeries(out.LargeCounties)
	if err != nil {
		return nil, fmt.Errorf("export series: %w", err)
	}
	chart, err := p.writer.WriteChart(out.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("export chart: %w", err)
	}
	return []string{snapshot, series, chart}, nil
}

// RecordDiagnostics adds a run's findings to the diagnostic counters.
func RecordDiagnostics(m *observability.Metrics, diag *domain.Diagnostics) {
	m.JoinMisses.Add(float64(len(diag.JoinMisses)))
	m.HistoryGaps.Add(float64(len(diag.HistoryGaps)))
	for _, w := range diag.UnmappedNames {
		m.UnmappedNames.WithLabelValues(string(w.Source)).Inc()
	}
}
