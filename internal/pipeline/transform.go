package pipeline

import (
	"errors"
	"time"

	"github.com/couchcryptid/county-strain-etl/internal/config"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// ErrNoCases is returned when the case feed yields no county series.
var ErrNoCases = errors.New("case feed produced no county series")

// Inputs are the fetched sources for one run.
type Inputs struct {
	Reference  domain.Reference
	Cases      []domain.CaseReport
	Population []domain.PopulationRecord
	Facilities []domain.BedFacility
}

// Options tunes the derivation.
type Options struct {
	CensusYearCode          int
	ReportingLagDays        int
	SnapshotPopulationFloor int64
	SeriesPopulationFloor   int64
	NegativePolicy          domain.NegativePolicy
}

// OptionsFromConfig copies the derivation settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CensusYearCode:          cfg.CensusYearCode,
		ReportingLagDays:        cfg.ReportingLagDays,
		SnapshotPopulationFloor: cfg.SnapshotPopulationFloor,
		SeriesPopulationFloor:   cfg.SeriesPopulationFloor,
		NegativePolicy:          cfg.NegativePolicy,
	}
}

// Output is everything derived from one set of inputs.
type Output struct {
	MaxDate time.Time
	Anchor  time.Time

	Series    []domain.CountySeries
	PerCapita []domain.PerCapitaSeries
	// LargeCounties is PerCapita restricted to SeriesPopulationFloor.
	LargeCounties []domain.PerCapitaSeries
	Snapshot      []domain.SnapshotRow
	Beds          domain.BedIndex
}

// Transform runs the pure part of the pipeline: key, derive, join population,
// compute weekly change, select the snapshot and estimate capacity. Non-fatal
// findings go to diag.
func Transform(in Inputs, opts Options, diag *domain.Diagnostics) (Output, error) {
	n := domain.NewNormalizer(diag)

	series := domain.NewDeriver(opts.NegativePolicy).Derive(domain.KeyRecords(in.Cases, n))
	if len(series) == 0 {
		return Output{}, ErrNoCases
	}

	out := Output{Series: series}
	out.MaxDate = domain.LatestDate(series)
	out.Anchor = domain.AnchorDate(out.MaxDate, opts.ReportingLagDays)

	weekly := domain.WeeklyChanges(series, out.Anchor)
	out.PerCapita = domain.JoinPopulation(series, domain.NewPopulationIndex(in.Population), diag)
	out.LargeCounties = domain.FilterByPopulation(out.PerCapita, opts.SeriesPopulationFloor)

	snapOpts := domain.DefaultSnapshotOptions()
	snapOpts.PopulationFloor = opts.SnapshotPopulationFloor
	snapshot := domain.SelectSnapshot(out.PerCapita, weekly, in.Reference, out.Anchor, snapOpts, diag)

	out.Beds = domain.AggregateBeds(in.Facilities, in.Reference, n, diag)
	out.Snapshot = domain.EstimateCapacity(snapshot, out.Beds)
	return out, nil
}
