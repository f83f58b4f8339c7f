package domain

import (
	"cmp"
	"slices"
	"time"
)

// Snapshot defaults.
const (
	DefaultReportingLagDays = 3
	DefaultPopulationFloor  = 100_000
)

// SnapshotOptions controls cross-section selection.
type SnapshotOptions struct {
	// PopulationFloor keeps counties with population strictly above it.
	PopulationFloor int64
	// MinObservations drops anchor rows with fewer observations. Rows below
	// it are missing at least one rolling window.
	MinObservations int
}

// DefaultSnapshotOptions mirrors the published capacity view: counties above
// 100,000 residents with the full 14 observation history.
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		PopulationFloor: DefaultPopulationFloor,
		MinObservations: LongestWindow,
	}
}

// SelectSnapshot takes each county's row at anchor, applies the population
// floor and history requirement, and attaches region and weekly change.
// Regions come from ref, falling back to the population record's region.
// Rows are ordered by label.
func SelectSnapshot(
	series []PerCapitaSeries,
	weekly map[SeriesID]WeeklyChange,
	ref Reference,
	anchor time.Time,
	opts SnapshotOptions,
	diag *Diagnostics,
) []SnapshotRow {
	var out []SnapshotRow
	for _, s := range series {
		if s.Population <= opts.PopulationFloor {
			continue
		}
		row, ok := rowAt(s.Rows, anchor)
		if !ok {
			continue
		}
		if row.Observations < opts.MinObservations {
			diag.addHistoryGap(InsufficientHistoryGap{
				Key:          s.ID.Key,
				State:        s.ID.State,
				Observations: row.Observations,
				Required:     opts.MinObservations,
			})
			continue
		}

		snap := SnapshotRow{PerCapitaRow: row, Region: s.Region}
		if region, ok := ref.Region(s.ID.State); ok {
			snap.Region = region
		}
		if w, ok := weekly[s.ID]; ok {
			snap.LastWeekCases = Some(float64(w.LastWeekCases))
			snap.PriorWeekCases = Some(float64(w.PriorWeekCases))
			snap.WeeklyDiff = w.Diff
		}
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b SnapshotRow) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

func rowAt(rows []PerCapitaRow, date time.Time) (PerCapitaRow, bool) {
	i, found := slices.BinarySearchFunc(rows, date, func(r PerCapitaRow, d time.Time) int {
		return r.Date.Compare(d)
	})
	if !found {
		return PerCapitaRow{}, false
	}
	return rows[i], true
}

// FilterByPopulation keeps series with population strictly above floor.
func FilterByPopulation(series []PerCapitaSeries, floor int64) []PerCapitaSeries {
	var out []PerCapitaSeries
	for _, s := range series {
		if s.Population > floor {
			out = append(out, s)
		}
	}
	return out
}
