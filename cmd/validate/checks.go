package main

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validate(rows []domain.SnapshotRow, minPopulation int64) []*phase {
	return []*phase{
		validateAnchor(rows),
		validatePopulation(rows, minPopulation),
		validatePerCapita(rows),
		validateCapacity(rows),
		validateUnique(rows),
	}
}

// ── Phase 1: every row sits on the same anchor date ──

func validateAnchor(rows []domain.SnapshotRow) *phase {
	p := &phase{name: "Phase 1: Single anchor date"}
	if len(rows) == 0 {
		p.errorf("snapshot is empty")
		return p
	}
	anchor := rows[0].Date
	for _, r := range rows[1:] {
		if !r.Date.Equal(anchor) {
			p.errorf("%s: date %s, expected %s", r.Label, r.Date.Format(time.DateOnly), anchor.Format(time.DateOnly))
		}
	}
	return p
}

// ── Phase 2: population above the floor and full history ──

func validatePopulation(rows []domain.SnapshotRow, floor int64) *phase {
	p := &phase{name: "Phase 2: Population floor and history"}
	for _, r := range rows {
		if r.Population <= floor {
			p.errorf("%s: population %d not above %d", r.Label, r.Population, floor)
		}
		if r.Observations < domain.LongestWindow {
			p.errorf("%s: %d observations, %d required", r.Label, r.Observations, domain.LongestWindow)
		}
	}
	return p
}

// ── Phase 3: per-capita rates agree with the raw counts ──

func validatePerCapita(rows []domain.SnapshotRow) *phase {
	p := &phase{name: "Phase 3: Per-capita consistency"}
	for _, r := range rows {
		if r.Population <= 0 {
			p.errorf("%s: non-positive population", r.Label)
			continue
		}
		pop := float64(r.Population)
		expectClose(p, r.Label, "cases_per1k", r.CasesPer1k, float64(r.Cases)/pop*domain.Per1k)
		expectClose(p, r.Label, "cases_per10k", r.CasesPer10k, float64(r.Cases)/pop*domain.Per10k)
		expectClose(p, r.Label, "deaths_per1k", r.DeathsPer1k, float64(r.Deaths)/pop*domain.Per1k)
		if sum, ok := r.NewCasesSum14.Float64(); ok {
			expectClose(p, r.Label, "cases_new_per1k_sum14", r.NewCasesPer1kSum14, sum/pop*domain.Per1k)
		}
	}
	return p
}

// ── Phase 4: capacity estimates agree with bed totals ──

func validateCapacity(rows []domain.SnapshotRow) *phase {
	p := &phase{name: "Phase 4: Capacity consistency"}
	for _, r := range rows {
		beds, ok := r.TotalBeds.Float64()
		if !ok {
			if r.FreeBedRatio.Valid {
				p.errorf("%s: free_bed_perc present without beds", r.Label)
			}
			continue
		}
		available := beds * domain.CovidBedShare
		expectClose(p, r.Label, "available_covid_beds", r.AvailableCovidBeds, available)
		if sum, ok := r.NewCasesSum12.Float64(); ok {
			expectClose(p, r.Label, "estimated_occupied_beds", r.EstimatedOccupiedBeds, sum*domain.HospitalizationRate)
		}
		if free, ok := r.FreeBedRatio.Float64(); ok && free > 1+tolerance {
			p.errorf("%s: free_bed_perc %g above 1", r.Label, free)
		}
	}
	return p
}

// ── Phase 5: one row per county ──

func validateUnique(rows []domain.SnapshotRow) *phase {
	p := &phase{name: "Phase 5: No duplicate counties"}
	seenLabel := make(map[string]bool, len(rows))
	seenID := make(map[domain.SeriesID]bool, len(rows))
	for _, r := range rows {
		if seenLabel[r.Label] {
			p.errorf("duplicate label %q", r.Label)
		}
		seenLabel[r.Label] = true
		if seenID[r.ID()] {
			p.errorf("duplicate county key %q in %s", r.Key, r.State)
		}
		seenID[r.ID()] = true
	}
	return p
}

func expectClose(p *phase, label, field string, got domain.Metric, want float64) {
	v, ok := got.Float64()
	if !ok {
		p.errorf("%s: %s missing, expected %g", label, field, want)
		return
	}
	if math.Abs(v-want) > tolerance*math.Max(1, math.Abs(want)) {
		p.errorf("%s: %s = %g, expected %g", label, field, v, want)
	}
}
