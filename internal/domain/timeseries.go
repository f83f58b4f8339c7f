package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

// NegativePolicy decides what happens to negative increments produced by
// downward revisions of cumulative counts.
type NegativePolicy string

const (
	// NegativeRetain keeps corrections as negative increments.
	NegativeRetain NegativePolicy = "retain"
	// NegativeClamp floors increments at zero.
	NegativeClamp NegativePolicy = "clamp"
)

// ParseNegativePolicy validates a policy name.
func ParseNegativePolicy(s string) (NegativePolicy, error) {
	switch p := NegativePolicy(s); p {
	case NegativeRetain, NegativeClamp:
		return p, nil
	default:
		return "", fmt.Errorf("unknown negative count policy %q", s)
	}
}

// Rolling window sizes, in observations.
const (
	WindowMA5       = 5
	WindowSum7      = 7
	WindowSum12     = 12
	WindowSum14     = 14
	WindowDeltaMA7  = 7
	WindowDeltaMA14 = 14
	LongestWindow   = WindowSum14
)

// KeyRecords attaches county keys to raw case reports. Reports are not merged.
func KeyRecords(reports []CaseReport, n Normalizer) []CountyDayRecord {
	out := make([]CountyDayRecord, 0, len(reports))
	for _, r := range reports {
		out = append(out, CountyDayRecord{
			Key:    n.Key(SourceCases, r.County, r.State),
			County: r.County,
			State:  r.State,
			Date:   r.Date,
			Cases:  r.Cases,
			Deaths: r.Deaths,
		})
	}
	return out
}

// Deriver turns keyed case records into per-county derived series.
type Deriver struct {
	policy NegativePolicy
}

// NewDeriver creates a Deriver. An empty policy means NegativeRetain.
func NewDeriver(policy NegativePolicy) *Deriver {
	if policy == "" {
		policy = NegativeRetain
	}
	return &Deriver{policy: policy}
}

// rawSeries identifies a series as published, before names are merged.
type rawSeries struct {
	county string
	state  string
}

// dayKey identifies one merged county-day.
type dayKey struct {
	id   SeriesID
	date time.Time
}

// Derive computes increments per raw series, merges raw series that share a
// county key, and computes rolling statistics per merged series. The result is
// ordered by state, then key.
func (d *Deriver) Derive(records []CountyDayRecord) []CountySeries {
	increments := d.increments(records)
	merged := mergeByKey(increments)

	out := make([]CountySeries, 0, len(merged))
	for _, s := range merged {
		deriveRolling(s.Rows)
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b CountySeries) int {
		return cmp.Or(cmp.Compare(a.ID.State, b.ID.State), cmp.Compare(a.ID.Key, b.ID.Key))
	})
	return out
}

// increments groups records by raw (county, state), orders each group by date
// and takes first differences. The first observation is differenced against 0.
func (d *Deriver) increments(records []CountyDayRecord) []DerivedMetricRow {
	groups := make(map[rawSeries][]CountyDayRecord)
	var order []rawSeries
	for _, r := range records {
		k := rawSeries{county: r.County, state: r.State}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]DerivedMetricRow, 0, len(records))
	for _, k := range order {
		group := groups[k]
		slices.SortStableFunc(group, func(a, b CountyDayRecord) int { return a.Date.Compare(b.Date) })

		var prevCases, prevDeaths int64
		for _, r := range group {
			out = append(out, DerivedMetricRow{
				CountyDayRecord: r,
				NewCases:        d.apply(r.Cases - prevCases),
				NewDeaths:       d.apply(r.Deaths - prevDeaths),
			})
			prevCases, prevDeaths = r.Cases, r.Deaths
		}
	}
	return out
}

func (d *Deriver) apply(increment int64) int64 {
	if d.policy == NegativeClamp && increment < 0 {
		return 0
	}
	return increment
}

// mergeByKey sums rows that share (key, state, date) and returns one
// date-ordered series per (key, state).
func mergeByKey(rows []DerivedMetricRow) map[SeriesID]CountySeries {
	days := make(map[dayKey]*DerivedMetricRow)
	names := make(map[SeriesID]map[string]bool)
	series := make(map[SeriesID][]*DerivedMetricRow)

	for _, r := range rows {
		id := r.ID()
		if names[id] == nil {
			names[id] = make(map[string]bool)
		}
		names[id][r.County] = true

		dk := dayKey{id: id, date: r.Date}
		if acc, ok := days[dk]; ok {
			acc.Cases += r.Cases
			acc.Deaths += r.Deaths
			acc.NewCases += r.NewCases
			acc.NewDeaths += r.NewDeaths
			continue
		}
		row := r
		days[dk] = &row
		series[id] = append(series[id], &row)
	}

	out := make(map[SeriesID]CountySeries, len(series))
	for id, ptrs := range series {
		display := displayFor(id.Key, names[id])
		merged := make([]DerivedMetricRow, len(ptrs))
		for i, p := range ptrs {
			merged[i] = *p
			merged[i].County = display
		}
		slices.SortFunc(merged, func(a, b DerivedMetricRow) int { return a.Date.Compare(b.Date) })
		out[id] = CountySeries{ID: id, Display: display, Rows: merged}
	}
	return out
}

// displayFor keeps the published name when a key has a single source name and
// title-cases the key when several names were merged.
func displayFor(key CountyKey, names map[string]bool) string {
	if len(names) == 1 {
		for name := range names {
			return name
		}
	}
	return DisplayName(key)
}

// deriveRolling fills positions, deltas and rolling statistics in place on a
// freshly merged, date-ordered series.
func deriveRolling(rows []DerivedMetricRow) {
	newCases := make([]Metric, len(rows))
	newDeaths := make([]Metric, len(rows))
	for i, r := range rows {
		newCases[i] = Some(float64(r.NewCases))
		newDeaths[i] = Some(float64(r.NewDeaths))
	}

	caseDelta := dayOverDay(newCases)
	deathDelta := dayOverDay(newDeaths)

	for i := range rows {
		r := &rows[i]
		r.Observations = i + 1
		r.NewCasesDelta = caseDelta[i]
		r.NewDeathsDelta = deathDelta[i]

		r.NewCasesMA5 = RollingMean(newCases, i, WindowMA5)
		r.NewDeathsMA5 = RollingMean(newDeaths, i, WindowMA5)
		r.NewCasesSum7 = RollingSum(newCases, i, WindowSum7)
		r.NewCasesSum12 = RollingSum(newCases, i, WindowSum12)
		r.NewCasesSum14 = RollingSum(newCases, i, WindowSum14)
		r.NewCasesDeltaMA7 = RollingMean(caseDelta, i, WindowDeltaMA7)
		r.NewCasesDeltaMA14 = RollingMean(caseDelta, i, WindowDeltaMA14)
	}
}

// dayOverDay returns (v[t] - v[t-1]) / v[t-1], missing for the first element
// and wherever the previous value is zero or missing.
func dayOverDay(values []Metric) []Metric {
	out := make([]Metric, len(values))
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !prev.Valid || !cur.Valid {
			continue
		}
		out[i] = Ratio(cur.Value-prev.Value, prev.Value)
	}
	return out
}

// window returns the w values ending at index i, or false when fewer than w
// values exist or any of them is missing.
func window(values []Metric, i, w int) ([]float64, bool) {
	if w <= 0 || i < w-1 || i >= len(values) {
		return nil, false
	}
	out := make([]float64, 0, w)
	for _, m := range values[i-w+1 : i+1] {
		if !m.Valid {
			return nil, false
		}
		out = append(out, m.Value)
	}
	return out, true
}

// RollingMean is the mean of the w values ending at index i. The mean is
// taken relative to the first value, which makes a constant window return
// that constant exactly.
func RollingMean(values []Metric, i, w int) Metric {
	vals, ok := window(values, i, w)
	if !ok {
		return Metric{}
	}
	x0 := vals[0]
	floats.AddConst(-x0, vals)
	return Some(x0 + floats.Sum(vals)/float64(len(vals)))
}

// RollingSum is the sum of the w values ending at index i.
func RollingSum(values []Metric, i, w int) Metric {
	vals, ok := window(values, i, w)
	if !ok {
		return Metric{}
	}
	return Some(floats.Sum(vals))
}

// LatestDate is the maximum observed date across all series.
func LatestDate(series []CountySeries) time.Time {
	var latest time.Time
	for _, s := range series {
		if d := s.Latest(); d.After(latest) {
			latest = d
		}
	}
	return latest
}

// AnchorDate steps back lagDays from the latest observed date.
func AnchorDate(latest time.Time, lagDays int) time.Time {
	return latest.AddDate(0, 0, -lagDays)
}
