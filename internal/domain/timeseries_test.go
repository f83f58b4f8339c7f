package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

// cumulativeSeries builds keyed records for one county from cumulative counts,
// one per consecutive day.
func cumulativeSeries(county, state string, cumulative ...int64) []CountyDayRecord {
	out := make([]CountyDayRecord, len(cumulative))
	for i, c := range cumulative {
		out[i] = CountyDayRecord{
			Key:    NormalizeName(county, state).Key,
			County: county,
			State:  state,
			Date:   day(i),
			Cases:  c,
			Deaths: c / 10,
		}
	}
	return out
}

func newCasesOf(s CountySeries) []int64 {
	out := make([]int64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.NewCases
	}
	return out
}

func TestDerive_Increments(t *testing.T) {
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Cook", "Illinois", 5, 12, 12, 30))

	require.Len(t, series, 1)
	assert.Equal(t, SeriesID{Key: "cook", State: "Illinois"}, series[0].ID)
	assert.Equal(t, []int64{5, 7, 0, 18}, newCasesOf(series[0]))
	assert.Equal(t, []int64{0, 1, 0, 2}, []int64{
		series[0].Rows[0].NewDeaths, series[0].Rows[1].NewDeaths,
		series[0].Rows[2].NewDeaths, series[0].Rows[3].NewDeaths,
	})
}

func TestDerive_IncrementsSumToFinalCumulative(t *testing.T) {
	cumulative := []int64{3, 3, 10, 25, 24, 40, 41, 90}
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Dallas", "Texas", cumulative...))

	require.Len(t, series, 1)
	var total int64
	for _, n := range newCasesOf(series[0]) {
		total += n
	}
	assert.Equal(t, cumulative[len(cumulative)-1], total)
}

func TestDerive_UnorderedInput(t *testing.T) {
	records := cumulativeSeries("Cook", "Illinois", 1, 4, 9)
	records[0], records[2] = records[2], records[0]

	series := NewDeriver(NegativeRetain).Derive(records)

	require.Len(t, series, 1)
	assert.Equal(t, []int64{1, 3, 5}, newCasesOf(series[0]))
}

func TestDerive_NegativePolicy(t *testing.T) {
	records := cumulativeSeries("Harris", "Texas", 10, 20, 15, 25)

	retained := NewDeriver(NegativeRetain).Derive(records)
	clamped := NewDeriver(NegativeClamp).Derive(records)

	assert.Equal(t, []int64{10, 10, -5, 10}, newCasesOf(retained[0]))
	assert.Equal(t, []int64{10, 10, 0, 10}, newCasesOf(clamped[0]))
}

func TestParseNegativePolicy(t *testing.T) {
	p, err := ParseNegativePolicy("clamp")
	require.NoError(t, err)
	assert.Equal(t, NegativeClamp, p)

	_, err = ParseNegativePolicy("drop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drop")
}

func TestDerive_MergesBoroughs(t *testing.T) {
	records := []CountyDayRecord{
		{Key: NewYorkCityKey, County: "Kings", State: stateNewYork, Date: day(0), Cases: 100, Deaths: 4},
		{Key: NewYorkCityKey, County: "Queens", State: stateNewYork, Date: day(0), Cases: 50, Deaths: 1},
	}

	series := NewDeriver(NegativeRetain).Derive(records)

	require.Len(t, series, 1)
	require.Len(t, series[0].Rows, 1)
	row := series[0].Rows[0]
	assert.Equal(t, int64(150), row.Cases)
	assert.Equal(t, int64(5), row.Deaths)
	assert.Equal(t, int64(150), row.NewCases)
	assert.Equal(t, "New York City", row.County)
}

func TestDerive_MergesIndependentCityIncrementsPerSource(t *testing.T) {
	// The city starts reporting a day later; its first report differences
	// against zero, not against the county's running total.
	records := []CountyDayRecord{
		{Key: "st. louis", County: "St. Louis", State: stateMissouri, Date: day(0), Cases: 10},
		{Key: "st. louis", County: "St. Louis", State: stateMissouri, Date: day(1), Cases: 15},
		{Key: "st. louis", County: "St. Louis city", State: stateMissouri, Date: day(1), Cases: 4},
	}

	series := NewDeriver(NegativeRetain).Derive(records)

	require.Len(t, series, 1)
	assert.Equal(t, []int64{10, 9}, newCasesOf(series[0]))
	assert.Equal(t, int64(19), series[0].Rows[1].Cases)
	assert.Equal(t, "St. Louis", series[0].Display)
}

func TestDerive_SeriesDoNotCrossStates(t *testing.T) {
	records := append(
		cumulativeSeries("Washington", "Oregon", 1, 2, 3, 4, 5),
		cumulativeSeries("Washington", "Utah", 10, 20, 30)...,
	)

	series := NewDeriver(NegativeRetain).Derive(records)

	require.Len(t, series, 2)
	assert.Equal(t, "Oregon", series[0].ID.State)
	assert.True(t, series[0].Rows[4].NewCasesMA5.Valid)
	assert.Equal(t, "Utah", series[1].ID.State)
	assert.False(t, series[1].Rows[2].NewCasesMA5.Valid)
}

func TestRollingMean_ConstantWindow(t *testing.T) {
	for _, v := range []float64{7, 0, 0.1, 1.0 / 3, 0.7, -0.25} {
		for _, w := range []int{WindowMA5, WindowDeltaMA7, WindowSum12, WindowDeltaMA14} {
			values := make([]Metric, w)
			for i := range values {
				values[i] = Some(v)
			}

			got := RollingMean(values, w-1, w)
			require.True(t, got.Valid, "v=%g window %d", v, w)
			assert.Equal(t, v, got.Value, "v=%g window %d", v, w)

			short := RollingMean(values[:w-1], w-2, w)
			assert.False(t, short.Valid, "v=%g window %d with %d values", v, w, w-1)
		}
	}
}

func TestRollingMean_Mixed(t *testing.T) {
	values := []Metric{Some(1), Some(2), Some(3), Some(4), Some(5)}

	assert.InDelta(t, 3.0, RollingMean(values, 4, 5).Value, 1e-12)
	assert.InDelta(t, 4.0, RollingMean(values, 4, 3).Value, 1e-12)
}

func TestRollingSum(t *testing.T) {
	values := []Metric{Some(1), Some(2), Some(3), Some(4)}

	assert.Equal(t, Metric{}, RollingSum(values, 1, 3))
	assert.Equal(t, Some(6), RollingSum(values, 2, 3))
	assert.Equal(t, Some(9), RollingSum(values, 3, 3))
}

func TestRollingMean_MissingInWindow(t *testing.T) {
	values := []Metric{Some(1), Missing(), Some(3), Some(4)}

	assert.False(t, RollingMean(values, 2, 3).Valid)
	assert.False(t, RollingMean(values, 3, 3).Valid)
	assert.Equal(t, Some(3.5), RollingMean(values, 3, 2))
}

func TestDerive_RollingWindows(t *testing.T) {
	cumulative := make([]int64, 14)
	for i := range cumulative {
		cumulative[i] = int64(i+1) * 10 // 10 new cases every day
	}
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Fulton", "Georgia", cumulative...))
	rows := series[0].Rows

	assert.False(t, rows[3].NewCasesMA5.Valid)
	assert.Equal(t, Some(10), rows[4].NewCasesMA5)
	assert.False(t, rows[5].NewCasesSum7.Valid)
	assert.Equal(t, Some(70), rows[6].NewCasesSum7)
	assert.False(t, rows[10].NewCasesSum12.Valid)
	assert.Equal(t, Some(120), rows[11].NewCasesSum12)
	assert.False(t, rows[12].NewCasesSum14.Valid)
	assert.Equal(t, Some(140), rows[13].NewCasesSum14)
	assert.Equal(t, 14, rows[13].Observations)

	// Day-over-day change is zero from the second row on, but the first row's
	// delta is missing, so the 7-row mean needs rows 1..7.
	assert.False(t, rows[6].NewCasesDeltaMA7.Valid)
	assert.Equal(t, Some(0), rows[7].NewCasesDeltaMA7)
	assert.False(t, rows[13].NewCasesDeltaMA14.Valid)
}

func TestDayOverDay(t *testing.T) {
	got := dayOverDay([]Metric{Some(0), Some(5), Some(10), Some(0), Some(3)})

	want := []Metric{Missing(), Missing(), Some(1), Some(-1), Missing()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dayOverDay mismatch (-want +got):\n%s", diff)
	}
}

func TestDayOverDay_NeverInfinite(t *testing.T) {
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Kent", "Delaware", 0, 0, 4, 4, 9))

	for _, r := range series[0].Rows {
		if r.NewCasesDelta.Valid {
			assert.False(t, r.NewCasesDelta.Value > 1e300, "delta on %s", r.Date)
		}
	}
	assert.False(t, series[0].Rows[2].NewCasesDelta.Valid, "previous day had zero new cases")
	assert.False(t, series[0].Rows[4].NewCasesDelta.Valid, "previous day had zero new cases")
}

func TestAnchorDate(t *testing.T) {
	latest := time.Date(2020, time.May, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, time.May, 7, 0, 0, 0, 0, time.UTC), AnchorDate(latest, DefaultReportingLagDays))
}

func TestLatestDate(t *testing.T) {
	series := NewDeriver(NegativeRetain).Derive(append(
		cumulativeSeries("Cook", "Illinois", 1, 2, 3),
		cumulativeSeries("Kent", "Delaware", 1, 2, 3, 4, 5)...,
	))
	assert.Equal(t, day(4), LatestDate(series))
	assert.True(t, LatestDate(nil).IsZero())
}

func TestKeyRecords(t *testing.T) {
	reports := []CaseReport{
		{Date: day(0), County: "St. Louis city", State: stateMissouri, Cases: 3, Deaths: 1},
		{Date: day(0), County: "Kings", State: stateNewYork, Cases: 9},
	}

	records := KeyRecords(reports, NewNormalizer(nil))

	require.Len(t, records, 2)
	assert.Equal(t, CountyKey("st. louis"), records[0].Key)
	assert.Equal(t, "St. Louis city", records[0].County)
	assert.Equal(t, NewYorkCityKey, records[1].Key)
}
