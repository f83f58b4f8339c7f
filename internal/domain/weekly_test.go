package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantSeries derives a series of n days with a fixed daily increment.
func constantSeries(county, state string, n int, daily int64) CountySeries {
	cumulative := make([]int64, n)
	for i := range cumulative {
		cumulative[i] = int64(i+1) * daily
	}
	return NewDeriver(NegativeRetain).Derive(cumulativeSeries(county, state, cumulative...))[0]
}

func TestWeeklyChanges(t *testing.T) {
	// day(0..6) carry 10/day, day(7..13) carry 20/day.
	cumulative := make([]int64, 17)
	var total int64
	for i := range cumulative {
		if i < 7 {
			total += 10
		} else {
			total += 20
		}
		cumulative[i] = total
	}
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Cook", "Illinois", cumulative...))

	got := WeeklyChanges(series, day(14))

	w, ok := got[series[0].ID]
	require.True(t, ok)
	assert.Equal(t, int64(140), w.LastWeekCases)
	assert.Equal(t, int64(70), w.PriorWeekCases)
	assert.Equal(t, Some(1), w.Diff)
}

func TestWeeklyChanges_ExcludesAnchorDay(t *testing.T) {
	s := constantSeries("Cook", "Illinois", 20, 5)

	got := WeeklyChanges([]CountySeries{s}, day(14))

	// day(14) itself belongs to neither window.
	assert.Equal(t, int64(35), got[s.ID].LastWeekCases)
	assert.Equal(t, int64(35), got[s.ID].PriorWeekCases)
	assert.Equal(t, Some(0), got[s.ID].Diff)
}

func TestWeeklyChanges_RequiresBothWindows(t *testing.T) {
	s := constantSeries("Cook", "Illinois", 5, 10)

	got := WeeklyChanges([]CountySeries{s}, day(7))

	_, ok := got[s.ID]
	assert.False(t, ok, "no observations in the prior week")
}

func TestWeeklyChanges_ZeroPriorWeek(t *testing.T) {
	cumulative := make([]int64, 14)
	for i := 7; i < 14; i++ {
		cumulative[i] = int64(i-6) * 3
	}
	series := NewDeriver(NegativeRetain).Derive(cumulativeSeries("Kent", "Delaware", cumulative...))

	got := WeeklyChanges(series, day(14))

	w := got[series[0].ID]
	assert.Equal(t, int64(0), w.PriorWeekCases)
	assert.Equal(t, int64(21), w.LastWeekCases)
	assert.False(t, w.Diff.Valid)
}
