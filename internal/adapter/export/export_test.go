package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

var runTime = time.Date(2020, 5, 10, 14, 32, 7, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(runTime))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func snapshotRow(label string, pop int64, wkly domain.Metric) domain.SnapshotRow {
	var r domain.SnapshotRow
	r.Key = domain.CountyKey(label)
	r.County = label
	r.State = "Illinois"
	r.Date = time.Date(2020, 5, 7, 0, 0, 0, 0, time.UTC)
	r.Label = label + ", IL"
	r.Population = pop
	r.Region = "East North Central"
	r.WeeklyDiff = wkly
	return r
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "capacity_snapshot_20200510_1432.json", FileName(SnapshotPrefix, runTime))
	assert.Equal(t, "cases_percap_1M+_20200510_1432.json", FileName(SeriesPrefix, runTime))
}

func TestWriteSnapshot(t *testing.T) {
	freezeClock(t)
	dir := filepath.Join(t.TempDir(), "out")

	rows := []domain.SnapshotRow{
		snapshotRow("cook", 5_150_233, domain.Some(0.25)),
		snapshotRow("lake", 696_535, domain.Missing()),
	}
	path, err := NewWriter(dir).WriteSnapshot(rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "capacity_snapshot_20200510_1432.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "cook, IL", decoded[0]["county_label"])
	assert.InDelta(t, 0.25, decoded[0]["wkly_diff"], 1e-9)
	assert.Nil(t, decoded[1]["wkly_diff"])
	assert.Equal(t, "East North Central", decoded[1]["region"])

	back, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, rows[0].Label, back[0].Label)
	assert.Equal(t, rows[0].WeeklyDiff, back[0].WeeklyDiff)
	assert.False(t, back[1].WeeklyDiff.Valid)
}

func TestWriteSnapshot_EmptyIsArray(t *testing.T) {
	freezeClock(t)
	path, err := NewWriter(t.TempDir()).WriteSnapshot(nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestWriteSeries(t *testing.T) {
	freezeClock(t)
	series := []domain.PerCapitaSeries{
		{Label: "Cook, IL", Population: 5_150_233, Rows: []domain.PerCapitaRow{
			{Label: "Cook, IL", Population: 5_150_233},
			{Label: "Cook, IL", Population: 5_150_233},
		}},
		{Label: "Harris, TX", Population: 4_713_325, Rows: []domain.PerCapitaRow{
			{Label: "Harris, TX", Population: 4_713_325},
		}},
	}

	path, err := NewWriter(t.TempDir()).WriteSeries(series)
	require.NoError(t, err)
	assert.Equal(t, "cases_percap_1M+_20200510_1432.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []domain.PerCapitaRow
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "Harris, TX", decoded[2].Label)
}

func TestReadSnapshot_Missing(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestWriteChart(t *testing.T) {
	dir := t.TempDir()
	path, err := NewWriter(dir).WriteChart([]domain.SnapshotRow{
		snapshotRow("cook", 5_150_233, domain.Some(0.25)),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "capacity_vs_case_delta.html"), path)
}
