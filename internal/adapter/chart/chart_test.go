package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

func row(label string, diff, free domain.Metric) domain.SnapshotRow {
	var r domain.SnapshotRow
	r.Label = label
	r.Region = "Mid-Atlantic"
	r.Population = 250_000
	r.WeeklyDiff = diff
	r.FreeBedRatio = free
	return r
}

func TestPoints(t *testing.T) {
	rows := []domain.SnapshotRow{
		row("Kept, NY", domain.Some(0.5), domain.Some(0.8)),
		row("No beds, NY", domain.Some(0.5), domain.Missing()),
		row("No diff, NY", domain.Missing(), domain.Some(0.8)),
		row("Spike, NY", domain.Some(3), domain.Some(0.8)),
		row("Drop, NY", domain.Some(-3.5), domain.Some(0.8)),
		row("Overrun, NY", domain.Some(0.1), domain.Some(-10)),
		row("Strained, NY", domain.Some(-0.2), domain.Some(-9.5)),
	}

	want := []Point{
		{Label: "Kept, NY", Region: "Mid-Atlantic", Population: 250_000, WeeklyDiff: 0.5, FreeBedRatio: 0.8},
		{Label: "Strained, NY", Region: "Mid-Atlantic", Population: 250_000, WeeklyDiff: -0.2, FreeBedRatio: -9.5},
	}
	if diff := cmp.Diff(want, Points(rows)); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, []domain.SnapshotRow{
		row("O'Brien <script>, IA", domain.Some(0.5), domain.Some(0.8)),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "vegaEmbed(")
	assert.Contains(t, out, `"wkly_diff"`)
	assert.Contains(t, out, "Open Beds / Available Beds")
	assert.NotContains(t, out, "<script>, IA", "labels must be escaped inside the script block")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}
