// Package export writes run artifacts to the output directory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/chart"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// TimestampLayout stamps artifact names, e.g. 20200510_1432.
const TimestampLayout = "20060102_1504"

// Artifact name prefixes.
const (
	SnapshotPrefix = "capacity_snapshot"
	SeriesPrefix   = "cases_percap_1M+"
)

// Writer writes JSON artifacts into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir. The directory is created on first
// write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileName returns prefix_<timestamp>.json for the given time.
func FileName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, at.Format(TimestampLayout))
}

// WriteSnapshot writes the snapshot rows as a JSON array and returns the path.
func (w *Writer) WriteSnapshot(rows []domain.SnapshotRow) (string, error) {
	if rows == nil {
		rows = []domain.SnapshotRow{}
	}
	return w.write(FileName(SnapshotPrefix, domain.Now()), rows)
}

// WriteSeries writes every row of the given series as one flat JSON array,
// one record per county-day, and returns the path.
func (w *Writer) WriteSeries(series []domain.PerCapitaSeries) (string, error) {
	rows := make([]domain.PerCapitaRow, 0)
	for _, s := range series {
		rows = append(rows, s.Rows...)
	}
	return w.write(FileName(SeriesPrefix, domain.Now()), rows)
}

// WriteChart renders the capacity chart next to the JSON artifacts.
func (w *Writer) WriteChart(rows []domain.SnapshotRow) (string, error) {
	return chart.WriteFile(w.dir, rows)
}

func (w *Writer) write(name string, v any) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) ([]domain.SnapshotRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var rows []domain.SnapshotRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return rows, nil
}
