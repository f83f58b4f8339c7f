// Package chart renders the capacity versus weekly case change scatter plot
// as a standalone Vega-Lite HTML page.
package chart

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// FileName is the chart artifact written into the output directory.
const FileName = "capacity_vs_case_delta.html"

// Plot bounds. Weekly changes beyond ±3x are treated as reporting artifacts.
const (
	maxAbsWeeklyDiff = 3.0
	minFreeBedRatio  = -10.0
)

// Point is one county on the chart.
type Point struct {
	Label        string  `json:"county_label"`
	Region       string  `json:"region"`
	Population   int64   `json:"population"`
	WeeklyDiff   float64 `json:"wkly_diff"`
	FreeBedRatio float64 `json:"free_bed_perc"`
}

// Points keeps rows with both metrics present, -3 < wkly_diff < 3 and
// free_bed_perc > -10.
func Points(rows []domain.SnapshotRow) []Point {
	out := make([]Point, 0, len(rows))
	for _, r := range rows {
		diff, okDiff := r.WeeklyDiff.Float64()
		free, okFree := r.FreeBedRatio.Float64()
		if !okDiff || !okFree {
			continue
		}
		if diff <= -maxAbsWeeklyDiff || diff >= maxAbsWeeklyDiff || free <= minFreeBedRatio {
			continue
		}
		out = append(out, Point{
			Label:        r.Label,
			Region:       r.Region,
			Population:   r.Population,
			WeeklyDiff:   diff,
			FreeBedRatio: free,
		})
	}
	return out
}

var page = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <script src="https://cdn.jsdelivr.net/npm/vega@5"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-lite@4"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-embed@6"></script>
</head>
<body>
  <div id="vis"></div>
  <script type="text/javascript">
    vegaEmbed("#vis", {{.Spec}});
  </script>
</body>
</html>
`))

type pageData struct {
	Title string
	Spec  template.JS
}

// Render writes the chart page for rows to w.
func Render(w io.Writer, rows []domain.SnapshotRow) error {
	spec, err := json.Marshal(vegaSpec(Points(rows)))
	if err != nil {
		return fmt.Errorf("encode chart spec: %w", err)
	}
	return page.Execute(w, pageData{
		Title: "Estimated Bed Capacity vs Weekly Change in New Cases",
		Spec:  template.JS(spec),
	})
}

// WriteFile renders the chart into dir and returns the path.
func WriteFile(dir string, rows []domain.SnapshotRow) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart: %w", err)
	}
	if err := Render(f, rows); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close chart: %w", err)
	}
	return path, nil
}

func vegaSpec(points []Point) map[string]any {
	return map[string]any{
		"$schema": "https://vega.github.io/schema/vega-lite/v4.json",
		"title": []string{
			"Estimated Bed Capacity vs Weekly Change in New Cases",
			"US counties > 100,000 residents",
		},
		"width":  750,
		"height": 400,
		"data":   map[string]any{"values": points},
		"mark":   "point",
		"selection": map[string]any{
			"grid": map[string]any{"type": "interval", "bind": "scales"},
		},
		"encoding": map[string]any{
			"x": map[string]any{
				"field": "wkly_diff", "type": "quantitative",
				"axis": map[string]any{"title": "Week-over-week New Case Delta"},
			},
			"y": map[string]any{
				"field": "free_bed_perc", "type": "quantitative",
				"axis": map[string]any{"title": "Open Beds / Available Beds"},
			},
			"color": map[string]any{
				"field": "region", "type": "nominal",
				"legend": map[string]any{"title": "Region"},
			},
			"size": map[string]any{
				"field": "population", "type": "quantitative",
				"legend": map[string]any{"title": "Population"},
			},
			"tooltip": []map[string]any{
				{"field": "county_label", "type": "nominal"},
				{"field": "population", "type": "quantitative"},
				{"field": "free_bed_perc", "type": "quantitative"},
			},
		},
	}
}
