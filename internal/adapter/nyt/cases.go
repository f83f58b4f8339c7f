// Package nyt reads the county-level case feed (date,county,state,fips,cases,deaths).
package nyt

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// SourceName labels this feed in errors, logs and metrics.
const SourceName = string(domain.SourceCases)

const dateLayout = "2006-01-02"

var requiredColumns = []string{"date", "county", "state", "fips", "cases", "deaths"}

// Source fetches and parses the case feed.
// It implements pipeline.CaseSource.
type Source struct {
	client *fetch.Client
	url    string
}

// NewSource creates a Source reading from url.
func NewSource(client *fetch.Client, url string) *Source {
	return &Source{client: client, url: url}
}

// FetchCases downloads and parses the full feed.
func (s *Source) FetchCases(ctx context.Context) ([]domain.CaseReport, error) {
	body, err := s.client.Open(ctx, SourceName, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reports, err := Parse(body)
	if err != nil {
		return nil, &domain.SourceFetchError{Source: SourceName, URL: s.url, Err: err}
	}
	return reports, nil
}

// Parse reads the case CSV. Columns are located by header name. An empty
// deaths or fips field is accepted; any other malformed field fails the parse.
func Parse(r io.Reader) ([]domain.CaseReport, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []domain.CaseReport
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		report, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, report)
	}
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return cols, nil
}

func parseRecord(rec []string, cols map[string]int) (domain.CaseReport, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(rec[cols["date"]]))
	if err != nil {
		return domain.CaseReport{}, fmt.Errorf("parse date: %w", err)
	}
	cases, err := parseCount(rec[cols["cases"]])
	if err != nil {
		return domain.CaseReport{}, fmt.Errorf("parse cases: %w", err)
	}
	deaths, err := parseCount(rec[cols["deaths"]])
	if err != nil {
		return domain.CaseReport{}, fmt.Errorf("parse deaths: %w", err)
	}
	return domain.CaseReport{
		Date:   date,
		County: strings.TrimSpace(rec[cols["county"]]),
		State:  strings.TrimSpace(rec[cols["state"]]),
		FIPS:   strings.TrimSpace(rec[cols["fips"]]),
		Cases:  cases,
		Deaths: deaths,
	}, nil
}

// parseCount reads a cumulative count. Some feed revisions publish counts as
// floats ("12.0"); those are accepted when integral.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}
