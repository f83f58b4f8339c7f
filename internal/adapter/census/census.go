// Package census reads the Census Bureau county population estimates
// (cc-est alldata layout, ISO-8859-1 encoded).
package census

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// SourceName labels this feed in errors, logs and metrics.
const SourceName = string(domain.SourceCensus)

// TotalAgeGroup is the AGEGRP code for all ages combined.
const TotalAgeGroup = 0

// YearDescriptions names the YEAR codes of the 2010-2017 estimates file.
var YearDescriptions = map[int]string{
	1:  "4/1/2010 census",
	2:  "4/1/2010 est. base",
	3:  "7/1/2010 est.",
	4:  "7/1/2011 est.",
	5:  "7/1/2012 est.",
	6:  "7/1/2013 est.",
	7:  "7/1/2014 est.",
	8:  "7/1/2015 est.",
	9:  "7/1/2016 est.",
	10: "7/1/17 est.",
}

// Row is one county total for one estimate year, with its join key attached.
type Row struct {
	StateName  string
	CountyName string
	Key        domain.CountyKey
	Year       int
	AgeGroup   int
	TotalPop   int64
	Region     string
}

var requiredColumns = []string{"STNAME", "CTYNAME", "YEAR", "AGEGRP", "TOT_POP"}

// Source fetches and parses the estimates file.
type Source struct {
	client     *fetch.Client
	url        string
	normalizer domain.Normalizer
}

// NewSource creates a Source reading from url. Unmapped county names are
// reported through normalizer.
func NewSource(client *fetch.Client, url string, normalizer domain.Normalizer) *Source {
	return &Source{client: client, url: url, normalizer: normalizer}
}

// FetchRows downloads the file and returns the all-ages rows.
func (s *Source) FetchRows(ctx context.Context) ([]Row, error) {
	body, err := s.client.Open(ctx, SourceName, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := Parse(body, s.normalizer)
	if err != nil {
		return nil, &domain.SourceFetchError{Source: SourceName, URL: s.url, Err: err}
	}
	return rows, nil
}

// Parse decodes ISO-8859-1 CSV and keeps rows with AGEGRP 0. County names are
// normalized as census names.
func Parse(r io.Reader, n domain.Normalizer) ([]Row, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		ageGroup, err := strconv.Atoi(strings.TrimSpace(rec[cols["AGEGRP"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse AGEGRP: %w", line, err)
		}
		if ageGroup != TotalAgeGroup {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[cols["YEAR"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse YEAR: %w", line, err)
		}
		pop, err := strconv.ParseInt(strings.TrimSpace(rec[cols["TOT_POP"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse TOT_POP: %w", line, err)
		}

		state := strings.TrimSpace(rec[cols["STNAME"]])
		county := strings.TrimSpace(rec[cols["CTYNAME"]])
		out = append(out, Row{
			StateName:  state,
			CountyName: county,
			Key:        n.Key(domain.SourceCensus, county, state),
			Year:       year,
			AgeGroup:   ageGroup,
			TotalPop:   pop,
		})
	}
}

// AttachRegions fills Row.Region from the reference division table. Rows in
// states without a division keep an empty region.
func AttachRegions(rows []Row, ref domain.Reference) {
	for i := range rows {
		if region, ok := ref.Region(rows[i].StateName); ok {
			rows[i].Region = region
		}
	}
}
