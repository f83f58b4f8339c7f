package nyt

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

const sampleCSV = `date,county,state,fips,cases,deaths
2020-03-01,New York City,New York,,1,0
2020-03-02,St. Louis city,Missouri,29510,3,
2020-03-02,Cook,Illinois,17031,12.0,1
`

func TestParse(t *testing.T) {
	reports, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, domain.CaseReport{
		Date:   time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		County: "New York City",
		State:  "New York",
		Cases:  1,
	}, reports[0])
	assert.Equal(t, "29510", reports[1].FIPS)
	assert.Equal(t, int64(0), reports[1].Deaths)
	assert.Equal(t, int64(12), reports[2].Cases)
}

func TestParse_ColumnOrderFromHeader(t *testing.T) {
	reports, err := Parse(strings.NewReader("state,county,date,deaths,cases,fips\nTexas,Harris,2020-04-01,2,40,48201\n"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Harris", reports[0].County)
	assert.Equal(t, int64(40), reports[0].Cases)
	assert.Equal(t, int64(2), reports[0].Deaths)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "read header"},
		{"missing column", "date,county,state,cases\n", `missing column "fips"`},
		{"bad date", "date,county,state,fips,cases,deaths\n03/01/2020,Cook,Illinois,,1,0\n", "line 2: parse date"},
		{"bad count", "date,county,state,fips,cases,deaths\n2020-03-01,Cook,Illinois,,1.5,0\n", "parse cases"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSource_FetchCases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewSource(fetch.NewClient(5*time.Second, 0, slog.Default()), srv.URL)
	reports, err := src.FetchCases(context.Background())

	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestSource_FetchCasesParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	src := NewSource(fetch.NewClient(5*time.Second, 0, slog.Default()), srv.URL)
	_, err := src.FetchCases(context.Background())

	var fetchErr *domain.SourceFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, SourceName, fetchErr.Source)
}
