// Package hifld reads the hospital facility GeoJSON feed.
package hifld

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// SourceName labels this feed in errors, logs and metrics.
const SourceName = string(domain.SourceHospitals)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

// properties holds the facility attributes used for capacity. BEDS is
// published as a number; -999 marks an unknown count.
type properties struct {
	Name   string  `json:"NAME"`
	Type   string  `json:"TYPE"`
	Beds   float64 `json:"BEDS"`
	State  string  `json:"STATE"`
	County string  `json:"COUNTY"`
}

// Source fetches and parses the facility feed.
// It implements pipeline.BedSource.
type Source struct {
	client *fetch.Client
	url    string
}

// NewSource creates a Source reading from url.
func NewSource(client *fetch.Client, url string) *Source {
	return &Source{client: client, url: url}
}

// FetchFacilities downloads and parses every facility in the feed.
func (s *Source) FetchFacilities(ctx context.Context) ([]domain.BedFacility, error) {
	data, err := s.client.Get(ctx, SourceName, s.url)
	if err != nil {
		return nil, err
	}
	facilities, err := Parse(data)
	if err != nil {
		return nil, &domain.SourceFetchError{Source: SourceName, URL: s.url, Err: err}
	}
	return facilities, nil
}

// Parse decodes a FeatureCollection into facilities. Filtering by type and
// bed count happens in the domain layer.
func Parse(data []byte) ([]domain.BedFacility, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected geojson type %q", fc.Type)
	}

	out := make([]domain.BedFacility, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		out = append(out, domain.BedFacility{
			Name:   p.Name,
			Type:   p.Type,
			Beds:   int(p.Beds),
			State:  p.State,
			County: p.County,
		})
	}
	return out, nil
}
