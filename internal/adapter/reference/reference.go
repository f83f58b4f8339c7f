// Package reference loads the state abbreviation and census division tables,
// either from their public HTML pages or from a local YAML cache.
package reference

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/fetch"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// SourceName labels the reference documents in errors, logs and metrics.
const SourceName = "reference"

// cacheFile is the on-disk YAML layout.
type cacheFile struct {
	StateAbbreviations map[string]string   `yaml:"state_abbreviations"`
	Divisions          map[string][]string `yaml:"divisions"`
}

// Loader resolves the reference tables for a run.
// It implements pipeline.ReferenceSource.
type Loader struct {
	client     *fetch.Client
	abbrevURL  string
	regionsURL string
	file       string
}

// NewLoader creates a Loader. When file is non-empty the YAML cache is used
// and nothing is fetched.
func NewLoader(client *fetch.Client, abbrevURL, regionsURL, file string) *Loader {
	return &Loader{client: client, abbrevURL: abbrevURL, regionsURL: regionsURL, file: file}
}

// LoadReference returns the reference tables from the cache file or the web.
func (l *Loader) LoadReference(ctx context.Context) (domain.Reference, error) {
	if l.file != "" {
		return LoadFile(l.file)
	}
	return l.Fetch(ctx)
}

// Fetch downloads and parses both reference pages.
func (l *Loader) Fetch(ctx context.Context) (domain.Reference, error) {
	abbrevPage, err := l.client.Get(ctx, SourceName, l.abbrevURL)
	if err != nil {
		return domain.Reference{}, err
	}
	names, err := ParseStateAbbreviations(bytes.NewReader(abbrevPage))
	if err != nil {
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: l.abbrevURL, Err: err}
	}

	regionsPage, err := l.client.Get(ctx, SourceName, l.regionsURL)
	if err != nil {
		return domain.Reference{}, err
	}
	divisions, err := ParseRegions(bytes.NewReader(regionsPage))
	if err != nil {
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: l.regionsURL, Err: err}
	}

	return l.build(names, divisions)
}

func (l *Loader) build(names map[string]string, divisions map[string][]string) (domain.Reference, error) {
	ref, err := domain.NewReference(names, divisions)
	if err != nil {
		url := l.regionsURL
		if len(names) == 0 {
			url = l.abbrevURL
		}
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: url, Err: err}
	}
	return ref, nil
}

// LoadFile reads a YAML cache written by WriteFile.
func LoadFile(path string) (domain.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: path, Err: err}
	}
	var cf cacheFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: path, Err: fmt.Errorf("decode yaml: %w", err)}
	}
	ref, err := domain.NewReference(cf.StateAbbreviations, cf.Divisions)
	if err != nil {
		return domain.Reference{}, &domain.SourceFetchError{Source: SourceName, URL: path, Err: err}
	}
	return ref, nil
}

// WriteFile stores ref as YAML at path.
func WriteFile(path string, ref domain.Reference) error {
	data, err := yaml.Marshal(cacheFile{
		StateAbbreviations: ref.StateNames(),
		Divisions:          ref.Divisions(),
	})
	if err != nil {
		return fmt.Errorf("encode reference: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write reference %s: %w", path, err)
	}
	return nil
}
