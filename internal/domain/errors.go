package domain

import "fmt"

// SourceFetchError reports a remote input that could not be fetched or parsed.
// It is fatal for the run.
type SourceFetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *SourceFetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// JoinMissError records a county series with no usable population match.
// Its rows are dropped from the per-capita output.
type JoinMissError struct {
	Key   CountyKey
	State string
	Rows  int
}

func (e JoinMissError) Error() string {
	return fmt.Sprintf("no population for %q, %s (%d rows dropped)", e.Key, e.State, e.Rows)
}

// UnmappedNameWarning records a raw name that matched no normalization rule in
// a source whose names are expected to carry a county qualifier.
type UnmappedNameWarning struct {
	Source Source
	Name   string
	State  string
}

func (e UnmappedNameWarning) Error() string {
	return fmt.Sprintf("%s name %q (%s) matched no rule, used as-is", e.Source, e.Name, e.State)
}

// InsufficientHistoryGap records a county whose anchor row lacks enough
// observations for the longest rolling window.
type InsufficientHistoryGap struct {
	Key          CountyKey
	State        string
	Observations int
	Required     int
}

func (e InsufficientHistoryGap) Error() string {
	return fmt.Sprintf("%q, %s has %d observations, %d required", e.Key, e.State, e.Observations, e.Required)
}
