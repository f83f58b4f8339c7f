package domain

import "time"

// CountyKey is the canonical lowercase join key shared by all sources.
type CountyKey string

// SeriesID identifies one county series. Keys are only unique within a state.
type SeriesID struct {
	Key   CountyKey
	State string
}

// CaseReport is one row of the case feed as published: cumulative counts for
// a raw county name on a date.
type CaseReport struct {
	Date   time.Time
	County string
	State  string
	FIPS   string
	Cases  int64
	Deaths int64
}

// CountyDayRecord is a case report with its county key attached.
type CountyDayRecord struct {
	Key    CountyKey `json:"county_key"`
	County string    `json:"county"`
	State  string    `json:"state"`
	Date   time.Time `json:"date"`
	Cases  int64     `json:"cases"`
	Deaths int64     `json:"deaths"`
}

// ID returns the record's series identity.
func (r CountyDayRecord) ID() SeriesID {
	return SeriesID{Key: r.Key, State: r.State}
}

// DerivedMetricRow extends a keyed county record with increments and rolling
// statistics. Observations is the 1-based position of the row in its series.
type DerivedMetricRow struct {
	CountyDayRecord

	NewCases     int64 `json:"cases_new"`
	NewDeaths    int64 `json:"deaths_new"`
	Observations int   `json:"observations"`

	NewCasesDelta  Metric `json:"cases_new_delta"`
	NewDeathsDelta Metric `json:"deaths_new_delta"`

	NewCasesMA5  Metric `json:"cases_new_ma5"`
	NewDeathsMA5 Metric `json:"deaths_new_ma5"`

	NewCasesSum7  Metric `json:"cases_new_sum7"`
	NewCasesSum12 Metric `json:"cases_new_sum12"`
	NewCasesSum14 Metric `json:"cases_new_sum14"`

	NewCasesDeltaMA7  Metric `json:"cases_new_delta_ma7"`
	NewCasesDeltaMA14 Metric `json:"cases_new_delta_ma14"`
}

// CountySeries is the date-ordered derived history of one county key.
type CountySeries struct {
	ID      SeriesID
	Display string
	Rows    []DerivedMetricRow
}

// Latest returns the last row's date, or the zero time for an empty series.
func (s CountySeries) Latest() time.Time {
	if len(s.Rows) == 0 {
		return time.Time{}
	}
	return s.Rows[len(s.Rows)-1].Date
}

// PopulationRecord is a census population total for a county key.
type PopulationRecord struct {
	Key        CountyKey `json:"county_key"`
	State      string    `json:"state"`
	CountyName string    `json:"county_name,omitempty"`
	Population int64     `json:"population"`
	Region     string    `json:"region,omitempty"`
}

// PerCapitaRow is a derived row joined to its county's population.
type PerCapitaRow struct {
	DerivedMetricRow

	Label      string `json:"county_label"`
	Population int64  `json:"population"`

	CasesPer1k     Metric `json:"cases_per1k"`
	CasesPer10k    Metric `json:"cases_per10k"`
	NewCasesPer1k  Metric `json:"cases_new_per1k"`
	DeathsPer1k    Metric `json:"deaths_per1k"`
	NewDeathsPer1k Metric `json:"deaths_new_per1k"`

	NewCasesPer1kMA5   Metric `json:"cases_new_per1k_ma5"`
	NewDeathsPer1kMA5  Metric `json:"deaths_new_per1k_ma5"`
	NewCasesPer1kSum7  Metric `json:"cases_new_per1k_sum7"`
	NewCasesPer1kSum14 Metric `json:"cases_new_per1k_sum14"`
}

// PerCapitaSeries is a county series after the population join.
type PerCapitaSeries struct {
	ID         SeriesID       `json:"-"`
	Label      string         `json:"county_label"`
	Population int64          `json:"population"`
	Region     string         `json:"region,omitempty"`
	Rows       []PerCapitaRow `json:"rows"`
}

// BedFacility is one hospital from the facility feed. State is the two-letter
// postal abbreviation.
type BedFacility struct {
	Name   string
	Type   string
	Beds   int
	State  string
	County string
}

// BedCapacityRecord is the acute and critical-access bed total for a county key.
type BedCapacityRecord struct {
	Key         CountyKey `json:"county_key"`
	State       string    `json:"state"`
	StateAbbrev string    `json:"state_abbrev"`
	TotalBeds   int64     `json:"total_beds"`
	Facilities  int       `json:"facilities"`
}

// SnapshotRow is one county at the anchor date with weekly change and, when a
// bed match exists, capacity estimates.
type SnapshotRow struct {
	PerCapitaRow

	Region string `json:"region,omitempty"`

	LastWeekCases  Metric `json:"last_wk_cases"`
	PriorWeekCases Metric `json:"two_wks_ago_cases"`
	WeeklyDiff     Metric `json:"wkly_diff"`

	TotalBeds             Metric `json:"beds"`
	AvailableCovidBeds    Metric `json:"available_covid_beds"`
	EstimatedOccupiedBeds Metric `json:"estimated_occupied_beds"`
	FreeBedRatio          Metric `json:"free_bed_perc"`
}

// Snapshot is the cross-section handed to exporters.
type Snapshot struct {
	AnchorDate time.Time     `json:"anchor_date"`
	MaxDate    time.Time     `json:"max_date"`
	Rows       []SnapshotRow `json:"rows"`
}
