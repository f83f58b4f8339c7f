package config

import (
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/hashicorp/go-multierror"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// Default source locations.
const (
	DefaultCasesURL       = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-counties.csv"
	DefaultBedsURL        = "https://opendata.arcgis.com/datasets/6ac5e325468c4cb9b905f1728d6fbf0f_0.geojson"
	DefaultStateAbbrevURL = "https://www.50states.com/abbreviations.htm"
	DefaultRegionsURL     = "https://simple.wikipedia.org/wiki/List_of_regions_of_the_United_States"
	DefaultCensusURL      = "https://www2.census.gov/programs-surveys/popest/datasets/2010-2017/counties/asrh/cc-est2017-alldata.csv"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	CasesURL       string
	BedsURL        string
	StateAbbrevURL string
	RegionsURL     string
	CensusURL      string

	CensusDBPath   string
	CensusYearCode int
	ReferenceFile  string
	OutputDir      string

	SnapshotPopulationFloor int64
	SeriesPopulationFloor   int64
	ReportingLagDays        int
	NegativePolicy          domain.NegativePolicy

	FetchTimeout    time.Duration
	FetchRetries    int
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// KafkaBrokers is empty when the snapshot sink is disabled.
	KafkaBrokers   []string
	KafkaSinkTopic string

	PushgatewayURL string
}

// KafkaEnabled reports whether snapshot rows are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where
// unset. Every invalid variable is reported in the returned error.
func Load() (*Config, error) {
	var errs *multierror.Error

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	errs = multierror.Append(errs, err)

	policy, err := domain.ParseNegativePolicy(sharedcfg.EnvOrDefault("NEGATIVE_COUNT_POLICY", string(domain.NegativeRetain)))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid NEGATIVE_COUNT_POLICY: %w", err))
	}

	cfg := &Config{
		CasesURL:       sharedcfg.EnvOrDefault("CASES_URL", DefaultCasesURL),
		BedsURL:        sharedcfg.EnvOrDefault("BEDS_URL", DefaultBedsURL),
		StateAbbrevURL: sharedcfg.EnvOrDefault("STATE_ABBREV_URL", DefaultStateAbbrevURL),
		RegionsURL:     sharedcfg.EnvOrDefault("REGIONS_URL", DefaultRegionsURL),
		CensusURL:      sharedcfg.EnvOrDefault("CENSUS_URL", DefaultCensusURL),

		CensusDBPath:   sharedcfg.EnvOrDefault("CENSUS_DB_PATH", "US_county_census.db"),
		CensusYearCode: parseInt(&errs, "CENSUS_YEAR_CODE", 10, 1),
		ReferenceFile:  sharedcfg.EnvOrDefault("REFERENCE_FILE", ""),
		OutputDir:      sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		SnapshotPopulationFloor: int64(parseInt(&errs, "SNAPSHOT_POPULATION_FLOOR", domain.DefaultPopulationFloor, 0)),
		SeriesPopulationFloor:   int64(parseInt(&errs, "SERIES_POPULATION_FLOOR", 1_000_000, 0)),
		ReportingLagDays:        parseInt(&errs, "REPORTING_LAG_DAYS", domain.DefaultReportingLagDays, 0),
		NegativePolicy:          policy,

		FetchTimeout:    parseDuration(&errs, "FETCH_TIMEOUT", "2m"),
		FetchRetries:    parseInt(&errs, "FETCH_RETRIES", 0, 0),
		ShutdownTimeout: shutdownTimeout,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "county-strain-snapshot"),

		PushgatewayURL: sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", ""),
	}

	if cfg.CensusDBPath == "" {
		errs = multierror.Append(errs, fmt.Errorf("CENSUS_DB_PATH is required"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseInt reads an integer no smaller than minimum, recording a
// validation error and returning the fallback when the value is unusable.
func parseInt(errs **multierror.Error, key string, fallback, minimum int) int {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		*errs = multierror.Append(*errs, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum))
		return fallback
	}
	return n
}

func parseDuration(errs **multierror.Error, key, fallback string) time.Duration {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		*errs = multierror.Append(*errs, fmt.Errorf("invalid %s: must be a positive duration", key))
		return 0
	}
	return d
}
