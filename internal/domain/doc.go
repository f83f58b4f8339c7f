// Package domain models US county-level COVID-19 case data and the derived
// metrics used to approximate hospital strain.
//
// # Data Sources
//
// Three independent feeds describe the same counties with different naming:
//
//	Case feed (NYT us-counties.csv):  "Kings", "St. Louis city", "New York City"
//	Census (cc-est alldata CSV):       "Kings County", "St. Louis city", "Orleans Parish"
//	Hospitals (HIFLD GeoJSON):         "KINGS", "ST. LOUIS", with a two-letter state
//
// # County Keys
//
// Every name is reduced to a [CountyKey] by [Normalizer]. The decision sequence:
//
//	1. lowercase and trim
//	2. "district of columbia" is its own key
//	3. strip "(borough)" and trailing " county" / " parish" qualifiers
//	4. New York state: new york, kings, queens, bronx, richmond → "new york city"
//	5. trailing " city" is stripped ("st. louis city" → "st. louis"),
//	   except for "new york city" itself
//	6. anything else passes through unchanged
//
// Independent cities therefore merge into the county that surrounds them, and
// the case feed's single New York City area matches the five census boroughs.
//
// # Derived Metrics
//
// Case counts arrive cumulative. Increments are taken per raw series, then
// summed per county key:
//
//	new[t]   = cum[t] - cum[t-1]     (cum[-1] = 0)
//	delta[t] = (new[t] - new[t-1]) / new[t-1]
//
// Rolling windows (5, 7, 12, 14 observations) require a full window. Values that
// cannot be computed are carried as a missing [Metric], never as NaN or zero.
//
// # Snapshot
//
// The reporting anchor is the latest observed date minus a three day lag so
// late reports can backfill. Week-over-week change compares the seven days
// before the anchor with the seven days before that.
//
// # Capacity
//
//	available = beds × 0.39        (share of beds assumed usable for COVID)
//	occupied  = sum12(new) × 0.20  (hospitalization rate, 12 day stay)
//	free      = (available - occupied) / available
package domain
