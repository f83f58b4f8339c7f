package sqlite

// Schema defines the census population table. Column names follow the Census
// Bureau file layout.
const Schema = `
CREATE TABLE IF NOT EXISTS census (
	STNAME     TEXT    NOT NULL,
	CTYNAME    TEXT    NOT NULL,
	COUNTY_KEY TEXT    NOT NULL,
	YEAR       INTEGER NOT NULL,
	YEAR_DESCR TEXT,
	AGEGRP     INTEGER NOT NULL,
	TOT_POP    INTEGER NOT NULL,
	REGION     TEXT
);

CREATE INDEX IF NOT EXISTS idx_census_year_agegrp ON census(YEAR, AGEGRP);
CREATE INDEX IF NOT EXISTS idx_census_key ON census(STNAME, COUNTY_KEY);
`
