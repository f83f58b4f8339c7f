// Package sqlite persists census population rows in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/census"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// Store reads and writes the census table.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) a writable database at dbPath and
// applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// OpenReadOnly opens an existing database without write access. A run uses
// this so the population snapshot cannot change underneath it.
func OpenReadOnly(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("census database %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceCensus swaps the table contents for rows in one transaction.
func (s *Store) ReplaceCensus(ctx context.Context, rows []census.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM census"); err != nil {
		return fmt.Errorf("failed to clear census: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO census (STNAME, CTYNAME, COUNTY_KEY, YEAR, YEAR_DESCR, AGEGRP, TOT_POP, REGION)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.StateName,
			r.CountyName,
			string(r.Key),
			r.Year,
			census.YearDescriptions[r.Year],
			r.AgeGroup,
			r.TotalPop,
			r.Region,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s, %s: %w", r.CountyName, r.StateName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit census: %w", err)
	}
	return nil
}

// Population returns total population per (county key, state) for one
// estimate year. Rows sharing a key, such as the New York City boroughs, are
// summed.
func (s *Store) Population(ctx context.Context, yearCode int) ([]domain.PopulationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT STNAME, COUNTY_KEY, GROUP_CONCAT(CTYNAME, '; '), SUM(TOT_POP), COALESCE(MAX(REGION), '')
		FROM census
		WHERE YEAR = ? AND AGEGRP = ?
		GROUP BY STNAME, COUNTY_KEY
		ORDER BY STNAME, COUNTY_KEY
	`, yearCode, census.TotalAgeGroup)
	if err != nil {
		return nil, s.readError(err)
	}
	defer rows.Close()

	var out []domain.PopulationRecord
	for rows.Next() {
		var rec domain.PopulationRecord
		var key string
		if err := rows.Scan(&rec.State, &key, &rec.CountyName, &rec.Population, &rec.Region); err != nil {
			return nil, s.readError(err)
		}
		rec.Key = domain.CountyKey(key)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readError(err)
	}
	if len(out) == 0 {
		return nil, s.readError(fmt.Errorf("no census rows for YEAR=%d", yearCode))
	}
	return out, nil
}

func (s *Store) readError(err error) error {
	return &domain.SourceFetchError{Source: census.SourceName, URL: s.path, Err: err}
}
