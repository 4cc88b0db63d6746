package census

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS population (
	tab_code           TEXT NOT NULL,
	tab_label          TEXT NOT NULL,
	cat01_code         TEXT NOT NULL,
	cat01_label        TEXT NOT NULL,
	cat02_code         TEXT NOT NULL,
	cat02_label        TEXT NOT NULL,
	area_code          TEXT NOT NULL,
	municipality       TEXT NOT NULL,
	time_code          TEXT NOT NULL,
	survey_year        TEXT NOT NULL,
	unit               TEXT NOT NULL,
	value              TEXT NOT NULL,
	annotation         TEXT NOT NULL,
	pref_code          TEXT NOT NULL,
	pref_name          TEXT NOT NULL,
	city_component     TEXT NOT NULL,
	ward_component     TEXT NOT NULL,
	special_ward_23    INTEGER NOT NULL,
	special_ward_5     INTEGER NOT NULL,
	standard_area_code TEXT,
	area_km2           TEXT,
	position           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_population_area ON population(area_code, survey_year);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const insertRecord = `
INSERT INTO population (
	tab_code, tab_label, cat01_code, cat01_label, cat02_code, cat02_label,
	area_code, municipality, time_code, survey_year, unit, value, annotation,
	pref_code, pref_name, city_component, ward_component,
	special_ward_23, special_ward_5, standard_area_code, area_km2, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Database stores the final census table in SQLite so it can be queried
// without re-running the pipeline.
type Database struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens, or creates, the result database at path.
func OpenDatabase(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory for '%s': %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema in '%s': %w", path, err)
	}
	return &Database{db: db, path: path}, nil
}

// OpenDatabaseIfExists opens the database at path only if the file exists.
func OpenDatabaseIfExists(path string) (db *Database, found bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	db, err = OpenDatabase(path)
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Save replaces the stored table with t.
func (d *Database) Save(t *Table) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM population"); err != nil {
		return fmt.Errorf("failed to clear population: %w", err)
	}

	stmt, err := tx.Prepare(insertRecord)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range t.Records {
		_, err := stmt.Exec(
			r.TabCode, r.TabLabel, r.Cat01Code, r.Cat01Label, r.Cat02Code, r.Cat02Label,
			r.AreaCode, r.Municipality, r.TimeCode, r.SurveyYear, r.Unit, r.Value, r.Annotation,
			r.PrefCode, r.PrefName, r.CityComponent, r.WardComponent,
			r.SpecialWard23, r.SpecialWard5, nullable(r.StandardAreaCode), nullable(r.Area), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	meta := map[string]string{
		"area_label": t.AreaLabel,
		"saved_at":   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("failed to store %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// DatabaseInfo summarizes the stored table.
type DatabaseInfo struct {
	Path           string
	Rows           int
	Municipalities int
	FirstYear      string
	LastYear       string
	WithArea       int
	SavedAt        time.Time
}

func (d *Database) Info() (*DatabaseInfo, error) {
	info := &DatabaseInfo{Path: d.path}

	err := d.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT area_code),
			COALESCE(MIN(survey_year), ''), COALESCE(MAX(survey_year), ''),
			COUNT(area_km2)
		FROM population`,
	).Scan(&info.Rows, &info.Municipalities, &info.FirstYear, &info.LastYear, &info.WithArea)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize population: %w", err)
	}

	var savedAt string
	err = d.db.QueryRow("SELECT value FROM metadata WHERE key = 'saved_at'").Scan(&savedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if savedAt != "" {
		info.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	}
	return info, nil
}

// PrefectureTotal is the population of one prefecture in one survey year,
// summed over all stored rows.
type PrefectureTotal struct {
	PrefCode   string
	PrefName   string
	SurveyYear string
	Population int64
}

// PrefectureTotals sums the numeric values per prefecture and survey year.
// Values that are not numbers ("-", "…") are ignored.
func (d *Database) PrefectureTotals() ([]PrefectureTotal, error) {
	rows, err := d.db.Query(`
		SELECT pref_code, pref_name, survey_year,
			SUM(CAST(REPLACE(value, ',', '') AS INTEGER))
		FROM population
		WHERE REPLACE(value, ',', '') GLOB '[0-9]*'
		GROUP BY pref_code, pref_name, survey_year
		ORDER BY pref_code, survey_year`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prefecture totals: %w", err)
	}
	defer rows.Close()

	var totals []PrefectureTotal
	for rows.Next() {
		var p PrefectureTotal
		if err := rows.Scan(&p.PrefCode, &p.PrefName, &p.SurveyYear, &p.Population); err != nil {
			return nil, err
		}
		totals = append(totals, p)
	}
	return totals, rows.Err()
}

// Records returns the stored rows of one area code, in output order.
func (d *Database) Records(areaCode string) ([]*Record, error) {
	rows, err := d.db.Query(`
		SELECT tab_code, tab_label, cat01_code, cat01_label, cat02_code, cat02_label,
			area_code, municipality, time_code, survey_year, unit, value, annotation,
			pref_code, pref_name, city_component, ward_component,
			special_ward_23, special_ward_5,
			COALESCE(standard_area_code, ''), COALESCE(area_km2, '')
		FROM population
		WHERE area_code = ?
		ORDER BY position`, strings.TrimSpace(areaCode))
	if err != nil {
		return nil, fmt.Errorf("failed to query records for '%s': %w", areaCode, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r := &Record{}
		err := rows.Scan(
			&r.TabCode, &r.TabLabel, &r.Cat01Code, &r.Cat01Label, &r.Cat02Code, &r.Cat02Label,
			&r.AreaCode, &r.Municipality, &r.TimeCode, &r.SurveyYear, &r.Unit, &r.Value, &r.Annotation,
			&r.PrefCode, &r.PrefName, &r.CityComponent, &r.WardComponent,
			&r.SpecialWard23, &r.SpecialWard5, &r.StandardAreaCode, &r.Area,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
