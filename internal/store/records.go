package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// RecordGapTable is the external "records database" collaborator named
// in §4.7 and §6.3's records_db option: a sqlite table of conditional and
// constant record probabilities, keyed by wheel residue.
type RecordGapTable struct {
	db *sql.DB
}

// OpenRecordGapTable opens a read-only connection to the records
// database at path and verifies its schema.
func OpenRecordGapTable(path string) (*RecordGapTable, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("store: open records db %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS record_gaps (
		residue INTEGER, near INTEGER, prob_conditional REAL,
		PRIMARY KEY (residue, near)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: records db schema: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS record_gaps_extended (
		residue INTEGER PRIMARY KEY, prob_both_extended REAL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: records db schema: %w", err)
	}
	return &RecordGapTable{db: db}, nil
}

// Close closes the underlying database handle.
func (t *RecordGapTable) Close() error { return t.db.Close() }

// ConditionalRecordProb implements stats.RecordTable, falling back to 0
// when the records database has no entry for this (residue, near) pair.
func (t *RecordGapTable) ConditionalRecordProb(residue, near uint64) float64 {
	var prob float64
	row := t.db.QueryRow("SELECT prob_conditional FROM record_gaps WHERE residue = ? AND near = ?", residue, near)
	if err := row.Scan(&prob); err != nil {
		return 0
	}
	return prob
}

// BothExtendedRecordProb implements stats.RecordTable, falling back to 0
// when the records database has no entry for this residue.
func (t *RecordGapTable) BothExtendedRecordProb(residue uint64) float64 {
	var prob float64
	row := t.db.QueryRow("SELECT prob_both_extended FROM record_gaps_extended WHERE residue = ?", residue)
	if err := row.Scan(&prob); err != nil {
		return 0
	}
	return prob
}
