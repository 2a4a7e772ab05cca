// Package store persists run state (§6.2): one row in "range" per sieve
// run plus the statistics evaluator's "range_stats" and "m_stats" rows,
// keyed by a deterministic hash of the configuration tuple. Grounded on
// the teacher's db.go: a small database/sql + go-sqlite3 wrapper with a
// create-table-if-not-exist migration and explicit PRAGMAs.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jannismilz/primegap/internal/sieveconfig"
)

// ConfigHash deterministically hashes the configuration tuple named in
// §6.2: (P, D, MStart, MInc, SL, MaxPrime, MinMerit).
func ConfigHash(cfg sieveconfig.Config) uint64 {
	var buf [7*8 + 8]byte
	binary.LittleEndian.PutUint64(buf[0:], cfg.P)
	binary.LittleEndian.PutUint64(buf[8:], cfg.D)
	binary.LittleEndian.PutUint64(buf[16:], cfg.MStart)
	binary.LittleEndian.PutUint64(buf[24:], cfg.MInc)
	binary.LittleEndian.PutUint64(buf[32:], cfg.SL)
	binary.LittleEndian.PutUint64(buf[40:], cfg.MaxPrime)
	binary.LittleEndian.PutUint64(buf[48:], mathFloatBits(cfg.MinMerit))
	return xxhash.Sum64(buf[:])
}

func mathFloatBits(f float64) uint64 {
	return uint64(int64(f * 1e9))
}

// Store wraps the sqlite-backed persisted state of a sieve/stats run.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and runs
// its migration, mirroring the teacher's
// createDBAndCreateTableIfNotExist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("store: set synchronous mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS range (
			config_hash INTEGER PRIMARY KEY,
			p INTEGER, d INTEGER, m_start INTEGER, m_inc INTEGER,
			sl INTEGER, max_prime INTEGER, min_merit REAL,
			rle INTEGER, method INTEGER,
			num_m INTEGER,
			time_started TEXT,
			time_finished TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS range_stats (
			config_hash INTEGER PRIMARY KEY,
			prob_extended REAL,
			prob_record REAL,
			FOREIGN KEY(config_hash) REFERENCES range(config_hash)
		)`,
		`CREATE TABLE IF NOT EXISTS m_stats (
			config_hash INTEGER,
			mi INTEGER,
			prob_record REAL,
			prob_missing_gap REAL,
			prob_merit REAL,
			PRIMARY KEY (config_hash, mi)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RangeRow is one "range" record (§6.2).
type RangeRow struct {
	Cfg          sieveconfig.Config
	NumM         int
	TimeStarted  time.Time
	TimeFinished time.Time
}

// SaveRange upserts a range row. On conflict, only the timing fields are
// updated (§6.2's conflict policy); all other columns are set once on
// first insert.
func (s *Store) SaveRange(row RangeRow) error {
	hash := ConfigHash(row.Cfg)
	_, err := s.db.Exec(`
		INSERT INTO range (config_hash, p, d, m_start, m_inc, sl, max_prime, min_merit, rle, method, num_m, time_started, time_finished)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(config_hash) DO UPDATE SET
			time_started = excluded.time_started,
			time_finished = excluded.time_finished
	`,
		hash, row.Cfg.P, row.Cfg.D, row.Cfg.MStart, row.Cfg.MInc, row.Cfg.SL, row.Cfg.MaxPrime, row.Cfg.MinMerit,
		boolToInt(row.Cfg.RLE), int(row.Cfg.Method), row.NumM,
		row.TimeStarted.UTC().Format(time.RFC3339), row.TimeFinished.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save range: %w", err)
	}
	return nil
}

// RangeStats is one "range_stats" record, populated by the statistics
// evaluator.
type RangeStats struct {
	Cfg           sieveconfig.Config
	ProbExtended  float64
	ProbRecord    float64
}

// SaveRangeStats upserts the evaluator's aggregate probabilities for a
// configuration.
func (s *Store) SaveRangeStats(rs RangeStats) error {
	hash := ConfigHash(rs.Cfg)
	_, err := s.db.Exec(`
		INSERT INTO range_stats (config_hash, prob_extended, prob_record)
		VALUES (?, ?, ?)
		ON CONFLICT(config_hash) DO UPDATE SET
			prob_extended = excluded.prob_extended,
			prob_record = excluded.prob_record
	`, hash, rs.ProbExtended, rs.ProbRecord)
	if err != nil {
		return fmt.Errorf("store: save range stats: %w", err)
	}
	return nil
}

// MStat is one "m_stats" record (§4.7), populated by the statistics
// evaluator per surviving m.
type MStat struct {
	Mi              uint64
	ProbRecord      float64
	ProbMissingGap  float64
	ProbMerit       float64
}

// SaveMStats bulk-upserts per-m statistics rows for a configuration,
// mirroring the teacher's batch insert style in db.go.
func (s *Store) SaveMStats(cfg sieveconfig.Config, rows []MStat) error {
	hash := ConfigHash(cfg)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save m_stats: begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO m_stats (config_hash, mi, prob_record, prob_missing_gap, prob_merit)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(config_hash, mi) DO UPDATE SET
			prob_record = excluded.prob_record,
			prob_missing_gap = excluded.prob_missing_gap,
			prob_merit = excluded.prob_merit
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: save m_stats: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(hash, row.Mi, row.ProbRecord, row.ProbMissingGap, row.ProbMerit); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: save m_stats: insert mi=%d: %w", row.Mi, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
