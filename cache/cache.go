/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Authors:
 *   Michael Woolnough <mw31@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package cache is the Cache Store of §4.2: a single embedded sqlite database
// file holding the raw test-file fact table, the bonepile workbook rows, and
// a small meta key-value table recording the timestamp interpretation mode.
package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" //nolint:revive
)

// TimestampMode is the current code-level interpretation of the filename
// timestamp suffix. Bumping this forces a cache wipe on next open (§4.2,
// §8 property 5) rather than letting old rows silently drift out of meaning.
const TimestampMode = "ca-wallclock-v1"

const (
	metaKeyTimestampMode = "timestamp_mode"
	batchSize            = 2000
)

// Store wraps the sqlite connection and the prepared statements the Scanner
// and Workbook Ingestor need. Open() and all exported methods are safe to
// call from a single writer at a time; see the Scanner/Ingestor's own locking
// (§5 scan lock) for how concurrent writers are avoided.
type Store struct {
	db *sql.DB

	insertRaw *sql.Stmt
}

// Open opens (creating if necessary) the sqlite file at path, ensures the
// schema exists, and reconciles the stored timestamp_mode against
// TimestampMode. Returns wiped=true if a mode mismatch caused raw_entries to
// be dropped, so the caller can also reset the scan-state sidecar (§4.2,
// §7 "schema drift").
func Open(path string) (store *Store, wiped bool, err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, false, fmt.Errorf("cache: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	s := &Store{db: db}

	if err := s.ensureSchema(); err != nil {
		db.Close()

		return nil, false, err
	}

	wiped, err = s.reconcileTimestampMode()
	if err != nil {
		db.Close()

		return nil, false, err
	}

	if s.insertRaw, err = db.Prepare(insertRawSQL); err != nil {
		db.Close()

		return nil, false, fmt.Errorf("cache: prepare insert: %w", err)
	}

	return s, wiped, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw connection for callers (e.g. Aggregator) that need ad
// hoc read queries. Never write through this handle; use the Store's own
// methods so writes stay serialized behind the scan lock.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("cache: schema: %w", err)
		}
	}

	return nil
}

var schemaStatements = []string{ //nolint:gochecknoglobals
	`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS raw_entries (
		utc_ms INTEGER NOT NULL,
		filename TEXT NOT NULL,
		folder_path TEXT NOT NULL,
		ca_ms INTEGER NOT NULL,
		ca_date TEXT NOT NULL,
		ca_hour TEXT NOT NULL,
		ca_week TEXT NOT NULL,
		ca_month TEXT NOT NULL,
		sn TEXT NOT NULL,
		status TEXT NOT NULL,
		station TEXT NOT NULL,
		part_number TEXT NOT NULL,
		is_bonepile INTEGER,
		pb_id TEXT,
		PRIMARY KEY (utc_ms, filename)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_ca_ms ON raw_entries (ca_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_sn_ca_ms ON raw_entries (sn, ca_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_ca_date ON raw_entries (ca_date)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_ca_week ON raw_entries (ca_week)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_ca_month ON raw_entries (ca_month)`,
	`CREATE TABLE IF NOT EXISTS bonepile_entries (
		sheet TEXT NOT NULL,
		excel_row INTEGER NOT NULL,
		sn TEXT NOT NULL,
		nvpn TEXT,
		status TEXT,
		pic TEXT,
		igs_status TEXT,
		nv_disposition TEXT,
		igs_action TEXT,
		nv_dispo_count INTEGER NOT NULL DEFAULT 0,
		igs_action_count INTEGER NOT NULL DEFAULT 0,
		updated_at_ca_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (sheet, excel_row)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bonepile_sn ON bonepile_entries (sn)`,
}

// reconcileTimestampMode implements §4.2's open-time mode check: if absent
// and raw_entries is empty, write the current mode; if absent but rows
// exist, or the stored mode differs, wipe raw_entries and report wiped=true.
func (s *Store) reconcileTimestampMode() (bool, error) {
	stored, ok, err := s.getMeta(metaKeyTimestampMode)
	if err != nil {
		return false, err
	}

	if ok && stored == TimestampMode {
		return false, nil
	}

	empty, err := s.rawEntriesEmpty()
	if err != nil {
		return false, err
	}

	if !ok && empty {
		return false, s.setMeta(metaKeyTimestampMode, TimestampMode)
	}

	if _, err := s.db.Exec(`DELETE FROM raw_entries`); err != nil {
		return false, fmt.Errorf("cache: wiping raw_entries: %w", err)
	}

	if err := s.setMeta(metaKeyTimestampMode, TimestampMode); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) rawEntriesEmpty() (bool, error) {
	var count int

	if err := s.db.QueryRow(`SELECT count(*) FROM raw_entries`).Scan(&count); err != nil {
		return false, fmt.Errorf("cache: counting raw_entries: %w", err)
	}

	return count == 0, nil
}

func (s *Store) getMeta(key string) (string, bool, error) {
	var value string

	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("cache: reading meta %q: %w", key, err)
	}

	return value, true, nil
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("cache: writing meta %q: %w", key, err)
	}

	return nil
}
