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

package cache

import (
	"database/sql"
	"fmt"

	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

// RawEntry mirrors one row of raw_entries (§3).
type RawEntry struct {
	UTCMs      int64
	CaMs       int64
	CaDate     string
	CaHour     string
	CaWeek     string
	CaMonth    string
	Filename   string
	FolderPath string
	SN         string
	Status     byte
	Station    string
	PartNumber string
	IsBonepile sql.NullBool
	PBID       string
}

// NewRawEntry derives the California bucket fields from utcMs under the
// current TimestampMode and fills in the rest from its arguments.
func NewRawEntry(utcMs int64, filename, folderPath, sn string, status byte,
	station, partNumber string, isBonepile *bool, pbID string) RawEntry {
	e := RawEntry{
		UTCMs:      utcMs,
		CaMs:       utcMs,
		CaDate:     caltw.CaDate(utcMs),
		CaHour:     caltw.CaHour(utcMs),
		CaWeek:     caltw.CaWeek(utcMs),
		CaMonth:    caltw.CaMonth(utcMs),
		Filename:   filename,
		FolderPath: folderPath,
		SN:         sn,
		Status:     status,
		Station:    station,
		PartNumber: partNumber,
		PBID:       pbID,
	}

	if isBonepile != nil {
		e.IsBonepile = sql.NullBool{Bool: *isBonepile, Valid: true}
	}

	return e
}

const insertRawSQL = `INSERT OR IGNORE INTO raw_entries
	(utc_ms, filename, folder_path, ca_ms, ca_date, ca_hour, ca_week, ca_month,
	 sn, status, station, part_number, is_bonepile, pb_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertRawEntries inserts the given rows in batches of ~2000 inside their
// own transactions, using insert-or-ignore on the (utc_ms, filename) primary
// key so repeated scans of the same window are idempotent (§4.2, §8
// property 1). Returns the number of rows actually inserted (net new).
func (s *Store) InsertRawEntries(entries []RawEntry) (int, error) {
	inserted := 0

	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))

		n, err := s.insertRawBatch(entries[start:end])
		if err != nil {
			return inserted, err
		}

		inserted += n
	}

	return inserted, nil
}

func (s *Store) insertRawBatch(batch []RawEntry) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("cache: begin tx: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck

	stmt := tx.Stmt(s.insertRaw)

	inserted := 0

	for _, e := range batch {
		var isBonepile any
		if e.IsBonepile.Valid {
			if e.IsBonepile.Bool {
				isBonepile = 1
			} else {
				isBonepile = 0
			}
		}

		res, err := stmt.Exec(e.UTCMs, e.Filename, e.FolderPath, e.CaMs, e.CaDate, e.CaHour, e.CaWeek, e.CaMonth,
			e.SN, string(e.Status), e.Station, e.PartNumber, isBonepile, nullableString(e.PBID))
		if err != nil {
			return 0, fmt.Errorf("cache: insert raw entry: %w", err)
		}

		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cache: commit: %w", err)
	}

	return inserted, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// DeleteRawRange deletes all raw_entries with caMs in [fromMs, toMs) (§4.6
// refresh window, §4.6 retention cleanup).
func (s *Store) DeleteRawRange(fromMs, toMs int64) error {
	_, err := s.db.Exec(`DELETE FROM raw_entries WHERE ca_ms >= ? AND ca_ms < ?`, fromMs, toMs)
	if err != nil {
		return fmt.Errorf("cache: deleting raw_entries range: %w", err)
	}

	return nil
}

// MinMaxCaMs returns the current min/max ca_ms across raw_entries. ok is
// false if the table is empty.
func (s *Store) MinMaxCaMs() (minMs, maxMs int64, ok bool, err error) {
	var nMin, nMax sql.NullInt64

	err = s.db.QueryRow(`SELECT min(ca_ms), max(ca_ms) FROM raw_entries`).Scan(&nMin, &nMax)
	if err != nil {
		return 0, 0, false, fmt.Errorf("cache: reading min/max ca_ms: %w", err)
	}

	if !nMin.Valid {
		return 0, 0, false, nil
	}

	return nMin.Int64, nMax.Int64, true, nil
}

// RawEntriesInWindow returns every row with ca_ms in [startMs, endMs],
// ordered by ca_ms ascending, for the Aggregator to fold over in memory.
func (s *Store) RawEntriesInWindow(startMs, endMs int64) ([]RawEntry, error) {
	rows, err := s.db.Query(`SELECT utc_ms, filename, folder_path, ca_ms, ca_date, ca_hour, ca_week, ca_month,
		sn, status, station, part_number, is_bonepile, pb_id
		FROM raw_entries WHERE ca_ms >= ? AND ca_ms <= ? ORDER BY ca_ms ASC`, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("cache: querying window: %w", err)
	}

	defer rows.Close()

	var entries []RawEntry

	for rows.Next() {
		var (
			e       RawEntry
			status  string
			pbID    sql.NullString
			isBone  sql.NullInt64
		)

		if err := rows.Scan(&e.UTCMs, &e.Filename, &e.FolderPath, &e.CaMs, &e.CaDate, &e.CaHour, &e.CaWeek, &e.CaMonth,
			&e.SN, &status, &e.Station, &e.PartNumber, &isBone, &pbID); err != nil {
			return nil, fmt.Errorf("cache: scanning row: %w", err)
		}

		if len(status) > 0 {
			e.Status = status[0]
		}

		e.PBID = pbID.String

		if isBone.Valid {
			e.IsBonepile = sql.NullBool{Bool: isBone.Int64 != 0, Valid: true}
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
