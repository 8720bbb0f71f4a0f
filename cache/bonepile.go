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
	"fmt"
)

// BonepileEntry mirrors one row of bonepile_entries (§3).
type BonepileEntry struct {
	Sheet          string
	ExcelRow       int
	SN             string
	NVPN           string
	Status         string
	PIC            string
	IGSStatus      string
	NVDisposition  string
	IGSAction      string
	NVDispoCount   int
	IGSActionCount int
	UpdatedAtCaMs  int64
}

// ReplaceBonepileSheet atomically deletes all existing rows for sheet and
// inserts rows in their place (§4.4 step 5: "delete all existing rows for
// that sheet, then iterate data rows").
func (s *Store) ReplaceBonepileSheet(sheet string, rows []BonepileEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM bonepile_entries WHERE sheet = ?`, sheet); err != nil {
		return fmt.Errorf("cache: clearing sheet %q: %w", sheet, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO bonepile_entries
		(sheet, excel_row, sn, nvpn, status, pic, igs_status, nv_disposition, igs_action,
		 nv_dispo_count, igs_action_count, updated_at_ca_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: preparing bonepile insert: %w", err)
	}

	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(sheet, r.ExcelRow, r.SN, r.NVPN, r.Status, r.PIC, r.IGSStatus,
			r.NVDisposition, r.IGSAction, r.NVDispoCount, r.IGSActionCount, r.UpdatedAtCaMs); err != nil {
			return fmt.Errorf("cache: inserting bonepile row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit: %w", err)
	}

	return nil
}

// AllBonepileEntries returns every row across every sheet, for the NV-
// Disposition Aggregator (§4.5.7) to fold over.
func (s *Store) AllBonepileEntries() ([]BonepileEntry, error) {
	rows, err := s.db.Query(`SELECT sheet, excel_row, sn, nvpn, status, pic, igs_status,
		nv_disposition, igs_action, nv_dispo_count, igs_action_count, updated_at_ca_ms
		FROM bonepile_entries`)
	if err != nil {
		return nil, fmt.Errorf("cache: querying bonepile_entries: %w", err)
	}

	defer rows.Close()

	var entries []BonepileEntry

	for rows.Next() {
		var e BonepileEntry

		if err := rows.Scan(&e.Sheet, &e.ExcelRow, &e.SN, &e.NVPN, &e.Status, &e.PIC, &e.IGSStatus,
			&e.NVDisposition, &e.IGSAction, &e.NVDispoCount, &e.IGSActionCount, &e.UpdatedAtCaMs); err != nil {
			return nil, fmt.Errorf("cache: scanning bonepile row: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// BonepileRowCount returns the number of rows currently stored for sheet.
func (s *Store) BonepileRowCount(sheet string) (int, error) {
	var count int

	err := s.db.QueryRow(`SELECT count(*) FROM bonepile_entries WHERE sheet = ?`, sheet).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cache: counting sheet %q: %w", sheet, err)
	}

	return count, nil
}
