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

// Package bonepile is the Workbook Ingestor of §4.4: it reads the uploaded
// spreadsheet, auto-detects each allowed sheet's header row, applies a
// per-sheet column mapping, and replaces that sheet's rows in the Cache
// Store. It also builds the supplemented Work-Order index from a second
// workbook.
package bonepile

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

var errMissingFields = errors.New("bonepile: sheet missing required fields")

const maxConsecutiveBlankSNs = 200

// Ingestor reads an uploaded workbook into Cache, tracking per-sheet parse
// status and mapping in State.
type Ingestor struct {
	Cache *cache.Store
	State *scanstate.Store
}

// New builds an Ingestor writing into c and st.
func New(c *cache.Store, st *scanstate.Store) *Ingestor {
	return &Ingestor{Cache: c, State: st}
}

// SheetResult is what ParseSheet / ParseAll report per sheet.
type SheetResult struct {
	Sheet    string `json:"sheet"`
	Skipped  bool   `json:"skipped"`
	RowCount int    `json:"row_count"`
	Err      error  `json:"-"`
}

// ErrMsg renders Err for JSON responses; empty when Err is nil.
func (r SheetResult) ErrMsg() string {
	if r.Err == nil {
		return ""
	}

	return r.Err.Error()
}

// MarshalJSON reports ErrMsg under "error" alongside the plain fields,
// since the error interface itself doesn't marshal usefully.
func (r SheetResult) MarshalJSON() ([]byte, error) {
	type alias SheetResult

	return json.Marshal(struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r), Error: r.ErrMsg()})
}

// ParseAll parses every allowed sheet present in the workbook at path,
// skipping any sheet whose content hash is unchanged since its last parse
// (§4.4: "triggered automatically on workbook upload, all allowed sheets").
func (ing *Ingestor) ParseAll(path string) ([]SheetResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("bonepile: opening %s: %w", path, err)
	}

	defer f.Close()

	present := f.GetSheetList()

	var results []SheetResult

	for _, sheet := range AllowedSheets {
		if !slices.Contains(present, sheet) {
			continue
		}

		results = append(results, ing.parseSheet(f, sheet))
	}

	return results, nil
}

// ParseSheet re-parses a single named sheet (§4.4: "triggered ... manually
// for a named sheet when mapping changes"), bypassing the content-hash skip
// so a mapping change always takes effect.
func (ing *Ingestor) ParseSheet(path, sheet string) (SheetResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return SheetResult{}, fmt.Errorf("bonepile: opening %s: %w", path, err)
	}

	defer f.Close()

	return ing.parseSheetForce(f, sheet), nil
}

func (ing *Ingestor) parseSheet(f *excelize.File, sheet string) SheetResult {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ing.recordError(sheet, fmt.Errorf("bonepile: reading sheet %q: %w", sheet, err))
	}

	hash := contentHash(rows)

	st, err := ing.State.Load()
	if err != nil {
		return ing.recordError(sheet, err)
	}

	if prior, ok := st.SheetStatuses[sheet]; ok && prior.ContentHash == hash {
		ing.touchSkipped(sheet)

		return SheetResult{Sheet: sheet, Skipped: true, RowCount: prior.RowCount}
	}

	return ing.ingestRows(sheet, rows, hash)
}

// parseSheetForce re-parses unconditionally, still recording the new hash
// so a later automatic pass can skip again.
func (ing *Ingestor) parseSheetForce(f *excelize.File, sheet string) SheetResult {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ing.recordError(sheet, fmt.Errorf("bonepile: reading sheet %q: %w", sheet, err))
	}

	return ing.ingestRows(sheet, rows, contentHash(rows))
}

func (ing *Ingestor) ingestRows(sheet string, rows [][]string, hash string) SheetResult {
	st, err := ing.State.Load()
	if err != nil {
		return ing.recordError(sheet, err)
	}

	mapping := st.SheetMappings[sheet]

	headerRowIdx := mapping.HeaderRow - 1
	if mapping.HeaderRow == 0 {
		idx, ok := findHeaderRow(rows)
		if !ok {
			return ing.recordError(sheet, fmt.Errorf("bonepile: sheet %q: no SN header found", sheet))
		}

		headerRowIdx = idx
	}

	if headerRowIdx < 0 || headerRowIdx >= len(rows) {
		return ing.recordError(sheet, fmt.Errorf("bonepile: sheet %q: header row out of range", sheet))
	}

	cols, missing := resolveColumns(rows[headerRowIdx], mapping)
	if len(missing) > 0 {
		sample := rows[headerRowIdx]
		if len(sample) > 10 {
			sample = sample[:10]
		}

		return ing.recordError(sheet, missingFieldsError(missing, sample))
	}

	entries, err := buildEntries(sheet, rows, headerRowIdx, cols)
	if err != nil {
		return ing.recordError(sheet, err)
	}

	if err := ing.Cache.ReplaceBonepileSheet(sheet, entries); err != nil {
		return ing.recordError(sheet, err)
	}

	ing.recordOK(sheet, len(entries), hash)

	return SheetResult{Sheet: sheet, RowCount: len(entries)}
}

func buildEntries(sheet string, rows [][]string, headerRowIdx int, cols resolvedColumns) ([]cache.BonepileEntry, error) {
	nowMs := caltw.Now().UnixMilli()

	var (
		entries        []cache.BonepileEntry
		consecutiveNil int
	)

	for i := headerRowIdx + 1; i < len(rows); i++ {
		row := rows[i]

		sn, ok := normalizeSN(cellAt(row, cols[fieldSN]))
		if !ok {
			consecutiveNil++
			if consecutiveNil >= maxConsecutiveBlankSNs {
				break
			}

			continue
		}

		consecutiveNil = 0

		nvDisp := cellAt(row, cols[fieldNVDisposition])
		igsAction := cellAt(row, cols[fieldIGSAction])

		entries = append(entries, cache.BonepileEntry{
			Sheet:          sheet,
			ExcelRow:       i + 1,
			SN:             sn,
			NVPN:           cellAt(row, cols[fieldNVPN]),
			Status:         cellAt(row, cols[fieldStatus]),
			PIC:            cellAt(row, cols[fieldPIC]),
			IGSStatus:      cellAt(row, cols[fieldIGSStatus]),
			NVDisposition:  nvDisp,
			IGSAction:      igsAction,
			NVDispoCount:   countDispositionSegments(nvDisp),
			IGSActionCount: countDispositionSegments(igsAction),
			UpdatedAtCaMs:  nowMs,
		})
	}

	return entries, nil
}

func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}

	return row[col-1]
}

func (ing *Ingestor) recordOK(sheet string, rowCount int, hash string) {
	_, _ = ing.State.Update(func(st *scanstate.State) {
		if st.SheetStatuses == nil {
			st.SheetStatuses = map[string]scanstate.SheetStatus{}
		}

		st.SheetStatuses[sheet] = scanstate.SheetStatus{
			OK:          true,
			RowCount:    rowCount,
			ContentHash: hash,
			LastRunMs:   caltw.Now().UnixMilli(),
		}
	})
}

func (ing *Ingestor) touchSkipped(sheet string) {
	_, _ = ing.State.Update(func(st *scanstate.State) {
		if st.SheetStatuses == nil {
			return
		}

		status := st.SheetStatuses[sheet]
		status.LastRunMs = caltw.Now().UnixMilli()
		st.SheetStatuses[sheet] = status
	})
}

func (ing *Ingestor) recordError(sheet string, cause error) SheetResult {
	_, _ = ing.State.Update(func(st *scanstate.State) {
		if st.SheetStatuses == nil {
			st.SheetStatuses = map[string]scanstate.SheetStatus{}
		}

		st.SheetStatuses[sheet] = scanstate.SheetStatus{
			OK:        false,
			Error:     cause.Error(),
			LastRunMs: caltw.Now().UnixMilli(),
		}
	})

	return SheetResult{Sheet: sheet, Err: cause}
}
