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

package bonepile

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// workOrderSheet and its fixed SN/WO columns mirror the layout the work-log
// spreadsheet has always used: column B is SN, column C is the work order.
const (
	workOrderSheet = "Log"
	woSNColumn     = 2
	woWOColumn     = 3
	woHeaderRows   = 1
)

// WorkOrderIndex is a serial -> work-order lookup built from a second
// workbook, separate from the bonepile workbook. It's a supplemented feature: absent
// entirely, every lookup just misses and callers fall back to an empty
// string.
type WorkOrderIndex struct {
	mu  sync.RWMutex
	byS map[string]string
}

// NewWorkOrderIndex returns an empty index; call Load to populate it.
func NewWorkOrderIndex() *WorkOrderIndex {
	return &WorkOrderIndex{byS: map[string]string{}}
}

// Load replaces the index's contents from the work-log workbook at path. A
// missing file is not an error: the index is simply left/reset empty, since
// this enrichment is optional.
func (w *WorkOrderIndex) Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		w.mu.Lock()
		w.byS = map[string]string{}
		w.mu.Unlock()

		return nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("bonepile: opening work order log %s: %w", path, err)
	}

	defer f.Close()

	rows, err := f.GetRows(workOrderSheet)
	if err != nil {
		return fmt.Errorf("bonepile: reading sheet %q: %w", workOrderSheet, err)
	}

	byS := map[string]string{}

	for i := woHeaderRows; i < len(rows); i++ {
		row := rows[i]

		sn, ok := normalizeSN(cellAt(row, woSNColumn))
		if !ok {
			continue
		}

		wo := cellAt(row, woWOColumn)
		if wo == "" {
			continue
		}

		byS[sn] = wo
	}

	w.mu.Lock()
	w.byS = byS
	w.mu.Unlock()

	return nil
}

// Lookup returns the work order for sn, or "" if unknown.
func (w *WorkOrderIndex) Lookup(sn string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.byS[sn]
}
