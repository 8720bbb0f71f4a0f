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
	"strings"

	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

// AllowedSheets is the fixed set of sheets the Ingestor parses; anything
// else in the workbook is ignored.
var AllowedSheets = [...]string{"VR-TS1", "TS2-SKU002", "TS2-SKU010"} //nolint:gochecknoglobals

// canonical field names, in resolution order.
const (
	fieldSN            = "sn"
	fieldNVDisposition = "nv_disposition"
	fieldStatus        = "status"
	fieldPIC           = "pic"
	fieldIGSAction     = "igs_action"
	fieldIGSStatus     = "igs_status"
	fieldNVPN          = "nvpn"
)

var requiredFields = [...]string{ //nolint:gochecknoglobals
	fieldSN, fieldNVDisposition, fieldStatus, fieldPIC, fieldIGSAction, fieldIGSStatus,
}

// synonyms maps a canonical field to the header texts (already upper-cased
// and trimmed) that identify it. Auto-detection matches only these texts;
// each list includes the field's own canonical header.
var synonyms = map[string][]string{ //nolint:gochecknoglobals
	fieldSN:            {"SN", "SERIAL", "SERIAL NUMBER"},
	fieldNVDisposition: {"NV DISPOSITION", "NV DISPO", "DISPOSITION"},
	fieldStatus:        {"STATUS"},
	fieldPIC:           {"PIC"},
	fieldIGSAction:     {"IGS ACTION"},
	fieldIGSStatus:     {"IGS STATUS"},
	fieldNVPN:          {"NVPN", "PART NUMBER", "SKU"},
}

// resolvedColumns is a canonical-field -> 1-based column index map, 0
// meaning unresolved.
type resolvedColumns map[string]int

// resolveColumns implements §4.4 step 4 and §9's "column by name or index"
// design note: a saved per-sheet mapping (name or index) wins when present,
// gaps are filled from auto-detection by header text.
func resolveColumns(headerRow []string, saved scanstate.SheetMapping) (resolvedColumns, []string) {
	upper := make([]string, len(headerRow))
	for i, h := range headerRow {
		upper[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	cols := make(resolvedColumns, len(requiredFields)+1)

	allFields := append(append([]string{}, requiredFields[:]...), fieldNVPN)
	for _, field := range allFields {
		if col, ok := saved.Fields[field]; ok {
			if idx := resolveSavedColumn(col, upper); idx > 0 {
				cols[field] = idx

				continue
			}
		}

		cols[field] = autoDetectColumn(field, upper)
	}

	var missing []string

	for _, field := range requiredFields {
		if cols[field] == 0 {
			missing = append(missing, field)
		}
	}

	return cols, missing
}

// resolveSavedColumn honors an explicit index override first, then an
// exact header-name match (case-insensitive, trimmed).
func resolveSavedColumn(col scanstate.Column, upper []string) int {
	if col.HasIdx && col.ByIndex >= 1 && col.ByIndex <= len(upper) {
		return col.ByIndex
	}

	if col.By == "" {
		return 0
	}

	want := strings.ToUpper(strings.TrimSpace(col.By))

	for i, h := range upper {
		if h == want {
			return i + 1
		}
	}

	return 0
}

func autoDetectColumn(field string, upper []string) int {
	names := synonyms[field]

	for _, want := range names {
		for i, h := range upper {
			if h == want {
				return i + 1
			}
		}
	}

	return 0
}

// findHeaderRow scans the first 300 rows for a cell whose trimmed
// upper-case value is exactly "SN" (§4.4 step 2).
func findHeaderRow(rows [][]string) (int, bool) {
	limit := min(len(rows), 300)

	for i := range limit {
		for _, cell := range rows[i] {
			if strings.ToUpper(strings.TrimSpace(cell)) == "SN" {
				return i, true
			}
		}
	}

	return 0, false
}

func missingFieldsError(missing, sample []string) error {
	return fmt.Errorf("%w: missing %v, available headers: %v", errMissingFields, missing, sample)
}
