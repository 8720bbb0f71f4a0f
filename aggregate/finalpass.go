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

package aggregate

import (
	"strings"

	"github.com/TTinTonT/Bonepile-view/cache"
)

const defaultPassStation = "FCT"

// passStationOverrides is the explicit override table from §4.5.2. §9
// flags this as likely to grow; it's a plain map rather than anything
// pattern-based because no pattern over SKU names beyond the TS2 default is
// assumed.
var passStationOverrides = map[string]string{ //nolint:gochecknoglobals
	"675-24109-0010-TS2": "FCT",
}

// passStationFor returns the station whose P row counts as this part
// number's final pass (§4.5.2).
func passStationFor(partNumber string) string {
	upper := strings.ToUpper(partNumber)

	if station, ok := passStationOverrides[upper]; ok {
		return station
	}

	if strings.Contains(upper, "TS2") {
		return "NVL"
	}

	return defaultPassStation
}

// isFinalPass reports whether row counts as a final pass: a P status at
// the pass-station for its part number. Missing or Unknown part numbers
// can never be a final pass.
func isFinalPass(row cache.RawEntry) bool {
	if row.Status != 'P' {
		return false
	}

	if row.PartNumber == "" || row.PartNumber == "Unknown" {
		return false
	}

	return row.Station == passStationFor(row.PartNumber)
}

// hasFinalPass reports whether any row in rows is a final pass.
func hasFinalPass(rows []cache.RawEntry) bool {
	for _, r := range rows {
		if isFinalPass(r) {
			return true
		}
	}

	return false
}

// isBonepileSerial reports whether any row for a serial is bonepile-marked.
func isBonepileSerial(rows []cache.RawEntry) bool {
	for _, r := range rows {
		if r.IsBonepile.Valid && r.IsBonepile.Bool {
			return true
		}
	}

	return false
}
