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
	"regexp"
	"strconv"
	"strings"
)

var dispositionSegment = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)

const (
	snDigits = 13
	snPrefix = "18"
)

// normalizeSN accepts the several shapes a spreadsheet can hand back for a
// numeric-looking cell (plain digits, scientific notation, a decimal ending
// in ".0", or digits interleaved with stray formatting characters) and
// returns the 13-digit "18..." serial, or ok=false if the cell doesn't
// resolve to one (§4.4 step 5).
func normalizeSN(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		raw = strconv.FormatFloat(f, 'f', 0, 64)
	} else {
		raw = strings.TrimSuffix(raw, ".0")
	}

	var digits strings.Builder

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	sn := digits.String()
	if len(sn) != snDigits || !strings.HasPrefix(sn, snPrefix) {
		return "", false
	}

	return sn, true
}

// countDispositionSegments counts \b\d{1,2}/\d{1,2}\b occurrences, used for
// both nv_dispo_count and igs_action_count (§4.4 step 5).
func countDispositionSegments(cell string) int {
	return len(dispositionSegment.FindAllString(cell, -1))
}
