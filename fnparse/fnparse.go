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

// Package fnparse turns a test-floor ZIP basename into a structured result,
// per §4.1. It is a pure function package: no I/O, no state.
package fnparse

import (
	"regexp"
	"strings"

	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

// Result is everything extracted from one filename.
type Result struct {
	SN          string
	Status      byte // 'P' or 'F'
	Station     string
	PartNumber  string
	IsBonepile  *bool // nil = unknown marker, non-nil = known PB-/NA
	PBID        string
	TimestampMs int64
}

var (
	snAndStatus1 = regexp.MustCompile(`_(\d{10,})_([FP])_([A-Z0-9]+)_`)
	snOnly       = regexp.MustCompile(`18\d{11}`)
	snAndStatus2 = regexp.MustCompile(`^_([FP])_([A-Z0-9]+)_`)
	timestampRe  = regexp.MustCompile(`\d{8}T\d{6}Z`)

	partPBTriple = regexp.MustCompile(`PB-\d+_(\d+-\d+-\d+)(?:-TS\d+)?`)
	partTriple   = regexp.MustCompile(`(\d+-\d+-\d+)(?:-TS\d+)?`)
	pbMarker     = regexp.MustCompile(`IGSJ_([^_]+)_`)
)

const (
	snLen      = 13
	snPrefix   = "18"
	unknownPN  = "Unknown"
)

// Parse extracts a Result from a ZIP basename (with or without the .zip
// suffix). Returns ok=false if the filename doesn't carry enough information
// to be trusted (§4.1, §7: this is a silent skip, never an error).
func Parse(basename string) (Result, bool) {
	name := strings.TrimSuffix(basename, ".zip")

	sn, status, station, ok := extractSNStatusStation(name)
	if !ok {
		return Result{}, false
	}

	ts, ok := extractTimestamp(name)
	if !ok {
		return Result{}, false
	}

	r := Result{
		SN:          sn,
		Status:      status,
		Station:     station,
		PartNumber:  extractPartNumber(name),
		TimestampMs: ts,
	}

	r.IsBonepile, r.PBID = extractBonepile(name)

	return r, true
}

func extractSNStatusStation(name string) (sn string, status byte, station string, ok bool) {
	if m := snAndStatus1.FindStringSubmatch(name); m != nil {
		if isValidSN(m[1]) {
			return m[1], m[2][0], m[3], true
		}
	}

	loc := snOnly.FindStringIndex(name)
	if loc == nil {
		return "", 0, "", false
	}

	sn = name[loc[0]:loc[1]]
	after := name[loc[1]:]

	m := snAndStatus2.FindStringSubmatch(after)
	if m == nil {
		return "", 0, "", false
	}

	return sn, m[1][0], m[2], true
}

func isValidSN(sn string) bool {
	return len(sn) == snLen && strings.HasPrefix(sn, snPrefix)
}

func extractTimestamp(name string) (int64, bool) {
	m := timestampRe.FindString(name)
	if m == "" {
		return 0, false
	}

	t, err := caltw.ParseCaWallClock(m)
	if err != nil {
		return 0, false
	}

	return t.UnixMilli(), true
}

// extractPartNumber tries, in order: PB-<digits>_<triple>-TS<n>,
// PB-<digits>_<triple>, <triple>-TS<n>, <triple>. Returns "Unknown" on no
// match.
func extractPartNumber(name string) string {
	if m := partPBTriple.FindStringSubmatch(name); m != nil {
		return rebuildSKU(name, m)
	}

	if m := partTriple.FindStringSubmatch(name); m != nil {
		return rebuildSKU(name, m)
	}

	return unknownPN
}

// rebuildSKU re-derives the full matched SKU text (triple plus optional -TSn
// suffix) from the original string, since the regexes above capture only the
// triple group.
func rebuildSKU(name string, m []string) string {
	full := m[0]
	if idx := strings.Index(full, m[len(m)-1]); idx >= 0 {
		return full[idx:]
	}

	return full
}

// extractBonepile returns the fresh/bonepile marker. "NA" => (false, ""),
// "PB-..." => (true, pbid), anything else => (nil, "") meaning unknown.
func extractBonepile(name string) (*bool, string) {
	m := pbMarker.FindStringSubmatch(name)
	if m == nil {
		return nil, ""
	}

	token := m[1]

	switch {
	case token == "NA":
		f := false

		return &f, ""
	case strings.HasPrefix(token, "PB-"):
		t := true

		return &t, token
	default:
		return nil, ""
	}
}
