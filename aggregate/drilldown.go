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
	"sort"

	"github.com/TTinTonT/Bonepile-view/cache"
)

// DrillDownOutcome selects the station+outcome shape of §4.5.6.
type DrillDownOutcome string

const (
	Pass DrillDownOutcome = "pass"
	Fail DrillDownOutcome = "fail"
	Both DrillDownOutcome = "both"
)

// DrillDownRow is one serial-level row, shaped to cover all three drill-
// down variants of §4.5.6.
type DrillDownRow struct {
	SN         string `json:"sn"`
	Result     string `json:"result"`
	IsBonepile bool   `json:"is_bonepile"`
	LatestPass int64  `json:"latest_pass_ms,omitempty"`
	LatestFail int64  `json:"latest_fail_ms,omitempty"`
	Filename   string `json:"filename"`
	Station    string `json:"station"`
	PartNumber string `json:"part_number"`
	FolderID   string `json:"folder_id"`
	TimeKey    int64  `json:"-"`
	WorkOrder  string `json:"wo,omitempty"`
}

// DrillDownOverall returns one row per serial, optionally filtered to sku
// (matching the serial's latest part number).
func (a *Aggregator) DrillDownOverall(w Window, sku string) ([]DrillDownRow, error) {
	rows, err := a.rows(w)
	if err != nil {
		return nil, err
	}

	var out []DrillDownRow

	for _, serialRows := range bySerial(rows) {
		latest := latestRow(serialRows)
		if sku != "" && latest.PartNumber != sku {
			continue
		}

		row := DrillDownRow{
			SN:         latest.SN,
			IsBonepile: isBonepileSerial(serialRows),
			Filename:   latest.Filename,
			Station:    latest.Station,
			PartNumber: latest.PartNumber,
			FolderID:   folderID(latest.FolderPath),
			TimeKey:    latest.UTCMs,
		}

		if hasFinalPass(serialRows) {
			row.Result = "PASS"
		} else {
			row.Result = "FAIL"
		}

		row.LatestPass, row.LatestFail = latestPassFail(serialRows)
		a.attachWorkOrder(&row)

		out = append(out, row)
	}

	return sortDrillDown(out), nil
}

// DrillDownStation returns serials with at least one row at station
// matching outcome (pass, fail, or both), contextualized per §4.5.6.
func (a *Aggregator) DrillDownStation(w Window, station string, outcome DrillDownOutcome, sku string) ([]DrillDownRow, error) {
	rows, err := a.rows(w)
	if err != nil {
		return nil, err
	}

	var out []DrillDownRow

	for _, serialRows := range bySerial(rows) {
		var stationRows []cache.RawEntry

		for _, r := range serialRows {
			if r.Station == station {
				stationRows = append(stationRows, r)
			}
		}

		if len(stationRows) == 0 {
			continue
		}

		row, ok := stationDrillDownRow(stationRows, outcome)
		if !ok {
			continue
		}

		latest := latestRow(serialRows)
		if sku != "" && latest.PartNumber != sku {
			continue
		}

		row.IsBonepile = isBonepileSerial(serialRows)
		a.attachWorkOrder(&row)

		out = append(out, row)
	}

	return sortDrillDown(out), nil
}

func stationDrillDownRow(stationRows []cache.RawEntry, outcome DrillDownOutcome) (DrillDownRow, bool) {
	var passRows, failRows []cache.RawEntry

	for _, r := range stationRows {
		if r.Status == 'P' {
			passRows = append(passRows, r)
		} else if r.Status == 'F' {
			failRows = append(failRows, r)
		}
	}

	switch outcome {
	case Pass:
		if len(passRows) == 0 {
			return DrillDownRow{}, false
		}

		return rowFromContext(passRows[len(passRows)-1], "PASS"), true
	case Fail:
		if len(failRows) == 0 {
			return DrillDownRow{}, false
		}

		return rowFromContext(failRows[len(failRows)-1], "FAIL"), true
	case Both:
		if len(passRows) == 0 && len(failRows) == 0 {
			return DrillDownRow{}, false
		}

		return bothOutcomeRow(passRows, failRows), true
	default:
		return DrillDownRow{}, false
	}
}

func bothOutcomeRow(passRows, failRows []cache.RawEntry) DrillDownRow {
	switch {
	case len(passRows) > 0 && len(failRows) > 0:
		latestP := latestRow(passRows)
		latestF := latestRow(failRows)

		if latestP.UTCMs >= latestF.UTCMs {
			return rowFromContext(latestP, "PASS/FAIL")
		}

		return rowFromContext(latestF, "PASS/FAIL")
	case len(passRows) > 0:
		return rowFromContext(latestRow(passRows), "PASS")
	default:
		return rowFromContext(latestRow(failRows), "FAIL")
	}
}

func rowFromContext(r cache.RawEntry, result string) DrillDownRow {
	return DrillDownRow{
		SN:         r.SN,
		Result:     result,
		Filename:   r.Filename,
		Station:    r.Station,
		PartNumber: r.PartNumber,
		FolderID:   folderID(r.FolderPath),
		TimeKey:    r.UTCMs,
	}
}

func latestPassFail(rows []cache.RawEntry) (latestPassMs, latestFailMs int64) {
	for _, r := range rows {
		switch r.Status {
		case 'P':
			if r.UTCMs > latestPassMs {
				latestPassMs = r.UTCMs
			}
		case 'F':
			if r.UTCMs > latestFailMs {
				latestFailMs = r.UTCMs
			}
		}
	}

	return latestPassMs, latestFailMs
}

func (a *Aggregator) attachWorkOrder(row *DrillDownRow) {
	if a.WorkOrders == nil {
		return
	}

	row.WorkOrder = a.WorkOrders.Lookup(row.SN)
}

func sortDrillDown(rows []DrillDownRow) []DrillDownRow {
	sort.Slice(rows, func(i, j int) bool { return rows[i].TimeKey > rows[j].TimeKey })

	return rows
}
