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
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

var mmddSegment = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

const maxBackdateDays = 60

// lastMMDD returns the last mm/dd occurrence in text as (month, day), or
// ok=false if none.
func lastMMDD(text string) (month, day int, ok bool) {
	matches := mmddSegment.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, 0, false
	}

	last := matches[len(matches)-1]
	m, _ := strconv.Atoi(last[1])
	d, _ := strconv.Atoi(last[2])

	return m, d, true
}

// resolveMMDDDate assigns year to a month/day pair using windowStartYear
// (or the fallback year when windowStartYear is 0), correcting by +1 year
// when the result lands more than 60 days before windowStart (§9 "Excel
// serial date ambiguity").
func resolveMMDDDate(month, day, windowStartYear, fallbackYear int, windowStart int64) int64 {
	year := windowStartYear
	if year == 0 {
		year = fallbackYear
	}

	t, err := caltw.BuildCaDate(year, month, day)
	if err != nil {
		return 0
	}

	candidate := t.UnixMilli()

	if windowStart > 0 && candidate < windowStart {
		if daysBetween(candidate, windowStart) > maxBackdateDays {
			if t2, err := caltw.BuildCaDate(year+1, month, day); err == nil {
				candidate = t2.UnixMilli()
			}
		}
	}

	return candidate
}

func daysBetween(a, b int64) int {
	const msPerDay = 24 * 60 * 60 * 1000

	diff := b - a
	if diff < 0 {
		diff = -diff
	}

	return int(diff / msPerDay)
}

// dispositionLatest is the latest bonepile_entries row for one serial,
// keyed by updated_at_ca_ms.
type dispositionLatest struct {
	row     cache.BonepileEntry
	nvMs    int64
	nvOK    bool
	igsMs   int64
	igsOK   bool
}

func latestBonepileBySerial(entries []cache.BonepileEntry, windowStartYear, fallbackYear int, windowStart int64) map[string]dispositionLatest {
	latest := map[string]dispositionLatest{}

	for _, e := range entries {
		cur, ok := latest[e.SN]
		if ok && cur.row.UpdatedAtCaMs >= e.UpdatedAtCaMs {
			continue
		}

		d := dispositionLatest{row: e}

		if m, day, ok := lastMMDD(e.NVDisposition); ok {
			d.nvMs = resolveMMDDDate(m, day, windowStartYear, fallbackYear, windowStart)
			d.nvOK = d.nvMs != 0
		}

		if m, day, ok := lastMMDD(e.IGSAction); ok {
			d.igsMs = resolveMMDDDate(m, day, windowStartYear, fallbackYear, windowStart)
			d.igsOK = d.igsMs != 0
		}

		latest[e.SN] = d
	}

	return latest
}

// DispositionKPIs is the NV-Disposition tile set of §4.5.7.
type DispositionKPIs struct {
	TotalDispositions int                  `json:"total_dispositions"`
	WaitingIGS        int                  `json:"waiting_igs"`
	Complete          int                  `json:"complete"`
	BySKU             map[string]Cell      `json:"by_sku"`
	ByBucket          map[string]Cell      `json:"by_bucket"`
	TraysInBP         int                  `json:"trays_in_bp"`
	AllPassTrays      int                  `json:"all_pass_trays"`
	AllPassBySKU      map[string]int       `json:"all_pass_by_sku"`
}

var allPassStatuses = map[string]bool{ //nolint:gochecknoglobals
	"PASS": true, "ALL PASS": true, "PASS ALL": true, "PASSED": true,
}

// DispositionKPIs computes §4.5.7's tiles. w is optional: a nil w
// means unwindowed (fallbackYear is used for every mm/dd, and "Total"
// covers every serial).
func (a *Aggregator) DispositionKPIs(w *Window, agg Aggregation, fallbackYear int) (DispositionKPIs, error) {
	entries, err := a.Cache.AllBonepileEntries()
	if err != nil {
		return DispositionKPIs{}, err
	}

	var (
		windowStartYear int
		windowStart     int64
	)

	if w != nil {
		windowStartYear = caltw.YearOf(w.StartMs)
		windowStart = w.StartMs
	}

	latest := latestBonepileBySerial(entries, windowStartYear, fallbackYear, windowStart)

	kpis := DispositionKPIs{
		BySKU:        map[string]Cell{},
		ByBucket:     map[string]Cell{},
		AllPassBySKU: map[string]int{},
	}

	for _, d := range latest {
		if w != nil && (!d.nvOK || d.nvMs < w.StartMs || d.nvMs > w.EndMs) {
			continue
		}

		kpis.TotalDispositions++

		sku := skuFor(d.row)
		waiting := normalizedStatus(d.row.Status) == "FAIL" && strings.ToUpper(strings.TrimSpace(d.row.PIC)) == "IGS"

		skuCell := kpis.BySKU[sku]
		skuCell.Tested++

		if waiting {
			kpis.WaitingIGS++
			skuCell.Pass++
		}

		kpis.BySKU[sku] = skuCell

		nvKey := d.nvBucket(agg)
		nvCell := kpis.ByBucket[nvKey]
		nvCell.Tested++
		kpis.ByBucket[nvKey] = nvCell

		if waiting {
			igsKey := d.igsBucket(agg)
			igsCell := kpis.ByBucket[igsKey]
			igsCell.Pass++
			kpis.ByBucket[igsKey] = igsCell
		}
	}

	kpis.Complete = kpis.TotalDispositions - kpis.WaitingIGS

	for sku, c := range kpis.BySKU {
		c.Fail = c.Tested - c.Pass
		kpis.BySKU[sku] = c
	}

	for bucket, c := range kpis.ByBucket {
		c.Fail = c.Tested - c.Pass
		kpis.ByBucket[bucket] = c
	}

	kpis.TraysInBP = len(latest)

	for _, d := range latest {
		if allPassStatuses[normalizedStatus(d.row.Status)] {
			kpis.AllPassTrays++
			kpis.AllPassBySKU[skuFor(d.row)]++
		}
	}

	return kpis, nil
}

func (d dispositionLatest) nvBucket(agg Aggregation) string {
	return bucketFromMs(d.nvMs, agg)
}

func (d dispositionLatest) igsBucket(agg Aggregation) string {
	if d.igsOK {
		return bucketFromMs(d.igsMs, agg)
	}

	return bucketFromMs(d.nvMs, agg)
}

func bucketFromMs(ms int64, agg Aggregation) string {
	switch agg {
	case Weekly:
		return caltw.CaWeek(ms)
	case Monthly:
		return caltw.CaMonth(ms)
	case Hourly:
		return caltw.CaHour(ms)
	default:
		return caltw.CaDate(ms)
	}
}

func skuFor(e cache.BonepileEntry) string {
	if e.NVPN == "" {
		return "Unknown"
	}

	return e.NVPN
}

func normalizedStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DispositionDrillDownRow is one serial contributing to a disposition KPI
// cell (§4.5.7).
type DispositionDrillDownRow struct {
	SN          string `json:"sn"`
	LastNVDispo string `json:"last_nv_dispo"`
	LastIGS     string `json:"last_igs_action"`
	NVPN        string `json:"nvpn"`
	Status      string `json:"status"`
	PIC         string `json:"pic"`
}

// DispositionDrillDown returns the serials contributing to one KPI cell:
// metric is "total", "waiting_igs", or "complete"; sku and period are
// optional filters.
func (a *Aggregator) DispositionDrillDown(w *Window, agg Aggregation, fallbackYear int, metric, sku, period string) ([]DispositionDrillDownRow, error) {
	entries, err := a.Cache.AllBonepileEntries()
	if err != nil {
		return nil, err
	}

	var (
		windowStartYear int
		windowStart     int64
	)

	if w != nil {
		windowStartYear = caltw.YearOf(w.StartMs)
		windowStart = w.StartMs
	}

	latest := latestBonepileBySerial(entries, windowStartYear, fallbackYear, windowStart)

	var out []DispositionDrillDownRow

	for sn, d := range latest {
		if w != nil && (!d.nvOK || d.nvMs < w.StartMs || d.nvMs > w.EndMs) {
			continue
		}

		waiting := normalizedStatus(d.row.Status) == "FAIL" && strings.ToUpper(strings.TrimSpace(d.row.PIC)) == "IGS"

		switch metric {
		case "waiting_igs":
			if !waiting {
				continue
			}
		case "complete":
			if waiting {
				continue
			}
		}

		if sku != "" && skuFor(d.row) != sku {
			continue
		}

		if period != "" {
			bucket := d.nvBucket(agg)
			if metric == "waiting_igs" {
				bucket = d.igsBucket(agg)
			}

			if bucket != period {
				continue
			}
		}

		out = append(out, DispositionDrillDownRow{
			SN:          sn,
			LastNVDispo: lastSegmentText(d.row.NVDisposition),
			LastIGS:     lastSegmentText(d.row.IGSAction),
			NVPN:        d.row.NVPN,
			Status:      d.row.Status,
			PIC:         d.row.PIC,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SN < out[j].SN })

	return out, nil
}

// lastSegmentText returns the full text of the last mm/dd segment match
// (the match itself, not a derived date) for display.
func lastSegmentText(text string) string {
	matches := mmddSegment.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}

	return matches[len(matches)-1]
}
