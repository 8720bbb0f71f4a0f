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

	"github.com/TTinTonT/Bonepile-view/cache"
)

// StationOrder is the fixed station display order of §4.5.4.
var StationOrder = [...]string{"FLA", "FLB", "AST", "FTS", "FCT", "RIN", "NVL"} //nolint:gochecknoglobals

var tsFamily = regexp.MustCompile(`TS\d+`)

// StationCount is a station's pass/fail serial counts.
type StationCount struct {
	Station string `json:"station"`
	Pass    int    `json:"pass"`
	Fail    int    `json:"fail"`
}

// SKUStationGroup is one TS-family's SKUs and their per-station counts.
type SKUStationGroup struct {
	Family string             `json:"family"`
	SKUs   []SKUStationCounts `json:"skus"`
}

// SKUStationCounts is one SKU's per-station pass/fail counts.
type SKUStationCounts struct {
	SKU      string         `json:"sku"`
	Stations []StationCount `json:"stations"`
}

// StationFlow is the station-flow table of §4.5.4: totals across all
// serials plus a per-SKU breakdown grouped by TS-family.
type StationFlow struct {
	Totals []StationCount    `json:"totals"`
	BySKU  []SKUStationGroup `json:"by_sku"`
}

// StationFlow computes the station-flow table over w.
func (a *Aggregator) StationFlow(w Window) (StationFlow, error) {
	rows, err := a.rows(w)
	if err != nil {
		return StationFlow{}, err
	}

	totals := stationCounts(rows)

	bySKU := map[string][]cache.RawEntry{}

	for _, r := range rows {
		sku := r.PartNumber
		if sku == "" {
			sku = "Unknown"
		}

		bySKU[sku] = append(bySKU[sku], r)
	}

	groups := map[string][]SKUStationCounts{}

	for sku, skuRows := range bySKU {
		family := tsFamilyOf(sku)
		groups[family] = append(groups[family], SKUStationCounts{SKU: sku, Stations: stationCounts(skuRows)})
	}

	return StationFlow{Totals: totals, BySKU: buildGroups(groups)}, nil
}

func stationCounts(rows []cache.RawEntry) []StationCount {
	pass := map[string]map[string]bool{}
	fail := map[string]map[string]bool{}

	for _, station := range StationOrder {
		pass[station] = map[string]bool{}
		fail[station] = map[string]bool{}
	}

	for _, r := range rows {
		if _, ok := pass[r.Station]; !ok {
			continue
		}

		if r.Status == 'P' {
			pass[r.Station][r.SN] = true
		} else if r.Status == 'F' {
			fail[r.Station][r.SN] = true
		}
	}

	counts := make([]StationCount, 0, len(StationOrder))

	for _, station := range StationOrder {
		counts = append(counts, StationCount{Station: station, Pass: len(pass[station]), Fail: len(fail[station])})
	}

	return counts
}

func tsFamilyOf(sku string) string {
	if m := tsFamily.FindString(sku); m != "" {
		return m
	}

	return "TS?"
}

func buildGroups(groups map[string][]SKUStationCounts) []SKUStationGroup {
	families := sortedKeys(groups)

	result := make([]SKUStationGroup, 0, len(families))

	for _, family := range families {
		skus := groups[family]
		sort.Slice(skus, func(i, j int) bool { return skus[i].SKU < skus[j].SKU })

		result = append(result, SKUStationGroup{Family: family, SKUs: skus})
	}

	return result
}
