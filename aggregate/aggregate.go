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

// Package aggregate computes every time-windowed view over the cache: the
// summary matrix, SKU table, station-flow table, time breakdown, per-serial
// drill-down, and NV-disposition KPIs (§4.5). It is pure over the Cache
// Store: none of its queries trigger a scan.
package aggregate

import (
	"path/filepath"
	"sort"

	"github.com/TTinTonT/Bonepile-view/bonepile"
	"github.com/TTinTonT/Bonepile-view/cache"
)

// Window is a California-local time range, already clamped by the caller
// to now_ca with end > start.
type Window struct {
	StartMs int64
	EndMs   int64
}

// Aggregator answers aggregation queries against Cache. WorkOrders is
// optional; a nil or empty index just means every wo lookup misses.
type Aggregator struct {
	Cache      *cache.Store
	WorkOrders *bonepile.WorkOrderIndex
}

// New builds an Aggregator over c, optionally enriching drill-downs with
// wo, the supplemented work-order index.
func New(c *cache.Store, wo *bonepile.WorkOrderIndex) *Aggregator {
	return &Aggregator{Cache: c, WorkOrders: wo}
}

// Coverage reports the cache's current min/max ca_ms and whether w falls
// entirely within it.
type Coverage struct {
	MinCaMs        int64 `json:"min_ca_ms,omitempty"`
	MaxCaMs        int64 `json:"max_ca_ms,omitempty"`
	HasData        bool  `json:"has_data"`
	IsFullyCovered bool  `json:"is_fully_covered"`
}

func (a *Aggregator) coverage(w Window) (Coverage, error) {
	minMs, maxMs, ok, err := a.Cache.MinMaxCaMs()
	if err != nil {
		return Coverage{}, err
	}

	cov := Coverage{MinCaMs: minMs, MaxCaMs: maxMs, HasData: ok}
	cov.IsFullyCovered = ok && minMs <= w.StartMs && maxMs >= w.EndMs

	return cov, nil
}

func (a *Aggregator) rows(w Window) ([]cache.RawEntry, error) {
	return a.Cache.RawEntriesInWindow(w.StartMs, w.EndMs)
}

// bySerial groups rows by sn, each slice ordered by utc_ms ascending since
// RawEntriesInWindow already returns rows in that order.
func bySerial(rows []cache.RawEntry) map[string][]cache.RawEntry {
	grouped := make(map[string][]cache.RawEntry)

	for _, r := range rows {
		grouped[r.SN] = append(grouped[r.SN], r)
	}

	return grouped
}

// latestRow returns the row with the largest utc_ms, breaking ties by
// filename (§4.5.1 "latest_part_number ... break ties by filename").
func latestRow(rows []cache.RawEntry) cache.RawEntry {
	latest := rows[0]

	for _, r := range rows[1:] {
		if r.UTCMs > latest.UTCMs || (r.UTCMs == latest.UTCMs && r.Filename > latest.Filename) {
			latest = r
		}
	}

	return latest
}

func folderID(folderPath string) string {
	return filepath.Base(folderPath)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
