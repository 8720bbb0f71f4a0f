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

// Package scan walks the network share's Taiwan-dated directories, parses
// ZIP basenames through fnparse, and upserts rows into the Cache Store
// (§4.3).
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/fnparse"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

// Counters summarizes one Scan call.
type Counters struct {
	DirsWalked   int
	DirErrors    int
	FilesSeen    int
	FilesParsed  int
	RowsInserted int
}

// Scanner walks Root and writes into Cache and State.
type Scanner struct {
	Root  string
	Cache *cache.Store
	State *scanstate.Store
}

// New builds a Scanner over root, writing parsed rows to c and coverage to
// st.
func New(root string, c *cache.Store, st *scanstate.Store) *Scanner {
	return &Scanner{Root: root, Cache: c, State: st}
}

// Scan walks every Taiwan date intersecting [start-1d, end+1d], inserts rows
// whose derived ca_ms falls in [startMs, endMs], and reconciles the
// scan-state coverage fields to the cache's actual min/max afterwards
// (§4.3: "preventing covered from racing ahead of ingest").
func (s *Scanner) Scan(startMs, endMs int64) (Counters, error) {
	nowMs := caltw.Now().UnixMilli()
	if endMs > nowMs {
		endMs = nowMs
	}

	if endMs < startMs {
		endMs = startMs
	}

	start := time.UnixMilli(startMs)
	end := time.UnixMilli(endMs)

	var (
		counters Counters
		walkErr  error
	)

	for _, date := range caltw.TaiwanDatesCovering(start, end) {
		dayDir := filepath.Join(s.Root, date)

		n, err := s.scanDay(dayDir, startMs, endMs, &counters)
		if err != nil {
			counters.DirErrors++

			continue
		}

		counters.RowsInserted += n
	}

	if _, err := s.reconcileCoverage(); err != nil {
		walkErr = multierror.Append(walkErr, err)
	}

	return counters, walkErr
}

// scanDay walks a single day directory, returning the count of rows
// actually inserted. A missing day directory yields zero rows and no error;
// an unreadable one is returned as an error, which Scan counts in DirErrors
// and skips without aborting the overall scan (§4.3: "caught per-directory
// and skipped").
func (s *Scanner) scanDay(dayDir string, startMs, endMs int64, counters *Counters) (int, error) {
	if _, err := os.Stat(dayDir); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, err
	}

	counters.DirsWalked++

	var batch []cache.RawEntry

	walkErr := filepath.WalkDir(dayDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			counters.DirErrors++

			return nil
		}

		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".zip") {
			return nil
		}

		counters.FilesSeen++

		entry, ok := s.parseFile(path, startMs, endMs)
		if !ok {
			return nil
		}

		counters.FilesParsed++

		batch = append(batch, entry)

		return nil
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if len(batch) == 0 {
		return 0, nil
	}

	return s.Cache.InsertRawEntries(batch)
}

func (s *Scanner) parseFile(path string, startMs, endMs int64) (cache.RawEntry, bool) {
	result, ok := fnparse.Parse(filepath.Base(path))
	if !ok {
		return cache.RawEntry{}, false
	}

	if result.TimestampMs < startMs || result.TimestampMs > endMs {
		return cache.RawEntry{}, false
	}

	folder := filepath.Dir(path)
	if rel, err := filepath.Rel(s.Root, folder); err == nil {
		folder = rel
	}

	return cache.NewRawEntry(result.TimestampMs, filepath.Base(path), folder, result.SN, result.Status,
		result.Station, result.PartNumber, result.IsBonepile, result.PBID), true
}

// ReconcileCoverage refreshes the recorded min/max coverage to the cache's
// actual min/max ca_ms, without performing a scan. Used after a retention
// deletion narrows the cache's true range (§4.6).
func (s *Scanner) ReconcileCoverage() error {
	_, err := s.reconcileCoverage()

	return err
}

func (s *Scanner) reconcileCoverage() (scanstate.State, error) {
	minMs, maxMs, ok, err := s.Cache.MinMaxCaMs()
	if err != nil {
		return scanstate.State{}, err
	}

	return s.State.Update(func(st *scanstate.State) {
		st.HasCoverage = ok
		st.MinCaMs = minMs
		st.MaxCaMs = maxMs
		st.LastScanMs = caltw.Now().UnixMilli()
	})
}

// EnsureCoverage extends the cache's coverage to include [startMs, endMs],
// scanning only the missing ends against the current coverage recorded in
// scan state: a pass from startMs up to the current min, and/or a pass from
// the current max up to endMs. It never widens coverage past now_ca
// (§4.3).
func (s *Scanner) EnsureCoverage(startMs, endMs int64) (Counters, error) {
	nowMs := caltw.Now().UnixMilli()
	if endMs > nowMs {
		endMs = nowMs
	}

	st, err := s.State.Load()
	if err != nil {
		return Counters{}, err
	}

	if !st.HasCoverage {
		return s.Scan(startMs, endMs)
	}

	var (
		total   Counters
		lastErr error
	)

	if startMs < st.MinCaMs {
		c, err := s.Scan(startMs, st.MinCaMs)
		total = mergeCounters(total, c)

		if err != nil {
			lastErr = multierror.Append(lastErr, err)
		}
	}

	if endMs > st.MaxCaMs {
		c, err := s.Scan(st.MaxCaMs, endMs)
		total = mergeCounters(total, c)

		if err != nil {
			lastErr = multierror.Append(lastErr, err)
		}
	}

	return total, lastErr
}

func mergeCounters(a, b Counters) Counters {
	return Counters{
		DirsWalked:   a.DirsWalked + b.DirsWalked,
		DirErrors:    a.DirErrors + b.DirErrors,
		FilesSeen:    a.FilesSeen + b.FilesSeen,
		FilesParsed:  a.FilesParsed + b.FilesParsed,
		RowsInserted: a.RowsInserted + b.RowsInserted,
	}
}
