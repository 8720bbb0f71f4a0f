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

// Package scheduler runs the background refresh-window rescan and retention
// cleanup loop of §4.6: every AutoScanEverySeconds it deletes and re-derives
// the trailing RefreshWindowMinutes from the share, and at most every
// RetentionCheckInterval it trims raw_entries older than RetentionDays.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/config"
	"github.com/TTinTonT/Bonepile-view/scan"
)

// Status is the published scheduler state, read by the HTTP status/SSE
// surface under its own lock, separate from the scan lock itself.
type Status struct {
	NextAutoScanMs       int64
	LastRetentionCleanup int64
	LastScanCounters     scan.Counters
	LastScanErr          string
}

// Scheduler owns the ticker loop. ScanLock is shared with any manual scan
// triggered from the HTTP layer (§9 Design Note: one Engine, one scan lock).
type Scheduler struct {
	Cache    *cache.Store
	Scanner  *scan.Scanner
	ScanLock *sync.Mutex

	autoScanEvery  time.Duration
	refreshWindow  time.Duration
	retentionEvery time.Duration
	retentionDays  int

	mu     sync.RWMutex
	status Status

	lastRetention time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Scheduler using the fixed intervals from internal/config.
func New(c *cache.Store, s *scan.Scanner, lock *sync.Mutex) *Scheduler {
	return &Scheduler{
		Cache:          c,
		Scanner:        s,
		ScanLock:       lock,
		autoScanEvery:  config.AutoScanEverySeconds * time.Second,
		refreshWindow:  config.RefreshWindowMinutes * time.Minute,
		retentionEvery: config.RetentionCheckInterval,
		retentionDays:  config.RetentionDays,
	}
}

// Start launches the background loop. Stop must be called to shut it down.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)

	go s.loop(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
}

// Status returns a copy of the currently published scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.autoScanEvery):
			s.tick()
		}
	}
}

// tick always runs a full refresh-window rescan, and a retention cleanup
// only if one hasn't run within retentionEvery. loop waits a full
// autoScanEvery after each tick returns, however long the work itself took.
func (s *Scheduler) tick() {
	s.ScanLock.Lock()
	defer s.ScanLock.Unlock()

	now := caltw.Now()
	nowMs := now.UnixMilli()
	windowStartMs := now.Add(-s.refreshWindow).UnixMilli()

	counters, err := s.refreshWindowRescan(windowStartMs, nowMs)

	if now.Sub(s.lastRetention) >= s.retentionEvery {
		if rerr := s.runRetentionCleanup(nowMs); rerr == nil {
			s.lastRetention = now
		}
	}

	s.publish(now, counters, err, s.lastRetention.UnixMilli())
}

func (s *Scheduler) refreshWindowRescan(windowStartMs, nowMs int64) (scan.Counters, error) {
	if err := s.Cache.DeleteRawRange(windowStartMs, nowMs+1); err != nil {
		return scan.Counters{}, err
	}

	return s.Scanner.Scan(windowStartMs, nowMs)
}

func (s *Scheduler) runRetentionCleanup(nowMs int64) error {
	cutoff := nowMs - s.retentionDaysAsMs()

	if err := s.Cache.DeleteRawRange(0, cutoff); err != nil {
		return err
	}

	return s.Scanner.ReconcileCoverage()
}

func (s *Scheduler) retentionDaysAsMs() int64 {
	return int64(s.retentionDays) * 24 * int64(time.Hour/time.Millisecond)
}

func (s *Scheduler) publish(now time.Time, counters scan.Counters, err error, lastRetentionMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.NextAutoScanMs = now.Add(s.autoScanEvery).UnixMilli()
	s.status.LastRetentionCleanup = lastRetentionMs
	s.status.LastScanCounters = counters

	if err != nil {
		s.status.LastScanErr = err.Error()
	} else {
		s.status.LastScanErr = ""
	}
}
