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

// Package engine owns the process-wide singletons the source keeps as
// global mutable state (§9 Design Note): the scan lock, the jobs map, and
// the auto-status pair. A single Engine is built once at startup and
// passed by reference to the HTTP layer.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/TTinTonT/Bonepile-view/aggregate"
	"github.com/TTinTonT/Bonepile-view/backup"
	"github.com/TTinTonT/Bonepile-view/bonepile"
	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/config"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
	"github.com/TTinTonT/Bonepile-view/jobs"
	"github.com/TTinTonT/Bonepile-view/scan"
	"github.com/TTinTonT/Bonepile-view/scheduler"
)

const (
	cacheFileName     = "cache.db"
	stateFileName     = "state.json"
	workbookFileName  = "bonepile.xlsx"
	workOrderFileName = "fa_work_log.xlsx"
	snapshotDirName   = "snapshots"

	backupEvery = 6 * time.Hour
	backupKeep  = 8
)

// Engine wires the Cache Store, Share Scanner, Workbook Ingestor,
// Aggregator, Scheduler, in-memory Job table and backup Keeper together
// behind a single scan lock.
type Engine struct {
	CacheDir string

	ScanLock *sync.Mutex

	Cache      *cache.Store
	State      *scanstate.Store
	Scanner    *scan.Scanner
	Ingestor   *bonepile.Ingestor
	WorkOrders *bonepile.WorkOrderIndex
	Aggregator *aggregate.Aggregator
	Jobs       *jobs.Table
	Scheduler  *scheduler.Scheduler
	Backup     *backup.Keeper
}

// Open initializes (or reopens) the Engine's state rooted at cacheDir,
// per the fixed configuration constants of §6.
func Open(cacheDir string) (*Engine, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: creating cache dir: %w", err)
	}

	c, _, err := cache.Open(filepath.Join(cacheDir, cacheFileName))
	if err != nil {
		return nil, fmt.Errorf("engine: opening cache: %w", err)
	}

	st, _, err := scanstate.Open(filepath.Join(cacheDir, stateFileName))
	if err != nil {
		c.Close()

		return nil, fmt.Errorf("engine: opening scan state: %w", err)
	}

	wo := bonepile.NewWorkOrderIndex()
	_ = wo.Load(filepath.Join(cacheDir, workOrderFileName))

	scanLock := &sync.Mutex{}
	scanner := scan.New(config.ShareRoot, c, st)

	e := &Engine{
		CacheDir:   cacheDir,
		ScanLock:   scanLock,
		Cache:      c,
		State:      st,
		Scanner:    scanner,
		Ingestor:   bonepile.New(c, st),
		WorkOrders: wo,
		Aggregator: aggregate.New(c, wo),
		Jobs:       jobs.NewTable(),
		Scheduler:  scheduler.New(c, scanner, scanLock),
		Backup: backup.New(
			filepath.Join(cacheDir, cacheFileName),
			filepath.Join(cacheDir, snapshotDirName),
			backupEvery, backupKeep,
		),
	}

	return e, nil
}

// Start launches the background scheduler and backup loops.
func (e *Engine) Start() {
	e.Scheduler.Start()
	e.Backup.Start()
}

// Stop halts the background loops and closes the underlying store. The
// Engine must not be used afterwards.
func (e *Engine) Stop() error {
	e.Scheduler.Stop()
	e.Backup.Stop()

	return e.Cache.Close()
}

// WorkbookPath is the fixed path the uploaded bonepile workbook is stored
// at, replaced via temp-file + rename on each upload (§6).
func (e *Engine) WorkbookPath() string {
	return filepath.Join(e.CacheDir, workbookFileName)
}

// TriggerScan starts a manual scan over [startMs, endMs] on a fresh
// background worker, serialized on the scan lock, and returns its job id
// immediately (§5).
func (e *Engine) TriggerScan(startMs, endMs int64) string {
	id := e.Jobs.Start(caltw.Now().UnixMilli())

	go func() {
		e.Jobs.SetRunning(id)

		e.ScanLock.Lock()
		counters, err := e.Scanner.Scan(startMs, endMs)
		e.ScanLock.Unlock()

		e.Jobs.Finish(id, caltw.Now().UnixMilli(), counters, err)
	}()

	return id
}

// TriggerParse re-parses one sheet of the current workbook on a fresh
// background worker, serialized on the scan lock (the Workbook Ingestor
// mutates the same cache tables a scan does).
func (e *Engine) TriggerParse(sheet string) string {
	id := e.Jobs.Start(caltw.Now().UnixMilli())

	go func() {
		e.Jobs.SetRunning(id)

		e.ScanLock.Lock()
		result, err := e.Ingestor.ParseSheet(e.WorkbookPath(), sheet)
		e.ScanLock.Unlock()

		e.Jobs.Finish(id, caltw.Now().UnixMilli(), result, err)
	}()

	return id
}

// TriggerParseAll re-parses every allowed sheet present in the current
// workbook on a fresh background worker.
func (e *Engine) TriggerParseAll() string {
	id := e.Jobs.Start(caltw.Now().UnixMilli())

	go func() {
		e.Jobs.SetRunning(id)

		e.ScanLock.Lock()
		results, err := e.Ingestor.ParseAll(e.WorkbookPath())
		e.ScanLock.Unlock()

		e.Jobs.Finish(id, caltw.Now().UnixMilli(), results, err)
	}()

	return id
}

// Status is the snapshot served by GET /api/status and GET /api/events.
type Status struct {
	CacheMinCaMs         int64                             `json:"cache_min_ca_ms,omitempty"`
	CacheMaxCaMs         int64                             `json:"cache_max_ca_ms,omitempty"`
	HasCoverage          bool                              `json:"has_coverage"`
	LastScanMs           int64                             `json:"last_scan_ms,omitempty"`
	NextAutoScanMs       int64                             `json:"next_auto_scan_ms,omitempty"`
	LastRetentionCleanup int64                             `json:"last_retention_cleanup_ms,omitempty"`
	RetentionDays        int                               `json:"retention_days"`
	WorkbookFilename     string                            `json:"workbook_filename,omitempty"`
	WorkbookUploadedMs   int64                             `json:"workbook_uploaded_ms,omitempty"`
	SheetStatuses        map[string]scanstate.SheetStatus  `json:"sheet_statuses,omitempty"`
}

// Status builds a fresh status snapshot from current scan state.
func (e *Engine) Status() (Status, error) {
	st, err := e.State.Load()
	if err != nil {
		return Status{}, err
	}

	sched := e.Scheduler.Status()

	return Status{
		CacheMinCaMs:         st.MinCaMs,
		CacheMaxCaMs:         st.MaxCaMs,
		HasCoverage:          st.HasCoverage,
		LastScanMs:           st.LastScanMs,
		NextAutoScanMs:       sched.NextAutoScanMs,
		LastRetentionCleanup: sched.LastRetentionCleanup,
		RetentionDays:        config.RetentionDays,
		WorkbookFilename:     st.WorkbookFilename,
		WorkbookUploadedMs:   st.WorkbookUploadedMs,
		SheetStatuses:        st.SheetStatuses,
	}, nil
}

// ClearCache drops the DB file, the state sidecar, and the uploaded
// workbook, then re-initializes a fresh Engine in place of e (§4.7
// "POST /api/clear-cache": drops DB file, state file, workbook upload;
// re-initializes). The scan lock is held for the duration so no scan or
// parse can race the wipe.
func (e *Engine) ClearCache() error {
	e.ScanLock.Lock()
	defer e.ScanLock.Unlock()

	e.Scheduler.Stop()
	e.Backup.Stop()

	if err := e.Cache.Close(); err != nil {
		return fmt.Errorf("engine: closing cache before clear: %w", err)
	}

	for _, name := range []string{cacheFileName, cacheFileName + "-wal", cacheFileName + "-shm", stateFileName, workbookFileName} {
		_ = os.Remove(filepath.Join(e.CacheDir, name))
	}

	fresh, err := Open(e.CacheDir)
	if err != nil {
		return err
	}

	*e = *fresh

	e.Start()

	return nil
}
