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

// Package jobs is the in-memory Job table of §3: every POST that mutates
// state is dispatched to a background worker and tracked here so the HTTP
// call can return the job id immediately (§5).
package jobs

import (
	"sync"

	"github.com/google/uuid"
)

// Status is a Job's lifecycle state.
type Status string

const (
	Queued  Status = "queued"
	Running Status = "running"
	Done    Status = "done"
	Error   Status = "error"
)

// Job is one tracked background operation (a manual scan or a workbook
// parse).
type Job struct {
	ID         string `json:"id"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	Result     any    `json:"result,omitempty"`
	StartedMs  int64  `json:"started_ms"`
	FinishedMs int64  `json:"finished_ms,omitempty"`
}

// Table is the process-wide jobs map, guarded by its own lock (§5 "Shared
// resources").
type Table struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewTable returns an empty job table.
func NewTable() *Table {
	return &Table{jobs: map[string]*Job{}}
}

// Start allocates a new queued Job and returns its id.
func (t *Table) Start(startedMs int64) string {
	id := uuid.NewString()

	t.mu.Lock()
	t.jobs[id] = &Job{ID: id, Status: Queued, StartedMs: startedMs}
	t.mu.Unlock()

	return id
}

// SetRunning transitions a job to running.
func (t *Table) SetRunning(id string) {
	t.update(id, func(j *Job) { j.Status = Running })
}

// Finish marks a job done (result non-nil, err nil) or errored.
func (t *Table) Finish(id string, finishedMs int64, result any, err error) {
	t.update(id, func(j *Job) {
		j.FinishedMs = finishedMs

		if err != nil {
			j.Status = Error
			j.Message = err.Error()

			return
		}

		j.Status = Done
		j.Result = result
	})
}

func (t *Table) update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if j, ok := t.jobs[id]; ok {
		fn(j)
	}
}

// Get returns a copy of the job with id, or ok=false if unknown.
func (t *Table) Get(id string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	j, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}

	return *j, true
}
