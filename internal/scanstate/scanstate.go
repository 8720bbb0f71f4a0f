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

// Package scanstate holds the JSON sidecar (§3 "Scan state") recording scan
// coverage, uploaded workbook metadata, per-sheet mapping and parse status.
// It is rewritten atomically via temp-file + rename after each scan or
// mapping change, never partially.
package scanstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SheetMapping is the user-editable or auto-detected column mapping for one
// workbook sheet (§9 Design Note: a tagged By / ByIndex variant so both a
// header-name mapping and a raw column-index override can be stored in the
// same field).
type SheetMapping struct {
	HeaderRow int               `json:"header_row"`
	Fields    map[string]Column `json:"fields"`
}

// Column is either a header-name reference or a 1-based column index.
// ByIndex is used when HasIdx is set and the index is in range; otherwise By
// is matched against the header row.
type Column struct {
	By      string `json:"by,omitempty"`
	ByIndex int    `json:"by_index,omitempty"`
	HasIdx  bool   `json:"has_index,omitempty"`
}

// SheetStatus is the last parse outcome recorded for one sheet.
type SheetStatus struct {
	OK          bool     `json:"ok"`
	Error       string   `json:"error,omitempty"`
	SampleCells []string `json:"sample_cells,omitempty"`
	RowCount    int      `json:"row_count"`
	ContentHash string   `json:"content_hash"`
	LastRunMs   int64    `json:"last_run_ms"`
}

// State is the full sidecar document.
type State struct {
	MinCaMs            int64                   `json:"min_ca_ms"`
	MaxCaMs            int64                   `json:"max_ca_ms"`
	HasCoverage        bool                    `json:"has_coverage"`
	LastScanMs         int64                   `json:"last_scan_ms"`
	NextAutoScanMs     int64                   `json:"next_auto_scan_ms"`
	LastRetentionMs    int64                   `json:"last_retention_cleanup_ms"`
	WorkbookFilename   string                  `json:"workbook_filename,omitempty"`
	WorkbookUploadedMs int64                   `json:"workbook_uploaded_ms,omitempty"`
	SheetMappings      map[string]SheetMapping `json:"sheet_mappings,omitempty"`
	SheetStatuses      map[string]SheetStatus  `json:"sheet_statuses,omitempty"`
}

// Store guards one sidecar file on disk behind a mutex, matching the
// single-writer-at-a-time shared resources called out for the state
// sidecar.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open loads path if it exists, or starts from a zero State otherwise. It
// does not create the file; the first Save does.
func Open(path string) (*Store, State, error) {
	s := &Store{path: path}

	st, err := s.load()
	if err != nil {
		return nil, State{}, err
	}

	return s, st, nil
}

func (s *Store) load() (State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, nil
	} else if err != nil {
		return State{}, fmt.Errorf("scanstate: reading %s: %w", s.path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("scanstate: parsing %s: %w", s.path, err)
	}

	return st, nil
}

// Load re-reads the sidecar from disk under the lock.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Update reads the current state, applies fn, and atomically rewrites the
// file with the result.
func (s *Store) Update(fn func(*State)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return State{}, err
	}

	fn(&st)

	if err := s.save(st); err != nil {
		return State{}, err
	}

	return st, nil
}

func (s *Store) save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("scanstate: marshalling: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".scanstate-*.tmp")
	if err != nil {
		return fmt.Errorf("scanstate: creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("scanstate: writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("scanstate: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("scanstate: renaming temp file: %w", err)
	}

	return nil
}
