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

// Package backup takes periodic gzip snapshots of the cache database file,
// so an operator can recover from a bad scan or a corrupted store without
// re-walking the whole retention window from the share.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/pgzip"
)

const snapshotTimeFormat = "20060102T150405"

// Keeper periodically snapshots a SQLite file into a directory, gzip
// compressed, and prunes old snapshots beyond Keep.
type Keeper struct {
	SourcePath string
	Dir        string
	Every      time.Duration
	Keep       int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New builds a Keeper that snapshots src into dir every interval, keeping
// at most keep snapshots.
func New(src, dir string, every time.Duration, keep int) *Keeper {
	return &Keeper{SourcePath: src, Dir: dir, Every: every, Keep: keep}
}

// Start launches the periodic snapshot loop.
func (k *Keeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel

	k.wg.Add(1)

	go k.loop(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (k *Keeper) Stop() {
	if k.cancel != nil {
		k.cancel()
	}

	k.wg.Wait()
}

func (k *Keeper) loop(ctx context.Context) {
	defer k.wg.Done()

	ticker := time.NewTicker(k.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = k.Snapshot(time.Now())
		}
	}
}

// Snapshot writes one gzip-compressed copy of SourcePath into Dir, named
// with the given timestamp, then prunes old snapshots beyond Keep.
func (k *Keeper) Snapshot(at time.Time) (string, error) {
	if err := os.MkdirAll(k.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: creating snapshot dir: %w", err)
	}

	name := filepath.Join(k.Dir, "cache-"+at.UTC().Format(snapshotTimeFormat)+".db.gz")

	if err := k.writeSnapshot(name); err != nil {
		return "", err
	}

	if err := k.prune(); err != nil {
		return name, err
	}

	return name, nil
}

func (k *Keeper) writeSnapshot(dest string) (err error) {
	src, err := os.Open(k.SourcePath)
	if err != nil {
		return fmt.Errorf("backup: opening source db: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("backup: creating snapshot file: %w", err)
	}

	defer deferClose(out.Close, &err)

	gz := pgzip.NewWriter(out)
	defer deferClose(gz.Close, &err)

	if _, err = io.Copy(gz, src); err != nil {
		return fmt.Errorf("backup: compressing snapshot: %w", err)
	}

	return nil
}

func deferClose(fn func() error, err *error) {
	if errr := fn(); *err == nil {
		*err = errr
	}
}

// prune deletes the oldest snapshots beyond Keep, by filename order (the
// timestamp format sorts lexically the same as chronologically).
func (k *Keeper) prune() error {
	if k.Keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(k.Dir)
	if err != nil {
		return fmt.Errorf("backup: listing snapshot dir: %w", err)
	}

	var names []string

	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".gz" {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	if len(names) <= k.Keep {
		return nil
	}

	for _, n := range names[:len(names)-k.Keep] {
		_ = os.Remove(filepath.Join(k.Dir, n))
	}

	return nil
}
