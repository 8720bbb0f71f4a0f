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

package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const app = "bonepile-view_test"

func TestMain(m *testing.M) {
	d1 := buildSelf()
	if d1 == nil {
		return
	}

	defer os.Exit(m.Run())
	defer d1()
}

func buildSelf() func() {
	cmd := exec.Command("go", "build", "-o", app)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		println(err.Error()) //nolint:forbidigo

		return nil
	}

	return func() {
		os.Remove(app)
	}
}

func TestRootHelp(t *testing.T) {
	Convey("bonepile-view --help describes the subcommands", t, func() {
		stdout, _, err := run("--help")
		So(err, ShouldBeNil)
		So(stdout, ShouldContainSubstring, "serve")
		So(stdout, ShouldContainSubstring, "scan")
		So(stdout, ShouldContainSubstring, "status")
	})
}

func TestScanRequiresFlags(t *testing.T) {
	Convey("scan without --start/--end fails fast", t, func() {
		_, stderr, err := run("scan")
		So(err, ShouldNotBeNil)
		So(stderr, ShouldContainSubstring, "--start and --end are required")
	})
}

func TestScanRejectsBadWindow(t *testing.T) {
	Convey("scan validates its datetime window before touching the cache", t, func() {
		Convey("an unparsable start is rejected", func() {
			_, stderr, err := run("scan", "--start", "not-a-date", "--end", "2026-01-02 00:00:00")
			So(err, ShouldNotBeNil)
			So(stderr, ShouldContainSubstring, "bad --start")
		})

		Convey("an end before the start is rejected", func() {
			_, stderr, err := run("scan",
				"--start", "2026-01-02 00:00:00",
				"--end", "2026-01-01 00:00:00",
			)
			So(err, ShouldNotBeNil)
			So(stderr, ShouldContainSubstring, "--end must be after --start")
		})
	})
}

func TestStatusUnreachableServer(t *testing.T) {
	Convey("status reports a clear error when the server can't be reached", t, func() {
		_, stderr, err := run("status", "--server", "http://127.0.0.1:1")
		So(err, ShouldNotBeNil)
		So(stderr, ShouldContainSubstring, "fetching status")
	})
}

func run(args ...string) (string, string, error) {
	var stdout, stderr strings.Builder

	cmd := exec.Command("./"+app, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}
