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

package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/dustin/go-humanize" //nolint:misspell
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TTinTonT/Bonepile-view/engine"
	"github.com/TTinTonT/Bonepile-view/internal/config"
)

const statusHTTPTimeout = 5 * time.Second

var statusServerURL string

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the cache coverage and job status of a running server",
	Long: `Print the cache coverage and job status of a running server.

Queries --server's GET /api/status and renders it as a table. Also
reports the on-disk size of the cache database file, read directly
from the fixed cache directory (the server and this command are
expected to run on the same host).`,
	Run: func(_ *cobra.Command, _ []string) {
		setCLIFormat()

		st, err := fetchStatus(statusServerURL)
		if err != nil {
			die("fetching status: %s", err)
		}

		printStatusTable(st)
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusServerURL, "server", "s", "http://localhost:8080",
		"base URL of a running bonepile-view server")

	RootCmd.AddCommand(statusCmd)
}

func fetchStatus(baseURL string) (engine.Status, error) {
	client := http.Client{Timeout: statusHTTPTimeout}

	resp, err := client.Get(baseURL + "/api/status")
	if err != nil {
		return engine.Status{}, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return engine.Status{}, fmt.Errorf("server returned %s", resp.Status) //nolint:err113
	}

	var st engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return engine.Status{}, err
	}

	return st, nil
}

func printStatusTable(st engine.Status) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})

	table.Append([]string{"Has coverage", fmt.Sprintf("%v", st.HasCoverage)})
	table.Append([]string{"Cache window", formatMsRange(st.CacheMinCaMs, st.CacheMaxCaMs)})
	table.Append([]string{"Last scan", formatMsAgo(st.LastScanMs)})
	table.Append([]string{"Next auto scan", formatMsAgo(st.NextAutoScanMs)})
	table.Append([]string{"Last retention cleanup", formatMsAgo(st.LastRetentionCleanup)})
	table.Append([]string{"Retention days", fmt.Sprintf("%d", st.RetentionDays)})
	table.Append([]string{"Workbook", st.WorkbookFilename})
	table.Append([]string{"Workbook uploaded", formatMsAgo(st.WorkbookUploadedMs)})
	table.Append([]string{"Sheets parsed", fmt.Sprintf("%d", len(st.SheetStatuses))})
	table.Append([]string{"Cache DB size", cacheDBSize()})

	table.Render()
}

func formatMsAgo(ms int64) string {
	if ms == 0 {
		return "never"
	}

	return humanize.Time(time.UnixMilli(ms))
}

func formatMsRange(minMs, maxMs int64) string {
	if minMs == 0 && maxMs == 0 {
		return "empty"
	}

	return fmt.Sprintf("%s .. %s", time.UnixMilli(minMs).Format(time.RFC3339), time.UnixMilli(maxMs).Format(time.RFC3339))
}

func cacheDBSize() string {
	fi, err := os.Stat(filepath.Join(config.CacheDir, "cache.db"))
	if err != nil {
		return "unavailable"
	}

	return bytefmt.ByteSize(uint64(fi.Size()))
}
