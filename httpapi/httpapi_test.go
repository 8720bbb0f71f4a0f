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

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/TTinTonT/Bonepile-view/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	e, err := engine.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening engine: %v", err)
	}

	return New(e), func() {
		e.Scheduler.Stop()
		e.Backup.Stop()
	}
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestStatus(t *testing.T) {
	Convey("GET /api/status returns a snapshot over a fresh engine", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodGet, "/api/status", nil)

		So(rec.Code, ShouldEqual, http.StatusOK)

		var st engine.Status
		So(json.Unmarshal(rec.Body.Bytes(), &st), ShouldBeNil)
		So(st.HasCoverage, ShouldBeFalse)
		So(st.RetentionDays, ShouldBeGreaterThan, 0)
	})
}

func TestPostQueryValidation(t *testing.T) {
	Convey("POST /api/query rejects a missing datetime window", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/query", queryRequest{})

		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})

	Convey("POST /api/query rejects an end before start", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/query", queryRequest{
			StartDatetime: "2026-01-02 00:00:00",
			EndDatetime:   "2026-01-01 00:00:00",
		})

		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})

	Convey("POST /api/query accepts a well-formed window over an empty cache", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/query", queryRequest{
			StartDatetime: "2026-01-01 00:00:00",
			EndDatetime:   "2026-01-02 00:00:00",
		})

		So(rec.Code, ShouldEqual, http.StatusOK)

		var resp queryResponse
		So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
		So(resp.Counts.Tested, ShouldEqual, 0)
	})
}

func TestPostScanAndGetJob(t *testing.T) {
	Convey("POST /api/scan enqueues a job whose status can be polled", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/scan", scanRequest{
			StartDatetime: "2026-01-01 00:00:00",
			EndDatetime:   "2026-01-02 00:00:00",
		})

		So(rec.Code, ShouldEqual, http.StatusOK)

		var posted struct {
			JobID string `json:"job_id"`
		}
		So(json.Unmarshal(rec.Body.Bytes(), &posted), ShouldBeNil)
		So(posted.JobID, ShouldNotBeEmpty)

		jobRec := doJSON(s.Router(), http.MethodGet, "/api/job/"+posted.JobID, nil)
		So(jobRec.Code, ShouldEqual, http.StatusOK)
	})

	Convey("GET /api/job/<unknown> is a 404", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodGet, "/api/job/does-not-exist", nil)
		So(rec.Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestBonepileMappingRoundTrip(t *testing.T) {
	Convey("POST /api/bonepile/mapping persists and GET /api/bonepile/sheets reflects it", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/bonepile/mapping", bonepileMappingRequest{
			Sheet:     "FLA",
			HeaderRow: 2,
		})
		So(rec.Code, ShouldEqual, http.StatusOK)

		sheetsRec := doJSON(s.Router(), http.MethodGet, "/api/bonepile/sheets", nil)
		So(sheetsRec.Code, ShouldEqual, http.StatusOK)
		So(sheetsRec.Body.String(), ShouldContainSubstring, "FLA")
	})

	Convey("POST /api/bonepile/mapping rejects an empty sheet name", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/bonepile/mapping", bonepileMappingRequest{})
		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestExportCSV(t *testing.T) {
	Convey("POST /api/export with format=csv streams a summary table", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/export", exportRequest{
			StartDatetime: "2026-01-01 00:00:00",
			EndDatetime:   "2026-01-02 00:00:00",
			Export:        "summary",
			Format:        "csv",
		})

		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Header().Get("Content-Type"), ShouldEqual, "text/csv")
		So(rec.Body.String(), ShouldContainSubstring, "metric,tested,pass,fail")
	})

	Convey("POST /api/export rejects an unknown export kind", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/export", exportRequest{
			StartDatetime: "2026-01-01 00:00:00",
			EndDatetime:   "2026-01-02 00:00:00",
			Export:        "not_a_real_export",
			Format:        "csv",
		})

		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestClearCache(t *testing.T) {
	Convey("POST /api/clear-cache leaves the engine usable afterwards", t, func() {
		s, cleanup := newTestServer(t)
		defer cleanup()

		rec := doJSON(s.Router(), http.MethodPost, "/api/clear-cache", nil)
		So(rec.Code, ShouldEqual, http.StatusOK)

		statusRec := doJSON(s.Router(), http.MethodGet, "/api/status", nil)
		So(statusRec.Code, ShouldEqual, http.StatusOK)
	})
}
