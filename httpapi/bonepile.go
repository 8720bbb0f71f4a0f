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
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/TTinTonT/Bonepile-view/aggregate"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

var errMissingSheet = errors.New("httpapi: sheet is required")

// bonepileStatus serves GET /api/bonepile/status: the workbook filename,
// upload time, and per-sheet parse status.
func (s *Server) bonepileStatus(c *gin.Context) {
	st, err := s.Engine.State.Load()
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workbook_filename":    st.WorkbookFilename,
		"workbook_uploaded_ms": st.WorkbookUploadedMs,
		"sheet_statuses":       st.SheetStatuses,
	})
}

// bonepileSheets serves GET /api/bonepile/sheets: the saved column mapping
// per sheet, for the mapping-editor UI.
func (s *Server) bonepileSheets(c *gin.Context) {
	st, err := s.Engine.State.Load()
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"sheet_mappings": st.SheetMappings})
}

// bonepileUpload serves POST /api/bonepile/upload: replaces the uploaded
// workbook via temp-file + rename (§6 "one uploaded workbook file") and
// triggers a parse of every allowed sheet.
func (s *Server) bonepileUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("workbook")
	if err != nil {
		badRequest(c, err)

		return
	}

	dest := s.Engine.WorkbookPath()

	tmp := dest + ".upload.tmp"
	if err := c.SaveUploadedFile(fileHeader, tmp); err != nil {
		serverError(c, err)

		return
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		serverError(c, err)

		return
	}

	now := caltw.Now().UnixMilli()

	if _, err := s.Engine.State.Update(func(st *scanstate.State) {
		st.WorkbookFilename = fileHeader.Filename
		st.WorkbookUploadedMs = now
	}); err != nil {
		serverError(c, err)

		return
	}

	id := s.Engine.TriggerParseAll()

	c.JSON(http.StatusOK, gin.H{"job_id": id})
}

type bonepileMappingRequest struct {
	Sheet     string                      `json:"sheet"`
	HeaderRow int                         `json:"header_row"`
	Fields    map[string]scanstate.Column `json:"fields"`
}

// bonepileMapping serves POST /api/bonepile/mapping: saves a per-sheet
// column mapping override (§4.4 / §9 Design Note).
func (s *Server) bonepileMapping(c *gin.Context) {
	var req bonepileMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	if req.Sheet == "" {
		badRequest(c, errMissingSheet)

		return
	}

	if _, err := s.Engine.State.Update(func(st *scanstate.State) {
		if st.SheetMappings == nil {
			st.SheetMappings = map[string]scanstate.SheetMapping{}
		}

		st.SheetMappings[req.Sheet] = scanstate.SheetMapping{HeaderRow: req.HeaderRow, Fields: req.Fields}
	}); err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type bonepileParseRequest struct {
	Sheet string `json:"sheet"`
}

// bonepileParse serves POST /api/bonepile/parse: re-parses the named sheet,
// bypassing the content-hash skip so a mapping change takes effect
// immediately. With no sheet given it parses every allowed sheet, and
// sheets whose content hash is unchanged are skipped.
func (s *Server) bonepileParse(c *gin.Context) {
	var req bonepileParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	var id string

	if req.Sheet == "" {
		id = s.Engine.TriggerParseAll()
	} else {
		id = s.Engine.TriggerParse(req.Sheet)
	}

	c.JSON(http.StatusOK, gin.H{"job_id": id})
}

// bonepileDisposition serves GET /api/bonepile/disposition: the NV-
// Disposition KPI tiles of §4.5.7. An empty window means unwindowed.
func (s *Server) bonepileDisposition(c *gin.Context) {
	startStr := c.Query("start_datetime")
	endStr := c.Query("end_datetime")
	agg := parseAggregation(c.Query("aggregation"))

	var w *aggregate.Window

	if startStr != "" || endStr != "" {
		parsed, err := parseWindow(startStr, endStr)
		if err != nil {
			badRequest(c, err)

			return
		}

		w = &parsed
	}

	kpis, err := s.Engine.Aggregator.DispositionKPIs(w, agg, caltw.Now().Year())
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, kpis)
}

type dispositionSNListRequest struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Aggregation   string `json:"aggregation"`
	Metric        string `json:"metric"`
	SKU           string `json:"sku"`
	Period        string `json:"period"`
}

// bonepileDispositionSNList serves POST /api/bonepile/disposition/sn-list:
// the serials contributing to one disposition KPI cell.
func (s *Server) bonepileDispositionSNList(c *gin.Context) {
	var req dispositionSNListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	agg := parseAggregation(req.Aggregation)

	var w *aggregate.Window

	if req.StartDatetime != "" || req.EndDatetime != "" {
		parsed, err := parseWindow(req.StartDatetime, req.EndDatetime)
		if err != nil {
			badRequest(c, err)

			return
		}

		w = &parsed
	}

	rows, err := s.Engine.Aggregator.DispositionDrillDown(w, agg, caltw.Now().Year(), req.Metric, req.SKU, req.Period)
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
