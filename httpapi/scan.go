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

	"github.com/gin-gonic/gin"
)

var errJobNotFound = errors.New("httpapi: job not found")

type scanRequest struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
}

// postScan serves POST /api/scan: enqueues a manual scan job and returns
// its id immediately (§5).
func (s *Server) postScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	w, err := parseWindow(req.StartDatetime, req.EndDatetime)
	if err != nil {
		badRequest(c, err)

		return
	}

	id := s.Engine.TriggerScan(w.StartMs, w.EndMs)

	c.JSON(http.StatusOK, gin.H{"job_id": id})
}

// getJob serves GET /api/job/<id>.
func (s *Server) getJob(c *gin.Context) {
	job, ok := s.Engine.Jobs.Get(c.Param("id"))
	if !ok {
		jsonError(c, http.StatusNotFound, errJobNotFound)

		return
	}

	c.JSON(http.StatusOK, job)
}

// postClearCache serves POST /api/clear-cache: drops the DB file, state
// file, and workbook upload, then re-initializes (§4.7).
func (s *Server) postClearCache(c *gin.Context) {
	if err := s.Engine.ClearCache(); err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
