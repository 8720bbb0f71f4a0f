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
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const sseInterval = 2 * time.Second

// status serves GET /api/status: a snapshot of cache/scan coverage,
// retention, and bonepile workbook state.
func (s *Server) status(c *gin.Context) {
	st, err := s.Engine.Status()
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, st)
}

// events serves GET /api/events: an SSE stream that recomputes the status
// payload on an interval and writes a "status" event only when it changes
// from the last one sent (§4.7, §9 "change-detection").
func (s *Server) events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(sseInterval)
	defer ticker.Stop()

	var lastPayload string

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
			st, err := s.Engine.Status()
			if err != nil {
				c.SSEvent("error", gin.H{"error": err.Error()})

				return true
			}

			encoded, err := json.Marshal(st)
			if err != nil {
				c.SSEvent("error", gin.H{"error": err.Error()})

				return true
			}

			if string(encoded) == lastPayload {
				return true
			}

			lastPayload = string(encoded)

			c.SSEvent("status", st)

			return true
		}
	})
}
