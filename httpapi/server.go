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

// Package httpapi is the HTTP Surface of §4.7: a plain gin.Engine (the
// source's auth wrapper is out of scope per §1's single-site non-goal)
// exposing status/SSE, scan, query, export, and bonepile workbook routes
// over an engine.Engine.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TTinTonT/Bonepile-view/engine"
)

// Server wraps an Engine with the gin routes of §4.7.
type Server struct {
	Engine *engine.Engine
}

// New builds a Server over e.
func New(e *engine.Engine) *Server {
	return &Server{Engine: e}
}

// Router builds the gin.Engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.dashboard)

	api := r.Group("/api")
	api.GET("/status", s.status)
	api.GET("/events", s.events)
	api.POST("/scan", s.postScan)
	api.GET("/job/:id", s.getJob)
	api.POST("/clear-cache", s.postClearCache)
	api.POST("/query", s.postQuery)
	api.POST("/sn-list", s.postSNList)
	api.POST("/export", s.postExport)

	bp := api.Group("/bonepile")
	bp.GET("/status", s.bonepileStatus)
	bp.GET("/sheets", s.bonepileSheets)
	bp.POST("/upload", s.bonepileUpload)
	bp.POST("/mapping", s.bonepileMapping)
	bp.POST("/parse", s.bonepileParse)
	bp.GET("/disposition", s.bonepileDisposition)
	bp.POST("/disposition/sn-list", s.bonepileDispositionSNList)

	return r
}

// dashboard renders the external dashboard page; this core leaves the
// HTML itself to that external collaborator (§1) and serves a stub.
func (s *Server) dashboard(c *gin.Context) {
	c.String(http.StatusOK, "bonepile-view")
}

func jsonError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	jsonError(c, http.StatusBadRequest, err)
}

func serverError(c *gin.Context, err error) {
	jsonError(c, http.StatusInternalServerError, err)
}
