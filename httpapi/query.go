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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TTinTonT/Bonepile-view/aggregate"
)

type queryRequest struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Aggregation   string `json:"aggregation"`
}

const skuTableLimit = 200

type queryResponse struct {
	Summary        aggregate.Summary       `json:"summary"`
	SKURows        []aggregate.SKURow      `json:"sku_rows"`
	Breakdown      []aggregate.BucketRow   `json:"breakdown"`
	StationFlow    aggregate.StationFlow   `json:"station_flow"`
	Counts         aggregate.Cell          `json:"counts"`
	Coverage       aggregate.Coverage      `json:"coverage"`
	IsFullyCovered bool                    `json:"is_fully_covered"`
}

// postQuery serves POST /api/query: the dashboard's main time-windowed
// aggregation payload (§4.7).
func (s *Server) postQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	w, err := parseWindow(req.StartDatetime, req.EndDatetime)
	if err != nil {
		badRequest(c, err)

		return
	}

	agg := parseAggregation(req.Aggregation)

	resp, err := s.buildQueryResponse(w, agg)
	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildQueryResponse(w aggregate.Window, agg aggregate.Aggregation) (queryResponse, error) {
	summary, err := s.Engine.Aggregator.Summary(w)
	if err != nil {
		return queryResponse{}, err
	}

	skuRows, err := s.Engine.Aggregator.SKUTable(w)
	if err != nil {
		return queryResponse{}, err
	}

	if len(skuRows) > skuTableLimit {
		skuRows = skuRows[:skuTableLimit]
	}

	breakdown, err := s.Engine.Aggregator.TimeBreakdown(w, agg)
	if err != nil {
		return queryResponse{}, err
	}

	flow, err := s.Engine.Aggregator.StationFlow(w)
	if err != nil {
		return queryResponse{}, err
	}

	return queryResponse{
		Summary:        summary,
		SKURows:        skuRows,
		Breakdown:      breakdown,
		StationFlow:    flow,
		Counts:         summary.Total,
		Coverage:       summary.Coverage,
		IsFullyCovered: summary.Coverage.IsFullyCovered,
	}, nil
}

type snListRequest struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	SKU           string `json:"sku"`
	Station       string `json:"station"`
	Outcome       string `json:"outcome"`
}

// postSNList serves POST /api/sn-list: the per-serial drill-down of
// §4.5.6, in its three shapes (overall / station+outcome / station+both).
func (s *Server) postSNList(c *gin.Context) {
	var req snListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	w, err := parseWindow(req.StartDatetime, req.EndDatetime)
	if err != nil {
		badRequest(c, err)

		return
	}

	var rows []aggregate.DrillDownRow

	if req.Station == "" {
		rows, err = s.Engine.Aggregator.DrillDownOverall(w, req.SKU)
	} else {
		rows, err = s.Engine.Aggregator.DrillDownStation(w, req.Station, aggregate.DrillDownOutcome(req.Outcome), req.SKU)
	}

	if err != nil {
		serverError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
