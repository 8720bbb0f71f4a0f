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
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TTinTonT/Bonepile-view/aggregate"
	"github.com/TTinTonT/Bonepile-view/export"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

var errUnknownExport = errors.New("httpapi: unknown export")

type exportRequest struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Aggregation   string `json:"aggregation"`
	Export        string `json:"export"`
	Format        string `json:"format"`
}

// postExport serves POST /api/export: formats one of the aggregate views
// as CSV or XLSX and streams it as a download (§6).
func (s *Server) postExport(c *gin.Context) {
	var req exportRequest
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

	table, err := s.buildExportTable(req.Export, w, agg)
	if err != nil {
		badRequest(c, err)

		return
	}

	filename := export.Filename(req.Export, w.StartMs, w.EndMs, exportExt(req.Format))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if req.Format == "xlsx" {
		c.Header("Content-Type", export.XLSXContentType)

		if err := export.WriteXLSX(c.Writer, req.Export, table); err != nil {
			serverError(c, err)
		}

		return
	}

	c.Header("Content-Type", "text/csv")

	if err := export.WriteCSV(c.Writer, table); err != nil {
		serverError(c, err)
	}
}

func exportExt(format string) string {
	if format == "xlsx" {
		return "xlsx"
	}

	return "csv"
}

func (s *Server) buildExportTable(kind string, w aggregate.Window, agg aggregate.Aggregation) (export.Table, error) {
	switch kind {
	case "summary":
		return s.summaryTable(w)
	case "sku":
		return s.skuTable(w)
	case "breakdown":
		return s.breakdownTable(w, agg)
	case "test_flow":
		return s.stationFlowTable(w)
	case "dashboard":
		return s.dashboardTable(w)
	case "disposition_summary":
		return s.dispositionSummaryTable(w, agg)
	default:
		return export.Table{}, fmt.Errorf("%w: %q", errUnknownExport, kind)
	}
}

func cellRow(name string, c aggregate.Cell) []string {
	return []string{name, strconv.Itoa(c.Tested), strconv.Itoa(c.Pass), strconv.Itoa(c.Fail)}
}

func (s *Server) summaryTable(w aggregate.Window) (export.Table, error) {
	summary, err := s.Engine.Aggregator.Summary(w)
	if err != nil {
		return export.Table{}, err
	}

	return export.Table{
		Headers: []string{"metric", "tested", "pass", "fail"},
		Rows: [][]string{
			cellRow("bonepile", summary.BP),
			cellRow("fresh", summary.Fresh),
			cellRow("total", summary.Total),
		},
	}, nil
}

func (s *Server) skuTable(w aggregate.Window) (export.Table, error) {
	rows, err := s.Engine.Aggregator.SKUTable(w)
	if err != nil {
		return export.Table{}, err
	}

	out := export.Table{Headers: []string{"sku", "tested", "pass", "fail"}}

	for _, r := range rows {
		out.Rows = append(out.Rows, []string{r.SKU, strconv.Itoa(r.Tested), strconv.Itoa(r.Pass), strconv.Itoa(r.Fail)})
	}

	return out, nil
}

func (s *Server) breakdownTable(w aggregate.Window, agg aggregate.Aggregation) (export.Table, error) {
	rows, err := s.Engine.Aggregator.TimeBreakdown(w, agg)
	if err != nil {
		return export.Table{}, err
	}

	out := export.Table{Headers: []string{"bucket", "tested", "passed", "bonepile", "fresh", "pass_rate"}}

	for _, r := range rows {
		out.Rows = append(out.Rows, []string{
			r.Bucket,
			strconv.Itoa(r.Tested),
			strconv.Itoa(r.Passed),
			strconv.Itoa(r.Bonepile),
			strconv.Itoa(r.Fresh),
			strconv.FormatFloat(r.PassRate, 'f', 4, 64),
		})
	}

	return out, nil
}

func (s *Server) stationFlowTable(w aggregate.Window) (export.Table, error) {
	flow, err := s.Engine.Aggregator.StationFlow(w)
	if err != nil {
		return export.Table{}, err
	}

	out := export.Table{Headers: []string{"family", "sku", "station", "pass", "fail"}}

	for _, sc := range flow.Totals {
		out.Rows = append(out.Rows, []string{"TOTAL", "", sc.Station, strconv.Itoa(sc.Pass), strconv.Itoa(sc.Fail)})
	}

	for _, group := range flow.BySKU {
		for _, sku := range group.SKUs {
			for _, sc := range sku.Stations {
				out.Rows = append(out.Rows, []string{group.Family, sku.SKU, sc.Station, strconv.Itoa(sc.Pass), strconv.Itoa(sc.Fail)})
			}
		}
	}

	return out, nil
}

// dashboardTable is the all-in-one overview export: the summary matrix
// followed by the station-flow totals, in one sheet.
func (s *Server) dashboardTable(w aggregate.Window) (export.Table, error) {
	summary, err := s.Engine.Aggregator.Summary(w)
	if err != nil {
		return export.Table{}, err
	}

	flow, err := s.Engine.Aggregator.StationFlow(w)
	if err != nil {
		return export.Table{}, err
	}

	out := export.Table{Headers: []string{"metric", "tested", "pass", "fail"}}
	out.Rows = append(out.Rows,
		cellRow("bonepile", summary.BP),
		cellRow("fresh", summary.Fresh),
		cellRow("total", summary.Total),
	)

	for _, sc := range flow.Totals {
		out.Rows = append(out.Rows, cellRow("station:"+sc.Station, aggregate.Cell{Tested: sc.Pass + sc.Fail, Pass: sc.Pass, Fail: sc.Fail}))
	}

	return out, nil
}

func (s *Server) dispositionSummaryTable(w aggregate.Window, agg aggregate.Aggregation) (export.Table, error) {
	kpis, err := s.Engine.Aggregator.DispositionKPIs(&w, agg, caltw.YearOf(w.StartMs))
	if err != nil {
		return export.Table{}, err
	}

	out := export.Table{Headers: []string{"sku", "tested", "pass", "fail"}}

	for sku, c := range kpis.BySKU {
		out.Rows = append(out.Rows, []string{sku, strconv.Itoa(c.Tested), strconv.Itoa(c.Pass), strconv.Itoa(c.Fail)})
	}

	out.Rows = append(out.Rows,
		[]string{"TOTAL", strconv.Itoa(kpis.TotalDispositions), strconv.Itoa(kpis.Complete), strconv.Itoa(kpis.WaitingIGS)},
	)

	return out, nil
}
