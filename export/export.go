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

// Package export formats a Table as CSV or XLSX, per §6: CSV cells that
// look like an Excel-coercible date or a long numeric id are emitted as
// text formulas so Excel doesn't silently reinterpret them, and XLSX
// downloads use the Office MIME type.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type XLSX downloads are served with.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is a plain header-plus-rows shape; every cell is pre-formatted to
// its display string by the caller.
type Table struct {
	Headers []string
	Rows    [][]string
}

var (
	looksLikeDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	looksLikeLongID = regexp.MustCompile(`^\d{10,}$`)
)

// needsTextFormula reports whether Excel would silently coerce cell into a
// date or a float, losing its literal text (§6).
func needsTextFormula(cell string) bool {
	return looksLikeDate.MatchString(cell) || looksLikeLongID.MatchString(cell)
}

// WriteCSV streams t as CSV to w, escaping Excel-coercible cells as text
// formulas (`="…"`).
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("export: writing csv header: %w", err)
	}

	for _, row := range t.Rows {
		out := make([]string, len(row))

		for i, cell := range row {
			out[i] = escapeCSVCell(cell)
		}

		if err := cw.Write(out); err != nil {
			return fmt.Errorf("export: writing csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func escapeCSVCell(cell string) string {
	if needsTextFormula(cell) {
		return `="` + cell + `"`
	}

	return cell
}

// WriteXLSX streams t as a single-sheet XLSX workbook to w. Cells are
// written as plain strings via SetCellStr so Excel's own type-coercion
// never applies, matching the CSV text-formula guard's intent without
// needing the formula escape in a native spreadsheet format.
func WriteXLSX(w io.Writer, sheetName string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("export: creating sheet: %w", err)
	}

	f.SetActiveSheet(index)

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	for col, h := range t.Headers {
		cellRef, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(sheetName, cellRef, h); err != nil {
			return fmt.Errorf("export: writing header cell: %w", err)
		}
	}

	for rowIdx, row := range t.Rows {
		for col, cell := range row {
			cellRef, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellStr(sheetName, cellRef, cell); err != nil {
				return fmt.Errorf("export: writing cell: %w", err)
			}
		}
	}

	return f.Write(w)
}

// Filename builds the window-tagged download filename of §6: "<export>_
// <start>_<end>.<ext>", dates formatted in the process's local time zone.
func Filename(export string, startMs, endMs int64, ext string) string {
	start := time.UnixMilli(startMs).Format("20060102")
	end := time.UnixMilli(endMs).Format("20060102")

	return fmt.Sprintf("%s_%s_%s.%s", export, start, end, ext)
}
