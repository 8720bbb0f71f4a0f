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

package aggregate

import "sort"

// SKURow is one row of the SKU table (§4.5.3).
type SKURow struct {
	SKU string `json:"sku"`
	Cell
}

// SKUTable computes per-SKU tested/pass/fail over unique serials, sorted by
// -tested, sku.
func (a *Aggregator) SKUTable(w Window) ([]SKURow, error) {
	rows, err := a.rows(w)
	if err != nil {
		return nil, err
	}

	cells := map[string]*Cell{}

	for _, serialRows := range bySerial(rows) {
		sku := latestRow(serialRows).PartNumber
		if sku == "" {
			sku = "Unknown"
		}

		c, ok := cells[sku]
		if !ok {
			c = &Cell{}
			cells[sku] = c
		}

		c.add(hasFinalPass(serialRows))
	}

	table := make([]SKURow, 0, len(cells))

	for sku, c := range cells {
		c.finish()
		table = append(table, SKURow{SKU: sku, Cell: *c})
	}

	sort.Slice(table, func(i, j int) bool {
		if table[i].Tested != table[j].Tested {
			return table[i].Tested > table[j].Tested
		}

		return table[i].SKU < table[j].SKU
	})

	return table, nil
}
