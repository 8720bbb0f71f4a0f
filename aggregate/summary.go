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

// Cell is one {tested, pass, fail} triple.
type Cell struct {
	Tested int `json:"tested"`
	Pass   int `json:"pass"`
	Fail   int `json:"fail"`
}

func (c *Cell) add(pass bool) {
	c.Tested++

	if pass {
		c.Pass++
	}
}

func (c *Cell) finish() {
	c.Fail = c.Tested - c.Pass
}

// Summary is the bp/fresh/total x tested/pass/fail matrix of §4.5.1.
type Summary struct {
	BP    Cell `json:"bp"`
	Fresh Cell `json:"fresh"`
	Total Cell `json:"total"`

	Coverage Coverage `json:"coverage"`
}

// Summary computes the summary matrix over w.
func (a *Aggregator) Summary(w Window) (Summary, error) {
	rows, err := a.rows(w)
	if err != nil {
		return Summary{}, err
	}

	cov, err := a.coverage(w)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary

	for _, serialRows := range bySerial(rows) {
		pass := hasFinalPass(serialRows)
		bp := isBonepileSerial(serialRows)

		sum.Total.add(pass)

		if bp {
			sum.BP.add(pass)
		} else {
			sum.Fresh.add(pass)
		}
	}

	sum.Total.finish()
	sum.BP.finish()
	sum.Fresh.finish()
	sum.Coverage = cov

	return sum, nil
}
