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

import (
	"fmt"
	"sort"

	"github.com/TTinTonT/Bonepile-view/cache"
)

// Aggregation selects the time-bucket granularity. Hourly is a
// supplemented bucket, additive to the daily/weekly/monthly set (§4.5.5).
type Aggregation string

const (
	Daily   Aggregation = "daily"
	Weekly  Aggregation = "weekly"
	Monthly Aggregation = "monthly"
	Hourly  Aggregation = "hourly"
)

var errUnknownAggregation = fmt.Errorf("aggregate: unknown aggregation")

// BucketRow is one time bucket's tested/passed/bonepile/fresh counts.
type BucketRow struct {
	Bucket   string  `json:"bucket"`
	Tested   int     `json:"tested"`
	Passed   int     `json:"passed"`
	Bonepile int     `json:"bonepile"`
	Fresh    int     `json:"fresh"`
	PassRate float64 `json:"pass_rate"`
}

func bucketKey(agg Aggregation, r cache.RawEntry) (string, error) {
	switch agg {
	case Daily:
		return r.CaDate, nil
	case Weekly:
		return r.CaWeek, nil
	case Monthly:
		return r.CaMonth, nil
	case Hourly:
		return r.CaHour, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownAggregation, agg)
	}
}

// TimeBreakdown buckets serials by agg: a serial appearing in multiple
// buckets is counted in each (§4.5.5).
func (a *Aggregator) TimeBreakdown(w Window, agg Aggregation) ([]BucketRow, error) {
	rows, err := a.rows(w)
	if err != nil {
		return nil, err
	}

	buckets := map[string]map[string][]cache.RawEntry{}

	for _, r := range rows {
		key, err := bucketKey(agg, r)
		if err != nil {
			return nil, err
		}

		if buckets[key] == nil {
			buckets[key] = map[string][]cache.RawEntry{}
		}

		buckets[key][r.SN] = append(buckets[key][r.SN], r)
	}

	result := make([]BucketRow, 0, len(buckets))

	for bucket, serials := range buckets {
		row := BucketRow{Bucket: bucket}

		for _, serialRows := range serials {
			row.Tested++

			if hasFinalPass(serialRows) {
				row.Passed++
			}

			if isBonepileSerial(serialRows) {
				row.Bonepile++
			}
		}

		row.Fresh = row.Tested - row.Bonepile

		if row.Tested > 0 {
			row.PassRate = float64(row.Passed) / float64(row.Tested)
		}

		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Bucket < result[j].Bucket })

	return result, nil
}
