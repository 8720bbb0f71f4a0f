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

	"github.com/TTinTonT/Bonepile-view/aggregate"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

var (
	errMissingDatetimes = errors.New("httpapi: start_datetime and end_datetime are required")
	errStartInFuture    = errors.New("httpapi: start_datetime must not be in the future")
	errEndNotAfterStart = errors.New("httpapi: end_datetime must be after start_datetime")
)

// parseWindow parses the two datetime strings into a Window, applying the
// client-input validation of §7: missing datetimes, bad format, start in
// the future, or end <= start are all rejected with a 400. An end after now
// is clamped to now.
func parseWindow(startStr, endStr string) (aggregate.Window, error) {
	if startStr == "" || endStr == "" {
		return aggregate.Window{}, errMissingDatetimes
	}

	start, err := caltw.ParseDateTime(startStr)
	if err != nil {
		return aggregate.Window{}, err
	}

	end, err := caltw.ParseDateTime(endStr)
	if err != nil {
		return aggregate.Window{}, err
	}

	if start.After(caltw.Now()) {
		return aggregate.Window{}, errStartInFuture
	}

	if now := caltw.Now(); end.After(now) {
		end = now
	}

	if !end.After(start) {
		return aggregate.Window{}, errEndNotAfterStart
	}

	return aggregate.Window{StartMs: start.UnixMilli(), EndMs: end.UnixMilli()}, nil
}

func parseAggregation(s string) aggregate.Aggregation {
	switch aggregate.Aggregation(s) {
	case aggregate.Weekly, aggregate.Monthly, aggregate.Hourly:
		return aggregate.Aggregation(s)
	default:
		return aggregate.Daily
	}
}
