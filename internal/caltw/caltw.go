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

// Package caltw converts between the two wall-clocks this system cares about:
// California-local (the timezone every window and bucket in the Aggregator is
// expressed in) and Taiwan-local (the timezone the share's day directories are
// laid out in).
package caltw

import "time"

// California and Taiwan are the two IANA zones this system straddles. Taiwan
// has no DST; California does, so a fixed offset can't be used for it.
var (
	California *time.Location //nolint:gochecknoglobals
	Taiwan     *time.Location //nolint:gochecknoglobals
)

func init() {
	var err error

	if California, err = time.LoadLocation("America/Los_Angeles"); err != nil {
		panic("caltw: failed to load America/Los_Angeles: " + err.Error())
	}

	if Taiwan, err = time.LoadLocation("Asia/Taipei"); err != nil {
		panic("caltw: failed to load Asia/Taipei: " + err.Error())
	}
}

const dateLayout = "2006-01-02"

// Now returns the current instant as a California-local time.
func Now() time.Time {
	return time.Now().In(California)
}

// TaiwanDatesCovering returns the set of Taiwan-local calendar dates (in
// YYYY/MM/DD share-path form) that could possibly hold files whose California
// wall-clock timestamp falls in [start, end], given a one-day margin on each
// side to cover timezone boundary crossings (§3).
func TaiwanDatesCovering(start, end time.Time) []string {
	marginStart := start.AddDate(0, 0, -1)
	marginEnd := end.AddDate(0, 0, 1)

	twStart := marginStart.In(Taiwan)
	twEnd := marginEnd.In(Taiwan)

	dates := make([]string, 0)

	for d := dayStart(twStart); !d.After(dayStart(twEnd)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006/01/02"))
	}

	return dates
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CaDate returns the California-local calendar date bucket, YYYY-MM-DD.
func CaDate(caMs int64) string {
	return msToCa(caMs).Format(dateLayout)
}

// CaHour returns the California-local hour bucket, YYYY-MM-DD HH.
func CaHour(caMs int64) string {
	return msToCa(caMs).Format("2006-01-02 15")
}

// CaMonth returns the California-local month bucket, YYYY-MM.
func CaMonth(caMs int64) string {
	return msToCa(caMs).Format("2006-01")
}

// CaWeek returns the Sunday-start inclusive week range covering caMs, as
// "YYYY-MM-DD~YYYY-MM-DD".
func CaWeek(caMs int64) string {
	t := msToCa(caMs)
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	saturday := sunday.AddDate(0, 0, 6) //nolint:mnd

	return sunday.Format(dateLayout) + "~" + saturday.Format(dateLayout)
}

func msToCa(ms int64) time.Time {
	return time.UnixMilli(ms).In(California)
}

// ParseCaWallClock parses the filename's YYYYMMDDTHHMMSSZ suffix as a naive
// California-local wall clock (despite the trailing Z, per §3's
// timestamp_mode note: this is not UTC) and returns the equivalent instant.
// The trailing "Z" is treated as a literal character here, never as a UTC
// zone designator.
func ParseCaWallClock(s string) (time.Time, error) {
	naive, err := time.Parse("20060102T150405Z", s)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, California), nil
}

// BuildCaDate returns the California-local midnight instant for the given
// calendar date, used to anchor mm/dd-only dispositions to a concrete year
// (§9 "Excel serial date ambiguity").
func BuildCaDate(year, month, day int) (time.Time, error) {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, California), nil
}

// YearOf returns the California-local calendar year of caMs.
func YearOf(caMs int64) int {
	return msToCa(caMs).Year()
}

// ParseDateTime accepts "YYYY-MM-DD HH:MM" (treated as inclusive through
// HH:MM:59) or "YYYY-MM-DD HH:MM:SS", both California-local, per §4.7.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, California); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", s, California)
	if err != nil {
		return time.Time{}, err
	}

	return t.Add(59 * time.Second), nil
}
