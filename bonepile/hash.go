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

package bonepile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const hashRowLimit = 10000

// contentHash computes the SHA-256 over the first 10,000 rows of a sheet:
// every column, pipe-separated, newline-terminated per row, with the row
// count mixed in so truncating the sheet changes the hash too (§4.4 step 1).
func contentHash(rows [][]string) string {
	h := sha256.New()

	fmt.Fprintf(h, "rows:%d\n", len(rows))

	limit := min(len(rows), hashRowLimit)

	for _, row := range rows[:limit] {
		h.Write([]byte(strings.Join(row, "|")))
		h.Write([]byte("\n"))
	}

	return hex.EncodeToString(h.Sum(nil))
}
