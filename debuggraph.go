// Copyright (c) 2015 Couchbase, Inc.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the
// License. You may obtain a copy of the License at
//   http://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an "AS
// IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language
// governing permissions and limitations under the License.

package histogram

import (
	"bytes"
	"fmt"
	"math"
)

var graphBar = []byte("##############################")

// Graph emits an ASCII bar chart of the reservoir to the optional out
// buffer, allocating one if none was supplied, and returns it. Each line
// may carry an optional prefix. Unlike a fixed-range histogram's bins,
// these bins carry no natural width label, so each line is keyed by mean.
//
// For example:
//       histogram (3 bins, 4 total)
//       [mean     1.0000] count          2   50.00% ##############################
//       [mean     2.0000] count          1   25.00% ###############
//       [mean     3.0000] count          1   25.00% ###############
func (h *Histogram) Graph(prefix []byte, out *bytes.Buffer) *bytes.Buffer {
	bins := h.res.ascendAll()
	if out == nil {
		out = bytes.NewBuffer(make([]byte, 0, 80*len(bins)))
	}
	barLen := float64(len(graphBar))

	var maxCount float64
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	fmt.Fprintf(out, "histogram (%v bins, %v total)\n", len(bins), h.totalCount)
	for _, b := range bins {
		if prefix != nil {
			out.Write(prefix)
		}
		pct := 0.0
		if h.totalCount > 0 {
			pct = 100.0 * (b.Count / h.totalCount)
		}
		fmt.Fprintf(out, "[mean %10.4f] count %10v %7.2f%%", b.Mean, b.Count, pct)

		out.Write([]byte(" "))
		barWant := 0
		if maxCount > 0 {
			barWant = int(math.Floor(barLen * (b.Count / maxCount)))
		}
		out.Write(graphBar[0:barWant])
		out.Write([]byte("\n"))
	}

	if missing, ok := h.MissingBin(); ok {
		if prefix != nil {
			out.Write(prefix)
		}
		fmt.Fprintf(out, "[missing        ] count %10v\n", missing.Count)
	}

	return out
}

// String renders the same ASCII bar chart as Graph, with no line prefix.
func (h *Histogram) String() string {
	return h.Graph(nil, nil).String()
}
