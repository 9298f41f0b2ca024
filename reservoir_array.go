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

import "sort"

// arrayBins is the default reservoir backend for bins <= 256: a sorted
// slice searched with sort.Search, winning on cache locality at small B.
// Grounded in the pack's own Ben-Haim/Tom-Tov port
// (histosketch.Sketch, which keeps its centroids in a sorted []centroid
// and uses sort.Search the same way) and in hstg's ordered bin list.
type arrayBins struct {
	bins []Bin
}

func newArrayBins() *arrayBins {
	return &arrayBins{}
}

func (a *arrayBins) len() int { return len(a.bins) }

// indexGE returns the first index i such that a.bins[i].Mean >= mean.
func (a *arrayBins) indexGE(mean float64) int {
	return sort.Search(len(a.bins), func(i int) bool { return a.bins[i].Mean >= mean })
}

// indexGT returns the first index i such that a.bins[i].Mean > mean.
func (a *arrayBins) indexGT(mean float64) int {
	return sort.Search(len(a.bins), func(i int) bool { return a.bins[i].Mean > mean })
}

func (a *arrayBins) get(mean float64) (Bin, bool) {
	i := a.indexGE(mean)
	if i < len(a.bins) && a.bins[i].Mean == mean {
		return a.bins[i], true
	}
	return Bin{}, false
}

func (a *arrayBins) floor(mean float64) (Bin, bool) {
	i := a.indexGE(mean)
	if i < len(a.bins) && a.bins[i].Mean == mean {
		return a.bins[i], true
	}
	i--
	if i >= 0 {
		return a.bins[i], true
	}
	return Bin{}, false
}

func (a *arrayBins) ceil(mean float64) (Bin, bool) {
	i := a.indexGE(mean)
	if i < len(a.bins) {
		return a.bins[i], true
	}
	return Bin{}, false
}

func (a *arrayBins) lower(mean float64) (Bin, bool) {
	i := a.indexGE(mean) - 1
	if i >= 0 {
		return a.bins[i], true
	}
	return Bin{}, false
}

func (a *arrayBins) higher(mean float64) (Bin, bool) {
	i := a.indexGT(mean)
	if i < len(a.bins) {
		return a.bins[i], true
	}
	return Bin{}, false
}

func (a *arrayBins) first() (Bin, bool) {
	if len(a.bins) == 0 {
		return Bin{}, false
	}
	return a.bins[0], true
}

func (a *arrayBins) last() (Bin, bool) {
	if len(a.bins) == 0 {
		return Bin{}, false
	}
	return a.bins[len(a.bins)-1], true
}

func (a *arrayBins) put(b Bin) {
	i := a.indexGE(b.Mean)
	if i < len(a.bins) && a.bins[i].Mean == b.Mean {
		a.bins[i] = b
		return
	}
	a.bins = append(a.bins, Bin{})
	copy(a.bins[i+1:], a.bins[i:])
	a.bins[i] = b
}

func (a *arrayBins) delete(mean float64) {
	i := a.indexGE(mean)
	if i >= len(a.bins) || a.bins[i].Mean != mean {
		return
	}
	copy(a.bins[i:], a.bins[i+1:])
	a.bins = a.bins[:len(a.bins)-1]
}

func (a *arrayBins) ascend(fn func(Bin)) {
	for _, b := range a.bins {
		fn(b)
	}
}
