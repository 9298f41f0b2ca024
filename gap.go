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
	"container/heap"
	"math"
)

// gap is the scalar weight separating two adjacent bins (spec §3, "Gap").
// Gaps are stored by value — the two means, not pointers to Bins — so the
// reservoir can resolve the current bin state through its ordered map
// without the gap queue and the bin map ever holding cyclic references.
type gap struct {
	leftMean, rightMean, weight float64
}

// gapWeight computes a Gap's ordering weight: plain distance, or distance
// scaled by ln(e + min(count)) when the reservoir is gap-weighted so that
// densely populated regions are merged last.
func gapWeight(left, right Bin, weighted bool) float64 {
	d := right.Mean - left.Mean
	if !weighted {
		return d
	}
	return d * math.Log(math.E+math.Min(left.Count, right.Count))
}

func newGap(left, right Bin, weighted bool) gap {
	return gap{leftMean: left.Mean, rightMean: right.Mean, weight: gapWeight(left, right, weighted)}
}

// less orders gaps by (weight, left_mean) with lexicographic tie-break,
// per spec §3.
func (g gap) less(o gap) bool {
	if g.weight != o.weight {
		return g.weight < o.weight
	}
	return g.leftMean < o.leftMean
}

// gapItem is the heap element; idx is maintained by the heap so gapQueue
// can support removal-by-left-endpoint in O(log B) via the side index.
type gapItem struct {
	gap
	idx int
}

// gapQueue is a priority queue of Gaps keyed by (weight, left_mean),
// supporting extract-min and removal by left endpoint — the classic
// container/heap "indexed priority queue" pattern from the standard
// library's own heap.Interface documentation, extended with a side map.
type gapQueue struct {
	items []*gapItem
	index map[float64]int // leftMean -> items[] position
}

func newGapQueue() *gapQueue {
	return &gapQueue{index: map[float64]int{}}
}

func (q *gapQueue) Len() int { return len(q.items) }
func (q *gapQueue) Less(i, j int) bool { return q.items[i].gap.less(q.items[j].gap) }
func (q *gapQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].idx = i
	q.items[j].idx = j
	q.index[q.items[i].leftMean] = i
	q.index[q.items[j].leftMean] = j
}
func (q *gapQueue) Push(x interface{}) {
	item := x.(*gapItem)
	item.idx = len(q.items)
	q.index[item.leftMean] = item.idx
	q.items = append(q.items, item)
}
func (q *gapQueue) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items = q.items[:n-1]
	delete(q.index, item.leftMean)
	return item
}

// push inserts a new gap. The caller is responsible for having already
// removed any stale gap for the same left endpoint.
func (q *gapQueue) push(g gap) {
	heap.Push(q, &gapItem{gap: g})
}

// popMin extracts the minimum-weight gap, if any.
func (q *gapQueue) popMin() (gap, bool) {
	if len(q.items) == 0 {
		return gap{}, false
	}
	item := heap.Pop(q).(*gapItem)
	return item.gap, true
}

// removeByLeft deletes the gap whose left endpoint is leftMean, if present.
func (q *gapQueue) removeByLeft(leftMean float64) bool {
	i, ok := q.index[leftMean]
	if !ok {
		return false
	}
	heap.Remove(q, i)
	return true
}

func (q *gapQueue) len() int { return len(q.items) }
