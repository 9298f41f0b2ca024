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

import "github.com/google/btree"

// treeDegree mirrors the degree TiDB's statistics package and the other
// pack manifests requiring google/btree settle on for small-to-medium
// ordered sets; it is not user-tunable since Reservoir semantics must not
// depend on it.
const treeDegree = 32

// binItem adapts Bin to btree.Item, ordering purely by Mean — invariant
// I1 (pairwise distinct, sorted means) guarantees this is a total order.
type binItem struct {
	b Bin
}

func (i binItem) Less(than btree.Item) bool {
	return i.b.Mean < than.(binItem).b.Mean
}

// treeBins is the tree-backed reservoir, the default once bins > 256: a
// google/btree.BTree wins over the array backend at that size because
// insert/delete no longer need an O(B) slice shift.
type treeBins struct {
	t *btree.BTree
	n int
}

func newTreeBins() *treeBins {
	return &treeBins{t: btree.New(treeDegree)}
}

func (t *treeBins) len() int { return t.n }

func (t *treeBins) get(mean float64) (Bin, bool) {
	item := t.t.Get(binItem{Bin{Mean: mean}})
	if item == nil {
		return Bin{}, false
	}
	return item.(binItem).b, true
}

func (t *treeBins) floor(mean float64) (Bin, bool) {
	var found Bin
	ok := false
	t.t.DescendLessOrEqual(binItem{Bin{Mean: mean}}, func(i btree.Item) bool {
		found = i.(binItem).b
		ok = true
		return false
	})
	return found, ok
}

func (t *treeBins) ceil(mean float64) (Bin, bool) {
	var found Bin
	ok := false
	t.t.AscendGreaterOrEqual(binItem{Bin{Mean: mean}}, func(i btree.Item) bool {
		found = i.(binItem).b
		ok = true
		return false
	})
	return found, ok
}

func (t *treeBins) lower(mean float64) (Bin, bool) {
	var found Bin
	ok := false
	t.t.DescendLessOrEqual(binItem{Bin{Mean: mean}}, func(i btree.Item) bool {
		b := i.(binItem).b
		if b.Mean < mean {
			found = b
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

func (t *treeBins) higher(mean float64) (Bin, bool) {
	var found Bin
	ok := false
	t.t.AscendGreaterOrEqual(binItem{Bin{Mean: mean}}, func(i btree.Item) bool {
		b := i.(binItem).b
		if b.Mean > mean {
			found = b
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

func (t *treeBins) first() (Bin, bool) {
	item := t.t.Min()
	if item == nil {
		return Bin{}, false
	}
	return item.(binItem).b, true
}

func (t *treeBins) last() (Bin, bool) {
	item := t.t.Max()
	if item == nil {
		return Bin{}, false
	}
	return item.(binItem).b, true
}

func (t *treeBins) put(b Bin) {
	old := t.t.ReplaceOrInsert(binItem{b})
	if old == nil {
		t.n++
	}
}

func (t *treeBins) delete(mean float64) {
	old := t.t.Delete(binItem{Bin{Mean: mean}})
	if old != nil {
		t.n--
	}
}

func (t *treeBins) ascend(fn func(Bin)) {
	t.t.Ascend(func(i btree.Item) bool {
		fn(i.(binItem).b)
		return true
	})
}
