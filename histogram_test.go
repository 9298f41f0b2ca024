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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidBins(t *testing.T) {
	_, err := New(WithBins(0))
	require.Error(t, err)
}

func TestInsertLatchesTargetType(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.Insert(ptr(1.0)))
	require.Equal(t, TargetNone, h.TargetType())

	err = h.InsertNumeric(ptr(2.0), ptr(3.0))
	require.Error(t, err)

	var herr *Error
	require.True(t, errors.As(err, &herr))
	require.Equal(t, KindTypeMismatch, herr.Kind)
}

func TestInsertMissingBookkeeping(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.Insert(nil))
	require.NoError(t, h.Insert(ptr(1.0)))

	require.Equal(t, 1.0, h.MissingCount())
	require.Equal(t, 2.0, h.TotalCount())
	require.Equal(t, 1, h.Len())
}

func TestInsertCategoricalUnknownCategory(t *testing.T) {
	h, err := New(WithBins(8), WithCategories("foo", "bar"))
	require.NoError(t, err)
	err = h.InsertCategorical(ptr(1.0), ptrStr("qux"))
	require.Error(t, err)

	var herr *Error
	require.True(t, errors.As(err, &herr))
	require.Equal(t, KindUnknownCategory, herr.Kind)
}

// S5. Categorical with missing.
func TestScenarioCategoricalWithMissing(t *testing.T) {
	h, err := New(WithBins(2), WithCategories("foo", "bar"))
	require.NoError(t, err)

	require.NoError(t, h.InsertCategorical(ptr(1.0), ptrStr("foo")))
	require.NoError(t, h.InsertCategorical(ptr(1.0), nil))
	require.NoError(t, h.InsertCategorical(ptr(4.0), ptrStr("bar")))
	require.NoError(t, h.InsertCategorical(ptr(6.0), nil))

	bins := h.Bins()
	require.Len(t, bins, 2)

	require.Equal(t, 1.0, bins[0].Mean)
	require.Equal(t, 2.0, bins[0].Count)
	at0 := bins[0].Target.(*categoricalArrayTarget)
	require.Equal(t, []float64{1, 0}, at0.Counts)
	require.Equal(t, 1.0, at0.Missing)

	require.Equal(t, 5.0, bins[1].Mean)
	require.Equal(t, 2.0, bins[1].Count)
	at1 := bins[1].Target.(*categoricalArrayTarget)
	require.Equal(t, []float64{0, 1}, at1.Counts)
	require.Equal(t, 1.0, at1.Missing)
}

func TestInsertGroupRequiresNonNilTuple(t *testing.T) {
	h, err := New(WithBins(8), WithGroupTypes(SlotNumeric, SlotCategorical))
	require.NoError(t, err)
	err = h.InsertGroup(ptr(1.0), nil)
	require.Error(t, err)
}

func TestInsertGroupElementwise(t *testing.T) {
	h, err := New(WithBins(8), WithGroupTypes(SlotNumeric, SlotCategorical))
	require.NoError(t, err)
	require.NoError(t, h.InsertGroup(ptr(1.0), []interface{}{2.0, "x"}))
	require.NoError(t, h.InsertGroup(ptr(1.0), []interface{}{4.0, "x"}))

	bins := h.Bins()
	require.Len(t, bins, 1)
	gt := bins[0].Target.(*groupTarget)
	require.Equal(t, 6.0, gt.Children[0].(*numericTarget).Sum)
	require.Equal(t, 2.0, gt.Children[1].(*categoricalMapTarget).Counts["x"])
}

func TestFreezeRoutesToNearestBin(t *testing.T) {
	h, err := New(WithBins(2), WithFreeze(3))
	require.NoError(t, err)
	require.NoError(t, h.Insert(ptr(1.0)))
	require.NoError(t, h.Insert(ptr(10.0)))
	// total_count is now 2, reservoir at capacity 2; the next 2 inserts
	// exceed freeze_threshold=3 once total_count > 3, so the 4th insert
	// freezes.
	require.NoError(t, h.Insert(ptr(9.0))) // total=3, not yet frozen (3 is not > 3)
	// that 3rd insert opened a genuine new bin and merged back down to
	// capacity, since freeze had not kicked in yet.
	require.LessOrEqual(t, h.Len(), 2)

	require.NoError(t, h.Insert(ptr(9.5))) // total=4 > 3, frozen: routed, no new bin
	require.LessOrEqual(t, h.Len(), 2)
	require.Equal(t, 4.0, h.TotalCount())
}

func TestMergeTypeMismatch(t *testing.T) {
	a, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, a.Insert(ptr(1.0)))

	b, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, b.InsertNumeric(ptr(1.0), ptr(2.0)))

	require.Error(t, a.Merge(b))
}

func TestMergeConservesTotals(t *testing.T) {
	a, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, a.Insert(ptr(1.0)))
	require.NoError(t, a.Insert(ptr(2.0)))

	b, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, b.Insert(ptr(3.0)))
	require.NoError(t, b.Insert(nil))

	require.NoError(t, a.Merge(b))
	require.Equal(t, 4.0, a.TotalCount())
	require.Equal(t, 1.0, a.MissingCount())

	min, ok := a.Minimum()
	require.True(t, ok)
	require.Equal(t, 1.0, min)
	max, ok := a.Maximum()
	require.True(t, ok)
	require.Equal(t, 3.0, max)
}

func TestMergeEmptyIsIdentity(t *testing.T) {
	a, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, a.Insert(ptr(1.0)))
	require.NoError(t, a.Insert(ptr(2.0)))

	empty, err := New(WithBins(8))
	require.NoError(t, err)

	require.NoError(t, a.Merge(empty))
	require.Equal(t, 2.0, a.TotalCount())
	require.Len(t, a.Bins(), 2)
}

func ptrStr(s string) *string { return &s }
