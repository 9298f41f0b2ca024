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
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1. Uniform distribution, sum near the middle should sit near half the
// total count.
func TestScenarioUniformSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h, err := New(WithBins(32))
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		v := rng.Float64() * 100
		require.NoError(t, h.Insert(&v))
	}

	sum, err := h.Sum(50.0)
	require.NoError(t, err)
	require.InDelta(t, 5000, sum, 400)
}

// S2. Gaussian distribution, the 0.5 percentile should land close to the
// true mean.
func TestScenarioGaussianMedian(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h, err := New(WithBins(64))
	require.NoError(t, err)

	const mean = 10.0
	for i := 0; i < 20000; i++ {
		v := mean + rng.NormFloat64()*2
		require.NoError(t, h.Insert(&v))
	}

	pcts := h.Percentiles(0.5)
	require.InDelta(t, mean, pcts[0.5], 0.5)
}

// S4. Merge-down under capacity: inserting a point that drives the
// reservoir one bin over capacity folds the narrowest gap immediately.
func TestScenarioMergeDownUnderCapacity(t *testing.T) {
	h, err := New(WithBins(3))
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 3, 0.5} {
		require.NoError(t, h.Insert(ptr(v)))
	}

	bins := h.Bins()
	require.Len(t, bins, 3)
	require.Equal(t, 0.75, bins[0].Mean)
	require.Equal(t, 2.0, bins[0].Count)
	require.Equal(t, 2.0, bins[1].Mean)
	require.Equal(t, 3.0, bins[2].Mean)
}

// S6. The gap-weighted and classic (unweighted) gap rules, fed the same
// input sequence, agree on total count, stay within capacity, and keep
// the heavy bin at mean=1 intact.
func TestScenarioGapWeightedVsClassic(t *testing.T) {
	points := []float64{1, 1, 1, 1, 1, 2, 5, 9}

	classic, err := New(WithBins(4), WithGapWeighted(false))
	require.NoError(t, err)
	for _, v := range points {
		require.NoError(t, classic.Insert(ptr(v)))
	}

	weighted, err := New(WithBins(4), WithGapWeighted(true))
	require.NoError(t, err)
	for _, v := range points {
		require.NoError(t, weighted.Insert(ptr(v)))
	}

	require.LessOrEqual(t, classic.Len(), 4)
	require.LessOrEqual(t, weighted.Len(), 4)
	require.Equal(t, classic.TotalCount(), weighted.TotalCount())

	// the sequence has only four distinct values, so with 4 bins neither
	// policy merges anything and the heavy bin at mean=1 (count 5)
	// survives intact under both.
	cb := classic.Bins()
	wb := weighted.Bins()
	require.Equal(t, 1.0, cb[0].Mean)
	require.Equal(t, 5.0, cb[0].Count)
	require.Equal(t, 1.0, wb[0].Mean)
	require.Equal(t, 5.0, wb[0].Count)
}

// S7. Merging two histograms conserves total count, min/max range, and
// target sums.
func TestScenarioMergeConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a, err := New(WithBins(16))
	require.NoError(t, err)
	b, err := New(WithBins(16))
	require.NoError(t, err)

	var wantTotal, wantSum float64
	for i := 0; i < 500; i++ {
		v := rng.Float64() * 50
		tv := rng.Float64() * 3
		wantTotal++
		wantSum += tv
		if i%2 == 0 {
			require.NoError(t, a.InsertNumeric(&v, &tv))
		} else {
			require.NoError(t, b.InsertNumeric(&v, &tv))
		}
	}

	require.NoError(t, a.Merge(b))
	require.InDelta(t, wantTotal, a.TotalCount(), 1e-9)

	total := a.TotalTargetSum().(*numericTarget)
	require.InDelta(t, wantSum, total.Sum, 1e-6)

	min, ok := a.Minimum()
	require.True(t, ok)
	require.GreaterOrEqual(t, min, 0.0)
	max, ok := a.Maximum()
	require.True(t, ok)
	require.LessOrEqual(t, max, 50.0)
}

func TestScenarioSumIsNeverNaN(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		require.NoError(t, h.Insert(ptr(v)))
	}
	for p := -2.0; p <= 8; p += 0.37 {
		s, err := h.Sum(p)
		require.NoError(t, err)
		require.False(t, math.IsNaN(s))
	}
}
