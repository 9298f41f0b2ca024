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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumOnEmptyIsError(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	_, err = h.Sum(1.0)
	require.Error(t, err)
}

func TestSumRangeClamp(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 3} {
		require.NoError(t, h.Insert(ptr(v)))
	}

	sum, err := h.Sum(0.0)
	require.NoError(t, err)
	require.Equal(t, 0.0, sum)

	sum, err = h.Sum(100.0)
	require.NoError(t, err)
	require.Equal(t, h.TotalCount(), sum)
}

func TestSumMonotone(t *testing.T) {
	h, err := New(WithBins(16))
	require.NoError(t, err)
	for _, v := range []float64{1, 3, 2, 7, 5, 4, 9, 6, 8} {
		require.NoError(t, h.Insert(ptr(v)))
	}

	prev := 0.0
	for p := 0.0; p <= 10; p += 0.25 {
		s, err := h.Sum(p)
		require.NoError(t, err)
		require.GreaterOrEqual(t, s, prev-1e-9)
		prev = s
	}
}

// S3. Integer density.
func TestScenarioIntegerDensity(t *testing.T) {
	h, err := New(WithBins(64))
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 2, 3} {
		require.NoError(t, h.Insert(ptr(v)))
	}

	cases := []struct {
		p, want float64
	}{
		{0.0, 0}, {0.5, 0}, {1.0, 0.5}, {1.5, 1.5}, {2.0, 2.0},
		{2.5, 1.5}, {3.0, 0.5}, {3.5, 0}, {4.0, 0},
	}
	for _, c := range cases {
		require.InDelta(t, c.want, h.Density(c.p), 1e-10, "density(%v)", c.p)
	}
}

func TestDensityOutsideSupportIsZero(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.Insert(ptr(1.0)))
	require.NoError(t, h.Insert(ptr(2.0)))
	require.Equal(t, 0.0, h.Density(-5))
	require.Equal(t, 0.0, h.Density(50))
}

func TestUniformAndPercentilesAgree(t *testing.T) {
	h, err := New(WithBins(16))
	require.NoError(t, err)
	for i := 1; i <= 9; i++ {
		require.NoError(t, h.Insert(ptr(float64(i))))
	}

	median := h.Uniform(2)
	require.Len(t, median, 1)

	pcts := h.Percentiles(0.5)
	require.InDelta(t, median[0], pcts[0.5], 1e-9)
}

func TestPercentilesEmpty(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.Empty(t, h.Percentiles(0.5))
	require.Nil(t, h.Uniform(4))
}

func TestAverageTargetNoneOutsideSupport(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.InsertNumeric(ptr(1.0), ptr(10.0)))
	require.NoError(t, h.InsertNumeric(ptr(2.0), ptr(20.0)))

	_, ok, err := h.AverageTarget(-5)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAverageTargetInterior(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.InsertNumeric(ptr(1.0), ptr(10.0)))
	require.NoError(t, h.InsertNumeric(ptr(2.0), ptr(20.0)))

	target, ok, err := h.AverageTarget(1.5)
	require.NoError(t, err)
	require.True(t, ok)
	nt := target.(*numericTarget)
	require.InDelta(t, 15.0, nt.Sum, 1e-9)
}
