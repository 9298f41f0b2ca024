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
	"sort"
)

// augmentedBins returns bins with zero-count sentinels prepended/appended
// at (minimum, 0) and (maximum, 0) whenever the observed extremes fall
// outside the reservoir's own bin means (spec §4.1, "boundary pseudo-bins").
func (h *Histogram) augmentedBins(bins []Bin, min, max float64) []Bin {
	out := make([]Bin, 0, len(bins)+2)
	if len(bins) == 0 || min < bins[0].Mean {
		out = append(out, Bin{Mean: min, Count: 0, Target: zeroTargetFor(h.targetType, h.categories, h.groupTypes)})
	}
	out = append(out, bins...)
	if len(bins) == 0 || max > bins[len(bins)-1].Mean {
		out = append(out, Bin{Mean: max, Count: 0, Target: zeroTargetFor(h.targetType, h.categories, h.groupTypes)})
	}
	return out
}

// segment locates the augmented-bin pair (lo, hi) straddling p, where
// lo.Mean <= p < hi.Mean.
func segment(aug []Bin, p float64) (lo, hi Bin) {
	i := sort.Search(len(aug), func(k int) bool { return aug[k].Mean > p }) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(aug)-1 {
		i = len(aug) - 2
	}
	return aug[i], aug[i+1]
}

// cumulativeBefore sums the count and target of every real bin whose mean
// is strictly less than mean; bins is already in ascending order.
func (h *Histogram) cumulativeBefore(bins []Bin, mean float64) (float64, Target) {
	sum := zeroTargetFor(h.targetType, h.categories, h.groupTypes)
	var count float64
	for _, b := range bins {
		if b.Mean >= mean {
			break
		}
		count += b.Count
		if err := sum.sum(b.Target); err != nil {
			panic("histogram: cumulativeBefore: " + err.Error())
		}
	}
	return count, sum
}

// Sum returns the approximate count of points <= p (spec §4.1, "sum").
func (h *Histogram) Sum(p float64) (float64, error) {
	count, _, err := h.extendedSum(p)
	return count, err
}

// ExtendedSum returns the approximate count and target-sum of points <= p.
func (h *Histogram) ExtendedSum(p float64) (float64, Target, error) {
	return h.extendedSum(p)
}

func (h *Histogram) extendedSum(p float64) (float64, Target, error) {
	if h.Len() == 0 {
		return 0, nil, newError("sum", KindEmpty, "histogram has no bins")
	}
	min, _ := h.Minimum()
	max, _ := h.Maximum()

	if p < min {
		return 0, zeroTargetFor(h.targetType, h.categories, h.groupTypes), nil
	}
	if p >= max {
		return h.totalCount, h.TotalTargetSum(), nil
	}

	bins := h.res.ascendAll()
	aug := h.augmentedBins(bins, min, max)
	lo, hi := segment(aug, p)
	r := (p - lo.Mean) / (hi.Mean - lo.Mean)

	cumBefore, targetBefore := h.cumulativeBefore(bins, lo.Mean)

	coefLo := 0.5 + r - r*r/2
	coefHi := r * r / 2
	count := cumBefore + coefLo*lo.Count + coefHi*hi.Count
	target := interpolateTargets(interpolateTargets(targetBefore, lo.Target, 1, coefLo), hi.Target, 1, coefHi)
	return count, target, nil
}

// Density returns the pointwise density estimate at p, the derivative of
// Sum (spec §4.1, "density"). It never fails: 0 outside the observed
// range.
func (h *Histogram) Density(p float64) float64 {
	count, _ := h.extendedDensity(p)
	return count
}

// ExtendedDensity is Density with the accompanying target density.
func (h *Histogram) ExtendedDensity(p float64) (float64, Target) {
	return h.extendedDensity(p)
}

func (h *Histogram) extendedDensity(p float64) (float64, Target) {
	if h.Len() == 0 {
		return 0, zeroTargetFor(h.targetType, h.categories, h.groupTypes)
	}
	min, _ := h.Minimum()
	max, _ := h.Maximum()
	bins := h.res.ascendAll()

	atMean := false
	for _, b := range bins {
		if b.Mean == p {
			atMean = true
			break
		}
	}
	if !atMean {
		return h.densityAt(p, bins, min, max)
	}

	leftCount, leftTarget := h.densityAt(math.Nextafter(p, math.Inf(-1)), bins, min, max)
	rightCount, rightTarget := h.densityAt(math.Nextafter(p, math.Inf(1)), bins, min, max)
	count := (leftCount + rightCount) / 2
	target := interpolateTargets(leftTarget, rightTarget, 0.5, 0.5)
	return count, target
}

// densityAt evaluates the piecewise-linear density (count interpolated
// between adjacent means, divided by the width of that mean gap) at p,
// without the at-a-mean averaging rule.
func (h *Histogram) densityAt(p float64, bins []Bin, min, max float64) (float64, Target) {
	zero := zeroTargetFor(h.targetType, h.categories, h.groupTypes)
	if p < min || p > max {
		return 0, zero
	}
	aug := h.augmentedBins(bins, min, max)
	lo, hi := segment(aug, p)
	width := hi.Mean - lo.Mean
	r := (p - lo.Mean) / width

	count := (lo.Count + (hi.Count-lo.Count)*r) / width
	target := interpolateTargets(lo.Target, hi.Target, (1-r)/width, r/width)
	return count, target
}

// sumBreak is one entry of the bin_sum_map used to invert Sum for
// Uniform/Percentiles (spec §4.1, "Uniform and percentiles").
type sumBreak struct {
	s, mean, count float64
}

func (h *Histogram) sumBreaks() []sumBreak {
	bins := h.res.ascendAll()
	min, _ := h.Minimum()
	max, _ := h.Maximum()

	breaks := make([]sumBreak, 0, len(bins)+2)
	breaks = append(breaks, sumBreak{s: 0, mean: min, count: 0})
	var cum float64
	for _, b := range bins {
		breaks = append(breaks, sumBreak{s: cum + b.Count/2, mean: b.Mean, count: b.Count})
		cum += b.Count
	}
	breaks = append(breaks, sumBreak{s: h.totalCount, mean: max, count: 0})
	return breaks
}

// solveSum inverts sum: the x such that sum(x) == s, by locating the
// bin_sum_map segment containing s and solving the quadratic
// a*z^2 + b*z + c == 0 derived from the same piecewise-quadratic sum
// formula used by extendedSum (spec §4.1, "Uniform and percentiles").
func (h *Histogram) solveSum(s float64, breaks []sumBreak) float64 {
	min, _ := h.Minimum()
	max, _ := h.Maximum()
	if s <= 0 {
		return min
	}
	if s >= h.totalCount {
		return max
	}

	i := sort.Search(len(breaks), func(k int) bool { return breaks[k].s > s }) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(breaks)-1 {
		i = len(breaks) - 2
	}
	lo, hi := breaks[i], breaks[i+1]
	d := s - lo.s

	a := hi.count - lo.count
	if a == 0 {
		avg := (lo.count + hi.count) / 2
		if avg == 0 {
			return lo.mean
		}
		return lo.mean + (hi.mean-lo.mean)*(d/avg)
	}
	b := 2 * lo.count
	c := -2 * d
	z := (-b + math.Sqrt(b*b-4*a*c)) / (2 * a)
	return lo.mean + (hi.mean-lo.mean)*z
}

// Uniform returns the k-1 split points partitioning the total weight into
// approximately equal parts, subject to a floor on step size of
// max(first_bin.count, last_bin.count)/2 (spec §4.1, "uniform(k)").
func (h *Histogram) Uniform(k int) []float64 {
	if h.Len() == 0 || k < 1 {
		return nil
	}
	bins := h.res.ascendAll()
	first, last := bins[0], bins[len(bins)-1]
	floorStep := math.Max(first.Count, last.Count) / 2

	kEff := k
	if floorStep > 0 {
		if step := h.totalCount / float64(k); step < floorStep {
			kEff = int(h.totalCount / floorStep)
			if kEff < 1 {
				kEff = 1
			}
		}
	}

	breaks := h.sumBreaks()
	out := make([]float64, 0, kEff-1)
	for i := 1; i < kEff; i++ {
		out = append(out, h.solveSum(float64(i)*h.totalCount/float64(kEff), breaks))
	}
	return out
}

// Percentiles maps each q in [0,1] to the x such that sum(x) ≈ q*total_count.
func (h *Histogram) Percentiles(qs ...float64) map[float64]float64 {
	out := make(map[float64]float64, len(qs))
	if h.Len() == 0 {
		return out
	}
	breaks := h.sumBreaks()
	for _, q := range qs {
		out[q] = h.solveSum(q*h.totalCount, breaks)
	}
	return out
}

// AverageTarget returns the target expected given X == p, computed as
// extended_density(p).target / extended_density(p).count (spec §4.1,
// "average target"). ok is false — the documented "None" result — when
// the count density is zero: p outside the observed support, or an
// isolated mean whose neighbours are both absent.
func (h *Histogram) AverageTarget(p float64) (result Target, ok bool, err error) {
	if h.Len() == 0 {
		return nil, false, newError("average_target", KindEmpty, "histogram has no bins")
	}
	countDensity, targetDensity := h.extendedDensity(p)
	if countDensity == 0 {
		return nil, false, nil
	}
	result = targetDensity.clone()
	result.scale(1 / countDensity)
	return result, true, nil
}
