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

import "github.com/pkg/errors"

// TargetType tags the shape of the per-bin summary a Histogram carries.
// It is latched on first insert (or at creation, when categories or
// group_types are declared) and never changes afterwards.
type TargetType int

const (
	TargetNone TargetType = iota
	TargetNumeric
	TargetCategoricalMap
	TargetCategoricalArray
	TargetGroup
	TargetNestedHistogram
)

func (t TargetType) String() string {
	switch t {
	case TargetNone:
		return "none"
	case TargetNumeric:
		return "numeric"
	case TargetCategoricalMap:
		return "categorical_map"
	case TargetCategoricalArray:
		return "categorical_array"
	case TargetGroup:
		return "group"
	case TargetNestedHistogram:
		return "nested_histogram"
	default:
		return "unknown"
	}
}

// GroupSlotKind is the declared shape of one element of a Group target.
type GroupSlotKind int

const (
	SlotNone GroupSlotKind = iota
	SlotNumeric
	SlotCategorical
)

func (k GroupSlotKind) String() string {
	switch k {
	case SlotNumeric:
		return "numeric"
	case SlotCategorical:
		return "categorical"
	default:
		return "none"
	}
}

func parseGroupSlotKind(s string) (GroupSlotKind, error) {
	switch s {
	case "none", "":
		return SlotNone, nil
	case "numeric":
		return SlotNumeric, nil
	case "categorical":
		return SlotCategorical, nil
	default:
		return SlotNone, errors.Errorf("unknown group slot kind %q", s)
	}
}

// groupChildTargetType is the Target shape a Group slot of the given kind
// carries: numeric slots hold a Numeric target, categorical slots an
// open-vocabulary CategoricalMap (group schemas have no array-backed
// category list to fix one against).
func groupChildTargetType(k GroupSlotKind) TargetType {
	switch k {
	case SlotNumeric:
		return TargetNumeric
	case SlotCategorical:
		return TargetCategoricalMap
	default:
		return TargetNone
	}
}

// Target is the polymorphic per-bin summary algebra (spec §3, "Target").
// Every variant implements init/clone/sum/scale; missingCount exposes the
// count of points whose target value was absent, for variants that track it.
type Target interface {
	Type() TargetType
	init() Target
	clone() Target
	sum(other Target) error
	scale(f float64)
	missingCount() float64
}

// zeroTargetFor returns an empty Target matching the shape implied by the
// Histogram's declared/latched configuration.
func zeroTargetFor(t TargetType, categories []string, groupTypes []GroupSlotKind) Target {
	switch t {
	case TargetNone:
		return noneTarget{}
	case TargetNumeric:
		return &numericTarget{}
	case TargetCategoricalMap:
		return &categoricalMapTarget{Counts: map[string]float64{}}
	case TargetCategoricalArray:
		return newCategoricalArrayTarget(categories)
	case TargetGroup:
		children := make([]Target, len(groupTypes))
		for i, k := range groupTypes {
			switch k {
			case SlotNumeric:
				children[i] = &numericTarget{}
			case SlotCategorical:
				children[i] = &categoricalMapTarget{Counts: map[string]float64{}}
			default:
				children[i] = noneTarget{}
			}
		}
		return &groupTarget{Children: children}
	case TargetNestedHistogram:
		h, _ := New()
		return &nestedHistogramTarget{Hist: h}
	default:
		return noneTarget{}
	}
}

// ---------------- None ----------------

type noneTarget struct{}

func (noneTarget) Type() TargetType        { return TargetNone }
func (noneTarget) init() Target            { return noneTarget{} }
func (noneTarget) clone() Target           { return noneTarget{} }
func (noneTarget) sum(Target) error        { return nil }
func (noneTarget) scale(float64)           {}
func (noneTarget) missingCount() float64   { return 0 }

// ---------------- Numeric ----------------

// numericTarget is the Numeric{sum, sum_squares, missing_count} variant.
type numericTarget struct {
	Sum        float64
	SumSquares float64
	Missing    float64
}

func (t *numericTarget) Type() TargetType { return TargetNumeric }
func (t *numericTarget) init() Target     { return &numericTarget{} }
func (t *numericTarget) clone() Target {
	return &numericTarget{Sum: t.Sum, SumSquares: t.SumSquares, Missing: t.Missing}
}
func (t *numericTarget) sum(other Target) error {
	o, ok := other.(*numericTarget)
	if !ok {
		return errors.Errorf("expected numeric target, got %T", other)
	}
	t.Sum += o.Sum
	t.SumSquares += o.SumSquares
	t.Missing += o.Missing
	return nil
}
func (t *numericTarget) scale(f float64) {
	t.Sum *= f
	t.SumSquares *= f
	t.Missing *= f
}
func (t *numericTarget) missingCount() float64 { return t.Missing }

// ---------------- CategoricalMap ----------------

// categoricalMapTarget is the open-vocabulary CategoricalMap variant.
type categoricalMapTarget struct {
	Counts  map[string]float64
	Missing float64
}

func (t *categoricalMapTarget) Type() TargetType { return TargetCategoricalMap }
func (t *categoricalMapTarget) init() Target {
	return &categoricalMapTarget{Counts: map[string]float64{}}
}
func (t *categoricalMapTarget) clone() Target {
	c := make(map[string]float64, len(t.Counts))
	for k, v := range t.Counts {
		c[k] = v
	}
	return &categoricalMapTarget{Counts: c, Missing: t.Missing}
}
func (t *categoricalMapTarget) sum(other Target) error {
	o, ok := other.(*categoricalMapTarget)
	if !ok {
		return errors.Errorf("expected categorical-map target, got %T", other)
	}
	for k, v := range o.Counts {
		t.Counts[k] += v
	}
	t.Missing += o.Missing
	return nil
}
func (t *categoricalMapTarget) scale(f float64) {
	for k := range t.Counts {
		t.Counts[k] *= f
	}
	t.Missing *= f
}
func (t *categoricalMapTarget) missingCount() float64 { return t.Missing }

// ---------------- CategoricalArray ----------------

// categoricalArrayTarget is the closed-vocabulary CategoricalArray variant,
// fixed at histogram creation. Its category list is shared (by reference)
// across every instance created from the same Histogram so merges of
// identical lists can compare by pointer-independent equality.
type categoricalArrayTarget struct {
	Categories []string
	index      map[string]int
	Counts     []float64
	Missing    float64
}

func newCategoricalArrayTarget(categories []string) *categoricalArrayTarget {
	idx := make(map[string]int, len(categories))
	for i, c := range categories {
		idx[c] = i
	}
	return &categoricalArrayTarget{
		Categories: categories,
		index:      idx,
		Counts:     make([]float64, len(categories)),
	}
}

func (t *categoricalArrayTarget) Type() TargetType { return TargetCategoricalArray }
func (t *categoricalArrayTarget) init() Target     { return newCategoricalArrayTarget(t.Categories) }
func (t *categoricalArrayTarget) clone() Target {
	counts := make([]float64, len(t.Counts))
	copy(counts, t.Counts)
	return &categoricalArrayTarget{Categories: t.Categories, index: t.index, Counts: counts, Missing: t.Missing}
}
func (t *categoricalArrayTarget) sum(other Target) error {
	o, ok := other.(*categoricalArrayTarget)
	if !ok {
		return errors.Errorf("expected categorical-array target, got %T", other)
	}
	if len(o.Categories) != len(t.Categories) {
		return errors.Errorf("categorical-array category lists differ in length: %d vs %d",
			len(t.Categories), len(o.Categories))
	}
	for i := range t.Categories {
		if t.Categories[i] != o.Categories[i] {
			return errors.Errorf("categorical-array category lists differ at index %d: %q vs %q",
				i, t.Categories[i], o.Categories[i])
		}
	}
	for i, v := range o.Counts {
		t.Counts[i] += v
	}
	t.Missing += o.Missing
	return nil
}
func (t *categoricalArrayTarget) scale(f float64) {
	for i := range t.Counts {
		t.Counts[i] *= f
	}
	t.Missing *= f
}
func (t *categoricalArrayTarget) missingCount() float64 { return t.Missing }

func (t *categoricalArrayTarget) set(category string, count float64) error {
	i, ok := t.index[category]
	if !ok {
		return errors.Errorf("unknown category %q", category)
	}
	t.Counts[i] += count
	return nil
}

// ---------------- Group ----------------

// groupTarget is the fixed-arity element-wise Group variant.
type groupTarget struct {
	Children []Target
}

func (t *groupTarget) Type() TargetType { return TargetGroup }
func (t *groupTarget) init() Target {
	children := make([]Target, len(t.Children))
	for i, c := range t.Children {
		children[i] = c.init()
	}
	return &groupTarget{Children: children}
}
func (t *groupTarget) clone() Target {
	children := make([]Target, len(t.Children))
	for i, c := range t.Children {
		children[i] = c.clone()
	}
	return &groupTarget{Children: children}
}
func (t *groupTarget) sum(other Target) error {
	o, ok := other.(*groupTarget)
	if !ok {
		return errors.Errorf("expected group target, got %T", other)
	}
	if len(o.Children) != len(t.Children) {
		return errors.Errorf("group arity mismatch: %d vs %d", len(t.Children), len(o.Children))
	}
	for i := range t.Children {
		if err := t.Children[i].sum(o.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
func (t *groupTarget) scale(f float64) {
	for _, c := range t.Children {
		c.scale(f)
	}
}
func (t *groupTarget) missingCount() float64 {
	var total float64
	for _, c := range t.Children {
		total += c.missingCount()
	}
	return total
}

// ---------------- NestedHistogram ----------------

// nestedHistogramTarget is the 2-D heat-map building block: each bin's
// target is itself a (None-targeted) Histogram, merged/scaled as a whole.
type nestedHistogramTarget struct {
	Hist *Histogram
}

func (t *nestedHistogramTarget) Type() TargetType { return TargetNestedHistogram }
func (t *nestedHistogramTarget) init() Target {
	h, _ := New(WithBins(t.Hist.maxBins), WithGapWeighted(t.Hist.gapWeighted))
	return &nestedHistogramTarget{Hist: h}
}
func (t *nestedHistogramTarget) clone() Target {
	h, _ := New(WithBins(t.Hist.maxBins), WithGapWeighted(t.Hist.gapWeighted))
	for _, b := range t.Hist.Bins() {
		_ = h.InsertBin(b.clone())
	}
	return &nestedHistogramTarget{Hist: h}
}
func (t *nestedHistogramTarget) sum(other Target) error {
	o, ok := other.(*nestedHistogramTarget)
	if !ok {
		return errors.Errorf("expected nested-histogram target, got %T", other)
	}
	return t.Hist.Merge(o.Hist)
}
func (t *nestedHistogramTarget) scale(f float64) {
	t.Hist.scaleCounts(f)
}
func (t *nestedHistogramTarget) missingCount() float64 { return t.Hist.missingCount }

// interpolateTargets computes coefLo*lo + coefHi*hi using the shared
// clone/scale/sum algebra, so Sum/Density/AverageTarget work identically
// across every Target variant without a type switch at the call site.
func interpolateTargets(lo, hi Target, coefLo, coefHi float64) Target {
	result := lo.clone()
	result.scale(coefLo)
	tmp := hi.clone()
	tmp.scale(coefHi)
	_ = result.sum(tmp)
	return result
}
