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

// Package histogram is an in-memory, single-pass, bounded-memory
// approximation of a one-dimensional numeric distribution, following the
// Ben-Haim/Tyree "Streaming Parallel Decision Tree" construction: every
// inserted point lands in one of at most B bins, inserts never rescan
// history, and two compatible histograms merge in O(B).
package histogram

import "math"

// Histogram is the public façade over a bounded reservoir of Bins (spec
// §3/§4.1). It is not safe for concurrent use by multiple goroutines —
// every operation mutates or reads shared internal state with no locking,
// matching the single-threaded cooperative model of spec §5. Independent
// Histograms share nothing and may be used in parallel; merge them from a
// single worker to combine partitioned results (see Set).
type Histogram struct {
	maxBins         int
	gapWeighted     bool
	categories      []string
	groupTypes      []GroupSlotKind
	freezeThreshold *float64

	res *reservoir

	targetType    TargetType
	targetLatched bool

	totalCount    float64
	missingCount  float64
	missingTarget Target

	minimum, maximum float64
	hasRange         bool
}

// New creates an empty Histogram. With no options it defaults to 64 bins,
// no gap weighting, no freeze, and an auto-selected reservoir backend.
func New(opts ...Option) (*Histogram, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Histogram{
		maxBins:         cfg.Bins,
		gapWeighted:     cfg.GapWeighted,
		categories:      cfg.Categories,
		groupTypes:      cfg.GroupTypes,
		freezeThreshold: cfg.Freeze,
		res:             newReservoir(cfg.Bins, cfg.GapWeighted, cfg.Backend),
	}

	switch {
	case cfg.Categories != nil:
		if err := h.ensureTargetType(TargetCategoricalArray); err != nil {
			return nil, err
		}
	case cfg.GroupTypes != nil:
		if err := h.ensureTargetType(TargetGroup); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// CloneEmpty returns a new, empty Histogram with the same creation
// parameters as h (adapted from the teacher's Histograms.AddAll, which
// creates a same-shaped empty entry for a name it hasn't seen yet).
func (h *Histogram) CloneEmpty() *Histogram {
	opts := []Option{WithBins(h.maxBins), WithGapWeighted(h.gapWeighted), WithBackend(h.res.backend)}
	if h.categories != nil {
		opts = append(opts, WithCategories(h.categories...))
	}
	if h.groupTypes != nil {
		opts = append(opts, WithGroupTypes(h.groupTypes...))
	}
	if h.freezeThreshold != nil {
		opts = append(opts, WithFreeze(*h.freezeThreshold))
	}
	clone, err := New(opts...)
	if err != nil {
		// Config was already validated once at h's creation; the same
		// options cannot fail validation a second time.
		panic("histogram: CloneEmpty: " + err.Error())
	}
	return clone
}

func (h *Histogram) categoricalKind() TargetType {
	if h.categories != nil {
		return TargetCategoricalArray
	}
	return TargetCategoricalMap
}

// ensureTargetType latches the target type on first use and rejects any
// later insert/merge whose target shape does not match (spec §3 invariant
// 6, §4.1 "TypeMismatch").
func (h *Histogram) ensureTargetType(kind TargetType) error {
	if !h.targetLatched {
		h.targetType = kind
		h.targetLatched = true
		if h.missingTarget == nil {
			h.missingTarget = zeroTargetFor(kind, h.categories, h.groupTypes)
		}
		return nil
	}
	if h.targetType != kind {
		return newError("insert", KindTypeMismatch, "target type already latched to %v, got %v", h.targetType, kind)
	}
	return nil
}

// Insert adds a single, untargeted point. p == nil records a missing value.
func (h *Histogram) Insert(p *float64) error {
	if err := h.ensureTargetType(TargetNone); err != nil {
		return err
	}
	if p == nil {
		h.addMissing(noneTarget{})
		return nil
	}
	return h.insertPoint(Bin{Mean: canonicalMean(requireFinite("insert", *p)), Count: 1, Target: noneTarget{}})
}

// InsertNumeric adds a point with a numeric target; either may be absent.
func (h *Histogram) InsertNumeric(p, v *float64) error {
	if err := h.ensureTargetType(TargetNumeric); err != nil {
		return err
	}
	t := &numericTarget{}
	if v != nil {
		t.Sum = *v
		t.SumSquares = (*v) * (*v)
	} else {
		t.Missing = 1
	}
	if p == nil {
		h.addMissing(t)
		return nil
	}
	return h.insertPoint(Bin{Mean: canonicalMean(requireFinite("insert_numeric", *p)), Count: 1, Target: t})
}

// InsertCategorical adds a point with a categorical target; either may be
// absent. If this Histogram declared a fixed category vocabulary, v must
// belong to it.
func (h *Histogram) InsertCategorical(p *float64, v *string) error {
	kind := h.categoricalKind()
	if err := h.ensureTargetType(kind); err != nil {
		return err
	}

	var t Target
	if kind == TargetCategoricalArray {
		at := newCategoricalArrayTarget(h.categories)
		if v != nil {
			if err := at.set(*v, 1); err != nil {
				return newError("insert_categorical", KindUnknownCategory, "category %q is not in the declared list", *v)
			}
		} else {
			at.Missing = 1
		}
		t = at
	} else {
		mt := &categoricalMapTarget{Counts: map[string]float64{}}
		if v != nil {
			mt.Counts[*v] = 1
		} else {
			mt.Missing = 1
		}
		t = mt
	}

	if p == nil {
		h.addMissing(t)
		return nil
	}
	return h.insertPoint(Bin{Mean: canonicalMean(requireFinite("insert_categorical", *p)), Count: 1, Target: t})
}

// InsertGroup adds a point with a fixed-arity group target. vs must not be
// nil; each element may be nil (meaning that slot's value is absent) but
// must otherwise match the declared GroupTypes slot kind (float64 for
// SlotNumeric, string for SlotCategorical).
func (h *Histogram) InsertGroup(p *float64, vs []interface{}) error {
	if err := h.ensureTargetType(TargetGroup); err != nil {
		return err
	}
	if vs == nil {
		return newError("insert_group", KindTypeMismatch, "group value tuple must not be nil")
	}
	if h.groupTypes == nil {
		return newError("insert_group", KindTypeMismatch, "group_types were not declared for this histogram")
	}
	if len(vs) != len(h.groupTypes) {
		return newError("insert_group", KindTypeMismatch, "expected %d group values, got %d", len(h.groupTypes), len(vs))
	}

	children := make([]Target, len(vs))
	for i, kind := range h.groupTypes {
		switch kind {
		case SlotNumeric:
			nt := &numericTarget{}
			if vs[i] != nil {
				v := vs[i].(float64)
				nt.Sum = v
				nt.SumSquares = v * v
			} else {
				nt.Missing = 1
			}
			children[i] = nt
		case SlotCategorical:
			mt := &categoricalMapTarget{Counts: map[string]float64{}}
			if vs[i] != nil {
				mt.Counts[vs[i].(string)] = 1
			} else {
				mt.Missing = 1
			}
			children[i] = mt
		default:
			children[i] = noneTarget{}
		}
	}
	t := &groupTarget{Children: children}

	if p == nil {
		h.addMissing(t)
		return nil
	}
	return h.insertPoint(Bin{Mean: canonicalMean(requireFinite("insert_group", *p)), Count: 1, Target: t})
}

// InsertBin merges an externally constructed Bin into the reservoir,
// following the same insertion pipeline as a point insert.
func (h *Histogram) InsertBin(b Bin) error {
	if err := h.ensureTargetType(b.Target.Type()); err != nil {
		return err
	}
	b.Mean = canonicalMean(requireFinite("insert_bin", b.Mean))
	return h.insertPoint(b)
}

func requireFinite(op string, p float64) float64 {
	assertf(!math.IsNaN(p), "%s: point is NaN", op)
	return p
}

func (h *Histogram) addMissing(t Target) {
	if h.missingTarget == nil {
		h.missingTarget = t.init()
	}
	if err := h.missingTarget.sum(t); err != nil {
		panic("histogram: missing-target bookkeeping: " + err.Error())
	}
	h.missingCount++
	h.totalCount++
}

func (h *Histogram) updateRange(mean float64) {
	if !h.hasRange {
		h.minimum = mean
		h.maximum = mean
		h.hasRange = true
		return
	}
	if mean < h.minimum {
		h.minimum = mean
	}
	if mean > h.maximum {
		h.maximum = mean
	}
}

// freezeActive reports whether step 3's freeze routing applies: a
// threshold is set, total insertions have exceeded it, and the reservoir
// is already at capacity.
func (h *Histogram) freezeActive() bool {
	return h.freezeThreshold != nil && h.totalCount > *h.freezeThreshold && h.res.len() >= h.maxBins
}

// insertPoint runs steps 2-6 of the insertion algorithm (spec §4.1):
// bookkeeping, freeze routing, exact-hit accumulate, new-bin insert, and
// merge-down to restore the B-bin capacity invariant.
func (h *Histogram) insertPoint(b Bin) error {
	h.updateRange(b.Mean)
	h.totalCount += b.Count

	if h.freezeActive() {
		h.freezeAccumulate(b)
		return nil
	}

	if _, ok := h.res.bins.get(b.Mean); ok {
		return h.res.accumulateExisting(b)
	}

	h.res.insertNew(b)
	h.res.mergeDown()
	return nil
}

// freezeAccumulate folds b into whichever of the floor/ceil neighbouring
// bins is closer in mean, favouring floor on a tie (spec §4.1 step 3).
func (h *Histogram) freezeAccumulate(b Bin) {
	floorBin, hasFloor := h.res.bins.floor(b.Mean)
	ceilBin, hasCeil := h.res.bins.ceil(b.Mean)

	var target float64
	switch {
	case hasFloor && hasCeil:
		if (b.Mean - floorBin.Mean) <= (ceilBin.Mean - b.Mean) {
			target = floorBin.Mean
		} else {
			target = ceilBin.Mean
		}
	case hasFloor:
		target = floorBin.Mean
	case hasCeil:
		target = ceilBin.Mean
	default:
		assertf(false, "freeze accumulate invoked on an empty reservoir")
	}

	if err := h.res.accumulateInto(target, b); err != nil {
		panic("histogram: freeze accumulate: " + err.Error())
	}
}

// scaleCounts multiplies every bin's count (and target) by f, used by the
// NestedHistogram target's scale operation (spec §3/§4.4).
func (h *Histogram) scaleCounts(f float64) {
	for _, b := range h.res.ascendAll() {
		b.Count *= f
		b.Target.scale(f)
		h.res.bins.put(b)
	}
	h.totalCount *= f
	h.missingCount *= f
	if h.missingTarget != nil {
		h.missingTarget.scale(f)
	}
}

// ---------------- Accessors ----------------

func (h *Histogram) TotalCount() float64 { return h.totalCount }

// TotalTargetSum folds every bin's target into one summary via the same
// clone/sum algebra used everywhere else; it excludes the missing target.
func (h *Histogram) TotalTargetSum() Target {
	sum := zeroTargetFor(h.targetType, h.categories, h.groupTypes)
	h.res.bins.ascend(func(b Bin) {
		if err := sum.sum(b.Target); err != nil {
			panic("histogram: TotalTargetSum: " + err.Error())
		}
	})
	return sum
}

func (h *Histogram) Minimum() (float64, bool) { return h.minimum, h.hasRange }
func (h *Histogram) Maximum() (float64, bool) { return h.maximum, h.hasRange }
func (h *Histogram) MissingCount() float64    { return h.missingCount }

// MissingSummary is the {count, target} pair serialized as "missing_bin".
type MissingSummary struct {
	Count  float64
	Target Target
}

// MissingBin returns the missing-value bookkeeping; present iff
// MissingCount() > 0, matching the serialized form's optionality.
func (h *Histogram) MissingBin() (MissingSummary, bool) {
	if h.missingCount <= 0 {
		return MissingSummary{}, false
	}
	return MissingSummary{Count: h.missingCount, Target: h.missingTarget}, true
}

// Bins returns a defensive copy of the reservoir's bins in ascending mean
// order.
func (h *Histogram) Bins() []Bin {
	raw := h.res.ascendAll()
	out := make([]Bin, len(raw))
	for i, b := range raw {
		out[i] = b.clone()
	}
	return out
}

func (h *Histogram) Len() int                        { return h.res.len() }
func (h *Histogram) TargetType() TargetType           { return h.targetType }
func (h *Histogram) Categories() []string             { return h.categories }
func (h *Histogram) GroupTypes() []GroupSlotKind      { return h.groupTypes }
func (h *Histogram) MaxBins() int                     { return h.maxBins }
func (h *Histogram) GapWeighted() bool                { return h.gapWeighted }
func (h *Histogram) FreezeThreshold() (float64, bool) {
	if h.freezeThreshold == nil {
		return 0, false
	}
	return *h.freezeThreshold, true
}
func (h *Histogram) Backend() Backend { return h.res.backend }
