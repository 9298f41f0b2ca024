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
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is the canonical wire form of a Histogram (spec §6,
// "Serialization"): every field a fresh Histogram needs to be
// reconstructed bitwise-equal, modulo JSON's own rounding.
type Record struct {
	MaxBins     int             `json:"max_bins"`
	GapWeighted bool            `json:"gap_weighted,omitempty"`
	Freeze      *float64        `json:"freeze,omitempty"`
	GroupTypes  []string        `json:"group_types,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Bins        []BinRecord     `json:"bins"`
	MissingBin  *MissingRecord  `json:"missing_bin,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
}

// BinRecord is one serialized {mean, count, target?} triple.
type BinRecord struct {
	Mean   float64         `json:"mean"`
	Count  float64         `json:"count"`
	Target json.RawMessage `json:"target,omitempty"`
}

// MissingRecord is the serialized missing-value bookkeeping.
type MissingRecord struct {
	Count  float64         `json:"count"`
	Target json.RawMessage `json:"target,omitempty"`
}

type numericWire struct {
	Sum          float64 `json:"sum"`
	SumSquares   float64 `json:"sum_squares"`
	MissingCount float64 `json:"missing_count"`
}

type categoricalWire struct {
	Counts       map[string]float64 `json:"counts"`
	MissingCount float64             `json:"missing_count"`
}

type nestedWire struct {
	Hist *Record `json:"hist"`
}

// targetToWire converts a Target into its serializable shape (spec §6).
// None carries no wire form; callers omit the field entirely for it.
func targetToWire(t Target) interface{} {
	switch v := t.(type) {
	case noneTarget:
		return nil
	case *numericTarget:
		return numericWire{Sum: v.Sum, SumSquares: v.SumSquares, MissingCount: v.Missing}
	case *categoricalMapTarget:
		return categoricalWire{Counts: v.Counts, MissingCount: v.Missing}
	case *categoricalArrayTarget:
		counts := make(map[string]float64, len(v.Categories))
		for i, c := range v.Categories {
			counts[c] = v.Counts[i]
		}
		return categoricalWire{Counts: counts, MissingCount: v.Missing}
	case *groupTarget:
		children := make([]interface{}, len(v.Children))
		for i, c := range v.Children {
			children[i] = targetToWire(c)
		}
		return children
	case *nestedHistogramTarget:
		rec, err := v.Hist.ToRecord()
		if err != nil {
			panic("histogram: serialize nested histogram target: " + err.Error())
		}
		return nestedWire{Hist: rec}
	default:
		return nil
	}
}

func marshalTarget(t Target, targetType TargetType) (json.RawMessage, error) {
	if targetType == TargetNone {
		return nil, nil
	}
	data, err := jsonAPI.Marshal(targetToWire(t))
	if err != nil {
		return nil, errors.Wrap(err, "marshal target")
	}
	return json.RawMessage(data), nil
}

// unmarshalTarget is the inverse of targetToWire, driven by the caller's
// already-known target shape (target type is latched histogram-wide, so
// the wire form never needs to self-describe its variant).
func unmarshalTarget(raw json.RawMessage, targetType TargetType, categories []string, groupTypes []GroupSlotKind) (Target, error) {
	if len(raw) == 0 || targetType == TargetNone {
		return noneTarget{}, nil
	}

	switch targetType {
	case TargetNumeric:
		var w numericWire
		if err := jsonAPI.Unmarshal(raw, &w); err != nil {
			return nil, errors.Wrap(err, "unmarshal numeric target")
		}
		return &numericTarget{Sum: w.Sum, SumSquares: w.SumSquares, Missing: w.MissingCount}, nil

	case TargetCategoricalMap:
		var w categoricalWire
		if err := jsonAPI.Unmarshal(raw, &w); err != nil {
			return nil, errors.Wrap(err, "unmarshal categorical-map target")
		}
		counts := w.Counts
		if counts == nil {
			counts = map[string]float64{}
		}
		return &categoricalMapTarget{Counts: counts, Missing: w.MissingCount}, nil

	case TargetCategoricalArray:
		var w categoricalWire
		if err := jsonAPI.Unmarshal(raw, &w); err != nil {
			return nil, errors.Wrap(err, "unmarshal categorical-array target")
		}
		at := newCategoricalArrayTarget(categories)
		for k, v := range w.Counts {
			if err := at.set(k, v); err != nil {
				return nil, errors.Wrap(err, "unmarshal categorical-array target")
			}
		}
		at.Missing = w.MissingCount
		return at, nil

	case TargetGroup:
		var raws []json.RawMessage
		if err := jsonAPI.Unmarshal(raw, &raws); err != nil {
			return nil, errors.Wrap(err, "unmarshal group target")
		}
		if len(raws) != len(groupTypes) {
			return nil, errors.Errorf("group target arity %d does not match declared %d", len(raws), len(groupTypes))
		}
		children := make([]Target, len(raws))
		for i, r := range raws {
			c, err := unmarshalTarget(r, groupChildTargetType(groupTypes[i]), nil, nil)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return &groupTarget{Children: children}, nil

	case TargetNestedHistogram:
		var w nestedWire
		if err := jsonAPI.Unmarshal(raw, &w); err != nil {
			return nil, errors.Wrap(err, "unmarshal nested-histogram target")
		}
		h, err := FromRecord(w.Hist)
		if err != nil {
			return nil, err
		}
		return &nestedHistogramTarget{Hist: h}, nil

	default:
		return noneTarget{}, nil
	}
}

// ToRecord converts h into its canonical wire form.
func (h *Histogram) ToRecord() (*Record, error) {
	rec := &Record{MaxBins: h.maxBins, GapWeighted: h.gapWeighted}

	if h.freezeThreshold != nil {
		f := *h.freezeThreshold
		rec.Freeze = &f
	}
	if h.groupTypes != nil {
		rec.GroupTypes = make([]string, len(h.groupTypes))
		for i, k := range h.groupTypes {
			rec.GroupTypes[i] = k.String()
		}
	}
	if h.categories != nil {
		rec.Categories = append([]string(nil), h.categories...)
	}

	bins := h.res.ascendAll()
	rec.Bins = make([]BinRecord, len(bins))
	for i, b := range bins {
		raw, err := marshalTarget(b.Target, h.targetType)
		if err != nil {
			return nil, err
		}
		rec.Bins[i] = BinRecord{Mean: b.Mean, Count: b.Count, Target: raw}
	}

	if ms, ok := h.MissingBin(); ok {
		raw, err := marshalTarget(ms.Target, h.targetType)
		if err != nil {
			return nil, err
		}
		rec.MissingBin = &MissingRecord{Count: ms.Count, Target: raw}
	}

	if min, ok := h.Minimum(); ok {
		rec.Minimum = &min
	}
	if max, ok := h.Maximum(); ok {
		rec.Maximum = &max
	}
	return rec, nil
}

// FromRecord is the inverse constructor: it must produce a histogram that
// returns values equal to the original for every query in §4.1 (spec §6,
// "round-trip"). It restores the bin set directly into the reservoir
// rather than replaying InsertBin, so a frozen histogram's exact bin
// layout survives even though replaying inserts one at a time would risk
// re-triggering freeze routing on the smaller, partially-restored set.
func FromRecord(rec *Record) (*Histogram, error) {
	opts := []Option{WithBins(rec.MaxBins), WithGapWeighted(rec.GapWeighted)}
	if len(rec.Categories) > 0 {
		opts = append(opts, WithCategories(rec.Categories...))
	}

	var groupTypes []GroupSlotKind
	if len(rec.GroupTypes) > 0 {
		groupTypes = make([]GroupSlotKind, len(rec.GroupTypes))
		for i, s := range rec.GroupTypes {
			k, err := parseGroupSlotKind(s)
			if err != nil {
				return nil, newError("from_record", KindTypeMismatch, "%s", err)
			}
			groupTypes[i] = k
		}
		opts = append(opts, WithGroupTypes(groupTypes...))
	}
	if rec.Freeze != nil {
		opts = append(opts, WithFreeze(*rec.Freeze))
	}

	h, err := New(opts...)
	if err != nil {
		return nil, err
	}

	targetType := TargetNone
	if h.targetLatched {
		targetType = h.targetType
	} else if len(rec.Bins) > 0 || rec.MissingBin != nil {
		// Neither categories nor group_types were declared; infer the
		// shape from the first bin's wire target (the missing bin's when
		// there are no bins), same as a fresh Histogram latching on its
		// first insert.
		var raw json.RawMessage
		if len(rec.Bins) > 0 {
			raw = rec.Bins[0].Target
		} else {
			raw = rec.MissingBin.Target
		}
		targetType = inferTargetType(raw)
		if err := h.ensureTargetType(targetType); err != nil {
			return nil, err
		}
	}

	bins := make([]Bin, len(rec.Bins))
	var totalBinCount float64
	for i, br := range rec.Bins {
		target, err := unmarshalTarget(br.Target, targetType, h.categories, groupTypes)
		if err != nil {
			return nil, newError("from_record", KindTypeMismatch, "%s", err)
		}
		bins[i] = Bin{Mean: br.Mean, Count: br.Count, Target: target}
		totalBinCount += br.Count
	}
	h.res.restore(bins)
	h.totalCount = totalBinCount

	if rec.MissingBin != nil {
		target, err := unmarshalTarget(rec.MissingBin.Target, targetType, h.categories, groupTypes)
		if err != nil {
			return nil, newError("from_record", KindTypeMismatch, "%s", err)
		}
		h.missingTarget = target
		h.missingCount = rec.MissingBin.Count
		h.totalCount += rec.MissingBin.Count
	} else {
		h.missingTarget = zeroTargetFor(targetType, h.categories, groupTypes)
	}

	if rec.Minimum != nil {
		h.minimum = *rec.Minimum
		h.hasRange = true
	}
	if rec.Maximum != nil {
		h.maximum = *rec.Maximum
		h.hasRange = true
	}
	return h, nil
}

// inferTargetType guesses a bin's target shape from its raw wire form when
// neither categories nor group_types were declared at creation. Numeric and
// categorical wire forms are structurally distinct (sum_squares vs counts);
// Group serializes as a JSON array.
func inferTargetType(raw json.RawMessage) TargetType {
	if len(raw) == 0 {
		return TargetNone
	}
	trimmed := raw
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\n' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return TargetGroup
	}
	var probe struct {
		Counts *map[string]float64 `json:"counts"`
		Hist   *Record             `json:"hist"`
	}
	if err := jsonAPI.Unmarshal(raw, &probe); err == nil {
		switch {
		case probe.Hist != nil:
			return TargetNestedHistogram
		case probe.Counts != nil:
			return TargetCategoricalMap
		}
	}
	return TargetNumeric
}

// MarshalJSON implements json.Marshaler via the canonical Record form.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	rec, err := h.ToRecord()
	if err != nil {
		return nil, err
	}
	return jsonAPI.Marshal(rec)
}

// UnmarshalJSON implements json.Unmarshaler via the canonical Record form.
func (h *Histogram) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := jsonAPI.Unmarshal(data, &rec); err != nil {
		return err
	}
	restored, err := FromRecord(&rec)
	if err != nil {
		return err
	}
	*h = *restored
	return nil
}
