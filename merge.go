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

// Merge folds other's bins, missing-bookkeeping, and range into h in
// O(B) (spec §4.1, "merge"). other is left unmodified. The two
// histograms must agree on target type and, for CategoricalArray
// targets, on the declared category list; otherwise Merge reports
// KindTypeMismatch and leaves h unchanged.
func (h *Histogram) Merge(other *Histogram) error {
	if other == nil || (other.Len() == 0 && other.missingCount == 0) {
		return nil
	}

	if h.targetLatched && other.targetLatched && h.targetType != other.targetType {
		return newError("merge", KindTypeMismatch, "cannot merge %v target into %v target", other.targetType, h.targetType)
	}
	if h.targetType == TargetCategoricalArray && other.targetType == TargetCategoricalArray {
		if err := sameCategories(h.categories, other.categories); err != nil {
			return newError("merge", KindTypeMismatch, "%s", err)
		}
	}
	if !h.targetLatched && other.targetLatched {
		if err := h.ensureTargetType(other.targetType); err != nil {
			return err
		}
		if h.categories == nil {
			h.categories = other.categories
		}
		if h.groupTypes == nil {
			h.groupTypes = other.groupTypes
		}
	}

	for _, b := range other.Bins() {
		if err := h.InsertBin(b); err != nil {
			return err
		}
	}

	if other.missingCount > 0 {
		if h.missingTarget == nil {
			h.missingTarget = other.missingTarget.init()
		}
		if err := h.missingTarget.sum(other.missingTarget); err != nil {
			return newError("merge", KindTypeMismatch, "%s", err)
		}
		h.missingCount += other.missingCount
		h.totalCount += other.missingCount
	}

	if otherMin, ok := other.Minimum(); ok {
		h.updateRange(otherMin)
	}
	if otherMax, ok := other.Maximum(); ok {
		h.updateRange(otherMax)
	}
	return nil
}

func sameCategories(a, b []string) error {
	if len(a) != len(b) {
		return errors.Errorf("category lists differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return errors.Errorf("category lists differ at index %d: %q vs %q", i, a[i], b[i])
		}
	}
	return nil
}
