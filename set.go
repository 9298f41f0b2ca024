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
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Set is a map of histograms identified by name, the natural unit for
// partitioned ingest: one Histogram per partition/worker, merged into a
// single named entry by the caller.
type Set map[string]*Histogram

// String renders the ASCII bar chart of every histogram in the set.
func (s Set) String() string {
	var output []string
	for _, h := range s {
		output = append(output, h.String())
	}
	return strings.Join(output, "\n")
}

// Fprint writes String's output to w.
func (s Set) Fprint(w io.Writer) (int, error) {
	return w.Write([]byte(s.String()))
}

// MergeAll merges every histogram of src into the matching entry of s, by
// name. An entry missing from s is created first via CloneEmpty on the
// src side, so it starts with the same creation parameters. Entries
// present in both must already be merge-compatible (spec §4.1, "merge");
// an incompatible pair aborts before any histogram in s is mutated.
func (s Set) MergeAll(src Set) error {
	for name, srcHist := range src {
		if err := compatibleForMerge(s[name], srcHist); err != nil {
			return errors.Wrapf(err, "histogram %q", name)
		}
	}

	for name, srcHist := range src {
		if s[name] == nil {
			s[name] = srcHist.CloneEmpty()
		}
		if err := s[name].Merge(srcHist); err != nil {
			return errors.Wrapf(err, "histogram %q", name)
		}
	}
	return nil
}

func compatibleForMerge(dst, src *Histogram) error {
	if dst == nil || src == nil || (src.Len() == 0 && src.missingCount == 0) {
		return nil
	}
	if dst.targetLatched && src.targetLatched && dst.targetType != src.targetType {
		return newError("merge_all", KindTypeMismatch, "target type %v != %v", dst.targetType, src.targetType)
	}
	if dst.targetType == TargetCategoricalArray && src.targetType == TargetCategoricalArray {
		if err := sameCategories(dst.categories, src.categories); err != nil {
			return newError("merge_all", KindTypeMismatch, "%s", err)
		}
	}
	return nil
}
