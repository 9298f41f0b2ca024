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
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the closed set of failure reasons this package can return.
type Kind int

const (
	// KindTypeMismatch covers incompatible target types on insert/merge,
	// group arity mismatches, and incompatible array-backed category lists.
	KindTypeMismatch Kind = iota + 1
	// KindUnknownCategory is a categorical insert with a value outside a
	// declared array-backed category list.
	KindUnknownCategory
	// KindEmpty is sum/extended_sum/average_target on a histogram with no bins.
	KindEmpty
	// KindOutOfRange is reserved for callers that insist on strict range checking.
	KindOutOfRange
	// KindBinUpdate marks an internal invariant violation; it never crosses
	// the public API — accumulating two bins with different means is a bug.
	KindBinUpdate
)

func (k Kind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type_mismatch"
	case KindUnknownCategory:
		return "unknown_category"
	case KindEmpty:
		return "empty"
	case KindOutOfRange:
		return "out_of_range"
	case KindBinUpdate:
		return "bin_update"
	default:
		return "unknown"
	}
}

// Error is returned by the insert, merge, query and FromRecord operations.
// Set.MergeAll wraps the *Error of a failed Merge with the entry's name;
// ToRecord, MarshalJSON and UnmarshalJSON return JSON encoding/decoding
// failures as plain errors.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("histogram: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("histogram: %s: %s", e.Op, e.Kind)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers
// can write errors.Is(err, histogram.ErrEmpty).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(op string, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Op: op, Kind: kind, Err: errors.Errorf(format, args...)}
}

// Sentinels for errors.Is comparisons against a specific failure kind.
var (
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrUnknownCategory = &Error{Kind: KindUnknownCategory}
	ErrEmpty           = &Error{Kind: KindEmpty}
	ErrOutOfRange      = &Error{Kind: KindOutOfRange}
)

// assertf panics on a fatal internal invariant violation (spec: "should
// assert"), never returned to a caller as an *Error.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("histogram: invariant violated: "+format, args...))
	}
}
