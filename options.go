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

import "math"

// Config holds the creation options enumerated in spec §6. Prefer the
// functional Option helpers below over constructing Config directly.
type Config struct {
	Bins        int
	GapWeighted bool
	Categories  []string
	GroupTypes  []GroupSlotKind
	Freeze      *float64
	Backend     Backend
}

func defaultConfig() Config {
	return Config{Bins: 64, Backend: BackendAuto}
}

// Option mutates a Config during New.
type Option func(*Config)

// WithBins sets the maximum reservoir size B (spec default 64).
func WithBins(n int) Option {
	return func(c *Config) { c.Bins = n }
}

// WithGapWeighted enables the ln(e + min_count) gap-weighting rule.
func WithGapWeighted(on bool) Option {
	return func(c *Config) { c.GapWeighted = on }
}

// WithCategories latches the target type to array-backed categorical
// with a fixed, ordered vocabulary.
func WithCategories(categories ...string) Option {
	return func(c *Config) { c.Categories = categories }
}

// WithGroupTypes latches the target type to Group with the given fixed
// per-slot schema.
func WithGroupTypes(kinds ...GroupSlotKind) Option {
	return func(c *Config) { c.GroupTypes = kinds }
}

// WithFreeze sets the freeze threshold (spec §4.1 step 3). Pass 0 to
// freeze as soon as capacity is reached; math.Inf(1) never freezes.
func WithFreeze(threshold float64) Option {
	return func(c *Config) { c.Freeze = &threshold }
}

// WithBackend overrides the array/tree reservoir backend selection.
func WithBackend(b Backend) Option {
	return func(c *Config) { c.Backend = b }
}

func (c Config) validate() error {
	if c.Bins < 1 {
		return newError("New", KindTypeMismatch, "bins must be >= 1, got %d", c.Bins)
	}
	if c.Freeze != nil && (*c.Freeze < 0 || math.IsNaN(*c.Freeze)) {
		return newError("New", KindTypeMismatch, "freeze threshold must be >= 0, got %v", *c.Freeze)
	}
	return nil
}
