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

// Inserter is the subset of Histogram's methods related to feeding it
// points; ingestion code that only pushes data in can depend on this
// narrower surface instead of the full Histogram, which also exposes
// every query.
type Inserter interface {
	Insert(p *float64) error
	InsertNumeric(p, v *float64) error
	InsertCategorical(p *float64, v *string) error
	InsertGroup(p *float64, vs []interface{}) error
	InsertBin(b Bin) error
}

var _ Inserter = (*Histogram)(nil)

// InsertAll feeds every point of vs into ins via Insert, stopping at the
// first error (e.g. a type mismatch against a histogram already latched
// to a non-None target).
func InsertAll(ins Inserter, vs []float64) error {
	for i := range vs {
		if err := ins.Insert(&vs[i]); err != nil {
			return err
		}
	}
	return nil
}
