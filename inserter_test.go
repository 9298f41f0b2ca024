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

func TestInsertAllFeedsEveryPoint(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)

	var ins Inserter = h
	require.NoError(t, InsertAll(ins, []float64{1, 2, 3}))
	require.Equal(t, 3.0, h.TotalCount())
}

func TestInsertAllStopsAtFirstError(t *testing.T) {
	h, err := New(WithBins(8))
	require.NoError(t, err)
	require.NoError(t, h.InsertNumeric(ptr(1.0), ptr(1.0)))

	err = InsertAll(h, []float64{2, 3})
	require.Error(t, err)
}
