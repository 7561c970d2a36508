/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package filtering implements spreadsheet-style per-column value filters.
//
// A filter selects, per column, the set of values a row may have. Choices
// are the distinct extracted values of the column (see DistinctValues);
// a row passes when every filtered column yields at least one selected value.
package filtering

import (
	"slices"

	"golang.org/x/text/language"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

// DistinctValues returns the sorted distinct values of a column across rs.
// Multi-valued cells contribute every value. Values are ordered naturally
// and case-insensitively; the blank sentinel, if present, comes last.
//
// The result is not cached: rows may change between two popup openings.
func DistinctValues(rs []rows.Row, col *columns.ColumnSpec) []string {
	return DistinctValuesWith(rs, col, columns.NewCollator(language.Und))
}

// DistinctValuesWith is DistinctValues with an explicit collator.
func DistinctValuesWith(rs []rows.Row, col *columns.ColumnSpec, coll *columns.Collator) []string {
	seen := make(map[string]bool)
	values := []string{}
	hasBlank := false
	for _, r := range rs {
		for _, v := range columns.Extract(r, col) {
			if v == columns.BlankLabel {
				hasBlank = true
				continue
			}
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
	}
	slices.SortFunc(values, coll.CompareTotal)
	if hasBlank {
		values = append(values, columns.BlankLabel)
	}
	return values
}
