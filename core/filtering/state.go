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

package filtering

import (
	"slices"
	"strings"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

// State maps column ids to their selected value sets. A column without an
// entry is unfiltered. State is kept minimal: an entry whose selection
// covers every distinct value is removed by Apply, so IsFiltered is a
// presence test.
type State struct {
	selected map[string]map[string]struct{}
}

// NewState returns an empty filter state.
func NewState() *State {
	return &State{selected: make(map[string]map[string]struct{})}
}

// normalizeValue trims a selected value; the empty string stands for blanks.
func normalizeValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return columns.BlankLabel
	}
	return v
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[normalizeValue(v)] = struct{}{}
	}
	return set
}

// Set stores the selection for a column as given. An empty selection is a
// filter that rejects every row.
func (s *State) Set(columnID string, values []string) {
	s.selected[columnID] = toSet(values)
}

// Apply stores the selection for a column unless it covers every value in
// all, in which case the column's filter is cleared. It reports whether the
// column is filtered afterwards.
func (s *State) Apply(columnID string, values []string, all []string) bool {
	set := toSet(values)
	covered := true
	for _, v := range all {
		if _, ok := set[normalizeValue(v)]; !ok {
			covered = false
			break
		}
	}
	if covered {
		delete(s.selected, columnID)
		return false
	}
	s.selected[columnID] = set
	return true
}

// Clear removes the filter of one column.
func (s *State) Clear(columnID string) {
	delete(s.selected, columnID)
}

// Reset removes every filter.
func (s *State) Reset() {
	clear(s.selected)
}

// IsFiltered reports whether the column has an active filter.
func (s *State) IsFiltered(columnID string) bool {
	_, ok := s.selected[columnID]
	return ok
}

// IsActive reports whether any column is filtered.
func (s *State) IsActive() bool {
	return len(s.selected) > 0
}

// Columns returns the filtered column ids in sorted order.
func (s *State) Columns() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Selected returns the sorted selection of a column and whether the column
// is filtered.
func (s *State) Selected(columnID string) ([]string, bool) {
	set, ok := s.selected[columnID]
	if !ok {
		return nil, false
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	slices.Sort(values)
	return values, true
}

// Contains reports whether value is selected for the column. Unfiltered
// columns contain every value.
func (s *State) Contains(columnID, value string) bool {
	set, ok := s.selected[columnID]
	if !ok {
		return true
	}
	_, ok = set[normalizeValue(value)]
	return ok
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := NewState()
	for id, set := range s.selected {
		cp := make(map[string]struct{}, len(set))
		for v := range set {
			cp[v] = struct{}{}
		}
		c.selected[id] = cp
	}
	return c
}

// Matches reports whether r passes every active filter: for each filtered
// column at least one extracted value must be selected.
func (s *State) Matches(r rows.Row, cols *columns.Set) bool {
	for id, set := range s.selected {
		if !matchesAny(columns.ExtractAll(r, cols, id), set) {
			return false
		}
	}
	return true
}

func matchesAny(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Predicate returns Matches bound to cols.
func (s *State) Predicate(cols *columns.Set) func(rows.Row) bool {
	return func(r rows.Row) bool {
		return s.Matches(r, cols)
	}
}

// Filter returns the rows of rs that match, in their original order.
// rs is not modified.
func (s *State) Filter(rs []rows.Row, cols *columns.Set) []rows.Row {
	keep := s.Predicate(cols)
	out := make([]rows.Row, 0, len(rs))
	for _, r := range rs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
