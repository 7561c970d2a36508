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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

func siteRows() []rows.Row {
	return []rows.Row{
		{"id": 1, "site": "B"},
		{"id": 2, "site": "A"},
		{"id": 3, "site": ""},
	}
}

func testColumns() *columns.Set {
	return columns.MustNewSet(
		columns.ColumnSpec{ID: "site"},
		columns.ColumnSpec{ID: "tags", Kind: columns.KindMulti},
		columns.ColumnSpec{ID: "owner", Kind: columns.KindNested, Children: "details"},
	)
}

func TestDistinctValues(t *testing.T) {
	rs := []rows.Row{
		{"site": "b"},
		{"site": "Item 10"},
		{"site": "A"},
		{"site": nil},
		{"site": "Item 9"},
		{"site": "A"},
	}
	got := DistinctValues(rs, &columns.ColumnSpec{ID: "site"})
	want := []string{"A", "b", "Item 9", "Item 10", columns.BlankLabel}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DistinctValues mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctValuesFlattensMultiValued(t *testing.T) {
	cols := testColumns()
	rs := []rows.Row{
		{"tags": []any{"red", "blue"}},
		{"tags": []any{"blue"}},
		{"details": []any{map[string]any{"owner": "Zoe"}, map[string]any{"owner": "Al"}}},
	}
	assert.Equal(t, []string{"blue", "red", columns.BlankLabel}, DistinctValues(rs, cols.Get("tags")))
	assert.Equal(t, []string{"Al", "Zoe", columns.BlankLabel}, DistinctValues(rs, cols.Get("owner")))
}

func TestDistinctValuesEmpty(t *testing.T) {
	assert.Empty(t, DistinctValues(nil, &columns.ColumnSpec{ID: "x"}))
}

func TestFilterScenario(t *testing.T) {
	cols := testColumns()
	s := NewState()
	s.Set("site", []string{"A", columns.BlankLabel})

	got := s.Filter(siteRows(), cols)
	assert.Equal(t, []string{"2", "3"}, rows.IDs(got, "id"))
}

func TestPredicate(t *testing.T) {
	cols := testColumns()
	s := NewState()
	s.Set("site", []string{"B"})
	s.Set("tags", []string{"red"})
	keep := s.Predicate(cols)

	tests := []struct {
		name string
		row  rows.Row
		want bool
	}{
		{"both selected", rows.Row{"site": "B", "tags": []any{"red", "blue"}}, true},
		{"site rejected", rows.Row{"site": "A", "tags": []any{"red"}}, false},
		{"tags rejected", rows.Row{"site": "B", "tags": []any{"blue"}}, false},
		{"blank tags", rows.Row{"site": "B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keep(tt.row))
			assert.Equal(t, s.Matches(tt.row, cols), keep(tt.row))
		})
	}

	// The predicate reads the live state.
	s.Clear("tags")
	assert.True(t, keep(rows.Row{"site": "B", "tags": []any{"blue"}}))
}

func TestNoFiltersMatchEverything(t *testing.T) {
	s := NewState()
	assert.False(t, s.IsActive())
	assert.Len(t, s.Filter(siteRows(), testColumns()), 3)
}

func TestEmptySelectionRejectsAll(t *testing.T) {
	s := NewState()
	s.Set("site", nil)
	assert.True(t, s.IsFiltered("site"))
	assert.Empty(t, s.Filter(siteRows(), testColumns()))
}

func TestApplyFullSelectionClears(t *testing.T) {
	cols := testColumns()
	rs := siteRows()
	all := DistinctValues(rs, cols.Get("site"))

	s := NewState()
	assert.True(t, s.Apply("site", []string{"A"}, all))
	assert.True(t, s.IsFiltered("site"))

	assert.False(t, s.Apply("site", all, all))
	assert.False(t, s.IsFiltered("site"))
	assert.False(t, s.IsActive())
}

func TestFilterIdempotence(t *testing.T) {
	cols := testColumns()
	rs := []rows.Row{
		{"id": 1, "site": "A", "tags": []any{"x", "y"}},
		{"id": 2, "site": "B", "tags": []any{}},
		{"id": 3, "tags": []any{"y"}},
	}
	for _, id := range []string{"site", "tags", "owner"} {
		all := DistinctValues(rs, cols.Get(id))

		withAll := NewState()
		withAll.Set(id, all)
		assert.Equal(t, rows.IDs(rs, "id"), rows.IDs(withAll.Filter(rs, cols), "id"), id)
	}
}

func TestFilterMonotonicity(t *testing.T) {
	cols := testColumns()
	rs := []rows.Row{
		{"id": 1, "tags": []any{"a", "b"}},
		{"id": 2, "tags": []any{"b", "c"}},
		{"id": 3, "tags": []any{"c"}},
		{"id": 4},
	}
	all := DistinctValues(rs, cols.Get("tags"))
	prev := len(rs)
	for n := len(all); n >= 0; n-- {
		s := NewState()
		s.Set("tags", all[:n])
		got := len(s.Filter(rs, cols))
		assert.LessOrEqual(t, got, prev, "selection of %d values", n)
		prev = got
	}
}

func TestNestedFilterMatchesAnyChild(t *testing.T) {
	cols := testColumns()
	rs := []rows.Row{
		{"id": 1, "details": []any{map[string]any{"owner": "Ann"}, map[string]any{"owner": "Bob"}}},
		{"id": 2, "details": []any{map[string]any{"owner": "Cy"}}},
		{"id": 3},
	}
	s := NewState()
	s.Set("owner", []string{"Bob", ""})
	assert.Equal(t, []string{"1", "3"}, rows.IDs(s.Filter(rs, cols), "id"))
}

func TestStateAccessors(t *testing.T) {
	s := NewState()
	s.Set("b", []string{" y ", "x"})
	s.Set("a", []string{""})

	assert.Equal(t, []string{"a", "b"}, s.Columns())
	sel, ok := s.Selected("b")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, sel)
	assert.True(t, s.Contains("a", columns.BlankLabel))
	assert.True(t, s.Contains("unfiltered", "anything"))
	assert.False(t, s.Contains("b", "z"))

	c := s.Clone()
	s.Clear("b")
	assert.False(t, s.IsFiltered("b"))
	assert.True(t, c.IsFiltered("b"))

	s.Reset()
	assert.False(t, s.IsActive())
}

func TestMatch(t *testing.T) {
	tests := []struct {
		term     string
		value    string
		expected bool
	}{
		{"", "anything", true},
		{"clo", "CLOSED", true},
		{"xyz", "CLOSED", false},
		{`"CLOSED"`, "CLOSED", true},
		{`"CLOSED"`, "CLOSED_DUP", false},
		{`'a'`, "bab", true},
		{`'A'`, "bab", false},
		{`!'a'`, "b", true},
		{`!'a'`, "a", false},
		{`'a'&'b'`, "ab", true},
		{`'a'&'b'`, "a", false},
		{`'a'&'b'|'c'`, "c", true},
		{`"OPEN"|"CLOSED"`, "OPEN", true},
		{`"OPEN"|"CLOSED"`, "PENDING", false},
	}
	for _, tt := range tests {
		result := Match(tt.term, tt.value)
		if result != tt.expected {
			t.Errorf("Match(%q, %q) = %v; expected %v", tt.term, tt.value, result, tt.expected)
		}
	}
}

func TestSearchValues(t *testing.T) {
	values := []string{"Alpha", "beta", "Gamma", columns.BlankLabel}
	assert.Equal(t, values, SearchValues(values, "  "))
	assert.Equal(t, values, SearchValues(values, "a"))
	assert.Equal(t, []string{"Alpha", "Gamma"}, SearchValues(values, "ma|ph"))
	assert.Equal(t, []string{"beta"}, SearchValues(values, "BE"))
	assert.Equal(t, []string{columns.BlankLabel}, SearchValues(values, "blank"))
	assert.Empty(t, SearchValues(values, "zzz"))
}
