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

package views

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/query"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/sorting"
	"github.com/google/recordgrid/core/tables"
)

func newView(t *testing.T) *tables.TableView {
	t.Helper()
	tv, err := tables.NewTableView(tables.ViewDef{
		Name:  "controls",
		Title: "Risk controls",
		Columns: []columns.ColumnSpec{
			{ID: "hazard", Title: "Hazard"},
			{ID: "control", Title: "Control"},
		},
		GroupLevels: []string{"hazard"},
	}, []rows.Row{
		{"id": 1, "hazard": "H1", "control": "C1"},
		{"id": 2, "hazard": "H1", "control": "C2"},
		{"id": 3, "hazard": "H2", "control": ""},
	})
	require.NoError(t, err)
	return tv
}

func parseQuery(t *testing.T, raw string) *query.Query {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return query.NewQuery(u)
}

func TestBuildViewModelCells(t *testing.T) {
	tv := newView(t)
	vm := BuildViewModel(tv, parseQuery(t, "/grid?view=controls"))

	assert.Equal(t, "Risk controls", vm.Title)
	assert.Equal(t, 3, vm.TotalRows)
	assert.Equal(t, 3, vm.DisplayedRows)
	assert.False(t, vm.HasMoreRows)
	assert.True(t, vm.Reorderable)
	require.Len(t, vm.Rows, 3)

	assert.Equal(t, []CellInfo{
		{Column: "hazard", Text: "H1", RowSpan: 2},
		{Column: "control", Text: "C1", RowSpan: 1},
	}, vm.Rows[0].Cells)
	assert.Equal(t, []CellInfo{{Column: "control", Text: "C2", RowSpan: 1}}, vm.Rows[1].Cells)
	assert.Equal(t, []CellInfo{
		{Column: "hazard", Text: "H2", RowSpan: 1},
		{Column: "control", Text: "", RowSpan: 1},
	}, vm.Rows[2].Cells)
}

func TestBuildViewModelGroups(t *testing.T) {
	twoLevels, err := tables.NewTableView(tables.ViewDef{
		Name:        "nested",
		Columns:     []columns.ColumnSpec{{ID: "hazard"}, {ID: "control"}},
		GroupLevels: []string{"hazard", "control"},
	}, []rows.Row{
		{"id": "a", "hazard": "H1", "control": " C1"},
		{"id": "b", "hazard": "H1", "control": "C1"},
		{"id": "c", "hazard": "H2", "control": "C1"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		tv   *tables.TableView
		url  string
		want []GroupInfo
	}{
		{"one level", newView(t), "/grid?view=controls", []GroupInfo{
			{Column: "hazard", Value: "H1", First: "1", Start: 0, Rows: 2},
			{Column: "hazard", Value: "H2", First: "3", Start: 2, Rows: 1},
		}},
		{"limited", newView(t), "/grid?view=controls&limit=1", []GroupInfo{
			{Column: "hazard", Value: "H1", First: "1", Start: 0, Rows: 1},
		}},
		{"two levels", twoLevels, "/grid?view=nested", []GroupInfo{
			{Column: "hazard", Value: "H1", First: "a", Start: 0, Rows: 2, Groups: []GroupInfo{
				{Column: "control", Value: "C1", First: "a", Start: 0, Rows: 2},
			}},
			{Column: "hazard", Value: "H2", First: "c", Start: 2, Rows: 1, Groups: []GroupInfo{
				{Column: "control", Value: "C1", First: "c", Start: 2, Rows: 1},
			}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := BuildViewModel(tt.tv, parseQuery(t, tt.url))
			assert.Equal(t, tt.want, vm.Groups)
		})
	}
}

func TestBuildViewModelHeaders(t *testing.T) {
	tv := newView(t)
	_, err := tv.ApplyFilter("control", []string{"C1", columns.BlankLabel})
	require.NoError(t, err)
	require.NoError(t, tv.SetSort(sorting.By("control", sorting.Descending)))

	q := parseQuery(t, "/grid?view=controls&filter:control=C1%7C%28Blanks%29&sort=control:desc&limit=1")
	vm := BuildViewModel(tv, q)

	assert.Equal(t, 2, vm.TotalRows)
	assert.Equal(t, 1, vm.DisplayedRows)
	assert.True(t, vm.HasMoreRows)
	assert.True(t, vm.IsFiltered)
	assert.False(t, vm.Reorderable)

	require.Len(t, vm.Headers, 2)
	hazard, control := vm.Headers[0], vm.Headers[1]
	assert.False(t, hazard.IsFiltered)
	assert.False(t, hazard.IsSorted)
	assert.Empty(t, hazard.SortIndicator)
	assert.True(t, control.IsFiltered)
	assert.True(t, control.IsSorted)
	assert.Equal(t, "▼", control.SortIndicator)

	next := parseQuery(t, control.SortURL.String())
	assert.True(t, next.Sort.IsDefault())
	next = parseQuery(t, hazard.SortURL.String())
	assert.Equal(t, sorting.By("hazard", sorting.Ascending), next.Sort)

	require.Len(t, control.Choices, 3)
	assert.Equal(t, "C1", control.Choices[0].Value)
	assert.True(t, control.Choices[0].Selected)
	assert.False(t, control.Choices[1].Selected)
	assert.Equal(t, columns.BlankLabel, control.Choices[2].Value)

	// Selecting the last missing value drops the filter.
	next = parseQuery(t, control.Choices[1].ToggleURL.String())
	assert.False(t, next.IsFiltered("control"))
	next = parseQuery(t, control.Choices[0].ToggleURL.String())
	assert.Equal(t, []string{columns.BlankLabel}, next.Filters["control"])
	next = parseQuery(t, control.Choices[1].OnlyURL.String())
	assert.Equal(t, []string{"C2"}, next.Filters["control"])

	// Deselecting a value of an unfiltered column starts a filter.
	next = parseQuery(t, hazard.Choices[0].ToggleURL.String())
	assert.Equal(t, []string{"H2"}, next.Filters["hazard"])

	next = parseQuery(t, vm.ShowAllURL.String())
	assert.Equal(t, 0, next.Limit)
	next = parseQuery(t, vm.ClearFiltersURL.String())
	assert.Empty(t, next.Filters)
}

func TestToggleWithValueOutsideChoices(t *testing.T) {
	tv := newView(t)
	_, err := tv.ApplyFilter("control", []string{"C1", "ghost"})
	require.NoError(t, err)
	vm := BuildViewModel(tv, parseQuery(t, "/grid?view=controls&filter:control=C1%7Cghost"))

	control := vm.Headers[1]
	require.Len(t, control.Choices, 3)
	assert.Equal(t, "C2", control.Choices[1].Value)
	assert.False(t, control.Choices[1].Selected)

	// (Blanks) is still unselected, so selecting C2 keeps the filter.
	next := parseQuery(t, control.Choices[1].ToggleURL.String())
	require.True(t, next.IsFiltered("control"))
	assert.ElementsMatch(t, []string{"C1", "ghost", "C2"}, next.Filters["control"])

	// With C2 selected too, selecting (Blanks) covers every choice.
	_, err = tv.ApplyFilter("control", []string{"C1", "C2", "ghost"})
	require.NoError(t, err)
	vm = BuildViewModel(tv, parseQuery(t, "/grid?view=controls&filter:control=C1%7CC2%7Cghost"))
	blanks := vm.Headers[1].Choices[2]
	assert.Equal(t, columns.BlankLabel, blanks.Value)
	next = parseQuery(t, blanks.ToggleURL.String())
	assert.False(t, next.IsFiltered("control"))
}

func TestBuildLandingViewModel(t *testing.T) {
	tv := newView(t)
	vm := BuildLandingViewModel("Grids", "All views", []*tables.TableView{tv}, parseQuery(t, "/grid"))
	require.Len(t, vm.Views, 1)
	v := vm.Views[0]
	assert.Equal(t, "controls", v.Name)
	assert.Equal(t, "Risk controls", v.Title)
	assert.Equal(t, "Grouped by hazard", v.Description)
	assert.Equal(t, 3, v.RecordCount)
	assert.Equal(t, 2, v.ColumnCount)
	assert.Equal(t, "controls", parseQuery(t, v.URL.String()).View)
}
