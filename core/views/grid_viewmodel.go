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

// Package views turns processed grids into the data structures consumed by
// the HTML templates. URLs are built as safehtml.URL values from the
// request query so that every link carries the complete view state.
package views

import (
	"slices"

	"github.com/google/safehtml"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/grouping"
	"github.com/google/recordgrid/core/query"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/sorting"
	"github.com/google/recordgrid/core/tables"
)

// GridViewModel contains the data of a grid formatted for template
// consumption.
type GridViewModel struct {
	Title   string
	View    string
	Headers []HeaderInfo
	Rows    []RowInfo
	Groups  []GroupInfo // Runs of the coarsest group level

	// Pagination info
	TotalRows     int          // Rows passing the filters
	DisplayedRows int          // Rows actually displayed
	HasMoreRows   bool         // True if rows were cut by the limit
	CurrentLimit  int          // Current row limit
	ShowAllURL    safehtml.URL // URL without row limit

	IsFiltered      bool         // True if any column is filtered
	ClearFiltersURL safehtml.URL // URL removing every filter
	Reorderable     bool         // True if rows may be dragged
}

// HeaderInfo describes a column header: its sort and filter indicators and
// the links changing them.
type HeaderInfo struct {
	ID             string
	DisplayName    string
	IsFiltered     bool
	IsSorted       bool
	SortIndicator  string       // "▲", "▼" or empty
	SortURL        safehtml.URL // URL advancing the sort of this column
	ClearFilterURL safehtml.URL // URL removing the filter of this column
	Choices        []ChoiceInfo // Filter choices, blank label last
}

// ChoiceInfo is one value of a column filter.
type ChoiceInfo struct {
	Value     string
	Selected  bool
	ToggleURL safehtml.URL // URL selecting or deselecting this value
	OnlyURL   safehtml.URL // URL selecting only this value
}

// RowInfo is a displayed row. Cells covered by a merged cell above them are
// omitted.
type RowInfo struct {
	ID    string     `json:"id"`
	Cells []CellInfo `json:"cells"`
}

// CellInfo is a displayed cell spanning RowSpan rows.
type CellInfo struct {
	Column  string `json:"column"`
	Text    string `json:"text"`
	RowSpan int    `json:"rowspan"`
}

// GroupInfo is a run of displayed rows sharing the value of a group column,
// with the runs of the next level nested inside it.
type GroupInfo struct {
	Column string      `json:"column"`
	Value  string      `json:"value"`
	First  string      `json:"first"` // id of the leading row
	Start  int         `json:"start"` // index of the leading row
	Rows   int         `json:"rows"`
	Groups []GroupInfo `json:"groups,omitempty"`
}

// LandingViewModel lists the available views.
type LandingViewModel struct {
	Title    string
	Subtitle string
	Views    []ViewInfo
}

// ViewInfo describes one view on the landing page.
type ViewInfo struct {
	Name        string
	Title       string
	Description string
	URL         safehtml.URL
	RecordCount int
	ColumnCount int
}

// BuildViewModel processes tv and builds the model of its grid. The query
// supplies the limit and the base for every link; the view state itself
// (filters and sort) is read from tv.
func BuildViewModel(tv *tables.TableView, q *query.Query) GridViewModel {
	res := tv.Page(q.Limit)
	def := tv.Def()

	vm := GridViewModel{
		Title:           def.DisplayTitle(),
		View:            def.Name,
		TotalRows:       res.Total,
		DisplayedRows:   len(res.Rows),
		HasMoreRows:     len(res.Rows) < res.Total,
		CurrentLimit:    q.Limit,
		ShowAllURL:      q.WithLimit(0),
		IsFiltered:      tv.Filters().IsActive(),
		ClearFiltersURL: q.WithoutFilters(),
		Reorderable:     tv.Reorderable(),
	}

	cols := tv.Columns().Columns()
	for _, c := range cols {
		vm.Headers = append(vm.Headers, buildHeader(tv, q, c))
	}

	for _, r := range res.Rows {
		id := rows.ID(r, def.IDField)
		ri := RowInfo{ID: id}
		for _, c := range cols {
			span := res.Spans.Get(id, c.ID)
			if span == 0 {
				continue
			}
			ri.Cells = append(ri.Cells, CellInfo{Column: c.ID, Text: columns.Display(r, c), RowSpan: span})
		}
		vm.Rows = append(vm.Rows, ri)
	}
	if len(def.GroupLevels) > 0 {
		vm.Groups = buildGroups(tv.Columns(), res.Rows, res.Runs[def.GroupLevels[0]])
	}
	return vm
}

func buildGroups(cols *columns.Set, rs []rows.Row, runs []*grouping.Run) []GroupInfo {
	if len(runs) == 0 {
		return nil
	}
	out := make([]GroupInfo, len(runs))
	for i, run := range runs {
		out[i] = GroupInfo{
			Column: run.Column,
			Value:  columns.Display(rs[run.Start], cols.Get(run.Column)),
			First:  run.Leader,
			Start:  run.Start,
			Rows:   run.Height(),
			Groups: buildGroups(cols, rs, run.Children),
		}
	}
	return out
}

func buildHeader(tv *tables.TableView, q *query.Query, c *columns.ColumnSpec) HeaderInfo {
	h := HeaderInfo{
		ID:             c.ID,
		DisplayName:    c.DisplayName(),
		IsFiltered:     tv.IsFiltered(c.ID),
		IsSorted:       tv.IsSorted(c.ID),
		SortURL:        q.WithSortToggled(c.ID),
		ClearFilterURL: q.WithoutFilter(c.ID),
	}
	if h.IsSorted {
		h.SortIndicator = "▲"
		if tv.Sort().Direction == sorting.Descending {
			h.SortIndicator = "▼"
		}
	}

	all, err := tv.FilterChoices(c.ID)
	if err != nil {
		return h
	}
	selected, filtered := tv.Filters().Selected(c.ID)
	if !filtered {
		selected = all
	}
	for _, v := range all {
		in := slices.Contains(selected, v)
		h.Choices = append(h.Choices, ChoiceInfo{
			Value:     v,
			Selected:  in,
			ToggleURL: toggleURL(q, c.ID, all, selected, v, in),
			OnlyURL:   q.WithFilter(c.ID, []string{v}),
		})
	}
	return h
}

// toggleURL returns the URL with v added to or removed from the selection
// of column. A selection containing every choice drops the filter, whatever
// other values it holds.
func toggleURL(q *query.Query, column string, all, selected []string, v string, in bool) safehtml.URL {
	var next []string
	if in {
		next = slices.DeleteFunc(slices.Clone(selected), func(s string) bool { return s == v })
	} else {
		next = append(slices.Clone(selected), v)
	}
	for _, a := range all {
		if !slices.Contains(next, a) {
			return q.WithFilter(column, next)
		}
	}
	return q.WithoutFilter(column)
}

// BuildLandingViewModel lists views with links to their grids.
func BuildLandingViewModel(title, subtitle string, views []*tables.TableView, q *query.Query) LandingViewModel {
	vm := LandingViewModel{Title: title, Subtitle: subtitle}
	for _, tv := range views {
		def := tv.Def()
		vm.Views = append(vm.Views, ViewInfo{
			Name:        def.Name,
			Title:       def.DisplayTitle(),
			Description: describe(def),
			URL:         q.WithView(def.Name),
			RecordCount: len(tv.Rows()),
			ColumnCount: len(def.Columns),
		})
	}
	return vm
}

func describe(def tables.ViewDef) string {
	if len(def.GroupLevels) == 0 {
		return "Flat list"
	}
	s := "Grouped by "
	for i, l := range def.GroupLevels {
		if i > 0 {
			s += " › "
		}
		s += l
	}
	return s
}
