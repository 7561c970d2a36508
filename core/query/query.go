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

// Package query holds the request-scoped grid state carried in a URL: the
// view, its column filters, the sort and the row limit. Nothing here is
// stored between requests; every link rendered in the grid carries the
// complete state.
package query

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/recordgrid/core/sorting"
	"github.com/google/recordgrid/core/tables"
)

// ValueSep separates the selected values of a column filter in a URL.
const ValueSep = "|"

// DefaultLimit is the number of rows shown when the URL has no limit.
const DefaultLimit = 100

// Query represents the parsed state of a grid URL.
type Query struct {
	// Base path (e.g., "/grid")
	Path string

	View    string              // The view being displayed
	Filters map[string][]string // Selected values per filtered column
	Sort    sorting.Config      // Active sort
	Limit   int                 // Number of rows to display (0 = show all)
}

// NewQuery creates a Query from a URL.
//
// Filters use the format filter:column=v1|v2. An empty value selects
// nothing. Repeated keys add to the selection. The sort uses
// sort=column:asc or sort=column:desc; an unparsable sort is ignored.
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:    u.Path,
		Filters: make(map[string][]string),
		Limit:   DefaultLimit,
	}

	q := u.Query()
	state.View = q.Get("view")

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			state.Limit = limit
		}
	}

	if sortStr := q.Get("sort"); sortStr != "" {
		col, dirStr, _ := strings.Cut(sortStr, ":")
		if dir, err := sorting.ParseDirection(dirStr); err == nil {
			state.Sort = sorting.By(col, dir)
		}
	}

	for key, values := range q {
		columnName, ok := strings.CutPrefix(key, "filter:")
		if !ok || columnName == "" {
			continue
		}
		selected := []string{}
		for _, v := range values {
			if v == "" {
				continue
			}
			selected = append(selected, strings.Split(v, ValueSep)...)
		}
		state.Filters[columnName] = selected
	}
	return state
}

// Clone creates a deep copy of the Query.
func (s *Query) Clone() *Query {
	clone := &Query{
		Path:    s.Path,
		View:    s.View,
		Filters: make(map[string][]string, len(s.Filters)),
		Sort:    s.Sort,
		Limit:   s.Limit,
	}
	for col, values := range s.Filters {
		clone.Filters[col] = slices.Clone(values)
	}
	return clone
}

// FilteredColumns returns the filtered column ids in sorted order.
func (s *Query) FilteredColumns() []string {
	return slices.Sorted(maps.Keys(s.Filters))
}

// IsFiltered reports whether the URL filters column.
func (s *Query) IsFiltered(column string) bool {
	_, ok := s.Filters[column]
	return ok
}

// ToURL converts the Query back to a URL string.
func (s *Query) ToURL() string {
	u := &url.URL{Path: s.Path}
	q := u.Query()

	if s.View != "" {
		q.Set("view", s.View)
	}
	for colName, values := range s.Filters {
		q.Set("filter:"+colName, strings.Join(values, ValueSep))
	}
	if !s.Sort.IsDefault() {
		q.Set("sort", s.Sort.String())
	}
	q.Set("limit", strconv.Itoa(s.Limit))

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL.
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// WithSortToggled returns a URL with the sort advanced the way a click on
// the column header does: ascending, descending, then the default order.
func (s *Query) WithSortToggled(column string) safehtml.URL {
	newState := s.Clone()
	newState.Sort = s.Sort.Toggle(column)
	return newState.ToSafeURL()
}

// WithFilter returns a URL filtering column to the given values.
func (s *Query) WithFilter(column string, values []string) safehtml.URL {
	newState := s.Clone()
	newState.Filters[column] = slices.Clone(values)
	return newState.ToSafeURL()
}

// WithoutFilter returns a URL with the filter on column removed.
func (s *Query) WithoutFilter(column string) safehtml.URL {
	newState := s.Clone()
	delete(newState.Filters, column)
	return newState.ToSafeURL()
}

// WithoutFilters returns a URL with every filter removed.
func (s *Query) WithoutFilters() safehtml.URL {
	newState := s.Clone()
	clear(newState.Filters)
	return newState.ToSafeURL()
}

// WithLimit returns a URL with a different row limit.
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	return newState.ToSafeURL()
}

// WithView returns a URL for another view, dropping the state that belongs
// to the current one.
func (s *Query) WithView(view string) safehtml.URL {
	newState := &Query{Path: s.Path, View: view, Filters: map[string][]string{}, Limit: s.Limit}
	return newState.ToSafeURL()
}

// Apply replaces the filters and sort of tv with those of the query.
// Filters selecting every value of a column are dropped.
func (s *Query) Apply(tv *tables.TableView) error {
	tv.ResetFilters()
	for _, col := range s.FilteredColumns() {
		if _, err := tv.ApplyFilter(col, s.Filters[col]); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}
	if err := tv.SetSort(s.Sort); err != nil {
		return fmt.Errorf("invalid sort: %w", err)
	}
	return nil
}
