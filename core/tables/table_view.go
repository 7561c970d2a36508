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

package tables

import (
	"golang.org/x/text/language"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/filtering"
	"github.com/google/recordgrid/core/grouping"
	"github.com/google/recordgrid/core/popup"
	"github.com/google/recordgrid/core/reorder"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/sorting"
)

// Result is the processed grid: the rows to display in order and the
// rowspans of their grouped cells.
type Result struct {
	Rows  []rows.Row
	Spans grouping.Spans
	Runs  grouping.Runs
	// Total is the number of rows passing the filters, before any limit.
	Total int
}

// TableView holds the state of one grid view. It owns its row collection,
// filter state and sort configuration; none of them is shared.
//
// A TableView is not safe for concurrent use.
type TableView struct {
	def        ViewDef
	cols       *columns.Set
	source     []rows.Row
	order      *sorting.OrderIndex
	sorter     *sorting.Sorter
	coll       *columns.Collator
	filters    *filtering.State
	sort       sorting.Config
	engine     *reorder.Engine
	positioner popup.Positioner

	revision uint64
	memo     *Result
	memoRev  uint64
}

// Option configures a TableView.
type Option func(*TableView)

// WithLanguage sets the collation language used for sorting and for the
// order of filter choices.
func WithLanguage(tag language.Tag) Option {
	return func(tv *TableView) {
		tv.coll = columns.NewCollator(tag)
	}
}

// WithPositioner sets the placement parameters of filter popups.
func WithPositioner(p popup.Positioner) Option {
	return func(tv *TableView) {
		tv.positioner = p
	}
}

// WithIDGenerator sets the function generating ids for duplicated rows.
func WithIDGenerator(f func() string) Option {
	return func(tv *TableView) {
		tv.engine.NewID = f
	}
}

// NewTableView creates a view over rs. The rows are copied; later changes
// to rs are not seen by the view.
func NewTableView(def ViewDef, rs []rows.Row, opts ...Option) (*TableView, error) {
	cols, err := def.compile()
	if err != nil {
		return nil, err
	}
	if def.IDField == "" {
		def.IDField = rows.DefaultIDField
	}
	tv := &TableView{
		def:        def,
		cols:       cols,
		order:      sorting.NewOrderIndex(def.IDField),
		coll:       columns.NewCollator(language.Und),
		filters:    filtering.NewState(),
		engine:     reorder.NewEngine(def.IDField, def.Numbering),
		positioner: popup.DefaultPositioner(),
	}
	for _, opt := range opts {
		opt(tv)
	}
	tv.sorter = sorting.NewSorter(cols, tv.order, tv.coll)
	tv.SetRows(rs)
	return tv, nil
}

// Name returns the view name.
func (tv *TableView) Name() string { return tv.def.Name }

// Def returns the view definition.
func (tv *TableView) Def() ViewDef { return tv.def }

// Columns returns the column set of the view.
func (tv *TableView) Columns() *columns.Set { return tv.cols }

// Rows returns the source rows in their stored order. The slice must not be
// modified.
func (tv *TableView) Rows() []rows.Row { return tv.source }

// SetRows replaces the source rows with a new snapshot from the row
// source. Ids seen for the first time are appended to the original order;
// known ids keep their position.
func (tv *TableView) SetRows(rs []rows.Row) {
	tv.source = rows.CloneAll(rs)
	tv.order.Observe(tv.source)
	tv.touch()
}

func (tv *TableView) touch() {
	tv.revision++
}

// Process runs filter, sort and grouping over the source rows. The result
// is cached until the rows, filters or sort change.
func (tv *TableView) Process() Result {
	if tv.memo != nil && tv.memoRev == tv.revision {
		return *tv.memo
	}
	filtered := tv.filters.Filter(tv.source, tv.cols)
	ordered := tv.sorter.Sort(filtered, tv.sort)
	res := tv.group(ordered, len(filtered))
	tv.memo, tv.memoRev = &res, tv.revision
	return res
}

// Page is Process limited to the first limit rows. It selects the rows with
// a partial sort, so it is cheaper than Process for small pages of large
// collections. A limit <= 0 means no limit.
func (tv *TableView) Page(limit int) Result {
	if limit <= 0 {
		return tv.Process()
	}
	filtered := tv.filters.Filter(tv.source, tv.cols)
	return tv.group(tv.sorter.TopK(filtered, tv.sort, limit), len(filtered))
}

func (tv *TableView) group(ordered []rows.Row, total int) Result {
	spans, runs := grouping.ComputeSpans(ordered, tv.cols, tv.def.GroupLevels, grouping.Options{
		IDField:  tv.def.IDField,
		Lockstep: tv.def.Lockstep,
	})
	return Result{Rows: ordered, Spans: spans, Runs: runs, Total: total}
}

// FilterChoices returns the distinct values of a column over all source
// rows, in natural order with the blank label last.
func (tv *TableView) FilterChoices(columnID string) ([]string, error) {
	col, err := tv.cols.Lookup(columnID)
	if err != nil {
		return nil, err
	}
	return filtering.DistinctValuesWith(tv.source, col, tv.coll), nil
}

// SearchChoices returns the filter choices of a column matching term.
func (tv *TableView) SearchChoices(columnID, term string) ([]string, error) {
	choices, err := tv.FilterChoices(columnID)
	if err != nil {
		return nil, err
	}
	return filtering.SearchValues(choices, term), nil
}

// ApplyFilter sets the selected values of a column. Selecting every choice
// clears the filter. It reports whether the column is filtered afterwards.
func (tv *TableView) ApplyFilter(columnID string, selected []string) (bool, error) {
	choices, err := tv.FilterChoices(columnID)
	if err != nil {
		return false, err
	}
	active := tv.filters.Apply(columnID, selected, choices)
	tv.touch()
	return active, nil
}

// ClearFilter removes the filter on a column.
func (tv *TableView) ClearFilter(columnID string) {
	tv.filters.Clear(columnID)
	tv.touch()
}

// ResetFilters removes all filters.
func (tv *TableView) ResetFilters() {
	tv.filters.Reset()
	tv.touch()
}

// Filters returns a copy of the filter state.
func (tv *TableView) Filters() *filtering.State {
	return tv.filters.Clone()
}

// Sort returns the active sort.
func (tv *TableView) Sort() sorting.Config {
	return tv.sort
}

// SetSort sets the active sort. Sorting by an unknown column is an error;
// the default column is always accepted.
func (tv *TableView) SetSort(cfg sorting.Config) error {
	if !cfg.IsDefault() {
		if _, err := tv.cols.Lookup(cfg.ColumnID); err != nil {
			return err
		}
	}
	tv.sort = cfg
	tv.touch()
	return nil
}

// ToggleSort advances the sort of a column the way a header click does and
// returns the new sort.
func (tv *TableView) ToggleSort(columnID string) (sorting.Config, error) {
	if err := tv.SetSort(tv.sort.Toggle(columnID)); err != nil {
		return tv.sort, err
	}
	return tv.sort, nil
}

// IsFiltered reports whether a column has an active filter.
func (tv *TableView) IsFiltered(columnID string) bool {
	return tv.filters.IsFiltered(columnID)
}

// IsSorted reports whether a column is the active sort column.
func (tv *TableView) IsSorted(columnID string) bool {
	return tv.sort.IsSortedBy(columnID)
}

// viewGate exposes the view state that disables reordering.
type viewGate struct{ tv *TableView }

func (g viewGate) IsFiltered() bool { return g.tv.filters.IsActive() }
func (g viewGate) IsSorted() bool   { return !g.tv.sort.IsDefault() }

// Reorderable reports whether structural edits are allowed: no filter is
// active and rows are shown in their default order.
func (tv *TableView) Reorderable() bool {
	return reorder.Enabled(viewGate{tv})
}

// edit installs the result of a structural edit as the new source rows and
// as the new original order.
func (tv *TableView) edit(out []rows.Row, ok bool) bool {
	if !ok {
		return false
	}
	tv.source = out
	tv.order.Rebase(out)
	tv.touch()
	return true
}

// Move moves the row fromID before or after the row toID.
func (tv *TableView) Move(fromID, toID string, p reorder.Placement) bool {
	return tv.edit(tv.engine.Move(viewGate{tv}, tv.source, fromID, toID, p))
}

// Insert adds r next to the row anchorID, or at the end.
func (tv *TableView) Insert(r rows.Row, anchorID string, p reorder.Placement) bool {
	return tv.edit(tv.engine.Insert(viewGate{tv}, tv.source, r, anchorID, p))
}

// Remove deletes the row id.
func (tv *TableView) Remove(id string) bool {
	return tv.edit(tv.engine.Remove(viewGate{tv}, tv.source, id))
}

// Duplicate copies the row id right after itself.
func (tv *TableView) Duplicate(id string) bool {
	return tv.edit(tv.engine.Duplicate(viewGate{tv}, tv.source, id))
}

// AddChild appends a nested child to the row parentID.
func (tv *TableView) AddChild(parentID string, child rows.Row) bool {
	return tv.edit(tv.engine.AddChild(viewGate{tv}, tv.source, parentID, child))
}

// RemoveChild deletes the nested child at index of the row parentID.
func (tv *TableView) RemoveChild(parentID string, index int) bool {
	return tv.edit(tv.engine.RemoveChild(viewGate{tv}, tv.source, parentID, index))
}

// FilterPopup is everything needed to show the filter popup of a column.
type FilterPopup struct {
	Column    string          `json:"column"`
	Choices   []string        `json:"choices"`
	Selected  []string        `json:"selected"`
	Placement popup.Placement `json:"placement"`
}

// OpenFilterPopup prepares the filter popup of a column anchored at anchor.
// Without a filter every choice is selected. When m is nil the popup is
// placed with size as its known size; otherwise size is ignored and the
// popup is measured after the tentative placement.
func (tv *TableView) OpenFilterPopup(columnID string, anchor popup.Rect, size, viewport popup.Size, m popup.Measurer) (FilterPopup, error) {
	choices, err := tv.FilterChoices(columnID)
	if err != nil {
		return FilterPopup{}, err
	}
	selected := choices
	if sel, ok := tv.filters.Selected(columnID); ok {
		selected = sel
	}
	var p popup.Placement
	if m != nil {
		p = tv.positioner.Open(anchor, viewport, m)
	} else {
		p = tv.positioner.Place(anchor, size, viewport)
	}
	return FilterPopup{Column: columnID, Choices: choices, Selected: selected, Placement: p}, nil
}
