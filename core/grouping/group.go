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

// Package grouping computes rowspans for hierarchically grouped grids.
//
// Terminology:
//   - the columns that form the grouping hierarchy are called group levels,
//     ordered from the coarsest to the finest
//   - a run is a maximal contiguous sequence of rows sharing the value of a
//     level and of every coarser level
//   - the first row of a run is its leader; it carries the run length as its
//     span for that level, all other rows of the run carry 0
//
// Spans are computed over the rows in the order they are displayed. Rows of
// one group that are not contiguous (for example after sorting by an
// unrelated column) form separate runs.
package grouping

import (
	"strings"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

// keySep joins the values of a multi-valued cell into one group key.
const keySep = "\x1f"

// Run is a contiguous run of rows at one level. Runs of a finer level nest
// under the run of the coarser level that contains them.
type Run struct {
	Level    int
	Column   string
	Key      string
	Start    int
	Length   int
	Leader   string
	Parent   *Run
	Children []*Run
}

// Height is the number of rows spanned by the run.
func (r *Run) Height() int {
	return r.Length
}

// Spans maps a row id to the span of that row for every group level and
// lockstep column.
type Spans map[string]map[string]int

// Get returns the span of the cell (rowID, column). Cells of columns that
// are not merged always span one row.
func (s Spans) Get(rowID, column string) int {
	if byCol, ok := s[rowID]; ok {
		if n, ok := byCol[column]; ok {
			return n
		}
	}
	return 1
}

// Runs lists the runs of every level in display order.
type Runs map[string][]*Run

// Options tunes ComputeSpans.
type Options struct {
	// IDField identifies rows. Defaults to rows.DefaultIDField.
	IDField string
	// Lockstep lists positional columns (a running number, say) that merge
	// together with the coarsest level instead of by their own values.
	Lockstep []string
}

// ComputeSpans scans ordered once and returns the rowspan of every row for
// every level. A row continues a run at a level only if it matches the
// previous row at that level and at every coarser level.
//
// For each level the spans of a run sum to the run length and exactly one
// row of the run (the leader) has a nonzero span. With no rows or no levels
// the result is empty.
func ComputeSpans(ordered []rows.Row, cols *columns.Set, levels []string, opts Options) (Spans, Runs) {
	spans := make(Spans)
	runs := make(Runs)
	if len(ordered) == 0 || len(levels) == 0 {
		return spans, runs
	}
	idField := opts.IDField
	if idField == "" {
		idField = rows.DefaultIDField
	}

	specs := make([]*columns.ColumnSpec, len(levels))
	for i, l := range levels {
		specs[i] = cols.Get(l)
	}
	prevKeys := make([]string, len(levels))
	current := make([]*Run, len(levels))

	for i, r := range ordered {
		id := rows.ID(r, idField)
		rowSpans := make(map[string]int, len(levels)+len(opts.Lockstep))
		spans[id] = rowSpans

		continues := i > 0
		for li, spec := range specs {
			key := strings.Join(columns.Extract(r, spec), keySep)
			if continues && key == prevKeys[li] {
				run := current[li]
				run.Length++
				spans[run.Leader][levels[li]]++
				rowSpans[levels[li]] = 0
			} else {
				continues = false
				run := &Run{Level: li, Column: levels[li], Key: key, Start: i, Length: 1, Leader: id}
				if li > 0 {
					run.Parent = current[li-1]
					run.Parent.Children = append(run.Parent.Children, run)
				}
				current[li] = run
				runs[levels[li]] = append(runs[levels[li]], run)
				rowSpans[levels[li]] = 1
			}
			prevKeys[li] = key
		}
	}

	for _, lc := range opts.Lockstep {
		for _, rowSpans := range spans {
			rowSpans[lc] = rowSpans[levels[0]]
		}
	}
	return spans, runs
}
