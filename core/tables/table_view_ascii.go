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
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/google/recordgrid/core/columns"
)

// ToAscii renders the processed grid with ASCII borders. Merged cells are
// drawn once, on the leader row of their run, and no border separates the
// rows they span.
func (tv *TableView) ToAscii() string {
	return tv.renderAscii(tv.Process())
}

// PageToAscii renders the first limit rows of the grid.
func (tv *TableView) PageToAscii(limit int) string {
	return tv.renderAscii(tv.Page(limit))
}

func (tv *TableView) renderAscii(res Result) string {
	cols := tv.cols.Columns()
	if len(cols) == 0 {
		return ""
	}
	cells := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			cells[i][j] = columns.Display(r, c)
		}
	}
	widths := tv.calculateColumnWidths(cols, cells)
	covered := tv.coveredCells(res)

	var sb strings.Builder
	writeBorder := func(next int) {
		for j, c := range cols {
			sb.WriteString("|")
			if next >= 0 && covered[next][c.ID] {
				sb.WriteString(strings.Repeat(" ", widths[j]))
			} else {
				sb.WriteString(strings.Repeat("-", widths[j]))
			}
		}
		sb.WriteString("|\n")
	}

	writeBorder(-1)
	for j, c := range cols {
		sb.WriteString("|")
		sb.WriteString(runewidth.FillRight(c.DisplayName(), widths[j]))
	}
	sb.WriteString("|\n")
	writeBorder(-1)

	for i := range res.Rows {
		for j, c := range cols {
			sb.WriteString("|")
			text := ""
			if !covered[i][c.ID] {
				text = cells[i][j]
			}
			sb.WriteString(runewidth.FillRight(text, widths[j]))
		}
		sb.WriteString("|\n")
		if i+1 < len(res.Rows) {
			writeBorder(i + 1)
		} else {
			writeBorder(-1)
		}
	}
	return sb.String()
}

// coveredCells marks, for every displayed row, the columns whose cell is
// covered by a run starting on an earlier row. Lockstep columns follow the
// runs of the coarsest level.
func (tv *TableView) coveredCells(res Result) []map[string]bool {
	covered := make([]map[string]bool, len(res.Rows))
	for i := range covered {
		covered[i] = make(map[string]bool)
	}
	for col, runs := range res.Runs {
		for _, run := range runs {
			for k := 1; k < run.Height(); k++ {
				covered[run.Start+k][col] = true
				if run.Level == 0 {
					for _, lc := range tv.def.Lockstep {
						covered[run.Start+k][lc] = true
					}
				}
			}
		}
	}
	return covered
}

// calculateColumnWidths returns the display width of every column: the
// widest of its title and its cells, at least 1.
func (tv *TableView) calculateColumnWidths(cols []*columns.ColumnSpec, cells [][]string) []int {
	widths := make([]int, len(cols))
	for j, c := range cols {
		widths[j] = max(1, runewidth.StringWidth(c.DisplayName()))
	}
	for _, row := range cells {
		for j, s := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(s))
		}
	}
	return widths
}
