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

// Package tables composes the grid engine for one view: a snapshot of rows,
// its filter state, sort configuration, grouping and manual reordering.
//
// Data flows in one direction: source rows are filtered, the result is
// sorted, and rowspans are computed over the sorted sequence. Structural
// edits go straight to the source rows and are only allowed while the view
// is unfiltered and in its default order.
package tables

import (
	"fmt"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/reorder"
)

// ViewDef declares a grid view: its columns, how rows are identified, the
// grouping hierarchy and the numbering maintained by reordering.
type ViewDef struct {
	Name    string
	Title   string
	IDField string
	Columns []columns.ColumnSpec
	// GroupLevels lists grouped column ids from coarsest to finest.
	GroupLevels []string
	// Lockstep lists positional columns merged with the coarsest level.
	Lockstep  []string
	Numbering reorder.Numbering
}

// DisplayTitle returns Title, or Name when no title is set.
func (d ViewDef) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// compile builds the column set of d and checks that every grouping and
// lockstep column exists.
func (d ViewDef) compile() (*columns.Set, error) {
	cols, err := columns.NewSet(d.Columns...)
	if err != nil {
		return nil, fmt.Errorf("view %q: %w", d.Name, err)
	}
	for _, l := range d.GroupLevels {
		if _, err := cols.Lookup(l); err != nil {
			return nil, fmt.Errorf("view %q: group level: %w", d.Name, err)
		}
	}
	for _, l := range d.Lockstep {
		if _, err := cols.Lookup(l); err != nil {
			return nil, fmt.Errorf("view %q: lockstep column: %w", d.Name, err)
		}
	}
	return cols, nil
}
