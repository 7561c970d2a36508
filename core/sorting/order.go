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

package sorting

import (
	"github.com/google/recordgrid/core/rows"
)

// OrderIndex remembers the position at which each row id was first seen.
// Positions of known ids never change; new ids are appended. The default
// sort orders by this index, so going back to it restores the original
// order regardless of filtering or edits to the underlying slice.
type OrderIndex struct {
	idField   string
	positions map[string]int
}

// NewOrderIndex returns an empty index keyed on idField.
func NewOrderIndex(idField string) *OrderIndex {
	if idField == "" {
		idField = rows.DefaultIDField
	}
	return &OrderIndex{idField: idField, positions: make(map[string]int)}
}

// Observe records the ids of rs that are not known yet, in order. An empty
// collection is ignored so that the baseline is taken from the first
// non-empty snapshot.
func (o *OrderIndex) Observe(rs []rows.Row) {
	for _, r := range rs {
		id := rows.ID(r, o.idField)
		if _, ok := o.positions[id]; !ok {
			o.positions[id] = len(o.positions)
		}
	}
}

// Rebase discards the recorded positions and captures rs as the new
// baseline. Only explicit structural edits (a drag, an insert) rebase;
// new snapshots from the row source go through Observe.
func (o *OrderIndex) Rebase(rs []rows.Row) {
	clear(o.positions)
	o.Observe(rs)
}

// Position returns the recorded position of id.
func (o *OrderIndex) Position(id string) (int, bool) {
	p, ok := o.positions[id]
	return p, ok
}

// Len returns the number of recorded ids.
func (o *OrderIndex) Len() int {
	return len(o.positions)
}

// IDField returns the field rows are identified by.
func (o *OrderIndex) IDField() string {
	return o.idField
}
