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

// Package reorder implements manual, drag-based editing of a row
// collection: moving, inserting, removing and duplicating top-level rows and
// editing their nested children.
//
// Every operation returns a new collection and leaves its input untouched.
// Display numbers are reassigned after each operation so that top-level
// rows are numbered "1".."N" and the children of row "k" are numbered
// "k.1".."k.M".
//
// Editing is only allowed while the view shows the rows unfiltered and in
// their default order; otherwise the position a row is dropped at has no
// meaning in the underlying collection. Operations check this through a
// Gate and do nothing when the gate is closed.
package reorder

import (
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/google/recordgrid/core/rows"
)

// Gate exposes the view state that disables reordering.
type Gate interface {
	IsFiltered() bool
	IsSorted() bool
}

// Enabled reports whether g allows structural edits. A nil gate is always
// open.
func Enabled(g Gate) bool {
	return g == nil || (!g.IsFiltered() && !g.IsSorted())
}

// Placement says on which side of the target row a dropped row lands.
type Placement int

const (
	Before Placement = iota
	After
)

func (p Placement) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// ParsePlacement parses "before" or "after". Anything else is Before.
func ParsePlacement(s string) Placement {
	if s == "after" {
		return After
	}
	return Before
}

// Numbering names the sequence fields maintained by the engine.
type Numbering struct {
	// Field holds the top-level number. Empty disables numbering.
	Field string
	// Children is the field holding nested child rows.
	Children string
	// ChildField holds the child number "{parent}.{k}". Empty disables
	// child numbering.
	ChildField string
}

// Engine applies structural edits to row collections.
type Engine struct {
	IDField   string
	Numbering Numbering
	// NewID returns a fresh row id for duplicated rows and rows inserted
	// without one.
	NewID func() string
}

// NewEngine returns an engine identifying rows by idField and generating
// new ids with uuid.
func NewEngine(idField string, n Numbering) *Engine {
	if idField == "" {
		idField = rows.DefaultIDField
	}
	return &Engine{IDField: idField, Numbering: n, NewID: uuid.NewString}
}

func (e *Engine) idField() string {
	if e.IDField == "" {
		return rows.DefaultIDField
	}
	return e.IDField
}

func (e *Engine) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e *Engine) indexOf(rs []rows.Row, id string) int {
	return slices.IndexFunc(rs, func(r rows.Row) bool {
		return rows.ID(r, e.idField()) == id
	})
}

// Move removes the row fromID and reinserts it before or after the row
// toID. It returns rs and false when the gate is closed or either id is
// unknown.
func (e *Engine) Move(g Gate, rs []rows.Row, fromID, toID string, p Placement) ([]rows.Row, bool) {
	if !Enabled(g) {
		return rs, false
	}
	from, to := e.indexOf(rs, fromID), e.indexOf(rs, toID)
	if from < 0 || to < 0 {
		return rs, false
	}
	out := rows.CloneAll(rs)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	at := e.indexOf(out, toID)
	if fromID == toID {
		at = from
	} else if p == After {
		at++
	}
	out = slices.Insert(out, at, moved)
	return e.Renumber(out), true
}

// Insert adds r before or after the row anchorID, or at the end when
// anchorID is empty or unknown. A row without id gets a new one.
func (e *Engine) Insert(g Gate, rs []rows.Row, r rows.Row, anchorID string, p Placement) ([]rows.Row, bool) {
	if !Enabled(g) {
		return rs, false
	}
	out := rows.CloneAll(rs)
	added := rows.Clone(r)
	if added == nil {
		added = rows.Row{}
	}
	if rows.ID(added, e.idField()) == "" {
		added[e.idField()] = e.newID()
	}
	at := len(out)
	if i := e.indexOf(out, anchorID); anchorID != "" && i >= 0 {
		at = i
		if p == After {
			at++
		}
	}
	out = slices.Insert(out, at, added)
	return e.Renumber(out), true
}

// Remove deletes the row id.
func (e *Engine) Remove(g Gate, rs []rows.Row, id string) ([]rows.Row, bool) {
	if !Enabled(g) {
		return rs, false
	}
	i := e.indexOf(rs, id)
	if i < 0 {
		return rs, false
	}
	out := rows.CloneAll(rs)
	out = slices.Delete(out, i, i+1)
	return e.Renumber(out), true
}

// Duplicate inserts a deep copy of the row id right after it. The copy and
// any of its children carrying an id get new ids.
func (e *Engine) Duplicate(g Gate, rs []rows.Row, id string) ([]rows.Row, bool) {
	if !Enabled(g) {
		return rs, false
	}
	i := e.indexOf(rs, id)
	if i < 0 {
		return rs, false
	}
	out := rows.CloneAll(rs)
	dup := rows.Clone(out[i])
	dup[e.idField()] = e.newID()
	if e.Numbering.Children != "" {
		for _, c := range rows.Children(dup, e.Numbering.Children) {
			if _, ok := c[e.idField()]; ok {
				c[e.idField()] = e.newID()
			}
		}
	}
	out = slices.Insert(out, i+1, dup)
	return e.Renumber(out), true
}

// AddChild appends child to the nested children of the row parentID.
func (e *Engine) AddChild(g Gate, rs []rows.Row, parentID string, child rows.Row) ([]rows.Row, bool) {
	if !Enabled(g) || e.Numbering.Children == "" {
		return rs, false
	}
	i := e.indexOf(rs, parentID)
	if i < 0 {
		return rs, false
	}
	out := rows.CloneAll(rs)
	children := rows.Children(out[i], e.Numbering.Children)
	c := rows.Clone(child)
	if c == nil {
		c = rows.Row{}
	}
	out[i][e.Numbering.Children] = append(slices.Clip(children), c)
	return e.Renumber(out), true
}

// RemoveChild deletes the child at index of the row parentID.
func (e *Engine) RemoveChild(g Gate, rs []rows.Row, parentID string, index int) ([]rows.Row, bool) {
	if !Enabled(g) || e.Numbering.Children == "" {
		return rs, false
	}
	i := e.indexOf(rs, parentID)
	if i < 0 {
		return rs, false
	}
	children := rows.Children(rs[i], e.Numbering.Children)
	if index < 0 || index >= len(children) {
		return rs, false
	}
	out := rows.CloneAll(rs)
	children = slices.Clone(rows.Children(out[i], e.Numbering.Children))
	out[i][e.Numbering.Children] = slices.Delete(children, index, index+1)
	return e.Renumber(out), true
}

// Renumber sets the sequence fields of rs by position and returns the
// updated copy. It is not gated: numbers always follow the collection
// order.
func (e *Engine) Renumber(rs []rows.Row) []rows.Row {
	out := make([]rows.Row, len(rs))
	n := e.Numbering
	for i, r := range rs {
		c := rows.Clone(r)
		num := strconv.Itoa(i + 1)
		if n.Field != "" {
			c[n.Field] = num
		}
		if n.Children != "" && n.ChildField != "" {
			if _, ok := c[n.Children]; ok {
				children := rows.Children(c, n.Children)
				for k, child := range children {
					child[n.ChildField] = num + "." + strconv.Itoa(k+1)
				}
				c[n.Children] = children
			}
		}
		out[i] = c
	}
	return out
}
