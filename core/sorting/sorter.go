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
	"cmp"
	"slices"

	"golang.org/x/text/language"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

// Sorter orders rows of one view. It is not safe for concurrent use
// because the collator keeps internal buffers.
type Sorter struct {
	cols  *columns.Set
	order *OrderIndex
	coll  *columns.Collator
}

// NewSorter returns a sorter over cols. The order index provides the
// default order and the tiebreak for equal keys. A nil collator uses the
// root locale.
func NewSorter(cols *columns.Set, order *OrderIndex, coll *columns.Collator) *Sorter {
	if coll == nil {
		coll = columns.NewCollator(language.Und)
	}
	if order == nil {
		order = NewOrderIndex("")
	}
	return &Sorter{cols: cols, order: order, coll: coll}
}

// CompareKeys compares two normalized keys. Blank keys order after all
// other keys in both directions; only the order among non-blank keys
// flips for Descending. Two numeric keys compare by value, anything else
// by natural string order.
func (s *Sorter) CompareKeys(a, b columns.Key, dir Direction) int {
	if a.Blank || b.Blank {
		switch {
		case a.Blank && b.Blank:
			return 0
		case a.Blank:
			return 1
		default:
			return -1
		}
	}
	var c int
	if a.Numeric && b.Numeric {
		c = cmp.Compare(a.Num, b.Num)
	} else {
		c = s.coll.Compare(a.Text, b.Text)
	}
	if dir == Descending {
		return -c
	}
	return c
}

// Compare compares two rows under cfg and returns -1, 0 or 1. The default
// sort compares original positions; rows unknown to the order index come
// after known ones.
func (s *Sorter) Compare(a, b rows.Row, cfg Config) int {
	if cfg.IsDefault() {
		return cmp.Compare(s.position(a, 0), s.position(b, 0))
	}
	col := s.cols.Get(cfg.ColumnID)
	ka := columns.Normalize(columns.SortValue(a, col))
	kb := columns.Normalize(columns.SortValue(b, col))
	return s.CompareKeys(ka, kb, cfg.Direction)
}

func (s *Sorter) position(r rows.Row, fallback int) int {
	if p, ok := s.order.Position(rows.ID(r, s.order.IDField())); ok {
		return p
	}
	return s.order.Len() + fallback
}

// sortEntry caches the key and position of a row during a sort.
type sortEntry struct {
	row rows.Row
	key columns.Key
	pos int
}

func (s *Sorter) entries(rs []rows.Row, cfg Config) []sortEntry {
	var col *columns.ColumnSpec
	if !cfg.IsDefault() {
		col = s.cols.Get(cfg.ColumnID)
	}
	out := make([]sortEntry, len(rs))
	for i, r := range rs {
		out[i] = sortEntry{row: r, pos: s.position(r, i)}
		if col != nil {
			out[i].key = columns.Normalize(columns.SortValue(r, col))
		}
	}
	return out
}

// compareEntries is the total order used by Sort and TopK: the column
// comparison first, then the original position.
func (s *Sorter) compareEntries(a, b sortEntry, cfg Config) int {
	if !cfg.IsDefault() {
		if c := s.CompareKeys(a.key, b.key, cfg.Direction); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.pos, b.pos)
}

// Sort returns a new slice with rs ordered by cfg. Rows with equal keys
// keep their original relative order. rs is not modified.
func (s *Sorter) Sort(rs []rows.Row, cfg Config) []rows.Row {
	entries := s.entries(rs, cfg)
	slices.SortStableFunc(entries, func(a, b sortEntry) int {
		return s.compareEntries(a, b, cfg)
	})
	out := make([]rows.Row, len(entries))
	for i, e := range entries {
		out[i] = e.row
	}
	return out
}
