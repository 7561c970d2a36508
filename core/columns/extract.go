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

package columns

import (
	"reflect"
	"strings"

	"github.com/google/recordgrid/core/rows"
)

// BlankLabel is the sentinel value standing for "no meaningful value".
// It is filterable like any other value.
const BlankLabel = "(Blanks)"

// raw returns the unprocessed cell value of a non-nested column.
func (c *ColumnSpec) raw(r rows.Row) any {
	switch {
	case c.Accessor != nil:
		return c.Accessor(r)
	case c.code != nil:
		return evalPath(c.code, r)
	default:
		return r[c.field()]
	}
}

// usesChildren reports whether the column reads Field from child rows.
func (c *ColumnSpec) usesChildren() bool {
	return c.Kind == KindNested && c.Accessor == nil && c.code == nil
}

// Extract maps a row to the normalized string values of a column.
// The result is never empty: missing or empty values yield [BlankLabel].
//
// Scalars are trimmed and stringified. Lists map each element through the
// scalar rule. Nested columns collect the field across all children and
// drop empty ones, so a parent matches a filter through any of its children.
func Extract(r rows.Row, c *ColumnSpec) []string {
	if c.usesChildren() {
		var vals []any
		for _, child := range rows.Children(r, c.Children) {
			vals = append(vals, child[c.field()])
		}
		return collect(vals)
	}
	v := c.raw(r)
	if c.Kind == KindNested {
		return collect(asList(v))
	}
	if vals, ok := list(v); ok {
		if len(vals) == 0 {
			return []string{BlankLabel}
		}
		out := make([]string, len(vals))
		for i, e := range vals {
			out[i] = scalar(e)
		}
		return out
	}
	return []string{scalar(v)}
}

// ExtractAll resolves id against cols and extracts its values.
func ExtractAll(r rows.Row, cols *Set, id string) []string {
	return Extract(r, cols.Get(id))
}

// Display joins the extracted values for rendering a cell.
func Display(r rows.Row, c *ColumnSpec) string {
	vals := Extract(r, c)
	if len(vals) == 1 && vals[0] == BlankLabel {
		return ""
	}
	return strings.Join(vals, ", ")
}

// SortValue returns the raw value used for ordering rows by c.
// Nested columns use the first child's value; multi-valued columns join
// their values so every element takes part in the order.
func SortValue(r rows.Row, c *ColumnSpec) any {
	if c.usesChildren() {
		children := rows.Children(r, c.Children)
		if len(children) == 0 {
			return nil
		}
		return children[0][c.field()]
	}
	v := c.raw(r)
	l, ok := list(v)
	if !ok {
		return v
	}
	if len(l) == 0 {
		return nil
	}
	if c.Kind == KindNested {
		return l[0]
	}
	parts := make([]string, 0, len(l))
	for _, e := range l {
		if s := strings.TrimSpace(rows.Format(e)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// scalar applies the scalar rule: stringify, trim, blank when empty.
func scalar(v any) string {
	s := strings.TrimSpace(rows.Format(v))
	if s == "" {
		return BlankLabel
	}
	return s
}

// collect applies the nested rule: stringify and trim every value, drop the
// empty ones, blank when nothing is left.
func collect(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(rows.Format(v)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{BlankLabel}
	}
	return out
}

// list reports whether v is a multi-valued field and returns its elements.
// Byte slices are scalars.
func list(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, true
	case nil, []byte:
		return nil, false
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
}

func asList(v any) []any {
	if l, ok := list(v); ok {
		return l
	}
	if v == nil {
		return nil
	}
	return []any{v}
}
