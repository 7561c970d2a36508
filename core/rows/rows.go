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

// Package rows defines the opaque record type handled by the grid engine.
//
// A Row maps field names to values. Values are scalars, slices of scalars
// (multi-valued fields) or nested one-to-many collections of child rows.
// Row sources decode into different concrete shapes (JSON and protobuf give
// []any of map[string]any, Go callers usually build []Row); the helpers in
// this package accept all of them.
package rows

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultIDField is the field holding the stable row identity when a view
// does not configure another one.
const DefaultIDField = "id"

// Row is a single business record.
type Row map[string]any

// ID returns the identity of the row as a string. Numeric and string ids
// with the same textual form are the same id. A missing id yields "".
func ID(r Row, idField string) string {
	if idField == "" {
		idField = DefaultIDField
	}
	v, ok := r[idField]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(Format(v))
}

// Format stringifies a scalar value the way the engine displays it.
// Floats with an integral value print without a fractional part.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Children returns the nested child rows stored under field. A missing or
// non-collection field yields nil; non-map elements are skipped.
func Children(r Row, field string) []Row {
	switch c := r[field].(type) {
	case []Row:
		return c
	case []map[string]any:
		out := make([]Row, len(c))
		for i, m := range c {
			out[i] = Row(m)
		}
		return out
	case []any:
		out := make([]Row, 0, len(c))
		for _, e := range c {
			switch m := e.(type) {
			case Row:
				out = append(out, m)
			case map[string]any:
				out = append(out, Row(m))
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of r. Maps and slices are copied recursively so
// the copy can be edited without affecting the original.
func Clone(r Row) Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneAll deep-copies a row collection.
func CloneAll(rs []Row) []Row {
	out := make([]Row, len(rs))
	for i, r := range rs {
		out[i] = Clone(r)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Row:
		return Clone(x)
	case map[string]any:
		return map[string]any(Clone(Row(x)))
	case []Row:
		return CloneAll(x)
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, m := range x {
			out[i] = map[string]any(Clone(Row(m)))
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	default:
		return v
	}
}

// IDs returns the ids of rs in order.
func IDs(rs []Row, idField string) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = ID(r, idField)
	}
	return out
}
