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
	"errors"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/google/recordgrid/core/rows"
)

// ErrUnknownColumn is returned when a column id is not part of a Set.
var ErrUnknownColumn = errors.New("unknown column")

// Kind describes the shape of the values a column reads from a row.
type Kind int

const (
	// KindScalar reads a single value.
	KindScalar Kind = iota
	// KindMulti reads a list of values, e.g. a tag list.
	KindMulti
	// KindNested reads one field across a nested one-to-many collection.
	KindNested
)

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMulti:
		return "multi"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

// ParseKind parses the configuration spelling of a kind. The empty string
// is KindScalar.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "scalar":
		return KindScalar, nil
	case "multi":
		return KindMulti, nil
	case "nested":
		return KindNested, nil
	default:
		return KindScalar, fmt.Errorf("invalid column kind %q", s)
	}
}

// Accessor computes a raw cell value from a row. It may return a scalar,
// a slice of scalars or nil.
type Accessor func(rows.Row) any

// ColumnSpec describes one column of a grid. ID is stable and is the key
// used by filters, sorting and grouping.
type ColumnSpec struct {
	ID    string
	Title string
	Kind  Kind

	// Field is the row field to read. Empty means the field named ID.
	// For KindNested it is the field read on every child row.
	Field string
	// Children names the nested collection for KindNested.
	Children string
	// Path is an optional jq expression evaluated against the row.
	Path string
	// Accessor overrides Field and Path when set.
	Accessor Accessor

	code *gojq.Code
}

// DisplayName returns the title, falling back to the id.
func (c *ColumnSpec) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID
}

func (c *ColumnSpec) field() string {
	if c.Field != "" {
		return c.Field
	}
	return c.ID
}

// compile prepares the jq program when Path is set.
func (c *ColumnSpec) compile() error {
	if c.Path == "" || c.code != nil {
		return nil
	}
	code, err := compilePath(c.Path)
	if err != nil {
		return fmt.Errorf("column %q: %w", c.ID, err)
	}
	c.code = code
	return nil
}

// Set is an ordered collection of column specs indexed by id.
type Set struct {
	order []*ColumnSpec
	byID  map[string]*ColumnSpec
}

// NewSet validates the specs and builds a Set. Ids must be unique and
// non-empty and jq paths must compile.
func NewSet(specs ...ColumnSpec) (*Set, error) {
	s := &Set{byID: make(map[string]*ColumnSpec, len(specs))}
	for i := range specs {
		spec := specs[i]
		if spec.ID == "" {
			return nil, fmt.Errorf("column %d has no id", i)
		}
		if _, dup := s.byID[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate column id %q", spec.ID)
		}
		if spec.Kind == KindNested && spec.Children == "" && spec.Path == "" && spec.Accessor == nil {
			return nil, fmt.Errorf("nested column %q needs a children field", spec.ID)
		}
		if err := spec.compile(); err != nil {
			return nil, err
		}
		s.order = append(s.order, &spec)
		s.byID[spec.ID] = &spec
	}
	return s, nil
}

// MustNewSet is NewSet for static definitions; it panics on error.
func MustNewSet(specs ...ColumnSpec) *Set {
	s, err := NewSet(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the spec for id. Ids that are not part of the set resolve to
// a scalar column reading the field of the same name, so filters and sorts
// on ad-hoc fields keep working.
func (s *Set) Get(id string) *ColumnSpec {
	if s != nil {
		if c, ok := s.byID[id]; ok {
			return c
		}
	}
	return &ColumnSpec{ID: id}
}

// Lookup returns the spec for id or ErrUnknownColumn.
func (s *Set) Lookup(id string) (*ColumnSpec, error) {
	if s != nil {
		if c, ok := s.byID[id]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
}

// Has reports whether id is part of the set.
func (s *Set) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byID[id]
	return ok
}

// Columns returns the specs in definition order.
func (s *Set) Columns() []*ColumnSpec {
	if s == nil {
		return nil
	}
	return s.order
}

// IDs returns the column ids in definition order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.order))
	for i, c := range s.order {
		ids[i] = c.ID
	}
	return ids
}
