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

// Package sorting orders grid rows by one column, with blanks last and a
// stable fallback to the order rows were first seen in.
package sorting

import (
	"fmt"
	"strings"
)

// DefaultColumn is the reserved ordinal column. Sorting by it (or by no
// column at all) means "original order".
const DefaultColumn = "#"

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses "asc" or "desc" (case-insensitive). Empty is
// Ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid sort direction %q", s)
	}
}

// Config is the active sort of a view. The zero value is the default sort.
type Config struct {
	ColumnID  string
	Direction Direction
}

// Default returns the default sort.
func Default() Config {
	return Config{}
}

// By returns a sort on columnID in direction dir.
func By(columnID string, dir Direction) Config {
	return Config{ColumnID: columnID, Direction: dir}
}

// IsDefault reports whether the config means "original order".
func (c Config) IsDefault() bool {
	return c.ColumnID == "" || c.ColumnID == DefaultColumn
}

// IsSortedBy reports whether columnID is the active sort column.
func (c Config) IsSortedBy(columnID string) bool {
	return !c.IsDefault() && c.ColumnID == columnID
}

// Toggle returns the next config when the header of columnID is clicked:
// ascending, then descending, then back to the default order. Clicking
// another column starts over at ascending.
func (c Config) Toggle(columnID string) Config {
	if columnID == "" || columnID == DefaultColumn {
		return Default()
	}
	if c.ColumnID != columnID || c.IsDefault() {
		return By(columnID, Ascending)
	}
	if c.Direction == Ascending {
		return By(columnID, Descending)
	}
	return Default()
}

func (c Config) String() string {
	if c.IsDefault() {
		return DefaultColumn
	}
	return c.ColumnID + ":" + c.Direction.String()
}
