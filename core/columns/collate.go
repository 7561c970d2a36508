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
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares strings in natural order: case-insensitive, locale
// aware, with embedded digit runs compared by numeric value
// ("Item 9" < "Item 10").
//
// A Collator keeps internal buffers and must not be shared between
// goroutines.
type Collator struct {
	c *collate.Collator
}

// NewCollator returns a natural-order collator for tag. language.Und gives
// the root collation order.
func NewCollator(tag language.Tag) *Collator {
	return &Collator{c: collate.New(tag, collate.Numeric, collate.IgnoreCase)}
}

// Compare returns -1, 0 or 1. Strings that collate equal return 0.
func (c *Collator) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// CompareTotal is Compare with a byte-order tiebreak, giving a total order
// over distinct strings.
func (c *Collator) CompareTotal(a, b string) int {
	if r := c.c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}
