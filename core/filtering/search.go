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

package filtering

import (
	"strings"
)

// Search term syntax used by the filter popup's value list:
//
//	"CLOSED"          exact match
//	'clo'             contains match
//	clo               case-insensitive contains match (search-as-you-type)
//	!'a'              negation
//	'a'&'b'           and
//	"OPEN"|"CLOSED"   or
//
// & binds tighter than |. Parentheses are not supported.

// Match reports whether value satisfies term. An empty term matches
// everything.
func Match(term string, value string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	for _, or := range strings.Split(term, "|") {
		andMatch := true
		for _, and := range strings.Split(or, "&") {
			if !matchOne(strings.TrimSpace(and), value) {
				andMatch = false
				break
			}
		}
		if andMatch {
			return true
		}
	}
	return false
}

func matchOne(term string, value string) bool {
	not := false
	if strings.HasPrefix(term, "!") {
		not = true
		term = strings.TrimSpace(term[1:])
	}
	var match bool
	switch {
	case len(term) >= 2 && term[0] == '"' && term[len(term)-1] == '"':
		match = value == term[1:len(term)-1]
	case len(term) >= 2 && term[0] == '\'' && term[len(term)-1] == '\'':
		match = strings.Contains(value, term[1:len(term)-1])
	case term == "":
		match = true
	default:
		match = strings.Contains(strings.ToLower(value), strings.ToLower(term))
	}
	if not {
		return !match
	}
	return match
}

// SearchValues returns the values matching term, keeping their order. It
// is cheap enough to run on every keystroke: value lists are bounded by the
// number of distinct values of a column.
func SearchValues(values []string, term string) []string {
	if strings.TrimSpace(term) == "" {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if Match(term, v) {
			out = append(out, v)
		}
	}
	return out
}
