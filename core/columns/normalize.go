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
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/recordgrid/core/rows"
)

var percentPattern = regexp.MustCompile(`^-?\d+(\.\d+)?%$`)

// dateParseFormats lists formats to try when parsing datetime strings, in order of preference.
var dateParseFormats = []string{
	time.RFC3339Nano,          // 2006-01-02T15:04:05.999999999Z07:00
	time.RFC3339,              // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05",     // ISO without timezone
	"2006-01-02 15:04:05",     // Space separator
	"2006-01-02",              // Date only (midnight)
	"2006/01/02",              // YYYY/MM/DD
	"02-Jan-2006",             // DD-Mon-YYYY
	"Jan 2, 2006",             // Natural format
	"January 2, 2006",         // Full month name
	"2006-01-02T15:04:05.000", // ISO with milliseconds no TZ
	"2006-01-02 15:04:05.000", // Space with milliseconds
}

// Key is the normalized form of a sort value.
type Key struct {
	// Blank marks a missing value. Blank keys order after everything else.
	Blank bool
	// Numeric is set for numbers, percentages and timestamps; Num holds the
	// magnitude (epoch milliseconds for timestamps).
	Numeric bool
	Num     float64
	// Text is the lowercased, trimmed string form, used when two keys are
	// not both numeric.
	Text string
}

// Normalize converts a raw value into a Key. It never fails: values that
// cannot be interpreted fall back to their string form.
func Normalize(v any) Key {
	switch x := v.(type) {
	case nil:
		return Key{Blank: true}
	case string:
		return normalizeString(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return numeric(f, x.String())
		}
		return normalizeString(x.String())
	case int:
		return numeric(float64(x), rows.Format(x))
	case int8:
		return numeric(float64(x), rows.Format(x))
	case int16:
		return numeric(float64(x), rows.Format(x))
	case int32:
		return numeric(float64(x), rows.Format(x))
	case int64:
		return numeric(float64(x), rows.Format(x))
	case uint:
		return numeric(float64(x), rows.Format(x))
	case uint8:
		return numeric(float64(x), rows.Format(x))
	case uint16:
		return numeric(float64(x), rows.Format(x))
	case uint32:
		return numeric(float64(x), rows.Format(x))
	case uint64:
		return numeric(float64(x), rows.Format(x))
	case float32:
		return numeric(float64(x), rows.Format(x))
	case float64:
		return numeric(x, rows.Format(x))
	case time.Time:
		if x.IsZero() {
			return Key{Blank: true}
		}
		return numeric(float64(x.UnixMilli()), strings.ToLower(x.Format(time.RFC3339)))
	default:
		return normalizeString(rows.Format(v))
	}
}

func numeric(f float64, text string) Key {
	if math.IsNaN(f) {
		return Key{Blank: true}
	}
	return Key{Numeric: true, Num: f, Text: strings.ToLower(text)}
}

func normalizeString(s string) Key {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{Blank: true}
	}
	if percentPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
			return Key{Numeric: true, Num: f, Text: s}
		}
	}
	if t, ok := ParseDatetime(s, time.UTC); ok {
		return Key{Numeric: true, Num: float64(t.UnixMilli()), Text: strings.ToLower(s)}
	}
	return Key{Text: strings.ToLower(s)}
}

// ParseDatetime attempts to parse a string as a calendar date or timestamp.
// Tries multiple formats and returns the first successful parse. Bare
// numbers are not accepted: "42" is a string, not an epoch offset.
func ParseDatetime(s string, defaultLoc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	// Every supported format starts with a digit or a month name.
	if c := s[0] | 0x20; !(s[0] >= '0' && s[0] <= '9') && !(c >= 'a' && c <= 'z') {
		return time.Time{}, false
	}
	for _, format := range dateParseFormats {
		if t, err := time.ParseInLocation(format, s, defaultLoc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
