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

package datasources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/recordgrid/core/rows"
)

// CsvType is the value type of a CSV column.
type CsvType string

const (
	CsvAuto    CsvType = ""
	CsvString  CsvType = "string"
	CsvInt64   CsvType = "int64"
	CsvFloat64 CsvType = "float64"
	CsvBool    CsvType = "bool"
)

// CsvOptions configures CSV parsing.
type CsvOptions struct {
	// HasHeader indicates whether the first record holds the field names.
	// Without a header fields are named column_1, column_2, ...
	HasHeader bool
	Delimiter rune
	// Types forces the type of named fields; others are detected.
	Types map[string]CsvType
	// Multi lists fields holding several values separated by MultiSeparator.
	Multi          map[string]bool
	MultiSeparator string
	// SampleSize is the number of records sampled for type detection.
	SampleSize int
}

// DefaultCsvOptions returns options for a comma separated file with header.
func DefaultCsvOptions() CsvOptions {
	return CsvOptions{
		HasHeader:      true,
		Delimiter:      ',',
		MultiSeparator: ";",
		SampleSize:     100,
	}
}

// CsvLoader implements Loader for CSV files.
//
// Options:
//   - has_header: "true" or "false" (default: "true")
//   - delimiter: field delimiter (default: "," or tab for .tsv files)
//   - types: forced field types, e.g. "id:string,qty:float64"
//   - multi: fields holding several values, e.g. "tags,owners"
//   - multi_separator: separator inside multi fields (default: ";")
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load reads src.Path.
func (l *CsvLoader) Load(_ context.Context, src Source) ([]rows.Row, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	opts, err := csvOptionsFromSource(src)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ReadCsv(f, opts)
}

func csvOptionsFromSource(src Source) (CsvOptions, error) {
	opts := DefaultCsvOptions()
	if strings.EqualFold(filepath.Ext(src.Path), ".tsv") {
		opts.Delimiter = '\t'
	}
	if src.Option("has_header", "true") == "false" {
		opts.HasHeader = false
	}
	if d := src.Option("delimiter", ""); d != "" {
		if d == `\t` {
			opts.Delimiter = '\t'
		} else {
			opts.Delimiter = []rune(d)[0]
		}
	}
	opts.MultiSeparator = src.Option("multi_separator", opts.MultiSeparator)
	if m := src.Option("multi", ""); m != "" {
		opts.Multi = make(map[string]bool)
		for _, name := range strings.Split(m, ",") {
			opts.Multi[strings.TrimSpace(name)] = true
		}
	}
	if t := src.Option("types", ""); t != "" {
		opts.Types = make(map[string]CsvType)
		for _, pair := range strings.Split(t, ",") {
			name, typ, ok := strings.Cut(pair, ":")
			if !ok {
				return opts, fmt.Errorf("invalid type entry %q, want name:type", pair)
			}
			ct := CsvType(strings.TrimSpace(typ))
			switch ct {
			case CsvString, CsvInt64, CsvFloat64, CsvBool:
			default:
				return opts, fmt.Errorf("invalid CSV type %q for %q", typ, name)
			}
			opts.Types[strings.TrimSpace(name)] = ct
		}
	}
	return opts, nil
}

// ReadCsv parses CSV records into rows. Empty cells are left out of the
// row so they read as blanks.
func ReadCsv(r io.Reader, opts CsvOptions) ([]rows.Row, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return []rows.Row{}, nil
	}

	var headers []string
	data := records
	if opts.HasHeader {
		headers = make([]string, len(records[0]))
		for i, h := range records[0] {
			headers[i] = strings.TrimSpace(h)
		}
		data = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	types := detectCsvTypes(headers, data, opts)
	out := make([]rows.Row, 0, len(data))
	for _, rec := range data {
		row := make(rows.Row, len(headers))
		for i, name := range headers {
			if i >= len(rec) {
				break
			}
			value := strings.TrimSpace(rec[i])
			if value == "" {
				continue
			}
			if opts.Multi[name] {
				var vals []any
				for _, part := range strings.Split(value, opts.MultiSeparator) {
					if part = strings.TrimSpace(part); part != "" {
						vals = append(vals, parseCsvValue(part, types[i]))
					}
				}
				row[name] = vals
				continue
			}
			row[name] = parseCsvValue(value, types[i])
		}
		out = append(out, row)
	}
	return out, nil
}

// parseCsvValue converts value to t, keeping the text when it does not
// parse.
func parseCsvValue(value string, t CsvType) any {
	switch t {
	case CsvInt64:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case CsvFloat64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case CsvBool:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

// detectCsvTypes samples data to find fields whose non-empty values are all
// integers, all numbers or all booleans. Multi fields are sampled per part.
func detectCsvTypes(headers []string, data [][]string, opts CsvOptions) []CsvType {
	sample := opts.SampleSize
	if sample <= 0 || sample > len(data) {
		sample = len(data)
	}
	types := make([]CsvType, len(headers))
	for i, name := range headers {
		if t, ok := opts.Types[name]; ok && t != CsvAuto {
			types[i] = t
			continue
		}
		isInt, isFloat, isBool, seen := true, true, true, false
		for _, rec := range data[:sample] {
			if i >= len(rec) {
				continue
			}
			values := []string{strings.TrimSpace(rec[i])}
			if opts.Multi[name] {
				values = strings.Split(values[0], opts.MultiSeparator)
			}
			for _, v := range values {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				seen = true
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					isInt = false
				}
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					isFloat = false
				}
				if v != "true" && v != "false" {
					isBool = false
				}
			}
		}
		switch {
		case !seen:
			types[i] = CsvString
		case isInt:
			types[i] = CsvInt64
		case isFloat:
			types[i] = CsvFloat64
		case isBool:
			types[i] = CsvBool
		default:
			types[i] = CsvString
		}
	}
	return types
}
