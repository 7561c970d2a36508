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
	"fmt"
	"time"

	"github.com/itchyny/gojq"

	"github.com/google/recordgrid/core/rows"
)

func compilePath(path string) (*gojq.Code, error) {
	parsed, err := gojq.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jq path: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq path: %w", err)
	}
	return code, nil
}

// evalPath runs a compiled path against a row. A single output is returned
// as is, several outputs as []any. Evaluation errors yield nil, which the
// extractor turns into the blank sentinel.
func evalPath(code *gojq.Code, r rows.Row) any {
	iter := code.Run(toJQ(r))
	var out []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if halt, isHalt := err.(*gojq.HaltError); isHalt && halt.Value() == nil {
				break
			}
			return nil
		}
		out = append(out, v)
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// toJQ converts row values into the plain JSON shapes gojq accepts.
func toJQ(v any) any {
	switch x := v.(type) {
	case rows.Row:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = toJQ(e)
		}
		return m
	case map[string]any:
		return toJQ(rows.Row(x))
	case []rows.Row:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toJQ(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toJQ(rows.Row(e))
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toJQ(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return v
	}
}
