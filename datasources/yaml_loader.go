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
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/google/recordgrid/core/rows"
)

// YamlLoader reads rows from YAML or JSON files. The document is either a
// list of objects or an object holding the list under the key named by the
// "rows_key" option (default "rows").
type YamlLoader struct{}

// NewYamlLoader creates a YAML/JSON loader.
func NewYamlLoader() *YamlLoader {
	return &YamlLoader{}
}

// SourceType returns "yaml".
func (l *YamlLoader) SourceType() string {
	return "yaml"
}

// Load reads src.Path.
func (l *YamlLoader) Load(_ context.Context, src Source) ([]rows.Row, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseYaml(data, src.Option("rows_key", "rows"))
}

// ParseYaml decodes a YAML or JSON document into rows.
func ParseYaml(data []byte, rowsKey string) ([]rows.Row, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if obj, ok := doc.(map[string]any); ok {
		doc = obj[rowsKey]
		if doc == nil {
			return nil, fmt.Errorf("document has no %q list", rowsKey)
		}
	}
	if doc == nil {
		return []rows.Row{}, nil
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of rows, got %T", doc)
	}
	out := make([]rows.Row, 0, len(list))
	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d: expected an object, got %T", i, e)
		}
		out = append(out, rows.Row(m))
	}
	return out, nil
}
