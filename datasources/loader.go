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

// Package datasources loads grid rows from files. Loaders are registered
// per source type ("yaml", "csv", "proto") with a Manager that caches the
// loaded rows per source.
package datasources

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/recordgrid/core/rows"
)

// ErrUnknownSourceType is returned when no loader is registered for the
// type of a source.
var ErrUnknownSourceType = errors.New("unknown source type")

// ErrUnknownSource is returned for source names the Manager does not know.
var ErrUnknownSource = errors.New("unknown source")

// Source describes where the rows of one view come from.
type Source struct {
	Name string
	// Type selects the loader. Empty means detect it from the path
	// extension.
	Type string
	Path string
	// Options are loader specific settings.
	Options map[string]string
}

// Option returns the option named key, or def when it is unset.
func (s Source) Option(key, def string) string {
	if v, ok := s.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// Loader reads the rows of a source.
type Loader interface {
	// SourceType returns the type identifier used in config.
	SourceType() string
	// Load reads every row of src.
	Load(ctx context.Context, src Source) ([]rows.Row, error)
}

// DetectType infers the source type from the file extension.
func DetectType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return "yaml"
	case ".csv", ".tsv":
		return "csv"
	case ".textproto", ".txtpb", ".binpb", ".pb":
		return "proto"
	default:
		return ""
	}
}
