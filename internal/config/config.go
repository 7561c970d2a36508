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

// Package config loads recordgrid settings from a config file, RECORDGRID_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/popup"
	"github.com/google/recordgrid/core/reorder"
	"github.com/google/recordgrid/core/tables"
)

// EnvPrefix prefixes environment overrides, e.g. RECORDGRID_LOG_LEVEL.
const EnvPrefix = "recordgrid"

// Configuration keys.
const (
	AddrKey          = "addr"
	LogLevelKey      = "log-level"
	LogFormatKey     = "log-format"
	LanguageKey      = "language"
	PopupMarginKey   = "popup.margin"
	PopupGapKey      = "popup.gap"
	PopupMinWidthKey = "popup.min-width"
	ViewsKey         = "views"
)

// Config is the resolved application configuration.
type Config struct {
	Addr      string       `mapstructure:"addr"`
	LogLevel  string       `mapstructure:"log-level"`
	LogFormat string       `mapstructure:"log-format"`
	Language  string       `mapstructure:"language"`
	Popup     PopupConfig  `mapstructure:"popup"`
	Views     []ViewConfig `mapstructure:"views"`

	// Path is the file the configuration was read from, if any.
	Path string `mapstructure:"-"`
}

// PopupConfig holds the filter popup geometry in pixels.
type PopupConfig struct {
	Margin   float64 `mapstructure:"margin"`
	Gap      float64 `mapstructure:"gap"`
	MinWidth float64 `mapstructure:"min-width"`
}

// ViewConfig declares one grid view and the rows it is loaded from.
type ViewConfig struct {
	Name        string          `mapstructure:"name"`
	Title       string          `mapstructure:"title"`
	Source      string          `mapstructure:"source"`
	Type        string          `mapstructure:"type"`
	IDField     string          `mapstructure:"id-field"`
	GroupLevels []string        `mapstructure:"group-levels"`
	Lockstep    []string        `mapstructure:"lockstep"`
	Numbering   NumberingConfig `mapstructure:"numbering"`
	Columns     []ColumnConfig  `mapstructure:"columns"`
	// Options are passed to the row loader, e.g. delimiter for CSV.
	Options map[string]string `mapstructure:"options"`
}

// NumberingConfig mirrors reorder.Numbering.
type NumberingConfig struct {
	Field      string `mapstructure:"field"`
	Children   string `mapstructure:"children"`
	ChildField string `mapstructure:"child-field"`
}

// ColumnConfig mirrors columns.ColumnSpec.
type ColumnConfig struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Kind     string `mapstructure:"kind"`
	Field    string `mapstructure:"field"`
	Children string `mapstructure:"children"`
	Path     string `mapstructure:"path"`
}

// Defaults returns the values used when neither file, environment nor flag
// sets a key.
func Defaults() map[string]any {
	p := popup.DefaultPositioner()
	return map[string]any{
		AddrKey:          "localhost:8097",
		LogLevelKey:      "error",
		LogFormatKey:     "text",
		LanguageKey:      "und",
		PopupMarginKey:   p.Margin,
		PopupGapKey:      p.Gap,
		PopupMinWidthKey: p.MinWidth,
	}
}

// NewViper returns a viper instance reading path (when set) with
// environment overrides. Keys containing "." or "-" map to "_" in
// environment variable names.
func NewViper(path string) *viper.Viper {
	rv := viper.New()
	for k, val := range Defaults() {
		rv.SetDefault(k, val)
	}
	if path != "" {
		rv.SetConfigFile(path)
	}
	rv.AutomaticEnv()
	rv.SetEnvPrefix(EnvPrefix)
	rv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return rv
}

// Load reads the configuration. An empty path uses defaults, environment
// and flags only; a path that does not exist is an error. Flags in fs that
// match a configuration key override every other source when set.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	path = os.ExpandEnv(path)
	rv := NewViper(path)
	if path != "" {
		if err := rv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if fs != nil {
		for _, k := range []string{AddrKey, LogLevelKey, LogFormatKey, LanguageKey} {
			if f := fs.Lookup(k); f != nil {
				if err := rv.BindPFlag(k, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", k, err)
				}
			}
		}
	}

	var cfg Config
	if err := rv.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks view names and column kinds.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Views))
	var errs []error
	for i, v := range c.Views {
		if v.Name == "" {
			errs = append(errs, fmt.Errorf("views[%d]: missing name", i))
			continue
		}
		if seen[v.Name] {
			errs = append(errs, fmt.Errorf("views[%d]: duplicate name %q", i, v.Name))
		}
		seen[v.Name] = true
		if _, err := v.ViewDef(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Positioner returns the popup positioner configured by c.
func (c *Config) Positioner() popup.Positioner {
	return popup.Positioner{Margin: c.Popup.Margin, Gap: c.Popup.Gap, MinWidth: c.Popup.MinWidth}
}

// ResolveSource returns the source of v, relative to the config file when
// it is not absolute.
func (c *Config) ResolveSource(v ViewConfig) string {
	if v.Source == "" || filepath.IsAbs(v.Source) || c.Path == "" {
		return v.Source
	}
	return filepath.Join(filepath.Dir(c.Path), v.Source)
}

// ViewDef converts v to a view definition.
func (v ViewConfig) ViewDef() (tables.ViewDef, error) {
	def := tables.ViewDef{
		Name:        v.Name,
		Title:       v.Title,
		IDField:     v.IDField,
		GroupLevels: v.GroupLevels,
		Lockstep:    v.Lockstep,
		Numbering: reorder.Numbering{
			Field:      v.Numbering.Field,
			Children:   v.Numbering.Children,
			ChildField: v.Numbering.ChildField,
		},
	}
	for _, c := range v.Columns {
		kind, err := columns.ParseKind(strings.ToLower(c.Kind))
		if err != nil {
			return tables.ViewDef{}, fmt.Errorf("view %q column %q: %w", v.Name, c.ID, err)
		}
		def.Columns = append(def.Columns, columns.ColumnSpec{
			ID:       c.ID,
			Title:    c.Title,
			Kind:     kind,
			Field:    c.Field,
			Children: c.Children,
			Path:     c.Path,
		})
	}
	return def, nil
}
