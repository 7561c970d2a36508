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

// Package cmd implements the recordgrid command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/google/recordgrid/core/tables"
	"github.com/google/recordgrid/datasources"
	"github.com/google/recordgrid/demo"
	"github.com/google/recordgrid/internal/config"
	"github.com/google/recordgrid/internal/log"
)

// CLIName is the name of the binary.
const CLIName = "recordgrid"

// Flag names shared between commands.
const (
	configFlagName        = "config"
	fleetMachinesFlagName = "fleet-machines"
)

type configKey struct{}

// withConfig returns a context carrying cfg.
func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the configuration loaded for the running command.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// NewRootCmd returns the root command. Output of subcommands goes to out,
// logs to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           CLIName,
		Short:         "Serve and inspect grouped, filterable data grids",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := log.NewLogger(errOut, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			ctx := withConfig(cmd.Context(), cfg)
			ctx = log.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			logger.Debug("configuration loaded", "path", cfg.Path, "views", len(cfg.Views))
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, configFlagName, "", "Path to the configuration file to load.")
	pf.String(config.LogLevelKey, "error", "Log level: trace, debug, info, warn or error.")
	pf.String(config.LogFormatKey, "text", "Log format: text or json.")
	pf.String(config.LanguageKey, "und", "Language tag used for natural ordering.")
	pf.Int(fleetMachinesFlagName, 0, "Add a generated machine fleet of about this size to the demo views.")

	rootCmd.AddCommand(
		newServeCmd(),
		newShowCmd(),
		newValuesCmd(),
		newMoveCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line with os.Args and returns the exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadViews builds the configured views, or the demo views when none are
// configured.
func loadViews(cmd *cobra.Command) ([]*tables.TableView, error) {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return nil, err
	}
	logger := log.FromContext(ctx)

	tag, err := language.Parse(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", cfg.Language, err)
	}
	opts := []tables.Option{tables.WithLanguage(tag), tables.WithPositioner(cfg.Positioner())}

	if len(cfg.Views) == 0 {
		fleet, _ := cmd.Flags().GetInt(fleetMachinesFlagName)
		logger.Info("no views configured, using demo views", "fleet", fleet)
		return demo.Views(demo.Options{FleetMachines: fleet, Seed: 1, ViewOptions: opts})
	}

	mgr := datasources.NewDefaultManager()
	out := make([]*tables.TableView, 0, len(cfg.Views))
	for _, v := range cfg.Views {
		def, err := v.ViewDef()
		if err != nil {
			return nil, err
		}
		src := datasources.Source{Name: v.Name, Type: v.Type, Path: cfg.ResolveSource(v), Options: v.Options}
		if err := mgr.AddSource(src); err != nil {
			return nil, err
		}
		rs, err := mgr.LoadRows(ctx, v.Name)
		if err != nil {
			return nil, err
		}
		tv, err := tables.NewTableView(def, rs, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("view loaded", "view", v.Name, "rows", len(rs))
		out = append(out, tv)
	}
	return out, nil
}

// findView returns the view named name.
func findView(tvs []*tables.TableView, name string) (*tables.TableView, error) {
	for _, tv := range tvs {
		if tv.Name() == name {
			return tv, nil
		}
	}
	names := make([]string, len(tvs))
	for i, tv := range tvs {
		names[i] = tv.Name()
	}
	return nil, fmt.Errorf("unknown view %q, available: %v", name, names)
}
