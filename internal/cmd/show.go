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

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/google/recordgrid/core/query"
	"github.com/google/recordgrid/core/reorder"
	"github.com/google/recordgrid/core/sorting"
	"github.com/google/recordgrid/core/tables"
)

const (
	outputFlagName = "output"
	filterFlagName = "filter"
	sortFlagName   = "sort"
	limitFlagName  = "limit"
)

// gridFlags holds the view state given on the command line.
type gridFlags struct {
	filters []string
	sort    string
	limit   int
	output  string
}

func (f *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.filters, filterFlagName, nil,
		"Filter a column to the given values, e.g. --filter status=open|closed. Repeatable.")
	cmd.Flags().StringVar(&f.sort, sortFlagName, "", "Sort by a column, e.g. --sort amount:desc.")
	cmd.Flags().IntVar(&f.limit, limitFlagName, 0, "Show at most this many rows (0 shows all).")
	cmd.Flags().StringVarP(&f.output, outputFlagName, "o", "text", "Output format: text, json or yaml.")
}

// query builds the query for view from the flags, the same way a grid URL
// is parsed.
func (f *gridFlags) query(view string) (*query.Query, error) {
	vals := url.Values{}
	vals.Set("view", view)
	vals.Set("limit", strconv.Itoa(f.limit))
	if f.sort != "" {
		_, dir, _ := strings.Cut(f.sort, ":")
		if _, err := sorting.ParseDirection(dir); err != nil {
			return nil, fmt.Errorf("invalid sort %q: %w", f.sort, err)
		}
		vals.Set("sort", f.sort)
	}
	for _, flt := range f.filters {
		col, values, ok := strings.Cut(flt, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid filter %q, want column=v1|v2", flt)
		}
		vals.Add("filter:"+col, values)
	}
	return query.NewQuery(&url.URL{Path: "/grid", RawQuery: vals.Encode()}), nil
}

// writeGrid writes the processed grid of tv.
func writeGrid(w io.Writer, tv *tables.TableView, limit int, output string) error {
	switch output {
	case "", "text":
		if limit > 0 {
			_, err := io.WriteString(w, tv.PageToAscii(limit))
			return err
		}
		_, err := io.WriteString(w, tv.ToAscii())
		return err
	default:
		res := tv.Page(limit)
		return writeData(w, res.Rows, output)
	}
}

// writeData writes v as JSON or YAML.
func writeData(w io.Writer, v any, output string) error {
	var data []byte
	var err error
	switch output {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newShowCmd() *cobra.Command {
	var flags gridFlags
	cmd := &cobra.Command{
		Use:   "show VIEW",
		Short: "Print a view with merged cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tvs, err := loadViews(cmd)
			if err != nil {
				return err
			}
			tv, err := findView(tvs, args[0])
			if err != nil {
				return err
			}
			q, err := flags.query(args[0])
			if err != nil {
				return err
			}
			if err := q.Apply(tv); err != nil {
				return err
			}
			return writeGrid(cmd.OutOrStdout(), tv, q.Limit, flags.output)
		},
	}
	flags.register(cmd)
	return cmd
}

func newValuesCmd() *cobra.Command {
	var search, output string
	cmd := &cobra.Command{
		Use:   "values VIEW COLUMN",
		Short: "List the filter values of a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tvs, err := loadViews(cmd)
			if err != nil {
				return err
			}
			tv, err := findView(tvs, args[0])
			if err != nil {
				return err
			}
			values, err := tv.SearchChoices(args[1], search)
			if err != nil {
				return err
			}
			if output != "" && output != "text" {
				return writeData(cmd.OutOrStdout(), values, output)
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", `Only list values matching a search term, e.g. 'clo' or "OPEN"|"CLOSED".`)
	cmd.Flags().StringVarP(&output, outputFlagName, "o", "text", "Output format: text, json or yaml.")
	return cmd
}

func newMoveCmd() *cobra.Command {
	var after bool
	var output string
	cmd := &cobra.Command{
		Use:   "move VIEW ROW TARGET",
		Short: "Move a row before (or after) another row and print the renumbered view",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tvs, err := loadViews(cmd)
			if err != nil {
				return err
			}
			tv, err := findView(tvs, args[0])
			if err != nil {
				return err
			}
			p := reorder.Before
			if after {
				p = reorder.After
			}
			if !tv.Move(args[1], args[2], p) {
				return fmt.Errorf("cannot move %q to %q: unknown row", args[1], args[2])
			}
			return writeGrid(cmd.OutOrStdout(), tv, 0, output)
		},
	}
	cmd.Flags().BoolVar(&after, "after", false, "Place the row after the target instead of before it.")
	cmd.Flags().StringVarP(&output, outputFlagName, "o", "text", "Output format: text, json or yaml.")
	return cmd
}
