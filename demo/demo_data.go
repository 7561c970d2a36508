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

// Package demo provides built-in views used when no views are configured:
// a grouped risk register, a flat order list and a generated machine fleet.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/reorder"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/tables"
	"github.com/google/recordgrid/datasources"
)

//go:embed data/controls.yaml
var controlsYAML []byte

//go:embed data/orders.csv
var ordersCSV string

// Title and Subtitle describe the demo on the landing page.
const (
	Title    = "Recordgrid demo"
	Subtitle = "Grouped, filterable and sortable grids with merged cells and drag-and-drop ordering"
)

// ControlsView is the risk register: controls grouped by hazard, with
// owners and actions nested per control.
func ControlsView() tables.ViewDef {
	return tables.ViewDef{
		Name:  "controls",
		Title: "Risk controls",
		Columns: []columns.ColumnSpec{
			{ID: "nr", Title: "Nr"},
			{ID: "hazard", Title: "Hazard"},
			{ID: "control", Title: "Control"},
			{ID: "status", Title: "Status"},
			{ID: "effectiveness", Title: "Effectiveness"},
			{ID: "review", Title: "Next review"},
			{ID: "tags", Title: "Tags", Kind: columns.KindMulti},
			{ID: "owner", Title: "Owners", Kind: columns.KindNested, Children: "details"},
			{ID: "action", Title: "Actions", Kind: columns.KindNested, Children: "details"},
		},
		GroupLevels: []string{"hazard"},
		Lockstep:    []string{"nr"},
		Numbering:   reorder.Numbering{Field: "nr", Children: "details", ChildField: "nr"},
	}
}

// OrdersView is a flat list of orders.
func OrdersView() tables.ViewDef {
	return tables.ViewDef{
		Name:  "orders",
		Title: "Orders",
		Columns: []columns.ColumnSpec{
			{ID: "id", Title: "Order"},
			{ID: "status", Title: "Status"},
			{ID: "region", Title: "Region"},
			{ID: "category", Title: "Category"},
			{ID: "amount", Title: "Amount"},
			{ID: "ordered", Title: "Ordered"},
			{ID: "channels", Title: "Channels", Kind: columns.KindMulti},
		},
	}
}

// ControlsRows returns the rows of the risk register.
func ControlsRows() ([]rows.Row, error) {
	rs, err := datasources.ParseYaml(controlsYAML, "rows")
	if err != nil {
		return nil, fmt.Errorf("parsing controls: %w", err)
	}
	return rs, nil
}

// OrdersRows returns the rows of the order list.
func OrdersRows() ([]rows.Row, error) {
	opts := datasources.DefaultCsvOptions()
	opts.Multi = map[string]bool{"channels": true}
	opts.Types = map[string]datasources.CsvType{"id": datasources.CsvString}
	rs, err := datasources.ReadCsv(strings.NewReader(ordersCSV), opts)
	if err != nil {
		return nil, fmt.Errorf("parsing orders: %w", err)
	}
	return rs, nil
}

// Options configures the demo views.
type Options struct {
	// FleetMachines is the approximate number of generated machines. Zero
	// leaves the fleet view out.
	FleetMachines int
	// Seed makes the generated fleet reproducible.
	Seed uint64
	// ViewOptions are applied to every view.
	ViewOptions []tables.Option
}

// Views builds the demo views.
func Views(opts Options) ([]*tables.TableView, error) {
	controls, err := ControlsRows()
	if err != nil {
		return nil, err
	}
	orders, err := OrdersRows()
	if err != nil {
		return nil, err
	}
	type entry struct {
		def tables.ViewDef
		rs  []rows.Row
	}
	entries := []entry{{ControlsView(), controls}, {OrdersView(), orders}}
	if opts.FleetMachines > 0 {
		entries = append(entries, entry{FleetView(), FleetRows(opts.FleetMachines, opts.Seed)})
	}

	out := make([]*tables.TableView, 0, len(entries))
	for _, e := range entries {
		tv, err := tables.NewTableView(e.def, e.rs, opts.ViewOptions...)
		if err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, nil
}
