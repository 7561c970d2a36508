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

// Package server serves grid views over HTTP: an HTML grid with filter and
// sort links, and a JSON API for grids, filter choices, popup placement and
// row reordering.
//
// View state (filters, sort, limit) lives in the request URL. Each request
// applies it to the view before processing, so nothing is remembered
// between requests except the row order changed by reordering.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/recordgrid/core/popup"
	"github.com/google/recordgrid/core/query"
	"github.com/google/recordgrid/core/rendering"
	"github.com/google/recordgrid/core/reorder"
	"github.com/google/recordgrid/core/tables"
	"github.com/google/recordgrid/core/views"
)

// ErrUnknownView is returned for view names the server does not serve.
var ErrUnknownView = errors.New("unknown view")

// GridPath is the path of the HTML grid.
const GridPath = "/grid"

// Server owns the served views. The engine is single-threaded, so every
// request touching a view holds mu.
type Server struct {
	mu       sync.Mutex
	title    string
	subtitle string
	views    map[string]*tables.TableView
	order    []string
	renderer *rendering.GridRenderer
}

// NewServer creates a server for the given views.
func NewServer(title, subtitle string, tvs ...*tables.TableView) (*Server, error) {
	renderer, err := rendering.NewGridRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	s := &Server{
		title:    title,
		subtitle: subtitle,
		views:    make(map[string]*tables.TableView),
		renderer: renderer,
	}
	for _, tv := range tvs {
		if err := s.AddView(tv); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddView registers tv under its name.
func (s *Server) AddView(tv *tables.TableView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[tv.Name()]; ok {
		return fmt.Errorf("view %q registered twice", tv.Name())
	}
	s.views[tv.Name()] = tv
	s.order = append(s.order, tv.Name())
	return nil
}

// ViewNames returns the view names in registration order.
func (s *Server) ViewNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// HandlerResult represents a failed request.
type HandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

func badRequest(format string, args ...any) *HandlerResult {
	return &HandlerResult{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// TimingEntry is the duration of one step of a request.
type TimingEntry struct {
	Operation  string `json:"operation"`
	DurationMs string `json:"durationMs"`
}

// TimingCollector collects timing measurements for the steps of a request.
type TimingCollector struct {
	entries []TimingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry.
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, TimingEntry{
		Operation:  operation,
		DurationMs: fmt.Sprintf("%.2f", float64(duration.Microseconds())/1000.0),
	})
}

// Time runs f and records its duration.
func (tc *TimingCollector) Time(operation string, f func()) {
	start := time.Now()
	f()
	tc.Record(operation, time.Since(start))
}

// Entries returns all timing entries.
func (tc *TimingCollector) Entries() []TimingEntry {
	return tc.entries
}

// TotalMs returns total elapsed time in milliseconds as formatted string.
func (tc *TimingCollector) TotalMs() string {
	return fmt.Sprintf("%.2f", float64(time.Since(tc.start).Microseconds())/1000.0)
}

// lookup returns the view named by q. Callers hold s.mu.
func (s *Server) lookup(q *query.Query) (*tables.TableView, *HandlerResult) {
	if q.View == "" {
		return nil, badRequest("view parameter is required")
	}
	tv, ok := s.views[q.View]
	if !ok {
		return nil, &HandlerResult{
			Error:      fmt.Errorf("%w %q", ErrUnknownView, q.View),
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("View '%s' not found", q.View),
		}
	}
	return tv, nil
}

// applyQuery replaces the filters and sort of tv with those of q. Callers
// hold s.mu.
func applyQuery(tv *tables.TableView, q *query.Query) *HandlerResult {
	if err := q.Apply(tv); err != nil {
		return badRequest("%v", err)
	}
	return nil
}

// HandleGridRequest renders the HTML grid of the view named in requestURL.
// Returns an error result if the request is invalid, nil on success.
func (s *Server) HandleGridRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *HandlerResult {
	timing := NewTimingCollector()
	q := query.NewQuery(requestURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	tv, res := s.lookup(q)
	if res != nil {
		return res
	}
	timing.Time("Apply Query", func() { res = applyQuery(tv, q) })
	if res != nil {
		return res
	}
	var vm views.GridViewModel
	timing.Time("Build ViewModel", func() { vm = views.BuildViewModel(tv, q) })

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, vm); err != nil {
		return &HandlerResult{Error: fmt.Errorf("rendering grid: %w", err)}
	}
	return nil
}

// HandleLandingRequest renders the list of views.
func (s *Server) HandleLandingRequest(w io.Writer, setHeader func(key, value string)) error {
	s.mu.Lock()
	tvs := make([]*tables.TableView, 0, len(s.order))
	for _, name := range s.order {
		tvs = append(tvs, s.views[name])
	}
	q := query.NewQuery(&url.URL{Path: GridPath})
	vm := views.BuildLandingViewModel(s.title, s.subtitle, tvs, q)
	s.mu.Unlock()

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderLanding(w, vm); err != nil {
		return fmt.Errorf("rendering landing page: %w", err)
	}
	return nil
}

// GridResponse is the JSON form of a processed grid.
type GridResponse struct {
	View        string              `json:"view"`
	Total       int                 `json:"total"`
	Displayed   int                 `json:"displayed"`
	Sort        string              `json:"sort"`
	Filters     map[string][]string `json:"filters"`
	Reorderable bool                `json:"reorderable"`
	Rows        []views.RowInfo     `json:"rows"`
	Groups      []views.GroupInfo   `json:"groups,omitempty"`
	Timing      []TimingEntry       `json:"timing,omitempty"`
}

func gridResponse(tv *tables.TableView, q *query.Query, timing *TimingCollector) GridResponse {
	var vm views.GridViewModel
	timing.Time("Build ViewModel", func() { vm = views.BuildViewModel(tv, q) })
	filters := make(map[string][]string)
	f := tv.Filters()
	for _, col := range f.Columns() {
		filters[col], _ = f.Selected(col)
	}
	resp := GridResponse{
		View:        vm.View,
		Total:       vm.TotalRows,
		Displayed:   vm.DisplayedRows,
		Sort:        tv.Sort().String(),
		Filters:     filters,
		Reorderable: vm.Reorderable,
		Rows:        vm.Rows,
		Groups:      vm.Groups,
		Timing:      timing.Entries(),
	}
	if resp.Rows == nil {
		resp.Rows = []views.RowInfo{}
	}
	return resp
}

// HandleGridAPI returns the processed grid as JSON.
func (s *Server) HandleGridAPI(requestURL *url.URL) (*GridResponse, *HandlerResult) {
	timing := NewTimingCollector()
	q := query.NewQuery(requestURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	tv, res := s.lookup(q)
	if res != nil {
		return nil, res
	}
	if res := applyQuery(tv, q); res != nil {
		return nil, res
	}
	resp := gridResponse(tv, q, timing)
	return &resp, nil
}

// ChoicesResponse lists the filter choices of a column.
type ChoicesResponse struct {
	Column   string   `json:"column"`
	Choices  []string `json:"choices"`
	Selected []string `json:"selected"`
}

// HandleChoicesAPI returns the filter choices of the column parameter,
// narrowed by the search term q.
func (s *Server) HandleChoicesAPI(requestURL *url.URL) (*ChoicesResponse, *HandlerResult) {
	q := query.NewQuery(requestURL)
	params := requestURL.Query()
	column := params.Get("column")
	if column == "" {
		return nil, badRequest("column parameter is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tv, res := s.lookup(q)
	if res != nil {
		return nil, res
	}
	if res := applyQuery(tv, q); res != nil {
		return nil, res
	}
	choices, err := tv.SearchChoices(column, params.Get("q"))
	if err != nil {
		return nil, badRequest("%v", err)
	}
	selected, ok := tv.Filters().Selected(column)
	if !ok {
		selected, _ = tv.FilterChoices(column)
	}
	return &ChoicesResponse{Column: column, Choices: choices, Selected: selected}, nil
}

// HandlePopupAPI places the filter popup of the column parameter. The
// anchor rectangle is given by x, y, w and h, the viewport by vw and vh
// and the rendered popup size by pw and ph.
func (s *Server) HandlePopupAPI(requestURL *url.URL) (*tables.FilterPopup, *HandlerResult) {
	q := query.NewQuery(requestURL)
	params := requestURL.Query()
	column := params.Get("column")
	if column == "" {
		return nil, badRequest("column parameter is required")
	}
	nums := make(map[string]float64)
	for _, key := range []string{"x", "y", "w", "h", "vw", "vh", "pw", "ph"} {
		v, err := strconv.ParseFloat(params.Get(key), 64)
		if err != nil {
			return nil, badRequest("invalid %s parameter %q", key, params.Get(key))
		}
		nums[key] = v
	}
	anchor := popup.Rect{Left: nums["x"], Top: nums["y"], Width: nums["w"], Height: nums["h"]}
	size := popup.Size{Width: nums["pw"], Height: nums["ph"]}
	viewport := popup.Size{Width: nums["vw"], Height: nums["vh"]}

	s.mu.Lock()
	defer s.mu.Unlock()
	tv, res := s.lookup(q)
	if res != nil {
		return nil, res
	}
	if res := applyQuery(tv, q); res != nil {
		return nil, res
	}
	p, err := tv.OpenFilterPopup(column, anchor, size, viewport, nil)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	return &p, nil
}

// ReorderRequest is the body of a reorder call.
type ReorderRequest struct {
	// Op is "move", "remove" or "duplicate".
	Op        string `json:"op"`
	From      string `json:"from"`
	To        string `json:"to"`
	Placement string `json:"placement"`
}

// HandleReorderAPI applies a structural edit to the view. The URL carries
// the view state of the page the edit was made on; edits are refused while
// it is filtered or sorted.
func (s *Server) HandleReorderAPI(requestURL *url.URL, body io.Reader) (*GridResponse, *HandlerResult) {
	timing := NewTimingCollector()
	q := query.NewQuery(requestURL)
	var req ReorderRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, badRequest("invalid request body: %v", err)
	}
	switch req.Op {
	case "", "move", "remove", "duplicate":
	default:
		return nil, badRequest("unknown op %q", req.Op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tv, res := s.lookup(q)
	if res != nil {
		return nil, res
	}
	if res := applyQuery(tv, q); res != nil {
		return nil, res
	}
	if !tv.Reorderable() {
		return nil, &HandlerResult{
			StatusCode: http.StatusConflict,
			Message:    "Reordering is disabled while the view is filtered or sorted",
		}
	}

	var ok bool
	timing.Time("Reorder", func() {
		switch req.Op {
		case "", "move":
			ok = tv.Move(req.From, req.To, reorder.ParsePlacement(req.Placement))
		case "remove":
			ok = tv.Remove(req.From)
		case "duplicate":
			ok = tv.Duplicate(req.From)
		}
	})
	if !ok {
		return nil, &HandlerResult{StatusCode: http.StatusNotFound, Message: "Row not found"}
	}
	resp := gridResponse(tv, q, timing)
	return &resp, nil
}
