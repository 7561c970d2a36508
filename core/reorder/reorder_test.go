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

package reorder

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/recordgrid/core/rows"
)

type gate struct{ filtered, sorted bool }

func (g gate) IsFiltered() bool { return g.filtered }
func (g gate) IsSorted() bool   { return g.sorted }

var open = gate{}

func newEngine() *Engine {
	e := NewEngine("id", Numbering{Field: "nr", Children: "details", ChildField: "nr"})
	n := 0
	e.NewID = func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
	return e
}

func controls() []rows.Row {
	return []rows.Row{
		{"id": 1, "nr": "1", "title": "first", "details": []any{
			map[string]any{"owner": "Ann", "nr": "1.1"},
		}},
		{"id": 2, "nr": "2", "title": "second"},
		{"id": 3, "nr": "3", "title": "third", "details": []any{
			map[string]any{"owner": "Bob", "nr": "3.1"},
			map[string]any{"owner": "Cy", "nr": "3.2"},
		}},
	}
}

func field(rs []rows.Row, name string) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = rows.Format(r[name])
	}
	return out
}

func childNumbers(r rows.Row) []string {
	var out []string
	for _, c := range rows.Children(r, "details") {
		out = append(out, rows.Format(c["nr"]))
	}
	return out
}

// assertContiguous checks that top-level numbers are 1..N and child numbers
// are {parent}.1..{parent}.M.
func assertContiguous(t *testing.T, rs []rows.Row) {
	t.Helper()
	for i, r := range rs {
		num := strconv.Itoa(i + 1)
		require.Equal(t, num, r["nr"], "row %d", i)
		for k, c := range rows.Children(r, "details") {
			require.Equal(t, fmt.Sprintf("%s.%d", num, k+1), c["nr"], "row %d child %d", i, k)
		}
	}
}

func TestMoveScenario(t *testing.T) {
	in := controls()
	got, ok := newEngine().Move(open, in, "3", "1", Before)
	require.True(t, ok)
	assert.Equal(t, []string{"3", "1", "2"}, rows.IDs(got, "id"))
	assert.Equal(t, []string{"1", "2", "3"}, field(got, "nr"))
	assert.Equal(t, []string{"third", "first", "second"}, field(got, "title"))
	assert.Equal(t, []string{"1.1", "1.2"}, childNumbers(got[0]))
	assertContiguous(t, got)

	// The input is left untouched.
	assert.Equal(t, []string{"1", "2", "3"}, rows.IDs(in, "id"))
	assert.Equal(t, []string{"3.1", "3.2"}, childNumbers(in[2]))
}

func TestMovePlacement(t *testing.T) {
	e := newEngine()
	tests := []struct {
		from, to string
		p        Placement
		expected []string
	}{
		{"1", "3", After, []string{"2", "3", "1"}},
		{"1", "3", Before, []string{"2", "1", "3"}},
		{"3", "1", After, []string{"1", "3", "2"}},
		{"2", "2", After, []string{"1", "2", "3"}},
		{"2", "1", Before, []string{"2", "1", "3"}},
	}
	for _, tt := range tests {
		got, ok := e.Move(open, controls(), tt.from, tt.to, tt.p)
		require.True(t, ok)
		assert.Equal(t, tt.expected, rows.IDs(got, "id"), "Move(%s, %s, %v)", tt.from, tt.to, tt.p)
		assertContiguous(t, got)
	}
}

func TestMoveUnknownIDs(t *testing.T) {
	in := controls()
	got, ok := newEngine().Move(open, in, "9", "1", Before)
	assert.False(t, ok)
	assert.Equal(t, rows.IDs(in, "id"), rows.IDs(got, "id"))
}

func TestGateBlocksEdits(t *testing.T) {
	e := newEngine()
	for _, g := range []gate{{filtered: true}, {sorted: true}, {true, true}} {
		in := controls()
		ops := map[string]func() ([]rows.Row, bool){
			"move":         func() ([]rows.Row, bool) { return e.Move(g, in, "3", "1", Before) },
			"insert":       func() ([]rows.Row, bool) { return e.Insert(g, in, rows.Row{}, "", After) },
			"remove":       func() ([]rows.Row, bool) { return e.Remove(g, in, "1") },
			"duplicate":    func() ([]rows.Row, bool) { return e.Duplicate(g, in, "1") },
			"add child":    func() ([]rows.Row, bool) { return e.AddChild(g, in, "1", rows.Row{}) },
			"remove child": func() ([]rows.Row, bool) { return e.RemoveChild(g, in, "1", 0) },
		}
		for name, op := range ops {
			got, ok := op()
			assert.False(t, ok, "%s with %+v", name, g)
			assert.Equal(t, []string{"1", "2", "3"}, rows.IDs(got, "id"), "%s with %+v", name, g)
		}
	}
	assert.True(t, Enabled(nil))
	assert.True(t, Enabled(open))
	assert.False(t, Enabled(gate{sorted: true}))
}

func TestInsert(t *testing.T) {
	e := newEngine()
	got, ok := e.Insert(open, controls(), rows.Row{"title": "new"}, "2", Before)
	require.True(t, ok)
	assert.Equal(t, []string{"1", "new-1", "2", "3"}, rows.IDs(got, "id"))
	assertContiguous(t, got)

	got, ok = e.Insert(open, got, rows.Row{"id": "x"}, "", Before)
	require.True(t, ok)
	assert.Equal(t, "x", rows.ID(got[len(got)-1], "id"))
	assertContiguous(t, got)

	got, ok = e.Insert(open, nil, nil, "", Before)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "new-2", rows.ID(got[0], "id"))
}

func TestRemove(t *testing.T) {
	got, ok := newEngine().Remove(open, controls(), "1")
	require.True(t, ok)
	assert.Equal(t, []string{"2", "3"}, rows.IDs(got, "id"))
	assert.Equal(t, []string{"2.1", "2.2"}, childNumbers(got[1]))
	assertContiguous(t, got)

	_, ok = newEngine().Remove(open, controls(), "nope")
	assert.False(t, ok)
}

func TestDuplicate(t *testing.T) {
	in := controls()
	in[2]["details"] = []any{map[string]any{"id": "c1", "owner": "Bob"}}
	got, ok := newEngine().Duplicate(open, in, "3")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3", "new-1"}, rows.IDs(got, "id"))
	assert.Equal(t, "third", got[3]["title"])
	assert.Equal(t, "new-2", rows.Children(got[3], "details")[0]["id"])
	assert.Equal(t, "c1", rows.Children(got[2], "details")[0]["id"])
	assertContiguous(t, got)
}

func TestChildren(t *testing.T) {
	e := newEngine()
	got, ok := e.AddChild(open, controls(), "2", rows.Row{"owner": "Dee"})
	require.True(t, ok)
	assert.Equal(t, []string{"2.1"}, childNumbers(got[1]))

	got, ok = e.AddChild(open, got, "3", rows.Row{"owner": "Eve"})
	require.True(t, ok)
	assert.Equal(t, []string{"3.1", "3.2", "3.3"}, childNumbers(got[2]))

	got, ok = e.RemoveChild(open, got, "3", 0)
	require.True(t, ok)
	assert.Equal(t, []string{"3.1", "3.2"}, childNumbers(got[2]))
	assert.Equal(t, "Cy", rows.Children(got[2], "details")[0]["owner"])
	assertContiguous(t, got)

	_, ok = e.RemoveChild(open, got, "3", 5)
	assert.False(t, ok)
}

func TestRenumberContiguityAfterRandomMoves(t *testing.T) {
	e := newEngine()
	r := rand.New(rand.NewSource(3))
	rs := controls()
	for i := 4; i <= 10; i++ {
		rs = append(rs, rows.Row{"id": i, "details": []any{map[string]any{}, map[string]any{}}})
	}
	for iter := 0; iter < 100; iter++ {
		from := rows.ID(rs[r.Intn(len(rs))], "id")
		to := rows.ID(rs[r.Intn(len(rs))], "id")
		var ok bool
		rs, ok = e.Move(open, rs, from, to, Placement(r.Intn(2)))
		require.True(t, ok)
		assertContiguous(t, rs)
	}
	assert.Len(t, rs, 10)
}

func TestRenumberWithoutNumbering(t *testing.T) {
	e := NewEngine("", Numbering{})
	got := e.Renumber([]rows.Row{{"id": 1}})
	assert.Equal(t, rows.Row{"id": 1}, got[0])
	assert.NotEmpty(t, e.NewID())
}

func TestParsePlacement(t *testing.T) {
	assert.Equal(t, After, ParsePlacement("after"))
	assert.Equal(t, Before, ParsePlacement("before"))
	assert.Equal(t, Before, ParsePlacement(""))
	assert.Equal(t, "after", After.String())
}
