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

package sorting

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
)

func testColumns() *columns.Set {
	return columns.MustNewSet(
		columns.ColumnSpec{ID: "site"},
		columns.ColumnSpec{ID: "name"},
		columns.ColumnSpec{ID: "score"},
		columns.ColumnSpec{ID: "due"},
		columns.ColumnSpec{ID: "tags", Kind: columns.KindMulti},
		columns.ColumnSpec{ID: "owner", Kind: columns.KindNested, Children: "details"},
	)
}

func newSorter(rs []rows.Row) *Sorter {
	order := NewOrderIndex("id")
	order.Observe(rs)
	return NewSorter(testColumns(), order, nil)
}

func TestSortScenario(t *testing.T) {
	all := []rows.Row{
		{"id": 1, "site": "B"},
		{"id": 2, "site": "A"},
		{"id": 3, "site": ""},
	}
	s := newSorter(all)
	filtered := []rows.Row{all[1], all[2]}

	got := s.Sort(filtered, By("site", Ascending))
	assert.Equal(t, []string{"2", "3"}, rows.IDs(got, "id"))

	got = s.Sort(all, By("site", Descending))
	assert.Equal(t, []string{"1", "2", "3"}, rows.IDs(got, "id"))
}

func TestBlanksLastInBothDirections(t *testing.T) {
	rs := []rows.Row{
		{"id": "a", "score": nil},
		{"id": "b", "score": 3},
		{"id": "c", "score": ""},
		{"id": "d", "score": 1},
		{"id": "e", "score": "  "},
		{"id": "f", "score": 2},
	}
	s := newSorter(rs)
	for _, dir := range []Direction{Ascending, Descending} {
		got := s.Sort(rs, By("score", dir))
		seenBlank := false
		for _, r := range got {
			blank := columns.Normalize(r["score"]).Blank
			if seenBlank && !blank {
				t.Errorf("Sort(%v): non-blank row %v after a blank row", dir, r["id"])
			}
			seenBlank = seenBlank || blank
		}
	}
	assert.Equal(t, []string{"d", "f", "b", "a", "c", "e"}, rows.IDs(s.Sort(rs, By("score", Ascending)), "id"))
	assert.Equal(t, []string{"b", "f", "d", "a", "c", "e"}, rows.IDs(s.Sort(rs, By("score", Descending)), "id"))
}

func TestNaturalOrder(t *testing.T) {
	rs := []rows.Row{
		{"id": 1, "name": "Item 10"},
		{"id": 2, "name": "item 9"},
		{"id": 3, "name": "Item 1"},
		{"id": 4, "name": "apple"},
	}
	s := newSorter(rs)
	got := s.Sort(rs, By("name", Ascending))
	assert.Equal(t, []string{"4", "3", "2", "1"}, rows.IDs(got, "id"))
}

func TestNormalizedKinds(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		values   []any
		expected []string
	}{
		{"percent", "score", []any{"10%", "9.5%", "-2%", "100%"}, []string{"3", "2", "1", "4"}},
		{"numbers", "score", []any{10, 9.5, int64(-2), uint32(100)}, []string{"3", "2", "1", "4"}},
		{"small integer kinds", "score", []any{int16(-5), int16(-10), uint(3), int8(2)}, []string{"2", "1", "4", "3"}},
		{"unsigned bytes and shorts", "score", []any{uint8(20), uint16(300), uint8(3)}, []string{"3", "1", "2"}},
		{"dates", "due", []any{"2024-03-01", "Jan 2, 2024", "2023/12/31", "2024-02-29T10:00:00Z"}, []string{"3", "2", "4", "1"}},
		{"mixed falls back to text", "score", []any{"b", 2, "a", 1}, []string{"4", "2", "3", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := make([]rows.Row, len(tt.values))
			for i, v := range tt.values {
				rs[i] = rows.Row{"id": i + 1, tt.column: v}
			}
			got := newSorter(rs).Sort(rs, By(tt.column, Ascending))
			assert.Equal(t, tt.expected, rows.IDs(got, "id"))
		})
	}
}

func TestNestedSortsByFirstChild(t *testing.T) {
	rs := []rows.Row{
		{"id": 1, "details": []any{map[string]any{"owner": "Zed"}, map[string]any{"owner": "Amy"}}},
		{"id": 2, "details": []any{map[string]any{"owner": "Bob"}}},
		{"id": 3},
	}
	got := newSorter(rs).Sort(rs, By("owner", Ascending))
	assert.Equal(t, []string{"2", "1", "3"}, rows.IDs(got, "id"))
}

func TestEqualKeysKeepOriginalOrder(t *testing.T) {
	rs := []rows.Row{
		{"id": 1, "site": "x"},
		{"id": 2, "site": "X"},
		{"id": 3, "site": "a"},
		{"id": 4, "site": "x"},
	}
	s := newSorter(rs)
	assert.Equal(t, []string{"3", "1", "2", "4"}, rows.IDs(s.Sort(rs, By("site", Ascending)), "id"))
	assert.Equal(t, []string{"1", "2", "4", "3"}, rows.IDs(s.Sort(rs, By("site", Descending)), "id"))
}

func TestDefaultOrderStability(t *testing.T) {
	var rs []rows.Row
	for i := 1; i <= 20; i++ {
		rs = append(rs, rows.Row{"id": i, "site": fmt.Sprintf("s%d", (i*7)%5)})
	}
	s := newSorter(rs)

	shuffled := rows.CloneAll(rs)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var subset []rows.Row
	for _, r := range shuffled {
		if r["site"] != "s0" {
			subset = append(subset, r)
		}
	}
	sorted := s.Sort(subset, By("site", Descending))
	back := s.Sort(sorted, Default())

	var want []string
	for _, r := range rs {
		if r["site"] != "s0" {
			want = append(want, rows.ID(r, "id"))
		}
	}
	assert.Equal(t, want, rows.IDs(back, "id"))

	// Filtering the rows back in restores the full original order.
	assert.Equal(t, rows.IDs(rs, "id"), rows.IDs(s.Sort(shuffled, Default()), "id"))
}

func TestUnknownIDsFollowKnownOnes(t *testing.T) {
	rs := []rows.Row{{"id": "a"}, {"id": "b"}}
	s := newSorter(rs)
	in := []rows.Row{{"id": "new1"}, {"id": "b"}, {"id": "new2"}, {"id": "a"}}
	assert.Equal(t, []string{"a", "b", "new1", "new2"}, rows.IDs(s.Sort(in, Default()), "id"))
}

func TestSortDoesNotModifyInput(t *testing.T) {
	rs := []rows.Row{{"id": 1, "site": "b"}, {"id": 2, "site": "a"}}
	s := newSorter(rs)
	_ = s.Sort(rs, By("site", Ascending))
	assert.Equal(t, []string{"1", "2"}, rows.IDs(rs, "id"))
}

func TestSortEmpty(t *testing.T) {
	s := newSorter(nil)
	assert.Empty(t, s.Sort(nil, By("site", Ascending)))
	assert.Empty(t, s.TopK(nil, By("site", Ascending), 3))
}

func TestCompare(t *testing.T) {
	s := newSorter(nil)
	a := rows.Row{"id": 1, "score": 1}
	b := rows.Row{"id": 2, "score": 2}
	blank := rows.Row{"id": 3}
	tests := []struct {
		x, y     rows.Row
		dir      Direction
		expected int
	}{
		{a, b, Ascending, -1},
		{a, b, Descending, 1},
		{a, a, Descending, 0},
		{blank, a, Ascending, 1},
		{blank, a, Descending, 1},
		{a, blank, Descending, -1},
		{blank, blank, Ascending, 0},
	}
	for _, tt := range tests {
		result := s.Compare(tt.x, tt.y, By("score", tt.dir))
		if result != tt.expected {
			t.Errorf("Compare(%v, %v, %v) = %d; expected %d", tt.x["id"], tt.y["id"], tt.dir, result, tt.expected)
		}
	}
}

func TestTopKMatchesSort(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var rs []rows.Row
	for i := 0; i < 200; i++ {
		row := rows.Row{"id": i}
		if r.Intn(5) > 0 {
			row["score"] = r.Intn(30)
		}
		rs = append(rs, row)
	}
	s := newSorter(rs)
	for _, cfg := range []Config{Default(), By("score", Ascending), By("score", Descending)} {
		full := rows.IDs(s.Sort(rs, cfg), "id")
		for _, k := range []int{1, 7, 50, 199, 200, 500} {
			got := rows.IDs(s.TopK(rs, cfg, k), "id")
			want := full[:min(k, len(full))]
			require.Equal(t, want, got, "TopK(%v, %d)", cfg, k)
		}
	}
}

func TestToggle(t *testing.T) {
	c := Default()
	c = c.Toggle("site")
	assert.Equal(t, By("site", Ascending), c)
	c = c.Toggle("site")
	assert.Equal(t, By("site", Descending), c)
	c = c.Toggle("site")
	assert.True(t, c.IsDefault())

	c = By("site", Descending).Toggle("name")
	assert.Equal(t, By("name", Ascending), c)
	assert.True(t, c.Toggle(DefaultColumn).IsDefault())
	assert.True(t, c.IsSortedBy("name"))
	assert.False(t, c.IsSortedBy("site"))
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"", Ascending, false},
		{"asc", Ascending, false},
		{"DESC", Descending, false},
		{" descending ", Descending, false},
		{"sideways", Ascending, true},
	}
	for _, tt := range tests {
		result, err := ParseDirection(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseDirection(%q) = %v; expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "#", Default().String())
	assert.Equal(t, "site:desc", By("site", Descending).String())
}

func TestOrderIndexRebase(t *testing.T) {
	o := NewOrderIndex("")
	o.Observe([]rows.Row{{"id": 1}, {"id": 2}})
	o.Observe([]rows.Row{{"id": 2}, {"id": 3}})
	p, ok := o.Position("3")
	require.True(t, ok)
	assert.Equal(t, 2, p)

	o.Rebase([]rows.Row{{"id": 3}, {"id": 1}})
	assert.Equal(t, 2, o.Len())
	p, _ = o.Position("3")
	assert.Equal(t, 0, p)
	_, ok = o.Position("2")
	assert.False(t, ok)
}
