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

/*
Benchmarks for the grid pipeline.

Run all benchmarks:

	go test -bench=. -benchmem ./core/tables/

Run the paginated benchmarks only:

	go test -bench=Page -benchmem ./core/tables/
*/

package tables

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/sorting"
)

// createLargeView returns a grouped view over numRows generated rows. Every
// fourth row has a blank score and every row has two nested details.
func createLargeView(b *testing.B, numRows int) *TableView {
	b.Helper()
	r := rand.New(rand.NewSource(1))
	rs := make([]rows.Row, numRows)
	for i := range rs {
		row := rows.Row{
			"id":      i,
			"hazard":  fmt.Sprintf("Hazard %d", r.Intn(100)),
			"control": fmt.Sprintf("Control %d", r.Intn(1000)),
			"details": []any{
				map[string]any{"owner": fmt.Sprintf("owner%d", r.Intn(50))},
				map[string]any{"owner": fmt.Sprintf("owner%d", r.Intn(50))},
			},
		}
		if i%4 != 0 {
			row["score"] = fmt.Sprintf("%d%%", r.Intn(100))
		}
		rs[i] = row
	}
	tv, err := NewTableView(ViewDef{
		Name: "bench",
		Columns: []columns.ColumnSpec{
			{ID: "hazard"},
			{ID: "control"},
			{ID: "score"},
			{ID: "owner", Kind: columns.KindNested, Children: "details"},
		},
		GroupLevels: []string{"hazard", "control"},
	}, rs)
	if err != nil {
		b.Fatal(err)
	}
	return tv
}

func BenchmarkProcess100K(b *testing.B) {
	tv := createLargeView(b, 100_000)
	if err := tv.SetSort(sorting.By("score", sorting.Descending)); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tv.touch()
		_ = tv.Process()
	}
}

func BenchmarkFilterNested100K(b *testing.B) {
	tv := createLargeView(b, 100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tv.ApplyFilter("owner", []string{"owner1", "owner2", "owner3"}); err != nil {
			b.Fatal(err)
		}
		_ = tv.Process()
	}
}

func BenchmarkFilterChoices100K(b *testing.B) {
	tv := createLargeView(b, 100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tv.FilterChoices("control"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPage100K(b *testing.B) {
	tv := createLargeView(b, 100_000)
	if err := tv.SetSort(sorting.By("control", sorting.Ascending)); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tv.Page(50)
	}
}
