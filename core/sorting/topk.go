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
	"container/heap"
	"slices"

	"github.com/google/recordgrid/core/rows"
)

// topKHeap is a max-heap over the K best entries seen so far: the worst of
// them sits on top so it can be replaced when a better entry shows up.
type topKHeap struct {
	entries []sortEntry
	less    func(a, b sortEntry) int
}

func (h *topKHeap) Len() int { return len(h.entries) }

// Less puts the larger entry above the smaller one.
func (h *topKHeap) Less(i, j int) bool {
	return h.less(h.entries[i], h.entries[j]) > 0
}

func (h *topKHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

func (h *topKHeap) Push(x any) {
	h.entries = append(h.entries, x.(sortEntry))
}

func (h *topKHeap) Pop() any {
	old := h.entries
	n := len(old)
	x := old[n-1]
	h.entries = old[:n-1]
	return x
}

// TopK returns the first k rows of Sort(rs, cfg) without sorting all of rs.
// It runs in O(n log k): a heap keeps the k best entries and only those are
// sorted at the end.
func (s *Sorter) TopK(rs []rows.Row, cfg Config, k int) []rows.Row {
	if len(rs) == 0 || k <= 0 {
		return []rows.Row{}
	}
	if k >= len(rs) {
		return s.Sort(rs, cfg)
	}

	less := func(a, b sortEntry) int { return s.compareEntries(a, b, cfg) }
	entries := s.entries(rs, cfg)
	h := &topKHeap{entries: make([]sortEntry, 0, k), less: less}
	h.entries = append(h.entries, entries[:k]...)
	heap.Init(h)

	for _, e := range entries[k:] {
		if less(e, h.entries[0]) < 0 {
			heap.Pop(h)
			heap.Push(h, e)
		}
	}

	slices.SortFunc(h.entries, less)
	out := make([]rows.Row, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.row
	}
	return out
}
