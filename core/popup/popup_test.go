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

package popup

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

var viewport = Size{Width: 1000, Height: 800}

func TestPlace(t *testing.T) {
	p := Positioner{Margin: 8, Gap: 4}
	tests := []struct {
		name     string
		anchor   Rect
		size     Size
		expected Placement
	}{
		{"below", Rect{Left: 100, Top: 50, Width: 80, Height: 20}, Size{150, 100}, Placement{Top: 74, Left: 100, Width: 150}},
		{"flip above", Rect{Left: 100, Top: 700, Width: 80, Height: 20}, Size{150, 200}, Placement{Top: 496, Left: 100, Width: 150}},
		{"flip clamped to margin", Rect{Left: 100, Top: 100, Width: 80, Height: 20}, Size{150, 700}, Placement{Top: 8, Left: 100, Width: 150}},
		{"shift left", Rect{Left: 900, Top: 50, Width: 80, Height: 20}, Size{200, 100}, Placement{Top: 74, Left: 792, Width: 200}},
		{"flip and shift", Rect{Left: 950, Top: 760, Width: 40, Height: 20}, Size{300, 300}, Placement{Top: 456, Left: 692, Width: 300}},
		{"left of viewport", Rect{Left: -50, Top: 50, Width: 80, Height: 20}, Size{150, 100}, Placement{Top: 74, Left: 8, Width: 150}},
		{"wider than viewport", Rect{Left: 100, Top: 50, Width: 80, Height: 20}, Size{1200, 100}, Placement{Top: 74, Left: 8, Width: 1200}},
		{"anchor below viewport", Rect{Left: 100, Top: 900, Width: 80, Height: 20}, Size{150, 100}, Placement{Top: 692, Left: 100, Width: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Place(tt.anchor, tt.size, viewport))
		})
	}
}

func TestTentative(t *testing.T) {
	p := Positioner{Margin: 8, Gap: 4, MinWidth: 200}
	got := p.Tentative(Rect{Left: 10, Top: 20, Width: 80, Height: 30})
	assert.Equal(t, Placement{Top: 54, Left: 10, Width: 200}, got)

	got = p.Tentative(Rect{Left: 10, Top: 20, Width: 300, Height: 30})
	assert.Equal(t, 300.0, got.Width)
}

func TestOpenMeasuresAtTentativePlacement(t *testing.T) {
	p := DefaultPositioner()
	anchor := Rect{Left: 100, Top: 700, Width: 80, Height: 20}

	var measuredAt Placement
	calls := 0
	got := p.Open(anchor, viewport, MeasureFunc(func(at Placement) Size {
		calls++
		measuredAt = at
		return Size{Width: 250, Height: 300}
	}))

	assert.Equal(t, 1, calls)
	assert.Equal(t, p.Tentative(anchor), measuredAt)
	assert.Equal(t, Placement{Top: 396, Left: 100, Width: 250}, got)
}

func TestViewportContainment(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	p := DefaultPositioner()
	for i := 0; i < 5000; i++ {
		vp := Size{Width: 300 + r.Float64()*1700, Height: 300 + r.Float64()*1000}
		size := Size{
			Width:  r.Float64() * (vp.Width - 2*p.Margin),
			Height: r.Float64() * (vp.Height - 2*p.Margin),
		}
		anchor := Rect{
			Left:   r.Float64()*(vp.Width+400) - 200,
			Top:    r.Float64()*(vp.Height+400) - 200,
			Width:  r.Float64() * 300,
			Height: r.Float64() * 60,
		}
		got := p.Place(anchor, size, vp)
		box := got.Rect(size.Height)
		if box.Bottom() > vp.Height-p.Margin+1e-9 || box.Top < p.Margin-1e-9 ||
			box.Left < p.Margin-1e-9 || box.Right() > vp.Width-p.Margin+1e-9 {
			t.Fatalf("Place(%+v, %+v, %+v) = %+v; outside viewport", anchor, size, vp, got)
		}
	}
}

func TestDismisser(t *testing.T) {
	d := Dismisser{
		Popup:   Rect{Left: 100, Top: 100, Width: 200, Height: 300},
		Trigger: Rect{Left: 100, Top: 70, Width: 80, Height: 20},
	}
	tests := []struct {
		name     string
		ev       Event
		expected bool
	}{
		{"click outside", Event{Kind: PointerDown, At: Point{X: 10, Y: 10}}, true},
		{"click inside popup", Event{Kind: PointerDown, At: Point{X: 150, Y: 200}}, false},
		{"click on trigger", Event{Kind: PointerDown, At: Point{X: 120, Y: 80}}, false},
		{"click from popup element", Event{Kind: PointerDown, At: Point{X: 10, Y: 10}, InPopup: true}, false},
		{"page scroll", Event{Kind: Scroll}, true},
		{"list scroll", Event{Kind: Scroll, InPopup: true}, false},
	}
	for _, tt := range tests {
		if got := d.ShouldClose(tt.ev); got != tt.expected {
			t.Errorf("ShouldClose(%s) = %v; expected %v", tt.name, got, tt.expected)
		}
	}
}
