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

// Package popup places a popup (the filter value list of a column header,
// say) next to the element that opened it, keeping it inside the viewport.
//
// Placement takes two passes. Tentative places the popup below the anchor
// before its size is known; once it has been rendered and measured, Correct
// flips it above the anchor or shifts it left as needed. Place combines both
// passes when the size is known up front, and Open runs them against a
// Measurer.
package popup

// Point is a position in viewport coordinates.
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Placement is the fixed position of a popup.
type Placement struct {
	Top   float64 `json:"top"`
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Rect returns the area covered by a popup of height h placed at p.
func (p Placement) Rect(h float64) Rect {
	return Rect{Left: p.Left, Top: p.Top, Width: p.Width, Height: h}
}

// Measurer reports the size of the popup once it has been rendered at a
// placement. In a browser this is the popup's bounding box after the first
// paint.
type Measurer interface {
	Measure(p Placement) Size
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(p Placement) Size

func (f MeasureFunc) Measure(p Placement) Size { return f(p) }

// Positioner computes popup placements.
type Positioner struct {
	// Margin is the minimum distance between the popup and the viewport
	// edges.
	Margin float64
	// Gap separates the popup from its anchor.
	Gap float64
	// MinWidth is the smallest width given to the tentative placement.
	MinWidth float64
}

// DefaultPositioner returns the placement parameters used by the grid.
func DefaultPositioner() Positioner {
	return Positioner{Margin: 8, Gap: 4, MinWidth: 200}
}

// Tentative places the popup below the anchor, left-aligned with it.
func (p Positioner) Tentative(anchor Rect) Placement {
	return Placement{
		Top:   anchor.Bottom() + p.Gap,
		Left:  anchor.Left,
		Width: max(anchor.Width, p.MinWidth),
	}
}

// Correct adjusts a tentative placement once the popup's real size is
// known. A popup overflowing the bottom edge flips above the anchor; one
// overflowing the right edge shifts left by the overflow. The result never
// starts closer than Margin to the top or left edge, and stays within the
// viewport whenever the popup fits in it.
func (p Positioner) Correct(anchor Rect, tentative Placement, size Size, viewport Size) Placement {
	out := tentative
	out.Width = size.Width

	if out.Top+size.Height > viewport.Height-p.Margin {
		out.Top = max(anchor.Top-size.Height-p.Gap, p.Margin)
	}
	if over := out.Left + size.Width - (viewport.Width - p.Margin); over > 0 {
		out.Left = max(out.Left-over, p.Margin)
	}
	if out.Left < p.Margin {
		out.Left = p.Margin
	}

	// Anchors scrolled partly out of view can still leave the popup
	// outside; pull it back in.
	out.Top = clamp(out.Top, p.Margin, viewport.Height-p.Margin-size.Height)
	out.Left = clamp(out.Left, p.Margin, viewport.Width-p.Margin-size.Width)
	return out
}

// Place computes the final placement of a popup of the given size.
func (p Positioner) Place(anchor Rect, size Size, viewport Size) Placement {
	return p.Correct(anchor, p.Tentative(anchor), size, viewport)
}

// Open places a popup whose size is only known after rendering: it renders
// at the tentative placement, measures, and corrects.
func (p Positioner) Open(anchor Rect, viewport Size, m Measurer) Placement {
	tentative := p.Tentative(anchor)
	return p.Correct(anchor, tentative, m.Measure(tentative), viewport)
}

// clamp limits v to [lo, hi]. When the range is empty lo wins.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// EventKind is the kind of a host event seen while a popup is open.
type EventKind int

const (
	PointerDown EventKind = iota
	Scroll
)

// Event is a host event delivered to a Dismisser.
type Event struct {
	Kind EventKind
	// At is the pointer position of a PointerDown.
	At Point
	// InPopup is set when the event originates inside the popup element
	// (the value list scrolling, say).
	InPopup bool
}

// Dismisser decides when an open popup closes.
type Dismisser struct {
	Popup   Rect
	Trigger Rect
}

// ShouldClose reports whether ev closes the popup: a pointer-down outside
// both the popup and its trigger, or a scroll that did not start inside
// the popup.
func (d Dismisser) ShouldClose(ev Event) bool {
	switch ev.Kind {
	case PointerDown:
		if ev.InPopup {
			return false
		}
		return !d.Popup.Contains(ev.At) && !d.Trigger.Contains(ev.At)
	case Scroll:
		return !ev.InPopup
	default:
		return false
	}
}
