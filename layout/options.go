// SPDX-License-Identifier: Unlicense OR MIT

package layout

import "golang.org/x/image/math/fixed"

// Alignment selects the horizontal alignment of each line (spec §6.4).
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		panic("layout: invalid Alignment")
	}
}

// Options configures one Layout call, mirroring text.Parameters' plain
// value-struct shape in the teacher (text/shaper.go).
type Options struct {
	// AvailableWidth bounds line width; <= 0 means unbounded (spec §6.4).
	AvailableWidth fixed.Int26_6
	// AvailableHeight encodes the vertical budget per spec §6.4's
	// overloaded convention: 0 means unbounded, a positive value is a
	// height budget in layout units, and a negative value's magnitude
	// (rounded to whole units) is a maximum line count.
	AvailableHeight fixed.Int26_6
	HorizontalAlign Alignment
	// Ellipsis, when non-empty, is appended in place of truncated content
	// (spec §4.6 Phase D). An empty string disables the truncation
	// marker; content is still clipped.
	Ellipsis string
}

func (o Options) widthBudget() (fixed.Int26_6, bool) {
	if o.AvailableWidth <= 0 {
		return 0, false
	}
	return o.AvailableWidth, true
}

func (o Options) heightBudget() (height fixed.Int26_6, hasHeight bool, maxLines int, hasMaxLines bool) {
	switch {
	case o.AvailableHeight == 0:
		return 0, false, 0, false
	case o.AvailableHeight < 0:
		return 0, false, (-o.AvailableHeight).Round(), true
	default:
		return o.AvailableHeight, true, 0, false
	}
}
