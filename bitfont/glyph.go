// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import "golang.org/x/image/math/fixed"

// Flags holds per-glyph bits.
type Flags uint8

const (
	// Mirrored indicates the glyph's artwork should be treated as already
	// flipped for right-to-left presentation.
	Mirrored Flags = 1 << iota
)

// Glyph is an immutable atlas-page and placement record for one glyph id.
// All positional fields are in layout units (see SPEC_FULL.md §3 for why
// this package keeps them as fixed.Int26_6 rather than float32).
type Glyph struct {
	// ID is the glyph's codepoint.
	ID rune
	// Page is the atlas page index, or -1 if the glyph has no graphic
	// (either by descriptor data or because post-page patching collapsed
	// it to zero area).
	Page int
	// U, V, U2, V2 is the glyph's texture UV rectangle. Zero until
	// BitmapFont.BindPages has run.
	U, V, U2, V2 float32
	// XOffset, YOffset is the draw offset from the pen to the bottom-left
	// corner of the glyph quad, Y-up.
	XOffset, YOffset fixed.Int26_6
	// Width, Height is the draw size of the glyph quad.
	Width, Height fixed.Int26_6
	// XAdvance is this glyph's horizontal advance.
	XAdvance fixed.Int26_6
	Flags    Flags
}

// HasGraphic reports whether this glyph has a visible atlas page.
func (g Glyph) HasGraphic() bool { return g.Page >= 0 }

// pixelRect is the glyph's packed rectangle in source atlas pixels, kept
// internally until BindPages can normalize it against bound page
// dimensions (spec §4.2's "post-page patching").
type pixelRect struct {
	x, y, w, h int
}
