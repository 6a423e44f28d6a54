// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// State is the lifecycle stage of a BitmapFont, per spec §3's one-time
// state machine: INITIAL -> GLYPHS_LOADED -> INITIALIZED_{OWNS|BORROWS}_PAGES
// -> DISPOSED.
type State uint8

const (
	StateInitial State = iota
	StateGlyphsLoaded
	StateInitializedOwnsPages
	StateInitializedBorrowsPages
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateGlyphsLoaded:
		return "GlyphsLoaded"
	case StateInitializedOwnsPages:
		return "InitializedOwnsPages"
	case StateInitializedBorrowsPages:
		return "InitializedBorrowsPages"
	case StateDisposed:
		return "Disposed"
	default:
		panic("bitfont: invalid State")
	}
}

// LineMetrics are a font's line-layout constants, in layout units.
type LineMetrics struct {
	LineHeight    fixed.Int26_6
	Base          fixed.Int26_6
	SpaceXAdvance fixed.Int26_6
}

// BitmapFont is an immutable-after-load bitmap font: a sorted glyph table,
// a packed kerning table, line metrics, and (once bound) atlas pages.
// External code may hold weak handles into it via Glyph/Kerning lookups;
// nothing it returns can outlive a Dispose in a way that matters, since
// Glyph is a plain value type.
type BitmapFont struct {
	name     string
	fallback *BitmapFont

	metrics LineMetrics

	pixelsPerPoint float32

	glyphs  []Glyph // sorted by ID, binary searched
	rects   []pixelRect
	kerning []kernEntry // sorted by pair key

	owns bool

	state State
}

// Name returns the font's name. Load does not read one from the
// descriptor (info lines are ignored), so it is empty for loaded fonts.
func (f *BitmapFont) Name() string { return f.name }

// Metrics returns the font's line metrics.
func (f *BitmapFont) Metrics() LineMetrics { return f.metrics }

// LifecycleState returns the font's current lifecycle stage.
func (f *BitmapFont) LifecycleState() State { return f.state }

// SetFallback installs a fallback font, forming the chain spec §9 Open
// Question 4 leaves unconsumed by the layout engine. Callers are
// responsible for avoiding cycles; this package does not detect them.
func (f *BitmapFont) SetFallback(fb *BitmapFont) { f.fallback = fb }

// FallbackFont returns the fallback font, if any. Not consumed by
// layout.Engine — see DESIGN.md for why.
func (f *BitmapFont) FallbackFont() (*BitmapFont, bool) {
	return f.fallback, f.fallback != nil
}

// Glyph returns the glyph for the given id via binary search, and whether
// it was found. Callers should consult the engine's missing-glyph handling
// (spec §4.6.1) on a miss rather than treating it as an error.
func (f *BitmapFont) Glyph(id rune) (Glyph, bool) {
	if f.state == StateDisposed {
		return Glyph{}, false
	}
	i := sort.Search(len(f.glyphs), func(i int) bool { return f.glyphs[i].ID >= id })
	if i < len(f.glyphs) && f.glyphs[i].ID == id {
		return f.glyphs[i], true
	}
	return Glyph{}, false
}

// Kerning returns the kerning adjustment to apply between two consecutive
// glyph ids, or zero if the font defines none for that pair.
func (f *BitmapFont) Kerning(first, second rune) fixed.Int26_6 {
	if f.state == StateDisposed {
		return 0
	}
	return lookupKerning(f.kerning, first, second)
}

// Dispose transitions the font to DISPOSED. The font keeps no reference to
// atlas pages, so there is nothing further to release. Further calls to
// Glyph/Kerning/BindPages return zero values or ErrDisposed.
func (f *BitmapFont) Dispose() {
	f.state = StateDisposed
}
