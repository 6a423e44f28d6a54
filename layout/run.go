// SPDX-License-Identifier: Unlicense OR MIT

// Package layout implements the paragraph layout engine: it shapes
// segmented text into positioned glyph runs, wraps and truncates them to
// a width/height budget, reorders and aligns each line, and builds the
// inverse index that backs caret and hit-test queries.
package layout

import (
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/fontstage/bitlayout/bitfont"
	"github.com/fontstage/bitlayout/styledtext"
)

// Flags marks the kind of content a GlyphRun carries, the run-level
// analogue of spec §3's per-character LINEBREAK/TAB/ELLIPSIS bitset.
type Flags uint8

const (
	Linebreak Flags = 1 << iota
	Tab
	Ellipsis
)

// checkpoint packs a (charactersStart index, glyphs index) pair used for
// wrap-time re-splitting of a run (spec §3's transient checkpoints field).
type checkpoint struct {
	charIndex  int
	glyphIndex int
}

// GlyphRun is one positioned, maximally homogeneous span on one line: the
// engine's pool-allocated output unit (spec §3).
type GlyphRun struct {
	X, Y, Width fixed.Int26_6
	Line        int

	Font  *bitfont.BitmapFont
	Color styledtext.Color

	Glyphs         []bitfont.Glyph
	GlyphX, GlyphY []fixed.Int26_6

	CharactersStart, CharactersEnd int
	// CharacterPositions holds, for every source character in
	// [CharactersStart, CharactersEnd), the X coordinate of its leading
	// edge relative to the run origin, or NaN for a grapheme-cluster or
	// surrogate-pair continuation unit (spec §3).
	CharacterPositions []float32
	CharactersLevel    int
	Flags              Flags

	checkpoints []checkpoint
}

// IsLTR reports whether this run's resolved BiDi level is even.
func (r *GlyphRun) IsLTR() bool { return r.CharactersLevel%2 == 0 }

// DrawWidth returns the run's pen-measured advance width.
func (r *GlyphRun) DrawWidth() fixed.Int26_6 { return r.Width }

func (r *GlyphRun) reset() {
	r.X, r.Y, r.Width = 0, 0, 0
	r.Line = 0
	r.Font = nil
	r.Color = 0
	r.Glyphs = r.Glyphs[:0]
	r.GlyphX = r.GlyphX[:0]
	r.GlyphY = r.GlyphY[:0]
	r.CharactersStart, r.CharactersEnd = 0, 0
	r.CharacterPositions = r.CharacterPositions[:0]
	r.CharactersLevel = 0
	r.Flags = 0
	r.checkpoints = r.checkpoints[:0]
}

func (r *GlyphRun) appendCharPosition(x fixed.Int26_6) {
	r.CharacterPositions = append(r.CharacterPositions, fixed26ToFloat(x))
}

func (r *GlyphRun) appendCharPositionNaN() {
	r.CharacterPositions = append(r.CharacterPositions, float32(math.NaN()))
}

func fixed26ToFloat(x fixed.Int26_6) float32 {
	return float32(x) / 64
}

// RunPool is a single-threaded free list of GlyphRuns. It exists so that
// per-frame layout churn (spec §4.4) does not allocate in steady state.
// It is a plain free list, not an LRU: the LRU bookkeeping lives in
// layoutCache, which keeps finished runs across Layout calls and returns
// them here when an entry is evicted or superseded.
type RunPool struct {
	free []*GlyphRun
}

// Obtain returns a zeroed GlyphRun, reusing a freed instance when one is
// available.
func (p *RunPool) Obtain() *GlyphRun {
	if n := len(p.free); n > 0 {
		r := p.free[n-1]
		p.free = p.free[:n-1]
		return r
	}
	return &GlyphRun{}
}

// Free clears run's arrays (length to zero, capacity retained) and
// returns it to the pool for reuse.
func (p *RunPool) Free(run *GlyphRun) {
	run.reset()
	p.free = append(p.free, run)
}

// FreeAll returns every run in runs to the pool.
func (p *RunPool) FreeAll(runs []*GlyphRun) {
	for _, r := range runs {
		p.Free(r)
	}
}
