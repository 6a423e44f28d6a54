// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"testing"

	"github.com/fontstage/bitlayout/bitfont"
)

func TestRunPoolReusesFreedRuns(t *testing.T) {
	var p RunPool
	r1 := p.Obtain()
	r1.CharactersStart = 5
	r1.Glyphs = append(r1.Glyphs, bitfont.Glyph{ID: 'A'})
	p.Free(r1)

	r2 := p.Obtain()
	if r2 != r1 {
		t.Fatalf("Obtain() after Free did not reuse the freed run")
	}
	if r2.CharactersStart != 0 {
		t.Fatalf("CharactersStart = %d, want 0 (reset)", r2.CharactersStart)
	}
	if len(r2.Glyphs) != 0 {
		t.Fatalf("len(Glyphs) = %d, want 0 (reset)", len(r2.Glyphs))
	}
}

func TestRunPoolFreeAll(t *testing.T) {
	var p RunPool
	runs := []*GlyphRun{p.Obtain(), p.Obtain(), p.Obtain()}
	p.FreeAll(runs)

	seen := make(map[*GlyphRun]bool)
	for i := 0; i < 3; i++ {
		seen[p.Obtain()] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct reused runs, got %d", len(seen))
	}
}

func TestGlyphRunIsLTR(t *testing.T) {
	r := &GlyphRun{CharactersLevel: 0}
	if !r.IsLTR() {
		t.Fatalf("level 0 should be LTR")
	}
	r.CharactersLevel = 1
	if r.IsLTR() {
		t.Fatalf("level 1 should not be LTR")
	}
}
