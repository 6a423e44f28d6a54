// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

// twoRunLine builds a minimal one-line, two-run layout: "ab" (chars 0-2)
// followed by a linebreak (char 2), each glyph 10 units wide, matching the
// scenario-table font of spec §8.
func twoRunLine() ([]*GlyphRun, []fixed.Int26_6) {
	text := &GlyphRun{
		CharactersStart: 0, CharactersEnd: 2,
		CharacterPositions: []float32{0, 10},
		Width:              fixed.I(20),
		X:                  0,
	}
	brk := &GlyphRun{
		CharactersStart: 2, CharactersEnd: 3,
		CharacterPositions: []float32{0},
		Flags:              Linebreak,
		X:                  fixed.I(20),
	}
	runs := []*GlyphRun{text, brk}
	lineHeights := []fixed.Int26_6{fixed.I(16)}
	return runs, lineHeights
}

func TestInverseIndexOfRunOf(t *testing.T) {
	runs, lh := twoRunLine()
	idx := Build(runs, lh)

	if got, ok := idx.IndexOfRunOf(0, false); !ok || got != 0 {
		t.Fatalf("IndexOfRunOf(0) = %d,%v, want 0,true", got, ok)
	}
	if got, ok := idx.IndexOfRunOf(1, false); !ok || got != 0 {
		t.Fatalf("IndexOfRunOf(1) = %d,%v, want 0,true", got, ok)
	}
	if got, ok := idx.IndexOfRunOf(2, false); !ok || got != 1 {
		t.Fatalf("IndexOfRunOf(2) = %d,%v, want 1,true", got, ok)
	}
}

func TestInverseIndexCaretPositionBeforeLinebreak(t *testing.T) {
	runs, lh := twoRunLine()
	idx := Build(runs, lh)

	x, y, _ := idx.CaretPosition(0)
	if x != 0 || y != 0 {
		t.Fatalf("CaretPosition(0) = (%v,%v), want (0,0)", x, y)
	}
	x, y, _ = idx.CaretPosition(1)
	if want := fixed.I(10); x != want {
		t.Fatalf("CaretPosition(1).x = %v, want %v", x, want)
	}
	_ = y
}

func TestInverseIndexDeletionRange(t *testing.T) {
	runs, lh := twoRunLine()
	idx := Build(runs, lh)

	start, end := idx.DeletionRange(1, false)
	if start != 0 || end != 1 {
		t.Fatalf("DeletionRange(1,backspace) = [%d,%d), want [0,1)", start, end)
	}
	start, end = idx.DeletionRange(0, true)
	if start != 0 || end != 1 {
		t.Fatalf("DeletionRange(0,delete) = [%d,%d), want [0,1)", start, end)
	}
}

func TestInverseIndexSelectionRegionsSingleLine(t *testing.T) {
	runs, lh := twoRunLine()
	idx := Build(runs, lh)

	regions := idx.SelectionRegions(0, 2)
	if len(regions) != 1 {
		t.Fatalf("len(regions) = %d, want 1", len(regions))
	}
	if regions[0].X != 0 || regions[0].Width != fixed.I(20) {
		t.Fatalf("regions[0] = %+v, want X=0 Width=20", regions[0])
	}
}

func TestInverseIndexEmptyRuns(t *testing.T) {
	idx := Build(nil, nil)
	if _, ok := idx.IndexOfRunOf(0, false); ok {
		t.Fatalf("IndexOfRunOf on empty index should miss")
	}
	if _, ok := idx.IndexAt(0, 0, false); ok {
		t.Fatalf("IndexAt on empty index should miss")
	}
}
