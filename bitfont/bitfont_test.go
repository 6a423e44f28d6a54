// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import (
	"errors"
	"strings"
	"testing"

	"github.com/fontstage/bitlayout/atlas"
)

func mustLoad(t *testing.T, descriptor string, pixelsPerPoint float32) *BitmapFont {
	t.Helper()
	f, err := Load(strings.NewReader(descriptor), pixelsPerPoint)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

const twoGlyphDescriptor = `common lineHeight=32 base=26 pages=1
page id=0 file="sample_0.png"
char id=65 x=0 y=0 width=20 height=24 xoffset=1 yoffset=2 xadvance=22 page=0
char id=66 x=20 y=0 width=18 height=24 xoffset=1 yoffset=2 xadvance=20 page=0
`

func TestGlyphBinarySearchHitAndMiss(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	if g, ok := f.Glyph('A'); !ok || g.ID != 'A' {
		t.Fatalf("Glyph('A') = %+v, %v", g, ok)
	}
	if _, ok := f.Glyph('Z'); ok {
		t.Fatalf("Glyph('Z') found unexpectedly")
	}
}

func TestDisposeBlocksFurtherReads(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	f.Dispose()
	if f.LifecycleState() != StateDisposed {
		t.Fatalf("LifecycleState() = %v, want Disposed", f.LifecycleState())
	}
	if _, ok := f.Glyph('A'); ok {
		t.Fatalf("Glyph('A') succeeded after Dispose")
	}
	if got := f.Kerning('A', 'B'); got != 0 {
		t.Fatalf("Kerning after Dispose = %v, want 0", got)
	}
}

func TestBindPagesComputesUVAndTransitionsState(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	var packer atlas.Packer
	packer.AddPage(100, 100)

	if err := f.BindPages(packer.Pages(), nil, true); err != nil {
		t.Fatalf("BindPages: %v", err)
	}
	if f.LifecycleState() != StateInitializedOwnsPages {
		t.Fatalf("LifecycleState() = %v, want InitializedOwnsPages", f.LifecycleState())
	}
	g, ok := f.Glyph('A')
	if !ok {
		t.Fatalf("Glyph('A') not found")
	}
	if !g.HasGraphic() {
		t.Fatalf("glyph A has no graphic after bind")
	}
	if g.U != 0 || g.V != 0 {
		t.Fatalf("g.U,V = %v,%v want 0,0", g.U, g.V)
	}
	wantU2 := float32(20) / 100
	if g.U2 != wantU2 {
		t.Fatalf("g.U2 = %v, want %v", g.U2, wantU2)
	}
}

func TestBindPagesTrimCollapsesZeroArea(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	var packer atlas.Packer
	packer.AddPage(100, 100)

	trims := map[rune]Trim{'A': {Left: 10, Right: 10, Top: 0, Bottom: 24}}
	if err := f.BindPages(packer.Pages(), trims, false); err != nil {
		t.Fatalf("BindPages: %v", err)
	}
	g, _ := f.Glyph('A')
	if g.HasGraphic() {
		t.Fatalf("glyph A should have collapsed to no graphic, got %+v", g)
	}
	if f.LifecycleState() != StateInitializedBorrowsPages {
		t.Fatalf("LifecycleState() = %v, want InitializedBorrowsPages", f.LifecycleState())
	}
}

func TestBindPagesOutOfRangePageIndexCollapses(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	if err := f.BindPages(nil, nil, true); err != nil {
		t.Fatalf("BindPages: %v", err)
	}
	g, _ := f.Glyph('A')
	if g.HasGraphic() {
		t.Fatalf("glyph A should have no graphic when no pages bound")
	}
}

func TestBindPagesOnDisposedFontFails(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	f.Dispose()
	if err := f.BindPages(nil, nil, true); !errors.Is(err, ErrDisposed) {
		t.Fatalf("BindPages after Dispose = %v, want ErrDisposed", err)
	}
}

func TestFallbackFontChain(t *testing.T) {
	f := mustLoad(t, twoGlyphDescriptor, 1)
	fb := mustLoad(t, twoGlyphDescriptor, 1)
	f.SetFallback(fb)
	got, ok := f.FallbackFont()
	if !ok || got != fb {
		t.Fatalf("FallbackFont() = %v, %v, want fb, true", got, ok)
	}
}
