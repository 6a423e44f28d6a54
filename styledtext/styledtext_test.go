// SPDX-License-Identifier: Unlicense OR MIT

package styledtext

import (
	"strings"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/fontstage/bitlayout/bitfont"
)

func newStubFont(t *testing.T) *bitfont.BitmapFont {
	t.Helper()
	const descriptor = `info face="stub"
common lineHeight=16 base=12 pages=1
page id=0 file="stub.png"
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=2 xadvance=10 page=0
`
	f, err := bitfont.Load(strings.NewReader(descriptor), 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func TestAddRegionInsertAndOverwrite(t *testing.T) {
	font := newStubFont(t)
	text, err := New(font, RGBA(0, 0, 0, 255))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text.SetText([]rune("hello world"))

	if err := text.AddRegion(5, font, RGBA(255, 0, 0, 255)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	if err := text.AddRegion(0, font, RGBA(0, 255, 0, 255)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	if got := len(text.Regions()); got != 2 {
		t.Fatalf("len(Regions()) = %d, want 2", got)
	}

	if err := text.AddRegion(5, font, RGBA(0, 0, 255, 255)); err != nil {
		t.Fatalf("AddRegion overwrite: %v", err)
	}
	if got := len(text.Regions()); got != 2 {
		t.Fatalf("len(Regions()) after overwrite = %d, want 2", got)
	}
	if got := text.ColorAt(5); got != RGBA(0, 0, 255, 255) {
		t.Fatalf("ColorAt(5) = %v, want overwritten color", got)
	}
}

func TestFontAtColorAtBeforeFirstRegion(t *testing.T) {
	font := newStubFont(t)
	text, _ := New(font, RGBA(10, 20, 30, 255))
	text.SetText([]rune("abcdef"))
	_ = text.AddRegion(3, font, RGBA(1, 2, 3, 255))

	if got := text.ColorAt(0); got != RGBA(10, 20, 30, 255) {
		t.Fatalf("ColorAt(0) = %v, want initial color", got)
	}
	if got := text.ColorAt(3); got != RGBA(1, 2, 3, 255) {
		t.Fatalf("ColorAt(3) = %v, want region color", got)
	}
	if got := text.ColorAt(100); got != RGBA(1, 2, 3, 255) {
		t.Fatalf("ColorAt(100) = %v, want last region's color", got)
	}
}

func TestSetUniformClearsRegions(t *testing.T) {
	font := newStubFont(t)
	text, _ := New(font, RGBA(0, 0, 0, 255))
	text.SetText([]rune("abcdef"))
	_ = text.AddRegion(2, font, RGBA(9, 9, 9, 255))

	if err := text.SetUniform(font, RGBA(5, 5, 5, 255)); err != nil {
		t.Fatalf("SetUniform: %v", err)
	}
	if got := len(text.Regions()); got != 0 {
		t.Fatalf("len(Regions()) = %d, want 0", got)
	}
	if got := text.ColorAt(4); got != RGBA(5, 5, 5, 255) {
		t.Fatalf("ColorAt(4) = %v, want uniform color", got)
	}
}

func TestTabStopIndexForDefaultGrid(t *testing.T) {
	font := newStubFont(t)
	text, _ := New(font, RGBA(0, 0, 0, 255))
	adv := fixed.I(10)

	cases := []struct {
		x    fixed.Int26_6
		want int
	}{
		{fixed.I(0), 1},
		{fixed.I(9), 1},
		{fixed.I(10), 2},
		{fixed.I(25), 3},
	}
	for _, c := range cases {
		if got := text.TabStopIndexFor(c.x, adv); got != c.want {
			t.Errorf("TabStopIndexFor(%v) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestTabStopIndexForExplicitStops(t *testing.T) {
	font := newStubFont(t)
	text, _ := New(font, RGBA(0, 0, 0, 255))
	stops := []fixed.Int26_6{fixed.I(10), fixed.I(30), fixed.I(60)}
	text.SetTabStops(stops)

	if got := text.TabStopIndexFor(fixed.I(5), fixed.I(8)); got != 0 {
		t.Errorf("TabStopIndexFor(5) = %d, want 0", got)
	}
	if got := text.TabStopIndexFor(fixed.I(10), fixed.I(8)); got != 1 {
		t.Errorf("TabStopIndexFor(10) = %d, want 1", got)
	}
	if got := text.TabStopIndexFor(fixed.I(60), fixed.I(8)); got != -1 {
		t.Errorf("TabStopIndexFor(60) = %d, want -1", got)
	}
	if got := text.TabStopOffsetFor(1, fixed.I(8)); got != fixed.I(30) {
		t.Errorf("TabStopOffsetFor(1) = %v, want 30", got)
	}
}
