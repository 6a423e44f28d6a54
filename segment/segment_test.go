// SPDX-License-Identifier: Unlicense OR MIT

package segment

import (
	"strings"
	"testing"

	"github.com/fontstage/bitlayout/bitfont"
	"github.com/fontstage/bitlayout/styledtext"
)

func newStubFont(t *testing.T) *bitfont.BitmapFont {
	t.Helper()
	const descriptor = `common lineHeight=16 base=12 pages=1
page id=0 file="stub.png"
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=2 xadvance=10 page=0
`
	f, err := bitfont.Load(strings.NewReader(descriptor), 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func collect(s *Segmenter) []Segment {
	var out []Segment
	for {
		seg, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, seg)
	}
	return out
}

func TestSegmenterPlainASCIIOneSegment(t *testing.T) {
	font := newStubFont(t)
	text, _ := styledtext.New(font, styledtext.RGBA(0, 0, 0, 255))
	text.SetText([]rune("hello world"))

	segs := collect(New(text))
	if len(segs) != 1 {
		t.Fatalf("len(segs) = %d, want 1", len(segs))
	}
	if segs[0].Start != 0 || segs[0].End != 11 {
		t.Fatalf("segs[0] = %+v", segs[0])
	}
	if segs[0].Flags != 0 {
		t.Fatalf("segs[0].Flags = %v, want 0", segs[0].Flags)
	}
}

func TestSegmenterSplitsOnStyle(t *testing.T) {
	font := newStubFont(t)
	text, _ := styledtext.New(font, styledtext.RGBA(0, 0, 0, 255))
	text.SetText([]rune("abcdef"))
	if err := text.AddRegion(3, font, styledtext.RGBA(255, 0, 0, 255)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	segs := collect(New(text))
	if len(segs) != 2 {
		t.Fatalf("len(segs) = %d, want 2", len(segs))
	}
	if segs[0].Start != 0 || segs[0].End != 3 {
		t.Fatalf("segs[0] = %+v", segs[0])
	}
	if segs[1].Start != 3 || segs[1].End != 6 {
		t.Fatalf("segs[1] = %+v", segs[1])
	}
}

func TestSegmenterTabAndLinebreak(t *testing.T) {
	font := newStubFont(t)
	text, _ := styledtext.New(font, styledtext.RGBA(0, 0, 0, 255))
	text.SetText([]rune("A\tB\nC"))

	segs := collect(New(text))
	want := []struct {
		start, end int
		flags      Flags
	}{
		{0, 1, 0},
		{1, 2, Tab},
		{2, 3, 0},
		{3, 4, Linebreak},
		{4, 5, 0},
	}
	if len(segs) != len(want) {
		t.Fatalf("len(segs) = %d, want %d: %+v", len(segs), len(want), segs)
	}
	for i, w := range want {
		if segs[i].Start != w.start || segs[i].End != w.end || segs[i].Flags != w.flags {
			t.Errorf("segs[%d] = %+v, want start=%d end=%d flags=%v", i, segs[i], w.start, w.end, w.flags)
		}
	}
}

func TestSegmenterCRLFIsOneSegment(t *testing.T) {
	font := newStubFont(t)
	text, _ := styledtext.New(font, styledtext.RGBA(0, 0, 0, 255))
	text.SetText([]rune("A\r\nB"))

	segs := collect(New(text))
	if len(segs) != 3 {
		t.Fatalf("len(segs) = %d, want 3: %+v", len(segs), segs)
	}
	if segs[1].Start != 1 || segs[1].End != 3 || segs[1].Flags != Linebreak {
		t.Fatalf("segs[1] = %+v, want CRLF linebreak [1,3)", segs[1])
	}
}

func TestSegmenterHebrewGetsOddLevel(t *testing.T) {
	font := newStubFont(t)
	text, _ := styledtext.New(font, styledtext.RGBA(0, 0, 0, 255))
	text.SetText([]rune("א"))

	segs := collect(New(text))
	if len(segs) != 1 {
		t.Fatalf("len(segs) = %d, want 1", len(segs))
	}
	if segs[0].Level%2 != 1 {
		t.Fatalf("segs[0].Level = %d, want odd", segs[0].Level)
	}
}
