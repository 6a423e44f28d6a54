// SPDX-License-Identifier: Unlicense OR MIT

// Package segment splits a styled paragraph into an ordered sequence of
// homogeneous spans: runs of one style, one BiDi level, and no embedded
// tab or line terminator (spec §4.3).
package segment

import (
	"golang.org/x/text/unicode/bidi"

	"github.com/fontstage/bitlayout/bitfont"
	"github.com/fontstage/bitlayout/styledtext"
)

// Flags marks the kind of a non-text boundary a Segment represents.
type Flags uint8

const (
	// Tab marks a segment consisting of exactly one '\t'.
	Tab Flags = 1 << iota
	// Linebreak marks a segment consisting of one line terminator
	// ('\n', '\r', or '\r\n').
	Linebreak
)

// Segment is one maximal homogeneous span of the source text: same style,
// same BiDi level, and (unless Tab or Linebreak is set) plain text.
type Segment struct {
	Start, End int // half-open range into the source UTF-16 buffer
	Font       *bitfont.BitmapFont
	Color      styledtext.Color
	Level      int // BiDi resolved level; even = LTR, odd = RTL
	Flags      Flags
}

// Segmenter is a pull iterator over a StyledText's segments, emitted in
// logical (not visually reordered) order exactly once each.
type Segmenter struct {
	text   *styledtext.StyledText
	chars  []uint16
	levels []int
	pos    int
}

// New builds a Segmenter over text's current buffer. The buffer is
// borrowed; mutating text after constructing a Segmenter produces
// undefined segment boundaries for that Segmenter instance.
func New(text *styledtext.StyledText) *Segmenter {
	chars := text.Chars()
	s := &Segmenter{text: text, chars: chars}
	s.levels = resolveLevels(chars, text.RightToLeft())
	return s
}

// resolveLevels computes a per-UTF-16-unit BiDi level array. For a
// left-to-right paragraph with nothing at or above U+0590, all levels are
// set to the paragraph level without running the full algorithm,
// mirroring the teacher's own same-shaped fast/slow split for paragraph
// shaping.
func resolveLevels(chars []uint16, rightToLeft bool) []int {
	levels := make([]int, len(chars))
	paragraphLevel := 0
	if rightToLeft {
		paragraphLevel = 1
	}
	if !rightToLeft && !needsBidi(chars) {
		for i := range levels {
			levels[i] = paragraphLevel
		}
		return levels
	}

	runes := utf16ToRunes(chars)
	// unitOffset[i] is the UTF-16 unit index where runes[i] begins, mirroring
	// the rune<->unit mapping the teacher's shaper keeps implicitly by
	// working in []rune throughout gotext.go.
	unitOffset := make([]int, len(runes)+1)
	u := 0
	for i, r := range runes {
		unitOffset[i] = u
		if r > 0xFFFF {
			u += 2
		} else {
			u++
		}
	}
	unitOffset[len(runes)] = u

	var p bidi.Paragraph
	def := bidi.LeftToRight
	if rightToLeft {
		def = bidi.RightToLeft
	}
	p.SetString(string(runes), bidi.DefaultDirection(def))
	order, err := p.Order()
	if err != nil {
		for i := range levels {
			levels[i] = paragraphLevel
		}
		return levels
	}

	runeStart := 0
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		lvl := 0
		if run.Direction() == bidi.RightToLeft {
			lvl = 1
		} else if rightToLeft {
			lvl = 2 // left-to-right text embedded in a right-to-left paragraph
		}
		_, endRune := run.Pos()
		runeEnd := endRune + 1
		for unitIdx := unitOffset[runeStart]; unitIdx < unitOffset[runeEnd]; unitIdx++ {
			levels[unitIdx] = lvl
		}
		runeStart = runeEnd
	}
	return levels
}

// needsBidi reports whether any rune in chars could possibly resolve to a
// level other than that of a left-to-right paragraph, i.e. whether the
// full UBA pass is required for one at all. Text with nothing at or above
// U+0590 (no strong-RTL or bidi-control characters) never does.
func needsBidi(chars []uint16) bool {
	for _, c := range chars {
		if c >= 0x0590 {
			return true
		}
	}
	return false
}

func utf16ToRunes(chars []uint16) []rune {
	out := make([]rune, 0, len(chars))
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		if c >= 0xD800 && c <= 0xDBFF && i+1 < len(chars) {
			c2 := chars[i+1]
			if c2 >= 0xDC00 && c2 <= 0xDFFF {
				r := (rune(c)-0xD800)<<10 + (rune(c2) - 0xDC00) + 0x10000
				out = append(out, r)
				i++
				continue
			}
		}
		out = append(out, rune(c))
	}
	return out
}

// Next returns the next segment and true, or a zero Segment and false once
// the text is exhausted.
func (s *Segmenter) Next() (Segment, bool) {
	if s.pos >= len(s.chars) {
		return Segment{}, false
	}
	start := s.pos
	c := s.chars[start]

	switch c {
	case '\t':
		seg := s.makeSegment(start, start+1, Tab)
		s.pos = start + 1
		return seg, true
	case '\n':
		seg := s.makeSegment(start, start+1, Linebreak)
		s.pos = start + 1
		return seg, true
	case '\r':
		end := start + 1
		if end < len(s.chars) && s.chars[end] == '\n' {
			end++
		}
		seg := s.makeSegment(start, end, Linebreak)
		s.pos = end
		return seg, true
	}

	font := s.text.FontAt(start)
	color := s.text.ColorAt(start)
	level := s.levels[start]
	end := start + 1
	for end < len(s.chars) {
		c := s.chars[end]
		if c == '\t' || c == '\n' || c == '\r' {
			break
		}
		if s.text.FontAt(end) != font || s.text.ColorAt(end) != color {
			break
		}
		if s.levels[end] != level {
			break
		}
		end++
	}
	s.pos = end
	return Segment{Start: start, End: end, Font: font, Color: color, Level: level}, true
}

func (s *Segmenter) makeSegment(start, end int, flags Flags) Segment {
	return Segment{
		Start: start, End: end,
		Font:  s.text.FontAt(start),
		Color: s.text.ColorAt(start),
		Level: s.levels[start],
		Flags: flags,
	}
}
