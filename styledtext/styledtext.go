// SPDX-License-Identifier: Unlicense OR MIT

// Package styledtext holds a character buffer together with its style
// regions, tab stops, paragraph direction and locale: the input to a
// layout pass, never itself mutated by one.
package styledtext

import (
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	"github.com/fontstage/bitlayout/bitfont"
)

// Color is a packed non-premultiplied RGBA color, one byte per channel.
type Color uint32

// RGBA constructs a Color from individual channel bytes.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// ErrInvalidArgument mirrors bitfont.ErrInvalidArgument for this package's
// own argument checks (nil font, out-of-range length), per spec §4.1.
var ErrInvalidArgument = bitfont.ErrInvalidArgument

// Region is one style run: it applies from Start (inclusive) to the next
// region's Start (exclusive), or to the end of the text for the last
// region. Regions are always stored in strictly increasing Start order.
type Region struct {
	Start int
	Font  *bitfont.BitmapFont
	Color Color
}

// StyledText is a UTF-16 character buffer with ordered style regions, an
// optional tab stop grid, a paragraph base direction and an optional
// locale. It is read by a layout pass but never mutated by one: callers
// may freely mutate it between layout calls (spec §3 "Lifecycle /
// ownership").
type StyledText struct {
	chars  []uint16
	length int

	initialFont  *bitfont.BitmapFont
	initialColor Color

	rightToLeft bool
	locale      language.Tag
	haveLocale  bool

	regions []Region

	tabStops []fixed.Int26_6
}

// New constructs an empty StyledText with the given initial style. font
// must be non-nil.
func New(font *bitfont.BitmapFont, color Color) (*StyledText, error) {
	if font == nil {
		return nil, fmt.Errorf("styledtext: %w: nil font", ErrInvalidArgument)
	}
	return &StyledText{initialFont: font, initialColor: color}, nil
}

// SetText replaces the character buffer from a rune slice, re-encoding to
// UTF-16 code units (spec §3 stores UTF-16 units so inverse-index NaN
// propagation for surrogate pairs is well-defined).
func (t *StyledText) SetText(runes []rune) {
	t.chars = utf16.Encode(runes)
	t.length = len(t.chars)
}

// SetTextUTF16 replaces the character buffer directly from UTF-16 code
// units, as spec §4.1's setText(chars, length) overload.
func (t *StyledText) SetTextUTF16(chars []uint16, length int) error {
	if length < 0 || length > len(chars) {
		return fmt.Errorf("styledtext: %w: length %d out of range [0,%d]", ErrInvalidArgument, length, len(chars))
	}
	t.chars = chars[:length]
	t.length = length
	return nil
}

// Chars returns the current UTF-16 buffer, borrowed: callers must not
// retain it past the next SetText call.
func (t *StyledText) Chars() []uint16 { return t.chars[:t.length] }

// Len returns the number of UTF-16 code units in the buffer.
func (t *StyledText) Len() int { return t.length }

// SetRightToLeft sets the paragraph's base BiDi direction.
func (t *StyledText) SetRightToLeft(rtl bool) { t.rightToLeft = rtl }

// RightToLeft reports the paragraph's base BiDi direction.
func (t *StyledText) RightToLeft() bool { return t.rightToLeft }

// SetLocale installs a locale tag, enabling the layout engine's
// locale-aware word-break wrapping (spec §4.6 Phase B).
func (t *StyledText) SetLocale(tag language.Tag) {
	t.locale = tag
	t.haveLocale = true
}

// Locale returns the installed locale tag, if any.
func (t *StyledText) Locale() (language.Tag, bool) {
	return t.locale, t.haveLocale
}

// SetTabStops installs a monotonically increasing array of left-tab-stop
// positions in layout units; nil restores the default infinite grid.
func (t *StyledText) SetTabStops(stops []fixed.Int26_6) {
	t.tabStops = stops
}

// AddRegion inserts or replaces a style region starting at start. A
// duplicate start overwrites the existing region there, per spec §4.1.
func (t *StyledText) AddRegion(start int, font *bitfont.BitmapFont, color Color) error {
	if font == nil {
		return fmt.Errorf("styledtext: %w: nil font", ErrInvalidArgument)
	}
	if start < 0 {
		return fmt.Errorf("styledtext: %w: negative start %d", ErrInvalidArgument, start)
	}
	i := sort.Search(len(t.regions), func(i int) bool { return t.regions[i].Start >= start })
	if i < len(t.regions) && t.regions[i].Start == start {
		t.regions[i].Font = font
		t.regions[i].Color = color
		return nil
	}
	t.regions = append(t.regions, Region{})
	copy(t.regions[i+1:], t.regions[i:])
	t.regions[i] = Region{Start: start, Font: font, Color: color}
	return nil
}

// RemoveAllRegions clears every style region; fontAt/colorAt then return
// the initial style for the whole text.
func (t *StyledText) RemoveAllRegions() {
	t.regions = t.regions[:0]
}

// SetUniform clears all regions and sets the initial style, collapsing the
// whole text to a single style in one call. This is a convenience beyond
// spec §4.1, for the common single-style paragraph case.
func (t *StyledText) SetUniform(font *bitfont.BitmapFont, color Color) error {
	if font == nil {
		return fmt.Errorf("styledtext: %w: nil font", ErrInvalidArgument)
	}
	t.initialFont = font
	t.initialColor = color
	t.regions = t.regions[:0]
	return nil
}

// regionIndexAt returns the index of the region covering i, or -1 if i
// precedes every region's start.
func (t *StyledText) regionIndexAt(i int) int {
	if len(t.regions) == 0 || i < t.regions[0].Start {
		return -1
	}
	j := sort.Search(len(t.regions), func(j int) bool { return t.regions[j].Start > i })
	return j - 1
}

// FontAt returns the font in effect at character index i.
func (t *StyledText) FontAt(i int) *bitfont.BitmapFont {
	if j := t.regionIndexAt(i); j >= 0 {
		return t.regions[j].Font
	}
	return t.initialFont
}

// ColorAt returns the color in effect at character index i.
func (t *StyledText) ColorAt(i int) Color {
	if j := t.regionIndexAt(i); j >= 0 {
		return t.regions[j].Color
	}
	return t.initialColor
}

// Regions returns the current style regions, in increasing Start order.
func (t *StyledText) Regions() []Region { return t.regions }

// InitialStyle returns the style applied before the first region.
func (t *StyledText) InitialStyle() (*bitfont.BitmapFont, Color) {
	return t.initialFont, t.initialColor
}
