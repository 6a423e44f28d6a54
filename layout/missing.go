// SPDX-License-Identifier: Unlicense OR MIT

package layout

// missingGlyphAction classifies how to handle a code point with no glyph
// in the current font (spec §4.6.1). The result is in eighths of an em
// when positive (space-family width table), zero to consume with no
// width, or -1 to fall back to the font's id-0 "missing" glyph / tofu.
func missingGlyphAction(r rune) int {
	if w, ok := spaceWidthEighths[r]; ok {
		return w
	}
	if isDefaultIgnorable(r) {
		return 0
	}
	return -1
}

// spaceWidthEighths tables the Unicode space family's width, in eighths
// of an em, per spec §4.6.1.
var spaceWidthEighths = map[rune]int{
	0x0020: 8, // SPACE
	0x00A0: 8, // NO-BREAK SPACE
	0x2000: 10,
	0x2001: 16,
	0x2002: 8,
	0x2003: 32, // EM SPACE
	0x2004: 10,
	0x2005: 8,
	0x2006: 5,
	0x2007: 8,
	0x2008: 6,
	0x2009: 5,
	0x200A: 3, // HAIR SPACE
	0x202F: 8,
	0x205F: 7,
	0x3000: 32,
}

// visibleCfExceptions are Cf (format) code points that render visibly and
// so must not be silently consumed like the rest of
// Default_Ignorable_Code_Point.
var visibleCfExceptions = map[rune]bool{
	0x06DD:  true,
	0x070F:  true,
	0x08E2:  true,
	0x110BD: true,
}

func isDefaultIgnorable(r rune) bool {
	switch {
	case r == '\n', r == '\t':
		return false
	case r >= 0x0600 && r <= 0x0605:
		return false
	case r >= 0xFFF9 && r <= 0xFFFB:
		return false
	case visibleCfExceptions[r]:
		return false
	}
	return defaultIgnorableRanges.contains(r)
}

type runeRange struct{ lo, hi rune }

type rangeTable []runeRange

func (t rangeTable) contains(r rune) bool {
	lo, hi := 0, len(t)
	for lo < hi {
		mid := (lo + hi) / 2
		if r < t[mid].lo {
			hi = mid
		} else if r > t[mid].hi {
			lo = mid + 1
		} else {
			return true
		}
	}
	return false
}

// defaultIgnorableRanges approximates Unicode's Default_Ignorable_Code_Point
// property with the ranges most likely to appear in real text: variation
// selectors, joiners, bidi control formatting characters, and the
// deprecated format-character blocks. It is not the full property table,
// but every range it does list is a genuine Default_Ignorable_Code_Point
// span.
var defaultIgnorableRanges = rangeTable{
	{0x00AD, 0x00AD},
	{0x034F, 0x034F},
	{0x061C, 0x061C},
	{0x115F, 0x1160},
	{0x17B4, 0x17B5},
	{0x180B, 0x180F},
	{0x200B, 0x200F},
	{0x202A, 0x202E},
	{0x2060, 0x206F},
	{0x3164, 0x3164},
	{0xFE00, 0xFE0F},
	{0xFEFF, 0xFEFF},
	{0xFFA0, 0xFFA0},
	{0x1D173, 0x1D17A},
	{0xE0000, 0xE0FFF},
}
