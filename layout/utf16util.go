// SPDX-License-Identifier: Unlicense OR MIT

package layout

// decodeUTF16 turns UTF-16 code units into runes, collapsing invalid lone
// surrogates to U+FFFD (spec §4.6 Phase A: "invalid lone surrogates
// collapse to U+FFFD"). unitStart reports, for each returned rune, the
// unit index it began at, so callers can map back into the source buffer.
func decodeUTF16(chars []uint16) (runes []rune, unitStart []int) {
	runes = make([]rune, 0, len(chars))
	unitStart = make([]int, 0, len(chars))
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		switch {
		case c >= 0xD800 && c <= 0xDBFF:
			if i+1 < len(chars) && chars[i+1] >= 0xDC00 && chars[i+1] <= 0xDFFF {
				r := (rune(c)-0xD800)<<10 + (rune(chars[i+1]) - 0xDC00) + 0x10000
				runes = append(runes, r)
				unitStart = append(unitStart, i)
				i++
				continue
			}
			runes = append(runes, 0xFFFD)
			unitStart = append(unitStart, i)
		case c >= 0xDC00 && c <= 0xDFFF:
			runes = append(runes, 0xFFFD)
			unitStart = append(unitStart, i)
		default:
			runes = append(runes, rune(c))
			unitStart = append(unitStart, i)
		}
	}
	return runes, unitStart
}
