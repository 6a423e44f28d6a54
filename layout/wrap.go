// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/rivo/uniseg"
	"golang.org/x/text/language"
)

// graphemeClusterStarts returns, for every UTF-16 unit index in chars,
// whether a new grapheme cluster begins there. A false entry marks a
// continuation code unit (low surrogate half, or a combining mark fused
// into the previous cluster) — exactly the units spec §3 requires NaN
// positions for.
func graphemeClusterStarts(chars []uint16) []bool {
	starts := make([]bool, len(chars))
	runes, unitStart := decodeUTF16(chars)
	s := string(runes)
	gr := uniseg.NewGraphemes(s)
	runeIdx := 0
	for gr.Next() {
		clusterRunes := gr.Runes()
		if runeIdx < len(unitStart) {
			starts[unitStart[runeIdx]] = true
		}
		runeIdx += len(clusterRunes)
	}
	return starts
}

// findWrapPoint chooses the break point for a line that must wrap at or
// before hit (a unit index within [lineStart, lineEnd)), per spec §4.6
// Phase B.
//
// Without a locale, it scans backward from hit for ASCII whitespace; if
// none is found, it force-breaks exactly at hit. With a locale, it uses a
// word-boundary iterator: if hit itself is a boundary, use it; if the span
// from hit to the next boundary is all collapsible space, keep hit;
// otherwise use the preceding boundary, falling back to hit when that
// boundary is at or before lineStart.
func findWrapPoint(chars []uint16, lineStart, lineEnd, hit int, locale language.Tag, haveLocale bool) int {
	if hit <= lineStart {
		return hit
	}
	if !haveLocale {
		for i := hit; i > lineStart; i-- {
			if chars[i-1] == ' ' {
				return i
			}
		}
		return hit
	}

	boundaries := wordBoundaries(chars[lineStart:lineEnd])
	for i := range boundaries {
		boundaries[i] += lineStart
	}
	boundaries = append(boundaries, lineEnd)

	idx := -1
	for i, b := range boundaries {
		if b == hit {
			return hit
		}
		if b > hit {
			idx = i
			break
		}
	}
	if idx == -1 {
		return hit
	}
	next := boundaries[idx]
	allSpace := true
	for i := hit; i < next; i++ {
		if chars[i] != ' ' {
			allSpace = false
			break
		}
	}
	if allSpace {
		return hit
	}
	if idx == 0 {
		return hit
	}
	prev := boundaries[idx-1]
	if prev <= lineStart {
		return hit
	}
	return prev
}

// wordBoundaries returns the unit indices, within chars, at which a new
// word segment begins (excluding index 0, which is always implicit).
func wordBoundaries(chars []uint16) []int {
	runes, unitStart := decodeUTF16(chars)
	s := string(runes)
	var bounds []int
	runeIdx := 0
	state := -1
	for len(s) > 0 {
		word, rest, newState := uniseg.FirstWordInString(s, state)
		if runeIdx > 0 && runeIdx < len(unitStart) {
			bounds = append(bounds, unitStart[runeIdx])
		}
		runeIdx += len([]rune(word))
		s = rest
		state = newState
	}
	return bounds
}
