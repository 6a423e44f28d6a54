// SPDX-License-Identifier: Unlicense OR MIT

package styledtext

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// TabStopIndexFor returns the smallest tab stop index whose position is
// strictly greater than x, or -1 if no more stops remain on the line. When
// no explicit stops were installed, the default infinite grid of spacing
// defaultAdvance is used (spec §4.1, §6.4).
func (t *StyledText) TabStopIndexFor(x fixed.Int26_6, defaultAdvance fixed.Int26_6) int {
	if len(t.tabStops) == 0 {
		if defaultAdvance <= 0 {
			return -1
		}
		return int(x/defaultAdvance) + 1
	}
	i := sort.Search(len(t.tabStops), func(i int) bool { return t.tabStops[i] > x })
	if i >= len(t.tabStops) {
		return -1
	}
	return i
}

// TabStopOffsetFor returns the layout-unit position of the tab stop at
// index, the inverse of TabStopIndexFor.
func (t *StyledText) TabStopOffsetFor(index int, defaultAdvance fixed.Int26_6) fixed.Int26_6 {
	if len(t.tabStops) == 0 {
		return defaultAdvance * fixed.Int26_6(index)
	}
	if index < 0 || index >= len(t.tabStops) {
		return 0
	}
	return t.tabStops[index]
}
