// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"math"
	"sort"

	"golang.org/x/image/math/fixed"
)

// runIndexBits is the width of the run-index field packed into an
// inverse-index key, per spec §4.5's 32-bit `(charactersStart << 15) |
// runIndex` layout.
const runIndexBits = 15
const runIndexMask = (1 << runIndexBits) - 1

// InverseIndex maps a source character position to the run that renders
// it, and layers the caret/hit-test/edit-navigation query API of spec
// §4.5 on top, generalized from the teacher's widget/index.go glyphIndex.
type InverseIndex struct {
	runs        []*GlyphRun
	lineHeights []fixed.Int26_6

	keys    []uint32 // sorted (charactersStart<<runIndexBits)|runIndex, non-ellipsis runs only
	ownerOf []int    // parallel to keys: index into runs

	width, alignWidth fixed.Int26_6
}

// Build constructs an InverseIndex over a completed layout's runs and
// cumulative line heights.
func Build(runs []*GlyphRun, lineHeights []fixed.Int26_6) *InverseIndex {
	idx := &InverseIndex{runs: runs, lineHeights: lineHeights}
	for i, r := range runs {
		if r.Flags&Ellipsis != 0 {
			continue
		}
		key := uint32(r.CharactersStart)<<runIndexBits | uint32(i)&runIndexMask
		idx.keys = append(idx.keys, key)
		idx.ownerOf = append(idx.ownerOf, i)
	}
	order := make([]int, len(idx.keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return idx.keys[order[a]] < idx.keys[order[b]] })
	sortedKeys := make([]uint32, len(order))
	sortedOwner := make([]int, len(order))
	for i, o := range order {
		sortedKeys[i] = idx.keys[o]
		sortedOwner[i] = idx.ownerOf[o]
	}
	idx.keys, idx.ownerOf = sortedKeys, sortedOwner
	return idx
}

// IndexOfRunOf returns the index into Runs() of the run containing
// charIndex. When charIndex falls in a gap (e.g. a collapsed wrap-time
// span) and closest is true, the nearest run is returned instead of
// failing; closest false reports ok=false for a miss.
func (idx *InverseIndex) IndexOfRunOf(charIndex int, closest bool) (runIndex int, ok bool) {
	if len(idx.keys) == 0 {
		return -1, false
	}
	queryKey := uint32(charIndex)<<runIndexBits | runIndexMask
	i := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] > queryKey })
	if i > 0 {
		cand := idx.ownerOf[i-1]
		r := idx.runs[cand]
		if charIndex >= r.CharactersStart && charIndex < r.CharactersEnd {
			return cand, true
		}
		if charIndex == r.CharactersEnd && r.CharactersStart == r.CharactersEnd {
			return cand, true // zero-length run (e.g. one trimmed to nothing by truncation)
		}
	}
	if !closest {
		return -1, false
	}
	if i > 0 {
		return idx.ownerOf[i-1], true
	}
	return idx.ownerOf[0], true
}

// Runs returns the full run list this index was built over.
func (idx *InverseIndex) Runs() []*GlyphRun { return idx.runs }

// LineHeights returns the cumulative per-line height array.
func (idx *InverseIndex) LineHeights() []fixed.Int26_6 { return idx.lineHeights }

// setBounds installs the paragraph bounding-box measurements spec §3 and
// §4.6 Phase E document (run.x ≤ alignWidth; width and alignWidth equal
// the paragraph width under left-align). Called once by Engine.Layout
// after Phase E has finished shifting run X positions.
func (idx *InverseIndex) setBounds(width, alignWidth fixed.Int26_6) {
	idx.width, idx.alignWidth = width, alignWidth
}

// Width returns the paragraph's bounding-box width: the observable extent
// of laid-out content (spec §3's `width` field).
func (idx *InverseIndex) Width() fixed.Int26_6 { return idx.width }

// AlignWidth returns the width the paragraph was aligned against (spec
// §3's `alignWidth` field) — equal to Width() under left alignment, and to
// the available width (or raw content width, if unbounded) otherwise.
func (idx *InverseIndex) AlignWidth() fixed.Int26_6 { return idx.alignWidth }

func (idx *InverseIndex) lineAt(y fixed.Int26_6) int {
	return sort.Search(len(idx.lineHeights), func(i int) bool { return idx.lineHeights[i] > y })
}

func (idx *InverseIndex) lineStart(line int) fixed.Int26_6 {
	if line <= 0 {
		return 0
	}
	return idx.lineHeights[line-1]
}

// IndexAt locates the character under point (x, y), per spec §4.5.
func (idx *InverseIndex) IndexAt(x, y fixed.Int26_6, closest bool) (charIndex int, ok bool) {
	if len(idx.runs) == 0 {
		return 0, false
	}
	line := idx.lineAt(y)
	if line >= len(idx.lineHeights) {
		line = len(idx.lineHeights) - 1
	}

	var best *GlyphRun
	var bestIdx int
	for i, r := range idx.runs {
		if r.Line != line || r.Flags&Ellipsis != 0 {
			continue
		}
		if x >= r.X && x <= r.X+r.Width {
			best, bestIdx = r, i
			break
		}
		if closest && r.X <= x && (best == nil || r.X > best.X) {
			best, bestIdx = r, i
		}
	}
	if best == nil {
		if !closest {
			return 0, false
		}
		return 0, true
	}
	_ = bestIdx

	localX := x - best.X
	bestCharOffset := 0
	bestDist := fixed.Int26_6(math.MaxInt32)
	for i, p := range best.CharacterPositions {
		if p != p { // NaN continuation unit
			continue
		}
		px := floatToFixed26(p)
		d := localX - px
		if d < 0 {
			d = -d
		}
		if d < bestDist || (d == bestDist && best.IsLTR()) {
			bestDist = d
			bestCharOffset = i
		}
	}
	result := best.CharactersStart + bestCharOffset
	if best.Flags&Linebreak != 0 && result == best.CharactersEnd {
		result--
	}
	return result, true
}

func floatToFixed26(f float32) fixed.Int26_6 {
	return fixed.Int26_6(int64(f * 64))
}

// CaretPosition returns the leading-edge caret rectangle {x, y, 0,
// lineHeight} for the grapheme at index, clamped to the document's
// extent.
func (idx *InverseIndex) CaretPosition(index int) (x, y, lineHeight fixed.Int26_6) {
	runIdx, ok := idx.IndexOfRunOf(index, true)
	if !ok || len(idx.runs) == 0 {
		return 0, 0, 0
	}
	r := idx.runs[runIdx]
	line := r.Line
	lh := idx.lineHeights[line] - idx.lineStart(line)

	if index >= r.CharactersEnd && r.Flags&Linebreak != 0 {
		nextLine := line + 1
		if nextLine < len(idx.lineHeights) {
			return 0, idx.lineStart(nextLine), idx.lineHeights[nextLine] - idx.lineStart(nextLine)
		}
	}

	offset := index - r.CharactersStart
	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.CharacterPositions) {
		offset = len(r.CharacterPositions) - 1
	}
	localX := fixed.Int26_6(0)
	if offset >= 0 {
		localX = floatToFixed26(r.CharacterPositions[offset])
	}
	return r.X + localX, idx.lineStart(line), lh
}

// IndexAfterEditOffset moves the caret by delta grapheme clusters,
// skipping NaN continuation positions and ellipsis runs entirely, and
// clamping at the document's ends.
func (idx *InverseIndex) IndexAfterEditOffset(index int, delta int) int {
	step := 1
	if delta < 0 {
		step = -1
		delta = -delta
	}
	cur := index
	for ; delta > 0; delta-- {
		next, ok := idx.stepIndex(cur, step)
		if !ok {
			break
		}
		cur = next
	}
	return cur
}

func (idx *InverseIndex) stepIndex(index, step int) (int, bool) {
	runIdx, ok := idx.IndexOfRunOf(index, true)
	if !ok {
		return index, false
	}
	for {
		r := idx.runs[runIdx]
		next := index + step
		if next >= r.CharactersStart && next < r.CharactersEnd {
			off := next - r.CharactersStart
			if off >= 0 && off < len(r.CharacterPositions) && r.CharacterPositions[off] != r.CharacterPositions[off] {
				index = next
				continue // skip NaN continuation unit
			}
			return next, true
		}
		// Cross into the adjacent run in the given direction.
		adjIdx := runIdx + step
		if adjIdx < 0 || adjIdx >= len(idx.runs) {
			return index, false
		}
		if idx.runs[adjIdx].Flags&Ellipsis != 0 {
			runIdx = adjIdx
			if step > 0 {
				index = idx.runs[adjIdx].CharactersEnd
			} else {
				index = idx.runs[adjIdx].CharactersStart
			}
			continue
		}
		runIdx = adjIdx
		if step > 0 {
			return idx.runs[adjIdx].CharactersStart, true
		}
		return idx.runs[adjIdx].CharactersEnd - 1, true
	}
}

// Region is a selection-highlight rectangle on one line, in document
// coordinates (spec §9 Open Question 2, resolved per SPEC_FULL.md §5).
type Region struct {
	Line             int
	X, Y, Width, Height fixed.Int26_6
}

// SelectionRegions returns the highlight rectangles covering
// [start, end), one per line the selection spans, grounded directly in
// widget/index.go's locate/makeRegion.
func (idx *InverseIndex) SelectionRegions(start, end int) []Region {
	if start > end {
		start, end = end, start
	}
	startRun, ok := idx.IndexOfRunOf(start, true)
	if !ok {
		return nil
	}
	endRun, ok := idx.IndexOfRunOf(end, true)
	if !ok {
		return nil
	}
	startLine := idx.runs[startRun].Line
	endLine := idx.runs[endRun].Line

	var regions []Region
	for line := startLine; line <= endLine; line++ {
		lineStart := idx.lineStart(line)
		lineHeight := idx.lineHeights[line] - lineStart
		minX, maxX := fixed.Int26_6(math.MaxInt32), fixed.Int26_6(math.MinInt32)
		any := false
		for _, r := range idx.runs {
			if r.Line != line || r.Flags&Ellipsis != 0 {
				continue
			}
			rStart, rEnd := r.CharactersStart, r.CharactersEnd
			if rEnd <= start || rStart >= end {
				if !(line > startLine && line < endLine) {
					continue
				}
			}
			any = true
			for _, k := range [2]int{start, end} {
				x := r.Width
				if k > rStart && k < rEnd {
					off := k - rStart
					if !r.IsLTR() {
						off--
					}
					for off > 0 && r.CharacterPositions[off] != r.CharacterPositions[off] {
						off--
					}
					x = floatToFixed26(r.CharacterPositions[off])
				} else if (k <= rStart) == r.IsLTR() {
					x = 0
				}
				minX, maxX = min(minX, r.X+x), max(maxX, r.X+x)
			}
		}
		if !any {
			continue
		}
		regions = append(regions, Region{Line: line, X: minX, Y: lineStart, Width: maxX - minX, Height: lineHeight})
	}
	return regions
}

// DeletionRange returns the half-open character range removed by one
// backspace (forward=false) or delete (forward=true) keypress at index,
// grounded in widget/editor.go's deleteRune/deleteRuneForward pair
// (spec §9 Open Question 3, resolved per SPEC_FULL.md §5).
func (idx *InverseIndex) DeletionRange(index int, forward bool) (start, end int) {
	if forward {
		next := idx.IndexAfterEditOffset(index, 1)
		return index, next
	}
	prev := idx.IndexAfterEditOffset(index, -1)
	return prev, index
}
