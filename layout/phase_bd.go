// SPDX-License-Identifier: Unlicense OR MIT

package layout

import "golang.org/x/image/math/fixed"

// wrap implements spec §4.6 Phase B: it repeatedly finds a break point
// and closes the current line until the pen no longer overflows the
// width budget (or a height/line-count bound is hit, in which case
// clampPending is set for Phase D to pick up).
func (s *engineState) wrap() {
	for s.hasWidth && s.penX >= s.widthBudget {
		if len(s.lineRuns) == 0 {
			return
		}
		runIdx := -1
		for i, r := range s.lineRuns {
			if r.X+r.Width >= s.widthBudget {
				runIdx = i
				break
			}
		}
		if runIdx == -1 {
			return
		}
		r := s.lineRuns[runIdx]
		hit := r.CharactersEnd
		for off, p := range r.CharacterPositions {
			if p != p {
				continue
			}
			if r.X+fixed26FromFloat(p) >= s.widthBudget {
				hit = r.CharactersStart + off
				break
			}
		}

		wrapPoint := findWrapPoint(s.chars, s.lineStartChar, r.CharactersEnd, hit, s.locale, s.haveLocale)
		if wrapPoint <= s.lineStartChar {
			wrapPoint = hit // force-break: nothing else fits on the line
		}
		realWrap := wrapPoint
		for realWrap < len(s.chars) && realWrap < r.CharactersEnd && s.chars[realWrap] == ' ' {
			realWrap++
		}

		s.collapseSpaces(wrapPoint, realWrap)
		s.splitLineAt(realWrap)
		s.closeLine()

		if s.overflowedHeight() {
			s.clampPending = true
			s.lastValidLine = s.line - 1
			return
		}
	}
}

func fixed26FromFloat(f float32) fixed.Int26_6 {
	return fixed.Int26_6(int64(f * 64))
}

// collapseSpaces implements spec §4.6 Phase B step 3: characters in
// [wrapPoint, realWrap) share the wrap point's x position and contribute
// no further width.
func (s *engineState) collapseSpaces(wrapPoint, realWrap int) {
	if realWrap <= wrapPoint {
		return
	}
	for _, r := range s.lineRuns {
		if r.CharactersEnd <= wrapPoint || r.CharactersStart >= realWrap {
			continue
		}
		var wrapX float32
		if wrapPoint >= r.CharactersStart && wrapPoint-r.CharactersStart < len(r.CharacterPositions) {
			wrapX = r.CharacterPositions[wrapPoint-r.CharactersStart]
		}
		for off := range r.CharacterPositions {
			abs := r.CharactersStart + off
			if abs >= wrapPoint && abs < realWrap {
				r.CharacterPositions[off] = wrapX
			}
		}
		if r.CharactersEnd <= realWrap {
			r.Width = fixed26FromFloat(wrapX)
		}
	}
}

// splitLineAt divides the current line's runs at the given absolute
// character index: runs entirely before it stay on this line, the run
// straddling it is split in two, and everything after moves to the next
// line with pen positions recomputed from zero.
func (s *engineState) splitLineAt(charIndex int) {
	splitIdx := -1
	for i, r := range s.lineRuns {
		if charIndex > r.CharactersStart && charIndex < r.CharactersEnd {
			splitIdx = i
			break
		}
	}

	var carried []*GlyphRun
	if splitIdx >= 0 {
		r := s.lineRuns[splitIdx]
		keep, carry := s.splitRun(r, charIndex)
		s.lineRuns[splitIdx] = keep
		s.allRunsReplace(r, keep)
		for i, ar := range s.allRuns {
			if ar == keep {
				s.allRuns = append(s.allRuns, nil)
				copy(s.allRuns[i+2:], s.allRuns[i+1:])
				s.allRuns[i+1] = carry
				break
			}
		}
		carried = append(carried, carry)
		carried = append(carried, s.lineRuns[splitIdx+1:]...)
		s.lineRuns = s.lineRuns[:splitIdx+1]
	} else {
		// charIndex falls exactly on a run boundary: everything from the
		// first run starting at or after it moves to the next line.
		boundary := len(s.lineRuns)
		for i, r := range s.lineRuns {
			if r.CharactersStart >= charIndex {
				boundary = i
				break
			}
		}
		carried = append(carried, s.lineRuns[boundary:]...)
		s.lineRuns = s.lineRuns[:boundary]
	}

	var x fixed.Int26_6
	for _, r := range carried {
		r.X = x
		x += r.Width
		r.Line = s.line + 1
	}
	s.pendingNextLineRuns = carried
	s.penX = x
}

func (s *engineState) allRunsReplace(old, replacement *GlyphRun) {
	for i, r := range s.allRuns {
		if r == old {
			s.allRuns[i] = replacement
			return
		}
	}
}

// splitRun divides one run at cutIndex (an absolute character index
// strictly inside its range), sharing level/font/color between the two
// halves, per spec §4.6 Phase B step 4. Glyphs are partitioned using the
// run's checkpoints, accounting for whether glyphs were emitted in
// increasing or decreasing character order (LTR vs RTL).
func (s *engineState) splitRun(r *GlyphRun, cutIndex int) (keep, carry *GlyphRun) {
	cutOff := cutIndex - r.CharactersStart

	glyphCut := len(r.Glyphs)
	if r.IsLTR() {
		glyphCut = 0
		for _, cp := range r.checkpoints {
			if cp.charIndex < cutOff && cp.glyphIndex > glyphCut {
				glyphCut = cp.glyphIndex
			}
		}
	} else {
		prefixForTail := 0
		for _, cp := range r.checkpoints {
			if cp.charIndex >= cutOff && cp.glyphIndex > prefixForTail {
				prefixForTail = cp.glyphIndex
			}
		}
		glyphCut = len(r.Glyphs) - prefixForTail
		if glyphCut < 0 {
			glyphCut = 0
		}
	}

	keep = s.obtain()
	carry = s.obtain()
	keep.Font, carry.Font = r.Font, r.Font
	keep.Color, carry.Color = r.Color, r.Color
	keep.CharactersLevel, carry.CharactersLevel = r.CharactersLevel, r.CharactersLevel
	keep.Line = r.Line

	keep.CharactersStart, keep.CharactersEnd = r.CharactersStart, cutIndex
	carry.CharactersStart, carry.CharactersEnd = cutIndex, r.CharactersEnd
	keep.X = r.X

	if r.IsLTR() {
		keep.Glyphs = append(keep.Glyphs, r.Glyphs[:glyphCut]...)
		keep.GlyphX = append(keep.GlyphX, r.GlyphX[:glyphCut]...)
		keep.GlyphY = append(keep.GlyphY, r.GlyphY[:glyphCut]...)
		carry.Glyphs = append(carry.Glyphs, r.Glyphs[glyphCut:]...)
		carry.GlyphX = append(carry.GlyphX, r.GlyphX[glyphCut:]...)
		carry.GlyphY = append(carry.GlyphY, r.GlyphY[glyphCut:]...)
	} else {
		tailLen := len(r.Glyphs) - glyphCut
		carry.Glyphs = append(carry.Glyphs, r.Glyphs[:tailLen]...)
		carry.GlyphX = append(carry.GlyphX, r.GlyphX[:tailLen]...)
		carry.GlyphY = append(carry.GlyphY, r.GlyphY[:tailLen]...)
		keep.Glyphs = append(keep.Glyphs, r.Glyphs[tailLen:]...)
		keep.GlyphX = append(keep.GlyphX, r.GlyphX[tailLen:]...)
		keep.GlyphY = append(keep.GlyphY, r.GlyphY[tailLen:]...)
	}

	keep.CharacterPositions = append(keep.CharacterPositions, r.CharacterPositions[:cutOff]...)

	// The pen position recorded for the carry run's first character, in
	// the original run's frame, is exactly the width consumed by the keep
	// run, regardless of whether the cut point falls on a collapsed
	// trailing space or mid-word.
	var splitWidth float32
	if cutOff < len(r.CharacterPositions) && r.CharacterPositions[cutOff] == r.CharacterPositions[cutOff] {
		splitWidth = r.CharacterPositions[cutOff]
	} else {
		splitWidth = lastFinite(keep.CharacterPositions)
	}
	keep.Width = fixed26FromFloat(splitWidth)
	carry.Width = r.Width - keep.Width

	// carry gets a fresh origin, so its positions and glyph offsets must
	// be rebased by the width the keep run consumed.
	for _, p := range r.CharacterPositions[cutOff:] {
		if p == p {
			p -= splitWidth
		}
		carry.CharacterPositions = append(carry.CharacterPositions, p)
	}
	splitWidthFixed := fixed26FromFloat(splitWidth)
	for i := range carry.GlyphX {
		carry.GlyphX[i] -= splitWidthFixed
	}

	return keep, carry
}

func lastFinite(positions []float32) float32 {
	for i := len(positions) - 1; i >= 0; i-- {
		if positions[i] == positions[i] {
			return positions[i]
		}
	}
	return 0
}

// truncateWithEllipsis implements spec §4.6 Phase D.
func (s *engineState) truncateWithEllipsis(ellipsis string) {
	kept := s.allRuns[:0:0]
	for _, r := range s.allRuns {
		if r.Line > s.lastValidLine {
			continue
		}
		if r.Line == s.lastValidLine && r.Flags&Linebreak != 0 {
			continue
		}
		kept = append(kept, r)
	}
	s.allRuns = kept
	if len(s.lineHeights) > s.lastValidLine+1 {
		s.lineHeights = s.lineHeights[:s.lastValidLine+1]
	}

	if ellipsis == "" {
		return
	}

	font, color := s.text.InitialStyle()
	if font == nil {
		return
	}
	var lineRuns []*GlyphRun
	for _, r := range s.allRuns {
		if r.Line == s.lastValidLine {
			lineRuns = append(lineRuns, r)
		}
	}
	lineEndX := fixed.Int26_6(0)
	for _, r := range lineRuns {
		if end := r.X + r.Width; end > lineEndX {
			lineEndX = end
		}
	}

	ellipsisRunes := []rune(ellipsis)
	ellRun := &GlyphRun{Font: font, Color: color, Line: s.lastValidLine, X: lineEndX, Flags: Ellipsis}
	var local fixed.Int26_6
	for _, rr := range ellipsisRunes {
		if g, ok := font.Glyph(rr); ok {
			ellRun.Glyphs = append(ellRun.Glyphs, g)
			ellRun.GlyphX = append(ellRun.GlyphX, local)
			ellRun.GlyphY = append(ellRun.GlyphY, -font.Metrics().Base)
			local += g.XAdvance
		}
	}
	ellRun.Width = local

	trimmed := false
	if s.hasWidth && lineEndX+ellRun.Width > s.widthBudget {
		for len(lineRuns) > 0 && lineEndX+ellRun.Width > s.widthBudget {
			last := lineRuns[len(lineRuns)-1]
			if len(lineRuns) == 1 {
				// Only one run left on the line: spec §4.6 Phase D step 2
				// trims it character-by-character instead of discarding it,
				// so as many leading characters as fit remain visible.
				target := s.widthBudget - ellRun.Width - last.X
				if target < 0 {
					target = 0
				}
				keep := s.trimRunToWidth(last, target)
				if keep != last {
					s.allRunsReplace(last, keep)
					lineRuns[0] = keep
					last = keep
				}
				lineEndX = last.X + last.Width
				ellRun.X = lineEndX
				trimmed = true
				break
			}
			lineRuns = lineRuns[:len(lineRuns)-1]
			s.removeRun(last)
			newEnd := fixed.Int26_6(0)
			for _, r := range lineRuns {
				if end := r.X + r.Width; end > newEnd {
					newEnd = end
				}
			}
			lineEndX = newEnd
			ellRun.X = lineEndX
		}
	}

	s.allRuns = append(s.allRuns, ellRun)
	if trimmed {
		// Re-run Phase C's geometry (not its reordering, which already ran
		// when the line first closed) on the trimmed line, per spec §4.6
		// Phase D step 3.
		s.reflowFinishedLine(s.lastValidLine)
	}
}

// charEndIndexForTargetRunWidth returns the largest character index in
// [r.CharactersStart, r.CharactersEnd] whose content fits within
// targetWidth, a run-local coordinate comparable to CharacterPositions
// entries (spec §4.6 Phase D step 2).
func charEndIndexForTargetRunWidth(r *GlyphRun, targetWidth fixed.Int26_6) int {
	if r.Width <= targetWidth {
		return r.CharactersEnd
	}
	// A character's position is where the content before it ends, so the
	// last position that fits is the cut; positions are only recorded at
	// cluster starts, so the cut never splits a cluster or surrogate pair.
	best := 0
	for off, p := range r.CharacterPositions {
		if p != p { // NaN continuation unit
			continue
		}
		if fixed26FromFloat(p) > targetWidth {
			break
		}
		best = off
	}
	return r.CharactersStart + best
}

// trimRunToWidth returns a run covering only as many of r's leading
// characters as fit within targetLocalWidth, reusing splitRun's "keep"
// half so the character-level trim shares its glyph-partitioning logic
// with wrap-time splitting. Returns r unchanged if it already fits, or a
// zero-length run at r's origin if nothing fits.
func (s *engineState) trimRunToWidth(r *GlyphRun, targetLocalWidth fixed.Int26_6) *GlyphRun {
	cut := charEndIndexForTargetRunWidth(r, targetLocalWidth)
	if cut >= r.CharactersEnd {
		return r
	}
	if cut <= r.CharactersStart {
		empty := s.obtain()
		empty.Font, empty.Color = r.Font, r.Color
		empty.CharactersLevel = r.CharactersLevel
		empty.Line = r.Line
		empty.CharactersStart, empty.CharactersEnd = r.CharactersStart, r.CharactersStart
		empty.X = r.X
		return empty
	}
	keep, carry := s.splitRun(r, cut)
	s.engine.pool.Free(carry)
	return keep
}

func (s *engineState) removeRun(target *GlyphRun) {
	out := s.allRuns[:0]
	for _, r := range s.allRuns {
		if r != target {
			out = append(out, r)
		}
	}
	s.allRuns = out
}
