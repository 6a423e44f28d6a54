// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"math"
	"sort"

	"golang.org/x/exp/slices"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	"github.com/fontstage/bitlayout/bitfont"
	"github.com/fontstage/bitlayout/segment"
	"github.com/fontstage/bitlayout/styledtext"
)

// Engine shapes a StyledText into positioned GlyphRuns, grounded in
// text/gotext.go's shapeAndWrapText/LayoutRunes/computeVisualOrder
// pipeline: segment, shape, wrap, reorder, align.
type Engine struct {
	pool  RunPool
	cache layoutCache
}

// Layout runs the full five-phase algorithm of spec §4.6 over text and
// returns the finished runs together with the InverseIndex built over
// them. Runs are grouped by line in ascending order; within a line they
// are in logical (source) order, not sorted by X, and each run's X holds
// its visual position. Layout never fails on its own account:
// invalid input is sanitized, not rejected (spec §4.6.2); errors can only
// originate from font construction, which happens before Layout is ever
// called.
func (e *Engine) Layout(text *styledtext.StyledText, opts Options) ([]*GlyphRun, *InverseIndex) {
	chars := text.Chars()
	locale, haveLocale := text.Locale()

	key := layoutKey{
		width: opts.AvailableWidth, height: opts.AvailableHeight,
		align: opts.HorizontalAlign, ellipsis: opts.Ellipsis,
		rightToLeft: text.RightToLeft(), locale: locale,
		contentHash: e.cache.hashChars(chars),
	}
	if runs, idx, ok := e.cache.get(key); ok {
		return runs, idx
	}

	st := &engineState{
		engine:      e,
		text:        text,
		chars:       chars,
		graphemes:   graphemeClusterStarts(chars),
		locale:      locale,
		haveLocale:  haveLocale,
	}
	st.widthBudget, st.hasWidth = opts.widthBudget()
	st.height, st.hasHeight, st.maxLines, st.hasMaxLines = opts.heightBudget()

	st.run(text)
	st.finishIfNeeded()

	if st.clampPending {
		st.truncateWithEllipsis(opts.Ellipsis)
	}
	width, alignWidth := st.align(opts.HorizontalAlign, opts.AvailableWidth)

	idx := Build(st.allRuns, st.lineHeights)
	idx.setBounds(width, alignWidth)
	e.cache.put(key, st.allRuns, idx, &e.pool)
	return st.allRuns, idx
}

// engineState carries the mutable state of one Layout call: the pen
// position, the line currently being assembled, and the finished output.
type engineState struct {
	engine *Engine
	text   *styledtext.StyledText
	chars  []uint16

	graphemes  []bool
	locale     language.Tag
	haveLocale bool

	widthBudget fixed.Int26_6
	hasWidth    bool
	height      fixed.Int26_6
	hasHeight   bool
	maxLines    int
	hasMaxLines bool

	penX           fixed.Int26_6
	line           int
	lineStartChar  int
	lineRuns       []*GlyphRun
	prevKernGlyph  rune
	havePrevKern   bool

	pendingNextLineRuns []*GlyphRun

	allRuns      []*GlyphRun
	lineHeights  []fixed.Int26_6
	clampPending bool
	lastValidLine int
}

func (s *engineState) run(text *styledtext.StyledText) {
	seg := segment.New(text)
	for {
		sg, ok := seg.Next()
		if !ok {
			break
		}
		switch {
		case sg.Flags&segment.Linebreak != 0:
			s.synthesizeLinebreak(sg)
			s.closeLine()
			if s.overflowedHeight() {
				s.clampPending = true
				s.lastValidLine = s.line - 1
				return
			}
			continue
		case sg.Flags&segment.Tab != 0:
			s.synthesizeTab(sg)
		default:
			s.synthesizeText(sg)
		}
		if s.hasWidth && s.penX >= s.widthBudget {
			s.wrap()
			if s.clampPending {
				return
			}
		}
	}
}

func (s *engineState) finishIfNeeded() {
	if s.clampPending {
		return
	}
	s.closeLine()
	s.lastValidLine = len(s.lineHeights) - 1
}

func (s *engineState) overflowedHeight() bool {
	if s.hasMaxLines && s.line >= s.maxLines {
		return true
	}
	if s.hasHeight && len(s.lineHeights) > 0 && s.lineHeights[len(s.lineHeights)-1] > s.height {
		return true
	}
	return false
}

func (s *engineState) obtain() *GlyphRun {
	r := s.engine.pool.Obtain()
	r.Line = s.line
	return r
}

func (s *engineState) append(r *GlyphRun) {
	s.lineRuns = append(s.lineRuns, r)
	s.allRuns = append(s.allRuns, r)
}

func (s *engineState) synthesizeLinebreak(sg segment.Segment) {
	r := s.obtain()
	r.Font, r.Color, r.CharactersLevel = sg.Font, sg.Color, sg.Level
	r.CharactersStart, r.CharactersEnd = sg.Start, sg.End
	r.Flags = Linebreak
	r.X = s.penX
	r.appendCharPosition(0)
	for i := sg.Start + 1; i < sg.End; i++ {
		r.appendCharPositionNaN()
	}
	s.append(r)
}

func (s *engineState) synthesizeTab(sg segment.Segment) {
	font := sg.Font
	defaultAdvance := font.Metrics().SpaceXAdvance * 8
	idx := s.text.TabStopIndexFor(s.penX, defaultAdvance)
	var width fixed.Int26_6
	if idx >= 0 {
		width = s.text.TabStopOffsetFor(idx, defaultAdvance) - s.penX
		if width < 0 {
			width = 0
		}
	}
	r := s.obtain()
	r.Font, r.Color, r.CharactersLevel = sg.Font, sg.Color, sg.Level
	r.CharactersStart, r.CharactersEnd = sg.Start, sg.End
	r.Flags = Tab
	r.X = s.penX
	r.Width = width
	r.appendCharPosition(0)
	s.penX += width
	s.havePrevKern = false
	s.append(r)
}

type logicalChar struct {
	unitStart int
	r         rune
}

func (s *engineState) synthesizeText(sg segment.Segment) {
	r := s.obtain()
	r.Font, r.Color, r.CharactersLevel = sg.Font, sg.Color, sg.Level
	r.CharactersStart, r.CharactersEnd = sg.Start, sg.End
	r.X = s.penX
	segLen := sg.End - sg.Start
	// Grow the pooled run's scratch buffers up front, mirroring
	// text/gotext.go's slices.Grow calls on its own shaping scratch
	// buffers: per-frame churn must not allocate in steady state (§4.4).
	r.Glyphs = slices.Grow(r.Glyphs, segLen)
	r.GlyphX = slices.Grow(r.GlyphX, segLen)
	r.GlyphY = slices.Grow(r.GlyphY, segLen)
	r.CharacterPositions = make([]float32, segLen)
	nan := float32(math.NaN())
	for i := range r.CharacterPositions {
		r.CharacterPositions[i] = nan
	}

	var logical []logicalChar
	for u := sg.Start; u < sg.End; {
		c := s.chars[u]
		switch {
		case c >= 0xD800 && c <= 0xDBFF && u+1 < sg.End && s.chars[u+1] >= 0xDC00 && s.chars[u+1] <= 0xDFFF:
			rr := (rune(c)-0xD800)<<10 + (rune(s.chars[u+1]) - 0xDC00) + 0x10000
			logical = append(logical, logicalChar{u, rr})
			u += 2
		case c >= 0xD800 && c <= 0xDFFF:
			logical = append(logical, logicalChar{u, 0xFFFD})
			u++
		default:
			logical = append(logical, logicalChar{u, rune(c)})
			u++
		}
	}

	if sg.Level%2 != 0 {
		for i, j := 0, len(logical)-1; i < j; i, j = i+1, j-1 {
			logical[i], logical[j] = logical[j], logical[i]
		}
	}

	font := sg.Font
	s.havePrevKern = false
	for _, lc := range logical {
		off := lc.unitStart - sg.Start
		if s.graphemes == nil || (lc.unitStart < len(s.graphemes) && s.graphemes[lc.unitStart]) {
			r.CharacterPositions[off] = fixed26ToFloat(s.penX - r.X)
		}
		if lc.r == ' ' {
			s.penX += font.Metrics().SpaceXAdvance
			s.havePrevKern = false
			r.checkpoints = append(r.checkpoints, checkpoint{off, len(r.Glyphs)})
			continue
		}
		g, ok := font.Glyph(lc.r)
		if !ok {
			switch action := missingGlyphAction(lc.r); {
			case action > 0:
				s.penX += font.Metrics().SpaceXAdvance * fixed.Int26_6(action) / 8
				s.havePrevKern = false
			case action == 0:
				// consumed with zero width
			default:
				if fallback, ok := font.Glyph(0); ok {
					s.placeGlyph(r, font, fallback, fallback.ID)
				}
				s.havePrevKern = false
			}
			r.checkpoints = append(r.checkpoints, checkpoint{off, len(r.Glyphs)})
			continue
		}
		s.placeGlyph(r, font, g, lc.r)
		r.checkpoints = append(r.checkpoints, checkpoint{off, len(r.Glyphs)})
	}
	r.Width = s.penX - r.X
	s.append(r)
}

func (s *engineState) placeGlyph(r *GlyphRun, font *bitfont.BitmapFont, g bitfont.Glyph, id rune) {
	if s.havePrevKern {
		s.penX += font.Kerning(s.prevKernGlyph, id)
	}
	r.Glyphs = append(r.Glyphs, g)
	r.GlyphX = append(r.GlyphX, s.penX-r.X)
	r.GlyphY = append(r.GlyphY, -font.Metrics().Base)
	s.penX += g.XAdvance
	s.prevKernGlyph = id
	s.havePrevKern = true
}

// closeLine performs Phase C: visual reorder, X reflow, vertical metrics,
// baseline alignment, and line-height bookkeeping for the line currently
// being assembled.
func (s *engineState) closeLine() {
	runs := s.lineRuns
	paragraphLevel := 0
	if s.text.RightToLeft() {
		paragraphLevel = 1
	}
	reorderVisually(runs, paragraphLevel)

	cumulativeAbove := fixed.Int26_6(0)
	if n := len(s.lineHeights); n > 0 {
		cumulativeAbove = s.lineHeights[n-1]
	}
	s.lineHeights = append(s.lineHeights, layoutLineGeometry(runs, cumulativeAbove))
	s.line++
	s.penX = 0
	s.lineRuns = nil
	s.lineStartChar = len(s.chars)
	if len(runs) > 0 {
		s.lineStartChar = runs[0].CharactersStart
	}

	if carried := s.pendingNextLineRuns; len(carried) > 0 {
		s.pendingNextLineRuns = nil
		s.lineRuns = carried
		s.lineStartChar = carried[0].CharactersStart
		var x fixed.Int26_6
		for _, r := range carried {
			x = r.X + r.Width
		}
		s.penX = x
		s.havePrevKern = false
	}
}

// layoutLineGeometry performs the X-reflow, vertical-metrics, and baseline
// portion of Phase C for runs already in visual order, returning the
// cumulative line-bottom Y to record in lineHeights. It is shared by
// closeLine (first close, after reorderVisually) and reflowFinishedLine
// (post-truncation re-layout, which must not reorder again).
func layoutLineGeometry(runs []*GlyphRun, cumulativeAbove fixed.Int26_6) fixed.Int26_6 {
	var x fixed.Int26_6
	for _, r := range runs {
		r.X = x
		x += r.Width
	}

	var topToBaseline, baselineToDown fixed.Int26_6
	anyFont := false
	for _, r := range runs {
		if r.Font == nil {
			continue
		}
		m := r.Font.Metrics()
		if m.Base > topToBaseline {
			topToBaseline = m.Base
		}
		if d := m.LineHeight - m.Base; d > baselineToDown {
			baselineToDown = d
		}
		anyFont = true
	}
	if !anyFont && len(runs) > 0 && runs[0].Font != nil {
		m := runs[0].Font.Metrics()
		topToBaseline, baselineToDown = m.Base, m.LineHeight-m.Base
	}
	lineHeight := topToBaseline + baselineToDown

	for _, r := range runs {
		base := topToBaseline
		if r.Font != nil {
			base = r.Font.Metrics().Base
		}
		r.Y = cumulativeAbove - topToBaseline + base
	}

	return cumulativeAbove + lineHeight
}

// reflowFinishedLine redoes layoutLineGeometry for an already-closed line
// (spec §4.6 Phase D step 3's "re-run Phase C on the trimmed line"),
// without reordering: the line was already visually reordered when first
// closed, and reorderVisually assumes logical-order input, so running it
// again on visually-ordered runs would corrupt their order.
func (s *engineState) reflowFinishedLine(line int) {
	var runs []*GlyphRun
	for _, r := range s.allRuns {
		if r.Line == line {
			runs = append(runs, r)
		}
	}
	// allRuns keeps each line in logical order; the X values assigned at
	// first close carry the visual order.
	sort.SliceStable(runs, func(a, b int) bool { return runs[a].X < runs[b].X })
	cumulativeAbove := fixed.Int26_6(0)
	if line > 0 {
		cumulativeAbove = s.lineHeights[line-1]
	}
	s.lineHeights[line] = layoutLineGeometry(runs, cumulativeAbove)
}

// reorderVisually applies spec §4.6 Phase C step 1: if every run's level
// is even no action is needed, if every level is odd the whole line
// reverses, otherwise the Unicode BiDi visual-reordering permutation (the
// standard "reverse contiguous maximal runs at each odd level, from the
// highest level down") is applied. Tab and linebreak runs take the
// paragraph level for this purpose.
func reorderVisually(runs []*GlyphRun, paragraphLevel int) {
	if len(runs) < 2 {
		return
	}
	allEven, allOdd := true, true
	maxLevel := 0
	for _, r := range runs {
		lvl := effectiveLevel(r, paragraphLevel)
		if lvl%2 == 0 {
			allOdd = false
		} else {
			allEven = false
		}
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}
	if allEven {
		return
	}
	if allOdd {
		reverseRuns(runs, 0, len(runs))
		return
	}
	levels := make([]int, len(runs))
	for i, r := range runs {
		levels[i] = effectiveLevel(r, paragraphLevel)
	}
	for lvl := maxLevel; lvl >= 1; lvl-- {
		i := 0
		for i < len(runs) {
			if levels[i] < lvl {
				i++
				continue
			}
			j := i
			for j < len(runs) && levels[j] >= lvl {
				j++
			}
			reverseRuns(runs, i, j)
			reverseInts(levels, i, j)
			i = j
		}
	}
}

func effectiveLevel(r *GlyphRun, paragraphLevel int) int {
	if r.Flags&(Tab|Linebreak) != 0 {
		return paragraphLevel
	}
	return r.CharactersLevel
}

func reverseRuns(runs []*GlyphRun, i, j int) {
	for i, j = i, j-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
}

func reverseInts(v []int, i, j int) {
	for i, j = i, j-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

// align implements Phase E, returning the paragraph's bounding-box width
// and the width it was aligned against (spec §3, §4.6 Phase E): under
// left alignment both equal the raw content width; otherwise alignWidth
// is the width lines were shifted against and width is derived from it
// (matching the observable bounding box of reachable content).
func (s *engineState) align(mode Alignment, availableWidth fixed.Int26_6) (width, alignWidth fixed.Int26_6) {
	linesOf := make(map[int][]*GlyphRun)
	maxLine := -1
	for _, r := range s.allRuns {
		linesOf[r.Line] = append(linesOf[r.Line], r)
		if r.Line > maxLine {
			maxLine = r.Line
		}
	}

	rawWidth := fixed.Int26_6(0)
	for _, r := range s.allRuns {
		if end := r.X + r.Width; end > rawWidth {
			rawWidth = end
		}
	}

	if mode == AlignLeft {
		return rawWidth, rawWidth
	}
	alignTo := rawWidth
	if availableWidth > 0 {
		alignTo = availableWidth
	}
	for line := 0; line <= maxLine; line++ {
		runs := linesOf[line]
		if len(runs) == 0 {
			continue
		}
		lineWidth := fixed.Int26_6(0)
		for _, r := range runs {
			if end := r.X + r.Width; end > lineWidth {
				lineWidth = end
			}
		}
		offset := alignTo - lineWidth
		if mode == AlignCenter {
			offset /= 2
		}
		if offset > 0 {
			for _, r := range runs {
				r.X += offset
			}
		}
	}

	alignWidth = alignTo
	if mode == AlignRight {
		width = alignTo
	} else {
		width = (alignTo + rawWidth) / 2
	}
	return width, alignWidth
}

