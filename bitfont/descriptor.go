// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/math/fixed"
)

// PageFile names a declared page image, in declaration order; id equals
// its index, per spec §6.1's constraint.
type PageFile struct {
	ID   int
	File string
}

// rawGlyph is the as-parsed char line, still in raw descriptor pixels and
// not yet sorted by id.
type rawGlyph struct {
	id                         rune
	texX, texY, texW, texH     int
	xOffset, yOffset, xAdvance int
	page                       int
}

// Load parses a BMFont-style text descriptor (spec §6.1) and returns a
// BitmapFont in the GLYPHS_LOADED state, ready for BindPages. pixelsPerPoint
// scales every pixel-valued field by 1/pixelsPerPoint, per spec §4.2; a
// value <= 0 is treated as 1 (no scaling).
//
// Load returns ErrResource, wrapped with context, for a common, page or
// kerning line missing a required integer field, a char line without a
// valid id, a page id out of sequence, or a descriptor missing its
// common/page declarations. Other char fields that are absent or not
// integers are read as 0. It never panics on malformed input: parsing is a pure,
// total function from bytes to (font, error).
func Load(r io.Reader, pixelsPerPoint float32) (*BitmapFont, error) {
	if r == nil {
		return nil, fmt.Errorf("bitfont: %w: nil reader", ErrInvalidArgument)
	}
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}

	var (
		haveCommon    bool
		rawBase       int
		rawLineHeight int
		pageFiles     []PageFile
		glyphIndexSet = make(map[rune]int) // id -> index into rawGlyphs, for duplicate detection
		rawGlyphs     []rawGlyph
		kernSeen      = make(map[uint64]bool)
		kernList      []kernEntry
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tokens := splitDescriptorTokens(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "info":
			// Ignored, per spec §6.1.
		case "common":
			kv := tokensToMap(tokens[1:])
			lh, lhOK := atoi(kv["lineHeight"])
			base, baseOK := atoi(kv["base"])
			if !lhOK || !baseOK {
				return nil, fmt.Errorf("bitfont: %w: line %d: malformed common line", ErrResource, lineNo)
			}
			rawBase = base
			rawLineHeight = lh
			haveCommon = true
		case "page":
			kv := tokensToMap(tokens[1:])
			id, idOK := atoi(kv["id"])
			file, fileOK := kv["file"]
			if !idOK || !fileOK {
				return nil, fmt.Errorf("bitfont: %w: line %d: malformed page line", ErrResource, lineNo)
			}
			if id != len(pageFiles) {
				return nil, fmt.Errorf("bitfont: %w: line %d: page id %d out of sequence", ErrResource, lineNo, id)
			}
			pageFiles = append(pageFiles, PageFile{ID: id, File: file})
		case "char":
			kv := tokensToMap(tokens[1:])
			id64, ok := atoi(kv["id"])
			if !ok {
				return nil, fmt.Errorf("bitfont: %w: line %d: malformed char line", ErrResource, lineNo)
			}
			id := rune(id64)
			if id < 0 || id > 0x10FFFF {
				continue // out-of-range ids are a data condition, not an error.
			}
			if _, dup := glyphIndexSet[id]; dup {
				continue // duplicate char ids: later entries dropped, per spec §6.1.
			}
			x, _ := atoi(kv["x"])
			y, _ := atoi(kv["y"])
			w, _ := atoi(kv["width"])
			h, _ := atoi(kv["height"])
			xo, _ := atoi(kv["xoffset"])
			yo, _ := atoi(kv["yoffset"])
			xa, _ := atoi(kv["xadvance"])
			page, _ := atoi(kv["page"])
			glyphIndexSet[id] = len(rawGlyphs)
			rawGlyphs = append(rawGlyphs, rawGlyph{
				id: id, texX: x, texY: y, texW: w, texH: h,
				xOffset: xo, yOffset: yo, xAdvance: xa, page: page,
			})
		case "kerning":
			kv := tokensToMap(tokens[1:])
			first, fOK := atoi(kv["first"])
			second, sOK := atoi(kv["second"])
			amount, aOK := atoi(kv["amount"])
			if !fOK || !sOK || !aOK {
				return nil, fmt.Errorf("bitfont: %w: line %d: malformed kerning line", ErrResource, lineNo)
			}
			key := pairKeyOf(rune(first), rune(second))
			if kernSeen[key] {
				continue // duplicate kerning pairs: later entries dropped.
			}
			kernSeen[key] = true
			if amount == 0 {
				continue // zero amounts are never stored, per spec §4.2.
			}
			scaled := scalePixels(amount, pixelsPerPoint)
			kernList = append(kernList, packKerning(rune(first), rune(second), int(scaled)))
		default:
			// Unrecognized line kinds are ignored, matching §6.1's "Recognized
			// lines" framing: anything else is simply not acted on.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bitfont: %w: %v", ErrResource, err)
	}
	if !haveCommon {
		return nil, fmt.Errorf("bitfont: %w: missing common line", ErrResource)
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("bitfont: %w: no page declared", ErrResource)
	}

	f := &BitmapFont{pixelsPerPoint: pixelsPerPoint, state: StateGlyphsLoaded}
	f.metrics.LineHeight = scalePixels(rawLineHeight, pixelsPerPoint)
	f.metrics.Base = scalePixels(rawBase, pixelsPerPoint)

	order := make([]int, len(rawGlyphs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return rawGlyphs[order[a]].id < rawGlyphs[order[b]].id })

	glyphs := make([]Glyph, len(rawGlyphs))
	rects := make([]pixelRect, len(rawGlyphs))
	for i, idx := range order {
		rg := rawGlyphs[idx]
		// Convert yoffset from "top of line to top of rectangle" (pixel,
		// top-down) to "baseline to bottom of rectangle" (layout units,
		// Y-up), per spec §4.2.
		rectBottomFromTop := rg.yOffset + rg.texH
		yOffsetYUp := rawBase - rectBottomFromTop
		glyphs[i] = Glyph{
			ID:       rg.id,
			Page:     rg.page,
			XOffset:  scalePixels(rg.xOffset, pixelsPerPoint),
			YOffset:  scalePixels(yOffsetYUp, pixelsPerPoint),
			Width:    scalePixels(rg.texW, pixelsPerPoint),
			Height:   scalePixels(rg.texH, pixelsPerPoint),
			XAdvance: scalePixels(rg.xAdvance, pixelsPerPoint),
		}
		rects[i] = pixelRect{x: rg.texX, y: rg.texY, w: rg.texW, h: rg.texH}
		if rg.id == ' ' {
			f.metrics.SpaceXAdvance = glyphs[i].XAdvance
		}
	}
	f.glyphs = glyphs
	f.rects = rects
	f.kerning = sortKerning(kernList)
	return f, nil
}

func scalePixels(v int, pixelsPerPoint float32) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(v) / float64(pixelsPerPoint) * 64))
}

// splitDescriptorTokens splits a descriptor line into space-separated
// tokens, treating double-quoted spans (used for file="<path>") as atomic.
func splitDescriptorTokens(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func tokensToMap(tokens []string) map[string]string {
	m := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		i := strings.IndexByte(tok, '=')
		if i < 0 {
			continue
		}
		key := tok[:i]
		val := strings.Trim(tok[i+1:], `"`)
		m[key] = val
	}
	return m
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}
