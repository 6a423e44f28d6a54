// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import "github.com/fontstage/bitlayout/atlas"

// Trim describes pixels clipped from a glyph's packed rectangle on each
// edge, e.g. by whitespace-trimming performed when atlas pages were
// authored. Spec §4.2 calls this "atlas-trimmed whitespace."
type Trim struct {
	Left, Top, Right, Bottom int
}

// BindPages installs the packed atlas pages for this font's glyphs and
// performs the "post-page patching" of spec §4.2: each glyph's UV
// rectangle is recomputed against the bound page dimensions, left/top trim
// shifts the source rectangle, and every trim shrinks width/height. Left
// trim raises XOffset and bottom trim raises YOffset (which is Y-up,
// measured to the quad's bottom edge), so the remaining pixels still land
// at the same pen-relative position; top and right trim change no offset.
// Glyphs that collapse to zero area (or whose
// declared page index is out of range) get Page = -1.
//
// trims may be nil or a partial map; glyphs absent from it are treated as
// untrimmed. owns records whether this BitmapFont should be considered the
// owner of pages for the purpose of the lifecycle state it transitions to.
func (f *BitmapFont) BindPages(pages []atlas.Page, trims map[rune]Trim, owns bool) error {
	if f.state == StateDisposed {
		return ErrDisposed
	}
	for i := range f.glyphs {
		g := &f.glyphs[i]
		if g.Page < 0 || g.Page >= len(pages) {
			g.Page = -1
			continue
		}
		rect := f.rects[i]
		trim := trims[g.ID]
		x := rect.x + trim.Left
		y := rect.y + trim.Top
		w := rect.w - trim.Left - trim.Right
		h := rect.h - trim.Top - trim.Bottom
		if w <= 0 || h <= 0 {
			g.Page = -1
			g.Width, g.Height = 0, 0
			continue
		}
		g.XOffset += scalePixels(trim.Left, f.pixelsPerPoint)
		g.YOffset += scalePixels(trim.Bottom, f.pixelsPerPoint)
		g.Width = scalePixels(w, f.pixelsPerPoint)
		g.Height = scalePixels(h, f.pixelsPerPoint)
		page := pages[g.Page]
		g.U = float32(x) / float32(page.Width)
		g.V = float32(y) / float32(page.Height)
		g.U2 = float32(x+w) / float32(page.Width)
		g.V2 = float32(y+h) / float32(page.Height)
	}
	f.owns = owns
	if owns {
		f.state = StateInitializedOwnsPages
	} else {
		f.state = StateInitializedBorrowsPages
	}
	return nil
}
