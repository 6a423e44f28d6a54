// SPDX-License-Identifier: Unlicense OR MIT

// Package atlas implements a minimal rectangle-packed texture page arena,
// the external collaborator spec §2 row C7 calls "trivial for the bitmap
// back end." Pages are addressed by index rather than pointer so that
// holders (bitfont.BitmapFont in particular) survive page growth, per the
// arena pattern described in SPEC_FULL.md §4.2.
package atlas

import "image"

// PageRef is an arena index into a Packer's pages.
type PageRef int

type shelf struct {
	y, height, x int
}

// Page is one atlas texture: a fixed-size rectangle-packed region.
type Page struct {
	Width, Height int
	shelves       []shelf
}

// Packer owns an arena of pages and packs rectangles into them shelf by
// shelf: existing shelves are tried first-fit by remaining width, and a new
// shelf opens below the lowest one when none fits. This is the same
// first-fit-by-row strategy the pack's fontstash reference uses for its
// skyline nodes, simplified to a flat arena of independently-packed pages.
type Packer struct {
	pages []Page
}

// AddPage allocates a new empty page of the given size and returns its ref.
func (p *Packer) AddPage(width, height int) PageRef {
	p.pages = append(p.pages, Page{Width: width, Height: height})
	return PageRef(len(p.pages) - 1)
}

// Page dereferences a PageRef into a snapshot of that page's dimensions.
func (p *Packer) Page(ref PageRef) Page {
	return p.pages[ref]
}

// Pages returns a snapshot of every page in the arena, indexed identically
// to the PageRefs returned by AddPage.
func (p *Packer) Pages() []Page {
	out := make([]Page, len(p.pages))
	copy(out, p.pages)
	return out
}

// PageCount returns the number of pages in the arena.
func (p *Packer) PageCount() int { return len(p.pages) }

// Insert finds room for a w×h rectangle on the given page, returning the
// placed rectangle in page pixel coordinates. ok is false if the rectangle
// cannot fit on the page at all (w or h exceeds the page dimensions).
func (p *Packer) Insert(ref PageRef, w, h int) (rect image.Rectangle, ok bool) {
	page := &p.pages[ref]
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	for i := range page.shelves {
		s := &page.shelves[i]
		if h <= s.height && s.x+w <= page.Width {
			r := image.Rect(s.x, s.y, s.x+w, s.y+h)
			s.x += w
			return r, true
		}
	}
	y := 0
	if n := len(page.shelves); n > 0 {
		last := page.shelves[n-1]
		y = last.y + last.height
	}
	if y+h > page.Height || w > page.Width {
		return image.Rectangle{}, false
	}
	page.shelves = append(page.shelves, shelf{y: y, height: h, x: w})
	return image.Rect(0, y, w, y+h), true
}
