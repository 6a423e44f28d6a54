// SPDX-License-Identifier: Unlicense OR MIT

package atlas

import "testing"

func TestPackerInsertFitsOnOneShelf(t *testing.T) {
	var p Packer
	ref := p.AddPage(64, 64)
	r1, ok := p.Insert(ref, 10, 10)
	if !ok {
		t.Fatal("expected first insert to fit")
	}
	if r1.Dx() != 10 || r1.Dy() != 10 {
		t.Fatalf("unexpected rect %v", r1)
	}
	r2, ok := p.Insert(ref, 10, 8)
	if !ok {
		t.Fatal("expected second insert to fit on same shelf")
	}
	if r2.Min.X != r1.Max.X {
		t.Fatalf("expected second rect to start where first ended, got %v after %v", r2, r1)
	}
	if r2.Min.Y != r1.Min.Y {
		t.Fatalf("expected same shelf y, got %d want %d", r2.Min.Y, r1.Min.Y)
	}
}

func TestPackerOpensNewShelf(t *testing.T) {
	var p Packer
	ref := p.AddPage(16, 64)
	if _, ok := p.Insert(ref, 10, 10); !ok {
		t.Fatal("expected fit")
	}
	r2, ok := p.Insert(ref, 10, 20)
	if !ok {
		t.Fatal("expected a new shelf to be opened for a taller rect")
	}
	if r2.Min.Y != 10 {
		t.Fatalf("expected new shelf below the first, got y=%d", r2.Min.Y)
	}
}

func TestPackerRejectsOversized(t *testing.T) {
	var p Packer
	ref := p.AddPage(16, 16)
	if _, ok := p.Insert(ref, 32, 4); ok {
		t.Fatal("expected oversized width to fail")
	}
	if _, ok := p.Insert(ref, 4, 32); ok {
		t.Fatal("expected oversized height to fail")
	}
}

func TestPackerPageRefsSurviveGrowth(t *testing.T) {
	var p Packer
	refs := make([]PageRef, 0, 8)
	for i := 0; i < 8; i++ {
		refs = append(refs, p.AddPage(4, 4))
	}
	for i, ref := range refs {
		if got := p.Page(ref).Width; got != 4 {
			t.Fatalf("page %d: width changed after growth: %d", i, got)
		}
	}
}
