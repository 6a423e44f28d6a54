// SPDX-License-Identifier: Unlicense OR MIT

// Package bitfont implements an immutable bitmap font: a sorted glyph
// table, a packed kerning table, line metrics, and atlas page bindings,
// loaded from a BMFont-style text descriptor (see Load).
//
// A BitmapFont moves through a one-time state machine as it is prepared
// for use: INITIAL, then GLYPHS_LOADED once Load returns, then either
// INITIALIZED_OWNS_PAGES or INITIALIZED_BORROWS_PAGES once BindPages
// installs its atlas textures, and finally DISPOSED. On a disposed font,
// BindPages returns ErrDisposed and Glyph/Kerning report no glyph and zero
// kerning.
package bitfont
