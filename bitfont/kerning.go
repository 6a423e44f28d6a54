// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// Packed 63-bit kerning key: first(21) | second(21) | amount(21 signed),
// per spec §4.2. L1-friendly, allocation-free, and correct under sign
// extension because amount is stored and restored via explicit two's
// complement masking rather than relying on machine word width.
const (
	kernFirstBits  = 21
	kernSecondBits = 21
	kernAmountBits = 21

	kernFirstMask  = (1 << kernFirstBits) - 1
	kernSecondMask = (1 << kernSecondBits) - 1
	kernAmountMask = (1 << kernAmountBits) - 1

	kernPairShift = kernSecondBits + kernAmountBits
)

type kernEntry uint64

func packKerning(first, second rune, amount int) kernEntry {
	pair := (uint64(first)&kernFirstMask)<<kernPairShift | (uint64(second)&kernSecondMask)<<kernAmountBits
	return kernEntry(pair | (uint64(amount) & kernAmountMask))
}

// pairKey returns the top 42 bits identifying the (first, second) pair,
// ignoring the amount.
func (k kernEntry) pairKey() uint64 {
	return uint64(k) >> kernAmountBits
}

func (k kernEntry) amount() fixed.Int26_6 {
	a := uint64(k) & kernAmountMask
	if a&(1<<(kernAmountBits-1)) != 0 {
		return fixed.Int26_6(int64(a) - (1 << kernAmountBits))
	}
	return fixed.Int26_6(a)
}

func pairKeyOf(first, second rune) uint64 {
	return (uint64(first)&kernFirstMask)<<kernSecondBits | (uint64(second) & kernSecondMask)
}

// sortKerning sorts entries by pair key in place and returns the slice,
// ready for binary search lookup.
func sortKerning(entries []kernEntry) []kernEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].pairKey() < entries[j].pairKey() })
	return entries
}

// lookupKerning binary-searches table for the (first, second) pair and
// returns its kerning amount, or zero if absent. Zero amounts are never
// stored (spec §4.2), so "not found" and "found with zero amount" are
// indistinguishable by design.
func lookupKerning(table []kernEntry, first, second rune) fixed.Int26_6 {
	if len(table) == 0 {
		return 0
	}
	key := pairKeyOf(first, second)
	i := sort.Search(len(table), func(i int) bool { return table[i].pairKey() >= key })
	if i < len(table) && table[i].pairKey() == key {
		return table[i].amount()
	}
	return 0
}
