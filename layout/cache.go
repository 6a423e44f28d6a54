// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"hash/maphash"

	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// layoutKey identifies one Layout call's inputs, grounded in
// text/lru.go's layoutKey: a comparable struct combining the shaping
// budget with a content hash, so identical (StyledText, Options) pairs
// hit the cache (spec §8 property 7, idempotence).
type layoutKey struct {
	width, height fixed.Int26_6
	align         Alignment
	ellipsis      string
	rightToLeft   bool
	locale        language.Tag
	contentHash   uint64
}

type layoutElem struct {
	next, prev *layoutElem
	key        layoutKey
	runs       []*GlyphRun
	index      *InverseIndex
}

// layoutCache is a per-Engine intrusive-LRU cache, the same
// doubly-linked-list-plus-map structure as text/lru.go's layoutCache,
// sized to the same maxSize constant.
type layoutCache struct {
	seed       maphash.Seed
	haveSeed   bool
	m          map[layoutKey]*layoutElem
	head, tail *layoutElem
}

const layoutCacheMaxSize = 1000

func (c *layoutCache) hashChars(chars []uint16) uint64 {
	if !c.haveSeed {
		c.seed = maphash.MakeSeed()
		c.haveSeed = true
	}
	var h maphash.Hash
	h.SetSeed(c.seed)
	var b [2]byte
	for _, unit := range chars {
		b[0], b[1] = byte(unit), byte(unit>>8)
		h.Write(b[:])
	}
	return h.Sum64()
}

func (c *layoutCache) get(k layoutKey) ([]*GlyphRun, *InverseIndex, bool) {
	if c.m == nil {
		return nil, nil, false
	}
	if lt, ok := c.m[k]; ok {
		c.remove(lt)
		c.insert(lt)
		return lt.runs, lt.index, true
	}
	return nil, nil, false
}

// put installs runs/index under k, evicting the least-recently-used entry
// once the cache exceeds layoutCacheMaxSize and returning its runs to pool
// (spec §4.4's pooling rationale: per-frame churn must not allocate in
// steady state, so a run leaving the cache for good must come back for
// reuse). A same-key overwrite frees the superseded entry the same way.
func (c *layoutCache) put(k layoutKey, runs []*GlyphRun, index *InverseIndex, pool *RunPool) {
	if c.m == nil {
		c.m = make(map[layoutKey]*layoutElem)
		c.head = new(layoutElem)
		c.tail = new(layoutElem)
		c.head.prev = c.tail
		c.tail.next = c.head
	}
	if old, exists := c.m[k]; exists {
		c.remove(old)
		if pool != nil {
			pool.FreeAll(old.runs)
		}
	}
	val := &layoutElem{key: k, runs: runs, index: index}
	c.m[k] = val
	c.insert(val)
	if len(c.m) > layoutCacheMaxSize {
		oldest := c.tail.next
		c.remove(oldest)
		delete(c.m, oldest.key)
		if pool != nil {
			pool.FreeAll(oldest.runs)
		}
	}
}

func (c *layoutCache) remove(lt *layoutElem) {
	lt.next.prev = lt.prev
	lt.prev.next = lt.next
}

func (c *layoutCache) insert(lt *layoutElem) {
	lt.next = c.head
	lt.prev = c.head.prev
	lt.prev.next = lt
	lt.next.prev = lt
}
