package sdfpath

import (
	"sync/atomic"
	"unsafe"

	"github.com/edirooss/scenecore/internal/config"
)

// cache is the per-append hot-path cache from spec.md §4.2: a small,
// open-addressed table of recent (parent, discriminant) -> node mappings,
// probed linearly up to 1<<ProbeShift slots. Entries are plain atomic
// pointers rather than true thread-local storage (Go goroutines have no
// stable OS-thread identity to key a per-thread table on); every goroutine
// shares the same striped cache. This keeps the documented correctness
// property — a cache hit always returns a currently-valid node, because the
// slot holds a strong *PathNode reference that keeps it alive — while
// trading the teacher-language's true thread-locality for a shared,
// lock-free table, noted as a deliberate simplification in DESIGN.md.
type cache struct {
	slots []atomic.Pointer[cacheEntry]
	mask  uint64
}

type cacheEntry struct {
	parent *PathNode
	typ    NodeType
	disc   any
	node   *PathNode
}

func (c *cache) init() {
	n := uint64(1) << config.CacheSlotsShift
	c.slots = make([]atomic.Pointer[cacheEntry], n)
	c.mask = n - 1
}

func (c *cache) hash(parent *PathNode, typ NodeType, disc any) uint64 {
	h := uintptr2u64(parent) * 1099511628211
	h ^= uint64(typ) * 2654435761
	switch d := disc.(type) {
	case string:
		for i := 0; i < len(d); i++ {
			h = h*31 + uint64(d[i])
		}
	case [2]string:
		for _, s := range d {
			for i := 0; i < len(s); i++ {
				h = h*31 + uint64(s[i])
			}
		}
	case Path:
		h ^= uintptr2u64(d.prim) * 7
		h ^= uintptr2u64(d.prop) * 13
	}
	return h
}

func uintptr2u64(p *PathNode) uint64 {
	return uint64(uintptr(unsafe.Pointer(p)))
}

func (c *cache) lookup(parent *PathNode, typ NodeType, probe *PathNode) (*PathNode, bool) {
	disc := probe.discriminant()
	base := c.hash(parent, typ, disc) & c.mask
	probeLimit := uint64(1) << config.ProbeShift
	for i := uint64(0); i < probeLimit; i++ {
		slot := &c.slots[(base+i)&c.mask]
		e := slot.Load()
		if e == nil {
			return nil, false
		}
		if e.parent == parent && e.typ == typ && discEqual(e.disc, disc) {
			return e.node, true
		}
	}
	return nil, false
}

func (c *cache) store(parent *PathNode, typ NodeType, n *PathNode) {
	disc := n.discriminant()
	base := c.hash(parent, typ, disc) & c.mask
	probeLimit := uint64(1) << config.ProbeShift
	for i := uint64(0); i < probeLimit; i++ {
		slot := &c.slots[(base+i)&c.mask]
		if slot.Load() == nil {
			slot.CompareAndSwap(nil, &cacheEntry{parent, typ, disc, n})
			return
		}
	}
	// No free slot within the probe window: overwrite the base slot.
	// Correctness holds regardless (spec.md §4.2: "cache is invalidated
	// implicitly by overwriting slots").
	c.slots[base].Store(&cacheEntry{parent, typ, disc, n})
}

func discEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case [2]string:
		bv, ok := b.([2]string)
		return ok && av == bv
	case Path:
		bv, ok := b.(Path)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
