package sdfpath

import (
	"fmt"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/edirooss/scenecore/internal/config"
	"github.com/edirooss/scenecore/pkg/handle"
)

// Interner hash-conses PathNodes across two independent trees: prim-part
// (Root/Prim/PrimVariantSelection) and prop-part (PrimProperty and its
// suffixes). Safe for concurrent FindOrCreate/lookup from any number of
// goroutines, per spec.md §4.2 and §5.
//
// Tests that need isolation construct their own Interner (spec.md §9: "the
// design does not require globality"); production code normally shares
// Default().
type Interner struct {
	pool *handle.Pool[PathNode]

	primTable sync.Map // key -> *PathNode
	propTable sync.Map // key -> *PathNode

	primCache cache
	propCache cache

	// miss collapses concurrent FindOrCreate calls that race on the same
	// miss key down to one constructor, so a burst of goroutines appending
	// the same not-yet-interned child allocate one PathNode instead of N
	// that get raced down to one via tbl.LoadOrStore and freed. This
	// strengthens, but does not change the observable outcome of, the
	// lock-free miss protocol spec.md §4.2 describes — see DESIGN.md.
	miss singleflight.Group

	seed maphash.Seed
}

// NewInterner constructs an isolated Interner with its own pool and tables.
func NewInterner() *Interner {
	it := &Interner{
		pool: handle.New[PathNode](config.RegionBits, config.ElemsPerSpanShift),
		seed: maphash.MakeSeed(),
	}
	it.primCache.init()
	it.propCache.init()
	return it
}

var defaultInterner = NewInterner()

// Default returns the process-wide Interner used by the package-level
// constructors (AbsoluteRootPath, RelativeRootPath, Parse, ...). spec.md §9
// lists the interner tables among the process-wide singletons initialized
// once under a one-shot guarantee.
func Default() *Interner { return defaultInterner }

// tableFor resolves which of the two tables/caches a NodeType belongs to.
func (it *Interner) tableFor(typ NodeType) (*sync.Map, *cache) {
	if typ.IsPrimPart() {
		return &it.primTable, &it.primCache
	}
	return &it.propTable, &it.propCache
}

// propRootParent returns the table-keying parent for a prop-part node:
// nil for PrimProperty and Mapper (spec.md §4.2: "prop-table is
// intentionally parented by null" — the same sharing argument applies to
// ".mapper[...]", which like a property hangs directly off a prim and is
// named independently of which prim it's on), the real parent otherwise.
func propRootParent(typ NodeType, realParent *PathNode) *PathNode {
	if typ == PrimProperty || typ == Mapper {
		return nil
	}
	return realParent
}

// FindOrCreate implements the protocol from spec.md §4.2: look up
// (parent, discriminant) in the owning table; on a hit, return the existing
// node; otherwise construct a fresh node and publish it. Nodes are
// pool-backed and process-permanent (see the package doc and DESIGN.md for
// why this port does not attempt the refcount-to-zero self-eviction
// spec.md describes): once published, a table entry is never removed, so a
// hit is always a plain, non-racing map load. The hot-path cache is keyed
// by the same table-keying parent as the table (nil for PrimProperty and
// Mapper nodes), while the built node records realParent.
func (it *Interner) findOrCreate(realParent *PathNode, typ NodeType, build func(n *PathNode)) *PathNode {
	tableParent := propRootParent(typ, realParent)
	tbl, c := it.tableFor(typ)

	// Build a probe node to compute the discriminant/cache key without
	// allocating from the pool yet.
	probe := &PathNode{parent: tableParent, typ: typ}
	build(probe)
	k := keyFor(tableParent, typ, probe)

	if n, ok := c.lookup(tableParent, typ, probe); ok {
		atomic.AddInt32(&n.foundHintCount, 1)
		return n
	}

	if v, ok := tbl.Load(k); ok {
		n := v.(*PathNode)
		atomic.AddInt32(&n.foundHintCount, 1)
		c.store(tableParent, typ, n)
		return n
	}

	sfKey := fmt.Sprintf("%p|%d|%v", tableParent, typ, probe.discriminant())
	v, _, _ := it.miss.Do(sfKey, func() (any, error) {
		// Re-check under the singleflight key: another caller may have
		// already published a node for this exact miss while we were
		// queued behind it.
		if v, ok := tbl.Load(k); ok {
			n := v.(*PathNode)
			atomic.AddInt32(&n.foundHintCount, 1)
			return n, nil
		}

		h, n := it.pool.Alloc()
		n.parent = realParent
		n.typ = typ
		build(n)
		n.elementCount = elementCountFor(realParent, typ)
		n.isAbsolute = isAbsoluteFor(realParent, typ)
		n.hasVariantSel = hasVariantSelFor(realParent, typ)
		n.hasTargetPath = hasTargetFor(realParent, typ)

		actual, loaded := tbl.LoadOrStore(k, n)
		if loaded {
			// A racer outside this singleflight group (a different key
			// collision computed the same k) published first; free our
			// speculative node back to the pool instead of leaking the
			// slot forever.
			it.pool.Free(h)
			return actual.(*PathNode), nil
		}

		return n, nil
	})

	n := v.(*PathNode)
	c.store(tableParent, typ, n)
	return n
}

func elementCountFor(parent *PathNode, typ NodeType) int {
	if typ == Root {
		return 0
	}
	if parent == nil {
		return 1
	}
	return parent.elementCount + 1
}

func isAbsoluteFor(parent *PathNode, typ NodeType) bool {
	if typ == Root {
		return false // caller overrides for AbsoluteRoot
	}
	if parent == nil {
		return false
	}
	return parent.isAbsolute
}

func hasVariantSelFor(parent *PathNode, typ NodeType) bool {
	if typ == PrimVariantSelection {
		return true
	}
	if parent == nil {
		return false
	}
	return parent.hasVariantSel
}

func hasTargetFor(parent *PathNode, typ NodeType) bool {
	if typ == Target || typ == Mapper {
		return true
	}
	if parent == nil {
		return false
	}
	return parent.hasTargetPath
}
