package sdfpath

// Less implements the total order from spec.md §4.2: absolute paths sort
// before relative ones; otherwise climb the deeper chain to equal depth,
// then ascend both in lock-step until the parents agree, and order by the
// discriminant of the two now-sibling nodes. Property parts are compared
// only once the prim parts are equal. Used to produce the deterministic
// sort-on-save order (spec.md §4.5.6).
func Less(a, b Path) bool {
	if a == b {
		return false
	}
	if c := comparePrimChains(a.prim, b.prim); c != 0 {
		return c < 0
	}
	return comparePropChains(a.prop, b.prop) < 0
}

func comparePrimChains(a, b *PathNode) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.isAbsolute != b.isAbsolute {
		if a.isAbsolute {
			return -1
		}
		return 1
	}
	return compareNodeChains(a, b, nodeDepth(a), nodeDepth(b))
}

func comparePropChains(a, b *PathNode) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return compareNodeChains(a, b, nodeDepth(a), nodeDepth(b))
}

func nodeDepth(n *PathNode) int {
	d := 0
	for cur := n; cur != nil; cur = cur.parent {
		d++
	}
	return d
}

// compareNodeChains climbs the deeper of a/b to equal depth (recording the
// extra prefix as "a is deeper, hence greater, unless the shallower one is
// an ancestor" — in which case the shallower node is the prefix and sorts
// first), then ascends in lock-step and orders by discriminant once the
// parents agree.
func compareNodeChains(a, b *PathNode, da, db int) int {
	// Walk the deeper chain up to equal depth, remembering the node at
	// that depth on the deeper side so we can detect the "b is a's
	// ancestor" case.
	for da > db {
		if a.parent == b {
			return 1 // a is a descendant of b: b (the ancestor) sorts first
		}
		a = a.parent
		da--
	}
	for db > da {
		if b.parent == a {
			return -1
		}
		b = b.parent
		db--
	}
	if a == b {
		return 0
	}
	for a.parent != b.parent {
		a = a.parent
		b = b.parent
	}
	return compareDiscriminant(a, b)
}

func compareDiscriminant(a, b *PathNode) int {
	if a.typ != b.typ {
		if a.typ < b.typ {
			return -1
		}
		return 1
	}
	switch a.typ {
	case PrimVariantSelection:
		if a.variantSet != b.variantSet {
			return cmpStr(a.variantSet, b.variantSet)
		}
		return cmpStr(a.variant, b.variant)
	case Target, Mapper:
		if Less(a.embedded, b.embedded) {
			return -1
		}
		if a.embedded == b.embedded {
			return 0
		}
		return 1
	default:
		return cmpStr(a.name, b.name)
	}
}

func cmpStr(a, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
