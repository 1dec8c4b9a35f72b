package sdfpath

// RemoveCommonSuffix walks a and b's prim-part chains from the leaf
// upward, trimming elements while their discriminants (names, or
// variant-set/variant pairs) are equal, and returns the two paths with that
// shared suffix removed (spec.md §4.2, scenario 6). When stopAtRootPrim is
// set, the walk never trims a node whose parent is itself a root prim, so
// the top-level prim segment of each path always survives even if it would
// otherwise match.
func RemoveCommonSuffix(a, b Path, stopAtRootPrim bool) (Path, Path) {
	pa, pb := a.prim, b.prim
	for pa != nil && pb != nil && pa.typ == Prim && pb.typ == Prim {
		if stopAtRootPrim && isRootPrimNode(pa.parent) {
			break
		}
		if !sameDiscriminant(pa, pb) {
			break
		}
		pa, pb = pa.parent, pb.parent
	}
	return Path{prim: pa}, Path{prim: pb}
}

func isRootPrimNode(n *PathNode) bool {
	return n != nil && n.typ == Prim && n.parent != nil && n.parent.typ == Root
}

func sameDiscriminant(a, b *PathNode) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Prim:
		return a.name == b.name
	case PrimVariantSelection:
		return a.variantSet == b.variantSet && a.variant == b.variant
	default:
		return false
	}
}

// chainElem captures one step of a prim-part chain so it can be replayed
// against a different base path.
type chainElem struct {
	typ        NodeType
	name       string
	variantSet string
	variant    string
}

// replacePrimChain mirrors original_source/pxr/usd/sdf/path.cpp's
// SdfPath::_ReplacePrimPrefix: walks leaf's prim-part chain looking for
// oldPrefixPrim, and if found rebuilds the trimmed tail onto
// newPrefixPrim. Returns leaf unchanged if oldPrefixPrim is not among its
// ancestors — oldPrefix simply isn't a prefix here, which is not an error.
func replacePrimChain(it *Interner, leaf, oldPrefixPrim, newPrefixPrim *PathNode) *PathNode {
	if leaf == oldPrefixPrim {
		return newPrefixPrim
	}
	var chain []chainElem
	cur := leaf
	for cur != nil && cur != oldPrefixPrim {
		chain = append(chain, chainElem{
			typ:        cur.typ,
			name:       cur.name,
			variantSet: cur.variantSet,
			variant:    cur.variant,
		})
		cur = cur.parent
	}
	if cur == nil {
		return leaf
	}
	built := newPrefixPrim
	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		built = it.findOrCreate(built, e.typ, func(n *PathNode) {
			n.name = e.name
			n.variantSet = e.variantSet
			n.variant = e.variant
		})
	}
	return built
}

// propChainElem captures one step of a prop-part chain, the prop-part
// analog of chainElem: Target/Mapper carry an embedded path instead of a
// name.
type propChainElem struct {
	typ      NodeType
	name     string
	embedded Path
}

// collectPropChain walks leaf upward while each node's hasTargetPath bit is
// set, returning the collected chain (leaf-first) and the first ancestor
// that does not itself carry a target (the chain's reattachment base),
// mirroring _ReplaceTargetPathPrefixes's "while (propNode &&
// propNode->ContainsTargetPath())" walk.
func collectPropChain(leaf *PathNode) (chain []propChainElem, base *PathNode) {
	cur := leaf
	for cur != nil && cur.hasTargetPath {
		chain = append(chain, propChainElem{typ: cur.typ, name: cur.name, embedded: cur.embedded})
		cur = cur.parent
	}
	return chain, cur
}

// rebuildPropChain replays chain (leaf-first, as collected by
// collectPropChain or a depth-bounded walk) onto base in root-to-leaf
// order. fixEmbedded is applied to every Target/Mapper node's embedded
// path; passing a fixEmbedded that returns its argument unchanged
// reproduces the node verbatim.
func rebuildPropChain(it *Interner, base *PathNode, chain []propChainElem, fixEmbedded func(Path) Path) *PathNode {
	built := base
	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		parent := built
		switch e.typ {
		case Target, Mapper:
			embedded := fixEmbedded(e.embedded)
			built = it.findOrCreate(parent, e.typ, func(n *PathNode) { n.embedded = embedded })
		default:
			built = it.findOrCreate(parent, e.typ, func(n *PathNode) { n.name = e.name })
		}
	}
	return built
}

// replaceTargetPathPrefixes rewrites every embedded Target/Mapper path
// reachable through p's prop-part chain, recursively fixing each embedded
// path's own prefix the same way (fixTargetPaths always on for the
// recursive call, mirroring _ReplaceTargetPathPrefixes).
func replaceTargetPathPrefixes(it *Interner, p, oldPrefix, newPrefix Path) Path {
	if p.prop == nil || !p.prop.hasTargetPath {
		return p
	}
	chain, base := collectPropChain(p.prop)
	newProp := rebuildPropChain(it, base, chain, func(embedded Path) Path {
		fixed, _ := ReplacePrefix(it, embedded, oldPrefix, newPrefix, true)
		return fixed
	})
	return Path{prim: p.prim, prop: newProp}
}

// replacePropPrefix mirrors _ReplacePropPrefix: oldPrefix and p share the
// same prim part and are both property-like. It walks p's prop chain up to
// oldPrefix's prop depth, and if that ancestor is exactly oldPrefix's
// prop-part node, reattaches the trimmed tail onto newPrefix — fixing
// embedded target paths along the way when fixTargetPaths is set. If the
// walk doesn't land on oldPrefix's prop node, p is returned unchanged
// (after still fixing any embedded target paths, if requested).
func replacePropPrefix(it *Interner, p, oldPrefix, newPrefix Path, fixTargetPaths bool) Path {
	propNode := p.prop
	prefixProp := oldPrefix.prop

	prefixDepth := 0
	if prefixProp != nil {
		prefixDepth = prefixProp.elementCount
	}
	curDepth := 0
	if propNode != nil {
		curDepth = propNode.elementCount
	}

	if curDepth < prefixDepth {
		if fixTargetPaths {
			return replaceTargetPathPrefixes(it, p, oldPrefix, newPrefix)
		}
		return p
	}

	var chain []propChainElem
	cur := propNode
	for curDepth > prefixDepth {
		chain = append(chain, propChainElem{typ: cur.typ, name: cur.name, embedded: cur.embedded})
		cur = cur.parent
		curDepth--
	}

	if cur != prefixProp {
		if fixTargetPaths {
			return replaceTargetPathPrefixes(it, p, oldPrefix, newPrefix)
		}
		return p
	}

	newProp := rebuildPropChain(it, newPrefix.prop, chain, func(embedded Path) Path {
		if !fixTargetPaths {
			return embedded
		}
		fixed, _ := ReplacePrefix(it, embedded, oldPrefix, newPrefix, true)
		return fixed
	})
	return Path{prim: newPrefix.prim, prop: newProp}
}

// ReplacePrefix reconstructs p with its oldPrefix ancestor (or p itself)
// replaced by newPrefix, mirroring original_source/pxr/usd/sdf/path.cpp's
// SdfPath::ReplacePrefix(oldPrefix, newPrefix, fixTargetPaths) (spec.md
// §4.2: "traverses property parts similarly; recursively rewrites embedded
// target paths only when requested").
//
// oldPrefix may be prim-like (no property part, replacing only p's prim
// part) or property-like (both oldPrefix and p must then share the same
// prim part, and the walk compares prop-part depth). p need not actually
// have oldPrefix as a prefix at all when fixTargetPaths is set: an
// embedded target or mapper path nested anywhere in p's property part may
// still get rewritten, e.g. ReplacePrefix(it, "/a.rel[/target]", "/target",
// "/other/target", true) -> "/a.rel[/other/target]", matching the
// original's documented surprise case.
func ReplacePrefix(it *Interner, p, oldPrefix, newPrefix Path, fixTargetPaths bool) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.IsEmpty() || oldPrefix == newPrefix {
		return p, nil
	}
	if oldPrefix.IsEmpty() || newPrefix.IsEmpty() {
		return EmptyPath, nil
	}
	if p == oldPrefix {
		return newPrefix, nil
	}

	if oldPrefix.prop == nil {
		newPrim := replacePrimChain(it, p.prim, oldPrefix.prim, newPrefix.prim)
		newPath := Path{prim: newPrim, prop: p.prop}
		if fixTargetPaths && p.prop != nil && p.prop.hasTargetPath {
			newPath = replaceTargetPathPrefixes(it, newPath, oldPrefix, newPrefix)
		}
		return newPath, nil
	}

	// oldPrefix is property-like: a prim-like p cannot have it as a prefix
	// and carries no embedded target paths of its own to fix.
	if p.prop == nil {
		return p, nil
	}
	if p.prim != oldPrefix.prim {
		if fixTargetPaths && p.prop.hasTargetPath {
			return replaceTargetPathPrefixes(it, p, oldPrefix, newPrefix), nil
		}
		return p, nil
	}
	return replacePropPrefix(it, p, oldPrefix, newPrefix, fixTargetPaths), nil
}
