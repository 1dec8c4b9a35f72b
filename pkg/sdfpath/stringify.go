package sdfpath

import (
	"strings"
	"sync"
)

// stringCache is the lazy-stringification side table from spec.md §4.2:
// "the string is written to a concurrent side table keyed by node
// pointer". spec.md has the node's destructor remove its entry on
// self-eviction; this port's nodes are process-permanent (see node.go's
// package doc and DESIGN.md), so stringCache entries live exactly as long
// as the nodes that own them and are never explicitly pruned.
var stringCache sync.Map // *PathNode -> string

// String returns p's canonical bit-exact path string (spec.md §6, §8
// round-trip property). Materializing it the first time publishes into
// stringCache; later calls reuse the cached string.
func (p Path) String() string {
	if p.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(primString(p.prim))
	if p.prop != nil {
		b.WriteString(propString(p.prop))
	}
	return b.String()
}

func primString(n *PathNode) string {
	if n == nil {
		return ""
	}
	if cached, ok := stringCache.Load(n); ok {
		return cached.(string)
	}
	s := buildPrimString(n)
	stringCache.Store(n, s)
	return s
}

func buildPrimString(n *PathNode) string {
	switch n.typ {
	case Root:
		if n.isAbsolute {
			return "/"
		}
		return "."
	case Prim:
		parentStr := primString(n.parent)
		if parentStr == "/" {
			return parentStr + n.name
		}
		if parentStr == "." {
			return n.name
		}
		return parentStr + "/" + n.name
	case PrimVariantSelection:
		parentStr := primString(n.parent)
		if n.variant == "" {
			return parentStr + "{" + n.variantSet + "=}"
		}
		return parentStr + "{" + n.variantSet + "=" + n.variant + "}"
	default:
		return primString(n.parent)
	}
}

func propString(n *PathNode) string {
	if n == nil {
		return ""
	}
	if cached, ok := stringCache.Load(n); ok {
		return cached.(string)
	}
	s := buildPropString(n)
	stringCache.Store(n, s)
	return s
}

func buildPropString(n *PathNode) string {
	switch n.typ {
	case PrimProperty:
		return "." + n.name
	case RelationalAttribute:
		return propString(n.parent) + "." + n.name
	case Target, Mapper:
		prefix := propString(n.parent)
		if n.typ == Mapper {
			prefix += ".mapper"
		}
		return prefix + "[" + n.embedded.String() + "]"
	case MapperArg:
		return propString(n.parent) + "." + n.name
	case Expression:
		return propString(n.parent) + ".expression"
	default:
		return propString(n.parent)
	}
}
