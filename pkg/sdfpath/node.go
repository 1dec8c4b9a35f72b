// Package sdfpath implements the interned hierarchical path identifiers of
// spec.md §3 ("Path", "Path node") and §4.2 (the interner). A Path is two
// handles into global, thread-safe, hash-consed trees: a prim-part tree
// (Root/Prim/PrimVariantSelection) and a prop-part tree (PrimProperty and
// its suffixes: Target, RelationalAttribute, Mapper, MapperArg,
// Expression). Equal paths always share the same *PathNode pointers, so
// Path equality is pointer equality.
//
// Grounded on the teacher's concurrency idiom (RWMutex-guarded indexes in
// internal/infrastructure/objectstore, internal/repo/store) generalized
// from "one mutex per store" to "one concurrent map per global tree". Nodes
// are allocated from a handle.Pool and, once published into a table, live
// for the remainder of the process: this port does not reimplement
// spec.md §4.2's atomic-refcount-to-zero table self-erasure. See DESIGN.md
// for why process-permanent hash-consing is the chosen substitution (the
// manual destroy-on-last-release protocol spec.md describes has no
// faithful Go equivalent over pool-backed storage) and what it trades away.
package sdfpath

import "fmt"

// NodeType discriminates the payload a PathNode carries (spec.md §3).
type NodeType uint8

const (
	Root NodeType = iota
	Prim
	PrimVariantSelection
	PrimProperty
	Target
	RelationalAttribute
	Mapper
	MapperArg
	Expression
)

func (t NodeType) String() string {
	switch t {
	case Root:
		return "Root"
	case Prim:
		return "Prim"
	case PrimVariantSelection:
		return "PrimVariantSelection"
	case PrimProperty:
		return "PrimProperty"
	case Target:
		return "Target"
	case RelationalAttribute:
		return "RelationalAttribute"
	case Mapper:
		return "Mapper"
	case MapperArg:
		return "MapperArg"
	case Expression:
		return "Expression"
	default:
		return "Unknown"
	}
}

// IsPrimPart reports whether nodes of this type live in the prim-part tree
// rather than the prop-part tree.
func (t NodeType) IsPrimPart() bool {
	return t == Root || t == Prim || t == PrimVariantSelection
}

// PathNode is an immutable, hash-consed node in one of the two interned
// trees. Construct only through Interner.FindOrCreate (or the package-level
// absolute/relative root sentinels).
type PathNode struct {
	parent *PathNode // strong reference; nil for a root or a prop-part root
	typ    NodeType

	// Discriminated payload. Exactly one group is meaningful per typ:
	name string // Prim, PrimProperty, RelationalAttribute, MapperArg

	variantSet string // PrimVariantSelection
	variant    string // PrimVariantSelection

	embedded Path // Target, Mapper: the full embedded path, e.g. the "/B" in ".rel[/B]"

	isAbsolute     bool
	hasVariantSel  bool // this node or an ancestor carries a variant selection
	hasTargetPath  bool // this node or an ancestor is Target/Mapper
	elementCount   int
	foundHintCount int32 // informational "times resolved" counter; see package doc
}

func (n *PathNode) Type() NodeType    { return n.typ }
func (n *PathNode) Name() string      { return n.name }
func (n *PathNode) Parent() *PathNode { return n.parent }
func (n *PathNode) IsAbsolute() bool  { return n.isAbsolute }

func (n *PathNode) discriminant() any {
	switch n.typ {
	case Prim, PrimProperty, RelationalAttribute, MapperArg:
		return n.name
	case PrimVariantSelection:
		return [2]string{n.variantSet, n.variant}
	case Target, Mapper:
		return n.embedded
	default:
		return nil
	}
}

// key is the composite lookup key for one of the two interner tables.
// Comparable: parent is a pointer, embedded is a Path (two pointers), the
// rest are scalars — so key works directly as a Go map key.
type key struct {
	parent *PathNode
	typ    NodeType
	disc   any
}

func keyFor(parent *PathNode, typ NodeType, n *PathNode) key {
	return key{parent: parent, typ: typ, disc: n.discriminant()}
}

func (n *PathNode) String() string {
	return fmt.Sprintf("PathNode{%s %q parent=%p}", n.typ, n.name, n.parent)
}
