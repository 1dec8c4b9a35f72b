package sdfpath

import "github.com/edirooss/scenecore/internal/diag"

// Path is two handles into the global interned trees: a prim-part node and
// an optional prop-part node. The zero Path is the empty path (spec.md §3).
// Paths compare and hash by pointer identity of their two fields, so Path
// is directly comparable (==) and usable as a map key.
type Path struct {
	prim *PathNode
	prop *PathNode
}

// IsEmpty reports whether p is the absent path.
func (p Path) IsEmpty() bool { return p.prim == nil }

// IsAbsolutePath reports whether p descends from AbsoluteRootPath.
func (p Path) IsAbsolutePath() bool {
	if p.prim == nil {
		return false
	}
	return p.prim.isAbsolute
}

// IsPrimPath reports whether p names a prim (no property part).
func (p Path) IsPrimPath() bool {
	return p.prim != nil && p.prop == nil && (p.prim.typ == Prim || p.prim.typ == Root)
}

// IsPrimPropertyPath reports whether p's prop-part is exactly one
// PrimProperty element deep (spec.md glossary: "Property path").
func (p Path) IsPrimPropertyPath() bool {
	return p.prop != nil && p.prop.typ == PrimProperty
}

// IsVariantSelectionPath reports whether p's last element (not merely an
// ancestor) is itself a variant selection, as opposed to
// ContainsVariantSelection which reports the cached whole-chain bit.
func (p Path) IsVariantSelectionPath() bool {
	return p.prop == nil && p.prim != nil && p.prim.typ == PrimVariantSelection
}

// VariantSelection returns the (set, variant) pair of p's last element.
// Only meaningful when IsVariantSelectionPath is true; otherwise returns
// ("", "").
func (p Path) VariantSelection() (set, variant string) {
	if !p.IsVariantSelectionPath() {
		return "", ""
	}
	return p.prim.variantSet, p.prim.variant
}

// IsPropertyPath reports whether p has any prop-part at all.
func (p Path) IsPropertyPath() bool { return p.prop != nil }

// IsTargetPath reports whether p's prop-part terminates in a relationship
// target or attribute connection.
func (p Path) IsTargetPath() bool { return p.prop != nil && p.prop.typ == Target }

// Target returns the embedded path of a relationship-target or
// attribute-connection path (the "/B" in ".rel[/B]"), and whether p is
// such a path at all. Used by pkg/specstore to recover the referenced path
// when synthesizing RelationshipTarget/Connection specs (spec.md §4.5.2).
func (p Path) Target() (Path, bool) {
	if !p.IsTargetPath() {
		return Path{}, false
	}
	return p.prop.embedded, true
}

// ContainsPropertyElements mirrors spec.md's "contains-target flag" sibling:
// true whenever a property part is present anywhere in the path.
func (p Path) ContainsPropertyElements() bool { return p.prop != nil }

// ContainsTargetPath reports the cached "contains-target" invariant bit.
func (p Path) ContainsTargetPath() bool {
	if p.prop != nil {
		return p.prop.hasTargetPath
	}
	return false
}

// ContainsVariantSelection reports the cached "contains-variant-selection"
// invariant bit.
func (p Path) ContainsVariantSelection() bool {
	if p.prim != nil {
		return p.prim.hasVariantSel
	}
	return false
}

// ElementCount is the number of elements from the applicable root to p.
func (p Path) ElementCount() int {
	n := 0
	if p.prim != nil {
		n += p.prim.elementCount
	}
	if p.prop != nil {
		n += p.prop.elementCount
	}
	return n
}

// Name returns the last element's name token. For a prim path this is the
// prim name; for a property path, the property (or target/mapper-arg) name.
func (p Path) Name() string {
	if p.prop != nil {
		switch p.prop.typ {
		case PrimProperty, RelationalAttribute, MapperArg:
			return p.prop.name
		}
		return ""
	}
	if p.prim != nil {
		return p.prim.name
	}
	return ""
}

// ParentPath returns p with its last element removed. Calling ParentPath on
// a root returns the same root (idempotent at the root, matching spec.md's
// ancestor-walk termination rule).
func (p Path) ParentPath() Path {
	if p.prop != nil {
		if p.prop.parent == nil {
			return Path{prim: p.prim}
		}
		return Path{prim: p.prim, prop: p.prop.parent}
	}
	if p.prim == nil {
		return p
	}
	if p.prim.typ == Root {
		return p
	}
	return Path{prim: p.prim.parent}
}

// PrimPath returns p with any property part stripped.
func (p Path) PrimPath() Path { return Path{prim: p.prim} }

// Ancestors returns every ancestor of p from the applicable root down to
// p's own parent, not including p itself. Supplemented from
// original_source/pxr/usd/sdf/pathNode.cpp's GetAncestorPaths, which
// spec.md's prose assumes but never names directly. No other package in
// this module calls it.
func (p Path) Ancestors() []Path {
	var chain []Path
	for cur := p.ParentPath(); !cur.IsEmpty(); cur = cur.ParentPath() {
		chain = append([]Path{cur}, chain...)
		if cur.prim != nil && cur.prim.typ == Root && cur.prop == nil {
			break
		}
	}
	return chain
}

// HasPrefix reports whether prefix is p itself or an ancestor of p.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix.IsEmpty() {
		return false
	}
	if p == prefix {
		return true
	}
	for cur := p.ParentPath(); !cur.IsEmpty(); cur = cur.ParentPath() {
		if cur == prefix {
			return true
		}
		if cur.prim != nil && cur.prim.typ == Root && cur.prop == nil {
			break
		}
	}
	return false
}

// AppendChild appends a prim child named name. Fails (InvalidPath) if p is
// not prim-like or name is not a valid identifier.
func (p Path) AppendChild(it *Interner, name string) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.prop != nil {
		return EmptyPath, diag.New(diag.InvalidPath, "cannot append a prim child to a property path").With("path", p.String())
	}
	if p.prim == nil {
		return EmptyPath, diag.New(diag.InvalidPath, "cannot append a child to the empty path")
	}
	if !IsValidIdentifier(name) {
		return EmptyPath, diag.Newf(diag.InvalidPath, "invalid prim name %q", name)
	}
	parent := p.prim
	n := it.findOrCreate(parent, Prim, func(n *PathNode) { n.name = name })
	return Path{prim: n}, nil
}

// AppendProperty appends a property named name to a prim-like path.
// Namespaced names ("render:color") are permitted; leading/trailing/
// doubled ':' are rejected (spec.md §6).
func (p Path) AppendProperty(it *Interner, name string) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.prop != nil {
		return EmptyPath, diag.New(diag.InvalidPath, "path already has a property part")
	}
	if p.prim == nil || p.prim.typ == Root && !p.prim.isAbsolute {
		// relative root "." may still carry a property in this grammar's
		// degenerate case; only reject the truly empty path.
	}
	if p.prim == nil {
		return EmptyPath, diag.New(diag.InvalidPath, "cannot append a property to the empty path")
	}
	if !isValidNamespacedIdentifier(name) {
		return EmptyPath, diag.Newf(diag.InvalidPath, "invalid property name %q", name)
	}
	n := it.findOrCreate(nil, PrimProperty, func(n *PathNode) { n.name = name })
	return Path{prim: p.prim, prop: n}, nil
}

// AppendTarget appends a relationship-target or attribute-connection suffix
// embedding targetPath, e.g. ".rel[/B]".
func (p Path) AppendTarget(it *Interner, targetPath Path) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.prop == nil {
		return EmptyPath, diag.New(diag.InvalidPath, "AppendTarget requires a property path")
	}
	if !targetPath.IsAbsolutePath() {
		return EmptyPath, diag.New(diag.InvalidPath, "target path must be absolute")
	}
	parent := p.prop
	n := it.findOrCreate(parent, Target, func(n *PathNode) { n.embedded = targetPath })
	return Path{prim: p.prim, prop: n}, nil
}

// AppendRelationalAttribute appends an attribute name to a relationship-
// target path, e.g. the ".attr" in "/A.rel[/B].attr" — an attribute that
// lives on a specific relationship target rather than on a prim. Mirrors
// original_source/pxr/usd/sdf/path.cpp's AppendRelationalAttribute: fails
// (InvalidPath) unless p.IsTargetPath(), the same way that source requires
// IsTargetPath() before calling Sdf_PathNode::FindOrCreateRelationalAttribute.
func (p Path) AppendRelationalAttribute(it *Interner, name string) (Path, error) {
	if it == nil {
		it = Default()
	}
	if !p.IsTargetPath() {
		return EmptyPath, diag.New(diag.InvalidPath, "can only append a relational attribute to a target path").With("path", p.String())
	}
	if !isValidNamespacedIdentifier(name) {
		return EmptyPath, diag.Newf(diag.InvalidPath, "invalid relational attribute name %q", name)
	}
	parent := p.prop
	n := it.findOrCreate(parent, RelationalAttribute, func(n *PathNode) { n.name = name })
	return Path{prim: p.prim, prop: n}, nil
}

// AppendVariantSelection appends a {set=variant} selection to a prim path.
// A '-' in setName is historically legal but deprecated; see
// SPEC_FULL.md §6 and DESIGN.md for the resolved Open Question.
func (p Path) AppendVariantSelection(it *Interner, setName, variant string) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.prop != nil || p.prim == nil {
		return EmptyPath, diag.New(diag.InvalidPath, "variant selections apply only to prim paths")
	}
	if setName == "" {
		return EmptyPath, diag.New(diag.InvalidPath, "variant set name must be non-empty")
	}
	if containsDash(setName) {
		warnDeprecatedVariantSetName(setName)
	}
	parent := p.prim
	n := it.findOrCreate(parent, PrimVariantSelection, func(n *PathNode) {
		n.variantSet = setName
		n.variant = variant
	})
	return Path{prim: n}, nil
}

// AppendExpression appends the single reserved ".expression" suffix.
func (p Path) AppendExpression(it *Interner) (Path, error) {
	if it == nil {
		it = Default()
	}
	if p.prim == nil {
		return EmptyPath, diag.New(diag.InvalidPath, "cannot append .expression to the empty path")
	}
	n := it.findOrCreate(nil, Expression, func(*PathNode) {})
	return Path{prim: p.prim, prop: n}, nil
}

func containsDash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return true
		}
	}
	return false
}
