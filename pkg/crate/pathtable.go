package crate

import (
	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/sdfpath"
)

// pathNodeTag discriminates a PATHS-section record's node type (spec.md
// §6: "a tag byte discriminating the path-node type"). Bounded to the
// shapes a real (non-synthesized) Spec's path can take — Target, Mapper,
// MapperArg, and Expression paths never name a stored spec (spec.md
// §4.5.2) and so never need a PATHS entry of their own, only the prim
// paths a PathListOp value references do.
type pathNodeTag byte

const (
	tagRootAbs pathNodeTag = iota
	tagRootRel
	tagPrim
	tagPrimProperty
	tagVariantSelection
)

// pathRecord is one row of the PATHS section (spec.md §6: "array of path
// records, each encoded as a reference to a parent path index plus an
// element token and a tag byte").
type pathRecord struct {
	parent  uint32 // NullPathIndex for roots
	tag     pathNodeTag
	token   uint32 // element name (Prim/PrimProperty), or variant-set name (VariantSelection)
	token2  uint32 // variant name (VariantSelection only)
}

// pathTable assigns a dense, parent-before-child index to every distinct
// sdfpath.Path referenced by a Document, and can rebuild a Path from its
// index given an Interner.
type pathTable struct {
	interner *sdfpath.Interner
	tokens   *tokenTable

	paths   []sdfpath.Path
	idx     map[sdfpath.Path]uint32
	records []pathRecord
}

func newPathTable(it *sdfpath.Interner, tokens *tokenTable) *pathTable {
	if it == nil {
		it = sdfpath.Default()
	}
	return &pathTable{interner: it, tokens: tokens, idx: make(map[sdfpath.Path]uint32)}
}

// loadPathTable reconstructs a pathTable from raw PATHS-section records
// read off disk (readPathsSection). Paths are left unresolved; at/build
// materializes each lazily and caches the result, so a detached Open still
// only pays interning cost for the paths actually referenced by a field.
func loadPathTable(it *sdfpath.Interner, tokens *tokenTable, records []pathRecord) *pathTable {
	if it == nil {
		it = sdfpath.Default()
	}
	return &pathTable{
		interner: it,
		tokens:   tokens,
		paths:    make([]sdfpath.Path, len(records)),
		records:  records,
	}
}

// indexOf returns p's dense index, interning its ancestor chain as needed.
// Only prim and single-level-property paths (with an optional trailing
// variant selection on the prim part) get a faithful record; any other shape
// is encoded as a prim-like leaf named by p.Name(), since it should never
// reach the PATHS section (spec.md §4.5.2's synthesized-spec invariant keeps
// Target/Mapper/Expression paths out of Document entirely).
func (t *pathTable) indexOf(p sdfpath.Path) uint32 {
	if i, ok := t.idx[p]; ok {
		return i
	}

	var parentIdx uint32
	var rec pathRecord

	switch {
	case p.IsPrimPropertyPath():
		parentIdx = t.indexOf(p.ParentPath())
		rec = pathRecord{parent: parentIdx, tag: tagPrimProperty, token: t.tokens.intern(p.Name())}
	case p.IsVariantSelectionPath():
		set, variant := p.VariantSelection()
		parentIdx = t.indexOf(p.ParentPath())
		rec = pathRecord{parent: parentIdx, tag: tagVariantSelection, token: t.tokens.intern(set), token2: t.tokens.intern(variant)}
	case p.IsPrimPath() && p != sdfpath.AbsoluteRootPath() && p != sdfpath.RelativeRootPath():
		parentIdx = t.indexOf(p.ParentPath())
		rec = pathRecord{parent: parentIdx, tag: tagPrim, token: t.tokens.intern(p.Name())}
	case p == sdfpath.AbsoluteRootPath():
		rec = pathRecord{parent: NullPathIndex, tag: tagRootAbs}
	case p == sdfpath.RelativeRootPath():
		rec = pathRecord{parent: NullPathIndex, tag: tagRootRel}
	default:
		// Should not occur given the synthesized-spec invariant; fall back
		// to treating it as an opaque prim-like leaf so encoding never
		// panics on an unexpected shape.
		parentIdx = t.indexOf(p.ParentPath())
		rec = pathRecord{parent: parentIdx, tag: tagPrim, token: t.tokens.intern(p.Name())}
	}

	i := uint32(len(t.paths))
	t.paths = append(t.paths, p)
	t.records = append(t.records, rec)
	t.idx[p] = i
	return i
}

// at reconstructs the Path at index i, building it from the root down on
// first access and caching it.
func (t *pathTable) at(i uint32) (sdfpath.Path, error) {
	if int(i) >= len(t.paths) {
		return sdfpath.EmptyPath, diag.Newf(diag.OutOfRange, "path index %d out of range (%d paths)", i, len(t.paths))
	}
	if t.paths[i] != sdfpath.EmptyPath {
		return t.paths[i], nil
	}
	p, err := t.build(i)
	if err == nil {
		t.paths[i] = p
	}
	return p, err
}

func (t *pathTable) build(i uint32) (sdfpath.Path, error) {
	rec := t.records[i]
	switch rec.tag {
	case tagRootAbs:
		return sdfpath.AbsoluteRootPath(), nil
	case tagRootRel:
		return sdfpath.RelativeRootPath(), nil
	case tagPrim:
		parent, err := t.at(rec.parent)
		if err != nil {
			return sdfpath.EmptyPath, err
		}
		return parent.AppendChild(t.interner, t.tokens.at(rec.token))
	case tagPrimProperty:
		parent, err := t.at(rec.parent)
		if err != nil {
			return sdfpath.EmptyPath, err
		}
		return parent.AppendProperty(t.interner, t.tokens.at(rec.token))
	case tagVariantSelection:
		parent, err := t.at(rec.parent)
		if err != nil {
			return sdfpath.EmptyPath, err
		}
		return parent.AppendVariantSelection(t.interner, t.tokens.at(rec.token), t.tokens.at(rec.token2))
	default:
		return sdfpath.EmptyPath, diag.Newf(diag.CorruptFile, "unknown path-node tag %d at index %d", rec.tag, i)
	}
}

