package crate

import "github.com/edirooss/scenecore/pkg/sdfpath"

// PathListOp is the list-op value shape used by relationship/connection
// target fields and (via PayloadListOp below) the payload field (spec.md
// glossary: "List op — an explicit or add/prepend/append/remove/delete-
// ordered set manipulation over a list of items").
type PathListOp struct {
	IsExplicit bool
	Explicit   []sdfpath.Path
	Prepended  []sdfpath.Path
	Appended   []sdfpath.Path
	Deleted    []sdfpath.Path
}

// IsEmpty reports whether the op carries no items at all.
func (op PathListOp) IsEmpty() bool {
	return len(op.Explicit) == 0 && len(op.Prepended) == 0 && len(op.Appended) == 0 && len(op.Deleted) == 0
}

// Contains reports whether p is a member of the op's effective set: in the
// explicit list if IsExplicit, or in prepended/appended otherwise (spec.md
// §4.5.2: "if it is explicit, check membership in the explicit set;
// otherwise check membership in added/prepended/appended sets").
func (op PathListOp) Contains(p sdfpath.Path) bool {
	if op.IsExplicit {
		return containsPath(op.Explicit, p)
	}
	return containsPath(op.Prepended, p) || containsPath(op.Appended, p)
}

// Apply produces the in-order result of applying op to an (empty) base
// list, used to synthesize `relationshipTargetChildren`/`connectionChildren`
// (spec.md §4.5.2: "synthesize a vector by applying the list-op in-order").
func (op PathListOp) Apply() []sdfpath.Path {
	if op.IsExplicit {
		out := make([]sdfpath.Path, len(op.Explicit))
		copy(out, op.Explicit)
		return out
	}
	var out []sdfpath.Path
	out = append(out, op.Prepended...)
	out = append(out, op.Appended...)
	for _, d := range op.Deleted {
		out = removePath(out, d)
	}
	return out
}

func containsPath(list []sdfpath.Path, p sdfpath.Path) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

func removePath(list []sdfpath.Path, p sdfpath.Path) []sdfpath.Path {
	out := list[:0]
	for _, x := range list {
		if x != p {
			out = append(out, x)
		}
	}
	return out
}

// Payload is a single (asset path, prim path) payload reference.
type Payload struct {
	AssetPath  string
	TargetPath sdfpath.Path
}

// PayloadListOp is the general list-op shape exposed for the payload field
// (spec.md §4.5.4: "The payload field is exposed as a path-list-op").
type PayloadListOp struct {
	IsExplicit bool
	Explicit   []Payload
	Prepended  []Payload
	Appended   []Payload
	Deleted    []Payload
}

// CollapseToCompact reduces op to the single-payload on-disk form used by
// writers below featurePayloadListOp.minVersion (spec.md §4.5.4: "a list-op
// that is explicit with zero or one items is collapsed back to the
// compact form"). ok is false if op cannot be represented compactly.
func (op PayloadListOp) CollapseToCompact() (Payload, bool, bool) {
	if !op.IsExplicit || len(op.Prepended) != 0 || len(op.Appended) != 0 || len(op.Deleted) != 0 {
		return Payload{}, false, false
	}
	switch len(op.Explicit) {
	case 0:
		return Payload{}, true, true // explicit-empty
	case 1:
		return op.Explicit[0], false, true
	default:
		return Payload{}, false, false
	}
}

// PayloadListOpFromCompact lifts a stored single-payload record into a
// list-op (spec.md §4.5.4: "On read, a stored single payload is lifted to
// a list-op (empty payload -> explicit-empty list; non-empty -> explicit
// list of one)").
func PayloadListOpFromCompact(p Payload, empty bool) PayloadListOp {
	if empty {
		return PayloadListOp{IsExplicit: true}
	}
	return PayloadListOp{IsExplicit: true, Explicit: []Payload{p}}
}
