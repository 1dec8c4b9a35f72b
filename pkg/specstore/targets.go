package specstore

import (
	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// listOpFieldFor reports the reserved field name, synthesized spec type, and
// reserved children token that apply to an owning spec of type t, per
// spec.md §4.5.2. Only Relationship (targetPaths) and Attribute
// (connectionPaths) owners carry a synthesizable target namespace.
func listOpFieldFor(t crate.SpecType) (fieldName string, synthType crate.SpecType, childToken string, ok bool) {
	switch t {
	case crate.SpecRelationship:
		return crate.FieldTargetPaths, crate.SpecRelationshipTarget, crate.TokenRelationshipTargetChildren, true
	case crate.SpecAttribute:
		return crate.FieldConnectionPaths, crate.SpecConnection, crate.TokenConnectionChildren, true
	default:
		return "", crate.SpecUnknown, "", false
	}
}

// splitTargetPath reports p's owning property path and embedded target,
// when p is itself a relationship-target or attribute-connection path.
func splitTargetPath(p sdfpath.Path) (owner, target sdfpath.Path, ok bool) {
	target, ok = p.Target()
	if !ok {
		return sdfpath.EmptyPath, sdfpath.EmptyPath, false
	}
	return p.ParentPath(), target, true
}

// ownerListOp reads and decodes rec's reserved list-op field, returning the
// zero PathListOp (which Contains treats as empty) if the field is absent
// or the owner's spec type carries no synthesizable namespace at all.
func ownerListOp(rec *specRecord) (crate.PathListOp, crate.SpecType, string, bool) {
	fieldName, synthType, childToken, ok := listOpFieldFor(rec.specType)
	if !ok {
		return crate.PathListOp{}, crate.SpecUnknown, "", false
	}
	holder, ok := rec.fields.get(fieldName)
	if !ok {
		return crate.PathListOp{}, synthType, childToken, true
	}
	v, err := holder.Resolve()
	if err != nil {
		return crate.PathListOp{}, synthType, childToken, true
	}
	op, err := value.Get[crate.PathListOp](v)
	if err != nil {
		return crate.PathListOp{}, synthType, childToken, true
	}
	return op, synthType, childToken, true
}

// hasSynthesizedTarget reports whether owner's list-op field names target
// (spec.md §4.5.2: "if it is explicit, check membership in the explicit
// set; otherwise check membership in added/prepended/appended sets" — both
// rules live in PathListOp.Contains).
func (s *Store) hasSynthesizedTarget(owner, target sdfpath.Path) bool {
	rec, ok := s.specs[owner]
	if !ok {
		return false
	}
	op, _, _, ok := ownerListOp(rec)
	if !ok {
		return false
	}
	return op.Contains(target)
}

// synthesizedSpecType reports the synthesized spec type of the target path
// (owner, target), if target is actually named by owner's list-op.
func (s *Store) synthesizedSpecType(owner, target sdfpath.Path) (crate.SpecType, bool) {
	rec, ok := s.specs[owner]
	if !ok {
		return crate.SpecUnknown, false
	}
	op, synthType, _, ok := ownerListOp(rec)
	if !ok || !op.Contains(target) {
		return crate.SpecUnknown, false
	}
	return synthType, true
}

// childrenField resolves a reserved relationshipTargetChildren /
// connectionChildren query on an owning property spec by applying its
// list-op in order (spec.md §4.5.2: "Children queries for the reserved
// tokens... synthesize a vector by applying the list-op in-order").
func childrenField(rec *specRecord, token string) (value.Value, bool) {
	_, _, childToken, ok := listOpFieldFor(rec.specType)
	if !ok || token != childToken {
		return value.Empty(), false
	}
	op, _, _, ok := ownerListOp(rec)
	if !ok {
		return value.Empty(), false
	}
	return value.New(op.Apply()), true
}
