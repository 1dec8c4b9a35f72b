package specstore

import (
	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// HasSpec reports whether a spec exists at path, synthesizing
// relationship-target and attribute-connection existence from their owning
// property's list-op field when path names one (spec.md §4.5.2).
func (s *Store) HasSpec(path sdfpath.Path) bool {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()
	if owner, target, ok := splitTargetPath(path); ok {
		return s.hasSynthesizedTarget(owner, target)
	}
	_, ok := s.specs[path]
	return ok
}

// GetSpecType reports path's spec type, or (SpecUnknown, false) if no spec
// (stored or synthesized) exists there.
func (s *Store) GetSpecType(path sdfpath.Path) (crate.SpecType, bool) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()
	if owner, target, ok := splitTargetPath(path); ok {
		return s.synthesizedSpecType(owner, target)
	}
	rec, ok := s.specs[path]
	if !ok {
		return crate.SpecUnknown, false
	}
	return rec.specType, true
}

// List returns the field names stored on path's spec. A synthesized
// target/connection spec never carries stored fields, so List succeeds with
// an empty, non-nil slice for one that exists.
func (s *Store) List(path sdfpath.Path) ([]string, bool) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()
	if owner, target, ok := splitTargetPath(path); ok {
		if !s.hasSynthesizedTarget(owner, target) {
			return nil, false
		}
		return []string{}, true
	}
	rec, ok := s.specs[path]
	if !ok {
		return nil, false
	}
	return rec.fields.names(), true
}

// Has reports whether path's spec carries a value for field.
func (s *Store) Has(path sdfpath.Path, field string) bool {
	_, ok := s.Get(path, field)
	return ok
}

// HasSpecAndField answers GetSpecType and Get's existence check in one
// locked pass (spec.md §4.5.1: "HasSpecAndField (one query returning spec
// type and field value)"). specExists is false iff no spec (stored or
// synthesized) exists at path at all; v and hasValue are meaningful only
// when specExists is true.
func (s *Store) HasSpecAndField(path sdfpath.Path, field string) (specType crate.SpecType, v value.Value, hasValue, specExists bool) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()

	if owner, target, ok := splitTargetPath(path); ok {
		st, ok := s.synthesizedSpecType(owner, target)
		if !ok {
			return crate.SpecUnknown, value.Empty(), false, false
		}
		return st, value.Empty(), false, true
	}

	rec, ok := s.specs[path]
	if !ok {
		return crate.SpecUnknown, value.Empty(), false, false
	}
	if cv, ok := childrenField(rec, field); ok {
		return rec.specType, cv, true, true
	}
	holder, ok := rec.fields.get(field)
	if !ok {
		return rec.specType, value.Empty(), false, true
	}
	val, err := holder.Resolve()
	if err != nil {
		diag.LogChain(s.log, err)
		return rec.specType, value.Empty(), false, true
	}
	return rec.specType, val, true, true
}

// Get returns the resolved value of field on path's spec, synthesizing the
// reserved relationshipTargetChildren/connectionChildren vectors when
// field names one (spec.md §4.5.2). A synthesized target/connection spec
// never carries fields and so never satisfies Get.
func (s *Store) Get(path sdfpath.Path, field string) (value.Value, bool) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()

	if path.IsTargetPath() {
		return value.Empty(), false
	}
	rec, ok := s.specs[path]
	if !ok {
		return value.Empty(), false
	}
	if v, ok := childrenField(rec, field); ok {
		return v, true
	}
	holder, ok := rec.fields.get(field)
	if !ok {
		return value.Empty(), false
	}
	v, err := holder.Resolve()
	if err != nil {
		diag.LogChain(s.log, err)
		return value.Empty(), false
	}
	return v, true
}

// Set assigns field on path's spec. Set on a synthesized target/connection
// path always fails with CodingError (spec.md §4.5.2 scenario 2); Set on a
// path with no spec fails with CodingError too — CreateSpec must run first.
func (s *Store) Set(path sdfpath.Path, field string, v value.Value) error {
	if path.IsTargetPath() {
		return diag.New(diag.CodingError, "cannot Set a field on a synthesized target/connection spec").With("path", path.String())
	}
	s.stateRW.Lock()
	defer s.stateRW.Unlock()
	rec, ok := s.specs[path]
	if !ok {
		return diag.Newf(diag.CodingError, "Set on nonexistent spec %s", path.String()).With("path", path.String())
	}
	rec.fields = rec.fields.set(field, v)
	return nil
}

// Erase removes field from path's spec. Erasing a field that is not present
// is a no-op, matching Has's false-means-absent semantics; erasing any
// field of a synthesized target/connection path fails with CodingError.
func (s *Store) Erase(path sdfpath.Path, field string) error {
	if path.IsTargetPath() {
		return diag.New(diag.CodingError, "cannot Erase a field on a synthesized target/connection spec").With("path", path.String())
	}
	s.stateRW.Lock()
	defer s.stateRW.Unlock()
	rec, ok := s.specs[path]
	if !ok {
		return diag.Newf(diag.CodingError, "Erase on nonexistent spec %s", path.String()).With("path", path.String())
	}
	rec.fields = rec.fields.erase(field)
	return nil
}

// CreateSpec adds an empty spec of the given type at path. Relationship-
// target and attribute-connection specs cannot be created directly — they
// only ever arise by synthesis from their owner's list-op field (spec.md
// §4.5.2) — and a spec already occupying path is a CodingError, not a
// silent overwrite.
func (s *Store) CreateSpec(path sdfpath.Path, specType crate.SpecType) error {
	if specType.IsSynthesizedOnly() {
		return diag.Newf(diag.CodingError, "cannot directly create a synthesized %s spec", specType).With("path", path.String())
	}
	s.stateRW.Lock()
	defer s.stateRW.Unlock()
	if _, exists := s.specs[path]; exists {
		return diag.Newf(diag.CodingError, "spec already exists at %s", path.String()).With("path", path.String())
	}
	s.specs[path] = &specRecord{specType: specType, fields: newFieldVector()}
	return nil
}

// EraseSpec removes the spec at path. A synthesized target/connection spec
// cannot be erased directly: erase the owning property's membership in its
// list-op field instead.
func (s *Store) EraseSpec(path sdfpath.Path) error {
	if path.IsTargetPath() {
		return diag.New(diag.CodingError, "cannot EraseSpec a synthesized target/connection spec").With("path", path.String())
	}
	s.stateRW.Lock()
	defer s.stateRW.Unlock()
	if _, ok := s.specs[path]; !ok {
		return diag.Newf(diag.CodingError, "no spec at %s to erase", path.String()).With("path", path.String())
	}
	delete(s.specs, path)
	return nil
}

// MoveSpec renames the spec at oldPath to newPath. When both endpoints are
// prim paths the move cascades over every descendant spec the way a
// namespace edit does in the original system — renaming /World/Char also
// carries /World/Char.xform and /World/Char/Hand along — using
// sdfpath.ReplacePrefix (fixTargetPaths=true, so a descendant relationship
// or connection embedding a target path back into the renamed subtree gets
// its embedded path fixed too) to rewrite each descendant's path. For any
// other pair of endpoints (property renames, variant selections) MoveSpec
// renames exactly the one named entry.
func (s *Store) MoveSpec(oldPath, newPath sdfpath.Path) error {
	if oldPath.IsTargetPath() || newPath.IsTargetPath() {
		return diag.New(diag.CodingError, "cannot MoveSpec a synthesized target/connection spec")
	}
	s.stateRW.Lock()
	defer s.stateRW.Unlock()

	rec, ok := s.specs[oldPath]
	if !ok {
		return diag.Newf(diag.CodingError, "no spec at %s to move", oldPath.String()).With("path", oldPath.String())
	}
	if _, exists := s.specs[newPath]; exists {
		return diag.Newf(diag.CodingError, "a spec already exists at destination %s", newPath.String()).With("path", newPath.String())
	}

	if !oldPath.IsPrimPath() || !newPath.IsPrimPath() {
		delete(s.specs, oldPath)
		s.specs[newPath] = rec
		return nil
	}

	type moveItem struct {
		from, to sdfpath.Path
		rec      *specRecord
	}
	var moves []moveItem
	for p, r := range s.specs {
		if p == oldPath || p.HasPrefix(oldPath) {
			np, err := sdfpath.ReplacePrefix(s.it, p, oldPath, newPath, true)
			if err != nil {
				return err
			}
			moves = append(moves, moveItem{from: p, to: np, rec: r})
		}
	}
	for _, m := range moves {
		if existing, exists := s.specs[m.to]; exists && existing != m.rec {
			return diag.Newf(diag.CodingError, "move would collide with an existing spec at %s", m.to.String()).With("path", m.to.String())
		}
	}
	for _, m := range moves {
		delete(s.specs, m.from)
	}
	for _, m := range moves {
		s.specs[m.to] = m.rec
	}
	return nil
}

// Visit invokes fn once per spec in unspecified order, including every
// synthesized relationship-target/connection spec, stopping early the
// moment fn returns false (spec.md §4.5.1: "iterate every spec... invoking
// a user callback that may abort traversal").
func (s *Store) Visit(fn func(path sdfpath.Path, specType crate.SpecType) bool) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()

	for p, rec := range s.specs {
		if !fn(p, rec.specType) {
			return
		}
		op, synthType, _, ok := ownerListOp(rec)
		if !ok {
			continue
		}
		for _, target := range op.Apply() {
			tp, err := p.AppendTarget(s.it, target)
			if err != nil {
				continue
			}
			if !fn(tp, synthType) {
				return
			}
		}
	}
}
