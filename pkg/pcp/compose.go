package pcp

import (
	"sort"

	"github.com/edirooss/scenecore/pkg/sdfpath"
)

// Compose returns the mapping function that applies inner, then m: for any
// path p in inner's domain, m.Compose(inner).MapSourceToTarget(p) equals
// m.MapSourceToTarget(inner.MapSourceToTarget(p)) (spec.md §4.6).
func (m MappingFunction) Compose(inner MappingFunction) MappingFunction {
	if m.IsIdentity() {
		return inner
	}
	if inner.IsIdentity() {
		return m
	}

	var scratch []Pair
	contains := func(p Pair) bool {
		for _, q := range scratch {
			if q == p {
				return true
			}
		}
		return false
	}

	// Apply outer (m) to the output range of inner.
	for _, p := range inner.pairs {
		np := Pair{Source: p.Source, Target: m.MapSourceToTarget(p.Target)}
		if !contains(np) {
			scratch = append(scratch, np)
		}
	}
	if inner.hasRootIdentity {
		absRoot := sdfpath.AbsoluteRootPath()
		np := Pair{Source: absRoot, Target: m.MapSourceToTarget(absRoot)}
		if !contains(np) {
			scratch = append(scratch, np)
		}
	}

	// Apply the inverse of inner to the domain of m.
	for _, p := range m.pairs {
		src := inner.MapTargetToSource(p.Source)
		if src.IsEmpty() {
			continue
		}
		np := Pair{Source: src, Target: p.Target}
		if !contains(np) {
			scratch = append(scratch, np)
		}
	}
	if m.hasRootIdentity {
		absRoot := sdfpath.AbsoluteRootPath()
		src := inner.MapTargetToSource(absRoot)
		if !src.IsEmpty() {
			np := Pair{Source: src, Target: absRoot}
			if !contains(np) {
				scratch = append(scratch, np)
			}
		}
	}

	scratch = removeRedundant(scratch)
	sort.Slice(scratch, func(i, j int) bool { return pairOrder(scratch[i], scratch[j]) })

	hasRootIdentity := false
	absRoot := sdfpath.AbsoluteRootPath()
	if len(scratch) > 0 && scratch[0].Source == absRoot && scratch[0].Target == absRoot {
		scratch = scratch[1:]
		hasRootIdentity = true
	}

	return MappingFunction{
		pairs:           scratch,
		hasRootIdentity: hasRootIdentity,
		offset:          m.offset.Compose(inner.offset),
	}
}

// Inverse returns the mapping function that swaps m's source and target
// namespaces and inverts its layer offset.
func (m MappingFunction) Inverse() MappingFunction {
	inv := make([]Pair, len(m.pairs))
	for i, p := range m.pairs {
		inv[i] = Pair{Source: p.Target, Target: p.Source}
	}
	return MappingFunction{
		pairs:           inv,
		hasRootIdentity: m.hasRootIdentity,
		offset:          m.offset.Inverse(),
	}
}
