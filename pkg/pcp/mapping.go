// Package pcp implements the mapping function described in spec.md §4.6: a
// canonicalized, bijective-by-construction namespace translation between a
// source and a target path tree, used to express a namespace-translating
// arc between two layer stacks.
package pcp

import (
	"sort"

	"go.uber.org/zap"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/sdfpath"
)

var mappingLogger = zap.NewNop()

// SetLogger installs the logger used for non-fatal mapping-function
// diagnostics (a redundant duplicate source/target dropped during
// canonicalization). Grounded on the teacher's log.Named("subsystem")
// convention, the same pattern sdfpath.SetLogger uses; defaults to a no-op
// logger.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	mappingLogger = log.Named("pcp")
}

// LayerOffset is an affine time transform (scale, offset) carried alongside
// a MappingFunction's path translation.
type LayerOffset struct {
	Scale  float64
	Offset float64
}

// Identity is the no-op layer offset.
var Identity = LayerOffset{Scale: 1, Offset: 0}

// IsIdentity reports whether o performs no time transform at all.
func (o LayerOffset) IsIdentity() bool { return o.Scale == 1 && o.Offset == 0 }

// Compose returns the offset equivalent to applying inner then o, i.e. for
// time t, o.Compose(inner).Apply(t) == o.Apply(inner.Apply(t)).
func (o LayerOffset) Compose(inner LayerOffset) LayerOffset {
	return LayerOffset{
		Scale:  o.Scale * inner.Scale,
		Offset: o.Scale*inner.Offset + o.Offset,
	}
}

// Inverse returns the offset that undoes o.
func (o LayerOffset) Inverse() LayerOffset {
	if o.Scale == 0 {
		return LayerOffset{}
	}
	return LayerOffset{Scale: 1 / o.Scale, Offset: -o.Offset / o.Scale}
}

// Apply maps t through the offset.
func (o LayerOffset) Apply(t float64) float64 { return o.Scale*t + o.Offset }

// Pair is one source-to-target path correspondence. A Pair whose Target is
// the empty path is a blocker: it marks Source as unmapped even though an
// ancestor mapping would otherwise translate it (spec.md §4.6).
type Pair struct {
	Source sdfpath.Path
	Target sdfpath.Path
}

func (p Pair) isBlock() bool { return p.Target.IsEmpty() }

// MappingFunction is the canonicalized result of Create: a deduplicated,
// non-redundant set of Pairs, an optional root-identity flag (kept out of
// the pair set since (/, /) is the overwhelmingly common case and most
// mapping functions are just that single entry; see DESIGN.md), and a
// LayerOffset.
type MappingFunction struct {
	pairs           []Pair
	hasRootIdentity bool
	offset          LayerOffset
}

// IdentityMappingFunction is the mapping function that translates every
// path to itself under an identity time offset.
func IdentityMappingFunction() MappingFunction {
	return MappingFunction{hasRootIdentity: true, offset: Identity}
}

// IsIdentity reports whether m performs no path or time translation at all.
func (m MappingFunction) IsIdentity() bool {
	return len(m.pairs) == 0 && m.hasRootIdentity && m.offset.IsIdentity()
}

// HasRootIdentity reports whether m maps the absolute root to itself.
func (m MappingFunction) HasRootIdentity() bool { return m.hasRootIdentity }

// Offset returns m's layer offset.
func (m MappingFunction) Offset() LayerOffset { return m.offset }

// Pairs returns m's canonicalized pair set, excluding the root-identity
// pair (use HasRootIdentity to query that separately, matching how Create
// extracts it per spec.md §4.6).
func (m MappingFunction) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

func isValidMapPath(p sdfpath.Path) bool {
	if !p.IsAbsolutePath() {
		return false
	}
	return p == sdfpath.AbsoluteRootPath() || p.IsPrimPath() || p.IsVariantSelectionPath()
}

// Create canonicalizes pairs into a MappingFunction, per spec.md §4.6:
// endpoints must be absolute prim (or prim-variant-selection) paths, except
// a Pair's Target may be empty to denote a blocker. A pair sharing a source
// (or, for non-blocker pairs, a target) with an earlier pair is a coding
// error that gets logged and dropped rather than aborting the whole call —
// mirroring original_source/pxr/usd/pcp/mapFunction.cpp's _IsRedundant,
// which TF_CODING_ERRORs on a trivial dupe but still returns true so
// _Canonicalize prunes just that one entry. Redundant pairs and redundant
// blockers are pruned the same way, and a literal (/, /) pair is extracted
// into the root-identity flag instead of being kept in the stored set.
func Create(pairs []Pair, offset LayerOffset) (MappingFunction, error) {
	absRoot := sdfpath.AbsoluteRootPath()
	if len(pairs) == 1 && offset.IsIdentity() && pairs[0].Source == absRoot && pairs[0].Target == absRoot {
		return IdentityMappingFunction(), nil
	}

	for _, p := range pairs {
		if !isValidMapPath(p.Source) || (!p.isBlock() && !isValidMapPath(p.Target)) {
			return MappingFunction{}, diag.Newf(diag.InvalidPath,
				"mapping of %q to %q is invalid", p.Source.String(), p.Target.String())
		}
	}

	vec := make([]Pair, len(pairs))
	copy(vec, pairs)

	vec = removeRedundant(vec)
	sort.Slice(vec, func(i, j int) bool { return pairOrder(vec[i], vec[j]) })

	hasRootIdentity := false
	if len(vec) > 0 && vec[0].Source == absRoot && vec[0].Target == absRoot {
		vec = vec[1:]
		hasRootIdentity = true
	}

	return MappingFunction{pairs: vec, hasRootIdentity: hasRootIdentity, offset: offset}, nil
}

// pairOrder implements _PathPairOrder: the root-identity pair sorts first,
// otherwise order by source then by target.
func pairOrder(a, b Pair) bool {
	absRoot := sdfpath.AbsoluteRootPath()
	if a == b {
		return false
	}
	if a.Source == absRoot && a.Target == absRoot {
		return true
	}
	if b.Source == absRoot && b.Target == absRoot {
		return false
	}
	if sdfpath.Less(a.Source, b.Source) {
		return true
	}
	if a.Source == b.Source {
		return sdfpath.Less(a.Target, b.Target)
	}
	return false
}
