package pcp

import "github.com/edirooss/scenecore/pkg/sdfpath"

// mapOne implements the shared core of MapSourceToTarget and
// MapTargetToSource (spec.md §4.6): find the longest matching prefix, apply
// the replacement, then reject the result unless it is the unique
// bijective inverse — otherwise "outside domain" is signalled by the empty
// path.
func mapOne(path sdfpath.Path, vec []Pair, hasRootIdentity, invert bool) sdfpath.Path {
	bm := bestSourceMatch(path, vec, -1, invert, 0)

	var result sdfpath.Path
	switch {
	case bm < 0:
		if hasRootIdentity {
			result = path
		}
	case !invert && vec[bm].isBlock():
		// A blocker cancels the whole subtree under its source, not just
		// the source path itself.
		result = sdfpath.EmptyPath
	case invert:
		// fixTargetPaths=true: a relationship target embedded anywhere in
		// path's property part must itself get remapped, not just path's
		// own prefix.
		result, _ = sdfpath.ReplacePrefix(nil, path, vec[bm].Target, vec[bm].Source, true)
	default:
		result, _ = sdfpath.ReplacePrefix(nil, path, vec[bm].Source, vec[bm].Target, true)
	}

	if result.IsEmpty() {
		return result
	}
	if hasBetterTargetMatch(result, vec, bm, invert) {
		return sdfpath.EmptyPath
	}
	return result
}

// MapSourceToTarget maps path from m's source namespace into its target
// namespace, returning the empty path if path is outside m's domain or a
// blocker applies (spec.md §4.6).
func (m MappingFunction) MapSourceToTarget(path sdfpath.Path) sdfpath.Path {
	return mapOne(path, m.pairs, m.hasRootIdentity, false)
}

// MapTargetToSource maps path from m's target namespace back into its
// source namespace.
func (m MappingFunction) MapTargetToSource(path sdfpath.Path) sdfpath.Path {
	return mapOne(path, m.pairs, m.hasRootIdentity, true)
}
