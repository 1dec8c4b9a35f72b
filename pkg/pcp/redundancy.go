package pcp

import (
	"go.uber.org/zap"

	"github.com/edirooss/scenecore/pkg/sdfpath"
)

// bestSourceMatch finds the pair in vec (excluding skip, if >= 0) whose
// source (or, if invert, target) is the longest prefix of path, among
// those with at least minElementCount elements. Returns -1 if none match.
func bestSourceMatch(path sdfpath.Path, vec []Pair, skip int, invert bool, minElementCount int) int {
	best := -1
	bestCount := minElementCount
	for i, p := range vec {
		if i == skip {
			continue
		}
		source := p.Source
		if invert {
			source = p.Target
		}
		if source.IsEmpty() {
			continue
		}
		count := source.ElementCount()
		if count >= bestCount && path.HasPrefix(source) {
			bestCount = count
			best = i
		}
	}
	return best
}

// hasBetterTargetMatch reports whether some pair in vec maps targetPath
// back through a longer (more specific) prefix than bestSourceMatch's
// counterpart side, which would break the bijection bestSourceMatch
// otherwise establishes.
func hasBetterTargetMatch(targetPath sdfpath.Path, vec []Pair, bestIdx int, invert bool) bool {
	minCount := 0
	if bestIdx >= 0 {
		counterpart := vec[bestIdx].Target
		if invert {
			counterpart = vec[bestIdx].Source
		}
		minCount = counterpart.ElementCount()
	}
	m := bestSourceMatch(targetPath, vec, -1, !invert, minCount)
	return m >= 0 && m != bestIdx
}

// isRedundant reports whether vec[i] can be dropped from vec without
// changing the semantics of the mapping it participates in (spec.md §4.6).
func isRedundant(vec []Pair, i int) bool {
	entry := vec[i]

	// A pair sharing a source, or (for a non-blocker) a target, with an
	// earlier pair makes the mapping ambiguous. Rather than aborting the
	// whole canonicalization, log it as a coding error and treat the later
	// entry as redundant so it gets dropped like any other.
	for j := 0; j < i; j++ {
		other := vec[j]
		if entry.Source == other.Source {
			mappingLogger.Error("mapping has two entries with the same source",
				zap.String("source", entry.Source.String()))
			return true
		}
		if !entry.isBlock() && entry.Target == other.Target {
			mappingLogger.Error("mapping has two entries with the same target",
				zap.String("target", entry.Target.String()))
			return true
		}
	}

	if entry.isBlock() {
		// A blocker is redundant if the source wouldn't map even without it.
		bm := bestSourceMatch(entry.Source.ParentPath(), vec, i, false, 0)
		if bm < 0 || vec[bm].isBlock() {
			return true
		}
		targetPath, err := sdfpath.ReplacePrefix(nil, entry.Source, vec[bm].Source, vec[bm].Target, true)
		if err != nil {
			return false
		}
		return hasBetterTargetMatch(targetPath, vec, bm, false)
	}

	// A normal pair can only be redundant if it preserves the element's own
	// name when mapped (otherwise it renames, which no ancestor mapping
	// could reproduce).
	if entry.Source.Name() != entry.Target.Name() {
		return false
	}

	bm := bestSourceMatch(entry.Source.ParentPath(), vec, i, false, 0)
	if bm < 0 || vec[bm].isBlock() {
		return false
	}

	if (entry.Target.ElementCount() - vec[bm].Target.ElementCount()) !=
		(entry.Source.ElementCount() - vec[bm].Source.ElementCount()) {
		return false
	}

	sourceAncestor := entry.Source.ParentPath()
	targetAncestor := entry.Target.ParentPath()
	for sourceAncestor != vec[bm].Source {
		if sourceAncestor.Name() != targetAncestor.Name() {
			return false
		}
		sourceAncestor = sourceAncestor.ParentPath()
		targetAncestor = targetAncestor.ParentPath()
	}
	if vec[bm].Target != targetAncestor {
		return false
	}

	return !hasBetterTargetMatch(entry.Target.ParentPath(), vec, bm, false)
}

// removeRedundant repeatedly scans vec for a redundant entry and drops it
// until none remain, mirroring _Canonicalize's single-pass swap-to-back
// removal (order doesn't matter here since the caller re-sorts afterward).
func removeRedundant(vec []Pair) []Pair {
	for i := 0; i < len(vec); {
		if isRedundant(vec, i) {
			vec[i] = vec[len(vec)-1]
			vec = vec[:len(vec)-1]
			continue
		}
		i++
	}
	return vec
}
