package specstore

import (
	"sort"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// getTimeSamples returns the decoded timeSamples field on path, or
// (nil, false) if the field (or the spec itself) is absent.
func (s *Store) getTimeSamples(path sdfpath.Path) (crate.TimeSampleSet, bool) {
	v, ok := s.Get(path, crate.FieldTimeSamples)
	if !ok {
		return nil, false
	}
	ts, err := value.Get[crate.TimeSampleSet](v)
	if err != nil {
		return nil, false
	}
	return ts, true
}

// ListTimeSamplesForPath returns the sorted sample times stored at path, or
// nil if path has no timeSamples field.
func (s *Store) ListTimeSamplesForPath(path sdfpath.Path) []float64 {
	ts, ok := s.getTimeSamples(path)
	if !ok {
		return nil
	}
	out := make([]float64, len(ts))
	for i, x := range ts {
		out[i] = x.Time
	}
	return out
}

// GetNumTimeSamplesForPath reports how many samples path's timeSamples
// field carries.
func (s *Store) GetNumTimeSamplesForPath(path sdfpath.Path) int {
	ts, ok := s.getTimeSamples(path)
	if !ok {
		return 0
	}
	return len(ts)
}

// GetBracketingTimeSamples returns the nearest sample at-or-before and
// at-or-after t, implementing spec.md §4.5.1's optional
// GetBracketingTimeSamples(Path)?.
func (s *Store) GetBracketingTimeSamples(path sdfpath.Path, t float64) (lower, upper float64, hasLower, hasUpper bool) {
	ts, ok := s.getTimeSamples(path)
	if !ok {
		return 0, 0, false, false
	}
	l, u, hl, hu := ts.Bracketing(t)
	return l.Time, u.Time, hl, hu
}

// QueryTimeSample returns the value stored at exactly t on path, per
// spec.md scenario 3.
func (s *Store) QueryTimeSample(path sdfpath.Path, t float64) (value.Value, bool) {
	ts, ok := s.getTimeSamples(path)
	if !ok {
		return value.Empty(), false
	}
	return ts.Query(t)
}

// SetTimeSample inserts or replaces the sample at t on path (spec.md
// §4.5.3: "Adding a sample that already exists replaces the value"). path
// must already have a spec; SetTimeSample does not implicitly CreateSpec.
func (s *Store) SetTimeSample(path sdfpath.Path, t float64, v value.Value) error {
	if path.IsTargetPath() {
		return diag.New(diag.CodingError, "cannot set a time sample on a synthesized target/connection spec").With("path", path.String())
	}
	cur, _ := s.getTimeSamples(path)
	cur = cur.Set(t, v)
	return s.Set(path, crate.FieldTimeSamples, value.New(cur))
}

// EraseTimeSample removes the sample at t on path. Removing the last
// remaining sample removes the timeSamples field entirely (spec.md §4.5.3).
// Erasing a time that is not present is a no-op.
func (s *Store) EraseTimeSample(path sdfpath.Path, t float64) error {
	cur, ok := s.getTimeSamples(path)
	if !ok {
		return nil
	}
	cur = cur.Erase(t)
	if len(cur) == 0 {
		return s.Erase(path, crate.FieldTimeSamples)
	}
	return s.Set(path, crate.FieldTimeSamples, value.New(cur))
}

// ListAllTimeSamples returns the sorted union of every sample time across
// every spec in the store carrying a timeSamples field.
func (s *Store) ListAllTimeSamples() []float64 {
	s.stateRW.RLock()
	seen := make(map[float64]struct{})
	for _, rec := range s.specs {
		holder, ok := rec.fields.get(crate.FieldTimeSamples)
		if !ok {
			continue
		}
		v, err := holder.Resolve()
		if err != nil {
			continue
		}
		ts, err := value.Get[crate.TimeSampleSet](v)
		if err != nil {
			continue
		}
		for _, x := range ts {
			seen[x.Time] = struct{}{}
		}
	}
	s.stateRW.RUnlock()

	out := make([]float64, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}
