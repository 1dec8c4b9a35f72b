package crate

import (
	"sort"

	"github.com/edirooss/scenecore/pkg/value"
)

// TimeSample is one (time, value) pair in the public exchange format for
// the reserved `timeSamples` field (spec.md §4.5.3: "The public exchange
// format is an ordered time-to-value map"). Go has no native ordered map,
// so the exchange type is a time-sorted slice of pairs rather than a
// map[float64]value.Value — callers that want O(1) lookup by time build
// their own index from it.
type TimeSample struct {
	Time  float64
	Value value.Value
}

// TimeSampleSet is the public, ordered exchange form.
type TimeSampleSet []TimeSample

// timeSamplesField is the field's internal two-vector on-disk shape
// (spec.md §3 "Time samples": "a pair of (sorted-time-vector handle,
// value-vector)"; §4.5.3: "The stored field value for timeSamples is an
// internal two-vector structure {times, values} in sorted-time order").
type timeSamplesField struct {
	Times  []float64
	Values []value.Value
}

// ToSet converts the internal representation to the public exchange form.
// Conversion happens only on read (spec.md §4.5.3).
func (f timeSamplesField) ToSet() TimeSampleSet {
	out := make(TimeSampleSet, len(f.Times))
	for i, t := range f.Times {
		out[i] = TimeSample{Time: t, Value: f.Values[i]}
	}
	return out
}

// fromTimeSampleSet converts the public form back to the sorted internal
// two-vector form. Conversion happens only on write (spec.md §4.5.3).
func fromTimeSampleSet(s TimeSampleSet) timeSamplesField {
	sorted := make(TimeSampleSet, len(s))
	copy(sorted, s)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	f := timeSamplesField{
		Times:  make([]float64, len(sorted)),
		Values: make([]value.Value, len(sorted)),
	}
	for i, ts := range sorted {
		f.Times[i] = ts.Time
		f.Values[i] = ts.Value
	}
	return f
}

// Set inserts or replaces the sample at t (spec.md §4.5.3: "Adding a sample
// that already exists replaces the value").
func (s TimeSampleSet) Set(t float64, v value.Value) TimeSampleSet {
	for i := range s {
		if s[i].Time == t {
			s[i].Value = v
			return s
		}
	}
	s = append(s, TimeSample{Time: t, Value: v})
	sort.Slice(s, func(i, j int) bool { return s[i].Time < s[j].Time })
	return s
}

// Erase removes the sample at t, if present (spec.md §4.5.3: "removing the
// last sample removes the entire field" — callers check len(result)==0 to
// decide whether to erase the field itself).
func (s TimeSampleSet) Erase(t float64) TimeSampleSet {
	for i := range s {
		if s[i].Time == t {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Query returns the value at exactly t (spec.md scenario 3:
// "queryTimeSample(/A.attr, 0.5) returns false" for a non-existent time).
// It does not interpolate between samples; Bracketing reports the
// neighbouring sample times instead.
func (s TimeSampleSet) Query(t float64) (value.Value, bool) {
	for _, ts := range s {
		if ts.Time == t {
			return ts.Value, true
		}
	}
	return value.Empty(), false
}

// Bracketing returns the nearest sample at-or-before and at-or-after t,
// implementing spec.md §4.5.1's optional GetBracketingTimeSamples.
func (s TimeSampleSet) Bracketing(t float64) (lower, upper TimeSample, haveLower, haveUpper bool) {
	for _, ts := range s {
		if ts.Time <= t {
			lower, haveLower = ts, true
		}
		if ts.Time >= t && !haveUpper {
			upper, haveUpper = ts, true
		}
	}
	return
}
