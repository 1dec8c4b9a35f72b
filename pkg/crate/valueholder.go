package crate

import "github.com/edirooss/scenecore/pkg/value"

// ValueHolder defers materializing a field's value.Value until a caller
// actually asks for it (spec.md §4.5.5: "Values for non-inline
// representations are unpacked on demand; the spec-store wraps them in the
// value container as opaque reference objects. A Get that encounters such
// an object unpacks it through the reader."). Inline representations
// (bools, small ints, tokens, paths, string-table references) are cheap
// enough that eagerValue always resolves instantly; only boxed values
// (Int64, Double, PathListOp, TimeSamples, Dict) benefit from deferring
// through a non-detached reader's backing file.
type ValueHolder interface {
	Resolve() (value.Value, error)
}

// eagerValue wraps an already-materialized value.Value — used for every
// field in detached mode (spec.md §4.5.1: "if detached, copy out all
// referenced bytes") and by Eager callers; a non-detached Open wraps every
// field, inline or boxed, in a lazyValue instead.
type eagerValue struct{ v value.Value }

func (e eagerValue) Resolve() (value.Value, error) { return e.v, nil }

// Eager wraps v as an already-resolved ValueHolder.
func Eager(v value.Value) ValueHolder { return eagerValue{v: v} }

// lazyValue defers resolution to a reader-provided unpacking function,
// resolving the byte range at rep's offset the first time Resolve is
// called and caching the result (spec.md §4.5.5: "Time-sample arrays
// defer unpacking both of their components until queried, and then only
// the component requested" — this port resolves a lazy field's value as a
// whole rather than per-component).
type lazyValue struct {
	rep    ValueRep
	unpack func(ValueRep) (value.Value, error)

	resolved bool
	cached   value.Value
	cacheErr error
}

func (l *lazyValue) Resolve() (value.Value, error) {
	if l.resolved {
		return l.cached, l.cacheErr
	}
	l.cached, l.cacheErr = l.unpack(l.rep)
	l.resolved = true
	return l.cached, l.cacheErr
}
