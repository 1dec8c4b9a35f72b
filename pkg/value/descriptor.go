// Package value implements the erased, copyable value container from
// spec.md §4.3: a single type that can hold arbitrary scene data with
// uniform copy, hash, equality, typed-get, and typed-swap operations, plus
// the copy-on-write Array from spec.md §4.4.
//
// spec.md describes a C++ representation — a pointer-sized local-storage
// area, a tagged descriptor pointer, and two-bit flags distinguishing
// local/trivial/proxy storage — built to avoid allocating for small
// trivially-copyable payloads and to let one type hold any C++ type
// uniformly. Go's `any` already does both jobs: the runtime stores small
// scalar payloads without a secondary heap box in common cases, and the
// garbage collector removes the need for the refcounted "remote storage
// box" spec.md describes for everything else. Value therefore wraps `any`
// directly; see DESIGN.md for the full discussion of this simplification.
// The typed surface spec.md specifies — Holds[T], Get[T], Cast[T], Swap,
// Hash, Equal — is preserved exactly.
package value

import (
	"reflect"
	"sync"
)

// Descriptor is the per-type function table from spec.md §4.3: "one static
// instance per type [holding] function pointers for ... hash, equality,
// ... [and] default value". Types that never register a Descriptor still
// work with Value — they are hashable only if they implement Hasher or are
// a builtin scalar kind, and Get[T] falls back to T's Go zero value
// instead of a registered default.
type Descriptor struct {
	Type         reflect.Type
	Hashable     bool
	Hash         func(v any) uint64
	Equal        func(a, b any) bool
	DefaultValue func() any
}

var registry sync.Map // reflect.Type -> *Descriptor

func descriptorFor(t reflect.Type) *Descriptor {
	v, ok := registry.Load(t)
	if !ok {
		return nil
	}
	return v.(*Descriptor)
}

// RegisterDescriptor installs d for d.Type. Grounded on spec.md §4.3's
// "per-type extension point" for default-value factories, generalized to
// cover the hash/equal hooks too.
func RegisterDescriptor(d *Descriptor) {
	registry.Store(d.Type, d)
}

// RegisterType is the generic convenience most callers use instead of
// building a Descriptor by hand. Any of hash, equal, or def may be nil to
// leave that capability unregistered.
func RegisterType[T any](hash func(T) uint64, equal func(a, b T) bool, def func() T) {
	t := reflect.TypeFor[T]()
	d := &Descriptor{Type: t}
	if hash != nil {
		d.Hashable = true
		d.Hash = func(v any) uint64 { return hash(v.(T)) }
	}
	if equal != nil {
		d.Equal = func(a, b any) bool { return equal(a.(T), b.(T)) }
	}
	if def != nil {
		d.DefaultValue = func() any { return def() }
	}
	RegisterDescriptor(d)
}
