package value

import "reflect"

// Value is an erased, copyable container for arbitrary typed scene data
// (spec.md §3 "Value", §4.3).
type Value struct {
	v any
}

// Empty returns the zero Value, holding nothing.
func Empty() Value { return Value{} }

// New wraps v in a Value. Assignment from any T is just construction in
// Go: there is no separate local/trivial byte-copy path to special-case
// (spec.md §4.3 "Assignment from any T") since `any` already copies small
// scalars without aliasing.
func New(v any) Value { return Value{v: v} }

// IsEmpty reports whether v holds nothing.
func (v Value) IsEmpty() bool { return v.v == nil }

// Interface returns the held value as any, or nil if empty.
func (v Value) Interface() any { return v.v }

// TypeName returns the held type's name, or "" if empty.
func (v Value) TypeName() string {
	if v.v == nil {
		return ""
	}
	return reflect.TypeOf(v.v).String()
}

// Holds reports whether v currently holds a T (spec.md §4.3 "IsHolding<T>:
// compare the descriptor's type_info with typeid(T)").
func Holds[T any](v Value) bool {
	_, ok := v.v.(T)
	return ok
}

// Get returns the held T. If v does not hold a T, it returns T's
// registered default value (or T's Go zero value if none is registered)
// together with a TypeMismatch error, per spec.md §4.3 "Get<T>: if holding
// T, return a reference into storage; otherwise invoke the registered
// default-value factory for T and report an error."
func Get[T any](v Value) (T, error) {
	if t, ok := v.v.(T); ok {
		return t, nil
	}
	want := reflect.TypeFor[T]()
	var zero T
	if d := descriptorFor(want); d != nil && d.DefaultValue != nil {
		if dv, ok := d.DefaultValue().(T); ok {
			zero = dv
		}
	}
	return zero, newTypeMismatch(v.TypeName(), want.String())
}

// Cast applies a registered conversion from v's held type to T (spec.md
// §4.3 "Cast<T>: look up a registered conversion from held type to T;
// apply it; on failure yield empty"). Casting to the already-held type
// always succeeds without consulting the registry.
func Cast[T any](v Value) (T, bool) {
	if t, ok := v.v.(T); ok {
		return t, true
	}
	var zero T
	if v.v == nil {
		return zero, false
	}
	from := reflect.TypeOf(v.v)
	to := reflect.TypeFor[T]()
	conv, ok := lookupConversion(from, to)
	if !ok {
		return zero, false
	}
	out, ok := conv(v.v).(T)
	if !ok {
		return zero, false
	}
	return out, true
}

// Swap exchanges the contents of v and o in place (spec.md §4.3 "Swap:
// invoke type-specific swap via descriptor" — in Go, swapping the held
// `any` is always sufficient and needs no per-type hook).
func (v *Value) Swap(o *Value) {
	v.v, o.v = o.v, v.v
}

// Hash returns v's hash and whether the held type advertises hashability
// (spec.md §4.3: "only valid when the held type advertises hashability;
// otherwise hash reports an error and returns zero"). Types implementing
// Hasher, or one of Go's builtin comparable scalar kinds, are hashable
// without registration; anything else needs a RegisterType hash hook.
func (v Value) Hash() (uint64, bool) {
	if v.v == nil {
		return 0, true
	}
	if d := descriptorFor(reflect.TypeOf(v.v)); d != nil && d.Hashable {
		return d.Hash(v.v), true
	}
	return builtinHash(v.v)
}

// Equal compares two values for equality. spec.md §4.3 carves out that
// "equality between a proxy and its underlying object is not performed";
// this port does not implement spec.md §9's value-proxy mechanism at all
// (see DESIGN.md), so that carve-out does not apply here. Values of
// differing held type are always unequal.
func (v Value) Equal(o Value) bool {
	if v.v == nil || o.v == nil {
		return v.v == nil && o.v == nil
	}
	t := reflect.TypeOf(v.v)
	if t != reflect.TypeOf(o.v) {
		return false
	}
	if d := descriptorFor(t); d != nil && d.Equal != nil {
		return d.Equal(v.v, o.v)
	}
	return reflect.DeepEqual(v.v, o.v)
}
