// Package vtdict implements the ordered string-keyed value dictionary
// from spec.md §4.4: a path-addressable
// string→value.Value map with lazy backing allocation, whole-tree and
// recursive overlay, and bottom-up empty-subdictionary cleanup on erase.
//
// The typed dynamic array itself (copy-on-write, per-element arithmetic)
// lives in pkg/value as value.Array[T]; vtdict only adds the path-addressed
// dictionary semantics that sit above it.
package vtdict

import (
	"strings"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/value"
)

// Dict is an ordered string→value.Value map that lazily allocates its
// backing storage — an empty Dict carries no heap allocation (spec.md
// §4.4) — and supports nested sub-dictionaries addressed by delimited path
// strings or pre-split element slices.
type Dict struct {
	m     map[string]value.Value
	order []string
}

// PathDelimiter separates path elements in the string form SplitPath turns
// into the element slices GetPath/SetPath/ErasePath take (e.g.
// "render:settings.resolution").
const PathDelimiter = "."

// IsEmpty reports whether d holds no entries, matching the "no heap
// allocation" guarantee: a Dict literal and an emptied Dict are both
// IsEmpty.
func (d *Dict) IsEmpty() bool { return len(d.m) == 0 }

// Len reports the number of top-level keys.
func (d *Dict) Len() int { return len(d.m) }

// Keys returns the dictionary's keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Get returns the value at key and whether it was present.
func (d *Dict) Get(key string) (value.Value, bool) {
	if d.m == nil {
		return value.Empty(), false
	}
	v, ok := d.m[key]
	return v, ok
}

// Set assigns v at key, allocating backing storage on first use.
func (d *Dict) Set(key string, v value.Value) {
	if d.m == nil {
		d.m = make(map[string]value.Value)
	}
	if _, exists := d.m[key]; !exists {
		d.order = append(d.order, key)
	}
	d.m[key] = v
}

// Erase removes key, reporting whether it was present.
func (d *Dict) Erase(key string) bool {
	if d.m == nil {
		return false
	}
	if _, ok := d.m[key]; !ok {
		return false
	}
	delete(d.m, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// GetSubdict returns the nested Dict at key, if key holds one.
func (d *Dict) GetSubdict(key string) (*Dict, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	sub, err := value.Get[*Dict](v)
	if err != nil {
		return nil, false
	}
	return sub, true
}

// SplitPath splits a delimited path string into elements, for callers that
// want to reuse an already-split path across multiple calls.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathDelimiter)
}

// GetPath descends through nested dictionaries following elems, returning
// the value at the final element (spec.md §4.4: "path-addressed get/set/
// erase ... descending through nested dictionaries at each level").
func (d *Dict) GetPath(elems ...string) (value.Value, bool) {
	if len(elems) == 0 {
		return value.Empty(), false
	}
	cur := d
	for _, e := range elems[:len(elems)-1] {
		next, ok := cur.GetSubdict(e)
		if !ok {
			return value.Empty(), false
		}
		cur = next
	}
	return cur.Get(elems[len(elems)-1])
}

// SetPath descends through elems, creating intermediate sub-dictionaries as
// required, and assigns v at the final element (spec.md §4.4 invariant:
// "path-addressed set creates intermediate dictionaries as required").
func (d *Dict) SetPath(v value.Value, elems ...string) error {
	if len(elems) == 0 {
		return diag.New(diag.CodingError, "SetPath requires at least one path element")
	}
	cur := d
	for _, e := range elems[:len(elems)-1] {
		sub, ok := cur.GetSubdict(e)
		if !ok {
			if existing, present := cur.Get(e); present && !existing.IsEmpty() {
				return diag.Newf(diag.CodingError, "path element %q is not a dictionary", e)
			}
			sub = &Dict{}
			cur.Set(e, value.New(sub))
		}
		cur = sub
	}
	cur.Set(elems[len(elems)-1], v)
	return nil
}

// ErasePath removes the value at the final element of elems, then removes
// any intermediate sub-dictionary that became empty as a result, walking
// back toward the root (spec.md §4.4 invariant: "path-addressed erase
// removes empty sub-dictionaries bottom-up").
func (d *Dict) ErasePath(elems ...string) bool {
	if len(elems) == 0 {
		return false
	}
	chain := make([]*Dict, 0, len(elems))
	cur := d
	for _, e := range elems[:len(elems)-1] {
		sub, ok := cur.GetSubdict(e)
		if !ok {
			return false
		}
		chain = append(chain, cur)
		cur = sub
	}
	if !cur.Erase(elems[len(elems)-1]) {
		return false
	}
	for i := len(chain) - 1; i >= 0; i-- {
		parent := chain[i]
		key := elems[i]
		sub, ok := parent.GetSubdict(key)
		if !ok || !sub.IsEmpty() {
			break
		}
		parent.Erase(key)
	}
	return true
}
