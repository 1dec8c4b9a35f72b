package sdfpath

import "unsafe"

// Equal reports pointer-identity equality, which is full path equality for
// interned paths (spec.md §3: "identity equality of handles implies path
// equality").
func (p Path) Equal(o Path) bool { return p == o }

// Hash returns an O(1) hash derived from the two interned pointers.
func (p Path) Hash() uint64 {
	h := uint64(uintptr(unsafe.Pointer(p.prim)))
	h = h*1099511628211 ^ uint64(uintptr(unsafe.Pointer(p.prop)))
	return h
}

// NewPrimPath interns a sequence of prim-name elements under the absolute
// or relative root, e.g. NewPrimPath(it, true, "World", "Char", "Arm").
func NewPrimPath(it *Interner, absolute bool, elements ...string) (Path, error) {
	if it == nil {
		it = Default()
	}
	p := RelativeRootPath()
	if absolute {
		p = AbsoluteRootPath()
	}
	for _, e := range elements {
		var err error
		p, err = p.AppendChild(it, e)
		if err != nil {
			return EmptyPath, err
		}
	}
	return p, nil
}
