package value

import (
	"fmt"
	"hash/maphash"
)

// Hasher lets a type opt into Value hashing without a RegisterType call,
// for types (like sdfpath.Path) that already carry an O(1) identity hash.
type Hasher interface {
	Hash() uint64
}

var scalarSeed = maphash.MakeSeed()

// builtinHash covers sdfpath.Path-shaped identity hashers plus Go's
// builtin comparable scalar kinds, so a Value holding a bare string or int
// is hashable without requiring every caller to RegisterType it first.
func builtinHash(v any) (uint64, bool) {
	if h, ok := v.(Hasher); ok {
		return h.Hash(), true
	}
	switch v.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		uintptr, float32, float64, string:
		var h maphash.Hash
		h.SetSeed(scalarSeed)
		fmt.Fprintf(&h, "%T:%v", v, v)
		return h.Sum64(), true
	default:
		return 0, false
	}
}
