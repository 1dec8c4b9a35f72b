package value

import (
	"reflect"
	"sync"
)

type conversionKey struct{ from, to reflect.Type }

var conversions sync.Map // conversionKey -> func(any) any

// RegisterConversion registers a conversion used by Cast[To] whenever a
// Value holds a From (spec.md §4.3: "look up a registered conversion from
// held type to T").
func RegisterConversion[From, To any](fn func(From) To) {
	key := conversionKey{from: reflect.TypeFor[From](), to: reflect.TypeFor[To]()}
	conversions.Store(key, func(v any) any { return fn(v.(From)) })
}

func lookupConversion(from, to reflect.Type) (func(any) any, bool) {
	v, ok := conversions.Load(conversionKey{from: from, to: to})
	if !ok {
		return nil, false
	}
	return v.(func(any) any), true
}
