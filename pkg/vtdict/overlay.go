package vtdict

import "github.com/edirooss/scenecore/pkg/value"

// Overlay composes d (the "stronger" dictionary) over weaker, returning a
// new Dict (spec.md §4.4: "whole-tree overlay by a 'weaker' dictionary,
// with or without type coercion of the weaker side"). Every key from
// weaker appears in the result unless d already supplies it. When
// recursive is true, a key present as a sub-dictionary on both sides is
// merged by recursing rather than d's sub-dictionary replacing weaker's
// outright ("recursive overlay that composes nested dictionaries rather
// than replacing them"). coerce, if non-nil, is applied to every value
// contributed purely by weaker (no matching key in d); returning ok=false
// drops that key from the result entirely.
func Overlay(d, weaker *Dict, recursive bool, coerce func(key string, v value.Value) (value.Value, bool)) *Dict {
	out := &Dict{}
	dKeys := make(map[string]bool, d.Len())
	for _, k := range d.Keys() {
		dKeys[k] = true
	}

	for _, k := range weaker.Keys() {
		if dKeys[k] {
			continue
		}
		wv, _ := weaker.Get(k)
		if coerce != nil {
			cv, ok := coerce(k, wv)
			if !ok {
				continue
			}
			wv = cv
		}
		out.Set(k, wv)
	}

	for _, k := range d.Keys() {
		sv, _ := d.Get(k)
		if recursive {
			if sSub, ok := subdictOf(sv); ok {
				if wSub, ok := weaker.GetSubdict(k); ok {
					out.Set(k, value.New(Overlay(sSub, wSub, recursive, coerce)))
					continue
				}
			}
		}
		out.Set(k, sv)
	}
	return out
}

func subdictOf(v value.Value) (*Dict, bool) {
	sub, err := value.Get[*Dict](v)
	if err != nil {
		return nil, false
	}
	return sub, true
}
