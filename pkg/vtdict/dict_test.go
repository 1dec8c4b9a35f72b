package vtdict

import (
	"testing"

	"github.com/edirooss/scenecore/pkg/value"
)

func TestEmptyDictHasNoAllocation(t *testing.T) {
	var d Dict
	if !d.IsEmpty() {
		t.Fatal("zero-value Dict must be empty")
	}
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
}

func TestSetGetErase(t *testing.T) {
	var d Dict
	d.Set("a", value.New(1))
	d.Set("b", value.New("two"))

	if v, ok := d.Get("a"); !ok {
		t.Fatal("expected a present")
	} else if got, _ := value.Get[int](v); got != 1 {
		t.Fatalf("a = %v, want 1", got)
	}

	if !d.Erase("a") {
		t.Fatal("expected Erase(a) to report true")
	}
	if _, ok := d.Get("a"); ok {
		t.Fatal("expected a absent after Erase")
	}
	if d.Erase("a") {
		t.Fatal("expected second Erase(a) to report false")
	}
}

func TestSetPathCreatesIntermediateDicts(t *testing.T) {
	var d Dict
	if err := d.SetPath(value.New(1920), "render", "resolution", "width"); err != nil {
		t.Fatal(err)
	}
	v, ok := d.GetPath("render", "resolution", "width")
	if !ok {
		t.Fatal("expected value present at nested path")
	}
	if got, _ := value.Get[int](v); got != 1920 {
		t.Fatalf("got %d, want 1920", got)
	}

	sub, ok := d.GetSubdict("render")
	if !ok {
		t.Fatal("expected intermediate 'render' sub-dictionary")
	}
	if _, ok := sub.GetSubdict("resolution"); !ok {
		t.Fatal("expected intermediate 'resolution' sub-dictionary")
	}
}

func TestErasePathRemovesEmptySubdictsBottomUp(t *testing.T) {
	var d Dict
	_ = d.SetPath(value.New(1), "a", "b", "c")
	if !d.ErasePath("a", "b", "c") {
		t.Fatal("expected ErasePath to report true")
	}
	if !d.IsEmpty() {
		t.Fatalf("expected all now-empty intermediate dicts to be pruned, got keys %v", d.Keys())
	}
}

func TestErasePathLeavesNonEmptySiblingsIntact(t *testing.T) {
	var d Dict
	_ = d.SetPath(value.New(1), "a", "b", "c")
	_ = d.SetPath(value.New(2), "a", "other")

	if !d.ErasePath("a", "b", "c") {
		t.Fatal("expected ErasePath to succeed")
	}
	// "a" survives because "a.other" still has content, but "a.b" must have
	// been pruned since it became empty.
	sub, ok := d.GetSubdict("a")
	if !ok {
		t.Fatal("expected 'a' to survive since it still holds 'other'")
	}
	if _, ok := sub.GetSubdict("b"); ok {
		t.Fatal("expected now-empty 'a.b' to have been pruned")
	}
	if _, ok := sub.Get("other"); !ok {
		t.Fatal("expected 'a.other' to survive")
	}
}

func TestOverlayNonRecursive(t *testing.T) {
	var strong, weak Dict
	strong.Set("a", value.New(1))
	weak.Set("a", value.New(2))
	weak.Set("b", value.New(3))

	out := Overlay(&strong, &weak, false, nil)
	va, _ := out.Get("a")
	if got, _ := value.Get[int](va); got != 1 {
		t.Fatalf("strong value should win: got %d, want 1", got)
	}
	vb, ok := out.Get("b")
	if !ok {
		t.Fatal("expected weaker-only key 'b' present")
	}
	if got, _ := value.Get[int](vb); got != 3 {
		t.Fatalf("b = %d, want 3", got)
	}
}

func TestOverlayRecursiveMergesSubdicts(t *testing.T) {
	var strong, weak Dict
	_ = strong.SetPath(value.New(1), "render", "width")
	_ = weak.SetPath(value.New(2), "render", "width")
	_ = weak.SetPath(value.New(3), "render", "height")

	out := Overlay(&strong, &weak, true, nil)
	w, ok := out.GetPath("render", "width")
	if !ok {
		t.Fatal("expected render.width present")
	}
	if got, _ := value.Get[int](w); got != 1 {
		t.Fatalf("render.width = %d, want strong's 1", got)
	}
	h, ok := out.GetPath("render", "height")
	if !ok {
		t.Fatal("expected render.height to survive from weaker via recursive merge")
	}
	if got, _ := value.Get[int](h); got != 3 {
		t.Fatalf("render.height = %d, want 3", got)
	}
}

func TestOverlayCoercionCanDropKeys(t *testing.T) {
	var strong, weak Dict
	weak.Set("legacy", value.New("drop-me"))
	weak.Set("keep", value.New(5))

	coerce := func(key string, v value.Value) (value.Value, bool) {
		return v, key != "legacy"
	}
	out := Overlay(&strong, &weak, false, coerce)
	if _, ok := out.Get("legacy"); ok {
		t.Fatal("expected coerce to drop 'legacy'")
	}
	if _, ok := out.Get("keep"); !ok {
		t.Fatal("expected 'keep' to survive coercion")
	}
}
