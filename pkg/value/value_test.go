package value

import (
	"testing"

	"github.com/edirooss/scenecore/internal/diag"
)

func TestGetHoldingMatch(t *testing.T) {
	v := New(42)
	got, err := Get[int](v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if !Holds[int](v) {
		t.Fatal("expected Holds[int] true")
	}
	if Holds[string](v) {
		t.Fatal("expected Holds[string] false")
	}
}

func TestGetMismatchReportsTypeMismatch(t *testing.T) {
	v := New("hello")
	_, err := Get[int](v)
	if !diag.Is(err, diag.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestGetMismatchUsesRegisteredDefault(t *testing.T) {
	type widget struct{ n int }
	RegisterType[widget](nil, nil, func() widget { return widget{n: 7} })

	v := New("not a widget")
	got, err := Get[widget](v)
	if !diag.Is(err, diag.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
	if got.n != 7 {
		t.Fatalf("got %+v, want default widget{7}", got)
	}
}

func TestCastRegisteredConversion(t *testing.T) {
	RegisterConversion(func(i int) string { return "n" })
	v := New(5)
	s, ok := Cast[string](v)
	if !ok || s != "n" {
		t.Fatalf("Cast failed: %q, %v", s, ok)
	}
	_, ok = Cast[float64](v)
	if ok {
		t.Fatal("expected no conversion to float64")
	}
}

func TestSwap(t *testing.T) {
	a := New(1)
	b := New("two")
	a.Swap(&b)
	if got, _ := Get[string](a); got != "two" {
		t.Fatalf("a = %v, want \"two\"", a.Interface())
	}
	if got, _ := Get[int](b); got != 1 {
		t.Fatalf("b = %v, want 1", b.Interface())
	}
}

func TestHashEqualCopy(t *testing.T) {
	v := New("same")
	cp := New("same")
	h1, ok1 := v.Hash()
	h2, ok2 := cp.Hash()
	if !ok1 || !ok2 {
		t.Fatal("expected strings to be hashable")
	}
	if h1 != h2 {
		t.Fatalf("hash(v) = %d != hash(copy) = %d", h1, h2)
	}
	if !v.Equal(cp) {
		t.Fatal("expected v.Equal(copy)")
	}
}

func TestHashUnregisteredTypeFails(t *testing.T) {
	type unregistered struct{ x int }
	v := New(unregistered{x: 1})
	if _, ok := v.Hash(); ok {
		t.Fatal("expected unregistered struct type to be unhashable")
	}
}

func TestEqualDifferentTypesAlwaysFalse(t *testing.T) {
	if New(1).Equal(New(int64(1))) {
		t.Fatal("values of different held types must not compare equal")
	}
}

func TestEmptyValue(t *testing.T) {
	v := Empty()
	if !v.IsEmpty() {
		t.Fatal("expected Empty() to be empty")
	}
	h, ok := v.Hash()
	if !ok || h != 0 {
		t.Fatalf("expected empty value hash (0, true), got (%d, %v)", h, ok)
	}
	if !v.Equal(Empty()) {
		t.Fatal("two empty values must be equal")
	}
}
