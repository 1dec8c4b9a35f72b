package value

import "testing"

func TestArrayCloneSharesUntilMutated(t *testing.T) {
	a := NewArray([]int{1, 2, 3})
	if a.RefCount() != 1 {
		t.Fatalf("fresh array refcount = %d, want 1", a.RefCount())
	}

	b := a.Clone()
	if a.RefCount() != 2 || b.RefCount() != 2 {
		t.Fatalf("after Clone, refcounts = %d, %d, want 2, 2", a.RefCount(), b.RefCount())
	}

	// Non-mutating access must not change the shared refcount.
	_ = a.At(0)
	_ = b.Len()
	if a.RefCount() != 2 {
		t.Fatalf("non-mutating access changed refcount to %d", a.RefCount())
	}

	b.Set(0, 99)
	if b.RefCount() != 1 {
		t.Fatalf("detached array refcount = %d, want 1", b.RefCount())
	}
	if a.RefCount() != 1 {
		t.Fatalf("original array refcount after peer detach = %d, want 1", a.RefCount())
	}
	if a.At(0) != 1 {
		t.Fatalf("original array mutated: a.At(0) = %d, want 1", a.At(0))
	}
	if b.At(0) != 99 {
		t.Fatalf("b.At(0) = %d, want 99", b.At(0))
	}
}

func TestArrayEqualShortCircuitsOnIdentity(t *testing.T) {
	a := NewArray([]int{1, 2, 3})
	b := a.Clone()
	neverCalled := func(x, y int) bool {
		t.Fatal("eq callback should not be invoked when backing stores are identical")
		return false
	}
	if !a.Equal(b, neverCalled) {
		t.Fatal("expected identity short-circuit to report equal")
	}
}

func TestArrayEqualByValue(t *testing.T) {
	a := NewArray([]int{1, 2, 3})
	b := NewArray([]int{1, 2, 3})
	eq := func(x, y int) bool { return x == y }
	if !a.Equal(b, eq) {
		t.Fatal("expected elementwise-equal arrays to compare equal")
	}
	c := NewArray([]int{1, 2, 4})
	if a.Equal(c, eq) {
		t.Fatal("expected differing arrays to compare unequal")
	}
}

func TestArrayScalarOps(t *testing.T) {
	a := NewArray([]int{1, 2, 3})
	sum := AddScalar(a, 10)
	if got := sum.Slice(); got[0] != 11 || got[1] != 12 || got[2] != 13 {
		t.Fatalf("AddScalar = %v", got)
	}
	neg := Neg(a)
	if got := neg.Slice(); got[0] != -1 || got[2] != -3 {
		t.Fatalf("Neg = %v", got)
	}
	mod := ModScalar(NewArray([]int{5, 6, 7}), 3)
	if got := mod.Slice(); got[0] != 2 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("ModScalar = %v", got)
	}
}

func TestArrayZipOps(t *testing.T) {
	a := NewArray([]float64{1, 2, 3})
	b := NewArray([]float64{10, 20, 30})
	sum, err := AddArrays(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Slice(); got[0] != 11 || got[2] != 33 {
		t.Fatalf("AddArrays = %v", got)
	}

	_, err = AddArrays(a, NewArray([]float64{1}))
	if err == nil {
		t.Fatal("expected error on length mismatch")
	}
}

func TestArrayAppendDetaches(t *testing.T) {
	a := NewArray([]int{1, 2})
	b := a.Clone()
	b.Append(3)
	if a.Len() != 2 {
		t.Fatalf("original array length changed to %d after peer Append", a.Len())
	}
	if b.Len() != 3 {
		t.Fatalf("b.Len() = %d, want 3", b.Len())
	}
}
