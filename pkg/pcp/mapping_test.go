package pcp

import (
	"testing"

	"github.com/edirooss/scenecore/pkg/sdfpath"
)

func mustPath(t *testing.T, it *sdfpath.Interner, s string) sdfpath.Path {
	t.Helper()
	p, err := sdfpath.ParseWith(it, s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return p
}

// TestScenarioMappingCanonicalization is spec.md §8 scenario 5.
func TestScenarioMappingCanonicalization(t *testing.T) {
	it := sdfpath.NewInterner()
	a := mustPath(t, it, "/A")
	b := mustPath(t, it, "/B")
	ac := mustPath(t, it, "/A/C")
	bc := mustPath(t, it, "/B/C")
	root := sdfpath.AbsoluteRootPath()

	mf, err := Create([]Pair{
		{Source: a, Target: b},
		{Source: ac, Target: bc},
		{Source: root, Target: root},
	}, Identity)
	if err != nil {
		t.Fatal(err)
	}
	if !mf.HasRootIdentity() {
		t.Fatal("expected root identity flag set")
	}
	pairs := mf.Pairs()
	if len(pairs) != 1 || pairs[0].Source != a || pairs[0].Target != b {
		t.Fatalf("expected exactly {/A -> /B}, got %v", pairs)
	}
}

func TestMapSourceToTargetBasic(t *testing.T) {
	it := sdfpath.NewInterner()
	a := mustPath(t, it, "/A")
	b := mustPath(t, it, "/B")

	mf, err := Create([]Pair{{Source: a, Target: b}}, Identity)
	if err != nil {
		t.Fatal(err)
	}

	ac := mustPath(t, it, "/A/C")
	bc := mustPath(t, it, "/B/C")
	if got := mf.MapSourceToTarget(ac); got != bc {
		t.Fatalf("MapSourceToTarget(/A/C) = %s, want /B/C", got)
	}
	if got := mf.MapTargetToSource(bc); got != ac {
		t.Fatalf("MapTargetToSource(/B/C) = %s, want /A/C", got)
	}

	other := mustPath(t, it, "/Other")
	if got := mf.MapSourceToTarget(other); !got.IsEmpty() {
		t.Fatalf("MapSourceToTarget(/Other) = %s, want empty (outside domain)", got)
	}
}

// TestMapRejectsAmbiguousBijection mirrors the classic
// { / -> /, /_class_Model -> /Model } example: mapping /Model through the
// root identity would collide with the explicit mapping of /_class_Model
// to the same target, so it must report "outside domain" instead.
func TestMapRejectsAmbiguousBijection(t *testing.T) {
	it := sdfpath.NewInterner()
	root := sdfpath.AbsoluteRootPath()
	classModel := mustPath(t, it, "/_class_Model")
	model := mustPath(t, it, "/Model")

	mf, err := Create([]Pair{
		{Source: root, Target: root},
		{Source: classModel, Target: model},
	}, Identity)
	if err != nil {
		t.Fatal(err)
	}
	if !mf.HasRootIdentity() {
		t.Fatal("expected root identity flag set")
	}

	if got := mf.MapSourceToTarget(model); !got.IsEmpty() {
		t.Fatalf("MapSourceToTarget(/Model) = %s, want empty (ambiguous bijection)", got)
	}
	if got := mf.MapTargetToSource(model); got != classModel {
		t.Fatalf("MapTargetToSource(/Model) = %s, want %s", got, classModel)
	}
}

func TestMapBlocker(t *testing.T) {
	it := sdfpath.NewInterner()
	root := sdfpath.AbsoluteRootPath()
	a := mustPath(t, it, "/A")
	b := mustPath(t, it, "/B")
	ablocked := mustPath(t, it, "/A/Blocked")

	mf, err := Create([]Pair{
		{Source: root, Target: root},
		{Source: a, Target: b},
		{Source: ablocked, Target: sdfpath.EmptyPath},
	}, Identity)
	if err != nil {
		t.Fatal(err)
	}

	child := mustPath(t, it, "/A/Blocked/Deep")
	if got := mf.MapSourceToTarget(child); !got.IsEmpty() {
		t.Fatalf("MapSourceToTarget(%s) = %s, want empty (blocked)", child, got)
	}

	other := mustPath(t, it, "/A/Other")
	bother := mustPath(t, it, "/B/Other")
	if got := mf.MapSourceToTarget(other); got != bother {
		t.Fatalf("MapSourceToTarget(%s) = %s, want %s", other, got, bother)
	}
}

func TestComposeAndInverse(t *testing.T) {
	it := sdfpath.NewInterner()
	root := sdfpath.AbsoluteRootPath()
	a := mustPath(t, it, "/A")
	b := mustPath(t, it, "/B")
	c := mustPath(t, it, "/C")

	inner, err := Create([]Pair{{Source: root, Target: root}, {Source: a, Target: b}}, Identity)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Create([]Pair{{Source: root, Target: root}, {Source: b, Target: c}}, Identity)
	if err != nil {
		t.Fatal(err)
	}

	composed := outer.Compose(inner)
	leaf := mustPath(t, it, "/A/Leaf")
	cleaf := mustPath(t, it, "/C/Leaf")
	if got := composed.MapSourceToTarget(leaf); got != cleaf {
		t.Fatalf("composed.MapSourceToTarget(%s) = %s, want %s", leaf, got, cleaf)
	}

	inv := composed.Inverse()
	if got := inv.MapSourceToTarget(cleaf); got != leaf {
		t.Fatalf("inv.MapSourceToTarget(%s) = %s, want %s", cleaf, got, leaf)
	}
}

func TestLayerOffsetComposeAndInverse(t *testing.T) {
	outer := LayerOffset{Scale: 2, Offset: 3}
	inner := LayerOffset{Scale: 0.5, Offset: 4}
	composed := outer.Compose(inner)
	for _, t0 := range []float64{0, 1, 10, -5} {
		want := outer.Apply(inner.Apply(t0))
		if got := composed.Apply(t0); got != want {
			t.Fatalf("Compose().Apply(%v) = %v, want %v", t0, got, want)
		}
	}
	invOuter := outer.Inverse()
	if got := invOuter.Apply(outer.Apply(5)); got != 5 {
		t.Fatalf("Inverse().Apply(Apply(5)) = %v, want 5", got)
	}
}

func TestCreateRejectsInvalidEndpoint(t *testing.T) {
	it := sdfpath.NewInterner()
	prop := mustPath(t, it, "/A.attr")
	a := mustPath(t, it, "/A")
	if _, err := Create([]Pair{{Source: prop, Target: a}}, Identity); err == nil {
		t.Fatal("expected InvalidPath error for a property-path source")
	}
}

// TestCreateDropsConflictingDuplicateSource mirrors
// original_source/pxr/usd/pcp/mapFunction.cpp's _IsRedundant: a pair
// sharing a source with an earlier pair is a coding error, but
// canonicalization still succeeds by dropping the later, conflicting entry
// rather than aborting Create.
func TestCreateDropsConflictingDuplicateSource(t *testing.T) {
	it := sdfpath.NewInterner()
	a := mustPath(t, it, "/A")
	b := mustPath(t, it, "/B")
	c := mustPath(t, it, "/C")
	mf, err := Create([]Pair{{Source: a, Target: b}, {Source: a, Target: c}}, Identity)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pairs := mf.Pairs()
	if len(pairs) != 1 || pairs[0].Source != a || pairs[0].Target != b {
		t.Fatalf("expected only the first /A entry to survive, got %v", pairs)
	}
}
