package specstore

import (
	"path/filepath"
	"testing"

	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

func TestCreateSetGetEraseSpec(t *testing.T) {
	it := sdfpath.NewInterner()
	doc := &crate.Document{}
	st, err := FromDocument(doc, it, nil)
	if err != nil {
		t.Fatal(err)
	}

	world, err := sdfpath.NewPrimPath(it, true, "World")
	if err != nil {
		t.Fatal(err)
	}

	if err := st.CreateSpec(world, crate.SpecPrim); err != nil {
		t.Fatalf("CreateSpec: %v", err)
	}
	if !st.HasSpec(world) {
		t.Fatal("expected HasSpec(world) after CreateSpec")
	}
	if specType, ok := st.GetSpecType(world); !ok || specType != crate.SpecPrim {
		t.Fatalf("GetSpecType = (%v, %v), want (SpecPrim, true)", specType, ok)
	}

	if err := st.Set(world, "kind", value.New("group")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := st.Get(world, "kind")
	if !ok {
		t.Fatal("expected Get(kind) to succeed")
	}
	if s, err := value.Get[string](got); err != nil || s != "group" {
		t.Fatalf("Get(kind) = %v, %v, want group", s, err)
	}

	names, ok := st.List(world)
	if !ok || len(names) != 1 || names[0] != "kind" {
		t.Fatalf("List(world) = %v, %v, want [kind] true", names, ok)
	}

	if err := st.Erase(world, "kind"); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if st.Has(world, "kind") {
		t.Fatal("expected Has(kind) to be false after Erase")
	}

	if err := st.EraseSpec(world); err != nil {
		t.Fatalf("EraseSpec: %v", err)
	}
	if st.HasSpec(world) {
		t.Fatal("expected HasSpec(world) false after EraseSpec")
	}
}

func TestMoveSpec(t *testing.T) {
	it := sdfpath.NewInterner()
	st, err := FromDocument(&crate.Document{}, it, nil)
	if err != nil {
		t.Fatal(err)
	}

	oldPath, _ := sdfpath.NewPrimPath(it, true, "A")
	newPath, _ := sdfpath.NewPrimPath(it, true, "B")

	if err := st.CreateSpec(oldPath, crate.SpecPrim); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(oldPath, "x", value.New(int64(7))); err != nil {
		t.Fatal(err)
	}
	if err := st.MoveSpec(oldPath, newPath); err != nil {
		t.Fatalf("MoveSpec: %v", err)
	}
	if st.HasSpec(oldPath) {
		t.Fatal("expected old path to no longer have a spec")
	}
	if v, ok := st.Get(newPath, "x"); !ok {
		t.Fatal("expected moved spec's field to survive")
	} else if n, err := value.Get[int64](v); err != nil || n != 7 {
		t.Fatalf("Get(x) after move = %v, %v, want 7", n, err)
	}
}

func TestSaveOpenRoundTripThroughStore(t *testing.T) {
	it := sdfpath.NewInterner()
	st, err := FromDocument(&crate.Document{}, it, nil)
	if err != nil {
		t.Fatal(err)
	}

	world, _ := sdfpath.NewPrimPath(it, true, "World")
	geom, _ := world.AppendProperty(it, "geom")

	if err := st.CreateSpec(world, crate.SpecPrim); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(world, "kind", value.New("group")); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateSpec(geom, crate.SpecAttribute); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(geom, "default", value.New(1.5)); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	fileName := filepath.Join(dir, "scene.crate")
	if err := st.Save(fileName); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(fileName, true, it, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	if v, ok := reopened.Get(world, "kind"); !ok {
		t.Fatal("expected kind field to survive round trip")
	} else if s, _ := value.Get[string](v); s != "group" {
		t.Fatalf("kind = %q, want group", s)
	}
	if v, ok := reopened.Get(geom, "default"); !ok {
		t.Fatal("expected default field to survive round trip")
	} else if f, _ := value.Get[float64](v); f != 1.5 {
		t.Fatalf("default = %v, want 1.5", f)
	}
}

func TestExportLeavesLiveInstanceSourceUntouched(t *testing.T) {
	it := sdfpath.NewInterner()
	st, err := FromDocument(&crate.Document{}, it, nil)
	if err != nil {
		t.Fatal(err)
	}
	world, _ := sdfpath.NewPrimPath(it, true, "World")
	if err := st.CreateSpec(world, crate.SpecPrim); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := st.Save(filepath.Join(dir, "a.crate")); err != nil {
		t.Fatal(err)
	}
	wantSource := st.sourcePath

	if err := st.Export(filepath.Join(dir, "b.crate")); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if st.sourcePath != wantSource {
		t.Fatalf("Export must not change the live instance's source path: got %q, want %q", st.sourcePath, wantSource)
	}
}

func TestVisitSeesEverySpec(t *testing.T) {
	it := sdfpath.NewInterner()
	st, err := FromDocument(&crate.Document{}, it, nil)
	if err != nil {
		t.Fatal(err)
	}
	world, _ := sdfpath.NewPrimPath(it, true, "World")
	geom, _ := world.AppendProperty(it, "geom")
	if err := st.CreateSpec(world, crate.SpecPrim); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateSpec(geom, crate.SpecAttribute); err != nil {
		t.Fatal(err)
	}

	var seen int
	st.Visit(func(p sdfpath.Path, specType crate.SpecType) bool {
		seen++
		return true
	})
	if seen != 2 {
		t.Fatalf("Visit saw %d specs, want 2", seen)
	}
}
