package crate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// buildSampleDocument carries string, bool, int64, float64 and two array
// field values on a prim and a property spec, so a round trip covers both
// SPECS partitions and a sample of the VALUEREPS encodings.
func buildSampleDocument(t *testing.T, it *sdfpath.Interner) *Document {
	t.Helper()
	world, err := sdfpath.NewPrimPath(it, true, "World")
	if err != nil {
		t.Fatal(err)
	}
	geom, err := world.AppendProperty(it, "geom")
	if err != nil {
		t.Fatal(err)
	}
	return &Document{
		Version: defaultWriterVersion(),
		Specs: []SpecEntry{
			{
				Path:     world,
				SpecType: SpecPrim,
				Fields: []FieldEntry{
					{Name: "kind", Value: Eager(value.New("group"))},
					{Name: "active", Value: Eager(value.New(true))},
				},
			},
			{
				Path:     geom,
				SpecType: SpecAttribute,
				Fields: []FieldEntry{
					{Name: "default", Value: Eager(value.New(int64(42)))},
					{Name: "precision", Value: Eager(value.New(3.5))},
					{Name: "points", Value: Eager(value.New(value.NewArray([]float64{0, 1, 2.5, -3})))},
					{Name: "indices", Value: Eager(value.New(value.NewArray([]int32{0, 1, 2, 3})))},
				},
			},
		},
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	it := sdfpath.NewInterner()
	doc := buildSampleDocument(t, it)

	dir := t.TempDir()
	fileName := filepath.Join(dir, "scene.crate")
	if err := Save(fileName, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, reader, err := Open(fileName, true, it, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reader != nil {
		t.Fatal("detached Open must return a nil Reader")
	}
	if len(got.Specs) != len(doc.Specs) {
		t.Fatalf("got %d specs, want %d", len(got.Specs), len(doc.Specs))
	}

	for i, want := range doc.Specs {
		gotSpec := got.Specs[i]
		if gotSpec.Path != want.Path {
			t.Errorf("spec %d: path = %s, want %s", i, gotSpec.Path, want.Path)
		}
		if gotSpec.SpecType != want.SpecType {
			t.Errorf("spec %d: specType = %s, want %s", i, gotSpec.SpecType, want.SpecType)
		}
		if len(gotSpec.Fields) != len(want.Fields) {
			t.Fatalf("spec %d: %d fields, want %d", i, len(gotSpec.Fields), len(want.Fields))
		}
		for j, wantField := range want.Fields {
			gotField := gotSpec.Fields[j]
			if gotField.Name != wantField.Name {
				t.Errorf("spec %d field %d: name = %q, want %q", i, j, gotField.Name, wantField.Name)
			}
			wantVal, _ := wantField.Value.Resolve()
			gotVal, err := gotField.Value.Resolve()
			if err != nil {
				t.Fatalf("spec %d field %d: Resolve: %v", i, j, err)
			}
			if !gotVal.Equal(wantVal) {
				t.Errorf("spec %d field %d: value = %v, want %v", i, j, gotVal.Interface(), wantVal.Interface())
			}
		}
	}
}

func TestOpenNonDetachedLazyResolveAfterClose(t *testing.T) {
	it := sdfpath.NewInterner()
	doc := buildSampleDocument(t, it)

	dir := t.TempDir()
	fileName := filepath.Join(dir, "scene.crate")
	if err := Save(fileName, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, reader, err := Open(fileName, false, it, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reader == nil {
		t.Fatal("non-detached Open must return a live Reader")
	}
	if len(got.Specs) == 0 {
		t.Fatal("expected specs")
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := got.Specs[0].Fields[0].Value.Resolve(); err == nil {
		t.Fatal("expected Resolve of an unresolved lazy field to fail after Close")
	}
}

func TestExportWritesFile(t *testing.T) {
	it := sdfpath.NewInterner()
	doc := buildSampleDocument(t, it)

	dir := t.TempDir()
	exportPath := filepath.Join(dir, "export.crate")
	if err := Export(exportPath, doc); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "bad.crate")
	if err := os.WriteFile(fileName, []byte("not a crate file"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, reader, err := Open(fileName, true, nil, nil)
	if err == nil {
		t.Fatal("expected an error opening a corrupt file")
	}
	if reader != nil {
		t.Fatal("expected a nil Reader on failure")
	}
	if doc == nil || len(doc.Specs) != 0 {
		t.Fatal("expected an empty, non-nil Document on failure")
	}
}
