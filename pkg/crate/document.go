package crate

import "github.com/edirooss/scenecore/pkg/sdfpath"

// FieldEntry is one (name, value) pair attached to a Spec (spec.md
// glossary: "Field"). Document stores fields already deduplicated into
// per-spec slices; FieldSet dedup (spec.md §4.5.6 step 2) happens at the
// binary encoding layer in writer.go, transparent to Document's callers.
type FieldEntry struct {
	Name  string
	Value ValueHolder
}

// Document is the decoded, in-memory form of one crate file: every spec
// with its field list, plus the file's version tuple. Reader.Open produces
// a Document; Writer.Save consumes one. pkg/specstore wraps a Document in
// its path-keyed hash map and is the only intended caller outside this
// package and its tests.
type Document struct {
	Version Version
	Specs   []SpecEntry
}

// SpecEntry is one spec's full persisted content (spec.md §3 "Spec").
type SpecEntry struct {
	Path     sdfpath.Path
	SpecType SpecType
	Fields   []FieldEntry
}
