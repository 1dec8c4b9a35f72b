// Package crate implements the content-addressed binary file format from
// spec.md §4.5 / §6: a little-endian, sectioned, versioned file holding a
// flat spec/field store, plus the Reader/Writer that move specs between
// that file and pkg/specstore's in-memory hash map.
package crate

import "github.com/edirooss/scenecore/internal/config"

// Magic identifies a scenecore crate file. 8 bytes, matching spec.md §6
// "8-byte magic".
var Magic = [8]byte{'s', 'c', 'n', 'c', 'r', 'a', 't', 'e'}

// HeaderSize is the fixed on-disk header: 8-byte magic, 3-byte version,
// 5 reserved bytes padding to 16 (spec.md §6: "Header: 8-byte magic, 3-byte
// (major, minor, patch) version, reserved bytes padding to 16").
const HeaderSize = 16

// FooterSize is the fixed trailer written at end-of-file: an 8-byte TOC
// offset, a 3-byte version tuple repeated, and 5 reserved bytes, again
// padded to 16 bytes so the reader can always seek to size-16 and parse a
// fixed-width record (spec.md §6: "A footer at end-of-file contains the
// TOC offset and the version tuple again").
const FooterSize = 16

// SectionNameSize is the fixed width of a section identifier in the TOC
// (spec.md §6: "named by 16-byte identifiers").
const SectionNameSize = 16

// Required section names, spec.md §6.
const (
	SectionTokens    = "TOKENS"
	SectionStrings   = "STRINGS"
	SectionFields    = "FIELDS"
	SectionFieldSets = "FIELDSETS"
	SectionPaths     = "PATHS"
	SectionSpecs     = "SPECS"
	SectionValueReps = "VALUEREPS"
)

// RequiredSections lists every section a well-formed crate file must carry,
// in the order the writer emits them.
var RequiredSections = []string{
	SectionTokens,
	SectionStrings,
	SectionFields,
	SectionFieldSets,
	SectionPaths,
	SectionSpecs,
	SectionValueReps,
}

// sectionNameBytes encodes name into a fixed SectionNameSize-byte array,
// zero-padded, truncating (never, given RequiredSections) if longer.
func sectionNameBytes(name string) [SectionNameSize]byte {
	var b [SectionNameSize]byte
	copy(b[:], name)
	return b
}

func sectionNameString(b [SectionNameSize]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Reserved field and child-list token names (spec.md §3 "Time samples",
// §4.5.2, §4.5.4). pkg/specstore is the only intended caller: these name
// the fields/tokens whose on-disk encoding or existence is synthesized
// rather than stored verbatim.
const (
	FieldTimeSamples     = "timeSamples"
	FieldTargetPaths     = "targetPaths"
	FieldConnectionPaths = "connectionPaths"
	FieldPayload         = "payload"

	TokenRelationshipTargetChildren = "relationshipTargetChildren"
	TokenConnectionChildren         = "connectionChildren"
)

// FieldSetSentinel terminates a field-set run in the FIELDSETS section
// (spec.md §6: "array of field-indices terminated by a sentinel index").
const FieldSetSentinel = ^uint32(0)

// NullPathIndex is the reserved index meaning "no parent" in the PATHS
// section (root nodes).
const NullPathIndex = ^uint32(0)

// targetSpecElideBelow and payloadListOpVersion are the version gates
// from spec.md §4.5.7, kept as package vars here rather than in
// internal/config.
var (
	payloadListOpVersion = Version{Major: 1, Minor: 1, Patch: 0}
	targetSpecElideBelow = Version{Major: 1, Minor: 0, Patch: 0}
)

func defaultWriterVersion() Version {
	return Version{
		Major: uint8(config.WriterMaxMajor),
		Minor: uint8(config.WriterMaxMinor),
		Patch: uint8(config.WriterMaxPatch),
	}
}
