package crate

import (
	"bytes"
	"os"

	"go.uber.org/zap"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// ReaderMaxVersion is the highest crate version this reader understands
// (spec.md §4.5.7: "Readers refuse majors they do not know; accept any
// minor/patch at or below their own maximum").
var ReaderMaxVersion = Version{Major: 1, Minor: 1, Patch: 0}

// Reader retains an opened crate file's decoded structural sections plus
// its VALUEREPS blob, so field values not yet resolved by Open can be
// materialized later on demand (spec.md §4.5.5). Only produced for
// non-detached opens; a detached Document owns no Reader and needs none.
type Reader struct {
	version Version
	tokens  *tokenTable
	strings *tokenTable
	paths   *pathTable
	blob    *blobReader
	ctx     *readCtx
	log     *zap.Logger

	closed bool
}

// Close releases the Reader's in-memory copy of the file. Any ValueHolder
// still pointing at it that has not yet been Resolve()d will fail with an
// IOError afterward — mirrors the contract of releasing a detached file's
// backing bytes (spec.md §4.5.1).
func (r *Reader) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	r.blob.data = nil
	return nil
}

// Version reports the opened file's on-disk version tuple.
func (r *Reader) Version() Version { return r.version }

// Open reads assetPath and decodes it into a Document (spec.md §4.5.1:
// "Open(assetPath, detached?): populate the spec store from a file ...").
//
// When detached is true, every field value is materialized immediately and
// the returned *Reader is nil: the caller may discard assetPath's bytes
// entirely, matching "if detached, copy out all referenced bytes so the
// file handle can be released." When detached is false, field values stay
// as lazy ValueHolders that resolve through the returned *Reader on first
// access, and the caller should Close the Reader once the Document is no
// longer needed.
//
// it is the Interner used to materialize sdfpath.Path values from the
// PATHS section; nil selects sdfpath.Default().
//
// Reader failures (truncated file, bad magic, unknown major) return an
// empty, non-nil *Document and a non-nil error; the caller's store is
// expected to remain empty (spec.md §7).
func Open(assetPath string, detached bool, it *sdfpath.Interner, log *zap.Logger) (*Document, *Reader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("crate")

	data, err := os.ReadFile(assetPath)
	if err != nil {
		werr := diag.Wrap(diag.IOError, err, "read crate file "+assetPath)
		diag.LogChain(log, werr)
		return &Document{}, nil, werr
	}

	doc, r, err := decodeDocument(data, detached, it, log)
	if err != nil {
		diag.LogChain(log, err)
		return &Document{}, nil, err
	}
	return doc, r, nil
}

// decodeDocument parses the header, footer, TOC, and every required
// section out of a fully in-memory crate file, then assembles a Document
// (spec.md §4.5.5: "the reader parses three structural sections — specs,
// fields, field-sets").
func decodeDocument(data []byte, detached bool, it *sdfpath.Interner, log *zap.Logger) (*Document, *Reader, error) {
	ra := bytes.NewReader(data)

	hdr, err := readHeader(ra)
	if err != nil {
		return &Document{}, nil, err
	}
	if err := CheckReadable(hdr.Version, ReaderMaxVersion); err != nil {
		return &Document{}, nil, err
	}

	ftr, err := readFooterAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &Document{}, nil, err
	}
	if ftr.Version != hdr.Version {
		return &Document{}, nil, diag.Newf(diag.CorruptFile, "header version %s does not match footer version %s", hdr.Version, ftr.Version)
	}
	if ftr.TOCOffset > uint64(len(data))-FooterSize {
		return &Document{}, nil, diag.New(diag.CorruptFile, "TOC offset beyond file bounds")
	}
	tocLength := uint64(len(data)) - FooterSize - ftr.TOCOffset

	entries, err := readTOC(bytes.NewReader(data), ftr.TOCOffset, tocLength)
	if err != nil {
		return &Document{}, nil, err
	}

	sectionBytes := make(map[string][]byte, len(RequiredSections))
	for _, name := range RequiredSections {
		e, ok := findSection(entries, name)
		if !ok {
			return &Document{}, nil, diag.Newf(diag.CorruptFile, "missing required section %q", name)
		}
		b, err := readSectionBytes(bytes.NewReader(data), e)
		if err != nil {
			return &Document{}, nil, err
		}
		sectionBytes[name] = b
	}

	tokens, err := tokenTableFromBytes(sectionBytes[SectionTokens])
	if err != nil {
		return &Document{}, nil, err
	}
	strs, err := tokenTableFromBytes(sectionBytes[SectionStrings])
	if err != nil {
		return &Document{}, nil, err
	}
	pathRecords, err := pathRecordsFromBytes(sectionBytes[SectionPaths])
	if err != nil {
		return &Document{}, nil, err
	}
	paths := loadPathTable(it, tokens, pathRecords)

	fieldRecords, err := fieldRecordsFromBytes(sectionBytes[SectionFields])
	if err != nil {
		return &Document{}, nil, err
	}
	fieldSetFlat, err := fieldSetFlatFromBytes(sectionBytes[SectionFieldSets])
	if err != nil {
		return &Document{}, nil, err
	}
	specRows, err := specRowsFromBytes(sectionBytes[SectionSpecs])
	if err != nil {
		return &Document{}, nil, err
	}

	blob := &blobReader{data: sectionBytes[SectionValueReps]}
	ctx := &readCtx{tokens: tokens, strings: strs, paths: paths}

	specs := make([]SpecEntry, 0, len(specRows))
	for _, row := range specRows {
		if row.specType.IsSynthesizedOnly() {
			// spec.md §4.5.2: relationship-target/connection specs are never
			// stored; a file that somehow carries one (e.g. hand-corrupted,
			// or predating featureTargetSpecs' elision rule) is read past
			// rather than rejected outright.
			if !hdr.Version.MustElideTargetSpecs() {
				log.Warn("ignoring unexpectedly stored synthesized-only spec",
					zap.String("specType", row.specType.String()))
			}
			continue
		}

		path, err := paths.at(row.pathIdx)
		if err != nil {
			return &Document{}, nil, err
		}
		indices, err := fieldSetIndices(fieldSetFlat, row.fsOffset)
		if err != nil {
			return &Document{}, nil, err
		}

		fields := make([]FieldEntry, 0, len(indices))
		for _, idx := range indices {
			if int(idx) >= len(fieldRecords) {
				return &Document{}, nil, diag.Newf(diag.CorruptFile, "field index %d out of range (%d fields)", idx, len(fieldRecords))
			}
			fr := fieldRecords[idx]
			name := tokens.at(fr.NameToken)

			var holder ValueHolder
			if detached {
				v, err := decodeFieldValue(ctx, blob, fr.Rep)
				if err != nil {
					return &Document{}, nil, err
				}
				holder = Eager(v)
			} else {
				rep := fr.Rep
				holder = &lazyValue{rep: rep, unpack: func(rep ValueRep) (value.Value, error) {
					if blob.data == nil {
						return value.Empty(), diag.New(diag.IOError, "crate reader closed before field value was resolved")
					}
					return decodeFieldValue(ctx, blob, rep)
				}}
			}
			fields = append(fields, FieldEntry{Name: name, Value: holder})
		}

		specs = append(specs, SpecEntry{Path: path, SpecType: row.specType, Fields: fields})
	}

	doc := &Document{Version: hdr.Version, Specs: specs}

	if detached {
		return doc, nil, nil
	}
	return doc, &Reader{version: hdr.Version, tokens: tokens, strings: strs, paths: paths, blob: blob, ctx: ctx, log: log}, nil
}
