package crate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/google/uuid"
)

// Save serializes doc to fileName, replacing any existing file atomically:
// the new content is written to a sibling temp file and renamed over the
// target only once flushed (spec.md §4.5.6/§7: "a failed Save leaves the
// existing file on disk untouched"). Grounded on the teacher's
// write-temp-then-rename pattern in internal/infrastructure/objectstore's
// persistence path, generalized from its JSON blob to crate's sectioned
// binary layout; the temp-file suffix comes from google/uuid the way the
// teacher's objectstore names scratch files.
func Save(fileName string, doc *Document) error {
	dir := filepath.Dir(fileName)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(fileName), uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return diag.Wrap(diag.IOError, err, "create temp file")
	}
	if err := writeDocument(f, doc); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return diag.Wrap(diag.IOError, err, "sync temp file")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return diag.Wrap(diag.IOError, err, "close temp file")
	}
	if err := os.Rename(tmp, fileName); err != nil {
		os.Remove(tmp)
		return diag.Wrap(diag.IOError, err, "rename temp file into place")
	}
	return nil
}

// Export writes doc to fileName without the atomic-rename dance, for
// callers that want a one-shot dump to a path that need not survive a
// crash mid-write (spec.md §4.5.1 "Export").
func Export(fileName string, doc *Document) error {
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return diag.Wrap(diag.IOError, err, "create export file")
	}
	defer f.Close()
	return writeDocument(f, doc)
}

// writeDocument negotiates a writer version (raising the ceiling only when
// a payload can't collapse to a compact form, spec.md §4.5.6/§4.5.7), then
// emits every required section, the TOC, and the footer.
func writeDocument(w *os.File, doc *Document) error {
	version := doc.Version
	if version == (Version{}) {
		version = defaultWriterVersion()
	}

	tokens := newTokenTable()
	strs := newTokenTable()
	paths := newPathTable(nil, tokens)
	ctx := &writeCtx{tokens: tokens, strings: strs, paths: paths}
	blob := &blobWriter{}

	var fieldRecords []fieldRecord
	fieldSetOf := make(map[string]uint64) // dedup key -> flattened offset (as index)
	var fieldSetFlat []uint32

	type writeSpecRow struct {
		pathIdx  uint32
		specType SpecType
		fsOffset uint64
	}
	rows := make([]writeSpecRow, 0, len(doc.Specs))

	for _, spec := range doc.Specs {
		if spec.SpecType.IsSynthesizedOnly() {
			// Relationship targets and connections are never stored
			// directly; Document producers (specstore) must not include
			// them (spec.md §4.5.2). Skip defensively rather than fail.
			continue
		}
		pathIdx := paths.indexOf(spec.Path)

		recs := make([]fieldRecord, 0, len(spec.Fields))
		keyParts := make([]uint32, 0, 3*len(spec.Fields))
		for _, f := range spec.Fields {
			v, err := f.Value.Resolve()
			if err != nil {
				return diag.Wrap(diag.IOError, err, "resolve field "+f.Name)
			}
			rep, err := encodeFieldValue(ctx, blob, v)
			if err != nil {
				return err
			}
			rec := fieldRecord{NameToken: tokens.intern(f.Name), Rep: rep}
			recs = append(recs, rec)
			keyParts = append(keyParts, rec.NameToken, uint32(rec.Rep), uint32(uint64(rec.Rep)>>32))
		}

		key := fieldSetKey(keyParts)
		offset, ok := fieldSetOf[key]
		if !ok {
			offset = uint64(len(fieldSetFlat))
			for _, rec := range recs {
				fieldSetFlat = append(fieldSetFlat, uint32(len(fieldRecords)))
				fieldRecords = append(fieldRecords, rec)
			}
			fieldSetFlat = append(fieldSetFlat, FieldSetSentinel)
			fieldSetOf[key] = offset
		}

		rows = append(rows, writeSpecRow{pathIdx: pathIdx, specType: spec.SpecType, fsOffset: offset})
	}

	if ctx.needsPayloadListOp && version.Less(payloadListOpVersion) {
		version = payloadListOpVersion
	}

	// SPECS section: path index, spec-type byte, fieldset offset.
	var specsBuf bytes.Buffer
	putUvarint(&specsBuf, uint64(len(rows)))
	for _, row := range rows {
		putUvarint(&specsBuf, uint64(row.pathIdx))
		specsBuf.WriteByte(byte(row.specType))
		putUvarint(&specsBuf, row.fsOffset)
	}

	// FIELDS section: name-token uvarint, 8-byte rep.
	var fieldsBuf bytes.Buffer
	putUvarint(&fieldsBuf, uint64(len(fieldRecords)))
	for _, fr := range fieldRecords {
		putUvarint(&fieldsBuf, uint64(fr.NameToken))
		var repBytes [8]byte
		binary.LittleEndian.PutUint64(repBytes[:], uint64(fr.Rep))
		fieldsBuf.Write(repBytes[:])
	}

	// FIELDSETS section: flattened uint32 array.
	var fsBuf bytes.Buffer
	for _, idx := range fieldSetFlat {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], idx)
		fsBuf.Write(b[:])
	}

	sections := []struct {
		Name string
		Data []byte
	}{
		{SectionTokens, tokenTableBytes(tokens)},
		{SectionStrings, tokenTableBytes(strs)},
		{SectionFields, fieldsBuf.Bytes()},
		{SectionFieldSets, fsBuf.Bytes()},
		{SectionPaths, pathsSectionBytes(paths)},
		{SectionSpecs, specsBuf.Bytes()},
		{SectionValueReps, blob.buf.Bytes()},
	}

	if err := writeHeader(w, version); err != nil {
		return diag.Wrap(diag.IOError, err, "write header")
	}

	offset := uint64(HeaderSize)
	entries := make([]tocEntry, 0, len(sections))
	for _, s := range sections {
		if _, err := w.Write(s.Data); err != nil {
			return diag.Wrap(diag.IOError, err, "write section "+s.Name)
		}
		entries = append(entries, tocEntry{Name: s.Name, Offset: offset, Length: uint64(len(s.Data))})
		offset += uint64(len(s.Data))
	}

	tocOffset := offset
	if _, err := writeTOC(w, tocOffset, entries); err != nil {
		return diag.Wrap(diag.IOError, err, "write TOC")
	}

	if err := writeFooter(w, tocOffset, version); err != nil {
		return diag.Wrap(diag.IOError, err, "write footer")
	}
	return nil
}

func fieldSetKey(indices []uint32) string {
	var buf bytes.Buffer
	for _, i := range indices {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], i)
		buf.Write(b[:])
	}
	return buf.String()
}
