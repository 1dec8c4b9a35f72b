package crate

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/edirooss/scenecore/internal/diag"
)

// header is the fixed 16-byte prologue (spec.md §6).
type header struct {
	Version Version
}

func writeHeader(w io.Writer, v Version) error {
	var buf [HeaderSize]byte
	copy(buf[:8], Magic[:])
	buf[8], buf[9], buf[10] = v.Major, v.Minor, v.Patch
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, diag.Wrap(diag.CorruptFile, err, "read header")
	}
	if !bytes.Equal(buf[:8], Magic[:]) {
		return header{}, diag.New(diag.CorruptFile, "bad magic")
	}
	return header{Version: Version{Major: buf[8], Minor: buf[9], Patch: buf[10]}}, nil
}

// footer is the fixed 16-byte trailer: 8-byte TOC offset, repeated
// 3-byte version, 5 reserved bytes (spec.md §6).
type footer struct {
	TOCOffset uint64
	Version   Version
}

func writeFooter(w io.Writer, tocOffset uint64, v Version) error {
	var buf [FooterSize]byte
	binary.LittleEndian.PutUint64(buf[:8], tocOffset)
	buf[8], buf[9], buf[10] = v.Major, v.Minor, v.Patch
	_, err := w.Write(buf[:])
	return err
}

func readFooterAt(r io.ReaderAt, fileSize int64) (footer, error) {
	if fileSize < FooterSize {
		return footer{}, diag.New(diag.CorruptFile, "file too small for footer")
	}
	var buf [FooterSize]byte
	if _, err := r.ReadAt(buf[:], fileSize-FooterSize); err != nil {
		return footer{}, diag.Wrap(diag.CorruptFile, err, "read footer")
	}
	return footer{
		TOCOffset: binary.LittleEndian.Uint64(buf[:8]),
		Version:   Version{Major: buf[8], Minor: buf[9], Patch: buf[10]},
	}, nil
}

// tocEntry locates one named section within the file (spec.md §6: "a TOC
// maps section name to byte offset and length").
type tocEntry struct {
	Name   string
	Offset uint64
	Length uint64
}

// writeTOC appends the table of contents and returns its own byte offset,
// for the footer to point at.
func writeTOC(w io.Writer, offset uint64, entries []tocEntry) (uint64, error) {
	var buf bytes.Buffer
	putUvarint(&buf, uint64(len(entries)))
	for _, e := range entries {
		nameBytes := sectionNameBytes(e.Name)
		buf.Write(nameBytes[:])
		var lenOff [16]byte
		binary.LittleEndian.PutUint64(lenOff[:8], e.Offset)
		binary.LittleEndian.PutUint64(lenOff[8:], e.Length)
		buf.Write(lenOff[:])
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return offset, nil
}

func readTOC(r io.ReaderAt, offset, length uint64) ([]tocEntry, error) {
	buf := make([]byte, length)
	if _, err := r.ReadAt(buf, int64(offset)); err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read TOC")
	}
	br := bytes.NewReader(buf)
	n, err := getUvarint(br)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read TOC entry count")
	}
	entries := make([]tocEntry, n)
	for i := range entries {
		var nameBytes [SectionNameSize]byte
		if _, err := io.ReadFull(br, nameBytes[:]); err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read TOC section name")
		}
		var lenOff [16]byte
		if _, err := io.ReadFull(br, lenOff[:]); err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read TOC section offset/length")
		}
		entries[i] = tocEntry{
			Name:   sectionNameString(nameBytes),
			Offset: binary.LittleEndian.Uint64(lenOff[:8]),
			Length: binary.LittleEndian.Uint64(lenOff[8:]),
		}
	}
	return entries, nil
}

func findSection(entries []tocEntry, name string) (tocEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return tocEntry{}, false
}

// readSectionBytes reads one section's raw bytes given its TOC entry.
func readSectionBytes(r io.ReaderAt, e tocEntry) ([]byte, error) {
	buf := make([]byte, e.Length)
	if _, err := r.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read section "+e.Name)
	}
	return buf, nil
}

// fieldRecordsFromBytes decodes the FIELDS section written by writer.go's
// fieldsBuf: a uvarint count followed by (uvarint nameToken, 8-byte LE Rep)
// pairs (spec.md §6: "FIELDS: array of (tokenIndex, valueRep) pairs").
func fieldRecordsFromBytes(b []byte) ([]fieldRecord, error) {
	r := bytes.NewReader(b)
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read field record count")
	}
	records := make([]fieldRecord, n)
	for i := range records {
		nameToken, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read field name token")
		}
		var repBytes [8]byte
		if _, err := io.ReadFull(r, repBytes[:]); err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read field value-rep")
		}
		records[i] = fieldRecord{
			NameToken: uint32(nameToken),
			Rep:       ValueRep(binary.LittleEndian.Uint64(repBytes[:])),
		}
	}
	return records, nil
}

// fieldSetFlatFromBytes decodes the FIELDSETS section: a raw, unprefixed
// run of little-endian uint32 field indices, each run terminated by
// FieldSetSentinel (spec.md §6: "array of field-indices terminated by a
// sentinel index, partitioned into contiguous runs").
func fieldSetFlatFromBytes(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, diag.New(diag.CorruptFile, "FIELDSETS section length is not a multiple of 4")
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return out, nil
}

// fieldSetIndices reads one field-set run starting at offset (an element
// index into flat, as stored by writer.go's fsOffset) up to (not including)
// FieldSetSentinel.
func fieldSetIndices(flat []uint32, offset uint64) ([]uint32, error) {
	if offset > uint64(len(flat)) {
		return nil, diag.Newf(diag.OutOfRange, "field-set offset %d out of range (%d entries)", offset, len(flat))
	}
	i := offset
	for i < uint64(len(flat)) && flat[i] != FieldSetSentinel {
		i++
	}
	if i >= uint64(len(flat)) {
		return nil, diag.New(diag.CorruptFile, "field-set run missing sentinel terminator")
	}
	return flat[offset:i], nil
}

// specRow is the decoded form of one SPECS-section record.
type specRow struct {
	pathIdx  uint32
	specType SpecType
	fsOffset uint64
}

// specRowsFromBytes decodes the SPECS section: a uvarint count followed by
// (uvarint pathIndex, 1-byte specType, uvarint fieldSetOffset) triples
// (spec.md §6: "SPECS: array of (pathIndex, fieldSetIndex, specType)
// triples").
func specRowsFromBytes(b []byte) ([]specRow, error) {
	r := bytes.NewReader(b)
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read spec row count")
	}
	rows := make([]specRow, n)
	for i := range rows {
		pathIdx, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read spec path index")
		}
		specType, err := r.ReadByte()
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read spec type")
		}
		fsOffset, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read spec field-set offset")
		}
		rows[i] = specRow{pathIdx: uint32(pathIdx), specType: SpecType(specType), fsOffset: fsOffset}
	}
	return rows, nil
}

// tokenTableBytes/tokenTableFromBytes serialize a tokenTable as a
// count-prefixed sequence of length-prefixed UTF-8 strings (spec.md §6:
// "TOKENS: length-prefixed UTF-8 strings, zero-indexed").
func tokenTableBytes(t *tokenTable) []byte {
	var buf bytes.Buffer
	putUvarint(&buf, uint64(t.len()))
	for i := 0; i < t.len(); i++ {
		s := t.at(uint32(i))
		putUvarint(&buf, uint64(len(s)))
		buf.WriteString(s)
	}
	return buf.Bytes()
}

func tokenTableFromBytes(b []byte) (*tokenTable, error) {
	r := bytes.NewReader(b)
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read token table count")
	}
	strs := make([]string, n)
	for i := range strs {
		l, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read token length")
		}
		sb := make([]byte, l)
		if _, err := io.ReadFull(r, sb); err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read token bytes")
		}
		strs[i] = string(sb)
	}
	return tokenTableFromStrings(strs), nil
}

// pathsSectionBytes/pathRecordsFromBytes serialize the dense parent-before-child
// pathRecord slice a pathTable accumulated while writing (spec.md §6: "PATHS:
// array of path records").
func pathsSectionBytes(t *pathTable) []byte {
	var buf bytes.Buffer
	putUvarint(&buf, uint64(len(t.records)))
	for _, rec := range t.records {
		putUvarint(&buf, uint64(rec.parent))
		buf.WriteByte(byte(rec.tag))
		putUvarint(&buf, uint64(rec.token))
		putUvarint(&buf, uint64(rec.token2))
	}
	return buf.Bytes()
}

func pathRecordsFromBytes(b []byte) ([]pathRecord, error) {
	r := bytes.NewReader(b)
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read path record count")
	}
	records := make([]pathRecord, n)
	for i := range records {
		parent, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read path parent index")
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read path tag")
		}
		tok, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read path token")
		}
		tok2, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read path token2")
		}
		records[i] = pathRecord{parent: uint32(parent), tag: pathNodeTag(tag), token: uint32(tok), token2: uint32(tok2)}
	}
	return records, nil
}
