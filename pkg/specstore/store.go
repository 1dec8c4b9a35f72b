// Package specstore implements the flat, path-keyed spec/field store that
// sits on top of pkg/crate (spec.md §4.5): a hash map from sdfpath.Path to a
// spec's type and field vector, populated from a crate file on Open and
// flattened back into one on Save/Export.
package specstore

import (
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

// Store holds every spec of one scene in memory, keyed by path.
//
// Consistency Model:
//   - A crate file, when present, is the store's durable origin; once Open
//     returns, the in-memory map is the only state callers observe until a
//     Save writes it back out.
//   - Save overwrites the store's own backing file and remembers the new
//     path as the instance's source; Export writes a detached copy and
//     leaves the live instance and its source path untouched (spec.md
//     §4.5.1: "Export must not affect the live instance").
//
// Concurrency Model:
//   - stateRW guards the specs map and every fieldVector reachable from it.
//     Reads take RLock and return resolved value.Value copies; mutations
//     (Set, Erase, CreateSpec, EraseSpec, MoveSpec) take the full Lock.
//   - writeMu serializes Save/Export against each other and against
//     themselves, the way the teacher's writeMu orders Redis I/O: here it
//     orders the snapshot-then-encode-then-write sequence against a
//     concurrent Save racing to the same file.
//   - Per spec.md §5, concurrent mutation and concurrent reads are not
//     isolated from each other at the domain level — a caller querying
//     mid-mutation may observe a partially-edited store across two separate
//     calls — but no single call ever observes a torn fieldVector or map,
//     since every call holds stateRW for its whole duration.
type Store struct {
	log *zap.Logger
	it  *sdfpath.Interner

	writeMu sync.Mutex
	stateRW sync.RWMutex

	specs   map[sdfpath.Path]*specRecord
	version crate.Version
	reader  *crate.Reader

	sourcePath string
}

// specRecord is one spec's type tag plus its (possibly shared) field vector.
type specRecord struct {
	specType crate.SpecType
	fields   *fieldVector
}

// fieldEntry is one (name, lazily-resolvable value) pair.
type fieldEntry struct {
	name   string
	holder crate.ValueHolder
}

// fieldVector is a spec's field list, kept sorted by name both so lookups
// can binary-search and so two specs built from an identical field set
// always produce an identical write-time ordering (spec.md §4.5.6 step 2:
// field-sets dedup by hashing their exact (token, value-rep) sequence).
//
// refCount exists so a future caller that explicitly shares a fieldVector
// across two specRecords gets correct copy-on-write semantics (spec.md §3
// "Field vector... reference-counted and copy-on-write. Mutating a spec's
// fields detaches the vector if shared, then edits in place"); Open does
// not itself reconstruct the on-disk FIELDSETS section's cross-spec sharing
// — each loaded spec gets its own owned vector at refCount 1 — so own()
// rarely has more than one owner to detach from in practice. See
// DESIGN.md.
type fieldVector struct {
	refCount int32
	entries  []fieldEntry
}

func newFieldVector() *fieldVector { return &fieldVector{refCount: 1} }

func (fv *fieldVector) find(name string) int {
	i := sort.Search(len(fv.entries), func(i int) bool { return fv.entries[i].name >= name })
	if i < len(fv.entries) && fv.entries[i].name == name {
		return i
	}
	return -1
}

func (fv *fieldVector) get(name string) (crate.ValueHolder, bool) {
	i := fv.find(name)
	if i < 0 {
		return nil, false
	}
	return fv.entries[i].holder, true
}

func (fv *fieldVector) names() []string {
	out := make([]string, len(fv.entries))
	for i, e := range fv.entries {
		out[i] = e.name
	}
	return out
}

// own returns a uniquely-owned fieldVector ready for in-place mutation,
// cloning fv first if another spec still references it.
func (fv *fieldVector) own() *fieldVector {
	if fv.refCount <= 1 {
		fv.refCount = 1
		return fv
	}
	fv.refCount--
	clone := make([]fieldEntry, len(fv.entries))
	copy(clone, fv.entries)
	return &fieldVector{refCount: 1, entries: clone}
}

func (fv *fieldVector) set(name string, v value.Value) *fieldVector {
	out := fv.own()
	if i := out.find(name); i >= 0 {
		out.entries[i].holder = crate.Eager(v)
		return out
	}
	i := sort.Search(len(out.entries), func(i int) bool { return out.entries[i].name >= name })
	out.entries = append(out.entries, fieldEntry{})
	copy(out.entries[i+1:], out.entries[i:])
	out.entries[i] = fieldEntry{name: name, holder: crate.Eager(v)}
	return out
}

func (fv *fieldVector) erase(name string) *fieldVector {
	if fv.find(name) < 0 {
		return fv
	}
	out := fv.own()
	i := out.find(name)
	out.entries = append(out.entries[:i], out.entries[i+1:]...)
	return out
}

// Open populates a Store from the crate file at assetPath (spec.md §4.5.1).
// it is the interner used to materialize the file's PATHS section; nil
// selects sdfpath.Default(). On a reader failure the returned *Store is
// still valid and empty rather than nil, so a failed Open behaves exactly
// like a query against an empty store (spec.md §7): only the error signals
// the failure.
func Open(assetPath string, detached bool, it *sdfpath.Interner, log *zap.Logger) (*Store, error) {
	if it == nil {
		it = sdfpath.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("specstore")

	doc, reader, err := crate.Open(assetPath, detached, it, log)
	if err != nil {
		return &Store{
			log:        log,
			it:         it,
			specs:      make(map[sdfpath.Path]*specRecord),
			sourcePath: assetPath,
		}, err
	}

	st := storeFromDocument(doc, it, log)
	st.reader = reader
	st.sourcePath = assetPath
	return st, nil
}

// FromDocument builds a Store directly from an already-decoded
// crate.Document, without going through file I/O. Intended for
// pkg/crate.WatchReload callers that re-Open a changed file themselves and
// need a fresh Store for the reloaded content (cmd/cratecat's -watch path).
// The returned Store carries no backing crate.Reader: its Document came
// from a detached Open, so every field value is already eager.
func FromDocument(doc *crate.Document, it *sdfpath.Interner, log *zap.Logger) (*Store, error) {
	if it == nil {
		it = sdfpath.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return storeFromDocument(doc, it, log.Named("specstore")), nil
}

func storeFromDocument(doc *crate.Document, it *sdfpath.Interner, log *zap.Logger) *Store {
	st := &Store{
		log:     log,
		it:      it,
		specs:   make(map[sdfpath.Path]*specRecord, len(doc.Specs)),
		version: doc.Version,
	}
	for _, se := range doc.Specs {
		fv := newFieldVector()
		fv.entries = make([]fieldEntry, len(se.Fields))
		for i, f := range se.Fields {
			fv.entries[i] = fieldEntry{name: f.Name, holder: f.Value}
		}
		sort.Slice(fv.entries, func(i, j int) bool { return fv.entries[i].name < fv.entries[j].name })
		st.specs[se.Path] = &specRecord{specType: se.SpecType, fields: fv}
	}
	return st
}

// Close releases the Store's backing crate.Reader, if Open was non-detached.
// Fields not yet resolved fail afterward the same way a closed crate.Reader
// fails (spec.md §4.5.1).
func (s *Store) Close() error {
	s.stateRW.Lock()
	defer s.stateRW.Unlock()
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}

// buildDocument snapshots the store into a crate.Document in the write
// order spec.md §4.5.6 step 1 prescribes: prim paths first, then property
// paths, each partition sorted independently. The two sorts run
// concurrently via errgroup — spec.md §5: "Save runs the sort step in
// parallel via a dispatcher but completes before returning" — and every
// field's lazily-resolved value is materialized so the resulting Document
// owns its values outright. Resolve failures across every field are
// collected with multierr rather than aborting at the first one, so a
// caller debugging a batch of corrupt lazy values sees the whole set in one
// error.
func (s *Store) buildDocument() (*crate.Document, error) {
	s.stateRW.RLock()
	defer s.stateRW.RUnlock()

	type pathSpec struct {
		path sdfpath.Path
		rec  *specRecord
	}
	var prims, props []pathSpec
	for p, r := range s.specs {
		if p.IsPropertyPath() {
			props = append(props, pathSpec{p, r})
		} else {
			prims = append(prims, pathSpec{p, r})
		}
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		sort.Slice(prims, func(i, j int) bool { return sdfpath.Less(prims[i].path, prims[j].path) })
		return nil
	})
	g.Go(func() error {
		sort.Slice(props, func(i, j int) bool { return sdfpath.Less(props[i].path, props[j].path) })
		return nil
	})
	_ = g.Wait() // neither sort can fail; Wait is purely the join point

	ordered := make([]pathSpec, 0, len(prims)+len(props))
	ordered = append(ordered, prims...)
	ordered = append(ordered, props...)

	entries := make([]crate.SpecEntry, 0, len(ordered))
	var resolveErrs error
	for _, ps := range ordered {
		fields := make([]crate.FieldEntry, 0, len(ps.rec.fields.entries))
		for _, fe := range ps.rec.fields.entries {
			v, err := fe.holder.Resolve()
			if err != nil {
				resolveErrs = multierr.Append(resolveErrs,
					diag.Wrap(diag.IOError, err, "resolve field "+fe.name+" at "+ps.path.String()))
				continue
			}
			fields = append(fields, crate.FieldEntry{Name: fe.name, Value: crate.Eager(v)})
		}
		entries = append(entries, crate.SpecEntry{Path: ps.path, SpecType: ps.rec.specType, Fields: fields})
	}
	if resolveErrs != nil {
		return nil, resolveErrs
	}
	return &crate.Document{Version: s.version, Specs: entries}, nil
}

// Save atomically writes the store to fileName and remembers fileName as
// its source (spec.md §4.5.1: "Save may mutate the backing file to a new
// version").
func (s *Store) Save(fileName string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	doc, err := s.buildDocument()
	if err != nil {
		diag.LogChain(s.log, err)
		return err
	}
	if err := crate.Save(fileName, doc); err != nil {
		diag.LogChain(s.log, err)
		return err
	}
	s.stateRW.Lock()
	s.sourcePath = fileName
	s.version = doc.Version
	s.stateRW.Unlock()
	return nil
}

// Export writes the store to fileName without touching the live instance's
// source path or remembered version (spec.md §4.5.1).
func (s *Store) Export(fileName string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	doc, err := s.buildDocument()
	if err != nil {
		diag.LogChain(s.log, err)
		return err
	}
	if err := crate.Export(fileName, doc); err != nil {
		diag.LogChain(s.log, err)
		return err
	}
	return nil
}
