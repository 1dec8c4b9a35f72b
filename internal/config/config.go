// Package config holds scenecore's compile-time tunables as overridable
// package vars, the way the teacher's internal/env package exposes the
// B2B-client/channel binding index as a package-level var callers can
// override in tests rather than a hidden constant.
package config

// Pool (pkg/handle) tunables. spec.md §4.1: "Reserves virtual-address space
// up front in up to 2^RegionBits regions each sized for 2^(32-RegionBits)
// elements."
var (
	// RegionBits sizes the region-id portion of a 32-bit handle.
	RegionBits uint = 8
	// ElemsPerSpanShift: the pool commits backing storage in chunks of
	// 1<<ElemsPerSpanShift elements; indices are still claimed one at a time.
	ElemsPerSpanShift uint = 10
)

// Interner (pkg/sdfpath) tunables. spec.md §4.2: "two small open-addressed
// tables sized at power-of-two entries" with "linear probing up to
// 1<<ProbeShift slots".
var (
	CacheSlotsShift uint = 10 // per-Interner shared cache size: 1<<CacheSlotsShift
	ProbeShift      uint = 4  // max linear-probe distance: 1<<ProbeShift
)

// Crate (pkg/crate) tunables: the version the writer stamps when a Document
// carries none. The writer raises a version only up to the payload-list-op
// gate when a value needs it; it does not search for the lowest version that
// represents every value, and a Document's own Version is not capped here.
var (
	WriterMaxMajor uint8 = 1
	WriterMaxMinor uint8 = 1
	WriterMaxPatch uint8 = 0
)

// SpecSync / watch tunables (pkg/crate.WatchReload), grounded on the
// teacher's StartSpecSync debounce default.
var DefaultWatchDebounceMillis = 750

// Inspectsrv default bind address (cmd/cratecat -serve default).
var DefaultInspectAddr = "127.0.0.1:7837"
