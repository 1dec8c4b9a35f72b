package crate

import (
	"fmt"

	"github.com/edirooss/scenecore/internal/diag"
)

// Version is a crate file's (major, minor, patch) tuple (spec.md §4.5.7,
// §6). Supplemented per SPEC_FULL.md §6: a small explicit feature-gate
// table replaces scattering magic version comparisons through the reader
// and writer, grounded on original_source/pxr/usd/usd/crateData.cpp's
// _FileVersion gating.
type Version struct {
	Major, Minor, Patch uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

// Less orders versions lexicographically by (major, minor, patch).
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func (v Version) AtLeast(o Version) bool { return !v.Less(o) }

// feature is one version-gated capability, per SPEC_FULL.md §6's
// "explicit min/max table per feature" decision.
type feature struct {
	name        string
	minVersion  Version
	elideBefore bool // true: the feature's artifacts must be elided below minVersion rather than rejected
}

var (
	featurePayloadListOp = feature{name: "payload-list-op", minVersion: payloadListOpVersion}
	featureTargetSpecs   = feature{name: "target-specs", minVersion: targetSpecElideBelow, elideBefore: true}
)

// SupportsPayloadListOp reports whether v can represent the payload field
// as a general list-op rather than the single-payload compact form
// (spec.md §4.5.4, §4.5.7: "Payload list-ops are supported at or above a
// given version; below, single-payload compact encoding is the only
// option").
func (v Version) SupportsPayloadListOp() bool { return v.AtLeast(featurePayloadListOp.minVersion) }

// MustElideTargetSpecs reports whether v predates relationship-target spec
// support and such specs (which are never stored anyway in this port, see
// spec.md §4.5.2) must be dropped on import (spec.md §4.5.7: "Target specs
// (empty) were stored in files below a given version and must be elided on
// import").
func (v Version) MustElideTargetSpecs() bool { return v.Less(featureTargetSpecs.minVersion) }

// CheckReadable enforces spec.md §4.5.7's reader compatibility rule:
// "Readers refuse majors they do not know; accept any minor/patch at or
// below their own maximum."
func CheckReadable(fileVersion, readerMax Version) error {
	if fileVersion.Major != readerMax.Major {
		return diag.Newf(diag.UnsupportedVersion, "crate file major version %d is not supported by reader major version %d", fileVersion.Major, readerMax.Major).
			With("fileVersion", fileVersion.String()).With("readerMax", readerMax.String())
	}
	if fileVersion.Minor > readerMax.Minor || (fileVersion.Minor == readerMax.Minor && fileVersion.Patch > readerMax.Patch) {
		return diag.Newf(diag.UnsupportedVersion, "crate file version %s exceeds reader maximum %s", fileVersion, readerMax).
			With("fileVersion", fileVersion.String()).With("readerMax", readerMax.String())
	}
	return nil
}
