package sdfpath

import (
	"go.uber.org/zap"
)

var validateLogger = zap.NewNop()

// SetLogger installs the logger used for non-fatal path diagnostics (the
// variant-set-name deprecation warning). Grounded on the teacher's
// log.Named("subsystem") convention; defaults to a no-op logger.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	validateLogger = log.Named("sdfpath")
}

// IsValidIdentifier reports whether name is a legal prim or plain property
// name token: non-empty, first character a letter or underscore, remaining
// characters letters/digits/underscores. Grounded on
// original_source/pxr/usd/sdf/path.cpp's Sdf_IsValidIdentifier, provided
// here as SPEC_FULL.md's prevalidation layer distinct from the excluded
// text-syntax parser (spec.md §1: "the path parser is treated as a black
// box").
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 {
			if !isAlpha {
				return false
			}
			continue
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// isValidNamespacedIdentifier allows ':'-separated identifier components
// (spec.md §6: "A property name may contain ':' ... but may not begin or
// end with ':' or contain adjacent ':'").
func isValidNamespacedIdentifier(name string) bool {
	if name == "" || name[0] == ':' || name[len(name)-1] == ':' {
		return false
	}
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == ':' {
			if i == start {
				return false // adjacent ':' or leading/trailing handled above
			}
			if !IsValidIdentifier(name[start:i]) {
				return false
			}
			start = i + 1
		}
	}
	return true
}

// warnDeprecatedVariantSetName implements spec.md §9's second Open
// Question: "the path grammar permits '-' in variant-set names for
// historical reasons while the layer-level writer rejects it; a port
// should emit a deprecation diagnostic rather than silently accept." This
// repo resolves that question literally: accept, warn, never reject.
func warnDeprecatedVariantSetName(setName string) {
	validateLogger.Warn("variant set name contains a deprecated '-' character",
		zap.String("variantSet", setName))
}
