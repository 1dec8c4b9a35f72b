package sdfpath

import (
	"strings"

	"github.com/edirooss/scenecore/internal/diag"
)

// Parse builds a Path from its canonical string form per the grammar in
// spec.md §6. spec.md treats the production text-syntax parser as an
// external black box returning "a sequence of path elements or an error";
// Parse is this module's own reference implementation of that interface,
// used by tests (the §8 round-trip property) and by pkg/inspectsrv. It is
// not wired into pkg/crate or pkg/specstore, which only ever consume
// already-built Path values.
func Parse(s string) (Path, error) {
	return ParseWith(Default(), s)
}

// ParseWith is Parse against an explicit Interner, for tests that need
// isolation from the process-wide default.
func ParseWith(it *Interner, s string) (Path, error) {
	if s == "." {
		return RelativeRootPath(), nil
	}
	if s == "/" {
		return AbsoluteRootPath(), nil
	}
	if s == "" {
		return EmptyPath, diag.New(diag.InvalidPath, "empty path string")
	}

	absolute := s[0] == '/'
	rest := s
	if absolute {
		rest = s[1:]
	}

	primPart, propPart := splitPropertySuffix(rest)

	base := RelativeRootPath()
	if absolute {
		base = AbsoluteRootPath()
	}

	p, err := parsePrimSegments(it, base, primPart)
	if err != nil {
		return EmptyPath, err
	}
	if propPart == "" {
		return p, nil
	}
	return parsePropertySuffix(it, p, propPart)
}

// splitPropertySuffix finds the first '.' that begins a property suffix,
// not a '.' inside a bracketed target/variant-selection segment.
func splitPropertySuffix(s string) (prim, prop string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case '.':
			if depth == 0 {
				return s[:i], s[i:]
			}
		}
	}
	return s, ""
}

func parsePrimSegments(it *Interner, base Path, s string) (Path, error) {
	if s == "" {
		return base, nil
	}
	cur := base
	for _, seg := range splitTopLevel(s, '/') {
		if seg == "" {
			continue
		}
		name, sels := seg, ""
		if i := strings.IndexByte(seg, '{'); i >= 0 {
			name, sels = seg[:i], seg[i:]
		}
		var err error
		if name != "" {
			if cur, err = cur.AppendChild(it, name); err != nil {
				return EmptyPath, err
			}
		}
		for sels != "" {
			end := strings.IndexByte(sels, '}')
			if end < 0 {
				return EmptyPath, diag.Newf(diag.InvalidPath, "malformed variant selection %q", sels)
			}
			set, variant, err := parseVariantSelection(sels[:end+1])
			if err != nil {
				return EmptyPath, err
			}
			if cur, err = cur.AppendVariantSelection(it, set, variant); err != nil {
				return EmptyPath, err
			}
			sels = sels[end+1:]
		}
	}
	return cur, nil
}

// splitTopLevel splits s on sep, ignoring occurrences inside {...} groups.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func parseVariantSelection(seg string) (set, variant string, err error) {
	if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
		return "", "", diag.Newf(diag.InvalidPath, "malformed variant selection %q", seg)
	}
	inner := seg[1 : len(seg)-1]
	eq := strings.IndexByte(inner, '=')
	if eq < 0 {
		return "", "", diag.Newf(diag.InvalidPath, "malformed variant selection %q", seg)
	}
	return inner[:eq], inner[eq+1:], nil
}

func parsePropertySuffix(it *Interner, prim Path, s string) (Path, error) {
	if !strings.HasPrefix(s, ".") {
		return EmptyPath, diag.Newf(diag.InvalidPath, "expected '.' at start of property suffix %q", s)
	}
	rest := s[1:]

	// The property name runs up to the first '[' (a target or mapper
	// suffix); a relational attribute's "." only follows the closing ']'.
	// The reserved "expression" and "mapper" names are recognized below.
	nameEnd := len(rest)
	for i := 0; i < len(rest); i++ {
		if rest[i] == '[' {
			nameEnd = i
			break
		}
	}
	name := rest[:nameEnd]
	tail := rest[nameEnd:]

	if name == "expression" && tail == "" {
		return prim.AppendExpression(it)
	}
	if name == "mapper" {
		return parseMapper(it, prim, tail)
	}

	p, err := prim.AppendProperty(it, name)
	if err != nil {
		return EmptyPath, err
	}
	if tail == "" {
		return p, nil
	}
	return parseTargetSuffix(it, p, tail)
}

// parseTargetSuffix handles "[<target>]" and, when present, a trailing
// ".<attrName>" relational-attribute suffix: "/A.rel[/B].attr" (spec.md §3
// "RelationalAttribute"; grammar from original_source's element-by-element
// AppendRelationalAttribute dispatch once a target path is current).
func parseTargetSuffix(it *Interner, p Path, tail string) (Path, error) {
	if !strings.HasPrefix(tail, "[") {
		return EmptyPath, diag.Newf(diag.InvalidPath, "malformed target suffix %q", tail)
	}
	end := strings.IndexByte(tail, ']')
	if end < 0 {
		return EmptyPath, diag.Newf(diag.InvalidPath, "unterminated target suffix %q", tail)
	}
	inner := tail[1:end]
	target, err := ParseWith(it, inner)
	if err != nil {
		return EmptyPath, err
	}
	targetPath, err := p.AppendTarget(it, target)
	if err != nil {
		return EmptyPath, err
	}

	rem := tail[end+1:]
	if rem == "" {
		return targetPath, nil
	}
	if !strings.HasPrefix(rem, ".") {
		return EmptyPath, diag.Newf(diag.InvalidPath, "malformed relational attribute suffix %q", rem)
	}
	return targetPath.AppendRelationalAttribute(it, rem[1:])
}

func parseMapper(it *Interner, prim Path, tail string) (Path, error) {
	if !strings.HasPrefix(tail, "[") {
		return EmptyPath, diag.New(diag.InvalidPath, "mapper requires [path]")
	}
	end := strings.IndexByte(tail, ']')
	if end < 0 {
		return EmptyPath, diag.New(diag.InvalidPath, "unterminated mapper target")
	}
	inner := tail[1:end]
	target, err := ParseWith(it, inner)
	if err != nil {
		return EmptyPath, err
	}
	rem := tail[end+1:]

	n := it.findOrCreate(nil, Mapper, func(n *PathNode) { n.embedded = target })
	mp := Path{prim: prim.prim, prop: n}
	if rem == "" {
		return mp, nil
	}
	if !strings.HasPrefix(rem, ".") {
		return EmptyPath, diag.Newf(diag.InvalidPath, "malformed mapper arg suffix %q", rem)
	}
	argName := rem[1:]
	argNode := it.findOrCreate(n, MapperArg, func(n *PathNode) { n.name = argName })
	return Path{prim: prim.prim, prop: argNode}, nil
}
