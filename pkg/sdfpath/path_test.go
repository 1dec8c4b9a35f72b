package sdfpath

import (
	"sync"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	it := NewInterner()
	cases := []string{
		"/",
		".",
		"/World",
		"/World/Char/Arm",
		"/World/Char/Arm.geom",
		"/World/Char.render:color",
		"/A.rel[/B]",
		"/A.rel[/B].attr",
		"/A{set=}",
		"/A{set=variant}/B",
		"/A.mapper[/B]",
		"/A.mapper[/B].argName",
		"/A.expression",
	}
	for _, s := range cases {
		p, err := ParseWith(it, s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := p.String(); got != s {
			t.Errorf("round trip: Parse(%q).String() = %q", s, got)
		}
	}
}

func TestAppendChildParentName(t *testing.T) {
	it := NewInterner()
	base, err := NewPrimPath(it, true, "World", "Char")
	if err != nil {
		t.Fatal(err)
	}
	child, err := base.AppendChild(it, "Arm")
	if err != nil {
		t.Fatal(err)
	}
	if child.ParentPath() != base {
		t.Fatalf("ParentPath mismatch: %s != %s", child.ParentPath(), base)
	}
	if child.Name() != "Arm" {
		t.Fatalf("Name() = %q, want Arm", child.Name())
	}
}

func TestScenarioPathAppend(t *testing.T) {
	it := NewInterner()
	p, err := ParseWith(it, "/World/Char/Arm.geom")
	if err != nil {
		t.Fatal(err)
	}
	wantParent, _ := ParseWith(it, "/World/Char/Arm")
	if p.ParentPath() != wantParent {
		t.Fatalf("parent = %s, want %s", p.ParentPath(), wantParent)
	}
	if p.Name() != "geom" {
		t.Fatalf("name = %q, want geom", p.Name())
	}
	if !p.IsPrimPropertyPath() {
		t.Fatal("expected IsPrimPropertyPath")
	}
	if !p.IsAbsolutePath() {
		t.Fatal("expected IsAbsolutePath")
	}
}

func TestFindOrCreateConcurrentIdentity(t *testing.T) {
	it := NewInterner()
	base, _ := NewPrimPath(it, true, "World")

	const goroutines = 32
	results := make([]Path, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			p, err := base.AppendChild(it, "Shared")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = p
		}(i)
	}
	wg.Wait()
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d produced a different handle than goroutine 0", i)
		}
	}
}

func TestHasPrefixAndReplacePrefix(t *testing.T) {
	it := NewInterner()
	p, _ := ParseWith(it, "/World/Char/Arm")
	prefix, _ := ParseWith(it, "/World/Char")
	if !p.HasPrefix(prefix) {
		t.Fatal("expected HasPrefix to hold")
	}

	same, err := ReplacePrefix(it, p, prefix, prefix, false)
	if err != nil {
		t.Fatal(err)
	}
	if same != p {
		t.Fatalf("ReplacePrefix(p, prefix, prefix) = %s, want identity %s", same, p)
	}

	newPrefix, _ := ParseWith(it, "/Other/Thing")
	replaced, err := ReplacePrefix(it, p, prefix, newPrefix, false)
	if err != nil {
		t.Fatal(err)
	}
	if !replaced.HasPrefix(newPrefix) {
		t.Fatalf("%s does not have prefix %s", replaced, newPrefix)
	}
	if replaced.String() != "/Other/Thing/Arm" {
		t.Fatalf("replaced = %s, want /Other/Thing/Arm", replaced.String())
	}
}

func TestReplacePrefixFixesEmbeddedTargetPath(t *testing.T) {
	it := NewInterner()
	rel, err := ParseWith(it, "/A.rel[/Target]")
	if err != nil {
		t.Fatal(err)
	}
	oldTarget, _ := ParseWith(it, "/Target")
	newTarget, _ := ParseWith(it, "/Other/Target")

	withoutFix, err := ReplacePrefix(it, rel, oldTarget, newTarget, false)
	if err != nil {
		t.Fatal(err)
	}
	if withoutFix != rel {
		t.Fatalf("fixTargetPaths=false must leave an unrelated path unchanged, got %s", withoutFix)
	}

	fixed, err := ReplacePrefix(it, rel, oldTarget, newTarget, true)
	if err != nil {
		t.Fatal(err)
	}
	if fixed.String() != "/A.rel[/Other/Target]" {
		t.Fatalf("fixed = %s, want /A.rel[/Other/Target]", fixed.String())
	}
}

func TestReplacePrefixPropertyLikeOldPrefix(t *testing.T) {
	it := NewInterner()
	p, err := ParseWith(it, "/A.rel[/B].weight")
	if err != nil {
		t.Fatal(err)
	}
	oldPrefix, _ := ParseWith(it, "/A.rel[/B]")
	newPrefix, _ := ParseWith(it, "/A.otherRel[/B]")

	replaced, err := ReplacePrefix(it, p, oldPrefix, newPrefix, false)
	if err != nil {
		t.Fatal(err)
	}
	if replaced.String() != "/A.otherRel[/B].weight" {
		t.Fatalf("replaced = %s, want /A.otherRel[/B].weight", replaced.String())
	}
}

func TestRemoveCommonSuffixStopsAtRootPrim(t *testing.T) {
	it := NewInterner()
	a, _ := ParseWith(it, "/A/B/C")
	b, _ := ParseWith(it, "/X/B/C")

	ra, rb := RemoveCommonSuffix(a, b, true)
	if ra.String() != "/A/B" || rb.String() != "/X/B" {
		t.Fatalf("got (%s, %s), want (/A/B, /X/B)", ra, rb)
	}
}

func TestLessTotalOrder(t *testing.T) {
	it := NewInterner()
	paths := []string{"/A", "/A/B", "/B", "."}
	var parsed []Path
	for _, s := range paths {
		p, err := ParseWith(it, s)
		if err != nil {
			t.Fatal(err)
		}
		parsed = append(parsed, p)
	}
	abs, rel := parsed[0], parsed[3]
	if !Less(abs, rel) {
		t.Fatal("absolute paths must sort before relative paths")
	}
	ancestor, descendant := parsed[0], parsed[1]
	if !Less(ancestor, descendant) {
		t.Fatal("an ancestor must sort before its descendant")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"A", "_foo", "foo_bar2"}
	invalid := []string{"", "2foo", "foo bar", "foo-bar"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("expected %q valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("expected %q invalid", s)
		}
	}
}

func TestAppendRelationalAttribute(t *testing.T) {
	it := NewInterner()
	rel, err := ParseWith(it, "/A.rel[/B]")
	if err != nil {
		t.Fatal(err)
	}
	attr, err := rel.AppendRelationalAttribute(it, "weight")
	if err != nil {
		t.Fatalf("AppendRelationalAttribute: %v", err)
	}
	if attr.String() != "/A.rel[/B].weight" {
		t.Fatalf("String() = %q, want /A.rel[/B].weight", attr.String())
	}
	if attr.Name() != "weight" {
		t.Fatalf("Name() = %q, want weight", attr.Name())
	}

	plainProp, err := ParseWith(it, "/A.geom")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := plainProp.AppendRelationalAttribute(it, "weight"); err == nil {
		t.Fatal("expected an error appending a relational attribute to a non-target path")
	}
}
