package shapekit_test

import (
	"errors"
	"strings"
	"testing"

	sk "github.com/reoring/shapekit"
)

func TestIssues_ExtendReRoots(t *testing.T) {
	child := sk.NewIssues().
		Append(sk.Path{sk.KeySeg("price")}, sk.CodeWrongType, "x").
		Append(nil, sk.CodeMissingRequired, nil)
	parent := sk.NewIssues().Extend(child, sk.Path{sk.KeySeg("items"), sk.IndexSeg(2)})
	if len(parent) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(parent))
	}
	if parent[0].Path != "/items/2/price" || parent[1].Path != "/items/2" {
		t.Fatalf("unexpected paths: %q %q", parent[0].Path, parent[1].Path)
	}
	if child[0].Path != "/price" {
		t.Fatalf("extend must not modify its input")
	}
	if parent[0].Segments.Dotted() != "items.2.price" {
		t.Fatalf("dotted: %q", parent[0].Segments.Dotted())
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	var iss sk.Issues
	if !iss.Empty() {
		t.Fatalf("nil issues should be empty")
	}
	for _, k := range []string{"a", "b", "c", "d"} {
		iss = iss.Append(sk.Path{sk.KeySeg(k)}, sk.CodeMissingRequired, nil)
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "missing_required at /a; missing_required at /b") || !strings.Contains(msg, "(total 4)") {
		t.Fatalf("unexpected summary: %q", msg)
	}
	var err error = iss
	var got sk.Issues
	if !errors.As(err, &got) || len(got) != 4 {
		t.Fatalf("errors.As should extract Issues")
	}
}

func TestPath_PointerEscaping(t *testing.T) {
	p := sk.Path{}.Field("a/b").Field("c~d").Index(0)
	if got := p.Pointer(); got != "/a~1b/c~0d/0" {
		t.Fatalf("pointer: %q", got)
	}
	if got := (sk.Path{}).Pointer(); got != "/" {
		t.Fatalf("root pointer: %q", got)
	}
}
