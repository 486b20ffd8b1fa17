package fsrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/envresolve/envresolve/resolve"
)

func TestLastReleaseTimeTracksNewestVersionDir(t *testing.T) {
	root := t.TempDir()
	g := New()

	if _, err := g.WriteDefinition(root, "foo", "1.0.0", map[string]string{"package.toml": ""}); err != nil {
		t.Fatalf("WriteDefinition: %v", err)
	}

	t1, err := g.LastReleaseTime("foo", []string{root})
	if err != nil {
		t.Fatalf("LastReleaseTime: %v", err)
	}
	if t1 == 0 {
		t.Fatalf("expected a nonzero release time")
	}

	// A release ten seconds later must be observed as newer.
	later := filepath.Join(root, "foo", "2.0.0")
	if err := os.MkdirAll(later, 0o777); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	future := time.Unix(t1+10, 0)
	if err := os.Chtimes(later, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	t2, err := g.LastReleaseTime("foo", []string{root})
	if err != nil {
		t.Fatalf("LastReleaseTime: %v", err)
	}
	if t2 <= t1 {
		t.Fatalf("expected release time to advance, got %d then %d", t1, t2)
	}
}

func TestLastReleaseTimeUnknownNameIsZero(t *testing.T) {
	root := t.TempDir()
	g := New()

	tm, err := g.LastReleaseTime("does-not-exist", []string{root})
	if err != nil {
		t.Fatalf("LastReleaseTime: %v", err)
	}
	if tm != 0 {
		t.Fatalf("expected 0 for an unknown name, got %d", tm)
	}
}

func TestVariantStateHandleChangesOnInPlaceEdit(t *testing.T) {
	root := t.TempDir()
	g := New()

	dir, err := g.WriteDefinition(root, "foo", "1.0.0", map[string]string{"package.toml": "a"})
	if err != nil {
		t.Fatalf("WriteDefinition: %v", err)
	}

	h1, err := g.VariantStateHandle(dir)
	if err != nil {
		t.Fatalf("VariantStateHandle: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := g.WriteDefinition(root, "foo", "1.0.0", map[string]string{"package.toml": "b"}); err != nil {
		t.Fatalf("WriteDefinition (edit): %v", err)
	}

	h2, err := g.VariantStateHandle(dir)
	if err != nil {
		t.Fatalf("VariantStateHandle: %v", err)
	}
	if h1.Equal(h2) {
		t.Fatalf("expected the state handle to change after an in-place edit")
	}
}

func TestVariantStateHandleMissingResourceIsZero(t *testing.T) {
	g := New()
	h, err := g.VariantStateHandle(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("VariantStateHandle: %v", err)
	}
	if !h.Equal(resolve.IntValue(0)) {
		t.Fatalf("expected IntValue(0) for a missing resource, got %+v", h)
	}
}

func TestMaterializeQualifiesNameWithVersion(t *testing.T) {
	g := New()
	v, err := g.Materialize(resolve.VariantHandle{Name: "foo", Resource: "/x", Extra: resolve.StringValue("1.2.3")})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if v.QualifiedName != "foo-1.2.3" {
		t.Fatalf("expected qualified name foo-1.2.3, got %q", v.QualifiedName)
	}
}

func TestExportVariantCopiesResourceTree(t *testing.T) {
	root := t.TempDir()
	g := New()

	dir, err := g.WriteDefinition(root, "foo", "1.0.0", map[string]string{"package.toml": "contents"})
	if err != nil {
		t.Fatalf("WriteDefinition: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "export", "foo")
	v := resolve.Variant{Name: "foo", QualifiedName: "foo-1.0.0", Resource: dir}
	if err := g.ExportVariant(v, dest); err != nil {
		t.Fatalf("ExportVariant: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "package.toml"))
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if string(data) != "contents" {
		t.Fatalf("expected exported contents to match, got %q", data)
	}
}
