package fsrepo

import "testing"

func TestNameIndexLongestPrefixWins(t *testing.T) {
	idx := NewNameIndex()
	idx.Insert("org/", []string{"/repos/org"})
	idx.Insert("org/team/", []string{"/repos/org/team"})

	paths, ok := idx.Paths("org/team/widget")
	if !ok {
		t.Fatalf("expected a match")
	}
	if len(paths) != 1 || paths[0] != "/repos/org/team" {
		t.Fatalf("expected the narrower prefix to win, got %v", paths)
	}
}

func TestNameIndexFallsBackWithoutMatch(t *testing.T) {
	idx := NewNameIndex()
	idx.Insert("org/", []string{"/repos/org"})

	if _, ok := idx.Paths("unrelated"); ok {
		t.Fatalf("expected no match for an unrelated name")
	}
}

func TestIndexHelperFallsBackWhenNilOrUnmatched(t *testing.T) {
	fallback := []string{"/a", "/b"}

	if got := Index(nil, "foo", fallback); len(got) != 2 || got[0] != "/a" {
		t.Fatalf("expected fallback when idx is nil, got %v", got)
	}

	idx := NewNameIndex()
	if got := Index(idx, "foo", fallback); len(got) != 2 {
		t.Fatalf("expected fallback when idx has no matching entry, got %v", got)
	}

	idx.Insert("foo", []string{"/narrow"})
	if got := Index(idx, "foo-bar", fallback); len(got) != 1 || got[0] != "/narrow" {
		t.Fatalf("expected the indexed paths when a prefix matches, got %v", got)
	}
}
