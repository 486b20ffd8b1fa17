package fsrepo

import "github.com/armon/go-radix"

// NameIndex accelerates LastReleaseTime lookups when a Gateway is
// configured with many search paths and package names follow a namespaced
// convention (e.g. "org/pkg"): it maps the longest matching name prefix to
// the subset of search paths actually worth statting.
type NameIndex struct {
	tree *radix.Tree
}

func NewNameIndex() *NameIndex {
	return &NameIndex{tree: radix.New()}
}

// Insert records that names with the given prefix live under paths.
func (idx *NameIndex) Insert(prefix string, paths []string) {
	idx.tree.Insert(prefix, append([]string(nil), paths...))
}

// Paths returns the narrowest registered prefix's search paths for name, or
// ok=false if no prefix in the index matches.
func (idx *NameIndex) Paths(name string) (paths []string, ok bool) {
	_, v, found := idx.tree.LongestPrefix(name)
	if !found {
		return nil, false
	}
	return v.([]string), true
}

// Index narrows packagePaths using idx, falling back to the full list when
// idx is nil or has no matching entry for name.
func Index(idx *NameIndex, name string, packagePaths []string) []string {
	if idx == nil {
		return packagePaths
	}
	if paths, ok := idx.Paths(name); ok {
		return paths
	}
	return packagePaths
}
