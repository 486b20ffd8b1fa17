// Package vcsrepo is a git-backed resolve.RepoGateway: each package name
// maps to a git remote, versions are tags, and a release time is the
// commit time of its newest tag. It is the VCS counterpart to fsrepo, for
// repositories whose packages are themselves version-controlled checkouts
// rather than flat directory trees.
package vcsrepo

import (
	"path/filepath"
	"sync"

	"github.com/Masterminds/vcs"
	"github.com/envresolve/envresolve/resolve"
	"github.com/pkg/errors"
)

// NameToRemote resolves a package name to a clonable git remote URL; the
// concrete mapping (a registry lookup, a naming convention) is left to the
// caller.
type NameToRemote func(name string) (remote string, ok bool)

// Gateway implements resolve.RepoGateway over git remotes checked out
// beneath a local workdir.
type Gateway struct {
	Workdir string
	Resolve NameToRemote

	mu    sync.Mutex
	repos map[string]vcs.Repo // remote -> checked out repo
}

func New(workdir string, resolve NameToRemote) *Gateway {
	return &Gateway{Workdir: workdir, Resolve: resolve, repos: make(map[string]vcs.Repo)}
}

// RepoID returns "vcs@<remote>" for a configured search path, where path is
// itself interpreted as the remote URL (VCS-backed search paths name a
// remote directly rather than a local directory).
func (g *Gateway) RepoID(path string) (string, error) {
	return "vcs@" + path, nil
}

func (g *Gateway) repoFor(remote string) (vcs.Repo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.repos[remote]; ok {
		return r, nil
	}

	local := filepath.Join(g.Workdir, sanitize(remote))
	r, err := vcs.NewGitRepo(remote, local)
	if err != nil {
		return nil, errors.Wrapf(err, "vcsrepo: failed to bind git repo %q", remote)
	}
	if !r.CheckLocal() {
		if err := r.Get(); err != nil {
			return nil, errors.Wrapf(err, "vcsrepo: failed to clone %q", remote)
		}
	} else if err := r.Update(); err != nil {
		return nil, errors.Wrapf(err, "vcsrepo: failed to update %q", remote)
	}

	g.repos[remote] = r
	return r, nil
}

// LastReleaseTime returns the commit time of name's newest tag across
// packagePaths (each a remote URL), or 0 if name resolves to no remote or
// has no tags.
func (g *Gateway) LastReleaseTime(name string, packagePaths []string) (int64, error) {
	remote, ok := g.Resolve(name)
	if !ok {
		return 0, nil
	}

	var found bool
	for _, p := range packagePaths {
		if p == remote {
			found = true
			break
		}
	}
	if !found {
		return 0, nil
	}

	r, err := g.repoFor(remote)
	if err != nil {
		return 0, err
	}

	tags, err := r.Tags()
	if err != nil {
		return 0, errors.Wrapf(err, "vcsrepo: failed to list tags for %q", remote)
	}
	if len(tags) == 0 {
		return 0, nil
	}

	var newest int64
	for _, tag := range tags {
		ci, err := r.CommitInfo(tag)
		if err != nil {
			continue
		}
		if t := ci.Date.Unix(); t > newest {
			newest = t
		}
	}
	return newest, nil
}

// Versions returns every tag known for remote, the raw version set a
// package-definition loader can turn into candidate PackageVersions without
// checking out any of them.
func (g *Gateway) Versions(remote string) ([]string, error) {
	r, err := g.repoFor(remote)
	if err != nil {
		return nil, err
	}
	tags, err := r.Tags()
	if err != nil {
		return nil, errors.Wrapf(err, "vcsrepo: failed to list tags for %q", remote)
	}
	return tags, nil
}

// VariantStateHandle returns the commit hash of resource (a "<remote>@<tag>"
// resource locator) as the state handle: re-tagging the same name at the
// same string would be unusual, but a forced tag move is exactly the kind
// of in-place edit this must detect.
func (g *Gateway) VariantStateHandle(resource string) (resolve.StateHandle, error) {
	remote, tag := splitResource(resource)
	r, err := g.repoFor(remote)
	if err != nil {
		return resolve.Value{}, err
	}
	ci, err := r.CommitInfo(tag)
	if err != nil {
		return resolve.Value{}, errors.Wrapf(err, "vcsrepo: failed to read commit info for %q", resource)
	}
	return resolve.StringValue(ci.Commit), nil
}

// Materialize turns a handle into a concrete Variant without checking out
// the tag; callers that need the files should call Export.
func (g *Gateway) Materialize(h resolve.VariantHandle) (resolve.Variant, error) {
	version := h.Extra.S
	qn := h.Name
	if version != "" {
		qn = h.Name + "-" + version
	}
	return resolve.Variant{Name: h.Name, QualifiedName: qn, Resource: h.Resource}, nil
}

// Export checks out resource's tag and copies the working tree to destDir.
func (g *Gateway) Export(resource, destDir string) error {
	remote, tag := splitResource(resource)
	r, err := g.repoFor(remote)
	if err != nil {
		return err
	}
	if err := r.UpdateVersion(tag); err != nil {
		return errors.Wrapf(err, "vcsrepo: failed to check out %q at %q", remote, tag)
	}
	return r.ExportDir(destDir)
}

func splitResource(resource string) (remote, tag string) {
	i := len(resource) - 1
	for ; i >= 0; i-- {
		if resource[i] == '@' {
			return resource[:i], resource[i+1:]
		}
	}
	return resource, ""
}

var sanitizeReplacer = func(r rune) rune {
	switch r {
	case '/', ':', '.':
		return '-'
	}
	return r
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, sanitizeReplacer(r))
	}
	return string(out)
}
