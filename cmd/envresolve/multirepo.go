package main

import (
	"strings"

	"github.com/envresolve/envresolve/resolve"
	"github.com/envresolve/envresolve/resolve/fsrepo"
	"github.com/envresolve/envresolve/resolve/vcsrepo"
	"github.com/pkg/errors"
)

// vcsPrefix marks a -repo value as a git remote rather than a filesystem
// root, e.g. "vcs:https://github.com/example/foo.git".
const vcsPrefix = "vcs:"

func isVCSPath(path string) (remote string, ok bool) {
	if strings.HasPrefix(path, vcsPrefix) {
		return strings.TrimPrefix(path, vcsPrefix), true
	}
	return "", false
}

// isVCSResource reports whether resource was produced by vcsrepo: its
// resources are always "<remote>@<tag>", a shape a plain filesystem path
// never takes.
func isVCSResource(resource string) bool {
	return strings.Contains(resource, "@")
}

// multiRepo dispatches between a filesystem-backed and a git-backed
// RepoGateway, letting a single Resolver draw package definitions from both
// kinds of search path at once. vcs may be nil when no -vcs-remote flags
// were given.
type multiRepo struct {
	fs  *fsrepo.Gateway
	vcs *vcsrepo.Gateway
}

func (m *multiRepo) RepoID(path string) (string, error) {
	if remote, ok := isVCSPath(path); ok {
		if m.vcs == nil {
			return "", errors.Errorf("multirepo: %q names a vcs remote but no -vcs-remote was configured", path)
		}
		return m.vcs.RepoID(remote)
	}
	return m.fs.RepoID(path)
}

func (m *multiRepo) LastReleaseTime(name string, packagePaths []string) (int64, error) {
	var fsPaths, vcsRemotes []string
	for _, p := range packagePaths {
		if remote, ok := isVCSPath(p); ok {
			vcsRemotes = append(vcsRemotes, remote)
		} else {
			fsPaths = append(fsPaths, p)
		}
	}

	if m.vcs != nil && len(vcsRemotes) > 0 {
		t, err := m.vcs.LastReleaseTime(name, vcsRemotes)
		if err != nil {
			return 0, err
		}
		if t != 0 {
			return t, nil
		}
	}
	if len(fsPaths) > 0 {
		return m.fs.LastReleaseTime(name, fsPaths)
	}
	return 0, nil
}

func (m *multiRepo) VariantStateHandle(resource string) (resolve.StateHandle, error) {
	if isVCSResource(resource) {
		if m.vcs == nil {
			return resolve.StateHandle{}, errors.Errorf("multirepo: %q looks like a vcs resource but no -vcs-remote was configured", resource)
		}
		return m.vcs.VariantStateHandle(resource)
	}
	return m.fs.VariantStateHandle(resource)
}

func (m *multiRepo) Materialize(h resolve.VariantHandle) (resolve.Variant, error) {
	if isVCSResource(h.Resource) {
		if m.vcs == nil {
			return resolve.Variant{}, errors.Errorf("multirepo: %q looks like a vcs resource but no -vcs-remote was configured", h.Resource)
		}
		return m.vcs.Materialize(h)
	}
	return m.fs.Materialize(h)
}
