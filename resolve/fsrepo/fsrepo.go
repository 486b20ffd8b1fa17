// Package fsrepo is a filesystem-backed resolve.RepoGateway. A repository
// root is laid out as <root>/<name>/<version>/, each such directory holding
// a package definition; last-release-time is the newest such directory's
// mtime, and a variant's state handle is the newest mtime found anywhere in
// its own definition directory tree (so editing a package definition in
// place is detected the same way a brand new release is).
package fsrepo

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/envresolve/envresolve/resolve"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/termie/go-shutil"
	"github.com/theckman/go-flock"
)

// Gateway implements resolve.RepoGateway and resolve.VariantMaterializer
// over a set of local directory trees.
type Gateway struct {
	mu     sync.Mutex
	flocks map[string]*flock.Flock // one scan-guard lock per repository root

	// Index, when set, narrows which search paths LastReleaseTime actually
	// stats for a given name; see NameIndex.
	Index *NameIndex
}

func New() *Gateway {
	return &Gateway{flocks: make(map[string]*flock.Flock)}
}

// RepoID returns the stable "filesystem@<abs path>" identity for path.
func (g *Gateway) RepoID(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "fsrepo: failed to resolve %q", path)
	}
	return "filesystem@" + abs, nil
}

func (g *Gateway) scanLock(path string) *flock.Flock {
	g.mu.Lock()
	defer g.mu.Unlock()
	fl, ok := g.flocks[path]
	if !ok {
		fl = flock.NewFlock(filepath.Join(path, ".envresolve-scan.lock"))
		g.flocks[path] = fl
	}
	return fl
}

// withScanLock serializes this process's own scans of path against its own
// definition-writing helpers (WriteDefinition); it is not part of the
// cross-process cache-invalidation story, which stays lock-free.
func (g *Gateway) withScanLock(path string, fn func() error) error {
	fl := g.scanLock(path)
	locked, err := fl.TryLock()
	if err != nil {
		return errors.Wrapf(err, "fsrepo: failed to lock %q", path)
	}
	if locked {
		defer fl.Unlock()
	}
	return fn()
}

// LastReleaseTime returns the newest mtime among <path>/<name>/* across
// packagePaths, or 0 if name is not found anywhere.
func (g *Gateway) LastReleaseTime(name string, packagePaths []string) (int64, error) {
	var newest int64

	for _, base := range Index(g.Index, name, packagePaths) {
		nameDir := filepath.Join(base, name)
		fi, err := os.Stat(nameDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, errors.Wrapf(err, "fsrepo: failed to stat %q", nameDir)
		}
		if !fi.IsDir() {
			continue
		}

		err = g.withScanLock(base, func() error {
			entries, err := os.ReadDir(nameDir)
			if err != nil {
				return errors.Wrapf(err, "fsrepo: failed to list %q", nameDir)
			}
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				info, err := e.Info()
				if err != nil {
					return err
				}
				if t := info.ModTime().Unix(); t > newest {
					newest = t
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	return newest, nil
}

// VariantStateHandle returns the newest mtime, in nanoseconds, of resource
// (a version directory path) and everything beneath it as a scalar state
// handle.
func (g *Gateway) VariantStateHandle(resource string) (resolve.StateHandle, error) {
	var latest int64
	err := godirwalk.Walk(resource, &godirwalk.Options{
		Callback: func(p string, de *godirwalk.Dirent) error {
			fi, err := os.Lstat(p)
			if err != nil {
				return err
			}
			if t := fi.ModTime().UnixNano(); t > latest {
				latest = t
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		if os.IsNotExist(err) {
			return resolve.IntValue(0), nil
		}
		return resolve.Value{}, errors.Wrapf(err, "fsrepo: failed to walk %q", resource)
	}
	return resolve.IntValue(latest), nil
}

// Materialize turns a handle produced over this gateway's trees into a
// concrete Variant. QualifiedName is "<name>-<version>", the version being
// the handle's Extra string payload (set by the solver producing the
// handle).
func (g *Gateway) Materialize(h resolve.VariantHandle) (resolve.Variant, error) {
	version := h.Extra.S
	qn := h.Name
	if version != "" {
		qn = h.Name + "-" + version
	}
	return resolve.Variant{
		Name:          h.Name,
		QualifiedName: qn,
		Resource:      h.Resource,
	}, nil
}

// ExportVariant copies a materialized variant's definition tree to destDir.
func (g *Gateway) ExportVariant(v resolve.Variant, destDir string) error {
	if err := os.MkdirAll(filepath.Dir(destDir), 0o777); err != nil {
		return errors.Wrapf(err, "fsrepo: failed to create %q", destDir)
	}
	if err := shutil.CopyTree(v.Resource, destDir, nil); err != nil {
		return errors.Wrapf(err, "fsrepo: failed to export %q to %q", v.Resource, destDir)
	}
	return nil
}

// WriteDefinition creates or touches <root>/<name>/<version>/ so that a
// subsequent VariantStateHandle/LastReleaseTime call observes the change.
// It exists for tests that need a concrete way to mutate the repository,
// simulating a new release or an in-place package-definition edit.
func (g *Gateway) WriteDefinition(root, name, version string, files map[string]string) (string, error) {
	dir := filepath.Join(root, name, version)
	return dir, g.withScanLock(root, func() error {
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return errors.Wrapf(err, "fsrepo: failed to create %q", dir)
		}
		now := time.Now()
		for rel, content := range files {
			p := filepath.Join(dir, rel)
			if err := os.WriteFile(p, []byte(content), 0o666); err != nil {
				return errors.Wrapf(err, "fsrepo: failed to write %q", p)
			}
			if err := os.Chtimes(p, now, now); err != nil {
				return errors.Wrapf(err, "fsrepo: failed to touch %q", p)
			}
		}
		return os.Chtimes(dir, now, now)
	})
}
