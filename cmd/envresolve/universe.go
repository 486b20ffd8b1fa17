package main

import (
	"os"
	"path/filepath"

	"github.com/envresolve/envresolve/resolve"
	"github.com/envresolve/envresolve/resolve/fakesolver"
	"github.com/envresolve/envresolve/resolve/vcsrepo"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// requireDoc is one entry of a package.toml's [[requires]] array.
type requireDoc struct {
	Name  string `toml:"name"`
	Range string `toml:"range"`
}

// packageDoc mirrors the on-disk shape of <root>/<name>/<version>/package.toml,
// in the same vein as a project's own Gopkg.toml.
type packageDoc struct {
	Requires []requireDoc `toml:"requires"`
}

// loadUniverse walks each root looking for <name>/<version>/package.toml and
// assembles a fakesolver.Universe from what it finds. It is the package-
// definition source for the CLI's dry-run solver; real deployments would
// plug in a production SolverContract instead.
func loadUniverse(roots []string) (fakesolver.Universe, error) {
	universe := fakesolver.Universe{}

	for _, root := range roots {
		names, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to list repository root %q", root)
		}

		for _, nameEnt := range names {
			if !nameEnt.IsDir() {
				continue
			}
			name := nameEnt.Name()
			nameDir := filepath.Join(root, name)

			versions, err := os.ReadDir(nameDir)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to list %q", nameDir)
			}

			for _, verEnt := range versions {
				if !verEnt.IsDir() {
					continue
				}
				version := verEnt.Name()
				versionDir := filepath.Join(nameDir, version)

				pv := fakesolver.PackageVersion{
					Name:     name,
					Version:  version,
					Resource: versionDir,
				}

				defPath := filepath.Join(versionDir, "package.toml")
				if tree, err := toml.LoadFile(defPath); err == nil {
					var doc packageDoc
					if err := tree.Unmarshal(&doc); err != nil {
						return nil, errors.Wrapf(err, "failed to parse %q", defPath)
					}
					for _, req := range doc.Requires {
						pv.Requires = append(pv.Requires, resolve.PackageRequest{Name: req.Name, VersionRange: req.Range})
					}
				} else if !os.IsNotExist(err) {
					return nil, errors.Wrapf(err, "failed to load %q", defPath)
				}

				universe[name] = append(universe[name], pv)
			}
		}
	}

	return universe, nil
}

// loadVCSUniverse enumerates tags for every name in nameToRemote and turns
// each into a leaf PackageVersion. Unlike loadUniverse, it never reads a
// package.toml out of the remote - doing so would mean checking out every
// tag up front - so VCS-sourced versions carry no Requires. A production
// SolverContract backed by vcsrepo would materialize and inspect each
// candidate lazily during the search instead.
func loadVCSUniverse(nameToRemote map[string]string, g *vcsrepo.Gateway) (fakesolver.Universe, error) {
	universe := fakesolver.Universe{}

	for name, remote := range nameToRemote {
		tags, err := g.Versions(remote)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list versions for %q", name)
		}
		for _, tag := range tags {
			universe[name] = append(universe[name], fakesolver.PackageVersion{
				Name:     name,
				Version:  tag,
				Resource: remote + "@" + tag,
			})
		}
	}

	return universe, nil
}

// mergeUniverses unions b into a, combining version lists for any name
// present in both.
func mergeUniverses(a, b fakesolver.Universe) fakesolver.Universe {
	for name, versions := range b {
		a[name] = append(a[name], versions...)
	}
	return a
}
