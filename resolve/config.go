package resolve

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the set of recognized configuration options, threaded
// explicitly through construction rather than read from a process-wide
// singleton, so tests can vary ResolveCaching and PruneFailedGraph without
// global mutation.
type Config struct {
	// ResolveCaching is the master switch for the CacheProtocol.
	ResolveCaching bool
	// PruneFailedGraph is threaded into both the solver call and the
	// fingerprint.
	PruneFailedGraph bool
	// ReleasePackagesPath and LocalPackagesPath are consumed only by the
	// external binding tool; the core carries them so a single config file
	// can serve both.
	ReleasePackagesPath string
	LocalPackagesPath   string
}

// DefaultConfig is the conservative default: caching on, graphs unpruned,
// no default search paths.
func DefaultConfig() Config {
	return Config{ResolveCaching: true}
}

// configDoc mirrors the shape of a project's on-disk TOML configuration
// file.
type configDoc struct {
	ResolveCaching       bool   `toml:"resolve_caching"`
	PruneFailedGraph     bool   `toml:"prune_failed_graph"`
	ReleasePackagesPath  string `toml:"release_packages_path"`
	LocalPackagesPath    string `toml:"local_packages_path"`
}

// LoadConfig reads a project configuration file in TOML form.
func LoadConfig(path string) (Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to load config file %q", path)
	}

	doc := configDoc{ResolveCaching: true}
	if err := tree.Unmarshal(&doc); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file %q", path)
	}

	return Config{
		ResolveCaching:       doc.ResolveCaching,
		PruneFailedGraph:     doc.PruneFailedGraph,
		ReleasePackagesPath:  doc.ReleasePackagesPath,
		LocalPackagesPath:    doc.LocalPackagesPath,
	}, nil
}
