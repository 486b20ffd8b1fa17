package main

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/envresolve/envresolve/resolve"
	"github.com/envresolve/envresolve/resolve/boltcache"
	"github.com/envresolve/envresolve/resolve/fakesolver"
	"github.com/envresolve/envresolve/resolve/fsrepo"
	"github.com/envresolve/envresolve/resolve/vcsrepo"
	"github.com/pkg/errors"
)

type solveCommand struct {
	repos       repeatedFlag
	vcsRemotes  repeatedFlag
	vcsWorkdir  string
	configPath  string
	cachePath   string
	timestamp   int64
	startDepth  int
	maxDepth    int
	building    bool
	pruneFailed bool
}

func (*solveCommand) Name() string { return "solve" }
func (*solveCommand) Args() string { return "<name>[@<range>] [...]" }
func (*solveCommand) ShortHelp() string {
	return "Resolve a set of package requests against one or more repositories"
}
func (*solveCommand) LongHelp() string {
	return `Resolve a set of package requests against one or more filesystem
and/or git repositories, printing the resolved variants or the
failure/abort reason.

Each positional argument names a request, e.g. "foo" or "foo@1.0+".
Use -vcs-remote to map a package name onto a git remote in addition to,
or instead of, any -repo filesystem roots.`
}

func (c *solveCommand) Register(fs *flag.FlagSet) {
	fs.Var(&c.repos, "repo", "filesystem repository root (repeatable)")
	fs.Var(&c.vcsRemotes, "vcs-remote", "\"<name>=<remote>\" mapping a package name to a git remote (repeatable)")
	fs.StringVar(&c.vcsWorkdir, "vcs-workdir", ".envresolve-vcs", "local directory for vcs-remote checkouts")
	fs.StringVar(&c.configPath, "config", "", "path to a TOML configuration file")
	fs.StringVar(&c.cachePath, "cache", "", "path to a boltcache file (disabled if empty)")
	fs.Int64Var(&c.timestamp, "timestamp", 0, "resolution timestamp horizon (0 = none)")
	fs.IntVar(&c.startDepth, "start-depth", 0, "initial solver search depth (0 = single solve, capped by -max-depth)")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "maximum solver search depth (0 = unbounded)")
	fs.BoolVar(&c.building, "building", false, "pass building=true to the solver")
	fs.BoolVar(&c.pruneFailed, "prune-failed-graph", false, "prune failed branches from the resolve graph")
}

func (c *solveCommand) Run(loggers *Loggers, args []string) error {
	if len(c.repos) == 0 && len(c.vcsRemotes) == 0 {
		return errors.New("solve: at least one -repo or -vcs-remote is required")
	}

	requests, err := parseRequests(args)
	if err != nil {
		return err
	}

	cfg := resolve.DefaultConfig()
	if c.configPath != "" {
		cfg, err = resolve.LoadConfig(c.configPath)
		if err != nil {
			return err
		}
	}
	cfg.PruneFailedGraph = cfg.PruneFailedGraph || c.pruneFailed

	nameToRemote, err := parseVCSRemotes(c.vcsRemotes)
	if err != nil {
		return err
	}

	repo := &multiRepo{fs: fsrepo.New()}
	if len(nameToRemote) > 0 {
		repo.vcs = vcsrepo.New(c.vcsWorkdir, func(name string) (string, bool) {
			remote, ok := nameToRemote[name]
			return remote, ok
		})
	}

	var cache resolve.CacheGateway
	if c.cachePath != "" {
		bc, err := boltcache.Open(c.cachePath)
		if err != nil {
			return err
		}
		defer bc.Close()
		cache = bc
	}

	universe, err := loadUniverse(c.repos)
	if err != nil {
		return err
	}

	packagePaths := append([]string{}, c.repos...)
	if repo.vcs != nil {
		vcsUniverse, err := loadVCSUniverse(nameToRemote, repo.vcs)
		if err != nil {
			return err
		}
		universe = mergeUniverses(universe, vcsUniverse)
		for _, remote := range nameToRemote {
			packagePaths = append(packagePaths, vcsPrefix+remote)
		}
	}
	loggers.verbosef("loaded %d package names from %d repositories\n", len(universe), len(packagePaths))

	params := resolve.Params{
		PackageRequests: requests,
		PackagePaths:    packagePaths,
		Timestamp:       c.timestamp,
		Building:        c.building,
		Output:          loggers.Err.Writer(),
		MaxDepth:        c.maxDepth,
		StartDepth:      c.startDepth,
		Caching:         true,
		Config:          cfg,
		Repo:            repo,
		Cache:           cache,
		Solver:          fakesolver.New(universe),
		Logger:          loggers.Out,
	}

	r, err := resolve.New(params)
	if err != nil {
		return err
	}
	if err := r.Solve(); err != nil {
		return err
	}

	printResult(loggers, r)
	return nil
}

func printResult(loggers *Loggers, r *resolve.Resolver) {
	w := tabwriter.NewWriter(loggers.Out.Writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "status:\t%s\n", r.Status())
	fmt.Fprintf(w, "from_cache:\t%v\n", r.FromCache())

	switch r.Status() {
	case resolve.StatusSolved:
		for _, v := range r.ResolvedPackages() {
			fmt.Fprintf(w, "resolved:\t%s\t%s\n", v.Name, v.QualifiedName)
		}
	case resolve.StatusFailed, resolve.StatusAborted:
		fmt.Fprintf(w, "reason:\t%s\n", r.FailureDescription())
	}
	w.Flush()
}

// parseVCSRemotes turns repeated "<name>=<remote>" flag values into a
// name-to-remote map.
func parseVCSRemotes(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name, remote, ok := strings.Cut(e, "=")
		if !ok || name == "" || remote == "" {
			return nil, errors.Errorf("solve: invalid -vcs-remote %q, expected \"name=remote\"", e)
		}
		out[name] = remote
	}
	return out, nil
}

// parseRequests turns "name" / "name@range" positional arguments into
// PackageRequests.
func parseRequests(args []string) ([]resolve.PackageRequest, error) {
	if len(args) == 0 {
		return nil, errors.New("solve: at least one package request is required")
	}
	reqs := make([]resolve.PackageRequest, len(args))
	for i, a := range args {
		name, rng, _ := strings.Cut(a, "@")
		if name == "" {
			return nil, errors.Errorf("solve: invalid package request %q", a)
		}
		reqs[i] = resolve.PackageRequest{Name: name, VersionRange: rng}
	}
	return reqs, nil
}
