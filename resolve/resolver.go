package resolve

import (
	"context"
	"io"
	"log"
	"time"
)

// Params are the immutable inputs to a Resolver's construction.
type Params struct {
	PackageRequests []PackageRequest
	PackagePaths    []string
	Timestamp       int64 // 0 = no horizon

	Callback     func() bool // external abort predicate, polled during solve
	Building     bool
	Verbosity    int
	Output       io.Writer
	LoadCallback func(name string)

	MaxDepth   int // 0 = unbounded
	StartDepth int // 0 = single solve

	Caching bool // per-resolver caching flag; New does not default it, so the zero value disables caching

	Config Config
	Repo   RepoGateway
	Cache  CacheGateway
	Solver SolverContract
	Logger *log.Logger
}

// Resolver is the public facade: lifecycle, status, resolved variants,
// graph and timings. A Resolver is single-shot: Solve() transitions status
// from pending exactly once.
type Resolver struct {
	params Params

	status              ResolverStatus
	resolvedPackages    []Variant
	graph               Graph
	failureDescription  string
	solveTime, loadTime time.Duration
	fromCache           bool

	key    CacheKey
	solved bool
}

// New validates params and returns a pending Resolver. It fails at
// construction if MaxDepth and StartDepth are both set and inconsistent.
func New(params Params) (*Resolver, error) {
	if params.MaxDepth != 0 && params.StartDepth != 0 && params.MaxDepth < params.StartDepth {
		return nil, argErrorf("resolve: max_depth (%d) must be >= start_depth (%d)", params.MaxDepth, params.StartDepth)
	}

	repoIDs := make([]string, len(params.PackagePaths))
	for i, p := range params.PackagePaths {
		id, err := params.Repo.RepoID(p)
		if err != nil {
			return nil, err
		}
		repoIDs[i] = id
	}

	key := BuildKey(params.PackageRequests, repoIDs, params.Building, params.Config.PruneFailedGraph, params.StartDepth, params.MaxDepth)

	return &Resolver{
		params: params,
		status: StatusPending,
		key:    key,
	}, nil
}

// Solve runs the resolution. It is idempotent: calling it more than once
// simply returns without resolving again or touching the cache twice.
func (r *Resolver) Solve() error {
	if r.solved {
		return nil
	}
	r.solved = true

	proto := &CacheProtocol{
		Cache:          r.params.Cache,
		Repo:           r.params.Repo,
		ResolveCaching: r.params.Config.ResolveCaching,
		Logger:         r.params.Logger,
	}

	if entry, ok := proto.Lookup(r.key, r.params.Timestamp, r.params.PackagePaths, r.params.Caching); ok {
		r.fromCache = true
		r.apply(entry.SolverDict)
		return nil
	}

	adapter := &SolverAdapter{
		Solver:        r.params.Solver,
		PackagePaths:  r.params.PackagePaths,
		Building:      r.params.Building,
		Verbosity:     r.params.Verbosity,
		PruneUnfailed: r.params.Config.PruneFailedGraph,
		Output:        r.params.Output,
		LoadCallback:  r.params.LoadCallback,
	}

	_, dict, err := RunIterative(context.Background(), adapter, r.params.PackageRequests, r.params.Timestamp, r.params.Callback, r.params.StartDepth, r.params.MaxDepth)
	if err != nil {
		return err
	}

	r.apply(dict)
	proto.Store(r.key, r.params.Timestamp, r.params.PackagePaths, dict, r.params.Caching)
	return nil
}

// apply copies a SolverDict (live or cached) into the Resolver's read-only
// projections, re-materializing resolved variants through the repository
// layer in order.
func (r *Resolver) apply(dict SolverDict) {
	r.status = dict.Status
	r.graph = dict.Graph
	r.solveTime = dict.SolveTime
	r.loadTime = dict.LoadTime
	r.failureDescription = dict.FailureDescription

	if dict.Status != StatusSolved {
		r.resolvedPackages = nil
		return
	}

	variants := make([]Variant, 0, len(dict.VariantHandles))
	for _, h := range dict.VariantHandles {
		v, err := r.params.Repo.Materialize(h)
		if err != nil {
			// Re-materialization failure after a successful solve is a
			// repository fault, not a solve failure; surface it as an
			// aborted resolve so callers don't mistake it for "no
			// satisfying assignment exists".
			r.status = StatusAborted
			r.failureDescription = err.Error()
			r.resolvedPackages = nil
			return
		}
		variants = append(variants, v)
	}
	r.resolvedPackages = variants
}

func (r *Resolver) Status() ResolverStatus          { return r.status }
func (r *Resolver) ResolvedPackages() []Variant     { return r.resolvedPackages }
func (r *Resolver) Graph() Graph                    { return r.graph }
func (r *Resolver) FailureDescription() string      { return r.failureDescription }
func (r *Resolver) SolveTime() time.Duration        { return r.solveTime }
func (r *Resolver) LoadTime() time.Duration         { return r.loadTime }
func (r *Resolver) FromCache() bool                 { return r.fromCache }
func (r *Resolver) Key() CacheKey                   { return r.key }
