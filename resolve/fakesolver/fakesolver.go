// Package fakesolver is a small, deterministic reference implementation of
// resolve.SolverContract, grounded on in-memory package definitions rather
// than a production constraint engine. It exists so the iterative driver,
// the cache protocol, and the CLI can be exercised end-to-end without a
// real solver: it honors MaxDepth (newest-versions-first, capped) and
// reports IsPartial whenever more versions exist beyond that cap, so
// IterativeDriver's depth-doubling is driven by real backtracking-adjacent
// behavior rather than a stub.
package fakesolver

import (
	"sort"
	"time"

	"github.com/Masterminds/semver"
	"github.com/envresolve/envresolve/resolve"
)

// PackageVersion is one available release of a package name in the fake
// universe, along with the dependencies it pulls in.
type PackageVersion struct {
	Name     string
	Version  string
	Resource string // resource locator handed to the RepoGateway
	Requires []resolve.PackageRequest
}

// Universe is the full set of known package versions, keyed by name.
type Universe map[string][]PackageVersion

// Solver implements resolve.SolverContract over a fixed Universe.
type Solver struct {
	Universe Universe
}

func New(u Universe) *Solver {
	return &Solver{Universe: u}
}

type output struct {
	state       resolve.SolveState
	isPartial   bool
	graph       resolve.Graph
	solveTime   time.Duration
	loadTime    time.Duration
	abortReason string
	failureDesc string
	resolved    []resolve.ResolvedPackage
}

func (o *output) State() resolve.SolveState           { return o.state }
func (o *output) IsPartial() bool                      { return o.isPartial }
func (o *output) Graph() resolve.Graph                 { return o.graph }
func (o *output) SolveTime() time.Duration             { return o.solveTime }
func (o *output) LoadTime() time.Duration              { return o.loadTime }
func (o *output) AbortReason() string                  { return o.abortReason }
func (o *output) FailureDescription() string           { return o.failureDesc }
func (o *output) ResolvedPackages() []resolve.ResolvedPackage { return o.resolved }

// sortedVersions returns a name's versions sorted newest-first, the
// heuristic IterativeDriver's doubling depends on.
func sortedVersions(vs []PackageVersion) []PackageVersion {
	cp := append([]PackageVersion(nil), vs...)
	sort.Slice(cp, func(i, j int) bool {
		vi, erri := semver.NewVersion(cp[i].Version)
		vj, errj := semver.NewVersion(cp[j].Version)
		if erri != nil || errj != nil {
			return cp[i].Version > cp[j].Version
		}
		return vi.GreaterThan(vj)
	})
	return cp
}

// Solve performs a simple greedy, depth-capped search: for each requested
// (and transitively required) name, it considers at most in.MaxDepth of its
// newest versions (all of them when MaxDepth is 0) and takes the first one
// matching every constraint seen so far. It never backtracks; the point is
// to exercise the resolve package's plumbing, not to be a complete solver.
func (s *Solver) Solve(in resolve.SolveInput) (resolve.SolveOutput, error) {
	start := time.Now()

	selected := map[string]PackageVersion{}
	constraints := map[string][]resolve.PackageRequest{}
	isPartial := false

	queue := append([]resolve.PackageRequest(nil), in.Requests...)
	var graph resolve.Graph

	for len(queue) > 0 {
		if in.AbortCallback != nil && in.AbortCallback() {
			return &output{
				state:       resolve.SolveUnsolved,
				abortReason: "caller aborted the solve",
				loadTime:    time.Since(start),
			}, nil
		}

		req := queue[0]
		queue = queue[1:]
		constraints[req.Name] = append(constraints[req.Name], req)

		if _, ok := selected[req.Name]; ok {
			continue
		}

		if in.LoadCallback != nil {
			in.LoadCallback(req.Name)
		}

		versions := sortedVersions(s.Universe[req.Name])
		cap := len(versions)
		if in.MaxDepth > 0 && in.MaxDepth < cap {
			cap = in.MaxDepth
			isPartial = true
		}
		if cap < len(versions) {
			isPartial = true
		}

		var picked *PackageVersion
		for i := 0; i < cap; i++ {
			candidate := versions[i]
			if matchesAll(candidate.Version, constraints[req.Name]) {
				picked = &versions[i]
				break
			}
		}

		if picked == nil {
			desc := "no version of " + req.Name + " satisfies " + req.VersionRange
			if isPartial {
				// Might be solvable at a greater depth; report failed at
				// this depth and let IterativeDriver decide whether to
				// retry deeper based on IsPartial.
				return &output{
					state:       resolve.SolveFailed,
					isPartial:   true,
					failureDesc: desc,
					loadTime:    time.Since(start),
				}, nil
			}
			return &output{
				state:       resolve.SolveFailed,
				failureDesc: desc,
				loadTime:    time.Since(start),
			}, nil
		}

		selected[picked.Name] = *picked
		graph.Nodes = append(graph.Nodes, resolve.GraphNode{
			ID:    picked.Name,
			Label: picked.Name + "@" + picked.Version,
		})
		for _, dep := range picked.Requires {
			graph.Edges = append(graph.Edges, resolve.GraphEdge{From: picked.Name, To: dep.Name})
			queue = append(queue, dep)
		}
	}

	names := make([]string, 0, len(selected))
	for n := range selected {
		names = append(names, n)
	}
	sort.Strings(names)

	resolved := make([]resolve.ResolvedPackage, 0, len(names))
	for _, n := range names {
		pv := selected[n]
		resolved = append(resolved, resolve.ResolvedPackage{
			Name: n,
			Userdata: resolve.VariantHandle{
				Name:     pv.Name,
				Resource: pv.Resource,
				Extra:    resolve.StringValue(pv.Version),
			},
		})
	}

	return &output{
		state:     resolve.SolveSolved,
		isPartial: isPartial,
		graph:     graph,
		solveTime: time.Since(start),
		resolved:  resolved,
	}, nil
}

func matchesAll(version string, reqs []resolve.PackageRequest) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	for _, r := range reqs {
		c, err := resolve.ParseVersionRange(r)
		if err != nil {
			return false
		}
		if c.Matches(v) != nil {
			return false
		}
	}
	return true
}
