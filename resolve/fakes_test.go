package resolve

import (
	"fmt"
	"time"
)

// memCache is a minimal in-memory CacheGateway, in the spirit of the
// teacher's depspecSM fixtures: enough behavior to drive CacheProtocol
// tests without a real backing store.
type memCache struct {
	enabled bool
	data    map[string]map[string]CachedEntry
	gets    int
	sets    int
	deletes int
}

func newMemCache() *memCache {
	return &memCache{enabled: true, data: map[string]map[string]CachedEntry{}}
}

func (c *memCache) Enabled() bool { return c.enabled }

func (c *memCache) Get(namespace, key string) (CachedEntry, bool, error) {
	c.gets++
	ns, ok := c.data[namespace]
	if !ok {
		return CachedEntry{}, false, nil
	}
	e, ok := ns[key]
	return e, ok, nil
}

func (c *memCache) Set(namespace, key string, entry CachedEntry) error {
	c.sets++
	ns, ok := c.data[namespace]
	if !ok {
		ns = map[string]CachedEntry{}
		c.data[namespace] = ns
	}
	ns[key] = entry
	return nil
}

func (c *memCache) Delete(namespace, key string) error {
	c.deletes++
	ns, ok := c.data[namespace]
	if !ok {
		return nil
	}
	delete(ns, key)
	return nil
}

// memRepo is a minimal in-memory RepoGateway: a fixed map of release times
// and state handles that a test can mutate between solves to simulate a
// release or an in-place package-definition edit.
type memRepo struct {
	releaseTimes map[string]int64
	stateHandles map[string]StateHandle // keyed by resource
}

func newMemRepo() *memRepo {
	return &memRepo{releaseTimes: map[string]int64{}, stateHandles: map[string]StateHandle{}}
}

func (r *memRepo) RepoID(path string) (string, error) {
	return "filesystem@" + path, nil
}

func (r *memRepo) LastReleaseTime(name string, packagePaths []string) (int64, error) {
	return r.releaseTimes[name], nil
}

func (r *memRepo) VariantStateHandle(resource string) (StateHandle, error) {
	if v, ok := r.stateHandles[resource]; ok {
		return v, nil
	}
	return IntValue(1), nil
}

func (r *memRepo) Materialize(h VariantHandle) (Variant, error) {
	return Variant{Name: h.Name, QualifiedName: fmt.Sprintf("%s-%s", h.Name, h.Extra.S), Resource: h.Resource}, nil
}

// fakeSolveOutput implements SolveOutput directly for SolverAdapter/
// IterativeDriver unit tests that don't need the full fakesolver package.
type fakeSolveOutput struct {
	state     SolveState
	isPartial bool
	resolved  []ResolvedPackage
	abortMsg  string
	failMsg   string
}

func (o fakeSolveOutput) State() SolveState                   { return o.state }
func (o fakeSolveOutput) IsPartial() bool                     { return o.isPartial }
func (o fakeSolveOutput) Graph() Graph                        { return Graph{} }
func (o fakeSolveOutput) SolveTime() time.Duration            { return 0 }
func (o fakeSolveOutput) LoadTime() time.Duration             { return 0 }
func (o fakeSolveOutput) AbortReason() string                 { return o.abortMsg }
func (o fakeSolveOutput) FailureDescription() string          { return o.failMsg }
func (o fakeSolveOutput) ResolvedPackages() []ResolvedPackage { return o.resolved }

// depthSeriesSolver is a SolverContract that replays a fixed series of
// per-depth outcomes, used to test IterativeDriver's doubling/termination
// logic in isolation from any real constraint search.
type depthSeriesSolver struct {
	calls  []int // depths the solver was invoked at, in order
	series map[int]fakeSolveOutput
	final  fakeSolveOutput
}

func (s *depthSeriesSolver) Solve(in SolveInput) (SolveOutput, error) {
	s.calls = append(s.calls, in.MaxDepth)
	if out, ok := s.series[in.MaxDepth]; ok {
		return out, nil
	}
	return s.final, nil
}
