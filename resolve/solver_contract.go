package resolve

import (
	"io"
	"time"
)

// SolveState is the external solver's own status vocabulary, distinct from
// ResolverStatus: the adapter's job is to normalize one into the other.
type SolveState int

const (
	SolveUnsolved SolveState = iota // callback aborted the search
	SolveFailed
	SolveSolved
)

// ResolvedPackage is one entry of a solved SolveOutput: a package name plus
// the opaque handle the solver's variant cache produced for it.
type ResolvedPackage struct {
	Name     string
	Userdata VariantHandle
}

// SolveInput bundles every parameter a SolverContract invocation accepts.
type SolveInput struct {
	Requests     []PackageRequest
	PackagePaths []string
	Timestamp    int64 // 0 = no horizon

	// AbortCallback is polled by the solver; returning true cancels the
	// search and surfaces as SolveUnsolved.
	AbortCallback func() bool
	// LoadCallback is invoked once per package name as the solver loads its
	// version list.
	LoadCallback func(name string)

	Building           bool
	Verbosity          int
	PruneUnfailedGraph bool
	Output             io.Writer

	// MaxDepth caps how many versions of a name the solver will load; 0
	// means unbounded for this particular invocation.
	MaxDepth int
}

// SolveOutput is what a SolverContract invocation returns.
type SolveOutput interface {
	State() SolveState
	// IsPartial reports whether the depth cap prevented exhaustive
	// exploration at this invocation's depth.
	IsPartial() bool
	Graph() Graph
	SolveTime() time.Duration
	LoadTime() time.Duration
	AbortReason() string
	FailureDescription() string
	ResolvedPackages() []ResolvedPackage
}

// SolverContract is the external constraint solver the core drives. Its
// search algorithm is explicitly out of this package's scope; SolverAdapter
// and IterativeDriver only normalize and iterate its invocations.
type SolverContract interface {
	Solve(in SolveInput) (SolveOutput, error)
}
