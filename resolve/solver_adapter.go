package resolve

import (
	"context"
	"io"
	"time"

	"github.com/sdboyer/constext"
)

// SolverAdapter invokes a SolverContract with a configured depth and
// normalizes its response into a SolverDict.
type SolverAdapter struct {
	Solver        SolverContract
	PackagePaths  []string
	Building      bool
	Verbosity     int
	PruneUnfailed bool
	Output        io.Writer
	LoadCallback  func(string)
}

// pollAbort turns a polled abort predicate into a context that is canceled
// the first time the predicate returns true. It is combined with the
// caller's own context via constext.Cons so that either source - an
// external deadline/cancellation, or the solver's own callback - stops the
// search. The returned CancelFunc must be called once the caller is done
// with the context, or the polling goroutine runs forever.
func pollAbort(ctx context.Context, abort func() bool) (context.Context, context.CancelFunc) {
	if abort == nil {
		return ctx, func() {}
	}
	pc, cancelPoll := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-pc.Done():
				return
			case <-ticker.C:
				if abort() {
					cancelPoll()
					return
				}
			}
		}
	}()
	combined, cancelCombined := constext.Cons(ctx, pc)
	return combined, func() {
		cancelCombined()
		cancelPoll()
	}
}

// Invoke runs one solver call at the given depth and returns both the raw
// SolveOutput (for IterativeDriver's is-partial/status inspection) and the
// normalized SolverDict.
func (a *SolverAdapter) Invoke(ctx context.Context, requests []PackageRequest, timestamp int64, abort func() bool, depth int) (SolveOutput, SolverDict, error) {
	combined, stop := pollAbort(ctx, abort)
	defer stop()

	in := SolveInput{
		Requests:           requests,
		PackagePaths:       a.PackagePaths,
		Timestamp:          timestamp,
		AbortCallback:      func() bool { return combined.Err() != nil },
		LoadCallback:       a.LoadCallback,
		Building:           a.Building,
		Verbosity:          a.Verbosity,
		PruneUnfailedGraph: a.PruneUnfailed,
		Output:             a.Output,
		MaxDepth:           depth,
	}

	out, err := a.Solver.Solve(in)
	if err != nil {
		return nil, SolverDict{}, err
	}

	return out, normalize(out), nil
}

// normalize projects a SolveOutput into the Resolver's own status
// vocabulary.
func normalize(out SolveOutput) SolverDict {
	dict := SolverDict{
		Graph:     out.Graph(),
		SolveTime: out.SolveTime(),
		LoadTime:  out.LoadTime(),
	}

	switch out.State() {
	case SolveUnsolved:
		dict.Status = StatusAborted
		dict.FailureDescription = out.AbortReason()
	case SolveFailed:
		dict.Status = StatusFailed
		dict.FailureDescription = out.FailureDescription()
	case SolveSolved:
		dict.Status = StatusSolved
		resolved := out.ResolvedPackages()
		handles := make([]VariantHandle, len(resolved))
		for i, rp := range resolved {
			handles[i] = rp.Userdata
		}
		dict.VariantHandles = handles
	}

	return dict
}
