package resolve

import "context"

// RunIterative drives a SolverAdapter through one of three modes, selected
// by (startDepth, maxDepth) where 0 means unset: a single uncapped solve, a
// single depth-capped solve, or depth-doubling from startDepth up to
// maxDepth until the solver reports a solved or non-partial result.
//
// Precondition: if both are nonzero, maxDepth >= startDepth. Resolver.New
// enforces this at construction; RunIterative does not re-check it.
func RunIterative(ctx context.Context, adapter *SolverAdapter, requests []PackageRequest, timestamp int64, abort func() bool, startDepth, maxDepth int) (SolveOutput, SolverDict, error) {
	if startDepth == 0 {
		// One solve, with or without a depth cap (both sub-modes reduce to
		// a single Invoke at whatever maxDepth already is, 0 meaning
		// unbounded).
		return adapter.Invoke(ctx, requests, timestamp, abort, maxDepth)
	}

	depth := startDepth
	var (
		out  SolveOutput
		dict SolverDict
		err  error
	)
	for {
		out, dict, err = adapter.Invoke(ctx, requests, timestamp, abort, depth)
		if err != nil {
			return out, dict, err
		}

		if dict.Status == StatusSolved {
			return out, dict, nil
		}
		if !out.IsPartial() {
			// The solver explored fully at this depth without needing
			// more; further doubling would not change the outcome.
			return out, dict, nil
		}
		if maxDepth > 0 && depth >= maxDepth {
			return out, dict, nil
		}

		if maxDepth > 0 {
			next := depth * 2
			if next > maxDepth {
				next = maxDepth
			}
			depth = next
		} else {
			depth *= 2
		}
	}
}
