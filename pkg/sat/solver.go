package sat

import "context"

// SATSolver returns a solution of the instance if satisfiable, else nil (both
// valid outputs where error shall be nil). When ctx ends first the context
// error is returned.
type SATSolver interface {
	Solve(ctx context.Context, instance SAT) (SATSolution, error)
}
