package sat

import (
	"context"
	"fmt"

	"github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

type gophersatSolver struct{}

// NewGophersatSolver hands bounds to the solver as native pseudo-boolean
// constraints instead of encoding them.
func NewGophersatSolver() SATSolver {
	return &gophersatSolver{}
}

func (s *gophersatSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	constraints := make([]solver.PBConstr, 0, len(instance.Clauses)+len(instance.Bounds))
	for _, clause := range instance.Clauses {
		constraints = append(constraints, solver.PropClause(toInts(clause)...))
	}
	for _, bound := range instance.Bounds {
		if bound.Max < 0 {
			return nil, nil
		}
		constraints = append(constraints, solver.LtEq(toInts(bound.Literals), toInts(bound.Weights), int(bound.Max)))
	}
	if len(constraints) == 0 {
		return make(SATSolution, 0), nil
	}

	pb := solver.New(solver.ParsePBConstrs(constraints))
	// The search cannot be interrupted, an abandoned one runs to completion
	// in the background
	done := make(chan searchOutcome, 1)
	go func() {
		status, err := solveRecovered(pb.Solve)
		done <- searchOutcome{status, err}
	}()

	var status solver.Status
	select {
	case outcome := <-done:
		if outcome.err != nil {
			return nil, outcome.err
		}
		status = outcome.status
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	switch status {
	case solver.Unsat:
		return nil, nil
	case solver.Sat:
	default:
		return nil, errIndeterminate("gophersat")
	}

	model := pb.Model()
	solution := make(SATSolution, instance.Variables)
	for i := range solution {
		variable := int64(i + 1)
		solution[i] = -variable
		if i < len(model) && model[i] {
			solution[i] = variable
		}
	}
	return solution, nil
}

type searchOutcome struct {
	status solver.Status
	err    error
}

// solveRecovered runs solve on the calling goroutine and reports a panic
// inside it as an error.
func solveRecovered(solve func() solver.Status) (status solver.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gophersat search failed: %v", r)
		}
	}()
	return solve(), nil
}

func toInts(values []int64) []int {
	return lo.Map(values, func(value int64, _ int) int { return int(value) })
}
