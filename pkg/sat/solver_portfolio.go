package sat

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"slices"
)

// DefaultWorkers is the portfolio width used when none is given.
func DefaultWorkers() int {
	return min(4, runtime.NumCPU())
}

type portfolioSolver struct {
	workers int
	factory func() SATSolver
}

// NewPortfolioSolver races workers on differently ordered copies of the
// instance. The first decided answer wins and the remaining workers are
// cancelled.
func NewPortfolioSolver(workers int, factory func() SATSolver) SATSolver {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &portfolioSolver{workers: workers, factory: factory}
}

type portfolioResult struct {
	solution SATSolution
	err      error
}

func (solver *portfolioSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if solver.workers == 1 {
		return solver.factory().Solve(ctx, instance)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan portfolioResult, solver.workers)
	for worker := range solver.workers {
		variant := instance
		if worker > 0 {
			variant = shuffled(instance, uint64(worker))
		}
		go func(backend SATSolver) {
			solution, err := backend.Solve(ctx, variant)
			results <- portfolioResult{solution: solution, err: err}
		}(solver.factory())
	}

	failures := make([]error, 0)
	for range solver.workers {
		result := <-results
		if result.err == nil {
			return result.solution, nil
		}
		failures = append(failures, result.err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, errors.Join(failures...)
}

func shuffled(instance SAT, seed uint64) SAT {
	clauses := slices.Clone(instance.Clauses)
	random := rand.New(rand.NewPCG(seed, seed*0x9e3779b97f4a7c15))
	random.Shuffle(len(clauses), func(i, j int) {
		clauses[i], clauses[j] = clauses[j], clauses[i]
	})
	return SAT{
		Variables: instance.Variables,
		Clauses:   clauses,
		Bounds:    instance.Bounds,
	}
}
