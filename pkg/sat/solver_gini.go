package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

const giniPollInterval = 5 * time.Millisecond

type giniSolver struct{}

func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	cnf := instance.CNF()

	g := gini.New()
	var maxVariable int64
	for _, clause := range cnf.Clauses {
		for _, literal := range clause {
			g.Add(giniLiteral(literal))
			maxVariable = max(maxVariable, abs(literal))
		}
		g.Add(0)
	}

	// Wait and Stop share a lock in gini, so the search is only polled and
	// stopped from this goroutine
	search := g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()

	var result int
	for {
		var done bool
		if result, done = search.Test(); done {
			break
		}
		select {
		case <-ctx.Done():
			search.Stop()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	// 1 stands for satisfiable, -1 for unsatisfiable and 0 for unknown
	switch result {
	case -1:
		return nil, nil
	case 0:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errIndeterminate("gini")
	}

	solution := make(SATSolution, instance.Variables)
	for i := range solution {
		variable := int64(i + 1)
		solution[i] = -variable
		if variable <= maxVariable && g.Value(giniLiteral(variable)) {
			solution[i] = variable
		}
	}
	return solution, nil
}

func giniLiteral(literal int64) z.Lit {
	if literal < 0 {
		return z.Var(-literal).Neg()
	}
	return z.Var(literal).Pos()
}
