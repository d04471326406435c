package sat

import (
	"context"
	"math/bits"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small instances with a known answer
var knownInstances = []struct {
	name        string
	instance    SAT
	satisfiable bool
}{
	{
		name:        "single clause",
		instance:    SAT{Variables: 2, Clauses: [][]int64{{1, 2}}},
		satisfiable: true,
	},
	{
		name:        "implication chain",
		instance:    SAT{Variables: 3, Clauses: [][]int64{{1}, {-1, 2}, {-2, 3}}},
		satisfiable: true,
	},
	{
		name:        "contradiction",
		instance:    SAT{Variables: 2, Clauses: [][]int64{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}}},
		satisfiable: false,
	},
	{
		name: "bounded",
		instance: SAT{
			Variables: 3,
			Clauses:   [][]int64{{1, 2, 3}},
			Bounds:    []Bound{{Literals: []int64{1, 2, 3}, Weights: []int64{2, 2, 1}, Max: 1}},
		},
		satisfiable: true,
	},
	{
		name: "bound too tight",
		instance: SAT{
			Variables: 2,
			Clauses:   [][]int64{{1}, {2}},
			Bounds:    []Bound{{Literals: []int64{1, 2}, Weights: []int64{1, 1}, Max: 1}},
		},
		satisfiable: false,
	},
	{
		name: "negative bound",
		instance: SAT{
			Variables: 1,
			Clauses:   [][]int64{{1, -1}},
			Bounds:    []Bound{{Literals: []int64{1}, Weights: []int64{1}, Max: -1}},
		},
		satisfiable: false,
	},
}

func TestGini(t *testing.T) {
	solverExecution(t, NewGiniSolver())
}

func TestGophersat(t *testing.T) {
	solverExecution(t, NewGophersatSolver())
}

func TestPortfolio(t *testing.T) {
	solverExecution(t, NewPortfolioSolver(3, NewGiniSolver))
}

func TestKissat(t *testing.T) {
	path, err := exec.LookPath("kissat")
	if err != nil {
		t.Skip("kissat is not installed")
	}
	solverExecution(t, NewKissatSolver(path))
}

func TestMinisat(t *testing.T) {
	path, err := exec.LookPath("minisat")
	if err != nil {
		t.Skip("minisat is not installed")
	}
	solverExecution(t, NewMinisatSolver(path))
}

func solverExecution(t *testing.T, solver SATSolver) {
	for _, test := range knownInstances {
		t.Run(test.name, func(t *testing.T) {
			//** Act
			solution, err := solver.Solve(context.Background(), test.instance)

			//** Assert
			require.NoError(t, err)
			if !test.satisfiable {
				assert.Nil(t, solution)
				return
			}
			require.NotNil(t, solution)
			assert.Len(t, solution, int(test.instance.Variables))
			assert.True(t, satisfies(test.instance, solution))
		})
	}
}

func TestPortfolioCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solution, err := NewPortfolioSolver(2, func() SATSolver { return cancelledSolver{} }).Solve(ctx, knownInstances[0].instance)

	assert.Nil(t, solution)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGiniDeadline(t *testing.T) {
	solverDeadline(t, NewGiniSolver(), pigeonhole(12))
}

func TestGophersatDeadline(t *testing.T) {
	// The abandoned search keeps running until the test binary exits, so the
	// instance is kept small enough to end on its own
	solverDeadline(t, NewGophersatSolver(), pigeonhole(9))
}

func TestPortfolioDeadline(t *testing.T) {
	solverDeadline(t, NewPortfolioSolver(4, NewGiniSolver), pigeonhole(12))
}

func solverDeadline(t *testing.T, solver SATSolver, instance SAT) {
	//** Arrange
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()

	//** Act
	solution, err := solver.Solve(ctx, instance)

	//** Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, solution)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPortfolioReleasesWorkers(t *testing.T) {
	//** Arrange
	solver := NewPortfolioSolver(4, NewGiniSolver)
	before := runtime.NumGoroutine()

	//** Act
	for range 20 {
		solution, err := solver.Solve(context.Background(), knownInstances[1].instance)
		require.NoError(t, err)
		require.NotNil(t, solution)
	}
	for range 3 {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_, err := solver.Solve(ctx, pigeonhole(12))
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}

	//** Assert
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 20*time.Millisecond)
}

// pigeonhole places n+1 pigeons into n holes, a small instance no CDCL
// search refutes quickly.
func pigeonhole(n int) SAT {
	variable := func(pigeon, hole int) int64 { return int64(pigeon*n + hole + 1) }
	clauses := make([][]int64, 0)
	for pigeon := range n + 1 {
		clause := make([]int64, 0, n)
		for hole := range n {
			clause = append(clause, variable(pigeon, hole))
		}
		clauses = append(clauses, clause)
	}
	for hole := range n {
		for first := range n + 1 {
			for second := first + 1; second <= n; second++ {
				clauses = append(clauses, []int64{-variable(first, hole), -variable(second, hole)})
			}
		}
	}
	return SAT{Variables: uint64((n + 1) * n), Clauses: clauses}
}

type cancelledSolver struct{}

func (cancelledSolver) Solve(ctx context.Context, _ SAT) (SATSolution, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSolutionValue(t *testing.T) {
	solution := SATSolution{1, -2, 3}

	assert.True(t, solution.Value(1))
	assert.False(t, solution.Value(-1))
	assert.False(t, solution.Value(2))
	assert.True(t, solution.Value(-2))
	assert.False(t, solution.Value(7))
	assert.True(t, solution.Value(-7))
}

func TestParseSolution(t *testing.T) {
	output := "s SATISFIABLE\nv 1 -2 3\nv -4 0\n"

	solution, err := parseSolution(output, 5)

	require.NoError(t, err)
	assert.Equal(t, SATSolution{1, -2, 3, -4, -5}, solution)
}

func TestParseMinisatSolution(t *testing.T) {
	solver := &minisatSolver{}

	solution, err := solver.parseSolution("SAT\n-1 2 0\n", 2)
	require.NoError(t, err)
	assert.Equal(t, SATSolution{-1, 2}, solution)

	_, err = solver.parseSolution("UNSAT\n", 2)
	assert.Error(t, err)
}

func TestToDIMACS(t *testing.T) {
	instance := SAT{Variables: 2, Clauses: [][]int64{{1, -2}, {2}}}

	assert.Equal(t, "p cnf 2 2\n1 -2 0\n2 0\n", instance.ToDIMACS())
}

// Checks every clause and bound against the solution
func satisfies(instance SAT, solution SATSolution) bool {
	for _, clause := range instance.Clauses {
		satisfied := false
		for _, literal := range clause {
			if solution.Value(literal) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	for _, bound := range instance.Bounds {
		var total int64
		for i, literal := range bound.Literals {
			if solution.Value(literal) {
				total += bound.Weights[i]
			}
		}
		if total > bound.Max {
			return false
		}
	}
	return true
}

// Enumerates every assignment of the first n literals
func forEachAssignment(n int, f func(mask uint, assignment []int64)) {
	for mask := uint(0); mask < 1<<n; mask++ {
		assignment := make([]int64, n)
		for i := range n {
			assignment[i] = int64(i + 1)
			if mask&(1<<i) == 0 {
				assignment[i] = -assignment[i]
			}
		}
		f(mask, assignment)
	}
}

func popCount(mask uint) int {
	return bits.OnesCount(mask)
}
