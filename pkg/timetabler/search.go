package timetabler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/limaJavier/coursetimetabler/pkg/sat"
)

const DefaultTimeBudget = 1200 * time.Second

type Status int

const (
	Built Status = iota
	Searching
	Feasible
	Optimal
	Infeasible
	TimedOut
)

var statusNames = map[Status]string{
	Built:      "built",
	Searching:  "searching",
	Feasible:   "feasible",
	Optimal:    "optimal",
	Infeasible: "infeasible",
	TimedOut:   "timed out",
}

func (status Status) String() string {
	return statusNames[status]
}

// Solved reports whether the status comes with a schedule.
func (status Status) Solved() bool {
	return status == Feasible || status == Optimal
}

var (
	ErrNoSolutionFound        = errors.New("no solution found")
	ErrTimeoutWithoutSolution = errors.New("time budget exhausted before any solution was found")
)

// TimeBudgetProvider supplies the search budget in seconds.
type TimeBudgetProvider interface {
	TimeBudget() int
}

// FixedBudget is a budget in seconds.
type FixedBudget int

func (budget FixedBudget) TimeBudget() int {
	return int(budget)
}

// EarlyStopper decides whether to stop on the first conflict-free solution.
type EarlyStopper interface {
	ShouldStopEarly(objective int64) bool
}

type EarlyStopperFunc func(objective int64) bool

func (f EarlyStopperFunc) ShouldStopEarly(objective int64) bool {
	return f(objective)
}

var (
	// BatchStopper stops as soon as a conflict-free solution exists.
	BatchStopper EarlyStopper = EarlyStopperFunc(func(int64) bool { return true })
	// NeverStop keeps optimizing until the budget runs out.
	NeverStop EarlyStopper = EarlyStopperFunc(func(int64) bool { return false })
)

type Summary struct {
	BestObjective int64 // -1 when no solution was found
	SolutionCount int
	Elapsed       time.Duration
	Status        Status
	Conflicts     int
	Variables     uint64
	Clauses       int
}

// ResolveTimeBudget converts seconds into a budget, falling back to the
// default for non-positive values.
func ResolveTimeBudget(seconds int) time.Duration {
	if seconds <= 0 {
		glog.Warningf("invalid time budget %d, using %v instead", seconds, DefaultTimeBudget)
		return DefaultTimeBudget
	}
	return time.Duration(seconds) * time.Second
}

// searchProblem is a frozen instance with its objective and conflict count.
type searchProblem struct {
	instance  sat.SAT
	objective *objective
	conflicts func(sat.SATSolution) int
}

type searchResult struct {
	solution sat.SATSolution
	summary  Summary
}

// search runs the anytime optimization loop: every solution tightens the
// objective bound until the solver proves optimality, the stopper accepts a
// conflict-free solution or the budget ends.
func search(ctx context.Context, solver sat.SATSolver, problem searchProblem, options Options) (searchResult, error) {
	var budgetSeconds int
	if options.TimeBudget != nil {
		budgetSeconds = options.TimeBudget.TimeBudget()
	}
	budget := ResolveTimeBudget(budgetSeconds)
	stopper := options.Stopper
	if stopper == nil {
		stopper = BatchStopper
	}
	now := options.now
	if now == nil {
		now = time.Now
	}

	clock := newClock(now)
	state := &progress{objective: -1, status: Searching}
	monitor := startTelemetry(ctx, options.Observer, clock, state)

	result := searchResult{summary: Summary{
		BestObjective: -1,
		Status:        Searching,
		Variables:     problem.instance.Variables,
		Clauses:       len(problem.instance.Clauses),
	}}
	summary := &result.summary
	offered := false

	for {
		remaining := budget - clock.Elapsed()
		if remaining <= 0 {
			summary.Status = timeoutStatus(result.solution)
			break
		}

		instance := problem.instance
		if result.solution != nil {
			instance = instance.WithBound(problem.objective.Below(summary.BestObjective))
		}

		solveCtx, cancel := context.WithTimeout(ctx, remaining)
		solution, err := solver.Solve(solveCtx, instance)
		deadlineReached := solveCtx.Err() != nil
		cancel()

		if err != nil && (ctx.Err() != nil || deadlineReached) {
			if ctx.Err() != nil {
				glog.V(1).Infof("search cancelled after %v solutions", summary.SolutionCount)
			}
			summary.Status = timeoutStatus(result.solution)
			break
		} else if err != nil {
			monitor.stop()
			return result, fmt.Errorf("solver failed: %w", err)
		}

		if solution == nil {
			if result.solution != nil {
				summary.Status = Optimal
			} else {
				summary.Status = Infeasible
			}
			break
		}

		value := problem.objective.Evaluate(solution)
		summary.SolutionCount++
		if result.solution == nil || value < summary.BestObjective {
			result.solution = solution
			summary.BestObjective = value
			summary.Conflicts = problem.conflicts(solution)
		}
		state.record(summary.BestObjective, summary.SolutionCount)
		glog.V(1).Infof("solution %d: objective %d, conflicts %d, elapsed %v", summary.SolutionCount, value, summary.Conflicts, clock.Elapsed())

		if summary.BestObjective == 0 {
			summary.Status = Optimal
			break
		}
		if !offered && summary.Conflicts == 0 {
			offered = true
			clock.Pause()
			stop := stopper.ShouldStopEarly(summary.BestObjective)
			clock.Resume()
			if stop {
				summary.Status = Feasible
				break
			}
		}
	}

	summary.Elapsed = clock.Elapsed()
	state.setStatus(summary.Status)
	monitor.stop()

	switch summary.Status {
	case Infeasible:
		return result, fmt.Errorf("%w: the instance admits no timetable, add days, rooms or qualified teachers and try again", ErrNoSolutionFound)
	case TimedOut:
		return result, fmt.Errorf("%w: raise the time budget (%v) and try again", ErrTimeoutWithoutSolution, budget)
	}
	return result, nil
}

func timeoutStatus(incumbent sat.SATSolution) Status {
	if incumbent != nil {
		return Feasible
	}
	return TimedOut
}
