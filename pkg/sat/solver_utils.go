package sat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type indeterminateError struct {
	solver string
}

func (err indeterminateError) Error() string {
	return fmt.Sprintf("%v stopped without deciding the instance", err.solver)
}

func errIndeterminate(solver string) error {
	return indeterminateError{solver: solver}
}

// parseSolution reads the "v" lines of a competition-format output.
func parseSolution(solverOutput string, variables uint64) (SATSolution, error) {
	values := lo.Reduce(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(values []string, line string, _ int) []string {
			return append(values, strings.Fields(line[1:])...)
		},
		[]string{},
	)
	return normalize(values, variables)
}

// normalize turns a list of true/false literals, optionally terminated by 0,
// into an index-based solution where unmentioned variables are false.
func normalize(values []string, variables uint64) (SATSolution, error) {
	solution := make(SATSolution, variables)
	for i := range solution {
		solution[i] = -int64(i + 1)
	}
	for _, valueStr := range values {
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value == 0 {
			break
		}
		if variable := abs(value); uint64(variable) <= variables {
			solution[variable-1] = value
		}
	}
	return solution, nil
}
