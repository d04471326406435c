package sat

import (
	"fmt"
	"strings"
)

// SATSolution holds one signed literal per variable: solution[v-1] is v when
// v is true and -v otherwise.
type SATSolution []int64

// Value evaluates a literal. Variables outside the solution are false.
func (solution SATSolution) Value(literal int64) bool {
	variable := literal
	if variable < 0 {
		variable = -variable
	}
	value := variable != 0 && variable <= int64(len(solution)) && solution[variable-1] > 0
	if literal < 0 {
		return !value
	}
	return value
}

// Bound is the pseudo-boolean constraint sum(Weights[i] * Literals[i]) <= Max.
type Bound struct {
	Literals []int64
	Weights  []int64
	Max      int64
}

type SAT struct {
	Variables uint64
	Clauses   [][]int64
	Bounds    []Bound
}

// WithBound returns a copy of the instance with an additional bound. The
// receiver is left untouched.
func (s SAT) WithBound(bound Bound) SAT {
	bounds := make([]Bound, 0, len(s.Bounds)+1)
	bounds = append(bounds, s.Bounds...)
	return SAT{
		Variables: s.Variables,
		Clauses:   s.Clauses,
		Bounds:    append(bounds, bound),
	}
}

// CNF encodes every bound as clauses over fresh auxiliary variables. The
// original variables keep their numbering.
func (s SAT) CNF() SAT {
	if len(s.Bounds) == 0 {
		return s
	}
	builder := &Builder{
		variables: s.Variables,
		clauses:   make([][]int64, len(s.Clauses), len(s.Clauses)+len(s.Bounds)),
	}
	copy(builder.clauses, s.Clauses)
	for _, bound := range s.Bounds {
		builder.encodeBound(bound)
	}
	return builder.Build()
}

func (s SAT) ToDIMACS() string {
	cnf := s.CNF()
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", cnf.Variables, len(cnf.Clauses))
	for _, clause := range cnf.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}
