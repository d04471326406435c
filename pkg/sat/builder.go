package sat

import (
	"fmt"
	"slices"
)

// Pairwise at-most-one is used up to this many literals, the sequential
// counter beyond.
const pairwiseThreshold = 6

// Builder accumulates variables, clauses and bounds. It is not safe for
// concurrent use; variable numbering follows call order.
type Builder struct {
	variables uint64
	clauses   [][]int64
	bounds    []Bound
	constant  int64 // Variable fixed to true, zero until requested
	frozen    bool
}

func NewBuilder() *Builder {
	return &Builder{clauses: make([][]int64, 0)}
}

func (builder *Builder) NewVariable() int64 {
	builder.mutable()
	builder.variables++
	return int64(builder.variables)
}

func (builder *Builder) NewVariables(n int) []int64 {
	variables := make([]int64, n)
	for i := range variables {
		variables[i] = builder.NewVariable()
	}
	return variables
}

func (builder *Builder) Variables() uint64 {
	return builder.variables
}

func (builder *Builder) Clauses() int {
	return len(builder.clauses)
}

// AddClause adds the disjunction of the literals. An empty clause makes the
// instance unsatisfiable.
func (builder *Builder) AddClause(literals ...int64) {
	builder.mutable()
	if len(literals) == 0 {
		builder.contradiction()
		return
	}
	for _, literal := range literals {
		if literal == 0 || uint64(abs(literal)) > builder.variables {
			panic(fmt.Sprintf("literal %d is not a declared variable", literal))
		}
	}
	builder.clauses = append(builder.clauses, slices.Clone(literals))
}

// AddBound adds sum(weights[i] * literals[i]) <= max.
func (builder *Builder) AddBound(literals []int64, weights []int64, max int64) {
	builder.mutable()
	if len(literals) != len(weights) {
		panic(fmt.Sprintf("bound has %d literals but %d weights", len(literals), len(weights)))
	}
	builder.bounds = append(builder.bounds, Bound{
		Literals: slices.Clone(literals),
		Weights:  slices.Clone(weights),
		Max:      max,
	})
}

// True returns a literal that holds in every model.
func (builder *Builder) True() int64 {
	if builder.constant == 0 {
		builder.constant = builder.NewVariable()
		builder.AddClause(builder.constant)
	}
	return builder.constant
}

func (builder *Builder) AtLeastOne(literals []int64) {
	builder.AddClause(literals...)
}

func (builder *Builder) AtMostOne(literals []int64) {
	if len(literals) <= 1 {
		return
	}
	if len(literals) <= pairwiseThreshold {
		for i := range len(literals) - 1 {
			for j := i + 1; j < len(literals); j++ {
				builder.AddClause(-literals[i], -literals[j])
			}
		}
		return
	}

	// Sequential counter: s[i] holds when some literal up to i is true
	n := len(literals)
	s := builder.NewVariables(n - 1)
	builder.AddClause(-literals[0], s[0])
	for i := 1; i < n-1; i++ {
		builder.AddClause(-literals[i], s[i])
		builder.AddClause(-s[i-1], s[i])
		builder.AddClause(-literals[i], -s[i-1])
	}
	builder.AddClause(-literals[n-1], -s[n-2])
}

func (builder *Builder) ExactlyOne(literals []int64) {
	builder.AtLeastOne(literals)
	builder.AtMostOne(literals)
}

// AtMost allows at most k of the literals to hold.
func (builder *Builder) AtMost(literals []int64, k int) {
	switch {
	case k < 0:
		builder.contradiction()
	case k >= len(literals):
	case k == 0:
		for _, literal := range literals {
			builder.AddClause(-literal)
		}
	case k == 1:
		builder.AtMostOne(literals)
	default:
		outputs := builder.Totalizer(literals, k+1)
		builder.AddClause(-outputs[k])
	}
}

// And returns a literal equivalent to the conjunction of the literals.
func (builder *Builder) And(literals ...int64) int64 {
	switch len(literals) {
	case 0:
		return builder.True()
	case 1:
		return literals[0]
	}
	gate := builder.NewVariable()
	clause := make([]int64, 0, len(literals)+1)
	for _, literal := range literals {
		builder.AddClause(-gate, literal)
		clause = append(clause, -literal)
	}
	builder.AddClause(append(clause, gate)...)
	return gate
}

// Or returns a literal equivalent to the disjunction of the literals.
func (builder *Builder) Or(literals ...int64) int64 {
	switch len(literals) {
	case 0:
		return -builder.True()
	case 1:
		return literals[0]
	}
	gate := builder.NewVariable()
	clause := make([]int64, 0, len(literals)+1)
	for _, literal := range literals {
		builder.AddClause(gate, -literal)
		clause = append(clause, literal)
	}
	builder.AddClause(append(clause, -gate)...)
	return gate
}

// Xor returns a literal equivalent to a != b.
func (builder *Builder) Xor(a, b int64) int64 {
	gate := builder.NewVariable()
	builder.AddClause(-gate, a, b)
	builder.AddClause(-gate, -a, -b)
	builder.AddClause(gate, -a, b)
	builder.AddClause(gate, a, -b)
	return gate
}

// Totalizer returns min(len(literals), limit) output literals where
// outputs[j] holds if and only if at least j+1 of the literals hold.
// Repeated literals are counted once per occurrence.
func (builder *Builder) Totalizer(literals []int64, limit int) []int64 {
	if limit <= 0 || len(literals) == 0 {
		return nil
	}
	if len(literals) == 1 {
		return []int64{literals[0]}
	}

	middle := len(literals) / 2
	left := builder.Totalizer(literals[:middle], limit)
	right := builder.Totalizer(literals[middle:], limit)
	size := min(len(left)+len(right), limit)
	outputs := builder.NewVariables(size)

	// left[i-1] states that at least i left literals hold, i = 0 holds trivially
	for i := 0; i <= len(left); i++ {
		for j := 0; j <= len(right); j++ {
			// Counting up: left >= i and right >= j imply total >= i+j
			if total := min(i+j, size); total > 0 {
				clause := []int64{outputs[total-1]}
				if i > 0 {
					clause = append(clause, -left[i-1])
				}
				if j > 0 {
					clause = append(clause, -right[j-1])
				}
				builder.AddClause(clause...)
			}
			// Counting down: left <= i and right <= j imply total <= i+j
			if total := i + j + 1; total <= size {
				clause := []int64{-outputs[total-1]}
				if i < len(left) {
					clause = append(clause, left[i])
				}
				if j < len(right) {
					clause = append(clause, right[j])
				}
				builder.AddClause(clause...)
			}
		}
	}
	return outputs
}

// Build freezes the builder and returns the instance.
func (builder *Builder) Build() SAT {
	builder.frozen = true
	return SAT{
		Variables: builder.variables,
		Clauses:   builder.clauses,
		Bounds:    builder.bounds,
	}
}

func (builder *Builder) encodeBound(bound Bound) {
	if bound.Max < 0 {
		builder.contradiction()
		return
	}
	expanded := make([]int64, 0, len(bound.Literals))
	var total int64
	for i, literal := range bound.Literals {
		weight := bound.Weights[i]
		if weight <= 0 {
			continue
		}
		if weight > bound.Max {
			builder.AddClause(-literal)
			continue
		}
		total += weight
		for range weight {
			expanded = append(expanded, literal)
		}
	}
	if total <= bound.Max {
		return
	}
	builder.AtMost(expanded, int(bound.Max))
}

func (builder *Builder) contradiction() {
	variable := builder.NewVariable()
	builder.clauses = append(builder.clauses, []int64{variable}, []int64{-variable})
}

func (builder *Builder) mutable() {
	if builder.frozen {
		panic("builder is frozen")
	}
}

func abs(literal int64) int64 {
	if literal < 0 {
		return -literal
	}
	return literal
}
