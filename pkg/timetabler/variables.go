package timetabler

import (
	"slices"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/sat"
)

// occurrence is one meeting of a (group, subject) pair. slots[t] holds when
// the occurrence takes place at absolute slot t and rooms[r] when it uses
// room r.
type occurrence struct {
	pair  int
	index int
	slots []int64
	rooms []int64 // Empty when rooms are assigned after the search
}

// pair is a (group, subject) requirement whose occurrences share a teacher.
// choices[k] holds when teachers[k] teaches the pair.
type pair struct {
	promotion   int
	group       int
	subject     int
	groupIndex  int // Index into variableModel.groups
	teachers    []int
	choices     []int64
	occurrences []int
}

type variableModel struct {
	university  model.University
	builder     *sat.Builder
	withRooms   bool
	online      int // Index of the online room, -1 if there is none
	groups      []model.GroupKey
	byGroup     [][]int // Occurrences of each group
	pairs       []pair
	occurrences []occurrence
	pairIndex   map[[3]int]int
	allowed     []uint64
}

// newVariableModel allocates the choice variables of every required
// occurrence in declaration order.
func newVariableModel(university model.University, builder *sat.Builder, withRooms bool) (*variableModel, error) {
	vm := &variableModel{
		university: university,
		builder:    builder,
		withRooms:  withRooms,
		online:     university.OnlineRoom(),
		groups:     university.Groups(),
		pairIndex:  make(map[[3]int]int),
		allowed:    allowedSlots(university),
	}
	vm.byGroup = make([][]int, len(vm.groups))
	totalSlots := int(university.TotalSlots())

	for groupIndex, key := range vm.groups {
		promotion := university.Promotions[key.Promotion]
		for s, subject := range promotion.Subjects {
			n := university.RequiredOccurrences(subject)
			if n == 0 {
				continue // Zero-hour subjects need no variables
			}

			qualified := make([]int, 0)
			for t, teacher := range university.Teachers {
				if teacher.Qualified(subject.Id) {
					qualified = append(qualified, t)
				}
			}
			if len(qualified) == 0 {
				return nil, model.NoQualifiedTeacherError{
					Promotion: promotion.Name,
					Group:     promotion.Groups[key.Group].Name,
					Subject:   subject.Name,
				}
			}

			current := pair{
				promotion:  key.Promotion,
				group:      key.Group,
				subject:    s,
				groupIndex: groupIndex,
				teachers:   qualified,
				choices:    builder.NewVariables(len(qualified)),
			}
			builder.ExactlyOne(current.choices)

			for k := range n {
				occ := occurrence{
					pair:  len(vm.pairs),
					index: int(k),
					slots: builder.NewVariables(totalSlots),
				}
				builder.ExactlyOne(occ.slots)
				if withRooms {
					occ.rooms = builder.NewVariables(len(university.Rooms))
					builder.ExactlyOne(occ.rooms)
				}
				current.occurrences = append(current.occurrences, len(vm.occurrences))
				vm.byGroup[groupIndex] = append(vm.byGroup[groupIndex], len(vm.occurrences))
				vm.occurrences = append(vm.occurrences, occ)
			}

			vm.pairIndex[[3]int{key.Promotion, key.Group, s}] = len(vm.pairs)
			vm.pairs = append(vm.pairs, current)
		}
	}

	return vm, nil
}

// occurrenceOf looks up the k-th occurrence of a (promotion, group, subject) triple.
func (vm *variableModel) occurrenceOf(promotion, group, subject, k int) (occurrence, bool) {
	index, ok := vm.pairIndex[[3]int{promotion, group, subject}]
	if !ok || k < 0 || k >= len(vm.pairs[index].occurrences) {
		return occurrence{}, false
	}
	return vm.occurrences[vm.pairs[index].occurrences[k]], true
}

// allowedSlots lists the slots a course may ever take place at.
func (vm *variableModel) allowedSlots() []uint64 {
	return vm.allowed
}

func allowedSlots(university model.University) []uint64 {
	allowed := make([]uint64, 0, len(university.Timeslots))
	for slot := range university.TotalSlots() {
		if !university.Forbidden(slot) {
			allowed = append(allowed, slot)
		}
	}
	return allowed
}

// chosen returns the index of the true literal of a one-hot vector.
func chosen(solution sat.SATSolution, literals []int64) int {
	return slices.IndexFunc(literals, solution.Value)
}
