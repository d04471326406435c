package timetabler

import (
	"github.com/limaJavier/coursetimetabler/pkg/sat"
	"github.com/samber/lo"
)

type Category int

const (
	ConflictPenalty Category = iota
	DailyBalancePenalty
	WeeklyBalancePenalty
	GapPenalty
	TransitionPenalty
	LatePenalty
)

var Categories = []Category{ConflictPenalty, DailyBalancePenalty, WeeklyBalancePenalty, GapPenalty, TransitionPenalty, LatePenalty}

var categoryNames = map[Category]string{
	ConflictPenalty:      "conflict",
	DailyBalancePenalty:  "daily balance",
	WeeklyBalancePenalty: "weekly balance",
	GapPenalty:           "gap",
	TransitionPenalty:    "transition",
	LatePenalty:          "late slot",
}

func (category Category) String() string {
	return categoryNames[category]
}

// Weights of each penalty unit.
type Weights struct {
	Conflict      int64
	DailyBalance  int64
	WeeklyBalance int64
	Gap           int64
	Transition    int64
	Late          int64
}

func DefaultWeights() Weights {
	return Weights{
		Conflict:      1,
		DailyBalance:  1,
		WeeklyBalance: 2,
		Gap:           3,
		Transition:    10,
		Late:          8,
	}
}

func (weights Weights) Of(category Category) int64 {
	switch category {
	case ConflictPenalty:
		return weights.Conflict
	case DailyBalancePenalty:
		return weights.DailyBalance
	case WeeklyBalancePenalty:
		return weights.WeeklyBalance
	case GapPenalty:
		return weights.Gap
	case TransitionPenalty:
		return weights.Transition
	case LatePenalty:
		return weights.Late
	}
	return 0
}

type term struct {
	literal  int64
	weight   int64
	category Category
}

// objective is constant + sum of the weights of the true term literals.
type objective struct {
	terms    []term
	constant int64
}

func (o *objective) add(category Category, weight int64, literal int64) {
	if weight > 0 {
		o.terms = append(o.terms, term{literal: literal, weight: weight, category: category})
	}
}

func (o *objective) Evaluate(solution sat.SATSolution) int64 {
	return o.constant + lo.SumBy(o.terms, func(t term) int64 {
		if solution.Value(t.literal) {
			return t.weight
		}
		return 0
	})
}

// Count sums the units of one category without weighting them.
func (o *objective) Count(solution sat.SATSolution, category Category) int {
	return lo.CountBy(o.terms, func(t term) bool { return t.category == category && solution.Value(t.literal) })
}

// Below returns the bound forcing the objective under the given value.
func (o *objective) Below(value int64) sat.Bound {
	return sat.Bound{
		Literals: lo.Map(o.terms, func(t term, _ int) int64 { return t.literal }),
		Weights:  lo.Map(o.terms, func(t term, _ int) int64 { return t.weight }),
		Max:      value - 1 - o.constant,
	}
}

// softLayer builds the penalty literals of a model. busy[g][t] holds when
// group g attends something at slot t.
type softLayer struct {
	vm        *variableModel
	weights   Weights
	objective *objective
	busy      [][]int64
}

func newObjective(vm *variableModel, weights Weights, relaxed bool) *objective {
	layer := &softLayer{vm: vm, weights: weights, objective: &objective{}}
	layer.busy = make([][]int64, len(vm.groups))
	for g, members := range vm.byGroup {
		layer.busy[g] = make([]int64, vm.university.TotalSlots())
		for slot := range vm.university.TotalSlots() {
			if vm.university.Forbidden(slot) || len(members) == 0 {
				layer.busy[g][slot] = -vm.builder.True()
				continue
			}
			layer.busy[g][slot] = vm.builder.Or(lo.Map(members, func(o int, _ int) int64 { return vm.occurrences[o].slots[slot] })...)
		}
	}

	if relaxed {
		layer.conflictPenalties()
	}
	layer.dailyBalancePenalties()
	layer.weeklyBalancePenalties()
	layer.gapPenalties()
	if vm.withRooms {
		layer.transitionPenalties()
	}
	layer.latePenalties()
	return layer.objective
}

// Pairs of occurrences of different groups sharing a slot and either a
// physical room or a teacher
func (layer *softLayer) conflictPenalties() {
	vm, builder := layer.vm, layer.vm.builder
	weight := layer.weights.Conflict
	allowed := vm.allowedSlots()
	for i := range vm.occurrences {
		for j := i + 1; j < len(vm.occurrences); j++ {
			first, second := vm.occurrences[i], vm.occurrences[j]
			firstPair, secondPair := vm.pairs[first.pair], vm.pairs[second.pair]
			if firstPair.groupIndex == secondPair.groupIndex {
				continue
			}

			sameRoom := make([]int64, 0)
			if vm.withRooms {
				for r, room := range vm.university.Rooms {
					if !room.Online() {
						sameRoom = append(sameRoom, builder.And(first.rooms[r], second.rooms[r]))
					}
				}
			}
			sameTeacher := make([]int64, 0)
			for a, t := range firstPair.teachers {
				if b := lo.IndexOf(secondPair.teachers, t); b >= 0 {
					sameTeacher = append(sameTeacher, builder.And(firstPair.choices[a], secondPair.choices[b]))
				}
			}
			if len(sameRoom) == 0 && len(sameTeacher) == 0 {
				continue
			}

			sameSlot := builder.Or(lo.Map(allowed, func(slot uint64, _ int) int64 {
				return builder.And(first.slots[slot], second.slots[slot])
			})...)
			if len(sameRoom) > 0 {
				layer.objective.add(ConflictPenalty, weight, builder.And(sameSlot, builder.Or(sameRoom...)))
			}
			if len(sameTeacher) > 0 {
				layer.objective.add(ConflictPenalty, weight, builder.And(sameSlot, builder.Or(sameTeacher...)))
			}
		}
	}
}

// Per group and day, the distance between the day's load and the group's
// average daily load
func (layer *softLayer) dailyBalancePenalties() {
	vm := layer.vm
	if layer.weights.DailyBalance <= 0 {
		return
	}
	for g, members := range vm.byGroup {
		if len(members) == 0 {
			continue
		}
		target := len(members) / int(vm.university.Days)
		for day := range vm.university.Days {
			daily := make([]int64, 0)
			for _, slot := range vm.university.DaySlots(day) {
				if !vm.university.Forbidden(slot) {
					daily = append(daily, layer.busy[g][slot])
				}
			}
			layer.deviation(DailyBalancePenalty, layer.weights.DailyBalance, daily, target)
		}
	}
}

// Per pair and week, the distance between the week's occurrences and the
// pair's average weekly load
func (layer *softLayer) weeklyBalancePenalties() {
	vm, builder := layer.vm, layer.vm.builder
	weeks := vm.university.Weeks()
	if weeks <= 1 || layer.weights.WeeklyBalance <= 0 {
		return
	}
	for _, p := range vm.pairs {
		if len(p.occurrences) < 2 {
			continue
		}
		target := len(p.occurrences) / int(weeks)
		for week := range weeks {
			weekly := make([]int64, 0, len(p.occurrences))
			for _, o := range p.occurrences {
				slots := make([]int64, 0)
				for day := week * 7; day < min((week+1)*7, vm.university.Days); day++ {
					for _, slot := range vm.university.DaySlots(day) {
						if !vm.university.Forbidden(slot) {
							slots = append(slots, vm.occurrences[o].slots[slot])
						}
					}
				}
				if len(slots) > 0 {
					weekly = append(weekly, builder.Or(slots...))
				}
			}
			layer.deviation(WeeklyBalancePenalty, layer.weights.WeeklyBalance, weekly, target)
		}
	}
}

// Per group and day, every empty non-lunch slot between the first and the
// last attended one
func (layer *softLayer) gapPenalties() {
	vm, builder := layer.vm, layer.vm.builder
	if layer.weights.Gap <= 0 {
		return
	}
	for g, members := range vm.byGroup {
		if len(members) == 0 {
			continue
		}
		for day := range vm.university.Days {
			// Closed weekend slots end the day, so skipping them keeps every span
			slots := lo.Filter(vm.university.DaySlots(day), func(slot uint64, _ int) bool { return !vm.university.Forbidden(slot) })
			if len(slots) < 3 {
				continue
			}
			busy := lo.Map(slots, func(slot uint64, _ int) int64 { return layer.busy[g][slot] })

			// earlier[i] holds when something is attended before slots[i]
			// and later[i] when something is attended after it
			earlier, later := make([]int64, len(slots)), make([]int64, len(slots))
			earlier[1] = busy[0]
			for i := 2; i < len(slots); i++ {
				earlier[i] = builder.Or(earlier[i-1], busy[i-1])
			}
			later[len(slots)-2] = busy[len(slots)-1]
			for i := len(slots) - 3; i >= 0; i-- {
				later[i] = builder.Or(later[i+1], busy[i+1])
			}

			for i := 1; i < len(slots)-1; i++ {
				layer.objective.add(GapPenalty, layer.weights.Gap, builder.And(earlier[i], later[i], -busy[i]))
			}
		}
	}
}

// Per group, adjacent attended slots of a day where exactly one is online
func (layer *softLayer) transitionPenalties() {
	vm, builder := layer.vm, layer.vm.builder
	if vm.online < 0 || layer.weights.Transition <= 0 {
		return
	}
	for g, members := range vm.byGroup {
		if len(members) < 2 {
			continue
		}
		online := make(map[uint64]int64)
		onlineAt := func(slot uint64) int64 {
			if literal, ok := online[slot]; ok {
				return literal
			}
			literal := builder.Or(lo.Map(members, func(o int, _ int) int64 {
				return builder.And(vm.occurrences[o].slots[slot], vm.occurrences[o].rooms[vm.online])
			})...)
			online[slot] = literal
			return literal
		}
		for day := range vm.university.Days {
			slots := vm.university.DaySlots(day)
			for i := 0; i+1 < len(slots); i++ {
				current, next := slots[i], slots[i+1]
				if vm.university.Forbidden(current) || vm.university.Forbidden(next) {
					continue
				}
				layer.objective.add(TransitionPenalty, layer.weights.Transition, builder.And(
					layer.busy[g][current],
					layer.busy[g][next],
					builder.Xor(onlineAt(current), onlineAt(next)),
				))
			}
		}
	}
}

// Every occurrence in one of the last slots of a day
func (layer *softLayer) latePenalties() {
	vm := layer.vm
	if layer.weights.Late <= 0 {
		return
	}
	for _, slot := range vm.allowedSlots() {
		if !vm.university.IsLate(slot) {
			continue
		}
		for _, occ := range vm.occurrences {
			layer.objective.add(LatePenalty, layer.weights.Late, occ.slots[slot])
		}
	}
}

// deviation adds |count(literals) - target| weighted units. Units beyond the
// number of literals are constant.
func (layer *softLayer) deviation(category Category, weight int64, literals []int64, target int) {
	if target > len(literals) {
		layer.objective.constant += weight * int64(target-len(literals))
		target = len(literals)
	}
	if len(literals) == 0 {
		return
	}
	atLeast := layer.vm.builder.Totalizer(literals, len(literals))
	for j, literal := range atLeast {
		if j+1 <= target {
			layer.objective.add(category, weight, -literal)
		} else {
			layer.objective.add(category, weight, literal)
		}
	}
}
