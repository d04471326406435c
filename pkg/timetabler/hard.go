package timetabler

import (
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/samber/lo"
)

type constraint func(vm *variableModel)

// hardConstraints lists the rules applied to a model. Relaxed models leave
// room and teacher exclusivity to the objective.
func hardConstraints(vm *variableModel, relaxed bool) []constraint {
	constraints := []constraint{
		forbiddenSlotConstraints,
		groupExclusivityConstraints,
		availabilityConstraints,
		occurrenceOrderConstraints,
	}
	if vm.withRooms {
		constraints = append(constraints, onlineCapConstraints)
		if !relaxed {
			constraints = append(constraints, roomConstraints)
		}
	} else {
		constraints = append(constraints, roomCapacityConstraints)
	}
	if !relaxed {
		constraints = append(constraints, teacherExclusivityConstraints)
	}
	return constraints
}

// Lunch break and weekend blackout
func forbiddenSlotConstraints(vm *variableModel) {
	for slot := range vm.university.TotalSlots() {
		if !vm.university.Forbidden(slot) {
			continue
		}
		for _, occ := range vm.occurrences {
			vm.builder.AddClause(-occ.slots[slot])
		}
	}
}

// A group attends at most one occurrence per slot
func groupExclusivityConstraints(vm *variableModel) {
	for _, slot := range vm.allowedSlots() {
		for _, members := range vm.byGroup {
			if len(members) < 2 {
				continue
			}
			vm.builder.AtMostOne(lo.Map(members, func(o int, _ int) int64 { return vm.occurrences[o].slots[slot] }))
		}
	}
}

// A teacher chosen for a pair must be available at every slot of its
// occurrences
func availabilityConstraints(vm *variableModel) {
	allowed := vm.allowedSlots()
	for _, p := range vm.pairs {
		for k, t := range p.teachers {
			teacher := vm.university.Teachers[t]
			if !teacher.Restricted() {
				continue
			}
			for _, slot := range allowed {
				if teacher.AvailableAt(slot) {
					continue
				}
				for _, o := range p.occurrences {
					vm.builder.AddClause(-p.choices[k], -vm.occurrences[o].slots[slot])
				}
			}
		}
	}
}

// Occurrences of a pair are interchangeable, so they are kept in slot order
func occurrenceOrderConstraints(vm *variableModel) {
	allowed := vm.allowedSlots()
	for _, p := range vm.pairs {
		for i := 1; i < len(p.occurrences); i++ {
			previous, next := vm.occurrences[p.occurrences[i-1]], vm.occurrences[p.occurrences[i]]
			// before holds when the previous occurrence is at a slot lower than the current one
			before := -vm.builder.True()
			for _, slot := range allowed {
				vm.builder.AddClause(-next.slots[slot], before)
				before = vm.builder.Or(before, previous.slots[slot])
			}
		}
	}
}

// At most 30% of a pair's occurrences may be online
func onlineCapConstraints(vm *variableModel) {
	if vm.online < 0 {
		return
	}
	for _, p := range vm.pairs {
		literals := lo.Map(p.occurrences, func(o int, _ int) int64 { return vm.occurrences[o].rooms[vm.online] })
		vm.builder.AddBound(literals, lo.Map(literals, func(int64, int) int64 { return 1 }), int64(model.OnlineCap(uint64(len(literals)))))
	}
}

// A physical room hosts at most one occurrence per slot
func roomConstraints(vm *variableModel) {
	for r, room := range vm.university.Rooms {
		if room.Online() {
			continue
		}
		for _, slot := range vm.allowedSlots() {
			inRoom := make([]int64, 0, len(vm.occurrences))
			for _, occ := range vm.occurrences {
				// inRoom is implied by, not equivalent to, the occurrence being there
				literal := vm.builder.NewVariable()
				vm.builder.AddClause(-occ.slots[slot], -occ.rooms[r], literal)
				inRoom = append(inRoom, literal)
			}
			vm.builder.AtMostOne(inRoom)
		}
	}
}

// Without rooms in the model, a slot cannot hold more occurrences than there
// are physical rooms
func roomCapacityConstraints(vm *variableModel) {
	capacity := vm.university.PhysicalRooms()
	if capacity == 0 {
		return
	}
	for _, slot := range vm.allowedSlots() {
		literals := lo.Map(vm.occurrences, func(occ occurrence, _ int) int64 { return occ.slots[slot] })
		if len(literals) > capacity {
			vm.builder.AddBound(literals, lo.Map(literals, func(int64, int) int64 { return 1 }), int64(capacity))
		}
	}
}

// A teacher gives at most one occurrence per slot
func teacherExclusivityConstraints(vm *variableModel) {
	type candidate struct {
		pair   int
		choice int64
	}
	byTeacher := make([][]candidate, len(vm.university.Teachers))
	for i, p := range vm.pairs {
		for k, t := range p.teachers {
			byTeacher[t] = append(byTeacher[t], candidate{pair: i, choice: p.choices[k]})
		}
	}

	for _, candidates := range byTeacher {
		// Group exclusivity already covers teachers of a single group
		if len(lo.UniqBy(candidates, func(c candidate) int { return vm.pairs[c.pair].groupIndex })) < 2 {
			continue
		}
		for _, slot := range vm.allowedSlots() {
			teaching := make([]int64, 0)
			for _, c := range candidates {
				for _, o := range vm.pairs[c.pair].occurrences {
					literal := vm.builder.NewVariable()
					vm.builder.AddClause(-vm.occurrences[o].slots[slot], -c.choice, literal)
					teaching = append(teaching, literal)
				}
			}
			vm.builder.AtMostOne(teaching)
		}
	}
}
