package analytics

import (
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/samber/lo"
)

// penaltyUnits counts the unweighted units of every penalty category the
// same way the solver's objective does.
func penaltyUnits(university model.University, courses []model.Course) map[timetabler.Category]int64 {
	units := make(map[timetabler.Category]int64, len(timetabler.Categories))
	units[timetabler.ConflictPenalty] = int64(model.CountConflicts(university, courses))

	byGroup := lo.GroupBy(lo.Range(len(courses)), func(i int) model.GroupKey { return courses[i].GroupKey() })
	online := university.OnlineRoom()

	for _, key := range university.Groups() {
		members := byGroup[key]
		if len(members) == 0 {
			continue
		}
		busy := make(map[uint64]bool, len(members))
		remote := make(map[uint64]bool)
		for _, i := range members {
			busy[courses[i].Timeslot] = true
			if online >= 0 && courses[i].Room == online {
				remote[courses[i].Timeslot] = true
			}
		}

		target := int64(len(members)) / int64(university.Days)
		for day := range university.Days {
			slots := lo.Filter(university.DaySlots(day), func(slot uint64, _ int) bool { return !university.Forbidden(slot) })
			load := int64(lo.CountBy(slots, func(slot uint64) bool { return busy[slot] }))
			units[timetabler.DailyBalancePenalty] += abs(load - target)
			units[timetabler.GapPenalty] += gaps(slots, busy)
		}

		if online >= 0 && len(members) > 1 {
			for day := range university.Days {
				slots := university.DaySlots(day)
				for i := 0; i+1 < len(slots); i++ {
					current, next := slots[i], slots[i+1]
					if university.Forbidden(current) || university.Forbidden(next) {
						continue
					}
					if busy[current] && busy[next] && remote[current] != remote[next] {
						units[timetabler.TransitionPenalty]++
					}
				}
			}
		}
	}

	if weeks := university.Weeks(); weeks > 1 {
		byPair := lo.GroupBy(courses, func(course model.Course) [3]int {
			return [3]int{course.Promotion, course.Group, course.Subject}
		})
		for _, pairCourses := range byPair {
			if len(pairCourses) < 2 {
				continue
			}
			target := int64(len(pairCourses)) / int64(weeks)
			perWeek := lo.CountValuesBy(pairCourses, func(course model.Course) uint64 { return university.WeekOf(course.Timeslot) })
			for week := range weeks {
				units[timetabler.WeeklyBalancePenalty] += abs(int64(perWeek[week]) - target)
			}
		}
	}

	units[timetabler.LatePenalty] = int64(lo.CountBy(courses, func(course model.Course) bool {
		return university.IsLate(course.Timeslot) && !university.Forbidden(course.Timeslot)
	}))

	return units
}

// gaps counts the idle slots enclosed by attended ones.
func gaps(slots []uint64, busy map[uint64]bool) int64 {
	first := lo.IndexOf(lo.Map(slots, func(slot uint64, _ int) bool { return busy[slot] }), true)
	last := lo.LastIndexOf(lo.Map(slots, func(slot uint64, _ int) bool { return busy[slot] }), true)
	if first < 0 {
		return 0
	}
	return int64(lo.CountBy(slots[first:last+1], func(slot uint64) bool { return !busy[slot] }))
}

func abs(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
