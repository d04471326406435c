package model

import "fmt"

type ViolationKind int

const (
	InvalidReference ViolationKind = iota
	RoomOverlap
	TeacherOverlap
	GroupOverlap
	Unqualified
	Unavailable
	ForbiddenSlot
	OnlineCapExceeded
	OccurrenceMismatch
)

var violationNames = map[ViolationKind]string{
	InvalidReference:   "invalid reference",
	RoomOverlap:        "room overlap",
	TeacherOverlap:     "teacher overlap",
	GroupOverlap:       "group overlap",
	Unqualified:        "unqualified teacher",
	Unavailable:        "unavailable teacher",
	ForbiddenSlot:      "forbidden slot",
	OnlineCapExceeded:  "online cap exceeded",
	OccurrenceMismatch: "occurrence mismatch",
}

func (kind ViolationKind) String() string {
	return violationNames[kind]
}

type Violation struct {
	Kind    ViolationKind
	Courses []int // Indexes of the offending courses
	Detail  string
}

func (violation Violation) String() string {
	return fmt.Sprintf("%v: %v", violation.Kind, violation.Detail)
}

// OnlineCap is the number of occurrences of a (group, subject) pair allowed
// in the online room.
func OnlineCap(occurrences uint64) uint64 {
	return occurrences * 3 / 10
}

// CheckConstraints re-checks every hard rule over an extracted course list.
func CheckConstraints(university University, courses []Course) []Violation {
	violations := make([]Violation, 0)
	for i, course := range courses {
		if !validReference(university, course) {
			violations = append(violations, Violation{Kind: InvalidReference, Courses: []int{i}, Detail: fmt.Sprintf("course %d references an unknown entity: %+v", i, course)})
		}
	}
	if len(violations) > 0 {
		return violations
	}

	type slotKey struct {
		slot  uint64
		index int
	}
	rooms, teachers, groups := make(map[slotKey]int), make(map[slotKey]int), make(map[slotKey]int)
	occurrences, online := make(map[[3]int]uint64), make(map[[3]int]uint64)
	groupIndexes := make(map[GroupKey]int)
	for i, key := range university.Groups() {
		groupIndexes[key] = i
	}

	for i, course := range courses {
		subject := university.Subject(course)
		teacher := university.Teachers[course.Teacher]
		room := university.Rooms[course.Room]
		group := university.Group(course)
		pairKey := [3]int{course.Promotion, course.Group, course.Subject}

		if university.Forbidden(course.Timeslot) {
			violations = append(violations, Violation{Kind: ForbiddenSlot, Courses: []int{i}, Detail: fmt.Sprintf("%v of group \"%v\" at %v", subject.Name, group.Name, university.Timeslots[course.Timeslot])})
		}
		if !teacher.Qualified(subject.Id) {
			violations = append(violations, Violation{Kind: Unqualified, Courses: []int{i}, Detail: fmt.Sprintf("%v cannot teach %v", teacher.Name(), subject.Name)})
		}
		if !teacher.AvailableAt(course.Timeslot) {
			violations = append(violations, Violation{Kind: Unavailable, Courses: []int{i}, Detail: fmt.Sprintf("%v is not available at %v", teacher.Name(), university.Timeslots[course.Timeslot])})
		}
		if !room.Online() {
			key := slotKey{course.Timeslot, course.Room}
			if other, ok := rooms[key]; ok {
				violations = append(violations, Violation{Kind: RoomOverlap, Courses: []int{other, i}, Detail: fmt.Sprintf("room %v at %v", room.Name, university.Timeslots[course.Timeslot])})
			} else {
				rooms[key] = i
			}
		} else {
			online[pairKey]++
		}
		teacherKey := slotKey{course.Timeslot, course.Teacher}
		if other, ok := teachers[teacherKey]; ok {
			violations = append(violations, Violation{Kind: TeacherOverlap, Courses: []int{other, i}, Detail: fmt.Sprintf("%v at %v", teacher.Name(), university.Timeslots[course.Timeslot])})
		} else {
			teachers[teacherKey] = i
		}
		groupKey := slotKey{course.Timeslot, groupIndexes[course.GroupKey()]}
		if other, ok := groups[groupKey]; ok {
			violations = append(violations, Violation{Kind: GroupOverlap, Courses: []int{other, i}, Detail: fmt.Sprintf("group \"%v\" at %v", group.Name, university.Timeslots[course.Timeslot])})
		} else {
			groups[groupKey] = i
		}
		occurrences[pairKey]++
	}

	for p, promotion := range university.Promotions {
		for g, group := range promotion.Groups {
			for s, subject := range promotion.Subjects {
				pairKey := [3]int{p, g, s}
				required := university.RequiredOccurrences(subject)
				if occurrences[pairKey] != required {
					violations = append(violations, Violation{Kind: OccurrenceMismatch, Detail: fmt.Sprintf("group \"%v\" has %d occurrences of %v, %d required", group.Name, occurrences[pairKey], subject.Name, required)})
				}
				if online[pairKey] > OnlineCap(required) {
					violations = append(violations, Violation{Kind: OnlineCapExceeded, Detail: fmt.Sprintf("group \"%v\" has %d online occurrences of %v, at most %d allowed", group.Name, online[pairKey], subject.Name, OnlineCap(required))})
				}
			}
		}
	}

	return violations
}

// Verify reports whether the courses satisfy every hard rule. When relaxed,
// room and teacher overlaps are tolerated.
func Verify(university University, courses []Course, relaxed bool) bool {
	for _, violation := range CheckConstraints(university, courses) {
		if relaxed && (violation.Kind == RoomOverlap || violation.Kind == TeacherOverlap) {
			continue
		}
		return false
	}
	return true
}

// CountConflicts counts the pairs of courses sharing a slot and either the
// same physical room or the same teacher. A pair sharing both counts twice.
func CountConflicts(university University, courses []Course) int {
	type slotKey struct {
		slot  uint64
		index int
	}
	rooms, teachers := make(map[slotKey]int), make(map[slotKey]int)
	conflicts := 0
	for _, course := range courses {
		if course.Room >= 0 && course.Room < len(university.Rooms) && !university.Rooms[course.Room].Online() {
			key := slotKey{course.Timeslot, course.Room}
			conflicts += rooms[key]
			rooms[key]++
		}
		key := slotKey{course.Timeslot, course.Teacher}
		conflicts += teachers[key]
		teachers[key]++
	}
	return conflicts
}

func validReference(university University, course Course) bool {
	if course.Promotion < 0 || course.Promotion >= len(university.Promotions) {
		return false
	}
	promotion := university.Promotions[course.Promotion]
	return course.Group >= 0 && course.Group < len(promotion.Groups) &&
		course.Subject >= 0 && course.Subject < len(promotion.Subjects) &&
		course.Teacher >= 0 && course.Teacher < len(university.Teachers) &&
		course.Room >= 0 && course.Room < len(university.Rooms) &&
		course.Timeslot < university.TotalSlots()
}
