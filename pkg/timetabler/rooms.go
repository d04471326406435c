package timetabler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type UnassignableError struct {
	Timeslot model.Timeslot
	Courses  []string
}

func (err UnassignableError) Error() string {
	return fmt.Sprintf("not all courses at %v can be assigned a room: %v", err.Timeslot, strings.Join(err.Courses, ", "))
}

// assignRooms gives every course a physical room of its timeslot through a
// maximum matching. Unmatched courses go online while their pair stays under
// the online cap.
func assignRooms(university model.University, courses []model.Course) ([]model.Course, error) {
	online := university.OnlineRoom()
	physical := lo.Filter(lo.Range(len(university.Rooms)), func(room int, _ int) bool { return !university.Rooms[room].Online() })

	required := make(map[[3]int]uint64)
	onlineUsed := make(map[[3]int]uint64)
	simultaneous := make(map[uint64][]int)
	for i, course := range courses {
		key := [3]int{course.Promotion, course.Group, course.Subject}
		required[key]++
		simultaneous[course.Timeslot] = append(simultaneous[course.Timeslot], i)
	}

	assigned := slices.Clone(courses)
	slots := lo.Keys(simultaneous)
	slices.Sort(slots)
	for _, slot := range slots {
		members := simultaneous[slot]
		matching, err := matchRooms(members, physical)
		if err != nil {
			return nil, err
		}

		for _, i := range members {
			if room, ok := matching[i]; ok {
				assigned[i].Room = room
				continue
			}
			key := [3]int{courses[i].Promotion, courses[i].Group, courses[i].Subject}
			if online < 0 || onlineUsed[key]+1 > model.OnlineCap(required[key]) {
				return nil, UnassignableError{
					Timeslot: university.Timeslots[slot],
					Courses: lo.Map(members, func(i int, _ int) string {
						return fmt.Sprintf("%v (%v)", university.Subject(courses[i]).Name, university.Group(courses[i]).Name)
					}),
				}
			}
			onlineUsed[key]++
			assigned[i].Room = online
		}
	}
	return assigned, nil
}

// matchRooms returns course index -> room for a largest matching.
func matchRooms(members []int, rooms []int) (map[int]int, error) {
	if len(rooms) == 0 {
		return map[int]int{}, nil
	}

	// Any physical room can host any course
	neighbors := func(memberAny any, roomAny any) (bool, error) {
		return true, nil
	}

	membersAny, roomsAny := lo.Map(members, func(member int, _ int) any { return member }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(membersAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	assignments := make(map[int]int, len(members))
	for _, edge := range graph.LargestMatching() {
		memberIndex, roomIndex := edge.Node1, edge.Node2-len(members)
		assignments[members[memberIndex]] = rooms[roomIndex]
	}
	return assignments, nil
}
