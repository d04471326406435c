package timetabler

import (
	"testing"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRooms(t *testing.T) {
	//** Act
	matching, err := matchRooms([]int{4, 7, 9}, []int{0, 2})

	//** Assert
	require.NoError(t, err)
	assert.Len(t, matching, 2)
	rooms := make(map[int]bool)
	for member, room := range matching {
		assert.Contains(t, []int{4, 7, 9}, member)
		assert.Contains(t, []int{0, 2}, room)
		rooms[room] = true
	}
	assert.Len(t, rooms, 2, "every room hosts a single course")
}

func TestAssignRooms(t *testing.T) {
	//** Arrange
	raw := singleGroupRaw(5, 4, 4)
	raw.Groups = append(raw.Groups, model.RawGroup{Promotion: "First year", Group: "C12"})
	raw.Teachers = append(raw.Teachers, model.RawTeacher{FirstName: "Luis", LastName: "Gomez", Subjects: []string{"MAT"}})
	raw.Rooms = append(raw.Rooms, model.RawRoom{Name: "Virtual", Type: model.OnlineRoomType})
	university := mustUniversity(t, raw)
	courses := []model.Course{
		{Timeslot: 0, Group: 0, Teacher: 0, Room: -1},
		{Timeslot: 1, Group: 0, Teacher: 0, Room: -1},
		{Timeslot: 3, Group: 0, Teacher: 0, Room: -1},
		{Timeslot: 4, Group: 0, Teacher: 0, Room: -1},
		{Timeslot: 0, Group: 1, Teacher: 1, Room: -1},
		{Timeslot: 5, Group: 1, Teacher: 1, Room: -1},
		{Timeslot: 7, Group: 1, Teacher: 1, Room: -1},
		{Timeslot: 8, Group: 1, Teacher: 1, Room: -1},
	}

	t.Run("one course goes online", func(t *testing.T) {
		//** Act
		assigned, err := assignRooms(university, courses)

		//** Assert
		require.NoError(t, err)
		assert.True(t, model.Verify(university, assigned, false))
		assert.ElementsMatch(t, []int{0, 1}, []int{assigned[0].Room, assigned[4].Room})
		assert.Equal(t, -1, courses[0].Room, "input courses are left untouched")
	})

	t.Run("online cap exceeded", func(t *testing.T) {
		//** Arrange
		// Three shared slots need three online courses, two are allowed
		crowded := append([]model.Course(nil), courses...)
		crowded[5].Timeslot, crowded[6].Timeslot = 1, 3

		//** Act
		_, err := assignRooms(university, crowded)

		//** Assert
		var unassignable UnassignableError
		require.ErrorAs(t, err, &unassignable)
		assert.Len(t, unassignable.Courses, 2)
	})
}
