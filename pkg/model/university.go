package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/samber/lo"
)

// OnlineRoomType is the room type tag exempt from physical overlap.
const OnlineRoomType = "online"

type Subject struct {
	Id    string
	Name  string
	Hours float64
	Color string
}

type Teacher struct {
	FirstName string
	LastName  string
	Subjects  []string       // Ids of the subjects the teacher is qualified for
	Available *bitset.BitSet // Absolute slots the teacher can teach in; nil means every slot
}

func (teacher Teacher) Name() string {
	return strings.TrimSpace(teacher.FirstName + " " + teacher.LastName)
}

func (teacher Teacher) Qualified(subject string) bool {
	return lo.Contains(teacher.Subjects, subject)
}

func (teacher Teacher) AvailableAt(slot uint64) bool {
	return teacher.Available == nil || teacher.Available.Test(uint(slot))
}

// Restricted reports whether the teacher has an explicit availability set.
func (teacher Teacher) Restricted() bool {
	return teacher.Available != nil
}

type Room struct {
	Name string
	Type string
}

func (room Room) Online() bool {
	return strings.EqualFold(strings.TrimSpace(room.Type), OnlineRoomType)
}

type Group struct {
	Name     string
	Students []string
}

type Promotion struct {
	Name     string
	Groups   []Group
	Subjects []Subject
}

// TimeRange is a daily slot template entry, formatted as HH:MM.
type TimeRange struct {
	Start string
	End   string
}

type Timeslot struct {
	Index uint64 // Absolute slot index
	Day   uint64 // Day offset from the university start date
	Date  time.Time
	Start string
	End   string
}

func (timeslot Timeslot) String() string {
	return fmt.Sprintf("%v %v-%v", timeslot.Date.Format(time.DateOnly), timeslot.Start, timeslot.End)
}

type University struct {
	Name             string
	Rooms            []Room
	Teachers         []Teacher
	Promotions       []Promotion
	StartDate        time.Time
	Days             uint64
	TimeRanges       []TimeRange
	TimeslotDuration float64 // Hours per slot
	Timeslots        []Timeslot
}

// Course is a scheduled occurrence; indexes refer to the University's slices.
type Course struct {
	Timeslot  uint64
	Promotion int
	Group     int
	Subject   int // Index into the promotion's subjects
	Teacher   int
	Room      int
}

func (university University) SlotsPerDay() uint64 {
	return uint64(len(university.TimeRanges))
}

func (university University) TotalSlots() uint64 {
	return uint64(len(university.Timeslots))
}

func (university University) Weeks() uint64 {
	return (university.Days + 6) / 7
}

// RequiredOccurrences is floor(hours / timeslot duration).
func (university University) RequiredOccurrences(subject Subject) uint64 {
	if university.TimeslotDuration <= 0 || subject.Hours <= 0 {
		return 0
	}
	return uint64(math.Floor(subject.Hours / university.TimeslotDuration))
}

// OnlineRoom returns the index of the first online room, or -1.
func (university University) OnlineRoom() int {
	_, index, ok := lo.FindIndexOf(university.Rooms, func(room Room) bool { return room.Online() })
	if !ok {
		return -1
	}
	return index
}

// PhysicalRooms counts the rooms that are not online.
func (university University) PhysicalRooms() int {
	return lo.CountBy(university.Rooms, func(room Room) bool { return !room.Online() })
}

func (university University) Subject(course Course) Subject {
	return university.Promotions[course.Promotion].Subjects[course.Subject]
}

func (university University) Group(course Course) Group {
	return university.Promotions[course.Promotion].Groups[course.Group]
}

// GroupKey identifies a group across promotions.
type GroupKey struct {
	Promotion int
	Group     int
}

func (course Course) GroupKey() GroupKey {
	return GroupKey{Promotion: course.Promotion, Group: course.Group}
}

// Groups lists every group of every promotion in declaration order.
func (university University) Groups() []GroupKey {
	keys := make([]GroupKey, 0)
	for p, promotion := range university.Promotions {
		for g := range promotion.Groups {
			keys = append(keys, GroupKey{Promotion: p, Group: g})
		}
	}
	return keys
}
