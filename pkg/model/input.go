package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

const clockLayout = "15:04"

type RawUniversity struct {
	Name             string
	StartDate        string // YYYY-MM-DD
	Days             uint64
	TimeslotDuration float64
}

type RawTimeRange struct {
	Start string
	End   string
}

type RawGroup struct {
	Promotion string
	Group     string
}

type RawSubject struct {
	Id        string
	Name      string
	Hours     float64
	Color     string
	Promotion string
}

type RawTeacher struct {
	FirstName string
	LastName  string
	Subjects  []string
}

// RawAvailability is one cell of a teacher's weekly grid. Day is relative to
// the start date (0 is the first day of the schedule) and repeats every week.
type RawAvailability struct {
	Teacher   string
	Day       uint64
	Slot      uint64
	Available bool
}

type RawRoom struct {
	Name string
	Type string
}

type RawInstance struct {
	University   RawUniversity
	Timeslots    []RawTimeRange
	Groups       []RawGroup
	Subjects     []RawSubject
	Teachers     []RawTeacher
	Availability []RawAvailability
	Rooms        []RawRoom
}

func InputFromJson(file string) (University, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return University{}, fmt.Errorf("cannot read instance file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return University{}, err
	}

	var raw RawInstance
	if err := mapstructure.Decode(inputJson, &raw); err != nil {
		return University{}, fmt.Errorf("cannot decode instance file: %w", err)
	}
	return BuildUniversity(raw)
}

// BuildUniversity validates the raw records and derives the timeslot sequence
// and the teachers' availability sets.
func BuildUniversity(raw RawInstance) (University, error) {
	//** University metadata
	if raw.University.Name == "" {
		return University{}, malformed("university", "name must not be empty")
	}
	universityEntity := fmt.Sprintf("university \"%v\"", raw.University.Name)
	if raw.University.Days == 0 {
		return University{}, malformed(universityEntity, "days must be positive")
	} else if raw.University.TimeslotDuration <= 0 {
		return University{}, malformed(universityEntity, "timeslot duration must be positive: %v", raw.University.TimeslotDuration)
	}
	startDate, err := time.Parse(time.DateOnly, raw.University.StartDate)
	if err != nil {
		return University{}, malformed(universityEntity, "invalid start date \"%v\"", raw.University.StartDate)
	}

	university := University{
		Name:             raw.University.Name,
		StartDate:        startDate,
		Days:             raw.University.Days,
		TimeslotDuration: raw.University.TimeslotDuration,
	}

	//** Time ranges
	if len(raw.Timeslots) == 0 {
		return University{}, malformed(universityEntity, "no time ranges declared")
	}
	var previous time.Time
	for i, rawRange := range raw.Timeslots {
		entity := fmt.Sprintf("time range %d", i)
		start, err1 := time.Parse(clockLayout, rawRange.Start)
		end, err2 := time.Parse(clockLayout, rawRange.End)
		if err1 != nil || err2 != nil {
			return University{}, malformed(entity, "times must be formatted as HH:MM: %v-%v", rawRange.Start, rawRange.End)
		} else if !end.After(start) {
			return University{}, malformed(entity, "end %v is not after start %v", rawRange.End, rawRange.Start)
		} else if i > 0 && start.Before(previous) {
			return University{}, malformed(entity, "ranges must be declared in chronological order")
		}
		previous = end
		university.TimeRanges = append(university.TimeRanges, TimeRange{Start: rawRange.Start, End: rawRange.End})
	}
	university.Timeslots = generateTimeslots(startDate, university.Days, university.TimeRanges)

	//** Promotions and groups
	promotionIndex := make(map[string]int)
	for _, rawGroup := range raw.Groups {
		if rawGroup.Promotion == "" || rawGroup.Group == "" {
			return University{}, malformed("promotions", "row with empty promotion or group: %+v", rawGroup)
		}
		index, ok := promotionIndex[rawGroup.Promotion]
		if !ok {
			index = len(university.Promotions)
			promotionIndex[rawGroup.Promotion] = index
			university.Promotions = append(university.Promotions, Promotion{Name: rawGroup.Promotion})
		}
		university.Promotions[index].Groups = append(university.Promotions[index].Groups, Group{Name: rawGroup.Group})
	}
	// Group names are unique across the whole university
	if duplicate, ok := firstDuplicate(lo.Map(raw.Groups, func(rawGroup RawGroup, _ int) string { return rawGroup.Group })); ok {
		return University{}, malformed(fmt.Sprintf("group \"%v\"", duplicate), "declared more than once")
	}

	//** Subjects
	knownSubjects := make(map[string]bool)
	for _, rawSubject := range raw.Subjects {
		entity := fmt.Sprintf("subject \"%v\"", rawSubject.Id)
		if rawSubject.Id == "" {
			return University{}, malformed("subjects", "subject \"%v\" has no id", rawSubject.Name)
		} else if rawSubject.Hours <= 0 {
			return University{}, malformed(entity, "hours must be positive: %v", rawSubject.Hours)
		}
		index, ok := promotionIndex[rawSubject.Promotion]
		if !ok {
			return University{}, malformed(fmt.Sprintf("promotion \"%v\"", rawSubject.Promotion), "has subjects but no groups")
		}
		promotion := &university.Promotions[index]
		if lo.ContainsBy(promotion.Subjects, func(subject Subject) bool { return subject.Id == rawSubject.Id }) {
			return University{}, malformed(entity, "declared more than once for promotion \"%v\"", promotion.Name)
		}
		promotion.Subjects = append(promotion.Subjects, Subject{
			Id:    rawSubject.Id,
			Name:  rawSubject.Name,
			Hours: rawSubject.Hours,
			Color: rawSubject.Color,
		})
		knownSubjects[rawSubject.Id] = true
	}

	//** Teachers
	teacherIndex := make(map[string]int)
	for _, rawTeacher := range raw.Teachers {
		teacher := Teacher{
			FirstName: rawTeacher.FirstName,
			LastName:  rawTeacher.LastName,
			Subjects:  lo.Uniq(rawTeacher.Subjects),
		}
		name := teacher.Name()
		if name == "" {
			return University{}, malformed("teachers", "teacher without a name")
		} else if _, ok := teacherIndex[name]; ok {
			return University{}, malformed(fmt.Sprintf("teacher \"%v\"", name), "declared more than once")
		}
		for _, subject := range teacher.Subjects {
			if !knownSubjects[subject] {
				return University{}, UnknownSubjectError{Teacher: name, Subject: subject}
			}
		}
		teacherIndex[name] = len(university.Teachers)
		university.Teachers = append(university.Teachers, teacher)
	}

	//** Availability
	if err := expandAvailability(&university, raw.Availability, teacherIndex); err != nil {
		return University{}, err
	}

	//** Rooms
	if len(raw.Rooms) == 0 {
		return University{}, malformed(universityEntity, "no rooms declared")
	}
	for _, rawRoom := range raw.Rooms {
		if rawRoom.Name == "" {
			return University{}, malformed("rooms", "room without a name")
		}
		university.Rooms = append(university.Rooms, Room{Name: rawRoom.Name, Type: rawRoom.Type})
	}
	if duplicate, ok := firstDuplicate(lo.Map(raw.Rooms, func(rawRoom RawRoom, _ int) string { return rawRoom.Name })); ok {
		return University{}, malformed(fmt.Sprintf("room \"%v\"", duplicate), "declared more than once")
	}

	return university, nil
}

func generateTimeslots(start time.Time, days uint64, ranges []TimeRange) []Timeslot {
	timeslots := make([]Timeslot, 0, int(days)*len(ranges))
	for day := range days {
		date := dateOf(start, day)
		for _, timeRange := range ranges {
			timeslots = append(timeslots, Timeslot{
				Index: uint64(len(timeslots)),
				Day:   day,
				Date:  date,
				Start: timeRange.Start,
				End:   timeRange.End,
			})
		}
	}
	return timeslots
}

// Replicates every teacher's weekly grid over the whole schedule
func expandAvailability(university *University, cells []RawAvailability, teacherIndex map[string]int) error {
	perDay := university.SlotsPerDay()
	for _, cell := range cells {
		index, ok := teacherIndex[cell.Teacher]
		if !ok {
			return malformed(fmt.Sprintf("teacher \"%v\"", cell.Teacher), "availability declared for an unknown teacher")
		} else if cell.Day > 6 || cell.Slot >= perDay {
			return malformed(fmt.Sprintf("teacher \"%v\"", cell.Teacher), "availability cell out of range: day %d, slot %d", cell.Day, cell.Slot)
		}

		teacher := &university.Teachers[index]
		if teacher.Available == nil {
			teacher.Available = bitset.New(uint(university.TotalSlots()))
		}
		if !cell.Available {
			continue
		}
		for day := cell.Day; day < university.Days; day += 7 {
			teacher.Available.Set(uint(day*perDay + cell.Slot))
		}
	}
	return nil
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if seen[value] {
			return value, true
		}
		seen[value] = true
	}
	return "", false
}
