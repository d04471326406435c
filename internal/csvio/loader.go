// Package csvio reads instances from a directory of CSV files and writes
// timetables back as CSV and YAML.
package csvio

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/samber/lo"
)

const (
	UniversityFile   = "University.csv"
	TimeslotsFile    = "Timeslots.csv"
	PromotionsFile   = "Promotions.csv"
	SubjectsFile     = "Subjects.csv"
	TeachersFile     = "Teachers.csv"
	AvailabilityFile = "Availability.csv" // Optional
	RoomsFile        = "Rooms.csv"

	subjectSeparator = "|"
)

type universityRow struct {
	Name             string  `csv:"name"`
	StartDate        string  `csv:"start_date"`
	Days             uint64  `csv:"days"`
	TimeslotDuration float64 `csv:"timeslot_duration"`
}

type timeslotRow struct {
	Start string `csv:"start"`
	End   string `csv:"end"`
}

type promotionRow struct {
	Promotion string `csv:"promotion"`
	Group     string `csv:"group"`
}

type subjectRow struct {
	Id        string  `csv:"id"`
	Name      string  `csv:"name"`
	Hours     float64 `csv:"hours"`
	Color     string  `csv:"color"`
	Promotion string  `csv:"promotion"`
}

type teacherRow struct {
	FirstName string `csv:"first_name"`
	LastName  string `csv:"last_name"`
	Subjects  string `csv:"subjects"` // Subject ids separated by "|"
}

type availabilityRow struct {
	Teacher   string `csv:"teacher"`
	Day       uint64 `csv:"day"`
	Slot      uint64 `csv:"slot"`
	Available bool   `csv:"available"`
}

type roomRow struct {
	Name string `csv:"name"`
	Type string `csv:"type"`
}

// LoadUniversity reads and validates the instance stored in a directory.
func LoadUniversity(directory string) (model.University, error) {
	raw, err := LoadInstance(directory)
	if err != nil {
		return model.University{}, err
	}
	return model.BuildUniversity(raw)
}

// LoadInstance reads the raw records of a directory without validating them.
func LoadInstance(directory string) (model.RawInstance, error) {
	var raw model.RawInstance

	universities := []universityRow{}
	if err := unmarshal(directory, UniversityFile, &universities, false); err != nil {
		return raw, err
	} else if len(universities) != 1 {
		return raw, fmt.Errorf("%v must hold exactly one row, found %d", UniversityFile, len(universities))
	}
	university := universities[0]
	raw.University = model.RawUniversity{
		Name:             university.Name,
		StartDate:        university.StartDate,
		Days:             university.Days,
		TimeslotDuration: university.TimeslotDuration,
	}

	timeslots := []timeslotRow{}
	if err := unmarshal(directory, TimeslotsFile, &timeslots, false); err != nil {
		return raw, err
	}
	raw.Timeslots = lo.Map(timeslots, func(row timeslotRow, _ int) model.RawTimeRange {
		return model.RawTimeRange{Start: row.Start, End: row.End}
	})

	promotions := []promotionRow{}
	if err := unmarshal(directory, PromotionsFile, &promotions, false); err != nil {
		return raw, err
	}
	raw.Groups = lo.Map(promotions, func(row promotionRow, _ int) model.RawGroup {
		return model.RawGroup{Promotion: strings.TrimSpace(row.Promotion), Group: strings.TrimSpace(row.Group)}
	})

	subjects := []subjectRow{}
	if err := unmarshal(directory, SubjectsFile, &subjects, false); err != nil {
		return raw, err
	}
	raw.Subjects = lo.Map(subjects, func(row subjectRow, _ int) model.RawSubject {
		return model.RawSubject{
			Id:        strings.TrimSpace(row.Id),
			Name:      row.Name,
			Hours:     row.Hours,
			Color:     row.Color,
			Promotion: strings.TrimSpace(row.Promotion),
		}
	})

	teachers := []teacherRow{}
	if err := unmarshal(directory, TeachersFile, &teachers, false); err != nil {
		return raw, err
	}
	raw.Teachers = lo.Map(teachers, func(row teacherRow, _ int) model.RawTeacher {
		return model.RawTeacher{
			FirstName: strings.TrimSpace(row.FirstName),
			LastName:  strings.TrimSpace(row.LastName),
			Subjects: lo.FilterMap(strings.Split(row.Subjects, subjectSeparator), func(id string, _ int) (string, bool) {
				id = strings.TrimSpace(id)
				return id, id != ""
			}),
		}
	})

	availability := []availabilityRow{}
	if err := unmarshal(directory, AvailabilityFile, &availability, true); err != nil {
		return raw, err
	}
	raw.Availability = lo.Map(availability, func(row availabilityRow, _ int) model.RawAvailability {
		return model.RawAvailability{Teacher: strings.TrimSpace(row.Teacher), Day: row.Day, Slot: row.Slot, Available: row.Available}
	})

	rooms := []roomRow{}
	if err := unmarshal(directory, RoomsFile, &rooms, false); err != nil {
		return raw, err
	}
	raw.Rooms = lo.Map(rooms, func(row roomRow, _ int) model.RawRoom {
		return model.RawRoom{Name: strings.TrimSpace(row.Name), Type: strings.TrimSpace(row.Type)}
	})

	return raw, nil
}

func unmarshal(directory, name string, rows any, optional bool) error {
	file, err := os.Open(path.Join(directory, name))
	if optional && errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot open %v: %w", name, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, rows); err != nil {
		return fmt.Errorf("cannot parse %v, please check the data integrity and format: %w", name, err)
	}
	return nil
}
