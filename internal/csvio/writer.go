package csvio

import (
	"cmp"
	"fmt"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// CourseRow is a course with every index resolved to a name.
type CourseRow struct {
	Week    uint64 `csv:"week"`
	Day     string `csv:"day"`
	Date    string `csv:"date"`
	Start   string `csv:"start"`
	End     string `csv:"end"`
	Group   string `csv:"group"`
	Subject string `csv:"subject"`
	Teacher string `csv:"teacher"`
	Room    string `csv:"room"`
}

type yamlTimeslot struct {
	Date  string `yaml:"date"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type yamlCourse struct {
	Timeslot yamlTimeslot `yaml:"timeslot"`
	Group    string       `yaml:"group"`
	Subject  string       `yaml:"subject"`
	Teacher  string       `yaml:"teacher"`
	Room     string       `yaml:"room"`
}

// Rows resolves the courses sorted by timeslot, then by group declaration
// order.
func Rows(university model.University, courses []model.Course) []CourseRow {
	groupOrder := make(map[model.GroupKey]int)
	for i, key := range university.Groups() {
		groupOrder[key] = i
	}
	sorted := slices.Clone(courses)
	slices.SortStableFunc(sorted, func(a, b model.Course) int {
		if c := cmp.Compare(a.Timeslot, b.Timeslot); c != 0 {
			return c
		}
		return cmp.Compare(groupOrder[a.GroupKey()], groupOrder[b.GroupKey()])
	})

	return lo.Map(sorted, func(course model.Course, _ int) CourseRow {
		timeslot := university.Timeslots[course.Timeslot]
		room := ""
		if course.Room >= 0 && course.Room < len(university.Rooms) {
			room = university.Rooms[course.Room].Name
		}
		return CourseRow{
			Week:    timeslot.Day/7 + 1,
			Day:     dayNames[university.Weekday(timeslot.Day)],
			Date:    timeslot.Date.Format(time.DateOnly),
			Start:   timeslot.Start,
			End:     timeslot.End,
			Group:   university.Group(course).Name,
			Subject: university.Subject(course).Name,
			Teacher: university.Teachers[course.Teacher].Name(),
			Room:    room,
		}
	})
}

func ExportCourses(file string, university model.University, courses []model.Course) error {
	return writeRows(file, Rows(university, courses))
}

func ExportCoursesString(university model.University, courses []model.Course) (string, error) {
	rows := Rows(university, courses)
	return gocsv.MarshalString(&rows)
}

func ExportYAML(file string, university model.University, courses []model.Course) error {
	entries := lo.Map(Rows(university, courses), func(row CourseRow, _ int) yamlCourse {
		return yamlCourse{
			Timeslot: yamlTimeslot{Date: row.Date, Start: row.Start, End: row.End},
			Group:    row.Group,
			Subject:  row.Subject,
			Teacher:  row.Teacher,
			Room:     row.Room,
		}
	})
	bytes, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cannot marshal courses: %w", err)
	}
	if err := os.WriteFile(file, bytes, 0666); err != nil {
		return fmt.Errorf("cannot write %v: %w", file, err)
	}
	return nil
}

// ExportViews writes one CSV per group, teacher and room into the directory,
// each holding the rows of that entity only.
func ExportViews(directory string, university model.University, courses []model.Course) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("cannot create views directory: %w", err)
	}
	rows := Rows(university, courses)

	views := make(map[string][]CourseRow)
	for _, row := range rows {
		views["group_"+row.Group] = append(views["group_"+row.Group], row)
		views["teacher_"+row.Teacher] = append(views["teacher_"+row.Teacher], row)
		if row.Room != "" {
			views["room_"+row.Room] = append(views["room_"+row.Room], row)
		}
	}
	for name, viewRows := range views {
		if err := writeRows(path.Join(directory, fileName(name)+".csv"), viewRows); err != nil {
			return err
		}
	}
	return nil
}

var unsafeCharacters = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)

func fileName(name string) string {
	return strings.Trim(unsafeCharacters.ReplaceAllString(name, "_"), "_")
}

func writeRows(file string, rows []CourseRow) error {
	out, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("cannot create %v: %w", file, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("cannot write %v: %w", file, err)
	}
	return nil
}
