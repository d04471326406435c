package csvio

import (
	"os"
	"path"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const smallDirectory = "../../test/instances/csv/small"

func TestLoadUniversity(t *testing.T) {
	//** Act
	university, err := LoadUniversity(smallDirectory)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "Small", university.Name)
	assert.Equal(t, uint64(20), university.TotalSlots())
	require.Len(t, university.Promotions, 1)
	assert.Len(t, university.Promotions[0].Groups, 2)
	assert.Equal(t, "#ff7f0e", university.Promotions[0].Subjects[1].Color)
	assert.Equal(t, []string{"PRG", "MAT"}, university.Teachers[1].Subjects)
	assert.True(t, university.Teachers[0].Restricted())
	assert.Equal(t, uint(5), university.Teachers[0].Available.Count())
	assert.False(t, university.Teachers[1].Restricted())
	assert.Equal(t, 1, university.OnlineRoom())
}

func TestLoadInstanceMatchesJson(t *testing.T) {
	//** Arrange
	fromJson, err := model.InputFromJson("../../test/instances/satisfiable/small.json")
	require.NoError(t, err)

	//** Act
	raw, err := LoadInstance(smallDirectory)
	require.NoError(t, err)
	raw.Availability = nil
	fromCsv, err := model.BuildUniversity(raw)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, fromJson, fromCsv)
}

func TestLoadInstanceOptionalAvailability(t *testing.T) {
	//** Arrange
	directory := t.TempDir()
	for _, name := range []string{UniversityFile, TimeslotsFile, PromotionsFile, SubjectsFile, TeachersFile, RoomsFile} {
		bytes, err := os.ReadFile(path.Join(smallDirectory, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path.Join(directory, name), bytes, 0666))
	}

	//** Act
	raw, err := LoadInstance(directory)

	//** Assert
	require.NoError(t, err)
	assert.Empty(t, raw.Availability)

	require.NoError(t, os.Remove(path.Join(directory, RoomsFile)))
	_, err = LoadInstance(directory)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInstanceRejectsSeveralUniversities(t *testing.T) {
	//** Arrange
	directory := t.TempDir()
	content := "name,start_date,days,timeslot_duration\nA,2024-01-01,5,1\nB,2024-01-01,5,1\n"
	require.NoError(t, os.WriteFile(path.Join(directory, UniversityFile), []byte(content), 0666))

	//** Act
	_, err := LoadInstance(directory)

	//** Assert
	assert.ErrorContains(t, err, "exactly one row")
}

func exportFixture(t *testing.T) (model.University, []model.Course) {
	university, err := LoadUniversity(smallDirectory)
	require.NoError(t, err)
	courses := []model.Course{
		{Timeslot: 5, Promotion: 0, Group: 1, Subject: 1, Teacher: 1, Room: 0},
		{Timeslot: 0, Promotion: 0, Group: 1, Subject: 0, Teacher: 0, Room: 1},
		{Timeslot: 0, Promotion: 0, Group: 0, Subject: 1, Teacher: 1, Room: 0},
	}
	return university, courses
}

func TestRows(t *testing.T) {
	//** Arrange
	university, courses := exportFixture(t)

	//** Act
	rows := Rows(university, courses)

	//** Assert
	assert.Equal(t, []CourseRow{
		{Week: 1, Day: "Monday", Date: "2024-01-01", Start: "08:00", End: "09:30", Group: "C11", Subject: "Programming", Teacher: "Luis Gomez", Room: "Room 1"},
		{Week: 1, Day: "Monday", Date: "2024-01-01", Start: "08:00", End: "09:30", Group: "C12", Subject: "Math", Teacher: "Ana Perez", Room: "Online"},
		{Week: 1, Day: "Tuesday", Date: "2024-01-02", Start: "09:40", End: "11:10", Group: "C12", Subject: "Programming", Teacher: "Luis Gomez", Room: "Room 1"},
	}, rows)
}

func TestExportCourses(t *testing.T) {
	//** Arrange
	university, courses := exportFixture(t)
	file := path.Join(t.TempDir(), "courses.csv")

	//** Act
	require.NoError(t, ExportCourses(file, university, courses))

	//** Assert
	in, err := os.Open(file)
	require.NoError(t, err)
	defer in.Close()
	rows := []CourseRow{}
	require.NoError(t, gocsv.UnmarshalFile(in, &rows))
	assert.Equal(t, Rows(university, courses), rows)

	content, err := ExportCoursesString(university, courses)
	require.NoError(t, err)
	assert.Contains(t, content, "week,day,date,start,end,group,subject,teacher,room\n")
}

func TestExportYAML(t *testing.T) {
	//** Arrange
	university, courses := exportFixture(t)
	file := path.Join(t.TempDir(), "courses.yaml")

	//** Act
	require.NoError(t, ExportYAML(file, university, courses))

	//** Assert
	bytes, err := os.ReadFile(file)
	require.NoError(t, err)
	var entries []yamlCourse
	require.NoError(t, yaml.Unmarshal(bytes, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, yamlCourse{
		Timeslot: yamlTimeslot{Date: "2024-01-02", Start: "09:40", End: "11:10"},
		Group:    "C12",
		Subject:  "Programming",
		Teacher:  "Luis Gomez",
		Room:     "Room 1",
	}, entries[2])
}

func TestExportViews(t *testing.T) {
	//** Arrange
	university, courses := exportFixture(t)
	directory := path.Join(t.TempDir(), "views")

	//** Act
	require.NoError(t, ExportViews(directory, university, courses))

	//** Assert
	files, err := os.ReadDir(directory)
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name())
	}
	assert.ElementsMatch(t, []string{
		"group_C11.csv", "group_C12.csv",
		"teacher_Ana_Perez.csv", "teacher_Luis_Gomez.csv",
		"room_Room_1.csv", "room_Online.csv",
	}, names)

	in, err := os.Open(path.Join(directory, "teacher_Luis_Gomez.csv"))
	require.NoError(t, err)
	defer in.Close()
	rows := []CourseRow{}
	require.NoError(t, gocsv.UnmarshalFile(in, &rows))
	assert.Len(t, rows, 2)
}
