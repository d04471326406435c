package model

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoursesJson(t *testing.T) {
	//** Arrange
	file := path.Join(t.TempDir(), "courses.json")
	courses := []Course{
		{Timeslot: 12, Promotion: 1, Group: 0, Subject: 2, Teacher: 3, Room: 0},
		{Timeslot: 40, Promotion: 0, Group: 1, Subject: 0, Teacher: 1, Room: 2},
	}

	//** Act
	require.NoError(t, CoursesToJson(file, courses))
	loaded, err := CoursesFromJson(file)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, courses, loaded)
}

func TestCoursesFromJsonErrors(t *testing.T) {
	//** Arrange
	directory := t.TempDir()
	malformedFile := path.Join(directory, "malformed.json")
	require.NoError(t, os.WriteFile(malformedFile, []byte(`{"Timeslot": 1}`), 0666))

	//** Act
	_, missingErr := CoursesFromJson(path.Join(directory, "absent.json"))
	_, malformedErr := CoursesFromJson(malformedFile)

	//** Assert
	assert.ErrorIs(t, missingErr, os.ErrNotExist)
	assert.Error(t, malformedErr)
}
