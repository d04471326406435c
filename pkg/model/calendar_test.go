package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForbiddenSlots(t *testing.T) {
	//** Arrange
	university, err := BuildUniversity(sampleRaw())
	require.NoError(t, err)

	//** Act
	forbidden := make([]uint64, 0)
	for slot := range university.TotalSlots() {
		if university.Forbidden(slot) {
			forbidden = append(forbidden, slot)
		}
	}

	//** Assert
	// Lunch of Monday to Saturday, Saturday afternoon and all of Sunday
	assert.Equal(t, []uint64{2, 6, 10, 14, 18, 22, 23, 24, 25, 26, 27}, forbidden)
}

func TestNoLunchOnShortDays(t *testing.T) {
	//** Arrange
	raw := sampleRaw()
	raw.Timeslots = raw.Timeslots[:2]
	university, err := BuildUniversity(raw)
	require.NoError(t, err)

	//** Assert
	for slot := range university.SlotsPerDay() * 5 {
		assert.False(t, university.IsLunch(slot), "slot %d", slot)
		assert.False(t, university.Forbidden(slot), "slot %d", slot)
	}
}

func TestWeekday(t *testing.T) {
	//** Arrange
	raw := sampleRaw()
	raw.University.StartDate = "2024-01-05" // Friday
	raw.University.Days = 10
	university, err := BuildUniversity(raw)
	require.NoError(t, err)

	//** Assert
	assert.Equal(t, uint64(4), university.Weekday(0))
	assert.Equal(t, uint64(5), university.Weekday(1))
	assert.Equal(t, uint64(6), university.Weekday(2))
	assert.Equal(t, uint64(0), university.Weekday(3))
	assert.Equal(t, uint64(4), university.Weekday(7))

	perDay := university.SlotsPerDay()
	assert.False(t, university.IsWeekendClosed(perDay+2))
	assert.True(t, university.IsWeekendClosed(perDay+3))
	assert.True(t, university.IsWeekendClosed(2*perDay))
	assert.False(t, university.IsWeekendClosed(3*perDay))
	assert.Equal(t, uint64(2), university.Weeks())
	assert.Equal(t, uint64(1), university.WeekOf(7*perDay))
}

func TestSlotPositions(t *testing.T) {
	//** Arrange
	university, err := BuildUniversity(sampleRaw())
	require.NoError(t, err)

	//** Assert
	assert.Equal(t, uint64(1), university.SlotWithinDay(9))
	assert.Equal(t, uint64(2), university.DayOf(9))
	assert.Equal(t, []uint64{8, 9, 10, 11}, university.DaySlots(2))
	assert.False(t, university.IsLate(9))
	assert.True(t, university.IsLate(10))
	assert.True(t, university.IsLate(11))
}
