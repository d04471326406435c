package model

import "time"

const (
	LunchOffset         = 2 // Third slot of the day
	SaturdayFirstClosed = 3 // Saturday slots from this offset on are closed
	LateSlots           = 2 // Number of trailing slots considered late
)

// SlotWithinDay returns the offset of an absolute slot inside its day.
func (university University) SlotWithinDay(slot uint64) uint64 {
	return slot % university.SlotsPerDay()
}

// DayOf returns the day offset of an absolute slot.
func (university University) DayOf(slot uint64) uint64 {
	return slot / university.SlotsPerDay()
}

func (university University) WeekOf(slot uint64) uint64 {
	return university.DayOf(slot) / 7
}

// Weekday of a day offset, Monday being 0.
func (university University) Weekday(day uint64) uint64 {
	start := (uint64(university.StartDate.Weekday()) + 6) % 7
	return (start + day) % 7
}

// IsLunch reports whether the slot is the lunch break. Days with two slots or
// fewer have no lunch break.
func (university University) IsLunch(slot uint64) bool {
	return university.SlotsPerDay() > LunchOffset && university.SlotWithinDay(slot) == LunchOffset
}

func (university University) IsWeekendClosed(slot uint64) bool {
	switch university.Weekday(university.DayOf(slot)) {
	case 5:
		return university.SlotWithinDay(slot) >= SaturdayFirstClosed
	case 6:
		return true
	}
	return false
}

// Forbidden reports whether no course may ever take place at the slot.
func (university University) Forbidden(slot uint64) bool {
	return university.IsLunch(slot) || university.IsWeekendClosed(slot)
}

func (university University) IsLate(slot uint64) bool {
	perDay := university.SlotsPerDay()
	within := university.SlotWithinDay(slot)
	return within+LateSlots >= perDay
}

// DaySlots returns the absolute slots of a day in chronological order.
func (university University) DaySlots(day uint64) []uint64 {
	perDay := university.SlotsPerDay()
	slots := make([]uint64, perDay)
	for i := range perDay {
		slots[i] = day*perDay + i
	}
	return slots
}

func dateOf(start time.Time, day uint64) time.Time {
	return start.AddDate(0, 0, int(day))
}
