// Package analytics computes a diagnostic report over an extracted
// timetable. It never feeds back into the search.
package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/samber/lo"
)

type Conflict struct {
	Kind    model.ViolationKind
	Detail  string
	Courses []int
}

type Utilization struct {
	Name      string
	Occupied  int // Slots in use
	Available int // Slots the resource could be used in
	Rate      float64
}

type PenaltyShare struct {
	Category   timetabler.Category
	Units      int64
	Penalty    int64
	Percentage float64
}

type Report struct {
	University string
	Courses    int
	Conflicts  []Conflict
	Rooms      []Utilization
	Teachers   []Utilization
	Groups     []Utilization
	Penalties  []PenaltyShare
	Total      int64
}

// Analyze builds the report of a course list. topN limits every utilization
// ranking, all entries are kept when it is not positive. Nil weights stand
// for the defaults.
func Analyze(university model.University, courses []model.Course, weights *timetabler.Weights, topN int) (Report, error) {
	violations := model.CheckConstraints(university, courses)
	if invalid, ok := lo.Find(violations, func(violation model.Violation) bool { return violation.Kind == model.InvalidReference }); ok {
		return Report{}, fmt.Errorf("cannot analyze courses: %v", invalid.Detail)
	}
	if weights == nil {
		defaults := timetabler.DefaultWeights()
		weights = &defaults
	}

	report := Report{
		University: university.Name,
		Courses:    len(courses),
		Conflicts: lo.FilterMap(violations, func(violation model.Violation, _ int) (Conflict, bool) {
			overlap := violation.Kind == model.RoomOverlap || violation.Kind == model.TeacherOverlap || violation.Kind == model.GroupOverlap
			return Conflict{Kind: violation.Kind, Detail: violation.Detail, Courses: violation.Courses}, overlap
		}),
	}

	report.Rooms, report.Teachers, report.Groups = utilization(university, courses, topN)

	units := penaltyUnits(university, courses)
	for _, category := range timetabler.Categories {
		penalty := units[category] * weights.Of(category)
		report.Penalties = append(report.Penalties, PenaltyShare{
			Category: category,
			Units:    units[category],
			Penalty:  penalty,
		})
		report.Total += penalty
	}
	for i := range report.Penalties {
		if report.Total > 0 {
			report.Penalties[i].Percentage = 100 * float64(report.Penalties[i].Penalty) / float64(report.Total)
		}
	}

	return report, nil
}

func utilization(university model.University, courses []model.Course, topN int) (rooms, teachers, groups []Utilization) {
	allowed := lo.Filter(lo.Range(int(university.TotalSlots())), func(slot int, _ int) bool { return !university.Forbidden(uint64(slot)) })

	occupied := func(matches func(course model.Course) bool) int {
		return len(lo.Uniq(lo.FilterMap(courses, func(course model.Course, _ int) (uint64, bool) {
			return course.Timeslot, matches(course)
		})))
	}

	for r, room := range university.Rooms {
		rooms = append(rooms, rate(room.Name, occupied(func(course model.Course) bool { return course.Room == r }), len(allowed)))
	}
	for t, teacher := range university.Teachers {
		available := lo.CountBy(allowed, func(slot int) bool { return teacher.AvailableAt(uint64(slot)) })
		teachers = append(teachers, rate(teacher.Name(), occupied(func(course model.Course) bool { return course.Teacher == t }), available))
	}
	for _, key := range university.Groups() {
		name := university.Promotions[key.Promotion].Groups[key.Group].Name
		groups = append(groups, rate(name, occupied(func(course model.Course) bool { return course.GroupKey() == key }), len(allowed)))
	}

	return top(rooms, topN), top(teachers, topN), top(groups, topN)
}

func rate(name string, occupied, available int) Utilization {
	utilization := Utilization{Name: name, Occupied: occupied, Available: available}
	if available > 0 {
		utilization.Rate = float64(occupied) / float64(available)
	}
	return utilization
}

// top sorts by decreasing rate, then by name
func top(entries []Utilization, n int) []Utilization {
	slices.SortStableFunc(entries, func(a, b Utilization) int {
		if c := cmp.Compare(b.Rate, a.Rate); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}

func (report Report) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Timetable report for %v (%d courses)\n\n", report.University, report.Courses)

	if len(report.Conflicts) == 0 {
		builder.WriteString("Conflicts: none\n")
	} else {
		fmt.Fprintf(&builder, "Conflicts: %d\n", len(report.Conflicts))
		for _, conflict := range report.Conflicts {
			fmt.Fprintf(&builder, "\t%v: %v\n", conflict.Kind, conflict.Detail)
		}
	}

	writer := tabwriter.NewWriter(&builder, 0, 4, 2, ' ', 0)
	for _, section := range []struct {
		title   string
		entries []Utilization
	}{
		{"Rooms", report.Rooms},
		{"Teachers", report.Teachers},
		{"Groups", report.Groups},
	} {
		fmt.Fprintf(writer, "\n%v\tused\tavailable\trate\n", section.title)
		for _, entry := range section.entries {
			fmt.Fprintf(writer, "  %v\t%d\t%d\t%.1f%%\n", entry.Name, entry.Occupied, entry.Available, 100*entry.Rate)
		}
	}

	fmt.Fprintf(writer, "\nPenalties\tunits\tpenalty\tshare\n")
	for _, share := range report.Penalties {
		fmt.Fprintf(writer, "  %v\t%d\t%d\t%.1f%%\n", share.Category, share.Units, share.Penalty, share.Percentage)
	}
	fmt.Fprintf(writer, "  total\t\t%d\t\n", report.Total)
	writer.Flush()

	return builder.String()
}
