package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/stretchr/testify/assert"
)

func TestPromptStopper(t *testing.T) {
	cases := []struct {
		answer string
		stop   bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"", true}, // End of input
		{"y", true},
	}

	for _, c := range cases {
		//** Arrange
		out := &bytes.Buffer{}
		stopper := newPromptStopper(strings.NewReader(c.answer), out)

		//** Act
		stop := stopper.ShouldStopEarly(42)

		//** Assert
		assert.Equal(t, c.stop, stop, "answer %q", c.answer)
		assert.Contains(t, out.String(), "penalty 42")
	}
}

func TestPromptStopperReadsSuccessiveAnswers(t *testing.T) {
	//** Arrange
	stopper := newPromptStopper(strings.NewReader("n\ny\n"), &bytes.Buffer{})

	//** Act & Assert
	assert.False(t, stopper.ShouldStopEarly(10))
	assert.True(t, stopper.ShouldStopEarly(5))
}

func TestPromptBudget(t *testing.T) {
	cases := []struct {
		answer  string
		seconds int
	}{
		{"30\n", 30},
		{" 90 \n", 90},
		{"\n", int(timetabler.DefaultTimeBudget.Seconds())},
		{"", int(timetabler.DefaultTimeBudget.Seconds())},
		{"soon\n", 0},
	}

	for _, c := range cases {
		//** Arrange
		out := &bytes.Buffer{}
		budget := newPromptBudget(strings.NewReader(c.answer), out)

		//** Act
		seconds := budget.TimeBudget()

		//** Assert
		assert.Equal(t, c.seconds, seconds, "answer %q", c.answer)
		assert.Contains(t, out.String(), "[1200]")
	}
}

func TestInvalidPromptBudgetResolvesToDefault(t *testing.T) {
	//** Arrange
	budget := newPromptBudget(strings.NewReader("-\n"), &bytes.Buffer{})

	//** Act
	resolved := timetabler.ResolveTimeBudget(budget.TimeBudget())

	//** Assert
	assert.Equal(t, timetabler.DefaultTimeBudget, resolved)
}

func TestPrintSummary(t *testing.T) {
	//** Arrange
	out := &bytes.Buffer{}

	//** Act
	printSummary(out, timetabler.Summary{
		BestObjective: 7,
		SolutionCount: 3,
		Elapsed:       1500 * time.Millisecond,
		Status:        timetabler.Optimal,
		Variables:     12,
		Clauses:       40,
	})
	printSummary(out, timetabler.Summary{BestObjective: -1, Status: timetabler.Infeasible})

	//** Assert
	assert.Contains(t, out.String(), "Objective: 7\n")
	assert.Contains(t, out.String(), "Elapsed: 1.5s\n")
	assert.Equal(t, 1, strings.Count(out.String(), "Objective:"))
}

func TestProgressObserver(t *testing.T) {
	//** Arrange
	out := &bytes.Buffer{}
	observer := progressObserver(out)

	//** Act
	observer.Observe(timetabler.Event{Elapsed: 2 * time.Second, Objective: -1, Status: timetabler.Searching})
	observer.Observe(timetabler.Event{Elapsed: 3 * time.Second, Objective: 4, Solutions: 2, PeakMemory: 2 * 1024 * 1024, Status: timetabler.Feasible, Final: true})

	//** Assert
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "objective -,")
	assert.True(t, strings.HasPrefix(lines[1], "final: [3s]"))
	assert.Contains(t, lines[1], "memory 2.0 MB")
}

func TestPrintViolations(t *testing.T) {
	//** Arrange
	out := &bytes.Buffer{}
	violations := []model.Violation{{}, {}}

	//** Act
	printViolations(out, violations)

	//** Assert
	assert.True(t, strings.HasPrefix(out.String(), "2 violations found:\n"))
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}
