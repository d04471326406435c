package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
)

// interactive reports whether stdin is a terminal.
func interactive() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// promptStopper asks the operator whether to keep the first conflict-free
// timetable.
type promptStopper struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptStopper(in io.Reader, out io.Writer) *promptStopper {
	return &promptStopper{in: bufio.NewReader(in), out: out}
}

func (p *promptStopper) ShouldStopEarly(objective int64) bool {
	fmt.Fprintf(p.out, "\nA conflict-free timetable with penalty %d was found. Stop here and keep it? [y/N]: ", objective)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return true
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptBudget asks the operator for the time budget in seconds. An empty or
// invalid answer keeps the default.
type promptBudget struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptBudget(in io.Reader, out io.Writer) *promptBudget {
	return &promptBudget{in: bufio.NewReader(in), out: out}
}

func (p *promptBudget) TimeBudget() int {
	fmt.Fprintf(p.out, "Time budget in seconds [%d]: ", int(timetabler.DefaultTimeBudget.Seconds()))
	answer, _ := p.in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return int(timetabler.DefaultTimeBudget.Seconds())
	}
	seconds, err := strconv.Atoi(answer)
	if err != nil {
		fmt.Fprintf(p.out, "%q is not a number of seconds\n", answer)
		return 0
	}
	return seconds
}
