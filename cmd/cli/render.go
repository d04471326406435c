package main

import (
	"fmt"
	"io"
	"time"

	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
)

const MB float64 = 1024 * 1024

// progressObserver prints one line per telemetry event.
func progressObserver(out io.Writer) timetabler.Observer {
	return timetabler.ObserverFunc(func(event timetabler.Event) {
		objective := "-"
		if event.Objective >= 0 {
			objective = fmt.Sprint(event.Objective)
		}
		prefix := ""
		if event.Final {
			prefix = "final: "
		}
		fmt.Fprintf(out, "%v[%v] %v, objective %v, %d solutions, memory %.1f MB, cpu %.0f%%\n",
			prefix, event.Elapsed.Truncate(time.Second), event.Status, objective, event.Solutions, float64(event.PeakMemory)/MB, event.PeakCPU)
	})
}

func printSummary(out io.Writer, summary timetabler.Summary) {
	fmt.Fprintf(out, "Status: %v\n", summary.Status)
	if summary.BestObjective >= 0 {
		fmt.Fprintf(out, "Objective: %v\n", summary.BestObjective)
		fmt.Fprintf(out, "Conflicts: %v\n", summary.Conflicts)
	}
	fmt.Fprintf(out, "Solutions: %v\n", summary.SolutionCount)
	fmt.Fprintf(out, "Elapsed: %v\n", summary.Elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(out, "Variables: %v\n", summary.Variables)
	fmt.Fprintf(out, "Clauses: %v\n", summary.Clauses)
}

func printViolations(out io.Writer, violations []model.Violation) {
	fmt.Fprintf(out, "%d violations found:\n", len(violations))
	for _, violation := range violations {
		fmt.Fprintf(out, "\t%v\n", violation)
	}
}
