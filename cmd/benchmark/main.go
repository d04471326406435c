package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/golang/glog"
	"github.com/limaJavier/coursetimetabler/internal/config"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/samber/lo"
)

const (
	satisfiableTestDirectory   = "../../test/instances/satisfiable/"
	unsatisfiableTestDirectory = "../../test/instances/unsatisfiable/"
	resultsFile                = "benchmark_results.csv"
	MB                         = 1024 * 1024
)

type ResultType int

const (
	solved ResultType = iota
	unsatisfiable
	timeout
)

var resultTypes = map[ResultType]string{
	solved:        "solved",
	unsatisfiable: "unsatisfiable",
	timeout:       "timeout",
}

func (result ResultType) String() string {
	return resultTypes[result]
}

type TestMetadata struct {
	Name        string
	Satisfiable bool
	Promotions  int
	Groups      int
	Subjects    int
	Teachers    int
	Rooms       int
	Occurrences uint64
	university  model.University
}

// BenchmarkResult is one row of the results file.
type BenchmarkResult struct {
	Solver      string  `csv:"Solver"`
	Strategy    string  `csv:"Strategy"`
	Test        string  `csv:"Test"`
	Satisfiable bool    `csv:"Satisfiable"`
	Promotions  int     `csv:"Promotions"`
	Groups      int     `csv:"Groups"`
	Subjects    int     `csv:"Subjects"`
	Teachers    int     `csv:"Teachers"`
	Rooms       int     `csv:"Rooms"`
	Occurrences uint64  `csv:"Occurrences"`
	Duration    int64   `csv:"Duration(ms)"`
	Memory      float64 `csv:"Memory(MB)"`
	Cpu         float64 `csv:"CPU(%)"`
	Objective   int64   `csv:"Objective"`
	Solutions   int     `csv:"Solutions"`
	Result      string  `csv:"Result"`
}

var (
	budget   = flag.Int("budget", 60, "time budget in seconds of every run")
	optimize = flag.Bool("optimize", false, "optimize until the budget runs out instead of stopping on the first conflict-free timetable")
	output   = flag.String("out", resultsFile, "results file")
)

func main() {
	flag.Parse()

	tests := getTests(satisfiableTestDirectory, unsatisfiableTestDirectory)
	solvers := getSolvers()
	results := make([]BenchmarkResult, 0, len(tests)*len(config.Strategies)*len(solvers))

	for _, test := range tests {
		for _, strategy := range config.Strategies {
			for _, solver := range solvers {
				fmt.Printf("Benchmarking test \"%v\" with strategy \"%v\" and solver \"%v\"\n", test.Name, strategy, solver)

				cfg := config.Default()
				cfg.Solver = solver
				cfg.Strategy = strategy
				cfg.TimeBudget = *budget
				results = append(results, measure(cfg, test, *optimize))
			}
		}
	}

	if err := toCsv(*output, results); err != nil {
		glog.Fatalf("%v", err)
	}
}

func getTests(directories ...string) []TestMetadata {
	tests := make([]TestMetadata, 0)
	for _, directory := range directories {
		testFiles, err := os.ReadDir(directory)
		if err != nil {
			glog.Fatalf("cannot read directory: %v", err)
		}

		for _, file := range testFiles {
			if file.IsDir() || path.Ext(file.Name()) != ".json" {
				continue
			}
			filename := path.Join(directory, file.Name())
			university, err := model.InputFromJson(filename)
			if err != nil {
				glog.Fatalf("cannot parse input file: %v", err)
			}
			tests = append(tests, metadata(filename, directory != unsatisfiableTestDirectory, university))
		}
	}
	return tests
}

func metadata(name string, satisfiable bool, university model.University) TestMetadata {
	var occurrences uint64
	subjects := 0
	for _, promotion := range university.Promotions {
		subjects += len(promotion.Subjects)
		for _, subject := range promotion.Subjects {
			occurrences += university.RequiredOccurrences(subject) * uint64(len(promotion.Groups))
		}
	}
	return TestMetadata{
		Name:        name,
		Satisfiable: satisfiable,
		Promotions:  len(university.Promotions),
		Groups:      len(university.Groups()),
		Subjects:    subjects,
		Teachers:    len(university.Teachers),
		Rooms:       len(university.Rooms),
		Occurrences: occurrences,
		university:  university,
	}
}

// getSolvers lists the in-process solvers plus the external ones found in
// the PATH.
func getSolvers() []string {
	defaults := config.Default()
	external := map[string]string{
		"kissat":  defaults.KissatPath,
		"minisat": defaults.MinisatPath,
	}
	return lo.Filter(config.Solvers, func(solver string, _ int) bool {
		executable, ok := external[solver]
		if !ok {
			return true
		}
		_, err := exec.LookPath(executable)
		return err == nil
	})
}

func measure(cfg config.Config, test TestMetadata, optimize bool) BenchmarkResult {
	var final timetabler.Event
	options := cfg.Options()
	options.Stopper = timetabler.BatchStopper
	if optimize {
		options.Stopper = timetabler.NeverStop
	}
	options.Observer = timetabler.ObserverFunc(func(event timetabler.Event) {
		if event.Final {
			final = event
		}
	})

	start := time.Now()
	_, summary, err := cfg.NewTimetabler().Build(context.Background(), test.university, options)
	duration := time.Since(start)
	if err != nil && !errors.Is(err, timetabler.ErrNoSolutionFound) && !errors.Is(err, timetabler.ErrTimeoutWithoutSolution) {
		glog.Fatalf("an error occurred at test \"%v\" using strategy \"%v\" and solver \"%v\": %v", test.Name, cfg.Strategy, cfg.Solver, err)
	}

	return BenchmarkResult{
		Solver:      cfg.Solver,
		Strategy:    cfg.Strategy,
		Test:        test.Name,
		Satisfiable: test.Satisfiable,
		Promotions:  test.Promotions,
		Groups:      test.Groups,
		Subjects:    test.Subjects,
		Teachers:    test.Teachers,
		Rooms:       test.Rooms,
		Occurrences: test.Occurrences,
		Duration:    duration.Milliseconds(),
		Memory:      float64(final.PeakMemory) / MB,
		Cpu:         final.PeakCPU,
		Objective:   summary.BestObjective,
		Solutions:   summary.SolutionCount,
		Result:      resultOf(summary.Status).String(),
	}
}

func resultOf(status timetabler.Status) ResultType {
	switch status {
	case timetabler.Feasible, timetabler.Optimal:
		return solved
	case timetabler.Infeasible:
		return unsatisfiable
	}
	return timeout
}

func toCsv(file string, results []BenchmarkResult) error {
	out, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&results, out); err != nil {
		return fmt.Errorf("cannot write CSV records: %w", err)
	}
	return nil
}
