package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/golang/glog"
	"github.com/limaJavier/coursetimetabler/internal/config"
	"github.com/limaJavier/coursetimetabler/internal/csvio"
	"github.com/limaJavier/coursetimetabler/pkg/analytics"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	exitSolved             = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
	exitTimedOut           = 21
)

var (
	configPath   string
	instancePath string
	coursesPath  string

	timeBudget int
	batch      bool
	workers    int
	solverName string
	strategy   string
	relaxed    bool
	quiet      bool
	topN       int

	outPath    string
	csvPath    string
	yamlPath   string
	viewsPath  string
	withReport bool
)

func main() {
	cmdTimetabler := &cobra.Command{
		Use:   "timetabler",
		Short: "University course timetabler",
		Long: "Builds weekly course timetables for the groups of a university, assigning\n" +
			"a timeslot, a room and a qualified teacher to every required occurrence",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog reads its settings from the standard flag set
			flag.CommandLine.Parse(nil)
		},
	}
	cmdTimetabler.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	cmdTimetabler.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file, config.json next to the executable by default")
	cmdTimetabler.PersistentFlags().StringVarP(&instancePath, "instance", "i", "", "instance to read: a JSON file or a directory of CSV files")

	cmdSolve := &cobra.Command{
		Use:   "solve",
		Short: "build a timetable",
		Run:   CommandSolve,
	}
	cmdSolve.Flags().IntVarP(&timeBudget, "time", "t", 0, "time budget in seconds; asked interactively when not given")
	cmdSolve.Flags().BoolVar(&batch, "batch", false, "stop on the first conflict-free timetable without asking")
	cmdSolve.Flags().IntVar(&workers, "workers", 0, "number of concurrent solver runs, min(4, CPUs) by default")
	cmdSolve.Flags().StringVar(&solverName, "solver", "", fmt.Sprintf("SAT solver to use, one of %v", strings.Join(config.Solvers, ", ")))
	cmdSolve.Flags().StringVar(&strategy, "strategy", "", `room strategy: "embedded" (rooms are part of the model) or "isolated" (rooms are matched afterwards)`)
	cmdSolve.Flags().BoolVar(&relaxed, "relaxed", false, "turn room and teacher overlaps into penalties")
	cmdSolve.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	cmdSolve.Flags().StringVarP(&outPath, "out", "o", "", "write the courses as JSON to this file")
	cmdSolve.Flags().StringVar(&csvPath, "csv", "", "write the timetable as CSV to this file")
	cmdSolve.Flags().StringVar(&yamlPath, "yaml", "", "write the timetable as YAML to this file")
	cmdSolve.Flags().StringVar(&viewsPath, "views", "", "write one CSV per group, teacher and room into this directory")
	cmdSolve.Flags().BoolVar(&withReport, "report", false, "print the analytics report of the timetable")
	cmdSolve.Flags().IntVar(&topN, "top", 0, "entries of each utilization ranking in the report")
	cmdTimetabler.AddCommand(cmdSolve)

	cmdCheck := &cobra.Command{
		Use:   "check",
		Short: "verify a timetable against every hard constraint",
		Run:   CommandCheck,
	}
	cmdCheck.Flags().StringVarP(&coursesPath, "courses", "c", "", "courses JSON file written by solve")
	cmdCheck.Flags().BoolVar(&relaxed, "relaxed", false, "tolerate room and teacher overlaps")
	cmdTimetabler.AddCommand(cmdCheck)

	cmdReport := &cobra.Command{
		Use:   "report",
		Short: "print the analytics report of a timetable",
		Run:   CommandReport,
	}
	cmdReport.Flags().StringVarP(&coursesPath, "courses", "c", "", "courses JSON file written by solve")
	cmdReport.Flags().IntVar(&topN, "top", 0, "entries of each utilization ranking")
	cmdTimetabler.AddCommand(cmdReport)

	if err := cmdTimetabler.Execute(); err != nil {
		os.Exit(1)
	}
}

func CommandSolve(cmd *cobra.Command, args []string) {
	cfg := applyFlags(loadConfig(), cmd.Flags())
	if err := cfg.Validate(); err != nil {
		glog.Exitf("invalid settings: %v", err)
	}
	university := loadUniversity()

	options := cfg.Options()
	stdin := bufio.NewReader(os.Stdin)
	switch {
	case cfg.Batch:
		options.Stopper = timetabler.BatchStopper
	case interactive():
		options.Stopper = newPromptStopper(stdin, os.Stderr)
	default:
		options.Stopper = timetabler.NeverStop
	}
	if cfg.TimeBudget <= 0 && !cfg.Batch && interactive() {
		options.TimeBudget = newPromptBudget(stdin, os.Stderr)
	}
	if !quiet {
		options.Observer = progressObserver(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	glog.Infof("solving %v with solver %v and strategy %v", university.Name, cfg.Solver, cfg.Strategy)
	builder := cfg.NewTimetabler()
	courses, summary, err := builder.Build(ctx, university, options)
	printSummary(os.Stdout, summary)
	switch {
	case errors.Is(err, timetabler.ErrNoSolutionFound):
		fmt.Println(err)
		os.Exit(exitInfeasible)
	case errors.Is(err, timetabler.ErrTimeoutWithoutSolution):
		fmt.Println(err)
		os.Exit(exitTimedOut)
	case err != nil:
		glog.Exitf("an error occurred during timetable construction: %v", err)
	}

	if !model.Verify(university, courses, cfg.Relaxed) {
		printViolations(os.Stdout, model.CheckConstraints(university, courses))
		os.Exit(exitVerificationFailed)
	}

	written := false
	if outPath != "" {
		written = true
		if err := model.CoursesToJson(outPath, courses); err != nil {
			glog.Exitf("%v", err)
		}
	}
	if csvPath != "" {
		written = true
		if err := csvio.ExportCourses(csvPath, university, courses); err != nil {
			glog.Exitf("%v", err)
		}
	}
	if yamlPath != "" {
		written = true
		if err := csvio.ExportYAML(yamlPath, university, courses); err != nil {
			glog.Exitf("%v", err)
		}
	}
	if viewsPath != "" {
		written = true
		if err := csvio.ExportViews(viewsPath, university, courses); err != nil {
			glog.Exitf("%v", err)
		}
	}
	// Without any output file the timetable goes to the standard output
	if !written {
		content, err := csvio.ExportCoursesString(university, courses)
		if err != nil {
			glog.Exitf("an error occurred while building the output: %v", err)
		}
		fmt.Print(content)
	}

	if withReport {
		// The timetable is already written, so a failed report only logs
		if report, err := analytics.Analyze(university, courses, &cfg.Weights, cfg.TopN); err != nil {
			glog.Errorf("cannot build report: %v", err)
		} else {
			fmt.Println(report)
		}
	}
	os.Exit(exitSolved)
}

// applyFlags overrides the configuration with the flags set explicitly.
func applyFlags(cfg config.Config, flags *pflag.FlagSet) config.Config {
	if flags.Changed("time") {
		cfg.TimeBudget = timeBudget
	}
	if flags.Changed("batch") {
		cfg.Batch = batch
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("solver") {
		cfg.Solver = strings.ToLower(solverName)
	}
	if flags.Changed("strategy") {
		cfg.Strategy = strings.ToLower(strategy)
	}
	if flags.Changed("relaxed") {
		cfg.Relaxed = relaxed
	}
	if flags.Changed("top") {
		cfg.TopN = topN
	}
	return cfg
}

func CommandCheck(cmd *cobra.Command, args []string) {
	university := loadUniversity()
	courses := loadCourses()

	violations := model.CheckConstraints(university, courses)
	if !model.Verify(university, courses, relaxed) {
		printViolations(os.Stdout, violations)
		os.Exit(exitVerificationFailed)
	}
	fmt.Printf("%d courses satisfy every hard constraint\n", len(courses))
	os.Exit(exitSolved)
}

func CommandReport(cmd *cobra.Command, args []string) {
	cfg := applyFlags(loadConfig(), cmd.Flags())
	report, err := analytics.Analyze(loadUniversity(), loadCourses(), &cfg.Weights, cfg.TopN)
	if err != nil {
		glog.Exitf("cannot build report: %v", err)
	}
	fmt.Println(report)
}

func loadConfig() config.Config {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadBeside()
	}
	if err != nil {
		glog.Exitf("%v", err)
	}
	return cfg
}

func loadUniversity() model.University {
	if instancePath == "" {
		glog.Exit("an instance must be specified")
	}
	info, err := os.Stat(instancePath)
	if err != nil {
		glog.Exitf("cannot read instance: %v", err)
	}

	var university model.University
	if info.IsDir() {
		university, err = csvio.LoadUniversity(instancePath)
	} else {
		university, err = model.InputFromJson(instancePath)
	}
	if err != nil {
		glog.Exitf("cannot parse instance: %v", err)
	}
	return university
}

func loadCourses() []model.Course {
	if coursesPath == "" {
		glog.Exit("a courses file must be specified")
	}
	courses, err := model.CoursesFromJson(coursesPath)
	if err != nil {
		glog.Exitf("%v", err)
	}
	return courses
}
