package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/limaJavier/coursetimetabler/pkg/sat"
	"github.com/limaJavier/coursetimetabler/pkg/timetabler"
	"github.com/mitchellh/mapstructure"
)

const FileName = "config.json"

var (
	Solvers    = []string{"gini", "gophersat", "kissat", "minisat"}
	Strategies = []string{"embedded", "isolated"}
)

type Config struct {
	Solver      string
	Strategy    string
	TimeBudget  int // Seconds; the operator is asked when not positive
	Workers     int
	Batch       bool
	Relaxed     bool
	KissatPath  string
	MinisatPath string
	TopN        int
	Weights     timetabler.Weights
}

func Default() Config {
	return Config{
		Solver:      "gini",
		Strategy:    "embedded",
		KissatPath:  "kissat",
		MinisatPath: "minisat",
		TopN:        5,
		Weights:     timetabler.DefaultWeights(),
	}
}

// Load decodes a configuration file over the defaults. Unknown keys are
// rejected.
func Load(file string) (Config, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %v: %w", file, err)
	}

	config := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &config,
		ErrorUnused: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return Config{}, fmt.Errorf("cannot decode config file %v: %w", file, err)
	}

	config.Solver = strings.ToLower(config.Solver)
	config.Strategy = strings.ToLower(config.Strategy)
	return config, config.Validate()
}

// LoadBeside loads the configuration file next to the running executable,
// falling back to the defaults when there is none.
func LoadBeside() (Config, error) {
	execPath, err := os.Executable()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine executable path: %w", err)
	}
	file := path.Join(path.Dir(execPath), FileName)
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(file)
}

func (config Config) Validate() error {
	if !slices.Contains(Solvers, config.Solver) {
		return fmt.Errorf("%v is not a valid solver, allowed values are %v", config.Solver, Solvers)
	} else if !slices.Contains(Strategies, config.Strategy) {
		return fmt.Errorf("%v is not a valid strategy, allowed values are %v", config.Strategy, Strategies)
	} else if config.Solver == "kissat" && config.KissatPath == "" {
		return fmt.Errorf("kissatPath must be set to use kissat")
	} else if config.Solver == "minisat" && config.MinisatPath == "" {
		return fmt.Errorf("minisatPath must be set to use minisat")
	}
	return nil
}

func (config Config) NewSolver() sat.SATSolver {
	switch config.Solver {
	case "gophersat":
		return sat.NewGophersatSolver()
	case "kissat":
		return sat.NewKissatSolver(config.KissatPath)
	case "minisat":
		return sat.NewMinisatSolver(config.MinisatPath)
	}
	return sat.NewGiniSolver()
}

func (config Config) NewTimetabler() timetabler.Timetabler {
	if config.Strategy == "isolated" {
		return timetabler.NewIsolatedRoomTimetabler(config.NewSolver())
	}
	return timetabler.NewEmbeddedRoomTimetabler(config.NewSolver())
}

// Options maps the search related settings; the caller supplies the
// stopper and the observer.
func (config Config) Options() timetabler.Options {
	return timetabler.Options{
		TimeBudget:       timetabler.FixedBudget(config.TimeBudget),
		Workers:          config.Workers,
		Weights:          &config.Weights,
		RelaxExclusivity: config.Relaxed,
	}
}
