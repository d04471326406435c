package timetabler

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/limaJavier/coursetimetabler/pkg/model"
	"github.com/limaJavier/coursetimetabler/pkg/sat"
)

type Timetabler interface {
	// Build searches a timetable for the university. Courses are only
	// returned with a Feasible or Optimal summary.
	Build(
		ctx context.Context,
		university model.University,
		options Options,
	) (courses []model.Course, summary Summary, err error)

	Verify(
		university model.University,
		courses []model.Course,
	) bool
}

type Options struct {
	TimeBudget       TimeBudgetProvider
	Workers          int // Concurrent solver runs, the platform default when not positive
	Stopper          EarlyStopper
	Observer         Observer
	Weights          *Weights // DefaultWeights when nil, all-zero weights minimize nothing
	RelaxExclusivity bool     // Room and teacher overlaps become penalties

	now func() time.Time
}

func (options Options) weights() Weights {
	if options.Weights == nil {
		return DefaultWeights()
	}
	return *options.Weights
}

// built holds everything derived from a university before the search.
type built struct {
	vm        *variableModel
	instance  sat.SAT
	objective *objective
}

func buildModel(university model.University, withRooms bool, options Options) (built, error) {
	builder := sat.NewBuilder()
	vm, err := newVariableModel(university, builder, withRooms)
	if err != nil {
		return built{}, err
	}
	for _, constraint := range hardConstraints(vm, options.RelaxExclusivity) {
		constraint(vm)
	}
	objective := newObjective(vm, options.weights(), options.RelaxExclusivity)
	instance := builder.Build()
	glog.V(1).Infof("model built: %d occurrences, %d variables, %d clauses, %d bounds, %d penalty terms",
		len(vm.occurrences), instance.Variables, len(instance.Clauses), len(instance.Bounds), len(objective.terms))

	return built{vm: vm, instance: instance, objective: objective}, nil
}

func (vm *variableModel) extract(solution sat.SATSolution) []model.Course {
	courses := make([]model.Course, 0, len(vm.occurrences))
	for _, occ := range vm.occurrences {
		p := vm.pairs[occ.pair]
		room := -1
		if vm.withRooms {
			room = chosen(solution, occ.rooms)
		}
		courses = append(courses, model.Course{
			Timeslot:  uint64(chosen(solution, occ.slots)),
			Promotion: p.promotion,
			Group:     p.group,
			Subject:   p.subject,
			Teacher:   p.teachers[chosen(solution, p.choices)],
			Room:      room,
		})
	}
	return courses
}

func parallel(solver sat.SATSolver, workers int) sat.SATSolver {
	if workers <= 0 {
		workers = sat.DefaultWorkers()
	}
	if workers == 1 {
		return solver
	}
	return sat.NewPortfolioSolver(workers, func() sat.SATSolver { return solver })
}

type embeddedRoomTimetabler struct {
	solver sat.SATSolver
}

// NewEmbeddedRoomTimetabler decides timeslots, rooms and teachers in a single
// model.
func NewEmbeddedRoomTimetabler(solver sat.SATSolver) Timetabler {
	return &embeddedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *embeddedRoomTimetabler) Build(ctx context.Context, university model.University, options Options) ([]model.Course, Summary, error) {
	m, err := buildModel(university, true, options)
	if err != nil {
		return nil, Summary{Status: Built, BestObjective: -1}, err
	}

	problem := searchProblem{
		instance:  m.instance,
		objective: m.objective,
		conflicts: func(solution sat.SATSolution) int {
			if options.RelaxExclusivity {
				return m.objective.Count(solution, ConflictPenalty)
			}
			return model.CountConflicts(university, m.vm.extract(solution))
		},
	}
	result, err := search(ctx, parallel(timetabler.solver, options.Workers), problem, options)
	if err != nil {
		return nil, result.summary, err
	}
	return m.vm.extract(result.solution), result.summary, nil
}

func (timetabler *embeddedRoomTimetabler) Verify(university model.University, courses []model.Course) bool {
	return model.Verify(university, courses, false)
}

type isolatedRoomTimetabler struct {
	solver sat.SATSolver
}

// NewIsolatedRoomTimetabler decides timeslots and teachers first and assigns
// rooms per timeslot afterwards. Assignment fails when a slot holds more
// courses than its rooms and the online cap can absorb.
func NewIsolatedRoomTimetabler(solver sat.SATSolver) Timetabler {
	return &isolatedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *isolatedRoomTimetabler) Build(ctx context.Context, university model.University, options Options) ([]model.Course, Summary, error) {
	m, err := buildModel(university, false, options)
	if err != nil {
		return nil, Summary{Status: Built, BestObjective: -1}, err
	}

	problem := searchProblem{
		instance:  m.instance,
		objective: m.objective,
		conflicts: func(solution sat.SATSolution) int {
			if options.RelaxExclusivity {
				return m.objective.Count(solution, ConflictPenalty)
			}
			return model.CountConflicts(university, m.vm.extract(solution))
		},
	}
	result, err := search(ctx, parallel(timetabler.solver, options.Workers), problem, options)
	if err != nil {
		return nil, result.summary, err
	}

	courses, err := assignRooms(university, m.vm.extract(result.solution))
	if err != nil {
		return nil, result.summary, err
	}
	return courses, result.summary, nil
}

func (timetabler *isolatedRoomTimetabler) Verify(university model.University, courses []model.Course) bool {
	return model.Verify(university, courses, false)
}
