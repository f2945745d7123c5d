package model

import (
	"fmt"
	"time"

	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	log "github.com/sirupsen/logrus"
)

// isolatedRoomTimetabler solves a smaller lesson-by-time-slot model and postpones classroom assignment to a bipartite matching per time slot.
// A lesson never takes two classrooms in the same time slot under this strategy, so a schedule relying on that is not found
type isolatedRoomTimetabler struct {
	solver ilp.Solver
}

func NewIsolatedRoomTimetabler(solver ilp.Solver) Timetabler {
	return &isolatedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *isolatedRoomTimetabler) Build(catalog *Catalog) (Outcome, error) {
	//** Build model (classroom dimension collapsed into a single one)
	state := newConstraintState(catalog, 1)
	model, err := buildModel(state, []constraintFamily{
		coverageConstraints,
		roomCapacityConstraints,
		fixedRoomConstraints,
		cohortConstraints,
	})
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{
		Variables:   model.Variables,
		Constraints: uint64(len(model.Constraints)),
	}
	log.WithFields(log.Fields{
		"variables":   outcome.Variables,
		"constraints": outcome.Constraints,
	}).Debug("postponed-room model built")

	//** Solve model
	start := time.Now()
	result, err := timetabler.solver.Solve(model)
	log.WithField("status", result.Status).Debugf("solver done in %v", time.Since(start))

	outcome.Status = result.Status
	if err != nil {
		outcome.Status = ilp.StatusSolverError
		return outcome, err
	} else if result.Status != ilp.StatusOptimal {
		return outcome, nil
	}

	//** Assign classrooms
	values, err := roomAssignment(result, state, catalog)
	if err != nil {
		log.WithError(err).Warn("cannot assign classrooms to a feasible lesson-by-time-slot solution")
		outcome.Status = ilp.StatusSolverError
		return outcome, err
	}
	outcome.Result = ilp.Result{Status: ilp.StatusOptimal, Values: values}

	//** Extract schedule
	outcome.Schedule, err = ExtractSchedule(outcome.Result, catalog)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (timetabler *isolatedRoomTimetabler) Verify(result ilp.Result, catalog *Catalog) bool {
	return verify(result, catalog)
}

// roomAssignment lifts a lesson-by-time-slot solution into the full x[lesson][classroom][timeSlot] space
func roomAssignment(result ilp.Result, state constraintState, catalog *Catalog) ([]bool, error) {
	full := newConstraintState(catalog, uint64(len(catalog.Classrooms())))
	values := make([]bool, full.indexer.Size())

	classrooms := make([]int, len(catalog.Classrooms()))
	for i := range classrooms {
		classrooms[i] = i
	}

	compatible := func(lesson, classroom int) bool {
		lessonEntity := catalog.Lessons()[lesson]
		return !lessonEntity.Fixed() || lessonEntity.Classroom == catalog.Classrooms()[classroom].Code
	}

	for timeSlot := range state.timeSlots {
		lessons := make([]int, 0)
		for lesson := range state.lessons {
			if result.Value(state.indexer.Index(lesson, 0, timeSlot)) {
				lessons = append(lessons, int(lesson))
			}
		}
		if len(lessons) == 0 {
			continue
		}

		assignments, err := assignRooms(lessons, classrooms, compatible)
		if err != nil {
			return nil, fmt.Errorf("cannot assign classrooms at time slot %v: %w", catalog.TimeSlots()[timeSlot].Id, err)
		}

		for lesson, classroom := range assignments {
			values[full.indexer.Index(uint64(lesson), uint64(classroom), timeSlot)-1] = true
		}
	}

	return values, nil
}
