package model

import (
	"time"

	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	log "github.com/sirupsen/logrus"
)

// embeddedRoomTimetabler decides lessons, classrooms and time slots within a single model, so a schedule is found whenever one exists
type embeddedRoomTimetabler struct {
	solver ilp.Solver
}

func NewEmbeddedRoomTimetabler(solver ilp.Solver) Timetabler {
	return &embeddedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *embeddedRoomTimetabler) Build(catalog *Catalog) (Outcome, error) {
	//** Build model
	model, err := BuildModel(catalog)
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
	}).Debug("model built")

	//** Solve model
	start := time.Now()
	result, err := timetabler.solver.Solve(model)
	log.WithField("status", result.Status).Debugf("solver done in %v", time.Since(start))

	outcome.Status = result.Status
	if err != nil {
		outcome.Status = ilp.StatusSolverError
		return outcome, err
	} else if result.Status != ilp.StatusOptimal { // No assignment is exposed for non-optimal verdicts
		return outcome, nil
	}
	outcome.Result = result

	//** Extract schedule
	outcome.Schedule, err = ExtractSchedule(result, catalog)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (timetabler *embeddedRoomTimetabler) Verify(result ilp.Result, catalog *Catalog) bool {
	return verify(result, catalog)
}
