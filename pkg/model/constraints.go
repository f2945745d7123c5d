package model

import (
	"fmt"

	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	"github.com/samber/lo"
)

type constraintState struct {
	catalog *Catalog
	indexer indexer

	lessons,
	classrooms, // Classroom dimension of the variable space (1 when rooms are assigned after solving)
	timeSlots uint64
}

// For every lesson l: sum(x[l][r][t]) over every classroom r and time slot t equals requiredSlots(l).
// This also states that every lesson is scheduled at least once whenever it requires a slot, so no separate constraint is built for it
func coverageConstraints(state constraintState) ([]ilp.Constraint, error) {
	constraints := make([]ilp.Constraint, 0, state.lessons)

	for lesson, lessonEntity := range state.catalog.Lessons() {
		slots, err := state.catalog.RequiredSlots(lessonEntity.Code)
		if err != nil {
			return nil, err
		}

		variables := make([]uint64, 0, state.classrooms*state.timeSlots)
		for classroom := range state.classrooms {
			for timeSlot := range state.timeSlots {
				variables = append(variables, state.indexer.Index(uint64(lesson), classroom, timeSlot))
			}
		}

		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("coverage_l%d", lesson),
			Terms: ilp.Sum(variables...),
			Sense: ilp.Equal,
			Rhs:   int64(slots),
		})
	}

	return constraints, nil
}

// For every classroom r and time slot t: sum(x[l][r][t]) over every lesson l is at most 1
func roomExclusivityConstraints(state constraintState) ([]ilp.Constraint, error) {
	constraints := make([]ilp.Constraint, 0, state.classrooms*state.timeSlots)

	for classroom := range state.classrooms {
		for timeSlot := range state.timeSlots {
			variables := make([]uint64, 0, state.lessons)
			for lesson := range state.lessons {
				variables = append(variables, state.indexer.Index(lesson, classroom, timeSlot))
			}

			constraints = append(constraints, ilp.Constraint{
				Name:  fmt.Sprintf("room_r%d_t%d", classroom, timeSlot),
				Terms: ilp.Sum(variables...),
				Sense: ilp.LessOrEqual,
				Rhs:   1,
			})
		}
	}

	return constraints, nil
}

// For every lesson l bound to classroom r0: x[l][r][t] is false for every r != r0 and every t.
// Only the domain is narrowed, the amount of slots is still ruled by coverage
func affinityConstraints(state constraintState) ([]ilp.Constraint, error) {
	constraints := make([]ilp.Constraint, 0)

	for lesson, lessonEntity := range state.catalog.Lessons() {
		if !lessonEntity.Fixed() {
			continue
		}

		allowed, ok := state.catalog.classroomIndex[lessonEntity.Classroom]
		if !ok {
			return nil, fmt.Errorf("%w: lesson \"%v\" refers to unknown classroom \"%v\"", ErrInvalidLesson, lessonEntity.Code, lessonEntity.Classroom)
		}

		variables := make([]uint64, 0)
		for classroom := range state.classrooms {
			if classroom == uint64(allowed) {
				continue
			}
			for timeSlot := range state.timeSlots {
				variables = append(variables, state.indexer.Index(uint64(lesson), classroom, timeSlot))
			}
		}

		// The only classroom available is the allowed one
		if len(variables) == 0 {
			continue
		}

		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("affinity_l%d", lesson),
			Terms: ilp.Sum(variables...),
			Sense: ilp.LessOrEqual,
			Rhs:   0,
		})
	}

	return constraints, nil
}

// For every cohort c and time slot t: sum(x[l][r][t]) over every lesson l of c and every classroom r is at most 1
func cohortConstraints(state constraintState) ([]ilp.Constraint, error) {
	constraints := make([]ilp.Constraint, 0)

	for cohort, cohortEntity := range state.catalog.Cohorts() {
		// Empty cohorts hold vacuously
		if len(cohortEntity.Lessons) == 0 {
			continue
		}

		lessons := make([]uint64, 0, len(cohortEntity.Lessons))
		for _, code := range cohortEntity.Lessons {
			lesson, ok := state.catalog.lessonIndex[code]
			if !ok {
				return nil, fmt.Errorf("%w: lesson \"%v\" of cohort \"%v\"", ErrNotFound, code, cohortEntity.Name)
			}
			lessons = append(lessons, uint64(lesson))
		}

		for timeSlot := range state.timeSlots {
			variables := make([]uint64, 0, uint64(len(lessons))*state.classrooms)
			for _, lesson := range lessons {
				for classroom := range state.classrooms {
					variables = append(variables, state.indexer.Index(lesson, classroom, timeSlot))
				}
			}

			constraints = append(constraints, ilp.Constraint{
				Name:  fmt.Sprintf("cohort_c%d_t%d", cohort, timeSlot),
				Terms: ilp.Sum(variables...),
				Sense: ilp.LessOrEqual,
				Rhs:   1,
			})
		}
	}

	return constraints, nil
}

// Postponed room assignment: at every time slot no more lessons than classrooms can take place
func roomCapacityConstraints(state constraintState) ([]ilp.Constraint, error) {
	rooms := int64(len(state.catalog.Classrooms()))
	constraints := make([]ilp.Constraint, 0, state.timeSlots)

	for timeSlot := range state.timeSlots {
		variables := make([]uint64, 0, state.lessons)
		for lesson := range state.lessons {
			variables = append(variables, state.indexer.Index(lesson, 0, timeSlot))
		}

		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("capacity_t%d", timeSlot),
			Terms: ilp.Sum(variables...),
			Sense: ilp.LessOrEqual,
			Rhs:   rooms,
		})
	}

	return constraints, nil
}

// Postponed room assignment: at every time slot at most one of the lessons bound to the same classroom can take place
func fixedRoomConstraints(state constraintState) ([]ilp.Constraint, error) {
	// Lessons grouped by the classroom they are bound to, in classroom order
	bound := lo.GroupBy(
		lo.Filter(lo.Range(len(state.catalog.Lessons())), func(lesson int, _ int) bool {
			return state.catalog.Lessons()[lesson].Fixed()
		}),
		func(lesson int) string { return state.catalog.Lessons()[lesson].Classroom },
	)

	constraints := make([]ilp.Constraint, 0)
	for classroom, classroomEntity := range state.catalog.Classrooms() {
		lessons := bound[classroomEntity.Code]
		if len(lessons) < 2 {
			continue
		}

		for timeSlot := range state.timeSlots {
			variables := lo.Map(lessons, func(lesson int, _ int) uint64 {
				return state.indexer.Index(uint64(lesson), 0, timeSlot)
			})

			constraints = append(constraints, ilp.Constraint{
				Name:  fmt.Sprintf("fixed_r%d_t%d", classroom, timeSlot),
				Terms: ilp.Sum(variables...),
				Sense: ilp.LessOrEqual,
				Rhs:   1,
			})
		}
	}

	return constraints, nil
}
