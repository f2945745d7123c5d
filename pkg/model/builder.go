package model

import (
	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
)

type constraintFamily func(state constraintState) ([]ilp.Constraint, error)

// BuildModel builds the feasibility model whose variables are x[lesson][classroom][timeSlot]
func BuildModel(catalog *Catalog) (ilp.Model, error) {
	state := newConstraintState(catalog, uint64(len(catalog.Classrooms())))

	return buildModel(state, []constraintFamily{
		coverageConstraints,
		roomExclusivityConstraints,
		affinityConstraints,
		cohortConstraints,
	})
}

func newConstraintState(catalog *Catalog, classrooms uint64) constraintState {
	lessons, timeSlots := uint64(len(catalog.Lessons())), uint64(len(catalog.TimeSlots()))
	return constraintState{
		catalog:    catalog,
		indexer:    newIndexer(lessons, classrooms, timeSlots),
		lessons:    lessons,
		classrooms: classrooms,
		timeSlots:  timeSlots,
	}
}

func buildModel(state constraintState, families []constraintFamily) (ilp.Model, error) {
	model := ilp.Model{
		Name:      "timetabling",
		Variables: state.indexer.Size(),
	}

	type familyOutput struct {
		position    int
		constraints []ilp.Constraint
		err         error
	}

	outputs := make(chan familyOutput) // Channel to collect constraints

	// Execute constraints functions on different goroutines to improve performance
	for position, family := range families {
		go func(position int, family constraintFamily) {
			constraints, err := family(state)
			outputs <- familyOutput{position, constraints, err}
		}(position, family)
	}

	// Collect generated constraints, then lay them out in family order so the model is deterministic
	collected := make([]familyOutput, len(families))
	for range families {
		output := <-outputs
		collected[output.position] = output
	}

	for _, output := range collected {
		if output.err != nil {
			return ilp.Model{}, output.err
		}
		model.Constraints = append(model.Constraints, output.constraints...)
	}

	return model, nil
}
