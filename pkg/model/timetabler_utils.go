package model

import (
	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// verify re-checks an assignment against the catalog without going through the model
func verify(result ilp.Result, catalog *Catalog) bool {
	if result.Status != ilp.StatusOptimal {
		return false
	}

	//** Extract attributes's domains
	state := newConstraintState(catalog, uint64(len(catalog.Classrooms())))
	if uint64(len(result.Values)) != state.indexer.Size() {
		return false
	}

	//** Initialize derived-slots
	derivedSlots := make(map[int]int)

	//** Initialize room-assistance
	roomAssistance := make(map[[2]uint64]bool)

	//** Initialize cohort-assistance
	cohortAssistance := make(map[[2]uint64]bool)

	for index, scheduled := range result.Values {
		if !scheduled {
			continue
		}
		lesson, classroom, timeSlot := state.indexer.Attributes(uint64(index + 1))
		lessonEntity := catalog.Lessons()[lesson]

		// Check that:
		// - Lesson is held in its classroom, if bound to one
		// - Classroom is not already taken in the time slot
		if lessonEntity.Fixed() && lessonEntity.Classroom != catalog.Classrooms()[classroom].Code ||
			roomAssistance[[2]uint64{classroom, timeSlot}] {
			return false
		}
		roomAssistance[[2]uint64{classroom, timeSlot}] = true

		// - No cohort attending the lesson is already attending another one in the time slot
		cohorts := catalog.lessonCohorts[lessonEntity.Code]
		for _, cohort := range cohorts {
			key := [2]uint64{uint64(catalog.cohortIndex[cohort]), timeSlot}
			if cohortAssistance[key] {
				return false
			}
			cohortAssistance[key] = true
		}

		derivedSlots[int(lesson)]++
	}

	// Check whether the number of slots held by each lesson is equal to the number it requires
	return !lo.SomeBy(lo.Range(len(catalog.Lessons())), func(lesson int) bool {
		return derivedSlots[lesson] != catalog.requiredSlots[catalog.Lessons()[lesson].Code]
	})
}

// assignRooms matches every lesson to a distinct compatible classroom, returning lesson -> classroom
func assignRooms(lessons []int, classrooms []int, compatible func(lesson, classroom int) bool) (map[int]int, error) {
	assignments := make(map[int]int, len(lessons))

	// Build neighbors predicate based on compatibility
	neighbors := func(lessonAny any, classroomAny any) (bool, error) {
		return compatible(lessonAny.(int), classroomAny.(int)), nil
	}

	// Transform lessons and classrooms to slices of any
	lessonsAny, classroomsAny := lo.Map(lessons, func(lesson int, _ int) any { return lesson }), lo.Map(classrooms, func(classroom int, _ int) any { return classroom })

	graph, err := bipartitegraph.NewBipartiteGraph(lessonsAny, classroomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(lessons) {
		return nil, unassignableError{}
	}

	for _, edge := range matching {
		lessonIndex, classroomIndex := edge.Node1, edge.Node2-len(lessons)
		assignments[lessons[lessonIndex]] = classrooms[classroomIndex]
	}

	return assignments, nil
}
