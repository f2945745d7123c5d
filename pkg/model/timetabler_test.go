package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSolver struct{}

func (failingSolver) Solve(ilp.Model) (ilp.Result, error) {
	return ilp.Result{Status: ilp.StatusSolverError}, fmt.Errorf("%w: executable not found", ilp.ErrSolverFailure)
}

var timetablers = map[string]func(ilp.Solver) Timetabler{
	"embedded":  NewEmbeddedRoomTimetabler,
	"postponed": NewIsolatedRoomTimetabler,
}

// scheduled reads x[lesson][classroom][timeSlot] from an outcome
func scheduled(catalog *Catalog, result ilp.Result, lesson, classroom string, timeSlot int) bool {
	indexer := newIndexer(uint64(len(catalog.Lessons())), uint64(len(catalog.Classrooms())), uint64(len(catalog.TimeSlots())))
	return result.Value(indexer.Index(
		uint64(catalog.lessonIndex[lesson]),
		uint64(catalog.classroomIndex[classroom]),
		uint64(catalog.timeSlotIndex[timeSlot]),
	))
}

func TestTimetablers(t *testing.T) {
	for name, newTimetabler := range timetablers {
		timetabler := newTimetabler(ilp.NewGophersatSolver())

		t.Run(name+": single lesson", func(t *testing.T) {
			singleLessonExecution(t, timetabler)
		})
		t.Run(name+": shared cohort with a single slot", func(t *testing.T) {
			sharedCohortExecution(t, timetabler)
		})
		t.Run(name+": fixed classroom overload", func(t *testing.T) {
			fixedClassroomOverloadExecution(t, timetabler)
		})
		t.Run(name+": sample", func(t *testing.T) {
			sampleExecution(t, timetabler)
		})
		t.Run(name+": zero-slot lesson", func(t *testing.T) {
			zeroSlotExecution(t, timetabler)
		})
		t.Run(name+": random instances", func(t *testing.T) {
			randomExecution(t, timetabler)
		})
		t.Run(name+": solver failure", func(t *testing.T) {
			solverFailureExecution(t, newTimetabler(failingSolver{}))
		})
	}
}

func singleLessonExecution(t *testing.T, timetabler Timetabler) {
	//** Arrange
	catalog, err := NewCatalog(Input{
		Classrooms: []Classroom{{Code: "R1", Name: "R1"}},
		TimeSlots:  []TimeSlot{{Id: 1}, {Id: 2}},
		Lessons:    []Lesson{{Code: "L1", Name: "L1", Hours: DefaultSlotDuration, Classroom: AnyClassroom}},
		Cohorts:    []Cohort{{Name: "C1", Lessons: []string{"L1"}}},
	})
	require.Nil(t, err)

	//** Act
	outcome, err := timetabler.Build(catalog)

	//** Assert
	require.Nil(t, err)
	require.Equal(t, ilp.StatusOptimal, outcome.Status)
	first, second := scheduled(catalog, outcome.Result, "L1", "R1", 1), scheduled(catalog, outcome.Result, "L1", "R1", 2)
	assert.True(t, first != second)
	assert.Len(t, outcome.Schedule["C1"], 1)
	assert.True(t, timetabler.Verify(outcome.Result, catalog))
}

func sharedCohortExecution(t *testing.T, timetabler Timetabler) {
	catalog, err := NewCatalog(Input{
		Classrooms: []Classroom{{Code: "R1"}},
		TimeSlots:  []TimeSlot{{Id: 1}},
		Lessons: []Lesson{
			{Code: "L1", Hours: 2, Classroom: AnyClassroom},
			{Code: "L2", Hours: 2, Classroom: AnyClassroom},
		},
		Cohorts: []Cohort{{Name: "C1", Lessons: []string{"L1", "L2"}}},
	})
	require.Nil(t, err)

	outcome, err := timetabler.Build(catalog)

	assert.Nil(t, err)
	assert.Equal(t, ilp.StatusInfeasible, outcome.Status)
	assert.Nil(t, outcome.Result.Values)
	assert.Nil(t, outcome.Schedule)
	assert.False(t, timetabler.Verify(outcome.Result, catalog))
}

func fixedClassroomOverloadExecution(t *testing.T, timetabler Timetabler) {
	// Both lessons need R1 for two slots each, but R1 only has three slots
	catalog, err := NewCatalog(Input{
		Classrooms: []Classroom{{Code: "R1"}, {Code: "R2"}},
		TimeSlots:  []TimeSlot{{Id: 1}, {Id: 2}, {Id: 3}},
		Lessons: []Lesson{
			{Code: "L1", Hours: 4, Classroom: "R1"},
			{Code: "L2", Hours: 4, Classroom: "R1"},
		},
	})
	require.Nil(t, err)

	outcome, err := timetabler.Build(catalog)

	assert.Nil(t, err)
	assert.Equal(t, ilp.StatusInfeasible, outcome.Status)
	assert.Nil(t, outcome.Schedule)
}

func sampleExecution(t *testing.T, timetabler Timetabler) {
	catalog, err := NewCatalog(sampleInput())
	require.Nil(t, err)

	outcome, err := timetabler.Build(catalog)

	require.Nil(t, err)
	require.Equal(t, ilp.StatusOptimal, outcome.Status)
	assert.True(t, timetabler.Verify(outcome.Result, catalog))

	// L2 is bound to the lab
	for _, timeSlot := range catalog.TimeSlots() {
		assert.False(t, scheduled(catalog, outcome.Result, "L2", "R1", timeSlot.Id))
	}
	// C1 attends L1 twice and L2 once, C2 attends L1 twice and L3 once
	assert.Len(t, outcome.Schedule["C1"], 3)
	assert.Len(t, outcome.Schedule["C2"], 3)
	assert.Empty(t, outcome.Schedule["C3"])
}

func zeroSlotExecution(t *testing.T, timetabler Timetabler) {
	catalog, err := NewCatalog(Input{
		Classrooms: []Classroom{{Code: "R1"}},
		TimeSlots:  []TimeSlot{{Id: 1}},
		Lessons:    []Lesson{{Code: "L1", Hours: 0, Classroom: AnyClassroom}},
		Cohorts:    []Cohort{{Name: "C1", Lessons: []string{"L1"}}},
	})
	require.Nil(t, err)

	outcome, err := timetabler.Build(catalog)

	require.Nil(t, err)
	assert.Equal(t, ilp.StatusOptimal, outcome.Status)
	assert.Empty(t, outcome.Schedule["C1"])
	assert.True(t, timetabler.Verify(outcome.Result, catalog))
}

func solverFailureExecution(t *testing.T, timetabler Timetabler) {
	catalog, err := NewCatalog(sampleInput())
	require.Nil(t, err)

	outcome, err := timetabler.Build(catalog)

	assert.True(t, errors.Is(err, ilp.ErrSolverFailure))
	assert.Equal(t, ilp.StatusSolverError, outcome.Status)
	assert.Nil(t, outcome.Result.Values)
	assert.Nil(t, outcome.Schedule)
}

func randomExecution(t *testing.T, timetabler Timetabler) {
	g := NewWithT(t)

	for range 15 {
		//** Arrange
		catalog, err := NewCatalog(generateInput())
		g.Expect(err).NotTo(HaveOccurred())

		//** Act
		outcome, err := timetabler.Build(catalog)

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		if outcome.Status != ilp.StatusOptimal {
			g.Expect(outcome.Status).To(Equal(ilp.StatusInfeasible))
			continue
		}
		g.Expect(timetabler.Verify(outcome.Result, catalog)).To(BeTrue())
		assertProperties(g, catalog, outcome.Result)
	}
}

// assertProperties checks the scheduling properties one by one over the raw assignment
func assertProperties(g *WithT, catalog *Catalog, result ilp.Result) {
	// Coverage
	for _, lesson := range catalog.Lessons() {
		count := 0
		for _, classroom := range catalog.Classrooms() {
			for _, timeSlot := range catalog.TimeSlots() {
				if scheduled(catalog, result, lesson.Code, classroom.Code, timeSlot.Id) {
					count++
				}
			}
		}
		slots, _ := catalog.RequiredSlots(lesson.Code)
		g.Expect(count).To(Equal(slots), "coverage of %v", lesson.Code)
	}

	// Room exclusivity
	for _, classroom := range catalog.Classrooms() {
		for _, timeSlot := range catalog.TimeSlots() {
			count := 0
			for _, lesson := range catalog.Lessons() {
				if scheduled(catalog, result, lesson.Code, classroom.Code, timeSlot.Id) {
					count++
				}
			}
			g.Expect(count).To(BeNumerically("<=", 1), "classroom %v at %v", classroom.Code, timeSlot.Id)
		}
	}

	// Affinity
	for _, lesson := range catalog.Lessons() {
		if !lesson.Fixed() {
			continue
		}
		for _, classroom := range catalog.Classrooms() {
			if classroom.Code == lesson.Classroom {
				continue
			}
			for _, timeSlot := range catalog.TimeSlots() {
				g.Expect(scheduled(catalog, result, lesson.Code, classroom.Code, timeSlot.Id)).To(BeFalse())
			}
		}
	}

	// Cohort non-overlap
	for _, cohort := range catalog.Cohorts() {
		for _, timeSlot := range catalog.TimeSlots() {
			count := 0
			for _, lesson := range cohort.Lessons {
				for _, classroom := range catalog.Classrooms() {
					if scheduled(catalog, result, lesson, classroom.Code, timeSlot.Id) {
						count++
					}
				}
			}
			g.Expect(count).To(BeNumerically("<=", 1), "cohort %v at %v", cohort.Name, timeSlot.Id)
		}
	}
}

func generateInput() Input {
	input := Input{}

	classrooms := rand.IntN(3) + 1
	for i := range classrooms {
		code := fmt.Sprintf("R%d", i+1)
		input.Classrooms = append(input.Classrooms, Classroom{Code: code, Name: code, Seats: 30})
	}

	timeSlots := rand.IntN(6) + 2
	for i := range timeSlots {
		input.TimeSlots = append(input.TimeSlots, TimeSlot{Id: i + 1, Day: "Monday", Period: fmt.Sprint(i)})
	}

	lessons := rand.IntN(5) + 1
	for i := range lessons {
		classroom := AnyClassroom
		if rand.Float32() < 0.3 {
			classroom = input.Classrooms[rand.IntN(classrooms)].Code
		}
		code := fmt.Sprintf("L%d", i+1)
		input.Lessons = append(input.Lessons, Lesson{Code: code, Name: code, Hours: rand.IntN(5), Classroom: classroom})
	}

	cohorts := rand.IntN(3) + 1
	for i := range cohorts {
		cohort := Cohort{Name: fmt.Sprintf("C%d", i+1)}
		for _, lesson := range input.Lessons {
			if rand.Float32() < 0.5 {
				cohort.Lessons = append(cohort.Lessons, lesson.Code)
			}
		}
		input.Cohorts = append(input.Cohorts, cohort)
	}

	return input
}

func TestDataFiles(t *testing.T) {
	tests := []struct {
		file     string
		expected ilp.Status
	}{
		{"../../test/data/sample.json", ilp.StatusOptimal},
		{"../../test/data/overbooked.json", ilp.StatusInfeasible},
	}

	for _, test := range tests {
		t.Run(test.file, func(t *testing.T) {
			input, err := InputFromJson(test.file)
			require.Nil(t, err)
			catalog, err := NewCatalog(input)
			require.Nil(t, err)
			timetabler := NewEmbeddedRoomTimetabler(ilp.NewGophersatSolver())

			outcome, err := timetabler.Build(catalog)

			require.Nil(t, err)
			assert.Equal(t, test.expected, outcome.Status)
			if test.expected == ilp.StatusOptimal {
				assert.True(t, timetabler.Verify(outcome.Result, catalog))
			}
		})
	}
}
