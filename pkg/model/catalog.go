package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const DefaultSlotDuration = 2

// Rounding decides how lesson hours that are not a multiple of the slot duration become slots
type Rounding string

const (
	RoundingFloor  Rounding = "floor"  // Drop the remainder
	RoundingCeil   Rounding = "ceil"   // Spend a whole slot on the remainder
	RoundingReject Rounding = "reject" // Fail with ErrInvalidLesson
)

func ParseRounding(value string) (Rounding, error) {
	rounding := Rounding(strings.ToLower(value))
	if !lo.Contains([]Rounding{RoundingFloor, RoundingCeil, RoundingReject}, rounding) {
		return "", fmt.Errorf("unknown rounding policy \"%v\"", value)
	}
	return rounding, nil
}

type CatalogOption func(catalog *Catalog)

func WithSlotDuration(hours int) CatalogOption {
	return func(catalog *Catalog) {
		catalog.slotDuration = hours
	}
}

func WithRounding(rounding Rounding) CatalogOption {
	return func(catalog *Catalog) {
		catalog.rounding = rounding
	}
}

// Catalog holds the read-only entity tables of a scheduling run. Slices keep input order, which drives every iteration downstream
type Catalog struct {
	classrooms []Classroom
	timeSlots  []TimeSlot
	lessons    []Lesson
	teachers   []Teacher
	cohorts    []Cohort

	// Positions within the slices above
	classroomIndex map[string]int
	timeSlotIndex  map[int]int
	lessonIndex    map[string]int
	teacherIndex   map[string]int
	cohortIndex    map[string]int

	requiredSlots map[string]int
	lessonCohorts map[string][]string

	slotDuration int
	rounding     Rounding
}

func NewCatalog(input Input, options ...CatalogOption) (*Catalog, error) {
	catalog := &Catalog{
		classrooms:   input.Classrooms,
		timeSlots:    input.TimeSlots,
		lessons:      input.Lessons,
		teachers:     input.Teachers,
		slotDuration: DefaultSlotDuration,
		rounding:     RoundingFloor,
	}
	for _, option := range options {
		option(catalog)
	}
	if catalog.slotDuration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive: %v", catalog.slotDuration)
	}

	// Cohorts hold sets of lessons
	catalog.cohorts = lo.Map(input.Cohorts, func(cohort Cohort, _ int) Cohort {
		return Cohort{Name: cohort.Name, Lessons: lo.Uniq(cohort.Lessons)}
	})

	catalog.classroomIndex = positions(catalog.classrooms, func(classroom Classroom) string { return classroom.Code })
	catalog.timeSlotIndex = positions(catalog.timeSlots, func(timeSlot TimeSlot) int { return timeSlot.Id })
	catalog.lessonIndex = positions(catalog.lessons, func(lesson Lesson) string { return lesson.Code })
	catalog.teacherIndex = positions(catalog.teachers, func(teacher Teacher) string { return teacher.Name })
	catalog.cohortIndex = positions(catalog.cohorts, func(cohort Cohort) string { return cohort.Name })

	//** Resolve lessons
	catalog.requiredSlots = make(map[string]int, len(catalog.lessons))
	for _, lesson := range catalog.lessons {
		if lesson.Fixed() {
			if _, ok := catalog.classroomIndex[lesson.Classroom]; !ok {
				return nil, fmt.Errorf("%w: lesson \"%v\" refers to unknown classroom \"%v\"", ErrInvalidLesson, lesson.Code, lesson.Classroom)
			}
		}

		slots, err := catalog.slots(lesson)
		if err != nil {
			return nil, err
		}
		catalog.requiredSlots[lesson.Code] = slots
	}

	//** Build lesson-to-cohorts index
	catalog.lessonCohorts = make(map[string][]string)
	for _, cohort := range catalog.cohorts {
		for _, lesson := range cohort.Lessons {
			catalog.lessonCohorts[lesson] = append(catalog.lessonCohorts[lesson], cohort.Name)
		}
	}

	return catalog, nil
}

func (catalog *Catalog) slots(lesson Lesson) (int, error) {
	if lesson.Hours < 0 {
		return 0, fmt.Errorf("%w: lesson \"%v\" has negative hours: %v", ErrInvalidLesson, lesson.Code, lesson.Hours)
	}

	slots, remainder := lesson.Hours/catalog.slotDuration, lesson.Hours%catalog.slotDuration
	if remainder == 0 {
		return slots, nil
	}

	switch catalog.rounding {
	case RoundingCeil:
		return slots + 1, nil
	case RoundingReject:
		return 0, fmt.Errorf("%w: lesson \"%v\" hours (%v) are not a multiple of the slot duration (%v)", ErrInvalidLesson, lesson.Code, lesson.Hours, catalog.slotDuration)
	default:
		return slots, nil
	}
}

func (catalog *Catalog) Classrooms() []Classroom { return catalog.classrooms }
func (catalog *Catalog) TimeSlots() []TimeSlot   { return catalog.timeSlots }
func (catalog *Catalog) Lessons() []Lesson       { return catalog.lessons }
func (catalog *Catalog) Teachers() []Teacher     { return catalog.teachers }
func (catalog *Catalog) Cohorts() []Cohort       { return catalog.cohorts }
func (catalog *Catalog) SlotDuration() int       { return catalog.slotDuration }

func (catalog *Catalog) Classroom(code string) (Classroom, error) {
	position, ok := catalog.classroomIndex[code]
	if !ok {
		return Classroom{}, fmt.Errorf("%w: classroom \"%v\"", ErrNotFound, code)
	}
	return catalog.classrooms[position], nil
}

func (catalog *Catalog) ClassroomSeats(code string) (int, error) {
	classroom, err := catalog.Classroom(code)
	return classroom.Seats, err
}

func (catalog *Catalog) ClassroomName(code string) (string, error) {
	classroom, err := catalog.Classroom(code)
	return classroom.Name, err
}

func (catalog *Catalog) TimeSlot(id int) (TimeSlot, error) {
	position, ok := catalog.timeSlotIndex[id]
	if !ok {
		return TimeSlot{}, fmt.Errorf("%w: time slot %v", ErrNotFound, id)
	}
	return catalog.timeSlots[position], nil
}

func (catalog *Catalog) TimeSlotLabel(id int) (string, error) {
	timeSlot, err := catalog.TimeSlot(id)
	if err != nil {
		return "", err
	}
	return timeSlot.Label(), nil
}

func (catalog *Catalog) Lesson(code string) (Lesson, error) {
	position, ok := catalog.lessonIndex[code]
	if !ok {
		return Lesson{}, fmt.Errorf("%w: lesson \"%v\"", ErrNotFound, code)
	}
	return catalog.lessons[position], nil
}

// RequiredSlots returns hours / slot duration under the catalog's rounding policy
func (catalog *Catalog) RequiredSlots(code string) (int, error) {
	slots, ok := catalog.requiredSlots[code]
	if !ok {
		return 0, fmt.Errorf("%w: lesson \"%v\"", ErrNotFound, code)
	}
	return slots, nil
}

func (catalog *Catalog) Teacher(name string) (Teacher, error) {
	position, ok := catalog.teacherIndex[name]
	if !ok {
		return Teacher{}, fmt.Errorf("%w: teacher \"%v\"", ErrNotFound, name)
	}
	return catalog.teachers[position], nil
}

func (catalog *Catalog) CohortLessons(name string) ([]string, error) {
	position, ok := catalog.cohortIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: cohort \"%v\"", ErrNotFound, name)
	}
	return catalog.cohorts[position].Lessons, nil
}

// LessonCohorts returns the cohorts attending a lesson, in cohort order. A known lesson no cohort attends has an empty set
func (catalog *Catalog) LessonCohorts(code string) ([]string, error) {
	if _, ok := catalog.lessonIndex[code]; !ok {
		return nil, fmt.Errorf("%w: lesson \"%v\"", ErrNotFound, code)
	}
	return catalog.lessonCohorts[code], nil
}

func positions[T any, K comparable](items []T, key func(item T) K) map[K]int {
	result := make(map[K]int, len(items))
	for i, item := range items {
		if _, ok := result[key(item)]; !ok {
			result[key(item)] = i
		}
	}
	return result
}
