package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
)

type ScheduleEntry struct {
	TimeSlot      int    `json:"timeSlot"`
	TimeSlotLabel string `json:"timeSlotLabel"`
	Lesson        string `json:"lesson"`
	LessonName    string `json:"lessonName"`
	Classroom     string `json:"classroom"`
	ClassroomName string `json:"classroomName"`
}

// Schedule maps each cohort's name to its entries ordered by time slot id
type Schedule map[string][]ScheduleEntry

// ExtractSchedule projects an optimal assignment of the x[lesson][classroom][timeSlot] space onto each cohort attending the scheduled lessons.
// Entries sharing a time slot keep catalog order (lessons first, then classrooms)
func ExtractSchedule(result ilp.Result, catalog *Catalog) (Schedule, error) {
	if result.Status != ilp.StatusOptimal {
		return nil, fmt.Errorf("%w: solver verdict is %v", ErrNoSolution, result.Status)
	}

	state := newConstraintState(catalog, uint64(len(catalog.Classrooms())))
	if uint64(len(result.Values)) != state.indexer.Size() {
		return nil, fmt.Errorf("assignment holds %v values but the catalog spans %v variables", len(result.Values), state.indexer.Size())
	}

	schedule := make(Schedule)
	for _, cohort := range catalog.Cohorts() {
		schedule[cohort.Name] = []ScheduleEntry{}
	}

	for lesson, lessonEntity := range catalog.Lessons() {
		cohorts, err := catalog.LessonCohorts(lessonEntity.Code)
		if err != nil {
			return nil, err
		}

		for classroom, classroomEntity := range catalog.Classrooms() {
			for timeSlot, timeSlotEntity := range catalog.TimeSlots() {
				if !result.Value(state.indexer.Index(uint64(lesson), uint64(classroom), uint64(timeSlot))) {
					continue
				}

				entry := ScheduleEntry{
					TimeSlot:      timeSlotEntity.Id,
					TimeSlotLabel: timeSlotEntity.Label(),
					Lesson:        lessonEntity.Code,
					LessonName:    lessonEntity.Name,
					Classroom:     classroomEntity.Code,
					ClassroomName: classroomEntity.Name,
				}
				for _, cohort := range cohorts {
					schedule[cohort] = append(schedule[cohort], entry)
				}
			}
		}
	}

	for _, entries := range schedule {
		slices.SortStableFunc(entries, func(a, b ScheduleEntry) int {
			return cmp.Compare(a.TimeSlot, b.TimeSlot)
		})
	}

	return schedule, nil
}
