package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

// AnyClassroom is the classroom constraint of a lesson that may take place in any classroom
const AnyClassroom = "any"

type Classroom struct {
	Code  string
	Name  string
	Seats int
}

type TimeSlot struct {
	Id     int
	Day    string
	Period string
}

func (timeSlot TimeSlot) Label() string {
	return fmt.Sprintf("%v %v", timeSlot.Day, timeSlot.Period)
}

type Lesson struct {
	Code      string
	Name      string
	Hours     int
	Classroom string // Classroom code or AnyClassroom
}

// Fixed reports whether the lesson is bound to a specific classroom
func (lesson Lesson) Fixed() bool {
	return lesson.Classroom != AnyClassroom && lesson.Classroom != ""
}

// Teacher is informative only, no constraint is built upon it
type Teacher struct {
	Name    string
	Lessons []string
}

type Cohort struct {
	Name    string
	Lessons []string
}

type Input struct {
	Classrooms []Classroom
	TimeSlots  []TimeSlot `mapstructure:"timeSlots"`
	Lessons    []Lesson
	Teachers   []Teacher
	Cohorts    []Cohort
}

func InputFromJson(file string) (Input, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Input{}, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Input{}, err
	}

	var input Input
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  integralNumbers,
		ErrorUnused: true,
		Result:      &input,
	})
	if err != nil {
		return Input{}, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return Input{}, fmt.Errorf("cannot decode input: %w", err)
	}

	if err := ValidateInput(input); err != nil {
		return Input{}, err
	}
	return input, nil
}

// integralNumbers rejects JSON numbers with a fractional part headed for an integer field, which would otherwise be truncated
func integralNumbers(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 || to.Kind() != reflect.Int {
		return data, nil
	}
	number := data.(float64)
	if number != math.Trunc(number) {
		return nil, fmt.Errorf("expected an integer, got %v", number)
	}
	return data, nil
}

// ValidateInput checks keys uniqueness and cross references, reporting every problem found at once
func ValidateInput(input Input) error {
	var result *multierror.Error

	classrooms := make(map[string]bool)
	for _, classroom := range input.Classrooms {
		if classroom.Code == AnyClassroom {
			result = multierror.Append(result, fmt.Errorf("classroom code \"%v\" is reserved", AnyClassroom))
		} else if classrooms[classroom.Code] {
			result = multierror.Append(result, fmt.Errorf("duplicate classroom \"%v\"", classroom.Code))
		}
		classrooms[classroom.Code] = true
	}

	timeSlots := make(map[int]bool)
	for _, timeSlot := range input.TimeSlots {
		if timeSlots[timeSlot.Id] {
			result = multierror.Append(result, fmt.Errorf("duplicate time slot %v", timeSlot.Id))
		}
		timeSlots[timeSlot.Id] = true
	}

	lessons := make(map[string]bool)
	for _, lesson := range input.Lessons {
		if lessons[lesson.Code] {
			result = multierror.Append(result, fmt.Errorf("duplicate lesson \"%v\"", lesson.Code))
		}
		lessons[lesson.Code] = true

		if lesson.Hours < 0 {
			result = multierror.Append(result, fmt.Errorf("lesson \"%v\" has negative hours: %v", lesson.Code, lesson.Hours))
		}
		if lesson.Fixed() && !classrooms[lesson.Classroom] {
			result = multierror.Append(result, fmt.Errorf("lesson \"%v\" refers to unknown classroom \"%v\"", lesson.Code, lesson.Classroom))
		}
	}

	teachers := make(map[string]bool)
	for _, teacher := range input.Teachers {
		if teachers[teacher.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicate teacher \"%v\"", teacher.Name))
		}
		teachers[teacher.Name] = true

		for _, lesson := range teacher.Lessons {
			if !lessons[lesson] {
				result = multierror.Append(result, fmt.Errorf("teacher \"%v\" refers to unknown lesson \"%v\"", teacher.Name, lesson))
			}
		}
	}

	cohorts := make(map[string]bool)
	for _, cohort := range input.Cohorts {
		if cohorts[cohort.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicate cohort \"%v\"", cohort.Name))
		}
		cohorts[cohort.Name] = true

		for _, lesson := range cohort.Lessons {
			if !lessons[lesson] {
				result = multierror.Append(result, fmt.Errorf("cohort \"%v\" refers to unknown lesson \"%v\"", cohort.Name, lesson))
			}
		}
	}

	return result.ErrorOrNil()
}
