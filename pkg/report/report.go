package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	"github.com/limaJavier/ilp-timetabling/pkg/model"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Format string

const (
	FormatText Format = "text"
	FormatJson Format = "json"
)

// Renderer writes an outcome to a destination. The outcome status always precedes any schedule
type Renderer interface {
	Render(writer io.Writer, outcome model.Outcome) error
}

func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatText:
		return &textRenderer{}, nil
	case FormatJson:
		return &jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format \"%v\"", format)
	}
}

type textRenderer struct{}

func (renderer *textRenderer) Render(writer io.Writer, outcome model.Outcome) error {
	statusColor := color.New(color.FgGreen, color.Bold)
	if outcome.Status != ilp.StatusOptimal {
		statusColor = color.New(color.FgRed, color.Bold)
	}
	if _, err := statusColor.Fprintf(writer, "Outcome: %v\n", outcome.Status); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Variables: %v, constraints: %v\n", outcome.Variables, outcome.Constraints); err != nil {
		return err
	}

	if outcome.Status != ilp.StatusOptimal {
		return nil
	}

	for _, cohort := range cohortNames(outcome.Schedule) {
		if _, err := color.New(color.FgYellow).Fprintf(writer, "\n%v\n", cohort); err != nil {
			return err
		}

		table := tablewriter.NewWriter(writer)
		table.SetHeader([]string{"Time Slot", "Lesson", "Classroom"})
		for _, entry := range outcome.Schedule[cohort] {
			table.Append([]string{
				entry.TimeSlotLabel,
				entry.LessonName,
				entry.ClassroomName,
			})
		}
		table.Render()
	}
	return nil
}

type jsonReport struct {
	Outcome     string         `json:"outcome"`
	Variables   uint64         `json:"variables"`
	Constraints uint64         `json:"constraints"`
	Schedule    model.Schedule `json:"schedule,omitempty"`
}

type jsonRenderer struct{}

func (renderer *jsonRenderer) Render(writer io.Writer, outcome model.Outcome) error {
	report := jsonReport{
		Outcome:     outcome.Status.String(),
		Variables:   outcome.Variables,
		Constraints: outcome.Constraints,
	}
	if outcome.Status == ilp.StatusOptimal {
		report.Schedule = outcome.Schedule
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// Summary is a one-line description of an outcome, e.g. "optimal (3 cohorts, 12 entries)"
func Summary(outcome model.Outcome) string {
	if outcome.Status != ilp.StatusOptimal {
		return outcome.Status.String()
	}
	entries := 0
	for _, cohortEntries := range outcome.Schedule {
		entries += len(cohortEntries)
	}
	return fmt.Sprintf("%v (%v cohorts, %v entries)", outcome.Status, len(outcome.Schedule), entries)
}

func cohortNames(schedule model.Schedule) []string {
	names := lo.Keys(schedule)
	slices.Sort(names)
	return names
}
