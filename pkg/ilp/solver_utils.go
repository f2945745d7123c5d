package ilp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// parseCbcSolution reads a solution file written by cbc's "solu" command:
//
//	Optimal - objective value 0.00000000
//	      0 x1                     1                       0
//	      3 x4                     1                       0
//
// Only non-zero columns are listed, and a leading "**" marks a value that violates its bounds
func parseCbcSolution(solverOutput string, variables uint64) (Status, []bool, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	if len(lines) == 0 {
		return StatusSolverError, nil, fmt.Errorf("empty cbc solution")
	}

	header := strings.ToLower(lines[0])
	var status Status
	switch {
	case strings.HasPrefix(header, "optimal"):
		status = StatusOptimal
	case strings.Contains(header, "infeasible"):
		return StatusInfeasible, nil, nil
	case strings.Contains(header, "unbounded"):
		return StatusUnbounded, nil, nil
	default:
		return StatusSolverError, nil, nil
	}

	values := make([]bool, variables)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			return StatusSolverError, nil, fmt.Errorf("invalid line in cbc output: %q", line)
		}

		variable, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "x"), 10, 64)
		if err != nil || !strings.HasPrefix(fields[1], "x") || variable == 0 || variable > variables {
			return StatusSolverError, nil, fmt.Errorf("invalid column in cbc output: %q", fields[1])
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return StatusSolverError, nil, fmt.Errorf("invalid value in cbc output: %v", err)
		}

		values[variable-1] = value > 0.5
	}

	return status, values, nil
}

func firstLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return line
}
