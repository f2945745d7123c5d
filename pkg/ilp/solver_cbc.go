package ilp

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultCbcPath = "cbc"

type cbcSolver struct {
	path      string
	timeLimit time.Duration
}

// NewCbcSolver runs the COIN-OR CBC executable found at path. A zero timeLimit means no limit
func NewCbcSolver(path string, timeLimit time.Duration) Solver {
	if path == "" {
		path = DefaultCbcPath
	}
	return &cbcSolver{
		path:      path,
		timeLimit: timeLimit,
	}
}

func (solver *cbcSolver) Solve(model Model) (Result, error) {
	if len(model.Constraints) == 0 {
		return optimal(model.Variables, nil), nil
	}

	lp := model.ToLP() // Transform model into CPLEX-LP string format

	// Create a temporary file to hold the LP content
	inputFile, err := writeTempFile("model-*.lp", lp)
	if err != nil {
		return failure("%v", err)
	}
	defer removeTempFile(inputFile)

	outputTempFile, err := os.CreateTemp("", "cbc_solution-*.txt")
	if err != nil {
		return failure("failed to create temporary file: %v", err)
	}
	outputFile := outputTempFile.Name()
	outputTempFile.Close()
	defer removeTempFile(outputFile)

	args := solver.args(inputFile, outputFile)
	cmd := exec.Command(solver.path, args...)
	log.WithField("args", args).Debug("running cbc")

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return failure("an error occurred during cbc execution: %v : %v", err, stderr.String())
	}

	output, err := os.ReadFile(outputFile)
	if err != nil {
		return failure("failed to read output file: %v", err)
	}

	status, values, err := parseCbcSolution(string(output), model.Variables)
	if err != nil {
		return failure("%v", err)
	}

	switch status {
	case StatusOptimal:
		return optimal(model.Variables, values), nil
	case StatusInfeasible, StatusUnbounded:
		return Result{Status: status}, nil
	default:
		return failure("cbc did not prove optimality: %v", firstLine(string(output)))
	}
}

func writeTempFile(pattern, content string) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write to temporary file: %v", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close temporary file: %v", err)
	}
	return file.Name(), nil
}

func removeTempFile(path string) {
	if err := os.Remove(path); err != nil {
		log.Warnf("failed to remove temporary file %s: %v", path, err)
	}
}

// args builds the cbc command line. The time limit is rounded up to whole seconds, since cbc reads "sec 0" as no time at all
func (solver *cbcSolver) args(inputFile, outputFile string) []string {
	args := []string{inputFile}
	if solver.timeLimit > 0 {
		args = append(args, "sec", strconv.Itoa(int(math.Ceil(solver.timeLimit.Seconds()))))
	}
	return append(args, "solve", "solu", outputFile)
}
