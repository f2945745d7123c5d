package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/limaJavier/ilp-timetabling/internal/config"
	"github.com/limaJavier/ilp-timetabling/pkg/model"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	exitOptimal            = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
)

type ResultType string

const (
	solved             ResultType = "solved"
	infeasible         ResultType = "infeasible"
	verificationFailed ResultType = "verification failed"
)

type TestMetadata struct {
	Name       string
	Classrooms int
	TimeSlots  int
	Lessons    int
	Cohorts    int
}

type BenchmarkResult struct {
	Solver        string
	Strategy      string
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

var (
	executableFlag = &cli.StringFlag{
		Name:  "executable",
		Usage: "path to the timetabling executable",
		Value: "../../bin/timetabling",
	}
	directoryFlag = &cli.StringFlag{
		Name:  "dir",
		Usage: "directory holding the input files",
		Value: "../../test/data/",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "CSV file where results are written",
		Value: "benchmark_results.csv",
	}
	solversFlag = &cli.StringSliceFlag{
		Name:  "solvers",
		Usage: "solver backends to benchmark",
		Value: cli.NewStringSlice(config.SupportedSolvers...),
	}
	strategiesFlag = &cli.StringSliceFlag{
		Name:  "strategies",
		Usage: "strategies to benchmark",
		Value: cli.NewStringSlice(config.SupportedStrategies...),
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "benchmark"
	app.Usage = "measure every solver and strategy against a directory of inputs"
	app.Flags = []cli.Flag{executableFlag, directoryFlag, outFlag, solversFlag, strategiesFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	tests, err := getTests(ctx.String(directoryFlag.Name))
	if err != nil {
		return err
	}
	solvers := ctx.StringSlice(solversFlag.Name)
	strategies := ctx.StringSlice(strategiesFlag.Name)
	results := make([]BenchmarkResult, 0, len(tests)*len(strategies)*len(solvers))

	for _, test := range tests {
		for _, strategy := range strategies {
			for _, solver := range solvers {
				log.Infof("Benchmarking test \"%v\" with strategy \"%v\" and solver \"%v\"", test.Name, strategy, solver)

				duration, maxMemory, cpuPercentage, result, err := measure(ctx.String(executableFlag.Name), strategy, solver, test.Name)
				if err != nil {
					return err
				}

				results = append(results, BenchmarkResult{
					Solver:        solver,
					Strategy:      strategy,
					Test:          test,
					Duration:      duration,
					Memory:        maxMemory,
					CpuPercentage: cpuPercentage,
					Result:        result,
				})
			}
		}
	}

	return toCsv(ctx.String(outFlag.Name), results)
}

func getTests(directory string) ([]TestMetadata, error) {
	testFiles, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, file := range testFiles {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		filename := filepath.Join(directory, file.Name())
		input, err := model.InputFromJson(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot parse input file \"%v\": %w", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:       filename,
			Classrooms: len(input.Classrooms),
			TimeSlots:  len(input.TimeSlots),
			Lessons:    len(input.Lessons),
			Cohorts:    len(input.Cohorts),
		})
	}
	return tests, nil
}

func measure(executable, strategy, solver, testFile string) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType, err error) {
	cmd := exec.Command("/usr/bin/time", "-v", executable, "--strategy", strategy, "--solver", solver, "--file", testFile, "--out", os.DevNull)

	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return 0, 0, 0, "", fmt.Errorf("cannot run \"%v\": %w", executable, runErr)
	}

	switch cmd.ProcessState.ExitCode() {
	case exitOptimal:
		result = solved
	case exitInfeasible:
		result = infeasible
	case exitVerificationFailed:
		result = verificationFailed
	default:
		return 0, 0, 0, "", fmt.Errorf("an error occurred during the execution at test \"%v\" using strategy \"%v\" and solver \"%v\": %v", testFile, strategy, solver, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) (string, error) {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			return "", fmt.Errorf("substring \"%v\" could not be found", substr)
		}
		return line, nil
	}

	lines := make([]string, 3)
	for i, substr := range []string{"wall clock", "maximum resident set size", "percent of cpu"} {
		if lines[i], err = getLine(substr); err != nil {
			return 0, 0, 0, "", err
		}
	}

	if duration, err = parseDurationLine(lines[0]); err != nil {
		return 0, 0, 0, "", err
	}
	if maxMemory, err = parseMemoryLine(lines[1]); err != nil {
		return 0, 0, 0, "", err
	}
	if cpuPercentage, err = parseCpuPercentageLine(lines[2]); err != nil {
		return 0, 0, 0, "", err
	}
	return duration, maxMemory, cpuPercentage, result, nil
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Solver", "Strategy", "Test", "Classrooms", "TimeSlots", "Lessons", "Cohorts", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	// Records are buffered, so write failures only surface here
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("cannot flush CSV file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("cannot close CSV file: %w", err)
	}
	return nil
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		result.Solver,
		result.Strategy,
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.Classrooms),
		fmt.Sprintf("%d", result.Test.TimeSlots),
		fmt.Sprintf("%d", result.Test.Lessons),
		fmt.Sprintf("%d", result.Test.Cohorts),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		string(result.Result),
	}
}

func parseDurationLine(line string) (int64, error) {
	parts := strings.Split(line, "(h:mm:ss or m:ss):")
	if len(parts) != 2 {
		return 0, fmt.Errorf("unexpected wall clock line: %v", line)
	}
	return parseDuration(strings.TrimSpace(parts[1]))
}

func parseDuration(durationStr string) (int64, error) {
	parts := strings.Split(durationStr, ":")
	secondsParts := strings.Split(parts[len(parts)-1], ".")
	if len(secondsParts) != 2 || (len(parts) != 2 && len(parts) != 3) {
		return 0, fmt.Errorf("unexpected duration format: %v", durationStr)
	}

	numbers := make([]int, 0, 4)
	for _, part := range slices.Concat(parts[:len(parts)-1], secondsParts) {
		number, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("unexpected duration format: %v", durationStr)
		}
		numbers = append(numbers, number)
	}

	var hours, minutes, seconds, hundredthOfSeconds int
	if len(parts) == 3 { // h:mm:ss
		hours, minutes, seconds, hundredthOfSeconds = numbers[0], numbers[1], numbers[2], numbers[3]
	} else { // m:ss
		minutes, seconds, hundredthOfSeconds = numbers[0], numbers[1], numbers[2]
	}
	return int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10), nil
}

func parseMemoryLine(line string) (float32, error) {
	memoryStr := strings.TrimSpace(line[strings.LastIndex(line, ":")+1:])
	kilobytes, err := strconv.ParseFloat(memoryStr, 32)
	if err != nil {
		return 0, fmt.Errorf("unexpected memory line: %v", line)
	}
	return float32(kilobytes) / 1024, nil
}

func parseCpuPercentageLine(line string) (int64, error) {
	percentageStr := strings.TrimSuffix(strings.TrimSpace(line[strings.LastIndex(line, ":")+1:]), "%")
	percentage, err := strconv.Atoi(percentageStr)
	if err != nil {
		return 0, fmt.Errorf("unexpected cpu line: %v", line)
	}
	return int64(percentage), nil
}
