package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"00:01:01.12", 60*1000 + 1000 + 120},
		{"01:01:01.12", 60*60*1000 + 60*1000 + 1000 + 120},
		{"1:01.12", 60*1000 + 1000 + 120},
		{"0:00.12", 120},
		{"00:00:00.12", 120},
	}

	for _, test := range tests {
		duration, err := parseDuration(test.input)
		assert.Nil(t, err)
		assert.Equal(t, test.expected, duration, test.input)
	}

	for _, malformed := range []string{"", "12", "1:xx.12", "1:2:3:4.5", "0:01"} {
		_, err := parseDuration(malformed)
		assert.NotNil(t, err, malformed)
	}
}

func TestParseTimeLines(t *testing.T) {
	duration, err := parseDurationLine("\tElapsed (wall clock) time (h:mm:ss or m:ss): 0:02.50")
	assert.Nil(t, err)
	assert.Equal(t, int64(2500), duration)

	memory, err := parseMemoryLine("\tMaximum resident set size (kbytes): 2048")
	assert.Nil(t, err)
	assert.Equal(t, float32(2), memory)

	cpu, err := parseCpuPercentageLine("\tPercent of CPU this job got: 97%")
	assert.Nil(t, err)
	assert.Equal(t, int64(97), cpu)
}

func TestToCsv(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []BenchmarkResult{
		{
			Solver:        "gophersat",
			Strategy:      "embedded",
			Test:          TestMetadata{Name: "small.json", Classrooms: 2, TimeSlots: 3, Lessons: 3, Cohorts: 3},
			Duration:      2500,
			Memory:        12.5,
			CpuPercentage: 97,
			Result:        solved,
		},
	}

	//** Act
	err := toCsv(path, results)

	//** Assert
	require.Nil(t, err)
	file, err := os.Open(path)
	require.Nil(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.Nil(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Solver", records[0][0])
	assert.Equal(t, []string{"gophersat", "embedded", "small.json", "2", "3", "3", "3", "2500", "12.5", "97", "solved"}, records[1])
}

func TestToCsvWriteFailure(t *testing.T) {
	t.Run("Missing directory", func(t *testing.T) {
		err := toCsv(filepath.Join(t.TempDir(), "missing", "results.csv"), nil)
		assert.NotNil(t, err)
	})

	t.Run("Full device", func(t *testing.T) {
		// Opening /dev/full succeeds but every write fails, so the error only shows when the buffer is flushed
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("/dev/full is not available")
		}

		err := toCsv("/dev/full", []BenchmarkResult{{Solver: "gophersat", Strategy: "embedded", Result: solved}})

		assert.NotNil(t, err)
	})
}

func TestGetTests(t *testing.T) {
	directory := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(directory, "a.json"), []byte(`{
		"classrooms": [{"code": "R1", "name": "R1", "seats": 10}],
		"timeSlots": [{"id": 1, "day": "Monday", "period": "8-10"}],
		"lessons": [{"code": "L1", "name": "L1", "hours": 2, "classroom": "any"}],
		"cohorts": [{"name": "C1", "lessons": ["L1"]}]
	}`), 0o644))
	require.Nil(t, os.WriteFile(filepath.Join(directory, "notes.txt"), []byte("ignored"), 0o644))

	tests, err := getTests(directory)

	require.Nil(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, TestMetadata{Name: filepath.Join(directory, "a.json"), Classrooms: 1, TimeSlots: 1, Lessons: 1, Cohorts: 1}, tests[0])
}
