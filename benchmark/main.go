// Package main provides a performance benchmarking tool for the Timesheet CLI.
// It generates synthetic worklogs of increasing size and measures each command
// twice: parsing the export on every run, and reading a stored snapshot instead.
// Results are written as CSV for performance analysis and documentation.
//
// Prerequisites:
// - timesheet binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated worklogs and the benchmark databases
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// BenchmarkResult holds the average time of one command over a worklog size.
type BenchmarkResult struct {
	Rows         int
	Command      string
	FileTime     string
	SnapshotTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Sizes    []int
	Authors  int
	Commands map[string][]string
}

var snapshotIDRe = regexp.MustCompile(`snapshot (\S+)`)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 2 * time.Minute,
		Runs:    4,
		Sizes:   []int{1_000, 10_000, 50_000},
		Authors: 25,
		Commands: map[string][]string{
			"strain":  {"strain", "--seed", "42", "--output", "json"},
			"summary": {"report", "summary", "--output", "csv"},
			"sprint":  {"report", "sprint", "--output", "json"},
		},
	}

	if _, err := exec.LookPath("timesheet"); err != nil {
		fmt.Println("Prerequisites check failed: timesheet binary not found in PATH")
		os.Exit(1)
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		fmt.Printf("Cannot create work dir: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// benchEnv isolates the benchmark stores from the user's own databases.
func benchEnv(config BenchmarkConfig) []string {
	return append(os.Environ(),
		"TIMESHEET_SNAPSHOT_BACKEND=sqlite",
		"TIMESHEET_SNAPSHOT_DB_CONNECT="+filepath.Join(config.WorkDir, "bench_snapshots.db"),
		"TIMESHEET_SNAPSHOT_MAX_AGE=1 day",
		"TIMESHEET_HISTORY_BACKEND=none",
	)
}

// runBenchmarks executes every command for every worklog size.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %d commands, %v timeout, %d runs\n",
		len(config.Sizes), len(config.Commands), config.Timeout, config.Runs)

	for _, rows := range config.Sizes {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("worklog_%d.csv", rows))
		if err := generateWorklog(path, rows, config.Authors); err != nil {
			fmt.Printf("Skipping %d rows: %v\n", rows, err)
			continue
		}

		snapshotID, err := importSnapshot(config, path)
		if err != nil {
			fmt.Printf("Skipping %d rows: %v\n", rows, err)
			continue
		}

		for _, name := range []string{"strain", "summary", "sprint"} {
			args := config.Commands[name]
			fmt.Printf("Running %s on %d rows\n", name, rows)
			fileAvg := average(runBenchmark(config, append(append([]string{}, args...), path)))
			snapshotAvg := average(runBenchmark(config, append(append([]string{}, args...), "--snapshot", snapshotID)))
			fmt.Printf("  File average: %s, Snapshot average: %s\n", fileAvg, snapshotAvg)

			results = append(results, BenchmarkResult{
				Rows:         rows,
				Command:      name,
				FileTime:     fileAvg,
				SnapshotTime: snapshotAvg,
			})
		}
	}

	return results
}

// generateWorklog writes rows of synthetic worklog entries spread over twelve weeks.
func generateWorklog(path string, rows, authors int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(rows), uint64(authors)))
	writer := csv.NewWriter(file)
	header := []string{"Start Date", "Project Name", "Comment", "Labels", "Issue Key", "Time Spent (seconds)", "Issue Status", "Issue Summary", "Author"}
	if err := writer.Write(header); err != nil {
		return err
	}

	labels := []string{"Feature", "Bug", "TechDebt", "Support", ""}
	statuses := []string{"Done", "In Progress", "To Do", "Code Review"}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := range rows {
		day := start.AddDate(0, 0, rng.IntN(84))
		issue := rng.IntN(rows/10 + 1)
		record := []string{
			day.Add(time.Duration(rng.IntN(8)) * time.Hour).Format("2006-01-02 15:04:05"),
			"Bench",
			fmt.Sprintf("Entry %d", i),
			labels[rng.IntN(len(labels))],
			fmt.Sprintf("BEN-%d", issue),
			strconv.Itoa((1 + rng.IntN(16)) * 1800),
			statuses[rng.IntN(len(statuses))],
			fmt.Sprintf("Issue %d", issue),
			fmt.Sprintf("Author %02d", rng.IntN(authors)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// importSnapshot stores the worklog and returns the snapshot id.
func importSnapshot(config BenchmarkConfig, path string) (string, error) {
	cmd := exec.Command("timesheet", "snapshot", "import", path)
	cmd.Env = benchEnv(config)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("snapshot import failed: %w\nOutput: %s", err, string(output))
	}
	match := snapshotIDRe.FindSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("no snapshot id in output: %s", string(output))
	}
	return string(match[1]), nil
}

// runBenchmark executes a timesheet command several times and returns the successful run times.
func runBenchmark(config BenchmarkConfig, args []string) []float64 {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("timesheet", args...)
		cmd.Env = benchEnv(config)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// average formats the mean of times, or TIMEOUT when no run succeeded.
func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("timesheet_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"rows", "cmd", "file_avg", "snapshot_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.Rows), result.Command, result.FileTime, result.SnapshotTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"strain", "summary", "sprint"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %6d rows: File: %s, Snapshot: %s\n", result.Rows, result.FileTime, result.SnapshotTime)
			}
		}
	}
}
