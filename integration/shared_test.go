//go:build basic || database

// Package integration runs the timesheet binary end to end.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// With Docker available: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedTimesheetPath holds the path to a shared timesheet binary built once for all tests.
	sharedTimesheetPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// worklogCSV spans two weeks so the strain trend has history.
const worklogCSV = `Start Date,Project Name,Comment,Labels,Issue Key,Time Spent (seconds),Issue Status,Issue Summary,Author
2024-03-04 09:00:00,Payments,Refunds,Feature,PAY-101,43200,Done,Refund flow,Alice
2024-03-05 09:00:00,Payments,Refunds,Feature,PAY-101,43200,Done,Refund flow,Alice
2024-03-06 09:00:00,Payments,Refunds,Feature,PAY-101,43200,Done,Refund flow,Alice
2024-03-07 09:00:00,Payments,Refunds,Feature,PAY-101,43200,Done,Refund flow,Alice
2024-03-08 09:00:00,Payments,Refunds,Feature,PAY-101,43200,Done,Refund flow,Alice
2024-03-11 09:00:00,Payments,Review,Chore,PAY-102,14400,In Progress,Review queue,Bob
`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getTimesheetBinary returns the path to the timesheet binary, building it once if needed.
func getTimesheetBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "timesheet-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "timesheet")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build timesheet: %v", err))
		}

		sharedTimesheetPath = binPath
	})

	return sharedTimesheetPath
}

// writeWorklog writes the shared worklog fixture into a temp dir.
func writeWorklog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worklog.csv")
	require.NoError(t, os.WriteFile(path, []byte(worklogCSV), 0o600))
	return path
}

// longWeekLabel is a period label longer than a typical date column.
const longWeekLabel = "Sprint 42 week 1 (payments and refunds hardening, carry-over from sprint 41)"

// payloadJSON lists the same author twice with one long-labelled week.
const payloadJSON = `{
  "burnoutData": [
    {"author": "Alice", "current_overtime": 12, "workload_strain_score": 9},
    {"author": "Alice", "current_overtime": 3, "workload_strain_score": 2}
  ],
  "weeklyOvertimeData": {"weeks": ["` + longWeekLabel + `"]}
}`

// writePayload writes the strain payload fixture into a temp dir.
func writePayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payloadJSON), 0o600))
	return path
}

// runTimesheetCommand runs the binary with env appended to the process environment.
func runTimesheetCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getTimesheetBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}
