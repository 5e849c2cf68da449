package main

import (
	"bytes"
	"strings"
	"testing"

	"outreachDesk/internal/modules/leads/application/usecase"
	"outreachDesk/internal/modules/leads/domain"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		snapshot usecase.Snapshot
		stopped  bool
		settled  bool
		code     int
		stdout   string
		stderr   string
	}{
		{
			name:    "stopped",
			stopped: true,
			stdout:  "stopped watching job-1",
		},
		{
			name:     "completed",
			snapshot: usecase.Snapshot{Job: &domain.ImportJob{Status: domain.JobCompleted, Inserted: 4}},
			settled:  true,
			stdout:   "import job-1 completed: 4 inserted",
		},
		{
			name:     "failed",
			snapshot: usecase.Snapshot{Job: &domain.ImportJob{Status: domain.JobFailed}},
			settled:  true,
			code:     1,
			stdout:   "import job-1 failed",
		},
		{
			name:     "quit while missing",
			snapshot: usecase.Snapshot{NotFound: true},
			code:     1,
			stderr:   "import job job-1 not found",
		},
		{
			name:     "quit while running",
			snapshot: usecase.Snapshot{Job: &domain.ImportJob{Status: domain.JobRunning}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := report(&stdout, &stderr, "job-1", tt.snapshot, tt.stopped, tt.settled)
			if code != tt.code {
				t.Fatalf("exit code: got %d want %d", code, tt.code)
			}
			if !strings.Contains(stdout.String(), tt.stdout) || !strings.Contains(stderr.String(), tt.stderr) {
				t.Fatalf("unexpected output: stdout=%q stderr=%q", stdout.String(), stderr.String())
			}
		})
	}
}
