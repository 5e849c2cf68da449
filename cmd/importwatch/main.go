package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"outreachDesk/internal/config"
	"outreachDesk/internal/modules/leads/application/usecase"
	"outreachDesk/internal/modules/leads/domain"
	leads "outreachDesk/internal/modules/leads/infrastructure"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/shared/logging"
	"outreachDesk/internal/tui"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup finishes before the process exits.
func run() int {
	if len(os.Args) < 2 || strings.TrimSpace(os.Args[1]) == "" {
		fmt.Fprintln(os.Stderr, "usage: importwatch <jobId>")
		return 2
	}
	jobID := strings.TrimSpace(os.Args[1])

	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		return 1
	}

	// The terminal belongs to the UI; log lines would corrupt it.
	logger := logging.Discard()
	api := apiclient.New(apiclient.Config{Token: cfg.API.Token, BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := usecase.NewImportPoller(leads.NewLeadsHTTPClient(api), usecase.WithLogger(logger))
	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	go poller.Run(ctx)
	go func() { _ = poller.Track(ctx, jobID) }()

	model := tui.NewImportWatchModel(jobID, poller, updates)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "importwatch: %v\n", err)
		return 1
	}

	return report(os.Stdout, os.Stderr, jobID, model.Snapshot(), model.Stopped, model.Settled)
}

// report prints the outcome of a watch and returns the process exit code.
func report(stdout, stderr io.Writer, jobID string, snapshot usecase.Snapshot, stopped, settled bool) int {
	switch {
	case stopped:
		fmt.Fprintf(stdout, "stopped watching %s\n", jobID)
	case snapshot.Job != nil && settled:
		job := snapshot.Job
		fmt.Fprintf(stdout, "import %s %s: %d inserted, %d updated, %d skipped, %d errors\n",
			jobID, job.Status, job.Inserted, job.Updated, job.Skipped, len(job.Errors))
		if job.Status == domain.JobFailed {
			return 1
		}
	case snapshot.NotFound && snapshot.Job == nil:
		fmt.Fprintf(stderr, "import job %s not found\n", jobID)
		return 1
	}
	return 0
}
