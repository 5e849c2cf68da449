package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"outreachDesk/internal/modules/leads/application/usecase"
	"outreachDesk/internal/modules/leads/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Controls is the part of the poller the watcher drives from the keyboard.
type Controls interface {
	Refetch(ctx context.Context) error
	Stop()
}

type snapshotMsg usecase.Snapshot

type updatesClosedMsg struct{}

type refetchResultMsg struct{ err error }

// ImportWatchModel renders the progress of one import job until it settles.
type ImportWatchModel struct {
	jobID    string
	controls Controls
	updates  <-chan usecase.Snapshot

	snapshot usecase.Snapshot
	spinner  spinner.Model
	bar      progress.Model
	status   string

	// Stopped is set when the user stopped observing before the job settled.
	Stopped bool
	// Settled is set once the poller reported a final state.
	Settled bool
}

func NewImportWatchModel(jobID string, controls Controls, updates <-chan usecase.Snapshot) *ImportWatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &ImportWatchModel{
		jobID:    jobID,
		controls: controls,
		updates:  updates,
		snapshot: usecase.Snapshot{JobID: jobID, State: usecase.PollerIdle},
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

// Snapshot returns the last state the model rendered.
func (m *ImportWatchModel) Snapshot() usecase.Snapshot {
	return m.snapshot
}

func (m *ImportWatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForSnapshot(m.updates))
}

func waitForSnapshot(updates <-chan usecase.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(snapshot)
	}
}

func (m *ImportWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.controls.Stop()
			m.Stopped = true
			m.status = "stopped observing; the import keeps running on the server"
			return m, tea.Quit
		case "r":
			m.status = "refreshing..."
			controls := m.controls
			return m, func() tea.Msg {
				return refetchResultMsg{err: controls.Refetch(context.Background())}
			}
		}
		return m, nil

	case refetchResultMsg:
		m.status = ""
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		}
		return m, nil

	case snapshotMsg:
		m.snapshot = usecase.Snapshot(msg)
		if m.snapshot.State == usecase.PollerSettled && !m.snapshot.Loading {
			m.Settled = true
			return m, tea.Quit
		}
		return m, waitForSnapshot(m.updates)

	case updatesClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ImportWatchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Lead import "+m.jobID) + "\n\n")

	s := m.snapshot
	switch {
	case s.NotFound && s.Job == nil:
		b.WriteString(m.spinner.View() + " " + errorStyle.Render("Import job not found, retrying...") + "\n")
	case s.Job == nil:
		b.WriteString(m.spinner.View() + " waiting for the first status...\n")
	default:
		job := s.Job
		b.WriteString(statusLine(m, s) + "\n")
		b.WriteString(m.bar.ViewAs(float64(job.Progress)/100) + "\n\n")
		fmt.Fprintf(&b, "inserted %d  updated %d  skipped %d  errors %d\n",
			job.Inserted, job.Updated, job.Skipped, len(job.Errors))
		if len(job.Errors) > 0 {
			first := job.Errors[0]
			fmt.Fprintf(&b, "row %d: %s\n", first.Row, first.Message)
		}
	}

	if s.Error != "" && (s.Job != nil || !s.NotFound) {
		b.WriteString(errorStyle.Render("last error: "+s.Error) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	fmt.Fprintf(&b, "\n%s\n", footerStyle.Render(fmt.Sprintf("polls %d · every %dms · r refresh · s stop · q quit", s.PollCount, s.IntervalMs)))
	return b.String()
}

func statusLine(m *ImportWatchModel, s usecase.Snapshot) string {
	status := string(s.Job.Status)
	switch s.Job.Status {
	case domain.JobCompleted:
		return doneStyle.Render("✓ " + status)
	case domain.JobFailed:
		return errorStyle.Render("✗ " + status)
	}
	return m.spinner.View() + " " + status
}
