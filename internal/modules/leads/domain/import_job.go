package domain

import (
	"math"

	"outreachDesk/internal/shared/normalization"
)

// JobStatus is the lifecycle state of an import job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsActive reports whether the backend is still working on the job.
func (s JobStatus) IsActive() bool {
	return s == JobPending || s == JobRunning
}

// IsSettled reports whether the job reached a terminal state.
func (s JobStatus) IsSettled() bool {
	return s == JobCompleted || s == JobFailed
}

// ImportError describes one rejected CSV row.
type ImportError struct {
	Row     int     `json:"row"`
	Field   *string `json:"field,omitempty"`
	Message string  `json:"message"`
	Value   any     `json:"value,omitempty"`
}

// ImportJob is the normalized status of an asynchronous lead import.
type ImportJob struct {
	ID          string        `json:"id"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"`
	Inserted    int           `json:"inserted"`
	Updated     int           `json:"updated"`
	Skipped     int           `json:"skipped"`
	Errors      []ImportError `json:"errors"`
	CreatedAt   string        `json:"createdAt"`
	CompletedAt *string       `json:"completedAt,omitempty"`
}

// ParseJobStatus maps backend status spellings onto JobStatus. Unknown values are pending.
func ParseJobStatus(raw string) JobStatus {
	switch raw {
	case "running", "processing":
		return JobRunning
	case "completed", "succeeded", "success":
		return JobCompleted
	case "failed", "error":
		return JobFailed
	default:
		return JobPending
	}
}

// ToImportJob normalizes an import job payload. Progress is clamped to [0, 100].
func ToImportJob(raw any) ImportJob {
	data := normalization.AsMap(raw)

	progress := math.Round(normalization.PickFloat(data, []string{"progress"}, 0))
	if progress < 0 || math.IsNaN(progress) {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	job := ImportJob{
		ID:          normalization.PickString(data, []string{"id", "jobId", "job_id"}, ""),
		Status:      ParseJobStatus(normalization.PickString(data, []string{"status"}, "")),
		Progress:    int(progress),
		Inserted:    normalization.PickInt(data, []string{"inserted"}, 0),
		Updated:     normalization.PickInt(data, []string{"updated"}, 0),
		Skipped:     normalization.PickInt(data, []string{"skipped"}, 0),
		CreatedAt:   normalization.PickString(data, []string{"createdAt", "created_at", "startedAt", "started_at"}, ""),
		CompletedAt: normalization.PickOptionalString(data, "completedAt", "completed_at", "finishedAt", "finished_at"),
	}

	errs := normalization.AsArray(data["errors"], nil)
	job.Errors = make([]ImportError, 0, len(errs))
	for _, entry := range errs {
		job.Errors = append(job.Errors, ImportError{
			Row:     normalization.PickInt(entry, []string{"row"}, 0),
			Field:   normalization.PickOptionalString(entry, "field"),
			Message: normalization.PickString(entry, []string{"message", "reason"}, ""),
			Value:   normalization.Pick(entry, []string{"value"}, nil),
		})
	}
	return job
}
