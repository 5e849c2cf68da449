package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]JobStatus{
		"pending":   JobPending,
		"queued":    JobPending,
		"running":   JobRunning,
		"completed": JobCompleted,
		"succeeded": JobCompleted,
		"success":   JobCompleted,
		"failed":    JobFailed,
		"error":     JobFailed,
		"":          JobPending,
		"mystery":   JobPending,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseJobStatus(raw), raw)
	}
}

func TestJobStatusPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, JobPending.IsActive())
	assert.True(t, JobRunning.IsActive())
	assert.False(t, JobCompleted.IsActive())
	assert.True(t, JobCompleted.IsSettled())
	assert.True(t, JobFailed.IsSettled())
	assert.False(t, JobRunning.IsSettled())
}

func TestToImportJob_BackendShape(t *testing.T) {
	t.Parallel()

	got := ToImportJob(map[string]any{
		"id":         "job-9",
		"status":     "succeeded",
		"progress":   99.6,
		"inserted":   10.0,
		"updated":    2.0,
		"skipped":    1.0,
		"startedAt":  "2025-04-01T09:00:00Z",
		"finishedAt": "2025-04-01T09:01:00Z",
		"errors":     []any{map[string]any{"row": 4.0, "reason": "invalid email", "value": "nope"}},
		"unexpected": true,
	})

	assert.Equal(t, "job-9", got.ID)
	assert.Equal(t, JobCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 10, got.Inserted)
	assert.Equal(t, 2, got.Updated)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, "2025-04-01T09:00:00Z", got.CreatedAt)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, "2025-04-01T09:01:00Z", *got.CompletedAt)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, ImportError{Row: 4, Message: "invalid email", Value: "nope"}, got.Errors[0])
}

func TestToImportJob_ClampsProgress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ToImportJob(map[string]any{"progress": -5.0}).Progress)
	assert.Equal(t, 100, ToImportJob(map[string]any{"progress": 250.0}).Progress)
	assert.Equal(t, 42, ToImportJob(map[string]any{"progress": "42"}).Progress)
}

func TestToImportJob_Empty(t *testing.T) {
	t.Parallel()

	got := ToImportJob(nil)
	assert.Equal(t, JobPending, got.Status)
	assert.NotNil(t, got.Errors)
	assert.Nil(t, got.CompletedAt)
}
