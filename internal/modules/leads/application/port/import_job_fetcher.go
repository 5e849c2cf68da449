package port

import (
	"context"
	"errors"

	"outreachDesk/internal/modules/leads/domain"
)

// ErrImportJobNotFound indicates the backend has no job with the requested id.
var ErrImportJobNotFound = errors.New("import job not found")

// ImportJobFetcher retrieves the current status of an import job from the backend.
type ImportJobFetcher interface {
	FetchImportJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

// ImportJobFetcherFunc adapts a function to ImportJobFetcher.
type ImportJobFetcherFunc func(ctx context.Context, jobID string) (*domain.ImportJob, error)

func (f ImportJobFetcherFunc) FetchImportJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	return f(ctx, jobID)
}
