package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"outreachDesk/internal/modules/leads/application/port"
)

type registryEntry struct {
	poller *ImportPoller
	refs   int
	cancel context.CancelFunc
}

// PollerRegistry shares one ImportPoller per job id between concurrent watchers.
// The poller runs while at least one watcher holds it.
type PollerRegistry struct {
	base    context.Context
	fetcher port.ImportJobFetcher
	logger  *slog.Logger
	opts    []PollerOption

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewPollerRegistry builds a registry whose pollers live no longer than base.
func NewPollerRegistry(base context.Context, fetcher port.ImportJobFetcher, logger *slog.Logger, opts ...PollerOption) *PollerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollerRegistry{
		base:    base,
		fetcher: fetcher,
		logger:  logger,
		opts:    append([]PollerOption{WithLogger(logger)}, opts...),
		entries: make(map[string]*registryEntry),
	}
}

// Acquire returns the poller for jobID, starting it on first use, and a release
// func that must be called once the caller stops watching.
func (r *PollerRegistry) Acquire(jobID string) (*ImportPoller, func()) {
	jobID = strings.TrimSpace(jobID)

	r.mu.Lock()
	entry, ok := r.entries[jobID]
	if !ok {
		ctx, cancel := context.WithCancel(r.base)
		entry = &registryEntry{poller: NewImportPoller(r.fetcher, r.opts...), cancel: cancel}
		r.entries[jobID] = entry
		go entry.poller.Run(ctx)
		go func() {
			if err := entry.poller.Track(ctx, jobID); err != nil {
				r.logger.Warn("initial import job fetch failed", slog.String("jobId", jobID), slog.Any("error", err))
			}
		}()
	}
	entry.refs++
	r.mu.Unlock()

	var once sync.Once
	return entry.poller, func() {
		once.Do(func() { r.release(jobID, entry) })
	}
}

func (r *PollerRegistry) release(jobID string, entry *registryEntry) {
	r.mu.Lock()
	entry.refs--
	last := entry.refs <= 0 && r.entries[jobID] == entry
	if last {
		delete(r.entries, jobID)
	}
	r.mu.Unlock()

	if last {
		entry.cancel()
		entry.poller.Stop()
	}
}

// Refetch asks the poller of jobID to fetch now. It reports whether anyone watches the job.
func (r *PollerRegistry) Refetch(ctx context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	entry, ok := r.entries[strings.TrimSpace(jobID)]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, entry.poller.Refetch(ctx)
}

// Len returns the number of jobs being watched.
func (r *PollerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops every poller.
func (r *PollerRegistry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
		entry.poller.Stop()
	}
}
