package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"outreachDesk/internal/modules/leads/application/port"
	"outreachDesk/internal/modules/leads/domain"
)

const (
	// InitialPollInterval is the delay between polls for a freshly tracked job.
	InitialPollInterval = 1500 * time.Millisecond
	// BackoffPollInterval replaces the initial interval once BackoffAfterPolls polls have completed.
	BackoffPollInterval = 3000 * time.Millisecond
	// BackoffAfterPolls is the number of completed polls after which the poller slows down.
	BackoffAfterPolls = 7

	subscriberBuffer = 16
)

// PollerState is the lifecycle of an ImportPoller.
type PollerState string

const (
	PollerIdle    PollerState = "idle"
	PollerPolling PollerState = "polling"
	PollerSettled PollerState = "settled"
)

// Snapshot is the observable state of a poller at one point in time.
type Snapshot struct {
	JobID      string            `json:"jobId"`
	State      PollerState       `json:"state"`
	Job        *domain.ImportJob `json:"job"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
	NotFound   bool              `json:"notFound,omitempty"`
	Interval   time.Duration     `json:"-"`
	IntervalMs int64             `json:"intervalMs"`
	PollCount  int               `json:"pollCount"`
}

// PollerOption customizes an ImportPoller.
type PollerOption func(*ImportPoller)

// WithIntervals overrides the initial and backoff poll intervals.
func WithIntervals(initial, backoff time.Duration) PollerOption {
	return func(p *ImportPoller) {
		if initial > 0 {
			p.initialInterval = initial
		}
		if backoff > 0 {
			p.backoffInterval = backoff
		}
	}
}

// WithLogger sets the poller logger.
func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *ImportPoller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ImportPoller tracks one import job at a time, fetching its status on a timer
// until the job completes or fails. Fetch failures, a missing job included, are
// stored as the error message and never stop the timer. Fetches run outside the lock; each carries a
// sequence number so a response that arrives after a newer one, or after Stop,
// never overwrites the state.
type ImportPoller struct {
	fetcher port.ImportJobFetcher
	logger  *slog.Logger

	initialInterval time.Duration
	backoffInterval time.Duration

	mu         sync.Mutex
	jobID      string
	state      PollerState
	job        *domain.ImportJob
	errMsg     string
	notFound   bool
	interval   time.Duration
	pollCount  int
	inFlight   int
	generation uint64
	issued     uint64
	applied    uint64

	subscribers map[int]chan Snapshot
	nextSubID   int

	wake chan struct{}
}

// NewImportPoller builds an idle poller.
func NewImportPoller(fetcher port.ImportJobFetcher, opts ...PollerOption) *ImportPoller {
	p := &ImportPoller{
		fetcher:         fetcher,
		logger:          slog.Default(),
		initialInterval: InitialPollInterval,
		backoffInterval: BackoffPollInterval,
		state:           PollerIdle,
		subscribers:     make(map[int]chan Snapshot),
		wake:            make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.interval = p.initialInterval
	return p
}

// Snapshot returns the current state.
func (p *ImportPoller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Interval returns the delay before the next timer firing.
func (p *ImportPoller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Track starts observing jobID and fetches its status once, immediately.
// Tracking a different job resets the poll count and interval. A blank id stops the poller.
func (p *ImportPoller) Track(ctx context.Context, jobID string) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		p.Stop()
		return nil
	}

	p.mu.Lock()
	if jobID != p.jobID {
		p.resetLocked()
		p.jobID = jobID
	}
	if p.state == PollerIdle {
		p.state = PollerPolling
	}
	p.publishLocked()
	p.mu.Unlock()
	p.signal()

	p.logger.Info("import job tracking started", slog.String("jobId", jobID))
	return p.fetch(ctx)
}

// Tick is one timer firing: it fetches only while the tracked job is pending or running.
func (p *ImportPoller) Tick(ctx context.Context) error {
	p.mu.Lock()
	active := p.state == PollerPolling && p.jobID != ""
	p.mu.Unlock()
	if !active {
		return nil
	}
	return p.fetch(ctx)
}

// Refetch fetches the tracked job regardless of its status.
func (p *ImportPoller) Refetch(ctx context.Context) error {
	return p.fetch(ctx)
}

// Stop clears the tracked job and restores the initial interval. The backend job is not affected.
func (p *ImportPoller) Stop() {
	p.mu.Lock()
	wasTracking := p.jobID
	p.resetLocked()
	p.publishLocked()
	p.mu.Unlock()
	p.signal()

	if wasTracking != "" {
		p.logger.Info("import job tracking stopped", slog.String("jobId", wasTracking))
	}
}

// Run drives Tick on a timer until ctx is done. Each firing polls in its own
// goroutine so a slow backend does not delay the schedule.
func (p *ImportPoller) Run(ctx context.Context) {
	timer := time.NewTimer(p.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.Interval())
		case <-timer.C:
			go func() {
				if err := p.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
					p.logger.Debug("import job poll failed", slog.Any("error", err))
				}
			}()
			timer.Reset(p.Interval())
		}
	}
}

// Subscribe returns a channel that receives the current snapshot and every
// subsequent change. A subscriber that falls behind loses its oldest updates.
func (p *ImportPoller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)

	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = ch
	ch <- p.snapshotLocked()
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subscribers, id)
			close(ch)
			p.mu.Unlock()
		})
	}
	return ch, cancel
}

func (p *ImportPoller) fetch(ctx context.Context) error {
	p.mu.Lock()
	if p.jobID == "" {
		p.mu.Unlock()
		return nil
	}
	p.issued++
	seq, generation, jobID := p.issued, p.generation, p.jobID
	p.inFlight++
	p.errMsg = ""
	p.publishLocked()
	p.mu.Unlock()

	job, err := p.fetcher.FetchImportJob(ctx, jobID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		p.logger.Debug("import job response dropped after reset", slog.String("jobId", jobID))
		return err
	}
	p.inFlight--
	if seq < p.applied {
		p.logger.Debug("stale import job response dropped", slog.String("jobId", jobID), slog.Uint64("seq", seq))
		p.publishLocked()
		return err
	}
	p.applied = seq

	switch {
	case errors.Is(err, port.ErrImportJobNotFound):
		// Informational only: the timer keeps retrying like any other failure.
		p.notFound = true
		p.errMsg = err.Error()
		p.logger.Warn("import job not found", slog.String("jobId", jobID))
	case errors.Is(err, context.Canceled):
	case err != nil:
		p.notFound = false
		p.errMsg = err.Error()
		p.logger.Warn("import job fetch failed", slog.String("jobId", jobID), slog.Any("error", err))
	case job == nil:
		p.errMsg = "import job response was empty"
	default:
		p.job = job
		p.notFound = false
		p.pollCount++
		if p.pollCount >= BackoffAfterPolls {
			p.interval = p.backoffInterval
		}
		if job.Status.IsSettled() {
			p.state = PollerSettled
			p.logger.Info("import job settled", slog.String("jobId", jobID), slog.String("status", string(job.Status)))
		} else {
			p.state = PollerPolling
		}
	}
	p.publishLocked()
	return err
}

func (p *ImportPoller) resetLocked() {
	p.generation++
	p.jobID = ""
	p.state = PollerIdle
	p.job = nil
	p.errMsg = ""
	p.notFound = false
	p.interval = p.initialInterval
	p.pollCount = 0
	p.inFlight = 0
}

func (p *ImportPoller) snapshotLocked() Snapshot {
	var job *domain.ImportJob
	if p.job != nil {
		copied := *p.job
		job = &copied
	}
	return Snapshot{
		JobID:      p.jobID,
		State:      p.state,
		Job:        job,
		Loading:    p.inFlight > 0,
		Error:      p.errMsg,
		NotFound:   p.notFound,
		Interval:   p.interval,
		IntervalMs: p.interval.Milliseconds(),
		PollCount:  p.pollCount,
	}
}

func (p *ImportPoller) publishLocked() {
	if len(p.subscribers) == 0 {
		return
	}
	snapshot := p.snapshotLocked()
	for _, ch := range p.subscribers {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (p *ImportPoller) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
