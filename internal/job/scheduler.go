package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Job is one unit of recurring work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run performs one firing. It should return promptly once ctx is cancelled.
	Run(ctx context.Context) error
}

// State is the lifecycle state of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Scheduler fires a Job every interval.
type Scheduler struct {
	job      Job
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates an idle scheduler. interval must be positive.
func NewScheduler(job Job, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	return &Scheduler{
		job:      job,
		interval: interval,
		clock:    clock,
		logger:   logger.With("component", "scheduler", "job", job.Name()),
		state:    StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the scheduling goroutine. The first firing happens one
// interval after Start.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning

	// The ticker is created before Start returns so a fake clock sees it.
	ticker := s.clock.NewTicker(s.interval)
	go s.loop(ctx, ticker)

	s.logger.Info("scheduler started", "interval", s.interval.String())
	return nil
}

// Stop cancels the scheduling goroutine and waits for an in-flight firing to
// return. Calling Stop more than once, or before Start, is safe.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if prev != StateRunning {
		return
	}

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, ticker clockwork.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.fire(ctx)
		}
	}
}

// fire runs the job once. Errors and panics are logged so the next tick
// still fires.
func (s *Scheduler) fire(ctx context.Context) {
	start := s.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()

	err := s.job.Run(ctx)
	elapsed := s.clock.Since(start)

	switch {
	case err == nil:
		s.logger.Debug("job completed", "duration_ms", elapsed.Milliseconds())
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		s.logger.Info("job interrupted by shutdown", "duration_ms", elapsed.Milliseconds())
	default:
		s.logger.Error("job failed", "error", err, "duration_ms", elapsed.Milliseconds())
	}
}
