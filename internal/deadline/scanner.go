// Package deadline finds open tasks whose deadline is near and emits one
// event per task on every scan.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/events"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// JobName identifies the scan in scheduler logs.
const JobName = "deadline_scan"

// Config controls which tasks a scan reports.
type Config struct {
	// Lookahead is the window W: a task is due soon when now < deadline <= now+W.
	Lookahead time.Duration

	// ReportOverdue also reports open tasks whose deadline is at or before now.
	ReportOverdue bool
}

// Scanner implements job.Job.
type Scanner struct {
	tasks   store.TaskStore
	emitter events.EventEmitter
	clock   clockwork.Clock
	cfg     Config
	logger  *slog.Logger
}

// NewScanner creates a Scanner. Lookahead must be positive.
func NewScanner(
	tasks store.TaskStore,
	emitter events.EventEmitter,
	clock clockwork.Clock,
	cfg Config,
	logger *slog.Logger,
) (*Scanner, error) {
	if cfg.Lookahead <= 0 {
		return nil, fmt.Errorf("lookahead must be positive, got %s", cfg.Lookahead)
	}
	return &Scanner{
		tasks:   tasks,
		emitter: emitter,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With("component", "deadline_scanner"),
	}, nil
}

// Name implements job.Job.
func (s *Scanner) Name() string { return JobName }

// Run performs one scan. Every matching task gets exactly one event, even if
// an earlier scan already reported it. Emit failures do not stop the scan;
// they are joined into the returned error.
func (s *Scanner) Run(ctx context.Context) error {
	now := s.clock.Now()
	until := now.Add(s.cfg.Lookahead)

	// Overdue scans reach back to the zero time.
	from := now
	if s.cfg.ReportOverdue {
		from = time.Time{}
	}

	tasks, err := s.tasks.ListOpenDueBetween(ctx, from, until)
	if err != nil {
		return fmt.Errorf("failed to load due tasks: %w", err)
	}

	var (
		errs    []error
		dueSoon int
		overdue int
	)
	for _, task := range tasks {
		kind, ok := s.classify(task, now, until)
		if !ok {
			continue
		}

		if err := s.emitter.EmitEvent(ctx, events.NewDeadlineEvent(task, kind, now)); err != nil {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			continue
		}

		if kind == domain.NotificationOverdue {
			overdue++
		} else {
			dueSoon++
		}
	}

	s.logger.Info("deadline scan finished",
		"due_soon", dueSoon,
		"overdue", overdue,
		"failed", len(errs),
		"window_end", until)

	return errors.Join(errs...)
}

// classify re-checks the window in memory so the boundaries do not depend on
// how the store compares timestamps.
func (s *Scanner) classify(task domain.Task, now, until time.Time) (domain.NotificationKind, bool) {
	switch {
	case task.CurrentStatus.IsTerminal():
		return "", false
	case task.Deadline.After(until):
		return "", false
	case task.Deadline.After(now):
		return domain.NotificationDueSoon, true
	case s.cfg.ReportOverdue:
		return domain.NotificationOverdue, true
	default:
		return "", false
	}
}
