package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interval = 100 * time.Second

// funcJob runs fn and reports each completed firing on ran.
type funcJob struct {
	fn    func(ctx context.Context, n int64) error
	calls atomic.Int64
	ran   chan int64
}

func newFuncJob(fn func(ctx context.Context, n int64) error) *funcJob {
	return &funcJob{fn: fn, ran: make(chan int64, 16)}
}

func (j *funcJob) Name() string { return "test_job" }

func (j *funcJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	defer func() { j.ran <- n }()
	return j.fn(ctx, n)
}

func waitRun(t *testing.T, j *funcJob) int64 {
	t.Helper()
	select {
	case n := <-j.ran:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
		return 0
	}
}

func startScheduler(t *testing.T, j Job) (*Scheduler, *clockwork.FakeClock, *logger.TestLogBuffer) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	log, buf := logger.NewTestLogger()

	s, err := NewScheduler(j, interval, clock, log)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	return s, clock, buf
}

func TestNewScheduler_RejectsBadInterval(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()

	_, err := NewScheduler(newFuncJob(nil), 0, clockwork.NewFakeClock(), log)
	assert.Error(t, err)
}

func TestScheduler_FiresOnlyOnTicks(t *testing.T) {
	t.Parallel()
	j := newFuncJob(func(context.Context, int64) error { return nil })
	_, clock, _ := startScheduler(t, j)

	clock.Advance(interval - time.Second)
	select {
	case <-j.ran:
		t.Fatal("job fired before the first interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(time.Second)
	assert.Equal(t, int64(1), waitRun(t, j))

	clock.Advance(interval)
	assert.Equal(t, int64(2), waitRun(t, j))
}

func TestScheduler_ContinuesAfterErrorAndPanic(t *testing.T) {
	t.Parallel()
	j := newFuncJob(func(_ context.Context, n int64) error {
		switch n {
		case 1:
			return errors.New("scan failed")
		case 2:
			panic("boom")
		}
		return nil
	})
	_, clock, buf := startScheduler(t, j)

	for want := int64(1); want <= 3; want++ {
		clock.Advance(interval)
		assert.Equal(t, want, waitRun(t, j))
	}

	assert.Contains(t, buf.String(), "scan failed")
	assert.Contains(t, buf.String(), "job panicked")
}

func TestScheduler_Lifecycle(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	s, err := NewScheduler(newFuncJob(nil), interval, clockwork.NewFakeClock(), log)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Start())
	assert.Equal(t, StateRunning, s.State())
	assert.ErrorIs(t, s.Start(), ErrAlreadyRunning)

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	assert.ErrorIs(t, s.Start(), ErrStopped)

	// Repeated stops are no-ops.
	s.Stop()
	assert.Equal(t, "stopped", s.State().String())
}

func TestScheduler_StopWaitsForInFlightFiring(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	var sawCancel atomic.Bool
	j := newFuncJob(func(ctx context.Context, _ int64) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	})
	s, clock, _ := startScheduler(t, j)

	clock.Advance(interval)
	<-started

	s.Stop()
	assert.True(t, sawCancel.Load(), "Stop returned before the job finished")
	assert.Equal(t, StateStopped, s.State())
}
