package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/pkg/logger"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type countJob struct {
	clock    clockwork.Clock
	runNow   bool
	interval time.Duration
	count    atomic.Int32
}

func (job *countJob) Do(context.Context) { job.count.Add(1) }
func (job *countJob) RunNow() bool       { return job.runNow }
func (job *countJob) Next() time.Time    { return job.clock.Now().Add(job.interval) }

func Test_CronJobManager(t *testing.T) {
	ctx := xcontext.WithLogger(context.Background(), logger.NewLogger(logger.SILENCE))
	clock := clockwork.NewFakeClock()

	immediate := &countJob{clock: clock, runNow: true, interval: time.Minute}
	delayed := &countJob{clock: clock, interval: time.Hour}

	manager := NewCronJobManager(clock)
	manager.Register(immediate)
	manager.Register(delayed)

	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Both jobs wait on a timer once the immediate one has run.
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))
	require.Equal(t, int32(1), immediate.count.Load())
	require.Equal(t, int32(0), delayed.count.Load())

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return immediate.count.Load() == 2 }, 5*time.Second, time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))
	require.Equal(t, int32(0), delayed.count.Load())

	clock.Advance(time.Hour)
	require.Eventually(t, func() bool { return delayed.count.Load() == 1 }, 5*time.Second, time.Millisecond)

	manager.Cancel(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
}

func Test_CronJobManager_CancelBeforeStart(t *testing.T) {
	ctx := xcontext.WithLogger(context.Background(), logger.NewLogger(logger.SILENCE))
	clock := clockwork.NewFakeClock()

	job := &countJob{clock: clock, runNow: true, interval: time.Minute}
	manager := NewCronJobManager(clock)
	manager.Register(job)
	manager.Cancel(ctx)

	// Nothing is left to run, Start returns immediately.
	manager.Start(ctx)
	require.Equal(t, int32(0), job.count.Load())
}
