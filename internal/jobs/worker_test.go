package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	worker := NewWorker(2)
	defer worker.Shutdown()

	done := make(chan struct{})
	worker.Enqueue(func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestWorkerShutdownDrains(t *testing.T) {
	worker := NewWorker(1)

	var ran int32
	worker.EnqueueAsync(func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	// Shutdown waits for in-flight work
	time.Sleep(50 * time.Millisecond)
	worker.Shutdown()
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestWorkerContextCancelledOnShutdown(t *testing.T) {
	worker := NewWorker(1)
	ctx := worker.Context()
	worker.Shutdown()
	assert.Error(t, ctx.Err())
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	worker := NewWorker(1)
	defer worker.Shutdown()

	scheduler := NewScheduler(worker)
	err := scheduler.Add("not a cron spec", "broken job", func(ctx context.Context) error { return nil })
	assert.Error(t, err)

	err = scheduler.Add("@hourly", "covenant tick", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}
