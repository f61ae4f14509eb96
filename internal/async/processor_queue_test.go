package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorQueue_RunsEveryJob(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	handle := func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.Path] = true
		mu.Unlock()
		if job.Path == "bad-3" {
			return errors.New("unreadable")
		}
		return nil
	}
	var done atomic.Int32
	q := NewProcessorQueue(handle, nil, WithWorkers(3), WithQueueSize(2),
		WithOnDone(func(Job, error) { done.Add(1) }))

	for i := 0; i < 10; i++ {
		path := fmt.Sprintf("doc-%d", i)
		if i == 3 {
			path = "bad-3"
		}
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: path}))
	}
	q.Shutdown(context.Background())

	assert.Len(t, seen, 10)
	assert.Equal(t, int32(10), done.Load())
	processed, failed := q.Stats()
	assert.Equal(t, int64(9), processed)
	assert.Equal(t, int64(1), failed)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_EnqueueHonoursContextWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewProcessorQueue(func(context.Context, Job) error {
		<-release
		return nil
	}, nil, WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one filling the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "a"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "b"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "c"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	q.Shutdown(context.Background())
}

func TestProcessorQueue_AppliesTimeout(t *testing.T) {
	var hadDeadline atomic.Bool
	q := NewProcessorQueue(func(ctx context.Context, _ Job) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	}, nil, WithWorkers(1), WithProcessTimeout(time.Second))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "x", TraceID: "trace-1"}))
	q.Shutdown(context.Background())
	assert.True(t, hadDeadline.Load())
}
