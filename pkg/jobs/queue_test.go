package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestQueueProcessesJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan string, 2)
	q := NewQueue[string]("test", func(ctx context.Context, job Job[string]) error {
		done <- job.Payload
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[string]{ID: "1", Payload: "a"}))
	require.NoError(t, q.Enqueue(Job[string]{ID: "2", Payload: "b"}))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-done:
			got[p] = true
		case <-time.After(time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.True(t, got["a"] && got["b"])
}

func TestQueueRetriesFailedJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls int32
	finished := make(chan struct{})
	q := NewQueue[int]("retry", func(ctx context.Context, job Job[int]) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("transient")
		}
		close(finished)
		return nil
	}, QueueConfig{MaxRetries: 1, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "x", Payload: 1}))
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue[int]("idle", func(ctx context.Context, job Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{ID: "1"}))
}

func TestQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue[int]("full", func(ctx context.Context, job Job[int]) error {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "1"}))
	<-started
	require.NoError(t, q.Enqueue(Job[int]{ID: "2"}))
	err := q.Enqueue(Job[int]{ID: "3"})
	assert.ErrorIs(t, err, ErrQueueFull)
	close(release)
}

func TestQueueStopReturnsUnprocessedJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{}, 1)
	q := NewQueue[int]("drain", func(ctx context.Context, job Job[int]) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job[int]{ID: "1"}))
	<-started
	require.NoError(t, q.Enqueue(Job[int]{ID: "2"}))
	require.NoError(t, q.Enqueue(Job[int]{ID: "3"}))

	left := q.Stop()
	ids := make([]string, 0, len(left))
	for _, job := range left {
		ids = append(ids, job.ID)
	}
	assert.ElementsMatch(t, []string{"2", "3"}, ids)
	assert.Nil(t, q.Stop())
	assert.Error(t, q.Enqueue(Job[int]{ID: "4"}))
}
