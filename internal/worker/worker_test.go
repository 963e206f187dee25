package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractPayload struct {
	Titles []string `json:"titles"`
}

func setupWorker(t *testing.T) (*Worker, *JobQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	w := NewWorker(WorkerConfig{
		RedisClient:  client,
		PollInterval: time.Second,
		RetryBase:    time.Minute,
		Queues:       []string{QueueExtraction},
	}, nil)
	return w, NewJobQueue(client), mr
}

func TestProcessNext_RunsHandler(t *testing.T) {
	w, q, _ := setupWorker(t)
	ctx := context.Background()

	var got extractPayload
	w.RegisterHandler(JobTypeExtractStored, func(ctx context.Context, job *Job) error {
		return job.Decode(&got)
	})

	id, err := q.Enqueue(ctx, QueueExtraction, JobTypeExtractStored, extractPayload{Titles: []string{"Send report"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"Send report"}, got.Titles)

	size, _ := q.GetQueueSize(ctx, QueueExtraction)
	assert.Zero(t, size)
}

func TestProcessNext_RetriesWithBackoff(t *testing.T) {
	w, q, mr := setupWorker(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.RegisterHandler(JobTypeReloadMock, func(context.Context, *Job) error {
		return errors.New("mock dir unreadable")
	})

	_, err := q.EnqueueAt(ctx, QueueExtraction, JobTypeReloadMock, nil, now)
	require.NoError(t, err)

	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)

	items, err := mr.List(QueueExtraction)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(items[0]), &job))
	assert.Equal(t, 1, job.Attempts)
	assert.True(t, now.Add(2*time.Minute).Equal(job.ProcessAt), "unexpected retry time %v", job.ProcessAt)
}

func TestProcessNext_RequeuesJobsNotYetDue(t *testing.T) {
	w, q, mr := setupWorker(t)
	ctx := context.Background()

	var calls atomic.Int32
	w.RegisterHandler(JobTypeExtractAgent, func(context.Context, *Job) error {
		calls.Add(1)
		return nil
	})

	_, err := q.EnqueueAt(ctx, QueueExtraction, JobTypeExtractAgent, nil, time.Now().Add(time.Hour))
	require.NoError(t, err)

	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Zero(t, calls.Load())

	items, _ := mr.List(QueueExtraction)
	assert.Len(t, items, 1)
}

func TestProcessNext_DeadLettersAfterMaxTries(t *testing.T) {
	w, q, mr := setupWorker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	w.RegisterHandler(JobTypeExtractStored, func(context.Context, *Job) error { return boom })

	job := &Job{ID: "j1", Type: JobTypeExtractStored, Attempts: 2, MaxTries: 3, ProcessAt: time.Now().Add(-time.Second)}
	require.NoError(t, w.enqueueJob(ctx, QueueExtraction, job))

	_, err := w.ProcessNext(ctx)
	assert.ErrorIs(t, err, boom)

	dead, _ := mr.List(DeadQueue)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0], `"error":"boom"`)

	size, _ := q.GetQueueSize(ctx, QueueExtraction)
	assert.Zero(t, size)
}

func TestProcessNext_UnknownJobType(t *testing.T) {
	w, q, mr := setupWorker(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, QueueExtraction, JobType("mystery"), nil)
	require.NoError(t, err)

	_, err = w.ProcessNext(ctx)
	assert.ErrorIs(t, err, ErrNoHandler)

	dead, _ := mr.List(DeadQueue)
	assert.Len(t, dead, 1)
}

func TestWorker_StartStop(t *testing.T) {
	w, q, _ := setupWorker(t)
	ctx := context.Background()

	done := make(chan struct{}, 1)
	w.RegisterHandler(JobTypeExtractAgent, func(context.Context, *Job) error {
		done <- struct{}{}
		return nil
	})

	w.Start(ctx, 2)
	_, err := q.Enqueue(ctx, QueueExtraction, JobTypeExtractAgent, nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not processed")
	}
	w.Stop()
}

func TestJobDecode_EmptyPayload(t *testing.T) {
	job := &Job{ID: "j1"}
	var dest extractPayload
	assert.Error(t, job.Decode(&dest))
}
