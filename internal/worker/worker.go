// Package worker runs extraction jobs pulled from redis lists so large
// batches can be accepted by the API and processed in the background.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

type JobType string

const (
	JobTypeExtractStored JobType = "extract_stored"
	JobTypeReloadMock    JobType = "reload_mock"
	JobTypeExtractAgent  JobType = "extract_agent"
)

const (
	QueueExtraction = "extraction"
	QueueDefault    = "default"
	DeadQueue       = "dead_queue"

	defaultMaxTries = 3
	jobTimeout      = 30 * time.Second
)

var ErrNoHandler = errors.New("no handler registered for job type")

type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Queue     string          `json:"queue"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Attempts  int             `json:"attempts"`
	MaxTries  int             `json:"max_tries"`
	CreatedAt time.Time       `json:"created_at"`
	ProcessAt time.Time       `json:"process_at"`
}

// Decode unmarshals the job payload into dest.
func (j *Job) Decode(dest any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.ID)
	}
	return json.Unmarshal(j.Payload, dest)
}

type JobHandler func(ctx context.Context, job *Job) error

type Worker struct {
	client       *redis.Client
	handlers     map[JobType]JobHandler
	queues       []string
	pollInterval time.Duration
	retryBase    time.Duration
	log          *logging.Logger
	now          func() time.Time

	mu     sync.RWMutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type WorkerConfig struct {
	RedisClient  *redis.Client
	PollInterval time.Duration
	RetryBase    time.Duration
	Queues       []string
}

func NewWorker(config WorkerConfig, log *logging.Logger) *Worker {
	if log == nil {
		log = logging.Nop()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryBase <= 0 {
		config.RetryBase = time.Minute
	}
	if len(config.Queues) == 0 {
		config.Queues = []string{QueueExtraction, QueueDefault}
	}

	return &Worker{
		client:       config.RedisClient,
		handlers:     make(map[JobType]JobHandler),
		queues:       config.Queues,
		pollInterval: config.PollInterval,
		retryBase:    config.RetryBase,
		log:          log,
		now:          time.Now,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

// Start launches concurrency loops that run until Stop or ctx is done.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.log.Info().Int("concurrency", concurrency).Strs("queues", w.queues).Msg("starting worker")

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx)
	}
}

func (w *Worker) Stop() {
	w.log.Info().Msg("stopping worker")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info().Msg("worker stopped")
}

func (w *Worker) workerLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		handled, err := w.ProcessNext(ctx)
		if err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("error processing job")
		}
		if handled && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// ProcessNext pops one job, waiting up to the poll interval. It reports
// whether a due job was executed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	result, err := w.client.BLPop(ctx, w.pollInterval, w.queues...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop job: %w", err)
	}

	if len(result) < 2 {
		return false, fmt.Errorf("invalid job result")
	}

	queue := result[0]
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return false, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	job.Queue = queue

	if w.now().Before(job.ProcessAt) {
		return false, w.enqueueJob(ctx, queue, &job)
	}

	return true, w.executeJob(ctx, &job)
}

func (w *Worker) executeJob(ctx context.Context, job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	log := w.log.Zerolog().With().Str("job_id", job.ID).Str("job_type", string(job.Type)).Logger()
	if !exists {
		return w.moveToDeadQueue(ctx, job, fmt.Errorf("%w: %s", ErrNoHandler, job.Type))
	}

	log.Debug().Int("attempt", job.Attempts+1).Msg("processing job")

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	err := handler(jobCtx, job)
	if err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			log.Warn().Err(err).Int("attempt", job.Attempts).Int("max_tries", job.MaxTries).Msg("job failed, retrying")
			return w.retryJob(ctx, job)
		}

		log.Error().Err(err).Int("attempts", job.Attempts).Msg("job failed permanently")
		return w.moveToDeadQueue(ctx, job, err)
	}

	log.Info().Msg("job completed")
	return nil
}

// retryJob puts the job back on its own queue with exponential backoff.
func (w *Worker) retryJob(ctx context.Context, job *Job) error {
	delay := time.Duration(1<<job.Attempts) * w.retryBase
	job.ProcessAt = w.now().Add(delay)

	queue := job.Queue
	if queue == "" {
		queue = QueueDefault
	}
	return w.enqueueJob(ctx, queue, job)
}

func (w *Worker) enqueueJob(ctx context.Context, queue string, job *Job) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return w.client.RPush(ctx, queue, jobData).Err()
}

func (w *Worker) moveToDeadQueue(ctx context.Context, job *Job, jobErr error) error {
	deadJob := map[string]any{
		"original_job": job,
		"error":        jobErr.Error(),
		"failed_at":    w.now(),
	}

	deadJobData, err := json.Marshal(deadJob)
	if err != nil {
		return fmt.Errorf("failed to marshal dead job: %w", err)
	}

	if err := w.client.RPush(ctx, DeadQueue, deadJobData).Err(); err != nil {
		return err
	}
	return jobErr
}

type JobQueue struct {
	client *redis.Client
}

func NewJobQueue(client *redis.Client) *JobQueue {
	return &JobQueue{client: client}
}

// Enqueue schedules a job for immediate processing and returns its id.
func (q *JobQueue) Enqueue(ctx context.Context, queue string, jobType JobType, payload any) (string, error) {
	return q.EnqueueAt(ctx, queue, jobType, payload, time.Now())
}

func (q *JobQueue) EnqueueAt(ctx context.Context, queue string, jobType JobType, payload any, processAt time.Time) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate job id: %w", err)
	}

	var raw json.RawMessage
	if payload != nil {
		if raw, err = json.Marshal(payload); err != nil {
			return "", fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	job := &Job{
		ID:        id.String(),
		Type:      jobType,
		Queue:     queue,
		Payload:   raw,
		MaxTries:  defaultMaxTries,
		CreatedAt: time.Now(),
		ProcessAt: processAt,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := q.client.RPush(ctx, queue, jobData).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

func (q *JobQueue) GetQueueSize(ctx context.Context, queue string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return q.client.LLen(ctx, queue).Result()
}
