// Package scheduler runs the periodic re-extraction passes. Specs are
// standard five-field cron expressions or descriptors such as "@every 15m".
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

const jobTimeout = 2 * time.Minute

// Job is one scheduled pass. Its context is cancelled when the scheduler
// stops or after jobTimeout.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger

	mu     sync.Mutex
	names  map[cron.EntryID]string
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:    log,
		names:  make(map[cron.EntryID]string),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleCron registers job under name. Overlapping runs of the same job
// are skipped.
func (s *Scheduler) ScheduleCron(spec, name string, job Job) error {
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()

	s.log.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		return
	}
	s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled job finished")
}

// Next reports the next activation of every job by name.
func (s *Scheduler) Next() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.names))
	for _, e := range s.cron.Entries() {
		out[s.names[e.ID]] = e.Next
	}
	return out
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
