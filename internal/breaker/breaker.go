package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	Name             string        `json:"name"`
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// Breaker stops calling a dependency after repeated failures and lets a
// trial call through once Timeout has passed.
type Breaker struct {
	mu          sync.Mutex
	cfg         Config
	state       State
	failures    int
	successes   int
	inFlight    int
	lastFailure time.Time
	now         func() time.Time
	log         *logging.Logger
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Breaker{cfg: cfg, now: time.Now, log: log}
}

// Execute runs fn unless the breaker is open. Context cancellation is not
// counted as a dependency failure.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn(ctx)

	switch {
	case err == nil:
		b.onSuccess()
	case errors.Is(err, context.Canceled):
		b.release()
	default:
		b.onFailure()
	}
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.lastFailure) < b.cfg.Timeout {
			return false
		}
		b.transition(HalfOpen)
		b.inFlight = 1
		return true
	default:
		if b.inFlight >= b.cfg.HalfOpenMaxCalls {
			return false
		}
		b.inFlight++
		return true
	}
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen && b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxCalls {
			b.transition(Closed)
		}
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	switch b.state {
	case Closed:
		if b.failures >= b.cfg.MaxFailures {
			b.transition(Open)
		}
	case HalfOpen:
		b.transition(Open)
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	b.log.Warn().
		Str("breaker", b.cfg.Name).
		Str("from", b.state.String()).
		Str("to", to.String()).
		Int("failures", b.failures).
		Msg("circuit breaker state change")

	b.state = to
	b.successes = 0
	b.inFlight = 0
	if to == Closed {
		b.failures = 0
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]any{
		"name":            b.cfg.Name,
		"state":           b.state.String(),
		"failure_count":   b.failures,
		"success_count":   b.successes,
		"last_failure":    b.lastFailure.Unix(),
		"max_failures":    b.cfg.MaxFailures,
		"timeout_seconds": b.cfg.Timeout.Seconds(),
	}
}
