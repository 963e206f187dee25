package query

import (
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
)

// Engine answers chat queries and computes insights against an injected
// clock.
type Engine struct {
	now dates.Clock
}

func NewEngine(now dates.Clock) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}
