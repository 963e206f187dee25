package cache

import (
	"sync/atomic"
	"time"
)

type CacheMetrics struct {
	l1Hits    atomic.Int64
	l2Hits    atomic.Int64
	misses    atomic.Int64
	errors    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	startTime time.Time
}

type MetricsSnapshot struct {
	L1Hits    int64   `json:"l1_hits"`
	L2Hits    int64   `json:"l2_hits"`
	Misses    int64   `json:"misses"`
	Errors    int64   `json:"errors"`
	Sets      int64   `json:"sets"`
	Deletes   int64   `json:"deletes"`
	HitRate   float64 `json:"hit_rate"`
	UptimeSec int64   `json:"uptime_seconds"`
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{startTime: time.Now()}
}

func (m *CacheMetrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		L1Hits:    m.l1Hits.Load(),
		L2Hits:    m.l2Hits.Load(),
		Misses:    m.misses.Load(),
		Errors:    m.errors.Load(),
		Sets:      m.sets.Load(),
		Deletes:   m.deletes.Load(),
		UptimeSec: int64(time.Since(m.startTime).Seconds()),
	}
	if total := s.L1Hits + s.L2Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.L1Hits+s.L2Hits) / float64(total) * 100.0
	}
	return s
}
