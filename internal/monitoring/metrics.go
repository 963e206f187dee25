package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 5 * time.Second

type Metrics struct {
	mu              sync.RWMutex
	RequestCount    int64            `json:"request_count"`
	RequestDuration time.Duration    `json:"avg_request_duration_ms"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
	totalDuration   time.Duration
}

// DomainMetrics counts pipeline activity, keyed by pipeline name
// ("agent" for the in-memory store, "db" for the database variant).
type DomainMetrics struct {
	mu              sync.RWMutex
	ExtractRuns     map[string]int64 `json:"extract_runs"`
	ExtractFailures map[string]int64 `json:"extract_failures"`
	TasksExtracted  map[string]int64 `json:"tasks_extracted"`
	ChatQueries     map[string]int64 `json:"chat_queries"`
	PrioritizeRuns  int64            `json:"prioritize_runs"`
	LastExtract     time.Time        `json:"last_extract"`
}

type HealthChecker struct {
	checks map[string]HealthCheckFunc
	last   map[string]HealthCheck
	mu     sync.Mutex
}

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

type HealthCheckFunc func(ctx context.Context) error

var globalMetrics = newMetrics()

var globalDomain = newDomainMetrics()

var globalHealthChecker = &HealthChecker{
	checks: make(map[string]HealthCheckFunc),
	last:   make(map[string]HealthCheck),
}

func newMetrics() *Metrics {
	return &Metrics{
		StatusCodes: make(map[string]int64),
		Endpoints:   make(map[string]int64),
		StartTime:   time.Now(),
	}
}

func newDomainMetrics() *DomainMetrics {
	return &DomainMetrics{
		ExtractRuns:     make(map[string]int64),
		ExtractFailures: make(map[string]int64),
		TasksExtracted:  make(map[string]int64),
		ChatQueries:     make(map[string]int64),
	}
}

// Reset clears every counter and health check.
func Reset() {
	globalMetrics = newMetrics()
	globalDomain = newDomainMetrics()
	globalHealthChecker.mu.Lock()
	globalHealthChecker.checks = make(map[string]HealthCheckFunc)
	globalHealthChecker.last = make(map[string]HealthCheck)
	globalHealthChecker.mu.Unlock()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m := globalMetrics

		m.mu.Lock()
		m.ActiveRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.RequestCount++
		m.ActiveRequests--
		m.totalDuration += duration
		m.RequestDuration = m.totalDuration / time.Duration(m.RequestCount)
		m.LastRequest = time.Now()

		if statusCode >= 400 {
			m.ErrorCount++
		}
		m.StatusCodes[http.StatusText(statusCode)]++
		m.Endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func GetMetrics() *Metrics {
	src := globalMetrics
	src.mu.RLock()
	defer src.mu.RUnlock()

	metrics := &Metrics{
		RequestCount:    src.RequestCount,
		RequestDuration: src.RequestDuration,
		ActiveRequests:  src.ActiveRequests,
		ErrorCount:      src.ErrorCount,
		StatusCodes:     make(map[string]int64, len(src.StatusCodes)),
		Endpoints:       make(map[string]int64, len(src.Endpoints)),
		StartTime:       src.StartTime,
		LastRequest:     src.LastRequest,
	}

	for k, v := range src.StatusCodes {
		metrics.StatusCodes[k] = v
	}
	for k, v := range src.Endpoints {
		metrics.Endpoints[k] = v
	}

	return metrics
}

// RecordExtraction counts one extraction run of pipeline yielding n tasks.
func RecordExtraction(pipeline string, n int, err error) {
	d := globalDomain
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ExtractRuns[pipeline]++
	if err != nil {
		d.ExtractFailures[pipeline]++
		return
	}
	d.TasksExtracted[pipeline] += int64(n)
	d.LastExtract = time.Now()
}

func RecordChat(pipeline string) {
	d := globalDomain
	d.mu.Lock()
	d.ChatQueries[pipeline]++
	d.mu.Unlock()
}

func RecordPrioritize() {
	d := globalDomain
	d.mu.Lock()
	d.PrioritizeRuns++
	d.mu.Unlock()
}

func GetDomainMetrics() *DomainMetrics {
	src := globalDomain
	src.mu.RLock()
	defer src.mu.RUnlock()

	return &DomainMetrics{
		ExtractRuns:     copyCounts(src.ExtractRuns),
		ExtractFailures: copyCounts(src.ExtractFailures),
		TasksExtracted:  copyCounts(src.TasksExtracted),
		ChatQueries:     copyCounts(src.ChatQueries),
		PrioritizeRuns:  src.PrioritizeRuns,
		LastExtract:     src.LastExtract,
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime"`
	MemoryUsage    MemoryStats   `json:"memory"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	NextGC       uint64 `json:"next_gc_mb"`
	LastGC       string `json:"last_gc"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func GetSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Uptime: time.Since(globalMetrics.StartTime),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(m.Alloc),
			TotalAlloc:   bToMb(m.TotalAlloc),
			Sys:          bToMb(m.Sys),
			NumGC:        m.NumGC,
			NextGC:       bToMb(m.NextGC),
			LastGC:       time.Unix(0, int64(m.LastGC)).Format(time.RFC3339),
			GCPauseTotal: time.Duration(m.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// RegisterHealthCheck adds a named dependency check run by the health and
// readiness endpoints.
func RegisterHealthCheck(name string, checkFunc HealthCheckFunc) {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.checks[name] = checkFunc
}

func RunHealthChecks(ctx context.Context) map[string]HealthCheck {
	h := globalHealthChecker
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]HealthCheck, len(names))
	for _, name := range names {
		results[name] = runCheck(ctx, name, h.checks[name])
		h.last[name] = results[name]
	}
	return results
}

func runCheck(ctx context.Context, name string, fn HealthCheckFunc) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	check := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
	if err := fn(ctx); err != nil {
		check.Status = "unhealthy"
		check.Message = err.Error()
	}
	return check
}

func healthy(checks map[string]HealthCheck) bool {
	for _, check := range checks {
		if check.Status != "healthy" {
			return false
		}
	}
	return true
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"application": GetMetrics(),
			"domain":      GetDomainMetrics(),
			"system":      GetSystemMetrics(),
			"timestamp":   time.Now(),
		})
	}
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := RunHealthChecks(c.Request.Context())

		overallStatus := "healthy"
		status := http.StatusOK
		if !healthy(checks) {
			overallStatus = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(globalMetrics.StartTime).String(),
		})
	}
}

func ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthy(RunHealthChecks(c.Request.Context())) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ready",
				"timestamp": time.Now(),
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"timestamp": time.Now(),
		})
	}
}

func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    time.Since(globalMetrics.StartTime).String(),
		})
	}
}
