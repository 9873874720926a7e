package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-wide HTTP counters for the /metrics endpoint.
type Collector struct {
	started         time.Time
	totalRequests   atomic.Uint64
	clientErrors    atomic.Uint64
	serverErrors    atomic.Uint64
	unauthorized    atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64
}

func New() *Collector {
	return &Collector{started: time.Now()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	switch {
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	if status == 401 || status == 403 {
		c.unauthorized.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"clientErrorsTotal": c.clientErrors.Load(),
		"errorsTotal":       c.serverErrors.Load(),
		"deniedTotal":       c.unauthorized.Load(),
		"rateLimitedTotal":  c.rateLimited.Load(),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"uptimeSeconds":     int64(time.Since(c.started).Seconds()),
	}
}
