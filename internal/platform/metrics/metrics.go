package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests    uint64
	errorRequests    uint64
	rateLimited      uint64
	totalDurationMs  uint64
	upstreamFailures uint64
	navDecisions     uint64
	navRedirects     uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordUpstreamFailure counts degraded reads from the legacy WFH API.
func (c *Collector) RecordUpstreamFailure() {
	atomic.AddUint64(&c.upstreamFailures, 1)
}

func (c *Collector) RecordNavigation(redirected bool) {
	atomic.AddUint64(&c.navDecisions, 1)
	if redirected {
		atomic.AddUint64(&c.navRedirects, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         errs,
		"rateLimitedTotal":    limited,
		"avgDurationMs":       avg,
		"upstreamFailures":    atomic.LoadUint64(&c.upstreamFailures),
		"navigationDecisions": atomic.LoadUint64(&c.navDecisions),
		"navigationRedirects": atomic.LoadUint64(&c.navRedirects),
	}
}
