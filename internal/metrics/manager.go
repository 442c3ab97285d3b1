package metrics

import (
	"context"
	"runtime"
	"time"
)

const systemRefreshInterval = 30 * time.Second

// Manager owns the Prometheus metric surface and keeps the process-level
// gauges (uptime, memory, goroutines) fresh while the application runs.
type Manager struct {
	prometheus *PrometheusMetrics
	startTime  time.Time
	interval   time.Duration
}

// NewManager creates a new metrics manager
func NewManager() *Manager {
	return &Manager{
		prometheus: NewPrometheusMetrics(),
		startTime:  time.Now(),
		interval:   systemRefreshInterval,
	}
}

// GetPrometheusMetrics returns the Prometheus metrics instance
func (m *Manager) GetPrometheusMetrics() *PrometheusMetrics {
	return m.prometheus
}

// UpdateSystemMetrics refreshes the uptime, memory and goroutine gauges
func (m *Manager) UpdateSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.prometheus.UpdateMemoryUsage(memStats.Alloc)
	m.prometheus.UpdateGoroutineCount(runtime.NumGoroutine())
	m.prometheus.UpdateApplicationUptime(m.startTime)
}

// Run refreshes the system gauges until ctx is canceled. The first refresh
// happens immediately so the gauges carry values on the first scrape.
func (m *Manager) Run(ctx context.Context) {
	m.UpdateSystemMetrics()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateSystemMetrics()
		}
	}
}
