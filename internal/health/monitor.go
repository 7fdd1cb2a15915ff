// Package health runs periodic health checks against every registered
// provider (AI, storage, payment, workflow backends) and keeps a bounded
// history used to compute availability and raise alerts.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxHistoryPerProvider bounds the ring buffer of samples kept per provider.
const maxHistoryPerProvider = 100

// Status is the outcome of a single health check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusCritical  Status = "critical"
)

// CheckResult is one sample in a provider's health history.
type CheckResult struct {
	Timestamp     time.Time     `json:"timestamp"`
	Provider      string        `json:"provider"`
	Status        Status        `json:"status"`
	ResponseTime  time.Duration `json:"response_time"`
	Error         string        `json:"error,omitempty"`
}

// Checker is implemented by anything the monitor can health-check.
type Checker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Alert is emitted when a transition crosses an alerting threshold.
type Alert struct {
	Provider  string    `json:"provider"`
	Severity  string    `json:"severity"` // "warning" or "critical"
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// AlertSink receives alerts as they're raised.
type AlertSink interface {
	Alert(a Alert)
}

// Monitor periodically checks every registered Checker and keeps a bounded
// history per provider.
type Monitor struct {
	checkers []Checker
	interval time.Duration
	sink     AlertSink
	logger   *zap.Logger

	mu      sync.RWMutex
	history map[string][]CheckResult
}

// NewMonitor constructs a Monitor over the given checkers.
func NewMonitor(checkers []Checker, interval time.Duration, sink AlertSink, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		checkers: checkers,
		interval: interval,
		sink:     sink,
		logger:   logger.With(zap.String("component", "health-monitor")),
		history:  make(map[string][]CheckResult),
	}
}

// Start runs the monitoring loop until ctx is canceled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.performChecks(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.performChecks(ctx)
		}
	}
}

func (m *Monitor) performChecks(ctx context.Context) {
	for _, c := range m.checkers {
		result := m.checkOne(ctx, c)
		m.record(result)
		m.maybeAlert(c.Name(), result)
	}
}

func (m *Monitor) checkOne(ctx context.Context, c Checker) CheckResult {
	start := time.Now()
	err := c.HealthCheck(ctx)
	elapsed := time.Since(start)

	result := CheckResult{
		Timestamp:    start,
		Provider:     c.Name(),
		ResponseTime: elapsed,
		Status:       StatusHealthy,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	} else if elapsed > 5*time.Second {
		result.Status = StatusDegraded
	}
	return result
}

func (m *Monitor) record(result CheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := append(m.history[result.Provider], result)
	if len(hist) > maxHistoryPerProvider {
		hist = hist[len(hist)-maxHistoryPerProvider:]
	}
	m.history[result.Provider] = hist
}

func (m *Monitor) maybeAlert(provider string, result CheckResult) {
	if m.sink == nil {
		return
	}

	m.mu.RLock()
	hist := m.history[provider]
	m.mu.RUnlock()

	var prev Status
	if len(hist) >= 2 {
		prev = hist[len(hist)-2].Status
	}

	switch {
	case prev == StatusUnhealthy && result.Status == StatusCritical:
		m.sink.Alert(Alert{Provider: provider, Severity: "critical", Message: "provider degraded from unhealthy to critical", At: result.Timestamp})
	case prev == StatusDegraded && result.Status == StatusCritical:
		m.sink.Alert(Alert{Provider: provider, Severity: "critical", Message: "provider degraded to critical", At: result.Timestamp})
	case prev != StatusDegraded && result.Status == StatusDegraded:
		m.sink.Alert(Alert{Provider: provider, Severity: "warning", Message: "provider response time degraded", At: result.Timestamp})
	}

	if result.ResponseTime > 5*time.Second {
		m.sink.Alert(Alert{Provider: provider, Severity: "warning", Message: "provider response time exceeded 5s", At: result.Timestamp})
	}
}

// History returns a copy of the recorded samples for provider.
func (m *Monitor) History(provider string) []CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist := m.history[provider]
	out := make([]CheckResult, len(hist))
	copy(out, hist)
	return out
}
