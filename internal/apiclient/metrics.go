package apiclient

import (
	"sync/atomic"
	"time"
)

// Metrics tracks calls made through one Client
type Metrics struct {
	calls    atomic.Int64
	errors   atomic.Int64
	timeouts atomic.Int64
	latency  atomic.Int64 // Total latency in nanoseconds
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Calls        int64
	Errors       int64
	Timeouts     int64
	TotalLatency time.Duration
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Calls:        m.calls.Load(),
		Errors:       m.errors.Load(),
		Timeouts:     m.timeouts.Load(),
		TotalLatency: time.Duration(m.latency.Load()),
	}
}

// Reset zeroes all counters
func (m *Metrics) Reset() {
	m.calls.Store(0)
	m.errors.Store(0)
	m.timeouts.Store(0)
	m.latency.Store(0)
}

// record counts a finished call; failed covers transport errors and non-2xx.
func (m *Metrics) record(duration time.Duration, failed, timedOut bool) {
	m.calls.Add(1)
	m.latency.Add(duration.Nanoseconds())
	if failed {
		m.errors.Add(1)
	}
	if timedOut {
		m.timeouts.Add(1)
	}
}

// AverageLatency returns the mean call latency
func (s MetricsSnapshot) AverageLatency() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Calls)
}

// ErrorRate returns the error rate as a percentage
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Calls) * 100
}
