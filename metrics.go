package sessauth

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected login requests.
	MetricLoginFailure
	// MetricVerifySuccess counts tokens accepted by Verify.
	MetricVerifySuccess
	// MetricVerifyFailure counts tokens rejected by Verify.
	MetricVerifyFailure
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure
	// MetricLogout counts logout operations, including idempotent repeats.
	MetricLogout

	metricIDCount
)

// metricNames maps counter IDs to their Prometheus-facing names.
var metricNames = [metricIDCount]string{
	MetricLoginSuccess:   "login_success",
	MetricLoginFailure:   "login_failure",
	MetricVerifySuccess:  "verify_success",
	MetricVerifyFailure:  "verify_failure",
	MetricRefreshSuccess: "refresh_success",
	MetricRefreshFailure: "refresh_failure",
	MetricLogout:         "logout",
}

// MetricName returns the exposition name for id, or "" for an unknown id.
func MetricName(id MetricID) string {
	if id >= metricIDCount {
		return ""
	}
	return metricNames[id]
}

// paddedCounter keeps hot counters on separate cache lines.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics is a fixed set of lock-free counters. A nil *Metrics is a valid
// no-op receiver.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	return s
}
