package portalauth

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the portal engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the portal engine.
	MetricLoginFailure
	// MetricVerifySuccess is an exported constant or variable used by the portal engine.
	MetricVerifySuccess
	// MetricVerifyFailure is an exported constant or variable used by the portal engine.
	MetricVerifyFailure
	// MetricPortalRejected is an exported constant or variable used by the portal engine.
	MetricPortalRejected
	// MetricLogout is an exported constant or variable used by the portal engine.
	MetricLogout
	// MetricSessionExpired is an exported constant or variable used by the portal engine.
	MetricSessionExpired
	// MetricExpirationWarning is an exported constant or variable used by the portal engine.
	MetricExpirationWarning
	// MetricHydrateSuccess is an exported constant or variable used by the portal engine.
	MetricHydrateSuccess
	// MetricHydrateEmpty is an exported constant or variable used by the portal engine.
	MetricHydrateEmpty
	// MetricAgencyCreated is an exported constant or variable used by the portal engine.
	MetricAgencyCreated
	// MetricAgencyCreationFailure is an exported constant or variable used by the portal engine.
	MetricAgencyCreationFailure
	// MetricStaleLoginDiscarded is an exported constant or variable used by the portal engine.
	MetricStaleLoginDiscarded
	// MetricRoleOverride is an exported constant or variable used by the portal engine.
	MetricRoleOverride
	// MetricNotificationSuppressed is an exported constant or variable used by the portal engine.
	MetricNotificationSuppressed

	metricIDCount
)

// Metrics holds atomic counters for engine observability. When disabled,
// every operation is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter. Out-of-range IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a deep copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
