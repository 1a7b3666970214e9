package goGuard

import (
	"sync/atomic"
)

// MetricID identifies one authorization counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts tokens accepted by Login.
	MetricLoginSuccess MetricID = iota
	// MetricLoginRejected counts tokens Login could not decode.
	MetricLoginRejected
	// MetricLoginUnknownRole counts accepted tokens carrying a role outside the known set.
	MetricLoginUnknownRole
	// MetricLoginPersistFailure counts logins abandoned because storage failed.
	MetricLoginPersistFailure
	// MetricLogout counts Logout calls.
	MetricLogout
	// MetricRevalidateConfirmed counts ticks that found a valid primary token.
	MetricRevalidateConfirmed
	// MetricRevalidateInvalidated counts ticks that cleared a malformed or expired token.
	MetricRevalidateInvalidated
	// MetricRevalidateFallbackRestored counts optimistic restores from the fallback tier.
	MetricRevalidateFallbackRestored
	// MetricRevalidateNoSession counts ticks that found neither tier populated.
	MetricRevalidateNoSession
	// MetricRevalidateStorageError counts ticks skipped because a tier read failed.
	MetricRevalidateStorageError
	// MetricStorageClearFailure counts failed tier clears.
	MetricStorageClearFailure
	// MetricRouteAllowed counts navigations let through by the route guard.
	MetricRouteAllowed
	// MetricRouteSignIn counts navigations redirected to sign-in.
	MetricRouteSignIn
	// MetricRouteUnauthorized counts navigations redirected to the unauthorized page.
	MetricRouteUnauthorized
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters. A nil or disabled Metrics ignores Inc.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics returns counters enabled per cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether Inc records anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield an empty map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}

// MetricsSnapshot lets *Metrics serve directly as an exporter source.
func (m *Metrics) MetricsSnapshot() MetricsSnapshot {
	return m.Snapshot()
}
