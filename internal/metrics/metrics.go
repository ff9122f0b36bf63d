// Package metrics provides operational counters for the plugin core.
// Loader, registry and manager record into a shared *Metrics.
package metrics

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// Metrics tracks plugin loading and compression activity.
// All fields are safe for concurrent access.
type Metrics struct {
	// Loading metrics
	LibrariesLoaded     atomic.Int64
	LibrariesSkipped    atomic.Int64
	Registrations       atomic.Int64
	RegistrationsFailed atomic.Int64

	// Operation metrics
	CompressAttempts   atomic.Int64
	CompressFailures   atomic.Int64
	DecompressAttempts atomic.Int64
	DecompressFailures atomic.Int64
	BytesWritten       atomic.Int64

	// Timing metrics
	startTime     time.Time
	lastOperation atomic.Value // time.Time
	avgLatencyNs  atomic.Int64
	latencyCount  atomic.Int64
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Timestamp           time.Time `json:"timestamp"`
	Uptime              string    `json:"uptime"`
	LibrariesLoaded     int64     `json:"libraries_loaded"`
	LibrariesSkipped    int64     `json:"libraries_skipped"`
	Registrations       int64     `json:"registrations"`
	RegistrationsFailed int64     `json:"registrations_failed"`
	CompressAttempts    int64     `json:"compress_attempts"`
	CompressFailures    int64     `json:"compress_failures"`
	DecompressAttempts  int64     `json:"decompress_attempts"`
	DecompressFailures  int64     `json:"decompress_failures"`
	BytesWritten        int64     `json:"bytes_written"`
	AvgLatencyMs        float64   `json:"avg_latency_ms"`
	LastOperation       string    `json:"last_operation,omitempty"`
}

// NewMetrics creates a new Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordLatency records a single operation duration and updates the running average.
func (m *Metrics) RecordLatency(d time.Duration) {
	ns := d.Nanoseconds()
	count := m.latencyCount.Add(1)

	// Running average: newAvg = oldAvg + (newValue - oldAvg) / count
	for {
		oldAvg := m.avgLatencyNs.Load()
		newAvg := oldAvg + (ns-oldAvg)/count
		if m.avgLatencyNs.CompareAndSwap(oldAvg, newAvg) {
			break
		}
		count = m.latencyCount.Load()
		if count == 0 {
			count = 1
		}
	}
	m.lastOperation.Store(time.Now())
}

// RecordCompress counts one compress call and its latency.
func (m *Metrics) RecordCompress(d time.Duration, err error) {
	m.CompressAttempts.Add(1)
	if err != nil {
		m.CompressFailures.Add(1)
	}
	m.RecordLatency(d)
}

// RecordDecompress counts one decompress call and its latency.
func (m *Metrics) RecordDecompress(d time.Duration, err error) {
	m.DecompressAttempts.Add(1)
	if err != nil {
		m.DecompressFailures.Add(1)
	}
	m.RecordLatency(d)
}

// Uptime returns the duration since the metrics instance was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// StartTime returns when the metrics instance was created.
func (m *Metrics) StartTime() time.Time {
	return m.startTime
}

// AvgLatency returns the average recorded operation latency.
func (m *Metrics) AvgLatency() time.Duration {
	return time.Duration(m.avgLatencyNs.Load())
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Timestamp:           time.Now(),
		Uptime:              m.Uptime().Round(time.Millisecond).String(),
		LibrariesLoaded:     m.LibrariesLoaded.Load(),
		LibrariesSkipped:    m.LibrariesSkipped.Load(),
		Registrations:       m.Registrations.Load(),
		RegistrationsFailed: m.RegistrationsFailed.Load(),
		CompressAttempts:    m.CompressAttempts.Load(),
		CompressFailures:    m.CompressFailures.Load(),
		DecompressAttempts:  m.DecompressAttempts.Load(),
		DecompressFailures:  m.DecompressFailures.Load(),
		BytesWritten:        m.BytesWritten.Load(),
		AvgLatencyMs:        float64(m.avgLatencyNs.Load()) / float64(time.Millisecond),
	}

	if v := m.lastOperation.Load(); v != nil {
		if t, ok := v.(time.Time); ok && !t.IsZero() {
			snap.LastOperation = t.Format(time.RFC3339)
		}
	}

	return snap
}

// ToJSON returns a JSON-encoded representation of the current metrics snapshot.
func (m *Metrics) ToJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// Reset resets all counters to zero while preserving the start time.
func (m *Metrics) Reset() {
	m.LibrariesLoaded.Store(0)
	m.LibrariesSkipped.Store(0)
	m.Registrations.Store(0)
	m.RegistrationsFailed.Store(0)
	m.CompressAttempts.Store(0)
	m.CompressFailures.Store(0)
	m.DecompressAttempts.Store(0)
	m.DecompressFailures.Store(0)
	m.BytesWritten.Store(0)
	m.avgLatencyNs.Store(0)
	m.latencyCount.Store(0)
	m.lastOperation.Store(time.Time{})
}
