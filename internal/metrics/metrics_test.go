package metrics

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestNewMetrics verifies that a new Metrics instance is properly initialized.
func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	if m.LibrariesLoaded.Load() != 0 {
		t.Errorf("LibrariesLoaded = %d, want 0", m.LibrariesLoaded.Load())
	}
	if m.CompressAttempts.Load() != 0 {
		t.Errorf("CompressAttempts = %d, want 0", m.CompressAttempts.Load())
	}
	if m.DecompressAttempts.Load() != 0 {
		t.Errorf("DecompressAttempts = %d, want 0", m.DecompressAttempts.Load())
	}
}

// TestMetrics_LoadingCounters verifies loader and registry counter increments.
func TestMetrics_LoadingCounters(t *testing.T) {
	m := NewMetrics()

	m.LibrariesLoaded.Add(2)
	m.LibrariesSkipped.Add(1)
	m.Registrations.Add(3)
	m.RegistrationsFailed.Add(1)

	if m.LibrariesLoaded.Load() != 2 {
		t.Errorf("LibrariesLoaded = %d, want 2", m.LibrariesLoaded.Load())
	}
	if m.LibrariesSkipped.Load() != 1 {
		t.Errorf("LibrariesSkipped = %d, want 1", m.LibrariesSkipped.Load())
	}
	if m.Registrations.Load() != 3 {
		t.Errorf("Registrations = %d, want 3", m.Registrations.Load())
	}
	if m.RegistrationsFailed.Load() != 1 {
		t.Errorf("RegistrationsFailed = %d, want 1", m.RegistrationsFailed.Load())
	}
}

// TestMetrics_RecordOperations verifies attempt and failure counting.
func TestMetrics_RecordOperations(t *testing.T) {
	m := NewMetrics()
	boom := errors.New("boom")

	m.RecordCompress(time.Millisecond, nil)
	m.RecordCompress(time.Millisecond, boom)
	m.RecordDecompress(time.Millisecond, nil)

	if m.CompressAttempts.Load() != 2 {
		t.Errorf("CompressAttempts = %d, want 2", m.CompressAttempts.Load())
	}
	if m.CompressFailures.Load() != 1 {
		t.Errorf("CompressFailures = %d, want 1", m.CompressFailures.Load())
	}
	if m.DecompressAttempts.Load() != 1 {
		t.Errorf("DecompressAttempts = %d, want 1", m.DecompressAttempts.Load())
	}
	if m.DecompressFailures.Load() != 0 {
		t.Errorf("DecompressFailures = %d, want 0", m.DecompressFailures.Load())
	}
	if m.AvgLatency() <= 0 {
		t.Errorf("AvgLatency = %v, want > 0", m.AvgLatency())
	}
}

// TestMetrics_RecordLatency verifies latency recording and averaging.
func TestMetrics_RecordLatency(t *testing.T) {
	m := NewMetrics()

	if m.AvgLatency() != 0 {
		t.Errorf("initial AvgLatency = %v, want 0", m.AvgLatency())
	}

	m.RecordLatency(100 * time.Millisecond)
	avg := m.AvgLatency()
	if avg < 99*time.Millisecond || avg > 101*time.Millisecond {
		t.Errorf("AvgLatency after 1 recording = %v, want ~100ms", avg)
	}

	m.RecordLatency(200 * time.Millisecond)
	avg = m.AvgLatency()
	if avg < 149*time.Millisecond || avg > 151*time.Millisecond {
		t.Errorf("AvgLatency after 2 recordings = %v, want ~150ms", avg)
	}
}

// TestMetrics_Uptime verifies uptime grows from creation.
func TestMetrics_Uptime(t *testing.T) {
	m := NewMetrics()
	time.Sleep(10 * time.Millisecond)

	if m.Uptime() < 10*time.Millisecond {
		t.Errorf("Uptime = %v, want >= 10ms", m.Uptime())
	}
	if !m.StartTime().Before(time.Now()) {
		t.Errorf("StartTime = %v, want a time in the past", m.StartTime())
	}
}

// TestMetrics_Snapshot verifies that Snapshot captures all current values.
func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()

	m.LibrariesLoaded.Store(4)
	m.LibrariesSkipped.Store(1)
	m.Registrations.Store(5)
	m.CompressAttempts.Store(7)
	m.CompressFailures.Store(2)
	m.DecompressAttempts.Store(3)
	m.BytesWritten.Store(1024)
	m.RecordLatency(50 * time.Millisecond)

	snap := m.Snapshot()

	if snap.LibrariesLoaded != 4 {
		t.Errorf("snap.LibrariesLoaded = %d, want 4", snap.LibrariesLoaded)
	}
	if snap.LibrariesSkipped != 1 {
		t.Errorf("snap.LibrariesSkipped = %d, want 1", snap.LibrariesSkipped)
	}
	if snap.Registrations != 5 {
		t.Errorf("snap.Registrations = %d, want 5", snap.Registrations)
	}
	if snap.CompressAttempts != 7 {
		t.Errorf("snap.CompressAttempts = %d, want 7", snap.CompressAttempts)
	}
	if snap.CompressFailures != 2 {
		t.Errorf("snap.CompressFailures = %d, want 2", snap.CompressFailures)
	}
	if snap.DecompressAttempts != 3 {
		t.Errorf("snap.DecompressAttempts = %d, want 3", snap.DecompressAttempts)
	}
	if snap.BytesWritten != 1024 {
		t.Errorf("snap.BytesWritten = %d, want 1024", snap.BytesWritten)
	}
	if snap.AvgLatencyMs <= 0 {
		t.Errorf("snap.AvgLatencyMs = %f, want > 0", snap.AvgLatencyMs)
	}
	if snap.LastOperation == "" {
		t.Error("snap.LastOperation is empty after RecordLatency")
	}
}

// TestMetrics_SnapshotNoOperation verifies snapshot before any operation ran.
func TestMetrics_SnapshotNoOperation(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()

	if snap.LastOperation != "" {
		t.Errorf("snap.LastOperation = %q, want empty", snap.LastOperation)
	}
}

// TestMetrics_ToJSON_ValidStructure verifies that all expected JSON fields are present.
func TestMetrics_ToJSON_ValidStructure(t *testing.T) {
	m := NewMetrics()
	m.RecordLatency(10 * time.Millisecond)

	data, err := m.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}

	expectedFields := []string{
		"timestamp", "uptime",
		"libraries_loaded", "libraries_skipped", "registrations", "registrations_failed",
		"compress_attempts", "compress_failures", "decompress_attempts", "decompress_failures",
		"bytes_written", "avg_latency_ms",
	}

	for _, field := range expectedFields {
		if _, exists := raw[field]; !exists {
			t.Errorf("JSON missing field: %s", field)
		}
	}
}

// TestMetrics_Reset verifies that Reset clears all counters.
func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.LibrariesLoaded.Store(10)
	m.CompressAttempts.Store(50)
	m.DecompressFailures.Store(20)
	m.RecordLatency(100 * time.Millisecond)

	m.Reset()

	if m.LibrariesLoaded.Load() != 0 {
		t.Errorf("after Reset, LibrariesLoaded = %d, want 0", m.LibrariesLoaded.Load())
	}
	if m.CompressAttempts.Load() != 0 {
		t.Errorf("after Reset, CompressAttempts = %d, want 0", m.CompressAttempts.Load())
	}
	if m.DecompressFailures.Load() != 0 {
		t.Errorf("after Reset, DecompressFailures = %d, want 0", m.DecompressFailures.Load())
	}
	if m.AvgLatency() != 0 {
		t.Errorf("after Reset, AvgLatency = %v, want 0", m.AvgLatency())
	}
	if m.Snapshot().LastOperation != "" {
		t.Error("after Reset, LastOperation should be empty")
	}
}

// TestMetrics_ConcurrentAccess verifies thread safety of all metric operations.
func TestMetrics_ConcurrentAccess(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	numGoroutines := 20
	opsPerGoroutine := 100

	// Concurrent writers for loading metrics.
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.LibrariesLoaded.Add(1)
				m.Registrations.Add(1)
			}
		}()
	}

	// Concurrent operation recording.
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.RecordCompress(time.Duration(j)*time.Microsecond, nil)
				m.RecordDecompress(time.Duration(j)*time.Microsecond, nil)
			}
		}()
	}

	// Concurrent readers.
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				_ = m.Snapshot()
				_ = m.Uptime()
				_ = m.AvgLatency()
			}
		}()
	}

	wg.Wait()

	expected := int64(numGoroutines * opsPerGoroutine)
	if m.LibrariesLoaded.Load() != expected {
		t.Errorf("LibrariesLoaded = %d, want %d", m.LibrariesLoaded.Load(), expected)
	}
	if m.CompressAttempts.Load() != expected {
		t.Errorf("CompressAttempts = %d, want %d", m.CompressAttempts.Load(), expected)
	}
	if m.DecompressAttempts.Load() != expected {
		t.Errorf("DecompressAttempts = %d, want %d", m.DecompressAttempts.Load(), expected)
	}
}

// TestMetrics_ConcurrentToJSON verifies thread safety of JSON serialization.
func TestMetrics_ConcurrentToJSON(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup

	// Writers.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.LibrariesSkipped.Add(1)
				m.RecordCompress(time.Millisecond, nil)
			}
		}()
	}

	// Concurrent JSON serialization.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				data, err := m.ToJSON()
				if err != nil {
					t.Errorf("ToJSON() error: %v", err)
					return
				}
				if len(data) == 0 {
					t.Error("ToJSON() returned empty data")
					return
				}
			}
		}()
	}

	wg.Wait()
}
