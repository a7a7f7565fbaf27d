package observability

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 7*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, time.Millisecond)
	m.RecordError("/tickets", "POST", "VALIDATION_FAILED")

	requests, errs := m.Snapshot()
	if got := requests["/tickets|GET|200"]; got != 2 {
		t.Fatalf("expected 2 GET requests, got %d", got)
	}
	if got := requests["/tickets|POST|201"]; got != 1 {
		t.Fatalf("expected 1 POST request, got %d", got)
	}
	if got := errs["/tickets|POST|VALIDATION_FAILED"]; got != 1 {
		t.Fatalf("expected 1 recorded error, got %d", got)
	}
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/health", "GET", 200, 0)

	requests, _ := m.Snapshot()
	requests["/health|GET|200"] = 99

	fresh, _ := m.Snapshot()
	if got := fresh["/health|GET|200"]; got != 1 {
		t.Fatalf("snapshot must not share state with counters, got %d", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/health", "GET", 200, 0)
	m.RecordError("/health", "GET", "INTERNAL_ERROR")
}

func TestMetricsConcurrentRecording(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordRequest("/tickets", "GET", 200, 0)
			}
		}()
	}
	wg.Wait()

	requests, _ := m.Snapshot()
	if got := requests["/tickets|GET|200"]; got != 800 {
		t.Fatalf("expected 800 requests, got %d", got)
	}
}
