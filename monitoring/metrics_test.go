package monitoring

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorRecordAndSnapshot(t *testing.T) {
	collector := NewCollector()

	collector.RecordInference("k2", 3, 12*time.Millisecond, "")
	collector.RecordInference("k2", 1, 8*time.Millisecond, "preprocess")
	collector.RecordInference("tess", 2, 20*time.Millisecond, "")
	collector.RecordArtifactEvent()

	snap := collector.Snapshot()

	if snap.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", snap.TotalRequests)
	}
	if snap.TotalRows != 6 {
		t.Errorf("expected 6 rows, got %d", snap.TotalRows)
	}
	if snap.TotalErrors != 1 {
		t.Errorf("expected 1 error, got %d", snap.TotalErrors)
	}
	if snap.ArtifactEvents != 1 {
		t.Errorf("expected 1 artifact event, got %d", snap.ArtifactEvents)
	}

	k2 := snap.PerType["k2"]
	if k2.Requests != 2 || k2.Rows != 4 || k2.Errors != 1 {
		t.Errorf("unexpected k2 counters: %+v", k2)
	}
	if k2.ErrorsByKind["preprocess"] != 1 {
		t.Errorf("expected preprocess error count 1, got %d", k2.ErrorsByKind["preprocess"])
	}

	if snap.LatencyMS.P50 <= 0 {
		t.Errorf("expected positive p50, got %f", snap.LatencyMS.P50)
	}
	if snap.LatencyMS.P99 < snap.LatencyMS.P50 {
		t.Errorf("p99 %f below p50 %f", snap.LatencyMS.P99, snap.LatencyMS.P50)
	}
}

func TestCollectorBoundsLatencyHistory(t *testing.T) {
	collector := NewCollector()
	for i := 0; i < maxLatencySamples+100; i++ {
		collector.RecordInference("k2", 1, time.Millisecond, "")
	}

	collector.mu.RLock()
	n := len(collector.latencies)
	collector.mu.RUnlock()
	if n != maxLatencySamples {
		t.Errorf("expected history capped at %d, got %d", maxLatencySamples, n)
	}
}

func TestCollectorConcurrentRecording(t *testing.T) {
	collector := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				collector.RecordInference("kepler", 1, time.Millisecond, "")
				collector.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := collector.Snapshot()
	if snap.TotalRequests != 800 {
		t.Errorf("expected 800 requests, got %d", snap.TotalRequests)
	}
}
