// Package monitoring collects serving metrics and streams them to
// dashboard clients.
package monitoring

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// maxLatencySamples bounds the latency history used for percentiles.
const maxLatencySamples = 1000

// TypeCounters aggregates per-dataset-type request counts.
type TypeCounters struct {
	Requests     int64            `json:"requests"`
	Rows         int64            `json:"rows"`
	Errors       int64            `json:"errors"`
	ErrorsByKind map[string]int64 `json:"errors_by_kind,omitempty"`
}

// LatencySummary summarizes recent request latencies in milliseconds.
type LatencySummary struct {
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	UptimeSeconds  float64                 `json:"uptime_seconds"`
	TotalRequests  int64                   `json:"total_requests"`
	TotalRows      int64                   `json:"total_rows"`
	TotalErrors    int64                   `json:"total_errors"`
	ArtifactEvents int64                   `json:"artifact_events"`
	PerType        map[string]TypeCounters `json:"per_type"`
	LatencyMS      LatencySummary          `json:"latency_ms"`
	Timestamp      time.Time               `json:"timestamp"`
}

// Collector accumulates inference metrics. Safe for concurrent use.
type Collector struct {
	mu             sync.RWMutex
	startTime      time.Time
	perType        map[string]*TypeCounters
	latencies      []float64
	artifactEvents int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		perType:   make(map[string]*TypeCounters),
	}
}

// RecordInference records one request outcome. errKind is empty on success.
func (c *Collector) RecordInference(datasetType string, rows int, d time.Duration, errKind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counters, ok := c.perType[datasetType]
	if !ok {
		counters = &TypeCounters{ErrorsByKind: make(map[string]int64)}
		c.perType[datasetType] = counters
	}
	counters.Requests++
	counters.Rows += int64(rows)
	if errKind != "" {
		counters.Errors++
		counters.ErrorsByKind[errKind]++
	}

	c.latencies = append(c.latencies, float64(d.Milliseconds()))
	if len(c.latencies) > maxLatencySamples {
		c.latencies = c.latencies[len(c.latencies)-maxLatencySamples:]
	}
}

// RecordArtifactEvent counts a change seen by the artifact watcher.
func (c *Collector) RecordArtifactEvent() {
	c.mu.Lock()
	c.artifactEvents++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds:  time.Since(c.startTime).Seconds(),
		ArtifactEvents: c.artifactEvents,
		PerType:        make(map[string]TypeCounters, len(c.perType)),
		Timestamp:      time.Now(),
	}
	for name, counters := range c.perType {
		copied := TypeCounters{
			Requests:     counters.Requests,
			Rows:         counters.Rows,
			Errors:       counters.Errors,
			ErrorsByKind: make(map[string]int64, len(counters.ErrorsByKind)),
		}
		for kind, n := range counters.ErrorsByKind {
			copied.ErrorsByKind[kind] = n
		}
		snap.PerType[name] = copied
		snap.TotalRequests += counters.Requests
		snap.TotalRows += counters.Rows
		snap.TotalErrors += counters.Errors
	}

	if len(c.latencies) > 0 {
		samples := stats.Float64Data(c.latencies)
		snap.LatencyMS.Mean, _ = stats.Mean(samples)
		snap.LatencyMS.P50, _ = stats.Percentile(samples, 50)
		snap.LatencyMS.P95, _ = stats.Percentile(samples, 95)
		snap.LatencyMS.P99, _ = stats.Percentile(samples, 99)
	}
	return snap
}
