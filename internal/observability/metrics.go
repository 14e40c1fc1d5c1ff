package observability

import (
	"strconv"
	"sync"
	"time"
)

// RouteStats aggregates requests for one method, route and status.
type RouteStats struct {
	Count         int64         `json:"count"`
	TotalDuration time.Duration `json:"total_duration_ns"`
}

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]RouteStats
	errors   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]RouteStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a finished request and accumulates its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := metricKey(route, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.requests[key]
	stats.Count++
	stats.TotalDuration += duration
	m.requests[key] = stats
}

// RecordError counts a request that ended with the given error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[metricKey(route, method, code)]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() (map[string]RouteStats, map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	requests := make(map[string]RouteStats, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	errs := make(map[string]int64, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	return requests, errs
}

func metricKey(route, method, suffix string) string {
	return method + " " + route + "|" + suffix
}
