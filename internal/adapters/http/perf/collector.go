// Package perf keeps a bounded in-memory window of request and query timings
// for the admin performance view.
package perf

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /cliente/panel" or "SELECT users"
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entries are overwritten; aggregation happens on read.
type Collector struct {
	mu       sync.Mutex
	entries  []Entry
	pos      int
	requests int64
	queries  int64
}

// NewCollector creates a collector holding the last size entries.
// PRE: size > 0 (non-positive sizes fall back to DefaultRingSize)
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	if e.Kind == KindQuery {
		c.queries++
	} else {
		c.requests++
	}
	c.mu.Unlock()
}

// TotalRecorded returns the number of entries ever recorded, of either kind.
func (c *Collector) TotalRecorded() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests + c.queries
}

// Snapshot is the aggregated view served by the admin performance endpoint.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRequests  int64      `json:"total_requests"`
	TotalQueries   int64      `json:"total_queries"`
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	ServerErrors   int        `json:"server_errors"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// PathStat aggregates timing for one request path or SQL statement label.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot aggregates entries recorded at or after since. It sorts, so it is
// meant for on-demand admin views, not hot paths.
// PRE: topN > 0
// POST: Returns percentiles over requests in the window and the topN slowest paths and queries
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	snap := Snapshot{Since: since, TotalRequests: c.requests, TotalQueries: c.queries}
	c.mu.Unlock()

	var durations []float64
	requestStats := make(map[string]*PathStat)
	queryStats := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats := queryStats
		if e.Kind == KindRequest {
			stats = requestStats
			durations = append(durations, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		}
		s, ok := stats[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			stats[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
	}

	snap.SlowestPaths = topByAvg(requestStats, topN)
	snap.SlowestQueries = topByAvg(queryStats, topN)

	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n stats with the highest average, ties broken by path.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
