package perf

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// Kind distinguishes HTTP requests from database queries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Entry is one timing sample.
type Entry struct {
	Kind     Kind
	Label    string // "GET /admin/reports" or "SELECT attendance"
	Status   int    // HTTP status, 0 for queries
	Duration time.Duration
	At       time.Time
	Slow     bool
}

// Collector keeps the most recent samples in a fixed-size ring.
// Record never blocks on aggregation; Summary does the work on read.
type Collector struct {
	mu    sync.Mutex
	ring  []Entry
	next  int
	total int64
}

// NewCollector creates a collector holding up to size samples.
// POST: size <= 0 falls back to DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores a sample, overwriting the oldest one when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.total++
	c.mu.Unlock()
}

// Total returns the number of samples ever recorded.
func (c *Collector) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Stat aggregates samples sharing a label.
type Stat struct {
	Label string
	Count int
	Avg   time.Duration
	Max   time.Duration
}

// Summary is the dashboard view of recent samples.
type Summary struct {
	Requests       int
	Queries        int
	SlowRequests   int
	SlowQueries    int
	RequestP50     time.Duration
	RequestP95     time.Duration
	SlowestRoutes  []Stat
	SlowestQueries []Stat
}

// Summary aggregates samples recorded at or after since, keeping the topN
// slowest labels of each kind by average duration.
func (c *Collector) Summary(since time.Time, topN int) Summary {
	c.mu.Lock()
	samples := make([]Entry, len(c.ring))
	copy(samples, c.ring)
	c.mu.Unlock()

	var sum Summary
	var durations []time.Duration
	routes := map[string]*acc{}
	queries := map[string]*acc{}

	for _, e := range samples {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		if e.Kind == KindRequest {
			sum.Requests++
			if e.Slow {
				sum.SlowRequests++
			}
			durations = append(durations, e.Duration)
			add(routes, e)
			continue
		}
		sum.Queries++
		if e.Slow {
			sum.SlowQueries++
		}
		add(queries, e)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	sum.RequestP50 = percentile(durations, 0.50)
	sum.RequestP95 = percentile(durations, 0.95)
	sum.SlowestRoutes = slowest(routes, topN)
	sum.SlowestQueries = slowest(queries, topN)
	return sum
}

type acc struct {
	count int
	total time.Duration
	max   time.Duration
}

func add(m map[string]*acc, e Entry) {
	a := m[e.Label]
	if a == nil {
		a = &acc{}
		m[e.Label] = a
	}
	a.count++
	a.total += e.Duration
	if e.Duration > a.max {
		a.max = e.Duration
	}
}

func slowest(m map[string]*acc, n int) []Stat {
	out := make([]Stat, 0, len(m))
	for label, a := range m {
		out = append(out, Stat{Label: label, Count: a.count, Avg: a.total / time.Duration(a.count), Max: a.max})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Avg != out[j].Avg {
			return out[i].Avg > out[j].Avg
		}
		return out[i].Label < out[j].Label
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// percentile uses nearest-rank on a sorted slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}
