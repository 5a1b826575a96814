package metrics

import "sync/atomic"

// Counter is a monotonically increasing event count.
type Counter struct {
	name string
	n    int64
}

func newCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc adds one to the counter.
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds delta to the counter.
func (c *Counter) Add(delta int64) {
	if !enabled {
		return
	}
	atomic.AddInt64(&c.n, delta)
}

// Name returns the counter name.
func (c *Counter) Name() string {
	return c.name
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.n)
}

// Reset zeroes the counter.
func (c *Counter) Reset() {
	atomic.StoreInt64(&c.n, 0)
}

// Global counters for directory traffic.
var (
	MembersFetched = newCounter("members_fetched")
	PhotosFetched  = newCounter("photos_fetched")
	FetchErrors    = newCounter("fetch_errors")
	DemoFallbacks  = newCounter("demo_fallbacks")
	StaleLoads     = newCounter("stale_loads")
)

// AllCounters returns all registered counters.
func AllCounters() []*Counter {
	return []*Counter{
		MembersFetched,
		PhotosFetched,
		FetchErrors,
		DemoFallbacks,
		StaleLoads,
	}
}

// Snapshot is the serializable view of every metric with data.
type Snapshot struct {
	Timings  []TimingStats    `json:"timings,omitempty"`
	Counters map[string]int64 `json:"counters,omitempty"`
}

// TakeSnapshot collects the current timing stats and non-zero counters.
func TakeSnapshot() Snapshot {
	s := Snapshot{Timings: AllTimingStats()}
	for _, c := range AllCounters() {
		if v := c.Value(); v > 0 {
			if s.Counters == nil {
				s.Counters = make(map[string]int64)
			}
			s.Counters[c.Name()] = v
		}
	}
	return s
}
