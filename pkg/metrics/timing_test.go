package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(6 * time.Millisecond)

	if m.Count() != 3 {
		t.Errorf("expected count 3, got %d", m.Count())
	}
	if m.MinNs() != int64(2*time.Millisecond) {
		t.Errorf("unexpected min %d", m.MinNs())
	}
	if m.MaxNs() != int64(6*time.Millisecond) {
		t.Errorf("unexpected max %d", m.MaxNs())
	}
	if m.AvgNs() != int64(4*time.Millisecond) {
		t.Errorf("unexpected avg %d", m.AvgNs())
	}
	st := m.Stats()
	if st.Name != "test" || st.AvgMs != 4 {
		t.Errorf("unexpected stats %+v", st)
	}

	m.Reset()
	if m.Count() != 0 || m.AvgNs() != 0 {
		t.Error("reset should clear measurements")
	}
}

func TestTimingMetricConcurrent(t *testing.T) {
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()
	if m.Count() != 50 {
		t.Errorf("expected 50 records, got %d", m.Count())
	}
	if m.MinNs() != int64(time.Microsecond) || m.MaxNs() != int64(50*time.Microsecond) {
		t.Errorf("unexpected min/max %d/%d", m.MinNs(), m.MaxNs())
	}
}

func TestTimerWithCallback(t *testing.T) {
	m := newTimingMetric("cb")
	var got time.Duration
	TimerWithCallback(m, func(d time.Duration) { got = d })()
	if m.Count() != 1 {
		t.Errorf("expected one record, got %d", m.Count())
	}
	if got < 0 {
		t.Errorf("callback got negative duration %v", got)
	}
}

func TestDisabledSkipsRecording(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	c := newCounter("off")
	c.Inc()
	if m.Count() != 0 || c.Value() != 0 {
		t.Error("disabled metrics must not record")
	}
}

func TestSnapshotAndResetAll(t *testing.T) {
	ResetAll()
	OrgLoad.Record(time.Millisecond)
	MembersFetched.Add(10)
	FetchErrors.Inc()

	s := TakeSnapshot()
	if len(s.Timings) != 1 || s.Timings[0].Name != "org_load" {
		t.Errorf("unexpected timings %+v", s.Timings)
	}
	if s.Counters["members_fetched"] != 10 || s.Counters["fetch_errors"] != 1 {
		t.Errorf("unexpected counters %+v", s.Counters)
	}
	if _, ok := s.Counters["stale_loads"]; ok {
		t.Error("zero counters should be omitted")
	}

	ResetAll()
	if s := TakeSnapshot(); len(s.Timings) != 0 || len(s.Counters) != 0 {
		t.Errorf("expected empty snapshot after reset, got %+v", s)
	}
}
