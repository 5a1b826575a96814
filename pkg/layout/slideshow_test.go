package layout

import (
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/orgview/pkg/testutil"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) newTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

func waitTick(t *testing.T, s *Slideshow) int {
	t.Helper()
	select {
	case idx := <-s.Ticks():
		return idx
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for slideshow tick")
		return -1
	}
}

func TestSlideshowCapsMembers(t *testing.T) {
	s := NewSlideshow(testutil.NewDefault().Random(30), 0)
	if s.Len() != SlideLimit {
		t.Errorf("expected %d slides, got %d", SlideLimit, s.Len())
	}
	if s.Interval() != DefaultSlideInterval {
		t.Errorf("expected default interval, got %v", s.Interval())
	}
}

func TestSlideshowManualNavigationWraps(t *testing.T) {
	s := NewSlideshow(testutil.NewDefault().Chain(3), time.Second)
	s.Prev()
	if s.Index() != 2 {
		t.Errorf("Prev from 0 should wrap to 2, got %d", s.Index())
	}
	s.Next()
	if s.Index() != 0 {
		t.Errorf("Next from 2 should wrap to 0, got %d", s.Index())
	}
}

func TestSlideshowAutoAdvance(t *testing.T) {
	clock := &fakeClock{}
	s := NewSlideshow(testutil.NewDefault().Chain(3), time.Second, WithTickerFunc(clock.newTicker))
	defer s.Close()

	s.Start()
	if !s.Playing() {
		t.Fatal("expected slideshow to be playing")
	}
	clock.last().c <- time.Now()
	if idx := waitTick(t, s); idx != 1 {
		t.Errorf("expected index 1 after first tick, got %d", idx)
	}
	clock.last().c <- time.Now()
	waitTick(t, s)
	clock.last().c <- time.Now()
	if idx := waitTick(t, s); idx != 0 {
		t.Errorf("expected wrap to 0, got %d", idx)
	}
}

func TestSlideshowSingleTimer(t *testing.T) {
	clock := &fakeClock{}
	s := NewSlideshow(testutil.NewDefault().Chain(3), time.Second, WithTickerFunc(clock.newTicker))
	defer s.Close()

	s.Start()
	s.Start()
	s.Start()
	if n := clock.active(); n != 1 {
		t.Fatalf("expected exactly one active ticker after restarts, got %d", n)
	}
	s.Stop()
	s.Stop()
	if n := clock.active(); n != 0 {
		t.Fatalf("expected no active ticker after stop, got %d", n)
	}
	if s.Playing() {
		t.Error("stopped slideshow should not be playing")
	}
}

func TestSlideshowTogglePlay(t *testing.T) {
	clock := &fakeClock{}
	s := NewSlideshow(testutil.NewDefault().Chain(3), time.Second, WithTickerFunc(clock.newTicker))
	defer s.Close()

	s.TogglePlay()
	if !s.Playing() || clock.active() != 1 {
		t.Fatal("toggle should start playback")
	}
	s.TogglePlay()
	if s.Playing() || clock.active() != 0 {
		t.Fatal("toggle should pause playback")
	}
}

func TestSlideshowCloseBlocksStart(t *testing.T) {
	clock := &fakeClock{}
	s := NewSlideshow(testutil.NewDefault().Chain(3), time.Second, WithTickerFunc(clock.newTicker))
	s.Start()
	s.Close()
	s.Start()
	if s.Playing() || clock.active() != 0 {
		t.Error("closed slideshow must not restart")
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done should be closed after Close")
	}
	s.Close() // second Close must not panic
}

func TestSlideshowEmpty(t *testing.T) {
	s := NewSlideshow(nil, time.Second)
	s.Start()
	s.Next()
	s.Prev()
	if s.Playing() {
		t.Error("empty slideshow should not play")
	}
	if _, ok := s.Current(); ok {
		t.Error("empty slideshow has no current slide")
	}
}
