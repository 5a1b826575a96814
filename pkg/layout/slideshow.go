package layout

import (
	"sync"
	"time"

	"github.com/vanderheijden86/orgview/pkg/model"
)

const (
	// SlideLimit caps how many members the slideshow cycles through.
	SlideLimit = 20
	// DefaultSlideInterval is the auto-advance period.
	DefaultSlideInterval = 4 * time.Second
)

// Ticker is the subset of *time.Ticker the slideshow needs.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.C }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// SlideshowOption configures a Slideshow.
type SlideshowOption func(*Slideshow)

// WithTickerFunc replaces the ticker source, mainly for tests.
func WithTickerFunc(f TickerFunc) SlideshowOption {
	return func(s *Slideshow) {
		s.newTicker = f
	}
}

// Slideshow cycles through the first SlideLimit members of a chart. At most
// one ticker is active at any time: Start replaces a running ticker rather
// than adding a second one.
type Slideshow struct {
	mu        sync.Mutex
	members   []model.Member
	index     int
	playing   bool
	closed    bool
	interval  time.Duration
	newTicker TickerFunc

	ticker Ticker
	stop   chan struct{}
	run    uint64 // incremented per Start; stale ticks are ignored

	ticks chan int
	done  chan struct{}
}

// NewSlideshow builds a stopped slideshow over members. A non-positive
// interval selects DefaultSlideInterval.
func NewSlideshow(members []model.Member, interval time.Duration, opts ...SlideshowOption) *Slideshow {
	if interval <= 0 {
		interval = DefaultSlideInterval
	}
	n := len(members)
	if n > SlideLimit {
		n = SlideLimit
	}
	s := &Slideshow{
		members:   append([]model.Member(nil), members[:n]...),
		interval:  interval,
		newTicker: newTimeTicker,
		ticks:     make(chan int, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ticks delivers the new slide index after each automatic advance. Sends
// never block; a slow reader only sees the latest pending index.
func (s *Slideshow) Ticks() <-chan int {
	return s.ticks
}

// Done is closed by Close. Readers of Ticks select on it to stop waiting.
func (s *Slideshow) Done() <-chan struct{} {
	return s.done
}

// Start begins auto-advancing, restarting the timer if it is already
// running. It does nothing once the slideshow is closed or when there is
// nothing to show.
func (s *Slideshow) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.members) == 0 {
		return
	}
	s.stopLocked()
	s.run++
	s.ticker = s.newTicker(s.interval)
	s.stop = make(chan struct{})
	s.playing = true
	go s.loop(s.run, s.ticker, s.stop)
}

// Stop halts auto-advance. Stopping a stopped slideshow is a no-op.
func (s *Slideshow) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.playing = false
}

// Close stops the slideshow for good; later Starts are ignored.
func (s *Slideshow) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.playing = false
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

func (s *Slideshow) stopLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.stop = nil
}

// TogglePlay pauses a playing slideshow or resumes a paused one.
func (s *Slideshow) TogglePlay() {
	if s.Playing() {
		s.Stop()
		return
	}
	s.Start()
}

func (s *Slideshow) loop(run uint64, t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			s.mu.Lock()
			if s.run != run || s.ticker == nil {
				s.mu.Unlock()
				return
			}
			s.index = (s.index + 1) % len(s.members)
			idx := s.index
			s.mu.Unlock()

			select {
			case s.ticks <- idx:
			default:
				// Replace the pending value with the newest index.
				select {
				case <-s.ticks:
				default:
				}
				select {
				case s.ticks <- idx:
				default:
				}
			}
		}
	}
}

// Next advances one slide, wrapping to the first.
func (s *Slideshow) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.members) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.members)
}

// Prev goes back one slide, wrapping to the last.
func (s *Slideshow) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.members) == 0 {
		return
	}
	s.index = (s.index - 1 + len(s.members)) % len(s.members)
}

// Index returns the current slide position.
func (s *Slideshow) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the member on the current slide.
func (s *Slideshow) Current() (model.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.members) == 0 {
		return model.Member{}, false
	}
	return s.members[s.index], true
}

// Playing reports whether auto-advance is on.
func (s *Slideshow) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Len returns the number of slides.
func (s *Slideshow) Len() int {
	return len(s.members)
}

// Interval returns the auto-advance period.
func (s *Slideshow) Interval() time.Duration {
	return s.interval
}
