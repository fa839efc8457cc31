package effects

import (
	"sync"
	"time"
)

// PointerEvent is a pointer move in viewport pixels.
type PointerEvent struct {
	X  float64
	Y  float64
	At time.Time
}

// ScrollEvent reports the section layout after a scroll. A positive
// Width and Height also resize the viewport.
type ScrollEvent struct {
	Sections []SectionRect
	Width    float64
	Height   float64
	At       time.Time
}

// PointerSource delivers pointer moves. Callers must call release exactly
// once when they stop listening.
type PointerSource interface {
	SubscribePointer() (events <-chan PointerEvent, release func())
}

// ScrollSource delivers scroll and resize reports. Callers must call
// release exactly once when they stop listening.
type ScrollSource interface {
	SubscribeScroll() (events <-chan ScrollEvent, release func())
}

// Feed is a channel-backed PointerSource and ScrollSource for a single
// consumer. Pushes never block: when the consumer lags, events are dropped.
type Feed struct {
	pointer chan PointerEvent
	scroll  chan ScrollEvent

	mu   sync.Mutex
	subs int
}

// NewFeed creates a feed buffering up to buf events per kind.
func NewFeed(buf int) *Feed {
	if buf <= 0 {
		buf = 16
	}
	return &Feed{
		pointer: make(chan PointerEvent, buf),
		scroll:  make(chan ScrollEvent, buf),
	}
}

// SubscribePointer implements PointerSource.
func (f *Feed) SubscribePointer() (<-chan PointerEvent, func()) {
	return f.pointer, f.acquire()
}

// SubscribeScroll implements ScrollSource.
func (f *Feed) SubscribeScroll() (<-chan ScrollEvent, func()) {
	return f.scroll, f.acquire()
}

func (f *Feed) acquire() func() {
	f.mu.Lock()
	f.subs++
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.subs--
			f.mu.Unlock()
		})
	}
}

// Subscribers returns the number of unreleased subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs
}

// PushPointer offers a pointer event. It reports false when dropped.
func (f *Feed) PushPointer(ev PointerEvent) bool {
	select {
	case f.pointer <- ev:
		return true
	default:
		return false
	}
}

// PushScroll offers a scroll event. It reports false when dropped.
func (f *Feed) PushScroll(ev ScrollEvent) bool {
	select {
	case f.scroll <- ev:
		return true
	default:
		return false
	}
}
