package effects

import "time"

// Section tracking parameters.
const (
	ActivationLine   = 100.0
	ScrollThrottle   = 100 * time.Millisecond
	HomeSectionID    = "home"
	DefaultSectionID = HomeSectionID
)

// SectionRect is a page section's bounding box relative to the viewport top.
type SectionRect struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// SectionTracker decides which navigation section is active. Scroll
// reports are throttled: the first report arms an evaluation ScrollThrottle
// later and reports arriving meanwhile only update the rects.
type SectionTracker struct {
	active        string
	showMobileNav bool

	rects []SectionRect
	due   time.Time
}

// NewSectionTracker starts with the home section active.
func NewSectionTracker() *SectionTracker {
	return &SectionTracker{active: DefaultSectionID}
}

// Scroll records the section rects observed at now.
func (t *SectionTracker) Scroll(rects []SectionRect, now time.Time) {
	t.rects = rects
	if t.due.IsZero() {
		t.due = now.Add(ScrollThrottle)
	}
}

// Tick evaluates a pending scroll report when its throttle window has
// passed. It reports whether the visible state changed.
func (t *SectionTracker) Tick(now time.Time) bool {
	if t.due.IsZero() || now.Before(t.due) {
		return false
	}
	t.due = time.Time{}

	changed := false
	for _, r := range t.rects {
		if r.Top <= ActivationLine && r.Bottom >= ActivationLine {
			if r.ID != t.active {
				t.active = r.ID
				changed = true
			}
			break
		}
	}
	for _, r := range t.rects {
		if r.ID == HomeSectionID {
			show := r.Bottom < ActivationLine
			if show != t.showMobileNav {
				t.showMobileNav = show
				changed = true
			}
			break
		}
	}
	return changed
}

// Active returns the active section id.
func (t *SectionTracker) Active() string { return t.active }

// ShowMobileNav reports whether the home section has scrolled past the
// activation line.
func (t *SectionTracker) ShowMobileNav() bool { return t.showMobileNav }

// Jump activates id immediately, as when a navigation link is clicked.
func (t *SectionTracker) Jump(id string) {
	t.active = id
	t.due = time.Time{}
}
