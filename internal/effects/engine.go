package effects

import (
	"context"
	"time"
)

// DefaultFrameInterval is roughly 30 frames per second.
const DefaultFrameInterval = 33 * time.Millisecond

// Config sizes the initial viewport and sets the frame rate.
type Config struct {
	FrameInterval time.Duration
	Width         float64
	Height        float64
}

// Frame is one rendered animation step.
type Frame struct {
	Seq           uint64  `json:"seq"`
	Dots          []Dot   `json:"dots"`
	Cursor        Cursor  `json:"cursor"`
	Mouse         Point   `json:"mouse"`
	Phase         float64 `json:"phase"`
	ActiveSection string  `json:"activeSection"`
	ShowMobileNav bool    `json:"showMobileNav"`
}

// EmitFunc receives each frame. Returning an error stops Run.
type EmitFunc func(ctx context.Context, f Frame) error

// Run subscribes to both sources and emits a frame per tick until ctx is
// done or emit fails. Subscriptions and the ticker are released on every
// return path.
func Run(ctx context.Context, cfg Config, pointer PointerSource, scroll ScrollSource, emit EmitFunc) error {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}

	pointerCh, releasePointer := pointer.SubscribePointer()
	defer releasePointer()
	scrollCh, releaseScroll := scroll.SubscribeScroll()
	defer releaseScroll()

	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	field := NewField(cfg.Width, cfg.Height)
	cursor := &Cursor{X: cfg.Width / 2, Y: cfg.Height / 2, TargetX: cfg.Width / 2, TargetY: cfg.Height / 2}
	sections := NewSectionTracker()
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-pointerCh:
			if !finite(ev.X) || !finite(ev.Y) {
				continue
			}
			at := ev.At
			if at.IsZero() {
				at = time.Now()
			}
			field.Pointer(ev.X, ev.Y, at)
			cursor.SetTarget(ev.X, ev.Y)

		case ev := <-scrollCh:
			at := ev.At
			if at.IsZero() {
				at = time.Now()
			}
			if ev.Width > 0 && ev.Height > 0 {
				field.Resize(ev.Width, ev.Height)
			}
			if ev.Sections != nil {
				sections.Scroll(ev.Sections, at)
			}

		case now := <-ticker.C:
			field.Step(now)
			cursor.Step()
			sections.Tick(now)
			seq++

			frame := Frame{
				Seq:           seq,
				Dots:          field.Dots(now),
				Cursor:        *cursor,
				Mouse:         field.Mouse(),
				Phase:         field.Phase(),
				ActiveSection: sections.Active(),
				ShowMobileNav: sections.ShowMobileNav(),
			}
			if err := emit(ctx, frame); err != nil {
				return err
			}
		}
	}
}
