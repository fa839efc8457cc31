package effects

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestField_IntensityBounds(t *testing.T) {
	f := NewField(1000, 800)
	now := time.Now()
	f.Pointer(500, 400, now)
	for i := 0; i < 500; i++ {
		f.Step(now)
	}
	for nx := 0.0; nx <= 1; nx += 0.05 {
		for ny := 0.0; ny <= 1; ny += 0.05 {
			v := f.Intensity(nx, ny, now)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, MaxIntensity)
		}
	}
}

func TestField_RevealNearPointer(t *testing.T) {
	f := NewField(1000, 1000)
	now := time.Now()
	f.Pointer(200, 200, now)

	near := f.Intensity(0.2, 0.2, now)
	far := f.Intensity(0.9, 0.9, now)
	assert.Greater(t, near, 0.1)
	assert.Less(t, far, 0.02)
}

func TestField_PointerIsClamped(t *testing.T) {
	f := NewField(100, 100)
	f.Pointer(-50, 250, time.Now())
	assert.Equal(t, Point{X: 0, Y: 1}, f.Mouse())
}

func TestField_TrailExpires(t *testing.T) {
	f := NewField(1000, 1000)
	start := time.Now()
	f.Pointer(100, 100, start)
	f.Pointer(900, 900, start.Add(time.Second))
	require.Equal(t, 2, f.TrailLen())

	f.Step(start.Add(TrailLifetime + 10*time.Millisecond))
	assert.Equal(t, 1, f.TrailLen())

	f.Step(start.Add(time.Second + TrailLifetime))
	assert.Equal(t, 0, f.TrailLen())
}

func TestField_TrailGlow(t *testing.T) {
	f := NewField(1000, 1000)
	now := time.Now()
	f.Pointer(100, 100, now)
	f.Pointer(900, 900, now)

	// The old position is outside the reveal radius but lit by the trail.
	withTrail := f.Intensity(0.1, 0.1, now)
	f.Step(now.Add(TrailLifetime))
	withoutTrail := f.Intensity(0.1, 0.1, now.Add(TrailLifetime))
	assert.Greater(t, withTrail, withoutTrail)
}

func TestField_ResizeIsCapped(t *testing.T) {
	f := NewField(1280, 720)
	f.Resize(1e6, 1e6)
	w, h := f.Size()
	assert.Equal(t, MaxViewport, w)
	assert.Equal(t, MaxViewport, h)

	f.Resize(math.NaN(), 500)
	w, _ = f.Size()
	assert.Equal(t, MaxViewport, w, "NaN is ignored")
}

func TestField_TrailIsCapped(t *testing.T) {
	f := NewField(1000, 1000)
	now := time.Now()
	for i := 0; i < 10*MaxTrailPoints; i++ {
		f.Pointer(float64(i%1000), 500, now)
	}
	assert.Equal(t, MaxTrailPoints, f.TrailLen())

	f.Pointer(math.Inf(1), math.NaN(), now)
	assert.Equal(t, MaxTrailPoints, f.TrailLen())
	assert.Equal(t, Point{X: float64((10*MaxTrailPoints-1)%1000) / 1000, Y: 0.5}, f.Mouse())
}

func TestField_OversizedFrameStaysCheap(t *testing.T) {
	f := NewField(1280, 720)
	f.Resize(1e6, 1e6)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		f.Pointer(float64(i), float64(i), now)
	}

	done := make(chan int, 1)
	go func() { done <- len(f.Dots(now)) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Dots did not return for an oversized viewport")
	}

	cells := math.Pow(math.Floor(MaxViewport/GridSpacing)+1, 2)
	assert.LessOrEqual(t, cells, 21000.0)
}

func TestField_DotsOnGrid(t *testing.T) {
	f := NewField(360, 360)
	f.Pointer(180, 180, time.Now())
	dots := f.Dots(time.Now())
	require.NotEmpty(t, dots)
	for _, d := range dots {
		assert.Zero(t, math.Mod(d.X, GridSpacing))
		assert.Zero(t, math.Mod(d.Y, GridSpacing))
		assert.Greater(t, d.Intensity, minVisible)
		assert.InDelta(t, d.Intensity*0.25, d.Alpha(), 1e-9)
	}
}

func TestField_PhaseAdvances(t *testing.T) {
	f := NewField(100, 100)
	for i := 0; i < 10; i++ {
		f.Step(time.Now())
	}
	assert.InDelta(t, 10*PhaseStep, f.Phase(), 1e-12)
}

func TestCursor_Eases(t *testing.T) {
	c := &Cursor{}
	c.SetTarget(100, 40)
	c.Step()
	assert.InDelta(t, 25, c.X, 1e-9)
	assert.InDelta(t, 10, c.Y, 1e-9)
	c.Step()
	assert.InDelta(t, 43.75, c.X, 1e-9)
	for i := 0; i < 100; i++ {
		c.Step()
	}
	assert.InDelta(t, 100, c.X, 1e-6)
}

func TestSectionTracker_Throttled(t *testing.T) {
	tr := NewSectionTracker()
	start := time.Now()
	rects := []SectionRect{
		{ID: "home", Top: -900, Bottom: -100},
		{ID: "works", Top: -100, Bottom: 600},
		{ID: "about", Top: 600, Bottom: 1400},
	}

	tr.Scroll(rects, start)
	assert.False(t, tr.Tick(start.Add(50*time.Millisecond)), "still inside the throttle window")
	assert.Equal(t, "home", tr.Active())

	later := []SectionRect{
		{ID: "home", Top: -1600, Bottom: -800},
		{ID: "works", Top: -800, Bottom: -100},
		{ID: "about", Top: -100, Bottom: 700},
	}
	tr.Scroll(later, start.Add(60*time.Millisecond))
	assert.True(t, tr.Tick(start.Add(ScrollThrottle)))
	assert.Equal(t, "about", tr.Active(), "the latest rects are evaluated")
	assert.True(t, tr.ShowMobileNav())

	assert.False(t, tr.Tick(start.Add(time.Second)), "nothing pending")
}

func TestSectionTracker_Jump(t *testing.T) {
	tr := NewSectionTracker()
	tr.Scroll([]SectionRect{{ID: "home", Top: 0, Bottom: 800}}, time.Now())
	tr.Jump("about")
	assert.Equal(t, "about", tr.Active())
	assert.False(t, tr.Tick(time.Now().Add(time.Second)))
}

func TestRun_ReleasesOnCancel(t *testing.T) {
	feed := NewFeed(8)
	ctx, cancel := context.WithCancel(context.Background())

	frames := make(chan Frame, 64)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{FrameInterval: 5 * time.Millisecond, Width: 360, Height: 360}, feed, feed,
			func(_ context.Context, f Frame) error {
				select {
				case frames <- f:
				default:
				}
				return nil
			})
	}()

	require.Eventually(t, func() bool { return feed.Subscribers() == 2 }, time.Second, time.Millisecond)
	feed.PushPointer(PointerEvent{X: 180, Y: 90})
	feed.PushScroll(ScrollEvent{Sections: []SectionRect{{ID: "works", Top: 0, Bottom: 500}}})

	require.Eventually(t, func() bool {
		select {
		case f := <-frames:
			return f.ActiveSection == "works" && f.Cursor.TargetX == 180
		default:
			return false
		}
	}, 2*time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, feed.Subscribers())
}

func TestRun_OversizedViewportKeepsStreaming(t *testing.T) {
	feed := NewFeed(8)
	ctx, cancel := context.WithCancel(context.Background())

	frames := make(chan Frame, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{FrameInterval: 5 * time.Millisecond}, feed, feed,
			func(_ context.Context, f Frame) error {
				select {
				case frames <- f:
				default:
				}
				return nil
			})
	}()

	require.Eventually(t, func() bool { return feed.Subscribers() == 2 }, time.Second, time.Millisecond)
	require.True(t, feed.PushScroll(ScrollEvent{Width: 1e9, Height: 1e9}))

	deadline := time.After(5 * time.Second)
	for seen := 0; seen < 3; {
		select {
		case <-frames:
			seen++
		case <-deadline:
			t.Fatal("frames stalled after an oversized resize")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, feed.Subscribers())
}

func TestRun_EmitErrorStops(t *testing.T) {
	feed := NewFeed(1)
	boom := errors.New("client gone")
	err := Run(context.Background(), Config{FrameInterval: time.Millisecond}, feed, feed,
		func(context.Context, Frame) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, feed.Subscribers())
}

func TestFeed_DropsWhenFull(t *testing.T) {
	feed := NewFeed(1)
	assert.True(t, feed.PushPointer(PointerEvent{}))
	assert.False(t, feed.PushPointer(PointerEvent{}))
	assert.True(t, feed.PushScroll(ScrollEvent{}))
	assert.False(t, feed.PushScroll(ScrollEvent{}))

	_, release := feed.SubscribePointer()
	release()
	release()
	assert.Equal(t, 0, feed.Subscribers(), "release is idempotent")
}
