// Package effects computes the cosmetic background and cursor animation
// frames streamed to the browser.
package effects

import (
	"math"
	"time"
)

// Field parameters.
const (
	GridSpacing   = 36.0
	RevealRadius  = 0.1
	RevealFeather = 0.07
	TrailLifetime = 2800 * time.Millisecond
	MaxIntensity  = 0.2
	PhaseStep     = 0.003

	// MaxViewport bounds both viewport dimensions, which bounds the grid
	// walked per frame.
	MaxViewport = 5120.0
	// MaxTrailPoints bounds the trail walked per dot. The oldest points are
	// dropped first.
	MaxTrailPoints = 64

	minVisible = 0.01
)

// Point is a position normalized to [0, 1] on both axes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type trailPoint struct {
	Point
	at time.Time
}

// Dot is one visible grid dot in viewport pixels.
type Dot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"i"`
}

// Alpha is the fill opacity used to draw the dot.
func (d Dot) Alpha() float64 { return d.Intensity * 0.25 }

// Size is the dot radius in pixels.
func (d Dot) Size() float64 { return 0.7 + d.Intensity*1.2 }

// Field is the dot-grid background. It is not safe for concurrent use.
type Field struct {
	width, height float64
	mouse         Point
	trail         []trailPoint
	phase         float64
}

// NewField creates a field for a viewport of the given size with the
// pointer at the centre.
func NewField(width, height float64) *Field {
	f := &Field{mouse: Point{X: 0.5, Y: 0.5}}
	f.Resize(width, height)
	return f
}

// Resize changes the viewport size, capped at MaxViewport on each axis.
// Non-positive or NaN sizes are ignored.
func (f *Field) Resize(width, height float64) {
	if width > 0 && height > 0 {
		f.width, f.height = math.Min(width, MaxViewport), math.Min(height, MaxViewport)
	}
}

// Size returns the viewport size in use.
func (f *Field) Size() (width, height float64) { return f.width, f.height }

// Pointer records a pointer position in viewport pixels. Non-finite
// coordinates are ignored.
func (f *Field) Pointer(x, y float64, at time.Time) {
	if !finite(x) || !finite(y) {
		return
	}
	p := Point{X: clamp(x/f.width, 0, 1), Y: clamp(y/f.height, 0, 1)}
	f.mouse = p
	f.pruneTrail(at)
	if len(f.trail) >= MaxTrailPoints {
		n := copy(f.trail, f.trail[len(f.trail)-MaxTrailPoints+1:])
		f.trail = f.trail[:n]
	}
	f.trail = append(f.trail, trailPoint{Point: p, at: at})
}

// Mouse returns the normalized pointer position.
func (f *Field) Mouse() Point { return f.mouse }

// TrailLen returns the number of live trail points.
func (f *Field) TrailLen() int { return len(f.trail) }

// Phase returns the shimmer phase.
func (f *Field) Phase() float64 { return f.phase }

// Step advances the shimmer by one frame and forgets expired trail points.
func (f *Field) Step(now time.Time) {
	f.phase += PhaseStep
	f.pruneTrail(now)
}

func (f *Field) pruneTrail(now time.Time) {
	keep := f.trail[:0]
	for _, t := range f.trail {
		if now.Sub(t.at) < TrailLifetime {
			keep = append(keep, t)
		}
	}
	f.trail = keep
}

// Intensity returns the dot intensity at a normalized position.
func (f *Field) Intensity(nx, ny float64, now time.Time) float64 {
	dist := math.Hypot(nx-f.mouse.X, ny-f.mouse.Y)

	base := 0.004 + 0.006*math.Sin(f.phase*0.45+nx*4.8+ny*3.8)

	t := math.Max(0, 1-math.Max(0, dist-RevealRadius)/RevealFeather)
	reveal := t * t

	glow := 0.0
	for i := len(f.trail) - 1; i >= 0; i-- {
		p := f.trail[i]
		age := float64(now.Sub(p.at)) / float64(TrailLifetime)
		if age > 1 {
			break
		}
		d := math.Hypot(nx-p.X, ny-p.Y)
		influence := math.Max(0, 1-d*9) * math.Max(0, 1-age)
		glow = math.Max(glow, influence*0.08)
	}

	modulation := 1 + 0.15*math.Sin(f.phase*0.22+nx*3.2+ny*2.6)
	intensity := math.Min(MaxIntensity, base+reveal*0.18+glow) * modulation
	return clamp(intensity, 0, MaxIntensity)
}

// Dots returns every grid dot bright enough to draw.
func (f *Field) Dots(now time.Time) []Dot {
	var out []Dot
	for x := 0.0; x <= f.width; x += GridSpacing {
		for y := 0.0; y <= f.height; y += GridSpacing {
			i := round4(f.Intensity(x/f.width, y/f.height, now))
			if i > minVisible {
				out = append(out, Dot{X: x, Y: y, Intensity: i})
			}
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
