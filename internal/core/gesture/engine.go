package gesture

import (
	"github.com/posecoach/posecoach/internal/core/geometry"
	"github.com/posecoach/posecoach/internal/core/overlay"
)

// TouchSample is one finger's latest position. ID is stable for the
// lifetime of the physical contact.
type TouchSample struct {
	ID int64
	X  float64
	Y  float64
}

// Point returns the sample position as a geometry point.
func (t TouchSample) Point() geometry.Point {
	return geometry.Point{X: t.X, Y: t.Y}
}

// baseline is the snapshot taken at the start of a continuous gesture
// segment. Deltas are always measured against it, so it is recomputed on
// every finger-count transition to prevent jumps.
type baseline struct {
	touchCount  int
	transform   overlay.Transform
	refDistance float64
	refAngle    float64
	refCenter   geometry.Point
}

// Engine converts raw touch-point deltas into a single consistent overlay
// transform. It is not safe for concurrent use; the hosting event loop
// delivers touch events one at a time.
//
// The caller owns the ordering contract: Begin must be re-invoked with the
// current transform every time the set of active touch identifiers changes,
// before the next Move is processed.
type Engine struct {
	touches map[int64]TouchSample
	base    *baseline
}

// NewEngine creates an idle gesture engine.
func NewEngine() *Engine {
	return &Engine{
		touches: make(map[int64]TouchSample),
	}
}

// Begin captures the gesture baseline from the active touches and the
// transform as it stands right now. With two fingers it records their
// distance, angle and midpoint; with one finger only its position. With
// zero or more than two fingers no reference is recorded and subsequent
// moves are no-ops.
func (e *Engine) Begin(touches []TouchSample, current overlay.Transform) {
	e.setTouches(touches)

	switch len(touches) {
	case 1:
		e.base = &baseline{
			touchCount: 1,
			transform:  current,
			refCenter:  touches[0].Point(),
		}
	case 2:
		a, b := touches[0].Point(), touches[1].Point()
		e.base = &baseline{
			touchCount:  2,
			transform:   current,
			refDistance: geometry.Distance(a, b),
			refAngle:    geometry.Angle(a, b),
			refCenter:   geometry.Midpoint(a, b),
		}
	default:
		e.base = nil
	}
}

// Move recomputes the transform from the current touch positions against
// the baseline. It has no side effects beyond the returned value; the
// second result reports whether a new transform was produced. Without a
// prior Begin reference, or with a touch count the baseline does not
// cover, Move is a no-op.
func (e *Engine) Move(touches []TouchSample) (overlay.Transform, bool) {
	if e.base == nil {
		return overlay.Transform{}, false
	}
	e.setTouches(touches)

	// Finger-count transitions must go through Begin so the baseline is
	// re-anchored; applying a mismatched baseline would jump the overlay.
	if len(touches) != e.base.touchCount {
		return overlay.Transform{}, false
	}

	switch len(touches) {
	case 1:
		p := touches[0].Point()
		out := e.base.transform
		out.X += p.X - e.base.refCenter.X
		out.Y += p.Y - e.base.refCenter.Y
		return out, true

	case 2:
		a, b := touches[0].Point(), touches[1].Point()
		center := geometry.Midpoint(a, b)

		// Pinch distance of zero at baseline would blow up the ratio;
		// treat it as no scale change.
		multiplier := 1.0
		if e.base.refDistance > 0 {
			multiplier = geometry.Distance(a, b) / e.base.refDistance
		}

		out := e.base.transform
		out.X += center.X - e.base.refCenter.X
		out.Y += center.Y - e.base.refCenter.Y
		out.Scale = overlay.ClampScale(e.base.transform.Scale * multiplier)
		out.Rotation += geometry.Angle(a, b) - e.base.refAngle
		return out, true

	default:
		return overlay.Transform{}, false
	}
}

// End clears the touch set and the gesture reference. Subsequent moves
// are no-ops until a new Begin.
func (e *Engine) End() {
	e.base = nil
	for id := range e.touches {
		delete(e.touches, id)
	}
}

// Active returns the number of tracked touch points.
func (e *Engine) Active() int {
	return len(e.touches)
}

func (e *Engine) setTouches(touches []TouchSample) {
	for id := range e.touches {
		delete(e.touches, id)
	}
	for _, t := range touches {
		e.touches[t.ID] = t
	}
}
