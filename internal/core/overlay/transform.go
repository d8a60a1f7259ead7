package overlay

// Scale bounds for the pose overlay. Pinch input outside this range is
// clamped rather than rejected.
const (
	MinScale = 0.2
	MaxScale = 5.0
)

// Transform is the pose overlay's position, size and orientation relative
// to the center of its container. X and Y are screen-space pixel offsets,
// Rotation is in degrees and deliberately unbounded (consecutive gestures
// accumulate past 360).
type Transform struct {
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
}

// Identity returns the neutral transform: centered, unscaled, unrotated.
func Identity() Transform {
	return Transform{X: 0, Y: 0, Scale: 1, Rotation: 0}
}

// ClampScale returns s forced into [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Normalized returns a copy of t with the scale clamp applied.
func (t Transform) Normalized() Transform {
	t.Scale = ClampScale(t.Scale)
	return t
}

// IsIdentity reports whether t is exactly the identity transform.
func (t Transform) IsIdentity() bool {
	return t.X == 0 && t.Y == 0 && t.Scale == 1 && t.Rotation == 0
}
