package compositor

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transformation in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// representing x' = A*x + B*y + C, y' = D*x + E*y + F.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// identityMatrix returns the identity transformation.
func identityMatrix() Matrix {
	return Matrix{A: 1, E: 1}
}

// translate creates a translation matrix.
func translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// scale creates a uniform scaling matrix.
func scale(s float64) Matrix {
	return Matrix{A: s, E: s}
}

// rotateDegrees creates a rotation matrix for an angle in degrees.
func rotateDegrees(deg float64) Matrix {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Mul multiplies two matrices (m * other), applying other first.
func (m Matrix) Mul(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// Aff3 converts the matrix to the x/image draw.Transform layout.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}
