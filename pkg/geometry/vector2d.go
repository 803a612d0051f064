package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon Precision constant used by Eq and by NewVectorPolar to snap tiny components to zero.
const (
	Epsilon = 1e-9
)

// ErrDivideByZero is returned by Div when the scalar is zero.
var ErrDivideByZero = errors.New("vector cannot be divided by zero")

// Vector2D represents a 2D vector or point in cartesian space.
// We use public fields (X, Y) because they are fundamental data, not internal state.
// The zero value is the null vector.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewVectorPolar creates a new Vector2D from polar coordinates.
// theta is in radians.
func NewVectorPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// Handle standard floating point precision issues near zero
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}

	return Vector2D{X: x, Y: y}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers, new values returned.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar leaves the vector untouched and reports ErrDivideByZero, so a
// caller that ignores the error never sees Inf or NaN components.
func (v Vector2D) Div(scalar float64) (Vector2D, error) {
	if scalar == 0 {
		return v, ErrDivideByZero
	}
	return Vector2D{v.X / scalar, v.Y / scalar}, nil
}

// Quo is Div without the error: division by zero is skipped.
func (v Vector2D) Quo(scalar float64) Vector2D {
	q, _ := v.Div(scalar)
	return q
}

// ---------------------------------------------------------------------
// Vector2D Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// CosAngle returns cos(a) where a is the angle between v and other:
// cos(a) = v.other / (|v| |other|).
// It returns NaN when either vector is null.
func (v Vector2D) CosAngle(other Vector2D) float64 {
	return v.Dot(other) / (v.Len() * other.Len())
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// This is faster than Len() as it avoids the square root. Use for comparisons.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// IsNull reports whether v is exactly (0,0).
func (v Vector2D) IsNull() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns a unit vector in the same direction.
// The null vector is returned unchanged.
func (v Vector2D) Normalize() Vector2D {
	return v.Quo(v.Len())
}

// SetMag returns v rescaled to magnitude mag. The null vector stays null.
func (v Vector2D) SetMag(mag float64) Vector2D {
	if v.IsNull() {
		return v
	}
	return v.Normalize().Mul(mag)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Angle returns the angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Wrap folds v into [0,width) x [0,height), torus style.
func (v Vector2D) Wrap(width, height float64) Vector2D {
	return Vector2D{X: Wrap(v.X, width), Y: Wrap(v.Y, height)}
}

// Wrap returns x modulo size, always in [0,size).
// A non-positive size returns x unchanged.
func Wrap(x, size float64) float64 {
	if size <= 0 {
		return x
	}
	x = math.Mod(x+size, size)
	if x < 0 {
		x += size
	}
	if x >= size {
		// x+size can round up to exactly size for tiny negative x
		x = 0
	}
	return x
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
