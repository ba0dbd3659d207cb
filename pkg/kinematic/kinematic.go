package kinematic

// This package includes the 2D vector type shared by the physics packages and
// the velocity half of the kinematic equations.

import (
	"math"
)

const (
	// Gravity is the per-tick downward acceleration applied to dynamic entities.
	// Screen space is y-down, so gravity is positive.
	Gravity float64 = 0.1
)

// Vector is an immutable 2D vector. All methods return new values.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Zero is the zero vector.
var Zero = Vector{}

// Vec is shorthand for Vector{X: x, Y: y}.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Scale(factor float64) Vector {
	return Vector{X: v.X * factor, Y: v.Y * factor}
}

func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// Mul multiplies the vector element-wise.
func (v Vector) Mul(other Vector) Vector {
	return Vector{X: v.X * other.X, Y: v.Y * other.Y}
}

func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
func (v Vector) Cross(other Vector) float64 {
	return v.X*other.Y - v.Y*other.X
}

// LengthSquared returns the squared magnitude of the vector.
func (v Vector) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns a unit vector in the same direction, or the zero vector
// if v has no length.
func (v Vector) Normalize() Vector {
	length := v.Length()
	if length == 0 {
		return Vector{}
	}
	return Vector{X: v.X / length, Y: v.Y / length}
}

// NormalizeTo returns a vector in the same direction as v with the given length.
func (v Vector) NormalizeTo(length float64) Vector {
	return v.Normalize().Scale(length)
}

// ProjectOn returns the projection of v onto the line spanned by other.
func (v Vector) ProjectOn(other Vector) Vector {
	length2 := other.LengthSquared()
	if length2 == 0 {
		return Vector{}
	}
	return other.Scale(v.Dot(other) / length2)
}

// Left returns v rotated a quarter turn towards its solid side: (-y, x).
func (v Vector) Left() Vector {
	return Vector{X: -v.Y, Y: v.X}
}

// Min returns the component-wise minimum of v and other.
func (v Vector) Min(other Vector) Vector {
	return Vector{X: math.Min(v.X, other.X), Y: math.Min(v.Y, other.Y)}
}

// Max returns the component-wise maximum of v and other.
func (v Vector) Max(other Vector) Vector {
	return Vector{X: math.Max(v.X, other.X), Y: math.Max(v.Y, other.Y)}
}

func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// FinalVelocity returns the final velocity of an object given its initial velocity, time, and acceleration.
func FinalVelocity(initialVelocity float64, time float64, acceleration float64) float64 {
	return initialVelocity + acceleration*time
}
