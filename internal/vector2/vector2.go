// Package vector2 implements the 2-vector arithmetic used throughout the
// simulation core: positions, velocities, accelerations and jerks are all
// Vector2 values.
package vector2

import "math"

// Vector2 is an immutable 2D vector. All operations return a new value
// rather than mutating the receiver.
type Vector2 struct {
	X, Y float64
}

// Add returns v + other.
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{v.X * s, v.Y * s}
}

// Div returns v / s.
func (v Vector2) Div(s float64) Vector2 {
	return Vector2{v.X / s, v.Y / s}
}

// Dot returns the dot product of v and other.
func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Norm returns the Euclidean length of v.
func (v Vector2) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Distance returns the Euclidean distance between v and other.
func (v Vector2) Distance(other Vector2) float64 {
	return v.Sub(other).Norm()
}

// Zero is the additive identity.
var Zero = Vector2{}
