package geom

import (
	"fmt"

	"github.com/lumen-render/lumen/pkg/core"
)

// Point represents a 3D position
type Point struct {
	X, Y, Z float64
}

// NewPoint creates a new Point
func NewPoint(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", p.X, p.Y, p.Z)
}

// Validate returns ErrInvalidArgument if any component is NaN or infinite
func (p Point) Validate() error {
	if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
		return core.ErrInvalidArgument
	}
	return nil
}

// Subtract returns the vector from other to p
func (p Point) Subtract(other Point) Vector {
	return Vector{p.X - other.X, p.Y - other.Y, p.Z - other.Z}
}

// Add returns the point displaced by a vector
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// SubtractVec returns the point displaced by the negated vector
func (p Point) SubtractVec(v Vector) Point {
	return Point{p.X - v.X, p.Y - v.Y, p.Z - v.Z}
}

// AddScaled returns the point displaced by v scaled by s
func (p Point) AddScaled(v Vector, s float64) Point {
	return Point{p.X + v.X*s, p.Y + v.Y*s, p.Z + v.Z*s}
}

// SubtractScaled returns the point displaced by v scaled by -s
func (p Point) SubtractScaled(v Vector, s float64) Point {
	return Point{p.X - v.X*s, p.Y - v.Y*s, p.Z - v.Z*s}
}

// Equals compares two points with a small tolerance for floating point precision
func (p Point) Equals(other Point) bool {
	return p.Subtract(other).IsZero() || p.Subtract(other).Length() < 1e-9
}
