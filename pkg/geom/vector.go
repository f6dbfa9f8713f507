package geom

import (
	"fmt"
	"math"

	"github.com/lumen-render/lumen/pkg/core"
)

// Axis identifies one of the three coordinate axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Vector represents a 3D direction or displacement
type Vector struct {
	X, Y, Z float64
}

// Vec2 represents a 2D vector (for texture coordinates, sample pairs, etc.)
type Vec2 struct {
	X, Y float64
}

// NewVector creates a new Vector
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vector) String() string {
	return fmt.Sprintf("{%.3g, %.3g, %.3g}", v.X, v.Y, v.Z)
}

// Validate returns ErrInvalidArgument if any component is NaN or infinite
func (v Vector) Validate() error {
	if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
		return core.ErrInvalidArgument
	}
	return nil
}

// Add returns the sum of two vectors
func (v Vector) Add(other Vector) Vector {
	return Vector{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vector) Subtract(other Vector) Vector {
	return Vector{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns the vector scaled by a scalar
func (v Vector) Scale(scalar float64) Vector {
	return Vector{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Negate returns the negative of the vector
func (v Vector) Negate() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product of two vectors
func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// AbsDot returns the absolute value of the dot product
func (v Vector) AbsDot(other Vector) float64 {
	return math.Abs(v.Dot(other))
}

// Cross returns the cross product of two vectors
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSquared returns the squared magnitude of the vector
func (v Vector) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns a unit vector in the same direction
func (v Vector) Normalize() Vector {
	unit, _ := v.NormalizeWithLength()
	return unit
}

// NormalizeWithLength returns a unit vector in the same direction along
// with the pre-normalization length
func (v Vector) NormalizeWithLength() (Vector, float64) {
	length := v.Length()
	if length == 0 {
		return Vector{}, 0
	}
	return Vector{v.X / length, v.Y / length, v.Z / length}, length
}

// Reflect reflects the vector about a normal
func (v Vector) Reflect(normal Vector) Vector {
	return v.Subtract(normal.Scale(2 * v.Dot(normal)))
}

// HalfAngle returns the normalized half-angle vector between two directions
func (v Vector) HalfAngle(other Vector) Vector {
	return v.Add(other).Normalize()
}

// IsZero returns true if the vector is zero
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Equals compares two vectors with a small tolerance for floating point precision
func (v Vector) Equals(other Vector) bool {
	const tolerance = 1e-9
	return math.Abs(v.X-other.X) < tolerance &&
		math.Abs(v.Y-other.Y) < tolerance &&
		math.Abs(v.Z-other.Z) < tolerance
}

// DominantAxis returns the axis with the largest absolute component
func (v Vector) DominantAxis() Axis {
	absX := math.Abs(v.X)
	absY := math.Abs(v.Y)
	absZ := math.Abs(v.Z)

	if absX >= absY && absX >= absZ {
		return AxisX
	}
	if absY >= absZ {
		return AxisY
	}
	return AxisZ
}

// DiminishedAxis returns the axis with the smallest absolute component
func (v Vector) DiminishedAxis() Axis {
	absX := math.Abs(v.X)
	absY := math.Abs(v.Y)
	absZ := math.Abs(v.Z)

	if absX <= absY && absX <= absZ {
		return AxisX
	}
	if absY <= absZ {
		return AxisY
	}
	return AxisZ
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
