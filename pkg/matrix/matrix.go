package matrix

import (
	"math"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
)

// pair is the single shared allocation behind a matrix handle. It holds a
// matrix together with its inverse and a reference count; the two Matrix
// handles onto it differ only in which side they read.
type pair struct {
	contents [4][4]float64
	inverse  [4][4]float64
	refs     int64
}

// Matrix is a reference-counted handle onto one side of an invertible
// matrix pair. A nil *Matrix acts as the identity everywhere it is
// consumed. Matrices are immutable after construction and may be shared
// across goroutines.
type Matrix struct {
	pair     *pair
	inverted bool
}

// newPair wraps a matrix and its known inverse into a fresh pair with one
// reference and returns the front-side handle.
func newPair(contents, inverse [4][4]float64) *Matrix {
	p := &pair{contents: contents, inverse: inverse, refs: 1}
	return &Matrix{pair: p}
}

// New creates a matrix from 16 values in row-major order, computing the
// inverse by Gauss-Jordan elimination. Singular input fails with
// ErrArithmetic.
func New(
	m00, m01, m02, m03,
	m10, m11, m12, m13,
	m20, m21, m22, m23,
	m30, m31, m32, m33 float64,
) (*Matrix, error) {
	contents := [4][4]float64{
		{m00, m01, m02, m03},
		{m10, m11, m12, m13},
		{m20, m21, m22, m23},
		{m30, m31, m32, m33},
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !isFinite(contents[i][j]) {
				return nil, core.ErrInvalidArgument
			}
		}
	}

	inverse, err := invert(contents)
	if err != nil {
		return nil, err
	}

	return newPair(contents, inverse), nil
}

// invert computes the inverse of m by Gauss-Jordan elimination with
// partial pivoting. The input is copied into the working matrix before
// elimination begins.
func invert(m [4][4]float64) ([4][4]float64, error) {
	var work [4][4]float64
	var result [4][4]float64

	work = m
	for i := 0; i < 4; i++ {
		result[i][i] = 1
	}

	for col := 0; col < 4; col++ {
		// Select the largest remaining pivot in this column
		pivotRow := col
		pivotValue := math.Abs(work[col][col])
		for row := col + 1; row < 4; row++ {
			if abs := math.Abs(work[row][col]); abs > pivotValue {
				pivotRow = row
				pivotValue = abs
			}
		}

		if pivotValue < 1e-12 {
			return result, errors.Wrap(core.ErrArithmetic, "singular matrix")
		}

		if pivotRow != col {
			work[col], work[pivotRow] = work[pivotRow], work[col]
			result[col], result[pivotRow] = result[pivotRow], result[col]
		}

		scale := 1 / work[col][col]
		for j := 0; j < 4; j++ {
			work[col][j] *= scale
			result[col][j] *= scale
		}

		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			factor := work[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				work[row][j] -= factor * work[col][j]
				result[row][j] -= factor * result[col][j]
			}
		}
	}

	return result, nil
}

// Inverse returns a handle onto the opposite side of the pair. No
// allocation is performed; the pair gains one shared reference.
func (m *Matrix) Inverse() *Matrix {
	if m == nil {
		return nil
	}
	atomic.AddInt64(&m.pair.refs, 1)
	return &Matrix{pair: m.pair, inverted: !m.inverted}
}

// Retain adds a shared reference to the underlying pair
func (m *Matrix) Retain() *Matrix {
	if m != nil {
		atomic.AddInt64(&m.pair.refs, 1)
	}
	return m
}

// Release drops one reference to the underlying pair. The pair is
// reclaimed by the garbage collector once the count reaches zero; the
// count exists so shared handles have deterministic ownership semantics.
func (m *Matrix) Release() {
	if m != nil {
		atomic.AddInt64(&m.pair.refs, -1)
	}
}

// inverseContents reads the partner side without touching the refcount
func (m *Matrix) inverseContents() [4][4]float64 {
	if m == nil {
		return identityContents()
	}
	if m.inverted {
		return m.pair.contents
	}
	return m.pair.inverse
}

// ReadContents copies out the 16 values of this side in row-major order
func (m *Matrix) ReadContents() [4][4]float64 {
	if m == nil {
		return identityContents()
	}
	if m.inverted {
		return m.pair.inverse
	}
	return m.pair.contents
}

// Multiply returns the product a*b as a new pair. The inverse side is
// computed as b⁻¹*a⁻¹ from the partner inverses, not by re-inverting the
// product. Either operand may be nil (identity).
func Multiply(a, b *Matrix) *Matrix {
	if a == nil {
		return b.Retain()
	}
	if b == nil {
		return a.Retain()
	}

	contents := multiplyContents(a.ReadContents(), b.ReadContents())
	inverse := multiplyContents(b.inverseContents(), a.inverseContents())

	return newPair(contents, inverse)
}

func multiplyContents(a, b [4][4]float64) [4][4]float64 {
	var out [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = a[i][0]*b[0][j] +
				a[i][1]*b[1][j] +
				a[i][2]*b[2][j] +
				a[i][3]*b[3][j]
		}
	}
	return out
}

// TransformPoint applies the matrix to a point, including translation
func (m *Matrix) TransformPoint(p geom.Point) geom.Point {
	if m == nil {
		return p
	}
	c := m.ReadContents()
	return geom.Point{
		X: c[0][0]*p.X + c[0][1]*p.Y + c[0][2]*p.Z + c[0][3],
		Y: c[1][0]*p.X + c[1][1]*p.Y + c[1][2]*p.Z + c[1][3],
		Z: c[2][0]*p.X + c[2][1]*p.Y + c[2][2]*p.Z + c[2][3],
	}
}

// TransformVector applies the matrix to a vector; translation is ignored
func (m *Matrix) TransformVector(v geom.Vector) geom.Vector {
	if m == nil {
		return v
	}
	c := m.ReadContents()
	return geom.Vector{
		X: c[0][0]*v.X + c[0][1]*v.Y + c[0][2]*v.Z,
		Y: c[1][0]*v.X + c[1][1]*v.Y + c[1][2]*v.Z,
		Z: c[2][0]*v.X + c[2][1]*v.Y + c[2][2]*v.Z,
	}
}

// TransformRay applies the matrix to a ray's origin and direction
func (m *Matrix) TransformRay(r geom.Ray) geom.Ray {
	if m == nil {
		return r
	}
	return geom.Ray{
		Origin:    m.TransformPoint(r.Origin),
		Direction: m.TransformVector(r.Direction),
		Time:      r.Time,
	}
}

// TransformNormal maps a model-space surface normal through the
// transpose of the partner inverse, which preserves perpendicularity
// under non-uniform scaling. The result is not normalized.
func (m *Matrix) TransformNormal(n geom.Vector) geom.Vector {
	if m == nil {
		return n
	}
	c := m.inverseContents()
	return geom.Vector{
		X: c[0][0]*n.X + c[1][0]*n.Y + c[2][0]*n.Z,
		Y: c[0][1]*n.X + c[1][1]*n.Y + c[2][1]*n.Z,
		Z: c[0][2]*n.X + c[1][2]*n.Y + c[2][2]*n.Z,
	}
}

// InverseTransformPoint applies the partner inverse to a point without
// allocating an inverse handle
func (m *Matrix) InverseTransformPoint(p geom.Point) geom.Point {
	if m == nil {
		return p
	}
	other := Matrix{pair: m.pair, inverted: !m.inverted}
	return other.TransformPoint(p)
}

// InverseTransformVector applies the partner inverse to a vector
func (m *Matrix) InverseTransformVector(v geom.Vector) geom.Vector {
	if m == nil {
		return v
	}
	other := Matrix{pair: m.pair, inverted: !m.inverted}
	return other.TransformVector(v)
}

// InverseTransformRay applies the partner inverse to a ray
func (m *Matrix) InverseTransformRay(r geom.Ray) geom.Ray {
	if m == nil {
		return r
	}
	other := Matrix{pair: m.pair, inverted: !m.inverted}
	return other.TransformRay(r)
}

func identityContents() [4][4]float64 {
	return [4][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
