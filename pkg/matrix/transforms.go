package matrix

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
)

// Identity creates an identity matrix. The inverse is the matrix itself;
// no numerical inversion is performed.
func Identity() *Matrix {
	return newPair(identityContents(), identityContents())
}

// Translation creates a translation matrix with the analytic inverse
func Translation(x, y, z float64) (*Matrix, error) {
	if !isFinite(x) || !isFinite(y) || !isFinite(z) {
		return nil, core.ErrInvalidArgument
	}

	contents := [4][4]float64{
		{1, 0, 0, x},
		{0, 1, 0, y},
		{0, 0, 1, z},
		{0, 0, 0, 1},
	}
	inverse := [4][4]float64{
		{1, 0, 0, -x},
		{0, 1, 0, -y},
		{0, 0, 1, -z},
		{0, 0, 0, 1},
	}

	return newPair(contents, inverse), nil
}

// Scalar creates a non-uniform scale matrix with the analytic inverse.
// Zero scale factors are rejected since the matrix would be singular.
func Scalar(x, y, z float64) (*Matrix, error) {
	if !isFinite(x) || !isFinite(y) || !isFinite(z) ||
		x == 0 || y == 0 || z == 0 {
		return nil, core.ErrInvalidArgument
	}

	contents := [4][4]float64{
		{x, 0, 0, 0},
		{0, y, 0, 0},
		{0, 0, z, 0},
		{0, 0, 0, 1},
	}
	inverse := [4][4]float64{
		{1 / x, 0, 0, 0},
		{0, 1 / y, 0, 0},
		{0, 0, 1 / z, 0},
		{0, 0, 0, 1},
	}

	return newPair(contents, inverse), nil
}

// Rotation creates a rotation of theta degrees about the given axis using
// Rodrigues' rotation formula. The axis is normalized internally; a
// zero-length axis is rejected.
func Rotation(thetaDegrees float64, axis geom.Vector) (*Matrix, error) {
	if !isFinite(thetaDegrees) {
		return nil, core.ErrInvalidArgument
	}
	if err := axis.Validate(); err != nil {
		return nil, err
	}
	if axis.IsZero() {
		return nil, errors.Wrap(core.ErrInvalidArgument, "zero-length rotation axis")
	}

	n := axis.Normalize()
	theta := thetaDegrees * math.Pi / 180
	sin := math.Sin(theta)
	cos := math.Cos(theta)
	ic := 1 - cos

	contents := [4][4]float64{
		{
			cos + n.X*n.X*ic,
			n.X*n.Y*ic - n.Z*sin,
			n.X*n.Z*ic + n.Y*sin,
			0,
		},
		{
			n.Y*n.X*ic + n.Z*sin,
			cos + n.Y*n.Y*ic,
			n.Y*n.Z*ic - n.X*sin,
			0,
		},
		{
			n.Z*n.X*ic - n.Y*sin,
			n.Z*n.Y*ic + n.X*sin,
			cos + n.Z*n.Z*ic,
			0,
		},
		{0, 0, 0, 1},
	}

	// A rotation's inverse is its transpose
	var inverse [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			inverse[i][j] = contents[j][i]
		}
	}

	return newPair(contents, inverse), nil
}

// Orthographic creates an orthographic projection matrix over the given
// view volume. Zero-extent ranges fail with ErrInvalidArgumentCombination.
func Orthographic(left, right, bottom, top, near, far float64) (*Matrix, error) {
	for _, f := range []float64{left, right, bottom, top, near, far} {
		if !isFinite(f) {
			return nil, core.ErrInvalidArgument
		}
	}
	if left == right || bottom == top || near == far {
		return nil, errors.Wrap(core.ErrInvalidArgumentCombination, "zero-extent orthographic volume")
	}

	tx := -(right + left) / (right - left)
	ty := -(top + bottom) / (top - bottom)
	tz := -(far + near) / (far - near)

	sx := 2 / (right - left)
	sy := 2 / (top - bottom)
	sz := -2 / (far - near)

	contents := [4][4]float64{
		{sx, 0, 0, tx},
		{0, sy, 0, ty},
		{0, 0, sz, tz},
		{0, 0, 0, 1},
	}
	inverse := [4][4]float64{
		{1 / sx, 0, 0, -tx / sx},
		{0, 1 / sy, 0, -ty / sy},
		{0, 0, 1 / sz, -tz / sz},
		{0, 0, 0, 1},
	}

	return newPair(contents, inverse), nil
}

// Frustum creates a perspective projection matrix over the given frustum.
// Zero-extent ranges fail with ErrInvalidArgumentCombination.
func Frustum(left, right, bottom, top, near, far float64) (*Matrix, error) {
	for _, f := range []float64{left, right, bottom, top, near, far} {
		if !isFinite(f) {
			return nil, core.ErrInvalidArgument
		}
	}
	if left == right || bottom == top || near == far || near == 0 {
		return nil, errors.Wrap(core.ErrInvalidArgumentCombination, "zero-extent frustum")
	}

	sx := 2 * near / (right - left)
	sy := 2 * near / (top - bottom)

	a := (right + left) / (right - left)
	b := (top + bottom) / (top - bottom)
	c := -(far + near) / (far - near)
	d := -2 * far * near / (far - near)

	contents := [4][4]float64{
		{sx, 0, a, 0},
		{0, sy, b, 0},
		{0, 0, c, d},
		{0, 0, -1, 0},
	}
	inverse := [4][4]float64{
		{1 / sx, 0, 0, a / sx},
		{0, 1 / sy, 0, b / sy},
		{0, 0, 0, -1},
		{0, 0, 1 / d, c / d},
	}

	return newPair(contents, inverse), nil
}
