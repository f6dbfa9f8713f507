package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
)

// assertInverseIdentity checks |M * M^-1 - I|_inf < 1e-5
func assertInverseIdentity(t *testing.T, m *Matrix) {
	t.Helper()
	product := multiplyContents(m.ReadContents(), m.inverseContents())
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := 0.0
			if i == j {
				expected = 1.0
			}
			assert.InDelta(t, expected, product[i][j], 1e-5, "element (%d,%d)", i, j)
		}
	}
}

func TestMatrix_IdentityInvert(t *testing.T) {
	// Translation by zero is the identity; its inverse maps points exactly
	identity, err := Translation(0, 0, 0)
	require.NoError(t, err)

	p := geom.NewPoint(1, 2, 3)
	result := identity.Inverse().TransformPoint(p)
	assert.Equal(t, p, result)
}

func TestMatrix_ScaleRoundTrip(t *testing.T) {
	scale, err := Scalar(2, 3, 4)
	require.NoError(t, err)

	p := geom.NewPoint(1, 1, 1)
	result := scale.Inverse().TransformPoint(scale.TransformPoint(p))

	assert.InDelta(t, 1.0, result.X, 1e-6)
	assert.InDelta(t, 1.0, result.Y, 1e-6)
	assert.InDelta(t, 1.0, result.Z, 1e-6)
}

func TestMatrix_New_InverseIdentity(t *testing.T) {
	m, err := New(
		2, 1, 0, 3,
		0, 1, 4, -1,
		1, 0, 1, 2,
		0, 0, 0, 1,
	)
	require.NoError(t, err)
	assertInverseIdentity(t, m)
}

func TestMatrix_New_Singular(t *testing.T) {
	_, err := New(
		1, 2, 3, 4,
		2, 4, 6, 8,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
	assert.ErrorIs(t, err, core.ErrArithmetic)
}

func TestMatrix_Rotation(t *testing.T) {
	rotation, err := Rotation(90, geom.NewVector(0, 0, 1))
	require.NoError(t, err)

	rotated := rotation.TransformVector(geom.NewVector(1, 0, 0))
	assert.InDelta(t, 0.0, rotated.X, 1e-12)
	assert.InDelta(t, 1.0, rotated.Y, 1e-12)
	assert.InDelta(t, 0.0, rotated.Z, 1e-12)

	assertInverseIdentity(t, rotation)
}

func TestMatrix_Rotation_ArbitraryAxisInverse(t *testing.T) {
	rotation, err := Rotation(37.5, geom.NewVector(1, 2, -0.5))
	require.NoError(t, err)
	assertInverseIdentity(t, rotation)
}

func TestMatrix_Rotation_ZeroAxis(t *testing.T) {
	_, err := Rotation(45, geom.NewVector(0, 0, 0))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestMatrix_Scalar_ZeroComponent(t *testing.T) {
	_, err := Scalar(1, 0, 1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestMatrix_Orthographic(t *testing.T) {
	ortho, err := Orthographic(-1, 1, -1, 1, 0.1, 100)
	require.NoError(t, err)
	assertInverseIdentity(t, ortho)

	_, err = Orthographic(-1, -1, -1, 1, 0.1, 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgumentCombination)
}

func TestMatrix_Frustum(t *testing.T) {
	frustum, err := Frustum(-1, 1, -1, 1, 0.1, 100)
	require.NoError(t, err)
	assertInverseIdentity(t, frustum)

	_, err = Frustum(-1, 1, 1, 1, 0.1, 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgumentCombination)
}

func TestMatrix_InverseHandleFlip(t *testing.T) {
	translation, err := Translation(5, -2, 1)
	require.NoError(t, err)

	inverse := translation.Inverse()
	doubleInverse := inverse.Inverse()

	// The double inverse reads the original side again
	assert.Equal(t, translation.ReadContents(), doubleInverse.ReadContents())

	p := geom.NewPoint(0, 0, 0)
	assert.Equal(t, geom.NewPoint(5, -2, 1), translation.TransformPoint(p))
	assert.Equal(t, geom.NewPoint(-5, 2, -1), inverse.TransformPoint(p))
}

func TestMatrix_Multiply(t *testing.T) {
	translation, err := Translation(1, 0, 0)
	require.NoError(t, err)
	scale, err := Scalar(2, 2, 2)
	require.NoError(t, err)

	combined := Multiply(translation, scale)
	assertInverseIdentity(t, combined)

	// Translate after scaling: (1,0,0) -> (2,0,0) -> (3,0,0)
	result := combined.TransformPoint(geom.NewPoint(1, 0, 0))
	assert.Equal(t, geom.NewPoint(3, 0, 0), result)

	// The inverse undoes the product
	back := combined.Inverse().TransformPoint(result)
	assert.InDelta(t, 1.0, back.X, 1e-12)
}

func TestMatrix_Multiply_NilIsIdentity(t *testing.T) {
	scale, err := Scalar(2, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, scale.ReadContents(), Multiply(nil, scale).ReadContents())
	assert.Equal(t, scale.ReadContents(), Multiply(scale, nil).ReadContents())
}

func TestMatrix_NilHandleIsIdentity(t *testing.T) {
	var m *Matrix

	p := geom.NewPoint(1, 2, 3)
	assert.Equal(t, p, m.TransformPoint(p))
	assert.Equal(t, p, m.InverseTransformPoint(p))
	assert.Nil(t, m.Inverse())
}

func TestMatrix_TransformNormal(t *testing.T) {
	// Under a non-uniform scale the normal must not follow the vectors
	scale, err := Scalar(2, 1, 1)
	require.NoError(t, err)

	normal := scale.TransformNormal(geom.NewVector(1, 1, 0)).Normalize()

	// A plane x+y=0 scaled by 2 in x becomes x/2+y=0; its normal leans
	// toward y
	assert.Less(t, normal.X, normal.Y)
}

func TestMatrix_RetainRelease(t *testing.T) {
	translation, err := Translation(1, 2, 3)
	require.NoError(t, err)

	handle := translation.Retain()
	inverse := translation.Inverse()
	inverse.Release()
	handle.Release()

	// The original handle stays valid while referenced
	assert.Equal(t, geom.NewPoint(1, 2, 3), translation.TransformPoint(geom.NewPoint(0, 0, 0)))
}
