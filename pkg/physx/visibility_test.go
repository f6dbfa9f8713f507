package physx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/shapes"
	"github.com/lumen-render/lumen/pkg/spectrum"
	"github.com/lumen-render/lumen/pkg/toolkit"
)

func TestVisibilityTester_Occluded(t *testing.T) {
	// Plane at z=0.5 between the origin and a light at (0,0,1)
	occluder := shapes.NewPlane(geom.NewPoint(0, 0, 0.5), geom.NewVector(0, 0, 1))
	scene := physx.NewListScene(nil)
	scene.Add(occluder, nil, false)

	tester, err := physx.NewVisibilityTester(scene, 1e-3)
	require.NoError(t, err)

	visible, err := tester.TestVisibility(geom.NewRay(geom.NewPoint(0, 0, 0), geom.NewVector(0, 0, 1)), 1.0)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestVisibilityTester_Unoccluded(t *testing.T) {
	occluder := shapes.NewPlane(geom.NewPoint(0, 0, 2), geom.NewVector(0, 0, 1))
	scene := physx.NewListScene(nil)
	scene.Add(occluder, nil, false)

	tester, err := physx.NewVisibilityTester(scene, 1e-3)
	require.NoError(t, err)

	// The occluder lies beyond the tested distance
	visible, err := tester.TestVisibility(geom.NewRay(geom.NewPoint(0, 0, 0), geom.NewVector(0, 0, 1)), 1.0)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestVisibilityTester_EndpointHitsDoNotOcclude(t *testing.T) {
	scene := physx.NewListScene(nil)
	scene.Add(shapes.NewPlane(geom.NewPoint(0, 0, 1), geom.NewVector(0, 0, 1)), nil, false)

	tester, err := physx.NewVisibilityTester(scene, 1e-3)
	require.NoError(t, err)

	// A hit exactly at the light's distance is "light reached"
	visible, err := tester.TestVisibility(geom.NewRay(geom.NewPoint(0, 0, 0), geom.NewVector(0, 0, 1)), 1.0)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestVisibilityTester_AnyDistance(t *testing.T) {
	scene := physx.NewListScene(nil)
	scene.Add(shapes.NewPlane(geom.NewPoint(0, 0, 100), geom.NewVector(0, 0, 1)), nil, false)

	tester, err := physx.NewVisibilityTester(scene, 1e-3)
	require.NoError(t, err)

	visible, err := tester.TestVisibilityAnyDistance(geom.NewRay(geom.NewPoint(0, 0, 0), geom.NewVector(0, 0, 1)))
	require.NoError(t, err)
	assert.False(t, visible, "a hit at any distance blocks the escape")

	clear, err := tester.TestVisibilityAnyDistance(geom.NewRay(geom.NewPoint(0, 0, 0), geom.NewVector(0, 0, -1)))
	require.NoError(t, err)
	assert.True(t, clear)
}

func TestVisibilityTester_ComputePdf(t *testing.T) {
	corner := geom.NewPoint(-0.5, 2, -0.5)
	u := geom.NewVector(1, 0, 0)
	v := geom.NewVector(0, 0, 1)
	light := toolkit.NewAreaQuadLight(corner, u, v, spectrum.Color3{R: 5, G: 5, B: 5})

	lightShape := shapes.NewTriangle(corner, corner.Add(u), corner.Add(u).Add(v))
	lightShape.AttachLight(0, light).AttachLight(1, light)

	scene := physx.NewListScene(nil)
	scene.Add(lightShape, nil, false)

	tester, err := physx.NewVisibilityTester(scene, 1e-3)
	require.NoError(t, err)

	rayToLight := geom.NewRay(geom.NewPoint(-0.2, 0, -0.2), geom.NewVector(0, 1, 0))

	t.Run("unblocked ray keeps the sample pdf", func(t *testing.T) {
		point, pdf, err := tester.ComputePdf(rayToLight, light, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, pdf, 1e-12)
		assert.InDelta(t, 2.0, point.Y, 1e-9)
	})

	t.Run("foreign occluder collapses the pdf", func(t *testing.T) {
		scene.Add(shapes.NewPlane(geom.NewPoint(0, 1, 0), geom.NewVector(0, 1, 0)), nil, false)

		_, pdf, err := tester.ComputePdf(rayToLight, light, 0.25)
		require.NoError(t, err)
		assert.Equal(t, 0.0, pdf)
	})
}

func TestLightSamplers(t *testing.T) {
	lightA := toolkit.NewPointLight(geom.NewPoint(0, 1, 0), spectrum.White())
	lightB := toolkit.NewPointLight(geom.NewPoint(1, 1, 0), spectrum.White())
	point := geom.NewPoint(0, 0, 0)

	t.Run("all-light sampler enumerates with pdf 1", func(t *testing.T) {
		sampler := physx.NewAllLightSampler([]physx.Light{lightA, lightB})
		require.NoError(t, sampler.PrepareSamples(point))

		first, pdf, err := sampler.NextSample()
		require.NoError(t, err)
		assert.Equal(t, physx.Light(lightA), first)
		assert.Equal(t, 1.0, pdf)

		second, _, err := sampler.NextSample()
		require.NoError(t, err)
		assert.Equal(t, physx.Light(lightB), second)

		_, _, err = sampler.NextSample()
		assert.ErrorIs(t, err, core.ErrNoMoreData)

		// Exhaustion unprepares the sampler
		_, _, err = sampler.NextSample()
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("sampling before preparing is an error", func(t *testing.T) {
		sampler := physx.NewAllLightSampler([]physx.Light{lightA})
		_, _, err := sampler.NextSample()
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("random sampler yields one light with pdf 1/N", func(t *testing.T) {
		sampler := physx.NewRandomLightSampler([]physx.Light{lightA, lightB}, core.NewRandomSampler(7))
		require.NoError(t, sampler.PrepareSamples(point))

		light, pdf, err := sampler.NextSample()
		require.NoError(t, err)
		assert.NotNil(t, light)
		assert.InDelta(t, 0.5, pdf, 1e-12)

		_, _, err = sampler.NextSample()
		assert.ErrorIs(t, err, core.ErrNoMoreData)
	})
}
