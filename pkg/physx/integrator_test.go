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
	"github.com/lumen-render/lumen/pkg/tracer"
	"github.com/lumen-render/lumen/pkg/toolkit"
)

// countingScene counts how many rays are traced through it
type countingScene struct {
	inner  physx.Scene
	traces int
}

func (s *countingScene) Trace(rayTracer *tracer.RayTracer) error {
	s.traces++
	return s.inner.Trace(rayTracer)
}

func defaultTestConfig() physx.IntegratorConfig {
	return physx.IntegratorConfig{
		MaxDepth:                  3,
		RussianRouletteStartDepth: physx.DisableRussianRoulette,
		MinContinueProbability:    0.5,
		MaxContinueProbability:    0.95,
		Epsilon:                   1e-3,
	}
}

func litFloorScene() (physx.Scene, []physx.Light) {
	floor := shapes.NewPlane(geom.NewPoint(0, 0, 0), geom.NewVector(0, 1, 0))
	material := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.7, G: 0.7, B: 0.7})
	floor.AttachMaterial(0, material).AttachMaterial(1, material)

	scene := physx.NewListScene(nil)
	scene.Add(floor, nil, false)

	light := toolkit.NewPointLight(geom.NewPoint(0, 2, 0), spectrum.Color3{R: 10, G: 10, B: 10})
	return scene, []physx.Light{light}
}

func TestPathIntegrator_LitSurface(t *testing.T) {
	scene, lights := litFloorScene()
	sampler := core.NewRandomSampler(1)

	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(lights), sampler, defaultTestConfig(), nil)
	require.NoError(t, err)

	radiance, err := integrator.Integrate(geom.NewRay(geom.NewPoint(0, 1, 0), geom.NewVector(0, -1, 0)), spectrum.White())
	require.NoError(t, err)

	color := spectrum.Tristimulus(radiance)
	assert.Greater(t, color.Luminance(), 0.0, "a lit diffuse surface reflects light")
}

func TestPathIntegrator_MissIsBlack(t *testing.T) {
	scene, lights := litFloorScene()
	sampler := core.NewRandomSampler(1)

	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(lights), sampler, defaultTestConfig(), nil)
	require.NoError(t, err)

	// Pointing away from everything
	radiance, err := integrator.Integrate(geom.NewRay(geom.NewPoint(0, 1, 0), geom.NewVector(0, 1, 0)), spectrum.White())
	require.NoError(t, err)

	assert.True(t, spectrum.Tristimulus(radiance).IsBlack())
}

func TestPathIntegrator_ShadowedPointIsDark(t *testing.T) {
	scene, lights := litFloorScene()

	// Block the light with a small occluder directly above the origin
	occluder := shapes.NewTriangle(
		geom.NewPoint(-0.3, 1, -0.3),
		geom.NewPoint(0.3, 1, -0.3),
		geom.NewPoint(0, 1, 0.4),
	)
	scene.(*physx.ListScene).Add(occluder, nil, false)

	config := defaultTestConfig()
	config.MaxDepth = 0 // direct lighting only
	sampler := core.NewRandomSampler(1)

	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(lights), sampler, config, nil)
	require.NoError(t, err)

	radiance, err := integrator.Integrate(geom.NewRay(geom.NewPoint(0, 0.5, 0), geom.NewVector(0, -1, 0)), spectrum.White())
	require.NoError(t, err)

	assert.True(t, spectrum.Tristimulus(radiance).IsBlack(), "the only light is occluded")
}

func TestPathIntegrator_EmissiveHit(t *testing.T) {
	corner := geom.NewPoint(-1, 2, -1)
	u := geom.NewVector(2, 0, 0)
	v := geom.NewVector(0, 0, 2)
	light := toolkit.NewAreaQuadLight(corner, u, v, spectrum.Color3{R: 4, G: 4, B: 4})

	lightShape := shapes.NewTriangle(corner, corner.Add(u), corner.Add(u).Add(v))
	lightShape.AttachLight(0, light).AttachLight(1, light)

	scene := physx.NewListScene(nil)
	scene.Add(lightShape, nil, false)

	sampler := core.NewRandomSampler(1)
	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler([]physx.Light{light}), sampler, defaultTestConfig(), nil)
	require.NoError(t, err)

	// Looking straight up into the emitting face
	radiance, err := integrator.Integrate(geom.NewRay(geom.NewPoint(-0.2, 0, -0.2), geom.NewVector(0, 1, 0)), spectrum.White())
	require.NoError(t, err)

	color := spectrum.Tristimulus(radiance)
	assert.InDelta(t, 4.0, color.R, 1e-6)
}

func TestPathIntegrator_RussianRouletteTermination(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	inner, _ := litFloorScene()
	scene := &countingScene{inner: inner}

	config := physx.IntegratorConfig{
		MaxDepth:                  1,
		RussianRouletteStartDepth: 1,
		MinContinueProbability:    0.5,
		MaxContinueProbability:    0.5,
		Epsilon:                   1e-3,
	}

	sampler := core.NewRandomSampler(42)
	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(nil), sampler, config, nil)
	require.NoError(t, err)

	const samples = 200000
	ray := geom.NewRay(geom.NewPoint(0, 1, 0), geom.NewVector(0, -1, 0))

	for i := 0; i < samples; i++ {
		_, err := integrator.Integrate(ray, spectrum.White())
		require.NoError(t, err)
	}

	// Depth 0 always traces; the depth-1 bounce traces only when the
	// path survives the roulette at p = 0.5
	continued := scene.traces - samples
	rate := float64(continued) / float64(samples)
	assert.InDelta(t, 0.5, rate, 0.01, "measured continuation rate")
}

func TestPathIntegrator_TransmittanceScalesResult(t *testing.T) {
	corner := geom.NewPoint(-1, 2, -1)
	u := geom.NewVector(2, 0, 0)
	v := geom.NewVector(0, 0, 2)
	light := toolkit.NewAreaQuadLight(corner, u, v, spectrum.Color3{R: 2, G: 2, B: 2})

	lightShape := shapes.NewTriangle(corner, corner.Add(u), corner.Add(u).Add(v))
	lightShape.AttachLight(0, light).AttachLight(1, light)

	scene := physx.NewListScene(nil)
	scene.Add(lightShape, nil, false)

	sampler := core.NewRandomSampler(1)
	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(nil), sampler, defaultTestConfig(), nil)
	require.NoError(t, err)

	ray := geom.NewRay(geom.NewPoint(-0.2, 0, -0.2), geom.NewVector(0, 1, 0))

	full, err := integrator.Integrate(ray, spectrum.White())
	require.NoError(t, err)
	halved, err := integrator.Integrate(ray, spectrum.Color3{R: 0.5, G: 0.5, B: 0.5})
	require.NoError(t, err)

	assert.InDelta(t, spectrum.Tristimulus(full).R/2, spectrum.Tristimulus(halved).R, 1e-9)
}

func TestPathIntegrator_ProcessHitOverride(t *testing.T) {
	scene, lights := litFloorScene()
	sampler := core.NewRandomSampler(1)

	integrator, err := physx.NewPathIntegrator(scene, physx.NewAllLightSampler(lights), sampler, defaultTestConfig(), nil)
	require.NoError(t, err)

	// Replace shading with a flat debug color
	integrator.SetProcessHit(func(ctx *physx.ProcessHitContext) (spectrum.Spectrum, float64, error) {
		return spectrum.NewRGB(spectrum.Color3{R: 1, G: 0, B: 1}), 1, nil
	})

	radiance, err := integrator.Integrate(geom.NewRay(geom.NewPoint(0, 1, 0), geom.NewVector(0, -1, 0)), spectrum.White())
	require.NoError(t, err)

	assert.Equal(t, spectrum.Color3{R: 1, G: 0, B: 1}, spectrum.Tristimulus(radiance))
}

func TestPathIntegrator_ConfigValidation(t *testing.T) {
	scene, lights := litFloorScene()
	sampler := core.NewRandomSampler(1)
	lightSampler := physx.NewAllLightSampler(lights)

	tests := []struct {
		name   string
		mutate func(*physx.IntegratorConfig)
	}{
		{"negative depth", func(c *physx.IntegratorConfig) { c.MaxDepth = -1 }},
		{"min above max", func(c *physx.IntegratorConfig) { c.MinContinueProbability = 0.9; c.MaxContinueProbability = 0.5 }},
		{"probability above one", func(c *physx.IntegratorConfig) { c.MaxContinueProbability = 1.5 }},
		{"negative epsilon", func(c *physx.IntegratorConfig) { c.Epsilon = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultTestConfig()
			tt.mutate(&config)
			_, err := physx.NewPathIntegrator(scene, lightSampler, sampler, config, nil)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}
}
