package render

import (
	"os"
	"path/filepath"
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

func TestConfig_Defaults(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, 400, config.Width)
	assert.Equal(t, 2.2, config.Gamma)
}

func TestConfig_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	content := []byte("width: 128\nheight: 96\nsamples_per_pixel: 4\nmax_depth: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 128, config.Width)
	assert.Equal(t, 96, config.Height)
	assert.Equal(t, 4, config.SamplesPerPixel)
	assert.Equal(t, 2, config.MaxDepth)

	// Unset keys keep their defaults
	assert.Equal(t, 2.2, config.Gamma)
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, core.ErrInvalidArgument},
		{"zero samples", func(c *Config) { c.SamplesPerPixel = 0 }, core.ErrInvalidArgument},
		{"negative gamma", func(c *Config) { c.Gamma = -1 }, core.ErrInvalidArgument},
		{"min above max", func(c *Config) {
			c.MinContinueProbability = 0.9
			c.MaxContinueProbability = 0.2
		}, core.ErrInvalidArgumentCombination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			assert.ErrorIs(t, config.Validate(), tt.expected)
		})
	}
}

func TestCamera_CenterRay(t *testing.T) {
	camera := NewCamera(
		geom.NewPoint(0, 0, 5),
		geom.NewPoint(0, 0, 0),
		geom.NewVector(0, 1, 0),
		45, 1,
	)

	ray := camera.GetRay(0.5, 0.5)
	direction := ray.Direction.Normalize()

	assert.True(t, ray.Origin.Equals(geom.NewPoint(0, 0, 5)))
	assert.InDelta(t, 0.0, direction.X, 1e-9)
	assert.InDelta(t, 0.0, direction.Y, 1e-9)
	assert.InDelta(t, -1.0, direction.Z, 1e-9)
}

func TestRenderer_Smoke(t *testing.T) {
	material := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.7, G: 0.7, B: 0.7})
	floor := shapes.NewPlane(geom.NewPoint(0, 0, 0), geom.NewVector(0, 1, 0)).
		AttachMaterial(0, material).
		AttachMaterial(1, material)

	scene := physx.NewListScene(nil)
	scene.Add(floor, nil, false)

	light := toolkit.NewPointLight(geom.NewPoint(0, 3, 0), spectrum.Color3{R: 20, G: 20, B: 20})

	config := DefaultConfig()
	config.Width = 16
	config.Height = 12
	config.SamplesPerPixel = 2
	config.TileSize = 8
	config.MaxDepth = 2
	config.Workers = 2

	camera := NewCamera(geom.NewPoint(0, 1, 4), geom.NewPoint(0, 0, 0), geom.NewVector(0, 1, 0), 40, 16.0/12)

	lightList := func(sampler core.Sampler) physx.LightSampler {
		return physx.NewAllLightSampler([]physx.Light{light})
	}

	renderer, err := NewRenderer(scene, lightList, camera, config, nil)
	require.NoError(t, err)

	img, err := renderer.Render()
	require.NoError(t, err)
	require.NotNil(t, img)

	bounds := img.Bounds()
	assert.Equal(t, 16, bounds.Dx())
	assert.Equal(t, 12, bounds.Dy())

	// The floor under the light must not be black
	lit := false
	for y := bounds.Min.Y; y < bounds.Max.Y && !lit; y++ {
		for x := bounds.Min.X; x < bounds.Max.X && !lit; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r+g+b > 0 {
				lit = true
			}
		}
	}
	assert.True(t, lit, "rendered image is entirely black")
}

func TestRenderer_ToneMapOverride(t *testing.T) {
	scene := physx.NewListScene(nil)
	config := DefaultConfig()
	config.Width = 4
	config.Height = 4
	config.SamplesPerPixel = 1
	config.TileSize = 4
	config.Workers = 1

	camera := NewCamera(geom.NewPoint(0, 0, 1), geom.NewPoint(0, 0, 0), geom.NewVector(0, 1, 0), 45, 1)
	lightList := func(sampler core.Sampler) physx.LightSampler {
		return physx.NewAllLightSampler(nil)
	}

	renderer, err := NewRenderer(scene, lightList, camera, config, nil)
	require.NoError(t, err)

	// Force every pixel to full white regardless of radiance
	renderer.SetToneMap(func(linear spectrum.Color3) spectrum.Color3 {
		return spectrum.White()
	})

	img, err := renderer.Render()
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)
}
