package toolkit

import (
	"math"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// PointLight is an isotropic delta emitter. Its sampling pdf is +Inf and
// it can never be hit by a traced ray.
type PointLight struct {
	Position  geom.Point
	intensity *spectrum.RGB
}

// NewPointLight creates a point light with the given radiant intensity
func NewPointLight(position geom.Point, intensity spectrum.Color3) *PointLight {
	return &PointLight{Position: position, intensity: spectrum.NewRGB(intensity)}
}

// Sample aims at the light's position, testing visibility over the
// exact distance and applying inverse-square falloff
func (l *PointLight) Sample(worldHitPoint geom.Point, tester *physx.VisibilityTester, sampler core.Sampler, compositor *spectrum.Compositor) (physx.LightSample, error) {
	toLight := l.Position.Subtract(worldHitPoint)
	distance := toLight.Length()
	if distance == 0 {
		return physx.LightSample{}, nil
	}

	direction := toLight.Scale(1 / distance)

	visible, err := tester.TestVisibility(geom.NewRay(worldHitPoint, direction), distance)
	if err != nil {
		return physx.LightSample{}, err
	}
	if !visible {
		return physx.LightSample{ToLight: direction, Pdf: math.Inf(1)}, nil
	}

	return physx.LightSample{
		Spectrum: compositor.Attenuate(l.intensity, 1/(distance*distance)),
		ToLight:  direction,
		Pdf:      math.Inf(1),
	}, nil
}

// ComputeEmissive returns nil; a delta light is never hit by a ray
func (l *PointLight) ComputeEmissive(rayToLight geom.Ray, tester *physx.VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, error) {
	return nil, nil
}

// ComputeEmissiveWithPdf returns nil; a delta light is never hit by a ray
func (l *PointLight) ComputeEmissiveWithPdf(rayToLight geom.Ray, tester *physx.VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, float64, error) {
	return nil, 0, nil
}
