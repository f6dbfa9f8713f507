package toolkit

import (
	"math"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// AreaQuadLight emits uniformly from one side of a parallelogram
// spanned by two edge vectors. Attach it to the geometry that represents
// it in the scene so emissive hits and occlusion tests agree.
type AreaQuadLight struct {
	Corner geom.Point
	U, V   geom.Vector

	normal   geom.Vector
	area     float64
	emission *spectrum.RGB
}

// NewAreaQuadLight creates an area light over corner + u*U + v*V
func NewAreaQuadLight(corner geom.Point, u, v geom.Vector, emission spectrum.Color3) *AreaQuadLight {
	cross := u.Cross(v)
	normal, area := cross.NormalizeWithLength()
	return &AreaQuadLight{
		Corner:   corner,
		U:        u,
		V:        v,
		normal:   normal,
		area:     area,
		emission: spectrum.NewRGB(emission),
	}
}

// Normal returns the emitting side's normal
func (l *AreaQuadLight) Normal() geom.Vector {
	return l.normal
}

// Sample draws a uniform point on the quad and converts the area pdf to
// a solid-angle pdf at the shading point
func (l *AreaQuadLight) Sample(worldHitPoint geom.Point, tester *physx.VisibilityTester, sampler core.Sampler, compositor *spectrum.Compositor) (physx.LightSample, error) {
	u, v := sampler.Get2D()
	samplePoint := l.Corner.Add(l.U.Scale(u)).Add(l.V.Scale(v))

	toLight := samplePoint.Subtract(worldHitPoint)
	distance := toLight.Length()
	if distance == 0 || l.area == 0 {
		return physx.LightSample{}, nil
	}

	direction := toLight.Scale(1 / distance)

	// Emission is one-sided
	facing := direction.Negate().Dot(l.normal)
	if facing <= 0 {
		return physx.LightSample{ToLight: direction}, nil
	}

	pdf := distance * distance / (l.area * facing)

	visible, err := tester.TestVisibility(geom.NewRay(worldHitPoint, direction), distance)
	if err != nil {
		return physx.LightSample{}, err
	}
	if !visible {
		return physx.LightSample{ToLight: direction, Pdf: pdf}, nil
	}

	return physx.LightSample{
		Spectrum: l.emission,
		ToLight:  direction,
		Pdf:      pdf,
	}, nil
}

// ComputeEmissive returns the light's radiance if the ray reaches it
// before any foreign geometry
func (l *AreaQuadLight) ComputeEmissive(rayToLight geom.Ray, tester *physx.VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, error) {
	emitted, _, err := l.ComputeEmissiveWithPdf(rayToLight, tester, compositor)
	return emitted, err
}

// ComputeEmissiveWithPdf additionally reports the solid-angle pdf of
// having sampled the struck point from the ray's origin
func (l *AreaQuadLight) ComputeEmissiveWithPdf(rayToLight geom.Ray, tester *physx.VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, float64, error) {
	hitPoint, pdf, err := tester.ComputePdf(rayToLight, l, 1)
	if err != nil {
		return nil, 0, err
	}
	if pdf == 0 {
		return nil, 0, nil
	}

	toLight := hitPoint.Subtract(rayToLight.Origin)
	distance := toLight.Length()
	if distance == 0 || l.area == 0 {
		return nil, 0, nil
	}

	direction := toLight.Scale(1 / distance)
	facing := direction.Negate().Dot(l.normal)
	if facing <= 0 {
		return nil, 0, nil
	}

	solidAnglePdf := distance * distance / (l.area * facing)
	if math.IsInf(solidAnglePdf, 1) {
		return nil, 0, nil
	}

	return l.emission, solidAnglePdf, nil
}
