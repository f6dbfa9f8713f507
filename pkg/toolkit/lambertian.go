package toolkit

import (
	"math"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// LambertianMaterial is an ideal diffuse surface with an RGB albedo
type LambertianMaterial struct {
	reflector *RGBReflector
	bsdf      LambertianBsdf
	alpha     float64
}

// NewLambertianMaterial creates a diffuse material
func NewLambertianMaterial(albedo spectrum.Color3) *LambertianMaterial {
	material := &LambertianMaterial{
		reflector: NewRGBReflector(albedo),
		alpha:     1,
	}
	material.bsdf = LambertianBsdf{reflector: material.reflector}
	return material
}

// NewTranslucentLambertianMaterial creates a diffuse material whose hits
// blend with what lies behind them
func NewTranslucentLambertianMaterial(albedo spectrum.Color3, alpha float64) *LambertianMaterial {
	material := NewLambertianMaterial(albedo)
	material.alpha = alpha
	return material
}

// Sample returns the material's BSDF for a shading point
func (m *LambertianMaterial) Sample(modelHitPoint geom.Point, additionalData []byte, textureCoords geom.Vec2, allocator *physx.BsdfAllocator, compositor *spectrum.ReflectorCompositor) (physx.Bsdf, error) {
	return &m.bsdf, nil
}

// Translucency returns the blending alpha of the material's hits
func (m *LambertianMaterial) Translucency() float64 {
	return m.alpha
}

// LambertianBsdf scatters cosine-weighted about the surface normal with
// a constant albedo/pi reflectance
type LambertianBsdf struct {
	reflector *RGBReflector
}

// Sample draws a cosine-weighted outgoing direction
func (b *LambertianBsdf) Sample(incoming, normal geom.Vector, sampler core.Sampler, compositor *spectrum.ReflectorCompositor) (physx.BsdfSample, error) {
	u, v := sampler.Get2D()

	// Cosine-weighted hemisphere sample about the normal
	radius := math.Sqrt(u)
	phi := 2 * math.Pi * v

	tangent, bitangent := orthonormalBasis(normal)
	local := geom.NewVector(radius*math.Cos(phi), radius*math.Sin(phi), math.Sqrt(1-u))

	outgoing := tangent.Scale(local.X).
		Add(bitangent.Scale(local.Y)).
		Add(normal.Scale(local.Z)).
		Normalize()

	cosine := outgoing.Dot(normal)
	if cosine <= 0 {
		return physx.BsdfSample{}, nil
	}

	return physx.BsdfSample{
		Reflector: compositor.Attenuate(b.reflector, 1/math.Pi),
		Outgoing:  outgoing,
		Pdf:       cosine / math.Pi,
	}, nil
}

// ComputeReflectance evaluates the constant diffuse reflectance
func (b *LambertianBsdf) ComputeReflectance(incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, error) {
	if outgoing.Dot(normal) <= 0 {
		return nil, nil
	}
	return compositor.Attenuate(b.reflector, 1/math.Pi), nil
}

// ComputeReflectanceWithPdf evaluates reflectance and the
// cosine-weighted pdf of the outgoing direction
func (b *LambertianBsdf) ComputeReflectanceWithPdf(incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, float64, error) {
	cosine := outgoing.Dot(normal)
	if cosine <= 0 {
		return nil, 0, nil
	}
	return compositor.Attenuate(b.reflector, 1/math.Pi), cosine / math.Pi, nil
}

// orthonormalBasis builds a tangent frame around a unit normal
func orthonormalBasis(normal geom.Vector) (geom.Vector, geom.Vector) {
	reference := geom.NewVector(1, 0, 0)
	if normal.DominantAxis() == geom.AxisX {
		reference = geom.NewVector(0, 1, 0)
	}
	tangent := normal.Cross(reference).Normalize()
	bitangent := normal.Cross(tangent)
	return tangent, bitangent
}
