package physx

import (
	"math"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/mem"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// BsdfSample is the result of sampling an outgoing direction from a BSDF
type BsdfSample struct {
	Reflector spectrum.Reflector // reflectance along the sampled direction
	Outgoing  geom.Vector        // unit outgoing direction
	Pdf       float64            // per-solid-angle; +Inf for delta lobes
}

// IsDelta returns true for delta-distribution samples
func (s BsdfSample) IsDelta() bool {
	return math.IsInf(s.Pdf, 1)
}

// Bsdf describes how a surface scatters light at one shading point.
// Incoming directions point toward the surface; outgoing directions and
// pdfs follow the usual per-solid-angle conventions.
type Bsdf interface {
	// Sample draws an outgoing direction with its reflectance and pdf
	Sample(incoming, normal geom.Vector, sampler core.Sampler, compositor *spectrum.ReflectorCompositor) (BsdfSample, error)

	// ComputeReflectance evaluates the reflectance for a fixed pair of
	// directions
	ComputeReflectance(incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, error)

	// ComputeReflectanceWithPdf additionally reports the pdf of sampling
	// the outgoing direction
	ComputeReflectanceWithPdf(incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, float64, error)
}

// SampleWithLambertianFalloff samples the BSDF and folds the cosine
// falloff of the sampled direction into the returned reflectance.
func SampleWithLambertianFalloff(b Bsdf, incoming, normal geom.Vector, sampler core.Sampler, compositor *spectrum.ReflectorCompositor) (BsdfSample, error) {
	sample, err := b.Sample(incoming, normal, sampler, compositor)
	if err != nil {
		return BsdfSample{}, err
	}
	sample.Reflector = compositor.Attenuate(sample.Reflector, sample.Outgoing.AbsDot(normal))
	return sample, nil
}

// ComputeReflectanceWithLambertianFalloff evaluates the reflectance with
// the cosine falloff of the outgoing direction folded in.
func ComputeReflectanceWithLambertianFalloff(b Bsdf, incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, error) {
	reflector, err := b.ComputeReflectance(incoming, outgoing, normal, compositor)
	if err != nil {
		return nil, err
	}
	return compositor.Attenuate(reflector, outgoing.AbsDot(normal)), nil
}

// ComputeReflectanceWithPdfWithLambertianFalloff evaluates reflectance
// and pdf with the cosine falloff folded into the reflectance.
func ComputeReflectanceWithPdfWithLambertianFalloff(b Bsdf, incoming, outgoing, normal geom.Vector, compositor *spectrum.ReflectorCompositor) (spectrum.Reflector, float64, error) {
	reflector, pdf, err := b.ComputeReflectanceWithPdf(incoming, outgoing, normal, compositor)
	if err != nil {
		return nil, 0, err
	}
	return compositor.Attenuate(reflector, outgoing.AbsDot(normal)), pdf, nil
}

// BsdfAllocator scopes per-sample BSDF storage to one integrator call.
// Fixed-size BSDF records are ordinary Go values; the dynamic arena
// carries variable-size payloads (sampled curves, interpolated tables)
// a material attaches to the BSDFs it builds.
type BsdfAllocator struct {
	arena *mem.DynamicArena
}

// NewBsdfAllocator creates an empty allocator
func NewBsdfAllocator() *BsdfAllocator {
	return &BsdfAllocator{arena: mem.NewDynamicArena()}
}

// Scratch allocates zeroed per-sample storage with the given alignment
func (a *BsdfAllocator) Scratch(size, align int) ([]byte, error) {
	return a.arena.Alloc(size, align)
}

// Clear invalidates every allocation; called by the integrator between
// samples
func (a *BsdfAllocator) Clear() {
	a.arena.FreeAll()
}
