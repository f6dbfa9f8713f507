package physx

import (
	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// LightSample is the result of sampling a light toward a shading point
type LightSample struct {
	Spectrum spectrum.Spectrum // incoming radiance, nil when occluded
	ToLight  geom.Vector       // unit direction from the shading point
	Pdf      float64           // per-solid-angle; +Inf for delta lights
}

// Light can be sampled for direct lighting and evaluated for emission
type Light interface {
	// Sample draws a direction toward the light from the given point,
	// testing visibility through the supplied tester
	Sample(worldHitPoint geom.Point, tester *VisibilityTester, sampler core.Sampler, compositor *spectrum.Compositor) (LightSample, error)

	// ComputeEmissive evaluates the radiance the light emits along a ray
	// pointed at it, or nil if the ray is occluded or misses
	ComputeEmissive(rayToLight geom.Ray, tester *VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, error)

	// ComputeEmissiveWithPdf additionally reports the solid-angle pdf of
	// sampling that ray toward the light
	ComputeEmissiveWithPdf(rayToLight geom.Ray, tester *VisibilityTester, compositor *spectrum.Compositor) (spectrum.Spectrum, float64, error)
}

// LightSampler prepares per-shading-point light candidates and yields
// them with their selection pdf. It must be re-prepared after yielding
// ErrNoMoreData.
type LightSampler interface {
	// PrepareSamples selects the candidate lights for a shading point
	PrepareSamples(shadingPoint geom.Point) error

	// NextSample yields the next candidate and its selection pdf,
	// ErrNoMoreData when exhausted, or ErrInvalidArgument if the
	// sampler is unprepared
	NextSample() (Light, float64, error)
}

// AllLightSampler yields every light with selection pdf 1; the uniform
// enumeration strategy.
type AllLightSampler struct {
	lights   []Light
	cursor   int
	prepared bool
}

// NewAllLightSampler creates a sampler over a fixed light list
func NewAllLightSampler(lights []Light) *AllLightSampler {
	return &AllLightSampler{lights: lights}
}

// PrepareSamples resets the enumeration for a new shading point
func (s *AllLightSampler) PrepareSamples(shadingPoint geom.Point) error {
	if err := shadingPoint.Validate(); err != nil {
		return err
	}
	s.cursor = 0
	s.prepared = true
	return nil
}

// NextSample yields the next light with selection pdf 1
func (s *AllLightSampler) NextSample() (Light, float64, error) {
	if !s.prepared {
		return nil, 0, core.ErrInvalidArgument
	}
	if s.cursor == len(s.lights) {
		s.prepared = false
		return nil, 0, core.ErrNoMoreData
	}
	light := s.lights[s.cursor]
	s.cursor++
	return light, 1, nil
}

// RandomLightSampler yields a single uniformly chosen light per shading
// point with selection pdf 1/N.
type RandomLightSampler struct {
	lights   []Light
	sampler  core.Sampler
	chosen   Light
	prepared bool
}

// NewRandomLightSampler creates a one-light-per-point sampler
func NewRandomLightSampler(lights []Light, sampler core.Sampler) *RandomLightSampler {
	return &RandomLightSampler{lights: lights, sampler: sampler}
}

// PrepareSamples draws the candidate light for a new shading point
func (s *RandomLightSampler) PrepareSamples(shadingPoint geom.Point) error {
	if err := shadingPoint.Validate(); err != nil {
		return err
	}
	if len(s.lights) == 0 {
		s.chosen = nil
	} else {
		index := int(s.sampler.Get1D() * float64(len(s.lights)))
		if index == len(s.lights) {
			index--
		}
		s.chosen = s.lights[index]
	}
	s.prepared = true
	return nil
}

// NextSample yields the chosen light with selection pdf 1/N
func (s *RandomLightSampler) NextSample() (Light, float64, error) {
	if !s.prepared {
		return nil, 0, core.ErrInvalidArgument
	}
	if s.chosen == nil {
		s.prepared = false
		return nil, 0, core.ErrNoMoreData
	}
	light := s.chosen
	s.chosen = nil
	return light, 1 / float64(len(s.lights)), nil
}
