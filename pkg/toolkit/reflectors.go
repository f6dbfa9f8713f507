package toolkit

import "github.com/lumen-render/lumen/pkg/spectrum"

// UniformReflector reflects the same fraction of incoming light at every
// wavelength
type UniformReflector struct {
	Reflectance float64
}

// NewUniformReflector creates a flat reflectance curve
func NewUniformReflector(reflectance float64) *UniformReflector {
	return &UniformReflector{Reflectance: reflectance}
}

// Reflect scales the incoming intensity by the reflectance
func (r *UniformReflector) Reflect(wavelength, incoming float64) float64 {
	return incoming * r.Reflectance
}

// RGBReflector reflects per-primary fractions of incoming light,
// snapping wavelengths to the nearest representative primary
type RGBReflector struct {
	Albedo spectrum.Color3
}

// NewRGBReflector creates a per-primary reflectance curve
func NewRGBReflector(albedo spectrum.Color3) *RGBReflector {
	return &RGBReflector{Albedo: albedo}
}

// Reflect scales the incoming intensity by the primary's albedo
func (r *RGBReflector) Reflect(wavelength, incoming float64) float64 {
	switch {
	case wavelength >= (spectrum.WavelengthR+spectrum.WavelengthG)/2:
		return incoming * r.Albedo.R
	case wavelength >= (spectrum.WavelengthG+spectrum.WavelengthB)/2:
		return incoming * r.Albedo.G
	default:
		return incoming * r.Albedo.B
	}
}

// ConstantSpectrum emits the same intensity at every wavelength
type ConstantSpectrum struct {
	Intensity float64
}

// NewConstantSpectrum creates a flat spectrum
func NewConstantSpectrum(intensity float64) *ConstantSpectrum {
	return &ConstantSpectrum{Intensity: intensity}
}

// Sample returns the constant intensity
func (s *ConstantSpectrum) Sample(wavelength float64) float64 {
	return s.Intensity
}
