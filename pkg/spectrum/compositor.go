package spectrum

import (
	"math"

	"github.com/lumen-render/lumen/pkg/mem"
)

// attenuatedSpectrum scales an inner spectrum by a constant
type attenuatedSpectrum struct {
	spectrum    Spectrum
	attenuation float64
}

func (s *attenuatedSpectrum) Sample(wavelength float64) float64 {
	return s.spectrum.Sample(wavelength) * s.attenuation
}

// sumSpectrum adds two spectra
type sumSpectrum struct {
	spectrum0 Spectrum
	spectrum1 Spectrum
}

func (s *sumSpectrum) Sample(wavelength float64) float64 {
	return s.spectrum0.Sample(wavelength) + s.spectrum1.Sample(wavelength)
}

// fmaSpectrum evaluates spectrum0 + spectrum1 * attenuation
type fmaSpectrum struct {
	spectrum0   Spectrum
	spectrum1   Spectrum
	attenuation float64
}

func (s *fmaSpectrum) Sample(wavelength float64) float64 {
	return s.spectrum0.Sample(wavelength) + s.spectrum1.Sample(wavelength)*s.attenuation
}

// reflectionSpectrum routes an incoming spectrum through a reflector
type reflectionSpectrum struct {
	spectrum  Spectrum
	reflector Reflector
}

func (s *reflectionSpectrum) Sample(wavelength float64) float64 {
	return s.reflector.Reflect(wavelength, s.spectrum.Sample(wavelength))
}

// attenuatedReflectionSpectrum routes an incoming spectrum through a
// reflector and scales the result
type attenuatedReflectionSpectrum struct {
	spectrum    Spectrum
	reflector   Reflector
	attenuation float64
}

func (s *attenuatedReflectionSpectrum) Sample(wavelength float64) float64 {
	return s.reflector.Reflect(wavelength, s.spectrum.Sample(wavelength)) * s.attenuation
}

// Compositor builds lazy spectrum nodes in per-kind arenas. Every node
// it returns is valid until Clear; the integrator clears between
// samples. Operations collapse algebraically where the result is
// representable without a new node.
type Compositor struct {
	attenuated            mem.StaticArena[attenuatedSpectrum]
	sums                  mem.StaticArena[sumSpectrum]
	fmas                  mem.StaticArena[fmaSpectrum]
	reflections           mem.StaticArena[reflectionSpectrum]
	attenuatedReflections mem.StaticArena[attenuatedReflectionSpectrum]
}

// NewCompositor creates an empty compositor
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Clear invalidates every node the compositor has produced
func (c *Compositor) Clear() {
	c.attenuated.FreeAll()
	c.sums.FreeAll()
	c.fmas.FreeAll()
	c.reflections.FreeAll()
	c.attenuatedReflections.FreeAll()
}

// isZeroAttenuation treats signed zero and denormals as zero
func isZeroAttenuation(attenuation float64) bool {
	return math.Abs(attenuation) < math.SmallestNonzeroFloat64*float64(1<<52)
}

// Add returns the sum of two spectra. Adding a spectrum to itself
// collapses to a doubling attenuation; a nil operand returns the other.
func (c *Compositor) Add(spectrum0, spectrum1 Spectrum) Spectrum {
	if spectrum0 == nil {
		return spectrum1
	}
	if spectrum1 == nil {
		return spectrum0
	}

	if spectrum0 == spectrum1 {
		return c.Attenuate(spectrum0, 2)
	}

	if attenuated, ok := spectrum0.(*attenuatedSpectrum); ok {
		return c.AttenuatedAdd(spectrum1, attenuated.spectrum, attenuated.attenuation)
	}
	if attenuated, ok := spectrum1.(*attenuatedSpectrum); ok {
		return c.AttenuatedAdd(spectrum0, attenuated.spectrum, attenuated.attenuation)
	}

	node := c.sums.Alloc()
	node.spectrum0 = spectrum0
	node.spectrum1 = spectrum1
	return node
}

// Attenuate returns the spectrum scaled by a constant. Zero attenuation
// (including signed zero and denormals) collapses to nil, unit
// attenuation returns the input, and nested attenuations fold into one
// node.
func (c *Compositor) Attenuate(spectrum Spectrum, attenuation float64) Spectrum {
	if spectrum == nil || isZeroAttenuation(attenuation) {
		return nil
	}
	if attenuation == 1 {
		return spectrum
	}

	if attenuated, ok := spectrum.(*attenuatedSpectrum); ok {
		spectrum = attenuated.spectrum
		attenuation *= attenuated.attenuation
	}

	node := c.attenuated.Alloc()
	node.spectrum = spectrum
	node.attenuation = attenuation
	return node
}

// AttenuatedAdd returns spectrum0 + spectrum1 * attenuation as a single
// fused node, collapsing to Add or Attenuate where possible.
func (c *Compositor) AttenuatedAdd(spectrum0, spectrum1 Spectrum, attenuation float64) Spectrum {
	if spectrum0 == nil {
		return c.Attenuate(spectrum1, attenuation)
	}
	if spectrum1 == nil || isZeroAttenuation(attenuation) {
		return spectrum0
	}
	if attenuation == 1 {
		return c.Add(spectrum0, spectrum1)
	}

	if attenuated, ok := spectrum1.(*attenuatedSpectrum); ok {
		spectrum1 = attenuated.spectrum
		attenuation *= attenuated.attenuation
	}

	node := c.fmas.Alloc()
	node.spectrum0 = spectrum0
	node.spectrum1 = spectrum1
	node.attenuation = attenuation
	return node
}

// AddReflection routes a spectrum through a reflector. A nil spectrum or
// reflector yields nil.
func (c *Compositor) AddReflection(spectrum Spectrum, reflector Reflector) Spectrum {
	if spectrum == nil || reflector == nil {
		return nil
	}

	node := c.reflections.Alloc()
	node.spectrum = spectrum
	node.reflector = reflector
	return node
}

// AttenuatedAddReflection routes a spectrum through a reflector and
// scales the result
func (c *Compositor) AttenuatedAddReflection(spectrum Spectrum, reflector Reflector, attenuation float64) Spectrum {
	if spectrum == nil || reflector == nil || isZeroAttenuation(attenuation) {
		return nil
	}
	if attenuation == 1 {
		return c.AddReflection(spectrum, reflector)
	}

	node := c.attenuatedReflections.Alloc()
	node.spectrum = spectrum
	node.reflector = reflector
	node.attenuation = attenuation
	return node
}
