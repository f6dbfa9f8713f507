package spectrum

// Representative wavelengths (nanometers) used to bridge between
// pointwise spectra and tristimulus colors.
const (
	WavelengthR = 610.0
	WavelengthG = 550.0
	WavelengthB = 465.0
)

// RGB is a spectrum holding three point samples at the representative
// wavelengths; off-sample wavelengths snap to the nearest primary.
type RGB struct {
	Color Color3
}

// NewRGB wraps a color as a spectrum
func NewRGB(color Color3) *RGB {
	return &RGB{Color: color}
}

// Sample returns the intensity of the nearest primary
func (s *RGB) Sample(wavelength float64) float64 {
	switch {
	case wavelength >= (WavelengthR+WavelengthG)/2:
		return s.Color.R
	case wavelength >= (WavelengthG+WavelengthB)/2:
		return s.Color.G
	default:
		return s.Color.B
	}
}

// Tristimulus samples a spectrum at the three representative wavelengths
func Tristimulus(s Spectrum) Color3 {
	if s == nil {
		return Black()
	}
	return Color3{
		R: s.Sample(WavelengthR),
		G: s.Sample(WavelengthG),
		B: s.Sample(WavelengthB),
	}
}

// ReflectorTristimulus probes a reflector's response to unit intensity
// at the three representative wavelengths
func ReflectorTristimulus(r Reflector) Color3 {
	if r == nil {
		return Black()
	}
	return Color3{
		R: r.Reflect(WavelengthR, 1),
		G: r.Reflect(WavelengthG, 1),
		B: r.Reflect(WavelengthB, 1),
	}
}
