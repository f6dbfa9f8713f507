package spectrum

import "github.com/lumen-render/lumen/pkg/mem"

// attenuatedReflector scales a reflector's response by a constant
type attenuatedReflector struct {
	reflector   Reflector
	attenuation float64
}

func (r *attenuatedReflector) Reflect(wavelength, incoming float64) float64 {
	return r.reflector.Reflect(wavelength, incoming) * r.attenuation
}

// sumReflector adds the responses of two reflectors
type sumReflector struct {
	reflector0 Reflector
	reflector1 Reflector
}

func (r *sumReflector) Reflect(wavelength, incoming float64) float64 {
	return r.reflector0.Reflect(wavelength, incoming) +
		r.reflector1.Reflect(wavelength, incoming)
}

// ReflectorCompositor builds lazy reflector nodes in per-kind arenas,
// with the same lifetime discipline as Compositor.
type ReflectorCompositor struct {
	attenuated mem.StaticArena[attenuatedReflector]
	sums       mem.StaticArena[sumReflector]
}

// NewReflectorCompositor creates an empty compositor
func NewReflectorCompositor() *ReflectorCompositor {
	return &ReflectorCompositor{}
}

// Clear invalidates every node the compositor has produced
func (c *ReflectorCompositor) Clear() {
	c.attenuated.FreeAll()
	c.sums.FreeAll()
}

// Attenuate returns the reflector scaled by a constant, with the same
// collapse rules as Compositor.Attenuate
func (c *ReflectorCompositor) Attenuate(reflector Reflector, attenuation float64) Reflector {
	if reflector == nil || isZeroAttenuation(attenuation) {
		return nil
	}
	if attenuation == 1 {
		return reflector
	}

	if attenuated, ok := reflector.(*attenuatedReflector); ok {
		reflector = attenuated.reflector
		attenuation *= attenuated.attenuation
	}

	node := c.attenuated.Alloc()
	node.reflector = reflector
	node.attenuation = attenuation
	return node
}

// Add returns the sum of two reflectors. Adding a reflector to itself
// collapses to a doubling attenuation; a nil operand returns the other.
func (c *ReflectorCompositor) Add(reflector0, reflector1 Reflector) Reflector {
	if reflector0 == nil {
		return reflector1
	}
	if reflector1 == nil {
		return reflector0
	}
	if reflector0 == reflector1 {
		return c.Attenuate(reflector0, 2)
	}

	node := c.sums.Alloc()
	node.reflector0 = reflector0
	node.reflector1 = reflector1
	return node
}
