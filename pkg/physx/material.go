package physx

import (
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/spectrum"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// Material produces a BSDF for a shading point. Implementations may
// allocate only from the passed-in allocator and compositor; everything
// they return is invalidated when the integrator finishes the sample.
type Material interface {
	Sample(modelHitPoint geom.Point, additionalData []byte, textureCoords geom.Vec2, allocator *BsdfAllocator, compositor *spectrum.ReflectorCompositor) (Bsdf, error)
}

// Translucent is implemented by materials whose surfaces pass light;
// the integrator uses the translucency as the hit's blending alpha.
// Materials without it are opaque (alpha 1).
type Translucent interface {
	Translucency() float64
}

// MaterialHolder is implemented by shapes with materials attached
type MaterialHolder interface {
	MaterialForFace(face int32) Material
}

// LightHolder is implemented by shapes with emissive attachments
type LightHolder interface {
	LightForFace(face int32) Light
}

// shapeMaterial resolves the material capability of a shape for a face
func shapeMaterial(shape tracer.Shape, face int32) Material {
	if holder, ok := shape.(MaterialHolder); ok {
		return holder.MaterialForFace(face)
	}
	return nil
}

// shapeLight resolves the emissive capability of a shape for a face
func shapeLight(shape tracer.Shape, face int32) Light {
	if holder, ok := shape.(LightHolder); ok {
		return holder.LightForFace(face)
	}
	return nil
}

// shapeNormal resolves the normal capability of a shape for a face
func shapeNormal(shape tracer.Shape, modelHitPoint geom.Point, face int32) (geom.Vector, bool) {
	if computer, ok := shape.(tracer.NormalComputer); ok {
		return computer.ComputeNormal(modelHitPoint, face), true
	}
	return geom.Vector{}, false
}
