package shapes

import (
	"math"

	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// Plane is an infinite plane defined by a point and normal, with
// optional per-face material and light attachments.
type Plane struct {
	Point  geom.Point
	Normal geom.Vector

	materials [2]physx.Material
	lights    [2]physx.Light
}

// NewPlane creates a plane through the given point; the normal is
// normalized internally.
func NewPlane(point geom.Point, normal geom.Vector) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize()}
}

// AttachMaterial binds a material to one face
func (p *Plane) AttachMaterial(face int32, material physx.Material) *Plane {
	p.materials[face] = material
	return p
}

// AttachLight binds an emissive light to one face
func (p *Plane) AttachLight(face int32, light physx.Light) *Plane {
	p.lights[face] = light
	return p
}

// Trace intersects the plane with a ray in model space
func (p *Plane) Trace(ray geom.Ray, allocator *tracer.HitAllocator) (*tracer.HitList, error) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never intersect
	if math.Abs(denominator) < 1e-8 {
		return nil, nil
	}

	distance := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if distance < 0 {
		return nil, nil
	}

	face := tracer.FaceFront
	if denominator > 0 {
		face = tracer.FaceBack
	}

	return allocator.Allocate(nil, distance, face, nil, 1)
}

// ComputeNormal returns the face-oriented surface normal
func (p *Plane) ComputeNormal(modelHitPoint geom.Point, face int32) geom.Vector {
	if face == tracer.FaceBack {
		return p.Normal.Negate()
	}
	return p.Normal
}

// MaterialForFace returns the material attached to a face, if any
func (p *Plane) MaterialForFace(face int32) physx.Material {
	if face < 0 || int(face) >= len(p.materials) {
		return nil
	}
	return p.materials[face]
}

// LightForFace returns the light attached to a face, if any
func (p *Plane) LightForFace(face int32) physx.Light {
	if face < 0 || int(face) >= len(p.lights) {
		return nil
	}
	return p.lights[face]
}
