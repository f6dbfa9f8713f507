package shapes

import (
	"math"

	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// Sphere is a sphere with optional per-face material and light
// attachments. A trace through the sphere emits both intersections as a
// chained hit list so CSG-style consumers see entry and exit.
type Sphere struct {
	Center geom.Point
	Radius float64

	materials [2]physx.Material
	lights    [2]physx.Light
}

// NewSphere creates a sphere
func NewSphere(center geom.Point, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// AttachMaterial binds a material to one face
func (s *Sphere) AttachMaterial(face int32, material physx.Material) *Sphere {
	s.materials[face] = material
	return s
}

// AttachLight binds an emissive light to one face
func (s *Sphere) AttachLight(face int32, light physx.Light) *Sphere {
	s.lights[face] = light
	return s
}

// Trace intersects the sphere with a ray in model space, emitting every
// non-negative root
func (s *Sphere) Trace(ray geom.Ray, allocator *tracer.HitAllocator) (*tracer.HitList, error) {
	oc := ray.Origin.Subtract(s.Center)

	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, nil
	}

	sqrtD := math.Sqrt(discriminant)
	t0 := (-halfB - sqrtD) / a
	t1 := (-halfB + sqrtD) / a

	inside := c < 0

	var chain *tracer.HitList
	var err error

	if t1 >= 0 {
		// Exit crossing: back face from outside, front when starting inside
		face := tracer.FaceBack
		if inside {
			face = tracer.FaceFront
		}
		chain, err = allocator.Allocate(chain, t1, face, nil, 1)
		if err != nil {
			return nil, err
		}
	}

	if t0 >= 0 && t0 != t1 {
		chain, err = allocator.Allocate(chain, t0, tracer.FaceFront, nil, 1)
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}

// ComputeNormal returns the outward normal, flipped for back faces
func (s *Sphere) ComputeNormal(modelHitPoint geom.Point, face int32) geom.Vector {
	normal := modelHitPoint.Subtract(s.Center).Normalize()
	if face == tracer.FaceBack {
		return normal.Negate()
	}
	return normal
}

// ComputeBounds reports the world-space bounding box under a transform
func (s *Sphere) ComputeBounds(modelToWorld *matrix.Matrix) (geom.Point, geom.Point, bool) {
	center := modelToWorld.TransformPoint(s.Center)

	// Conservative: the transformed radius is bounded by the largest
	// column scale of the transform
	radius := s.Radius * transformScaleBound(modelToWorld)

	min := geom.NewPoint(center.X-radius, center.Y-radius, center.Z-radius)
	max := geom.NewPoint(center.X+radius, center.Y+radius, center.Z+radius)
	return min, max, true
}

// MaterialForFace returns the material attached to a face, if any
func (s *Sphere) MaterialForFace(face int32) physx.Material {
	if face < 0 || int(face) >= len(s.materials) {
		return nil
	}
	return s.materials[face]
}

// LightForFace returns the light attached to a face, if any
func (s *Sphere) LightForFace(face int32) physx.Light {
	if face < 0 || int(face) >= len(s.lights) {
		return nil
	}
	return s.lights[face]
}

func transformScaleBound(m *matrix.Matrix) float64 {
	if m == nil {
		return 1
	}
	c := m.ReadContents()
	bound := 0.0
	for col := 0; col < 3; col++ {
		length := math.Sqrt(c[0][col]*c[0][col] + c[1][col]*c[1][col] + c[2][col]*c[2][col])
		bound = math.Max(bound, length)
	}
	return bound
}
