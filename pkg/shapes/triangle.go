package shapes

import (
	"encoding/binary"
	"math"

	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// barycentricDataSize is two float64 coordinates
const barycentricDataSize = 16

// Triangle is a single triangle. Hits carry the barycentric coordinates
// of the intersection as additional data so interpolating materials can
// reconstruct per-vertex attributes.
type Triangle struct {
	V0, V1, V2 geom.Point

	normal geom.Vector

	materials [2]physx.Material
	lights    [2]physx.Light
}

// NewTriangle creates a triangle; the geometric normal follows the
// winding of the vertices.
func NewTriangle(v0, v1, v2 geom.Point) *Triangle {
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	return &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		normal: edge1.Cross(edge2).Normalize(),
	}
}

// AttachMaterial binds a material to one face
func (t *Triangle) AttachMaterial(face int32, material physx.Material) *Triangle {
	t.materials[face] = material
	return t
}

// AttachLight binds an emissive light to one face
func (t *Triangle) AttachLight(face int32, light physx.Light) *Triangle {
	t.lights[face] = light
	return t
}

// Trace intersects the triangle with a ray in model space using the
// Moller-Trumbore algorithm
func (t *Triangle) Trace(ray geom.Ray, allocator *tracer.HitAllocator) (*tracer.HitList, error) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	determinant := edge1.Dot(h)

	// Parallel rays never intersect
	if math.Abs(determinant) < 1e-12 {
		return nil, nil
	}

	invDeterminant := 1 / determinant
	s := ray.Origin.Subtract(t.V0)

	b1 := s.Dot(h) * invDeterminant
	if b1 < 0 || b1 > 1 {
		return nil, nil
	}

	q := s.Cross(edge1)
	b2 := ray.Direction.Dot(q) * invDeterminant
	if b2 < 0 || b1+b2 > 1 {
		return nil, nil
	}

	distance := edge2.Dot(q) * invDeterminant
	if distance < 0 {
		return nil, nil
	}

	face := tracer.FaceFront
	if ray.Direction.Dot(t.normal) > 0 {
		face = tracer.FaceBack
	}

	return allocator.Allocate(nil, distance, face, encodeBarycentric(b1, b2), 8)
}

// ComputeNormal returns the face-oriented geometric normal
func (t *Triangle) ComputeNormal(modelHitPoint geom.Point, face int32) geom.Vector {
	if face == tracer.FaceBack {
		return t.normal.Negate()
	}
	return t.normal
}

// ComputeBounds reports the world-space bounding box under a transform
func (t *Triangle) ComputeBounds(modelToWorld *matrix.Matrix) (geom.Point, geom.Point, bool) {
	v0 := modelToWorld.TransformPoint(t.V0)
	v1 := modelToWorld.TransformPoint(t.V1)
	v2 := modelToWorld.TransformPoint(t.V2)

	min := geom.NewPoint(
		math.Min(v0.X, math.Min(v1.X, v2.X)),
		math.Min(v0.Y, math.Min(v1.Y, v2.Y)),
		math.Min(v0.Z, math.Min(v1.Z, v2.Z)),
	)
	max := geom.NewPoint(
		math.Max(v0.X, math.Max(v1.X, v2.X)),
		math.Max(v0.Y, math.Max(v1.Y, v2.Y)),
		math.Max(v0.Z, math.Max(v1.Z, v2.Z)),
	)
	return min, max, true
}

// MaterialForFace returns the material attached to a face, if any
func (t *Triangle) MaterialForFace(face int32) physx.Material {
	if face < 0 || int(face) >= len(t.materials) {
		return nil
	}
	return t.materials[face]
}

// LightForFace returns the light attached to a face, if any
func (t *Triangle) LightForFace(face int32) physx.Light {
	if face < 0 || int(face) >= len(t.lights) {
		return nil
	}
	return t.lights[face]
}

func encodeBarycentric(b1, b2 float64) []byte {
	data := make([]byte, barycentricDataSize)
	binary.LittleEndian.PutUint64(data[0:], math.Float64bits(b1))
	binary.LittleEndian.PutUint64(data[8:], math.Float64bits(b2))
	return data
}

// DecodeBarycentric recovers the barycentric coordinates a triangle hit
// carries as additional data
func DecodeBarycentric(data []byte) (b1, b2 float64, ok bool) {
	if len(data) != barycentricDataSize {
		return 0, 0, false
	}
	b1 = math.Float64frombits(binary.LittleEndian.Uint64(data[0:]))
	b2 = math.Float64frombits(binary.LittleEndian.Uint64(data[8:]))
	return b1, b2, true
}
