package tracer

import (
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
)

// Face codes for two-sided shapes. Shapes with more than two faces (CSG
// results, meshes) may use any non-negative codes of their own.
const (
	FaceFront int32 = 0
	FaceBack  int32 = 1
)

// Shape is the minimal contract a geometry must satisfy to be traced.
// Trace intersects the shape with a ray in the shape's own space and
// returns a chain of hits built through the allocator, or nil for a miss.
type Shape interface {
	Trace(ray geom.Ray, allocator *HitAllocator) (*HitList, error)
}

// NormalComputer is implemented by shapes that can report a surface
// normal in model space for a given face.
type NormalComputer interface {
	ComputeNormal(modelHitPoint geom.Point, face int32) geom.Vector
}

// BoundsComputer is implemented by shapes with finite extent. It reports
// a world-space axis-aligned bounding box under the given transform and
// whether the shape is bounded at all.
type BoundsComputer interface {
	ComputeBounds(modelToWorld *matrix.Matrix) (min, max geom.Point, bounded bool)
}
