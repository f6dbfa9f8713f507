package tracer

import (
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
)

// ShapeHit is the shape-facing view of one intersection
type ShapeHit struct {
	Shape          Shape
	Distance       float64
	Face           int32
	AdditionalData []byte
}

// SharedHitData is the per-shape-per-ray record referenced by every hit
// the shape emits during one trace call. Premultiplied means the shape
// was traced with the world ray, so model-space quantities must be
// decoded through the inverse transform on demand.
type SharedHitData struct {
	ModelToWorld  *matrix.Matrix
	Premultiplied bool
	ModelRay      geom.Ray
}

// hitRecord is the internal per-hit record held in the ray tracer's
// arena. shapeSeq is the allocation order of the shared record and
// serves as the shape-identity tie breaker during sorting.
type hitRecord struct {
	ShapeHit
	shared        *SharedHitData
	shapeSeq      int
	hitPoint      geom.Point
	hitPointValid bool
}

// HitList is one node of the singly-linked chain a shape builds through
// the hit allocator and returns from Trace.
type HitList struct {
	record *hitRecord
	Next   *HitList
}

// Hit is the fully decoded view of one intersection returned by
// RayTracer.NextHit.
type Hit struct {
	ShapeHit      *ShapeHit
	ModelViewer   geom.Vector
	ModelHitPoint geom.Point
	WorldHitPoint geom.Point
	ModelToWorld  *matrix.Matrix
}
