package tracer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
	"github.com/lumen-render/lumen/pkg/mem"
)

// RayTracer accumulates, sorts, and exposes the intersections of one
// world ray with any number of shapes. All per-ray state lives in arenas
// owned by the tracer; SetRay resets everything without freeing memory.
type RayTracer struct {
	allocator  *HitAllocator
	shared     mem.StaticArena[SharedHitData]
	hits       *mem.PointerList[*hitRecord]
	hitIndex   int
	currentRay geom.Ray
	rayLength  float64
}

// NewRayTracer creates a ray tracer with empty arenas
func NewRayTracer() *RayTracer {
	return &RayTracer{
		allocator: newHitAllocator(),
		hits:      mem.NewPointerList[*hitRecord](),
		rayLength: 1,
	}
}

// SetRay rebinds the tracer to a new world ray, clearing the hit list
// and both arenas. If normalize is set the direction is replaced with
// its unit vector and the pre-normalization length is recorded.
func (rt *RayTracer) SetRay(ray geom.Ray, normalize bool) error {
	if err := ray.Validate(); err != nil {
		return err
	}

	rt.allocator.freeAll()
	rt.shared.FreeAll()
	rt.hits.Clear()
	rt.hitIndex = 0
	rt.rayLength = 1

	if normalize {
		normalized, length := ray.Normalize()
		if length == 0 {
			return errors.Wrap(core.ErrInvalidArgument, "zero-length ray direction")
		}
		ray = normalized
		rt.rayLength = length
	}

	rt.currentRay = ray
	return nil
}

// Ray returns the current world ray
func (rt *RayTracer) Ray() geom.Ray {
	return rt.currentRay
}

// TraceShape traces a shape that already lives in world space
func (rt *RayTracer) TraceShape(shape Shape) error {
	return rt.trace(shape, nil, true)
}

// TraceShapeWithTransform traces a shape under a model-to-world
// transform. When premultiplied is false the world ray is moved into
// model space before the shape is traced; when true the shape is traced
// with the world ray and hits keep the transform for on-demand decoding.
func (rt *RayTracer) TraceShapeWithTransform(shape Shape, modelToWorld *matrix.Matrix, premultiplied bool) error {
	return rt.trace(shape, modelToWorld, premultiplied)
}

func (rt *RayTracer) trace(shape Shape, modelToWorld *matrix.Matrix, premultiplied bool) error {
	if shape == nil {
		return core.ErrInvalidArgument
	}

	shared := rt.shared.Alloc()
	shared.ModelToWorld = modelToWorld
	shared.Premultiplied = premultiplied

	traceRay := rt.currentRay
	if premultiplied {
		shared.ModelRay = rt.currentRay
	} else {
		shared.ModelRay = modelToWorld.InverseTransformRay(rt.currentRay)
		traceRay = shared.ModelRay
	}

	rt.allocator.bind(shape)
	chain, err := shape.Trace(traceRay, rt.allocator)
	if err != nil {
		rt.shared.FreeLast()
		return err
	}

	if chain == nil {
		rt.shared.FreeLast()
		return nil
	}

	seq := rt.shared.Size() - 1
	for node := chain; node != nil; node = node.Next {
		node.record.shared = shared
		node.record.shapeSeq = seq
		rt.hits.Append(node.record)
	}

	return nil
}

// Sort orders accumulated hits by distance ascending, breaking ties by
// shape trace order and then face. Ties beyond that keep allocation
// order. Sort is idempotent and does not disturb the iteration cursor.
func (rt *RayTracer) Sort() {
	rt.hits.Sort(func(a, b *hitRecord) bool {
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.shapeSeq != b.shapeSeq {
			return a.shapeSeq < b.shapeSeq
		}
		return a.Face < b.Face
	})
}

// NextShapeHit returns the next hit in order, or ErrNoMoreData once the
// cursor reaches the end of the list.
func (rt *RayTracer) NextShapeHit() (*ShapeHit, error) {
	record, err := rt.nextRecord()
	if err != nil {
		return nil, err
	}
	return &record.ShapeHit, nil
}

// NextHit returns the next hit in order with its full geometric
// decoration: model-space viewer and hit point, world hit point, and the
// model-to-world handle.
func (rt *RayTracer) NextHit() (Hit, error) {
	record, err := rt.nextRecord()
	if err != nil {
		return Hit{}, err
	}

	shared := record.shared
	hit := Hit{
		ShapeHit:     &record.ShapeHit,
		ModelToWorld: shared.ModelToWorld,
	}

	if shared.Premultiplied {
		if record.hitPointValid {
			hit.WorldHitPoint = record.hitPoint
		} else {
			hit.WorldHitPoint = rt.currentRay.At(record.Distance)
		}
		hit.ModelHitPoint = shared.ModelToWorld.InverseTransformPoint(hit.WorldHitPoint)
		hit.ModelViewer = shared.ModelToWorld.InverseTransformVector(rt.currentRay.Direction)
	} else {
		if record.hitPointValid {
			hit.ModelHitPoint = record.hitPoint
		} else {
			hit.ModelHitPoint = shared.ModelRay.At(record.Distance)
		}
		hit.ModelViewer = shared.ModelRay.Direction
		hit.WorldHitPoint = rt.currentRay.At(record.Distance)
	}

	return hit, nil
}

func (rt *RayTracer) nextRecord() (*hitRecord, error) {
	if rt.hitIndex == rt.hits.Size() {
		return nil, core.ErrNoMoreData
	}
	record := rt.hits.At(rt.hitIndex)
	rt.hitIndex++
	return record, nil
}

// HitCount returns the number of accumulated hits
func (rt *RayTracer) HitCount() int {
	return rt.hits.Size()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
