package tracer

import (
	"github.com/pkg/errors"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/mem"
)

// HitAllocator hands out hit records to shapes during a trace call.
// Records live in a static arena and variable-size additional data in a
// dynamic arena; both are reset by the owning ray tracer per ray.
type HitAllocator struct {
	records mem.StaticArena[hitRecord]
	chain   mem.StaticArena[HitList]
	data    *mem.DynamicArena
	shape   Shape
}

func newHitAllocator() *HitAllocator {
	return &HitAllocator{data: mem.NewDynamicArena()}
}

// bind points the allocator at the shape currently being traced so each
// emitted hit is stamped with it.
func (a *HitAllocator) bind(shape Shape) {
	a.shape = shape
}

func (a *HitAllocator) freeAll() {
	a.records.FreeAll()
	a.chain.FreeAll()
	a.data.FreeAll()
}

// Allocate creates a hit record and prepends it to the given chain.
// additionalData is copied into the allocator's arena so it remains
// valid for the lifetime of the ray; align describes its required
// placement and must be a power of two (use 1 for plain bytes).
func (a *HitAllocator) Allocate(next *HitList, distance float64, face int32, additionalData []byte, align int) (*HitList, error) {
	return a.allocate(next, distance, face, additionalData, align, geom.Point{}, false)
}

// AllocateWithHitPoint is Allocate for shapes that already computed the
// hit point exactly; the ray tracer returns it instead of re-deriving
// the point from the hit distance.
func (a *HitAllocator) AllocateWithHitPoint(next *HitList, distance float64, face int32, additionalData []byte, align int, hitPoint geom.Point) (*HitList, error) {
	if err := hitPoint.Validate(); err != nil {
		return nil, err
	}
	return a.allocate(next, distance, face, additionalData, align, hitPoint, true)
}

func (a *HitAllocator) allocate(next *HitList, distance float64, face int32, additionalData []byte, align int, hitPoint geom.Point, hitPointValid bool) (*HitList, error) {
	if !isFinite(distance) {
		return nil, errors.Wrap(core.ErrInvalidArgument, "non-finite hit distance")
	}

	var stored []byte
	if len(additionalData) > 0 {
		if align <= 0 || align&(align-1) != 0 {
			return nil, core.ErrInvalidArgumentCombination
		}
		region, err := a.data.Alloc(len(additionalData), align)
		if err != nil {
			return nil, err
		}
		copy(region, additionalData)
		stored = region
	}

	record := a.records.Alloc()
	record.ShapeHit = ShapeHit{
		Shape:          a.shape,
		Distance:       distance,
		Face:           face,
		AdditionalData: stored,
	}
	record.hitPoint = hitPoint
	record.hitPointValid = hitPointValid

	node := a.chain.Alloc()
	node.record = record
	node.Next = next

	return node, nil
}
