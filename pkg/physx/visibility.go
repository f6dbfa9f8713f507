package physx

import (
	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// VisibilityTester answers shadow probes against a scene. It owns its
// ray tracer through an Owner so repeated probes allocate nothing.
type VisibilityTester struct {
	owner   *tracer.Owner
	scene   Scene
	epsilon float64
}

// NewVisibilityTester creates a tester over a scene with the given
// self-intersection epsilon
func NewVisibilityTester(scene Scene, epsilon float64) (*VisibilityTester, error) {
	if scene == nil || !isFinite(epsilon) || epsilon < 0 {
		return nil, core.ErrInvalidArgument
	}
	return &VisibilityTester{
		owner:   tracer.NewOwner(),
		scene:   scene,
		epsilon: epsilon,
	}, nil
}

// TestVisibility reports whether the ray reaches the given distance
// unoccluded. Hits at distances within epsilon of either end of the
// interval do not count as occlusion.
func (v *VisibilityTester) TestVisibility(ray geom.Ray, distance float64) (bool, error) {
	if !isFinite(distance) || distance < 0 {
		return false, core.ErrInvalidArgument
	}

	rayTracer, err := v.owner.RayTracerFor(ray, true)
	if err != nil {
		return false, err
	}

	if err := v.scene.Trace(rayTracer); err != nil {
		return false, err
	}

	for {
		hit, err := rayTracer.NextShapeHit()
		if err == core.ErrNoMoreData {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if hit.Distance > v.epsilon && hit.Distance < distance-v.epsilon {
			return false, nil
		}
	}
}

// TestVisibilityAnyDistance reports whether the ray escapes the scene
// entirely beyond epsilon
func (v *VisibilityTester) TestVisibilityAnyDistance(ray geom.Ray) (bool, error) {
	rayTracer, err := v.owner.RayTracerFor(ray, true)
	if err != nil {
		return false, err
	}

	if err := v.scene.Trace(rayTracer); err != nil {
		return false, err
	}

	for {
		hit, err := rayTracer.NextShapeHit()
		if err == core.ErrNoMoreData {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if hit.Distance > v.epsilon {
			return false, nil
		}
	}
}

// ComputePdf walks the hits along a ray aimed at a light the caller is
// sampling. If the first foreign hit lies closer than the light itself
// the pdf collapses to zero; otherwise the caller's sample pdf is
// returned along with the closest point found on the light. A ray with
// no hit beyond epsilon also yields a zero pdf.
func (v *VisibilityTester) ComputePdf(rayToLight geom.Ray, selfLight Light, samplePdf float64) (geom.Point, float64, error) {
	rayTracer, err := v.owner.RayTracerFor(rayToLight, true)
	if err != nil {
		return geom.Point{}, 0, err
	}

	if err := v.scene.Trace(rayTracer); err != nil {
		return geom.Point{}, 0, err
	}

	rayTracer.Sort()

	for {
		hit, err := rayTracer.NextHit()
		if err == core.ErrNoMoreData {
			return geom.Point{}, 0, nil
		}
		if err != nil {
			return geom.Point{}, 0, err
		}
		if hit.ShapeHit.Distance <= v.epsilon {
			continue
		}
		if shapeLight(hit.ShapeHit.Shape, hit.ShapeHit.Face) == selfLight {
			return hit.WorldHitPoint, samplePdf, nil
		}
		return geom.Point{}, 0, nil
	}
}

// Epsilon returns the tester's self-intersection epsilon
func (v *VisibilityTester) Epsilon() float64 {
	return v.epsilon
}
