package tracer

import "github.com/lumen-render/lumen/pkg/geom"

// Owner is a lifetime container giving per-thread reuse of one ray
// tracer across rays. After warmup no per-ray memory is allocated.
type Owner struct {
	rayTracer *RayTracer
}

// NewOwner creates an owner with a fresh ray tracer
func NewOwner() *Owner {
	return &Owner{rayTracer: NewRayTracer()}
}

// RayTracerFor rebinds the inner tracer to the given ray and returns it
func (o *Owner) RayTracerFor(ray geom.Ray, normalize bool) (*RayTracer, error) {
	if err := o.rayTracer.SetRay(ray, normalize); err != nil {
		return nil, err
	}
	return o.rayTracer, nil
}
