package physx

import (
	"github.com/lumen-render/lumen/pkg/matrix"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// Scene sequences trace calls for every object it holds against a bound
// ray tracer.
type Scene interface {
	Trace(rayTracer *tracer.RayTracer) error
}

// SceneObject pairs a shape with its placement in the world
type SceneObject struct {
	Shape         tracer.Shape
	ModelToWorld  *matrix.Matrix
	Premultiplied bool
}

// ListScene traces each of its objects in insertion order
type ListScene struct {
	objects []SceneObject
}

// NewListScene creates a scene over a fixed object list
func NewListScene(objects []SceneObject) *ListScene {
	return &ListScene{objects: objects}
}

// Add appends an object to the scene
func (s *ListScene) Add(shape tracer.Shape, modelToWorld *matrix.Matrix, premultiplied bool) {
	s.objects = append(s.objects, SceneObject{shape, modelToWorld, premultiplied})
}

// Trace traces every object against the bound ray
func (s *ListScene) Trace(rayTracer *tracer.RayTracer) error {
	for _, object := range s.objects {
		var err error
		if object.ModelToWorld == nil {
			err = rayTracer.TraceShape(object.Shape)
		} else {
			err = rayTracer.TraceShapeWithTransform(object.Shape, object.ModelToWorld, object.Premultiplied)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
