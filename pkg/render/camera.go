package render

import (
	"math"

	"github.com/lumen-render/lumen/pkg/geom"
)

// Camera is a pinhole camera generating world rays for screen
// coordinates
type Camera struct {
	origin          geom.Point
	lowerLeftCorner geom.Point
	horizontal      geom.Vector
	vertical        geom.Vector
}

// NewCamera creates a pinhole camera looking from eye toward target
func NewCamera(eye, target geom.Point, up geom.Vector, verticalFovDegrees, aspectRatio float64) *Camera {
	theta := verticalFovDegrees * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	viewportWidth := aspectRatio * viewportHeight

	w := eye.Subtract(target).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Scale(viewportWidth)
	vertical := v.Scale(viewportHeight)
	lowerLeftCorner := eye.
		SubtractVec(horizontal.Scale(0.5)).
		SubtractVec(vertical.Scale(0.5)).
		SubtractVec(w)

	return &Camera{
		origin:          eye,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
func (c *Camera) GetRay(s, t float64) geom.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Scale(s)).
		Add(c.vertical.Scale(t)).
		Subtract(c.origin)

	return geom.NewRay(c.origin, direction)
}
