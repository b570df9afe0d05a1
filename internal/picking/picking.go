// Package picking resolves which card lies under a pinch point by casting a
// ray from the camera through the viewport.
package picking

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/hand"
	"github.com/ayusman/soulfree/internal/layout"
	"github.com/ayusman/soulfree/internal/spatial"
)

// Surface is a card plane in world space.
type Surface struct {
	ID       int
	Center   r3.Vec
	Rotation quat.Number
	Scale    float64
}

// Hit is the result of a successful pick.
type Hit struct {
	ID       int
	Distance float64
	Point    r3.Vec
}

// NDC maps a normalized image point to normalized device coordinates. The
// camera feed is mirrored, so x is flipped.
func NDC(p hand.Point3D) (x, y float64) {
	return (1-p.X)*2 - 1, -(p.Y * 2) + 1
}

// ViewportPoint is the inverse of NDC.
func ViewportPoint(ndcX, ndcY float64) hand.Point3D {
	return hand.Point3D{X: 1 - (ndcX+1)/2, Y: (1 - ndcY) / 2}
}

// Pick returns the nearest visible surface under p. Surfaces with scale 0
// are hidden and never hit.
func Pick(p hand.Point3D, cam spatial.Camera, surfaces []Surface) (Hit, bool) {
	ray := cam.Ray(NDC(p))

	var (
		best  Hit
		found bool
	)
	for _, s := range surfaces {
		if s.Scale <= 0 {
			continue
		}
		t, ok := ray.IntersectQuad(s.Center, s.Rotation, s.Scale*layout.CardWidth/2, s.Scale*layout.CardHeight/2)
		if !ok {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{ID: s.ID, Distance: t, Point: ray.At(t)}
			found = true
		}
	}
	return best, found
}
