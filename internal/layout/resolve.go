package layout

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/spatial"
)

// NoSelection is the selected card id when no card is focused.
const NoSelection = -1

// View is the per-tick input to target resolution.
type View struct {
	Scattered bool
	Selected  int // card id or NoSelection
	CardSize  float64
	ReadScale float64
	Camera    spatial.Camera
	Group     spatial.Transform // world transform of the group holding the cards
}

// AnySelected reports whether some card is focused.
func (v View) AnySelected() bool {
	return v.Selected != NoSelection
}

// Resolve returns the target transform of c in the group's local frame.
func Resolve(c Card, v View) spatial.Transform {
	if v.Selected == c.ID {
		return focusTarget(v)
	}

	target := spatial.Transform{
		Position: c.RestPosition,
		Rotation: c.RestOrientation,
		Scale:    v.CardSize,
	}
	if v.Scattered {
		target.Position = c.ScatterPosition
	}
	if v.AnySelected() {
		target.Scale = 0
	}
	return target
}

// focusTarget holds the selected card flat in front of the camera. The world
// targets are expressed in the group's local frame because the card is a
// child of the group.
func focusTarget(v View) spatial.Transform {
	world := r3.Add(v.Camera.Position, r3.Scale(FocusDistance, v.Camera.Forward()))
	group := v.Group
	group.Scale = 1

	return spatial.Transform{
		Position: group.ToLocal(world),
		Rotation: spatial.Normalize(quat.Mul(spatial.Inverse(group.Rotation), spatial.Identity())),
		Scale:    v.ReadScale,
	}
}
