// Package animation advances every card, the card group and the camera one
// display tick at a time using exponential damping towards layout targets.
package animation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/hand"
	"github.com/ayusman/soulfree/internal/interaction"
	"github.com/ayusman/soulfree/internal/layout"
	"github.com/ayusman/soulfree/internal/picking"
	"github.com/ayusman/soulfree/internal/spatial"
)

// Scene constants.
const (
	FOV          = 75
	CameraFollow = 0.1
	GroupFollow  = 0.1
	DriftFilter  = 0.02
	FloatAmp     = 0.5
	scaleSnap    = 1e-4
)

// Standoff is where the camera settles.
var Standoff = r3.Vec{Z: 18}

// GripYaw maps a fist's palm center to the group yaw it grabs.
func GripYaw(palm hand.Point3D) float64 {
	return (palm.X - 0.5) * -2 * math.Pi
}

// CardView is a card with its current world transform.
type CardView struct {
	Card  layout.Card
	World spatial.Transform
}

// Integrator owns all continuous animation state. It is not safe for
// concurrent use.
type Integrator struct {
	deck   *layout.Deck
	local  []spatial.Transform // group-local card transforms, slot order
	yaw    float64
	target float64 // target yaw
	groupY float64
	camera spatial.Camera
}

// NewIntegrator places every card at its rest transform with unit scale and
// the camera at the standoff point.
func NewIntegrator(deck *layout.Deck, aspect float64) *Integrator {
	in := &Integrator{
		deck:   deck,
		local:  make([]spatial.Transform, deck.Len()),
		camera: spatial.NewCamera(Standoff, FOV, aspect),
	}
	for slot, c := range deck.Cards() {
		in.local[slot] = spatial.Transform{
			Position: c.RestPosition,
			Rotation: c.RestOrientation,
			Scale:    1,
		}
	}
	return in
}

// SetAspect updates the viewport aspect ratio.
func (in *Integrator) SetAspect(aspect float64) {
	if aspect > 0 {
		in.camera.Aspect = aspect
	}
}

// Step advances the scene by one tick. elapsed is the time since tracking
// started and drives the idle drift and float.
func (in *Integrator) Step(s interaction.State, cfg config.Render, elapsed time.Duration) {
	t := elapsed.Seconds()

	if !s.AnySelected() {
		if s.Grip != nil {
			in.target = GripYaw(*s.Grip)
			in.yaw = spatial.LerpScalar(in.yaw, in.target, GroupFollow)
		} else {
			base := t * cfg.RotationSpeed * 0.1
			in.target = spatial.LerpScalar(in.target, base, DriftFilter)
			in.yaw = in.target
		}
		in.groupY = FloatAmp * math.Sin(t*cfg.FloatSpeed)
	} else {
		in.yaw = spatial.LerpScalar(in.yaw, in.target, GroupFollow)
		in.groupY = spatial.LerpScalar(in.groupY, 0, GroupFollow)
	}

	group := in.Group()
	in.camera.Position = spatial.Lerp(in.camera.Position, Standoff, CameraFollow)
	in.camera.LookAt(group.Position)

	view := layout.View{
		Scattered: s.Mode == interaction.Scattered,
		Selected:  s.Selected,
		CardSize:  cfg.CardSize,
		ReadScale: cfg.ReadScale,
		Camera:    in.camera,
		Group:     group,
	}

	d := s.Damping
	for slot, c := range in.deck.Cards() {
		target := layout.Resolve(c, view)
		cur := &in.local[slot]
		cur.Position = spatial.Lerp(cur.Position, target.Position, d)
		cur.Rotation = spatial.Slerp(cur.Rotation, target.Rotation, d)
		cur.Scale = spatial.LerpScalar(cur.Scale, target.Scale, d)
		if math.Abs(cur.Scale-target.Scale) < scaleSnap {
			cur.Scale = target.Scale
		}
	}
}

// Group returns the world transform of the card group.
func (in *Integrator) Group() spatial.Transform {
	return spatial.Transform{
		Position: r3.Vec{Y: in.groupY},
		Rotation: spatial.Yaw(in.yaw),
		Scale:    1,
	}
}

// Yaw returns the current and target group yaw in radians.
func (in *Integrator) Yaw() (current, target float64) {
	return in.yaw, in.target
}

// Camera returns the current camera.
func (in *Integrator) Camera() spatial.Camera {
	return in.camera
}

// Local returns the group-local transform of the card in the given slot.
func (in *Integrator) Local(slot int) spatial.Transform {
	return in.local[slot]
}

// World returns the world transform of the card in the given slot.
func (in *Integrator) World(slot int) spatial.Transform {
	group := in.Group()
	l := in.local[slot]
	return spatial.Transform{
		Position: group.ToWorld(l.Position),
		Rotation: spatial.Normalize(quat.Mul(group.Rotation, l.Rotation)),
		Scale:    l.Scale,
	}
}

// Cards returns every card with its world transform in slot order.
func (in *Integrator) Cards() []CardView {
	out := make([]CardView, len(in.local))
	for slot, c := range in.deck.Cards() {
		out[slot] = CardView{Card: c, World: in.World(slot)}
	}
	return out
}

// Surfaces returns the pickable card planes in world space.
func (in *Integrator) Surfaces() []picking.Surface {
	out := make([]picking.Surface, 0, len(in.local))
	for slot, c := range in.deck.Cards() {
		w := in.World(slot)
		out = append(out, picking.Surface{ID: c.ID, Center: w.Position, Rotation: w.Rotation, Scale: w.Scale})
	}
	return out
}

// Pick returns the id of the card under a pinch point.
func (in *Integrator) Pick(p hand.Point3D) (int, bool) {
	hit, ok := picking.Pick(p, in.camera, in.Surfaces())
	if !ok {
		return layout.NoSelection, false
	}
	return hit.ID, true
}

var _ interaction.Picker = (*Integrator)(nil)
