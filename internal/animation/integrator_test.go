package animation

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/hand"
	"github.com/ayusman/soulfree/internal/interaction"
	"github.com/ayusman/soulfree/internal/layout"
	"github.com/ayusman/soulfree/internal/spatial"
)

const tick = time.Second / 60

func newTestIntegrator() (*Integrator, *layout.Deck) {
	deck := layout.NewDeck(layout.NumCards, layout.SphereRadius, rand.New(rand.NewPCG(1, 2)))
	return NewIntegrator(deck, 16.0/9.0), deck
}

func stillConfig() config.Render {
	cfg := config.Default()
	cfg.RotationSpeed = 0
	cfg.FloatSpeed = 0
	return cfg
}

func run(in *Integrator, s interaction.State, cfg config.Render, from, n int) {
	for i := 0; i < n; i++ {
		in.Step(s, cfg, time.Duration(from+i)*tick)
	}
}

func TestNewIntegrator(t *testing.T) {
	in, deck := newTestIntegrator()

	for slot, c := range deck.Cards() {
		l := in.Local(slot)
		if l.Position != c.RestPosition || l.Rotation != c.RestOrientation || l.Scale != 1 {
			t.Fatalf("slot %d starts at %+v", slot, l)
		}
	}
	if in.Camera().Position != Standoff {
		t.Errorf("camera at %v, want %v", in.Camera().Position, Standoff)
	}
}

func TestStep_ConvergesToTargets(t *testing.T) {
	tests := []struct {
		name  string
		state interaction.State
		want  func(layout.Card) r3.Vec
	}{
		{
			name:  "formed",
			state: interaction.InitialState(),
			want:  func(c layout.Card) r3.Vec { return c.RestPosition },
		},
		{
			name:  "scattered",
			state: interaction.State{Mode: interaction.Scattered, Selected: interaction.NoSelection, Damping: interaction.DefaultDamping},
			want:  func(c layout.Card) r3.Vec { return c.ScatterPosition },
		},
		{
			name:  "formed with fist damping",
			state: interaction.State{Mode: interaction.Formed, Selected: interaction.NoSelection, Damping: interaction.FistDamping},
			want:  func(c layout.Card) r3.Vec { return c.RestPosition },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, deck := newTestIntegrator()
			cfg := stillConfig()
			cfg.CardSize = 0.5

			run(in, tt.state, cfg, 0, 400)

			for slot, c := range deck.Cards() {
				l := in.Local(slot)
				if d := spatial.Distance(l.Position, tt.want(c)); d > 1e-6 {
					t.Fatalf("card %d is %g from its target", c.ID, d)
				}
				if l.Scale != 0.5 {
					t.Fatalf("card %d scale = %f, want 0.5", c.ID, l.Scale)
				}
				if a := spatial.Angle(l.Rotation, c.RestOrientation); a > 1e-6 {
					t.Fatalf("card %d is %g rad from its rest orientation", c.ID, a)
				}
			}
		})
	}
}

func TestStep_SelectedCardFacesCamera(t *testing.T) {
	in, deck := newTestIntegrator()
	cfg := config.Default()
	cfg.FloatSpeed = 0.4

	// Let the group drift and float first.
	run(in, interaction.InitialState(), cfg, 0, 120)
	if in.Group().Position.Y == 0 {
		t.Fatal("group should be floating before selection")
	}

	selected := deck.Cards()[200]
	s := interaction.State{Mode: interaction.Scattered, Selected: selected.ID, Damping: interaction.DefaultDamping}
	run(in, s, cfg, 120, 600)

	if y := in.Group().Position.Y; math.Abs(y) > 1e-9 {
		t.Errorf("group y = %g, want 0 while a card is selected", y)
	}
	yaw, target := in.Yaw()
	if math.Abs(yaw-target) > 1e-9 {
		t.Errorf("yaw = %f, want target %f", yaw, target)
	}

	w := in.World(selected.Slot)
	want := r3.Add(in.Camera().Position, r3.Scale(layout.FocusDistance, in.Camera().Forward()))
	if d := spatial.Distance(w.Position, want); d > 1e-6 {
		t.Errorf("selected card at %v, want %v", w.Position, want)
	}
	if d := spatial.Distance(w.Position, r3.Vec{Z: 12}); d > 1e-6 {
		t.Errorf("selected card at %v, want 6 units in front of the camera", w.Position)
	}
	if a := spatial.Angle(w.Rotation, spatial.Identity()); a > 1e-6 {
		t.Errorf("selected card is %g rad from facing the camera", a)
	}
	if math.Abs(w.Scale-cfg.ReadScale) > 1e-6 {
		t.Errorf("selected scale = %f, want %f", w.Scale, cfg.ReadScale)
	}

	for slot, c := range deck.Cards() {
		if c.ID != selected.ID && in.Local(slot).Scale != 0 {
			t.Fatalf("card %d scale = %f, want hidden", c.ID, in.Local(slot).Scale)
		}
	}

	if id, ok := in.Pick(hand.Point3D{X: 0.5, Y: 0.5}); !ok || id != selected.ID {
		t.Errorf("Pick() = %d, %v; want the selected card", id, ok)
	}
}

func TestStep_Drift(t *testing.T) {
	in, _ := newTestIntegrator()
	cfg := stillConfig()
	cfg.RotationSpeed = 0.5

	in.Step(interaction.InitialState(), cfg, 10*time.Second)

	yaw, target := in.Yaw()
	if math.Abs(target-0.01) > 1e-12 {
		t.Errorf("target yaw = %f, want 0.01", target)
	}
	if yaw != target {
		t.Errorf("yaw = %f, want target %f", yaw, target)
	}
}

func TestStep_Grip(t *testing.T) {
	in, _ := newTestIntegrator()
	s := interaction.State{
		Mode:     interaction.Formed,
		Selected: interaction.NoSelection,
		Damping:  interaction.FistDamping,
		Grip:     &hand.Point3D{X: 0.75, Y: 0.5},
	}

	in.Step(s, stillConfig(), tick)
	yaw, target := in.Yaw()
	if math.Abs(target+math.Pi/2) > 1e-12 {
		t.Errorf("target yaw = %f, want -pi/2", target)
	}
	if math.Abs(yaw-target*GroupFollow) > 1e-12 {
		t.Errorf("yaw = %f, want %f", yaw, target*GroupFollow)
	}

	run(in, s, stillConfig(), 2, 300)
	if yaw, _ := in.Yaw(); math.Abs(yaw+math.Pi/2) > 1e-9 {
		t.Errorf("yaw = %f, want -pi/2 after holding the grip", yaw)
	}
}

func TestStep_CameraFollowsGroup(t *testing.T) {
	in, _ := newTestIntegrator()
	cfg := stillConfig()
	cfg.FloatSpeed = 0.5

	in.Step(interaction.InitialState(), cfg, 3*time.Second)

	group := in.Group().Position
	if group.Y == 0 {
		t.Fatal("group should float")
	}
	cam := in.Camera()
	want := r3.Unit(r3.Sub(group, cam.Position))
	if d := spatial.Distance(cam.Forward(), want); d > 1e-9 {
		t.Errorf("camera forward = %v, want %v", cam.Forward(), want)
	}
}

func TestPick_FrontCard(t *testing.T) {
	in, deck := newTestIntegrator()

	// Slot 0 sits closest to the +Z pole, straight in front of the camera.
	id, ok := in.Pick(hand.Point3D{X: 0.5, Y: 0.5})
	if !ok {
		t.Fatal("Pick() missed the sphere")
	}
	if id != deck.Cards()[0].ID {
		t.Errorf("Pick() = %d, want card in slot 0 (%d)", id, deck.Cards()[0].ID)
	}

	if _, ok := in.Pick(hand.Point3D{X: 0.01, Y: 0.01}); ok {
		t.Error("Pick() in the corner should miss")
	}
}

func TestCards(t *testing.T) {
	in, deck := newTestIntegrator()
	views := in.Cards()
	if len(views) != deck.Len() {
		t.Fatalf("Cards() returned %d views, want %d", len(views), deck.Len())
	}
	for slot, v := range views {
		if v.Card.Slot != slot {
			t.Fatalf("view %d holds slot %d", slot, v.Card.Slot)
		}
	}
	if len(in.Surfaces()) != deck.Len() {
		t.Errorf("Surfaces() returned %d, want %d", len(in.Surfaces()), deck.Len())
	}
}

func TestGripYaw(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0.5, 0},
		{0, math.Pi},
		{1, -math.Pi},
	}
	for _, tt := range tests {
		if got := GripYaw(hand.Point3D{X: tt.x}); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("GripYaw(%f) = %f, want %f", tt.x, got, tt.want)
		}
	}
}
