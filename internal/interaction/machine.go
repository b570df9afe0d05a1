// Package interaction reduces classified frames into the global interaction
// state: the arrangement mode, the selected card and the animation damping.
package interaction

import (
	"fmt"

	"github.com/ayusman/soulfree/internal/gesture"
	"github.com/ayusman/soulfree/internal/hand"
	"github.com/ayusman/soulfree/internal/layout"
)

// Mode is the arrangement of unselected cards.
type Mode string

const (
	// Formed arranges cards on the sphere.
	Formed Mode = "formed"
	// Scattered spreads cards through the scatter cube.
	Scattered Mode = "scattered"
)

// Damping factors applied by the animation integrator.
const (
	DefaultDamping = 0.1
	FistDamping    = 0.2
)

// NoSelection means no card is focused.
const NoSelection = layout.NoSelection

// State is the interaction state after a frame.
type State struct {
	Mode     Mode          `json:"mode"`
	Selected int           `json:"selected"`
	Damping  float64       `json:"damping"`
	Grip     *hand.Point3D `json:"grip,omitempty"` // palm center of the first fist hand
}

// InitialState is the state before any frame is seen.
func InitialState() State {
	return State{Mode: Formed, Selected: NoSelection, Damping: DefaultDamping}
}

// AnySelected reports whether a card is focused.
func (s State) AnySelected() bool {
	return s.Selected != NoSelection
}

// TransitionKind names a discrete state change.
type TransitionKind string

const (
	ModeChanged TransitionKind = "mode"
	Selected    TransitionKind = "select"
	Released    TransitionKind = "release"
)

// Transition is emitted once when the state changes.
type Transition struct {
	Kind   TransitionKind `json:"kind"`
	From   Mode           `json:"from,omitempty"`
	To     Mode           `json:"to,omitempty"`
	CardID int            `json:"cardId"`
}

func (t Transition) String() string {
	switch t.Kind {
	case ModeChanged:
		return fmt.Sprintf("mode %s -> %s", t.From, t.To)
	case Selected:
		return fmt.Sprintf("selected card %d", t.CardID)
	default:
		return fmt.Sprintf("released card %d", t.CardID)
	}
}

// Picker resolves the card under a pinch point.
type Picker interface {
	Pick(p hand.Point3D) (id int, ok bool)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(p hand.Point3D) (int, bool)

// Pick calls f(p).
func (f PickerFunc) Pick(p hand.Point3D) (int, bool) {
	return f(p)
}

// Machine is the single mutator of the interaction state. It is not safe for
// concurrent use; the tick owns it.
type Machine struct {
	state State

	// Mode gestures seen in the previous frame. A selection is cleared only
	// on the frame a fist or open palm appears, so a held frame is stable.
	fistHeld bool
	palmHeld bool
}

// NewMachine returns a machine in the initial state.
func NewMachine() *Machine {
	return &Machine{state: InitialState()}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Update applies one frame. Mode rules run first; a pick is attempted only if
// the previous state had no selection and exactly one hand pinches. picker
// may be nil, in which case pinches never select. Applying the same frame
// again yields the same state and no transitions.
func (m *Machine) Update(frame gesture.Frame, picker Picker) (State, []Transition) {
	prev := m.state
	next := State{Mode: prev.Mode, Selected: prev.Selected, Damping: DefaultDamping}

	fist, hasFist := frame.First(gesture.Fist)
	hasPalm := frame.Any(gesture.OpenPalm)

	if hasFist {
		next.Mode = Formed
		next.Damping = FistDamping
		grip := fist.PalmCenter
		next.Grip = &grip
		if !m.fistHeld {
			next.Selected = NoSelection
		}
	} else if hasPalm {
		next.Mode = Scattered
		if !m.palmHeld {
			next.Selected = NoSelection
		}
	}
	m.fistHeld, m.palmHeld = hasFist, hasPalm

	pinching := frame.Count(gesture.Pinch)
	switch {
	case pinching == 1 && !prev.AnySelected() && picker != nil:
		obs, _ := frame.First(gesture.Pinch)
		if obs.PinchMidpoint != nil {
			if id, ok := picker.Pick(*obs.PinchMidpoint); ok {
				next.Selected = id
			}
		}
	case pinching == 0 && next.AnySelected():
		next.Selected = NoSelection
	}

	m.state = next
	return next, diff(prev, next)
}

// Reset returns the machine to the initial state.
func (m *Machine) Reset() {
	m.state = InitialState()
	m.fistHeld, m.palmHeld = false, false
}

func diff(prev, next State) []Transition {
	var out []Transition
	if prev.AnySelected() && prev.Selected != next.Selected {
		out = append(out, Transition{Kind: Released, CardID: prev.Selected})
	}
	if prev.Mode != next.Mode {
		out = append(out, Transition{Kind: ModeChanged, From: prev.Mode, To: next.Mode, CardID: NoSelection})
	}
	if next.AnySelected() && prev.Selected != next.Selected {
		out = append(out, Transition{Kind: Selected, CardID: next.Selected})
	}
	return out
}
