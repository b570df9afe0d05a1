package interaction

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/soulfree/internal/gesture"
	"github.com/ayusman/soulfree/internal/hand"
)

func frameOf(hands ...hand.Hand) gesture.Frame {
	return gesture.ClassifyFrame(time.Millisecond, hands, gesture.DefaultPinchSensitivity)
}

// fixedPicker hits card id for every pinch and counts calls.
type fixedPicker struct {
	id    int
	calls int
}

func (p *fixedPicker) Pick(hand.Point3D) (int, bool) {
	p.calls++
	return p.id, p.id != NoSelection
}

var center = hand.Point3D{X: 0.5, Y: 0.5}

func TestInitialState(t *testing.T) {
	m := NewMachine()
	want := State{Mode: Formed, Selected: NoSelection, Damping: DefaultDamping}
	if diff := cmp.Diff(want, m.State()); diff != "" {
		t.Errorf("State() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_ModeRules(t *testing.T) {
	tests := []struct {
		name        string
		frame       gesture.Frame
		wantMode    Mode
		wantDamping float64
	}{
		{name: "empty frame", frame: frameOf(), wantMode: Formed, wantDamping: DefaultDamping},
		{name: "fist", frame: frameOf(hand.FistLandmarks()), wantMode: Formed, wantDamping: FistDamping},
		{name: "open palm", frame: frameOf(hand.OpenPalmLandmarks()), wantMode: Scattered, wantDamping: DefaultDamping},
		{name: "fist beats open palm", frame: frameOf(hand.OpenPalmLandmarks(), hand.FistLandmarks()), wantMode: Formed, wantDamping: FistDamping},
		{name: "relaxed keeps mode", frame: frameOf(hand.RelaxedLandmarks()), wantMode: Formed, wantDamping: DefaultDamping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			got, _ := m.Update(tt.frame, nil)
			if got.Mode != tt.wantMode || got.Damping != tt.wantDamping {
				t.Errorf("Update() = %+v, want mode %s damping %f", got, tt.wantMode, tt.wantDamping)
			}
		})
	}
}

func TestUpdate_RelaxedKeepsScattered(t *testing.T) {
	m := NewMachine()
	m.Update(frameOf(hand.OpenPalmLandmarks()), nil)

	got, transitions := m.Update(frameOf(hand.RelaxedLandmarks()), nil)
	if got.Mode != Scattered {
		t.Errorf("Mode = %s, want %s", got.Mode, Scattered)
	}
	if len(transitions) != 0 {
		t.Errorf("transitions = %v, want none", transitions)
	}
}

func TestUpdate_FistThenOpenPalm(t *testing.T) {
	m := NewMachine()

	s, _ := m.Update(frameOf(hand.FistLandmarks()), nil)
	if s.Mode != Formed {
		t.Fatalf("after fist Mode = %s, want %s", s.Mode, Formed)
	}

	s, transitions := m.Update(frameOf(hand.OpenPalmLandmarks()), nil)
	if s.Mode != Scattered {
		t.Fatalf("after open palm Mode = %s, want %s", s.Mode, Scattered)
	}

	want := []Transition{{Kind: ModeChanged, From: Formed, To: Scattered, CardID: NoSelection}}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_RepeatedFistIsIdempotent(t *testing.T) {
	m := NewMachine()
	first, _ := m.Update(frameOf(hand.FistLandmarks()), nil)

	for i := 0; i < 10; i++ {
		got, transitions := m.Update(frameOf(hand.FistLandmarks()), nil)
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("frame %d state changed (-want +got):\n%s", i, diff)
		}
		if len(transitions) != 0 {
			t.Fatalf("frame %d emitted %v", i, transitions)
		}
	}
}

func TestUpdate_Grip(t *testing.T) {
	m := NewMachine()

	s, _ := m.Update(frameOf(hand.FistLandmarks()), nil)
	if s.Grip == nil || hand.Distance(*s.Grip, hand.Point3D{X: 0.5, Y: 0.6}) > 1e-9 {
		t.Errorf("Grip = %v, want fist palm center", s.Grip)
	}

	s, _ = m.Update(frameOf(hand.RelaxedLandmarks()), nil)
	if s.Grip != nil {
		t.Errorf("Grip = %v, want nil without a fist", s.Grip)
	}
}

func TestUpdate_SelectThenRelease(t *testing.T) {
	picker := &fixedPicker{id: 17}
	m := NewMachine()

	s, transitions := m.Update(frameOf(hand.PinchLandmarks(center)), picker)
	if s.Selected != 17 {
		t.Fatalf("Selected = %d, want 17", s.Selected)
	}
	if diff := cmp.Diff([]Transition{{Kind: Selected, CardID: 17}}, transitions); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}

	// Holding the pinch keeps the card without picking again.
	s, _ = m.Update(frameOf(hand.PinchLandmarks(hand.Point3D{X: 0.2, Y: 0.2})), picker)
	if s.Selected != 17 || picker.calls != 1 {
		t.Errorf("Selected = %d after %d picks, want 17 after 1", s.Selected, picker.calls)
	}

	s, transitions = m.Update(frameOf(hand.RelaxedLandmarks()), picker)
	if s.AnySelected() {
		t.Fatalf("Selected = %d, want none", s.Selected)
	}
	if diff := cmp.Diff([]Transition{{Kind: Released, CardID: 17}}, transitions); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_ReleaseRegardlessOfInterveningGestures(t *testing.T) {
	sequences := map[string][]gesture.Frame{
		"fist":      {frameOf(hand.FistLandmarks())},
		"open palm": {frameOf(hand.OpenPalmLandmarks())},
		"no hands":  {frameOf()},
		"mixed":     {frameOf(hand.OpenPalmLandmarks()), frameOf(hand.FistLandmarks()), frameOf(hand.RelaxedLandmarks())},
	}

	for name, frames := range sequences {
		t.Run(name, func(t *testing.T) {
			m := NewMachine()
			m.Update(frameOf(hand.PinchLandmarks(center)), &fixedPicker{id: 3})
			if !m.State().AnySelected() {
				t.Fatal("pinch should select")
			}
			for _, f := range frames {
				m.Update(f, nil)
			}
			if m.State().AnySelected() {
				t.Errorf("Selected = %d, want none", m.State().Selected)
			}
		})
	}
}

func TestUpdate_PickRules(t *testing.T) {
	tests := []struct {
		name      string
		frame     gesture.Frame
		pickerID  int
		wantPicks int
		wantSel   int
	}{
		{name: "miss", frame: frameOf(hand.PinchLandmarks(center)), pickerID: NoSelection, wantPicks: 1, wantSel: NoSelection},
		{name: "two pinching hands never pick", frame: frameOf(hand.PinchLandmarks(center), hand.PinchLandmarks(hand.Point3D{X: 0.3, Y: 0.3})), pickerID: 4, wantPicks: 0, wantSel: NoSelection},
		{name: "pinch with fist still picks", frame: frameOf(hand.FistLandmarks(), hand.PinchLandmarks(center)), pickerID: 4, wantPicks: 1, wantSel: 4},
		{name: "no pinch no pick", frame: frameOf(hand.RelaxedLandmarks()), pickerID: 4, wantPicks: 0, wantSel: NoSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fixedPicker{id: tt.pickerID}
			m := NewMachine()
			s, _ := m.Update(tt.frame, p)
			if p.calls != tt.wantPicks {
				t.Errorf("picks = %d, want %d", p.calls, tt.wantPicks)
			}
			if s.Selected != tt.wantSel {
				t.Errorf("Selected = %d, want %d", s.Selected, tt.wantSel)
			}
		})
	}
}

func TestUpdate_ModeGestureWithPinchIsStable(t *testing.T) {
	tests := []struct {
		name     string
		mode     hand.Hand
		wantMode Mode
	}{
		{name: "fist", mode: hand.FistLandmarks(), wantMode: Formed},
		{name: "open palm", mode: hand.OpenPalmLandmarks(), wantMode: Scattered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fixedPicker{id: 4}
			m := NewMachine()
			frame := frameOf(tt.mode, hand.PinchLandmarks(center))

			var selected []int
			var transitions int
			for i := 0; i < 6; i++ {
				s, tr := m.Update(frame, p)
				selected = append(selected, s.Selected)
				transitions += len(tr)
				if s.Mode != tt.wantMode {
					t.Fatalf("tick %d: Mode = %s, want %s", i, s.Mode, tt.wantMode)
				}
			}

			if diff := cmp.Diff([]int{4, 4, 4, 4, 4, 4}, selected); diff != "" {
				t.Errorf("selection per tick mismatch (-want +got):\n%s", diff)
			}
			if p.calls != 1 {
				t.Errorf("picks = %d, want 1", p.calls)
			}
			wantTransitions := 1
			if tt.wantMode != Formed {
				wantTransitions = 2
			}
			if transitions != wantTransitions {
				t.Errorf("transitions = %d, want %d", transitions, wantTransitions)
			}
		})
	}
}

func TestUpdate_HeldModeGestureClearsOnce(t *testing.T) {
	m := NewMachine()
	m.Update(frameOf(hand.PinchLandmarks(center)), &fixedPicker{id: 2})

	// The fist appears: selection cleared even though the pinch is held.
	s, _ := m.Update(frameOf(hand.FistLandmarks(), hand.PinchLandmarks(center)), &fixedPicker{id: 9})
	if s.AnySelected() {
		t.Fatalf("Selected = %d, want none on the frame the fist appears", s.Selected)
	}

	// Still held: the pinch picks again and the result then stays put.
	p := &fixedPicker{id: 9}
	for i := 0; i < 3; i++ {
		s, _ = m.Update(frameOf(hand.FistLandmarks(), hand.PinchLandmarks(center)), p)
	}
	if s.Selected != 9 || p.calls != 1 {
		t.Errorf("Selected = %d after %d picks, want 9 after 1", s.Selected, p.calls)
	}

	// Releasing the fist and making it again clears once more.
	m.Update(frameOf(hand.PinchLandmarks(center)), p)
	s, _ = m.Update(frameOf(hand.FistLandmarks(), hand.PinchLandmarks(center)), p)
	if s.AnySelected() {
		t.Errorf("Selected = %d, want none after a new fist", s.Selected)
	}
}

func TestUpdate_PickerFunc(t *testing.T) {
	var got hand.Point3D
	picker := PickerFunc(func(p hand.Point3D) (int, bool) {
		got = p
		return 1, true
	})

	m := NewMachine()
	m.Update(frameOf(hand.PinchLandmarks(hand.Point3D{X: 0.25, Y: 0.75})), picker)

	if got != (hand.Point3D{X: 0.25, Y: 0.75}) {
		t.Errorf("picked at %v, want pinch midpoint", got)
	}
}

func TestUpdate_FistClearsSelection(t *testing.T) {
	m := NewMachine()
	m.Update(frameOf(hand.OpenPalmLandmarks()), nil)
	m.Update(frameOf(hand.PinchLandmarks(center)), &fixedPicker{id: 8})

	s, transitions := m.Update(frameOf(hand.FistLandmarks()), nil)
	if s.AnySelected() || s.Mode != Formed {
		t.Fatalf("state = %+v", s)
	}

	want := []Transition{
		{Kind: Released, CardID: 8},
		{Kind: ModeChanged, From: Scattered, To: Formed, CardID: NoSelection},
	}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestReset(t *testing.T) {
	m := NewMachine()
	m.Update(frameOf(hand.OpenPalmLandmarks()), nil)
	m.Reset()
	if diff := cmp.Diff(InitialState(), m.State()); diff != "" {
		t.Errorf("State() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransition_String(t *testing.T) {
	tests := []struct {
		tr   Transition
		want string
	}{
		{Transition{Kind: ModeChanged, From: Formed, To: Scattered}, "mode formed -> scattered"},
		{Transition{Kind: Selected, CardID: 2}, "selected card 2"},
		{Transition{Kind: Released, CardID: 2}, "released card 2"},
	}
	for _, tt := range tests {
		if got := tt.tr.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
