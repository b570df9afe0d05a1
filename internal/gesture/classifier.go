// Package gesture classifies per-frame hand landmarks into discrete gestures.
package gesture

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/soulfree/internal/hand"
)

// Kind is a discrete gesture label.
type Kind string

const (
	// None means no gesture was observed.
	None Kind = "none"
	// Pinch means thumb and index tips are touching.
	Pinch Kind = "pinch"
	// Release is a relaxed hand that is neither pinching, closed nor spread.
	Release Kind = "release"
	// OpenPalm is a hand with all fingers spread.
	OpenPalm Kind = "open_palm"
	// Fist is a closed hand.
	Fist Kind = "fist"
)

// Classification thresholds in normalized landmark space.
const (
	// DefaultPinchSensitivity is the default maximum thumb-index distance for a pinch.
	DefaultPinchSensitivity = 0.05
	// FistSpread is the average fingertip spread below which a hand is a fist.
	FistSpread = 0.13
	// OpenPalmSpread is the average fingertip spread above which a hand is an open palm.
	OpenPalmSpread = 0.25
)

// ErrInvalidInput is returned when a hand cannot be classified because its
// landmark set is incomplete or malformed.
var ErrInvalidInput = errors.New("invalid gesture input")

var fingertips = [...]int{hand.IndexTip, hand.MiddleTip, hand.RingTip, hand.PinkyTip}

// Observation is one classified hand.
type Observation struct {
	Landmarks     []hand.Point3D `json:"landmarks"`
	Handedness    string         `json:"handedness,omitempty"`
	Gesture       Kind           `json:"gesture"`
	PinchMidpoint *hand.Point3D  `json:"pinchMidpoint"` // nil unless Gesture is Pinch
	IndexTip      hand.Point3D   `json:"indexTip"`
	PalmCenter    hand.Point3D   `json:"palmCenter"`
}

// Classify derives the gesture and its geometric features from one hand.
// It is a pure function of the landmarks and the pinch sensitivity.
func Classify(h *hand.Hand, pinchSensitivity float64) (Observation, error) {
	if err := h.Validate(); err != nil {
		return Observation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	thumbTip := h.Point(hand.ThumbTip)
	indexTip := h.Point(hand.IndexTip)

	pinchDistance := hand.Distance(thumbTip, indexTip)
	palmCenter := hand.Midpoint(h.Point(hand.Wrist), h.Point(hand.MiddleMCP))

	var spread float64
	for _, tip := range fingertips {
		spread += hand.Distance(h.Point(tip), palmCenter)
	}
	spread /= float64(len(fingertips))

	obs := Observation{
		Landmarks:  append([]hand.Point3D(nil), h.Points...),
		Handedness: h.Handedness,
		IndexTip:   indexTip,
		PalmCenter: palmCenter,
	}

	switch {
	case pinchDistance < pinchSensitivity:
		obs.Gesture = Pinch
		mid := hand.Midpoint(thumbTip, indexTip)
		obs.PinchMidpoint = &mid
	case spread < FistSpread:
		obs.Gesture = Fist
	case spread > OpenPalmSpread:
		obs.Gesture = OpenPalm
	default:
		obs.Gesture = Release
	}

	return obs, nil
}

// Frame is the classified output for one processed video frame. It replaces
// the previous frame wholesale. Hands carry no identity across frames.
type Frame struct {
	Timestamp time.Duration `json:"timestamp"`
	Hands     []Observation `json:"hands"`
}

// ClassifyFrame classifies every detected hand. Hands that fail validation
// are treated as absent for this frame.
func ClassifyFrame(timestamp time.Duration, hands []hand.Hand, pinchSensitivity float64) Frame {
	frame := Frame{Timestamp: timestamp}
	for i := range hands {
		if len(frame.Hands) == hand.MaxHands {
			break
		}
		obs, err := Classify(&hands[i], pinchSensitivity)
		if err != nil {
			log.Printf("Dropping hand %d at %v: %v", i, timestamp, err)
			continue
		}
		frame.Hands = append(frame.Hands, obs)
	}
	return frame
}

// Any reports whether at least one hand shows the given gesture.
func (f Frame) Any(k Kind) bool {
	_, ok := f.First(k)
	return ok
}

// First returns the first hand showing the given gesture.
func (f Frame) First(k Kind) (Observation, bool) {
	for _, h := range f.Hands {
		if h.Gesture == k {
			return h, true
		}
	}
	return Observation{}, false
}

// Count returns how many hands show the given gesture.
func (f Frame) Count(k Kind) int {
	n := 0
	for _, h := range f.Hands {
		if h.Gesture == k {
			n++
		}
	}
	return n
}
