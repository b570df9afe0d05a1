// Package layout owns the spatial arrangement of the cards and resolves each
// card's target transform for the current interaction state.
package layout

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/spatial"
)

// Deck defaults.
const (
	// NumCards is the number of cards created at startup.
	NumCards = 350
	// SphereRadius is the radius of the formed sphere.
	SphereRadius = 10
	// ScatterExtent is the side of the scatter cube relative to the sphere radius.
	ScatterExtent = 3
	// FocusDistance is how far in front of the camera a selected card is held.
	FocusDistance = 6
	// CardWidth and CardHeight are the unscaled card plane dimensions.
	CardWidth  = 2
	CardHeight = 1
)

// Texts are the card captions, repeated in order to fill the deck.
var Texts = []string{
	"今天辛苦了", "早点休息", "多喝热水", "好梦成真", "别熬夜了",
	"保持好心情", "未来可期", "记得吃饭", "抱抱自己", "永远开心",
	"万事胜意", "你很棒", "记得微笑", "允许休息", "慢慢来",
	"好事发生", "生活明朗", "万物可爱", "平安喜乐", "自在如风",
	"保持热爱", "奔赴山海", "来日方长", "一切顺利", "天天开心",
	"元气满满", "能量加满", "我想你了", "见信如晤", "岁岁平安",
	"光芒万丈", "随遇而安", "不负韶华", "只争朝夕", "初心未改",
	"未来已来", "心之所向", "素履以往", "生如夏花", "静待花开",
}

// Gradients are the card background palettes as hex colors.
var Gradients = [][]string{
	{"#24243e", "#302b63", "#0f0c29"}, // violet
	{"#134e5e", "#71b280"},            // emerald
	{"#ff9966", "#ff5e62"},            // sunset
	{"#000428", "#004e92"},            // deep sea
	{"#833ab4", "#fd1d1d", "#fcb045"}, // neon
	{"#2C3E50", "#4CA1AF"},            // rocky
	{"#4568DC", "#B06AB3"},            // purple-red
}

// Card is one display object. Everything except the id-to-slot assignment is
// fixed at creation.
type Card struct {
	ID              int
	Text            string
	Gradient        int // index into Gradients, the card's texture handle
	Slot            int // position on the sphere after shuffling
	RestPosition    r3.Vec
	RestOrientation quat.Number // +Z faces away from the sphere center
	ScatterPosition r3.Vec
}

// Deck is the immutable set of cards for a session.
type Deck struct {
	cards  []Card // in slot order
	byID   []int
	radius float64
}

// FibonacciPoint returns the i-th of n quasi-uniform points on a sphere.
func FibonacciPoint(i, n int, radius float64) r3.Vec {
	phi := math.Acos(1 - 2*(float64(i)+0.5)/float64(n))
	theta := math.Pi * (1 + math.Sqrt(5)) * float64(i)
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return r3.Vec{
		X: radius * cosTheta * sinPhi,
		Y: radius * sinTheta * sinPhi,
		Z: radius * cosPhi,
	}
}

// NewDeck creates n cards on a sphere of the given radius. Cards are
// shuffled before slot assignment so repeated captions do not cluster.
func NewDeck(n int, radius float64, rng *rand.Rand) *Deck {
	cards := make([]Card, n)
	half := radius * ScatterExtent / 2
	for i := range cards {
		cards[i] = Card{
			ID:       i,
			Text:     Texts[i%len(Texts)],
			Gradient: i % len(Gradients),
			ScatterPosition: r3.Vec{
				X: (rng.Float64()*2 - 1) * half,
				Y: (rng.Float64()*2 - 1) * half,
				Z: (rng.Float64()*2 - 1) * half,
			},
		}
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	d := &Deck{cards: cards, byID: make([]int, n), radius: radius}
	for slot := range cards {
		c := &cards[slot]
		c.Slot = slot
		c.RestPosition = FibonacciPoint(slot, n, radius)
		c.RestOrientation = spatial.Facing(c.RestPosition)
		d.byID[c.ID] = slot
	}
	return d
}

// Len returns the number of cards.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Radius returns the sphere radius.
func (d *Deck) Radius() float64 {
	return d.radius
}

// Cards returns the cards in slot order. The slice must not be modified.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Card returns the card with the given id.
func (d *Deck) Card(id int) (Card, bool) {
	if id < 0 || id >= len(d.byID) {
		return Card{}, false
	}
	return d.cards[d.byID[id]], true
}
