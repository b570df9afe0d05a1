package viewer

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/soulfree/internal/animation"
	"github.com/ayusman/soulfree/internal/hand"
	"github.com/ayusman/soulfree/internal/layout"
	"github.com/ayusman/soulfree/internal/spatial"
)

// Quad is a card projected to screen pixels, corners in the order top-left,
// top-right, bottom-right, bottom-left.
type Quad struct {
	Card    layout.Card
	Corners [4][2]float32
	Depth   float64
}

// ScreenPoint maps normalized device coordinates to pixels.
func ScreenPoint(ndcX, ndcY float64, width, height int) (float32, float32) {
	return float32((ndcX + 1) / 2 * float64(width)), float32((1 - ndcY) / 2 * float64(height))
}

// HandPoint maps a landmark to pixels, mirrored like the camera feed.
func HandPoint(p hand.Point3D, width, height int) (float32, float32) {
	return float32((1 - p.X) * float64(width)), float32(p.Y * float64(height))
}

var cardCorners = [4]r3.Vec{
	{X: -layout.CardWidth / 2, Y: layout.CardHeight / 2},
	{X: layout.CardWidth / 2, Y: layout.CardHeight / 2},
	{X: layout.CardWidth / 2, Y: -layout.CardHeight / 2},
	{X: -layout.CardWidth / 2, Y: -layout.CardHeight / 2},
}

// ProjectCard projects a card's world transform. ok is false for hidden
// cards and cards with any corner behind the camera.
func ProjectCard(cam spatial.Camera, w spatial.Transform, width, height int) (q [4][2]float32, depth float64, ok bool) {
	if w.Scale <= 0 {
		return q, 0, false
	}
	for i, c := range cardCorners {
		p := r3.Add(w.Position, spatial.Rotate(w.Rotation, r3.Scale(w.Scale, c)))
		x, y, d, visible := cam.Project(p)
		if !visible {
			return q, 0, false
		}
		q[i][0], q[i][1] = ScreenPoint(x, y, width, height)
		depth += d / 4
	}
	return q, depth, true
}

// ProjectCards returns the visible cards sorted far to near for painting.
func ProjectCards(cam spatial.Camera, cards []animation.CardView, width, height int) []Quad {
	out := make([]Quad, 0, len(cards))
	for _, cv := range cards {
		corners, depth, ok := ProjectCard(cam, cv.World, width, height)
		if !ok {
			continue
		}
		out = append(out, Quad{Card: cv.Card, Corners: corners, Depth: depth})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("parse color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Palette holds the parsed card gradients, first and last stop of each.
type Palette [][2]color.RGBA

// NewPalette parses every gradient in layout.Gradients.
func NewPalette() (Palette, error) {
	p := make(Palette, len(layout.Gradients))
	for i, stops := range layout.Gradients {
		first, err := ParseHex(stops[0])
		if err != nil {
			return nil, err
		}
		last, err := ParseHex(stops[len(stops)-1])
		if err != nil {
			return nil, err
		}
		p[i] = [2]color.RGBA{first, last}
	}
	return p, nil
}
