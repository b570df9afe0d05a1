// Package viewer renders the card sphere in a desktop window. Its Update is
// the per-display-frame callback that drives the application tick.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ayusman/soulfree/internal/app"
	"github.com/ayusman/soulfree/internal/hand"
)

// Window defaults.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	background = color.RGBA{R: 0x05, G: 0x05, B: 0x0a, A: 0xff}
	skeleton   = color.RGBA{R: 0x00, G: 0xff, B: 0xcc, A: 0xff}
	pinchDot   = color.RGBA{R: 0xff, G: 0x4d, B: 0x6d, A: 0xff}

	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Game implements ebiten.Game over a running App.
type Game struct {
	ctx      context.Context
	app      *app.App
	palette  Palette
	onToggle func(immersive bool)
	caption  *text.GoTextFace

	immersive atomic.Bool
	width     int
	height    int
	snap      app.Snapshot
	vertices  []ebiten.Vertex
	indices   []uint16
}

// New creates a Game that ends when ctx is cancelled. onToggle, if set, is
// called when the keyboard flips immersive mode.
func New(ctx context.Context, a *app.App, onToggle func(immersive bool)) (*Game, error) {
	palette, err := NewPalette()
	if err != nil {
		return nil, err
	}
	a.Animation().SetAspect(float64(DefaultWidth) / float64(DefaultHeight))
	return &Game{
		ctx:      ctx,
		app:      a,
		palette:  palette,
		onToggle: onToggle,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}, nil
}

// SetCaptionFace sets the font for the focused card's text. Without one the
// debug font is used, which has no CJK glyphs.
func (g *Game) SetCaptionFace(face *text.GoTextFace) {
	g.caption = face
}

// SetImmersive shows or hides the overlay. Safe to call from any goroutine.
func (g *Game) SetImmersive(immersive bool) {
	g.immersive.Store(immersive)
}

// Immersive reports whether the overlay is hidden.
func (g *Game) Immersive() bool {
	return g.immersive.Load()
}

// Update runs one application tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		immersive := !g.immersive.Load()
		g.immersive.Store(immersive)
		if g.onToggle != nil {
			g.onToggle(immersive)
		}
	}
	g.snap = g.app.Tick()
	return nil
}

// Draw paints the cards far to near, then the hand overlay and status.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	anim := g.app.Animation()
	quads := ProjectCards(anim.Camera(), anim.Cards(), g.width, g.height)
	for _, q := range quads {
		g.drawQuad(screen, q)
	}

	if g.immersive.Load() {
		return
	}

	if g.snap.State.AnySelected() {
		if c, ok := g.app.Deck().Card(g.snap.State.Selected); ok {
			g.drawCaption(screen, c.Text)
		}
	}

	for _, obs := range g.snap.Frame.Hands {
		g.drawHand(screen, obs.Landmarks)
		if obs.PinchMidpoint != nil {
			x, y := HandPoint(*obs.PinchMidpoint, g.width, g.height)
			vector.DrawFilledCircle(screen, x, y, 8, pinchDot, true)
		}
	}

	hud := fmt.Sprintf("%s\nmode: %s  [c] immersive", g.app.Status(), g.snap.State.Mode)
	ebitenutil.DebugPrintAt(screen, hud, 12, 12)
}

func (g *Game) drawQuad(screen *ebiten.Image, q Quad) {
	stops := g.palette[q.Card.Gradient%len(g.palette)]
	// Top edge takes the first stop, bottom edge the last.
	colors := [4]color.RGBA{stops[0], stops[0], stops[1], stops[1]}

	g.vertices = g.vertices[:0]
	for i, c := range q.Corners {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX:   c[0],
			DstY:   c[1],
			SrcX:   1,
			SrcY:   1,
			ColorR: float32(colors[i].R) / 0xff,
			ColorG: float32(colors[i].G) / 0xff,
			ColorB: float32(colors[i].B) / 0xff,
			ColorA: 1,
		})
	}
	g.indices = append(g.indices[:0], 0, 1, 2, 0, 2, 3)
	screen.DrawTriangles(g.vertices, g.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawCaption(screen *ebiten.Image, s string) {
	if g.caption == nil {
		ebitenutil.DebugPrintAt(screen, s, debugCaptionX(s, g.width), g.height-48)
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.width)/2, float64(g.height)-64)
	op.ColorScale.ScaleWithColor(color.White)
	op.PrimaryAlign = text.AlignCenter
	text.Draw(screen, s, g.caption, op)
}

func (g *Game) drawHand(screen *ebiten.Image, points []hand.Point3D) {
	for _, c := range hand.Connections {
		if c[0] >= len(points) || c[1] >= len(points) {
			continue
		}
		x0, y0 := HandPoint(points[c[0]], g.width, g.height)
		x1, y1 := HandPoint(points[c[1]], g.width, g.height)
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, skeleton, true)
	}
	for _, p := range points {
		x, y := HandPoint(p, g.width, g.height)
		vector.DrawFilledCircle(screen, x, y, 3, skeleton, true)
	}
}

// Layout keeps the logical screen at the window size and feeds the aspect
// ratio to the camera.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		g.app.Animation().SetAspect(float64(outsideWidth) / float64(outsideHeight))
	}
	return g.width, g.height
}

// Run opens the window and blocks until it closes.
func Run(g *Game, tps int) error {
	ebiten.SetWindowTitle("Soulfree")
	ebiten.SetWindowSize(DefaultWidth, DefaultHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}
