package pixelcanvas

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// InputPoller reads ebiten mouse, wheel and touch state once per frame and
// feeds it to a Gestures adapter. A single touch acts as the pointer; two or
// more touches pinch using the first two.
type InputPoller struct {
	g *Gestures

	// Target classifies the surface under a screen point. Nil treats the
	// viewport container as the grid surface and everything else as other.
	Target func(sx, sy float64) Target

	touchIDs []ebiten.TouchID
	pinching bool
	// suppress ignores a leftover single touch after a pinch until every
	// finger lifts.
	suppress bool

	pointerDown  bool
	touchPointer bool
	lastX, lastY float64
}

// NewInputPoller creates a poller for e's gestures.
func NewInputPoller(e *Engine) *InputPoller {
	return &InputPoller{g: e.gestures}
}

func (p *InputPoller) target(sx, sy float64) Target {
	if p.Target != nil {
		return p.Target(sx, sy)
	}
	if p.g.vp.Container.Contains(sx, sy) {
		return TargetGrid
	}
	return TargetOther
}

// Poll reads this frame's input. Real input is skipped while injected
// events are pending.
func (p *InputPoller) Poll() {
	if !p.g.Active() || p.g.Injecting() {
		return
	}

	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	switch n := len(p.touchIDs); {
	case n >= 2:
		pts := make([]Vec2, 2)
		for i := range pts {
			x, y := ebiten.TouchPosition(p.touchIDs[i])
			pts[i] = Vec2{X: float64(x), Y: float64(y)}
		}
		p.pointerDown = false
		p.touchPointer = false
		p.pinching = true
		p.g.Touches(pts)
		return
	case p.pinching:
		p.pinching = false
		p.suppress = n > 0
		p.g.Touches(nil)
		return
	case n == 1:
		if p.suppress {
			return
		}
		x, y := ebiten.TouchPosition(p.touchIDs[0])
		p.touchPointer = true
		p.pointer(float64(x), float64(y), true)
		return
	case p.suppress:
		p.suppress = false
		return
	case p.touchPointer:
		p.touchPointer = false
		p.pointer(p.lastX, p.lastY, false)
		return
	}

	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)
	p.pointer(sx, sy, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))

	if _, wy := ebiten.Wheel(); wy != 0 {
		p.g.WheelNotches(sx, sy, wy)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && p.pointerDown {
		p.g.CancelPointer()
		p.pointerDown = false
	}
}

func (p *InputPoller) pointer(sx, sy float64, pressed bool) {
	moved := sx != p.lastX || sy != p.lastY
	switch {
	case pressed && !p.pointerDown:
		p.pointerDown = true
		p.g.PointerDown(sx, sy, p.target(sx, sy))
	case !pressed && p.pointerDown:
		p.pointerDown = false
		p.g.PointerUp(sx, sy, p.target(sx, sy))
	case moved:
		p.g.PointerMove(sx, sy, p.target(sx, sy))
	}
	p.lastX, p.lastY = sx, sy
}

// Renderer draws the grid, the extra-pixel overlay and the selection
// highlight through the engine's viewport.
type Renderer struct {
	e       *Engine
	grid    *Raster
	overlay *Raster

	gridImg    *ebiten.Image
	overlayImg *ebiten.Image

	// Background fills the screen before drawing. Nil leaves it untouched.
	Background color.Color
}

// NewRenderer creates a renderer. overlay may be nil.
func NewRenderer(e *Engine, grid, overlay *Raster) *Renderer {
	w, h := e.vp.GridSize()
	r := &Renderer{
		e:       e,
		grid:    grid,
		overlay: overlay,
		gridImg: ebiten.NewImage(w, h),
	}
	if overlay != nil {
		r.overlayImg = ebiten.NewImage(w, h)
	}
	return r
}

func upload(img *ebiten.Image, r *Raster) {
	if r == nil || !r.Dirty() {
		return
	}
	img.WritePixels(r.Image().Pix)
	r.ClearDirty()
}

// Draw renders the canvas onto screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	if r.Background != nil {
		screen.Fill(r.Background)
	}
	upload(r.gridImg, r.grid)
	upload(r.overlayImg, r.overlay)

	m := r.e.vp.Matrix()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.SetElement(0, 0, m[0])
	op.GeoM.SetElement(1, 0, m[1])
	op.GeoM.SetElement(0, 1, m[2])
	op.GeoM.SetElement(1, 1, m[3])
	op.GeoM.SetElement(0, 2, m[4])
	op.GeoM.SetElement(1, 2, m[5])
	op.Filter = ebiten.FilterNearest

	screen.DrawImage(r.gridImg, op)
	if r.overlayImg != nil {
		screen.DrawImage(r.overlayImg, op)
	}

	drawHighlight(screen, r.e.Highlight())
}

// drawHighlight draws the selection box as an inset stroke in the outline
// color over an optional fill of the chosen color.
func drawHighlight(screen *ebiten.Image, h Highlight) {
	if !h.Visible {
		return
	}
	x, y, size := float32(h.X), float32(h.Y), float32(h.Size)
	if h.Fill.A > 0 {
		vector.FillRect(screen, x, y, size, size, h.Fill, false)
	}
	stroke := float32(h.Spread)
	if stroke > size/2 {
		stroke = size / 2
	}
	inset := stroke / 2
	vector.StrokeRect(screen, x+inset, y+inset, size-stroke, size-stroke, stroke, h.Outline, true)
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	Background    color.Color
}

// Game adapts an Engine, its input poller and renderer to ebiten.Game.
type Game struct {
	Engine   *Engine
	Input    *InputPoller
	Renderer *Renderer

	// UpdateFunc runs first every tick. Returning an error stops the game.
	UpdateFunc func() error
	// DrawFunc draws host UI over the canvas.
	DrawFunc func(screen *ebiten.Image)
}

// NewGame wires a poller and renderer for e over the given rasters.
func NewGame(e *Engine, grid, overlay *Raster) *Game {
	return &Game{
		Engine:   e,
		Input:    NewInputPoller(e),
		Renderer: NewRenderer(e, grid, overlay),
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.UpdateFunc != nil {
		if err := g.UpdateFunc(); err != nil {
			return err
		}
	}
	g.Input.Poll()
	g.Engine.Update(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.Renderer.Draw(screen)
	if g.DrawFunc != nil {
		g.DrawFunc(screen)
	}
}

// Layout implements ebiten.Game. The viewport container follows the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Engine.SetContainer(Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)})
	return outsideWidth, outsideHeight
}

// Run opens a window and runs g until it is closed or returns an error.
// The engine's input is active for the duration.
func Run(g *Game, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Background != nil {
		g.Renderer.Background = cfg.Background
	}

	release := g.Engine.Activate()
	defer release()
	return ebiten.RunGame(g)
}
