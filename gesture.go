package pixelcanvas

import "math"

// SessionKind distinguishes gesture sessions.
type SessionKind uint8

const (
	SessionDrag  SessionKind = iota // pointer held outside erase mode: pans the grid
	SessionErase                    // pointer held in erase mode: erases under the pointer
	SessionPinch                    // two touch contacts: zooms about their midpoint
)

func (k SessionKind) String() string {
	switch k {
	case SessionErase:
		return "erase"
	case SessionPinch:
		return "pinch"
	default:
		return "drag"
	}
}

// GestureSession is the transient record of one interaction. It lives from a
// start event to its end event and is discarded immediately after.
type GestureSession struct {
	Kind SessionKind
	// AnchorX and AnchorY are the start screen coordinates (pointer) or the
	// initial midpoint (pinch).
	AnchorX, AnchorY float64
	// StartDistance and StartScale are the pinch baseline.
	StartDistance float64
	StartScale    float64

	target       Target
	lastX, lastY float64
	travel       float64
}

// gestureSink receives the discrete outcomes of gestures.
type gestureSink interface {
	modes() Modes
	click(sx, sy float64, target Target)
	hover(sx, sy float64, target Target)
	eraseAt(sx, sy float64)
	viewportChanged()
}

// Gestures normalizes pointer, wheel and touch input into viewport pans and
// zooms, clicks, hover and erase strokes.
//
// Pointer sessions: Idle -> Dragging -> Idle, or Idle -> Erasing -> Idle when
// erase mode is on at pointer down. Pinch sessions run independently:
// Idle -> Pinching -> Idle, and require exactly two touch contacts.
type Gestures struct {
	vp   *Viewport
	sink gestureSink

	clickSlop  float64
	wheelLine  float64
	active     bool
	activation uint32

	pointer *GestureSession
	pinch   *GestureSession

	injectQueue []syntheticEvent
	script      *Script
}

// NewGestures creates an inactive gesture adapter driving vp. Call Activate
// before feeding events.
func NewGestures(vp *Viewport, cfg Config) *Gestures {
	return &Gestures{
		vp:        vp,
		clickSlop: cfg.ClickSlop,
		wheelLine: cfg.WheelLineHeight,
	}
}

// Activate starts accepting events and returns the release func that stops.
// Releasing ends any open drag, erase or pinch session. Calling the release
// func more than once, or after a later Activate, is a no-op.
func (g *Gestures) Activate() (release func()) {
	g.active = true
	g.activation++
	gen := g.activation
	return func() {
		if g.activation == gen && g.active {
			g.Deactivate()
		}
	}
}

// Deactivate stops accepting events and discards open sessions.
func (g *Gestures) Deactivate() {
	g.active = false
	g.pointer = nil
	g.pinch = nil
}

// Active reports whether events are being accepted.
func (g *Gestures) Active() bool { return g.active }

// Session returns the open pointer session, if any.
func (g *Gestures) Session() (GestureSession, bool) {
	if g.pointer == nil {
		return GestureSession{}, false
	}
	return *g.pointer, true
}

// PinchSession returns the open pinch session, if any.
func (g *Gestures) PinchSession() (GestureSession, bool) {
	if g.pinch == nil {
		return GestureSession{}, false
	}
	return *g.pinch, true
}

func (g *Gestures) modes() Modes {
	if g.sink == nil {
		return Modes{}
	}
	return g.sink.modes()
}

// PointerDown starts a drag session, or an erase session in erase mode.
func (g *Gestures) PointerDown(sx, sy float64, target Target) {
	if !g.active || g.pinch != nil {
		return
	}
	kind := SessionDrag
	if g.modes().Eraser {
		kind = SessionErase
	}
	g.pointer = &GestureSession{
		Kind:    kind,
		AnchorX: sx, AnchorY: sy,
		target: target,
		lastX:  sx, lastY: sy,
	}
}

// PointerMove pans while dragging, erases while erasing, and always reports
// hover. Moves are ignored entirely while an external selection flow owns
// the pointer.
func (g *Gestures) PointerMove(sx, sy float64, target Target) {
	if !g.active {
		return
	}
	if g.modes().movesCeded() {
		return
	}
	if p := g.pointer; p != nil {
		p.travel = math.Max(p.travel, math.Hypot(sx-p.AnchorX, sy-p.AnchorY))
		switch p.Kind {
		case SessionDrag:
			dx, dy := sx-p.lastX, sy-p.lastY
			if dx != 0 || dy != 0 {
				g.vp.Pan(dx, dy)
				g.notifyViewport()
			}
		case SessionErase:
			if g.sink != nil {
				g.sink.eraseAt(sx, sy)
			}
		}
		p.lastX, p.lastY = sx, sy
	}
	if g.sink != nil {
		g.sink.hover(sx, sy, target)
	}
}

// PointerUp ends the pointer session. It may arrive from anywhere, including
// outside the canvas. A press and release on a canvas surface that travelled
// no further than the click slop is reported as a click.
func (g *Gestures) PointerUp(sx, sy float64, target Target) {
	p := g.pointer
	g.pointer = nil
	if !g.active || p == nil {
		return
	}
	travel := math.Max(p.travel, math.Hypot(sx-p.AnchorX, sy-p.AnchorY))
	if travel > g.clickSlop || !p.target.IsCanvas() || !target.IsCanvas() {
		return
	}
	if g.sink != nil {
		g.sink.click(sx, sy, target)
	}
}

// CancelPointer ends the pointer session without a click.
func (g *Gestures) CancelPointer() {
	g.pointer = nil
}

// Wheel zooms by a raw scroll delta (positive zooms out) about (sx, sy).
func (g *Gestures) Wheel(sx, sy, rawDelta float64) {
	if !g.active {
		return
	}
	if g.vp.ZoomAt(sx, sy, rawDelta) {
		g.notifyViewport()
	}
}

// WheelNotches converts wheel notches (positive = away from the user, i.e.
// zoom in) into a raw delta and zooms.
func (g *Gestures) WheelNotches(sx, sy, notches float64) {
	g.Wheel(sx, sy, -notches*g.wheelLine)
}

// Touches feeds the current set of touch contacts. Exactly two contacts start
// or continue a pinch; any other count ends it. Starting a pinch cancels the
// pointer session.
func (g *Gestures) Touches(points []Vec2) {
	if !g.active {
		return
	}
	if len(points) != 2 {
		g.pinch = nil
		return
	}
	p0, p1 := points[0], points[1]
	dist := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
	midX := (p0.X + p1.X) / 2
	midY := (p0.Y + p1.Y) / 2

	if g.pinch == nil {
		g.pinch = &GestureSession{
			Kind:    SessionPinch,
			AnchorX: midX, AnchorY: midY,
			StartDistance: dist,
			StartScale:    g.vp.Scale(),
		}
		g.pointer = nil
		return
	}
	if g.pinch.StartDistance == 0 {
		return
	}
	ratio := dist / g.pinch.StartDistance
	if g.vp.PinchZoom(midX, midY, ratio, g.pinch.StartScale) {
		g.notifyViewport()
	}
}

func (g *Gestures) notifyViewport() {
	if g.sink != nil {
		g.sink.viewportChanged()
	}
}
