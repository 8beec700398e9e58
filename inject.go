package pixelcanvas

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthWheel
	synthTouches
)

// syntheticEvent represents a single injected input event in screen
// coordinates. Injected pointer events always target the grid surface.
type syntheticEvent struct {
	kind             syntheticKind
	screenX, screenY float64
	delta            float64
	touches          []Vec2
}

// InjectPress queues a pointer press at the given screen coordinates. The
// event is consumed by the next ProcessInjected call.
func (g *Gestures) InjectPress(x, y float64) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthPress, screenX: x, screenY: y})
}

// InjectMove queues a pointer move. Between InjectPress and InjectRelease
// this simulates a drag; otherwise a hover.
func (g *Gestures) InjectMove(x, y float64) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthMove, screenX: x, screenY: y})
}

// InjectRelease queues a pointer release.
func (g *Gestures) InjectRelease(x, y float64) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthRelease, screenX: x, screenY: y})
}

// InjectClick queues a press followed by a release at the same coordinates.
// Consumes two frames.
func (g *Gestures) InjectClick(x, y float64) {
	g.InjectPress(x, y)
	g.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves, and a release at (toX, toY). Minimum frames is 2.
func (g *Gestures) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	g.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		g.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	g.InjectRelease(toX, toY)
}

// InjectWheel queues a raw wheel delta at the given coordinates.
func (g *Gestures) InjectWheel(x, y, rawDelta float64) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthWheel, screenX: x, screenY: y, delta: rawDelta})
}

// InjectPinch queues a two-finger pinch about (cx, cy) whose finger spread
// goes from fromDist to toDist over frames frames, then lifts both fingers.
func (g *Gestures) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		half := (fromDist + (toDist-fromDist)*t) / 2
		g.injectQueue = append(g.injectQueue, syntheticEvent{
			kind:    synthTouches,
			touches: []Vec2{{X: cx - half, Y: cy}, {X: cx + half, Y: cy}},
		})
	}
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthTouches})
}

// Injecting reports whether synthetic events are pending. Hosts skip real
// input while it is true.
func (g *Gestures) Injecting() bool {
	return len(g.injectQueue) > 0
}

// ProcessInjected pops one queued event and dispatches it. Returns true if
// an event was consumed.
func (g *Gestures) ProcessInjected() bool {
	if len(g.injectQueue) == 0 {
		return false
	}
	evt := g.injectQueue[0]
	copy(g.injectQueue, g.injectQueue[1:])
	g.injectQueue = g.injectQueue[:len(g.injectQueue)-1]

	switch evt.kind {
	case synthPress:
		g.PointerDown(evt.screenX, evt.screenY, TargetGrid)
	case synthMove:
		g.PointerMove(evt.screenX, evt.screenY, TargetGrid)
	case synthRelease:
		g.PointerUp(evt.screenX, evt.screenY, TargetGrid)
	case synthWheel:
		g.Wheel(evt.screenX, evt.screenY, evt.delta)
	case synthTouches:
		g.Touches(evt.touches)
	}
	return true
}
