package pixelcanvas

import (
	"testing"
)

type fakeSink struct {
	m        Modes
	clicks   []Vec2
	hovers   []Vec2
	erases   []Vec2
	viewport int
}

func (s *fakeSink) modes() Modes { return s.m }

func (s *fakeSink) click(sx, sy float64, _ Target) {
	s.clicks = append(s.clicks, Vec2{X: sx, Y: sy})
}

func (s *fakeSink) hover(sx, sy float64, _ Target) {
	s.hovers = append(s.hovers, Vec2{X: sx, Y: sy})
}

func (s *fakeSink) eraseAt(sx, sy float64) {
	s.erases = append(s.erases, Vec2{X: sx, Y: sy})
}

func (s *fakeSink) viewportChanged() { s.viewport++ }

func newTestGestures(scale float64) (*Gestures, *fakeSink) {
	vp := newTestViewport(scale)
	g := NewGestures(vp, testConfig(100, 100))
	sink := &fakeSink{}
	g.sink = sink
	g.Activate()
	return g, sink
}

func TestGesturesInactiveIgnoresInput(t *testing.T) {
	g, sink := newTestGestures(2)
	g.Deactivate()
	g.PointerDown(10, 10, TargetGrid)
	g.PointerMove(50, 50, TargetGrid)
	g.PointerUp(50, 50, TargetGrid)
	g.Wheel(10, 10, -100)
	if len(sink.hovers)+len(sink.clicks)+sink.viewport != 0 {
		t.Errorf("inactive adapter produced output: %+v", sink)
	}
	if ox, oy := g.vp.Offset(); ox != 0 || oy != 0 {
		t.Errorf("Offset = (%f,%f), want (0,0)", ox, oy)
	}
}

func TestGesturesDragPans(t *testing.T) {
	g, sink := newTestGestures(2)
	g.PointerDown(100, 100, TargetGrid)
	s, ok := g.Session()
	if !ok || s.Kind != SessionDrag || s.AnchorX != 100 {
		t.Fatalf("Session = %+v, %v", s, ok)
	}
	g.PointerMove(110, 105, TargetGrid)
	g.PointerMove(130, 95, TargetGrid)
	g.PointerUp(130, 95, TargetOther)

	ox, oy := g.vp.Offset()
	if ox != 30 || oy != -5 {
		t.Errorf("Offset = (%f,%f), want (30,-5)", ox, oy)
	}
	if len(sink.clicks) != 0 {
		t.Error("drag produced a click")
	}
	if sink.viewport != 2 {
		t.Errorf("viewport notifications = %d, want 2", sink.viewport)
	}
	if len(sink.hovers) != 2 {
		t.Errorf("hovers = %d, want 2", len(sink.hovers))
	}
	if _, ok := g.Session(); ok {
		t.Error("session still open after PointerUp")
	}
}

func TestGesturesClick(t *testing.T) {
	tests := []struct {
		name     string
		down, up Target
		moveTo   float64
		want     int
	}{
		{"still", TargetGrid, TargetGrid, 0, 1},
		{"within slop", TargetGrid, TargetOverlay, 3, 1},
		{"beyond slop", TargetGrid, TargetGrid, 10, 0},
		{"released off canvas", TargetGrid, TargetOther, 0, 0},
		{"pressed off canvas", TargetOther, TargetGrid, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, sink := newTestGestures(2)
			g.PointerDown(50, 50, tt.down)
			if tt.moveTo != 0 {
				g.PointerMove(50+tt.moveTo, 50, tt.down)
				g.PointerMove(50, 50, tt.down)
			}
			g.PointerUp(50, 50, tt.up)
			if len(sink.clicks) != tt.want {
				t.Errorf("clicks = %d, want %d", len(sink.clicks), tt.want)
			}
		})
	}
}

func TestGesturesEraseSession(t *testing.T) {
	g, sink := newTestGestures(2)
	sink.m.Eraser = true
	g.PointerDown(10, 10, TargetGrid)
	if s, _ := g.Session(); s.Kind != SessionErase {
		t.Fatalf("Kind = %v, want erase", s.Kind)
	}
	g.PointerMove(20, 10, TargetGrid)
	g.PointerMove(30, 10, TargetGrid)
	if len(sink.erases) != 2 {
		t.Errorf("erases = %d, want 2", len(sink.erases))
	}
	if ox, oy := g.vp.Offset(); ox != 0 || oy != 0 {
		t.Errorf("erase stroke panned to (%f,%f)", ox, oy)
	}
}

func TestGesturesMovesCeded(t *testing.T) {
	g, sink := newTestGestures(2)
	sink.m.NFTMinting = true
	g.PointerDown(10, 10, TargetGrid)
	g.PointerMove(40, 40, TargetGrid)
	if len(sink.hovers) != 0 {
		t.Error("hover reported while minting owns moves")
	}
	if ox, _ := g.vp.Offset(); ox != 0 {
		t.Error("panned while minting owns moves")
	}

	sink.m.NFTSelected = true
	g.PointerMove(50, 40, TargetGrid)
	if len(sink.hovers) != 1 {
		t.Errorf("hovers = %d after selection made, want 1", len(sink.hovers))
	}
}

func TestGesturesWheel(t *testing.T) {
	g, sink := newTestGestures(2)
	g.WheelNotches(50, 50, 1)
	if g.vp.Scale() <= 2 {
		t.Errorf("notch away: Scale = %f, want > 2", g.vp.Scale())
	}
	g.Wheel(50, 50, 300)
	if sink.viewport != 2 {
		t.Errorf("viewport notifications = %d, want 2", sink.viewport)
	}
}

func TestGesturesPinch(t *testing.T) {
	g, sink := newTestGestures(2)
	g.PointerDown(100, 100, TargetGrid)

	g.Touches([]Vec2{{X: 50, Y: 100}, {X: 150, Y: 100}})
	p, ok := g.PinchSession()
	if !ok || p.StartDistance != 100 || p.StartScale != 2 || p.AnchorX != 100 {
		t.Fatalf("PinchSession = %+v, %v", p, ok)
	}
	if _, ok := g.Session(); ok {
		t.Error("pointer session survived pinch start")
	}

	ax, ay := 100.0, 100.0
	gx0, gy0 := g.vp.ScreenToGrid(ax, ay)
	g.Touches([]Vec2{{X: 0, Y: 100}, {X: 200, Y: 100}})
	if !approxEqual(g.vp.Scale(), 4, epsilon) {
		t.Errorf("Scale = %f, want 4", g.vp.Scale())
	}
	gx, gy := g.vp.ScreenToGrid(ax, ay)
	if !approxEqual(gx, gx0, epsilon) || !approxEqual(gy, gy0, epsilon) {
		t.Errorf("midpoint grid point moved (%f,%f) -> (%f,%f)", gx0, gy0, gx, gy)
	}
	if sink.viewport != 1 {
		t.Errorf("viewport notifications = %d, want 1", sink.viewport)
	}

	// A third contact ends the pinch.
	g.Touches([]Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	if _, ok := g.PinchSession(); ok {
		t.Error("pinch survived a third contact")
	}
}

func TestGesturesPointerIgnoredDuringPinch(t *testing.T) {
	g, _ := newTestGestures(2)
	g.Touches([]Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}})
	g.PointerDown(5, 5, TargetGrid)
	if _, ok := g.Session(); ok {
		t.Error("pointer session started during pinch")
	}
}

func TestGesturesReleaseScoped(t *testing.T) {
	g, _ := newTestGestures(2)
	g.Deactivate()

	release := g.Activate()
	g.PointerDown(1, 1, TargetGrid)
	release()
	if g.Active() {
		t.Fatal("Active after release")
	}
	if _, ok := g.Session(); ok {
		t.Error("session survived release")
	}

	release2 := g.Activate()
	release() // stale
	if !g.Active() {
		t.Error("stale release deactivated a newer activation")
	}
	release2()
	release2()
	if g.Active() {
		t.Error("Active after second release")
	}
}
