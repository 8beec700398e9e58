package pixelcanvas

import "testing"

func TestInjectClick(t *testing.T) {
	g, sink := newTestGestures(2)

	g.InjectClick(50, 50)
	if len(g.injectQueue) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(g.injectQueue))
	}

	// Frame 1: press
	g.ProcessInjected()
	if len(sink.clicks) != 0 {
		t.Error("click should not fire on press frame")
	}

	// Frame 2: release -> click fires
	g.ProcessInjected()
	if len(g.injectQueue) != 0 {
		t.Fatalf("expected empty queue, got %d", len(g.injectQueue))
	}
	if len(sink.clicks) != 1 {
		t.Errorf("clicks = %d, want 1", len(sink.clicks))
	}
}

func TestInjectDrag(t *testing.T) {
	g, sink := newTestGestures(2)

	// press, 3 moves, release
	g.InjectDrag(10, 10, 210, 110, 5)
	if len(g.injectQueue) != 5 {
		t.Fatalf("expected 5 queued events, got %d", len(g.injectQueue))
	}
	for g.ProcessInjected() {
	}

	// The release position is not a move; the last pan lands at 3/4 of the way.
	ox, oy := g.vp.Offset()
	if !approxEqual(ox, 150, epsilon) || !approxEqual(oy, 75, epsilon) {
		t.Errorf("Offset = (%f,%f), want (150,75)", ox, oy)
	}
	if len(sink.clicks) != 0 {
		t.Error("drag produced a click")
	}
}

func TestInjectDrag_MinFrames(t *testing.T) {
	g, _ := newTestGestures(2)
	g.InjectDrag(0, 0, 100, 100, 1)
	if len(g.injectQueue) != 2 {
		t.Errorf("expected 2 events (min frames), got %d", len(g.injectQueue))
	}
}

func TestInjectWheel(t *testing.T) {
	g, _ := newTestGestures(2)
	g.InjectWheel(40, 40, -100)
	if !g.Injecting() {
		t.Fatal("Injecting = false with a queued event")
	}
	g.ProcessInjected()
	if g.vp.Scale() <= 2 {
		t.Errorf("Scale = %f, want > 2", g.vp.Scale())
	}
}

func TestInjectPinch(t *testing.T) {
	g, _ := newTestGestures(2)
	g.InjectPinch(100, 100, 50, 100, 3)
	if len(g.injectQueue) != 4 {
		t.Fatalf("expected 4 queued events, got %d", len(g.injectQueue))
	}
	for i := 0; i < 3; i++ {
		g.ProcessInjected()
	}
	if _, ok := g.PinchSession(); !ok {
		t.Fatal("no pinch session mid-gesture")
	}
	if !approxEqual(g.vp.Scale(), 4, epsilon) {
		t.Errorf("Scale = %f, want 4", g.vp.Scale())
	}
	g.ProcessInjected()
	if _, ok := g.PinchSession(); ok {
		t.Error("pinch survived the lift event")
	}
}

func TestProcessInjected_EmptyQueue(t *testing.T) {
	g, _ := newTestGestures(2)
	if g.ProcessInjected() {
		t.Error("ProcessInjected on empty queue returned true")
	}
}
