package pixelcanvas

import (
	"image/color"
	"testing"
)

func TestHighlightHiddenWithoutSelection(t *testing.T) {
	te := newTestEngine(t, testConfig(100, 100), Options{})
	if h := te.Highlight(); h.Visible {
		t.Errorf("Highlight = %+v, want hidden", h)
	}
}

func TestHighlightGeometryAndColors(t *testing.T) {
	te := newTestEngine(t, testConfig(100, 100), Options{})
	_, _ = te.ClickCell(Cell{X: 3, Y: 4})

	h := te.Highlight()
	if !h.Visible || h.X != 30 || h.Y != 40 || h.Size != 10 {
		t.Errorf("Highlight box = (%f,%f,%f), visible %v", h.X, h.Y, h.Size, h.Visible)
	}
	// Grid is filled with FAFAFA.
	if want := (color.RGBA{R: 5, G: 5, B: 5, A: 255}); h.Outline != want {
		t.Errorf("Outline = %v, want %v", h.Outline, want)
	}
	if h.Fill.A != 0 {
		t.Errorf("Fill = %v, want transparent in inspect mode", h.Fill)
	}
	if !approxEqual(h.Blur, 1.2, epsilon) || !approxEqual(h.Spread, 0.96, epsilon) {
		t.Errorf("Blur, Spread = %f, %f, want 1.2, 0.96", h.Blur, h.Spread)
	}
}

func TestHighlightBlurFloor(t *testing.T) {
	te := newTestEngine(t, testConfig(100, 100), Options{})
	te.Viewport().Set(0, 0, 1)
	_, _ = te.ClickCell(Cell{X: 1, Y: 1})
	if h := te.Highlight(); !approxEqual(h.Blur, 0.8, epsilon) {
		t.Errorf("Blur = %f, want floor 0.8", h.Blur)
	}
}

func TestHighlightOverStagedPixel(t *testing.T) {
	te := newTestEngine(t, testConfig(100, 100), Options{})
	te.SetQuota(1, false)
	_ = te.SetColor(1) // 080808
	_, _ = te.ClickCell(Cell{X: 2, Y: 2})

	h := te.Highlight()
	if want := (color.RGBA{R: 0xF7, G: 0xF7, B: 0xF7, A: 255}); h.Outline != want {
		t.Errorf("Outline = %v, want inverse of the staged color %v", h.Outline, want)
	}
	c1, _ := te.Palette().Color(1)
	if h.Fill != c1 {
		t.Errorf("Fill = %v, want %v", h.Fill, c1)
	}

	te.flags.State.ExtraDelete = true
	if h := te.Highlight(); h.Fill.A != 0 {
		t.Error("Fill shown in extra-delete mode")
	}
}
