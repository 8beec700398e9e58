package pixelcanvas

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// focusAnim holds the active focus tweens for offset and scale.
type focusAnim struct {
	tweenX     *gween.Tween
	tweenY     *gween.Tween
	tweenScale *gween.Tween
	doneX      bool
	doneY      bool
	doneScale  bool
}

// Viewport owns the pan offset and scale of the grid inside its container.
//
// The grid's top-left corner is drawn at Container.X+OffsetX,
// Container.Y+OffsetY and each cell is Scale screen pixels wide. Scale is
// always within [MinScale, MaxScale].
type Viewport struct {
	// Container is the screen-space rectangle the grid is shown in.
	Container Rect

	gridW, gridH int
	minScale     float64
	maxScale     float64
	zoomRate     float64

	offsetX, offsetY float64
	scale            float64

	matrix    [6]float64
	invMatrix [6]float64
	dirty     bool

	focus *focusAnim
}

// NewViewport creates a viewport for cfg's grid inside container, centered
// so the grid's midpoint sits on the container's midpoint at the initial scale.
func NewViewport(cfg Config, container Rect) *Viewport {
	v := &Viewport{
		Container: container,
		gridW:     cfg.GridWidth,
		gridH:     cfg.GridHeight,
		minScale:  cfg.MinScale,
		maxScale:  cfg.MaxScale,
		zoomRate:  cfg.ZoomRate,
		dirty:     true,
	}
	v.scale = v.clampScale(cfg.InitialScale)
	v.Center()
	return v
}

// Scale returns the current scale factor.
func (v *Viewport) Scale() float64 { return v.scale }

// Offset returns the pan offset of the grid within the container.
func (v *Viewport) Offset() (x, y float64) { return v.offsetX, v.offsetY }

// GridSize returns the grid dimensions in cells.
func (v *Viewport) GridSize() (w, h int) { return v.gridW, v.gridH }

// ScaleRange returns the scale clamp bounds.
func (v *Viewport) ScaleRange() (lo, hi float64) { return v.minScale, v.maxScale }

// Set places the viewport directly. The scale is clamped.
func (v *Viewport) Set(offsetX, offsetY, scale float64) {
	v.offsetX = offsetX
	v.offsetY = offsetY
	v.scale = v.clampScale(scale)
	v.dirty = true
}

// Center positions the grid so its midpoint aligns with the container's.
func (v *Viewport) Center() {
	v.offsetX = (v.Container.Width - float64(v.gridW)*v.scale) / 2
	v.offsetY = (v.Container.Height - float64(v.gridH)*v.scale) / 2
	v.dirty = true
}

// SetContainer updates the container rectangle (e.g. after a window resize)
// and keeps the grid at the same screen position.
func (v *Viewport) SetContainer(r Rect) {
	v.offsetX += v.Container.X - r.X
	v.offsetY += v.Container.Y - r.Y
	v.Container = r
	v.dirty = true
}

// TitleScale returns the presentation scale for a title drawn over the grid:
// the viewport scale times gridWidth/referenceWidth.
func (v *Viewport) TitleScale(referenceWidth float64) float64 {
	if referenceWidth <= 0 {
		return v.scale
	}
	return v.scale * float64(v.gridW) / referenceWidth
}

// GridRect returns the screen-space rectangle covered by the scaled grid.
func (v *Viewport) GridRect() Rect {
	return Rect{
		X:      v.Container.X + v.offsetX,
		Y:      v.Container.Y + v.offsetY,
		Width:  float64(v.gridW) * v.scale,
		Height: float64(v.gridH) * v.scale,
	}
}

// Pan moves the grid by a screen-space delta. Position is not clamped; the
// grid may be dragged off-screen.
func (v *Viewport) Pan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.focus = nil
	v.offsetX += dx
	v.offsetY += dy
	v.dirty = true
}

// ZoomAt zooms by a raw wheel delta (positive zooms out) about a screen
// anchor. The grid point under the anchor stays under it. Returns false if
// nothing changed.
func (v *Viewport) ZoomAt(sx, sy, rawDelta float64) bool {
	if rawDelta == 0 {
		return false
	}
	direction := -1.0
	if rawDelta > 0 {
		direction = 1.0
	}
	magnitude := math.Log2(1 + 2*math.Abs(rawDelta))
	return v.zoomAbout(sx, sy, v.scale*(1-v.zoomRate*direction*magnitude))
}

// PinchZoom sets the scale to ratio*baseScale about a screen anchor, with the
// same anchor-preserving math as ZoomAt.
func (v *Viewport) PinchZoom(midX, midY, ratio, baseScale float64) bool {
	return v.zoomAbout(midX, midY, ratio*baseScale)
}

// zoomAbout applies newScale keeping the grid point under (sx, sy) fixed.
// The anchor is clamped into the scaled grid rectangle first.
func (v *Viewport) zoomAbout(sx, sy, newScale float64) bool {
	r := v.GridRect()
	if r.Width == 0 || r.Height == 0 {
		return false
	}
	newScale = v.clampScale(newScale)

	cursorX := clamp(sx-r.X, 0, r.Width)
	cursorY := clamp(sy-r.Y, 0, r.Height)

	newW := float64(v.gridW) * newScale
	newH := float64(v.gridH) * newScale
	relX := cursorX / r.Width
	relY := cursorY / r.Height

	prevX, prevY, prevScale := v.offsetX, v.offsetY, v.scale
	v.offsetX -= relX*newW - cursorX
	v.offsetY -= relY*newH - cursorY
	v.scale = newScale
	v.focus = nil

	if v.offsetX == prevX && v.offsetY == prevY && v.scale == prevScale {
		return false
	}
	v.dirty = true
	return true
}

func (v *Viewport) clampScale(s float64) float64 {
	return clamp(s, v.minScale, v.maxScale)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// FocusCell animates the viewport over duration seconds so that cell is
// centered in the container at the given scale. A non-positive duration
// jumps immediately.
func (v *Viewport) FocusCell(cell Cell, scale float64, duration float32, easeFn ease.TweenFunc) {
	scale = v.clampScale(scale)
	tx := v.Container.Width/2 - (float64(cell.X)+0.5)*scale
	ty := v.Container.Height/2 - (float64(cell.Y)+0.5)*scale
	if duration <= 0 {
		v.focus = nil
		v.Set(tx, ty, scale)
		return
	}
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	v.focus = &focusAnim{
		tweenX:     gween.New(float32(v.offsetX), float32(tx), duration, easeFn),
		tweenY:     gween.New(float32(v.offsetY), float32(ty), duration, easeFn),
		tweenScale: gween.New(float32(v.scale), float32(scale), duration, easeFn),
	}
}

// Animating reports whether a focus animation is running.
func (v *Viewport) Animating() bool {
	return v.focus != nil
}

// update advances the focus animation. Returns true if the viewport moved.
func (v *Viewport) update(dt float32) bool {
	if v.focus == nil {
		return false
	}
	f := v.focus
	if !f.doneX {
		val, done := f.tweenX.Update(dt)
		v.offsetX = float64(val)
		f.doneX = done
	}
	if !f.doneY {
		val, done := f.tweenY.Update(dt)
		v.offsetY = float64(val)
		f.doneY = done
	}
	if !f.doneScale {
		val, done := f.tweenScale.Update(dt)
		v.scale = v.clampScale(float64(val))
		f.doneScale = done
	}
	if f.doneX && f.doneY && f.doneScale {
		v.focus = nil
	}
	v.dirty = true
	return true
}

// computeMatrix recomputes the cached grid-to-screen matrix if dirty.
//
// matrix = Translate(container + offset) * Scale(scale)
func (v *Viewport) computeMatrix() [6]float64 {
	if !v.dirty {
		return v.matrix
	}
	v.dirty = false
	r := v.GridRect()
	v.matrix = scaleTranslate(v.scale, r.X, r.Y)
	v.invMatrix = invertAffine(v.matrix)
	return v.matrix
}

// Matrix returns the grid-to-screen affine matrix [a, b, c, d, tx, ty].
func (v *Viewport) Matrix() [6]float64 {
	return v.computeMatrix()
}

// GridToScreen converts grid coordinates (in cells, fractional) to screen
// coordinates.
func (v *Viewport) GridToScreen(gx, gy float64) (sx, sy float64) {
	v.computeMatrix()
	return transformPoint(v.matrix, gx, gy)
}

// ScreenToGrid converts screen coordinates to fractional grid coordinates.
func (v *Viewport) ScreenToGrid(sx, sy float64) (gx, gy float64) {
	v.computeMatrix()
	return transformPoint(v.invMatrix, sx, sy)
}

// CellCenter returns the screen position of the center of cell.
func (v *Viewport) CellCenter(cell Cell) (sx, sy float64) {
	return v.GridToScreen(float64(cell.X)+0.5, float64(cell.Y)+0.5)
}
