package pixelcanvas

import (
	"errors"
	"math"
)

// ErrOutOfBounds is returned when a screen point maps outside the grid.
var ErrOutOfBounds = errors.New("pixelcanvas: point outside grid")

// ResolveCell maps a screen point to the grid cell under it, given the
// screen rectangle the grid occupies. It returns ErrOutOfBounds for points
// off the grid or when rect has no area.
func ResolveCell(sx, sy float64, rect Rect, gridW, gridH int) (Cell, error) {
	if rect.Empty() {
		return Cell{}, ErrOutOfBounds
	}
	x := int(math.Floor((sx - rect.X) / rect.Width * float64(gridW)))
	y := int(math.Floor((sy - rect.Y) / rect.Height * float64(gridH)))
	c := Cell{X: x, Y: y}
	if !c.In(gridW, gridH) {
		return Cell{}, ErrOutOfBounds
	}
	return c, nil
}

// Resolve maps a screen point through the viewport to a grid cell.
func (v *Viewport) Resolve(sx, sy float64) (Cell, error) {
	return ResolveCell(sx, sy, v.GridRect(), v.gridW, v.gridH)
}

// ResolveHover is Resolve restricted to events whose target is one of the
// canvas surfaces, so hover under unrelated overlay elements is ignored.
func (v *Viewport) ResolveHover(sx, sy float64, target Target) (Cell, bool) {
	if !target.IsCanvas() {
		return Cell{}, false
	}
	c, err := v.Resolve(sx, sy)
	return c, err == nil
}
