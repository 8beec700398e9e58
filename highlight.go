package pixelcanvas

import (
	"image/color"
	"math"
)

// Highlight describes how the selection box is drawn.
type Highlight struct {
	Visible bool
	Cell    Cell
	// X, Y and Size give the box in screen space.
	X, Y, Size float64
	// Outline is the inverse of the pixel under the selection.
	Outline color.RGBA
	// Fill is the chosen paint color, or transparent.
	Fill color.RGBA
	// Blur and Spread size the inset shadow drawn with Outline.
	Blur, Spread float64
}

// Highlight computes the selection highlight for the current state.
func (e *Engine) Highlight() Highlight {
	if !e.hasSelection {
		return Highlight{}
	}
	cell := e.selected
	sx, sy := e.vp.GridToScreen(float64(cell.X), float64(cell.Y))
	scale := e.vp.Scale()

	hc := e.cfg.Highlight
	blur := math.Max(hc.ShadowMin, hc.ShadowBase*scale)

	h := Highlight{
		Visible: true,
		Cell:    cell,
		X:       sx,
		Y:       sy,
		Size:    scale,
		Outline: Inverse(e.pixelUnder(cell)),
		Blur:    blur,
		Spread:  blur * hc.ShadowSpread,
	}

	m := e.modeSrc.Modes()
	if e.colorID != NoColor && !m.ExtraDelete {
		if c, ok := e.palette.Color(e.colorID); ok {
			h.Fill = c
		}
	}
	return h
}

// pixelUnder returns the visible color at cell: a staged extra pixel if one
// is there, otherwise the rendered grid pixel.
func (e *Engine) pixelUnder(cell Cell) color.RGBA {
	if p, ok := e.staging.At(cell); ok {
		if c, ok := e.palette.Color(p.ColorID); ok {
			return c
		}
	}
	if e.grid == nil {
		return color.RGBA{}
	}
	return e.grid.ReadPixel(cell.X, cell.Y)
}
