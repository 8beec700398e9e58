package pixelcanvas

import (
	"image"
	"image/color"
)

// GridSurface is the primary rendered grid. The engine reads pixels from it
// for highlight feedback and asks the host to paint optimistic placements.
type GridSurface interface {
	ReadPixel(x, y int) color.RGBA
	// ColorPixel paints the palette color for colorID at a row-major position.
	ColorPixel(position, colorID int)
	// RestorePixel puts back a previously read color.
	RestorePixel(x, y int, c color.RGBA)
}

// OverlaySurface shows staged extra pixels above the grid.
type OverlaySurface interface {
	PaintCell(x, y, colorID int)
	ClearCell(x, y int)
}

// Raster is an in-memory RGBA surface that serves as either a GridSurface or
// an OverlaySurface. Renderers upload it when Dirty reports a change.
type Raster struct {
	img     *image.RGBA
	palette Palette
	dirty   bool
}

// NewRaster creates a transparent width x height raster.
func NewRaster(width, height int, palette Palette) *Raster {
	return &Raster{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		palette: palette,
		dirty:   true,
	}
}

// SetPalette replaces the palette used for color ids.
func (r *Raster) SetPalette(p Palette) {
	r.palette = p
}

// Image returns the backing image. Callers must not retain it across writes.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Dirty reports whether the raster changed since the last ClearDirty.
func (r *Raster) Dirty() bool { return r.dirty }

// ClearDirty marks the raster as uploaded.
func (r *Raster) ClearDirty() { r.dirty = false }

// Fill sets every pixel to the color for colorID.
func (r *Raster) Fill(colorID int) {
	c, ok := r.palette.Color(colorID)
	if !ok {
		return
	}
	b := r.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.img.SetRGBA(x, y, c)
		}
	}
	r.dirty = true
}

// ReadPixel returns the color at (x, y), or transparent outside the raster.
func (r *Raster) ReadPixel(x, y int) color.RGBA {
	return r.img.RGBAAt(x, y)
}

// ColorPixel paints the color for colorID at position.
func (r *Raster) ColorPixel(position, colorID int) {
	c := CellAt(position, r.img.Bounds().Dx())
	r.PaintCell(c.X, c.Y, colorID)
}

// RestorePixel writes c at (x, y).
func (r *Raster) RestorePixel(x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(r.img.Bounds()) {
		return
	}
	r.img.SetRGBA(x, y, c)
	r.dirty = true
}

// PaintCell paints the opaque color for colorID at (x, y).
func (r *Raster) PaintCell(x, y, colorID int) {
	c, ok := r.palette.Color(colorID)
	if !ok {
		return
	}
	r.RestorePixel(x, y, c)
}

// ClearCell makes (x, y) transparent.
func (r *Raster) ClearCell(x, y int) {
	r.RestorePixel(x, y, color.RGBA{})
}
