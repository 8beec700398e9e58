package pixelcanvas

import (
	"image/color"
	"testing"
)

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"FAFAFA", "#080808", "crimson", " Teal "})
	if err != nil {
		t.Fatal(err)
	}
	want := []color.RGBA{
		{R: 0xFA, G: 0xFA, B: 0xFA, A: 0xFF},
		{R: 0x08, G: 0x08, B: 0x08, A: 0xFF},
		{R: 0xDC, G: 0x14, B: 0x3C, A: 0xFF},
		{R: 0x00, G: 0x80, B: 0x80, A: 0xFF},
	}
	for i, w := range want {
		if p[i] != w {
			t.Errorf("p[%d] = %v, want %v", i, p[i], w)
		}
	}
	if _, err := ParsePalette([]string{"12345"}); err == nil {
		t.Error("short hex accepted")
	}
}

func TestPaletteColorRange(t *testing.T) {
	p := Palette{{R: 1, A: 255}}
	if _, ok := p.Color(NoColor); ok {
		t.Error("NoColor resolved to a color")
	}
	if _, ok := p.Color(1); ok {
		t.Error("out-of-range id resolved")
	}
	if c, ok := p.Color(0); !ok || c.R != 1 {
		t.Errorf("Color(0) = %v, %v", c, ok)
	}
}

func TestInverseAndHex(t *testing.T) {
	c := color.RGBA{R: 0x10, G: 0x80, B: 0xFF, A: 0x7F}
	inv := Inverse(c)
	if inv != (color.RGBA{R: 0xEF, G: 0x7F, B: 0x00, A: 0x7F}) {
		t.Errorf("Inverse = %v", inv)
	}
	if Inverse(inv) != c {
		t.Error("Inverse is not an involution")
	}
	if got := Hex(c); got != "1080FF7F" {
		t.Errorf("Hex = %q", got)
	}
}

func TestRasterSurfaces(t *testing.T) {
	p := Palette{{R: 255, A: 255}, {G: 255, A: 255}}
	r := NewRaster(4, 3, p)
	r.ClearDirty()

	r.ColorPixel(Cell{X: 2, Y: 1}.Position(4), 1)
	if got := r.ReadPixel(2, 1); got != p[1] {
		t.Errorf("ReadPixel = %v, want %v", got, p[1])
	}
	if !r.Dirty() {
		t.Error("not dirty after paint")
	}

	r.ClearCell(2, 1)
	if got := r.ReadPixel(2, 1); got.A != 0 {
		t.Errorf("ReadPixel after clear = %v", got)
	}

	// Out-of-range writes and colors are ignored.
	r.RestorePixel(10, 10, p[0])
	r.PaintCell(0, 0, 7)
	if got := r.ReadPixel(0, 0); got.A != 0 {
		t.Errorf("unknown color painted %v", got)
	}

	r.Fill(0)
	if got := r.ReadPixel(3, 2); got != p[0] {
		t.Errorf("Fill = %v", got)
	}
}
