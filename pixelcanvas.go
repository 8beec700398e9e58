package pixelcanvas

import "fmt"

// NoColor is the selected color id meaning "inspect, no color chosen".
const NoColor = -1

// Vec2 is a 2D vector used for screen positions and deltas.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Position returns the row-major index of the cell in a grid of the given width.
func (c Cell) Position(width int) int {
	return c.Y*width + c.X
}

// In reports whether the cell lies inside a width x height grid.
func (c Cell) In(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// CellAt converts a row-major position back into a cell.
func CellAt(position, width int) Cell {
	if width <= 0 {
		return Cell{}
	}
	return Cell{X: position % width, Y: position / width}
}

// Mode is the active tool.
type Mode uint8

const (
	ModeInspect Mode = iota // no color chosen; clicks select and look up the placer
	ModePaint               // a color is chosen; clicks stage or place
	ModeErase               // clicks remove staged extra pixels
)

func (m Mode) String() string {
	switch m {
	case ModePaint:
		return "paint"
	case ModeErase:
		return "erase"
	default:
		return "inspect"
	}
}

// Target identifies the surface under a pointer event.
type Target uint8

const (
	TargetOther   Target = iota // any element that is not a canvas surface
	TargetGrid                  // the primary grid surface
	TargetOverlay               // the extra-pixel overlay surface
)

// IsCanvas reports whether the target is one of the two canvas-bearing surfaces.
func (t Target) IsCanvas() bool {
	return t == TargetGrid || t == TargetOverlay
}

// Scope selects which ledger a placement is addressed to: the global canvas
// or a named sub-world. The zero value is Global.
type Scope struct {
	world bool
	id    int
}

// Global is the scope of the shared canvas.
var Global = Scope{}

// World returns the scope of the sub-world with the given id.
func World(id int) Scope {
	return Scope{world: true, id: id}
}

// WorldID returns the world id and true if the scope is a sub-world.
func (s Scope) WorldID() (int, bool) {
	return s.id, s.world
}

func (s Scope) String() string {
	if s.world {
		return fmt.Sprintf("world:%d", s.id)
	}
	return "global"
}

// Modes is a snapshot of the host UI flags that gate interaction. The engine
// reads them but only ever writes Eraser (auto-off when staging empties).
type Modes struct {
	Eraser      bool
	ExtraDelete bool

	NFTMinting  bool
	NFTSelected bool

	TemplateCreation bool
	TemplateSelected bool

	StencilCreation bool
}

// creating reports whether any modal creation or minting flow is active.
func (m Modes) creating() bool {
	return m.NFTMinting || m.TemplateCreation || m.StencilCreation
}

// movesCeded reports whether an external flow owns pointer moves because its
// own selection step is not yet satisfied.
func (m Modes) movesCeded() bool {
	return (m.NFTMinting && !m.NFTSelected) || (m.TemplateCreation && !m.TemplateSelected)
}

// clicksCeded reports whether clicks belong to a minting or template flow.
func (m Modes) clicksCeded() bool {
	return m.NFTMinting || m.TemplateCreation
}

// ModeSource supplies host mode flags to the engine.
type ModeSource interface {
	Modes() Modes
	SetEraser(on bool)
}

// ModeFlags is a ModeSource backed by a plain struct the host mutates directly.
type ModeFlags struct {
	State Modes
}

// Modes returns the current flags.
func (f *ModeFlags) Modes() Modes {
	return f.State
}

// SetEraser sets the eraser flag.
func (f *ModeFlags) SetEraser(on bool) {
	f.State.Eraser = on
}
