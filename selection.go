package pixelcanvas

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"
)

// Phase is the state of the selection and placement state machine.
type Phase uint8

const (
	PhaseNoSelection Phase = iota // nothing selected
	PhaseSelected                 // a cell is selected, possibly with a color
	PhasePending                  // the selected cell has a primary placement in flight
)

func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhasePending:
		return "pending"
	default:
		return "no-selection"
	}
}

// Selection is a snapshot of the selection state.
type Selection struct {
	Cell    Cell
	HasCell bool
	ColorID int
	Mode    Mode
}

// PixelInfoLookup fetches who placed the pixel at a position. An empty string
// with a nil error means nobody has.
type PixelInfoLookup interface {
	PlacedBy(ctx context.Context, scope Scope, position int) (string, error)
}

// Options are the collaborators of an Engine.
type Options struct {
	// Container is the screen rectangle the grid is shown in.
	Container Rect

	Grid    GridSurface
	Overlay OverlaySurface
	Modes   ModeSource

	// Submitter delivers placements. Nil means OfflineSubmitter.
	Submitter Submitter
	Lookup    PixelInfoLookup
	// Reconciler decides what happens to the optimistic paint on failure.
	Reconciler Reconciler

	// Staging is shared with the surrounding session. Nil creates an empty one.
	Staging *Staging
	Scope   Scope

	// Now returns the wall clock. Nil means time.Now.
	Now func() time.Time
}

// Engine owns one mounted canvas view: its viewport, gestures, selection and
// staged extra pixels. All methods must be called from the goroutine that
// calls Update; asynchronous work posts its results back through Update.
type Engine struct {
	cfg     Config
	palette Palette
	log     *log.Logger

	vp       *Viewport
	gestures *Gestures
	staging  *Staging

	grid      GridSurface
	overlay   OverlaySurface
	modeSrc   ModeSource
	submitter Submitter
	lookup    PixelInfoLookup
	reconcile Reconciler
	scope     Scope
	now       func() time.Time

	selected     Cell
	hasSelection bool
	colorID      int
	placedBy     string

	pending      int
	pendingCells map[Cell]int

	// painted is the latest primary placement painted on each cell that
	// has not finished yet.
	painted    map[Cell]*Placement
	batch      *Placement
	lastPlaced time.Time

	handlers handlerRegistry

	mu    sync.Mutex
	queue []func()

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates an engine for cfg with the given collaborators.
func NewEngine(cfg Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pixelcanvas: %w", err)
	}
	palette, _ := ParsePalette(cfg.Palette)

	e := &Engine{
		cfg:          cfg,
		palette:      palette,
		log:          cfg.logger(),
		grid:         opts.Grid,
		overlay:      opts.Overlay,
		modeSrc:      opts.Modes,
		submitter:    opts.Submitter,
		lookup:       opts.Lookup,
		reconcile:    opts.Reconciler,
		staging:      opts.Staging,
		scope:        opts.Scope,
		now:          opts.Now,
		colorID:      NoColor,
		pendingCells: make(map[Cell]int),
		painted:      make(map[Cell]*Placement),
	}
	if e.modeSrc == nil {
		e.modeSrc = &ModeFlags{}
	}
	if e.submitter == nil {
		e.submitter = OfflineSubmitter{}
	}
	if e.staging == nil {
		e.staging = NewStaging(0, false)
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.vp = NewViewport(cfg, opts.Container)
	e.gestures = NewGestures(e.vp, cfg)
	e.gestures.sink = e
	return e, nil
}

// Viewport returns the engine's viewport.
func (e *Engine) Viewport() *Viewport { return e.vp }

// Gestures returns the engine's gesture adapter.
func (e *Engine) Gestures() *Gestures { return e.gestures }

// Palette returns the active palette.
func (e *Engine) Palette() Palette { return e.palette }

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Activate starts accepting input and returns the release func.
func (e *Engine) Activate() (release func()) {
	return e.gestures.Activate()
}

// Close releases input and cancels in-flight submissions and lookups.
func (e *Engine) Close() {
	e.gestures.Deactivate()
	e.cancel()
}

// OnChange registers a callback for every engine change notification.
func (e *Engine) OnChange(fn func(Event)) CallbackHandle {
	return e.handlers.add(fn)
}

func (e *Engine) emit(ev Event) {
	e.handlers.emit(ev)
}

// Update advances scripted input, injected input and viewport animation by
// dt seconds, then applies results of finished asynchronous work.
func (e *Engine) Update(dt float32) {
	if s := e.gestures.script; s != nil {
		s.step(e.gestures)
	}
	e.gestures.ProcessInjected()
	if e.vp.update(dt) {
		e.emit(Event{Type: EventViewport})
	}
	e.drain()
}

// post queues fn to run on the owning goroutine during the next Update.
func (e *Engine) post(fn func()) {
	e.mu.Lock()
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
}

func (e *Engine) drain() {
	e.mu.Lock()
	q := e.queue
	e.queue = nil
	e.mu.Unlock()
	for _, fn := range q {
		fn()
	}
}

// ApplyConfig swaps in a reloaded configuration. The grid size cannot change.
func (e *Engine) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("pixelcanvas: %w", err)
	}
	if cfg.GridWidth != e.cfg.GridWidth || cfg.GridHeight != e.cfg.GridHeight {
		return fmt.Errorf("pixelcanvas: grid size cannot change from %dx%d to %dx%d",
			e.cfg.GridWidth, e.cfg.GridHeight, cfg.GridWidth, cfg.GridHeight)
	}
	palette, _ := ParsePalette(cfg.Palette)
	e.cfg = cfg
	e.palette = palette
	e.log = cfg.logger()
	e.vp.minScale, e.vp.maxScale, e.vp.zoomRate = cfg.MinScale, cfg.MaxScale, cfg.ZoomRate
	e.vp.Set(e.vp.offsetX, e.vp.offsetY, e.vp.scale)
	e.gestures.clickSlop = cfg.ClickSlop
	e.gestures.wheelLine = cfg.WheelLineHeight
	e.emit(Event{Type: EventViewport})
	return nil
}

// SetContainer updates the screen rectangle of the view.
func (e *Engine) SetContainer(r Rect) {
	if r == e.vp.Container {
		return
	}
	e.vp.SetContainer(r)
	e.emit(Event{Type: EventViewport})
}

// SetScope switches between the global canvas and a sub-world.
func (e *Engine) SetScope(scope Scope) {
	e.scope = scope
}

// Scope returns the current placement scope.
func (e *Engine) Scope() Scope { return e.scope }

// SetColor chooses the paint color; NoColor returns to inspect mode.
func (e *Engine) SetColor(colorID int) error {
	if colorID != NoColor {
		if _, ok := e.palette.Color(colorID); !ok {
			return fmt.Errorf("pixelcanvas: color %d not in palette of %d", colorID, len(e.palette))
		}
	}
	if colorID == e.colorID {
		return nil
	}
	e.colorID = colorID
	e.emit(e.selectionEvent())
	return nil
}

// SetQuota replaces the extra-pixel allowance. Staged pixels beyond a
// reduced quota are dropped and cleared from the overlay.
func (e *Engine) SetQuota(quota int, basePixelUp bool) {
	dropped := e.staging.SetQuota(quota, basePixelUp)
	for _, p := range dropped {
		e.clearOverlay(p.Cell())
	}
	e.emit(Event{Type: EventStaging})
}

// Selection returns the current selection state.
func (e *Engine) Selection() Selection {
	return Selection{
		Cell:    e.selected,
		HasCell: e.hasSelection,
		ColorID: e.colorID,
		Mode:    e.Mode(),
	}
}

// Mode returns the active tool.
func (e *Engine) Mode() Mode {
	switch {
	case e.modeSrc.Modes().Eraser:
		return ModeErase
	case e.colorID != NoColor:
		return ModePaint
	default:
		return ModeInspect
	}
}

// Phase returns the state of the selection state machine.
func (e *Engine) Phase() Phase {
	if !e.hasSelection {
		return PhaseNoSelection
	}
	if e.pendingCells[e.selected] > 0 {
		return PhasePending
	}
	return PhaseSelected
}

// PlacedBy returns the placer of the selected cell, once looked up.
func (e *Engine) PlacedBy() string { return e.placedBy }

// Pending returns how many primary placements are in flight.
func (e *Engine) Pending() int { return e.pending }

// LastPlaced returns when the last primary placement was committed.
func (e *Engine) LastPlaced() time.Time { return e.lastPlaced }

// Staged returns the staged extra pixels in placement order.
func (e *Engine) Staged() []StagedPixel { return e.staging.Staged() }

// Quota returns the used and total extra-pixel allowance.
func (e *Engine) Quota() (used, quota int) {
	return e.staging.Used(), e.staging.Quota()
}

// TitleScale returns the scale for a title drawn over the grid.
func (e *Engine) TitleScale() float64 {
	return e.vp.TitleScale(e.cfg.TitleReferenceWidth)
}

// ClearSelection returns to the no-selection state.
func (e *Engine) ClearSelection() {
	if !e.hasSelection && e.placedBy == "" {
		return
	}
	e.hasSelection = false
	e.selected = Cell{}
	e.placedBy = ""
	e.emit(e.selectionEvent())
}

func (e *Engine) selectionEvent() Event {
	return Event{Type: EventSelection, Cell: e.selected, HasCell: e.hasSelection, ColorID: e.colorID}
}

// --- gestureSink ---

func (e *Engine) modes() Modes { return e.modeSrc.Modes() }

func (e *Engine) click(sx, sy float64, _ Target) {
	_, _ = e.ClickAt(sx, sy)
}

func (e *Engine) hover(sx, sy float64, target Target) {
	m := e.modeSrc.Modes()
	if e.colorID == NoColor && !m.Eraser {
		return
	}
	if m.creating() {
		return
	}
	cell, ok := e.vp.ResolveHover(sx, sy, target)
	if !ok {
		return
	}
	if e.hasSelection && e.selected == cell {
		return
	}
	e.selectCell(cell, m)
}

func (e *Engine) eraseAt(sx, sy float64) {
	if !e.modeSrc.Modes().Eraser {
		return
	}
	_, _ = e.ClickAt(sx, sy)
}

func (e *Engine) viewportChanged() {
	e.emit(Event{Type: EventViewport})
}

// --- clicks ---

// ClickAt handles a click at a screen point. Clicks are ignored while a
// minting or template flow is active. Points off the grid return
// ErrOutOfBounds.
func (e *Engine) ClickAt(sx, sy float64) (*Placement, error) {
	if e.modeSrc.Modes().clicksCeded() {
		return nil, nil
	}
	cell, err := e.vp.Resolve(sx, sy)
	if err != nil {
		return nil, err
	}
	return e.ClickCell(cell)
}

// ClickCell applies a click on cell:
//
//   - in erase mode, removes the staged extra pixel there;
//   - otherwise selects the cell (or deselects it when it is already selected
//     and no color is chosen);
//   - with a color chosen, stages an extra pixel while extra pixels apply, or
//     commits a primary placement.
//
// A non-nil Placement is returned for a primary commit. ErrQuotaExhausted is
// returned when extra pixels apply but none remain.
func (e *Engine) ClickCell(cell Cell) (*Placement, error) {
	if !cell.In(e.cfg.GridWidth, e.cfg.GridHeight) {
		return nil, ErrOutOfBounds
	}
	m := e.modeSrc.Modes()
	if m.Eraser {
		e.erase(cell)
		return nil, nil
	}

	e.selectCell(cell, m)
	if e.colorID == NoColor {
		return nil, nil
	}

	if e.staging.Applicable(e.cfg.BaseAllowance) {
		return nil, e.stage(cell)
	}
	return e.place(cell)
}

func (e *Engine) selectCell(cell Cell, m Modes) {
	if e.colorID == NoColor && e.hasSelection && e.selected == cell {
		e.ClearSelection()
		return
	}
	e.selected = cell
	e.hasSelection = true
	e.placedBy = ""
	e.emit(e.selectionEvent())

	if e.colorID != NoColor || m.Eraser || m.ExtraDelete {
		return
	}
	e.lookupPlacedBy(cell)
}

// lookupPlacedBy fetches the placer of cell without blocking. The result is
// kept only if cell is still selected when it arrives.
func (e *Engine) lookupPlacedBy(cell Cell) {
	if e.lookup == nil {
		return
	}
	scope := e.scope
	position := cell.Position(e.cfg.GridWidth)
	go func() {
		who, err := e.lookup.PlacedBy(e.ctx, scope, position)
		e.post(func() {
			if err != nil {
				if e.ctx.Err() == nil {
					e.log.Printf("pixelcanvas: pixel info %d (%s): %v", position, scope, err)
				}
				return
			}
			if who == "" || !e.hasSelection || e.selected != cell {
				return
			}
			e.placedBy = who
			e.emit(Event{Type: EventPlacedBy, Cell: cell, HasCell: true, PlacedBy: who, Scope: scope})
		})
	}()
}

func (e *Engine) stage(cell Cell) error {
	if err := e.staging.Stage(cell, e.colorID); err != nil {
		return err
	}
	if e.overlay != nil {
		e.overlay.PaintCell(cell.X, cell.Y, e.colorID)
	}
	e.emit(Event{Type: EventStaging, Cell: cell, HasCell: true, ColorID: e.colorID})
	return nil
}

func (e *Engine) erase(cell Cell) {
	if e.staging.Remove(cell) {
		e.clearOverlay(cell)
		e.emit(Event{Type: EventStaging, Cell: cell, HasCell: true, ColorID: NoColor})
	}
	if e.staging.Used() == 0 {
		e.modeSrc.SetEraser(false)
		e.emit(Event{Type: EventEraser})
	}
}

func (e *Engine) clearOverlay(cell Cell) {
	if e.overlay != nil {
		e.overlay.ClearCell(cell.X, cell.Y)
	}
}

// --- primary placement ---

func (e *Engine) place(cell Cell) (*Placement, error) {
	if e.cfg.SerializePlacements && e.pending > 0 {
		return nil, ErrPlacementPending
	}
	if rc, ok := e.submitter.(ReadyChecker); ok {
		if err := rc.Ready(e.scope); err != nil {
			return nil, err
		}
	}

	req := PlacementRequest{
		Position:  cell.Position(e.cfg.GridWidth),
		ColorID:   e.colorID,
		Timestamp: e.now().Unix(),
	}
	var prev color.RGBA
	if e.grid != nil {
		prev = e.grid.ReadPixel(cell.X, cell.Y)
	}

	e.colorID = NoColor
	e.emit(e.selectionEvent())
	if e.grid != nil {
		e.grid.ColorPixel(req.Position, req.ColorID)
	}

	pl := newPlacement(e.scope)
	pl.Request = req
	e.pending++
	e.pendingCells[cell]++
	e.painted[cell] = pl
	e.emit(Event{Type: EventPlacementStarted, Cell: cell, HasCell: true, ColorID: req.ColorID, Scope: pl.Scope})

	e.submit(pl, cell, prev, 1)
	return pl, nil
}

func (e *Engine) submit(pl *Placement, cell Cell, prev color.RGBA, attempt int) {
	go func() {
		err := e.submitter.PlacePixel(e.ctx, pl.Scope, pl.Request)
		e.post(func() { e.finishPlacement(pl, cell, prev, attempt, err) })
	}()
}

func (e *Engine) finishPlacement(pl *Placement, cell Cell, prev color.RGBA, attempt int, err error) {
	if err != nil {
		e.log.Printf("pixelcanvas: place pixel %d color %d (%s) attempt %d: %v",
			pl.Request.Position, pl.Request.ColorID, pl.Scope, attempt, err)

		action := KeepOptimistic
		if e.reconcile != nil {
			action = e.reconcile(PlacementFailure{
				Request:  pl.Request,
				Scope:    pl.Scope,
				Cell:     cell,
				Previous: prev,
				Attempt:  attempt,
				Err:      err,
			})
		}
		switch action {
		case RetryOnce:
			if attempt == 1 {
				e.submit(pl, cell, prev, attempt+1)
				return
			}
		case RevertOptimistic:
			// A later placement painted over this one; its color stays.
			if e.grid != nil && e.painted[cell] == pl {
				e.grid.RestorePixel(cell.X, cell.Y, prev)
			}
		}
	}

	e.pending--
	if e.pendingCells[cell]--; e.pendingCells[cell] <= 0 {
		delete(e.pendingCells, cell)
	}
	if e.painted[cell] == pl {
		delete(e.painted, cell)
	}

	if err != nil {
		pl.finish(err)
		e.emit(Event{Type: EventPlacementFailed, Cell: cell, HasCell: true, ColorID: pl.Request.ColorID, Scope: pl.Scope, Err: err})
		return
	}

	e.lastPlaced = time.Unix(pl.Request.Timestamp, 0)
	pl.finish(nil)
	e.ClearSelection()
	e.emit(Event{Type: EventPlacementCommitted, Cell: cell, HasCell: true, ColorID: pl.Request.ColorID, Scope: pl.Scope})
}

// --- extra pixel commit ---

// CommitExtraPixels submits every staged extra pixel in one batch. On
// success the pixels are painted onto the grid, cleared from the overlay and
// removed from staging. Returns nil, nil when nothing is staged and
// ErrPlacementPending while an earlier batch is still in flight.
func (e *Engine) CommitExtraPixels() (*Placement, error) {
	if e.batch != nil {
		return nil, ErrPlacementPending
	}
	staged := e.staging.Staged()
	if len(staged) == 0 {
		return nil, nil
	}
	if rc, ok := e.submitter.(ReadyChecker); ok {
		if err := rc.Ready(e.scope); err != nil {
			return nil, err
		}
	}

	pl := newPlacement(e.scope)
	pl.Request.Timestamp = e.now().Unix()
	pl.Extras = make([]ExtraPlacement, len(staged))
	for i, p := range staged {
		pl.Extras[i] = ExtraPlacement{Position: p.Cell().Position(e.cfg.GridWidth), ColorID: p.ColorID}
	}
	e.batch = pl

	go func() {
		err := e.submitter.PlaceExtraPixels(e.ctx, pl.Scope, pl.Extras, pl.Request.Timestamp)
		e.post(func() { e.finishExtraPixels(pl, staged, err) })
	}()
	return pl, nil
}

func (e *Engine) finishExtraPixels(pl *Placement, staged []StagedPixel, err error) {
	e.batch = nil
	if err != nil {
		e.log.Printf("pixelcanvas: place %d extra pixels (%s): %v", len(staged), pl.Scope, err)
		pl.finish(err)
		e.emit(Event{Type: EventPlacementFailed, Scope: pl.Scope, Err: err})
		return
	}
	for _, p := range staged {
		cell := p.Cell()
		if e.grid != nil {
			e.grid.ColorPixel(cell.Position(e.cfg.GridWidth), p.ColorID)
		}
		delete(e.painted, cell)
		if cur, ok := e.staging.At(cell); ok && cur.ColorID == p.ColorID {
			e.staging.Remove(cell)
			e.clearOverlay(cell)
		}
	}
	e.lastPlaced = time.Unix(pl.Request.Timestamp, 0)
	pl.finish(nil)
	e.emit(Event{Type: EventExtraPixelsCommitted, Scope: pl.Scope})
	e.emit(Event{Type: EventStaging})
}
