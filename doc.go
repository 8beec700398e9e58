// Package pixelcanvas is the interaction core of a collaborative pixel canvas
// for [Ebitengine].
//
// It owns the viewport over a fixed-size grid, turns pointer, wheel and touch
// input into pan, zoom and pinch gestures, resolves screen points to grid
// cells, and drives a selection and placement state machine that paints
// optimistically and submits placements to a ledger or a devnet backend.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and feeds
// Ebitengine input into an [Engine]:
//
//	cfg := pixelcanvas.DefaultConfig()
//	palette, _ := pixelcanvas.ParsePalette(cfg.Palette)
//	grid := pixelcanvas.NewRaster(cfg.GridWidth, cfg.GridHeight, palette)
//	overlay := pixelcanvas.NewRaster(cfg.GridWidth, cfg.GridHeight, palette)
//	engine, _ := pixelcanvas.NewEngine(cfg, pixelcanvas.Options{
//		Grid: grid, Overlay: overlay,
//		Submitter: pixelcanvas.NewDevnetClient(cfg),
//	})
//	pixelcanvas.Run(pixelcanvas.NewGame(engine, grid, overlay),
//		pixelcanvas.RunConfig{Title: "canvas", Width: 800, Height: 600})
//
// For full control, skip [Game] and call [Gestures] methods from your own
// input code, then [Engine.Update] once per tick.
//
// # Viewport
//
// A [Viewport] maps grid space to screen space with an offset and a uniform
// scale clamped to [Config.MinScale, Config.MaxScale]. [Viewport.ZoomAt] and
// [Viewport.PinchZoom] keep the grid point under the anchor fixed on screen.
// [Viewport.FocusCell] tweens the view onto a cell using a gween easing.
//
// # Gestures
//
// [Gestures] is a small state machine: a pointer press starts a drag (or an
// erase stroke while the eraser is armed), two touches start a pinch, and a
// release within the click slop becomes a click. Input is ignored until
// [Gestures.Activate] is called; the returned release func detaches it.
//
// # Selection and placement
//
// [Engine.ClickAt] and [Engine.ClickCell] select, deselect, stage extra
// pixels, erase them, or commit a primary placement depending on the chosen
// color and the [Modes] reported by the host. A commit paints the overlay at
// once and returns a [Placement] that completes on the engine goroutine during
// [Engine.Update]. Failures are reported through [Event]s and a [Reconciler]
// may revert or retry the optimistic paint.
//
// All engine state is owned by the goroutine calling [Engine.Update]; network
// work runs in the background and posts its results back.
//
// # Testing
//
// [Gestures.InjectClick], [Gestures.InjectDrag] and friends queue synthetic
// input, and [LoadScript] replays a JSON sequence of steps, so sessions can be
// driven headless without a window.
//
// [Ebitengine]: https://ebitengine.org
package pixelcanvas
