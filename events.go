package pixelcanvas

// EventType identifies a kind of engine change notification.
type EventType uint8

const (
	EventViewport             EventType = iota // pan, zoom or focus animation moved the grid
	EventSelection                             // selected cell or color changed
	EventStaging                               // an extra pixel was staged or removed
	EventEraser                                // the engine toggled erase mode
	EventPlacedBy                              // placed-by metadata arrived for the selected cell
	EventPlacementStarted                      // a primary placement was painted and handed off
	EventPlacementCommitted                    // a primary placement submission succeeded
	EventPlacementFailed                       // a primary placement submission failed
	EventExtraPixelsCommitted                  // staged extra pixels were submitted
)

func (t EventType) String() string {
	switch t {
	case EventViewport:
		return "viewport"
	case EventSelection:
		return "selection"
	case EventStaging:
		return "staging"
	case EventEraser:
		return "eraser"
	case EventPlacedBy:
		return "placed-by"
	case EventPlacementStarted:
		return "placement-started"
	case EventPlacementCommitted:
		return "placement-committed"
	case EventPlacementFailed:
		return "placement-failed"
	case EventExtraPixelsCommitted:
		return "extra-pixels-committed"
	default:
		return "unknown"
	}
}

// Event describes one change. Only the fields relevant to Type are set.
type Event struct {
	Type EventType

	Cell    Cell
	HasCell bool
	ColorID int
	Scope   Scope

	PlacedBy string
	Err      error
}

type changeHandler struct {
	id uint32
	fn func(Event)
}

type handlerRegistry struct {
	change []changeHandler
	nextID uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id  uint32
	reg *handlerRegistry
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.change = removeChangeHandler(h.reg.change, h.id)
}

func removeChangeHandler(s []changeHandler, id uint32) []changeHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = changeHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func (r *handlerRegistry) add(fn func(Event)) CallbackHandle {
	r.nextID++
	id := r.nextID
	r.change = append(r.change, changeHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: r}
}

func (r *handlerRegistry) emit(ev Event) {
	for _, h := range r.change {
		h.fn(ev)
	}
}
