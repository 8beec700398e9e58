package devnet

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phanxgames/pixelcanvas"
)

// Handler serves the devnet routes over a Store.
type Handler struct {
	store *Store
}

// NewHandler returns a Handler backed by store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the pixel query and devnet placement routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/get-pixel", h.getPixel)
	r.Get(pixelcanvas.PathPixelInfo, h.getPixelInfo)
	r.Get(pixelcanvas.PathWorldPixelInfo, h.getWorldPixelInfo)
	r.Post(pixelcanvas.PathPlacePixel, h.placePixel)
	r.Post(pixelcanvas.PathPlaceWorldPixel, h.placeWorldPixel)
	r.Post(pixelcanvas.PathPlaceExtraPixels, h.placeExtraPixels)
}

func (h *Handler) getPixel(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query position")
		return
	}
	color, _, err := h.store.Pixel(pixelcanvas.Global, position)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, color)
}

func (h *Handler) getPixelInfo(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query position")
		return
	}
	h.writePlacedBy(w, pixelcanvas.Global, position)
}

func (h *Handler) getWorldPixelInfo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	position, err := strconv.Atoi(q.Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query position")
		return
	}
	worldID, err := strconv.Atoi(q.Get("worldId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query worldId")
		return
	}
	h.writePlacedBy(w, pixelcanvas.World(worldID), position)
}

func (h *Handler) writePlacedBy(w http.ResponseWriter, scope pixelcanvas.Scope, position int) {
	who, err := h.store.PlacedBy(scope, position)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, who)
}

func (h *Handler) placePixel(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, false)
}

func (h *Handler) placeWorldPixel(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, true)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request, world bool) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	position, err := strconv.Atoi(body["position"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid position")
		return
	}
	color, err := strconv.Atoi(body["color"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid color")
		return
	}
	timestamp, err := strconv.ParseInt(body["timestamp"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time")
		return
	}
	scope := pixelcanvas.Global
	if world {
		id, err := strconv.Atoi(body["worldId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid worldId")
			return
		}
		scope = pixelcanvas.World(id)
	}

	if err := h.store.Place(scope, position, color, timestamp); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("devnet: %s pixel %d color %d", scope, position, color)
	writeResult(w, "Pixel placed")
}

func (h *Handler) placeExtraPixels(w http.ResponseWriter, r *http.Request) {
	var body pixelcanvas.ExtraPixelsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	scope := pixelcanvas.Global
	if body.WorldID != nil {
		scope = pixelcanvas.World(*body.WorldID)
	}
	pixels := make([]pixelcanvas.ExtraPlacement, len(body.ExtraPixels))
	positions := make([]int, len(body.ExtraPixels))
	colors := make([]int, len(body.ExtraPixels))
	for i, p := range body.ExtraPixels {
		pixels[i] = pixelcanvas.ExtraPlacement{Position: p.Position, ColorID: p.ColorID}
		positions[i] = p.Position
		colors[i] = p.ColorID
	}

	if err := h.store.PlaceBatch(scope, pixels, body.Timestamp); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("devnet: %s %d extra pixels", scope, len(pixels))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Extra pixels placed successfully",
		"data": map[string]any{
			"pixelsPlaced": len(pixels),
			"positions":    positions,
			"colors":       colors,
			"timestamp":    body.Timestamp,
		},
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownWorld):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPositionRange), errors.Is(err, ErrColorRange), errors.Is(err, ErrNoPixels):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": v})
}

func writeResult(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, pixelcanvas.Envelope{Result: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, pixelcanvas.Envelope{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("devnet: encode response: %v", err)
	}
}
