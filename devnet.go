package pixelcanvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// ZeroAddress is what the pixel-info endpoint reports for a pixel nobody has
// placed.
const ZeroAddress = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Devnet endpoint paths, relative to DevnetConfig.BaseURL.
const (
	PathPixelInfo        = "/get-pixel-info"
	PathWorldPixelInfo   = "/get-worlds-pixel-info"
	PathPlacePixel       = "/place-pixel-devnet"
	PathPlaceWorldPixel  = "/place-world-pixel-devnet"
	PathPlaceExtraPixels = "/place-extra-pixels-devnet"
)

// Envelope is the JSON wrapper every devnet response uses. Exactly one of
// the fields is set.
type Envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Result string          `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ExtraPixelsBody is the request body of the extra pixels endpoint.
type ExtraPixelsBody struct {
	ExtraPixels []ExtraPixelJSON `json:"extraPixels"`
	Timestamp   int64            `json:"timestamp"`
	// WorldID is set for sub-world scopes only.
	WorldID *int `json:"worldId,omitempty"`
}

// ExtraPixelJSON is one pixel of ExtraPixelsBody.
type ExtraPixelJSON struct {
	Position int `json:"position"`
	ColorID  int `json:"colorId"`
}

// DevnetError is a non-2xx devnet response.
type DevnetError struct {
	Status  int
	Path    string
	Message string
}

func (e *DevnetError) Error() string {
	return fmt.Sprintf("devnet %s: %d %s", e.Path, e.Status, e.Message)
}

// DevnetClient talks to the HTTP devnet backend. It is both a Submitter and
// a PixelInfoLookup. Concurrent lookups of the same pixel share one request.
type DevnetClient struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
}

// NewDevnetClient creates a client for cfg.Devnet.
func NewDevnetClient(cfg Config) *DevnetClient {
	timeout := cfg.Devnet.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DevnetClient{
		baseURL: strings.TrimRight(cfg.Devnet.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// PlacedBy returns the username or 0x-prefixed address that last placed the
// pixel at position, or "" if nobody has.
func (c *DevnetClient) PlacedBy(ctx context.Context, scope Scope, position int) (string, error) {
	q := url.Values{}
	q.Set("position", strconv.Itoa(position))
	path := PathPixelInfo
	if id, ok := scope.WorldID(); ok {
		path = PathWorldPixelInfo
		q.Set("worldId", strconv.Itoa(id))
	}
	u := c.baseURL + path + "?" + q.Encode()

	v, err, _ := c.group.Do(u, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", err
		}
		env, err := c.do(req, path)
		if err != nil {
			return "", err
		}
		var who string
		if err := json.Unmarshal(env.Data, &who); err != nil {
			return "", fmt.Errorf("devnet %s: decode data: %w", path, err)
		}
		return who, nil
	})
	if err != nil {
		return "", err
	}
	who := v.(string)
	if who == ZeroAddress {
		return "", nil
	}
	return who, nil
}

// PlacePixel posts a primary placement. Fields are sent as decimal strings.
func (c *DevnetClient) PlacePixel(ctx context.Context, scope Scope, req PlacementRequest) error {
	body := map[string]string{
		"position":  strconv.Itoa(req.Position),
		"color":     strconv.Itoa(req.ColorID),
		"timestamp": strconv.FormatInt(req.Timestamp, 10),
	}
	path := PathPlacePixel
	if id, ok := scope.WorldID(); ok {
		path = PathPlaceWorldPixel
		body["worldId"] = strconv.Itoa(id)
	}
	return c.post(ctx, path, body)
}

// PlaceExtraPixels posts a batch of extra pixels.
func (c *DevnetClient) PlaceExtraPixels(ctx context.Context, scope Scope, pixels []ExtraPlacement, timestamp int64) error {
	body := ExtraPixelsBody{
		ExtraPixels: make([]ExtraPixelJSON, len(pixels)),
		Timestamp:   timestamp,
	}
	for i, p := range pixels {
		body.ExtraPixels[i] = ExtraPixelJSON{Position: p.Position, ColorID: p.ColorID}
	}
	if id, ok := scope.WorldID(); ok {
		body.WorldID = &id
	}
	return c.post(ctx, PathPlaceExtraPixels, body)
}

func (c *DevnetClient) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("devnet %s: encode: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, path)
	return err
}

func (c *DevnetClient) do(req *http.Request, path string) (Envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("devnet %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Envelope{}, fmt.Errorf("devnet %s: read body: %w", path, err)
	}
	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return env, &DevnetError{Status: resp.StatusCode, Path: path, Message: msg}
	}
	if decodeErr != nil {
		return env, fmt.Errorf("devnet %s: decode: %w", path, decodeErr)
	}
	return env, nil
}
