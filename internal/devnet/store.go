// Package devnet is an in-memory stand-in for the canvas backend's devnet
// routes: pixel placement, batched extra pixels and placed-by lookups.
package devnet

import (
	"errors"
	"strings"
	"sync"

	"github.com/phanxgames/pixelcanvas"
)

var (
	ErrPositionRange = errors.New("position out of range")
	ErrColorRange    = errors.New("color out of range")
	ErrUnknownWorld  = errors.New("world not found")
	ErrNoPixels      = errors.New("no pixels provided")
)

type placement struct {
	color   int
	address string
	time    int64
}

type canvas struct {
	width, height int
	pixels        map[int]placement
}

// Store holds the global canvas, any sub-worlds and the username registry.
// Every placement is attributed to the store's single devnet account.
type Store struct {
	mu       sync.RWMutex
	colors   int
	account  string
	canvases map[pixelcanvas.Scope]*canvas
	users    map[string]string
}

// NewStore creates a store with a width x height global canvas accepting
// color ids in [0, colors). account is the hex address placements are
// attributed to, without the 0x prefix.
func NewStore(width, height, colors int, account string) *Store {
	s := &Store{
		colors:   colors,
		account:  strings.TrimPrefix(account, "0x"),
		canvases: make(map[pixelcanvas.Scope]*canvas),
		users:    make(map[string]string),
	}
	s.canvases[pixelcanvas.Global] = &canvas{width: width, height: height, pixels: make(map[int]placement)}
	return s
}

// CreateWorld adds a sub-world canvas. Creating an existing world resets it.
func (s *Store) CreateWorld(id, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[pixelcanvas.World(id)] = &canvas{width: width, height: height, pixels: make(map[int]placement)}
}

// SetUsername registers a display name for an address.
func (s *Store) SetUsername(address, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimPrefix(address, "0x")] = name
}

// Account returns the devnet account address, 0x-prefixed.
func (s *Store) Account() string {
	return "0x" + s.account
}

func (s *Store) canvas(scope pixelcanvas.Scope) (*canvas, error) {
	c, ok := s.canvases[scope]
	if !ok {
		return nil, ErrUnknownWorld
	}
	return c, nil
}

func (s *Store) check(c *canvas, position, color int) error {
	if position < 0 || position >= c.width*c.height {
		return ErrPositionRange
	}
	if color < 0 || color >= s.colors {
		return ErrColorRange
	}
	return nil
}

// Place records a single pixel.
func (s *Store) Place(scope pixelcanvas.Scope, position, color int, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.canvas(scope)
	if err != nil {
		return err
	}
	if err := s.check(c, position, color); err != nil {
		return err
	}
	c.pixels[position] = placement{color: color, address: s.account, time: timestamp}
	return nil
}

// PlaceBatch records every pixel or none of them.
func (s *Store) PlaceBatch(scope pixelcanvas.Scope, pixels []pixelcanvas.ExtraPlacement, timestamp int64) error {
	if len(pixels) == 0 {
		return ErrNoPixels
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.canvas(scope)
	if err != nil {
		return err
	}
	for _, p := range pixels {
		if err := s.check(c, p.Position, p.ColorID); err != nil {
			return err
		}
	}
	for _, p := range pixels {
		c.pixels[p.Position] = placement{color: p.ColorID, address: s.account, time: timestamp}
	}
	return nil
}

// Pixel returns the color at position, and false if it was never placed.
func (s *Store) Pixel(scope pixelcanvas.Scope, position int) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.canvas(scope)
	if err != nil {
		return 0, false, err
	}
	if position < 0 || position >= c.width*c.height {
		return 0, false, ErrPositionRange
	}
	p, ok := c.pixels[position]
	return p.color, ok, nil
}

// PlacedBy returns the username of the last placer at position, or its
// 0x-prefixed address when it has none, or the zero address when the pixel
// was never placed.
func (s *Store) PlacedBy(scope pixelcanvas.Scope, position int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.canvas(scope)
	if err != nil {
		return "", err
	}
	p, ok := c.pixels[position]
	if !ok {
		return pixelcanvas.ZeroAddress, nil
	}
	if name := s.users[p.address]; name != "" {
		return name, nil
	}
	return "0x" + p.address, nil
}
