package pixelcanvas

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of an Engine. Zero values are not meaningful;
// start from DefaultConfig or LoadConfig.
type Config struct {
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`

	MinScale     float64 `yaml:"min_scale"`
	MaxScale     float64 `yaml:"max_scale"`
	InitialScale float64 `yaml:"initial_scale"`
	// ZoomRate is the fractional scale change per unit of log2 wheel magnitude.
	ZoomRate float64 `yaml:"zoom_rate"`
	// WheelLineHeight converts one wheel notch into a raw scroll delta.
	WheelLineHeight float64 `yaml:"wheel_line_height"`
	// TitleReferenceWidth is the grid width at which the title is unscaled.
	TitleReferenceWidth float64 `yaml:"title_reference_width"`
	// ClickSlop is how far, in screen pixels, a pointer may travel between
	// down and up and still count as a click.
	ClickSlop float64 `yaml:"click_slop"`

	Highlight HighlightConfig `yaml:"highlight"`

	// BaseAllowance is subtracted from the extra-pixel quota when the base
	// pixel is up, so the primary placement is not staged.
	BaseAllowance int `yaml:"base_allowance"`
	// SerializePlacements rejects a new primary commit while one is in flight.
	SerializePlacements bool `yaml:"serialize_placements"`
	// FeeMultiplier is applied to the suggested fee to get the fee ceiling.
	FeeMultiplier Ratio `yaml:"fee_multiplier"`

	Devnet DevnetConfig `yaml:"devnet"`

	// Palette lists the colors by id, as RRGGBB hex or x/image color names.
	Palette []string `yaml:"palette"`

	Logger *log.Logger `yaml:"-"`
}

// HighlightConfig sizes the selection highlight's inset shadow.
type HighlightConfig struct {
	ShadowBase   float64 `yaml:"shadow_base"`
	ShadowMin    float64 `yaml:"shadow_min"`
	ShadowSpread float64 `yaml:"shadow_spread"`
}

// DevnetConfig configures the HTTP devnet backend.
type DevnetConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Ratio is an exact integer fraction.
type Ratio struct {
	Num int64 `yaml:"num"`
	Den int64 `yaml:"den"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		GridWidth:           256,
		GridHeight:          192,
		MinScale:            0.6,
		MaxScale:            40,
		InitialScale:        1.16,
		ZoomRate:            0.01,
		WheelLineHeight:     100,
		TitleReferenceWidth: 512,
		ClickSlop:           4,
		Highlight: HighlightConfig{
			ShadowBase:   0.12,
			ShadowMin:    0.8,
			ShadowSpread: 0.8,
		},
		BaseAllowance: 1,
		FeeMultiplier: Ratio{Num: 15, Den: 10},
		Devnet: DevnetConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Palette: []string{
			"FAFAFA", "080808", "BA2112", "1ACD1D", "2C3EFF", "FFEB00",
			"FF8D00", "7F007F", "00C5C5", "D5668B", "8B4513", "808080",
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("pixelcanvas: load %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("pixelcanvas: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	switch {
	case c.GridWidth <= 0 || c.GridHeight <= 0:
		return fmt.Errorf("invalid grid size %dx%d", c.GridWidth, c.GridHeight)
	case c.MinScale <= 0 || c.MinScale > c.MaxScale:
		return fmt.Errorf("invalid scale range [%v, %v]", c.MinScale, c.MaxScale)
	case c.InitialScale < c.MinScale || c.InitialScale > c.MaxScale:
		return fmt.Errorf("initial scale %v outside [%v, %v]", c.InitialScale, c.MinScale, c.MaxScale)
	case c.FeeMultiplier.Den == 0:
		return fmt.Errorf("fee multiplier has zero denominator")
	case c.BaseAllowance < 0:
		return fmt.Errorf("negative base allowance %d", c.BaseAllowance)
	}
	if _, err := ParsePalette(c.Palette); err != nil {
		return err
	}
	return nil
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
