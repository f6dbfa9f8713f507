package render

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/physx"
)

// Config holds every knob of a render pass. LoadConfig starts from the
// defaults below, so keys absent from the file keep their default values;
// Validate rejects unusable values and does not substitute defaults.
type Config struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	SamplesPerPixel int     `yaml:"samples_per_pixel"`
	TileSize        int     `yaml:"tile_size"`
	Workers         int     `yaml:"workers"` // 0 means one per CPU
	Gamma           float64 `yaml:"gamma"`
	Seed            int64   `yaml:"seed"`

	MaxDepth                  int     `yaml:"max_depth"`
	RussianRouletteStartDepth int     `yaml:"russian_roulette_start_depth"`
	MinContinueProbability    float64 `yaml:"min_continue_probability"`
	MaxContinueProbability    float64 `yaml:"max_continue_probability"`
	Epsilon                   float64 `yaml:"epsilon"`
}

// DefaultConfig returns the configuration used when no file is supplied
func DefaultConfig() Config {
	return Config{
		Width:                     400,
		Height:                    225,
		SamplesPerPixel:           64,
		TileSize:                  32,
		Gamma:                     2.2,
		Seed:                      1,
		MaxDepth:                  5,
		RussianRouletteStartDepth: 3,
		MinContinueProbability:    0.1,
		MaxContinueProbability:    0.95,
		Epsilon:                   1e-3,
	}
}

// LoadConfig reads a YAML configuration file over the defaults
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate rejects configurations the renderer cannot honor
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrap(core.ErrInvalidArgument, "image dimensions must be positive")
	}
	if c.SamplesPerPixel <= 0 || c.TileSize <= 0 {
		return errors.Wrap(core.ErrInvalidArgument, "samples and tile size must be positive")
	}
	if c.Gamma <= 0 {
		return errors.Wrap(core.ErrInvalidArgument, "gamma must be positive")
	}
	if c.MaxDepth < 0 || c.RussianRouletteStartDepth < 0 {
		return errors.Wrap(core.ErrInvalidArgument, "depths must be non-negative")
	}
	if c.MinContinueProbability < 0 || c.MaxContinueProbability > 1 ||
		c.MinContinueProbability > c.MaxContinueProbability {
		return errors.Wrap(core.ErrInvalidArgumentCombination, "continue probabilities must satisfy 0 <= min <= max <= 1")
	}
	if c.Epsilon < 0 {
		return errors.Wrap(core.ErrInvalidArgument, "epsilon must be non-negative")
	}
	return nil
}

// IntegratorConfig extracts the integrator's portion of the configuration
func (c *Config) IntegratorConfig() physx.IntegratorConfig {
	return physx.IntegratorConfig{
		MaxDepth:                  c.MaxDepth,
		RussianRouletteStartDepth: c.RussianRouletteStartDepth,
		MinContinueProbability:    c.MinContinueProbability,
		MaxContinueProbability:    c.MaxContinueProbability,
		Epsilon:                   c.Epsilon,
	}
}
