package raindrop

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the droplet generation options for a single run.
// A zero threshold marks every pixel under a droplet's bounding box as
// covered, since the alpha map is never negative.
type Config struct {
	MinRadius      int     `toml:"min_radius"`
	MaxRadius      int     `toml:"max_radius"`
	MinDrops       int     `toml:"min_drops"`
	MaxDrops       int     `toml:"max_drops"`
	EdgeDarkRatio  float64 `toml:"edge_dark_ratio"`
	ReturnLabel    bool    `toml:"return_label"`
	LabelThreshold int     `toml:"label_threshold"`
	ShapeVariety   bool    `toml:"shape_variety"`
	AllowedShapes  []Shape `toml:"allowed_shapes"`
}

// DefaultConfig returns the configuration used when no other is provided.
func DefaultConfig() *Config {
	return &Config{
		MinRadius:      30,
		MaxRadius:      50,
		MinDrops:       30,
		MaxDrops:       30,
		EdgeDarkRatio:  0.3,
		ReturnLabel:    false,
		LabelThreshold: 128,
		ShapeVariety:   true,
		AllowedShapes:  AllShapes(),
	}
}

// LoadConfig reads a TOML configuration file, applying the default values
// for any option the file does not set.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("could not decode the config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first configuration error encountered, if any.
// It is invoked by the generator before any drawing occurs.
func (cfg *Config) Validate() error {
	if cfg.MinRadius <= 0 || cfg.MaxRadius <= 0 {
		return fmt.Errorf("droplet radius bounds must be positive, got [%d, %d]", cfg.MinRadius, cfg.MaxRadius)
	}
	if cfg.MinRadius > cfg.MaxRadius {
		return fmt.Errorf("min radius %d exceeds max radius %d", cfg.MinRadius, cfg.MaxRadius)
	}
	if cfg.MinDrops < 0 {
		return fmt.Errorf("droplet count bounds must not be negative, got [%d, %d]", cfg.MinDrops, cfg.MaxDrops)
	}
	if cfg.MinDrops > cfg.MaxDrops {
		return fmt.Errorf("min drops %d exceeds max drops %d", cfg.MinDrops, cfg.MaxDrops)
	}
	if cfg.EdgeDarkRatio < 0 || cfg.EdgeDarkRatio > 1 {
		return fmt.Errorf("edge dark ratio %v outside [0, 1]", cfg.EdgeDarkRatio)
	}
	if cfg.LabelThreshold < 0 || cfg.LabelThreshold > 255 {
		return fmt.Errorf("label threshold %d outside [0, 255]", cfg.LabelThreshold)
	}
	if cfg.ShapeVariety {
		if len(cfg.AllowedShapes) == 0 {
			return fmt.Errorf("shape variety requires at least one allowed shape")
		}
		for _, s := range cfg.AllowedShapes {
			if !s.Valid() {
				return fmt.Errorf("unsupported droplet shape: %q", s)
			}
		}
	}
	return nil
}
