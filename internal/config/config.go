// Package config handles generator configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/assetgen/internal/pack"
	"github.com/Faultbox/assetgen/pkg/asset"
	"github.com/Faultbox/assetgen/pkg/manifest"
	"github.com/Faultbox/assetgen/pkg/texture"
)

// TypePack selects generation of the whole asset pack.
const TypePack = "pack"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all generator settings.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Generation GenerationConfig `yaml:"generation"`
	Pack       PackConfig       `yaml:"pack"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// OutputConfig holds where assets are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Created if absent
}

// GenerationConfig holds the parameters of a generation run.
type GenerationConfig struct {
	Type        string  `yaml:"type"` // Asset type or "pack"
	Name        string  `yaml:"name"` // File stem for single assets
	Size        float32 `yaml:"size"`
	Seed        int64   `yaml:"seed"`
	Scale       float32 `yaml:"scale"`        // 0 = unscaled
	Workers     int     `yaml:"workers"`      // 0 = one per CPU
	TextureSize int     `yaml:"texture_size"` // 0 = per-type default
}

// PackConfig describes the asset pack.
type PackConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Assets      []pack.Spec `yaml:"assets"` // Empty = built-in pack
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // Log file encoding: console or json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: "assets",
		},
		Generation: GenerationConfig{
			Type: TypePack,
			Name: "asset",
			Size: 1.0,
		},
		Pack: PackConfig{
			Name:        manifest.DefaultName,
			Description: manifest.DefaultDescription,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the settings that are not validated by the generator itself.
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: empty output directory", ErrInvalidConfig)
	}
	if c.Generation.Type != TypePack {
		if _, err := asset.ParseType(c.Generation.Type); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if !(c.Generation.Size > 0) {
		return fmt.Errorf("%w: size must be positive, got %v", ErrInvalidConfig, c.Generation.Size)
	}
	if !(c.Generation.Scale >= 0) {
		return fmt.Errorf("%w: negative scale %v", ErrInvalidConfig, c.Generation.Scale)
	}
	if c.Generation.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Generation.Workers)
	}
	if ts := c.Generation.TextureSize; ts != 0 && (ts < pack.MinTextureSize || ts > texture.MaxSize) {
		return fmt.Errorf("%w: texture size %d outside [%d, %d]", ErrInvalidConfig, ts, pack.MinTextureSize, texture.MaxSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// Spec returns the single-asset spec selected by the generation settings.
func (c *Config) Spec() pack.Spec {
	return pack.Spec{
		Name:  c.Generation.Name,
		Type:  asset.Type(c.Generation.Type),
		Size:  c.Generation.Size,
		Seed:  c.Generation.Seed,
		Scale: c.Generation.Scale,
	}
}

// PackSpecs returns the configured pack, or the built-in one when none is set.
func (c *Config) PackSpecs() []pack.Spec {
	if len(c.Pack.Assets) > 0 {
		return append([]pack.Spec(nil), c.Pack.Assets...)
	}
	return pack.DefaultSpecs()
}
