// Package config loads router configuration from TOML or YAML files.
//
// A configuration file overrides the routing parameters a design carries
// (layer factors and directions), selects the Steiner solver and the bounding
// box padding, and configures the result cache and the HTTP service:
//
//	solver = "kmb"
//
//	[padding]
//	row_col = 5
//	layer = 1
//
//	[layers]
//	factors = [1, 1, 2]
//	directions = ["H", "V", "H"]
//
//	[cache]
//	dir = "~/.cache/cellroute"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// The same keys are accepted in YAML. Missing values fall back to the
// defaults applied by [Config.SetDefaults].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/router"
	"github.com/matzehuels/cellroute/pkg/steiner"
)

// Default values.
const (
	DefaultServerAddr = ":8080"
	DefaultCacheTTL   = 24 * time.Hour
	DefaultRegion     = "pins"
)

// Config is the complete router configuration.
type Config struct {
	Solver  string        `toml:"solver" yaml:"solver"`
	Region  string        `toml:"region" yaml:"region"`
	Padding PaddingConfig `toml:"padding" yaml:"padding"`
	Layers  LayersConfig  `toml:"layers" yaml:"layers"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// PaddingConfig sets the bounding box padding. Nil fields use the defaults.
type PaddingConfig struct {
	RowCol *int `toml:"row_col" yaml:"row_col"`
	Layer  *int `toml:"layer" yaml:"layer"`
}

// LayersConfig overrides per-layer routing parameters of the design.
// Empty slices keep the design's values.
type LayersConfig struct {
	Factors    []int64  `toml:"factors" yaml:"factors"`
	Directions []string `toml:"directions" yaml:"directions"`
}

// CacheConfig configures the result cache. An empty Dir and RedisAddr
// disable caching.
type CacheConfig struct {
	Dir       string   `toml:"dir" yaml:"dir"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr"`
	TTL       Duration `toml:"ttl" yaml:"ttl"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Duration is a time.Duration that decodes from strings like "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML).
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// Default returns a configuration with all defaults applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Solver == "" {
		c.Solver = steiner.DefaultSolver
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Padding.RowCol == nil {
		v := router.DefaultRowColPadding
		c.Padding.RowCol = &v
	}
	if c.Padding.Layer == nil {
		v := router.DefaultLayerPadding
		c.Padding.Layer = &v
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// Validate checks the configuration. It expects defaults to be set.
func (c *Config) Validate() error {
	if _, err := steiner.New(c.Solver); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "solver")
	}
	if c.Region != "pins" && c.Region != "grid" {
		return errs.New(errs.ErrCodeInvalidConfig, "region must be pins or grid, got %q", c.Region)
	}
	if *c.Padding.RowCol < 0 || *c.Padding.Layer < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "padding cannot be negative")
	}
	for i, f := range c.Layers.Factors {
		if f < 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "layer %d: negative factor %d", i, f)
		}
	}
	for i, s := range c.Layers.Directions {
		if _, err := design.ParseDirection(s); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "layer %d", i)
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache ttl cannot be negative")
	}
	return nil
}

// PaddingValue returns the configured padding. Defaults must be set.
func (c *Config) PaddingValue() router.Padding {
	return router.Padding{RowCol: *c.Padding.RowCol, Layer: *c.Padding.Layer}
}

// LayerParams returns the layer factors and directions for d, with the
// configured overrides applied.
func (c *Config) LayerParams(d *design.Design) ([]int64, []design.Direction, error) {
	factors := d.LayerFactors()
	dirs := d.LayerDirections()
	if n := len(c.Layers.Factors); n > 0 {
		if n != len(factors) {
			return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "config has %d layer factors, design has %d layers", n, len(factors))
		}
		copy(factors, c.Layers.Factors)
	}
	if n := len(c.Layers.Directions); n > 0 {
		if n != len(dirs) {
			return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "config has %d layer directions, design has %d layers", n, len(dirs))
		}
		for i, s := range c.Layers.Directions {
			dir, err := design.ParseDirection(s)
			if err != nil {
				return nil, nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "layer %d", i)
			}
			dirs[i] = dir
		}
	}
	return factors, dirs, nil
}

// =============================================================================
// Loading
// =============================================================================

// Load reads a configuration file, applies defaults and validates it.
// The format is chosen by extension: .toml, .yaml or .yml.
// An empty path returns [Default].
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes configuration data in the given format ("toml", "yaml" or
// "yml"), applies defaults and validates it.
func Parse(data []byte, format string) (Config, error) {
	var c Config
	switch strings.ToLower(format) {
	case "toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse toml")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (must be toml or yaml)", format)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
