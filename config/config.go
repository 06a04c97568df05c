// Package config provides configuration loading and access for the flow viewer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/lakeflow/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all viewer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Particles ParticlesConfig `yaml:"particles"`
	Render    RenderConfig    `yaml:"render"`
	Synthetic SyntheticConfig `yaml:"synthetic"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Margin    float64 `yaml:"margin"` // Pixels kept clear around the lake
}

// FieldConfig controls how the velocity grid is read and interpolated.
type FieldConfig struct {
	Interpolation string  `yaml:"interpolation"` // bilinear | bicubic
	FlipVertical  bool    `yaml:"flip_vertical"` // Flip rows on load so row 0 is the top
	FillValue     float64 `yaml:"fill_value"`    // NetCDF missing marker when no _FillValue attribute
	UVar          string  `yaml:"u_var"`         // NetCDF variable holding the x-component
	VVar          string  `yaml:"v_var"`         // NetCDF variable holding the y-component
	MaxCells      int     `yaml:"max_cells"`     // Reject grid files larger than this
}

// ParticlesConfig holds particle population tunables.
type ParticlesConfig struct {
	Count             int     `yaml:"count"`
	MaxAge            int     `yaml:"max_age"`            // Ticks before forced respawn
	MaxHistory        int     `yaml:"max_history"`        // Trail length in points
	SpeedScale        float64 `yaml:"speed_scale"`        // Velocity to grid units per tick
	ResetAgeMargin    int     `yaml:"reset_age_margin"`   // Reset age drawn from [0, max_age - margin)
	Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int     `yaml:"parallel_threshold"` // Minimum population advanced in parallel
}

// RenderConfig holds colors and stroke settings.
type RenderConfig struct {
	Background string  `yaml:"background"`
	MaskColor  string  `yaml:"mask_color"`
	TrailColor string  `yaml:"trail_color"`
	TrailAlpha float64 `yaml:"trail_alpha"`
	LineWidth  float64 `yaml:"line_width"`
	DrawMask   bool    `yaml:"draw_mask"`
}

// SyntheticConfig shapes the generated lake used when no grid file is given.
type SyntheticConfig struct {
	Rows           int     `yaml:"rows"`
	Cols           int     `yaml:"cols"`
	Seed           int64   `yaml:"seed"`
	Gyres          int     `yaml:"gyres"`           // Circulation cells across the basin
	Strength       float64 `yaml:"strength"`        // Peak current in grid units per tick
	ShorelineNoise float64 `yaml:"shoreline_noise"` // Shoreline roughness [0,1]
	EddyNoise      float64 `yaml:"eddy_noise"`      // Turbulent perturbation relative to strength
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow   int `yaml:"stats_window"`   // Ticks per stats window
	PerfWindow    int `yaml:"perf_window"`    // Ticks averaged by the perf collector
	SnapshotEvery int `yaml:"snapshot_every"` // Ticks between PNG frames in headless mode
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Interpolation systems.Interpolation
	Workers       int
	ScreenW32     float32
	ScreenH32     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	mode, err := systems.ParseInterpolation(c.Field.Interpolation)
	if err != nil {
		return fmt.Errorf("field.interpolation: %w", err)
	}
	c.Derived.Interpolation = mode

	c.Derived.Workers = c.Particles.Workers
	if c.Derived.Workers <= 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	return nil
}

// Validate checks values the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Particles.Count < 1 {
		errs = append(errs, fmt.Errorf("particles.count must be >= 1, got %d", c.Particles.Count))
	}
	if err := c.ParticleConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		errs = append(errs, fmt.Errorf("screen must be at least 1x1, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Synthetic.Rows < 2 || c.Synthetic.Cols < 2 {
		errs = append(errs, fmt.Errorf("synthetic grid must be at least 2x2, got %dx%d", c.Synthetic.Rows, c.Synthetic.Cols))
	}
	if c.Field.MaxCells < 1 {
		errs = append(errs, fmt.Errorf("field.max_cells must be >= 1, got %d", c.Field.MaxCells))
	}
	if c.Telemetry.StatsWindow < 1 {
		errs = append(errs, fmt.Errorf("telemetry.stats_window must be >= 1, got %d", c.Telemetry.StatsWindow))
	}
	return errors.Join(errs...)
}

// ParticleConfig returns the per-particle tunables.
func (c *Config) ParticleConfig() systems.ParticleConfig {
	return systems.ParticleConfig{
		MaxAge:         c.Particles.MaxAge,
		MaxHistory:     c.Particles.MaxHistory,
		SpeedScale:     c.Particles.SpeedScale,
		ResetAgeMargin: c.Particles.ResetAgeMargin,
	}
}

// FlowConfig returns the population configuration for the given seed.
func (c *Config) FlowConfig(seed int64) systems.FlowConfig {
	return systems.FlowConfig{
		Particle:          c.ParticleConfig(),
		Count:             c.Particles.Count,
		Workers:           c.Derived.Workers,
		ParallelThreshold: c.Particles.ParallelThreshold,
		Seed:              seed,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
