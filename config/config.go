// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"seep/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Render    RenderConfig    `yaml:"render"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and generation parameters.
type WorldConfig struct {
	Width     int   `yaml:"width"`      // World width in cells
	Height    int   `yaml:"height"`     // World height in cells
	ChunkSize int   `yaml:"chunk_size"` // Cells per chunk edge
	Seed      int64 `yaml:"seed"`

	// Terrain generation
	SurfaceLevel  float64 `yaml:"surface_level"`  // Mean surface height as fraction of world height
	SurfaceRelief float64 `yaml:"surface_relief"` // Surface amplitude as fraction of world height
	NoiseScale    float64 `yaml:"noise_scale"`    // Base noise frequency
	Octaves       int     `yaml:"octaves"`        // FBM octaves
	Lacunarity    float64 `yaml:"lacunarity"`     // Frequency multiplier per octave
	Gain          float64 `yaml:"gain"`           // Amplitude multiplier per octave
	DirtDepth     int     `yaml:"dirt_depth"`     // Dirt band thickness below the surface
	CaveScale     float64 `yaml:"cave_scale"`     // Cave noise frequency
	CaveThreshold float64 `yaml:"cave_threshold"` // Noise above this carves a cave
	SeaLevel      float64 `yaml:"sea_level"`      // Pools fill up to this fraction of world height
	PoolChance    float64 `yaml:"pool_chance"`    // Chance per candidate basin to seed a pool
}

// FluidConfig holds the fluid simulation tunables.
type FluidConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Advanced       bool    `yaml:"advanced"`        // Multi-density colored fluid
	TopDown        bool    `yaml:"top_down"`        // Top-down flow (no gravity) instead of down-flow
	MaxWeight      float64 `yaml:"max_weight"`      // Nominal cell capacity
	MinWeight      float64 `yaml:"min_weight"`      // Below this a cell is treated as empty
	StableAmount   float64 `yaml:"stable_amount"`   // Net change below this settles a cell
	PressureWeight float64 `yaml:"pressure_weight"` // Extra capacity per unit of column above
	MixFactor      float64 `yaml:"mix_factor"`      // Color blend factor for same-density mixing
	SurfaceMixing  bool    `yaml:"surface_mixing"`  // Let the bottom neighbor accept foreign density under max_weight
	UpdateInterval float64 `yaml:"update_interval"` // Seconds between simulation ticks
}

// Params converts the config values to the simulation's parameter set.
func (f FluidConfig) Params() fluid.Params {
	return fluid.Params{
		Enabled:        f.Enabled,
		Advanced:       f.Advanced,
		TopDown:        f.TopDown,
		MaxWeight:      float32(f.MaxWeight),
		MinWeight:      float32(f.MinWeight),
		StableAmount:   float32(f.StableAmount),
		PressureWeight: float32(f.PressureWeight),
		MixFactor:      float32(f.MixFactor),
		SurfaceMixing:  f.SurfaceMixing,
		UpdateInterval: f.UpdateInterval,
	}
}

// RenderConfig holds rendering parameters.
type RenderConfig struct {
	CellSize     float64 `yaml:"cell_size"`     // Screen pixels per cell at zoom 1
	LoadedMargin int     `yaml:"loaded_margin"` // Extra chunks kept loaded beyond the visible bounds
}

// SandboxConfig holds interactive sandbox parameters.
type SandboxConfig struct {
	PaintRadius   int     `yaml:"paint_radius"`   // Brush radius in cells
	PourAmount    float64 `yaml:"pour_amount"`    // Weight added per painted cell
	EmitterRate   float64 `yaml:"emitter_rate"`   // Weight per second from a placed emitter
	DrainRate     float64 `yaml:"drain_rate"`     // Weight per second removed by a drain
	StartEmitters int     `yaml:"start_emitters"` // Emitters spawned at world load
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// ServerConfig holds the state server parameters.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`            // Listen address; empty disables the server
	StreamInterval float64 `yaml:"stream_interval"` // Seconds between websocket broadcasts
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellSize32  float32 // Render.CellSize as float32
	WorldPixelW float32 // World width in screen pixels at zoom 1
	WorldPixelH float32 // World height in screen pixels at zoom 1
	ChunksX     int     // Chunk columns (rounded up)
	ChunksY     int     // Chunk rows (rounded up)
	WindowTicks int     // Simulation ticks per telemetry window
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

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.World.ChunkSize <= 0 {
		c.World.ChunkSize = 32
	}

	c.Derived.CellSize32 = float32(c.Render.CellSize)
	c.Derived.WorldPixelW = float32(c.World.Width) * c.Derived.CellSize32
	c.Derived.WorldPixelH = float32(c.World.Height) * c.Derived.CellSize32
	c.Derived.ChunksX = (c.World.Width + c.World.ChunkSize - 1) / c.World.ChunkSize
	c.Derived.ChunksY = (c.World.Height + c.World.ChunkSize - 1) / c.World.ChunkSize

	// Telemetry windows are measured in simulation ticks
	if c.Fluid.UpdateInterval > 0 {
		c.Derived.WindowTicks = int(c.Telemetry.StatsWindow / c.Fluid.UpdateInterval)
	}
	if c.Derived.WindowTicks < 1 {
		c.Derived.WindowTicks = 1
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
