// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"clawmachine/internal/geometry"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Machine    BoxConfig        `yaml:"machine"`
	Chute      ChuteConfig      `yaml:"chute"`
	Stars      StarsConfig      `yaml:"stars"`
	Claw       ClawConfig       `yaml:"claw"`
	Session    SessionConfig    `yaml:"session"`
	Candy      CandyConfig      `yaml:"candy"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bot        BotConfig        `yaml:"bot"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML friendly vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vec3) Vector() rl.Vector3 {
	return rl.Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// BoxConfig is an axis-aligned box given by its corners.
type BoxConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

func (b BoxConfig) AABB() geometry.AABB {
	return geometry.AABB{Min: b.Min.Vector(), Max: b.Max.Vector()}
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

type SimulationConfig struct {
	DT   float64 `yaml:"dt"`   // Fixed step in seconds
	Seed uint64  `yaml:"seed"` // RNG seed for placement and the bot
}

type ChuteConfig struct {
	Center        Vec3    `yaml:"center"`
	Size          Vec3    `yaml:"size"`
	WallThickness float32 `yaml:"wall_thickness"`
}

// StarsConfig describes the prize population.
type StarsConfig struct {
	Count       int     `yaml:"count"`
	OuterRadius float32 `yaml:"outer_radius"`
	InnerRadius float32 `yaml:"inner_radius"`
	Thickness   float32 `yaml:"thickness"`
	Points      int     `yaml:"points"`
	Mass        float32 `yaml:"mass"`
}

type ClawConfig struct {
	InitialStars int `yaml:"initial_stars"` // Score the claw starts with
}

type SessionConfig struct {
	Coins int `yaml:"coins"` // Drops per game
}

// CandyConfig describes the candy dispenser next to the cabinet.
type CandyConfig struct {
	Count         int       `yaml:"count"`
	Radius        float32   `yaml:"radius"`
	Container     BoxConfig `yaml:"container"`
	DispensePoint Vec3      `yaml:"dispense_point"`
	DoorHinge     Vec3      `yaml:"door_hinge"`
}

type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks"` // Ticks per energy sample
}

// BotConfig drives headless rounds.
type BotConfig struct {
	Rounds           int `yaml:"rounds"`
	MaxTicksPerRound int `yaml:"max_ticks_per_round"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DT32 float32 // Simulation.DT as float32
	DTMs float64 // Simulation.DT in milliseconds
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	m := c.Machine
	if m.Max.X <= m.Min.X || m.Max.Y <= m.Min.Y || m.Max.Z <= m.Min.Z {
		return fmt.Errorf("machine box is empty: min %+v max %+v", m.Min, m.Max)
	}
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("simulation.dt must be positive, got %v", c.Simulation.DT)
	}
	if c.Stars.Count < 0 || c.Candy.Count < 0 {
		return fmt.Errorf("negative population: stars %d, candy %d", c.Stars.Count, c.Candy.Count)
	}
	if c.Stars.Points < 3 {
		return fmt.Errorf("stars.points must be at least 3, got %d", c.Stars.Points)
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.DTMs = c.Simulation.DT * 1000
	if c.Telemetry.WindowTicks <= 0 {
		c.Telemetry.WindowTicks = 60
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
