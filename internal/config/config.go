// Package config loads the runtime configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems/physics"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Feed       FeedConfig       `yaml:"feed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PhysicsConfig struct {
	Gravity       []float64       `yaml:"gravity"`
	FixedTimeStep float64         `yaml:"fixed_time_step"`
	MaxSubSteps   int             `yaml:"max_sub_steps"`
	DefaultMass   float64         `yaml:"default_mass"`
	SyncRotation  bool            `yaml:"sync_rotation"`
	KeepAwake     KeepAwakeConfig `yaml:"keep_awake"`
}

type KeepAwakeConfig struct {
	Enabled   bool      `yaml:"enabled"`
	Threshold float64   `yaml:"threshold"`
	Impulse   []float64 `yaml:"impulse"`
}

// SimulationConfig drives the demo frame loop. Frames == 0 runs until stopped.
type SimulationConfig struct {
	FrameRate int     `yaml:"frame_rate"`
	Frames    uint64  `yaml:"frames"`
	Spheres   int     `yaml:"spheres"`
	Radius    float64 `yaml:"radius"`
	Height    float64 `yaml:"height"`
}

type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
	// Every broadcasts one snapshot per this many frames.
	Every int `yaml:"every"`
}

func Default() Config {
	p := physics.DefaultConfig()
	return Config{
		Log: LogConfig{Level: "info"},
		Physics: PhysicsConfig{
			Gravity:       p.Gravity[:],
			FixedTimeStep: p.FixedTimeStep,
			MaxSubSteps:   p.MaxSubSteps,
			DefaultMass:   p.DefaultMass,
			SyncRotation:  p.SyncRotation,
			KeepAwake: KeepAwakeConfig{
				Enabled:   p.KeepAwake.Enabled,
				Threshold: p.KeepAwake.Threshold,
				Impulse:   p.KeepAwake.Impulse[:],
			},
		},
		Simulation: SimulationConfig{
			FrameRate: 60,
			Spheres:   1,
			Radius:    0.5,
			Height:    10,
		},
		Feed: FeedConfig{
			Addr:  ":8080",
			Path:  "/feed",
			Every: 1,
		},
	}
}

// Load decodes YAML over the defaults, so omitted keys keep their default value.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	pc, err := c.PhysicsConfig()
	if err != nil {
		return err
	}
	if err = pc.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if c.Simulation.FrameRate <= 0 {
		return fmt.Errorf("simulation: frame rate must be positive, got %d", c.Simulation.FrameRate)
	}
	if c.Simulation.Spheres < 0 {
		return fmt.Errorf("simulation: sphere count must not be negative, got %d", c.Simulation.Spheres)
	}
	if !(c.Simulation.Radius > 0) {
		return fmt.Errorf("simulation: radius must be positive, got %v", c.Simulation.Radius)
	}
	if c.Feed.Enabled {
		if c.Feed.Addr == "" {
			return errors.New("feed: addr is required when enabled")
		}
		if c.Feed.Every <= 0 {
			return fmt.Errorf("feed: every must be positive, got %d", c.Feed.Every)
		}
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// PhysicsConfig converts the YAML section into the registry configuration.
func (c Config) PhysicsConfig() (physics.Config, error) {
	gravity, err := vec3("physics.gravity", c.Physics.Gravity)
	if err != nil {
		return physics.Config{}, err
	}
	impulse, err := vec3("physics.keep_awake.impulse", c.Physics.KeepAwake.Impulse)
	if err != nil {
		return physics.Config{}, err
	}
	return physics.Config{
		Gravity:       gravity,
		FixedTimeStep: c.Physics.FixedTimeStep,
		MaxSubSteps:   c.Physics.MaxSubSteps,
		DefaultMass:   c.Physics.DefaultMass,
		SyncRotation:  c.Physics.SyncRotation,
		KeepAwake: physics.KeepAwakeConfig{
			Enabled:   c.Physics.KeepAwake.Enabled,
			Threshold: c.Physics.KeepAwake.Threshold,
			Impulse:   impulse,
		},
	}, nil
}

// FrameDuration is the wall-clock length of one frame.
func (c Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.Simulation.FrameRate)
}

// FrameDelta is the simulated length of one frame in seconds.
func (c Config) FrameDelta() float64 {
	return 1 / float64(c.Simulation.FrameRate)
}

func vec3(key string, v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", key, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
