package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/physync/internal/core/systems/physics/dynamics"
)

const (
	DefaultMass             = 1.0
	DefaultSettleThreshold  = 0.01
	DefaultFixedTimeStep    = 1.0 / 60.0
	DefaultMaxSubSteps      = 1
	defaultKeepAwakeImpulse = 10.0
)

// Config describes the simulation world and the defaults applied to new rigidbodies.
type Config struct {
	Gravity       mgl64.Vec3
	FixedTimeStep float64
	// MaxSubSteps == 0 steps the world by the frame delta directly.
	MaxSubSteps int
	DefaultMass float64
	// SyncRotation is the default for copying physics rotation back to the Transform.
	SyncRotation bool
	KeepAwake    KeepAwakeConfig
}

// KeepAwakeConfig attaches a KeepAwake policy to every new rigidbody when enabled.
type KeepAwakeConfig struct {
	Enabled   bool
	Threshold float64
	Impulse   mgl64.Vec3
}

func DefaultConfig() Config {
	return Config{
		Gravity:       mgl64.Vec3{0, -9.81, 0},
		FixedTimeStep: DefaultFixedTimeStep,
		MaxSubSteps:   DefaultMaxSubSteps,
		DefaultMass:   DefaultMass,
		KeepAwake: KeepAwakeConfig{
			Threshold: DefaultSettleThreshold,
			Impulse:   mgl64.Vec3{0, defaultKeepAwakeImpulse, 0},
		},
	}
}

func (c Config) Validate() error {
	if c.MaxSubSteps < 0 {
		return fmt.Errorf("max sub steps must not be negative, got %d", c.MaxSubSteps)
	}
	if c.MaxSubSteps > 0 && !(c.FixedTimeStep > 0) {
		return fmt.Errorf("fixed time step must be positive, got %v", c.FixedTimeStep)
	}
	if err := validateMass(c.DefaultMass); err != nil {
		return err
	}
	if c.KeepAwake.Enabled && c.KeepAwake.Threshold < 0 {
		return fmt.Errorf("keep awake threshold must not be negative, got %v", c.KeepAwake.Threshold)
	}
	return nil
}

func (c Config) worldConfig() dynamics.WorldConfig {
	return dynamics.WorldConfig{
		Gravity:       c.Gravity,
		FixedTimeStep: c.FixedTimeStep,
		MaxSubSteps:   c.MaxSubSteps,
	}
}

func validateMass(mass float64) error {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}
	return nil
}
