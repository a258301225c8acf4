package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems/physics"
)

func TestDefaultMatchesPhysicsDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	pc, err := cfg.PhysicsConfig()
	require.NoError(t, err)
	assert.Equal(t, physics.DefaultConfig(), pc)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
	assert.Equal(t, time.Second/60, cfg.FrameDuration())
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
log:
  level: debug
physics:
  gravity: [0, -10, 0]
  max_sub_steps: 0
  sync_rotation: true
  keep_awake:
    enabled: true
    impulse: [0, 4, 0]
feed:
  enabled: true
  every: 3
`))
	require.NoError(t, err)

	pc, err := cfg.PhysicsConfig()
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0, -10, 0}, pc.Gravity)
	assert.Zero(t, pc.MaxSubSteps)
	assert.True(t, pc.SyncRotation)
	assert.True(t, pc.KeepAwake.Enabled)
	assert.Equal(t, physics.DefaultSettleThreshold, pc.KeepAwake.Threshold)
	assert.Equal(t, mgl64.Vec3{0, 4, 0}, pc.KeepAwake.Impulse)
	assert.Equal(t, physics.DefaultMass, pc.DefaultMass)

	assert.Equal(t, log.LevelDebug, cfg.LogLevel())
	assert.Equal(t, ":8080", cfg.Feed.Addr)
	assert.Equal(t, 3, cfg.Feed.Every)
}

func TestLoadEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "physics:\n  gravty: [0, 1, 0]\n",
		"short vector":  "physics:\n  gravity: [0, 1]\n",
		"bad level":     "log:\n  level: loud\n",
		"negative mass": "physics:\n  default_mass: -1\n",
		"zero step":     "physics:\n  fixed_time_step: 0\n",
		"frame rate":    "simulation:\n  frame_rate: 0\n",
		"feed every":    "feed:\n  enabled: true\n  every: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "configs", "simd.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Feed.Enabled)
	assert.Equal(t, 3, cfg.Simulation.Spheres)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: ["), 0o600))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "broken.yaml")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
