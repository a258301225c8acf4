package injector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/physync/internal/core/models"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems/physics"
	"github.com/zeusync/physync/internal/server"
)

// SpawnDemo builds the demo scene: a static ground plane and a row of spheres
// dropped from the configured height.
func (rt *Runtime) SpawnDemo() error {
	ground, err := rt.Scene.Spawn("ground")
	if err != nil {
		return err
	}
	if _, err = models.AddComponent(ground, physics.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0)); err != nil {
		return fmt.Errorf("ground collider: %w", err)
	}
	if _, err = models.AddComponent(ground, physics.NewRigidbody(rt.Physics, physics.WithMass(0))); err != nil {
		return fmt.Errorf("ground rigidbody: %w", err)
	}

	sim := rt.Config.Simulation
	for i := range sim.Spheres {
		name := fmt.Sprintf("sphere-%d", i)
		g, err := rt.Scene.Spawn(name)
		if err != nil {
			return err
		}
		g.Transform().SetPositionXYZ(float64(i)*sim.Radius*3, sim.Height+float64(i), 0)
		if _, err = models.AddComponent(g, physics.NewSphereCollider(sim.Radius)); err != nil {
			return fmt.Errorf("%s collider: %w", name, err)
		}
		if _, err = models.AddComponent(g, physics.NewRigidbody(rt.Physics)); err != nil {
			return fmt.Errorf("%s rigidbody: %w", name, err)
		}
	}
	rt.Log.Info("demo scene spawned", log.Int("spheres", sim.Spheres))
	return nil
}

// Run drives frames at the configured rate until ctx is done or the frame
// limit is reached, streaming snapshots to the feed when it is enabled.
func (rt *Runtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(rt.Config.FrameDuration())
	defer ticker.Stop()

	delta := rt.Config.FrameDelta()
	limit := rt.Config.Simulation.Frames
	for limit == 0 || rt.Scene.FrameCount() < limit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := rt.Scene.Frame(delta); err != nil {
			return fmt.Errorf("frame %d: %w", rt.Scene.FrameCount(), err)
		}
		rt.broadcast()
	}
	rt.Log.Info("frame limit reached", log.Uint64("frames", limit))
	return nil
}

func (rt *Runtime) broadcast() {
	feed := rt.Config.Feed
	if !feed.Enabled || rt.Scene.FrameCount()%uint64(feed.Every) != 0 {
		return
	}
	if err := rt.Feed.Broadcast(rt.Scene.Snapshot()); err != nil && !errors.Is(err, server.ErrServerClosed) {
		rt.Log.Warn("feed broadcast failed", log.Error(err))
	}
}

// Close tears the scene down, which releases every body and then the world.
func (rt *Runtime) Close() error {
	err := rt.Scene.Close()
	rt.Feed.Close()
	_ = rt.Log.Sync()
	return err
}
