package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/physync/internal/config"
	"github.com/zeusync/physync/internal/core/events/bus"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/scene"
	"github.com/zeusync/physync/internal/core/systems/physics"
	"github.com/zeusync/physync/internal/server"
)

// Runtime is the assembled simulation: one scene stepping one physics registry.
type Runtime struct {
	Config  config.Config
	Log     *log.Logger
	Bus     bus.EventBus
	Physics *physics.Physics
	Scene   *scene.Scene
	Feed    *server.Feed
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvidePhysics,
	ProvideScene,
	ProvideFeed,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvidePhysics(cfg config.Config, logger *log.Logger, eventBus bus.EventBus) (*physics.Physics, error) {
	pc, err := cfg.PhysicsConfig()
	if err != nil {
		return nil, err
	}
	p, err := physics.New(pc, physics.WithLogger(logger), physics.WithEventBus(eventBus))
	if err != nil {
		return nil, fmt.Errorf("create physics: %w", err)
	}
	return p, nil
}

func ProvideScene(logger *log.Logger, eventBus bus.EventBus, p *physics.Physics) *scene.Scene {
	return scene.New(logger, eventBus, p)
}

func ProvideFeed(logger *log.Logger) *server.Feed {
	return server.NewFeed(logger)
}
