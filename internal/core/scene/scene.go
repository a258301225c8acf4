// Package scene owns the game objects and drives frames in the order the
// physics bridge relies on: every Update, then every system Step, then every
// LateUpdate.
package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/zeusync/physync/internal/core/events/bus"
	"github.com/zeusync/physync/internal/core/models"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems"
)

const (
	EventGameObjectSpawned   = "gameobject.spawned"
	EventGameObjectDestroyed = "gameobject.destroyed"

	source = "scene"
)

var (
	ErrClosed       = errors.New("scene closed")
	ErrInvalidDelta = errors.New("invalid frame delta")
	ErrNotInScene   = errors.New("game object not in scene")
)

type Scene struct {
	objects []*models.GameObject
	systems []systems.System

	log log.Log
	bus bus.EventBus

	frame   uint64
	elapsed float64
	closed  bool
	// inFrame defers slice removal of destroyed objects to the next frame.
	inFrame bool
}

// New builds a scene stepping the given systems in order. A nil logger is
// replaced by a nop logger; a nil bus disables events.
func New(logger log.Log, eventBus bus.EventBus, steps ...systems.System) *Scene {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Scene{
		systems: steps,
		log:     logger.Named(source),
		bus:     eventBus,
	}
}

// Spawn creates an empty game object owned by the scene.
func (s *Scene) Spawn(name string) (*models.GameObject, error) {
	if s.closed {
		return nil, ErrClosed
	}
	g := models.NewGameObject(name)
	s.objects = append(s.objects, g)
	s.publish(EventGameObjectSpawned, g)
	s.log.Debug("game object spawned", log.String("name", name), log.Stringer("id", g.ID()))
	return g, nil
}

// Find returns the first live object with the given name.
func (s *Scene) Find(name string) (*models.GameObject, bool) {
	for _, g := range s.objects {
		if !g.IsDestroyed() && g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// Objects returns the live objects in spawn order.
func (s *Scene) Objects() []*models.GameObject {
	out := make([]*models.GameObject, 0, len(s.objects))
	for _, g := range s.objects {
		if !g.IsDestroyed() {
			out = append(out, g)
		}
	}
	return out
}

func (s *Scene) Len() int { return len(s.Objects()) }

// Destroy destroys g and removes it from the scene. Called during a frame,
// g is destroyed at once and dropped from the scene when the next frame starts.
func (s *Scene) Destroy(g *models.GameObject) error {
	i := slices.Index(s.objects, g)
	if i < 0 || g.IsDestroyed() {
		return ErrNotInScene
	}
	if !s.inFrame {
		s.objects = slices.Delete(s.objects, i, i+1)
	}
	s.destroy(g)
	return nil
}

func (s *Scene) destroy(g *models.GameObject) {
	if g.IsDestroyed() {
		return
	}
	g.Destroy()
	s.publish(EventGameObjectDestroyed, g)
	s.log.Debug("game object destroyed", log.String("name", g.Name()), log.Stringer("id", g.ID()))
}

// Frame advances the scene by deltaTime. A failing system aborts the frame
// before LateUpdate runs.
func (s *Scene) Frame(deltaTime float64) error {
	if s.closed {
		return ErrClosed
	}
	if deltaTime < 0 || math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, deltaTime)
	}
	s.objects = slices.DeleteFunc(s.objects, (*models.GameObject).IsDestroyed)
	s.inFrame = true
	defer func() { s.inFrame = false }()

	// objects spawned during the frame join from the next one
	objects := s.objects
	for _, g := range objects {
		if !g.IsDestroyed() {
			g.Update(deltaTime)
		}
	}
	for _, sys := range s.systems {
		if err := sys.Step(deltaTime); err != nil {
			return fmt.Errorf("%s %s: %w", systems.PhaseStep, sys.Name(), err)
		}
	}
	for _, g := range objects {
		if !g.IsDestroyed() {
			g.LateUpdate(deltaTime)
		}
	}

	s.frame++
	s.elapsed += deltaTime
	return nil
}

func (s *Scene) FrameCount() uint64 { return s.frame }

// Elapsed is the simulated time in seconds.
func (s *Scene) Elapsed() float64 { return s.elapsed }

// Close destroys every object, newest first, then closes the systems in
// reverse order. Calling Close again does nothing.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for _, g := range slices.Backward(s.objects) {
		s.destroy(g)
	}
	s.objects = nil

	var errs []error
	for _, sys := range slices.Backward(s.systems) {
		if err := sys.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", sys.Name(), err))
		}
	}
	s.log.Info("scene closed", log.Uint64("frames", s.frame), log.Float64("elapsed", s.elapsed))
	return errors.Join(errs...)
}

func (s *Scene) publish(eventType string, g *models.GameObject) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(eventType, source, g)); err != nil {
		s.log.Error("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
