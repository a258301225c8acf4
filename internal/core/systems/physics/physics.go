package physics

import (
	"fmt"
	"math"
	"time"

	"github.com/zeusync/physync/internal/core/events/bus"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems"
	"github.com/zeusync/physync/internal/core/systems/physics/dynamics"
	"github.com/zeusync/physync/pkg/generic"
)

// Event types published on the bus.
const (
	EventRigidbodyAdded   = "rigidbody.added"
	EventRigidbodyRemoved = "rigidbody.removed"
)

const systemName = "physics"

var _ systems.System = (*Physics)(nil)

// Stats describes stepping work done so far.
type Stats struct {
	Steps             uint64
	SubSteps          uint64
	Bodies            int
	LastStepDuration  time.Duration
	TotalStepDuration time.Duration
}

// Physics owns the simulation world and the set of registered rigidbodies.
// It is built once, passed to every Rigidbody factory, and closed after all
// rigidbodies are gone. It is not safe for concurrent use.
type Physics struct {
	cfg   Config
	world *generic.Owned[*dynamics.World]

	bodies []*Rigidbody
	index  map[*Rigidbody]int

	log    log.Log
	bus    bus.EventBus
	stats  Stats
	closed bool
}

type Option func(*Physics)

func WithLogger(l log.Log) Option {
	return func(p *Physics) { p.log = l }
}

// WithEventBus publishes rigidbody registration events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(p *Physics) { p.bus = b }
}

func New(cfg Config, opts ...Option) (*Physics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid physics config: %w", err)
	}
	world, err := dynamics.NewWorld(cfg.worldConfig())
	if err != nil {
		return nil, fmt.Errorf("create physics world: %w", err)
	}

	p := &Physics{
		cfg:   cfg,
		world: generic.NewOwned(world, dynamics.FreeWorld),
		index: make(map[*Rigidbody]int),
		log:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named(systemName)
	p.log.Info("physics world created",
		log.Vec3("gravity", cfg.Gravity),
		log.Float64("fixed_time_step", cfg.FixedTimeStep),
		log.Int("max_sub_steps", cfg.MaxSubSteps),
	)
	return p, nil
}

func (p *Physics) Name() string { return systemName }

func (p *Physics) Config() Config { return p.cfg }

// AddRigidbody registers rb and adds its body to the world.
func (p *Physics) AddRigidbody(rb *Rigidbody) error {
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.index[rb]; ok {
		return ErrAlreadyRegistered
	}
	if err := p.world.Get().AddRigidBody(rb.body.Get()); err != nil {
		return fmt.Errorf("add rigid body to world: %w", err)
	}
	p.index[rb] = len(p.bodies)
	p.bodies = append(p.bodies, rb)

	p.log.Debug("rigidbody registered", log.String("game_object", rb.GameObject().Name()), log.Int("bodies", len(p.bodies)))
	p.publish(EventRigidbodyAdded, rb)
	return nil
}

// RemoveRigidbody deregisters rb. It is called from Rigidbody.Destroy while
// the body is still alive and does nothing for an unknown rigidbody.
func (p *Physics) RemoveRigidbody(rb *Rigidbody) {
	i, ok := p.index[rb]
	if !ok {
		return
	}
	if !p.closed {
		p.world.Get().RemoveRigidBody(rb.body.Get())
	}

	last := len(p.bodies) - 1
	p.bodies[i] = p.bodies[last]
	p.index[p.bodies[i]] = i
	p.bodies[last] = nil
	p.bodies = p.bodies[:last]
	delete(p.index, rb)

	p.log.Debug("rigidbody deregistered", log.String("game_object", rb.GameObject().Name()), log.Int("bodies", len(p.bodies)))
	p.publish(EventRigidbodyRemoved, rb)
}

func (p *Physics) Contains(rb *Rigidbody) bool {
	_, ok := p.index[rb]
	return ok
}

func (p *Physics) Len() int { return len(p.bodies) }

// Bodies returns the registered rigidbodies in no particular order.
func (p *Physics) Bodies() []*Rigidbody {
	out := make([]*Rigidbody, len(p.bodies))
	copy(out, p.bodies)
	return out
}

func (p *Physics) Stats() Stats {
	s := p.stats
	s.Bodies = len(p.bodies)
	return s
}

// Step pushes every Transform into the simulation, advances the world by
// deltaTime and copies every result back. Each phase finishes for all bodies
// before the next one starts.
func (p *Physics) Step(deltaTime float64) error {
	if p.closed {
		return ErrClosed
	}
	if deltaTime < 0 || math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimeStep, deltaTime)
	}
	start := time.Now()

	for _, rb := range p.bodies {
		rb.CopyTransformToBullet()
	}

	subSteps := p.world.Get().StepSimulation(deltaTime)

	for _, rb := range p.bodies {
		rb.CopyTransformFromBullet()
	}

	elapsed := time.Since(start)
	p.stats.Steps++
	p.stats.SubSteps += uint64(subSteps)
	p.stats.LastStepDuration = elapsed
	p.stats.TotalStepDuration += elapsed
	p.log.Debug("physics step",
		log.Float64("delta_time", deltaTime),
		log.Int("sub_steps", subSteps),
		log.Int("bodies", len(p.bodies)),
		log.Duration("elapsed", elapsed),
	)
	return nil
}

// Close frees the world. All rigidbodies must be destroyed first.
func (p *Physics) Close() error {
	if p.closed {
		return nil
	}
	if n := len(p.bodies); n > 0 {
		return fmt.Errorf("%w: %d", ErrBodiesRegistered, n)
	}
	p.world.Release()
	p.closed = true
	p.log.Info("physics world released", log.Uint64("steps", p.stats.Steps))
	return nil
}

func (p *Physics) publish(eventType string, rb *Rigidbody) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(bus.NewEvent(eventType, systemName, rb)); err != nil {
		p.log.Error("event handler failed", log.String("event", eventType), log.Error(err))
	}
}

// IsClosed reports whether Close has released the world.
func (p *Physics) IsClosed() bool { return p.closed }

// World exposes the underlying world for inspection, e.g. gravity changes.
func (p *Physics) World() (*dynamics.World, error) {
	if p.closed {
		return nil, ErrClosed
	}
	return p.world.Get(), nil
}
