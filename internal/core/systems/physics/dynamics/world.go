package dynamics

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldConfig controls gravity and stepping.
//
// With MaxSubSteps > 0 the world advances in fixed steps of FixedTimeStep,
// carrying leftover time to the next call and dropping time beyond
// MaxSubSteps. With MaxSubSteps == 0 every call advances by exactly dt.
type WorldConfig struct {
	Gravity       mgl64.Vec3
	FixedTimeStep float64
	MaxSubSteps   int
}

// DefaultWorldConfig matches the usual 60 Hz setup under earth gravity.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:       mgl64.Vec3{0, -9.81, 0},
		FixedTimeStep: 1.0 / 60.0,
		MaxSubSteps:   1,
	}
}

// World owns the broadphase, dispatcher and solver as one resource.
type World struct {
	resource

	gravity       mgl64.Vec3
	fixedTimeStep float64
	maxSubSteps   int
	localTime     float64

	bodies []*RigidBody
}

func NewWorld(cfg WorldConfig) (*World, error) {
	if cfg.MaxSubSteps < 0 || (cfg.MaxSubSteps > 0 && cfg.FixedTimeStep <= 0) {
		return nil, ErrInvalidTimeStep
	}
	w := &World{
		gravity:       cfg.Gravity,
		fixedTimeStep: cfg.FixedTimeStep,
		maxSubSteps:   cfg.MaxSubSteps,
	}
	w.track()
	return w, nil
}

func (w *World) Gravity() mgl64.Vec3 { return w.gravity }

// SetGravity updates the world and every body in it.
func (w *World) SetGravity(g mgl64.Vec3) {
	w.gravity = g
	for _, b := range w.bodies {
		b.gravity = g
	}
}

func (w *World) NumBodies() int { return len(w.bodies) }

func (w *World) AddRigidBody(b *RigidBody) error {
	if b.world != nil {
		return ErrBodyAlreadyInWorld
	}
	b.world = w
	b.gravity = w.gravity
	w.bodies = append(w.bodies, b)
	return nil
}

// RemoveRigidBody detaches b. Removing a body that is not in w does nothing.
func (w *World) RemoveRigidBody(b *RigidBody) {
	if b.world != w {
		return
	}
	if i := slices.Index(w.bodies, b); i >= 0 {
		w.bodies = slices.Delete(w.bodies, i, i+1)
	}
	b.world = nil
}

// StepSimulation advances the world by dt and returns the number of internal
// steps taken. Forces are cleared and motion states updated afterwards.
func (w *World) StepSimulation(dt float64) int {
	if dt < 0 {
		return 0
	}

	steps := 0
	if w.maxSubSteps == 0 {
		if dt > 0 {
			w.internalStep(dt)
			steps = 1
		}
	} else {
		w.localTime += dt
		n := int(w.localTime / w.fixedTimeStep)
		w.localTime -= float64(n) * w.fixedTimeStep
		steps = min(n, w.maxSubSteps)
		for range steps {
			w.internalStep(w.fixedTimeStep)
		}
	}

	for _, b := range w.bodies {
		b.ClearForces()
	}
	if steps > 0 {
		w.synchronizeMotionStates()
	}
	return steps
}

func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.IsStaticObject() || !b.IsActive() {
			continue
		}
		b.integrate(dt)
	}
	w.resolveContacts()
	for _, b := range w.bodies {
		if !b.IsStaticObject() {
			b.updateDeactivation(dt)
		}
	}
}

// resolveContacts pushes dynamic convex bodies out of static planes and
// removes the approaching normal velocity, scaled by combined restitution.
func (w *World) resolveContacts() {
	for _, s := range w.bodies {
		plane, ok := s.shape.(*StaticPlaneShape)
		if !ok || !s.IsStaticObject() {
			continue
		}
		n, c := plane.worldPlane(s.worldTransform)
		for _, b := range w.bodies {
			if b.IsStaticObject() || !b.IsActive() {
				continue
			}
			convex, ok := b.shape.(convexShape)
			if !ok {
				continue
			}
			origin := b.worldTransform.Origin
			dist := n.Dot(origin) - c - convex.extentAlong(b.worldTransform.Rotation, n)
			if dist >= 0 {
				continue
			}
			b.worldTransform.Origin = origin.Add(n.Mul(-dist))
			if vn := n.Dot(b.linearVelocity); vn < 0 {
				e := b.restitution * s.restitution
				b.linearVelocity = b.linearVelocity.Sub(n.Mul(vn * (1 + e)))
			}
		}
	}
}

func (w *World) synchronizeMotionStates() {
	for _, b := range w.bodies {
		if b.IsStaticObject() || !b.IsActive() || b.motionState == nil {
			continue
		}
		b.motionState.SetWorldTransform(b.worldTransform)
	}
}
