package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/physync/internal/core/models"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/core/systems/physics/dynamics"
	"github.com/zeusync/physync/pkg/generic"
)

// Rigidbody bridges a game object's Transform and a simulated body.
//
// It needs a Collider attached to the same game object first, keeps a
// non-owning reference to it, and registers itself with the Physics registry
// for its whole lifetime. The Physics registry pushes the Transform into the
// body before each step and copies the result back afterwards.
type Rigidbody struct {
	models.BaseComponent

	physics  *Physics
	collider Collider

	motionState *generic.Owned[*dynamics.DefaultMotionState]
	body        *generic.Owned[*dynamics.RigidBody]

	syncRotation bool
	policy       SettlePolicy
	log          log.Log
}

type rigidbodyOptions struct {
	mass          *float64
	syncRotation  *bool
	policy        SettlePolicy
	restitution   float64
	linearDamping float64
}

// RigidbodyOption customizes a Rigidbody built by NewRigidbody.
type RigidbodyOption func(*rigidbodyOptions)

// WithMass overrides the registry's default mass. Zero makes the body static.
func WithMass(mass float64) RigidbodyOption {
	return func(o *rigidbodyOptions) { o.mass = &mass }
}

// WithRotationSync controls whether simulated rotation is copied back to the Transform.
func WithRotationSync(enabled bool) RigidbodyOption {
	return func(o *rigidbodyOptions) { o.syncRotation = &enabled }
}

// WithSettlePolicy attaches a per-frame policy, replacing any configured default.
func WithSettlePolicy(p SettlePolicy) RigidbodyOption {
	return func(o *rigidbodyOptions) { o.policy = p }
}

// WithRestitution sets the bounciness used in contacts. The contact response
// multiplies the restitution of both bodies, so 0 on either side stops the bounce.
func WithRestitution(r float64) RigidbodyOption {
	return func(o *rigidbodyOptions) { o.restitution = r }
}

// WithLinearDamping sets the fraction of linear velocity lost per second,
// clamped to [0, 1].
func WithLinearDamping(d float64) RigidbodyOption {
	return func(o *rigidbodyOptions) { o.linearDamping = d }
}

// NewRigidbody returns a factory for AddComponent. Construction fails with
// ErrColliderRequired when the game object has no collider; on any failure
// nothing stays allocated or registered.
func NewRigidbody(p *Physics, opts ...RigidbodyOption) models.ComponentFactory[*Rigidbody] {
	return func(g *models.GameObject) (*Rigidbody, error) {
		return newRigidbody(g, p, opts...)
	}
}

func newRigidbody(g *models.GameObject, p *Physics, opts ...RigidbodyOption) (*Rigidbody, error) {
	if p == nil {
		return nil, ErrNilRegistry
	}
	if p.closed {
		return nil, ErrClosed
	}

	var o rigidbodyOptions
	for _, opt := range opts {
		opt(&o)
	}
	mass := p.cfg.DefaultMass
	if o.mass != nil {
		mass = *o.mass
	}
	if err := validateMass(mass); err != nil {
		return nil, err
	}

	collider, ok := models.GetComponent[Collider](g)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColliderRequired, g.Name())
	}

	rb := &Rigidbody{
		physics:      p,
		collider:     collider,
		syncRotation: p.cfg.SyncRotation,
		policy:       o.policy,
		log:          p.log.With(log.String("game_object", g.Name())),
	}
	rb.Init(g, false)
	if o.syncRotation != nil {
		rb.syncRotation = *o.syncRotation
	}
	if rb.policy == nil && p.cfg.KeepAwake.Enabled && mass > 0 {
		rb.policy = NewKeepAwake(p.cfg.KeepAwake.Threshold, p.cfg.KeepAwake.Impulse)
	}

	shape := collider.Shape()
	ms := dynamics.NewDefaultMotionState(dynamics.IdentityTransform())
	rb.motionState = generic.NewOwned(ms, dynamics.FreeMotionState)

	body, err := dynamics.NewRigidBody(dynamics.RigidBodyConstructionInfo{
		Mass:          mass,
		MotionState:   ms,
		Shape:         shape,
		LocalInertia:  shape.CalculateLocalInertia(mass),
		Restitution:   o.restitution,
		LinearDamping: o.linearDamping,
	})
	if err != nil {
		rb.motionState.Release()
		return nil, fmt.Errorf("create rigid body: %w", err)
	}
	rb.body = generic.NewOwned(body, dynamics.FreeRigidBody)

	rb.CopyTransformToBullet()

	if err = p.AddRigidbody(rb); err != nil {
		rb.release()
		return nil, err
	}
	return rb, nil
}

// ApplyForce applies a force at the body's origin until the end of the next step.
func (rb *Rigidbody) ApplyForce(force mgl64.Vec3) {
	b := rb.body.Get()
	b.Activate()
	b.ApplyForce(force, mgl64.Vec3{})
}

func (rb *Rigidbody) ApplyForceXYZ(x, y, z float64) {
	rb.ApplyForce(mgl64.Vec3{x, y, z})
}

// ApplyImpulse changes the velocity immediately, before any step.
func (rb *Rigidbody) ApplyImpulse(impulse mgl64.Vec3) {
	b := rb.body.Get()
	b.Activate()
	b.ApplyImpulse(impulse, mgl64.Vec3{})
}

func (rb *Rigidbody) ApplyImpulseXYZ(x, y, z float64) {
	rb.ApplyImpulse(mgl64.Vec3{x, y, z})
}

func (rb *Rigidbody) ApplyTorque(torque mgl64.Vec3) {
	b := rb.body.Get()
	b.Activate()
	b.ApplyTorque(torque)
}

func (rb *Rigidbody) Velocity() mgl64.Vec3 {
	return rb.body.Get().LinearVelocity()
}

func (rb *Rigidbody) AngularVelocity() mgl64.Vec3 {
	return rb.body.Get().AngularVelocity()
}

// Mass is derived from the stored inverse mass; static bodies report exactly 0.
func (rb *Rigidbody) Mass() float64 {
	if inv := rb.body.Get().InvMass(); inv > 0 {
		return 1 / inv
	}
	return 0
}

// SetMass pushes the mass and the inertia computed for it in one call.
func (rb *Rigidbody) SetMass(mass float64) error {
	if err := validateMass(mass); err != nil {
		return err
	}
	b := rb.body.Get()
	b.SetMassProps(mass, rb.collider.Shape().CalculateLocalInertia(mass))
	if mass > 0 {
		b.Activate()
	}
	rb.log.Debug("rigidbody mass changed", log.Float64("mass", mass))
	return nil
}

// LocalInertia is computed from the collider's shape at the current mass.
func (rb *Rigidbody) LocalInertia() mgl64.Vec3 {
	mass := rb.Mass()
	if mass == 0 {
		return mgl64.Vec3{}
	}
	return rb.collider.Shape().CalculateLocalInertia(mass)
}

func (rb *Rigidbody) IsStatic() bool { return rb.body.Get().IsStaticObject() }

func (rb *Rigidbody) IsAwake() bool { return rb.body.Get().IsActive() }

func (rb *Rigidbody) Collider() Collider { return rb.collider }

func (rb *Rigidbody) SyncsRotation() bool { return rb.syncRotation }

func (rb *Rigidbody) SetRotationSync(enabled bool) { rb.syncRotation = enabled }

func (rb *Rigidbody) SettlePolicy() SettlePolicy { return rb.policy }

func (rb *Rigidbody) SetSettlePolicy(p SettlePolicy) { rb.policy = p }

// CopyTransformToBullet pushes the Transform's position and rotation into the
// motion state and the body.
func (rb *Rigidbody) CopyTransformToBullet() {
	ms := rb.motionState.Get()
	tr := rb.GameObject().Transform()

	t := ms.GetWorldTransform()
	t.Origin = tr.Position()
	t.Rotation = tr.Rotation()

	ms.SetWorldTransform(t)
	rb.body.Get().SetWorldTransform(t)
}

// CopyTransformFromBullet copies the simulated position back to the Transform.
// Rotation is copied only when rotation sync is enabled.
func (rb *Rigidbody) CopyTransformFromBullet() {
	t := rb.motionState.Get().GetWorldTransform()
	tr := rb.GameObject().Transform()

	tr.SetPosition(t.Origin)
	if rb.syncRotation {
		tr.SetRotation(t.Rotation)
	}
}

// Update runs the settle policy, if any.
func (rb *Rigidbody) Update(deltaTime float64) {
	if rb.policy == nil {
		return
	}
	if rb.policy.Apply(rb, deltaTime) {
		rb.log.Debug("settle policy applied", log.Vec3("velocity", rb.Velocity()))
	}
}

// DependsOn pins the collider while this rigidbody is attached.
func (rb *Rigidbody) DependsOn(c models.Component) bool {
	return rb.collider != nil && c == rb.collider
}

// Destroy deregisters from Physics before releasing the body and motion state.
func (rb *Rigidbody) Destroy() {
	if rb.body == nil || rb.body.Released() {
		return
	}
	rb.physics.RemoveRigidbody(rb)
	rb.release()
	rb.collider = nil
}

func (rb *Rigidbody) release() {
	rb.body.Release()
	rb.motionState.Release()
}

func (rb *Rigidbody) refreshInertia() {
	mass := rb.Mass()
	rb.body.Get().SetMassProps(mass, rb.collider.Shape().CalculateLocalInertia(mass))
}
