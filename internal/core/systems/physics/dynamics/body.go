package dynamics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilShape           = errors.New("dynamics: rigid body requires a collision shape")
	ErrNegativeMass       = errors.New("dynamics: mass must not be negative")
	ErrShapeFreed         = errors.New("dynamics: collision shape is freed")
	ErrBodyAlreadyInWorld = errors.New("dynamics: rigid body already belongs to a world")
	ErrInvalidTimeStep    = errors.New("dynamics: invalid time step")
)

// ActivationState tracks whether the solver integrates a body.
type ActivationState uint8

const (
	ActiveTag ActivationState = iota
	IslandSleeping
	DisableDeactivation
)

const (
	linearSleepingThreshold  = 0.8
	angularSleepingThreshold = 1.0
	timeToSleep              = 2.0
)

// RigidBodyConstructionInfo carries everything needed to create a body.
type RigidBodyConstructionInfo struct {
	Mass         float64
	MotionState  MotionState
	Shape        CollisionShape
	LocalInertia mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64
	Restitution    float64
}

// RigidBody is a simulated body. A zero mass makes it static.
type RigidBody struct {
	resource

	worldTransform Transform
	motionState    MotionState
	shape          CollisionShape

	invMass         float64
	invInertiaLocal mgl64.Vec3

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3
	totalForce      mgl64.Vec3
	totalTorque     mgl64.Vec3

	linearDamping  float64
	angularDamping float64
	restitution    float64

	gravity          mgl64.Vec3
	activation       ActivationState
	deactivationTime float64

	world *World
}

// NewRigidBody creates a body. The initial world transform is taken from the
// motion state when one is given.
func NewRigidBody(info RigidBodyConstructionInfo) (*RigidBody, error) {
	if info.Shape == nil {
		return nil, ErrNilShape
	}
	if info.Shape.Freed() {
		return nil, ErrShapeFreed
	}
	if info.Mass < 0 {
		return nil, ErrNegativeMass
	}

	b := &RigidBody{
		worldTransform: IdentityTransform(),
		motionState:    info.MotionState,
		shape:          info.Shape,
		linearDamping:  clamp01(info.LinearDamping),
		angularDamping: clamp01(info.AngularDamping),
		restitution:    info.Restitution,
	}
	if info.MotionState != nil {
		b.worldTransform = info.MotionState.GetWorldTransform()
	}
	b.SetMassProps(info.Mass, info.LocalInertia)
	b.track()
	return b, nil
}

func (b *RigidBody) CollisionShape() CollisionShape { return b.shape }

func (b *RigidBody) MotionState() MotionState { return b.motionState }

func (b *RigidBody) WorldTransform() Transform { return b.worldTransform }

func (b *RigidBody) SetWorldTransform(t Transform) { b.worldTransform = t }

func (b *RigidBody) InvMass() float64 { return b.invMass }

// SetMassProps sets mass and local inertia together. Zero mass makes the body static.
func (b *RigidBody) SetMassProps(mass float64, inertia mgl64.Vec3) {
	if mass == 0 {
		b.invMass = 0
	} else {
		b.invMass = 1 / mass
	}
	b.invInertiaLocal = reciprocal(inertia)
}

func (b *RigidBody) InvInertiaDiagLocal() mgl64.Vec3 { return b.invInertiaLocal }

// LocalInertia is the inverse of InvInertiaDiagLocal, zero where that is zero.
func (b *RigidBody) LocalInertia() mgl64.Vec3 { return reciprocal(b.invInertiaLocal) }

func (b *RigidBody) IsStaticObject() bool { return b.invMass == 0 }

func (b *RigidBody) LinearVelocity() mgl64.Vec3 { return b.linearVelocity }

func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3) { b.linearVelocity = v }

func (b *RigidBody) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

func (b *RigidBody) SetAngularVelocity(w mgl64.Vec3) { b.angularVelocity = w }

func (b *RigidBody) Restitution() float64 { return b.restitution }

func (b *RigidBody) SetRestitution(r float64) { b.restitution = r }

func (b *RigidBody) Gravity() mgl64.Vec3 { return b.gravity }

// TotalForce is the force accumulated since the last step.
func (b *RigidBody) TotalForce() mgl64.Vec3 { return b.totalForce }

func (b *RigidBody) TotalTorque() mgl64.Vec3 { return b.totalTorque }

func (b *RigidBody) ApplyCentralForce(force mgl64.Vec3) {
	b.totalForce = b.totalForce.Add(force)
}

// ApplyForce accumulates force at relPos, relative to the center of mass.
func (b *RigidBody) ApplyForce(force, relPos mgl64.Vec3) {
	b.ApplyCentralForce(force)
	b.ApplyTorque(relPos.Cross(force))
}

func (b *RigidBody) ApplyTorque(torque mgl64.Vec3) {
	b.totalTorque = b.totalTorque.Add(torque)
}

// ApplyCentralImpulse changes linear velocity immediately.
func (b *RigidBody) ApplyCentralImpulse(impulse mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
}

// ApplyImpulse changes velocity immediately; relPos adds an angular part.
func (b *RigidBody) ApplyImpulse(impulse, relPos mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.ApplyCentralImpulse(impulse)
	if relPos != (mgl64.Vec3{}) {
		b.ApplyTorqueImpulse(relPos.Cross(impulse))
	}
}

func (b *RigidBody) ApplyTorqueImpulse(torque mgl64.Vec3) {
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaWorld(torque))
}

func (b *RigidBody) ClearForces() {
	b.totalForce = mgl64.Vec3{}
	b.totalTorque = mgl64.Vec3{}
}

func (b *RigidBody) ActivationState() ActivationState { return b.activation }

// Activate wakes a sleeping body.
func (b *RigidBody) Activate() {
	if b.activation == IslandSleeping {
		b.activation = ActiveTag
	}
	b.deactivationTime = 0
}

// SetActivationState forces a state; DisableDeactivation keeps the body awake.
func (b *RigidBody) SetActivationState(state ActivationState) {
	b.activation = state
	b.deactivationTime = 0
}

func (b *RigidBody) IsActive() bool { return b.activation != IslandSleeping }

// invInertiaWorld applies R * diag(invInertiaLocal) * R^T to v.
func (b *RigidBody) invInertiaWorld(v mgl64.Vec3) mgl64.Vec3 {
	rot := b.worldTransform.Rotation
	local := rot.Conjugate().Rotate(v)
	return rot.Rotate(mulComponents(local, b.invInertiaLocal))
}

func (b *RigidBody) integrate(dt float64) {
	acc := b.gravity.Add(b.totalForce.Mul(b.invMass))
	b.linearVelocity = b.linearVelocity.Add(acc.Mul(dt))
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaWorld(b.totalTorque).Mul(dt))

	if b.linearDamping > 0 {
		b.linearVelocity = b.linearVelocity.Mul(pow1m(b.linearDamping, dt))
	}
	if b.angularDamping > 0 {
		b.angularVelocity = b.angularVelocity.Mul(pow1m(b.angularDamping, dt))
	}

	t := b.worldTransform
	t.Origin = t.Origin.Add(b.linearVelocity.Mul(dt))
	if b.angularVelocity != (mgl64.Vec3{}) {
		spin := mgl64.Quat{W: 0, V: b.angularVelocity}.Mul(t.Rotation).Scale(0.5 * dt)
		t.Rotation = t.Rotation.Add(spin).Normalize()
	}
	b.worldTransform = t
}

func (b *RigidBody) updateDeactivation(dt float64) {
	if b.activation == DisableDeactivation || b.activation == IslandSleeping {
		return
	}
	if b.linearVelocity.Len() < linearSleepingThreshold && b.angularVelocity.Len() < angularSleepingThreshold {
		b.deactivationTime += dt
	} else {
		b.deactivationTime = 0
	}
	if b.deactivationTime > timeToSleep {
		b.activation = IslandSleeping
		b.linearVelocity = mgl64.Vec3{}
		b.angularVelocity = mgl64.Vec3{}
	}
}
