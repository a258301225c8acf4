package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType identifies the geometry of a collision shape.
type ShapeType uint8

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapeStaticPlane
)

func (t ShapeType) String() string {
	switch t {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeStaticPlane:
		return "static_plane"
	default:
		return "unknown"
	}
}

// CollisionShape describes the geometry of a body.
type CollisionShape interface {
	Type() ShapeType
	// CalculateLocalInertia returns the diagonal of the inertia tensor for mass.
	CalculateLocalInertia(mass float64) mgl64.Vec3
	LocalScaling() mgl64.Vec3
	// SetLocalScaling rescales the stored (implicit) dimensions in place.
	SetLocalScaling(scaling mgl64.Vec3)
	UserPointer() any
	SetUserPointer(p any)
	Freed() bool

	handle() *resource
}

// convexShape can report how far it reaches along a world direction.
type convexShape interface {
	extentAlong(rotation mgl64.Quat, dir mgl64.Vec3) float64
}

type shapeBase struct {
	resource
	scaling     mgl64.Vec3
	userPointer any
}

func newShapeBase() shapeBase {
	b := shapeBase{scaling: mgl64.Vec3{1, 1, 1}}
	b.track()
	return b
}

func (s *shapeBase) LocalScaling() mgl64.Vec3 { return s.scaling }
func (s *shapeBase) UserPointer() any         { return s.userPointer }
func (s *shapeBase) SetUserPointer(p any)     { s.userPointer = p }
func (s *shapeBase) handle() *resource        { return &s.resource }

// SphereShape stores its radius already multiplied by the X scaling.
type SphereShape struct {
	shapeBase
	radius float64
}

func NewSphereShape(radius float64) *SphereShape {
	return &SphereShape{shapeBase: newShapeBase(), radius: radius}
}

func (s *SphereShape) Type() ShapeType { return ShapeSphere }

// Radius returns the scaled radius.
func (s *SphereShape) Radius() float64 { return s.radius }

// SetUnscaledRadius sets the radius before scaling is applied.
func (s *SphereShape) SetUnscaledRadius(radius float64) {
	s.radius = radius * s.scaling.X()
}

func (s *SphereShape) SetLocalScaling(scaling mgl64.Vec3) {
	scaling = absComponents(scaling)
	if s.scaling.X() != 0 {
		s.radius = s.radius / s.scaling.X() * scaling.X()
	}
	s.scaling = scaling
}

func (s *SphereShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	elem := 0.4 * mass * s.radius * s.radius
	return mgl64.Vec3{elem, elem, elem}
}

func (s *SphereShape) extentAlong(mgl64.Quat, mgl64.Vec3) float64 { return s.radius }

// BoxShape stores half extents already multiplied by the scaling.
type BoxShape struct {
	shapeBase
	halfExtents mgl64.Vec3
}

func NewBoxShape(halfExtents mgl64.Vec3) *BoxShape {
	return &BoxShape{shapeBase: newShapeBase(), halfExtents: absComponents(halfExtents)}
}

func (b *BoxShape) Type() ShapeType { return ShapeBox }

// HalfExtents returns the scaled half extents.
func (b *BoxShape) HalfExtents() mgl64.Vec3 { return b.halfExtents }

func (b *BoxShape) SetUnscaledHalfExtents(halfExtents mgl64.Vec3) {
	b.halfExtents = mulComponents(absComponents(halfExtents), b.scaling)
}

func (b *BoxShape) SetLocalScaling(scaling mgl64.Vec3) {
	scaling = absComponents(scaling)
	b.halfExtents = mulComponents(divComponents(b.halfExtents, b.scaling), scaling)
	b.scaling = scaling
}

func (b *BoxShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	lx, ly, lz := 2*b.halfExtents.X(), 2*b.halfExtents.Y(), 2*b.halfExtents.Z()
	return mgl64.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	}
}

func (b *BoxShape) extentAlong(rotation mgl64.Quat, dir mgl64.Vec3) float64 {
	local := rotation.Conjugate().Rotate(dir)
	return math.Abs(local.X())*b.halfExtents.X() +
		math.Abs(local.Y())*b.halfExtents.Y() +
		math.Abs(local.Z())*b.halfExtents.Z()
}

// StaticPlaneShape is the infinite plane n·x = constant. Only static bodies use it.
type StaticPlaneShape struct {
	shapeBase
	normal   mgl64.Vec3
	constant float64
}

func NewStaticPlaneShape(normal mgl64.Vec3, constant float64) *StaticPlaneShape {
	if normal.Len() == 0 {
		normal = mgl64.Vec3{0, 1, 0}
	}
	return &StaticPlaneShape{shapeBase: newShapeBase(), normal: normal.Normalize(), constant: constant}
}

func (p *StaticPlaneShape) Type() ShapeType { return ShapeStaticPlane }

func (p *StaticPlaneShape) Normal() mgl64.Vec3 { return p.normal }

func (p *StaticPlaneShape) Constant() float64 { return p.constant }

func (p *StaticPlaneShape) SetLocalScaling(scaling mgl64.Vec3) {
	p.scaling = absComponents(scaling)
}

func (p *StaticPlaneShape) CalculateLocalInertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

// worldPlane returns the plane normal and constant under t.
func (p *StaticPlaneShape) worldPlane(t Transform) (mgl64.Vec3, float64) {
	n := t.Rotation.Rotate(p.normal)
	return n, p.constant + n.Dot(t.Origin)
}
