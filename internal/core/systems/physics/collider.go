package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/physync/internal/core/models"
	"github.com/zeusync/physync/internal/core/systems/physics/dynamics"
	"github.com/zeusync/physync/pkg/generic"
)

// ShapeKind is the fixed geometry of a collider.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	default:
		return fmt.Sprintf("shape(%d)", k)
	}
}

// Collider owns the collision shape of a game object.
// A game object carries at most one collider.
type Collider interface {
	models.Component
	Kind() ShapeKind
	Shape() dynamics.CollisionShape
	LocalScaling() mgl64.Vec3
	// SetLocalScaling scales the shape in place. Every component must be positive.
	SetLocalScaling(scaling mgl64.Vec3) error
}

type collider struct {
	models.BaseComponent
	kind  ShapeKind
	shape *generic.Owned[dynamics.CollisionShape]
}

func (c *collider) init(g *models.GameObject, kind ShapeKind, shape dynamics.CollisionShape, self Collider) {
	c.Init(g, false)
	c.kind = kind
	c.shape = generic.NewOwned(shape, dynamics.FreeShape)
	shape.SetUserPointer(self)
}

func (c *collider) Update(float64) {}

func (c *collider) Kind() ShapeKind { return c.kind }

func (c *collider) Shape() dynamics.CollisionShape { return c.shape.Get() }

func (c *collider) LocalScaling() mgl64.Vec3 { return c.shape.Get().LocalScaling() }

func (c *collider) SetLocalScaling(scaling mgl64.Vec3) error {
	for _, s := range scaling {
		if !(s > 0) {
			return fmt.Errorf("%w: scaling %v", ErrInvalidDimension, scaling)
		}
	}
	c.shape.Get().SetLocalScaling(scaling)
	c.shapeChanged()
	return nil
}

// Destroy releases the shape. The rigidbody on the same object is destroyed first.
func (c *collider) Destroy() {
	c.shape.Release()
}

// shapeChanged keeps the inertia of a sibling rigidbody in step with the geometry.
func (c *collider) shapeChanged() {
	if rb, ok := models.GetComponent[*Rigidbody](c.GameObject()); ok {
		rb.refreshInertia()
	}
}

func ensureNoCollider(g *models.GameObject) error {
	if existing, ok := models.GetComponent[Collider](g); ok {
		return fmt.Errorf("%w: %s", ErrColliderExists, existing.Kind())
	}
	return nil
}

// SphereCollider is a sphere centred on the game object's origin.
type SphereCollider struct {
	collider
}

// NewSphereCollider builds a sphere collider with the given unscaled radius.
func NewSphereCollider(radius float64) models.ComponentFactory[*SphereCollider] {
	return func(g *models.GameObject) (*SphereCollider, error) {
		if !(radius > 0) {
			return nil, fmt.Errorf("%w: radius %v", ErrInvalidDimension, radius)
		}
		if err := ensureNoCollider(g); err != nil {
			return nil, err
		}
		c := &SphereCollider{}
		c.init(g, ShapeSphere, dynamics.NewSphereShape(radius), c)
		return c, nil
	}
}

func (c *SphereCollider) sphere() *dynamics.SphereShape {
	return c.Shape().(*dynamics.SphereShape)
}

// Radius returns the logical radius. The shape stores it multiplied by the
// X scaling, so the scaling is divided back out here.
func (c *SphereCollider) Radius() float64 {
	s := c.sphere()
	return s.Radius() / s.LocalScaling().X()
}

// SetRadius updates the existing shape in place.
func (c *SphereCollider) SetRadius(radius float64) error {
	if !(radius > 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidDimension, radius)
	}
	c.sphere().SetUnscaledRadius(radius)
	c.shapeChanged()
	return nil
}

// BoxCollider is an oriented box centred on the game object's origin.
type BoxCollider struct {
	collider
}

func NewBoxCollider(halfExtents mgl64.Vec3) models.ComponentFactory[*BoxCollider] {
	return func(g *models.GameObject) (*BoxCollider, error) {
		if err := validateExtents(halfExtents); err != nil {
			return nil, err
		}
		if err := ensureNoCollider(g); err != nil {
			return nil, err
		}
		c := &BoxCollider{}
		c.init(g, ShapeBox, dynamics.NewBoxShape(halfExtents), c)
		return c, nil
	}
}

func (c *BoxCollider) box() *dynamics.BoxShape {
	return c.Shape().(*dynamics.BoxShape)
}

// HalfExtents returns the unscaled half extents.
func (c *BoxCollider) HalfExtents() mgl64.Vec3 {
	b := c.box()
	he, s := b.HalfExtents(), b.LocalScaling()
	return mgl64.Vec3{he[0] / s[0], he[1] / s[1], he[2] / s[2]}
}

func (c *BoxCollider) SetHalfExtents(halfExtents mgl64.Vec3) error {
	if err := validateExtents(halfExtents); err != nil {
		return err
	}
	c.box().SetUnscaledHalfExtents(halfExtents)
	c.shapeChanged()
	return nil
}

func validateExtents(halfExtents mgl64.Vec3) error {
	for _, e := range halfExtents {
		if !(e > 0) {
			return fmt.Errorf("%w: half extents %v", ErrInvalidDimension, halfExtents)
		}
	}
	return nil
}

// PlaneCollider is an infinite static plane, normally the ground.
type PlaneCollider struct {
	collider
}

func NewPlaneCollider(normal mgl64.Vec3, constant float64) models.ComponentFactory[*PlaneCollider] {
	return func(g *models.GameObject) (*PlaneCollider, error) {
		if normal.Len() == 0 {
			return nil, fmt.Errorf("%w: zero plane normal", ErrInvalidDimension)
		}
		if err := ensureNoCollider(g); err != nil {
			return nil, err
		}
		c := &PlaneCollider{}
		c.init(g, ShapePlane, dynamics.NewStaticPlaneShape(normal, constant), c)
		return c, nil
	}
}

func (c *PlaneCollider) Normal() mgl64.Vec3 {
	return c.Shape().(*dynamics.StaticPlaneShape).Normal()
}

func (c *PlaneCollider) Constant() float64 {
	return c.Shape().(*dynamics.StaticPlaneShape).Constant()
}
