package models

import "github.com/go-gl/mathgl/mgl64"

// Transform holds the spatial state of one GameObject.
// Rotation is expected to stay a unit quaternion; it is never renormalised here.
type Transform struct {
	position mgl64.Vec3
	rotation mgl64.Quat
	scale    mgl64.Vec3
}

// NewTransform returns a transform at the origin with identity rotation and unit scale.
func NewTransform() *Transform {
	return &Transform{
		rotation: mgl64.QuatIdent(),
		scale:    mgl64.Vec3{1, 1, 1},
	}
}

func (t *Transform) Position() mgl64.Vec3 { return t.position }

func (t *Transform) SetPosition(p mgl64.Vec3) { t.position = p }

func (t *Transform) SetPositionXYZ(x, y, z float64) { t.position = mgl64.Vec3{x, y, z} }

func (t *Transform) Rotation() mgl64.Quat { return t.rotation }

func (t *Transform) SetRotation(q mgl64.Quat) { t.rotation = q }

func (t *Transform) Scale() mgl64.Vec3 { return t.scale }

func (t *Transform) SetScale(s mgl64.Vec3) { t.scale = s }

// Translate moves the transform by delta in world space.
func (t *Transform) Translate(delta mgl64.Vec3) {
	t.position = t.position.Add(delta)
}

// Rotate applies q after the current rotation.
func (t *Transform) Rotate(q mgl64.Quat) {
	t.rotation = q.Mul(t.rotation)
}

// Forward is the -Z axis rotated into world space.
func (t *Transform) Forward() mgl64.Vec3 {
	return t.rotation.Rotate(mgl64.Vec3{0, 0, -1})
}
