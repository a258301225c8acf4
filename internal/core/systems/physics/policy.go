package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SettlePolicy runs once per frame from Rigidbody.Update and reports whether it acted.
type SettlePolicy interface {
	Apply(rb *Rigidbody, deltaTime float64) bool
}

type SettlePolicyFunc func(rb *Rigidbody, deltaTime float64) bool

func (f SettlePolicyFunc) Apply(rb *Rigidbody, deltaTime float64) bool { return f(rb, deltaTime) }

// KeepAwake kicks a body upward whenever its vertical speed is at or below
// Threshold, so it never settles.
type KeepAwake struct {
	Threshold float64
	Impulse   mgl64.Vec3

	triggers int
}

func NewKeepAwake(threshold float64, impulse mgl64.Vec3) *KeepAwake {
	return &KeepAwake{Threshold: threshold, Impulse: impulse}
}

func (k *KeepAwake) Apply(rb *Rigidbody, _ float64) bool {
	if math.Abs(rb.Velocity().Y()) > k.Threshold {
		return false
	}
	rb.ApplyImpulse(k.Impulse)
	k.triggers++
	return true
}

// Triggers counts how many impulses the policy has applied.
func (k *KeepAwake) Triggers() int { return k.triggers }
