package dynamics

// MotionState caches a body's world transform for exchange with the caller.
type MotionState interface {
	GetWorldTransform() Transform
	SetWorldTransform(t Transform)
}

// DefaultMotionState stores the transform as is, without interpolation.
type DefaultMotionState struct {
	resource
	worldTransform Transform
}

func NewDefaultMotionState(start Transform) *DefaultMotionState {
	ms := &DefaultMotionState{worldTransform: start}
	ms.track()
	return ms
}

func (ms *DefaultMotionState) GetWorldTransform() Transform { return ms.worldTransform }

func (ms *DefaultMotionState) SetWorldTransform(t Transform) { ms.worldTransform = t }
