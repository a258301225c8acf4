package dynamics

import "sync/atomic"

var liveObjects atomic.Int64

// LiveObjects reports how many engine resources are allocated and not yet freed.
func LiveObjects() int64 { return liveObjects.Load() }

type resource struct {
	freed bool
}

func (r *resource) track() { liveObjects.Add(1) }

// release marks the resource freed and reports whether this call did it.
func (r *resource) release() bool {
	if r.freed {
		return false
	}
	r.freed = true
	liveObjects.Add(-1)
	return true
}

// Freed reports whether the resource has been deallocated.
func (r *resource) Freed() bool { return r.freed }

// FreeShape deallocates a collision shape.
func FreeShape(s CollisionShape) {
	if s == nil {
		return
	}
	s.handle().release()
}

// FreeMotionState deallocates a motion state.
func FreeMotionState(ms *DefaultMotionState) {
	if ms == nil {
		return
	}
	ms.release()
}

// FreeRigidBody deallocates a rigid body. A body still in a world is removed first.
func FreeRigidBody(b *RigidBody) {
	if b == nil {
		return
	}
	if b.world != nil {
		b.world.RemoveRigidBody(b)
	}
	b.release()
}

// FreeWorld deallocates a world. Bodies still inside are detached, not freed.
func FreeWorld(w *World) {
	if w == nil {
		return
	}
	for _, b := range w.bodies {
		b.world = nil
	}
	w.bodies = nil
	w.release()
}
