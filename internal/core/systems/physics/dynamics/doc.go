// Package dynamics is a small rigid-body engine with a Bullet-shaped API.
//
// It is consumed by the physics package as an opaque resource provider:
// collision shapes, motion states, rigid bodies and the world are allocated
// here and released through the matching Free routine. Every live resource is
// counted so callers can check that engine objects and their owners are
// released in lock-step.
//
// Stepping uses semi-implicit Euler integration with an optional fixed-step
// accumulator. Contacts are generated between dynamic convex shapes (sphere,
// box) and static planes only.
package dynamics
