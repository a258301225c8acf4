package physics

import "errors"

var (
	ErrColliderRequired  = errors.New("physics: rigidbody requires a collider on the same game object")
	ErrColliderExists    = errors.New("physics: game object already has a collider")
	ErrInvalidDimension  = errors.New("physics: collider dimensions must be positive")
	ErrInvalidMass       = errors.New("physics: mass must be finite and not negative")
	ErrAlreadyRegistered = errors.New("physics: rigidbody is already registered")
	ErrBodiesRegistered  = errors.New("physics: rigidbodies are still registered")
	ErrInvalidTimeStep   = errors.New("physics: time step must be finite and not negative")
	ErrClosed            = errors.New("physics: registry is closed")
	ErrNilRegistry       = errors.New("physics: rigidbody requires a physics registry")
)
