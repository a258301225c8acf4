package systems

// System is a simulation stage the scene runs once per frame, after every
// component's Update and before any LateUpdate.
type System interface {
	Name() string
	// Step advances the system by deltaTime seconds. It blocks until done.
	Step(deltaTime float64) error
	// Close releases the system. The scene calls it after destroying every
	// game object, so no component still refers to the system.
	Close() error
}

// ExecutionPhase names the ordered parts of a frame.
type ExecutionPhase uint8

const (
	PhaseUpdate ExecutionPhase = iota
	PhaseStep
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseStep:
		return "step"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}
