package models

// Component is a unit of behavior or state attached to exactly one GameObject.
//
// Concrete components embed BaseComponent and implement Update. A component is
// created through AddComponent and lives at a fixed address until it is destroyed;
// its back-reference and any external resources it registers are tied to that
// identity, so components must never be copied.
type Component interface {
	GameObject() *GameObject
	IsEnabled() bool
	SetEnabled(enabled bool)
	UsesLateUpdate() bool

	// Update runs once per frame while the component is enabled.
	Update(deltaTime float64)
	// LateUpdate runs after the physics step for enabled components that use it.
	LateUpdate(deltaTime float64)
	// Destroy releases everything the component owns. Called exactly once.
	Destroy()

	base() *BaseComponent
}

// Dependent is implemented by components that keep a non-owning reference to a
// sibling component. The referenced component cannot be removed while the
// dependent is attached.
type Dependent interface {
	DependsOn(Component) bool
}

// ComponentFactory builds a component bound to the given game object.
type ComponentFactory[T Component] func(*GameObject) (T, error)

// noCopy trips go vet's copylocks check when a component is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// BaseComponent carries the state every component shares.
type BaseComponent struct {
	_ noCopy

	gameObject *GameObject
	enabled    bool
	lateUpdate bool
	// detached is set once the component leaves its game object.
	detached bool
}

// Init binds the component to its owner. It must be called once, from the
// component's factory, before the component is returned to AddComponent.
func (b *BaseComponent) Init(g *GameObject, usesLateUpdate bool) {
	b.gameObject = g
	b.enabled = true
	b.lateUpdate = usesLateUpdate
}

func (b *BaseComponent) GameObject() *GameObject { return b.gameObject }

func (b *BaseComponent) IsEnabled() bool { return b.enabled }

// SetEnabled only gates Update and LateUpdate; owned resources are untouched.
func (b *BaseComponent) SetEnabled(enabled bool) { b.enabled = enabled }

func (b *BaseComponent) UsesLateUpdate() bool { return b.lateUpdate }

func (b *BaseComponent) LateUpdate(float64) {}

func (b *BaseComponent) Destroy() {}

func (b *BaseComponent) base() *BaseComponent { return b }
