package models

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"
)

// GameObject owns a Transform and the components attached to it.
type GameObject struct {
	id        uuid.UUID
	name      string
	transform *Transform

	// components keeps attach order for the update passes; byType serves exact-type lookups.
	components []Component
	byType     map[ComponentID]Component

	destroyed bool
}

// NewGameObject creates an empty game object with an identity transform.
func NewGameObject(name string) *GameObject {
	return &GameObject{
		id:        uuid.New(),
		name:      name,
		transform: NewTransform(),
		byType:    make(map[ComponentID]Component),
	}
}

func (g *GameObject) ID() uuid.UUID { return g.id }

func (g *GameObject) Name() string { return g.name }

func (g *GameObject) SetName(name string) { g.name = name }

func (g *GameObject) Transform() *Transform { return g.transform }

func (g *GameObject) IsDestroyed() bool { return g.destroyed }

// Components returns the attached components in attach order.
func (g *GameObject) Components() []Component {
	return slices.Clone(g.components)
}

// AddComponent builds a component with factory and attaches it to g.
// At most one component of each concrete type may be attached. When the factory
// fails nothing is attached and its error is returned as is.
func AddComponent[T Component](g *GameObject, factory ComponentFactory[T]) (T, error) {
	var zero T
	if g == nil {
		return zero, ErrNilGameObject
	}
	if g.destroyed {
		return zero, ErrGameObjectDestroyed
	}

	id := TypeID[T]()
	if _, exists := g.byType[id]; exists {
		return zero, fmt.Errorf("%w: %s", ErrDuplicateComponent, qualifiedName(reflect.TypeFor[T]()))
	}

	c, err := factory(g)
	if err != nil {
		return zero, err
	}
	if c.base().gameObject != g {
		c.Destroy()
		return zero, fmt.Errorf("component %s was not bound to game object %q", qualifiedName(reflect.TypeFor[T]()), g.name)
	}

	g.components = append(g.components, c)
	g.byType[IDOf(c)] = c
	return c, nil
}

// GetComponent finds the component of type T. T may be a concrete component type
// or a capability interface; for interfaces the first attached match wins.
func GetComponent[T any](g *GameObject) (T, bool) {
	var zero T
	if g == nil {
		return zero, false
	}
	if c, ok := g.byType[TypeID[T]()]; ok {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	return zero, false
}

// HasComponent reports whether a component of type T is attached.
func HasComponent[T any](g *GameObject) bool {
	_, ok := GetComponent[T](g)
	return ok
}

// RemoveComponent destroys c and detaches it from g.
func (g *GameObject) RemoveComponent(c Component) error {
	idx := slices.Index(g.components, c)
	if idx < 0 {
		return ErrComponentNotFound
	}
	for _, other := range g.components {
		if other == c {
			continue
		}
		if dep, ok := other.(Dependent); ok && dep.DependsOn(c) {
			return fmt.Errorf("%w: %s", ErrComponentInUse, qualifiedName(reflect.TypeOf(other)))
		}
	}

	c.Destroy()
	c.base().detached = true
	g.components = slices.Delete(g.components, idx, idx+1)
	delete(g.byType, IDOf(c))
	return nil
}

// Update runs Update on every enabled component in attach order. Components
// may remove each other, or destroy g, from inside Update; a component removed
// during the pass is not updated afterwards.
func (g *GameObject) Update(deltaTime float64) {
	for _, c := range slices.Clone(g.components) {
		if g.destroyed {
			return
		}
		if !c.base().detached && c.IsEnabled() {
			c.Update(deltaTime)
		}
	}
}

// LateUpdate runs LateUpdate on enabled components that opted into it, with
// the same removal rules as Update.
func (g *GameObject) LateUpdate(deltaTime float64) {
	for _, c := range slices.Clone(g.components) {
		if g.destroyed {
			return
		}
		if !c.base().detached && c.IsEnabled() && c.UsesLateUpdate() {
			c.LateUpdate(deltaTime)
		}
	}
}

// Destroy destroys all components, newest first, so dependents go before the
// components they reference. Calling Destroy again is a no-op.
func (g *GameObject) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	for i := len(g.components) - 1; i >= 0; i-- {
		c := g.components[i]
		c.Destroy()
		c.base().detached = true
	}
	g.components = nil
	clear(g.byType)
}
