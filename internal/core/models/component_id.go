package models

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ComponentID identifies a concrete component type.
type ComponentID uint64

var componentIDs sync.Map // reflect.Type -> ComponentID

// TypeID returns the ComponentID of T.
func TypeID[T any]() ComponentID {
	return idOf(reflect.TypeFor[T]())
}

// IDOf returns the ComponentID of the dynamic type of c.
func IDOf(c Component) ComponentID {
	return idOf(reflect.TypeOf(c))
}

func idOf(t reflect.Type) ComponentID {
	if id, ok := componentIDs.Load(t); ok {
		return id.(ComponentID)
	}
	id := ComponentID(xxhash.Sum64String(qualifiedName(t)))
	componentIDs.Store(t, id)
	return id
}

// qualifiedName includes the package path so same-named types in different
// packages hash apart.
func qualifiedName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + qualifiedName(t.Elem())
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
