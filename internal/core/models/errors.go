package models

import "errors"

var (
	ErrDuplicateComponent  = errors.New("component of this type is already attached")
	ErrComponentNotFound   = errors.New("component is not attached to this game object")
	ErrComponentInUse      = errors.New("component is required by another attached component")
	ErrGameObjectDestroyed = errors.New("game object is destroyed")
	ErrNilGameObject       = errors.New("game object is nil")
)
