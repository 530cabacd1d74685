package ecs

import "errors"

var (
	ErrCapacityExhausted  = errors.New("registry capacity exhausted")
	ErrInvalidCapacity    = errors.New("invalid registry capacity")
	ErrAlreadyInitialized = errors.New("registry already initialized")
	ErrNotInitialized     = errors.New("registry not initialized")
	ErrNotRegistered      = errors.New("registry not registered")
	ErrDuplicateName      = errors.New("duplicate component name")
	ErrTooManyTypes       = errors.New("too many component types")
)
