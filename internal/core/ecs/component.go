package ecs

import (
	"time"

	"go.uber.org/zap"
)

// Payload is an opaque configuration value routed to a component's Load.
// Only the component interprets it. *yaml.Node satisfies it.
type Payload interface {
	Decode(v any) error
}

// Record names a component kind and carries the payload for it.
type Record struct {
	Name    string
	Payload Payload
}

// Context is handed to component hooks. Self is the component's own handle
// and Owner its owning entity (invalid when unattached).
type Context struct {
	World *World
	Self  Handle
	Owner Handle
	Log   *zap.Logger
}

// Fields identifies the component in log entries.
func (c *Context) Fields() []zap.Field {
	return []zap.Field{zap.Stringer("handle", c.Self), zap.Stringer("owner", c.Owner)}
}

// Components implement any subset of the capability interfaces below on
// their pointer type; a missing capability is a no-op.

// Loader applies a payload to the component. Called on creation and again
// when a later batch carries a record of the same kind for the same entity.
type Loader interface {
	Load(ctx *Context, p Payload) error
}

// Attacher is notified once all loads of the enclosing batch are done, so
// siblings declared anywhere in that batch can be looked up.
type Attacher interface {
	OnAttach(ctx *Context)
}

// Updater runs once per frame in internal-index order. It must not destroy
// components directly; use World.QueueDestroy.
type Updater interface {
	Update(ctx *Context, dt time.Duration)
}

// Destroyer runs right before the component's slot is vacated.
type Destroyer interface {
	OnDestroy(ctx *Context)
}

// store is the typed backing storage behind a Registry. Indices are
// internal indices.
type store interface {
	init(capacity int)
	construct(i uint32)
	clear(i uint32)
	move(dst, src uint32)
	load(i uint32, ctx *Context, p Payload) error
	attach(i uint32, ctx *Context)
	update(i uint32, ctx *Context, dt time.Duration)
	release(i uint32, ctx *Context)
	updates() bool
}
