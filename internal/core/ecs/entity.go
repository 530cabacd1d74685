package ecs

import (
	"fmt"

	"go.uber.org/zap"
)

// EntityKind is the name entities are registered under. It is always the
// first registration of a World and therefore type id 1.
const EntityKind = "entity"

type typeSet [MaxTypes / 64]uint64

func (s *typeSet) has(t TypeID) bool { return s[t/64]&(1<<(t%64)) != 0 }
func (s *typeSet) set(t TypeID)      { s[t/64] |= 1 << (t % 64) }
func (s *typeSet) unset(t TypeID)    { s[t/64] &^= 1 << (t % 64) }

// Entity is a flat set of components, at most one per kind. It is itself
// stored in a Pool, so everything outside refers to it by Handle.
type Entity struct {
	world      *World
	self       Handle
	name       string
	components [MaxTypes]Handle
	notified   typeSet // kinds whose current component already got OnAttach
}

func (e *Entity) Handle() Handle { return e.self }
func (e *Entity) Name() string   { return e.name }

// AddComponent records h as this entity's component of kind h.Type() and
// points h's owner back at the entity. A second live component of the same
// kind is a programming error and panics.
func (e *Entity) AddComponent(h Handle) {
	r := e.world.dir.ByType(h.Type())
	if r == nil || !r.IsValid(h) {
		panic(fmt.Sprintf("ecs: add invalid component %s to entity %s", h, e.self))
	}
	if r == e.world.entities.Registry {
		panic(fmt.Sprintf("ecs: entity %s cannot own entity %s", e.self, h))
	}
	t := h.Type()
	if cur := e.components[t]; cur != h && r.IsValid(cur) {
		panic(fmt.Sprintf("ecs: entity %s already has a %s component (%s)", e.self, r.name, cur))
	}
	e.components[t] = h
	e.notified.unset(t)
	r.SetOwner(h, e.self)
}

// Component returns the component of kind t, or InvalidHandle.
func (e *Entity) Component(t TypeID) Handle {
	if int(t) >= MaxTypes {
		return InvalidHandle
	}
	h := e.components[t]
	if !e.world.dir.IsValid(h) {
		return InvalidHandle
	}
	return h
}

// Components returns the live components in type id order.
func (e *Entity) Components() []Handle {
	out := make([]Handle, 0, 4)
	for _, h := range e.components {
		if h != InvalidHandle && e.world.dir.IsValid(h) {
			out = append(out, h)
		}
	}
	return out
}

// Get returns e's component of kind T; resolve it through PoolOf[T].
func Get[T any](e *Entity) Handle {
	return e.Component(TypeOf[T](e.world.dir))
}

// Load applies records in order. A record for a kind the entity already
// has is merged into that component; otherwise a component is created,
// attached and loaded. Unknown names and payloads the component rejects are
// logged and skipped. Only capacity exhaustion is returned.
//
// Load hooks must not destroy entities; use World.QueueDestroy.
func (e *Entity) Load(records []Record) error {
	w := e.world
	for _, rec := range records {
		r := w.dir.ByName(rec.Name)
		if r == nil {
			w.log.Warn("unknown component, record skipped",
				zap.String("component", rec.Name),
				zap.Stringer("entity", e.self),
				zap.String("entity_name", e.name),
			)
			continue
		}
		if r == w.entities.Registry {
			w.log.Warn("entity record inside entity, skipped", zap.Stringer("entity", e.self))
			continue
		}

		if cur := e.components[r.typ]; r.IsValid(cur) {
			if err := r.Load(cur, rec.Payload); err != nil {
				w.log.Warn("component payload rejected, kept previous state",
					zap.String("component", r.name),
					zap.Stringer("handle", cur),
					zap.Error(err),
				)
			}
			continue
		}

		h, err := r.CreateHandle()
		if err != nil {
			return fmt.Errorf("entity %s: %w", e.self, err)
		}
		e.AddComponent(h)
		if err := r.Load(h, rec.Payload); err != nil {
			w.log.Warn("component payload rejected, record skipped",
				zap.String("component", r.name),
				zap.Stringer("entity", e.self),
				zap.Error(err),
			)
			r.DestroyHandle(h)
		}
	}
	return nil
}

// OnAttach notifies every component attached since the previous call.
func (e *Entity) OnAttach() {
	for t := TypeID(1); int(t) < MaxTypes; t++ {
		h := e.components[t]
		if h == InvalidHandle || e.notified.has(t) {
			continue
		}
		r := e.world.dir.byType[t]
		if r == nil || !r.IsValid(h) {
			continue
		}
		e.notified.set(t)
		r.Attach(h)
	}
}

// OnDestroy takes every owned component down with the entity. Component
// hooks may destroy other entities, which can move e, so the component set
// and name are copied first.
func (e *Entity) OnDestroy(ctx *Context) {
	owned := e.components
	name := e.name
	for t := TypeID(1); int(t) < MaxTypes; t++ {
		h := owned[t]
		if h == InvalidHandle {
			continue
		}
		if r := ctx.World.dir.byType[t]; r != nil {
			r.DestroyHandle(h)
		}
	}
	if name != "" && ctx.World.names[name] == ctx.Self {
		delete(ctx.World.names, name)
	}
}

// detach forgets h if it is still recorded as this entity's component.
func (e *Entity) detach(h Handle) {
	t := h.Type()
	if e.components[t] == h {
		e.components[t] = InvalidHandle
		e.notified.unset(t)
	}
}
